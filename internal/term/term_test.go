package term

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sanguosha/engine/internal/game"
)

func TestChooseActionSelectsByIndex(t *testing.T) {
	in := strings.NewReader("1\n")
	var out bytes.Buffer
	c := New(0, in, &out)

	actions := []game.Action{
		{Type: game.ActionActivateSkill, Skill: "rende"},
		{Type: game.ActionEndPlay},
	}
	chosen, err := c.ChooseAction(context.Background(), nil, 0, actions)
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if chosen.Type != game.ActionEndPlay {
		t.Fatalf("expected index 1 to select ActionEndPlay, got %v", chosen.Type)
	}
	if !strings.Contains(out.String(), "your turn") {
		t.Errorf("expected a prompt to be printed, got %q", out.String())
	}
}

func TestChooseActionOnEOFEndsPlay(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	c := New(0, in, &out)

	actions := []game.Action{{Type: game.ActionActivateSkill, Skill: "rende"}, {Type: game.ActionEndPlay}}
	chosen, err := c.ChooseAction(context.Background(), nil, 0, actions)
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if chosen.Type != game.ActionEndPlay {
		t.Fatalf("expected EOF/empty input to degrade to ActionEndPlay, got %v", chosen.Type)
	}
}

func TestChooseYesNoParsesYVariants(t *testing.T) {
	cases := map[string]bool{"y\n": true, "yes\n": true, "Y\n": true, "n\n": false, "\n": false, "": false}
	for input, want := range cases {
		c := New(0, strings.NewReader(input), &bytes.Buffer{})
		got, err := c.ChooseYesNo(context.Background(), nil, 0, "proceed?")
		if err != nil {
			t.Fatalf("ChooseYesNo(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("ChooseYesNo(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestChooseSuitDefaultsToSpadeOnEmptyInput(t *testing.T) {
	c := New(0, strings.NewReader("\n"), &bytes.Buffer{})
	suit, err := c.ChooseSuit(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("ChooseSuit: %v", err)
	}
	if suit != game.Spade {
		t.Fatalf("expected default suit Spade, got %v", suit)
	}
}

func TestChooseSuitSelectsByIndex(t *testing.T) {
	c := New(0, strings.NewReader("2\n"), &bytes.Buffer{})
	suit, err := c.ChooseSuit(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("ChooseSuit: %v", err)
	}
	if suit != game.Club {
		t.Fatalf("expected index 2 to select Club, got %v", suit)
	}
}

func TestReadIndicesIgnoresOutOfRangeAndNonNumeric(t *testing.T) {
	c := New(0, strings.NewReader("0 abc 5 2\n"), &bytes.Buffer{})
	idx := c.readIndices(3)
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Fatalf("readIndices(3) = %v, want [0 2]", idx)
	}
}
