package game

import (
	"context"
	"testing"

	"github.com/sanguosha/engine/internal/events"
)

func determinismFixture(seed int64) *Duel {
	heroes := []*Hero{testHero("A", 4), testHero("B", 4)}
	pool := fillerPool(60)
	controllers := []PlayerController{newScriptedController(), newScriptedController()}
	return newTestDuel(seed, heroes, pool, controllers)
}

// TestRunIsDeterministicForAGivenSeed is spec.md §8's headless-battle
// reproducibility scenario: the same seed and the same (here: scripted,
// never-deviating) controller behavior must produce an identical run.
func TestRunIsDeterministicForAGivenSeed(t *testing.T) {
	d1 := determinismFixture(42)
	winner1, err := d1.Run(context.Background())
	if err != nil {
		t.Fatalf("Run (1): %v", err)
	}

	d2 := determinismFixture(42)
	winner2, err := d2.Run(context.Background())
	if err != nil {
		t.Fatalf("Run (2): %v", err)
	}

	if winner1 != winner2 {
		t.Fatalf("same seed produced different winners: %q vs %q", winner1, winner2)
	}
	if d1.State.Turn != d2.State.Turn {
		t.Fatalf("same seed produced different turn counts: %d vs %d", d1.State.Turn, d2.State.Turn)
	}
	for seat := range d1.State.Players {
		p1, p2 := d1.State.Players[seat], d2.State.Players[seat]
		if p1.HP != p2.HP {
			t.Errorf("seat %d hp diverged: %d vs %d", seat, p1.HP, p2.HP)
		}
		if len(p1.Hand) != len(p2.Hand) {
			t.Errorf("seat %d hand size diverged: %d vs %d", seat, len(p1.Hand), len(p2.Hand))
		}
	}
	if d1.State.Deck.Remaining() != d2.State.Deck.Remaining() {
		t.Errorf("deck remaining diverged: %d vs %d", d1.State.Deck.Remaining(), d2.State.Deck.Remaining())
	}
}

func TestRunEndsInDrawWhenMaxTurnsExceededWithNoCombat(t *testing.T) {
	d := determinismFixture(7)
	d.maxTurns = 3
	winner, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if winner != "" {
		t.Fatalf("winner = %q, want empty (draw) when max turns is exceeded with no eliminations", winner)
	}
}

func TestRunStopsAsSoonAsCheckWinIsSatisfied(t *testing.T) {
	d := determinismFixture(1)
	d.State.Players[1].MarkDead()

	winner, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if winner != "government" {
		t.Fatalf("winner = %q, want government once every rebel/spy is eliminated", winner)
	}
	if d.State.Turn != 0 {
		t.Fatalf("Turn = %d, want 0 (win checked before any turn runs)", d.State.Turn)
	}
}

func TestRunTurnAdvancesThroughAllSixPhases(t *testing.T) {
	d := determinismFixture(3)
	d.maxTurns = 1

	var kinds []events.Kind
	d.State.Bus.SubscribeAll(0, events.HandlerFunc(func(ctx context.Context, e *events.Event) {
		kinds = append(kinds, e.Kind)
	}))

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []events.Kind{EvTurnStart, EvTurnEnd}
	for _, w := range want {
		found := false
		for _, k := range kinds {
			if k == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q to be published during the turn, got %v", w, kinds)
		}
	}
	if d.State.Phase != PhaseEnd {
		t.Errorf("phase after one full turn = %v, want %v", d.State.Phase, PhaseEnd)
	}
}

func TestNextLivingSeatSkipsEliminatedPlayers(t *testing.T) {
	heroes := []*Hero{testHero("A", 4), testHero("B", 4), testHero("C", 4)}
	d := newTestDuel(1, heroes, fillerPool(60), []PlayerController{
		newScriptedController(), newScriptedController(), newScriptedController(),
	})
	d.State.Players[1].MarkDead()

	if got := d.nextLivingSeat(0); got != 2 {
		t.Fatalf("nextLivingSeat(0) = %d, want 2 (seat 1 is dead)", got)
	}
}

func TestLegalActionsIncludesHandCardsWithPassingCanUse(t *testing.T) {
	d := determinismFixture(1)
	wine := d.State.NewCardInstance(testCard("Jiu", CardBasic, SubWine, Spade, 2))
	d.State.Players[0].AddToHand(wine)

	actions := d.legalActions(0)
	found := false
	for _, a := range actions {
		if a.Type == ActionPlayCard && a.Card == wine {
			found = true
		}
	}
	if !found {
		t.Fatal("expected legalActions to surface a playable hand card")
	}
}
