package skills

import (
	"context"
	"testing"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
)

func TestPayCostsChecksAllPreconditionsBeforeMutatingAnyCost(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	p := d.State.Players[0]
	p.HP = 4 // enough hp to pay lose_hp, but hand is empty so discard fails

	costs := []config.StepConfig{
		{"lose_hp": map[string]any{"amount": 1}},
		{"discard": map[string]any{"count": 1}},
	}
	err := in.payCosts(context.Background(), d, 0, costs)
	if err == nil {
		t.Fatal("expected payCosts to fail when any cost's precondition fails")
	}
	if p.HP != 4 {
		t.Errorf("hp = %d, want 4 unchanged: an earlier-listed cost must not mutate state once a later cost's precondition fails", p.HP)
	}
}

func TestPayCostsPaysEveryCostWhenAllPreconditionsHold(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	p := d.State.Players[0]
	p.HP = 4
	card := d.State.NewCardInstance(testCard("Jiu", game.CardBasic, game.SubWine, game.Spade, 2))
	p.AddToHand(card)

	costs := []config.StepConfig{
		{"lose_hp": map[string]any{"amount": 1}},
		{"discard": map[string]any{"count": 1}},
	}
	if err := in.payCosts(context.Background(), d, 0, costs); err != nil {
		t.Fatalf("payCosts: %v", err)
	}
	if p.HP != 3 {
		t.Errorf("hp = %d, want 3 after paying lose_hp(1)", p.HP)
	}
	if len(p.Hand) != 0 {
		t.Errorf("hand size = %d, want 0 after paying discard(1)", len(p.Hand))
	}
}

func TestPayCostsRejectsLoseHPThatWouldDropToZero(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	p := d.State.Players[0]
	p.HP = 1

	costs := []config.StepConfig{{"lose_hp": map[string]any{"amount": 1}}}
	if err := in.payCosts(context.Background(), d, 0, costs); err == nil {
		t.Fatal("expected a lose_hp cost that would drop hp to 0 to be rejected")
	}
	if p.HP != 1 {
		t.Errorf("hp = %d, want 1 unchanged after a rejected cost", p.HP)
	}
}

func TestPayCostsWithNoCostsIsANoop(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	if err := in.payCosts(context.Background(), d, 0, nil); err != nil {
		t.Fatalf("payCosts with no costs: %v", err)
	}
}
