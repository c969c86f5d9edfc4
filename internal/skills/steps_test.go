package skills

import (
	"context"
	"testing"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
)

func TestRunStepDrawAddsCardsToHand(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	before := len(d.State.Players[0].Hand)

	if _, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"draw": 2}); err != nil {
		t.Fatalf("runStep(draw): %v", err)
	}
	if got := len(d.State.Players[0].Hand); got != before+2 {
		t.Errorf("hand size = %d, want %d", got, before+2)
	}
}

func TestRunStepHealRestoresHPUpToMax(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	d.State.Players[0].HP = 2

	healed, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"heal": 1})
	if err != nil {
		t.Fatalf("runStep(heal): %v", err)
	}
	if !healed {
		t.Error("expected heal step to report healed=true")
	}
	if d.State.Players[0].HP != 3 {
		t.Errorf("hp = %d, want 3", d.State.Players[0].HP)
	}
}

func TestRunStepHealIfWoundedSkipsAtFullHP(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	// HP starts at MaxHP (4).

	healed, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{
		"heal": map[string]any{"amount": 1, "if_wounded": true},
	})
	if err != nil {
		t.Fatalf("runStep(heal): %v", err)
	}
	if healed {
		t.Error("expected if_wounded heal to report healed=false at full hp")
	}
	if d.State.Players[0].HP != 4 {
		t.Errorf("hp = %d, want 4 (heal should not overcap)", d.State.Players[0].HP)
	}
}

func TestRunStepDamageRoutesThroughDealDamage(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4), testHero("B", 4))

	_, err := in.runStep(context.Background(), d, 0, 1, config.StepConfig{
		"damage": map[string]any{"amount": 2, "target": "target", "type": "fire"},
	})
	if err != nil {
		t.Fatalf("runStep(damage): %v", err)
	}
	if d.State.Players[1].HP != 2 {
		t.Errorf("target hp = %d, want 2 after 2 fire damage", d.State.Players[1].HP)
	}
}

func TestRunStepLoseHPReducesActingPlayerDirectly(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	if _, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"lose_hp": map[string]any{"amount": 1}}); err != nil {
		t.Fatalf("runStep(lose_hp): %v", err)
	}
	if d.State.Players[0].HP != 3 {
		t.Errorf("hp = %d, want 3", d.State.Players[0].HP)
	}
}

func TestRunStepTransferMovesCardsBetweenHands(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4), testHero("B", 4))
	card := d.State.NewCardInstance(testCard("Jiu", game.CardBasic, game.SubWine, game.Spade, 2))
	d.State.Players[1].AddToHand(card)

	_, err := in.runStep(context.Background(), d, 0, 1, config.StepConfig{
		"transfer": map[string]any{"from": "target", "to": "source", "cards": 1},
	})
	if err != nil {
		t.Fatalf("runStep(transfer): %v", err)
	}
	if len(d.State.Players[1].Hand) != 0 {
		t.Errorf("source-of-transfer hand size = %d, want 0", len(d.State.Players[1].Hand))
	}
	if len(d.State.Players[0].Hand) != 1 {
		t.Errorf("receiver hand size = %d, want 1", len(d.State.Players[0].Hand))
	}
}

func TestRunStepDiscardRemovesFromTargetPlayerHand(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4), testHero("B", 4))
	card := d.State.NewCardInstance(testCard("Jiu", game.CardBasic, game.SubWine, game.Spade, 2))
	d.State.Players[1].AddToHand(card)

	_, err := in.runStep(context.Background(), d, 0, 1, config.StepConfig{
		"discard": map[string]any{"player": "target", "count": 1},
	})
	if err != nil {
		t.Fatalf("runStep(discard): %v", err)
	}
	if len(d.State.Players[1].Hand) != 0 {
		t.Errorf("target hand size = %d, want 0", len(d.State.Players[1].Hand))
	}
}

func TestRunStepFlipTogglesChainedStatus(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	if _, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"flip": true}); err != nil {
		t.Fatalf("runStep(flip): %v", err)
	}
	if !d.State.Players[0].IsChained {
		t.Error("expected flip to set IsChained")
	}
	if _, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"flip": true}); err != nil {
		t.Fatalf("runStep(flip) again: %v", err)
	}
	if d.State.Players[0].IsChained {
		t.Error("expected a second flip to clear IsChained")
	}
}

func TestRunStepSkipPhaseSetsTheCorrespondingFlag(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	if _, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"skip_phase": "draw"}); err != nil {
		t.Fatalf("runStep(skip_phase): %v", err)
	}
	if !d.State.Players[0].Flags.SkipDraw {
		t.Error("expected skip_phase: draw to set Flags.SkipDraw")
	}
}

func TestRunStepIfRunsThenBranchWhenConditionHolds(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	d.State.Players[0].HP = 2

	_, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{
		"if": map[string]any{
			"cond": []any{map[string]any{"hp_below_max": true}},
			"then": []any{map[string]any{"heal": 1}},
			"else": []any{map[string]any{"lose_hp": map[string]any{"amount": 1}}},
		},
	})
	if err != nil {
		t.Fatalf("runStep(if): %v", err)
	}
	if d.State.Players[0].HP != 3 {
		t.Errorf("hp = %d, want 3 (then branch should have healed)", d.State.Players[0].HP)
	}
}

func TestRunStepIfRunsElseBranchWhenConditionFails(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	// HP starts at max, so hp_below_max is false.

	_, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{
		"if": map[string]any{
			"cond": []any{map[string]any{"hp_below_max": true}},
			"then": []any{map[string]any{"heal": 1}},
			"else": []any{map[string]any{"lose_hp": map[string]any{"amount": 1}}},
		},
	})
	if err != nil {
		t.Fatalf("runStep(if): %v", err)
	}
	if d.State.Players[0].HP != 3 {
		t.Errorf("hp = %d, want 3 (else branch should have cost 1 hp)", d.State.Players[0].HP)
	}
}

func TestRunStepUnknownKeyReturnsAnError(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	if _, err := in.runStep(context.Background(), d, 0, 0, config.StepConfig{"teleport": true}); err == nil {
		t.Fatal("expected an unrecognized step key to return an error")
	}
}

func TestRunStepsStopsAtFirstError(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	err := in.runSteps(context.Background(), d, 0, nil, []config.StepConfig{
		{"heal": 1},
		{"teleport": true},
		{"lose_hp": map[string]any{"amount": 1}},
	})
	if err == nil {
		t.Fatal("expected runSteps to stop and return the unknown step's error")
	}
	if d.State.Players[0].HP != 4 {
		t.Errorf("hp = %d, want 4 (the step after the failure must not run)", d.State.Players[0].HP)
	}
}
