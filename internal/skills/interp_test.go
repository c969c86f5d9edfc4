package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/engerr"
	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// TestActivatePrefersDSLOverHandwrittenOfTheSameID is the
// DSL-preferred-over-handler-fallback rule: when both a DSL record and
// a hand-written handler exist for the same skill id, Activate must run
// the DSL path and never invoke the hand-written handler.
func TestActivatePrefersDSLOverHandwrittenOfTheSameID(t *testing.T) {
	var handwrittenCalled bool
	dsl := map[string]config.SkillDSLConfig{
		"rende": {ID: "rende", Trigger: "active", Steps: []config.StepConfig{{"heal": 1}}},
	}
	handwritten := map[string]HandlerFunc{
		"rende": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error {
			handwrittenCalled = true
			return nil
		},
	}
	in := New(dsl, handwritten)
	d := newSkillTestDuel(in, testHero("A", 4))
	d.State.Players[0].HP = 2

	if err := in.Activate(context.Background(), d, 0, "rende", nil); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if handwrittenCalled {
		t.Error("expected the DSL record to be used, not the hand-written handler of the same id")
	}
	if d.State.Players[0].HP != 3 {
		t.Errorf("hp = %d, want 3 (DSL heal step should have run)", d.State.Players[0].HP)
	}
}

func TestActivateFallsBackToHandwrittenWhenNoDSLRecordExists(t *testing.T) {
	var called bool
	handwritten := map[string]HandlerFunc{
		"guanxing": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error {
			called = true
			return nil
		},
	}
	in := New(nil, handwritten)
	d := newSkillTestDuel(in, testHero("A", 4))

	if err := in.Activate(context.Background(), d, 0, "guanxing", nil); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !called {
		t.Error("expected the hand-written handler to run when no DSL record exists for the id")
	}
}

func TestActivateUnknownSkillReturnsSkillNotFound(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	err := in.Activate(context.Background(), d, 0, "nonexistent", nil)
	var de *engerr.DomainError
	if !errors.As(err, &de) || de.Kind != engerr.SkillNotFound {
		t.Fatalf("Activate(nonexistent) error = %v, want engerr.SkillNotFound", err)
	}
}

func TestActivateHandwrittenFallthroughBecomesSkillNotFound(t *testing.T) {
	handwritten := map[string]HandlerFunc{
		"weak": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error {
			return Fallthrough
		},
	}
	in := New(nil, handwritten)
	d := newSkillTestDuel(in, testHero("A", 4))

	err := in.Activate(context.Background(), d, 0, "weak", nil)
	var de *engerr.DomainError
	if !errors.As(err, &de) || de.Kind != engerr.SkillNotFound {
		t.Fatalf("Activate error = %v, want engerr.SkillNotFound after a Fallthrough", err)
	}
}

func TestActivateRejectsUseOverThePerTurnLimit(t *testing.T) {
	dsl := map[string]config.SkillDSLConfig{
		"jizhi": {ID: "jizhi", Trigger: "active", Limit: 1, Steps: []config.StepConfig{{"draw": 1}}},
	}
	in := New(dsl, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	if err := in.Activate(context.Background(), d, 0, "jizhi", nil); err != nil {
		t.Fatalf("first Activate: %v", err)
	}
	err := in.Activate(context.Background(), d, 0, "jizhi", nil)
	var de *engerr.DomainError
	if !errors.As(err, &de) || de.Kind != engerr.SkillUsageLimit {
		t.Fatalf("second Activate error = %v, want engerr.SkillUsageLimit", err)
	}
}

func TestActivateRejectsWhenConditionFails(t *testing.T) {
	dsl := map[string]config.SkillDSLConfig{
		"rende": {
			ID:        "rende",
			Trigger:   "active",
			Condition: []config.StepConfig{{"has_hand_cards": map[string]any{"min": 1}}},
			Steps:     []config.StepConfig{{"heal": 1}},
		},
	}
	in := New(dsl, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	err := in.Activate(context.Background(), d, 0, "rende", nil)
	var de *engerr.DomainError
	if !errors.As(err, &de) || de.Kind != engerr.SkillCondition {
		t.Fatalf("Activate error = %v, want engerr.SkillCondition with an empty hand", err)
	}
}

func TestActivateAbortsBeforeStepsRunWhenCostFails(t *testing.T) {
	dsl := map[string]config.SkillDSLConfig{
		"jieyin": {
			ID:      "jieyin",
			Trigger: "active",
			Cost:    []config.StepConfig{{"discard": map[string]any{"count": 1}}},
			Steps:   []config.StepConfig{{"heal": 1}},
		},
	}
	in := New(dsl, nil)
	d := newSkillTestDuel(in, testHero("A", 4))
	d.State.Players[0].HP = 2

	if err := in.Activate(context.Background(), d, 0, "jieyin", nil); err == nil {
		t.Fatal("expected Activate to fail: the discard cost cannot be paid with an empty hand")
	}
	if d.State.Players[0].HP != 2 {
		t.Errorf("hp = %d, want 2 unchanged: steps must not run once a cost fails", d.State.Players[0].HP)
	}
}

func TestResetTurnLimitsClearsPerPlayerUseCounter(t *testing.T) {
	dsl := map[string]config.SkillDSLConfig{
		"jizhi": {ID: "jizhi", Trigger: "active", Limit: 1, Steps: []config.StepConfig{{"draw": 1}}},
	}
	in := New(dsl, nil)
	d := newSkillTestDuel(in, testHero("A", 4))

	if err := in.Activate(context.Background(), d, 0, "jizhi", nil); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	in.ResetTurnLimits(0)
	if err := in.Activate(context.Background(), d, 0, "jizhi", nil); err != nil {
		t.Fatalf("Activate after ResetTurnLimits: %v", err)
	}
}

func TestHasSkillChecksTheHeroSkillListRegardlessOfTrigger(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("Lu Bu", 4, "wushuang_passive"))
	if !in.HasSkill(d, 0, "wushuang_passive") {
		t.Error("expected HasSkill to find a skill the hero's skill list names")
	}
	if in.HasSkill(d, 0, "kongcheng") {
		t.Error("expected HasSkill to reject a skill the hero does not have")
	}
}

func TestUsableSkillsOnlyListsActiveSkillsThatPassTheirConditionAndLimit(t *testing.T) {
	dsl := map[string]config.SkillDSLConfig{
		"active_ok":  {ID: "active_ok", Trigger: "active"},
		"passive":    {ID: "passive", Trigger: "after_damaged"},
		"maxed_out":  {ID: "maxed_out", Trigger: "active", Limit: 1},
		"needs_cond": {ID: "needs_cond", Trigger: "active", Condition: []config.StepConfig{{"has_hand_cards": map[string]any{"min": 1}}}},
	}
	in := New(dsl, nil)
	d := newSkillTestDuel(in, testHero("Hero", 4, "active_ok", "passive", "maxed_out", "needs_cond"))
	in.uses[key(0, "maxed_out")] = 1

	got := in.UsableSkills(d, 0)
	want := map[string]bool{"active_ok": true}
	for _, id := range got {
		if !want[id] {
			t.Errorf("UsableSkills returned unexpected id %q", id)
		}
		delete(want, id)
	}
	if len(want) != 0 {
		t.Errorf("UsableSkills missing expected ids: %v", want)
	}
}

func TestTriggerAllPutsTheEventsOwnPlayerSeatFirst(t *testing.T) {
	in := New(nil, nil)
	d := newSkillTestDuel(in, testHero("A", 4), testHero("B", 4), testHero("C", 4))
	e := events.New("after_damaged", map[string]any{"player": 2})

	order := in.triggerOrder(d, e)
	if len(order) != 3 || order[0] != 2 {
		t.Fatalf("triggerOrder = %v, want seat 2 first", order)
	}
}

func TestTriggerAllRunsOnlyMatchingTriggerSkills(t *testing.T) {
	dsl := map[string]config.SkillDSLConfig{
		"ganglie": {ID: "ganglie", Trigger: "after_damaged", Steps: []config.StepConfig{{"lose_hp": map[string]any{"amount": 1}}}},
		"rende":   {ID: "rende", Trigger: "active", Steps: []config.StepConfig{{"heal": 1}}},
	}
	in := New(dsl, nil)
	d := newSkillTestDuel(in, testHero("A", 4, "ganglie", "rende"))
	d.State.Players[0].HP = 3

	in.TriggerAll(context.Background(), d, "after_damaged", events.New("after_damaged", map[string]any{"player": 0}))

	if d.State.Players[0].HP != 2 {
		t.Errorf("hp = %d, want 2 (only the after_damaged-triggered skill should have run)", d.State.Players[0].HP)
	}
}
