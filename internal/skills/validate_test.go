package skills

import (
	"testing"

	"github.com/sanguosha/engine/internal/config"
)

func TestValidateDSLAcceptsWellFormedRecord(t *testing.T) {
	rec := config.SkillDSLConfig{
		ID:      "rende",
		Trigger: "active",
		Condition: []config.StepConfig{
			{"has_hand_cards": true},
		},
		Cost: []config.StepConfig{
			{"discard": 1},
		},
		Steps: []config.StepConfig{
			{"heal": 1},
		},
	}
	if err := ValidateDSL(rec); err != nil {
		t.Fatalf("expected a well-formed record to validate, got %v", err)
	}
}

func TestValidateDSLRejectsMissingID(t *testing.T) {
	rec := config.SkillDSLConfig{Trigger: "active"}
	if err := ValidateDSL(rec); err == nil {
		t.Fatal("expected a missing id to be rejected")
	}
}

func TestValidateDSLRejectsUnknownTrigger(t *testing.T) {
	rec := config.SkillDSLConfig{ID: "x", Trigger: "on_full_moon"}
	if err := ValidateDSL(rec); err == nil {
		t.Fatal("expected an unknown trigger to be rejected")
	}
}

func TestValidateDSLRejectsUnknownConditionKey(t *testing.T) {
	rec := config.SkillDSLConfig{
		ID:        "x",
		Trigger:   "active",
		Condition: []config.StepConfig{{"is_full_moon": true}},
	}
	if err := ValidateDSL(rec); err == nil {
		t.Fatal("expected an unknown condition key to be rejected")
	}
}

func TestValidateDSLRejectsUnknownStepKey(t *testing.T) {
	rec := config.SkillDSLConfig{
		ID:      "x",
		Trigger: "active",
		Steps:   []config.StepConfig{{"teleport": true}},
	}
	if err := ValidateDSL(rec); err == nil {
		t.Fatal("expected an unknown step key to be rejected")
	}
}

func TestValidateAllReturnsFirstFailure(t *testing.T) {
	table := map[string]config.SkillDSLConfig{
		"good": {ID: "good", Trigger: "active"},
		"bad":  {ID: "bad", Trigger: "not_a_real_trigger"},
	}
	if err := ValidateAll(table); err == nil {
		t.Fatal("expected ValidateAll to surface the invalid record")
	}
}
