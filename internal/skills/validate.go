package skills

import (
	"fmt"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/engerr"
)

// validTriggers is the closed trigger vocabulary spec.md §4.4 defines.
// "passive" is a valid value for identity-marker skills that are never
// dispatched through TriggerAll (their effect, if any, is a direct
// HasSkill check elsewhere, e.g. internal/game/combat.go's
// paoxiao_passive/wushuang_passive/kongcheng checks).
var validTriggers = map[string]bool{
	"active": true, "passive": true,
	"after_damaged": true, "after_damage_dealt": true,
	"phase_prepare": true, "phase_draw": true, "phase_discard": true, "phase_end": true,
	"on_lose_equip": true, "on_use_sha": true,
}

var validConditionKeys = map[string]bool{
	"has_hand_cards": true, "hp_below_max": true, "hp_above": true,
	"target_has_cards": true, "no_sha_used": true, "distance_le": true,
	"target_hand_ge_hp": true, "target_hand_le_range": true, "source_hand_ge": true,
}

var validCostKeys = map[string]bool{"discard": true, "lose_hp": true}

var validStepKeys = map[string]bool{
	"draw": true, "heal": true, "damage": true, "lose_hp": true,
	"transfer": true, "judge": true, "discard": true, "flip": true,
	"log": true, "skip_phase": true, "if": true, "get_card": true,
}

// ValidateDSL checks one skill record against the DSL's closed
// vocabulary (spec.md §4.4: "unknown keys are rejected at config-load
// time"), grounded on original_source/game/skill_dsl.py's schema
// validation pass over its own condition/cost/step tables. Condition
// keys are checked here too even though the interpreter itself treats
// an unrecognized condition as "default true" at evaluation time: a
// config author's typo should fail loudly at load, not silently always
// pass.
func ValidateDSL(rec config.SkillDSLConfig) error {
	if rec.ID == "" {
		return engerr.New(engerr.ConfigurationError, "skill record missing id")
	}
	if !validTriggers[rec.Trigger] {
		return engerr.New(engerr.ConfigurationError, fmt.Sprintf("skill %q: unknown trigger %q", rec.ID, rec.Trigger))
	}
	for _, c := range rec.Condition {
		if err := checkKeys(rec.ID, "condition", c, validConditionKeys); err != nil {
			return err
		}
	}
	for _, c := range rec.Cost {
		if err := checkKeys(rec.ID, "cost", c, validCostKeys); err != nil {
			return err
		}
	}
	for _, s := range rec.Steps {
		if err := checkKeys(rec.ID, "step", s, validStepKeys); err != nil {
			return err
		}
	}
	return nil
}

func checkKeys(id, kind string, node config.StepConfig, valid map[string]bool) error {
	for key := range node {
		if !valid[key] {
			return engerr.New(engerr.ConfigurationError, fmt.Sprintf("skill %q: unknown %s key %q", id, kind, key))
		}
	}
	return nil
}

// ValidateAll validates every record in a loaded skill table, returning
// the first failure. Intended to run once at process startup right
// after config.LoadGameData, before the table is handed to New.
func ValidateAll(table map[string]config.SkillDSLConfig) error {
	for id, rec := range table {
		if err := ValidateDSL(rec); err != nil {
			return err
		}
		_ = id
	}
	return nil
}
