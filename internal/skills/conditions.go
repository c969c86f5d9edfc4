package skills

import (
	"github.com/rs/zerolog/log"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
)

// evalConditions walks the closed condition vocabulary from spec.md
// §4.4. Unknown condition keys default to true and are logged as a
// warning by evalOne. target is -1 when no
// target has been chosen yet (condition evaluated pre-targeting, e.g.
// for UsableSkills); target-dependent predicates pass vacuously in
// that case and are re-checked once a real target is known.
func (in *Interpreter) evalConditions(d *game.Duel, player int, conds []config.StepConfig) bool {
	return in.evalConditionsFor(d, player, -1, conds)
}

func (in *Interpreter) evalConditionsFor(d *game.Duel, player, target int, conds []config.StepConfig) bool {
	for _, c := range conds {
		if !evalOne(d, player, target, c) {
			return false
		}
	}
	return true
}

func evalOne(d *game.Duel, player, target int, cond config.StepConfig) bool {
	p := d.State.Players[player]
	if v, ok := cond["has_hand_cards"]; ok {
		min := fieldInt(v, "min", 1)
		return len(p.Hand) >= min
	}
	if _, ok := cond["hp_below_max"]; ok {
		return p.HP < p.MaxHP
	}
	if v, ok := cond["hp_above"]; ok {
		return p.HP > fieldInt(v, "value", 0)
	}
	if _, ok := cond["target_has_cards"]; ok {
		if target < 0 {
			return true
		}
		return len(d.State.Players[target].Hand) > 0
	}
	if _, ok := cond["no_sha_used"]; ok {
		return p.Flags.StrikesUsed == 0
	}
	if v, ok := cond["distance_le"]; ok {
		if target < 0 {
			return true
		}
		return d.State.Distance(player, target) <= fieldInt(v, "value", 1)
	}
	if _, ok := cond["target_hand_ge_hp"]; ok {
		if target < 0 {
			return true
		}
		tp := d.State.Players[target]
		return len(tp.Hand) >= tp.HP
	}
	if _, ok := cond["target_hand_le_range"]; ok {
		if target < 0 {
			return true
		}
		return len(d.State.Players[target].Hand) <= p.Equipment.WeaponRange()
	}
	if v, ok := cond["source_hand_ge"]; ok {
		return len(p.Hand) >= fieldInt(v, "value", 0)
	}
	log.Warn().Interface("condition", cond).Msg("unknown skill condition; defaulting to true")
	return true
}

func fieldInt(v any, key string, def int) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case map[string]any:
		if raw, ok := t[key]; ok {
			return fieldInt(raw, key, def)
		}
		return def
	default:
		return def
	}
}
