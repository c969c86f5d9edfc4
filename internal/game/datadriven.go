package game

import (
	"context"
	"fmt"

	"github.com/sanguosha/engine/internal/config"
)

// buildDataDrivenEffect turns a config.CardEffectConfig into a
// CardEffect whose Resolve walks the step list. This is the single
// generic handler spec.md §9 calls for: "DSL-driven effects are a
// single generic handler parameterized by its config map."
//
// Wuxie is reported as false on the returned CardEffect even when
// cfg.Wuxie is set: UseCard's own top-level nullification poll only
// fires against the targets passed into use_card, but a scope-driven
// effect (e.g. "all_alive_from_player") computes its real targets
// inside Resolve, after scope expansion. So a Wuxie-eligible
// data-driven effect polls per expanded target itself, below, matching
// spec.md §4.6's "AoE tricks poll Wuxie per target independently."
func buildDataDrivenEffect(name string, cfg config.CardEffectConfig) *CardEffect {
	return &CardEffect{
		Name:        cfg.DisplayName,
		NeedsTarget: cfg.NeedsTarget,
		CanUse: func(d *Duel, player int, targets []*CardInstance) (bool, string) {
			for _, cond := range cfg.Condition {
				if !evalDataCondition(d, player, cond) {
					return false, "condition not met"
				}
			}
			return true, ""
		},
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			ctx := context.Background()
			scope := resolveScope(d, player, cfg.Scope, targets)
			for _, target := range scope {
				if cfg.Wuxie && d.PollWuxie(ctx, player, cfg.DisplayName, target) {
					continue
				}
				healedThisTarget := false
				for _, step := range cfg.Steps {
					if raw, ok := step["log_if_healed"]; ok {
						if tmpl, ok := raw.(string); ok && healedThisTarget {
							d.logMessage(tmpl)
						}
						continue
					}
					healed, err := runDataStep(d, player, target, step)
					if err != nil {
						return err
					}
					healedThisTarget = healedThisTarget || healed
				}
			}
			return nil
		},
	}
}

// resolveScope expands a config scope string into concrete target
// seats. "all_alive_from_player" iterates living players starting from
// the caller clockwise (spec.md §4.3); an empty scope with explicit
// targets uses those targets' owners; no scope and no targets means
// "self".
func resolveScope(d *Duel, player int, scope string, targets []*CardInstance) []int {
	switch scope {
	case "all_alive_from_player":
		return d.State.LivingFrom(player)
	default:
		if len(targets) > 0 {
			seats := make([]int, 0, len(targets))
			for _, t := range targets {
				seats = append(seats, t.Owner)
			}
			return seats
		}
		return []int{player}
	}
}

func evalDataCondition(d *Duel, player int, cond config.StepConfig) bool {
	// Data-driven conditions use their own two-key vocabulary:
	// hp_below_max (shared with the skill DSL's condition predicates in
	// internal/skills) and min_hand (the DSL spells this has_hand_cards);
	// unknown keys default to true, as unknown skill conditions do.
	p := d.State.Players[player]
	if v, ok := cond["hp_below_max"]; ok && toBool(v) {
		return p.HP < p.MaxHP
	}
	if v, ok := cond["min_hand"]; ok {
		return len(p.Hand) >= toInt(v)
	}
	return true
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// runDataStep executes one step node against the given target seat.
// Returns whether the step was a heal that actually healed (feeds
// log_if_healed).
func runDataStep(d *Duel, player, target int, step config.StepConfig) (bool, error) {
	if raw, ok := step["draw"]; ok {
		count, tgt := drawArgs(raw, target)
		p := d.State.Players[tgt]
		for i := 0; i < count; i++ {
			drawn := d.drawCards(tgt, 1)
			if len(drawn) == 0 {
				break
			}
		}
		_ = p
		return false, nil
	}
	if raw, ok := step["heal"]; ok {
		amount, tgt, ifWounded := healArgs(raw, target)
		p := d.State.Players[tgt]
		if ifWounded && p.HP >= p.MaxHP {
			return false, nil
		}
		before := p.HP
		d.healPlayer(tgt, amount)
		return d.State.Players[tgt].HP > before, nil
	}
	if raw, ok := step["log"]; ok {
		if tmpl, ok := raw.(string); ok {
			d.logMessage(tmpl)
		}
		return false, nil
	}
	if _, ok := step["log_if_healed"]; ok {
		// Handled by the caller (Resolve), which logs the template when an
		// earlier heal step healed this target; called directly, this
		// branch does nothing.
		return false, nil
	}
	return false, fmt.Errorf("unknown data-driven step: %v", step)
}

func drawArgs(raw any, defaultTarget int) (count, target int) {
	target = defaultTarget
	switch v := raw.(type) {
	case int:
		return v, target
	case float64:
		return int(v), target
	case map[string]any:
		if c, ok := v["count"]; ok {
			count = toInt(c)
		}
		if t, ok := v["target"].(string); ok && t == "self" {
			target = defaultTarget
		}
		return count, target
	default:
		return 1, target
	}
}

func healArgs(raw any, defaultTarget int) (amount, target int, ifWounded bool) {
	target = defaultTarget
	switch v := raw.(type) {
	case int:
		return v, target, false
	case float64:
		return int(v), target, false
	case map[string]any:
		if a, ok := v["amount"]; ok {
			amount = toInt(a)
		} else {
			amount = 1
		}
		if iw, ok := v["if_wounded"]; ok {
			ifWounded = toBool(iw)
		}
		return amount, target, ifWounded
	default:
		return 1, target, false
	}
}
