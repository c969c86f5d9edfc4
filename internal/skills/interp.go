// Package skills implements the engine's skill DSL interpreter (spec.md
// §4.4): a recursive walk over condition/cost/step records deserialized
// once from config.SkillDSLConfig, coexisting with hand-written skill
// handlers of the same shape as the teacher's closure-based CardEffect.
// Grounded on original_source/game/skill_dsl.py's closed VALID_*
// vocabularies and original_source/game/skill_interpreter.py /
// skill_resolver.py's condition/cost/step dispatch shape.
package skills

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/engerr"
	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// HandlerFunc is a hand-written skill, matching the source's
// Python-equivalent `(player, engine, **context)` functions.
type HandlerFunc func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error

// Fallthrough is the sentinel a DSL step evaluator never returns but a
// hand-written handler may, signalling "defer to nothing else" — kept
// as a named error so a skill id can be unambiguous per spec.md §4.4
// ("no implicit fallthrough").
var Fallthrough = fmt.Errorf("skill fallthrough")

// Interpreter is the engine's SkillRouter implementation (internal/game
// declares the interface to avoid an import cycle; this package depends
// on game, not the reverse).
type Interpreter struct {
	dsl         map[string]config.SkillDSLConfig
	handwritten map[string]HandlerFunc
	// uses tracks per-turn skill activations, keyed "seat/skillID".
	uses map[string]int
}

func New(dsl map[string]config.SkillDSLConfig, handwritten map[string]HandlerFunc) *Interpreter {
	if dsl == nil {
		dsl = map[string]config.SkillDSLConfig{}
	}
	if handwritten == nil {
		handwritten = map[string]HandlerFunc{}
	}
	return &Interpreter{dsl: dsl, handwritten: handwritten, uses: map[string]int{}}
}

func key(player int, skillID string) string { return fmt.Sprintf("%d/%s", player, skillID) }

// ResetTurnLimits clears a player's per-turn skill-use counters, called
// from Prepare phase.
func (in *Interpreter) ResetTurnLimits(player int) {
	for id := range in.dsl {
		delete(in.uses, key(player, id))
	}
}

// HasSkill reports whether a player's hero lists the given skill id,
// regardless of trigger type — used by the combat subsystem for
// passive bypass flags (Paoxiao's unlimited Sha, Wushuang's forced
// double dodge) rather than UsableSkills, which enumerates only
// currently-activatable active skills.
func (in *Interpreter) HasSkill(d *game.Duel, player int, skillID string) bool {
	for _, id := range in.heroSkillIDs(d, player) {
		if id == skillID {
			return true
		}
	}
	return false
}

// UsableSkills returns every active-trigger skill id the player's hero
// has that currently satisfies its condition list and per-turn limit —
// the set legalActions offers as an ActivateSkill choice.
func (in *Interpreter) UsableSkills(d *game.Duel, player int) []string {
	var out []string
	for _, id := range in.heroSkillIDs(d, player) {
		rec, ok := in.dsl[id]
		if !ok || rec.Trigger != "active" {
			continue
		}
		if rec.Limit > 0 && in.uses[key(player, id)] >= rec.Limit {
			continue
		}
		if in.evalConditions(d, player, rec.Condition) {
			out = append(out, id)
		}
	}
	return out
}

func (in *Interpreter) heroSkillIDs(d *game.Duel, player int) []string {
	p := d.State.Players[player]
	if p.Hero == nil {
		return nil
	}
	return p.Hero.Skills
}

// Activate runs a skill by id for player against targets: pays its cost
// list (aborting before any step runs if a cost precondition fails),
// then executes its step list. DSL definitions are preferred when both
// a DSL record and a hand-written handler exist for the same id.
func (in *Interpreter) Activate(ctx context.Context, d *game.Duel, player int, skillID string, targets []*game.CardInstance) error {
	if rec, ok := in.dsl[skillID]; ok {
		if rec.Limit > 0 && in.uses[key(player, skillID)] >= rec.Limit {
			return engerr.New(engerr.SkillUsageLimit, "skill use limit reached this turn")
		}
		target := -1
		if len(targets) > 0 {
			target = targets[0].Owner
		}
		if !in.evalConditionsFor(d, player, target, rec.Condition) {
			return engerr.New(engerr.SkillCondition, "skill condition not met")
		}
		if err := in.payCosts(ctx, d, player, rec.Cost); err != nil {
			return err
		}
		in.uses[key(player, skillID)]++
		return in.runSteps(ctx, d, player, targets, rec.Steps)
	}
	if h, ok := in.handwritten[skillID]; ok {
		err := h(ctx, d, player, targets)
		if err == Fallthrough {
			return engerr.New(engerr.SkillNotFound, "skill fell through with no further handler")
		}
		return err
	}
	return engerr.New(engerr.SkillNotFound, fmt.Sprintf("unknown skill %q", skillID))
}

// TriggerAll routes a skill-relevant event to every living player with
// a matching-triggered skill, in deterministic order: source-first for
// reactive triggers (so the affected player's own skills see the event
// before bystanders'), seat order otherwise.
func (in *Interpreter) TriggerAll(ctx context.Context, d *game.Duel, kind events.Kind, e *events.Event) {
	trigger := string(kind)
	order := in.triggerOrder(d, e)
	for _, seat := range order {
		if !d.State.Players[seat].IsAlive() {
			continue
		}
		for _, id := range in.heroSkillIDs(d, seat) {
			rec, ok := in.dsl[id]
			if !ok || rec.Trigger != trigger {
				continue
			}
			if rec.Limit > 0 && in.uses[key(seat, id)] >= rec.Limit {
				continue
			}
			if !in.evalConditions(d, seat, rec.Condition) {
				continue
			}
			in.uses[key(seat, id)]++
			if err := in.runSteps(ctx, d, seat, nil, rec.Steps); err != nil {
				log.Error().Err(err).Str("skill", id).Int("player", seat).Msg("triggered skill step failed")
			}
		}
	}
}

// MaybeReplaceJudgment invokes the "guicai" hand-written handler if the
// player's hero has that skill id; any other hero is unaffected. Errors
// from the handler are logged, not propagated, matching spec.md's Open
// Questions resolution: "a UI declining the replacement (ChooseYesNo
// returns false, or ChooseCards returns none) just means the skill
// wasn't used, not a failure."
func (in *Interpreter) MaybeReplaceJudgment(ctx context.Context, d *game.Duel, player int) {
	if !in.HasSkill(d, player, "guicai") {
		return
	}
	h, ok := in.handwritten["guicai"]
	if !ok {
		return
	}
	if err := h(ctx, d, player, nil); err != nil && err != Fallthrough {
		log.Error().Err(err).Int("player", player).Msg("guicai handler failed")
	}
}

// triggerOrder puts the event's own player/source seat first (if
// present in the payload), then the remaining seats in ascending order.
func (in *Interpreter) triggerOrder(d *game.Duel, e *events.Event) []int {
	n := len(d.State.Players)
	first := -1
	if v, ok := e.Get("player"); ok {
		if seat, ok := v.(int); ok {
			first = seat
		}
	} else if v, ok := e.Get("source"); ok {
		if seat, ok := v.(int); ok {
			first = seat
		}
	}
	out := make([]int, 0, n)
	if first >= 0 {
		out = append(out, first)
	}
	for s := 0; s < n; s++ {
		if s != first {
			out = append(out, s)
		}
	}
	return out
}
