package skills

import (
	"context"
	"fmt"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
)

// runSteps executes an ordered step list against player, with targets
// carrying any card/player selection already made (e.g. by Activate's
// caller). self is always player; "target" in a step's target field
// resolves to targets[0]'s owner when present, else player.
func (in *Interpreter) runSteps(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance, steps []config.StepConfig) error {
	target := player
	if len(targets) > 0 {
		target = targets[0].Owner
	}
	_, err := in.runStepsWithTarget(ctx, d, player, target, steps)
	return err
}

// runStepsWithTarget returns whether the final step in the list was a
// heal that actually healed (every current caller ignores this), and
// any error from a step.
func (in *Interpreter) runStepsWithTarget(ctx context.Context, d *game.Duel, player, target int, steps []config.StepConfig) (bool, error) {
	lastHealed := false
	for _, step := range steps {
		healed, err := in.runStep(ctx, d, player, target, step)
		if err != nil {
			return false, err
		}
		lastHealed = healed
	}
	return lastHealed, nil
}

func (in *Interpreter) runStep(ctx context.Context, d *game.Duel, player, target int, step config.StepConfig) (bool, error) {
	if v, ok := step["draw"]; ok {
		count, tgt := countAndTarget(v, player, target)
		d.DrawCards(tgt, count)
		return false, nil
	}
	if v, ok := step["heal"]; ok {
		amount, tgt, ifWounded := healFields(v, player, target)
		p := d.State.Players[tgt]
		if ifWounded && p.HP >= p.MaxHP {
			return false, nil
		}
		before := p.HP
		d.HealPlayer(tgt, amount)
		return d.State.Players[tgt].HP > before, nil
	}
	if v, ok := step["damage"]; ok {
		amount, tgt, dtype := damageFields(v, player, target)
		return false, d.DealDamage(ctx, player, tgt, amount, dtype)
	}
	if v, ok := step["lose_hp"]; ok {
		amount := fieldInt(v, "amount", 1)
		d.State.Players[player].HP -= amount
		return false, nil
	}
	if v, ok := step["transfer"]; ok {
		return false, in.runTransfer(d, player, target, v)
	}
	if v, ok := step["judge"]; ok {
		return false, in.runJudge(ctx, d, player, target, v)
	}
	if v, ok := step["discard"]; ok {
		return false, in.runDiscard(ctx, d, player, target, v)
	}
	if _, ok := step["flip"]; ok {
		d.State.Players[player].IsChained = !d.State.Players[player].IsChained
		return false, nil
	}
	if v, ok := step["log"]; ok {
		if tmpl, ok := v.(string); ok {
			d.LogMessage(tmpl)
		}
		return false, nil
	}
	if v, ok := step["skip_phase"]; ok {
		phaseName, _ := v.(string)
		applySkipPhase(d, player, phaseName)
		return false, nil
	}
	if v, ok := step["if"]; ok {
		return false, in.runIf(ctx, d, player, target, v)
	}
	if _, ok := step["get_card"]; ok {
		// get_card pulls a designated card (damage_card / source /
		// discard_pile) into the player's hand; without a live
		// "current damage card" context this degenerates to drawing
		// from the top of the discard pile when present.
		if len(d.State.Deck.Discard) > 0 {
			ci := d.State.Deck.Discard[len(d.State.Deck.Discard)-1]
			d.State.Deck.Discard = d.State.Deck.Discard[:len(d.State.Deck.Discard)-1]
			d.State.Players[player].AddToHand(ci)
		}
		return false, nil
	}
	return false, fmt.Errorf("unknown skill step: %v", step)
}

func countAndTarget(v any, self, target int) (int, int) {
	switch t := v.(type) {
	case int:
		return t, self
	case float64:
		return int(t), self
	case map[string]any:
		count := 1
		if c, ok := t["count"]; ok {
			count = fieldInt(c, "count", 1)
		}
		tgt := resolveTargetRef(t["target"], self, target)
		return count, tgt
	default:
		return 1, self
	}
}

func healFields(v any, self, target int) (amount, tgt int, ifWounded bool) {
	tgt = self
	switch t := v.(type) {
	case int:
		return t, self, false
	case float64:
		return int(t), self, false
	case map[string]any:
		amount = 1
		if a, ok := t["amount"]; ok {
			amount = fieldInt(a, "amount", 1)
		}
		tgt = resolveTargetRef(t["target"], self, target)
		if iw, ok := t["if_wounded"]; ok {
			ifWounded, _ = iw.(bool)
		}
		return amount, tgt, ifWounded
	default:
		return 1, self, false
	}
}

func damageFields(v any, self, target int) (amount, tgt int, dtype game.DamageType) {
	tgt = target
	amount = 1
	dtype = game.DamageNormal
	m, ok := v.(map[string]any)
	if !ok {
		return amount, tgt, dtype
	}
	if a, ok := m["amount"]; ok {
		amount = fieldInt(a, "amount", 1)
	}
	tgt = resolveTargetRef(m["target"], self, target)
	if t, ok := m["type"].(string); ok {
		switch t {
		case "fire":
			dtype = game.DamageFire
		case "thunder":
			dtype = game.DamageThunder
		}
	}
	return amount, tgt, dtype
}

func resolveTargetRef(raw any, self, target int) int {
	ref, _ := raw.(string)
	switch ref {
	case "target":
		return target
	case "source", "self", "":
		return self
	default:
		return self
	}
}

func (in *Interpreter) runTransfer(d *game.Duel, player, target int, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	from := resolveTargetRef(m["from"], player, target)
	to := resolveTargetRef(m["to"], player, target)
	count := 1
	if c, ok := m["cards"]; ok {
		count = fieldInt(c, "cards", 1)
	}
	fp := d.State.Players[from]
	n := count
	if n > len(fp.Hand) {
		n = len(fp.Hand)
	}
	moved := append([]*game.CardInstance(nil), fp.Hand[:n]...)
	for _, ci := range moved {
		fp.RemoveFromHand(ci)
		d.State.Players[to].AddToHand(ci)
	}
	return nil
}

func (in *Interpreter) runJudge(ctx context.Context, d *game.Duel, player, target int, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	cards := d.State.Deck.DrawN(1, d.State.Rng)
	if len(cards) == 0 {
		return nil
	}
	jc := cards[0]
	defer d.State.Deck.DiscardCards(jc)

	success := evalSuccessIf(jc.Card, m["success_if"])
	var branch any
	if success {
		branch = m["success"]
	} else {
		branch = m["fail"]
	}
	steps, err := toStepConfigList(branch)
	if err != nil {
		return nil
	}
	_, err = in.runStepsWithTarget(ctx, d, player, target, steps)
	return err
}

func evalSuccessIf(card *game.Card, raw any) bool {
	cond, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	if suit, ok := cond["suit"].(string); ok {
		if !suitMatches(card.Suit, suit) {
			return false
		}
	}
	if v, ok := cond["point_gte"]; ok && card.Point < fieldInt(v, "point_gte", 0) {
		return false
	}
	if v, ok := cond["point_lte"]; ok && card.Point > fieldInt(v, "point_lte", 13) {
		return false
	}
	return true
}

func suitMatches(suit game.Suit, name string) bool {
	switch name {
	case "red":
		return suit.IsRed()
	case "black":
		return suit.IsBlack()
	case "spade":
		return suit == game.Spade
	case "heart":
		return suit == game.Heart
	case "club":
		return suit == game.Club
	case "diamond":
		return suit == game.Diamond
	default:
		return false
	}
}

func toStepConfigList(raw any) ([]config.StepConfig, error) {
	list, ok := raw.([]any)
	if !ok {
		if sc, ok := raw.([]config.StepConfig); ok {
			return sc, nil
		}
		return nil, fmt.Errorf("not a step list")
	}
	out := make([]config.StepConfig, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, config.StepConfig(m))
		}
	}
	return out, nil
}

func (in *Interpreter) runDiscard(ctx context.Context, d *game.Duel, player, target int, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	count := 1
	if c, ok := m["count"]; ok {
		count = fieldInt(c, "count", 1)
	}
	who := resolveTargetRef(m["player"], player, target)
	p := d.State.Players[who]
	n := count
	if n > len(p.Hand) {
		n = len(p.Hand)
	}
	toDiscard := append([]*game.CardInstance(nil), p.Hand[:n]...)
	for _, ci := range toDiscard {
		p.RemoveFromHand(ci)
		d.State.Deck.DiscardCards(ci)
	}
	return nil
}

func applySkipPhase(d *game.Duel, player int, phase string) {
	p := d.State.Players[player]
	switch phase {
	case "draw", "Draw":
		p.Flags.SkipDraw = true
	case "play", "Play":
		p.Flags.SkipPlay = true
	case "discard", "Discard":
		p.Flags.SkipDiscard = true
	}
}

func (in *Interpreter) runIf(ctx context.Context, d *game.Duel, player, target int, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	condList, _ := toStepConfigList(m["cond"])
	branch := m["then"]
	if !in.evalConditionsFor(d, player, target, condList) {
		branch = m["else"]
	}
	steps, err := toStepConfigList(branch)
	if err != nil {
		return nil
	}
	_, err = in.runStepsWithTarget(ctx, d, player, target, steps)
	return err
}
