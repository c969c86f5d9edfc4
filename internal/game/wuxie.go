package game

import "context"

// PollWuxie implements the nullification chain of spec.md §4.6: every
// living player holding a Wuxie card is offered it, in deterministic
// order (current active player clockwise), and each play toggles the
// cancelled state and reopens polling (nested Wuxie is legal) until a
// full round passes with no one playing. AoE tricks call this once per
// target independently (the AoE effect's Resolve loops the seats), so a
// Wuxie on one target never nullifies the effect on another.
//
// Grounded on the teacher's chain.go (startChain/addToChain/
// resolveChain LIFO) and timing.go's openResponseWindow
// alternating-priority poll; the teacher's ExecSpeed gate becomes "must
// hold a Wuxie card" since Sanguosha has no speed-tiered response
// system.
func (d *Duel) PollWuxie(ctx context.Context, source int, trickName string, target int) bool {
	cancelled := false
	order := d.State.LivingFrom(d.State.TurnPlayer)
	for {
		playedThisRound := false
		for _, seat := range order {
			if !d.State.Players[seat].IsAlive() {
				continue
			}
			if !d.hasWuxie(seat) {
				continue
			}
			card, yes, err := d.controller(seat).AskForWuxie(ctx, d, seat, trickName, source, target, cancelled)
			if err != nil || !yes || card == nil {
				continue
			}
			d.State.Players[seat].RemoveFromHand(card)
			d.State.Deck.DiscardCards(card)
			cancelled = !cancelled
			playedThisRound = true
			d.publish(ctx, EvCardUsed, map[string]any{"player": seat, "card": card.Card.Name})
		}
		if !playedThisRound {
			break
		}
	}
	return cancelled
}

func (d *Duel) hasWuxie(seat int) bool {
	for _, ci := range d.State.Players[seat].Hand {
		if ci.Card.Subtype == SubCounter {
			return true
		}
	}
	return false
}
