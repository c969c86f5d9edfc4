package skills

import (
	"context"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/engerr"
	"github.com/sanguosha/engine/internal/game"
)

// payCosts pays every cost in order; a cost whose precondition fails
// (insufficient cards, would drop hp to 0) aborts before any step runs
// and before any earlier cost in the list is paid — costs are validated
// as a whole before any of them mutate state, matching spec.md §4.4
// ("A cost whose precondition fails...aborts the skill use before any
// step runs").
func (in *Interpreter) payCosts(ctx context.Context, d *game.Duel, player int, costs []config.StepConfig) error {
	p := d.State.Players[player]
	for _, c := range costs {
		if v, ok := c["discard"]; ok {
			count := fieldInt(v, "count", 1)
			if len(p.Hand) < count {
				return engerr.New(engerr.InsufficientCards, "not enough cards to pay discard cost")
			}
		}
		if v, ok := c["lose_hp"]; ok {
			amount := fieldInt(v, "amount", 1)
			if p.HP-amount <= 0 {
				return engerr.New(engerr.InsufficientCards, "cost would reduce hp to 0")
			}
		}
	}
	for _, c := range costs {
		if v, ok := c["discard"]; ok {
			count := fieldInt(v, "count", 1)
			toDiscard := p.Hand[:count]
			for _, ci := range toDiscard {
				p.RemoveFromHand(ci)
				d.State.Deck.DiscardCards(ci)
			}
		}
		if v, ok := c["lose_hp"]; ok {
			amount := fieldInt(v, "amount", 1)
			p.HP -= amount
		}
	}
	return nil
}
