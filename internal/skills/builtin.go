package skills

import (
	"context"

	"github.com/sanguosha/engine/internal/game"
)

// BuiltinHandlers returns the engine's hand-written skill handlers,
// keyed by skill id, for skills whose logic doesn't fit the DSL's
// declarative step vocabulary (spec.md §4.4's "hand-written handlers
// coexist with DSL records; DSL is preferred when both exist for the
// same id" — these ids have no DSL counterpart at all). Grounded on the
// teacher's closure-based CardEffect handlers (internal/game/effect.go)
// applied to skills instead of cards.
func BuiltinHandlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"guicai": guicaiEffect,
	}
}

// guicaiEffect lets the skill's owner replace another player's judgment
// card, in place, with a card from hand, before it is revealed.
// MaybeReplaceJudgment calls this with d.State.CurrentJudgmentCard set
// to the card under judgment; the handler is free to leave it untouched.
func guicaiEffect(ctx context.Context, d *game.Duel, player int, _ []*game.CardInstance) error {
	jc := d.State.CurrentJudgmentCard
	if jc == nil {
		return nil
	}
	ctrl := d.Controller(player)
	use, err := ctrl.ChooseYesNo(ctx, d, player, "Use Guicai to replace this judgment card with one from your hand?")
	if err != nil || !use {
		return nil
	}
	hand := d.State.Players[player].Hand
	if len(hand) == 0 {
		return nil
	}
	chosen, err := ctrl.ChooseCards(ctx, d, player, "Choose a card to replace the judgment card", hand, 1, 1)
	if err != nil || len(chosen) == 0 {
		return nil
	}
	replacement := chosen[0]
	d.State.Players[player].RemoveFromHand(replacement)
	d.State.Deck.DiscardCards(jc)
	replacement.Location = game.LocJudgment
	replacement.Owner = -1
	d.State.CurrentJudgmentCard = replacement
	return nil
}
