package skills

import (
	"context"

	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// stubController is a minimal game.PlayerController that declines every
// prompt; the Activate/TriggerAll/cost/step tests in this package drive
// state directly rather than through a play loop, so no prompt in this
// stub is expected to actually fire.
type stubController struct{}

func (stubController) ChooseAction(ctx context.Context, d *game.Duel, player int, actions []game.Action) (game.Action, error) {
	return game.Action{Type: game.ActionEndPlay}, nil
}
func (stubController) ChooseCards(ctx context.Context, d *game.Duel, player int, prompt string, candidates []*game.CardInstance, min, max int) ([]*game.CardInstance, error) {
	if min > len(candidates) {
		min = len(candidates)
	}
	return candidates[:min], nil
}
func (stubController) ChooseYesNo(ctx context.Context, d *game.Duel, player int, prompt string) (bool, error) {
	return false, nil
}
func (stubController) ChooseTarget(ctx context.Context, d *game.Duel, player int, candidates []int, prompt string) (int, bool, error) {
	return 0, false, nil
}
func (stubController) ChooseSuit(ctx context.Context, d *game.Duel, player int) (game.Suit, error) {
	return game.Spade, nil
}
func (stubController) AskForShan(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	return nil, false, nil
}
func (stubController) AskForSha(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	return nil, false, nil
}
func (stubController) AskForTao(ctx context.Context, d *game.Duel, savior, dying int) (*game.CardInstance, bool, error) {
	return nil, false, nil
}
func (stubController) AskForWuxie(ctx context.Context, d *game.Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*game.CardInstance, bool, error) {
	return nil, false, nil
}
func (stubController) ChooseCardFromPlayer(ctx context.Context, d *game.Duel, chooser, target int) (*game.CardInstance, bool, error) {
	return nil, false, nil
}
func (stubController) ChooseCardsToDiscard(ctx context.Context, d *game.Duel, player, count int) ([]*game.CardInstance, error) {
	return nil, nil
}
func (stubController) GuanxingSelection(ctx context.Context, d *game.Duel, player int, cards []*game.CardInstance) ([]*game.CardInstance, []*game.CardInstance, error) {
	return cards, nil, nil
}
func (stubController) Notify(ctx context.Context, d *game.Duel, e *events.Event) error { return nil }
func (stubController) ShowLog(ctx context.Context, d *game.Duel, message string) error { return nil }

// newSkillTestDuel builds a 2-player Duel with the Interpreter under
// construction installed as its SkillRouter, so Activate/TriggerAll run
// through the real Prepare-phase wiring (ResetTurnLimits etc.) rather
// than a fake. in may be nil; callers that only need player/card state
// can pass nil and never call an Interpreter method.
func newSkillTestDuel(in *Interpreter, heroes ...*game.Hero) *game.Duel {
	pool := make([]*game.Card, 40)
	for i := range pool {
		pool[i] = &game.Card{Name: "Jiu", CardType: game.CardBasic, Subtype: game.SubWine, Suit: game.Spade, Point: 2}
	}
	cfg := game.DuelConfig{
		Seed:        1,
		PlayerCount: len(heroes),
		Heroes:      heroes,
		CardPool:    pool,
		MaxTurns:    10,
	}
	controllers := make([]game.PlayerController, len(heroes))
	for i := range controllers {
		controllers[i] = stubController{}
	}
	var router game.SkillRouter
	if in != nil {
		router = in
	} else {
		router = New(nil, nil)
	}
	return game.NewDuel(cfg, controllers, router)
}

func testHero(name string, maxHP int, skills ...string) *game.Hero {
	return &game.Hero{Name: name, Faction: "qun", MaxHP: maxHP, Skills: skills}
}

func testCard(name string, ct game.CardType, sub game.Subtype, suit game.Suit, point int) *game.Card {
	return &game.Card{Name: name, CardType: ct, Subtype: sub, Suit: suit, Point: point}
}
