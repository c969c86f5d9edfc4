package mcp

import (
	"context"
	"fmt"

	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// MCPController implements game.PlayerController by posting a
// PendingDecision to the session's channel and blocking on its own
// response channel until an MCP tool call supplies an answer.
type MCPController struct {
	player     int
	session    *GameSession
	responseCh chan SelectionResponse
}

func newMCPController(player int, session *GameSession) *MCPController {
	return &MCPController{player: player, session: session, responseCh: make(chan SelectionResponse)}
}

var _ game.PlayerController = (*MCPController)(nil)

// ask posts a decision and blocks for its answer's option indices.
func (c *MCPController) ask(typ DecisionType, prompt string, options []OptionView, min, max int) []int {
	c.session.pendingCh <- &PendingDecision{Type: typ, Prompt: prompt, Options: options, Min: min, Max: max}
	resp := <-c.responseCh
	return resp.Indices
}

func cardOptions(cards []*game.CardInstance) []OptionView {
	out := make([]OptionView, len(cards))
	for i, ci := range cards {
		out[i] = OptionView{Index: i, Label: ci.Card.Name}
	}
	return out
}

func (c *MCPController) ChooseAction(ctx context.Context, d *game.Duel, player int, actions []game.Action) (game.Action, error) {
	opts := make([]OptionView, len(actions))
	for i, a := range actions {
		opts[i] = OptionView{Index: i, Label: a.String()}
	}
	idx := c.ask(DecisionChooseAction, "choose an action", opts, 1, 1)
	if len(idx) == 0 || idx[0] < 0 || idx[0] >= len(actions) {
		return game.Action{Type: game.ActionEndPlay}, nil
	}
	return actions[idx[0]], nil
}

func (c *MCPController) ChooseCards(ctx context.Context, d *game.Duel, player int, prompt string, candidates []*game.CardInstance, min, max int) ([]*game.CardInstance, error) {
	idx := c.ask(DecisionChooseCards, prompt, cardOptions(candidates), min, max)
	out := make([]*game.CardInstance, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(candidates) {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

func (c *MCPController) ChooseYesNo(ctx context.Context, d *game.Duel, player int, prompt string) (bool, error) {
	idx := c.ask(DecisionYesNo, prompt, nil, 0, 1)
	return len(idx) > 0, nil
}

func (c *MCPController) ChooseTarget(ctx context.Context, d *game.Duel, player int, candidates []int, prompt string) (int, bool, error) {
	opts := make([]OptionView, len(candidates))
	for i, seat := range candidates {
		p := d.State.Players[seat]
		opts[i] = OptionView{Index: i, Label: fmt.Sprintf("seat %d (%s, HP %d/%d)", seat, p.Hero.Name, p.HP, p.MaxHP)}
	}
	idx := c.ask(DecisionChooseCards, prompt, opts, 0, 1)
	if len(idx) == 0 || idx[0] < 0 || idx[0] >= len(candidates) {
		return 0, false, nil
	}
	return candidates[idx[0]], true, nil
}

func (c *MCPController) ChooseSuit(ctx context.Context, d *game.Duel, player int) (game.Suit, error) {
	suits := []game.Suit{game.Spade, game.Heart, game.Club, game.Diamond}
	opts := make([]OptionView, len(suits))
	for i, s := range suits {
		opts[i] = OptionView{Index: i, Label: s.String()}
	}
	idx := c.ask(DecisionChooseCards, "name a suit", opts, 1, 1)
	if len(idx) == 0 || idx[0] < 0 || idx[0] >= len(suits) {
		return game.Spade, nil
	}
	return suits[idx[0]], nil
}

// askForNamedCard offers to play the first hand card matching name, or
// skips the round-trip entirely when the controller has none (an empty
// options list would just always be declined).
func (c *MCPController) askForNamedCard(d *game.Duel, player int, name, prompt string) (*game.CardInstance, bool) {
	var match *game.CardInstance
	for _, ci := range d.State.Players[player].Hand {
		if ci.Card.Name == name {
			match = ci
			break
		}
	}
	if match == nil {
		return nil, false
	}
	idx := c.ask(DecisionChooseCards, prompt, cardOptions([]*game.CardInstance{match}), 0, 1)
	if len(idx) == 0 {
		return nil, false
	}
	return match, true
}

func (c *MCPController) AskForShan(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	card, ok := c.askForNamedCard(d, player, "Shan", "dodge the attack with Shan?")
	return card, ok, nil
}

func (c *MCPController) AskForSha(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	card, ok := c.askForNamedCard(d, player, "Sha", "respond with Sha?")
	return card, ok, nil
}

func (c *MCPController) AskForTao(ctx context.Context, d *game.Duel, savior, dying int) (*game.CardInstance, bool, error) {
	prompt := fmt.Sprintf("use Tao to save seat %d?", dying)
	card, ok := c.askForNamedCard(d, savior, "Tao", prompt)
	return card, ok, nil
}

func (c *MCPController) AskForWuxie(ctx context.Context, d *game.Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*game.CardInstance, bool, error) {
	prompt := fmt.Sprintf("nullify %s (from seat %d targeting seat %d, currently cancelled=%v)?", trick, source, target, currentlyCancelled)
	card, ok := c.askForNamedCard(d, responder, "Wuxiekeji", prompt)
	return card, ok, nil
}

func (c *MCPController) ChooseCardFromPlayer(ctx context.Context, d *game.Duel, chooser, target int) (*game.CardInstance, bool, error) {
	tp := d.State.Players[target]
	var pool []*game.CardInstance
	pool = append(pool, tp.Hand...)
	for _, eq := range []*game.CardInstance{tp.Equipment.Weapon, tp.Equipment.Armor, tp.Equipment.OffensiveHorse, tp.Equipment.DefensiveHorse} {
		if eq != nil {
			pool = append(pool, eq)
		}
	}
	if len(pool) == 0 {
		return nil, false, nil
	}
	idx := c.ask(DecisionChooseCards, fmt.Sprintf("choose a card from seat %d", target), cardOptions(pool), 1, 1)
	if len(idx) == 0 || idx[0] < 0 || idx[0] >= len(pool) {
		return pool[0], true, nil
	}
	return pool[idx[0]], true, nil
}

func (c *MCPController) ChooseCardsToDiscard(ctx context.Context, d *game.Duel, player, count int) ([]*game.CardInstance, error) {
	hand := d.State.Players[player].Hand
	idx := c.ask(DecisionChooseCards, fmt.Sprintf("discard %d card(s)", count), cardOptions(hand), count, count)
	out := make([]*game.CardInstance, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(hand) {
			out = append(out, hand[i])
		}
	}
	return out, nil
}

// GuanxingSelection is unused by the current skill catalog (no hero
// wires up a look-at-the-deck-top skill); kept as an identity default
// consistent with ai.Bot's implementation of the same method.
func (c *MCPController) GuanxingSelection(ctx context.Context, d *game.Duel, player int, cards []*game.CardInstance) ([]*game.CardInstance, []*game.CardInstance, error) {
	return cards, nil, nil
}

func (c *MCPController) Notify(ctx context.Context, d *game.Duel, e *events.Event) error {
	c.session.appendLog(eventSummary(e))
	return nil
}

func (c *MCPController) ShowLog(ctx context.Context, d *game.Duel, message string) error {
	c.session.appendLog(message)
	return nil
}
