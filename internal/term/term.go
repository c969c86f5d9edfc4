// Package term implements a plain-text terminal game.PlayerController,
// grounded on the teacher's cmd/tcgx-cli (bufio/fmt prompt-and-scan
// loop, no TUI library — the example pack carries none, so stdlib I/O
// is the idiomatic choice here rather than a gap to fill with a
// dependency).
package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// Controller drives one seat from a terminal: prompts are written to
// out, answers read line-by-line from in.
type Controller struct {
	player int
	in     *bufio.Scanner
	out    io.Writer
}

func New(player int, in io.Reader, out io.Writer) *Controller {
	return &Controller{player: player, in: bufio.NewScanner(in), out: out}
}

var _ game.PlayerController = (*Controller)(nil)

func (c *Controller) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }

// readLine blocks for one line of input, returning "" on EOF so a
// piped/non-interactive session degrades to "always decline" instead
// of hanging.
func (c *Controller) readLine() string {
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *Controller) readIndices(max int) []int {
	line := c.readLine()
	if line == "" {
		return nil
	}
	var out []int
	for _, f := range strings.Fields(line) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n >= max {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (c *Controller) ChooseAction(ctx context.Context, d *game.Duel, player int, actions []game.Action) (game.Action, error) {
	c.printf("-- your turn, seat %d --\n", player)
	for i, a := range actions {
		c.printf("  [%d] %s\n", i, a.String())
	}
	c.printf("choose an action (number): ")
	idx := c.readIndices(len(actions))
	if len(idx) == 0 {
		return game.Action{Type: game.ActionEndPlay}, nil
	}
	return actions[idx[0]], nil
}

func (c *Controller) ChooseCards(ctx context.Context, d *game.Duel, player int, prompt string, candidates []*game.CardInstance, min, max int) ([]*game.CardInstance, error) {
	c.printf("%s (select %d-%d)\n", prompt, min, max)
	for i, ci := range candidates {
		c.printf("  [%d] %s\n", i, ci.Card.Name)
	}
	c.printf("indices: ")
	idx := c.readIndices(len(candidates))
	out := make([]*game.CardInstance, 0, len(idx))
	for _, i := range idx {
		out = append(out, candidates[i])
	}
	return out, nil
}

func (c *Controller) ChooseYesNo(ctx context.Context, d *game.Duel, player int, prompt string) (bool, error) {
	c.printf("%s [y/N]: ", prompt)
	line := strings.ToLower(c.readLine())
	return line == "y" || line == "yes", nil
}

func (c *Controller) ChooseTarget(ctx context.Context, d *game.Duel, player int, candidates []int, prompt string) (int, bool, error) {
	c.printf("%s\n", prompt)
	for i, seat := range candidates {
		p := d.State.Players[seat]
		c.printf("  [%d] seat %d (%s, HP %d/%d)\n", i, seat, p.Hero.Name, p.HP, p.MaxHP)
	}
	c.printf("target: ")
	idx := c.readIndices(len(candidates))
	if len(idx) == 0 {
		return 0, false, nil
	}
	return candidates[idx[0]], true, nil
}

func (c *Controller) ChooseSuit(ctx context.Context, d *game.Duel, player int) (game.Suit, error) {
	suits := []game.Suit{game.Spade, game.Heart, game.Club, game.Diamond}
	c.printf("name a suit: [0] Spade [1] Heart [2] Club [3] Diamond: ")
	idx := c.readIndices(len(suits))
	if len(idx) == 0 {
		return game.Spade, nil
	}
	return suits[idx[0]], nil
}

func (c *Controller) askForNamed(d *game.Duel, player int, name, prompt string) (*game.CardInstance, bool) {
	for _, ci := range d.State.Players[player].Hand {
		if ci.Card.Name == name {
			ok, _ := c.ChooseYesNo(context.Background(), d, player, prompt)
			if ok {
				return ci, true
			}
			return nil, false
		}
	}
	return nil, false
}

func (c *Controller) AskForShan(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	card, ok := c.askForNamed(d, player, "Shan", "dodge with Shan?")
	return card, ok, nil
}

func (c *Controller) AskForSha(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	card, ok := c.askForNamed(d, player, "Sha", "respond with Sha?")
	return card, ok, nil
}

func (c *Controller) AskForTao(ctx context.Context, d *game.Duel, savior, dying int) (*game.CardInstance, bool, error) {
	card, ok := c.askForNamed(d, savior, "Tao", fmt.Sprintf("use Tao to save seat %d?", dying))
	return card, ok, nil
}

func (c *Controller) AskForWuxie(ctx context.Context, d *game.Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*game.CardInstance, bool, error) {
	prompt := fmt.Sprintf("nullify %s (seat %d -> seat %d)?", trick, source, target)
	card, ok := c.askForNamed(d, responder, "Wuxiekeji", prompt)
	return card, ok, nil
}

func (c *Controller) ChooseCardFromPlayer(ctx context.Context, d *game.Duel, chooser, target int) (*game.CardInstance, bool, error) {
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
	c.printf("choose a card from seat %d:\n", target)
	for i, ci := range pool {
		c.printf("  [%d] %s\n", i, ci.Card.Name)
	}
	c.printf("index: ")
	idx := c.readIndices(len(pool))
	if len(idx) == 0 {
		return pool[0], true, nil
	}
	return pool[idx[0]], true, nil
}

func (c *Controller) ChooseCardsToDiscard(ctx context.Context, d *game.Duel, player, count int) ([]*game.CardInstance, error) {
	hand := d.State.Players[player].Hand
	return c.ChooseCards(ctx, d, player, fmt.Sprintf("discard %d card(s)", count), hand, count, count)
}

func (c *Controller) GuanxingSelection(ctx context.Context, d *game.Duel, player int, cards []*game.CardInstance) ([]*game.CardInstance, []*game.CardInstance, error) {
	return cards, nil, nil
}

func (c *Controller) Notify(ctx context.Context, d *game.Duel, e *events.Event) error {
	c.printf("* %s %v\n", e.Kind, e.Payload)
	return nil
}

func (c *Controller) ShowLog(ctx context.Context, d *game.Duel, message string) error {
	c.printf("%s\n", message)
	return nil
}
