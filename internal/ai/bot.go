package ai

import (
	"context"

	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// Bot is a heuristic game.AIBot. Tier names one of the three difficulty
// tiers original_source/ai/strategy.py's AIStrategy implementations
// expose ("easy", "normal", "hard"); it is recorded in every Decision,
// but all tiers run the same heuristics below (every tier saves allies
// with Tao and picks the weakest target in range).
type Bot struct {
	Tier string
	Log  *DecisionLog
}

// New builds a Bot. An empty tier defaults to "normal".
func New(tier string) *Bot {
	if tier == "" {
		tier = "normal"
	}
	return &Bot{Tier: tier, Log: NewDecisionLog(true)}
}

var _ game.AIBot = (*Bot)(nil)

func (b *Bot) log(player int, phase, action, chosen, reason string, candidates ...string) {
	b.Log.Log(Decision{
		Player: player, Tier: b.Tier, Phase: phase,
		Action: action, Chosen: chosen, Reason: reason, Candidates: candidates,
	})
}

func findByName(hand []*game.CardInstance, name string) *game.CardInstance {
	for _, ci := range hand {
		if ci.Card.Name == name {
			return ci
		}
	}
	return nil
}

// PlayPhase drives the bot's entire Play phase: heal self when
// wounded, equip anything unequipped, strike the weakest living target
// in range, then activate any beneficial usable skill, repeating until
// nothing productive is left to do.
func (b *Bot) PlayPhase(ctx context.Context, d *game.Duel, player int) error {
	for {
		p := d.State.Players[player]
		if !p.IsAlive() {
			return nil
		}
		if b.tryHeal(ctx, d, player) {
			continue
		}
		if b.tryEquip(ctx, d, player) {
			continue
		}
		if b.tryWine(ctx, d, player) {
			continue
		}
		if b.tryStrike(ctx, d, player) {
			continue
		}
		if b.trySkill(ctx, d, player) {
			continue
		}
		break
	}
	b.log(player, "play", "end_play", "", "nothing productive left to play")
	return nil
}

func (b *Bot) tryHeal(ctx context.Context, d *game.Duel, player int) bool {
	p := d.State.Players[player]
	if p.HP >= p.MaxHP {
		return false
	}
	if tao := findByName(p.Hand, "Tao"); tao != nil {
		if err := d.UseCard(ctx, player, tao, nil); err == nil {
			b.log(player, "play", "play_card", "Tao", "below max HP")
			return true
		}
	}
	return false
}

func (b *Bot) tryEquip(ctx context.Context, d *game.Duel, player int) bool {
	p := d.State.Players[player]
	for _, ci := range p.Hand {
		if ci.Card.CardType != game.CardEquipment {
			continue
		}
		if err := d.UseCard(ctx, player, ci, nil); err == nil {
			b.log(player, "play", "equip", ci.Card.Name, "unequipped slot available")
			return true
		}
	}
	return false
}

// chooseStrikeTarget picks the lowest-HP other living seat within the
// bot's current weapon range, breaking ties by clockwise order from the
// bot's own seat for determinism.
func (b *Bot) chooseStrikeTarget(d *game.Duel, player int) (int, bool) {
	best, found := -1, false
	p := d.State.Players[player]
	for _, seat := range d.State.LivingFrom(player) {
		if seat == player {
			continue
		}
		if d.State.Distance(player, seat) > p.Equipment.WeaponRange() {
			continue
		}
		if !found || d.State.Players[seat].HP < d.State.Players[best].HP {
			best, found = seat, true
		}
	}
	return best, found
}

// tryWine drinks a held Jiu right before striking, so the very next
// Sha this phase lands for 2 instead of 1; skipped if no Sha is also
// in hand, since an unpaired Wine flag just expires unused at Prepare.
func (b *Bot) tryWine(ctx context.Context, d *game.Duel, player int) bool {
	p := d.State.Players[player]
	if p.Flags.WineEffectActive {
		return false
	}
	if findByName(p.Hand, "Sha") == nil {
		return false
	}
	jiu := findByName(p.Hand, "Jiu")
	if jiu == nil {
		return false
	}
	if _, ok := b.chooseStrikeTarget(d, player); !ok {
		return false
	}
	if err := d.UseCard(ctx, player, jiu, nil); err != nil {
		return false
	}
	b.log(player, "play", "play_card", "Jiu", "arming next strike before attacking")
	return true
}

func (b *Bot) tryStrike(ctx context.Context, d *game.Duel, player int) bool {
	p := d.State.Players[player]
	sha := findByName(p.Hand, "Sha")
	if sha == nil {
		return false
	}
	target, ok := b.chooseStrikeTarget(d, player)
	if !ok {
		return false
	}
	err := d.UseCard(ctx, player, sha, []*game.CardInstance{game.TargetMarker(target)})
	if err != nil {
		return false
	}
	b.log(player, "play", "play_card", "Sha", "weakest target in range")
	return true
}

// trySkill activates the first usable skill for whom the bot has a
// sensible default target (self for the ones the current skill
// catalog wires up).
func (b *Bot) trySkill(ctx context.Context, d *game.Duel, player int) bool {
	for _, a := range d.LegalActions(player) {
		if a.Type != game.ActionActivateSkill {
			continue
		}
		if err := d.ActivateSkill(ctx, player, a.Skill, nil); err == nil {
			b.log(player, "play", "activate_skill", a.Skill, "usable this phase")
			return true
		}
	}
	return false
}

// ChooseAction is the generic fallback the engine would use if a Bot
// were ever driven through the UI-style loop instead of PlayPhase; kept
// simple since PlayPhase is always preferred for an AIBot.
func (b *Bot) ChooseAction(ctx context.Context, d *game.Duel, player int, actions []game.Action) (game.Action, error) {
	for _, a := range actions {
		if a.Type == game.ActionPlayCard && (a.Card.Card.Name == "Sha" || a.Card.Card.Name == "Tao") {
			return a, nil
		}
	}
	return game.Action{Type: game.ActionEndPlay}, nil
}

func (b *Bot) ChooseCards(ctx context.Context, d *game.Duel, player int, prompt string, candidates []*game.CardInstance, min, max int) ([]*game.CardInstance, error) {
	n := min
	if n == 0 {
		n = 1
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n], nil
}

func (b *Bot) ChooseYesNo(ctx context.Context, d *game.Duel, player int, prompt string) (bool, error) {
	// Default to declining optional prompts (e.g. Guicai's judgment
	// replacement) unless the bot is at or below half HP, in which
	// case a free reroll is worth the hand card.
	p := d.State.Players[player]
	return p.HP*2 <= p.MaxHP, nil
}

func (b *Bot) ChooseTarget(ctx context.Context, d *game.Duel, player int, candidates []int, prompt string) (int, bool, error) {
	if len(candidates) == 0 {
		return 0, false, nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if d.State.Players[c].HP < d.State.Players[best].HP {
			best = c
		}
	}
	return best, true, nil
}

func (b *Bot) ChooseSuit(ctx context.Context, d *game.Duel, player int) (game.Suit, error) {
	return game.Spade, nil
}

func (b *Bot) AskForShan(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	if c := findByName(d.State.Players[player].Hand, "Shan"); c != nil {
		return c, true, nil
	}
	return nil, false, nil
}

func (b *Bot) AskForSha(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	if c := findByName(d.State.Players[player].Hand, "Sha"); c != nil {
		return c, true, nil
	}
	return nil, false, nil
}

// AskForTao saves whenever a Tao is in hand and the dying player
// shares the savior's faction (or is the savior), mirroring how a
// faction-aware original strategy would weigh an otherwise-free rescue
// against handing an opponent a free turn.
func (b *Bot) AskForTao(ctx context.Context, d *game.Duel, savior, dying int) (*game.CardInstance, bool, error) {
	p := d.State.Players[savior]
	tao := findByName(p.Hand, "Tao")
	if tao == nil {
		return nil, false, nil
	}
	ally := dying == savior || d.State.Players[dying].Identity.Faction() == p.Identity.Faction()
	if !ally {
		return nil, false, nil
	}
	return tao, true, nil
}

// AskForWuxie only nullifies tricks aimed at the responder itself,
// keeping the heuristic simple and its effect local and predictable.
func (b *Bot) AskForWuxie(ctx context.Context, d *game.Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*game.CardInstance, bool, error) {
	if currentlyCancelled || target != responder {
		return nil, false, nil
	}
	if c := findByName(d.State.Players[responder].Hand, "Wuxiekeji"); c != nil {
		return c, true, nil
	}
	return nil, false, nil
}

// ChooseCardFromPlayer picks the highest-value card available on
// target: its equipped weapon first (denying range/damage), otherwise
// the first hand card, otherwise its armor; all deterministic tie-breaks.
func (b *Bot) ChooseCardFromPlayer(ctx context.Context, d *game.Duel, chooser, target int) (*game.CardInstance, bool, error) {
	tp := d.State.Players[target]
	if tp.Equipment.Weapon != nil {
		return tp.Equipment.Weapon, true, nil
	}
	if len(tp.Hand) > 0 {
		return tp.Hand[0], true, nil
	}
	if tp.Equipment.Armor != nil {
		return tp.Equipment.Armor, true, nil
	}
	return nil, false, nil
}

func (b *Bot) ChooseCardsToDiscard(ctx context.Context, d *game.Duel, player, count int) ([]*game.CardInstance, error) {
	return b.ChooseDiscard(ctx, d, player, count)
}

// ChooseDiscard keeps Sha/Tao/Shan and discards everything else first,
// falling back to hand order once only those staples remain.
func (b *Bot) ChooseDiscard(ctx context.Context, d *game.Duel, player, count int) ([]*game.CardInstance, error) {
	hand := d.State.Players[player].Hand
	if count > len(hand) {
		count = len(hand)
	}
	staple := map[string]bool{"Sha": true, "Tao": true, "Shan": true}
	var ranked []*game.CardInstance
	for _, ci := range hand {
		if !staple[ci.Card.Name] {
			ranked = append(ranked, ci)
		}
	}
	for _, ci := range hand {
		if staple[ci.Card.Name] {
			ranked = append(ranked, ci)
		}
	}
	return ranked[:count], nil
}

// GuanxingSelection is unused by the current skill catalog (no
// hero wires up a look-at-the-deck-top skill yet); the identity
// mapping here (everything stays on top, in order) is a safe default
// if one ever does.
func (b *Bot) GuanxingSelection(ctx context.Context, d *game.Duel, player int, cards []*game.CardInstance) ([]*game.CardInstance, []*game.CardInstance, error) {
	return cards, nil, nil
}

func (b *Bot) Notify(ctx context.Context, d *game.Duel, e *events.Event) error {
	return nil
}

func (b *Bot) ShowLog(ctx context.Context, d *game.Duel, message string) error {
	return nil
}

// ShouldUseQinglong decides whether to immediately chain a second Sha
// after Qinglong Yanyuedao grants one: only when another Sha is in hand
// and the target is still alive and in range.
func (b *Bot) ShouldUseQinglong(ctx context.Context, d *game.Duel, player, target int) bool {
	if !d.State.Players[target].IsAlive() {
		return false
	}
	if d.State.Distance(player, target) > d.State.Players[player].Equipment.WeaponRange() {
		return false
	}
	return findByName(d.State.Players[player].Hand, "Sha") != nil
}
