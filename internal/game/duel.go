package game

import (
	"context"
	"fmt"
	"time"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/engerr"
	"github.com/sanguosha/engine/internal/events"
)

// PlayerController is the UI capability the engine consumes (spec.md
// §6). Every "ask_for_X"/"choose_*" call blocks the engine logically;
// timeouts are the caller's responsibility to enforce and surface as a
// "no/default" response, matching §6's "each call blocks the engine
// logically; timeouts yield a no/default response." Grounded directly
// on the teacher's duel.go PlayerController interface
// (ChooseAction/ChooseCards/ChooseYesNo/Notify), expanded to the full
// capability list spec.md names.
type PlayerController interface {
	ChooseAction(ctx context.Context, d *Duel, player int, actions []Action) (Action, error)
	ChooseCards(ctx context.Context, d *Duel, player int, prompt string, candidates []*CardInstance, min, max int) ([]*CardInstance, error)
	ChooseYesNo(ctx context.Context, d *Duel, player int, prompt string) (bool, error)
	ChooseTarget(ctx context.Context, d *Duel, player int, candidates []int, prompt string) (int, bool, error)
	ChooseSuit(ctx context.Context, d *Duel, player int) (Suit, error)
	AskForShan(ctx context.Context, d *Duel, player int) (*CardInstance, bool, error)
	AskForSha(ctx context.Context, d *Duel, player int) (*CardInstance, bool, error)
	AskForTao(ctx context.Context, d *Duel, savior, dying int) (*CardInstance, bool, error)
	AskForWuxie(ctx context.Context, d *Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*CardInstance, bool, error)
	ChooseCardFromPlayer(ctx context.Context, d *Duel, chooser, target int) (*CardInstance, bool, error)
	ChooseCardsToDiscard(ctx context.Context, d *Duel, player, count int) ([]*CardInstance, error)
	GuanxingSelection(ctx context.Context, d *Duel, player int, cards []*CardInstance) (top, bottom []*CardInstance, err error)
	Notify(ctx context.Context, d *Duel, e *events.Event) error
	ShowLog(ctx context.Context, d *Duel, message string) error
}

// AIBot is the AI capability (spec.md §6): the engine invokes these for
// AI-controlled players instead of UI prompts during the Play phase. An
// AIBot also implements PlayerController, since reactive prompts
// (ask_for_shan, ask_for_wuxie, ...) can happen on any player's turn,
// AI-controlled or not.
type AIBot interface {
	PlayerController
	PlayPhase(ctx context.Context, d *Duel, player int) error
	ChooseDiscard(ctx context.Context, d *Duel, player, count int) ([]*CardInstance, error)
	ShouldUseQinglong(ctx context.Context, d *Duel, player, target int) bool
}

// DuelConfig configures a single duel. Seed drives the one RNG every
// stochastic decision in the engine routes through (deck shuffles,
// reshuffles); omitting it is a caller error for any run expected to be
// reproducible.
type DuelConfig struct {
	Seed        int64
	PlayerCount int
	Heroes      []*Hero
	CardPool    []*Card // one Card value per physical card in the deck
	GameData    *config.GameData
	MaxTurns    int // 0 = unbounded
}

// Duel is the per-match facade: owns GameState, the card-effect
// registry, the skill interpreter, and coordinates the turn loop.
// Equivalent in role to the teacher's Duel struct (owns *GameState,
// runs Run/runTurn), restructured for N players and Sanguosha phases.
type Duel struct {
	State       *GameState
	controllers []PlayerController
	registry    *registry
	skills      SkillRouter
	actionLog   []ActionLogEntry
	maxTurns    int
	result      string
}

// SkillRouter is implemented by internal/skills.Interpreter; declared
// here to avoid an import cycle (skills imports game for types).
type SkillRouter interface {
	TriggerAll(ctx context.Context, d *Duel, kind events.Kind, e *events.Event)
	UsableSkills(d *Duel, player int) []string
	HasSkill(d *Duel, player int, skillID string) bool
	Activate(ctx context.Context, d *Duel, player int, skillID string, targets []*CardInstance) error
	ResetTurnLimits(player int)
	// MaybeReplaceJudgment gives a hand-written skill (e.g. Guicai) the
	// chance to swap d.State.CurrentJudgmentCard for a hand card before
	// it is revealed; a no-op for players without such a skill.
	MaybeReplaceJudgment(ctx context.Context, d *Duel, player int)
}

// ActionLogEntry is one replayable record, per spec.md §3/§4.9.
type ActionLogEntry struct {
	Seq       int
	Kind      string
	PlayerID  int
	Timestamp int64
	Data      map[string]any
}

func NewDuel(cfg DuelConfig, controllers []PlayerController, skills SkillRouter) *Duel {
	n := cfg.PlayerCount
	lord, loyalist, rebel, spy := IdentityTable(n)
	identities := make([]Identity, 0, n)
	for i := 0; i < lord; i++ {
		identities = append(identities, IdentityLord)
	}
	for i := 0; i < loyalist; i++ {
		identities = append(identities, IdentityLoyalist)
	}
	for i := 0; i < rebel; i++ {
		identities = append(identities, IdentityRebel)
	}
	for i := 0; i < spy; i++ {
		identities = append(identities, IdentitySpy)
	}

	players := make([]*Player, n)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer(i, identities[i], cfg.Heroes[i])
	}

	deck := &Deck{}
	gs := NewGameState(cfg.Seed, players, deck)
	for _, c := range cfg.CardPool {
		deck.Draw = append(deck.Draw, gs.NewCardInstance(c))
	}
	// Initial shuffle uses the same seeded generator as all subsequent
	// reshuffles, so the whole run is a pure function of the seed.
	shuffleInPlace(deck.Draw, gs.Rng)

	d := &Duel{
		State:       gs,
		controllers: controllers,
		registry:    buildRegistry(cfg.GameData),
		skills:      skills,
		maxTurns:    cfg.MaxTurns,
	}
	return d
}

func shuffleInPlace(cards []*CardInstance, rng interface{ Intn(int) int }) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

func (d *Duel) controller(player int) PlayerController { return d.controllers[player] }

// Controller exposes a seat's PlayerController to packages outside game
// (the skills package's hand-written handlers, e.g. Guicai) that need to
// prompt a player directly rather than through a DSL step.
func (d *Duel) Controller(player int) PlayerController { return d.controllers[player] }

// Run executes the duel to completion (win condition reached, or
// MaxTurns exceeded), returning the winning faction name.
func (d *Duel) Run(ctx context.Context) (string, error) {
	d.publish(ctx, EvGameStart, nil)
	d.State.TurnPlayer = 0
	for {
		if d.maxTurns > 0 && d.State.Turn >= d.maxTurns {
			d.result = "draw: max turns reached"
			return "", nil
		}
		if winner, identity, over := CheckWin(d.State); over {
			d.State.Winner = winner
			d.State.WinnerIdentity = identity
			d.publish(ctx, EvGameEnd, map[string]any{"winner": winner})
			return winner, nil
		}
		d.State.Turn++
		if err := d.runTurn(ctx, d.State.TurnPlayer); err != nil {
			return "", err
		}
		if winner, identity, over := CheckWin(d.State); over {
			d.State.Winner = winner
			d.State.WinnerIdentity = identity
			d.publish(ctx, EvGameEnd, map[string]any{"winner": winner})
			return winner, nil
		}
		d.State.TurnPlayer = d.nextLivingSeat(d.State.TurnPlayer)
	}
}

func (d *Duel) nextLivingSeat(from int) int {
	n := len(d.State.Players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if d.State.Players[seat].IsAlive() {
			return seat
		}
	}
	return from
}

// runTurn drives one player's turn through all six phases in order,
// ending early if the turn player dies mid-turn (spec.md §4.7).
func (d *Duel) runTurn(ctx context.Context, player int) error {
	d.State.Phase = PhasePrepare
	d.publish(ctx, EvTurnStart, map[string]any{"player": player, "turn": d.State.Turn})

	if err := d.preparePhase(ctx, player); err != nil || !d.State.Players[player].IsAlive() {
		return finishTurn(d, ctx, player, err)
	}
	d.State.Transition(PhaseJudge)
	if err := d.judgePhase(ctx, player); err != nil || !d.State.Players[player].IsAlive() {
		return finishTurn(d, ctx, player, err)
	}
	d.State.Transition(PhaseDraw)
	if err := d.drawPhase(ctx, player); err != nil || !d.State.Players[player].IsAlive() {
		return finishTurn(d, ctx, player, err)
	}
	d.State.Transition(PhasePlay)
	if err := d.playPhase(ctx, player); err != nil || !d.State.Players[player].IsAlive() {
		return finishTurn(d, ctx, player, err)
	}
	d.State.Transition(PhaseDiscard)
	if err := d.discardPhase(ctx, player); err != nil || !d.State.Players[player].IsAlive() {
		return finishTurn(d, ctx, player, err)
	}
	d.State.Transition(PhaseEnd)
	if err := d.endPhase(ctx, player); err != nil {
		return err
	}
	d.publish(ctx, EvTurnEnd, map[string]any{"player": player})
	return nil
}

func finishTurn(d *Duel, ctx context.Context, player int, err error) error {
	d.publish(ctx, EvTurnEnd, map[string]any{"player": player, "cut_short": true})
	return err
}

func (d *Duel) preparePhase(ctx context.Context, player int) error {
	p := d.State.Players[player]
	p.Flags = Flags{}
	d.skills.ResetTurnLimits(player)
	d.skills.TriggerAll(ctx, d, "phase_prepare", events.New("phase_prepare", map[string]any{"player": player}))
	return nil
}

func (d *Duel) judgePhase(ctx context.Context, player int) error {
	p := d.State.Players[player]
	for len(p.Judgment) > 0 {
		jc := p.Judgment[0]
		p.Judgment = p.Judgment[1:]
		d.State.CurrentJudgmentCard = jc
		d.skills.MaybeReplaceJudgment(ctx, d, player)
		jc = d.State.CurrentJudgmentCard
		d.State.CurrentJudgmentCard = nil
		judgeCard := d.drawJudgmentCard(player)
		eff, _ := d.registry.lookup(jc.Card.Name)
		d.publish(ctx, EvJudgeStart, map[string]any{"player": player, "card": jc.Card.Name})
		success := eff != nil && eff.JudgeSuccess != nil && judgeCard != nil && eff.JudgeSuccess(judgeCard.Card)
		d.publish(ctx, EvJudgeResult, map[string]any{"player": player, "success": success})
		if judgeCard != nil {
			d.State.Deck.DiscardCards(judgeCard)
		}
		if success && eff.OnJudgeSuccess != nil {
			if err := eff.OnJudgeSuccess(d, player); err != nil {
				return err
			}
		}
		d.State.Deck.DiscardCards(jc)
		if !p.IsAlive() {
			return nil
		}
	}
	return nil
}

// drawJudgmentCard draws one card for a judgment test without adding it
// to the player's hand.
func (d *Duel) drawJudgmentCard(player int) *CardInstance {
	drawn := d.State.Deck.DrawN(1, d.State.Rng)
	d.appendLog("judge_draw", player, nil)
	if len(drawn) == 0 {
		return nil
	}
	return drawn[0]
}

func (d *Duel) drawPhase(ctx context.Context, player int) error {
	p := d.State.Players[player]
	if p.Flags.SkipDraw {
		return nil
	}
	d.drawCards(player, 2)
	d.skills.TriggerAll(ctx, d, "phase_draw", events.New("phase_draw", map[string]any{"player": player}))
	return nil
}

// drawCards draws n cards into a player's hand, logging and publishing
// CardDrawn per card, and is the single path skills/effects use to
// grant draws so the action log stays complete.
func (d *Duel) drawCards(player, n int) []*CardInstance {
	drawn := d.State.Deck.DrawN(n, d.State.Rng)
	p := d.State.Players[player]
	for _, c := range drawn {
		p.AddToHand(c)
		d.publish(context.Background(), EvCardDrawn, map[string]any{"player": player, "card": c.Card.Name})
	}
	d.appendLog("draw", player, map[string]any{"count": len(drawn)})
	return drawn
}

func (d *Duel) playPhase(ctx context.Context, player int) error {
	p := d.State.Players[player]
	if p.Flags.SkipPlay {
		return nil
	}
	if bot, ok := d.controller(player).(AIBot); ok {
		return bot.PlayPhase(ctx, d, player)
	}
	for p.IsAlive() {
		actions := d.legalActions(player)
		actions = append(actions, Action{Type: ActionEndPlay})
		chosen, err := d.controller(player).ChooseAction(ctx, d, player, actions)
		if err != nil {
			return err
		}
		if chosen.Type == ActionEndPlay {
			break
		}
		if err := d.applyAction(ctx, player, chosen); err != nil {
			var de *engerr.DomainError
			if _, ok := err.(*engerr.DomainError); ok {
				_ = de
				continue // illegal action: log entry, re-prompt
			}
			return err
		}
		if !p.IsAlive() {
			break
		}
	}
	return nil
}

func (d *Duel) applyAction(ctx context.Context, player int, a Action) error {
	switch a.Type {
	case ActionPlayCard:
		return d.UseCard(ctx, player, a.Card, a.Target)
	case ActionActivateSkill:
		return d.skills.Activate(ctx, d, player, a.Skill, a.Target)
	default:
		return nil
	}
}

// legalActions enumerates every card in hand with a registered effect
// whose CanUse (if any) passes before targets are chosen, plus any
// currently usable skill. Equipment cards are always "legal" to play
// (they just re-equip).
func (d *Duel) legalActions(player int) []Action {
	var out []Action
	p := d.State.Players[player]
	for _, ci := range p.Hand {
		eff, ok := d.registry.lookup(ci.Card.Name)
		if !ok {
			continue
		}
		if eff.CanUse != nil {
			if ok, _ := eff.CanUse(d, player, nil); !ok {
				continue
			}
		}
		out = append(out, Action{Type: ActionPlayCard, Card: ci})
	}
	for _, skillID := range d.skills.UsableSkills(d, player) {
		out = append(out, Action{Type: ActionActivateSkill, Skill: skillID})
	}
	return out
}

func (d *Duel) discardPhase(ctx context.Context, player int) error {
	p := d.State.Players[player]
	if p.Flags.SkipDiscard {
		return nil
	}
	excess := len(p.Hand) - p.HP
	if excess <= 0 {
		return nil
	}
	toDiscard, err := d.controller(player).ChooseCardsToDiscard(ctx, d, player, excess)
	if err != nil {
		return err
	}
	for _, c := range toDiscard {
		p.RemoveFromHand(c)
		d.State.Deck.DiscardCards(c)
		d.publish(ctx, EvCardDiscarded, map[string]any{"player": player, "card": c.Card.Name})
	}
	return nil
}

func (d *Duel) endPhase(ctx context.Context, player int) error {
	d.skills.TriggerAll(ctx, d, "phase_end", events.New("phase_end", map[string]any{"player": player}))
	d.State.Players[player].Flags = Flags{}
	return nil
}

// UseCard is the card resolution contract from spec.md §4.3.
func (d *Duel) UseCard(ctx context.Context, player int, card *CardInstance, targets []*CardInstance) error {
	eff, ok := d.registry.lookup(card.Card.Name)
	if !ok {
		return engerr.New(engerr.InvalidAction, fmt.Sprintf("no effect registered for %s", card.Card.Name))
	}
	if eff.NeedsTarget && len(targets) == 0 {
		return engerr.New(engerr.InvalidTarget, "card requires a target")
	}
	if eff.CanUse != nil {
		if ok, reason := eff.CanUse(d, player, targets); !ok {
			return engerr.New(engerr.InvalidAction, reason)
		}
	}

	p := d.State.Players[player]
	p.RemoveFromHand(card)
	card.Location = LocInFlight

	usingEvt := events.New(EvCardUsing, map[string]any{"player": player, "card": card.Card.Name})
	d.State.Bus.Publish(ctx, usingEvt)
	if usingEvt.Cancelled() {
		p.AddToHand(card)
		return nil
	}

	if eff.IsDelayedJudgment {
		card.Location = LocJudgment
		target := player
		if len(targets) > 0 {
			target = targets[0].Owner
		}
		d.State.Players[target].Judgment = append(d.State.Players[target].Judgment, card)
	} else {
		if eff.Wuxie && len(targets) > 0 {
			var resolvedTargets []*CardInstance
			for _, t := range targets {
				cancelled := d.PollWuxie(ctx, player, card.Card.Name, t.Owner)
				if !cancelled {
					resolvedTargets = append(resolvedTargets, t)
				}
			}
			if len(resolvedTargets) == 0 && len(targets) > 0 {
				targets = nil
			} else {
				targets = resolvedTargets
			}
		}
		if targets != nil || !eff.NeedsTarget {
			if err := eff.Resolve(d, player, card, targets); err != nil {
				return err
			}
		}
		if card.Card.CardType == CardEquipment {
			d.equip(player, card)
		} else {
			d.State.Deck.DiscardCards(card)
		}
	}

	d.appendLog("use_card", player, map[string]any{"card": card.Card.Name})
	d.publish(ctx, EvCardUsed, map[string]any{"player": player, "card": card.Card.Name})
	if card.Card.Name == "Sha" && d.skills != nil {
		d.skills.TriggerAll(ctx, d, "on_use_sha", eventFor("on_use_sha", map[string]any{"player": player}))
	}
	return nil
}

func (d *Duel) equip(player int, card *CardInstance) {
	p := d.State.Players[player]
	slot := p.Equipment.slotFor(card.Card.Subtype)
	if slot == nil {
		d.State.Deck.DiscardCards(card)
		return
	}
	if *slot != nil {
		old := *slot
		old.Location = LocDiscard
		d.State.Deck.DiscardCards(old)
	}
	card.Location = LocEquipment
	*slot = card
}

// DrawCards is the exported form of drawCards, used by the skill
// interpreter's `draw` step so skill-granted draws stay on the same
// logged/published path as phase draws.
func (d *Duel) DrawCards(player, n int) []*CardInstance { return d.drawCards(player, n) }

// HealPlayer is the exported form of healPlayer, used by the skill
// interpreter's `heal` step.
func (d *Duel) HealPlayer(player, amount int) { d.healPlayer(player, amount) }

// LogMessage is the exported form of logMessage, used by the skill
// interpreter's `log` step.
func (d *Duel) LogMessage(msg string) { d.logMessage(msg) }

// LegalActions is the exported form of legalActions, for callers
// outside the package (AI bots, terminal UIs) that drive their own
// play-phase loop instead of delegating to Duel.playPhase's default
// ChooseAction prompt.
func (d *Duel) LegalActions(player int) []Action { return d.legalActions(player) }

// ActivateSkill is the exported form of the skill-activation path
// applyAction takes for ActionActivateSkill, for callers building
// Actions directly rather than going through applyAction.
func (d *Duel) ActivateSkill(ctx context.Context, player int, skillID string, targets []*CardInstance) error {
	return d.skills.Activate(ctx, d, player, skillID, targets)
}

// TargetMarker builds a CardInstance whose only meaningful field is
// Owner: every effect and skill step that reads a target off
// []*CardInstance (UseCard, ActivateSkill) does so purely through
// target.Owner, never the instance's Card or InstanceID. Controllers
// that pick a target by seat rather than by a card already in play use
// this to build the target list those calls expect.
func TargetMarker(seat int) *CardInstance { return &CardInstance{Owner: seat, Location: LocInFlight} }

func (d *Duel) healPlayer(player, amount int) {
	p := d.State.Players[player]
	before := p.HP
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	if p.HP != before {
		d.publish(context.Background(), EvHPChanged, map[string]any{"player": player, "delta": p.HP - before})
	}
}

func (d *Duel) logMessage(msg string) {
	d.publish(context.Background(), EvLogMessage, map[string]any{"message": msg})
}

// eventFor builds a standalone event for skill-trigger routing that
// isn't itself published on the bus (the underlying bus event was
// already published by the caller); reusing events.Event just gives the
// skill interpreter the same Get/payload shape everywhere.
func eventFor(kind events.Kind, payload map[string]any) *events.Event {
	return events.New(kind, payload)
}

func (d *Duel) publish(ctx context.Context, kind events.Kind, payload map[string]any) *events.Event {
	e := events.New(kind, payload)
	d.State.Bus.Publish(ctx, e)
	for _, c := range d.controllers {
		_ = c.Notify(ctx, d, e)
	}
	return e
}

func (d *Duel) appendLog(kind string, player int, data map[string]any) {
	d.actionLog = append(d.actionLog, ActionLogEntry{
		Seq:       len(d.actionLog) + 1,
		Kind:      kind,
		PlayerID:  player,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	})
}

func (d *Duel) ActionLog() []ActionLogEntry { return d.actionLog }
func (d *Duel) Result() string              { return d.result }
