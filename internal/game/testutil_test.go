package game

import (
	"context"

	"github.com/sanguosha/engine/internal/events"
)

// scriptedController is a PlayerController that follows a predefined
// script of actions, falling back to safe defaults (end play, decline
// every prompt) once the script is exhausted. Generalized from the
// teacher's testutil_test.go ScriptedController to this engine's N-player
// PlayerController surface and Sanguosha's prompt vocabulary.
type scriptedController struct {
	actions []Action
	pos     int

	// shanAnswers/shaAnswers/taoAnswers/wuxieAnswers let a test script a
	// reactive prompt's card instance directly (by pointer) rather than
	// by name, since AskForX hands back whichever *CardInstance the
	// controller chooses to spend.
	shanAnswers  []*CardInstance
	shanPos      int
	shaAnswers   []*CardInstance
	shaPos       int
	taoAnswers   []*CardInstance
	taoPos       int
	wuxieAnswers []*CardInstance
	wuxiePos     int

	targets []int // ChooseTarget answers, consumed in order
	tgtPos  int

	yesNo    []bool
	yesNoPos int
}

func newScriptedController(actions ...Action) *scriptedController {
	return &scriptedController{actions: actions}
}

func (sc *scriptedController) ChooseAction(ctx context.Context, d *Duel, player int, actions []Action) (Action, error) {
	if sc.pos >= len(sc.actions) {
		return Action{Type: ActionEndPlay}, nil
	}
	want := sc.actions[sc.pos]
	for _, a := range actions {
		if a.Type != want.Type {
			continue
		}
		if want.Type == ActionPlayCard {
			if a.Card == nil || want.Card == nil || a.Card.Card.Name != want.Card.Card.Name {
				continue
			}
		}
		if want.Type == ActionActivateSkill && a.Skill != want.Skill {
			continue
		}
		sc.pos++
		a.Target = want.Target
		return a, nil
	}
	return Action{Type: ActionEndPlay}, nil
}

func (sc *scriptedController) ChooseCards(ctx context.Context, d *Duel, player int, prompt string, candidates []*CardInstance, min, max int) ([]*CardInstance, error) {
	if min > len(candidates) {
		min = len(candidates)
	}
	return candidates[:min], nil
}

func (sc *scriptedController) ChooseYesNo(ctx context.Context, d *Duel, player int, prompt string) (bool, error) {
	if sc.yesNoPos >= len(sc.yesNo) {
		return false, nil
	}
	a := sc.yesNo[sc.yesNoPos]
	sc.yesNoPos++
	return a, nil
}

func (sc *scriptedController) ChooseTarget(ctx context.Context, d *Duel, player int, candidates []int, prompt string) (int, bool, error) {
	if sc.tgtPos >= len(sc.targets) || len(candidates) == 0 {
		return 0, false, nil
	}
	t := sc.targets[sc.tgtPos]
	sc.tgtPos++
	return t, true, nil
}

func (sc *scriptedController) ChooseSuit(ctx context.Context, d *Duel, player int) (Suit, error) {
	return Spade, nil
}

func (sc *scriptedController) AskForShan(ctx context.Context, d *Duel, player int) (*CardInstance, bool, error) {
	if sc.shanPos >= len(sc.shanAnswers) {
		return nil, false, nil
	}
	c := sc.shanAnswers[sc.shanPos]
	sc.shanPos++
	return c, c != nil, nil
}

func (sc *scriptedController) AskForSha(ctx context.Context, d *Duel, player int) (*CardInstance, bool, error) {
	if sc.shaPos >= len(sc.shaAnswers) {
		return nil, false, nil
	}
	c := sc.shaAnswers[sc.shaPos]
	sc.shaPos++
	return c, c != nil, nil
}

func (sc *scriptedController) AskForTao(ctx context.Context, d *Duel, savior, dying int) (*CardInstance, bool, error) {
	if sc.taoPos >= len(sc.taoAnswers) {
		return nil, false, nil
	}
	c := sc.taoAnswers[sc.taoPos]
	sc.taoPos++
	return c, c != nil, nil
}

func (sc *scriptedController) AskForWuxie(ctx context.Context, d *Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*CardInstance, bool, error) {
	if sc.wuxiePos >= len(sc.wuxieAnswers) {
		return nil, false, nil
	}
	c := sc.wuxieAnswers[sc.wuxiePos]
	sc.wuxiePos++
	return c, c != nil, nil
}

func (sc *scriptedController) ChooseCardFromPlayer(ctx context.Context, d *Duel, chooser, target int) (*CardInstance, bool, error) {
	hand := d.State.Players[target].Hand
	if len(hand) == 0 {
		return nil, false, nil
	}
	return hand[0], true, nil
}

func (sc *scriptedController) ChooseCardsToDiscard(ctx context.Context, d *Duel, player, count int) ([]*CardInstance, error) {
	hand := d.State.Players[player].Hand
	if count > len(hand) {
		count = len(hand)
	}
	return hand[:count], nil
}

func (sc *scriptedController) GuanxingSelection(ctx context.Context, d *Duel, player int, cards []*CardInstance) ([]*CardInstance, []*CardInstance, error) {
	return cards, nil, nil
}

func (sc *scriptedController) Notify(ctx context.Context, d *Duel, e *events.Event) error { return nil }
func (sc *scriptedController) ShowLog(ctx context.Context, d *Duel, message string) error { return nil }

// noopSkills is a SkillRouter that never grants a skill and never
// short-circuits anything, standing in for internal/skills.Interpreter
// in tests that don't exercise the DSL.
type noopSkills struct{}

func (noopSkills) TriggerAll(ctx context.Context, d *Duel, kind events.Kind, e *events.Event) {}
func (noopSkills) UsableSkills(d *Duel, player int) []string                                  { return nil }
func (noopSkills) HasSkill(d *Duel, player int, skillID string) bool                          { return false }
func (noopSkills) Activate(ctx context.Context, d *Duel, player int, skillID string, targets []*CardInstance) error {
	return nil
}
func (noopSkills) ResetTurnLimits(player int)                         {}
func (noopSkills) MaybeReplaceJudgment(ctx context.Context, d *Duel, player int) {}

// testHero is a minimal Hero fixture; tests that care about HP pass
// their own maxHP.
func testHero(name string, maxHP int) *Hero {
	return &Hero{Name: name, Faction: "qun", MaxHP: maxHP}
}

func testCard(name string, ct CardType, sub Subtype, suit Suit, point int) *Card {
	return &Card{Name: name, CardType: ct, Subtype: sub, Suit: suit, Point: point}
}

// newTestDuel builds a Duel with a caller-supplied, fully deterministic
// card pool (no reliance on cards_builtin's 78-card catalog) and
// scripted/noop controllers, mirroring the teacher's runDuelToCompletion
// helper narrowed to direct construction rather than a full Run loop.
func newTestDuel(seed int64, heroes []*Hero, pool []*Card, controllers []PlayerController) *Duel {
	cfg := DuelConfig{
		Seed:        seed,
		PlayerCount: len(heroes),
		Heroes:      heroes,
		CardPool:    pool,
		MaxTurns:    50,
	}
	return NewDuel(cfg, controllers, noopSkills{})
}

// fillerPool pads out a deck with plain Wine cards so DrawN never runs
// dry mid-test; Wine has no reactive effect that could interfere with a
// scripted scenario.
func fillerPool(n int) []*Card {
	out := make([]*Card, n)
	for i := range out {
		out[i] = testCard("Jiu", CardBasic, SubWine, Spade, 2)
	}
	return out
}
