package game

import (
	"math/rand"

	"github.com/sanguosha/engine/internal/events"
)

// Equipment holds the four named slots, mutually exclusive by subtype.
type Equipment struct {
	Weapon         *CardInstance
	Armor          *CardInstance
	OffensiveHorse *CardInstance
	DefensiveHorse *CardInstance
}

func (e *Equipment) slotFor(sub Subtype) **CardInstance {
	switch sub {
	case SubWeapon:
		return &e.Weapon
	case SubArmor:
		return &e.Armor
	case SubOffensiveHorse:
		return &e.OffensiveHorse
	case SubDefensiveHorse:
		return &e.DefensiveHorse
	default:
		return nil
	}
}

// WeaponRange returns the attack range granted by the equipped weapon,
// defaulting to 1 when no weapon is equipped.
func (e *Equipment) WeaponRange() int {
	if e.Weapon == nil {
		return 1
	}
	if r, ok := weaponRanges[e.Weapon.Card.Name]; ok {
		return r
	}
	return 1
}

// weaponRanges maps weapon card names to their attack range. Populated
// by the builtin card registry at init time.
var weaponRanges = map[string]int{}

// Flags are transient per-turn player state, reset at Prepare.
type Flags struct {
	StrikesUsed     int
	WineEffectActive bool
	SkipDraw        bool
	SkipPlay        bool
	SkipDiscard     bool
}

// Player is one seat's full state. Equivalent in role to the teacher's
// Player struct, restructured around Sanguosha's hand/equipment/judgment
// zones instead of field zones.
type Player struct {
	Seat     int
	Identity Identity
	Hero     *Hero
	HP       int
	MaxHP    int

	Hand      []*CardInstance
	Equipment Equipment
	Judgment  []*CardInstance // ordered, first-in-first-resolved

	Flags Flags

	// IsChained persists across turns (unlike Flags, which resets every
	// Prepare) until removed by fire/thunder damage or a Sha discard.
	IsChained bool

	// IdentityRevealed is true once the seat's identity card is flipped
	// face up (the Lord's always is; others flip on death or self-reveal).
	IdentityRevealed bool

	// SkillLimits tracks per-turn uses of a limited skill, keyed by
	// skill id, reset at Prepare.
	SkillLimits map[string]int

	alive bool
}

func NewPlayer(seat int, identity Identity, hero *Hero) *Player {
	return &Player{
		Seat:             seat,
		Identity:         identity,
		Hero:             hero,
		HP:               hero.MaxHP,
		MaxHP:            hero.MaxHP,
		SkillLimits:      make(map[string]int),
		alive:            true,
		IdentityRevealed: identity == IdentityLord,
	}
}

func (p *Player) IsAlive() bool { return p.alive }

// MarkDead transitions the player to dead: hand and equipment are
// cleared by the caller (combat.go) before calling this, per the data
// model invariant that dead players hold no cards.
func (p *Player) MarkDead() {
	p.alive = false
	p.IdentityRevealed = true
}

func (p *Player) AddToHand(ci *CardInstance) {
	ci.Owner = p.Seat
	ci.Location = LocHand
	p.Hand = append(p.Hand, ci)
}

func (p *Player) RemoveFromHand(ci *CardInstance) bool {
	for i, c := range p.Hand {
		if c == ci {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// Hero is loaded from data at engine construction (internal/config) and
// assigned to players.
type Hero struct {
	Name    string
	Faction string
	MaxHP   int
	Skills  []string
}

// Deck holds the draw and discard piles. Index 0 of Draw is the top.
// Reshuffling uses the GameState's seeded RNG, never a bare math/rand
// call, to preserve run-to-run determinism.
type Deck struct {
	Draw    []*CardInstance
	Discard []*CardInstance
}

func (d *Deck) Remaining() int  { return len(d.Draw) }
func (d *Deck) Discarded() int  { return len(d.Discard) }

func (d *Deck) DiscardCards(cards ...*CardInstance) {
	for _, c := range cards {
		c.Location = LocDiscard
		c.Owner = -1
	}
	d.Discard = append(d.Discard, cards...)
}

// DrawN removes up to n cards from the top of the draw pile, reshuffling
// the discard pile in when exhausted. Never throws: if both piles run
// dry it simply returns fewer than n cards.
func (d *Deck) DrawN(n int, rng *rand.Rand) []*CardInstance {
	out := make([]*CardInstance, 0, n)
	for len(out) < n {
		if len(d.Draw) == 0 {
			if len(d.Discard) == 0 {
				break
			}
			d.reshuffleDiscardIn(rng)
			if len(d.Draw) == 0 {
				break
			}
		}
		c := d.Draw[0]
		d.Draw = d.Draw[1:]
		out = append(out, c)
	}
	return out
}

func (d *Deck) reshuffleDiscardIn(rng *rand.Rand) {
	shuffled := d.Discard
	d.Discard = nil
	// Fisher-Yates using the engine's deterministic generator.
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	for _, c := range shuffled {
		c.Location = LocDraw
	}
	d.Draw = append(d.Draw, shuffled...)
}

// GameState is the authoritative mutable state of one duel: players,
// the shared deck, current phase/turn, the event bus, and the single
// seeded RNG every stochastic decision in the engine must route through.
type GameState struct {
	Seed    int64
	Rng     *rand.Rand
	Players []*Player
	Deck    *Deck
	Turn    int
	Phase   Phase
	// TurnPlayer is the seat currently acting.
	TurnPlayer int
	Bus        *events.Bus
	nextInstanceID int

	Winner         string // faction name, empty while unresolved
	WinnerIdentity string

	// CurrentJudgmentCard is the card instance currently being revealed
	// for a judgment test, set by judgePhase before a before_judge hook
	// runs so a hand-written skill (e.g. Guicai) can replace it in place.
	CurrentJudgmentCard *CardInstance
}

func NewGameState(seed int64, players []*Player, deck *Deck) *GameState {
	return &GameState{
		Seed:    seed,
		Rng:     rand.New(rand.NewSource(seed)),
		Players: players,
		Deck:    deck,
		Phase:   PhasePrepare,
		Bus:     events.NewBus(),
	}
}

func (gs *GameState) NextInstanceID() int {
	gs.nextInstanceID++
	return gs.nextInstanceID
}

// NextSeat returns the seat immediately clockwise of from, whether or
// not that player is alive; callers such as the AoE effects pass it to
// LivingFrom, which skips eliminated seats.
func (gs *GameState) NextSeat(from int) int {
	n := len(gs.Players)
	return (from + 1) % n
}

// LivingFrom returns every living seat starting at `from` and walking
// clockwise, used for dying-loop savior order and Wuxie polling order.
func (gs *GameState) LivingFrom(from int) []int {
	n := len(gs.Players)
	var out []int
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if gs.Players[seat].IsAlive() {
			out = append(out, seat)
		}
	}
	return out
}

func (gs *GameState) AliveCount() int {
	c := 0
	for _, p := range gs.Players {
		if p.IsAlive() {
			c++
		}
	}
	return c
}

// Distance computes the distance between two living players per
// spec.md §3: min(clockwise_gap, counterclockwise_gap) plus the
// target's defensive-horse bonus minus the attacker's offensive-horse
// bonus, floored at 1.
func (gs *GameState) Distance(from, to int) int {
	n := len(gs.Players)
	cw := (to - from + n) % n
	ccw := (from - to + n) % n
	gap := cw
	if ccw < gap {
		gap = ccw
	}
	off := 0
	if gs.Players[from].Equipment.OffensiveHorse != nil {
		off = 1
	}
	def := 0
	if gs.Players[to].Equipment.DefensiveHorse != nil {
		def = 1
	}
	d := gap + def - off
	if d < 1 {
		d = 1
	}
	return d
}

func (gs *GameState) NewCardInstance(c *Card) *CardInstance {
	return &CardInstance{InstanceID: gs.NextInstanceID(), Card: c, Owner: -1, Location: LocDraw}
}
