package game

// CardEffect is a hand-written card handler, mirroring the teacher's
// effect.go CardEffect struct shape (closures for the capability set
// rather than an interface), narrowed to the three operations spec.md
// §4.3/§9 calls out: can_use, resolve, needs_target.
type CardEffect struct {
	Name        string
	NeedsTarget bool

	// CanUse validates the attempted use. A false with a non-empty
	// reason causes use_card to fail silently (card stays in hand).
	CanUse func(d *Duel, player int, targets []*CardInstance) (bool, string)

	// Resolve applies the effect. Called only after nullification
	// (§4.5/§4.6) has been checked for targeted tricks.
	Resolve func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error

	// Wuxie marks whether this card's resolution is subject to the
	// nullification chain (targeted tricks default true; basics never
	// are).
	Wuxie bool

	// IsDelayedJudgment marks a trick that is placed in the judgment
	// zone instead of resolving immediately.
	IsDelayedJudgment bool
	// JudgeSuccess tests the drawn judgment card's suit/point and
	// returns whether the delayed effect fires.
	JudgeSuccess func(judgeCard *Card) bool
	// OnJudgeSuccess applies the delayed effect to the judgment zone's
	// owner.
	OnJudgeSuccess func(d *Duel, owner int) error
}

// registry maps card name -> effect handler. Hand-written handlers are
// registered first; data-driven effects fill only unoccupied names,
// guaranteeing hand-written logic is never shadowed — the same
// idempotent-registration contract as the teacher's registry.go
// LookupCard map-building order.
type registry struct {
	effects map[string]*CardEffect
}

func newRegistry() *registry {
	return &registry{effects: make(map[string]*CardEffect)}
}

// registerHandwritten adds a hand-written handler. Called before any
// data-driven registration.
func (r *registry) registerHandwritten(name string, eff *CardEffect) {
	r.effects[name] = eff
}

// registerDataDriven adds a data-driven handler only if the name isn't
// already claimed by a hand-written one.
func (r *registry) registerDataDriven(name string, eff *CardEffect) {
	if _, exists := r.effects[name]; exists {
		return
	}
	r.effects[name] = eff
}

func (r *registry) lookup(name string) (*CardEffect, bool) {
	eff, ok := r.effects[name]
	return eff, ok
}
