package game

import (
	"context"

	"github.com/sanguosha/engine/internal/engerr"
	"github.com/sanguosha/engine/internal/events"
)

const strikeCardName = "Sha"

// UseStrike resolves spec.md §4.5's use_strike(source, card, [target]):
// per-turn strike-limit check, range check, targeting event (may be
// cancelled), a dodge request, and damage on a failed dodge. Grounded
// on the teacher's battle.go executeAttack, narrowed from the ATK/DEF
// formula to Sanguosha's fixed 1-damage Strike and a single Dodge
// response window.
func (d *Duel) UseStrike(ctx context.Context, source int, card *CardInstance, target int) error {
	if err := d.checkStrikeLegal(source, target); err != nil {
		return err
	}
	if err := d.resolveStrike(ctx, source, target, card.Card.Suit); err != nil {
		return err
	}
	d.State.Players[source].RemoveFromHand(card)
	d.State.Deck.DiscardCards(card)
	return nil
}

// checkStrikeLegal validates the per-turn strike limit and the attack
// range before any card/hand mutation happens, so a rejected Strike
// never touches state (spec.md §7's "engine state unchanged" rule).
func (d *Duel) checkStrikeLegal(source, target int) error {
	sp := d.State.Players[source]
	limit := d.strikeLimit(source)
	if sp.Flags.StrikesUsed >= limit {
		return engerr.New(engerr.InvalidAction, "strike limit reached this turn")
	}
	if d.State.Distance(source, target) > sp.Equipment.WeaponRange() {
		return engerr.New(engerr.InvalidTarget, "target out of attack range")
	}
	return nil
}

// resolveStrike is the targeting/dodge/damage core of use_strike, shared
// by UseStrike (the direct entry point) and the Sha card effect's
// Resolve (invoked through the generic UseCard pipeline, which already
// owns hand-removal and discard). suit is the Sha card's own suit,
// needed at the damage stage for Renwang Shield's black-suit check.
func (d *Duel) resolveStrike(ctx context.Context, source, target int, suit Suit) error {
	sp := d.State.Players[source]
	tp := d.State.Players[target]
	// Kongcheng-equivalent skills grant Sha immunity while the target
	// holds no cards; mirrors the EvAttackTargeting cancellation path
	// below since there is no dedicated "about to be targeted" trigger
	// kind in the DSL vocabulary for this.
	if d.skills != nil && len(tp.Hand) == 0 && d.skills.HasSkill(d, target, "kongcheng") {
		d.publish(ctx, EvAttackDodged, map[string]any{"source": source, "target": target, "reason": "kongcheng"})
		return nil
	}
	targeting := d.publish(ctx, EvAttackTargeting, map[string]any{"source": source, "target": target})
	if targeting.Cancelled() {
		return nil
	}

	sp.Flags.StrikesUsed++
	required := 1
	if d.skills != nil && d.skills.HasSkill(d, source, "wushuang_passive") {
		required = 2
	}
	dodged := d.requestDodge(ctx, target, required)
	if dodged {
		d.publish(ctx, EvAttackDodged, map[string]any{"source": source, "target": target})
		return nil
	}
	d.publish(ctx, EvAttackHit, map[string]any{"source": source, "target": target})
	amount := 1
	if sp.Flags.WineEffectActive {
		amount = 2
		sp.Flags.WineEffectActive = false
	}
	return d.dealDamage(ctx, source, target, amount, DamageNormal, strikeTag{isStrike: true, suit: suit})
}

func (d *Duel) strikeLimit(player int) int {
	// Paoxiao-equivalent skills can bypass the default limit of 1: a
	// seat with paoxiao_passive gets a generous sentinel instead.
	if d.skills != nil && d.skills.HasSkill(d, player, "paoxiao_passive") {
		return 1 << 30
	}
	return 1
}

// requestDodge asks the target for up to the required number of Shan
// cards (normally 1; resolveStrike passes 2 when the source has
// wushuang_passive).
func (d *Duel) requestDodge(ctx context.Context, target int, required int) bool {
	for i := 0; i < required; i++ {
		card, yes, err := d.controller(target).AskForShan(ctx, d, target)
		if err != nil || !yes || card == nil {
			return false
		}
		d.State.Players[target].RemoveFromHand(card)
		d.State.Deck.DiscardCards(card)
	}
	return true
}

// strikeTag carries the extra context the DamageInflicting stage needs
// to resolve Renwang Shield / Tengjia (spec.md §4.5): whether this hit
// is a Strike or an AoE trick, and the Sha's own suit when it is a
// Strike. The zero value (neither) is the common case for skill- and
// card-driven damage that is not itself a Strike or AoE.
type strikeTag struct {
	isStrike bool
	isAoE    bool
	suit     Suit
}

// DealDamage is spec.md §4.5's deal_damage pipeline: a mutable,
// cancellable DamageInflicting event, clamping at zero, HP application,
// chain propagation, and the dying loop on lethal damage. Callers
// outside this package (e.g. the Lua skill bridge) always go through
// this untagged entry point; Strike and AoE resolution use dealDamage
// directly so the armor check can see what kind of hit it is.
func (d *Duel) DealDamage(ctx context.Context, source, target int, amount int, dtype DamageType) error {
	return d.dealDamage(ctx, source, target, amount, dtype, strikeTag{})
}

func (d *Duel) dealDamage(ctx context.Context, source, target int, amount int, dtype DamageType, tag strikeTag) error {
	e := d.publishDamageInflicting(ctx, source, target, amount, dtype, tag)
	if e.Cancelled() {
		return nil
	}
	amount = e.Damage()
	if amount < 0 {
		amount = 0
	}
	if amount == 0 {
		d.publish(ctx, EvDamageInflicted, map[string]any{"source": source, "target": target, "amount": 0})
		return nil
	}

	tp := d.State.Players[target]
	before := tp.HP
	tp.HP -= amount
	d.publish(ctx, EvHPChanged, map[string]any{"player": target, "delta": tp.HP - before})
	d.publish(ctx, EvDamageInflicted, map[string]any{"source": source, "target": target, "amount": amount})
	d.publish(ctx, EvDamageTaken, map[string]any{"source": source, "target": target, "amount": amount, "type": int(dtype)})
	if d.skills != nil {
		payload := map[string]any{"source": source, "target": target, "player": target, "amount": amount, "type": int(dtype)}
		d.skills.TriggerAll(ctx, d, "after_damaged", eventFor("after_damaged", payload))
		if source != target {
			srcPayload := map[string]any{"source": source, "target": target, "player": source, "amount": amount, "type": int(dtype)}
			d.skills.TriggerAll(ctx, d, "after_damage_dealt", eventFor("after_damage_dealt", srcPayload))
		}
	}

	d.propagateChain(ctx, source, target, amount, dtype)

	if tp.HP <= 0 {
		return d.dyingLoop(ctx, source, target)
	}
	return nil
}

func (d *Duel) publishDamageInflicting(ctx context.Context, source, target, amount int, dtype DamageType, tag strikeTag) *events.Event {
	e := events.New(EvDamageInflicting, map[string]any{
		"source": source, "target": target, "damage": amount, "type": int(dtype),
		"strike": tag.isStrike, "aoe": tag.isAoE, "suit": int(tag.suit),
	})
	d.applyArmorNegation(e, target, dtype, tag)
	return d.State.Bus.Publish(ctx, e)
}

// applyArmorNegation is the armor-check handler for the DamageInflicting
// stage (spec.md §4.5): Renwang Shield voids black-suit Strike damage,
// Tengjia voids normal (non-elemental) Strike and AoE damage but adds 1
// to fire damage. Both checks run directly against the event's mutable
// payload before it reaches the bus, matching the rest of the engine's
// inline reactive checks (kongcheng, paoxiao_passive, wushuang_passive)
// rather than a registered subscription.
func (d *Duel) applyArmorNegation(e *events.Event, target int, dtype DamageType, tag strikeTag) {
	armor := d.State.Players[target].Equipment.Armor
	if armor == nil {
		return
	}
	switch armor.Card.Name {
	case "Renwang Shield":
		if tag.isStrike && tag.suit.IsBlack() {
			e.ModifyDamage(0)
		}
	case "Tengjia":
		switch {
		case dtype == DamageFire:
			e.ModifyDamage(e.Damage() + 1)
		case dtype == DamageNormal && (tag.isStrike || tag.isAoE):
			e.ModifyDamage(0)
		}
	}
}

// propagateChain implements the Chained-status cascade (spec.md §4.5
// point 4 / glossary "Chained"): if the target is chained and damage
// is fire or thunder, every chained player (including the target)
// loses their chain flag, then every *other* chained player takes the
// same damage, flagged is_chain=true. Chain events never propagate
// again (single level), distinct from the teacher's Yu-Gi-Oh-style
// chain stack in wuxie.go/chain resolution — this is grounded instead
// on duel.go's continuous-effect recalculation pass, repurposed as a
// one-shot sweep over chained players.
func (d *Duel) propagateChain(ctx context.Context, source, target, amount int, dtype DamageType) {
	if dtype != DamageFire && dtype != DamageThunder {
		return
	}
	tp := d.State.Players[target]
	if !tp.IsChained {
		return
	}
	var chained []int
	for _, p := range d.State.Players {
		if p.IsChained {
			chained = append(chained, p.Seat)
		}
	}
	for _, seat := range chained {
		d.State.Players[seat].IsChained = false
	}
	for _, seat := range chained {
		if seat == target || !d.State.Players[seat].IsAlive() {
			continue
		}
		e := events.New(EvDamageInflicting, map[string]any{
			"source": source, "target": seat, "damage": amount, "type": int(dtype), "is_chain": true,
			"strike": false, "aoe": false, "suit": int(Spade),
		})
		d.applyArmorNegation(e, seat, dtype, strikeTag{})
		d.State.Bus.Publish(ctx, e)
		if e.Cancelled() {
			continue
		}
		amt := e.Damage()
		if amt <= 0 {
			continue
		}
		cp := d.State.Players[seat]
		before := cp.HP
		cp.HP -= amt
		d.publish(ctx, EvHPChanged, map[string]any{"player": seat, "delta": cp.HP - before})
		d.publish(ctx, EvDamageInflicted, map[string]any{"source": source, "target": seat, "amount": amt, "is_chain": true})
		if cp.HP <= 0 {
			_ = d.dyingLoop(ctx, source, seat)
		}
	}
}

// dyingLoop is spec.md §4.5's dying/rescue flow: Dying is emitted, then
// every living player in source-clockwise order (source first) is
// asked for a Peach (AskForTao). Only Tao is offered: the dying player
// is not offered Jiu as a self-rescue. If HP is still <= 0 after every
// savior has refused, the player dies.
func (d *Duel) dyingLoop(ctx context.Context, source, dying int) error {
	d.publish(ctx, EvDying, map[string]any{"source": source, "player": dying})
	order := d.State.LivingFrom(source)
	for d.State.Players[dying].HP <= 0 {
		progressed := false
		for _, seat := range order {
			if !d.State.Players[seat].IsAlive() {
				continue
			}
			card, yes, err := d.controller(seat).AskForTao(ctx, d, seat, dying)
			if err != nil || !yes || card == nil {
				continue
			}
			d.State.Players[seat].RemoveFromHand(card)
			d.State.Deck.DiscardCards(card)
			d.healPlayer(dying, 1)
			progressed = true
			if d.State.Players[dying].HP > 0 {
				break
			}
		}
		if !progressed {
			break
		}
	}
	if d.State.Players[dying].HP > 0 {
		return nil
	}
	return d.killPlayer(ctx, source, dying)
}

func (d *Duel) killPlayer(ctx context.Context, source, victim int) error {
	vp := d.State.Players[victim]
	for _, c := range vp.Hand {
		c.Location = LocDiscard
	}
	d.State.Deck.DiscardCards(vp.Hand...)
	vp.Hand = nil
	for _, eq := range []*CardInstance{vp.Equipment.Weapon, vp.Equipment.Armor, vp.Equipment.OffensiveHorse, vp.Equipment.DefensiveHorse} {
		if eq != nil {
			d.State.Deck.DiscardCards(eq)
		}
	}
	vp.Equipment = Equipment{}
	vp.MarkDead()
	d.publish(ctx, EvDeath, map[string]any{"source": source, "player": victim})
	d.publish(ctx, EvPlayerEliminated, map[string]any{"player": victim})

	if victim != source {
		sourceIdentity := d.State.Players[source].Identity
		victimIdentity := vp.Identity
		if victimIdentity == IdentityRebel {
			d.drawCards(source, 3)
		} else if victimIdentity == IdentityLoyalist && sourceIdentity == IdentityLord {
			d.discardAllCards(source)
		}
	}
	return nil
}

func (d *Duel) discardAllCards(player int) {
	p := d.State.Players[player]
	d.State.Deck.DiscardCards(p.Hand...)
	p.Hand = nil
	for _, eq := range []*CardInstance{p.Equipment.Weapon, p.Equipment.Armor, p.Equipment.OffensiveHorse, p.Equipment.DefensiveHorse} {
		if eq != nil {
			d.State.Deck.DiscardCards(eq)
		}
	}
	p.Equipment = Equipment{}
}
