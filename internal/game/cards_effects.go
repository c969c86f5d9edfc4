package game

import "context"

// registerBuiltinEffects installs the hand-written handlers spec.md
// §4.3 calls out for combat-heavy cards. Registered first so later
// data-driven registration (buildDataDrivenEffect, filled from
// config.GameData.CardEffects) can never shadow them — the same
// idempotent-registration contract as the teacher's registry.go.
func registerBuiltinEffects(r *registry) {
	r.registerHandwritten("Sha", shaEffect())
	r.registerHandwritten("Tao", peachEffect())
	r.registerHandwritten("Jiu", wineEffect())
	r.registerHandwritten("Juedou", duelEffect())
	r.registerHandwritten("Nanmanrujin", barbarianInvasionEffect())
	r.registerHandwritten("Wanjianqifa", arrowRainEffect())
	r.registerHandwritten("Shunshouqianyang", raidEffect())
	r.registerHandwritten("Guohechaiqiao", dismantleEffect())
	r.registerHandwritten("Huogong", fireAttackEffect())
	r.registerHandwritten("Shandian", lightningEffect())
	r.registerHandwritten("Lebusishu", indulgenceEffect())
	r.registerHandwritten("Bingliangcuigong", famineEffect())
	r.registerHandwritten("Tiesuolianhuan", chainedEffect())
	r.registerHandwritten("Jiedaosharen", borrowedKnifeEffect())
	for _, bp := range equipmentBlueprints {
		r.registerHandwritten(bp.Name, equipmentEffect(bp.Name))
	}
}

// equipmentEffect is the CardEffect every equipment card shares: no
// target, no resolution step of its own (UseCard's equip() call after
// Resolve does the actual slot swap/discard-old-item work), so Resolve
// is a no-op. Declared generically here rather than per weapon/armor
// since the entire distinguishing behavior (range, damage type) lives
// in Equipment.WeaponRange/the armor checks in combat.go, not in a
// per-card handler.
func equipmentEffect(name string) *CardEffect {
	return &CardEffect{
		Name:        name,
		NeedsTarget: false,
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			return nil
		},
	}
}

func shaEffect() *CardEffect {
	return &CardEffect{
		Name:        "Sha",
		NeedsTarget: true,
		CanUse: func(d *Duel, player int, targets []*CardInstance) (bool, string) {
			if len(targets) == 0 {
				return true, ""
			}
			if err := d.checkStrikeLegal(player, targets[0].Owner); err != nil {
				return false, err.Error()
			}
			return true, ""
		},
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			return d.resolveStrike(context.Background(), player, targets[0].Owner, card.Card.Suit)
		},
	}
}

// peachEffect implements Tao's proactive use: heal the player 1 HP
// during their own Play phase, on top of the reactive use dyingLoop
// already drives directly through AskForTao. Unusable at full HP,
// matching spec.md §4.3's per-card CanUse gate.
func peachEffect() *CardEffect {
	return &CardEffect{
		Name:        "Tao",
		NeedsTarget: false,
		CanUse: func(d *Duel, player int, targets []*CardInstance) (bool, string) {
			if d.State.Players[player].HP >= d.State.Players[player].MaxHP {
				return false, "already at max HP"
			}
			return true, ""
		},
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			d.healPlayer(player, 1)
			return nil
		},
	}
}

// wineEffect implements Jiu: arms the player's next Strike this turn to
// deal 2 damage instead of 1 (Flags.WineEffectActive, consumed by
// resolveStrike). The flag keeps Jiu from stacking: a second Jiu is
// refused while one is active, but once a Strike consumes the flag
// another Jiu may be drunk in the same turn. preparePhase also clears it.
func wineEffect() *CardEffect {
	return &CardEffect{
		Name:        "Jiu",
		NeedsTarget: false,
		CanUse: func(d *Duel, player int, targets []*CardInstance) (bool, string) {
			if d.State.Players[player].Flags.WineEffectActive {
				return false, "wine already active this turn"
			}
			return true, ""
		},
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			d.State.Players[player].Flags.WineEffectActive = true
			return nil
		},
	}
}

// duelEffect implements Juedou: source and target alternate playing Sha
// starting with the target; the first seat that can't or won't produce
// one takes 1 damage and the duel ends.
func duelEffect() *CardEffect {
	return &CardEffect{
		Name:        "Duel",
		NeedsTarget: true,
		Wuxie:       true,
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			ctx := context.Background()
			target := targets[0].Owner
			turn := []int{target, player}
			idx := 0
			for {
				seat := turn[idx%2]
				other := turn[(idx+1)%2]
				sc, yes, err := d.controller(seat).AskForSha(ctx, d, seat)
				if err != nil || !yes || sc == nil {
					return d.DealDamage(ctx, other, seat, 1, DamageNormal)
				}
				d.State.Players[seat].RemoveFromHand(sc)
				d.State.Deck.DiscardCards(sc)
				idx++
			}
		},
	}
}

// barbarianInvasionEffect (Nanmanrujin): every other living player takes
// 1 damage unless they play a Sha. AoE nullification is polled per
// target independently inside Resolve.
func barbarianInvasionEffect() *CardEffect {
	return &CardEffect{
		Name:  "Barbarian Invasion",
		Wuxie: true,
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			ctx := context.Background()
			for _, seat := range d.State.LivingFrom(d.State.NextSeat(player)) {
				if seat == player {
					continue
				}
				// AoE tricks poll Wuxie per target independently (spec.md
				// §4.6): a cancellation on one seat never nullifies the
				// effect against any other.
				if d.PollWuxie(ctx, player, "Barbarian Invasion", seat) {
					continue
				}
				sc, yes, err := d.controller(seat).AskForSha(ctx, d, seat)
				if err == nil && yes && sc != nil {
					d.State.Players[seat].RemoveFromHand(sc)
					d.State.Deck.DiscardCards(sc)
					continue
				}
				if err := d.dealDamage(ctx, player, seat, 1, DamageNormal, strikeTag{isAoE: true}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// arrowRainEffect (Wanjianqifa): every other living player takes 1
// damage unless they play a Shan.
func arrowRainEffect() *CardEffect {
	return &CardEffect{
		Name:  "Arrow Rain",
		Wuxie: true,
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			ctx := context.Background()
			for _, seat := range d.State.LivingFrom(d.State.NextSeat(player)) {
				if seat == player {
					continue
				}
				if d.PollWuxie(ctx, player, "Arrow Rain", seat) {
					continue
				}
				if d.requestDodge(ctx, seat, 1) {
					continue
				}
				if err := d.dealDamage(ctx, player, seat, 1, DamageNormal, strikeTag{isAoE: true}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// raidEffect (Shunshouqianyang): source takes one card (hand or
// equipment) from a target within distance 1.
func raidEffect() *CardEffect {
	return &CardEffect{
		Name:        "Raid",
		NeedsTarget: true,
		Wuxie:       true,
		CanUse: func(d *Duel, player int, targets []*CardInstance) (bool, string) {
			if len(targets) == 0 {
				return true, ""
			}
			if d.State.Distance(player, targets[0].Owner) > 1 {
				return false, "target out of range"
			}
			return true, ""
		},
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			return d.snatchCard(context.Background(), player, targets[0].Owner, true)
		},
	}
}

// dismantleEffect (Guohechaiqiao): source discards one of the target's
// cards (hand or equipment), no range restriction.
func dismantleEffect() *CardEffect {
	return &CardEffect{
		Name:        "Dismantle",
		NeedsTarget: true,
		Wuxie:       true,
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			return d.snatchCard(context.Background(), player, targets[0].Owner, false)
		},
	}
}

// snatchCard is the shared core of Raid (toSelf=true, goes to the
// chooser's hand) and Dismantle (toSelf=false, goes straight to
// discard). The chosen card is never random (spec.md §6 explicitly
// flags a prior random implementation as broken).
func (d *Duel) snatchCard(ctx context.Context, chooser, target int, toSelf bool) error {
	ci, ok, err := d.controller(chooser).ChooseCardFromPlayer(ctx, d, chooser, target)
	if err != nil || !ok || ci == nil {
		return nil
	}
	tp := d.State.Players[target]
	switch ci.Location {
	case LocHand:
		tp.RemoveFromHand(ci)
	case LocEquipment:
		if slot := tp.Equipment.slotFor(ci.Card.Subtype); slot != nil {
			*slot = nil
		}
		d.publish(ctx, EvEquipmentUnequipped, map[string]any{"player": target, "card": ci.Card.Name})
		if d.skills != nil {
			d.skills.TriggerAll(ctx, d, "on_lose_equip", eventFor("on_lose_equip", map[string]any{"player": target}))
		}
	}
	if toSelf {
		d.State.Players[chooser].AddToHand(ci)
		d.publish(ctx, EvCardObtained, map[string]any{"player": chooser, "card": ci.Card.Name})
	} else {
		d.State.Deck.DiscardCards(ci)
		d.publish(ctx, EvCardLost, map[string]any{"player": target, "card": ci.Card.Name})
	}
	return nil
}

// fireAttackEffect (Huogong): source picks one of the target's cards
// (via ChooseCardFromPlayer) to name it; the target discards a hand
// card of the same name, or takes 1 fire damage if it holds none.
func fireAttackEffect() *CardEffect {
	return &CardEffect{
		Name:        "Fire Attack",
		NeedsTarget: true,
		Wuxie:       true,
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			ctx := context.Background()
			target := targets[0].Owner
			named, ok, err := d.controller(player).ChooseCardFromPlayer(ctx, d, player, target)
			if err != nil || !ok || named == nil {
				return nil
			}
			tp := d.State.Players[target]
			for _, ci := range tp.Hand {
				if ci.Card.Name == named.Card.Name {
					tp.RemoveFromHand(ci)
					d.State.Deck.DiscardCards(ci)
					return nil
				}
			}
			return d.DealDamage(ctx, player, target, 1, DamageFire)
		},
	}
}

// lightningEffect (Shandian): delayed judgment. Spades 2-9 fail the
// judge and deal 3 thunder damage to the zone owner; otherwise it moves
// on to the next player's judgment zone (modeled here as simply
// discarding, since this engine keeps one judgment zone per owner and
// chaining onward is a rule variant out of spec.md's scope).
func lightningEffect() *CardEffect {
	return &CardEffect{
		Name:              "Lightning",
		IsDelayedJudgment: true,
		JudgeSuccess: func(jc *Card) bool {
			return jc.Suit == Spade && jc.Point >= 2 && jc.Point <= 9
		},
		OnJudgeSuccess: func(d *Duel, owner int) error {
			return d.DealDamage(context.Background(), owner, owner, 3, DamageThunder)
		},
	}
}

// indulgenceEffect (Lebusishu): delayed judgment; failing (non-Heart)
// skips the owner's Play phase.
func indulgenceEffect() *CardEffect {
	return &CardEffect{
		Name:              "Indulgence",
		IsDelayedJudgment: true,
		JudgeSuccess: func(jc *Card) bool {
			return jc.Suit != Heart
		},
		OnJudgeSuccess: func(d *Duel, owner int) error {
			d.State.Players[owner].Flags.SkipPlay = true
			return nil
		},
	}
}

// famineEffect (Bingliangcuigong): delayed judgment; failing (non-Club)
// skips the owner's Draw phase.
func famineEffect() *CardEffect {
	return &CardEffect{
		Name:              "Famine",
		IsDelayedJudgment: true,
		JudgeSuccess: func(jc *Card) bool {
			return jc.Suit != Club
		},
		OnJudgeSuccess: func(d *Duel, owner int) error {
			d.State.Players[owner].Flags.SkipDraw = true
			return nil
		},
	}
}

// chainedEffect (Tiesuolianhuan): toggles the Chained flag on its
// target(s) (or self if unspecified), setting up fire/thunder cascade
// propagation in the combat subsystem.
func chainedEffect() *CardEffect {
	return &CardEffect{
		Name: "Chained",
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			seats := []int{player}
			if len(targets) > 0 {
				seats = seats[:0]
				for _, t := range targets {
					seats = append(seats, t.Owner)
				}
			}
			for _, seat := range seats {
				p := d.State.Players[seat]
				p.IsChained = !p.IsChained
			}
			return nil
		},
	}
}

// borrowedKnifeEffect (Jiedaosharen): source designates a weapon-bearing
// target and a victim; the target either strikes the victim with their
// own Sha or their weapon is discarded.
func borrowedKnifeEffect() *CardEffect {
	return &CardEffect{
		Name:        "Borrowed Knife",
		NeedsTarget: true,
		Wuxie:       true,
		CanUse: func(d *Duel, player int, targets []*CardInstance) (bool, string) {
			if len(targets) == 0 {
				return true, ""
			}
			if d.State.Players[targets[0].Owner].Equipment.Weapon == nil {
				return false, "target has no weapon equipped"
			}
			return true, ""
		},
		Resolve: func(d *Duel, player int, card *CardInstance, targets []*CardInstance) error {
			ctx := context.Background()
			target := targets[0].Owner
			victim, ok, err := d.controller(player).ChooseTarget(ctx, d, player, d.otherSeats(target), "choose a victim for the borrowed knife")
			if err != nil || !ok {
				return nil
			}
			sc, yes, err := d.controller(target).AskForSha(ctx, d, target)
			if err == nil && yes && sc != nil {
				d.State.Players[target].RemoveFromHand(sc)
				d.State.Deck.DiscardCards(sc)
				return d.resolveStrike(ctx, target, victim, sc.Card.Suit)
			}
			weapon := d.State.Players[target].Equipment.Weapon
			if weapon != nil {
				d.State.Players[target].Equipment.Weapon = nil
				d.State.Deck.DiscardCards(weapon)
			}
			return nil
		},
	}
}

func (d *Duel) otherSeats(exclude int) []int {
	var out []int
	for _, p := range d.State.Players {
		if p.Seat != exclude && p.IsAlive() {
			out = append(out, p.Seat)
		}
	}
	return out
}
