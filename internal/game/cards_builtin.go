package game

// Card constructors. Grounded on the teacher's registry.go pattern
// (one constructor function per card, keyed by name in a lookup table)
// generalized from the teacher's sci-fi catalog to Sanguosha's fixed
// basic/trick/equipment set. Point/suit are assigned by BuildCardPool
// from a 78-card deck layout; constructors here only fix
// identity (name/type/subtype), not the physical card's suit/point.

func newCard(id int, name string, ctype CardType, sub Subtype, suit Suit, point int) *Card {
	return &Card{ID: id, Name: name, CardType: ctype, Subtype: sub, Suit: suit, Point: point}
}

// cardBlueprint pairs a name with its type/subtype so BuildCardPool can
// stamp out one Card value per physical card while keeping suit/point
// varied across the deck.
type cardBlueprint struct {
	Name    string
	Type    CardType
	Subtype Subtype
}

var basicBlueprints = []cardBlueprint{
	{"Sha", CardBasic, SubAttack},
	{"Shan", CardBasic, SubDodge},
	{"Tao", CardBasic, SubPeach},
	{"Jiu", CardBasic, SubWine},
}

var trickBlueprints = []cardBlueprint{
	{"Juedou", CardTrick, SubSingleTarget},        // Duel
	{"Nanmanrujin", CardTrick, SubAOE},             // Barbarian Invasion
	{"Wanjianqifa", CardTrick, SubAOE},              // Arrow Rain
	{"Shunshouqianyang", CardTrick, SubSingleTarget}, // Raid
	{"Guohechaiqiao", CardTrick, SubSingleTarget},    // Dismantle
	{"Wuxiekeji", CardTrick, SubCounter},             // Nullification
	{"Jiedaosharen", CardTrick, SubSingleTarget},     // Borrowed Knife
	{"Huogong", CardTrick, SubSingleTarget},          // Fire Attack
	{"Shandian", CardTrick, SubDelayedJudgment},      // Lightning
	{"Lebusishu", CardTrick, SubDelayedJudgment},      // Indulgence
	{"Bingliangcuigong", CardTrick, SubDelayedJudgment}, // Famine
	{"Tiesuolianhuan", CardTrick, SubSingleTarget},      // Chained (also usable as AoE-self)
	{"Taoyuanjieyi", CardTrick, SubAOE},                 // Peach Garden Oath (data-driven AoE heal)
}

var equipmentBlueprints = []cardBlueprint{
	{"Zhangba Spear", CardEquipment, SubWeapon},
	{"Qinglong Yanyuedao", CardEquipment, SubWeapon},
	{"Zhuge Crossbow", CardEquipment, SubWeapon},
	{"Renwang Shield", CardEquipment, SubArmor},
	{"Tengjia", CardEquipment, SubArmor},
	{"Chitu", CardEquipment, SubOffensiveHorse},
	{"Dilu", CardEquipment, SubDefensiveHorse},
}

// BuildCardPool stamps out a 78-card deck's worth of
// CardInstance-ready Card values (one per physical card), cycling suits
// and points so a Duel's Distance/judgment math has real variety to
// work with. DuelConfig.CardPool is normally produced by this function
// at process startup, once, and shared read-only across duels (Card is
// an immutable value type keyed by ID).
func BuildCardPool() []*Card {
	var pool []*Card
	id := 1
	suits := []Suit{Spade, Heart, Club, Diamond}
	next := func(bp cardBlueprint, count int) {
		for i := 0; i < count; i++ {
			suit := suits[id%len(suits)]
			point := (i % 13) + 1
			pool = append(pool, newCard(id, bp.Name, bp.Type, bp.Subtype, suit, point))
			id++
		}
	}
	next(basicBlueprints[0], 20) // Sha
	next(basicBlueprints[1], 15) // Shan
	next(basicBlueprints[2], 8)  // Tao
	next(basicBlueprints[3], 2)  // Jiu
	for _, bp := range trickBlueprints {
		next(bp, 2)
	}
	for _, bp := range equipmentBlueprints {
		next(bp, 1)
	}
	return pool
}

// weaponRanges is consulted by Equipment.WeaponRange.
func init() {
	weaponRanges["Zhangba Spear"] = 3
	weaponRanges["Qinglong Yanyuedao"] = 3
	weaponRanges["Zhuge Crossbow"] = 1
}
