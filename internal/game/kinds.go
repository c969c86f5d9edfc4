package game

import "github.com/sanguosha/engine/internal/events"

// Event kinds the engine publishes. Grounded on
// original_source/game/events.py's EventType enum, narrowed to the
// events spec.md's component design actually names; the teacher's
// internal/log.EventType enum (append-only observability) is kept
// separately in internal/log, which no other package imports; the save
// action log (internal/save) records Duel.ActionLog entries instead.
const (
	EvTurnStart   events.Kind = "turn_start"
	EvTurnEnd     events.Kind = "turn_end"
	EvPhaseEnter  events.Kind = "phase_enter"
	EvPhaseExit   events.Kind = "phase_exit"

	EvCardUsing     events.Kind = "card_using"
	EvCardUsed      events.Kind = "card_used"
	EvCardDrawn     events.Kind = "card_drawn"
	EvCardDiscarded events.Kind = "card_discarded"
	EvCardObtained  events.Kind = "card_obtained"
	EvCardLost      events.Kind = "card_lost"

	EvDamageInflicting events.Kind = "damage_inflicting"
	EvDamageInflicted  events.Kind = "damage_inflicted"
	EvDamageTaken      events.Kind = "damage_taken"
	EvHPChanged        events.Kind = "hp_changed"
	EvDying            events.Kind = "dying"
	EvDeath            events.Kind = "death"

	EvSkillUsed      events.Kind = "skill_used"
	EvSkillTriggered events.Kind = "skill_triggered"

	EvEquipmentEquipped   events.Kind = "equipment_equipped"
	EvEquipmentUnequipped events.Kind = "equipment_unequipped"

	EvAttackTargeting events.Kind = "attack_targeting"
	EvAttackDodged    events.Kind = "attack_dodged"
	EvAttackHit       events.Kind = "attack_hit"

	EvJudgeStart  events.Kind = "judge_start"
	EvJudgeResult events.Kind = "judge_result"

	EvGameStart events.Kind = "game_start"
	EvGameEnd   events.Kind = "game_end"
	EvPlayerEliminated events.Kind = "player_eliminated"

	EvLogMessage events.Kind = "log_message"
)
