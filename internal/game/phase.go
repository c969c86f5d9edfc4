package game

import "github.com/sanguosha/engine/internal/engerr"

// validTransitions is the strict phase-successor table: each phase has
// exactly one declared successor. Grounded on
// original_source/game/phase_fsm.py's VALID_TRANSITIONS map, translated
// from a set-valued table (the source allows the possibility of
// multiple successors per phase but only ever populates one) to a
// single-successor map matching spec.md §4.7's "exactly one successor
// per phase (plus End → Prepare for the next actor)".
var validTransitions = map[Phase]Phase{
	PhasePrepare: PhaseJudge,
	PhaseJudge:   PhaseDraw,
	PhaseDraw:    PhasePlay,
	PhasePlay:    PhaseDiscard,
	PhaseDiscard: PhaseEnd,
	PhaseEnd:     PhasePrepare,
}

// Transition advances gs.Phase to target, raising a fatal
// InvalidPhaseTransition if target isn't the declared successor of the
// current phase. This is an engine-invariant violation, not a user
// error — it panics rather than returning an error, per spec.md §7.
func (gs *GameState) Transition(target Phase) {
	want, ok := validTransitions[gs.Phase]
	if !ok || want != target {
		engerr.Panic(engerr.InvalidPhaseTransition, "%s -> %s is not a legal transition", gs.Phase, target)
	}
	gs.Phase = target
}
