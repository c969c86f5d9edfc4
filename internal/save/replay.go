package save

import "github.com/sanguosha/engine/internal/engerr"

// Replay is a cursor over a loaded document's action_log, supporting
// step-forward, step-back, jump-to, and variable speed control, per
// spec.md §4.9 ("Replay is a cursor over this log with step-forward,
// step-back, jump-to, and variable speed control"). It does not itself
// re-run engine logic — it is a read-only index into already-logged
// records, matching the source's replay.py cursor idea without the
// source's ncurses-rendering concerns.
type Replay struct {
	log   []ActionLogRecord
	pos   int // index of the next record StepForward would return
	speed float64
}

// NewReplay builds a cursor positioned before the first record.
func NewReplay(log []ActionLogRecord) *Replay {
	return &Replay{log: log, pos: 0, speed: 1.0}
}

// Len is the total number of records.
func (r *Replay) Len() int { return len(r.log) }

// Position is the cursor's current index (number of records consumed).
func (r *Replay) Position() int { return r.pos }

// AtEnd reports whether the cursor has consumed every record.
func (r *Replay) AtEnd() bool { return r.pos >= len(r.log) }

// StepForward returns the next record and advances the cursor, or
// (zero, false) at the end of the log.
func (r *Replay) StepForward() (ActionLogRecord, bool) {
	if r.AtEnd() {
		return ActionLogRecord{}, false
	}
	rec := r.log[r.pos]
	r.pos++
	return rec, true
}

// StepBack rewinds the cursor by one and returns the record it now
// points at, or (zero, false) if already at the start.
func (r *Replay) StepBack() (ActionLogRecord, bool) {
	if r.pos == 0 {
		return ActionLogRecord{}, false
	}
	r.pos--
	return r.log[r.pos], true
}

// JumpTo moves the cursor directly to a record index (0-based, valid
// range [0, Len()]); an index outside that range is rejected with an
// error and the cursor is left where it was.
func (r *Replay) JumpTo(index int) error {
	if index < 0 || index > len(r.log) {
		return engerr.New(engerr.InvalidAction, "replay jump index out of range")
	}
	r.pos = index
	return nil
}

// SetSpeed sets the playback speed multiplier used by a UI driving this
// cursor on a timer; the cursor itself is speed-agnostic, it just
// records the caller's preference.
func (r *Replay) SetSpeed(speed float64) {
	if speed <= 0 {
		speed = 1.0
	}
	r.speed = speed
}

// Speed returns the current playback speed multiplier.
func (r *Replay) Speed() float64 { return r.speed }
