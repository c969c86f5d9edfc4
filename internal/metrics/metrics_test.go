package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestActiveRoomsGauge(t *testing.T) {
	ActiveRooms.Set(3)
	if got := testutil.ToFloat64(ActiveRooms); got != 3 {
		t.Fatalf("ActiveRooms = %v, want 3", got)
	}
}

func TestActionsTotalCounterVecByKind(t *testing.T) {
	ActionsTotal.WithLabelValues("play_sha").Inc()
	ActionsTotal.WithLabelValues("play_sha").Inc()
	ActionsTotal.WithLabelValues("end_turn").Inc()

	if got := testutil.ToFloat64(ActionsTotal.WithLabelValues("play_sha")); got != 2 {
		t.Fatalf("ActionsTotal{kind=play_sha} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ActionsTotal.WithLabelValues("end_turn")); got != 1 {
		t.Fatalf("ActionsTotal{kind=end_turn} = %v, want 1", got)
	}
}

func TestDuelsCompletedTotalByWinner(t *testing.T) {
	DuelsCompletedTotal.WithLabelValues("shu").Inc()
	if got := testutil.ToFloat64(DuelsCompletedTotal.WithLabelValues("shu")); got != 1 {
		t.Fatalf("DuelsCompletedTotal{winner=shu} = %v, want 1", got)
	}
}
