package save

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sanguosha/engine/internal/engerr"
)

func TestLoadMigratesMissingSchemaVersion(t *testing.T) {
	raw := []byte(`{
		"save_version": "old-build",
		"game_seed": 7,
		"player_count": 2,
		"players": [
			{"seat": 0, "identity": "lord", "hero": "Liu Bei", "hp": 4, "max_hp": 4, "alive": true}
		]
	}`)

	doc, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected schema version migrated to %d, got %d", CurrentSchemaVersion, doc.SchemaVersion)
	}
	if len(doc.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(doc.Players))
	}
	p := doc.Players[0]
	if p.JudgeArea == nil {
		t.Error("expected migrateV1ToV2 to fill JudgeArea with an empty slice, got nil")
	}
	if p.IsChained {
		t.Error("expected IsChained to default false after migration")
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	raw := []byte(`{"schema_version": 99, "players": []}`)
	_, err := Load(raw)
	if err == nil {
		t.Fatal("expected an error loading a save from a newer schema version")
	}
	var de *engerr.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected an *engerr.DomainError, got %T", err)
	}
	if de.Kind != engerr.ConfigurationError {
		t.Errorf("expected ConfigurationError, got %s", de.Kind)
	}
}

func TestLoadCurrentSchemaRoundTrips(t *testing.T) {
	doc := &Document{
		SchemaVersion: CurrentSchemaVersion,
		SaveVersion:   SaveVersion,
		GameSeed:      42,
		PlayerCount:   2,
		Players: []PlayerRecord{
			{Seat: 0, Identity: "lord", Hero: "Cao Cao", HP: 4, MaxHP: 4, Alive: true, JudgeArea: []string{}},
			{Seat: 1, Identity: "rebel", Hero: "Guan Yu", HP: 4, MaxHP: 4, Alive: true, JudgeArea: []string{}},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.GameSeed != doc.GameSeed || back.PlayerCount != doc.PlayerCount {
		t.Errorf("round trip changed top-level fields: got %+v", back)
	}
	if len(back.Players) != 2 || back.Players[1].Hero != "Guan Yu" {
		t.Errorf("round trip lost player records: got %+v", back.Players)
	}
}

func TestReplayCursor(t *testing.T) {
	log := []ActionLogRecord{
		{Seq: 0, Kind: "draw"},
		{Seq: 1, Kind: "play_sha"},
		{Seq: 2, Kind: "end_turn"},
	}
	r := NewReplay(log)
	if r.Len() != 3 || r.Position() != 0 || r.AtEnd() {
		t.Fatalf("unexpected initial cursor state: len=%d pos=%d atEnd=%v", r.Len(), r.Position(), r.AtEnd())
	}

	rec, ok := r.StepForward()
	if !ok || rec.Kind != "draw" {
		t.Fatalf("expected first record 'draw', got %+v ok=%v", rec, ok)
	}
	rec, ok = r.StepForward()
	if !ok || rec.Kind != "play_sha" {
		t.Fatalf("expected second record 'play_sha', got %+v ok=%v", rec, ok)
	}

	rec, ok = r.StepBack()
	if !ok || rec.Kind != "play_sha" {
		t.Fatalf("expected StepBack to return 'play_sha' again, got %+v ok=%v", rec, ok)
	}
	if r.Position() != 1 {
		t.Fatalf("expected position 1 after one StepBack, got %d", r.Position())
	}

	if err := r.JumpTo(3); err != nil {
		t.Fatalf("JumpTo(3): %v", err)
	}
	if !r.AtEnd() {
		t.Error("expected cursor at end after JumpTo(len)")
	}
	if _, ok := r.StepForward(); ok {
		t.Error("expected StepForward to fail at end of log")
	}

	if err := r.JumpTo(-1); err == nil {
		t.Error("expected JumpTo(-1) to be rejected")
	}
	if err := r.JumpTo(99); err == nil {
		t.Error("expected JumpTo beyond length to be rejected")
	}
}

func TestReplaySpeedDefaultsOnNonPositive(t *testing.T) {
	r := NewReplay(nil)
	r.SetSpeed(2.5)
	if r.Speed() != 2.5 {
		t.Fatalf("expected speed 2.5, got %v", r.Speed())
	}
	r.SetSpeed(0)
	if r.Speed() != 1.0 {
		t.Errorf("expected non-positive speed to reset to 1.0, got %v", r.Speed())
	}
	r.SetSpeed(-3)
	if r.Speed() != 1.0 {
		t.Errorf("expected negative speed to reset to 1.0, got %v", r.Speed())
	}
}

func TestStepBackAtStart(t *testing.T) {
	r := NewReplay([]ActionLogRecord{{Seq: 0, Kind: "draw"}})
	if _, ok := r.StepBack(); ok {
		t.Error("expected StepBack at position 0 to fail")
	}
}
