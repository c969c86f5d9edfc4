package ai

import (
	"encoding/json"
	"testing"
)

func TestDecisionLogAssignsSequentialSeq(t *testing.T) {
	log := NewDecisionLog(true)
	log.Log(Decision{Player: 0, Action: "play_card", Chosen: "Sha"})
	log.Log(Decision{Player: 1, Action: "end_turn"})

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Fatalf("expected sequential Seq 1,2, got %d,%d", entries[0].Seq, entries[1].Seq)
	}
}

func TestDecisionLogDisabledDropsEntries(t *testing.T) {
	log := NewDecisionLog(false)
	log.Log(Decision{Player: 0, Action: "play_card"})
	if len(log.Entries()) != 0 {
		t.Fatalf("expected a disabled log to drop entries, got %d", len(log.Entries()))
	}
}

func TestDecisionLogNilReceiverIsSafe(t *testing.T) {
	var log *DecisionLog
	log.Log(Decision{Action: "noop"})
	if got := log.Entries(); got != nil {
		t.Errorf("expected nil Entries() from a nil log, got %v", got)
	}
	if got := log.Summary(); len(got) != 0 {
		t.Errorf("expected an empty Summary() from a nil log, got %v", got)
	}
	raw, err := log.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON on nil log: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("expected '[]' from a nil log's ExportJSON, got %q", raw)
	}
}

func TestDecisionLogClearResetsSeq(t *testing.T) {
	log := NewDecisionLog(true)
	log.Log(Decision{Action: "a"})
	log.Clear()
	log.Log(Decision{Action: "b"})
	entries := log.Entries()
	if len(entries) != 1 || entries[0].Seq != 1 {
		t.Fatalf("expected Clear to reset seq counter, got %+v", entries)
	}
}

func TestDecisionLogSummaryTalliesByAction(t *testing.T) {
	log := NewDecisionLog(true)
	log.Log(Decision{Action: "play_card"})
	log.Log(Decision{Action: "play_card"})
	log.Log(Decision{Action: "end_turn"})

	summary := log.Summary()
	if summary["play_card"] != 2 || summary["end_turn"] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestDecisionLogMarshalJSONOmitsBookkeeping(t *testing.T) {
	log := NewDecisionLog(true)
	log.Log(Decision{Player: 2, Action: "play_card", Chosen: "Sha"})

	raw, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded []Decision
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("expected MarshalJSON to produce a plain decision list, got %s: %v", raw, err)
	}
	if len(decoded) != 1 || decoded[0].Chosen != "Sha" {
		t.Fatalf("unexpected decoded decisions: %+v", decoded)
	}
}
