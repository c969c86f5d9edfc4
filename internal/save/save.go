// Package save implements save/load serialization and action-log replay
// (spec.md §4.9). Grounded on the teacher's log.MemoryLogger
// (Seq-incrementing event records, internal/log/memory.go) for the
// action-log shape, and original_source/game/save_system.py's
// SAVE_VERSION/JSON-document idea for the save-record shape; the
// (from,to) migration-function registry is new, built per spec.md's
// "missing schema_version is treated as 1" / "schema 1→2 adds judge_area,
// is_chained, is_flipped" requirement, which the source doesn't itself
// implement as a chain.
package save

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sanguosha/engine/internal/engerr"
	"github.com/sanguosha/engine/internal/game"
)

// CurrentSchemaVersion is the schema this package writes; Load migrates
// any older document up to it before returning.
const CurrentSchemaVersion = 2

// SaveVersion is a free-form build/release tag recorded in every save,
// independent of SchemaVersion (spec.md §4.9's "free-form save_version
// string").
const SaveVersion = "sanguosha-engine-1.0"

// PlayerRecord is one seat's serialized state.
type PlayerRecord struct {
	Seat             int      `json:"seat"`
	Identity         string   `json:"identity"`
	IdentityRevealed bool     `json:"identity_revealed"`
	Hero             string   `json:"hero"`
	HP               int      `json:"hp"`
	MaxHP            int      `json:"max_hp"`
	Hand             []string `json:"hand"`
	Weapon           string   `json:"weapon,omitempty"`
	Armor            string   `json:"armor,omitempty"`
	OffensiveHorse   string   `json:"offensive_horse,omitempty"`
	DefensiveHorse   string   `json:"defensive_horse,omitempty"`
	Alive            bool     `json:"alive"`

	// JudgeArea, IsChained, IsFlipped only appear from schema 2 onward;
	// migrateV1ToV2 fills them in for older documents.
	JudgeArea []string `json:"judge_area"`
	IsChained bool     `json:"is_chained"`
	IsFlipped bool     `json:"is_flipped"`
}

// ActionLogRecord mirrors game.ActionLogEntry in a JSON-stable shape.
type ActionLogRecord struct {
	Seq       int            `json:"seq"`
	Kind      string         `json:"action_kind"`
	PlayerID  int            `json:"player_id"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Document is the full save file contents (spec.md §6's "Save file"
// shape). Load migrates the raw JSON before decoding it, so a loaded
// Document always carries CurrentSchemaVersion.
type Document struct {
	SchemaVersion       int               `json:"schema_version"`
	SaveVersion         string            `json:"save_version"`
	SavedAt             string            `json:"saved_at"`
	GameSeed            int64             `json:"game_seed"`
	PlayerCount         int               `json:"player_count"`
	Phase               string            `json:"phase"`
	RoundCount          int               `json:"round_count"`
	CurrentPlayerIndex  int               `json:"current_player_index"`
	WinnerIdentity      *string           `json:"winner_identity"`
	Players             []PlayerRecord    `json:"players"`
	DeckRemaining       int               `json:"deck_remaining"`
	DiscardPileCount    int               `json:"discard_pile_count"`
	ActionLog           []ActionLogRecord `json:"action_log"`
}

// Serialize builds a Document from a live duel's state and action log.
func Serialize(d *game.Duel, now time.Time) *Document {
	gs := d.State
	doc := &Document{
		SchemaVersion:      CurrentSchemaVersion,
		SaveVersion:        SaveVersion,
		SavedAt:            now.UTC().Format(time.RFC3339),
		GameSeed:           gs.Seed,
		PlayerCount:        len(gs.Players),
		Phase:              gs.Phase.String(),
		RoundCount:         gs.Turn,
		CurrentPlayerIndex: gs.TurnPlayer,
		DeckRemaining:      gs.Deck.Remaining(),
		DiscardPileCount:   gs.Deck.Discarded(),
	}
	if gs.Winner != "" {
		w := gs.WinnerIdentity
		doc.WinnerIdentity = &w
	}
	for _, p := range gs.Players {
		doc.Players = append(doc.Players, serializePlayer(p))
	}
	for _, e := range d.ActionLog() {
		doc.ActionLog = append(doc.ActionLog, ActionLogRecord{
			Seq: e.Seq, Kind: e.Kind, PlayerID: e.PlayerID, Timestamp: e.Timestamp, Data: e.Data,
		})
	}
	return doc
}

func serializePlayer(p *game.Player) PlayerRecord {
	heroName := ""
	if p.Hero != nil {
		heroName = p.Hero.Name
	}
	r := PlayerRecord{
		Seat:             p.Seat,
		Identity:         p.Identity.String(),
		IdentityRevealed: p.IdentityRevealed,
		Hero:             heroName,
		HP:               p.HP,
		MaxHP:            p.MaxHP,
		Alive:            p.IsAlive(),
		IsChained:        p.IsChained,
		IsFlipped:        p.IdentityRevealed,
	}
	for _, c := range p.Hand {
		r.Hand = append(r.Hand, c.Card.Name)
	}
	for _, jc := range p.Judgment {
		r.JudgeArea = append(r.JudgeArea, jc.Card.Name)
	}
	if p.Equipment.Weapon != nil {
		r.Weapon = p.Equipment.Weapon.Card.Name
	}
	if p.Equipment.Armor != nil {
		r.Armor = p.Equipment.Armor.Card.Name
	}
	if p.Equipment.OffensiveHorse != nil {
		r.OffensiveHorse = p.Equipment.OffensiveHorse.Card.Name
	}
	if p.Equipment.DefensiveHorse != nil {
		r.DefensiveHorse = p.Equipment.DefensiveHorse.Card.Name
	}
	return r
}

// WriteFile serializes and writes a document to path as indented JSON.
func WriteFile(path string, doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return engerr.New(engerr.DataLoadError, fmt.Sprintf("marshal save document: %v", err))
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return engerr.New(engerr.DataLoadError, fmt.Sprintf("write save file: %v", err))
	}
	return nil
}

// LoadFile reads a save file from disk, migrating it to
// CurrentSchemaVersion. Newer-than-supported schemas fail loudly per
// spec.md §4.9.
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("read save file: %v", err))
	}
	return Load(raw)
}

// Load parses and migrates a save document from raw JSON bytes.
func Load(raw []byte) (*Document, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("parse save document: %v", err))
	}
	version := schemaVersionOf(generic)
	if version > CurrentSchemaVersion {
		return nil, engerr.New(engerr.ConfigurationError, fmt.Sprintf("save schema %d is newer than supported %d", version, CurrentSchemaVersion))
	}
	migrated, err := migrate(generic, version)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(migrated)
	if err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("remarshal migrated save: %v", err))
	}
	var doc Document
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("decode migrated save: %v", err))
	}
	return &doc, nil
}

// schemaVersionOf treats a missing schema_version as 1, per spec.md.
func schemaVersionOf(doc map[string]any) int {
	v, ok := doc["schema_version"]
	if !ok {
		return 1
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	default:
		return 1
	}
}

// migrationFunc upgrades a raw document by exactly one schema step.
type migrationFunc func(map[string]any) map[string]any

// migrations is the (from,to) registry spec.md §4.9 calls for; each
// entry upgrades schema N to N+1. Only one step exists today.
var migrations = map[int]migrationFunc{
	1: migrateV1ToV2,
}

func migrate(doc map[string]any, from int) (map[string]any, error) {
	for v := from; v < CurrentSchemaVersion; v++ {
		fn, ok := migrations[v]
		if !ok {
			return nil, engerr.New(engerr.ConfigurationError, fmt.Sprintf("no migration registered from schema %d", v))
		}
		doc = fn(doc)
	}
	doc["schema_version"] = CurrentSchemaVersion
	return doc, nil
}

// migrateV1ToV2 adds judge_area=[], is_chained=false, is_flipped=false
// to every player record that lacks them (spec.md §4.9).
func migrateV1ToV2(doc map[string]any) map[string]any {
	players, ok := doc["players"].([]any)
	if !ok {
		return doc
	}
	for _, raw := range players {
		p, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := p["judge_area"]; !ok {
			p["judge_area"] = []any{}
		}
		if _, ok := p["is_chained"]; !ok {
			p["is_chained"] = false
		}
		if _, ok := p["is_flipped"]; !ok {
			p["is_flipped"] = false
		}
	}
	doc["players"] = players
	doc["schema_version"] = 2
	return doc
}
