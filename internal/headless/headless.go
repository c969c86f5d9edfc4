// Package headless runs a complete Sanguosha duel with every seat
// controlled by internal/ai.Bot, matching spec.md §8 scenario #1:
// "run_headless_battle(seed, player_count, max_turns) completes
// deterministically, reaching the same winner and turn count on a
// repeat run with the same seed." Grounded on the teacher's duel_test.go
// runDuelToCompletion harness, generalized from a test helper into a
// standalone entry point usable by cmd/sanguosha-headless and by tests.
package headless

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sanguosha/engine/internal/ai"
	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
	"github.com/sanguosha/engine/internal/skills"
)

// Config selects the battle to run. ConfigDir points at a directory
// holding heroes.yaml/card_effects.yaml/skills.yaml (and optionally a
// plugins/ subdirectory); the repo's top-level configs/ directory is
// the normal value.
type Config struct {
	Seed        int64
	PlayerCount int
	MaxTurns    int
	ConfigDir   string
	Tier        string // AI difficulty applied to every seat
}

// Result summarizes a finished duel for a caller that doesn't want the
// full ActionLog.
type Result struct {
	Winner     string // faction name
	Turns      int
	ActionLog  []game.ActionLogEntry
	Decisions  map[int]*ai.DecisionLog
}

// Run loads game data, builds a Duel with one ai.Bot per seat, and
// drives it to completion. Two calls with identical Config values
// produce the same winner, turn count and sequence of logged actions,
// since the engine's only source of randomness is the single RNG
// GameState seeds from cfg.Seed; only the ActionLog timestamps differ.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	data, err := config.LoadGameData(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load game data: %w", err)
	}
	if err := skills.ValidateAll(data.Skills); err != nil {
		return nil, fmt.Errorf("validate skill table: %w", err)
	}

	heroes, err := PickHeroes(data, cfg.PlayerCount, cfg.Seed)
	if err != nil {
		return nil, err
	}

	bots := make([]*ai.Bot, cfg.PlayerCount)
	controllers := make([]game.PlayerController, cfg.PlayerCount)
	for i := range bots {
		bots[i] = ai.New(cfg.Tier)
		controllers[i] = bots[i]
	}

	luaHandlers, err := skills.LoadLuaPlugins(filepath.Join(cfg.ConfigDir, "plugins", "lua"))
	if err != nil {
		return nil, fmt.Errorf("load lua skill plugins: %w", err)
	}
	interp := skills.New(data.Skills, skills.MergeHandlers(skills.BuiltinHandlers(), luaHandlers))
	d := game.NewDuel(game.DuelConfig{
		Seed:        cfg.Seed,
		PlayerCount: cfg.PlayerCount,
		Heroes:      heroes,
		CardPool:    game.BuildCardPool(),
		GameData:    data,
		MaxTurns:    cfg.MaxTurns,
	}, controllers, interp)

	winner, err := d.Run(ctx)
	if err != nil {
		return nil, err
	}

	decisions := make(map[int]*ai.DecisionLog, len(bots))
	for i, b := range bots {
		decisions[i] = b.Log
	}
	return &Result{
		Winner:    winner,
		Turns:     d.State.Turn,
		ActionLog: d.ActionLog(),
		Decisions: decisions,
	}, nil
}

// PickHeroes deterministically assigns heroes to seats: the roster is
// sorted by name (map iteration order is not stable) then walked
// cyclically from an offset derived from the seed, so different seeds
// see different hero assignments without touching the engine's own RNG
// (hero selection happens before NewGameState exists). Shared by Run
// and internal/mcp.NewGameSession so both entry points assign heroes
// the same deterministic way.
func PickHeroes(data *config.GameData, n int, seed int64) ([]*game.Hero, error) {
	if len(data.Heroes) < n {
		return nil, fmt.Errorf("roster has %d heroes, need %d", len(data.Heroes), n)
	}
	names := make([]string, 0, len(data.Heroes))
	for name := range data.Heroes {
		names = append(names, name)
	}
	sort.Strings(names)

	offset := int(seed % int64(len(names)))
	if offset < 0 {
		offset += len(names)
	}
	out := make([]*game.Hero, n)
	for i := 0; i < n; i++ {
		hc := data.Heroes[names[(offset+i)%len(names)]]
		out[i] = &game.Hero{Name: hc.Name, Faction: hc.Faction, MaxHP: hc.MaxHP, Skills: hc.Skills}
	}
	return out, nil
}
