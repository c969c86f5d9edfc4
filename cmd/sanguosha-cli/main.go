// Command sanguosha-cli runs one duel in the current terminal: you play
// seat 0 via plain text prompts, every other seat is played by the
// built-in AI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sanguosha/engine/internal/ai"
	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
	"github.com/sanguosha/engine/internal/headless"
	"github.com/sanguosha/engine/internal/skills"
	"github.com/sanguosha/engine/internal/term"
)

func main() {
	seed := flag.Int64("seed", 1, "RNG seed")
	players := flag.Int("players", 4, "number of seats (2-8)")
	configDir := flag.String("config-dir", "configs", "directory holding heroes.yaml/card_effects.yaml/skills.yaml")
	tier := flag.String("tier", "normal", "AI difficulty for the other seats")
	flag.Parse()

	if err := run(*seed, *players, *configDir, *tier); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(seed int64, players int, configDir, tier string) error {
	data, err := config.LoadGameData(configDir)
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	if err := skills.ValidateAll(data.Skills); err != nil {
		return fmt.Errorf("validate skill table: %w", err)
	}
	heroes, err := headless.PickHeroes(data, players, seed)
	if err != nil {
		return err
	}

	controllers := make([]game.PlayerController, players)
	controllers[0] = term.New(0, os.Stdin, os.Stdout)
	for i := 1; i < players; i++ {
		controllers[i] = ai.New(tier)
	}

	interp := skills.New(data.Skills, skills.BuiltinHandlers())
	d := game.NewDuel(game.DuelConfig{
		Seed:        seed,
		PlayerCount: players,
		Heroes:      heroes,
		CardPool:    game.BuildCardPool(),
		GameData:    data,
	}, controllers, interp)

	winner, err := d.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("\ngame over — %s wins\n", winner)
	return nil
}
