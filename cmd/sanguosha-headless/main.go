// Command sanguosha-headless runs one or more full AI-vs-AI duels with
// no UI attached, for load-testing the engine and for the deterministic
// reproducibility check spec.md §8 calls for (same seed, same winner
// and turn count).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanguosha/engine/internal/headless"
)

func main() {
	var (
		seed      int64
		players   int
		maxTurns  int
		configDir string
		tier      string
		repeat    int
		dumpJSON  bool
	)

	root := &cobra.Command{
		Use:   "sanguosha-headless",
		Short: "Run headless AI-vs-AI Sanguosha duels",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < repeat; i++ {
				cfg := headless.Config{
					Seed:        seed + int64(i),
					PlayerCount: players,
					MaxTurns:    maxTurns,
					ConfigDir:   configDir,
					Tier:        tier,
				}
				result, err := headless.Run(context.Background(), cfg)
				if err != nil {
					return fmt.Errorf("run %d (seed %d): %w", i, cfg.Seed, err)
				}
				if dumpJSON {
					out, _ := json.MarshalIndent(result, "", "  ")
					fmt.Println(string(out))
					continue
				}
				fmt.Printf("seed=%d turns=%d winner=%s\n", cfg.Seed, result.Turns, result.Winner)
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.Int64Var(&seed, "seed", 1, "RNG seed")
	flags.IntVar(&players, "players", 4, "number of seats (2-8)")
	flags.IntVar(&maxTurns, "max-turns", 200, "turn cap (0 = unbounded)")
	flags.StringVar(&configDir, "config-dir", "configs", "directory holding heroes.yaml/card_effects.yaml/skills.yaml")
	flags.StringVar(&tier, "tier", "normal", "AI difficulty: easy|normal|hard")
	flags.IntVar(&repeat, "repeat", 1, "number of duels to run, seed incrementing each time")
	flags.BoolVar(&dumpJSON, "json", false, "print the full Result as JSON instead of a one-line summary")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
