// Command sanguosha-server runs the authoritative multi-room websocket
// server: many concurrent duels, each player connected over a
// websocket, reconnect tokens surviving a dropped connection, and a
// periodic sweep of expired reconnect sessions.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
	"github.com/sanguosha/engine/internal/netserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configDir := flag.String("config-dir", "configs", "directory holding heroes.yaml/card_effects.yaml/skills.yaml")
	origins := flag.String("allowed-origins", "http://localhost:3000", "comma-separated list of allowed websocket origins")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	processConfig := flag.String("config", "", "optional TOML process config file; overrides the flag defaults above, not a value explicitly passed on the command line")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if *processConfig != "" {
		pc, err := config.LoadServerProcessConfig(*processConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if pc.Addr != "" && !explicit["addr"] {
			*addr = pc.Addr
		}
		if pc.ConfigDir != "" && !explicit["config-dir"] {
			*configDir = pc.ConfigDir
		}
		if len(pc.AllowedOrigins) > 0 && !explicit["allowed-origins"] {
			*origins = strings.Join(pc.AllowedOrigins, ",")
		}
		if pc.Debug && !explicit["debug"] {
			*debug = true
		}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	data, err := config.LoadGameData(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load game data")
	}

	allowed := strings.Split(*origins, ",")
	for i := range allowed {
		allowed[i] = strings.TrimSpace(allowed[i])
	}

	srv := netserver.NewServer(data, game.BuildCardPool(), allowed)
	log.Info().Str("addr", *addr).Strs("allowed_origins", allowed).Msg("starting sanguosha-server")
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
