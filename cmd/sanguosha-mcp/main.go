// Command sanguosha-mcp exposes one Sanguosha duel to an external
// controller (typically an LLM) over the Model Context Protocol via
// stdio. The controller drives seat 0 through start_game/take_action/
// select_cards/answer_yes_no; every other seat is played by the
// built-in AI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/sanguosha/engine/internal/mcp"
)

func main() {
	configDir := flag.String("config-dir", "configs", "directory holding heroes.yaml/card_effects.yaml/skills.yaml")
	flag.Parse()

	mcp.SetConfigDir(*configDir)

	s := server.NewMCPServer("sanguosha", "1.0.0")
	mcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
