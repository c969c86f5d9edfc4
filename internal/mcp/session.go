// Package mcp bridges one external controller (normally an LLM driving
// the process over stdio) into a Sanguosha duel as a single seat; every
// other seat is played by internal/ai.Bot. Grounded on the teacher's
// internal/mcp package (GameSession/MCPController/RegisterTools,
// mark3labs/mcp-go), generalized from its 2-player human-TCP-join
// protocol to an N-player, AI-teammate protocol — human multiplayer now
// belongs to internal/netserver's websocket rooms, so this package no
// longer needs its own transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sanguosha/engine/internal/ai"
	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
	"github.com/sanguosha/engine/internal/headless"
	"github.com/sanguosha/engine/internal/skills"
)

// DecisionType identifies what shape of answer a pending decision
// expects back from the external controller.
type DecisionType string

const (
	DecisionChooseAction DecisionType = "choose_action"
	DecisionChooseCards  DecisionType = "choose_cards"
	DecisionYesNo        DecisionType = "yes_no"
	DecisionGameOver     DecisionType = "game_over"
)

// OptionView describes one selectable candidate: an action, a card, or
// a target seat, depending on the owning PendingDecision's Type.
type OptionView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// PendingDecision is what the engine is currently blocked on.
type PendingDecision struct {
	Type    DecisionType `json:"type"`
	Prompt  string       `json:"prompt,omitempty"`
	Options []OptionView `json:"options,omitempty"`
	Min     int          `json:"min,omitempty"`
	Max     int          `json:"max,omitempty"`
}

// SelectionResponse is what take_action/select_cards/answer_yes_no all
// ultimately produce: a set of chosen option indices. An empty slice
// means "decline"/"no"/"end phase", matching how ChooseCards already
// treats an empty selection.
type SelectionResponse struct {
	Indices []int
}

// ToolResponse is the JSON envelope every MCP tool call returns.
type ToolResponse struct {
	Log      []string         `json:"log"`
	Pending  *PendingDecision `json:"pending,omitempty"`
	GameOver bool             `json:"game_over"`
	Winner   string           `json:"winner,omitempty"`
}

// GameSession owns one Duel: seat 0 is the external controller, every
// other seat an ai.Bot.
type GameSession struct {
	duel       *game.Duel
	controller *MCPController

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	logLines []string
	gameOver bool
	winner   string
}

// NewGameSession loads game data from configDir, builds an N-player
// Duel, and starts it in the background: seat 0 is the external
// controller, every other seat an ai.Bot of the given tier.
func NewGameSession(configDir string, players int, seed int64, tier string) (*GameSession, error) {
	data, err := config.LoadGameData(configDir)
	if err != nil {
		return nil, fmt.Errorf("load game data: %w", err)
	}
	if err := skills.ValidateAll(data.Skills); err != nil {
		return nil, fmt.Errorf("validate skill table: %w", err)
	}
	heroes, err := headless.PickHeroes(data, players, seed)
	if err != nil {
		return nil, err
	}

	sess := &GameSession{
		pendingCh: make(chan *PendingDecision, 1),
		winner:    "",
	}
	sess.controller = newMCPController(0, sess)

	controllers := make([]game.PlayerController, players)
	controllers[0] = sess.controller
	for i := 1; i < players; i++ {
		controllers[i] = ai.New(tier)
	}

	luaHandlers, err := skills.LoadLuaPlugins(filepath.Join(configDir, "plugins", "lua"))
	if err != nil {
		return nil, fmt.Errorf("load lua skill plugins: %w", err)
	}
	interp := skills.New(data.Skills, skills.MergeHandlers(skills.BuiltinHandlers(), luaHandlers))
	sess.duel = game.NewDuel(game.DuelConfig{
		Seed:        seed,
		PlayerCount: players,
		Heroes:      heroes,
		CardPool:    game.BuildCardPool(),
		GameData:    data,
	}, controllers, interp)

	go func() {
		winner, err := sess.duel.Run(context.Background())
		sess.mu.Lock()
		sess.gameOver = true
		if err != nil {
			sess.winner = fmt.Sprintf("error: %v", err)
		} else {
			sess.winner = winner
		}
		sess.mu.Unlock()
		sess.pendingCh <- &PendingDecision{Type: DecisionGameOver}
	}()

	return sess, nil
}

func (s *GameSession) appendLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLines = append(s.logLines, line)
}

func (s *GameSession) drainLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.logLines
	s.logLines = nil
	if lines == nil {
		lines = []string{}
	}
	return lines
}

// waitForPending blocks for the controller's next decision (or game
// over) and assembles the tool response around it.
func (s *GameSession) waitForPending() *ToolResponse {
	pending := <-s.pendingCh
	s.currentPending = pending
	resp := &ToolResponse{Log: s.drainLog()}
	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		s.mu.Unlock()
		return resp
	}
	resp.Pending = pending
	return resp
}

func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// eventSummary renders an events.Event as a single log line for the
// external controller, since it only ever sees text, never the engine's
// internal types.
func eventSummary(e *events.Event) string {
	return fmt.Sprintf("%s %v", e.Kind, e.Payload)
}
