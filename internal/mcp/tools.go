package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// activeSession is the singleton game session (one per stdio process):
// an external controller only ever drives one seat at a time.
var activeSession *GameSession

// configDir is the directory holding heroes.yaml/card_effects.yaml/
// skills.yaml, set by main before the server starts serving requests.
var configDir = "configs"

// SetConfigDir overrides the default game-data directory.
func SetConfigDir(dir string) {
	configDir = dir
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(takeActionTool(), handleTakeAction)
	s.AddTool(selectCardsTool(), handleSelectCards)
	s.AddTool(answerYesNoTool(), handleAnswerYesNo)
	s.AddTool(getGameStateTool(), handleGetGameState)
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Sanguosha duel. You play seat 0; every other seat is played by the built-in AI. Returns the first pending decision."),
		mcp.WithNumber("players", mcp.Required(), mcp.Description("Number of seats, 2-8")),
		mcp.WithNumber("seed", mcp.Required(), mcp.Description("RNG seed for a reproducible duel")),
		mcp.WithString("tier", mcp.Description("AI difficulty for the other seats: easy|normal|hard (default normal)")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action by index from the pending options. Use when the pending decision type is 'choose_action'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending decision's options")),
	)
}

func selectCardsTool() mcp.Tool {
	return mcp.NewTool("select_cards",
		mcp.WithDescription("Select zero or more options by index from the pending candidates. Use when the pending decision type is 'choose_cards'."),
		mcp.WithString("indices", mcp.Description("Space-separated 0-based indices (e.g. '0 2'), or omit/empty for no selection")),
	)
}

func answerYesNoTool() mcp.Tool {
	return mcp.NewTool("answer_yes_no",
		mcp.WithDescription("Answer a yes/no question. Use when the pending decision type is 'yes_no'."),
		mcp.WithBoolean("answer", mcp.Required(), mcp.Description("true for yes, false for no")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Read the accumulated log lines and current pending decision without submitting a response."),
	)
}

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	players := request.GetInt("players", 4)
	seed := request.GetInt("seed", 1)
	tier := request.GetString("tier", "normal")

	if players < 2 || players > 8 {
		return mcp.NewToolResultError("players must be between 2 and 8"), nil
	}

	sess, err := NewGameSession(configDir, players, int64(seed), tier)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to start game: %v", err), nil
	}
	activeSession = sess

	return mcp.NewToolResultText(respondJSON(sess.waitForPending())), nil
}

// submitAndAdvance pushes a response to the controller's channel, waits
// for the next decision (or game over), and clears activeSession once
// the duel finishes so a fresh start_game call can begin another one.
func submitAndAdvance(resp SelectionResponse) string {
	sess := activeSession
	sess.controller.responseCh <- resp
	out := sess.waitForPending()
	if out.GameOver {
		activeSession = nil
	}
	return respondJSON(out)
}

func handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	pending := activeSession.currentPending
	if pending == nil || pending.Type != DecisionChooseAction {
		return mcp.NewToolResultErrorf("wrong tool: pending decision is %q, not choose_action", pendingTypeOrNone(pending)), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Options) {
		return mcp.NewToolResultErrorf("invalid index %d: must be 0-%d", index, len(pending.Options)-1), nil
	}
	return mcp.NewToolResultText(submitAndAdvance(SelectionResponse{Indices: []int{index}})), nil
}

func handleSelectCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	pending := activeSession.currentPending
	if pending == nil || pending.Type != DecisionChooseCards {
		return mcp.NewToolResultErrorf("wrong tool: pending decision is %q, not choose_cards", pendingTypeOrNone(pending)), nil
	}

	indicesStr := request.GetString("indices", "")
	var indices []int
	if strings.TrimSpace(indicesStr) != "" {
		for _, p := range strings.Fields(indicesStr) {
			idx, err := strconv.Atoi(p)
			if err != nil {
				return mcp.NewToolResultErrorf("invalid index %q: must be an integer", p), nil
			}
			if idx < 0 || idx >= len(pending.Options) {
				return mcp.NewToolResultErrorf("index %d out of range: must be 0-%d", idx, len(pending.Options)-1), nil
			}
			indices = append(indices, idx)
		}
	}
	if len(indices) < pending.Min {
		return mcp.NewToolResultErrorf("must select at least %d option(s), got %d", pending.Min, len(indices)), nil
	}
	if pending.Max > 0 && len(indices) > pending.Max {
		return mcp.NewToolResultErrorf("must select at most %d option(s), got %d", pending.Max, len(indices)), nil
	}
	return mcp.NewToolResultText(submitAndAdvance(SelectionResponse{Indices: indices})), nil
}

func handleAnswerYesNo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	pending := activeSession.currentPending
	if pending == nil || pending.Type != DecisionYesNo {
		return mcp.NewToolResultErrorf("wrong tool: pending decision is %q, not yes_no", pendingTypeOrNone(pending)), nil
	}

	var indices []int
	if request.GetBool("answer", false) {
		indices = []int{0}
	}
	return mcp.NewToolResultText(submitAndAdvance(SelectionResponse{Indices: indices})), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	sess := activeSession
	sess.mu.Lock()
	resp := &ToolResponse{
		Log:      append([]string(nil), sess.logLines...),
		Pending:  sess.currentPending,
		GameOver: sess.gameOver,
		Winner:   sess.winner,
	}
	sess.mu.Unlock()
	if resp.Pending != nil && resp.Pending.Type == DecisionGameOver {
		resp.Pending = nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func pendingTypeOrNone(p *PendingDecision) DecisionType {
	if p == nil {
		return "none"
	}
	return p.Type
}
