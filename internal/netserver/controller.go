package netserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
)

// defaultRequestTimeout is spec.md §5's "default 30s for play,
// configurable per request" — a disconnect or timeout both resolve the
// pending request with the engine's safe "no/default" response,
// grounded on the teacher's NetworkController pattern but adapted from
// "blocking read on the same conn" to "await a channel the recv loop
// resolves", since one room now serves many concurrent connections
// instead of one TCP pipe per duel.
const defaultRequestTimeout = 30 * time.Second

// pendingRequest is the room-scoped completion primitive spec.md §5
// calls for: the game task blocks receiving from ch; the recv loop (or
// a timeout/disconnect) sends exactly once.
type pendingRequest struct {
	ch chan gameResponsePayload
}

// RoomController implements game.PlayerController for one networked
// seat: every call sends a game_request frame and blocks on a
// room-scoped channel that resolves either from a matching
// game_response frame or a timeout, never leaving the engine in a
// partial-mutation state (spec.md §5 "mutation happens only after the
// response resolves").
type RoomController struct {
	room *Room
	seat int

	mu      sync.Mutex
	pending map[string]*pendingRequest
	reqSeq  int
}

func newRoomController(room *Room, seat int) *RoomController {
	return &RoomController{room: room, seat: seat, pending: make(map[string]*pendingRequest)}
}

func (rc *RoomController) nextRequestID() string {
	rc.mu.Lock()
	rc.reqSeq++
	id := fmt.Sprintf("%d-%d", rc.seat, rc.reqSeq)
	rc.mu.Unlock()
	return id
}

// resolve is called by the connection's recv loop when a game_response
// frame arrives for this seat; it is a no-op if the request already
// timed out (the channel send is dropped silently since nobody reads a
// buffered channel twice).
func (rc *RoomController) resolve(requestID string, resp gameResponsePayload) {
	rc.mu.Lock()
	p, ok := rc.pending[requestID]
	if ok {
		delete(rc.pending, requestID)
	}
	rc.mu.Unlock()
	if ok {
		p.ch <- resp
	}
}

// resolveAny resolves whichever single request is currently pending for
// this seat, ignoring request id — used for the game_action message
// type, which (per spec.md §6) carries no request_id since a player's
// own-turn action is always the sole outstanding prompt for that seat
// (spec.md §5: "only one outstanding request exists at a time").
func (rc *RoomController) resolveAny(resp gameResponsePayload) {
	rc.mu.Lock()
	var id string
	for k := range rc.pending {
		id = k
		break
	}
	var p *pendingRequest
	if id != "" {
		p = rc.pending[id]
		delete(rc.pending, id)
	}
	rc.mu.Unlock()
	if p != nil {
		p.ch <- resp
	}
}

// ask sends a game_request frame and blocks for a response or timeout,
// returning ok=false on timeout/disconnect (a safe "no/default").
func (rc *RoomController) ask(ctx context.Context, req gameRequestPayload) (gameResponsePayload, bool) {
	req.RequestID = rc.nextRequestID()
	if req.TimeoutSec == 0 {
		req.TimeoutSec = int(defaultRequestTimeout / time.Second)
	}
	p := &pendingRequest{ch: make(chan gameResponsePayload, 1)}
	rc.mu.Lock()
	rc.pending[req.RequestID] = p
	rc.mu.Unlock()

	rc.room.sendTo(rc.seat, MsgGameRequest, req)

	timer := time.NewTimer(time.Duration(req.TimeoutSec) * time.Second)
	defer timer.Stop()
	select {
	case resp := <-p.ch:
		return resp, true
	case <-timer.C:
		rc.mu.Lock()
		delete(rc.pending, req.RequestID)
		rc.mu.Unlock()
		return gameResponsePayload{}, false
	case <-ctx.Done():
		rc.mu.Lock()
		delete(rc.pending, req.RequestID)
		rc.mu.Unlock()
		return gameResponsePayload{}, false
	}
}

func (rc *RoomController) ChooseAction(ctx context.Context, d *game.Duel, player int, actions []game.Action) (game.Action, error) {
	var cands []string
	for _, a := range actions {
		cands = append(cands, a.String())
	}
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "choose_action", Candidates: cands, Max: len(actions)})
	if !ok || resp.Index < 0 || resp.Index >= len(actions) {
		return game.Action{Type: game.ActionEndPlay}, nil
	}
	return actions[resp.Index], nil
}

func (rc *RoomController) ChooseCards(ctx context.Context, d *game.Duel, player int, prompt string, candidates []*game.CardInstance, min, max int) ([]*game.CardInstance, error) {
	var cands []string
	for _, c := range candidates {
		cands = append(cands, c.Card.Name)
	}
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "choose_cards", Prompt: prompt, Candidates: cands, Min: min, Max: max})
	if !ok {
		return nil, nil
	}
	var out []*game.CardInstance
	for _, idx := range resp.Indices {
		if idx >= 0 && idx < len(candidates) {
			out = append(out, candidates[idx])
		}
	}
	return out, nil
}

func (rc *RoomController) ChooseYesNo(ctx context.Context, d *game.Duel, player int, prompt string) (bool, error) {
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "choose_yes_no", Prompt: prompt})
	if !ok {
		return false, nil
	}
	return resp.Answer, nil
}

func (rc *RoomController) ChooseTarget(ctx context.Context, d *game.Duel, player int, candidates []int, prompt string) (int, bool, error) {
	var cands []string
	for _, c := range candidates {
		cands = append(cands, fmt.Sprintf("seat_%d", c))
	}
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "choose_target", Prompt: prompt, Candidates: cands})
	if !ok || resp.Declined {
		return 0, false, nil
	}
	for _, c := range candidates {
		if c == resp.TargetSeat {
			return c, true, nil
		}
	}
	return 0, false, nil
}

func (rc *RoomController) ChooseSuit(ctx context.Context, d *game.Duel, player int) (game.Suit, error) {
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "choose_suit", Candidates: []string{"spade", "heart", "club", "diamond"}})
	if !ok {
		return game.Spade, nil
	}
	switch resp.Suit {
	case "heart":
		return game.Heart, nil
	case "club":
		return game.Club, nil
	case "diamond":
		return game.Diamond, nil
	default:
		return game.Spade, nil
	}
}

func (rc *RoomController) askForCard(ctx context.Context, kind, prompt string) (*game.CardInstance, bool, error) {
	hand := rc.room.duel.State.Players[rc.seat].Hand
	var cands []string
	for _, c := range hand {
		cands = append(cands, c.Card.Name)
	}
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: kind, Prompt: prompt, Candidates: cands})
	if !ok || resp.Declined || resp.Index < 0 || resp.Index >= len(hand) {
		return nil, false, nil
	}
	return hand[resp.Index], true, nil
}

func (rc *RoomController) AskForShan(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	return rc.askForCard(ctx, "ask_for_shan", "Play a Dodge?")
}

func (rc *RoomController) AskForSha(ctx context.Context, d *game.Duel, player int) (*game.CardInstance, bool, error) {
	return rc.askForCard(ctx, "ask_for_sha", "Play a Strike?")
}

func (rc *RoomController) AskForTao(ctx context.Context, d *game.Duel, savior, dying int) (*game.CardInstance, bool, error) {
	return rc.askForCard(ctx, "ask_for_tao", fmt.Sprintf("Play a Peach to save seat %d?", dying))
}

func (rc *RoomController) AskForWuxie(ctx context.Context, d *game.Duel, responder int, trick string, source, target int, currentlyCancelled bool) (*game.CardInstance, bool, error) {
	prompt := fmt.Sprintf("Nullify %s from seat %d targeting seat %d?", trick, source, target)
	return rc.askForCard(ctx, "ask_for_wuxie", prompt)
}

func (rc *RoomController) ChooseCardFromPlayer(ctx context.Context, d *game.Duel, chooser, target int) (*game.CardInstance, bool, error) {
	hand := rc.room.duel.State.Players[target].Hand
	cands := make([]string, len(hand))
	for i := range hand {
		cands[i] = fmt.Sprintf("card_%d", i) // identity hidden until chosen
	}
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "choose_card_from_player", Candidates: cands, TargetSeat: target})
	if !ok || resp.Index < 0 || resp.Index >= len(hand) {
		return nil, false, nil
	}
	return hand[resp.Index], true, nil
}

func (rc *RoomController) ChooseCardsToDiscard(ctx context.Context, d *game.Duel, player, count int) ([]*game.CardInstance, error) {
	hand := rc.room.duel.State.Players[player].Hand
	return rc.ChooseCards(ctx, d, player, fmt.Sprintf("Discard %d card(s)", count), hand, count, count)
}

func (rc *RoomController) GuanxingSelection(ctx context.Context, d *game.Duel, player int, cards []*game.CardInstance) ([]*game.CardInstance, []*game.CardInstance, error) {
	var cands []string
	for _, c := range cards {
		cands = append(cands, c.Card.Name)
	}
	resp, ok := rc.ask(ctx, gameRequestPayload{Kind: "guanxing", Candidates: cands, Max: len(cards)})
	if !ok || len(resp.Indices) != len(cards) {
		return cards, nil, nil // declined: leave the order unchanged, all on top
	}
	splitAt := resp.TargetSeat // reused field: index dividing top/bottom
	if splitAt < 0 || splitAt > len(cards) {
		splitAt = len(cards)
	}
	var top, bottom []*game.CardInstance
	for i, idx := range resp.Indices {
		if idx < 0 || idx >= len(cards) {
			continue
		}
		if i < splitAt {
			top = append(top, cards[idx])
		} else {
			bottom = append(bottom, cards[idx])
		}
	}
	return top, bottom, nil
}

// Notify and ShowLog push unsolicited state to the client; they don't
// block the engine (spec.md "each call blocks" applies only to the
// request/response prompts above).
func (rc *RoomController) Notify(ctx context.Context, d *game.Duel, e *events.Event) error {
	rc.room.broadcastEvent(ctx, e)
	return nil
}

func (rc *RoomController) ShowLog(ctx context.Context, d *game.Duel, message string) error {
	rc.room.sendTo(rc.seat, MsgChatBroadcast, chatBroadcastPayload{Seat: -1, Message: message})
	return nil
}
