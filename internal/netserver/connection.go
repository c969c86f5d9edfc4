package netserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sanguosha/engine/internal/metrics"
)

// connection wraps one accepted websocket per spec.md §5's "per-
// connection tasks: a receive loop and a heartbeat loop", grounded on
// the teacher's github.com/coder/websocket usage in internal/web/
// server.go, generalized from a dumb byte-forwarding proxy into a frame
// dispatcher that terminates directly into a Room.
type connection struct {
	ws       *websocket.Conn
	id       string // stable per-connection id for rate limiting
	ip       string
	playerID string
	seat     int
	room     *Room
	registry *Registry
	server   *Server

	writeMu sync.Mutex
}

// send marshals payload and writes an Envelope frame.
func (c *connection) send(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("marshal outbound frame")
		return
	}
	c.sendEnvelope(Envelope{Type: msgType, Timestamp: time.Now().UnixMilli(), Data: data})
}

func (c *connection) sendEnvelope(env Envelope) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	raw, err := json.Marshal(env)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.ws.Write(ctx, websocket.MessageText, raw); err != nil {
		log.Debug().Err(err).Str("conn", c.id).Msg("write failed")
	}
}

func (c *connection) sendError(kind, message string) {
	c.send(MsgError, errorPayload{Kind: kind, Message: message})
}

// recvLoop reads frames until the connection closes, rate-limiting and
// size-limiting every non-heartbeat frame (spec.md §4.10), and
// dispatching by type. This is "the recv loop [that] only enqueues
// inputs" from spec.md §5 — it never itself mutates engine state; for
// an in-progress game it hands off to RoomController.resolve, which
// just unblocks the room's own game-task goroutine.
func (c *connection) recvLoop(ctx context.Context) {
	defer c.cleanup()
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		if len(data) > maxFrameBytes {
			c.sendError("protocol", "frame too large")
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendError("protocol", "malformed frame")
			continue
		}
		if env.Type != MsgHeartbeat {
			if !c.registry.limiter.Allow(c.id) {
				c.sendError("rate_limited", "too many messages")
				continue
			}
		}
		c.dispatch(ctx, env)
	}
}

func (c *connection) dispatch(ctx context.Context, env Envelope) {
	switch env.Type {
	case MsgHeartbeat:
		c.handleHeartbeat()
	case MsgRoomCreate:
		c.handleRoomCreate(env)
	case MsgRoomJoin:
		c.handleRoomJoin(ctx, env)
	case MsgRoomList:
		c.handleRoomList()
	case MsgRoomLeave:
		c.handleRoomLeave()
	case MsgRoomReady:
		c.handleRoomReady()
	case MsgRoomStart:
		c.handleRoomStart(ctx)
	case MsgHeroChosen:
		c.handleHeroChosen(env)
	case MsgChat:
		c.handleChat(env)
	case MsgGameAction:
		c.handleGameAction(env)
	case MsgGameResponse:
		c.handleGameResponse(env)
	default:
		c.sendError("protocol", fmt.Sprintf("unknown message type %q", env.Type))
	}
}

func (c *connection) handleHeartbeat() {
	token := ""
	if c.room != nil {
		c.registry.sessions.mu.Lock()
		if s, ok := c.registry.sessions.sessions[c.playerID]; ok {
			s.LastSeen = time.Now()
			token = s.Token
		}
		c.registry.sessions.mu.Unlock()
	}
	c.send(MsgHeartbeatAck, heartbeatAckPayload{Token: token})
}

func (c *connection) handleRoomCreate(env Envelope) {
	var p roomCreatePayload
	_ = json.Unmarshal(env.Data, &p)
	if p.MaxPlayers < 2 || p.MaxPlayers > 8 {
		c.sendError("invalid_action", "max_players must be between 2 and 8")
		return
	}
	room := c.registry.CreateRoom(p.MaxPlayers, p.Password)
	c.joinRoom(room, 0, p.Password)
}

func (c *connection) handleRoomJoin(ctx context.Context, env Envelope) {
	var p roomJoinPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.sendError("protocol", "malformed room_join")
		return
	}
	if p.Reconnect {
		sess, ok := c.registry.sessions.reconnect(p.Token)
		if !ok {
			c.sendError("invalid_action", "reconnect token invalid or expired")
			return
		}
		room, ok := c.registry.Get(sess.RoomID)
		if !ok {
			c.sendError("invalid_action", "room no longer exists")
			return
		}
		c.playerID = sess.PlayerID
		c.seat = sess.Seat
		c.room = room
		room.mu.Lock()
		room.Seats[sess.Seat].conn = c
		room.mu.Unlock()
		room.replaySince(c, p.LastSeq)
		c.send(MsgRoomUpdate, roomUpdatePayload{Room: room.summary(), YouSeat: sess.Seat})
		return
	}
	room, ok := c.registry.Get(p.RoomID)
	if !ok {
		c.sendError("invalid_action", "no such room")
		return
	}
	if !room.checkPassword(p.Password) {
		c.sendError("invalid_action", "wrong password")
		return
	}
	room.mu.Lock()
	seat := -1
	for i, s := range room.Seats {
		if s == nil {
			seat = i
			break
		}
	}
	room.mu.Unlock()
	if seat < 0 {
		c.sendError("invalid_action", "room is full")
		return
	}
	c.joinRoom(room, seat, "")
}

func (c *connection) joinRoom(room *Room, seat int, password string) {
	room.mu.Lock()
	room.Seats[seat] = &seatSlot{conn: c, playerID: c.id}
	full := true
	for _, s := range room.Seats {
		if s == nil {
			full = false
		}
	}
	if full {
		room.State = RoomFull
	}
	summary := room.summary()
	room.mu.Unlock()

	c.playerID = c.id
	c.seat = seat
	c.room = room
	sess := c.registry.sessions.create(c.playerID, room.ID, seat)
	c.send(MsgRoomUpdate, roomUpdatePayload{Room: summary, YouSeat: seat, Token: sess.Token})
	room.broadcast(MsgRoomUpdate, roomUpdatePayload{Room: summary, YouSeat: -1})
}

func (c *connection) handleRoomList() {
	c.send(MsgRoomListReply, roomListReplyPayload{Rooms: c.registry.List()})
}

func (c *connection) handleRoomLeave() {
	if c.room == nil {
		return
	}
	room := c.room
	room.mu.Lock()
	if c.seat >= 0 && c.seat < len(room.Seats) {
		room.Seats[c.seat] = nil
	}
	room.mu.Unlock()
	c.registry.sessions.remove(c.playerID)
	room.broadcast(MsgRoomUpdate, roomUpdatePayload{Room: room.summary(), YouSeat: -1})
	c.room = nil
}

func (c *connection) handleRoomReady() {
	if c.room == nil {
		return
	}
	c.room.mu.Lock()
	if c.seat >= 0 && c.seat < len(c.room.Seats) && c.room.Seats[c.seat] != nil {
		c.room.Seats[c.seat].ready = true
	}
	summary := c.room.summary()
	c.room.mu.Unlock()
	c.room.broadcast(MsgRoomUpdate, roomUpdatePayload{Room: summary, YouSeat: -1})
}

func (c *connection) handleHeroChosen(env Envelope) {
	if c.room == nil {
		return
	}
	var p heroChosenPayload
	_ = json.Unmarshal(env.Data, &p)
	if _, ok := c.room.gameData.Heroes[p.Hero]; !ok {
		c.sendError("invalid_action", "unknown hero")
		return
	}
	c.room.mu.Lock()
	if c.seat >= 0 && c.seat < len(c.room.Seats) && c.room.Seats[c.seat] != nil {
		c.room.Seats[c.seat].heroChosen = p.Hero
	}
	c.room.mu.Unlock()
}

func (c *connection) handleRoomStart(ctx context.Context) {
	if c.room == nil || c.seat != c.room.HostSeat {
		c.sendError("invalid_action", "only the host may start the room")
		return
	}
	if err := c.room.start(ctx); err != nil {
		c.sendError("invalid_action", err.Error())
	}
}

func (c *connection) handleChat(env Envelope) {
	if c.room == nil {
		return
	}
	var p chatPayload
	_ = json.Unmarshal(env.Data, &p)
	c.room.broadcast(MsgChatBroadcast, chatBroadcastPayload{Seat: c.seat, Message: sanitizeChat(p.Message)})
}

func (c *connection) handleGameAction(env Envelope) {
	// game_action frames (a player choosing to play a card / activate a
	// skill outside of an outstanding game_request) are routed the same
	// way as a game_response to a "choose_action" request: the room's
	// game task is always the one blocked waiting, so this is only
	// meaningful while such a request is outstanding for this seat.
	if c.room == nil || len(c.room.controllers) <= c.seat {
		c.sendError("invalid_phase", "no game in progress")
		return
	}
	if !c.registry.limiter.AllowAction(c.id) {
		c.sendError("rate_limited", "too many actions")
		return
	}
	var p gameActionPayload
	_ = json.Unmarshal(env.Data, &p)
	metrics.ActionsTotal.WithLabelValues(env.Type).Inc()
	c.room.controllers[c.seat].resolveAny(gameResponsePayload{Index: p.ActionIndex, Indices: p.CardIndices})
}

func (c *connection) handleGameResponse(env Envelope) {
	if c.room == nil || len(c.room.controllers) <= c.seat {
		return
	}
	var p gameResponsePayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return
	}
	c.room.controllers[c.seat].resolve(p.RequestID, p)
}

func (c *connection) cleanup() {
	c.registry.limiter.Remove(c.id)
	if c.room != nil {
		c.registry.sessions.disconnect(c.playerID)
		c.room.mu.Lock()
		if c.seat >= 0 && c.seat < len(c.room.Seats) && c.room.Seats[c.seat] != nil {
			c.room.Seats[c.seat].conn = nil
		}
		c.room.mu.Unlock()
	}
	c.server.releaseIP(c.ip)
}
