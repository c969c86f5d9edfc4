package netserver

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/events"
	"github.com/sanguosha/engine/internal/game"
	"github.com/sanguosha/engine/internal/metrics"
	"github.com/sanguosha/engine/internal/save"
	"github.com/sanguosha/engine/internal/skills"
)

type roomLifecycle int

const (
	RoomWaiting roomLifecycle = iota
	RoomFull
	RoomPlaying
	RoomFinished
)

func (s roomLifecycle) String() string {
	switch s {
	case RoomWaiting:
		return "waiting"
	case RoomFull:
		return "full"
	case RoomPlaying:
		return "playing"
	case RoomFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// loggedEvent is one entry in a room's ordered event log, replayed to a
// reconnecting client whose last_seq is behind (spec.md §4.10).
type loggedEvent struct {
	Seq      int
	Envelope Envelope
}

// seatSlot is one occupied or vacant seat in a room.
type seatSlot struct {
	conn       *connection // nil if vacant
	playerID   string
	heroChosen string
	ready      bool
}

// Room is the authoritative server's per-match unit (spec.md §4.10):
// room id, host, max players, lifecycle state, connected players, an
// ordered event log with a monotonic seq, and an engine handle once play
// starts. Grounded on the teacher's single Duel-per-connection-pair
// model, generalized to N seats and a registry of many concurrent rooms.
type Room struct {
	mu         sync.Mutex
	ID         string
	HostSeat   int
	MaxPlayers int
	State      roomLifecycle
	Seats      []*seatSlot
	passwordHash []byte

	events  []loggedEvent
	nextSeq int

	duel        *game.Duel
	gameData    *config.GameData
	cardPool    []*game.Card
	controllers []*RoomController
	cancel      context.CancelFunc
}

func newRoom(id string, maxPlayers int, password string) *Room {
	var hash []byte
	if password != "" {
		hash, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	}
	r := &Room{
		ID:           id,
		MaxPlayers:   maxPlayers,
		State:        RoomWaiting,
		Seats:        make([]*seatSlot, maxPlayers),
		passwordHash: hash,
	}
	return r
}

func (r *Room) checkPassword(attempt string) bool {
	if len(r.passwordHash) == 0 {
		return true
	}
	return bcrypt.CompareHashAndPassword(r.passwordHash, []byte(attempt)) == nil
}

func (r *Room) summary() roomSummary {
	n := 0
	for _, s := range r.Seats {
		if s != nil {
			n++
		}
	}
	return roomSummary{
		RoomID:      r.ID,
		HostSeat:    r.HostSeat,
		MaxPlayers:  r.MaxPlayers,
		State:       r.State.String(),
		PlayerCount: n,
	}
}

// sendTo writes an outbound frame to a single seat, if occupied.
func (r *Room) sendTo(seat int, msgType string, payload any) {
	r.mu.Lock()
	var c *connection
	if seat >= 0 && seat < len(r.Seats) && r.Seats[seat] != nil {
		c = r.Seats[seat].conn
	}
	r.mu.Unlock()
	if c != nil {
		c.send(msgType, payload)
	}
}

// broadcast writes an outbound frame to every occupied seat.
func (r *Room) broadcast(msgType string, payload any) {
	r.mu.Lock()
	conns := make([]*connection, 0, len(r.Seats))
	for _, s := range r.Seats {
		if s != nil && s.conn != nil {
			conns = append(conns, s.conn)
		}
	}
	r.mu.Unlock()
	for _, c := range conns {
		c.send(msgType, payload)
	}
}

// broadcastEvent assigns the next seq under the room's game task and
// fans the delta out to every connected seat, logging it for reconnect
// replay (spec.md §4.10/§5: "the server assigns seq under a per-room
// monotonic counter accessed only from that room's game task").
func (r *Room) broadcastEvent(ctx context.Context, e *events.Event) {
	r.mu.Lock()
	r.nextSeq++
	seq := r.nextSeq
	env := Envelope{Type: MsgGameEvent, Timestamp: time.Now().UnixMilli(), Seq: seq, Data: marshalData(map[string]any{
		"kind":    string(e.Kind),
		"payload": e.Payload,
	})}
	r.events = append(r.events, loggedEvent{Seq: seq, Envelope: env})
	conns := make([]*connection, 0, len(r.Seats))
	for _, s := range r.Seats {
		if s != nil && s.conn != nil {
			conns = append(conns, s.conn)
		}
	}
	r.mu.Unlock()
	for _, c := range conns {
		c.sendEnvelope(env)
	}
}

// replaySince resends every logged event with seq > lastSeq to a
// reconnecting connection, in order, before it rejoins live broadcast
// (spec.md §4.10 "replays every event with seq > last_seq in order
// before resuming live broadcast").
func (r *Room) replaySince(c *connection, lastSeq int) {
	r.mu.Lock()
	var toSend []Envelope
	for _, le := range r.events {
		if le.Seq > lastSeq {
			toSend = append(toSend, le.Envelope)
		}
	}
	r.mu.Unlock()
	for _, env := range toSend {
		c.sendEnvelope(env)
	}
}

// start builds the engine and runs the duel in its own goroutine — the
// room's game task, per spec.md §5: only this goroutine mutates engine
// state, the recv loop only enqueues inputs via RoomController.resolve.
func (r *Room) start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State != RoomWaiting && r.State != RoomFull {
		return fmt.Errorf("room %s cannot start from state %s", r.ID, r.State)
	}

	n := len(r.Seats)
	heroes := make([]*game.Hero, n)
	for i, s := range r.Seats {
		hc, ok := r.gameData.Heroes[s.heroChosen]
		if !ok {
			return fmt.Errorf("seat %d has no valid hero chosen", i)
		}
		heroes[i] = &game.Hero{Name: hc.Name, Faction: hc.Faction, MaxHP: hc.MaxHP, Skills: hc.Skills}
	}

	controllers := make([]*RoomController, n)
	gameControllers := make([]game.PlayerController, n)
	for i := 0; i < n; i++ {
		rc := newRoomController(r, i)
		controllers[i] = rc
		gameControllers[i] = rc
	}

	interp := skills.New(r.gameData.Skills, skills.BuiltinHandlers())
	d := game.NewDuel(game.DuelConfig{
		Seed:        time.Now().UnixNano(),
		PlayerCount: n,
		Heroes:      heroes,
		CardPool:    r.cardPool,
		GameData:    r.gameData,
	}, gameControllers, interp)

	r.duel = d
	r.controllers = controllers
	r.State = RoomPlaying

	roomCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.runGame(roomCtx)
	return nil
}

func (r *Room) runGame(ctx context.Context) {
	winner, err := r.duel.Run(ctx)
	r.mu.Lock()
	r.State = RoomFinished
	r.mu.Unlock()
	payload := gameOverPayload{Winner: winner, WinnerIdentity: r.duel.State.WinnerIdentity}
	if err != nil {
		r.broadcast(MsgError, errorPayload{Kind: "engine_error", Message: err.Error()})
		return
	}
	metrics.DuelsCompletedTotal.WithLabelValues(winner).Inc()
	r.broadcast(MsgGameOver, payload)
}

// snapshot builds a save.Document of the room's current engine state,
// used for an explicit save command or crash-recovery hook.
func (r *Room) snapshot() *save.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.duel == nil {
		return nil
	}
	return save.Serialize(r.duel, time.Now())
}

func marshalData(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

// --- registry ---

// Registry owns every live room, keyed by id, and the session/token/
// rate-limit state shared across rooms (spec.md §4.10: "the connection
// token manager and room registry are owned by the server task").
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	sessions *sessionManager
	limiter  *connRateLimiter
	gameData *config.GameData
	cardPool []*game.Card
}

func NewRegistry(gameData *config.GameData, cardPool []*game.Card) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		sessions: newSessionManager(),
		limiter:  newConnRateLimiter(),
		gameData: gameData,
		cardPool: cardPool,
	}
}

func (reg *Registry) CreateRoom(maxPlayers int, password string) *Room {
	id := newRoomID()
	r := newRoom(id, maxPlayers, password)
	r.gameData = reg.gameData
	r.cardPool = reg.cardPool
	reg.mu.Lock()
	reg.rooms[id] = r
	n := len(reg.rooms)
	reg.mu.Unlock()
	metrics.ActiveRooms.Set(float64(n))
	return r
}

func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[id]
	return r, ok
}

func (reg *Registry) List() []roomSummary {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]roomSummary, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		r.mu.Lock()
		out = append(out, r.summary())
		r.mu.Unlock()
	}
	return out
}

// CleanupExpiredSessions runs the periodic session-reaper sweep (wired
// to robfig/cron/v3 in server.go).
func (reg *Registry) CleanupExpiredSessions() int {
	return reg.sessions.cleanupExpired()
}

func newRoomID() string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}
