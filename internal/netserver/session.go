package netserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"sync"
	"time"
)

// reconnectTimeout is spec.md §4.10's default 5-minute disconnect
// session timeout, grounded on original_source/net/session.py's
// SessionManager(timeout=300.0).
const reconnectTimeout = 5 * time.Minute

// playerSession mirrors original_source/net/session.py's PlayerSession:
// a token-bearing record surviving a disconnect for reconnectTimeout,
// letting the player resume with events replayed from LastSeq.
type playerSession struct {
	PlayerID  string
	Token     string
	RoomID    string
	Seat      int
	Connected bool
	LastSeen  time.Time
}

// sessionManager issues and validates 256-bit reconnect tokens. Token
// comparison is constant-time (crypto/subtle) per spec.md §4.10's
// "Token verification uses constant-time comparison" — the Python
// source indexes sessions directly by token in a dict, which this
// deliberately does not replicate, comparing against every live
// session's token instead so no single map-probe timing channel exists.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*playerSession // playerID -> session
	timeout  time.Duration
}

func newSessionManager() *sessionManager {
	return &sessionManager{sessions: make(map[string]*playerSession), timeout: reconnectTimeout}
}

func newToken() string {
	buf := make([]byte, 32) // 256 bits
	if _, err := rand.Read(buf); err != nil {
		panic("netserver: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

func (sm *sessionManager) create(playerID, roomID string, seat int) *playerSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s := &playerSession{
		PlayerID:  playerID,
		Token:     newToken(),
		RoomID:    roomID,
		Seat:      seat,
		Connected: true,
		LastSeen:  time.Now(),
	}
	sm.sessions[playerID] = s
	return s
}

// reconnect validates a presented token against every live session in
// constant time per session, returning the matching session only if it
// is unexpired. A mismatched or expired token returns (nil, false).
func (sm *sessionManager) reconnect(token string) (*playerSession, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := time.Now()
	var match *playerSession
	tokenBytes := []byte(token)
	for _, s := range sm.sessions {
		if subtle.ConstantTimeCompare([]byte(s.Token), tokenBytes) == 1 {
			match = s
		}
	}
	if match == nil {
		return nil, false
	}
	if now.Sub(match.LastSeen) > sm.timeout {
		delete(sm.sessions, match.PlayerID)
		return nil, false
	}
	match.Connected = true
	match.LastSeen = now
	return match, true
}

func (sm *sessionManager) disconnect(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[playerID]; ok {
		s.Connected = false
		s.LastSeen = time.Now()
	}
}

func (sm *sessionManager) remove(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, playerID)
}

// cleanupExpired removes every disconnected session past the timeout,
// returning the count removed; intended to run on a periodic sweep
// (wired to robfig/cron/v3 in server.go).
func (sm *sessionManager) cleanupExpired() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := time.Now()
	n := 0
	for id, s := range sm.sessions {
		if !s.Connected && now.Sub(s.LastSeen) > sm.timeout {
			delete(sm.sessions, id)
			n++
		}
	}
	return n
}
