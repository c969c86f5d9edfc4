package netserver

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/sanguosha/engine/internal/config"
	"github.com/sanguosha/engine/internal/game"
	"github.com/sanguosha/engine/internal/metrics"
)

// maxConnectionsPerIP is spec.md §4.10's default per-IP connection cap.
const maxConnectionsPerIP = 8

// Server is the authoritative multi-room websocket server, grounded on
// the teacher's internal/web/server.go http.ServeMux + coder/websocket
// transport, terminating directly into a Registry instead of proxying
// to a TCP pipe.
type Server struct {
	Registry    *Registry
	OriginAllow map[string]bool // fail-closed: an empty map denies every origin
	mux         chi.Router

	ipMu   sync.Mutex
	ipConn map[string]int

	cron *cron.Cron
}

// NewServer wires a Registry built from loaded game data and card pool.
func NewServer(gameData *config.GameData, cardPool []*game.Card, allowedOrigins []string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	s := &Server{
		Registry: NewRegistry(gameData, cardPool),
		ipConn:   make(map[string]int),
		mux:      r,
	}
	s.OriginAllow = make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		s.OriginAllow[o] = true
	}
	r.Get("/ws", s.handleWebSocket)
	r.Get("/api/rooms", s.handleRoomsAPI)
	r.Handle("/metrics", promhttp.Handler())

	// Session-reaper sweep (spec.md §4.10's 5-minute reconnect timeout),
	// grounded on the teacher's use of robfig/cron/v3 for periodic
	// background work, here applied to SessionManager.cleanupExpired.
	s.cron = cron.New()
	_, _ = s.cron.AddFunc("@every 1m", func() {
		n := s.Registry.CleanupExpiredSessions()
		if n > 0 {
			log.Info().Int("count", n).Msg("reaped expired sessions")
		}
	})
	s.cron.Start()
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleRoomsAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, roomListReplyPayload{Rooms: s.Registry.List()})
}

// checkOrigin implements spec.md §4.10's "Origin validation is
// fail-closed: an empty whitelist denies all origins."
func (s *Server) checkOrigin(origin string) bool {
	if len(s.OriginAllow) == 0 {
		return false
	}
	return s.OriginAllow[origin]
}

func (s *Server) acquireIP(ip string) bool {
	s.ipMu.Lock()
	defer s.ipMu.Unlock()
	if s.ipConn[ip] >= maxConnectionsPerIP {
		return false
	}
	s.ipConn[ip]++
	return true
}

func (s *Server) releaseIP(ip string) {
	s.ipMu.Lock()
	defer s.ipMu.Unlock()
	if s.ipConn[ip] > 0 {
		s.ipConn[ip]--
		if s.ipConn[ip] == 0 {
			delete(s.ipConn, ip)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if !s.checkOrigin(origin) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if !s.acquireIP(ip) {
		http.Error(w, "too many connections from this address", http.StatusTooManyRequests)
		return
	}

	// Origin is already fail-closed validated above against
	// s.OriginAllow; skip the library's own same-origin check rather
	// than duplicate it with a looser pattern match.
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.releaseIP(ip)
		log.Error().Err(err).Msg("websocket accept failed")
		return
	}

	c := &connection{
		ws:       ws,
		id:       uuid.NewString(),
		ip:       ip,
		seat:     -1,
		registry: s.Registry,
		server:   s,
	}
	metrics.ConnectedSockets.Inc()
	defer metrics.ConnectedSockets.Dec()
	defer ws.CloseNow()
	c.recvLoop(r.Context())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
