// Package server implements the embeddable HTTP/1.1 server core: an
// acceptor goroutine, a reaper goroutine, and one worker goroutine
// per live session, wired the way
// shockwave/pkg/shockwave/server/server_arena.go wires its
// ArenaServer's accept loop — but built on this module's Socket
// abstraction instead of net.Listener/net.Conn directly, and its
// Session state machine instead of http11.Connection.
package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/relay/memory"
	"github.com/yourusername/relay/route"
	"github.com/yourusername/relay/session"
	"github.com/yourusername/relay/socket"
)

// Server is the embeddable core. Zero value is not usable; construct
// with New.
type Server struct {
	cfg Config

	listener socket.Socket
	routes   *route.Table
	factory  *memory.Factory
	mainPool *memory.MainPool
	logger   *logrus.Logger

	stats   Stats
	running atomic.Bool

	mu       sync.Mutex
	sessions []*session.Session

	acceptorDone chan struct{}
	reaperDone   chan struct{}
}

// New builds a Server around an empty route table. RegisterHandler
// must be called before Start for the server to do anything useful.
func New(cfg Config) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		cfg:      cfg,
		routes:   route.NewTable(),
		factory:  memory.NewFactory(cfg.SessionArenaSize),
		mainPool: memory.NewMainPool(cfg.MainPoolSize),
		logger:   cfg.Logger,
	}
}

// RegisterHandler registers a route. The route table guards itself
// with a lock, so a route registered after Start is safe and is seen
// by the next Match.
func (s *Server) RegisterHandler(path string, methods []string, handler route.Handler) {
	s.routes.Register(path, methods, handler)
}

// Stats returns the server's live counters.
func (s *Server) Stats() *Stats {
	return &s.stats
}

// SessionInfo is a point-in-time diagnostic snapshot of one session,
// safe to serialize and hand to an embedder's own monitoring route.
type SessionInfo struct {
	ID           string
	RemoteAddr   string
	State        string
	Active       bool
	LastActivity time.Time
}

// Sessions returns a snapshot of every session currently in the
// registry. It takes the registry mutex only long enough to copy
// pointers, so it never blocks the acceptor or reaper for long.
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	snapshot := make([]*session.Session, len(s.sessions))
	copy(snapshot, s.sessions)
	s.mu.Unlock()

	out := make([]SessionInfo, len(snapshot))
	for i, sess := range snapshot {
		out[i] = SessionInfo{
			ID:           sess.ID,
			RemoteAddr:   sess.RemoteAddr(),
			State:        sess.State().String(),
			Active:       sess.Active(),
			LastActivity: sess.LastActivity(),
		}
	}
	return out
}

// Start performs init → bind → listen(backlog) → running=true, then
// spawns the reaper and acceptor goroutines. Any failure before
// running is set aborts without starting either goroutine.
func (s *Server) Start(addr string, port uint16) error {
	listener := socket.NewTCPSocket(s.factory, s.cfg.SocketTuning)
	if err := listener.Init(); err != nil {
		return err
	}
	if err := listener.Bind(addr, port); err != nil {
		return err
	}
	if err := listener.Listen(s.cfg.Backlog); err != nil {
		return err
	}
	if err := listener.SetTimeout(s.cfg.ReadTimeout); err != nil {
		return err
	}

	s.listener = listener
	s.running.Store(true)
	s.acceptorDone = make(chan struct{})
	s.reaperDone = make(chan struct{})

	go s.reapLoop()
	go s.acceptLoop()

	s.logger.WithFields(logrus.Fields{"addr": addr, "port": port}).Info("server started")
	return nil
}

func (s *Server) acceptLoop() {
	defer close(s.acceptorDone)

	for s.running.Load() {
		client, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() {
				s.stats.ConnectionErrors.Add(1)
				s.logger.WithFields(logrus.Fields{"error": err}).Warn("accept failed")
				time.Sleep(time.Millisecond)
				continue
			}
			return
		}

		s.stats.TotalConnections.Add(1)
		s.stats.ActiveSessions.Add(1)

		sess := session.New(client, s.routes, s.logger, &s.running, &s.stats)
		s.mu.Lock()
		s.sessions = append(s.sessions, sess)
		s.mu.Unlock()

		sess.Start()
	}
}

func (s *Server) reapLoop() {
	defer close(s.reaperDone)

	ticker := time.NewTicker(s.cfg.ReapInterval)
	defer ticker.Stop()

	for s.running.Load() {
		<-ticker.C
		s.sweep(func(sess *session.Session) bool { return !sess.Active() })
	}
}

// sweep removes every session for which shouldReap returns true,
// destroying each one (join worker, close socket, release arena)
// under the registry mutex, mirroring the reaper/stop contract: only
// the reaper erases, only the acceptor appends.
func (s *Server) sweep(shouldReap func(*session.Session) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if shouldReap(sess) {
			sess.Destroy()
			s.stats.SessionsReaped.Add(1)
			s.stats.ActiveSessions.Add(-1)
			continue
		}
		kept = append(kept, sess)
	}
	s.sessions = kept
}

// Stop sets running=false, closes the listener to unblock a parked
// Accept, joins the acceptor and reaper, then drains and destroys
// every remaining session. It is a no-op if the server is not
// running.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	// Unblock a parked Accept() before waiting on the acceptor; the
	// reaper only ever sleeps in bounded ReapInterval ticks so it
	// needs no equivalent kick.
	s.listener.Close()

	<-s.acceptorDone
	<-s.reaperDone

	s.sweep(func(*session.Session) bool { return true })

	s.logger.Info("server stopped")
}
