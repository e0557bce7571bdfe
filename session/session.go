// Package session implements the per-connection state machine: one
// dedicated worker goroutine per accepted socket, confined to its own
// Arena, dispatching through a route.Table. The worker loop mirrors
// shockwave/pkg/shockwave/server/server_arena.go's handleConnection,
// adapted from net.Conn/http11.Connection to the Socket/http1
// abstractions this module defines.
package session

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/route"
	"github.com/yourusername/relay/socket"
)

// State is one position in the Created → Running → Inactive → Reaped
// state machine.
type State int32

const (
	Created State = iota
	Running
	Inactive
	Reaped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Inactive:
		return "inactive"
	case Reaped:
		return "reaped"
	default:
		return "unknown"
	}
}

const receiveChunk = 16384

// Counters receives per-request accounting events from the worker
// loop. server.Stats implements this structurally; a nil Counters is
// valid and every call below is a no-op in that case, so Session can
// be exercised in tests without a Server.
type Counters interface {
	RequestServed()
	ParseFailure()
	HandlerPanic()
	OutOfCapacity()
}

// Session owns one accepted connection: its socket, its arena, and
// the single goroutine that serves it. Its receive buffers come from
// its own Arena; the response it builds and serializes (a bytes.Buffer
// per send) lives in ordinary Go memory. A Session never touches
// MainPool or another Session's Arena.
type Session struct {
	ID string

	sock     socket.Socket
	routes   *route.Table
	logger   *logrus.Logger
	counters Counters

	running *atomic.Bool // server-wide shutdown flag, read-only here

	state        atomic.Int32
	active       atomic.Bool
	lastActivity atomic.Int64

	lastRecvBuf []byte // full-capacity previous receive block, pending Free

	done chan struct{}
}

// New constructs a Session in the Created state. running is the
// Server's shutdown flag; the worker polls it between requests so a
// Server.stop() drains live sessions without the Server reaching
// into worker-owned state directly. counters may be nil.
func New(sock socket.Socket, routes *route.Table, logger *logrus.Logger, running *atomic.Bool, counters Counters) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		sock:     sock,
		routes:   routes,
		logger:   logger,
		running:  running,
		counters: counters,
		done:     make(chan struct{}),
	}
	s.state.Store(int32(Created))
	return s
}

// Start transitions Created → Running and spawns the worker
// goroutine. Start must be called exactly once.
func (s *Session) Start() {
	s.state.Store(int32(Running))
	s.active.Store(true)
	s.touch()
	go s.worker()
}

// Active reports whether the worker is still serving requests. Once
// it returns false the Server's reaper is free to join and destroy
// this Session.
func (s *Session) Active() bool {
	return s.active.Load()
}

// State reports the current position in the state machine.
func (s *Session) State() State {
	return State(s.state.Load())
}

// LastActivity returns the time of the worker's last successful
// receive.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// remoteAddrProvider is implemented by socket.TCPSocket but is not
// part of the Socket contract itself.
type remoteAddrProvider interface {
	RemoteAddr() string
}

// RemoteAddr returns the peer address if the underlying socket
// exposes one, or "" otherwise.
func (s *Session) RemoteAddr() string {
	if p, ok := s.sock.(remoteAddrProvider); ok {
		return p.RemoteAddr()
	}
	return ""
}

// Join blocks until the worker goroutine has exited. Safe to call
// any number of times.
func (s *Session) Join() {
	<-s.done
}

// Destroy joins the worker, closes the socket (which releases the
// session's Arena), and marks the session Reaped. The Server's reaper
// calls this for sessions whose Active() is false; Server.Stop calls
// it for every remaining session, blocking in Join until each worker
// has exited.
func (s *Session) Destroy() {
	s.Join()
	s.sock.Close()
	s.state.Store(int32(Reaped))
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

func (s *Session) worker() {
	defer close(s.done)
	defer s.active.Store(false)

	for {
		if !s.running.Load() {
			return
		}

		data, ok := s.receive()
		if !ok {
			return
		}
		s.touch()

		req, err := http1.Parse(data)
		if err != nil {
			s.logger.WithFields(logrus.Fields{"session": s.ID, "error": err}).Warn("malformed request")
			s.countParseFailure()
			s.sendBadRequest()
			return
		}
		req.Arena = s.sock.Arena()
		req.RemoteAddr = s.RemoteAddr()

		resp := s.dispatch(req)
		keepAlive := s.applyKeepAlive(req, resp)

		if err := s.send(resp); err != nil {
			s.logger.WithFields(logrus.Fields{"session": s.ID, "error": err}).Warn("send failed")
			return
		}
		s.countRequestServed()
		if !keepAlive {
			return
		}
	}
}

// receive performs exactly one socket read into a fresh arena block,
// per the worker-loop contract: one receive(16384) per iteration, no
// cross-read reassembly. ok is false on orderly close or socket
// error, both of which move the session to Inactive.
//
// The block from the previous iteration is freed back to the arena
// before allocating a new one — by the time this runs, that request's
// response has already been sent, so nothing still aliases it. This
// lets a long keep-alive session recycle one 16384-byte block
// indefinitely instead of bump-allocating a fresh one per request.
func (s *Session) receive() (data []byte, ok bool) {
	arena := s.sock.Arena()
	if s.lastRecvBuf != nil {
		arena.Free(s.lastRecvBuf, receiveChunk, 1)
		s.lastRecvBuf = nil
	}
	buf, err := arena.Alloc(receiveChunk, 1)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"session": s.ID, "error": err}).Error("arena exhausted")
		s.countOutOfCapacity()
		return nil, false
	}
	s.lastRecvBuf = buf
	n, err := s.sock.Receive(buf)
	if err != nil {
		return nil, false
	}
	if n == 0 {
		return nil, false
	}
	return buf[:n], true
}

func (s *Session) dispatch(req *http1.Request) *http1.Response {
	result := s.routes.Match(req.PathString(), req.MethodString())
	switch result.Kind {
	case route.Hit:
		return s.invoke(result.Handler, req)
	case route.MethodNotAllowed:
		resp := http1.NewResponse(405, nil)
		resp.Headers.Add([]byte("Allow"), []byte(joinComma(result.Allowed)))
		return resp
	default:
		return http1.NewResponse(404, []byte("Resource Not Found"))
	}
}

func (s *Session) invoke(h route.Handler, req *http1.Request) (resp *http1.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{"session": s.ID, "panic": r}).Error("handler panic")
			s.countHandlerPanic()
			resp = http1.NewResponse(500, []byte("Internal Server Error: "+fmt.Sprint(r)))
		}
	}()
	return h(req)
}

func (s *Session) countRequestServed() {
	if s.counters != nil {
		s.counters.RequestServed()
	}
}

func (s *Session) countParseFailure() {
	if s.counters != nil {
		s.counters.ParseFailure()
	}
}

func (s *Session) countHandlerPanic() {
	if s.counters != nil {
		s.counters.HandlerPanic()
	}
}

func (s *Session) countOutOfCapacity() {
	if s.counters != nil {
		s.counters.OutOfCapacity()
	}
}

// applyKeepAlive decides whether the connection stays open and sets
// the corresponding response headers. Default is keep-alive; an
// explicit "Connection: close" request header turns it off.
func (s *Session) applyKeepAlive(req *http1.Request, resp *http1.Response) bool {
	keepAlive := true
	if v := req.Headers.GetString("Connection"); equalFoldString(v, "close") {
		keepAlive = false
	}
	if keepAlive {
		resp.Headers.Add([]byte("Connection"), []byte("keep-alive"))
		resp.Headers.Add([]byte("Keep-Alive"), []byte("timeout=60, max=100"))
	} else {
		resp.Headers.Add([]byte("Connection"), []byte("close"))
	}
	return keepAlive
}

func (s *Session) send(resp *http1.Response) error {
	var buf bytes.Buffer
	resp.Write(&buf)
	return s.sock.Send(buf.Bytes())
}

func (s *Session) sendBadRequest() {
	resp := http1.NewResponse(400, nil)
	resp.Headers.Add([]byte("Connection"), []byte("close"))
	_ = s.send(resp)
}

func joinComma(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := items[0]
	for _, it := range items[1:] {
		out += ", " + it
	}
	return out
}

func equalFoldString(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 32
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}
