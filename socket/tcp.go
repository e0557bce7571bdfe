package socket

import (
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/yourusername/relay/memory"
)

// TCPSocket is the concrete Socket implementation backed by the
// standard library's net package, with tuning applied the way
// shockwave's socket package tunes raw file descriptors.
type TCPSocket struct {
	addr    string
	port    uint16
	timeout time.Duration
	tuning  *Config

	listener net.Listener
	conn     net.Conn

	factory *memory.Factory
	arena   *memory.Arena

	closed atomic.Bool
}

// NewTCPSocket returns an unbound, uninitialized listening socket.
// factory produces the per-connection arena handed to each accepted
// Socket; tuning may be nil to select DefaultConfig.
func NewTCPSocket(factory *memory.Factory, tuning *Config) *TCPSocket {
	if tuning == nil {
		tuning = DefaultConfig()
	}
	return &TCPSocket{
		timeout: DefaultTimeout,
		tuning:  tuning,
		factory: factory,
	}
}

// Init is a no-op for TCPSocket: net.Listen does the kernel work at
// Listen time. It exists to satisfy the Socket contract and is safe
// to call any number of times.
func (s *TCPSocket) Init() error {
	return nil
}

// Bind records the address to listen on. The listen(2) call itself
// happens in Listen, matching how net.Listen combines bind+listen
// into one call.
func (s *TCPSocket) Bind(addr string, port uint16) error {
	s.addr = addr
	s.port = port
	return nil
}

// Listen opens the listening socket and applies listener-level
// tuning (TCP_DEFER_ACCEPT, TCP_FASTOPEN where supported).
func (s *TCPSocket) Listen(backlog int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.addr, strconv.Itoa(int(s.port))))
	if err != nil {
		return wrap(Bind, err)
	}
	if err := ApplyListener(ln, s.tuning); err != nil {
		ln.Close()
		return wrap(Connection, err)
	}
	s.listener = ln
	return nil
}

// Accept blocks for the next connection, applies per-connection
// tuning, and returns a Socket that owns it with a fresh arena
// pulled from the shared factory.
func (s *TCPSocket) Accept() (Socket, error) {
	if s.listener == nil {
		return nil, wrap(Connection, errNotListening)
	}
	conn, err := s.listener.Accept()
	if err != nil {
		return nil, wrap(Connection, err)
	}
	if err := Apply(conn, s.tuning); err != nil {
		conn.Close()
		return nil, wrap(Connection, err)
	}
	child := &TCPSocket{
		timeout: s.timeout,
		tuning:  s.tuning,
		factory: s.factory,
		conn:    conn,
		arena:   s.factory.CreateSessionArena(0, false),
	}
	return child, nil
}

// Send writes all of b, looping until fully written since net.Conn's
// Write already guarantees this for stream sockets but the contract
// requires the implementer, not the caller, to own that loop. The
// write deadline is refreshed immediately before the loop so the
// configured timeout bounds this call, not the time since Accept.
func (s *TCPSocket) Send(b []byte) error {
	if s.conn == nil {
		return wrap(Send, errNotConnected)
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return wrap(Send, err)
	}
	total := 0
	for total < len(b) {
		n, err := s.conn.Write(b[total:])
		if err != nil {
			return wrap(Send, err)
		}
		total += n
	}
	return nil
}

// Receive reads up to len(buf) bytes. A zero-length, nil-error
// result signals orderly peer shutdown (io.EOF is translated, not
// propagated, since EOF-with-no-data is not itself an error here).
// The read deadline is refreshed immediately before the read so an
// idle-but-active keep-alive connection is bounded by time since its
// last receive, not by time since Accept.
func (s *TCPSocket) Receive(buf []byte) (int, error) {
	if s.conn == nil {
		return 0, wrap(Receive, errNotConnected)
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return 0, wrap(Receive, err)
	}
	n, err := s.conn.Read(buf)
	if err != nil {
		if n > 0 {
			return n, nil
		}
		if isEOF(err) {
			return 0, nil
		}
		return 0, wrap(Receive, err)
	}
	return n, nil
}

// SetTimeout applies a read+write deadline to the underlying
// connection. On a listening socket it sets the timeout that every
// socket it accepts afterwards inherits.
func (s *TCPSocket) SetTimeout(d time.Duration) error {
	s.timeout = d
	if s.conn == nil {
		return nil
	}
	return s.conn.SetDeadline(time.Now().Add(d))
}

// Close is idempotent: the first call releases the kernel handle and
// the session's arena, subsequent calls are no-ops.
func (s *TCPSocket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.arena != nil {
		s.arena.Release()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Arena returns the arena this connection's receive buffers and
// request/response data should be allocated from.
func (s *TCPSocket) Arena() *memory.Arena {
	return s.arena
}

// RemoteAddr returns the peer address of an accepted connection, or
// "" for a listening socket. It is not part of the Socket contract —
// callers that want it type-assert for this optional interface, the
// way session.Session.RemoteAddr does.
func (s *TCPSocket) RemoteAddr() string {
	if s.conn == nil {
		return ""
	}
	return s.conn.RemoteAddr().String()
}
