// Package socket defines the capability-set abstraction the session
// engine and acceptor depend on, plus a TCP implementation tuned the
// way shockwave/pkg/shockwave/socket tunes its listeners and
// connections. The core never downcasts to a concrete type; it only
// ever calls through the Socket interface.
package socket

import (
	"time"

	"github.com/yourusername/relay/memory"
)

// DefaultTimeout is the read+write timeout applied to a socket unless
// the embedder overrides it with SetTimeout.
const DefaultTimeout = 60 * time.Second

// Socket is the capability set any concrete transport must provide.
// A Socket returned by Accept owns exactly one accepted connection;
// the listening Socket and its accepted children share the same
// interface but only the listening one implements Bind/Listen/Accept
// meaningfully — calling Send or Receive on a listening socket
// returns a Send or Receive error, and Accept on a connection socket
// returns a Connection error.
type Socket interface {
	// Init prepares the kernel handle. Idempotent.
	Init() error

	// Bind associates the socket with addr:port. addr is an IPv4
	// dotted-quad.
	Bind(addr string, port uint16) error

	// Listen marks a bound socket as passive with the given backlog.
	Listen(backlog int) error

	// Accept blocks until a connection arrives and returns a Socket
	// that owns it, or a Connection error if the listener was closed.
	Accept() (Socket, error)

	// Send writes all of b, looping internally until every byte is
	// written or an error occurs.
	Send(b []byte) error

	// Receive reads up to len(buf) bytes into buf and returns the
	// count read. A zero-length, nil-error result signals orderly
	// peer shutdown.
	Receive(buf []byte) (int, error)

	// SetTimeout applies a read+write deadline to future I/O.
	SetTimeout(d time.Duration) error

	// Close releases the kernel handle. Idempotent.
	Close() error

	// Arena returns the arena accepted connections should allocate
	// receive buffers from.
	Arena() *memory.Arena
}
