package server

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/relay/memory"
	"github.com/yourusername/relay/socket"
)

// Config holds the knobs an embedder sets before calling Start.
// Unset fields fall back to the defaults this server ships with.
type Config struct {
	// Backlog is the listen(2) backlog. Default 100.
	Backlog int

	// SessionArenaSize is the per-connection arena size. Default
	// memory.DefaultSessionArenaSize (256 KiB).
	SessionArenaSize int

	// MainPoolSize sizes the server-global backing buffer that New
	// allocates for the MainPool. The route table and session
	// registry do not allocate from it. Default
	// memory.DefaultBackingBufferSize.
	MainPoolSize int

	// ReapInterval is how often the reaper sweeps for inactive
	// sessions. Default 10s, per the session reaping contract.
	ReapInterval time.Duration

	// ReadTimeout is the read+write timeout applied to every
	// accepted socket. Default socket.DefaultTimeout (60s).
	ReadTimeout time.Duration

	// SocketTuning overrides the TCP tuning applied to the listener
	// and accepted connections. Defaults to socket.DefaultConfig().
	SocketTuning *socket.Config

	// Logger receives structured log lines for lifecycle events,
	// accept errors, parse failures, and handler panics. Defaults to
	// logrus.StandardLogger().
	Logger *logrus.Logger

	// EnableMetrics is not read by the server: Stats counters are
	// always updated and Sessions()/Stats() are always available,
	// whatever its value.
	EnableMetrics bool
}

func (c Config) withDefaults() Config {
	if c.Backlog <= 0 {
		c.Backlog = 100
	}
	if c.SessionArenaSize <= 0 {
		c.SessionArenaSize = memory.DefaultSessionArenaSize
	}
	if c.MainPoolSize <= 0 {
		c.MainPoolSize = memory.DefaultBackingBufferSize
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = socket.DefaultTimeout
	}
	if c.SocketTuning == nil {
		c.SocketTuning = socket.DefaultConfig()
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}
