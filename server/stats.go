package server

import "sync/atomic"

// Stats are lock-free counters updated by the acceptor and session
// workers, modeled on shockwave/pkg/shockwave/server.Stats but
// trimmed to the counters this server actually produces.
type Stats struct {
	TotalConnections    atomic.Uint64
	ActiveSessions      atomic.Int64
	ConnectionErrors    atomic.Uint64
	SessionsReaped      atomic.Uint64
	RequestsServed      atomic.Uint64
	ParseFailures       atomic.Uint64
	HandlerPanics       atomic.Uint64
	OutOfCapacityEvents atomic.Uint64
}

// RequestServed records one request that completed a full
// parse-dispatch-send cycle, regardless of its response status.
func (s *Stats) RequestServed() {
	s.RequestsServed.Add(1)
}

// ParseFailure records one request that failed to parse and was
// answered with a 400.
func (s *Stats) ParseFailure() {
	s.ParseFailures.Add(1)
}

// HandlerPanic records one handler invocation that panicked and was
// recovered into a 500.
func (s *Stats) HandlerPanic() {
	s.HandlerPanics.Add(1)
}

// OutOfCapacity records one allocation that failed because a
// session's arena was exhausted.
func (s *Stats) OutOfCapacity() {
	s.OutOfCapacityEvents.Add(1)
}
