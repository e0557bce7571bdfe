package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/memory"
	"github.com/yourusername/relay/route"
	"github.com/yourusername/relay/socket"
)

// fakeSocket is an in-memory Socket used to drive the worker loop
// without a real TCP connection.
type fakeSocket struct {
	toServer [][]byte
	sent     [][]byte
	arena    *memory.Arena
	closed   bool
}

func newFakeSocket(requests ...string) *fakeSocket {
	toServer := make([][]byte, len(requests))
	for i, r := range requests {
		toServer[i] = []byte(r)
	}
	return &fakeSocket{
		toServer: toServer,
		arena:    memory.NewArena(64*1024, false),
	}
}

func (f *fakeSocket) Init() error                         { return nil }
func (f *fakeSocket) Bind(addr string, port uint16) error { return nil }
func (f *fakeSocket) Listen(backlog int) error            { return nil }
func (f *fakeSocket) Accept() (socket.Socket, error)      { return nil, nil }
func (f *fakeSocket) SetTimeout(d time.Duration) error    { return nil }

func (f *fakeSocket) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeSocket) Receive(buf []byte) (int, error) {
	if len(f.toServer) == 0 {
		return 0, nil
	}
	next := f.toServer[0]
	f.toServer = f.toServer[1:]
	n := copy(buf, next)
	return n, nil
}

func (f *fakeSocket) Close() error {
	f.closed = true
	f.arena.Release()
	return nil
}

func (f *fakeSocket) Arena() *memory.Arena { return f.arena }

func echoHandler(req *http1.Request) *http1.Response {
	return http1.NewResponse(200, []byte("ok"))
}

func TestSessionServesSingleRequestThenCloses(t *testing.T) {
	tbl := route.NewTable()
	tbl.Register("/echo", []string{"GET"}, echoHandler)

	sock := newFakeSocket("GET /echo HTTP/1.1\r\nConnection: close\r\n\r\n")
	running := &atomic.Bool{}
	running.Store(true)
	logger := logrus.New()
	logger.SetOutput(discardWriter{})

	s := New(sock, tbl, logger, running, nil)
	s.Start()
	s.Join()

	if len(sock.sent) != 1 {
		t.Fatalf("sent %d responses, want 1", len(sock.sent))
	}
	if s.Active() {
		t.Fatal("session should be inactive after Connection: close")
	}
}

func TestSessionKeepAliveServesMultipleRequests(t *testing.T) {
	tbl := route.NewTable()
	tbl.Register("/echo", []string{"GET"}, echoHandler)

	sock := newFakeSocket(
		"GET /echo HTTP/1.1\r\n\r\n",
		"GET /echo HTTP/1.1\r\nConnection: close\r\n\r\n",
	)
	running := &atomic.Bool{}
	running.Store(true)
	logger := logrus.New()
	logger.SetOutput(discardWriter{})

	s := New(sock, tbl, logger, running, nil)
	s.Start()
	s.Join()

	if len(sock.sent) != 2 {
		t.Fatalf("sent %d responses, want 2", len(sock.sent))
	}
}

func TestSessionMalformedRequestSends400(t *testing.T) {
	tbl := route.NewTable()
	sock := newFakeSocket("not a valid request at all")
	running := &atomic.Bool{}
	running.Store(true)
	logger := logrus.New()
	logger.SetOutput(discardWriter{})

	s := New(sock, tbl, logger, running, nil)
	s.Start()
	s.Join()

	if len(sock.sent) != 1 {
		t.Fatalf("sent %d responses, want 1", len(sock.sent))
	}
	if sock.sent[0][9] != '4' {
		t.Fatalf("response did not start with 400: %q", sock.sent[0])
	}
}

func boomHandler(req *http1.Request) *http1.Response {
	panic("boom")
}

func TestSessionHandlerPanicRecoversAndKeepsServing(t *testing.T) {
	tbl := route.NewTable()
	tbl.Register("/boom", []string{"GET"}, boomHandler)
	tbl.Register("/echo", []string{"GET"}, echoHandler)

	sock := newFakeSocket(
		"GET /boom HTTP/1.1\r\n\r\n",
		"GET /echo HTTP/1.1\r\nConnection: close\r\n\r\n",
	)
	running := &atomic.Bool{}
	running.Store(true)
	logger := logrus.New()
	logger.SetOutput(discardWriter{})

	s := New(sock, tbl, logger, running, nil)
	s.Start()
	s.Join()

	if len(sock.sent) != 2 {
		t.Fatalf("sent %d responses, want 2", len(sock.sent))
	}
	if sock.sent[0][9] != '5' {
		t.Fatalf("first response did not start with 500: %q", sock.sent[0])
	}
	if sock.sent[1][9] != '2' {
		t.Fatalf("second response did not start with 200: %q", sock.sent[1])
	}
}

type fakeCounters struct {
	served, parseFailures, panics, outOfCapacity int
}

func (c *fakeCounters) RequestServed()  { c.served++ }
func (c *fakeCounters) ParseFailure()   { c.parseFailures++ }
func (c *fakeCounters) HandlerPanic()   { c.panics++ }
func (c *fakeCounters) OutOfCapacity()  { c.outOfCapacity++ }

func TestSessionWiresCounters(t *testing.T) {
	tbl := route.NewTable()
	tbl.Register("/boom", []string{"GET"}, boomHandler)
	tbl.Register("/echo", []string{"GET"}, echoHandler)

	sock := newFakeSocket(
		"GET /boom HTTP/1.1\r\n\r\n",
		"not a valid request at all",
	)
	running := &atomic.Bool{}
	running.Store(true)
	logger := logrus.New()
	logger.SetOutput(discardWriter{})
	counters := &fakeCounters{}

	s := New(sock, tbl, logger, running, counters)
	s.Start()
	s.Join()

	if counters.served != 1 {
		t.Fatalf("served = %d, want 1", counters.served)
	}
	if counters.panics != 1 {
		t.Fatalf("panics = %d, want 1", counters.panics)
	}
	if counters.parseFailures != 1 {
		t.Fatalf("parseFailures = %d, want 1", counters.parseFailures)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
