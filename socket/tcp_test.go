package socket

import (
	"testing"
	"time"

	"github.com/yourusername/relay/memory"
)

func TestTCPSocketAcceptSendReceive(t *testing.T) {
	factory := memory.NewFactory(64 * 1024)

	listener := NewTCPSocket(factory, DefaultConfig())
	if err := listener.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := listener.Bind("127.0.0.1", 0); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := listener.Listen(16); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	addr := listener.listener.Addr().String()

	accepted := make(chan Socket, 1)
	acceptErr := make(chan error, 1)
	go func() {
		s, err := listener.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- s
	}()

	client := NewTCPSocket(factory, DefaultConfig())
	if err := dialInto(client, addr); err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var server Socket
	select {
	case server = <-accepted:
	case err := <-acceptErr:
		t.Fatalf("Accept: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for accept")
	}
	defer server.Close()

	if server.Arena() == nil {
		t.Fatal("accepted socket has no arena")
	}

	if err := client.Send([]byte("ping")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 16)
	n, err := server.Receive(buf)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("Receive = %q, want ping", buf[:n])
	}
}

// TestTCPSocketRefreshesDeadlinePerCall guards against a fixed,
// accept-time deadline: it waits longer than the configured timeout
// between connecting and the first Receive, which would fail outright
// if the deadline were set once at Accept and never refreshed.
func TestTCPSocketRefreshesDeadlinePerCall(t *testing.T) {
	factory := memory.NewFactory(64 * 1024)

	listener := NewTCPSocket(factory, DefaultConfig())
	if err := listener.Bind("127.0.0.1", 0); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := listener.Listen(16); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()
	if err := listener.SetTimeout(150 * time.Millisecond); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}

	addr := listener.listener.Addr().String()
	accepted := make(chan Socket, 1)
	go func() {
		s, err := listener.Accept()
		if err == nil {
			accepted <- s
		}
	}()

	client := NewTCPSocket(factory, DefaultConfig())
	if err := dialInto(client, addr); err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	if err := client.SetTimeout(150 * time.Millisecond); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}

	var server Socket
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for accept")
	}
	defer server.Close()

	// Longer than the 150ms timeout configured above, but the
	// deadline must be measured from the next Send/Receive call, not
	// from Accept/connect, so this must not time the connection out.
	time.Sleep(250 * time.Millisecond)

	if err := client.Send([]byte("ping")); err != nil {
		t.Fatalf("Send after idle period: %v", err)
	}
	buf := make([]byte, 16)
	n, err := server.Receive(buf)
	if err != nil {
		t.Fatalf("Receive after idle period: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("Receive = %q, want ping", buf[:n])
	}
}

func TestTCPSocketCloseIdempotent(t *testing.T) {
	factory := memory.NewFactory(64 * 1024)
	s := NewTCPSocket(factory, nil)
	if err := s.Bind("127.0.0.1", 0); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := s.Listen(4); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
}
