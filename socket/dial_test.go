package socket

import "net"

// dialInto is test-only plumbing: the socket contract never requires
// an outbound connect, only accept, so there is no exported dial.
func dialInto(s *TCPSocket, addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	s.conn = conn
	s.arena = s.factory.CreateSessionArena(0, false)
	return nil
}
