package socket

import (
	"errors"
	"io"
)

var (
	errNotListening = errors.New("socket: not a listening socket")
	errNotConnected = errors.New("socket: not connected")
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
