//go:build darwin

package socket

import "syscall"

const (
	tcpFastOpenDarwin = 0x105
	tcpKeepAliveOpt   = 0x10
	soNoSigpipe       = 0x1022
)

func applyPlatformOptions(fd int, cfg *Config) {
	_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, soNoSigpipe, 1)
	if cfg.KeepAlive {
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpKeepAliveOpt, 60)
	}
}

func applyListenerOptions(fd int, cfg *Config) error {
	if cfg.FastOpen {
		return syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpFastOpenDarwin, 256)
	}
	return nil
}
