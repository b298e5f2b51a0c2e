// Package daemon implements the single-instance handshake: a new invocation
// first tries to hand its file path to an already-running peer over a unix
// socket, and only becomes the long-lived server when no peer answers. The
// socket is the only coordination point; whoever binds it is the daemon.
package daemon

import (
	"net"
	"time"
)

const (
	// MaxPayload bounds a peer message. PATH_MAX is at most 4096 bytes on
	// the platforms we run on, so anything longer cannot be a valid path.
	MaxPayload = 4096

	dialTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
)

// SendToPeer attempts to deliver path to a running daemon at socketPath.
// It returns true only when the write succeeded. Every failure mode
// (endpoint absent, connection refused, dead peer, write error) returns
// false: the caller treats that as "no peer, become the server". Timeouts
// keep a hung peer from stalling new invocations.
func SendToPeer(socketPath, path string) bool {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte(path)); err != nil {
		return false
	}
	return true
}
