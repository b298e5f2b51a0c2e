package daemon

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/b/mview/pkg/document"
)

// readTimeout bounds how long a connected peer may take to deliver its
// payload before the connection is dropped.
const readTimeout = 5 * time.Second

// Server owns the listening side of the handshake. Each accepted connection
// carries one raw UTF-8 file path; validated paths are handed to the
// callback, everything else is logged and dropped without disturbing the
// accept loop.
type Server struct {
	socketPath string
	onPath     func(string)

	listener net.Listener
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates a server for socketPath. onPath receives each validated,
// canonicalized inbound path; it may be called from multiple connection
// goroutines concurrently.
func NewServer(socketPath string, onPath func(string)) *Server {
	return &Server{
		socketPath: socketPath,
		onPath:     onPath,
		done:       make(chan struct{}),
	}
}

// Start binds the socket and begins accepting. A stale socket left by a
// crashed daemon is removed first; a bind failure after that means another
// live process won the startup race.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	go s.acceptLoop()
	return nil
}

// Stop closes the listener and removes the socket. Idempotent; safe to call
// before Start.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		os.Remove(s.socketPath)
	})
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}

		go s.handleConn(conn)
	}
}

// handleConn reads one path payload: up to MaxPayload bytes, terminated by
// the peer closing its write side. No framing beyond that.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	buf := make([]byte, MaxPayload)
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			if err != io.EOF && total == 0 {
				log.Printf("[daemon] read error: %v", err)
				return
			}
			break
		}
	}

	payload := strings.TrimSpace(string(buf[:total]))
	if payload == "" {
		log.Printf("[daemon] dropped empty payload")
		return
	}
	if strings.ContainsAny(payload, "\n\x00") {
		log.Printf("[daemon] dropped malformed payload (embedded control bytes)")
		return
	}

	if _, err := os.Stat(payload); err != nil {
		log.Printf("[daemon] dropped payload, file not found: %s", payload)
		return
	}
	if _, ok := document.KindForPath(payload); !ok {
		log.Printf("[daemon] dropped payload, extension not allowed: %s", payload)
		return
	}

	// Canonicalize so symlinked deliveries collapse onto the real file.
	canonical, err := filepath.EvalSymlinks(payload)
	if err != nil {
		log.Printf("[daemon] cannot canonicalize %s: %v", payload, err)
		return
	}
	if !filepath.IsAbs(canonical) {
		if abs, err := filepath.Abs(canonical); err == nil {
			canonical = abs
		}
	}

	s.onPath(canonical)
}
