// Package observer streams render frames to websocket spectators. The
// simulation loop publishes a frame per tick; slow clients drop frames
// rather than stalling the loop.
package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte

	// bootstrap is the latest full frame (terrain included), sent to
	// each client on connect.
	bootstrap atomic.Pointer[[]byte]
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:     logger,
		clients: map[uint64]chan []byte{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// SetBootstrap stores the full frame newly connected clients receive.
func (s *Server) SetBootstrap(frame any) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	s.bootstrap.Store(&b)
	return nil
}

// Publish fans a tick frame out to every connected client. Frames for
// clients with full buffers are dropped.
func (s *Server) Publish(frame any) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- b:
		default:
		}
	}
	return nil
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id := s.nextID.Add(1)
		out := make(chan []byte, 16)
		s.mu.Lock()
		s.clients[id] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}()
		s.log.Printf("observer %d connected from %s", id, r.RemoteAddr)

		if bp := s.bootstrap.Load(); bp != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, *bp); err != nil {
				return
			}
		}

		// Reader goroutine only detects disconnects; observers never send.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				s.log.Printf("observer %d disconnected", id)
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					s.log.Printf("observer %d write failed: %v", id, err)
					return
				}
			}
		}
	}
}

// ListenAndServe serves the websocket endpoint on addr until the
// listener fails. Run it in its own goroutine.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.WSHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.log.Printf("observer listening on %s", addr)
	return srv.ListenAndServe()
}

func isLoopbackRemote(remote string) bool {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	host = strings.Trim(host, "[]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
