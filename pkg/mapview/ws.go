package mapview

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 512
)

// StreamOption configures ServeWS.
type StreamOption func(*stream)

type stream struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// WithCheckOrigin replaces the upgrader's origin check.
func WithCheckOrigin(fn func(*http.Request) bool) StreamOption {
	return func(s *stream) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithStreamLogger sets the logger used for connection errors.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(s *stream) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ServeWS upgrades the request and streams JSON views from the publisher
// returned by lookup. The first frame is the current view. Client messages
// are read only to notice the connection closing.
func ServeWS(lookup func(*http.Request) (*Publisher, error), opts ...StreamOption) http.Handler {
	s := &stream{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pub, err := lookup(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}
		defer conn.Close()

		views, cancel := pub.Subscribe()
		defer cancel()

		closed := make(chan struct{})
		go readPump(conn, closed)

		if err := writeView(conn, pub.Current()); err != nil {
			return
		}

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			case view, ok := <-views:
				if !ok {
					return
				}
				if err := writeView(conn, view); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	})
}

func writeView(conn *websocket.Conn, view View) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(view)
}

func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
