package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
	"github.com/gorilla/websocket"
)

const (
	writeWait   = 5 * time.Second
	sendBuffer  = 16
	eventBuffer = 64
)

var _ nav.Listener = (*Hub)(nil)
var _ Handler = (*Hub)(nil)

// EventActivated is the type of the event sent when a slide becomes current.
const EventActivated = "activated"

// Event is one message on the follower stream.
type Event struct {
	Type  string `json:"type"`
	Slide int    `json:"slide"`
	Total int    `json:"total"`
}

type follower struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans activation events out to websocket followers.
type Hub struct {
	upgrader   websocket.Upgrader
	logger     *log.Logger
	register   chan *follower
	unregister chan *follower
	broadcast  chan []byte
	done       chan struct{}
	followers  map[*follower]bool

	last  atomic.Int64
	total atomic.Int64
	count atomic.Int64
}

// NewHub creates a hub; call [Hub.Run] before serving it.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Hub{
		logger:     logger,
		register:   make(chan *follower),
		unregister: make(chan *follower),
		broadcast:  make(chan []byte, eventBuffer),
		done:       make(chan struct{}),
		followers:  make(map[*follower]bool),
	}
}

// Routes implements [Handler].
func (h *Hub) Routes() []string {
	return []string{"/ws"}
}

// SetTotal sets the slide count reported in events.
func (h *Hub) SetTotal(n int) {
	h.total.Store(int64(n))
}

// Followers returns the number of connected followers.
func (h *Hub) Followers() int {
	return int(h.count.Load())
}

// Activated implements [nav.Listener]. It never blocks; events are dropped when the hub falls behind.
func (h *Hub) Activated(n int) {
	h.last.Store(int64(n))

	data, err := h.event(n)
	if err != nil {
		h.logger.Error("failed to encode event", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("dropping activation event", "slide", n)
	}
}

func (h *Hub) event(n int) ([]byte, error) {
	return shared.MarshalJSON(Event{Type: EventActivated, Slide: n, Total: int(h.total.Load())}, false)
}

// Run owns the follower set until ctx is cancelled, then disconnects every follower.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for f := range h.followers {
				h.drop(f)
			}
			return

		case f := <-h.register:
			h.followers[f] = true
			h.count.Store(int64(len(h.followers)))
			if n := int(h.last.Load()); n > 0 {
				if data, err := h.event(n); err == nil {
					f.send <- data
				}
			}

		case f := <-h.unregister:
			if h.followers[f] {
				h.drop(f)
			}

		case data := <-h.broadcast:
			for f := range h.followers {
				select {
				case f.send <- data:
				default:
					h.logger.Warn("disconnecting slow follower")
					h.drop(f)
				}
			}
		}
	}
}

func (h *Hub) drop(f *follower) {
	delete(h.followers, f)
	close(f.send)
	h.count.Store(int64(len(h.followers)))
}

// ServeHTTP upgrades the request and streams events until either side closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	f := &follower{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- f:
	case <-h.done:
		conn.Close()
		return
	}

	go h.write(f)
	h.read(f)
}

// read discards client messages; it returns once the connection fails or is closed.
func (h *Hub) read(f *follower) {
	defer func() {
		select {
		case h.unregister <- f:
		case <-h.done:
		}
		f.conn.Close()
	}()

	for {
		if _, _, err := f.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(f *follower) {
	defer f.conn.Close()

	for data := range f.send {
		f.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := f.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	f.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
