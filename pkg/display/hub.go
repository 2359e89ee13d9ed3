package display

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/willbeason/zoom-fractal/pkg/logging"
)

const (
	writeTimeout = 5 * time.Second

	// clientBuffer is how many messages may queue for a slow viewer before
	// further messages to it are dropped.
	clientBuffer = 16
)

//go:embed static
var static embed.FS

// TransitionMessage is sent to viewers as a text message when the displayed
// frame should scale.
type TransitionMessage struct {
	Scale      float64 `json:"scale"`
	DurationMs int64   `json:"durationMs"`
	Easing     string  `json:"easing,omitempty"`
}

type message struct {
	typ  websocket.MessageType
	data []byte
}

type client struct {
	send chan message
}

// Hub broadcasts committed frames and transitions to browser viewers over
// websockets. It is a Canvas and a Transition; frames go out as PNG binary
// messages and transitions as JSON text messages.
//
// Transition timing is kept by the hub, not by the viewers: onComplete fires
// after the duration whether or not anyone is watching.
type Hub struct {
	// OriginPatterns is passed to websocket.Accept.
	OriginPatterns []string

	mu         sync.Mutex
	clients    map[*client]struct{}
	frame      []byte
	transition []byte
	encoder    png.Encoder
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// Handler serves the viewer page at / and the websocket at /ws.
func (h *Hub) Handler() http.Handler {
	root, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.Handle("/", http.FileServer(http.FS(root)))
	return mux
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams messages to the viewer until it
// disconnects. A new viewer is sent the latest frame and transition first.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := logging.Logger()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
	if err != nil {
		logger.Warn("display: websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	c := &client{send: make(chan message, clientBuffer)}
	h.add(c)
	defer h.remove(c)
	logger.Debug("display: viewer connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("display: viewer disconnected", "remote", r.RemoteAddr)
			return
		case m := <-c.send:
			if err := write(ctx, conn, m); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Warn("display: write to viewer failed", "remote", r.RemoteAddr, "err", err)
				}
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, m message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, m.typ, m.data)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if h.frame != nil {
		c.send <- message{websocket.MessageBinary, h.frame}
	}
	if h.transition != nil {
		c.send <- message{websocket.MessageText, h.transition}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// broadcast must be called with h.mu held.
func (h *Hub) broadcast(m message) {
	for c := range h.clients {
		select {
		case c.send <- m:
		default:
			logging.Logger().Debug("display: dropping message for slow viewer", "type", m.typ)
		}
	}
}

// Commit encodes img as PNG and sends it to every viewer.
func (h *Hub) Commit(img *image.RGBA) {
	var buf bytes.Buffer
	if err := h.encoder.Encode(&buf, img); err != nil {
		logging.Logger().Error("display: encoding frame", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = buf.Bytes()
	h.broadcast(message{websocket.MessageBinary, h.frame})
}

// Animate tells viewers to scale the displayed frame and calls onComplete,
// if non-nil, from a timer goroutine once duration has passed.
func (h *Hub) Animate(scale float64, duration time.Duration, easing string, onComplete func()) {
	data, err := json.Marshal(TransitionMessage{
		Scale:      scale,
		DurationMs: duration.Milliseconds(),
		Easing:     easing,
	})
	if err != nil {
		logging.Logger().Error("display: encoding transition", "err", err)
	} else {
		h.mu.Lock()
		h.transition = data
		h.broadcast(message{websocket.MessageText, data})
		h.mu.Unlock()
	}

	if onComplete == nil {
		return
	}
	if duration <= 0 {
		go onComplete()
		return
	}
	time.AfterFunc(duration, onComplete)
}
