package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/canvas"
	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024

	// Outbound messages other than frames
	sendBufferSize = 32
)

// Inbound message types.
const (
	MsgPointerDown = "pointerdown"
	MsgPointerMove = "pointermove"
	MsgPointerUp   = "pointerup"
	MsgWheel       = "wheel"
	MsgSelect      = "select"
	MsgClear       = "clear"
	MsgResize      = "resize"
	MsgReset       = "reset"
	MsgExport      = "export"
)

// Outbound message types.
const (
	MsgHello    = "hello"
	MsgFrame    = "frame"
	MsgSelected = "selected"
	MsgExported = "exported"
	MsgError    = "error"
)

var errUnknownMessage = errors.New("unknown message type")

// Inbound is a client event. Coordinates are surface pixels.
type Inbound struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	ID     string  `json:"id,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Outbound is a server message. Only the fields of its type are set.
type Outbound struct {
	Type      string            `json:"type"`
	Session   string            `json:"session,omitempty"`
	SVG       string            `json:"svg,omitempty"`
	Filename  string            `json:"filename,omitempty"`
	Transform *layout.Transform `json:"transform,omitempty"`
	Selected  string            `json:"selected,omitempty"`
	State     string            `json:"state,omitempty"`
	Node      *graph.Node       `json:"node,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Session is one websocket client driving its own canvas.
type Session struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	canvas *canvas.Canvas
	send   chan Outbound
	every  time.Duration
	logger *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(hub *Hub, conn *websocket.Conn, every time.Duration, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan Outbound, sendBufferSize),
		every:  every,
		logger: logger.With(zap.String("session", id)),
		done:   make(chan struct{}),
	}
}

// run serves the session until the peer goes away or the hub closes it.
func (s *Session) run(ctx context.Context, vp layout.Viewport) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !s.hub.register(ctx, s, vp) {
		s.conn.Close()
		return
	}
	s.enqueue(Outbound{Type: MsgHello, Session: s.id})

	go s.writePump()
	s.readPump()

	s.hub.unregister(s)
	s.close()
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		s.conn.Close()
	})
}

// selected is the canvas selection callback.
func (s *Session) selected(n graph.Node) {
	s.enqueue(Outbound{Type: MsgSelected, Node: &n})
}

func (s *Session) enqueue(msg Outbound) {
	select {
	case s.send <- msg:
	default:
		s.logger.Warn("Dropping message for slow client", zap.String("type", msg.Type))
	}
}

// readPump applies client events to the canvas.
func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.enqueue(Outbound{Type: MsgError, Error: "malformed message"})
			continue
		}
		if err := s.handle(msg); err != nil {
			s.enqueue(Outbound{Type: MsgError, Error: err.Error()})
		}
	}
}

func (s *Session) handle(msg Inbound) error {
	p := layout.Point{X: msg.X, Y: msg.Y}
	c := s.canvas
	switch msg.Type {
	case MsgPointerDown:
		c.PointerDown(p)
	case MsgPointerMove:
		c.PointerMove(p)
	case MsgPointerUp:
		c.PointerUp(p)
	case MsgWheel:
		c.Wheel(p, msg.DeltaY)
	case MsgSelect:
		return c.Select(msg.ID)
	case MsgClear:
		c.ClearSelection()
	case MsgResize:
		c.Resize(layout.Viewport{Width: msg.Width, Height: msg.Height})
	case MsgReset:
		c.ResetView()
	case MsgExport:
		var buf bytes.Buffer
		if _, err := c.Export(&buf); err != nil {
			return err
		}
		s.enqueue(Outbound{Type: MsgExported, Filename: render.ExportFilename, SVG: buf.String()})
	default:
		return errUnknownMessage
	}
	return nil
}

// writePump is the only writer on the connection. Frame signals are
// coalesced and flushed at most once per interval.
func (s *Session) writePump() {
	ping := time.NewTicker(pingPeriod)
	flush := time.NewTicker(s.every)
	defer func() {
		ping.Stop()
		flush.Stop()
		s.close()
	}()

	dirty := true
	for {
		select {
		case <-s.done:
			return

		case msg := <-s.send:
			if err := s.write(msg); err != nil {
				s.logger.Debug("Failed to write message", zap.Error(err))
				return
			}

		case <-s.canvas.Frames():
			dirty = true

		case <-flush.C:
			if !dirty {
				continue
			}
			dirty = false
			frame, ok := s.frame()
			if !ok {
				continue
			}
			if err := s.write(frame); err != nil {
				s.logger.Debug("Failed to write frame", zap.Error(err))
				return
			}

		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) write(msg Outbound) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

func (s *Session) frame() (Outbound, bool) {
	scene, ok := s.canvas.Scene()
	if !ok {
		return Outbound{}, false
	}
	var buf bytes.Buffer
	if err := render.Encode(&buf, scene); err != nil {
		s.logger.Error("Encoding frame", zap.Error(err))
		return Outbound{}, false
	}
	t := scene.Transform
	return Outbound{
		Type:      MsgFrame,
		SVG:       buf.String(),
		Transform: &t,
		Selected:  scene.Selected,
		State:     s.canvas.InteractionState().String(),
	}, true
}
