package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/canvas"
	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/layout"
)

// CanvasFactory creates an unmounted canvas. onSelect is nil for the shared
// document canvas.
type CanvasFactory func(onSelect func(graph.Node)) *canvas.Canvas

// Recorder receives session and request instrumentation.
// *metrics.Collector satisfies it.
type Recorder interface {
	SessionOpened()
	SessionClosed()
	ObserveHTTP(method, route string, status int, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened()                                {}
func (nopRecorder) SessionClosed()                                {}
func (nopRecorder) ObserveHTTP(string, string, int, time.Duration) {}

// Hub owns the shared document canvas used by the REST endpoints and one
// canvas per websocket session. Every canvas shows the same records.
type Hub struct {
	mu       sync.Mutex
	nodes    []graph.Node
	edges    []graph.Edge
	doc      *canvas.Canvas
	sessions map[string]*Session
	closed   bool

	factory CanvasFactory
	rec     Recorder
	logger  *zap.Logger
}

// NewHub creates a hub and mounts its document canvas on a surface of the
// given size. rec may be nil.
func NewHub(factory CanvasFactory, vp layout.Viewport, rec Recorder, logger *zap.Logger) *Hub {
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		doc:      factory(nil),
		sessions: make(map[string]*Session),
		factory:  factory,
		rec:      rec,
		logger:   logger.Named("hub"),
	}
	h.doc.Mount(context.Background(), vp)
	return h
}

// Document is the canvas behind the REST endpoints.
func (h *Hub) Document() *canvas.Canvas { return h.doc }

// Replace swaps the records shown by every canvas. The error is the
// document canvas's integrity report; sessions report the same problems.
func (h *Hub) Replace(nodes []graph.Node, edges []graph.Edge) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes, h.edges = nodes, edges

	err := h.doc.SetData(nodes, edges)
	for _, s := range h.sessions {
		_ = s.canvas.SetData(nodes, edges)
	}
	h.logger.Info("Graph replaced",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
		zap.Int("sessions", len(h.sessions)),
	)
	return err
}

// Len is the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// register gives s a canvas with the current records and mounts it. The
// hub lock is held throughout so a concurrent Replace cannot be overwritten
// with older records.
func (h *Hub) register(ctx context.Context, s *Session, vp layout.Viewport) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	s.canvas = h.factory(s.selected)
	_ = s.canvas.SetData(h.nodes, h.edges)
	s.canvas.Mount(ctx, vp)
	h.sessions[s.id] = s

	h.rec.SessionOpened()
	h.logger.Info("Session opened", zap.String("session", s.id))
	return true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	h.mu.Unlock()
	if !ok {
		return
	}
	s.canvas.Unmount()
	h.rec.SessionClosed()
	h.logger.Info("Session closed", zap.String("session", s.id))
}

// Close ends every session and unmounts the document canvas.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	h.doc.Unmount()
}
