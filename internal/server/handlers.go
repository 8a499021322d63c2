package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/canvas"
	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
)

const defaultSearchLimit = 20

// NodeDetail is a record with the flows touching it.
type NodeDetail struct {
	Node     graph.Node   `json:"node"`
	Incoming []graph.Edge `json:"incoming"`
	Outgoing []graph.Edge `json:"outgoing"`
}

// Selection is the current highlight.
type Selection struct {
	Selected string   `json:"selected"`
	Adjacent []string `json:"adjacent"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"nodes":    s.hub.Document().Snapshot().Len(),
		"sessions": s.hub.Len(),
	})
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	scene, ok := s.hub.Document().Scene()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "view is not mounted")
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// exportSVG downloads the shared view. width and height query parameters
// resize it first.
func (s *Server) exportSVG(w http.ResponseWriter, r *http.Request) {
	doc := s.hub.Document()
	if vp, ok := viewportParam(r); ok {
		doc.Resize(vp)
	}

	w.Header().Set("Content-Type", render.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+render.ExportFilename+`"`)
	ok, err := doc.Export(w)
	if !ok {
		w.Header().Del("Content-Disposition")
		writeError(w, http.StatusServiceUnavailable, "view is not mounted")
		return
	}
	if err != nil {
		s.logger.Error("Exporting svg", zap.Error(err))
	}
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	snap := s.hub.Document().Snapshot()
	n, ok := snap.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	detail := NodeDetail{Node: *n, Incoming: []graph.Edge{}, Outgoing: []graph.Edge{}}
	for _, e := range snap.Edges {
		if e.Target == id {
			detail.Incoming = append(detail.Incoming, e)
		}
		if e.Source == id {
			detail.Outgoing = append(detail.Outgoing, e)
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// searchNodes matches q against the loaded records, or the database when
// one is configured. Database hits that are not in the graph are skipped.
func (s *Server) searchNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := defaultSearchLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	snap := s.hub.Document().Snapshot()

	var ids []string
	if s.search != nil {
		hits, err := s.search.SearchCharities(q, limit)
		if err != nil {
			s.logger.Error("Search failed", zap.String("query", q), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		for _, c := range hits {
			ids = append(ids, c.ID)
		}
	} else {
		ids = snap.Search(q, limit)
	}

	results := make([]graph.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := snap.Node(id); ok {
			results = append(results, *n)
		}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) selection() Selection {
	sel, adj := s.hub.Document().Selection()
	if adj == nil {
		adj = []string{}
	}
	return Selection{Selected: sel, Adjacent: adj}
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) postSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"id\": \"<node id>\"}")
		return
	}
	if err := s.hub.Document().Select(req.ID); err != nil {
		if errors.Is(err, canvas.ErrUnknownNode) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) deleteSelection(w http.ResponseWriter, r *http.Request) {
	s.hub.Document().ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	vp, _ := viewportParam(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	newSession(s.hub, conn, s.cfg.FrameInterval, s.logger).run(r.Context(), vp)
}

// viewportParam reads width and height query parameters.
func viewportParam(r *http.Request) (layout.Viewport, bool) {
	q := r.URL.Query()
	w, err1 := strconv.ParseFloat(q.Get("width"), 64)
	h, err2 := strconv.ParseFloat(q.Get("height"), 64)
	if err1 != nil || err2 != nil {
		return layout.Viewport{}, false
	}
	return layout.Viewport{Width: w, Height: h}, true
}
