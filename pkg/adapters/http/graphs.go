package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, "ListGraphs", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// SaveNewGraph handles POST /graphs, checkpointing under a fresh id.
func (s *Server) SaveNewGraph(w http.ResponseWriter, r *http.Request) {
	s.checkpoint(w, r, uuid.NewString(), http.StatusCreated)
}

// SaveGraph handles PUT /graphs/{graphID}.
func (s *Server) SaveGraph(w http.ResponseWriter, r *http.Request) {
	s.checkpoint(w, r, chi.URLParam(r, "graphID"), http.StatusOK)
}

func (s *Server) checkpoint(w http.ResponseWriter, r *http.Request, graphID string, status int) {
	snap, err := s.Sessions.Checkpoint(r.Context(), graphID, s.Engine)
	if err != nil {
		s.fail(w, r, "SaveGraph", err)
		return
	}
	s.Logger.Info("graph saved", "graph_id", graphID, "nodes", len(snap.Nodes))
	writeJSON(w, status, map[string]any{"id": graphID, "nodes": len(snap.Nodes), "connections": len(snap.Connections)})
}

// LoadGraph handles POST /graphs/{graphID}/load, replacing the live graph.
func (s *Server) LoadGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if err := s.Sessions.Resume(r.Context(), graphID, s.Engine); err != nil {
		s.fail(w, r, "LoadGraph", err)
		return
	}
	s.Logger.Info("graph loaded", "graph_id", graphID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGraph handles DELETE /graphs/{graphID}.
func (s *Server) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "graphID")); err != nil {
		s.fail(w, r, "DeleteGraph", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
