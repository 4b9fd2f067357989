package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

// TypeInfo describes a node definition.
type TypeInfo struct {
	Type          string            `json:"type"`
	Description   string            `json:"description,omitempty"`
	Category      string            `json:"category,omitempty"`
	Inputs        []domain.PortSpec `json:"inputs"`
	Output        domain.PortSpec   `json:"output"`
	DefaultConfig domain.Config     `json:"default_config,omitempty"`
	ConfigSchema  schema.Schema     `json:"config_schema,omitempty"`
	Async         bool              `json:"async,omitempty"`
}

// CreateNodeRequest is the body of POST /nodes. An empty ID is generated.
type CreateNodeRequest struct {
	Type   string        `json:"type"`
	ID     string        `json:"id,omitempty"`
	Config domain.Config `json:"config,omitempty"`
}

// SetInputRequest is the body of PUT /nodes/{id}/inputs/{port}.
type SetInputRequest struct {
	Value any `json:"value"`
}

// OutputResponse is returned by GET /nodes/{id}/output.
type OutputResponse struct {
	Value domain.Value     `json:"value"`
	State domain.NodeState `json:"state"`
}

// ListTypes handles GET /types.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	defs := s.Engine.Registry().Definitions()
	out := make([]TypeInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, TypeInfo{
			Type:          d.Type,
			Description:   d.Description,
			Category:      d.Category,
			Inputs:        append([]domain.PortSpec{}, d.Inputs...),
			Output:        d.Output,
			DefaultConfig: d.DefaultConfig,
			ConfigSchema:  d.ConfigSchema,
			Async:         d.Async,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListNodes handles GET /nodes.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	views, err := s.Engine.Nodes(r.Context())
	if err != nil {
		s.fail(w, r, "ListNodes", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// CreateNode handles POST /nodes.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body CreateNodeRequest
	if err := decodeJSON(r, &body); err != nil {
		s.badRequest(w, "CreateNode", err)
		return
	}
	id, err := s.Engine.CreateNode(r.Context(), body.Type, body.ID, body.Config)
	if err != nil {
		s.fail(w, r, "CreateNode", err)
		return
	}
	view, err := s.Engine.Node(r.Context(), id)
	if err != nil {
		s.fail(w, r, "CreateNode", err)
		return
	}
	w.Header().Set("Location", "/nodes/"+id)
	writeJSON(w, http.StatusCreated, view)
}

// GetNode handles GET /nodes/{id}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	view, err := s.Engine.Node(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "GetNode", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveNode handles DELETE /nodes/{id}.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.RemoveNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "RemoveNode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOutput handles GET /nodes/{id}/output.
func (s *Server) GetOutput(w http.ResponseWriter, r *http.Request) {
	v, state, err := s.Engine.Output(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "GetOutput", err)
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{Value: v, State: state})
}

// GetConnected handles GET /nodes/{id}/connected.
func (s *Server) GetConnected(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.ConnectedNodes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "GetConnected", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// PatchConfig handles PATCH /nodes/{id}/config.
func (s *Server) PatchConfig(w http.ResponseWriter, r *http.Request) {
	var patch domain.Config
	if err := decodeJSON(r, &patch); err != nil {
		s.badRequest(w, "PatchConfig", err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Engine.SetConfig(r.Context(), id, patch); err != nil {
		s.fail(w, r, "PatchConfig", err)
		return
	}
	s.GetNode(w, r)
}

// SetInput handles PUT /nodes/{id}/inputs/{port}.
func (s *Server) SetInput(w http.ResponseWriter, r *http.Request) {
	var body SetInputRequest
	if err := decodeJSON(r, &body); err != nil {
		s.badRequest(w, "SetInput", err)
		return
	}
	err := s.Engine.SetInputRaw(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "port"), body.Value)
	if err != nil {
		s.fail(w, r, "SetInput", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearInput handles DELETE /nodes/{id}/inputs/{port}.
func (s *Server) ClearInput(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.ClearInput(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "port")); err != nil {
		s.fail(w, r, "ClearInput", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListConnections handles GET /connections.
func (s *Server) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.Engine.Connections(r.Context())
	if err != nil {
		s.fail(w, r, "ListConnections", err)
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

// Connect handles POST /connections.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var c domain.Connection
	if err := decodeJSON(r, &c); err != nil {
		s.badRequest(w, "Connect", err)
		return
	}
	if err := s.Engine.Connect(r.Context(), c.Source, c.Target, c.Port); err != nil {
		s.fail(w, r, "Connect", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Disconnect handles DELETE /connections?source=&target=&port=.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := domain.Connection{Source: q.Get("source"), Target: q.Get("target"), Port: q.Get("port")}
	if c.Source == "" || c.Target == "" || c.Port == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "source, target and port are required"})
		return
	}
	if err := s.Engine.Disconnect(r.Context(), c); err != nil {
		s.fail(w, r, "Disconnect", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, "GetGraph", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PutGraph handles PUT /graph, replacing the whole graph.
func (s *Server) PutGraph(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		s.badRequest(w, "PutGraph", err)
		return
	}
	if err := s.Engine.Restore(r.Context(), &snap); err != nil {
		s.fail(w, r, "PutGraph", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMermaid handles GET /graph/mermaid. ?live=false omits node state.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, "GetMermaid", err)
		return
	}
	var overlay *graph.Overlay
	if !strings.EqualFold(r.URL.Query().Get("live"), "false") {
		views, err := s.Engine.Nodes(r.Context())
		if err != nil {
			s.fail(w, r, "GetMermaid", err)
			return
		}
		overlay = &graph.Overlay{Views: views}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(snap, s.Engine.Registry(), overlay)))
}

// Wait handles POST /wait, blocking until no async compute is in flight.
func (s *Server) Wait(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.WaitIdle(r.Context()); err != nil {
		s.fail(w, r, "Wait", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
