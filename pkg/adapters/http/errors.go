package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// statusFor maps engine sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrGraphNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateNode):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownNodeType),
		errors.Is(err, domain.ErrUnknownPort),
		errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrInvalidDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	for _, e := range schema.ValidationErrors(err) {
		var ve *schema.ValidationError
		if errors.As(e, &ve) {
			body.Fields = append(body.Fields, ve.Key)
		}
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err, "path", r.URL.Path)
	} else {
		s.Logger.Debug(op+" rejected", "err", err, "status", status)
	}
	writeJSON(w, status, body)
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.Logger.Debug(op+": invalid request body", "err", err)
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
}
