package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.log.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	se, ok := apperrors.AsStandardError(err)
	if !ok {
		se = apperrors.NewInternalError(err)
	}

	status := apperrors.HTTPStatus(se)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", map[string]interface{}{
			"code":  string(se.Code),
			"error": se.Message,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error: &errorBody{
			Code:    string(se.Code),
			Message: se.Message,
			Details: se.Details,
		},
	})
}
