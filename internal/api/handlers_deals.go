package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/metrics"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/deals"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/underwriting"
)

// handleUnderwrite runs the underwriting engine over a parameter set without
// persisting anything. It backs the what-if analysis view.
func (s *Server) handleUnderwrite(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, apperrors.NewInvalidPayloadError("unreadable request body"))
		return
	}
	if err := validatePayload(underwriteSchema, raw); err != nil {
		s.writeError(w, err)
		return
	}

	var params underwriting.DealParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		s.writeError(w, apperrors.NewInvalidPayloadError(err.Error()))
		return
	}

	m, err := underwriting.ComputeDealMetrics(params)
	if err != nil {
		metrics.UnderwritingRuns.WithLabelValues("invalid").Inc()
		s.writeError(w, err)
		return
	}

	outcome := "converged"
	if !m.IRRConverged {
		outcome = "not_converged"
	}
	metrics.UnderwritingRuns.WithLabelValues(outcome).Inc()
	metrics.IRRSolverIterations.Observe(float64(m.IRRIterations))

	s.writeData(w, http.StatusOK, m)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	in, err := decodeDealInput(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	d, err := s.deals.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, d)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.deals.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, list)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	d, err := s.deals.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	in, err := decodeDealInput(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	d, err := s.deals.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.deals.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

func (s *Server) handleGroupedDeals(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.deals.GroupedByStatus(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, grouped)
}

func decodeDealInput(r *http.Request) (deals.Input, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return deals.Input{}, apperrors.NewInvalidPayloadError("unreadable request body")
	}
	if err := validatePayload(dealSchema, raw); err != nil {
		return deals.Input{}, err
	}

	var in deals.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return deals.Input{}, apperrors.NewInvalidPayloadError(err.Error())
	}
	return in, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidParameterError("id", "must be a positive integer")
	}
	return id, nil
}
