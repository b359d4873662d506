package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/census"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/rentcast"
)

const (
	defaultAMIPercent = 60
	defaultBedrooms   = 2
	defaultTrendSpan  = 12

	// maxBatchZipcodes bounds one batch demographics request.
	maxBatchZipcodes = 50
)

func (s *Server) handleDemographics(w http.ResponseWriter, r *http.Request) {
	demo, err := s.demographics.GetDemographics(r.Context(), r.PathValue("zipcode"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, demo)
}

// handleDemographicsBatch looks up several ZIP codes in one request. Lookups
// that fail are reported per ZIP instead of failing the whole batch.
func (s *Server) handleDemographicsBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Zipcodes []string `json:"zipcodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewInvalidPayloadError(err.Error()))
		return
	}
	if len(req.Zipcodes) == 0 {
		s.writeError(w, apperrors.NewInvalidParameterError("zipcodes",
			"at least one zipcode is required"))
		return
	}
	if len(req.Zipcodes) > maxBatchZipcodes {
		s.writeError(w, apperrors.NewInvalidParameterError("zipcodes",
			fmt.Sprintf("at most %d zipcodes per request, got %d",
				maxBatchZipcodes, len(req.Zipcodes))))
		return
	}

	results := make(map[string]*census.Demographics)
	failed := make(map[string]string)
	for _, zipcode := range req.Zipcodes {
		demo, err := s.demographics.GetDemographics(r.Context(), zipcode)
		if err != nil {
			if se, ok := apperrors.AsStandardError(err); ok {
				failed[zipcode] = se.Message
			} else {
				failed[zipcode] = err.Error()
			}
			continue
		}
		results[zipcode] = demo
	}

	s.writeData(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"errors":  failed,
	})
}

func (s *Server) handleAMIRentLimit(w http.ResponseWriter, r *http.Request) {
	ami, err := queryInt(r, "ami", defaultAMIPercent)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bedrooms, err := queryInt(r, "bedrooms", defaultBedrooms)
	if err != nil {
		s.writeError(w, err)
		return
	}

	limit, err := s.demographics.GetAMIRentLimit(r.Context(), r.PathValue("zipcode"), ami, bedrooms)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, limit)
}

func (s *Server) handleRentEstimate(w http.ResponseWriter, r *http.Request) {
	q, err := estimateQueryFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	estimate, err := s.rentals.GetRentEstimate(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, estimate)
}

func (s *Server) handleMarketStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.rentals.GetMarketStatistics(r.Context(), r.PathValue("zipcode"),
		r.URL.Query().Get("dataType"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, stats)
}

func (s *Server) handleMarketTrends(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", defaultTrendSpan)
	if err != nil {
		s.writeError(w, err)
		return
	}

	trends, err := s.rentals.GetMarketTrends(r.Context(), r.PathValue("zipcode"), months,
		r.URL.Query().Get("dataType"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, trends)
}

func (s *Server) handlePropertyValuation(w http.ResponseWriter, r *http.Request) {
	q, err := estimateQueryFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	valuation, err := s.rentals.GetPropertyValuation(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, valuation)
}

func (s *Server) handleMarketContext(w http.ResponseWriter, r *http.Request) {
	mc, err := s.market.GetMarketContext(r.Context(), r.PathValue("zipcode"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, mc)
}

func (s *Server) handleMacroSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.economy.GetMacroSnapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, snapshot)
}

func (s *Server) handleMortgageRates(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", defaultTrendSpan)
	if err != nil {
		s.writeError(w, err)
		return
	}

	history, err := s.economy.GetMortgageRateHistory(r.Context(), months)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, history)
}

func estimateQueryFromRequest(r *http.Request) (rentcast.EstimateQuery, error) {
	bedrooms, err := queryInt(r, "bedrooms", 0)
	if err != nil {
		return rentcast.EstimateQuery{}, err
	}
	squareFootage, err := queryInt(r, "squareFootage", 0)
	if err != nil {
		return rentcast.EstimateQuery{}, err
	}
	bathrooms, err := queryFloat(r, "bathrooms", 0)
	if err != nil {
		return rentcast.EstimateQuery{}, err
	}

	return rentcast.EstimateQuery{
		Address:       r.URL.Query().Get("address"),
		Zipcode:       r.URL.Query().Get("zipcode"),
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		SquareFootage: squareFootage,
	}, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidParameterError(name, "must be an integer")
	}
	return v, nil
}

func queryFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewInvalidParameterError(name, "must be a number")
	}
	return v, nil
}
