package api

import (
	"net/http"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/listings"
)

func (s *Server) handleListingSearch(w http.ResponseWriter, r *http.Request) {
	minPrice, err := queryFloat(r, "minPrice", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	maxPrice, err := queryFloat(r, "maxPrice", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	minUnits, err := queryInt(r, "minUnits", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	size, err := queryInt(r, "size", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := listings.SearchQuery{
		Keywords: r.URL.Query().Get("keywords"),
		City:     r.URL.Query().Get("city"),
		Zipcode:  r.URL.Query().Get("zipcode"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		MinUnits: minUnits,
		From:     from,
		Size:     size,
	}

	result, err := s.listings.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, result)
}

func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.listings.DashboardMetrics(r.Context()))
}
