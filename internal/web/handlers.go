package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/btaeng/trivia-map/internal/geo"
	"github.com/btaeng/trivia-map/internal/metrics"
	"github.com/btaeng/trivia-map/internal/model"
)

// triviaFailure is the only error message the trivia endpoint returns.
const triviaFailure = "Failed to fetch trivia question."

// allRegions lifts the region gate on /api/features.
const allRegions = "*"

const maxTriviaBody = 1 << 16

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dataset.Regions())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Categories)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	var features []model.GeoFeature
	if region == allRegions {
		features = s.Dataset.Features()
	} else {
		features = s.Dataset.InRegion(region)
	}
	writeJSON(w, http.StatusOK, geo.FeatureCollection(features))
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "invalid 'lat'/'lon' parameters")
		return
	}

	f, ok := s.Dataset.Locate(lat, lon)
	if !ok {
		writeError(w, http.StatusNotFound, "no country at that point")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": f.Name, "region": f.Region})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Exclusions.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleTrivia relays one question. Every failure, including a body that
// does not decode, is reported as the same 500.
func (s *Server) handleTrivia(w http.ResponseWriter, r *http.Request) {
	var req model.TriviaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTriviaBody)).Decode(&req); err != nil {
		metrics.TriviaFailuresTotal.WithLabelValues(metrics.StageRequest).Inc()
		s.logger().Warn("trivia_bad_request", "err", err)
		writeError(w, http.StatusInternalServerError, triviaFailure)
		return
	}

	q, err := s.Relay.Generate(r.Context(), req.Location, req.Category)
	if err != nil {
		s.logger().Error("trivia_generate_error",
			"location", req.Location,
			"category", req.Category,
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, triviaFailure)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
