package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/adlabtools/kwopt/pkg/keywords"
)

// OptimizeRequest is the JSON body of POST /api/optimize. Zero values fall
// back to the server's configured defaults.
type OptimizeRequest struct {
	SeedKeywords   []string `json:"seedKeywords"`
	MatchTypes     []string `json:"matchTypes"`
	MaxCpc         string   `json:"maxCpc,omitempty"`
	Locations      []int64  `json:"locations,omitempty"`
	Languages      []int64  `json:"languages,omitempty"`
	MaxSteps       int      `json:"maxSteps,omitempty"`
	MinImprovement *float64 `json:"minImprovement,omitempty"`
	MaxPopulation  int      `json:"maxPopulation,omitempty"`
	ReplicateBest  int      `json:"replicateBest,omitempty"`
	Scorer         string   `json:"scorer,omitempty"`
	Formula        string   `json:"formula,omitempty"`
}

type optimizeResponse struct {
	AverageScore *float64          `json:"averageScore"`
	Keywords     []keywordResponse `json:"keywords"`
}

type keywordResponse struct {
	Text      string                    `json:"text"`
	MatchType string                    `json:"matchType"`
	Score     *float64                  `json:"score,omitempty"`
	Estimate  *keywords.TrafficEstimate `json:"estimate,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": s.Version,
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.SeedKeywords) == 0 {
		http.Error(w, "seedKeywords is required", http.StatusBadRequest)
		return
	}

	population, err := s.Optimize(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := optimizeResponse{}
	if avg := population.AverageScore(); !math.IsNaN(avg) {
		response.AverageScore = &avg
	}
	for _, info := range population.SortedByScore() {
		response.Keywords = append(response.Keywords, keywordResponse{
			Text:      info.Keyword.Text,
			MatchType: info.Keyword.MatchType.String(),
			Score:     info.Score,
			Estimate:  info.TrafficEstimate,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
