package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/classify"
	"github.com/sells-group/prospect-cli/internal/model"
)

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	Inputs []model.ClassificationInput `json:"inputs"`
}

// ClassifyResponse carries one result per normalized company name.
type ClassifyResponse struct {
	Results classify.Results `json:"results"`
	Stats   classify.Stats   `json:"stats"`
}

// EnrichRequest is the body of POST /v1/enrich.
type EnrichRequest struct {
	CompanyName  string `json:"companyName"`
	ProfileURL   string `json:"profileUrl"`
	IndustryHint string `json:"industryHint"`
}

// EnrichResponse holds the enrichment result, or null when nothing was found.
type EnrichResponse struct {
	Result *model.EnrichmentResult `json:"result"`
}

// ScoreRequest is the body of POST /v1/score. Settings fields left out keep
// the server defaults.
type ScoreRequest struct {
	Enrichment model.CompanyEnrichmentData `json:"enrichment"`
	Settings   *model.IcpSettings          `json:"settings"`
	Label      string                      `json:"label"`
}

// ScoreResponse is the band and its audit trail.
type ScoreResponse struct {
	Score     model.IcpScore       `json:"score"`
	Breakdown model.ScoreBreakdown `json:"breakdown"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if s.classifier == nil {
		writeError(w, http.StatusServiceUnavailable, "classification is not configured")
		return
	}
	var req ClassifyRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Inputs) > s.opts.MaxInputs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many inputs: %d (max %d)", len(req.Inputs), s.opts.MaxInputs))
		return
	}

	results := s.classifier.Classify(r.Context(), req.Inputs, nil)
	writeJSON(w, http.StatusOK, ClassifyResponse{Results: results, Stats: results.Stats()})
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if s.enricher == nil {
		writeError(w, http.StatusServiceUnavailable, "enrichment is not configured")
		return
	}
	var req EnrichRequest
	if !decode(w, r, &req) {
		return
	}
	if blank(req.CompanyName) {
		writeError(w, http.StatusBadRequest, "companyName is required")
		return
	}

	result := s.enricher.Enrich(r.Context(), req.CompanyName, req.ProfileURL, req.IndustryHint)
	writeJSON(w, http.StatusOK, EnrichResponse{Result: result})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if s.scorer == nil {
		writeError(w, http.StatusServiceUnavailable, "scoring is not configured")
		return
	}
	settings := s.opts.DefaultSettings
	req := ScoreRequest{Settings: &settings}
	if !decode(w, r, &req) {
		return
	}
	if req.Settings == nil {
		req.Settings = &settings
	}

	score, breakdown := s.scorer.Score(r.Context(), req.Enrichment, *req.Settings, req.Label)
	zap.L().Debug("api: scored",
		zap.String("label", req.Label),
		zap.String("score", string(score)),
	)
	writeJSON(w, http.StatusOK, ScoreResponse{Score: score, Breakdown: breakdown})
}
