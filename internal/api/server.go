// Package api exposes the classify, enrich and score operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/classify"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Classifier runs the classification cascade.
type Classifier interface {
	Classify(ctx context.Context, inputs []model.ClassificationInput, progress classify.ProgressFunc) classify.Results
}

// Enricher produces enrichment data for one company.
type Enricher interface {
	Enrich(ctx context.Context, companyName, knownProfileURL, industryHint string) *model.EnrichmentResult
}

// Scorer scores enrichment data against an ICP.
type Scorer interface {
	Score(ctx context.Context, data model.CompanyEnrichmentData, settings model.IcpSettings, label string) (model.IcpScore, model.ScoreBreakdown)
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// DefaultSettings is the ICP base that request settings are decoded onto.
	DefaultSettings model.IcpSettings
	// MaxInputs caps one classify request. Zero means DefaultMaxInputs.
	MaxInputs int
	// RequestTimeout bounds each pipeline request. Zero disables it.
	RequestTimeout time.Duration
}

// DefaultMaxInputs is the classify request cap when Options.MaxInputs is zero.
const DefaultMaxInputs = 5000

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Server wires the pipeline to HTTP handlers.
type Server struct {
	classifier Classifier
	enricher   Enricher
	scorer     Scorer
	opts       Options
}

// New creates a Server. Any of the collaborators may be nil, in which case
// its endpoint answers 503.
func New(classifier Classifier, enricher Enricher, scorer Scorer, opts Options) *Server {
	if opts.MaxInputs <= 0 {
		opts.MaxInputs = DefaultMaxInputs
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{classifier: classifier, enricher: enricher, scorer: scorer, opts: opts}
}

// Router returns the chi router serving every endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/classify", s.handleClassify)
		r.Post("/enrich", s.handleEnrich)
		r.Post("/score", s.handleScore)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into v. It writes a 400 and returns false on
// malformed input.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
