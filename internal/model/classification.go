package model

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ClassificationType is the coarse label assigned to a raw company string.
type ClassificationType string

const (
	ClassificationCompany  ClassificationType = "company"
	ClassificationEnclosed ClassificationType = "enclosed" // stealth / undisclosed
	ClassificationSkip     ClassificationType = "skip"
)

// ClassificationInput is one imported connection row.
type ClassificationInput struct {
	CompanyName string `json:"companyName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Position    string `json:"position"`
}

// NormalizeKey returns the dedup key for a company name: trimmed and lowercased.
func NormalizeKey(companyName string) string {
	return strings.ToLower(strings.TrimSpace(companyName))
}

// Provenance records which stage decided a classification and the evidence it used.
// The set of implementations is closed.
type Provenance interface {
	Stage() int
	Kind() string
	isProvenance()
}

// Deterministic is a stage 0 rule match.
type Deterministic struct {
	Rule string `json:"rule"`
}

// SearchGrounded is a stage 1 decision backed by a search result.
type SearchGrounded struct {
	URL        string  `json:"url,omitempty"`
	Similarity float64 `json:"similarity"`
}

// ModelBatch is a stage 2 decision from the batch text-model classifier.
type ModelBatch struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// FailOpen is the stage 3 default.
type FailOpen struct{}

func (Deterministic) Stage() int  { return 0 }
func (SearchGrounded) Stage() int { return 1 }
func (ModelBatch) Stage() int     { return 2 }
func (FailOpen) Stage() int       { return 3 }

func (Deterministic) Kind() string  { return "deterministic" }
func (SearchGrounded) Kind() string { return "search_grounded" }
func (ModelBatch) Kind() string     { return "model_batch" }
func (FailOpen) Kind() string       { return "fail_open" }

func (Deterministic) isProvenance()  {}
func (SearchGrounded) isProvenance() {}
func (ModelBatch) isProvenance()     {}
func (FailOpen) isProvenance()       {}

// ClassificationResult is the single decision made for one normalized company name.
type ClassificationResult struct {
	Type          ClassificationType
	Reason        string
	Provenance    Provenance
	LowConfidence bool
}

// Stage returns the cascade stage (0-3) that produced the result.
func (r ClassificationResult) Stage() int {
	if r.Provenance == nil {
		return 3
	}
	return r.Provenance.Stage()
}

// ProfileURL returns the company profile URL found by the grounded resolver, if any.
func (r ClassificationResult) ProfileURL() string {
	if sg, ok := r.Provenance.(SearchGrounded); ok && r.Type == ClassificationCompany {
		return sg.URL
	}
	return ""
}

type classificationJSON struct {
	Type          ClassificationType `json:"type"`
	Reason        string             `json:"reason"`
	Stage         int                `json:"stage"`
	LowConfidence bool               `json:"lowConfidence,omitempty"`
	ProfileURL    string             `json:"profileUrl,omitempty"`
	Provenance    provenanceJSON     `json:"provenance"`
}

type provenanceJSON struct {
	Kind       string   `json:"kind"`
	Rule       string   `json:"rule,omitempty"`
	URL        string   `json:"url,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
	Label      string   `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// MarshalJSON flattens the result into the persisted record shape.
func (r ClassificationResult) MarshalJSON() ([]byte, error) {
	out := classificationJSON{
		Type:          r.Type,
		Reason:        r.Reason,
		Stage:         r.Stage(),
		LowConfidence: r.LowConfidence,
		ProfileURL:    r.ProfileURL(),
	}
	switch p := r.Provenance.(type) {
	case Deterministic:
		out.Provenance = provenanceJSON{Kind: p.Kind(), Rule: p.Rule}
	case SearchGrounded:
		sim := p.Similarity
		out.Provenance = provenanceJSON{Kind: p.Kind(), URL: p.URL, Similarity: &sim}
	case ModelBatch:
		conf := p.Confidence
		out.Provenance = provenanceJSON{Kind: p.Kind(), Label: p.Label, Confidence: &conf}
	default:
		out.Provenance = provenanceJSON{Kind: FailOpen{}.Kind()}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a result written by MarshalJSON. Records without a
// provenance object are rebuilt from the flat stage field.
func (r *ClassificationResult) UnmarshalJSON(data []byte) error {
	var in classificationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return eris.Wrap(err, "model: unmarshal classification")
	}
	r.Type = in.Type
	r.Reason = in.Reason
	r.LowConfidence = in.LowConfidence

	kind := in.Provenance.Kind
	if kind == "" {
		kind = kindForStage(in.Stage)
	}
	switch kind {
	case "deterministic":
		r.Provenance = Deterministic{Rule: in.Provenance.Rule}
	case "search_grounded":
		sg := SearchGrounded{URL: in.Provenance.URL}
		if sg.URL == "" {
			sg.URL = in.ProfileURL
		}
		if in.Provenance.Similarity != nil {
			sg.Similarity = *in.Provenance.Similarity
		}
		r.Provenance = sg
	case "model_batch":
		mb := ModelBatch{Label: in.Provenance.Label}
		if in.Provenance.Confidence != nil {
			mb.Confidence = *in.Provenance.Confidence
		}
		r.Provenance = mb
	case "fail_open":
		r.Provenance = FailOpen{}
	default:
		return eris.Errorf("model: unknown provenance kind %q", kind)
	}
	return nil
}

func kindForStage(stage int) string {
	switch stage {
	case 0:
		return "deterministic"
	case 1:
		return "search_grounded"
	case 2:
		return "model_batch"
	default:
		return "fail_open"
	}
}
