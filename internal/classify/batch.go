package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

const batchSystemPrompt = `You classify the "company" field of professional network connections.
For each numbered item decide what the company field really contains:
- "company": a real organization (business, nonprofit, school, agency)
- "personal_name": a person's name rather than an organization
- "enclosed": a stealth, confidential or undisclosed employer
- "non_company": anything else (job status, location, placeholder text)
Respond with only a JSON array, one object per item:
[{"index": <item number>, "type": "<company|personal_name|enclosed|non_company>", "confidence": <0.0-1.0>}]`

// Labels returned by the batch model.
const (
	labelCompany      = "company"
	labelPersonalName = "personal_name"
	labelEnclosed     = "enclosed"
	labelNonCompany   = "non_company"
)

type batchEntry struct {
	Index      int     `json:"index"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// BatchClassifier is the stage 2 text-model classifier.
type BatchClassifier struct {
	gen  llm.Generator
	opts Options
}

// NewBatchClassifier returns a batch classifier over gen. gen must not be nil.
func NewBatchClassifier(gen llm.Generator, opts Options) *BatchClassifier {
	return &BatchClassifier{gen: gen, opts: opts.withDefaults()}
}

func buildBatchPrompt(items []model.ClassificationInput) string {
	var b strings.Builder
	b.WriteString("Classify these company fields:\n\n")
	for i, in := range items {
		person := strings.TrimSpace(in.FirstName + " " + in.LastName)
		fmt.Fprintf(&b, "%d. Company: %q | Person: %s | Title: %s\n",
			i+1, strings.TrimSpace(in.CompanyName), orNone(person), orNone(strings.TrimSpace(in.Position)))
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func labelToType(label string) (model.ClassificationType, bool) {
	switch label {
	case labelCompany:
		return model.ClassificationCompany, true
	case labelEnclosed:
		return model.ClassificationEnclosed, true
	case labelPersonalName, labelNonCompany:
		return model.ClassificationSkip, true
	}
	return "", false
}

// parseBatchResponse maps confident answers to item positions (0-based).
// Malformed entries are skipped; output that is not an array yields an empty map.
func parseBatchResponse(text string, n int, threshold float64) map[int]model.ClassificationResult {
	out := make(map[int]model.ClassificationResult)
	raw := llm.CleanJSONArray(text)
	if raw == "" {
		return out
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		zap.L().Debug("classify: unparseable batch response", zap.Error(err))
		return out
	}
	for _, rawEntry := range entries {
		var e batchEntry
		if err := json.Unmarshal(rawEntry, &e); err != nil {
			zap.L().Debug("classify: skipping malformed batch entry", zap.ByteString("entry", rawEntry), zap.Error(err))
			continue
		}
		pos := e.Index - 1
		if pos < 0 || pos >= n || e.Confidence < threshold {
			continue
		}
		if _, dup := out[pos]; dup {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(e.Type))
		t, ok := labelToType(label)
		if !ok {
			continue
		}
		out[pos] = model.ClassificationResult{
			Type:       t,
			Reason:     fmt.Sprintf("model classified as %s (confidence %.2f)", label, e.Confidence),
			Provenance: model.ModelBatch{Label: label, Confidence: e.Confidence},
		}
	}
	return out
}

// ClassifyBatch asks the model about items in a single call and returns the
// confident answers keyed by position in items. Any failure returns an empty
// map so the items fall through to the next stage.
func (b *BatchClassifier) ClassifyBatch(ctx context.Context, items []model.ClassificationInput) map[int]model.ClassificationResult {
	if len(items) == 0 {
		return map[int]model.ClassificationResult{}
	}
	text, err := b.gen.Generate(ctx, llm.Request{
		System:          batchSystemPrompt,
		Prompt:          buildBatchPrompt(items),
		MaxOutputTokens: b.opts.MaxOutputTokens,
		Phase:           "classify_batch",
	})
	if err != nil {
		zap.L().Warn("classify: batch model call failed",
			zap.Int("items", len(items)),
			zap.Error(err),
		)
		return map[int]model.ClassificationResult{}
	}
	return parseBatchResponse(text, len(items), b.opts.ModelConfidenceThreshold)
}
