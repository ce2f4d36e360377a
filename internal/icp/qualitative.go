package icp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

const qualitativeSystemPrompt = `You rate how well a company fits an ideal customer profile.
Compare the company description to the profile and respond with only a JSON object:
{"score": <integer 0-100>, "reason": "<one sentence>"}`

var leadingInt = regexp.MustCompile(`^\s*(\d{1,3})\b`)

type qualitativeReply struct {
	Score  json.Number `json:"score"`
	Reason string      `json:"reason"`
}

// parseRating extracts a 0-100 rating from model output. Accepts a JSON
// object with a "score" field or a bare leading integer.
func parseRating(text string) (int, bool) {
	if raw := llm.CleanJSONObject(text); raw != "" {
		var reply qualitativeReply
		if err := json.Unmarshal([]byte(raw), &reply); err == nil && reply.Score != "" {
			f, err := reply.Score.Float64()
			if err != nil {
				return 0, false
			}
			return validRating(int(math.Round(f)))
		}
		return 0, false
	}
	m := leadingInt.FindStringSubmatch(llm.StripFences(text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return validRating(n)
}

func validRating(n int) (int, bool) {
	if n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}

func qualitativePrompt(label, about, description string) string {
	name := strings.TrimSpace(label)
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("Ideal customer profile:\n%s\n\nCompany: %s\nDescription:\n%s",
		strings.TrimSpace(description), name, strings.TrimSpace(about))
}

// qualitative fills the qualitative fields of b. The rating counts only when
// both texts exist and the model returns a usable number; otherwise the
// neutral score is recorded and HasQualitative stays false.
func (s *Scorer) qualitative(ctx context.Context, about, description, label string, b *model.ScoreBreakdown) {
	b.Qualitative = NeutralScore
	switch {
	case strings.TrimSpace(description) == "":
		b.QualitativeNote = "no ICP description"
	case strings.TrimSpace(about) == "":
		b.QualitativeNote = "no company description"
	case s.gen == nil:
		b.QualitativeNote = "no text model configured"
	default:
		text, err := s.gen.Generate(ctx, llm.Request{
			System:          qualitativeSystemPrompt,
			Prompt:          qualitativePrompt(label, about, description),
			MaxOutputTokens: s.opts.MaxOutputTokens,
			Phase:           "icp_qualitative",
		})
		if err != nil {
			zap.L().Warn("icp: qualitative rating failed", zap.String("label", label), zap.Error(err))
			b.QualitativeNote = "model call failed"
			break
		}
		rating, ok := parseRating(text)
		if !ok {
			b.QualitativeNote = "unparseable model rating"
			break
		}
		b.QualitativeRating = &rating
		b.Qualitative = float64(rating) / 100
		b.HasQualitative = true
		b.QualitativeNote = fmt.Sprintf("model rating %d/100", rating)
	}

	if b.HasQualitative {
		b.Trail = append(b.Trail, fmt.Sprintf("qualitative: %s -> %.2f", b.QualitativeNote, b.Qualitative))
	} else {
		b.Trail = append(b.Trail, fmt.Sprintf("qualitative: %s -> neutral %.2f, not blended", b.QualitativeNote, b.Qualitative))
	}
}
