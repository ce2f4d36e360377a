// Package icp scores enriched companies against an ideal customer profile.
package icp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Sub-score names.
const (
	SubScoreEmployees   = "employees"
	SubScoreIndustry    = "industry"
	SubScoreSpecialties = "specialties"
)

// NeutralScore is used for the quantitative score when no criterion is
// configured and for the qualitative score when it cannot be computed.
const NeutralScore = 0.5

// Band thresholds for MapToIcpScore.
const (
	VeryHighThreshold = 0.75
	HighThreshold     = 0.50
	MediumThreshold   = 0.25
)

// Options holds the nominal sub-score weights.
type Options struct {
	EmployeeWeight  float64
	IndustryWeight  float64
	SpecialtyWeight float64
	MaxOutputTokens int
}

// DefaultOptions returns the production weights.
func DefaultOptions() Options {
	return Options{
		EmployeeWeight:  0.40,
		IndustryWeight:  0.35,
		SpecialtyWeight: 0.25,
		MaxOutputTokens: 256,
	}
}

// Scorer combines quantitative criteria with an optional qualitative model
// rating. A nil generator disables the qualitative part.
type Scorer struct {
	gen  llm.Generator
	opts Options
}

// New builds a Scorer.
func New(gen llm.Generator, opts Options) *Scorer {
	if opts.EmployeeWeight < 0 || opts.IndustryWeight < 0 || opts.SpecialtyWeight < 0 ||
		opts.EmployeeWeight+opts.IndustryWeight+opts.SpecialtyWeight == 0 {
		d := DefaultOptions()
		opts.EmployeeWeight, opts.IndustryWeight, opts.SpecialtyWeight = d.EmployeeWeight, d.IndustryWeight, d.SpecialtyWeight
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultOptions().MaxOutputTokens
	}
	return &Scorer{gen: gen, opts: opts}
}

// MapToIcpScore maps a composite score in [0,1] to its band.
func MapToIcpScore(composite float64) model.IcpScore {
	switch {
	case composite >= VeryHighThreshold:
		return model.IcpVeryHigh
	case composite >= HighThreshold:
		return model.IcpHigh
	case composite >= MediumThreshold:
		return model.IcpMedium
	default:
		return model.IcpLow
	}
}

// Score rates data against settings. label names the company in logs and
// in the qualitative prompt. The breakdown records every input needed to
// reproduce the band.
func (s *Scorer) Score(ctx context.Context, data model.CompanyEnrichmentData, settings model.IcpSettings, label string) (model.IcpScore, model.ScoreBreakdown) {
	b := model.ScoreBreakdown{Label: label}

	subs := []model.SubScore{
		employeeScore(data.EmployeeCount, settings, s.opts.EmployeeWeight),
		industryScore(data.Industry, settings.TargetIndustries, s.opts.IndustryWeight),
		specialtyScore(data.Specialties, settings.TargetSpecialties, s.opts.SpecialtyWeight),
	}
	b.Quantitative, b.QuantitativeNeutral = combine(subs)
	b.SubScores = subs
	for _, sub := range subs {
		if sub.Active() {
			b.Trail = append(b.Trail, fmt.Sprintf("%s: %s -> %.2f (weight %.2f, renormalized %.4f)",
				sub.Name, sub.Detail, sub.Value, sub.NominalWeight, sub.EffectiveWeight))
		} else {
			b.Trail = append(b.Trail, fmt.Sprintf("%s: %s", sub.Name, sub.Detail))
		}
	}
	if b.QuantitativeNeutral {
		b.Trail = append(b.Trail, fmt.Sprintf("quantitative: no criteria configured -> neutral %.2f", NeutralScore))
	} else {
		b.Trail = append(b.Trail, fmt.Sprintf("quantitative: %.4f", b.Quantitative))
	}

	s.qualitative(ctx, data.About, settings.Description, label, &b)

	w := clampPercent(settings.QuantitativeWeightPercent)
	b.QuantitativeWeightPercent = w
	if b.HasQualitative {
		b.Composite = b.Quantitative*(w/100) + b.Qualitative*(1-w/100)
		b.Trail = append(b.Trail, fmt.Sprintf("composite: %.4f*%.2f + %.4f*%.2f = %.4f",
			b.Quantitative, w/100, b.Qualitative, 1-w/100, b.Composite))
	} else {
		b.Composite = b.Quantitative
		b.Trail = append(b.Trail, fmt.Sprintf("composite: quantitative only = %.4f", b.Composite))
	}

	b.Score = MapToIcpScore(b.Composite)
	b.Trail = append(b.Trail, fmt.Sprintf("band: %.4f -> %s (thresholds %.2f/%.2f/%.2f)",
		b.Composite, b.Score, VeryHighThreshold, HighThreshold, MediumThreshold))

	zap.L().Debug("icp: scored",
		zap.String("label", label),
		zap.Float64("quantitative", b.Quantitative),
		zap.Bool("has_qualitative", b.HasQualitative),
		zap.Float64("composite", b.Composite),
		zap.String("score", string(b.Score)),
	)
	return b.Score, b
}

func clampPercent(w float64) float64 {
	return math.Max(0, math.Min(100, w))
}

// combine renormalizes the nominal weights over the active sub-scores.
func combine(subs []model.SubScore) (score float64, neutral bool) {
	total := 0.0
	for _, sub := range subs {
		if sub.Active() {
			total += sub.NominalWeight
		}
	}
	if total == 0 {
		active := 0
		for _, sub := range subs {
			if sub.Active() {
				active++
			}
		}
		if active == 0 {
			return NeutralScore, true
		}
		for i := range subs {
			if subs[i].Active() {
				subs[i].EffectiveWeight = 1 / float64(active)
				score += subs[i].Value * subs[i].EffectiveWeight
			}
		}
		return score, false
	}
	for i := range subs {
		if subs[i].Active() {
			subs[i].EffectiveWeight = subs[i].NominalWeight / total
			score += subs[i].Value * subs[i].EffectiveWeight
		}
	}
	return score, false
}

func employeeScore(count string, settings model.IcpSettings, weight float64) model.SubScore {
	sub := model.SubScore{Name: SubScoreEmployees, NominalWeight: weight, Value: model.NotApplicable}
	if settings.EmployeeMin == nil && settings.EmployeeMax == nil {
		sub.Detail = "no employee range configured"
		return sub
	}

	lo, hi := 0.0, math.Inf(1)
	if settings.EmployeeMin != nil {
		lo = *settings.EmployeeMin
	}
	if settings.EmployeeMax != nil {
		hi = *settings.EmployeeMax
	}
	sub.Inputs = []string{
		"employeeCount=" + count,
		fmt.Sprintf("range=[%v, %v]", lo, hi),
	}

	mid, ok := ParseEmployeeCount(count)
	if !ok {
		sub.Value = 0
		sub.Detail = fmt.Sprintf("employee count %q unparseable", count)
		return sub
	}
	if mid >= lo && mid <= hi {
		sub.Value = 1
		sub.Detail = fmt.Sprintf("midpoint %v within [%v, %v]", mid, lo, hi)
	} else {
		sub.Value = 0
		sub.Detail = fmt.Sprintf("midpoint %v outside [%v, %v]", mid, lo, hi)
	}
	return sub
}

// overlaps reports a case-insensitive substring match in either direction.
func overlaps(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func industryScore(industry string, targets []string, weight float64) model.SubScore {
	sub := model.SubScore{Name: SubScoreIndustry, NominalWeight: weight, Value: model.NotApplicable}
	targets = nonBlank(targets)
	if len(targets) == 0 {
		sub.Detail = "no target industries configured"
		return sub
	}
	sub.Inputs = []string{"industry=" + industry, "targets=" + strings.Join(targets, "|")}
	for _, t := range targets {
		if overlaps(industry, t) {
			sub.Value = 1
			sub.Detail = fmt.Sprintf("industry %q matches target %q", industry, t)
			return sub
		}
	}
	sub.Value = 0
	sub.Detail = fmt.Sprintf("industry %q matches no target", industry)
	return sub
}

func specialtyScore(specialties, targets []string, weight float64) model.SubScore {
	sub := model.SubScore{Name: SubScoreSpecialties, NominalWeight: weight, Value: model.NotApplicable}
	targets = nonBlank(targets)
	if len(targets) == 0 {
		sub.Detail = "no target specialties configured"
		return sub
	}
	sub.Inputs = []string{
		"specialties=" + strings.Join(specialties, "|"),
		"targets=" + strings.Join(targets, "|"),
	}
	matched := 0
	for _, sp := range specialties {
		for _, t := range targets {
			if overlaps(sp, t) {
				matched++
			}
		}
	}
	sub.Value = math.Min(float64(matched)/float64(len(targets)), 1)
	sub.Detail = fmt.Sprintf("min(%d matched pairs / %d targets, 1)", matched, len(targets))
	return sub
}
