package model

// IcpScore is the ordinal fit band.
type IcpScore string

const (
	IcpLow      IcpScore = "low"
	IcpMedium   IcpScore = "medium"
	IcpHigh     IcpScore = "high"
	IcpVeryHigh IcpScore = "very_high"
)

// IcpSettings is the user-level ideal customer profile used for one scoring run.
type IcpSettings struct {
	EmployeeMin               *float64 `json:"employeeMin,omitempty" yaml:"employee_min,omitempty"`
	EmployeeMax               *float64 `json:"employeeMax,omitempty" yaml:"employee_max,omitempty"`
	TargetIndustries          []string `json:"targetIndustries" yaml:"target_industries"`
	TargetSpecialties         []string `json:"targetSpecialties" yaml:"target_specialties"`
	Description               string   `json:"description" yaml:"description"`
	QuantitativeWeightPercent float64  `json:"quantitativeWeightPercent" yaml:"quantitative_weight_percent"`
}

// NotApplicable marks a quantitative sub-score whose criterion is unconfigured.
const NotApplicable = -1.0

// SubScore is one quantitative criterion with the inputs that produced it.
type SubScore struct {
	Name            string   `json:"name"`
	Value           float64  `json:"value"` // NotApplicable when the criterion is unconfigured
	NominalWeight   float64  `json:"nominalWeight"`
	EffectiveWeight float64  `json:"effectiveWeight"` // renormalised over active criteria
	Inputs          []string `json:"inputs,omitempty"`
	Detail          string   `json:"detail"`
}

// Active reports whether the sub-score takes part in the weighted average.
func (s SubScore) Active() bool {
	return s.Value != NotApplicable
}

// ScoreBreakdown is the audit trail for one ICP scoring decision.
type ScoreBreakdown struct {
	Label                     string     `json:"label,omitempty"`
	SubScores                 []SubScore `json:"subScores"`
	Quantitative              float64    `json:"quantitative"`
	QuantitativeNeutral       bool       `json:"quantitativeNeutral,omitempty"`
	Qualitative               float64    `json:"qualitative"`
	QualitativeRating         *int       `json:"qualitativeRating,omitempty"` // raw 0-100 model rating
	HasQualitative            bool       `json:"hasQualitative"`
	QualitativeNote           string     `json:"qualitativeNote,omitempty"`
	QuantitativeWeightPercent float64    `json:"quantitativeWeightPercent"`
	Composite                 float64    `json:"composite"`
	Score                     IcpScore   `json:"score"`
	Trail                     []string   `json:"trail"`
}
