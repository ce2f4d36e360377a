package icp

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/model"
)

// DefaultQuantitativeWeightPercent is W when settings do not set it.
const DefaultQuantitativeWeightPercent = 60

// DefaultSettings returns empty criteria with the default W. Decode user
// settings on top of it so an omitted W keeps the default.
func DefaultSettings() model.IcpSettings {
	return model.IcpSettings{QuantitativeWeightPercent: DefaultQuantitativeWeightPercent}
}

// LoadSettings reads ICP settings from a YAML file, starting from base so
// that keys the file omits keep their base values.
func LoadSettings(path string, base model.IcpSettings) (model.IcpSettings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.IcpSettings{}, eris.Wrapf(err, "icp: read settings %s", path)
	}
	s := base
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return model.IcpSettings{}, eris.Wrapf(err, "icp: parse settings %s", path)
	}
	if err := ValidateSettings(s); err != nil {
		return model.IcpSettings{}, err
	}
	return s, nil
}

// ValidateSettings rejects settings that cannot be scored meaningfully.
func ValidateSettings(s model.IcpSettings) error {
	if s.EmployeeMin != nil && *s.EmployeeMin < 0 {
		return eris.Errorf("icp: employee_min must be >= 0, got %v", *s.EmployeeMin)
	}
	if s.EmployeeMax != nil && *s.EmployeeMax < 0 {
		return eris.Errorf("icp: employee_max must be >= 0, got %v", *s.EmployeeMax)
	}
	if s.EmployeeMin != nil && s.EmployeeMax != nil && *s.EmployeeMin > *s.EmployeeMax {
		return eris.Errorf("icp: employee_min %v exceeds employee_max %v", *s.EmployeeMin, *s.EmployeeMax)
	}
	if s.QuantitativeWeightPercent < 0 || s.QuantitativeWeightPercent > 100 {
		return eris.Errorf("icp: quantitative_weight_percent must be within 0..100, got %v", s.QuantitativeWeightPercent)
	}
	return nil
}

func nonBlank(items []string) []string {
	var out []string
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}
