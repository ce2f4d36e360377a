package model

import "strings"

// EnrichmentSource identifies which path produced enrichment data.
type EnrichmentSource string

const (
	SourceGrounded EnrichmentSource = "grounded"
	SourceMemory   EnrichmentSource = "memory"
)

// CompanyEnrichmentData holds the structured attributes extracted for a company.
// Every field may be empty.
type CompanyEnrichmentData struct {
	EmployeeCount string   `json:"employeeCount"`
	About         string   `json:"about"`
	Industry      string   `json:"industry"`
	Specialties   []string `json:"specialties"`
}

// IsEmpty reports whether no field carries data. An empty instance is "no data",
// never a positive fact.
func (d CompanyEnrichmentData) IsEmpty() bool {
	if strings.TrimSpace(d.EmployeeCount) != "" ||
		strings.TrimSpace(d.About) != "" ||
		strings.TrimSpace(d.Industry) != "" {
		return false
	}
	for _, s := range d.Specialties {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// EnrichmentResult pairs extracted data with the path that produced it.
type EnrichmentResult struct {
	Data   CompanyEnrichmentData `json:"data"`
	Source EnrichmentSource      `json:"source"`
}
