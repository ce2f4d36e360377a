package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Stage 0 rule names, recorded in model.Deterministic.
const (
	RuleEmpty         = "empty"
	RuleNumeric       = "numeric"
	RuleNonCompany    = "non_company"
	RuleCountry       = "country"
	RuleSelfName      = "self_name"
	RuleEnclosed      = "enclosed"
	RuleCompanySuffix = "company_suffix"
)

// fold case-folds s and collapses internal whitespace.
func fold(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}

// lastToken returns the final whitespace-delimited token with trailing
// punctuation removed, e.g. "Acme, Inc." -> "inc".
func lastToken(folded string) string {
	fields := strings.Fields(folded)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRightFunc(fields[len(fields)-1], unicode.IsPunct)
}

func isSelfName(company string, in model.ClassificationInput) bool {
	first, last := fold(in.FirstName), fold(in.LastName)
	if first == "" && last == "" {
		return false
	}
	return company == fold(first+" "+last) || company == fold(last+" "+first)
}

func deterministic(rule, reason string, t model.ClassificationType) model.ClassificationResult {
	return model.ClassificationResult{
		Type:       t,
		Reason:     reason,
		Provenance: model.Deterministic{Rule: rule},
	}
}

// Deterministic applies the stage 0 rules to in. The first matching rule
// wins. ok is false when no rule matched and the name stays unresolved.
func Deterministic(in model.ClassificationInput) (result model.ClassificationResult, ok bool) {
	name := fold(in.CompanyName)

	switch {
	case utf8.RuneCountInString(name) <= 1:
		return deterministic(RuleEmpty, "empty or single-character name", model.ClassificationSkip), true
	case isDigits(name):
		return deterministic(RuleNumeric, "numeric-only name", model.ClassificationSkip), true
	case nonCompanyTerms[name] || isPunctuation(name):
		return deterministic(RuleNonCompany, "matches non-company term", model.ClassificationSkip), true
	case countryTerms[name]:
		return deterministic(RuleCountry, "matches country name", model.ClassificationSkip), true
	case isSelfName(name, in):
		return deterministic(RuleSelfName, "company matches the person's own name", model.ClassificationSkip), true
	case enclosedTerms[name]:
		return deterministic(RuleEnclosed, "stealth or undisclosed employer", model.ClassificationEnclosed), true
	case companySuffixes[lastToken(name)]:
		return deterministic(RuleCompanySuffix, "ends with company suffix \""+lastToken(name)+"\"", model.ClassificationCompany), true
	}
	return model.ClassificationResult{}, false
}
