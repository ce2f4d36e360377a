package enrich

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Field limits applied to every extraction.
const (
	MaxAboutChars  = 300
	MaxSpecialties = 5
)

const fieldSpec = `Return only a JSON object with exactly these fields:
{
  "employeeCount": "<employee range such as \"11-50\", \"51-200\", \"1001-5000\" or \"10000+\">",
  "about": "<one or two sentence description, at most 300 characters>",
  "industry": "<primary industry>",
  "specialties": ["<up to 5 short specialty phrases>"]
}
Use an empty string or empty array for anything you cannot determine.`

const groundedSystemPrompt = `You extract structured company facts from web search excerpts.
Use only the provided excerpts. Do not guess.
` + fieldSpec

const memorySystemPrompt = `You describe companies from your own knowledge.
If you do not confidently recognize the company, return {} instead of guessing.
` + fieldSpec

func groundedPrompt(name, profileURL, snippets string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", name)
	if profileURL != "" {
		fmt.Fprintf(&b, "Company profile: %s\n", profileURL)
	}
	b.WriteString("\nSearch excerpts:\n")
	b.WriteString(snippets)
	return b.String()
}

func memoryPrompt(name, industryHint string) string {
	p := "Company: " + name
	if hint := strings.TrimSpace(industryHint); hint != "" {
		p += "\nIndustry hint: " + hint
	}
	return p
}

// ParseEnrichment reads the four fields from model output, sanitizing
// wrong-typed or oversized values. ok is false when the output is not a
// JSON object or every field is empty.
func ParseEnrichment(text string) (model.CompanyEnrichmentData, bool) {
	raw := llm.CleanJSONObject(text)
	if raw == "" {
		return model.CompanyEnrichmentData{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.CompanyEnrichmentData{}, false
	}

	data := model.CompanyEnrichmentData{
		EmployeeCount: scalar(lookup(fields, "employeeCount", "employee_count", "employees")),
		About:         truncate(scalar(lookup(fields, "about", "description")), MaxAboutChars),
		Industry:      scalar(lookup(fields, "industry")),
		Specialties:   specialties(lookup(fields, "specialties")),
	}
	return data, !data.IsEmpty()
}

func lookup(fields map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v
		}
	}
	return nil
}

// scalar returns a string or number value as trimmed text; anything else is "".
func scalar(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return cleanValue(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func cleanValue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	switch strings.ToLower(s) {
	case "unknown", "n/a", "none", "null", "-":
		return ""
	}
	return s
}

func specialties(v json.RawMessage) []string {
	if len(v) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		// A comma-separated string is accepted as a list.
		joined := scalar(v)
		if joined == "" {
			return nil
		}
		for _, part := range strings.Split(joined, ",") {
			items = append(items, json.RawMessage(strconv.Quote(part)))
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, item := range items {
		s := scalar(item)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == MaxSpecialties {
			break
		}
	}
	return out
}

func truncate(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit]))
}
