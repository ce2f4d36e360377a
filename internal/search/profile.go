package search

import (
	"net/url"
	"regexp"
	"strings"
)

// titleSuffixPattern matches platform branding appended to profile page titles,
// e.g. "Acme Corp | LinkedIn" or "Acme Corp - LinkedIn".
var titleSuffixPattern = regexp.MustCompile(`(?i)\s*(\||-|–|—|·|:)?\s*(on\s+)?linkedin\s*$`)

// pageTrailerPattern matches "Acme: Overview" style trailers LinkedIn adds.
var pageTrailerPattern = regexp.MustCompile(`(?i)\s*[:|-]\s*(overview|about|company page|people|jobs)\s*$`)

// organizationPrefixes are the path roots LinkedIn serves organization pages under.
var organizationPrefixes = []string{"/company/", "/school/", "/showcase/"}

func profilePath(rawURL, domain string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Host)
	domain = strings.ToLower(strings.TrimSpace(domain))
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return "", false
	}
	return strings.ToLower(u.Path), true
}

// IsCompanyProfileURL reports whether rawURL is an organization page on the
// professional network: /company/<slug>, /school/<slug> or /showcase/<slug>.
func IsCompanyProfileURL(rawURL, domain string) bool {
	path, ok := profilePath(rawURL, domain)
	if !ok {
		return false
	}
	for _, prefix := range organizationPrefixes {
		if strings.HasPrefix(path, prefix) && len(strings.Trim(path, "/")) > len(strings.Trim(prefix, "/")) {
			return true
		}
	}
	return false
}

// IsPersonalProfileURL reports whether rawURL is a member profile
// (https://www.linkedin.com/in/<slug>).
func IsPersonalProfileURL(rawURL, domain string) bool {
	path, ok := profilePath(rawURL, domain)
	if !ok {
		return false
	}
	return strings.HasPrefix(path, "/in/") && len(strings.Trim(path, "/")) > len("in")
}

// CleanTitle strips platform branding from a result title.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = titleSuffixPattern.ReplaceAllString(title, "")
	title = pageTrailerPattern.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
