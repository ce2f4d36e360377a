package enrich

import "time"

// DefaultStaleAfter is the enrichment age after which callers re-enrich.
const DefaultStaleAfter = 30 * 24 * time.Hour

// IsStale reports whether an enrichment stored at updatedAt should be
// redone at now. A zero updatedAt is always stale; a non-positive threshold
// uses DefaultStaleAfter.
func IsStale(updatedAt, now time.Time, threshold time.Duration) bool {
	if updatedAt.IsZero() {
		return true
	}
	if threshold <= 0 {
		threshold = DefaultStaleAfter
	}
	return now.Sub(updatedAt) > threshold
}
