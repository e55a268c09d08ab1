package notification

import "regexp"

// Correlation keys link a notification to its triggering event and feed the
// duplicate suppression lookup. A key must start with an alphanumeric
// character and may contain dots, underscores, colons and hyphens, up to
// 120 characters total. Reservation UUIDs and "alert-<date>" keys both fit.
var correlationKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._:\-]{0,119}$`)

// IsValidCorrelationKey reports whether key can be used for deduplication.
// Callers treat a malformed key as "do not deduplicate" (fail-open): a
// false negative here costs a duplicate email, never a lost one.
func IsValidCorrelationKey(key string) bool {
	return correlationKeyRegex.MatchString(key)
}
