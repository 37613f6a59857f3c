package resolver

import (
	"resolver/internal/match"
)

// QueryKey derives the canonical deduplication key for a query. Spelling
// variants of the same company ("Acme Aktiengesellschaft, HRB 1" vs
// "acme AG, hrb1") collapse onto the same key, so they share pending jobs and
// cached results.
func QueryKey(companyName, registrationNumber string) string {
	key := match.CanonicalName(companyName)
	if id := match.ParseIdentifier(registrationNumber); id != nil {
		key += "|" + id.String()
	}

	return key
}
