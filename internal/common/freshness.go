// Package common provides shared utilities for Fathom
package common

import "time"

// Freshness TTLs for data components
const (
	FreshnessSnapshot   = 4 * time.Hour
	FreshnessFinancials = 7 * 24 * time.Hour // statements change quarterly at most
	FreshnessPrices     = 1 * time.Hour
	FreshnessTechnical  = 1 * time.Hour // matches price bars
	FreshnessMacro      = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
