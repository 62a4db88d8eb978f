// Package cache stores duplicate-scan results per tenant so repeated scans
// over an unchanged person set skip the O(n²) comparison.
//
// Invalidation is versioned: each tenant has a version counter bumped on
// every person write, and cached entries embed the version in their key.
// Stale entries are never read again and simply age out via TTL.
package cache

import (
	"context"
	"time"

	"lineage/internal/duplicate"
	id "lineage/pkg/domain"
)

// Cache is the scan-result cache. Implementations must treat a miss as a
// normal outcome, not an error.
type Cache interface {
	// Get returns the cached candidates for the tenant and scan key,
	// with ok=false on a miss.
	Get(ctx context.Context, ownerID id.UserID, scanKey string) ([]duplicate.Candidate, bool, error)
	// Set stores candidates under the tenant's current version.
	Set(ctx context.Context, ownerID id.UserID, scanKey string, candidates []duplicate.Candidate, ttl time.Duration) error
	// Invalidate bumps the tenant's version, orphaning all cached scans.
	Invalidate(ctx context.Context, ownerID id.UserID) error
}
