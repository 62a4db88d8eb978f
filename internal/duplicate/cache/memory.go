package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lineage/internal/duplicate"
	id "lineage/pkg/domain"
)

type memoryEntry struct {
	candidates []duplicate.Candidate
	expiresAt  time.Time
}

// InMemory is a process-local Cache used when Redis is not configured.
type InMemory struct {
	mu       sync.RWMutex
	versions map[id.UserID]uint64
	entries  map[string]memoryEntry
}

func NewInMemory() *InMemory {
	return &InMemory{
		versions: make(map[id.UserID]uint64),
		entries:  make(map[string]memoryEntry),
	}
}

func (c *InMemory) key(ownerID id.UserID, scanKey string, version uint64) string {
	return fmt.Sprintf("%s:%d:%s", ownerID, version, scanKey)
}

func (c *InMemory) Get(_ context.Context, ownerID id.UserID, scanKey string) ([]duplicate.Candidate, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[c.key(ownerID, scanKey, c.versions[ownerID])]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	out := make([]duplicate.Candidate, len(entry.candidates))
	copy(out, entry.candidates)
	return out, true, nil
}

func (c *InMemory) Set(_ context.Context, ownerID id.UserID, scanKey string, candidates []duplicate.Candidate, ttl time.Duration) error {
	stored := make([]duplicate.Candidate, len(candidates))
	copy(stored, candidates)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(ownerID, scanKey, c.versions[ownerID])] = memoryEntry{
		candidates: stored,
		expiresAt:  time.Now().Add(ttl),
	}
	return nil
}

func (c *InMemory) Invalidate(_ context.Context, ownerID id.UserID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[ownerID]++
	// Entries under the old version are unreachable now; drop them eagerly
	// so the map does not grow between TTL sweeps we don't run.
	prefix := fmt.Sprintf("%s:", ownerID)
	current := fmt.Sprintf("%s:%d:", ownerID, c.versions[ownerID])
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix && (len(k) < len(current) || k[:len(current)] != current) {
			delete(c.entries, k)
		}
	}
	return nil
}
