// Package cache provides the in-memory, within-run result memoization used
// by the orchestrator. There is deliberately no persistence and no TTL:
// every run starts empty and the cache dies with the run.
package cache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/ports"
)

var _ ports.ResultCache = (*RunCache)(nil)

// RunCache implements ports.ResultCache with a mutex-protected map keyed
// by run and space ID.
type RunCache struct {
	mu   sync.RWMutex
	data map[string]*domain.SpaceResult
	log  *zap.Logger
}

// NewRunCache creates an empty run cache.
func NewRunCache(log *zap.Logger) *RunCache {
	return &RunCache{
		data: make(map[string]*domain.SpaceResult),
		log:  log,
	}
}

func key(runID, spaceID string) string {
	return runID + "/" + spaceID
}

// Get returns the memoized result for a space within a run.
func (c *RunCache) Get(runID, spaceID string) (*domain.SpaceResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.data[key(runID, spaceID)]
	return r, ok
}

// Put stores a space result. First write wins; a duplicate indicates the
// orchestrator tried to recompute and is logged, not overwritten.
func (c *RunCache) Put(runID, spaceID string, result *domain.SpaceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(runID, spaceID)
	if _, exists := c.data[k]; exists {
		c.log.Warn("duplicate space result ignored",
			zap.String("run", runID),
			zap.String("space", spaceID),
		)
		return
	}
	c.data[k] = result
}

// DropRun discards all entries of a finished run.
func (c *RunCache) DropRun(runID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := runID + "/"
	for k := range c.data {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
		}
	}
}
