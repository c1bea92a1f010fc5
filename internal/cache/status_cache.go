// Package cache holds the last status received for each device.
package cache

import (
	"sync"

	"climate_control/internal/models"
)

// Key identifies a device as seen through one adapter.
type Key struct {
	Adapter  string `json:"adapter"`
	DeviceID string `json:"device_id"`
}

// StatusCache maps Key to the latest DeviceStatus.
// Entries are replaced whole; there is no merge and no ordering check.
type StatusCache struct {
	mu      sync.RWMutex
	entries map[Key]models.DeviceStatus
}

func NewStatusCache() *StatusCache {
	return &StatusCache{entries: make(map[Key]models.DeviceStatus)}
}

// Get returns the cached status for k, if any.
func (c *StatusCache) Get(k Key) (models.DeviceStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.entries[k]
	return st, ok
}

// Put overwrites the entry for k.
func (c *StatusCache) Put(k Key, st models.DeviceStatus) {
	c.mu.Lock()
	c.entries[k] = st
	c.mu.Unlock()
}

// Snapshot copies every entry.
func (c *StatusCache) Snapshot() map[Key]models.DeviceStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Key]models.DeviceStatus, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Clear drops every entry.
func (c *StatusCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]models.DeviceStatus)
	c.mu.Unlock()
}

func (c *StatusCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
