// Package data provides thread-safe storage for resolved drug codes.
// The CodeCache keeps an atomic map so request handlers read without
// locking while the scheduled sweep replaces the whole map at once.
package data

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/medsafe/interactions-api/interfaces"
	"github.com/medsafe/interactions-api/logging"
)

// Compile-time check to ensure CodeCache implements CodeStore
var _ interfaces.CodeStore = (*CodeCache)(nil)

// CodeCache maps lowercase medication names to RxNorm concept codes.
// Reads load the current map atomically; writes copy the map under a
// mutex and swap the copy in (zero downtime replacement).
type CodeCache struct {
	codes      atomic.Value // map[string]string
	lastSwept  atomic.Value // time.Time
	sweeping   atomic.Bool
	writeMu    sync.Mutex
	maxEntries int
}

// NewCodeCache creates a new empty CodeCache. maxEntries caps the map
// size; once reached, new codes are dropped until the next sweep.
func NewCodeCache(maxEntries int) *CodeCache {
	cc := &CodeCache{maxEntries: maxEntries}
	cc.codes.Store(make(map[string]string))
	cc.lastSwept.Store(time.Time{})
	return cc
}

// LookupCode returns the cached code for a medication name, if present
func (cc *CodeCache) LookupCode(name string) (string, bool) {
	if v := cc.codes.Load(); v != nil {
		if codes, ok := v.(map[string]string); ok {
			code, found := codes[name]
			return code, found
		}
	}

	logging.Warn("Code cache map is empty or invalid")
	return "", false
}

// Names returns the medication names currently cached, in no
// particular order
func (cc *CodeCache) Names() []string {
	codes := cc.snapshot()
	names := make([]string, 0, len(codes))
	for name := range codes {
		names = append(names, name)
	}
	return names
}

// Size returns the number of cached codes
func (cc *CodeCache) Size() int {
	if v := cc.codes.Load(); v != nil {
		if codes, ok := v.(map[string]string); ok {
			return len(codes)
		}
	}
	return 0
}

// GetLastSwept returns the timestamp of the last completed sweep
func (cc *CodeCache) GetLastSwept() time.Time {
	if v := cc.lastSwept.Load(); v != nil {
		if lastSwept, ok := v.(time.Time); ok {
			return lastSwept
		}
	}

	logging.Warn("Could not get the last swept value")
	return time.Time{}
}

// IsSweeping returns true if a cache sweep is currently in progress
func (cc *CodeCache) IsSweeping() bool {
	return cc.sweeping.Load()
}

// StoreCode adds a single resolved code. The write copies the current
// map so concurrent readers keep a consistent view.
func (cc *CodeCache) StoreCode(name, code string) {
	if name == "" || code == "" {
		return
	}

	cc.writeMu.Lock()
	defer cc.writeMu.Unlock()

	current := cc.snapshot()
	if _, exists := current[name]; !exists && len(current) >= cc.maxEntries {
		logging.Warn("Code cache full, dropping entry", "name", name, "max", cc.maxEntries)
		return
	}

	next := maps.Clone(current)
	next[name] = code
	cc.codes.Store(next)
}

// ReplaceCodes atomically replaces the whole cache contents and stamps
// the sweep time
func (cc *CodeCache) ReplaceCodes(codes map[string]string) {
	cc.writeMu.Lock()
	defer cc.writeMu.Unlock()

	if codes == nil {
		codes = make(map[string]string)
	}
	cc.codes.Store(codes)
	cc.lastSwept.Store(time.Now())
}

// BeginSweep marks the start of a cache sweep
// Returns true if the sweep can proceed, false if another sweep is in progress
func (cc *CodeCache) BeginSweep() bool {
	return cc.sweeping.CompareAndSwap(false, true)
}

// EndSweep marks the end of a cache sweep
func (cc *CodeCache) EndSweep() {
	cc.sweeping.Store(false)
}

// snapshot returns the current map without copying. Callers must hold
// writeMu before mutating a clone of it.
func (cc *CodeCache) snapshot() map[string]string {
	if v := cc.codes.Load(); v != nil {
		if codes, ok := v.(map[string]string); ok {
			return codes
		}
	}
	return make(map[string]string)
}
