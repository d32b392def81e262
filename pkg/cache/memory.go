package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/smartshelf/shelfweb/pkg/metrics"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// minSweep is the fewest writes between two sweeps of expired entries.
const minSweep = 64

// Memory is a process-local Store. Expired entries are dropped when read
// and by a sweep that runs once the writes since the last sweep reach the
// number of entries it left, so the map stays within about twice its live
// size at an amortised constant cost per write.
type Memory struct {
	mu      sync.Mutex
	items   map[string]memoryEntry
	now     func() time.Time
	writes  int
	sweepAt int
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{items: map[string]memoryEntry{}, now: time.Now, sweepAt: minSweep}
}

func (m *Memory) Driver() string { return "memory" }

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && e.expired(m.now()) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		metrics.CacheMisses.WithLabelValues(m.Driver()).Inc()
		return false, nil
	}
	metrics.CacheHits.WithLabelValues(m.Driver()).Inc()

	if err := json.Unmarshal(e.raw, dest); err != nil {
		return false, fmt.Errorf("cache/memory: decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache/memory: encode %s: %w", key, err)
	}

	e := memoryEntry{raw: raw}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.writes++
	if m.writes >= m.sweepAt {
		m.sweep()
	}
	m.mu.Unlock()
	return nil
}

// sweep deletes every expired entry. m.mu must be held.
func (m *Memory) sweep() {
	now := m.now()
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
	m.writes = 0
	m.sweepAt = max(len(m.items), minSweep)
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if e, ok := m.items[key]; ok && !e.expired(m.now()) {
		v, err := strconv.ParseInt(string(e.raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache/memory: incr %s: value is not an integer", key)
		}
		n = v
	}
	n++
	m.items[key] = memoryEntry{raw: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, e := range m.items {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
