package projection

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// DefaultMemoSlots is the slot count used by dashboards, where several sweep
// widgets on different scenarios render side by side.
const DefaultMemoSlots = 16

// SweepMemo caches datasets keyed by the serialized parameters. It holds one
// slot unless WithMemoSlots says otherwise; when full, the least recently used
// dataset is replaced. Failed generations leave the slots alone.
type SweepMemo struct {
	mu      sync.Mutex
	slots   int
	entries map[string]*memoEntry
	clock   uint64
	last    string

	hits   atomic.Int64
	misses atomic.Int64
}

type memoEntry struct {
	dataset Dataset
	used    uint64
}

// SweepMemoOption customizes a SweepMemo.
type SweepMemoOption func(*SweepMemo)

// WithMemoSlots keeps up to n datasets. Values below one are ignored.
func WithMemoSlots(n int) SweepMemoOption {
	return func(m *SweepMemo) {
		if n > 0 {
			m.slots = n
		}
	}
}

// NewSweepMemo returns an empty memo.
func NewSweepMemo(opts ...SweepMemoOption) *SweepMemo {
	m := &SweepMemo{slots: 1, entries: map[string]*memoEntry{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the dataset for params, generating it on a miss.
func (m *SweepMemo) Get(params SweepParameters) (Dataset, error) {
	key, err := ParametersKey(params)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock++
	if entry, ok := m.entries[key]; ok {
		m.hits.Add(1)
		entry.used = m.clock
		m.last = key
		return cloneDataset(entry.dataset), nil
	}
	m.misses.Add(1)
	dataset, err := GenerateSweep(params)
	if err != nil {
		return nil, err
	}
	if len(m.entries) >= m.slots {
		m.evictOldest()
	}
	m.entries[key] = &memoEntry{dataset: dataset, used: m.clock}
	m.last = key
	return cloneDataset(dataset), nil
}

func (m *SweepMemo) evictOldest() {
	var (
		oldest string
		used   uint64
	)
	for key, entry := range m.entries {
		if oldest == "" || entry.used < used {
			oldest, used = key, entry.used
		}
	}
	delete(m.entries, oldest)
}

// Key returns the key of the most recently served dataset, empty when nothing
// is cached.
func (m *SweepMemo) Key() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Len reports how many datasets are held.
func (m *SweepMemo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Reset drops every cached dataset.
func (m *SweepMemo) Reset() {
	m.mu.Lock()
	m.entries = map[string]*memoEntry{}
	m.last = ""
	m.mu.Unlock()
}

// Hits counts lookups served from the slot.
func (m *SweepMemo) Hits() int64 { return m.hits.Load() }

// Misses counts lookups that regenerated the dataset.
func (m *SweepMemo) Misses() int64 { return m.misses.Load() }

// ParametersKey is the stable cache key for params. NaN values cannot be
// serialized and are reported as invalid parameters.
func ParametersKey(params SweepParameters) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", invalidParameter("", err.Error())
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:]), nil
}

func cloneDataset(d Dataset) Dataset {
	out := make(Dataset, len(d))
	copy(out, d)
	return out
}
