package matching

import (
	"strings"
	"sync"
)

// SparseVector maps vocabulary indices to weights.
type SparseVector map[int]float64

// AccordVocabulary is an append-only registry of accord names. An index is
// assigned once per name and never reused or renumbered, so vectors built at
// different times stay positionally compatible.
type AccordVocabulary struct {
	mu    sync.RWMutex
	index map[string]int
	names []string
}

func NewAccordVocabulary() *AccordVocabulary {
	return &AccordVocabulary{
		index: make(map[string]int),
	}
}

// GetOrCreate returns the stable index for an accord name, assigning a new
// one on first sight. Safe for concurrent callers: two racing registrations
// of the same name always resolve to a single index.
func (v *AccordVocabulary) GetOrCreate(name string) int {
	key := normalizeAccord(name)

	v.mu.RLock()
	idx, ok := v.index[key]
	v.mu.RUnlock()
	if ok {
		return idx
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// re-check: another goroutine may have inserted between the locks
	if idx, ok := v.index[key]; ok {
		return idx
	}

	idx = len(v.names)
	v.index[key] = idx
	v.names = append(v.names, key)
	return idx
}

// Lookup returns the index for a name without growing the vocabulary.
func (v *AccordVocabulary) Lookup(name string) (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	idx, ok := v.index[normalizeAccord(name)]
	return idx, ok
}

// Name returns the accord name registered at idx.
func (v *AccordVocabulary) Name(idx int) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if idx < 0 || idx >= len(v.names) {
		return "", false
	}
	return v.names[idx], true
}

func (v *AccordVocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.names)
}

func normalizeAccord(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
