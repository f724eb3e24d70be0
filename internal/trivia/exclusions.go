package trivia

import (
	"context"
	"sort"
	"sync"

	"github.com/btaeng/trivia-map/internal/model"
)

// ExclusionStore remembers which questions were already issued per
// location and category. Each call is atomic on its own; a read followed
// by an add is not, so two concurrent requests for the same key can both
// miss each other's question.
type ExclusionStore interface {
	// Questions returns the issued questions for key in the order they
	// were added, creating an empty entry if none exists.
	Questions(ctx context.Context, key model.ExclusionKey) ([]string, error)
	// Add appends question to key's entry. Adding a question already
	// present is a no-op.
	Add(ctx context.Context, key model.ExclusionKey, question string) error
	// Stats reports the entry sizes, sorted by key.
	Stats(ctx context.Context) ([]model.ExclusionStat, error)
}

type exclusionEntry struct {
	questions []string
	seen      map[string]bool
}

// MemoryExclusions is a process-lifetime ExclusionStore. Entries are never
// evicted.
type MemoryExclusions struct {
	mu      sync.Mutex
	entries map[model.ExclusionKey]*exclusionEntry
}

func NewMemoryExclusions() *MemoryExclusions {
	return &MemoryExclusions{entries: make(map[model.ExclusionKey]*exclusionEntry)}
}

func (m *MemoryExclusions) entry(key model.ExclusionKey) *exclusionEntry {
	e, ok := m.entries[key]
	if !ok {
		e = &exclusionEntry{seen: make(map[string]bool)}
		m.entries[key] = e
	}
	return e
}

func (m *MemoryExclusions) Questions(_ context.Context, key model.ExclusionKey) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(key)
	out := make([]string, len(e.questions))
	copy(out, e.questions)
	return out, nil
}

func (m *MemoryExclusions) Add(_ context.Context, key model.ExclusionKey, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(key)
	if e.seen[question] {
		return nil
	}
	e.seen[question] = true
	e.questions = append(e.questions, question)
	return nil
}

func (m *MemoryExclusions) Stats(_ context.Context) ([]model.ExclusionStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make([]model.ExclusionStat, 0, len(m.entries))
	for k, e := range m.entries {
		stats = append(stats, model.ExclusionStat{Key: k, Count: len(e.questions)})
	}
	SortStats(stats)
	return stats, nil
}

// SortStats orders stats by location, then category.
func SortStats(stats []model.ExclusionStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Key.Location != stats[j].Key.Location {
			return stats[i].Key.Location < stats[j].Key.Location
		}
		return stats[i].Key.Category < stats[j].Key.Category
	})
}
