package colframe

import (
	"sync"
)

// Releasable represents any resource that holds Arrow memory.
//
// Series and DataFrames implement it. The recommended pattern is to release
// with defer:
//
//	df, err := colframe.NewDataFrame(days, temp)
//	if err != nil {
//		return err
//	}
//	defer df.Release()
type Releasable interface {
	Release()
}

// MemoryManager collects resources and releases them together.
//
// It suits pipelines that create many intermediate frames, such as a chain of
// filters and joins, where one defer per value is impractical. It is safe for
// concurrent use.
type MemoryManager struct {
	resources []Releasable
	mu        sync.Mutex
}

// NewMemoryManager creates an empty memory manager
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{}
}

// Track registers a resource for release by ReleaseAll. Nil is ignored.
func (m *MemoryManager) Track(resource Releasable) {
	if resource == nil {
		return
	}
	m.mu.Lock()
	m.resources = append(m.resources, resource)
	m.mu.Unlock()
}

// Count returns the number of tracked resources
func (m *MemoryManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

// ReleaseAll releases tracked resources in reverse order of tracking and
// forgets them.
func (m *MemoryManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.resources) - 1; i >= 0; i-- {
		m.resources[i].Release()
	}
	m.resources = m.resources[:0]
}

// WithDataFrame builds a DataFrame with factory, passes it to fn and releases
// it afterwards.
//
// Example:
//
//	err := colframe.WithDataFrame(func() (*colframe.DataFrame, error) {
//		return colframe.ReadCSV(f, memory.NewGoAllocator())
//	}, func(df *colframe.DataFrame) error {
//		fmt.Println(df)
//		return nil
//	})
func WithDataFrame(factory func() (*DataFrame, error), fn func(*DataFrame) error) error {
	df, err := factory()
	if err != nil {
		return err
	}
	defer df.Release()
	return fn(df)
}

// WithMemoryManager runs fn with a fresh manager and releases everything it
// tracked when fn returns.
func WithMemoryManager(fn func(*MemoryManager) error) error {
	manager := NewMemoryManager()
	defer manager.ReleaseAll()
	return fn(manager)
}
