package lsp

import (
	"fmt"
	"sync"

	"github.com/dhamidi/trail/query/value"
)

// DataSource holds the data and context values completions are computed
// against. Both are loaded from files and can be reloaded while the
// server runs.
type DataSource struct {
	DataPath    string
	ContextPath string

	mu      sync.RWMutex
	data    any
	context any
}

func NewDataSource(dataPath, contextPath string) *DataSource {
	return &DataSource{
		DataPath:    dataPath,
		ContextPath: contextPath,
		data:        value.Undefined,
		context:     value.Undefined,
	}
}

// Load reads both files. A source without a path keeps Undefined. On
// error the previously loaded values stay in place.
func (s *DataSource) Load() error {
	data, err := loadOptional(s.DataPath)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	context, err := loadOptional(s.ContextPath)
	if err != nil {
		return fmt.Errorf("load context: %w", err)
	}

	s.mu.Lock()
	s.data, s.context = data, context
	s.mu.Unlock()
	return nil
}

// Set replaces the values directly.
func (s *DataSource) Set(data, context any) {
	s.mu.Lock()
	s.data, s.context = data, context
	s.mu.Unlock()
}

func (s *DataSource) Get() (data, context any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.context
}

// Paths returns the files backing the source.
func (s *DataSource) Paths() []string {
	var paths []string
	for _, path := range []string{s.DataPath, s.ContextPath} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func loadOptional(path string) (any, error) {
	if path == "" {
		return value.Undefined, nil
	}
	return value.LoadFile(path)
}
