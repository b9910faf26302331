// Package datasource resolves a data source id into the Data-Source
// Descriptor spec.md §3 defines: the connection info and schema the
// executor and nl2sql nodes need, without either of them knowing how a
// source was registered.
package datasource

import (
	"context"
	"fmt"
	"sync"

	"github.com/nlquery/orchestrator/internal/executor"
)

// Service is the data-source lookup contract of spec.md §6.
type Service interface {
	GetByID(ctx context.Context, id string) (executor.Descriptor, error)
	GetSchema(ctx context.Context, id string) (map[string][]string, error)
}

// StaticService is an in-memory Service for demos and tests: descriptors
// are registered up front rather than resolved from a catalog database.
type StaticService struct {
	mu      sync.RWMutex
	sources map[string]executor.Descriptor
}

// NewStaticService builds an empty registry; call Register to add sources.
func NewStaticService() *StaticService {
	return &StaticService{sources: make(map[string]executor.Descriptor)}
}

// Register adds or replaces a descriptor under its own ID.
func (s *StaticService) Register(d executor.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[d.ID] = d
}

func (s *StaticService) GetByID(ctx context.Context, id string) (executor.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.sources[id]
	if !ok {
		return executor.Descriptor{}, fmt.Errorf("datasource: unknown source %q", id)
	}
	return d, nil
}

func (s *StaticService) GetSchema(ctx context.Context, id string) (map[string][]string, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Schema, nil
}
