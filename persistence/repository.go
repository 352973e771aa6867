package persistence

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ciscoruiz/coffee-sub002"
)

// Repository is a named registry of storages, one per entity type.
type Repository struct {
	coffee.OptionalLogger
	mu       sync.Mutex
	name     string
	storages map[string]*Storage
}

// Use this func for creating new instances of Repository.
func NewRepository(name string) *Repository {
	r := &Repository{name: name, storages: make(map[string]*Storage)}
	r.LogPrefix = "Repository(" + name + ")"
	return r
}

func (r *Repository) Name() string {
	return r.name
}

// SetLogger sets the logger of the repository and of every storage in it,
// including those created later.
func (r *Repository) SetLogger(logger *slog.Logger) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OptionalLogger.SetLogger(logger)
	for _, s := range r.storages {
		s.SetLogger(logger)
	}
	return r
}

// CreateStorage fails if name is already registered.
func (r *Repository) CreateStorage(name string, maxCacheSize int) (*Storage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storages[name]; exists {
		return nil, coffee.ConfigurationError("%s: storage %q already defined", r.name, name)
	}
	s := NewStorage(name, maxCacheSize)
	s.SetLogger(r.Logger())
	r.storages[name] = s
	r.Info("storage created", "storage", name, "max_cache_size", s.MaxCacheSize())
	return s, nil
}

func (r *Repository) FindStorage(name string) (*Storage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, found := r.storages[name]
	if !found {
		return nil, fmt.Errorf("%s: %w: %s", r.name, ErrStorageNotFound, name)
	}
	return s, nil
}

// Storages returns the registered storage names in order.
func (r *Repository) Storages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.storages))
	for name := range r.storages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
