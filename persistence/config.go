package persistence

import (
	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// FieldConfig describes one data cell of a class.
type FieldConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Size     int    `yaml:"size,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// StorageConfig describes one storage and the class of the objects it
// caches. Table is read by the backends that keep the class in a table.
type StorageConfig struct {
	Name         string        `yaml:"name"`
	MaxCacheSize int           `yaml:"max_cache_size,omitempty"`
	Table        string        `yaml:"table,omitempty"`
	PrimaryKey   []FieldConfig `yaml:"primary_key"`
	Members      []FieldConfig `yaml:"members"`
}

type RepositoryConfig struct {
	Name     string          `yaml:"name"`
	Storages []StorageConfig `yaml:"storages,omitempty"`
}

func DefaultRepositoryConfig() RepositoryConfig {
	return RepositoryConfig{Name: "default"}
}

// Merge applies non-zero values from source into c.
func (c *RepositoryConfig) Merge(source *RepositoryConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if len(source.Storages) > 0 {
		c.Storages = source.Storages
	}
}

// Find returns the configuration of the named storage.
func (c *RepositoryConfig) Find(name string) (*StorageConfig, bool) {
	for i := range c.Storages {
		if c.Storages[i].Name == name {
			return &c.Storages[i], true
		}
	}
	return nil, false
}

func (f FieldConfig) NewCell() (datatype.Abstract, error) {
	if f.Name == "" {
		return nil, coffee.ConfigurationError("field without name")
	}
	typ, err := datatype.ParseType(f.Type)
	if err != nil {
		return nil, err
	}
	constraint := datatype.CanNotBeNull
	if f.Nullable {
		constraint = datatype.CanBeNull
	}
	return datatype.New(typ, f.Name, f.Size, constraint)
}

// TableName is Table, or Name when no table is given.
func (c StorageConfig) TableName() string {
	if c.Table != "" {
		return c.Table
	}
	return c.Name
}

// Class builds the class described by c, named after the storage.
func (c StorageConfig) Class() (*Class, error) {
	kb := NewPrimaryKeyBuilder()
	for _, f := range c.PrimaryKey {
		cell, err := f.NewCell()
		if err != nil {
			return nil, err
		}
		kb.Add(cell)
	}
	pk, err := kb.Build()
	if err != nil {
		return nil, err
	}
	cb := NewClassBuilder(c.Name).SetPrimaryKey(pk)
	for _, f := range c.Members {
		cell, err := f.NewCell()
		if err != nil {
			return nil, err
		}
		cb.AddMember(cell)
	}
	return cb.Build()
}

// NewRepositoryFromConfig creates the repository and all of its storages.
// Every storage's class is checked on the way.
func NewRepositoryFromConfig(cfg *RepositoryConfig) (*Repository, error) {
	r := NewRepository(cfg.Name)
	for _, sc := range cfg.Storages {
		if _, err := sc.Class(); err != nil {
			return nil, err
		}
		if _, err := r.CreateStorage(sc.Name, sc.MaxCacheSize); err != nil {
			return nil, err
		}
	}
	return r, nil
}
