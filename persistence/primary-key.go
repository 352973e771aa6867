package persistence

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// PrimaryKey is an ordered tuple of non-null cells. Equality and hashing are
// structural: two keys with equal component values are the same cache key.
type PrimaryKey struct {
	components []datatype.Abstract
}

// PrimaryKeyBuilder collects the components of a PrimaryKey in order.
type PrimaryKeyBuilder struct {
	components []datatype.Abstract
}

func NewPrimaryKeyBuilder() *PrimaryKeyBuilder {
	return &PrimaryKeyBuilder{}
}

func (b *PrimaryKeyBuilder) Add(component datatype.Abstract) *PrimaryKeyBuilder {
	b.components = append(b.components, component)
	return b
}

// Build fails when there are no components, when a component is nil or
// nullable, or when two components share a name.
func (b *PrimaryKeyBuilder) Build() (*PrimaryKey, error) {
	if len(b.components) == 0 {
		return nil, coffee.ConfigurationError("primary key without components")
	}
	seen := make(map[string]struct{}, len(b.components))
	for pos, c := range b.components {
		if c == nil {
			return nil, coffee.ConfigurationError("primary key component %d is nil", pos)
		}
		if c.IsNullable() {
			return nil, coffee.ConfigurationError("primary key component %s can be null", c.Name())
		}
		if _, dup := seen[c.Name()]; dup {
			return nil, coffee.ConfigurationError("primary key component %s repeated", c.Name())
		}
		seen[c.Name()] = struct{}{}
	}
	return &PrimaryKey{components: append([]datatype.Abstract(nil), b.components...)}, nil
}

func (pk *PrimaryKey) Size() int {
	return len(pk.components)
}

func (pk *PrimaryKey) Component(pos int) (datatype.Abstract, error) {
	if pos < 0 || pos >= len(pk.components) {
		return nil, coffee.InvalidDataError("primary key component %d out of range [0,%d)", pos, len(pk.components))
	}
	return pk.components[pos], nil
}

// Find returns the component with the given name.
func (pk *PrimaryKey) Find(name string) (datatype.Abstract, error) {
	for _, c := range pk.components {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, coffee.InvalidDataError("primary key has no component %s", name)
}

// Components returns the cells of the key in order. The cells are shared,
// not copied.
func (pk *PrimaryKey) Components() []datatype.Abstract {
	return append([]datatype.Abstract(nil), pk.components...)
}

// Compare is lexicographic over the components. Keys of different sizes
// can not be compared.
func (pk *PrimaryKey) Compare(other *PrimaryKey) (int, error) {
	if other == nil {
		return 0, coffee.InvalidDataError("compare with a nil primary key")
	}
	if len(pk.components) != len(other.components) {
		return 0, fmt.Errorf("%w: %d vs %d components", ErrKeySizeMismatch, len(pk.components), len(other.components))
	}
	for pos, c := range pk.components {
		r, err := c.Compare(other.components[pos])
		if err != nil {
			return 0, fmt.Errorf("primary key component %d: %w", pos, err)
		}
		if r != 0 {
			return r, nil
		}
	}
	return 0, nil
}

// Equals reports whether both keys have the same shape and values.
func (pk *PrimaryKey) Equals(other *PrimaryKey) bool {
	r, err := pk.Compare(other)
	return err == nil && r == 0
}

func (pk *PrimaryKey) Hash() uint64 {
	h := uint64(len(pk.components))
	for _, c := range pk.components {
		h = bits.RotateLeft64(h, 5) ^ c.Hash()
	}
	return h
}

// Clone returns a key with copies of every component.
func (pk *PrimaryKey) Clone() *PrimaryKey {
	components := make([]datatype.Abstract, len(pk.components))
	for pos, c := range pk.components {
		components[pos] = c.Clone()
	}
	return &PrimaryKey{components: components}
}

// Matches reports whether other has the same component names and types.
func (pk *PrimaryKey) Matches(other *PrimaryKey) bool {
	if other == nil || len(pk.components) != len(other.components) {
		return false
	}
	for pos, c := range pk.components {
		o := other.components[pos]
		if c.Name() != o.Name() || c.Type() != o.Type() {
			return false
		}
	}
	return true
}

// flightKey identifies the key among concurrent operations of a Storage. Two
// keys get the same flightKey exactly when Equals reports them equal.
func (pk *PrimaryKey) flightKey() string {
	var buf []byte
	for _, c := range pk.components {
		buf = datatype.AppendKey(buf, c)
	}
	return string(buf)
}

func (pk *PrimaryKey) String() string {
	parts := make([]string, len(pk.components))
	for pos, c := range pk.components {
		parts[pos] = c.String()
	}
	return "PrimaryKey{" + strings.Join(parts, ",") + "}"
}
