package persistence

import (
	"strings"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// Class is the schema of one entity type: the shape of its primary key and
// the ordered list of its member cells. A Class never changes once built.
type Class struct {
	name    string
	key     *PrimaryKey
	members []datatype.Abstract
	index   map[string]int
}

type ClassBuilder struct {
	name    string
	key     *PrimaryKey
	keys    int
	members []datatype.Abstract
}

func NewClassBuilder(name string) *ClassBuilder {
	return &ClassBuilder{name: name}
}

func (b *ClassBuilder) SetPrimaryKey(pk *PrimaryKey) *ClassBuilder {
	b.key = pk
	b.keys++
	return b
}

func (b *ClassBuilder) AddMember(member datatype.Abstract) *ClassBuilder {
	b.members = append(b.members, member)
	return b
}

// Build checks that exactly one primary key was set, that there is at least
// one member, and that no name is used twice across key and members.
func (b *ClassBuilder) Build() (*Class, error) {
	if b.name == "" {
		return nil, coffee.ConfigurationError("class without name")
	}
	if b.keys != 1 || b.key == nil {
		return nil, coffee.ConfigurationError("class %s needs exactly one primary key, got %d", b.name, b.keys)
	}
	if len(b.members) == 0 {
		return nil, coffee.ConfigurationError("class %s has no members", b.name)
	}
	c := &Class{
		name:    b.name,
		key:     b.key.Clone(),
		members: make([]datatype.Abstract, len(b.members)),
		index:   make(map[string]int, len(b.members)),
	}
	for _, k := range c.key.components {
		c.index[k.Name()] = -1
	}
	for pos, m := range b.members {
		if m == nil {
			return nil, coffee.ConfigurationError("class %s: member %d is nil", b.name, pos)
		}
		if at, dup := c.index[m.Name()]; dup {
			if at < 0 {
				return nil, coffee.ConfigurationError("class %s: member %s is also a primary key component", b.name, m.Name())
			}
			return nil, coffee.ConfigurationError("class %s: member %s repeated", b.name, m.Name())
		}
		c.index[m.Name()] = pos
		c.members[pos] = m.Clone()
	}
	return c, nil
}

func (c *Class) Name() string {
	return c.name
}

// PrimaryKey returns a fresh key with the shape of the class.
func (c *Class) PrimaryKey() *PrimaryKey {
	pk := c.key.Clone()
	for _, component := range pk.components {
		component.Clear()
	}
	return pk
}

func (c *Class) MemberSize() int {
	return len(c.members)
}

// Members returns fresh, cleared copies of the member templates in order.
func (c *Class) Members() []datatype.Abstract {
	members := make([]datatype.Abstract, len(c.members))
	for pos, m := range c.members {
		members[pos] = m.Clone()
		members[pos].Clear()
	}
	return members
}

// MemberNames returns the member names in declaration order.
func (c *Class) MemberNames() []string {
	names := make([]string, len(c.members))
	for pos, m := range c.members {
		names[pos] = m.Name()
	}
	return names
}

// NewObject creates an object of the class with a copy of pk and cleared
// members.
func (c *Class) NewObject(pk *PrimaryKey) (*Object, error) {
	if !c.key.Matches(pk) {
		return nil, coffee.InvalidDataError("class %s: %v does not have the shape of %v", c.name, pk, c.key)
	}
	return &Object{class: c, pk: pk.Clone(), members: c.Members()}, nil
}

func (c *Class) String() string {
	parts := make([]string, len(c.members))
	for pos, m := range c.members {
		parts[pos] = m.Name() + ":" + m.Type().String()
	}
	return "Class{" + c.name + ", key=" + c.key.String() + ", members=[" + strings.Join(parts, ",") + "]}"
}

func (c *Class) memberIndex(name string) (int, bool) {
	pos, found := c.index[name]
	return pos, found && pos >= 0
}
