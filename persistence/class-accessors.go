package persistence

import (
	"fmt"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

// The Class* accessors bind their statement in class order: the primary key
// components first, then the members. Any backend whose commands follow that
// layout can use them as they are.

// ClassLoader runs a statement that takes the key components and answers the
// member columns of one row.
type ClassLoader struct {
	Accessor
	class   *Class
	members []datatype.Abstract
}

func NewClassLoader(name string, stmt *dbms.Statement, class *Class) (*ClassLoader, error) {
	pk, err := bindKey(stmt, class)
	if err != nil {
		return nil, err
	}
	members := class.Members()
	for _, m := range members {
		if err := stmt.BindOutput(m); err != nil {
			return nil, err
		}
	}
	return &ClassLoader{Accessor: NewAccessor(name, stmt, pk), class: class, members: members}, nil
}

func (l *ClassLoader) Apply(gs *dbms.GuardStatement) (*Object, error) {
	if _, err := gs.Execute(); err != nil {
		if dbms.IsNotFound(err) {
			return nil, fmt.Errorf("%s %v: %w: %w", l.Name(), l.PrimaryKey(), ErrObjectNotFound, err)
		}
		return nil, err
	}
	found, err := gs.Fetch()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s %v: %w", l.Name(), l.PrimaryKey(), ErrObjectNotFound)
	}
	obj, err := l.class.NewObject(l.PrimaryKey())
	if err != nil {
		return nil, err
	}
	for pos, m := range l.members {
		if err := datatype.Assign(obj.members[pos], m); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// ClassRecorder runs a statement that takes the key components followed by
// the members of its object.
type ClassRecorder struct {
	Accessor
	class   *Class
	members []datatype.Abstract
	object  *Object
}

func NewClassRecorder(name string, stmt *dbms.Statement, class *Class) (*ClassRecorder, error) {
	pk, err := bindKey(stmt, class)
	if err != nil {
		return nil, err
	}
	members, err := bindMembers(stmt, class)
	if err != nil {
		return nil, err
	}
	return &ClassRecorder{Accessor: NewAccessor(name, stmt, pk), class: class, members: members}, nil
}

// SetObject selects the object written by the next Apply. The recorder's key
// takes the key of obj.
func (r *ClassRecorder) SetObject(obj *Object) error {
	if obj == nil || obj.Class() != r.class {
		return coffee.InvalidDataError("%s records objects of class %s", r.Name(), r.class.Name())
	}
	if err := assignAll(r.PrimaryKey().components, obj.pk.components); err != nil {
		return err
	}
	r.object = obj
	return nil
}

func (r *ClassRecorder) Object() *Object {
	return r.object
}

func (r *ClassRecorder) Apply(gs *dbms.GuardStatement) error {
	if r.object == nil {
		return coffee.InvalidDataError("%s: no object to record", r.Name())
	}
	if err := assignAll(r.PrimaryKey().components, r.object.pk.components); err != nil {
		return err
	}
	if err := assignAll(r.members, r.object.members); err != nil {
		return err
	}
	_, err := gs.Execute()
	return err
}

// ClassEraser runs a statement that takes the key components.
type ClassEraser struct {
	Accessor
}

func NewClassEraser(name string, stmt *dbms.Statement, class *Class) (*ClassEraser, error) {
	pk, err := bindKey(stmt, class)
	if err != nil {
		return nil, err
	}
	return &ClassEraser{Accessor: NewAccessor(name, stmt, pk)}, nil
}

func (e *ClassEraser) Apply(gs *dbms.GuardStatement) error {
	_, err := gs.Execute()
	return err
}

// ClassCreator runs a statement that takes the key components followed by
// the members. Callers fill PrimaryKey() and Member(name) before creating.
type ClassCreator struct {
	Accessor
	class   *Class
	members []datatype.Abstract
}

func NewClassCreator(name string, stmt *dbms.Statement, class *Class) (*ClassCreator, error) {
	pk, err := bindKey(stmt, class)
	if err != nil {
		return nil, err
	}
	members, err := bindMembers(stmt, class)
	if err != nil {
		return nil, err
	}
	return &ClassCreator{Accessor: NewAccessor(name, stmt, pk), class: class, members: members}, nil
}

// Member returns the bound cell of the named member.
func (c *ClassCreator) Member(name string) (datatype.Abstract, error) {
	pos, found := c.class.memberIndex(name)
	if !found {
		return nil, coffee.InvalidDataError("class %s has no member %s", c.class.Name(), name)
	}
	return c.members[pos], nil
}

func (c *ClassCreator) Apply(gs *dbms.GuardStatement) (*Object, error) {
	if _, err := gs.Execute(); err != nil {
		return nil, err
	}
	obj, err := c.class.NewObject(c.PrimaryKey())
	if err != nil {
		return nil, err
	}
	if err := assignAll(obj.members, c.members); err != nil {
		return nil, err
	}
	return obj, nil
}

func bindKey(stmt *dbms.Statement, class *Class) (*PrimaryKey, error) {
	if stmt == nil || class == nil {
		return nil, coffee.ConfigurationError("accessor needs a statement and a class")
	}
	pk := class.PrimaryKey()
	for _, c := range pk.components {
		if err := stmt.BindInput(c); err != nil {
			return nil, err
		}
	}
	return pk, nil
}

func bindMembers(stmt *dbms.Statement, class *Class) ([]datatype.Abstract, error) {
	members := class.Members()
	for _, m := range members {
		if err := stmt.BindInput(m); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func assignAll(dst, src []datatype.Abstract) error {
	for pos := range dst {
		if err := datatype.Assign(dst[pos], src[pos]); err != nil {
			return err
		}
	}
	return nil
}
