package persistence

import (
	"strings"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// Object is one instance of a Class: a primary key value and the values of
// the class members. An object handed out by a Storage is shared with every
// other caller and must be treated as read only; clone it before changing
// it.
type Object struct {
	class   *Class
	pk      *PrimaryKey
	members []datatype.Abstract
}

func (o *Object) Class() *Class {
	return o.class
}

func (o *Object) PrimaryKey() *PrimaryKey {
	return o.pk
}

// Member returns the named member cell.
func (o *Object) Member(name string) (datatype.Abstract, error) {
	pos, found := o.class.memberIndex(name)
	if !found {
		return nil, coffee.InvalidDataError("class %s has no member %s", o.class.Name(), name)
	}
	return o.members[pos], nil
}

// Members returns the member cells in class order. The cells are shared.
func (o *Object) Members() []datatype.Abstract {
	return append([]datatype.Abstract(nil), o.members...)
}

func (o *Object) Integer(name string) (*datatype.Integer, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsInteger(m)
}

func (o *Object) Text(name string) (*datatype.String, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsString(m)
}

func (o *Object) Float(name string) (*datatype.Float, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsFloat(m)
}

func (o *Object) Date(name string) (*datatype.Date, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsDate(m)
}

func (o *Object) TimeStamp(name string) (*datatype.TimeStamp, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsTimeStamp(m)
}

func (o *Object) ShortBlock(name string) (*datatype.ShortBlock, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsShortBlock(m)
}

func (o *Object) LongBlock(name string) (*datatype.LongBlock, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsLongBlock(m)
}

func (o *Object) MultiString(name string) (*datatype.MultiString, error) {
	m, err := o.Member(name)
	if err != nil {
		return nil, err
	}
	return datatype.AsMultiString(m)
}

// Clone returns a deep copy, sharing only the class.
func (o *Object) Clone() *Object {
	members := make([]datatype.Abstract, len(o.members))
	for pos, m := range o.members {
		members[pos] = m.Clone()
	}
	return &Object{class: o.class, pk: o.pk.Clone(), members: members}
}

func (o *Object) String() string {
	parts := make([]string, len(o.members))
	for pos, m := range o.members {
		parts[pos] = m.String()
	}
	return "Object{" + o.class.Name() + ", " + o.pk.String() + ", " + strings.Join(parts, ",") + "}"
}
