// Package datatype holds the closed set of typed, nullable value cells that
// travel between objects and statement binders.
//
// A cell is always one of Integer, String, Float, Date, TimeStamp,
// ShortBlock, LongBlock or MultiString. The Abstract interface is sealed, so
// no other package can add a variant; code that needs the concrete type uses
// one of the checked As* downcasts, which fail with coffee.ErrInvalidData.
package datatype

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/ciscoruiz/coffee-sub002"
)

type Type int

const (
	TypeInteger Type = iota
	TypeString
	TypeFloat
	TypeDate
	TypeTimeStamp
	TypeShortBlock
	TypeLongBlock
	TypeMultiString
)

func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "Integer"
	case TypeString:
		return "String"
	case TypeFloat:
		return "Float"
	case TypeDate:
		return "Date"
	case TypeTimeStamp:
		return "TimeStamp"
	case TypeShortBlock:
		return "ShortBlock"
	case TypeLongBlock:
		return "LongBlock"
	case TypeMultiString:
		return "MultiString"
	default:
		return "Unknown"
	}
}

// Constraint tells whether a cell may hold the null value.
type Constraint int

const (
	CanNotBeNull Constraint = iota
	CanBeNull
)

// Abstract is a data cell of any type.
// Compare fails when the cells have different types; two null cells are
// equal and a null cell sorts before any value.
type Abstract interface {
	Name() string
	Type() Type
	IsNullable() bool
	IsNull() bool
	// SetNull fails on a cell declared with CanNotBeNull.
	SetNull(isNull bool) error
	// Clear resets the value to its default, or to null if the cell is nullable.
	Clear()
	Clone() Abstract
	Compare(other Abstract) (int, error)
	Hash() uint64
	String() string

	base() *cell
	// canonical is the value encoding shared by cells that compare equal.
	canonical() []byte
}

type cell struct {
	name     string
	typ      Type
	nullable bool
	isNull   bool
}

func newCell(name string, typ Type, constraint Constraint) cell {
	nullable := constraint == CanBeNull
	return cell{name: name, typ: typ, nullable: nullable, isNull: nullable}
}

func (c *cell) Name() string {
	return c.name
}

func (c *cell) Type() Type {
	return c.typ
}

func (c *cell) IsNullable() bool {
	return c.nullable
}

func (c *cell) IsNull() bool {
	return c.isNull
}

func (c *cell) SetNull(isNull bool) error {
	if isNull && !c.nullable {
		return coffee.InvalidDataError("%s: data type can not be null", c.name)
	}
	c.isNull = isNull
	return nil
}

func (c *cell) base() *cell {
	return c
}

func (c *cell) reset() {
	c.isNull = c.nullable
}

func (c *cell) checkValue() error {
	if c.isNull {
		return coffee.InvalidDataError("%s: data is null", c.name)
	}
	return nil
}

// compareNulls resolves the comparison when at least one side is null.
func compareNulls(a, b Abstract) (int, bool) {
	switch {
	case a.IsNull() && b.IsNull():
		return 0, true
	case a.IsNull():
		return -1, true
	case b.IsNull():
		return 1, true
	}
	return 0, false
}

func mismatch(a, b Abstract) error {
	if b == nil {
		return coffee.InvalidDataError("%s: can not compare %s with nil", a.Name(), a.Type())
	}
	return coffee.InvalidDataError("%s: can not compare %s with %s (%s)", a.Name(), a.Type(), b.Type(), b.Name())
}

// hashOf mixes the type tag with the value bytes. Null cells of the same type
// share one hash.
func hashOf(c Abstract, value []byte) uint64 {
	h := fnv.New64a()
	var tag [9]byte
	binary.BigEndian.PutUint64(tag[:8], uint64(c.Type()))
	if c.IsNull() {
		tag[8] = 0
		h.Write(tag[:])
		return h.Sum64()
	}
	tag[8] = 1
	h.Write(tag[:])
	h.Write(value)
	return h.Sum64()
}

// AppendKey appends to dst an encoding of c that is equal for two cells
// exactly when they have the same type and Compare reports them equal. The
// name of the cell is not part of it.
func AppendKey(dst []byte, c Abstract) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(c.Type()))
	if c.IsNull() {
		return append(dst, 0)
	}
	value := c.canonical()
	dst = append(dst, 1)
	dst = binary.BigEndian.AppendUint64(dst, uint64(len(value)))
	return append(dst, value...)
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func nullString(c Abstract) string {
	return c.Type().String() + "{" + c.Name() + "=<null>}"
}
