package datatype

import (
	"cmp"
	"strconv"
)

type Integer struct {
	cell
	value int64
}

func NewInteger(name string, constraint Constraint) *Integer {
	return &Integer{cell: newCell(name, TypeInteger, constraint)}
}

func (i *Integer) Value() (int64, error) {
	if err := i.checkValue(); err != nil {
		return 0, err
	}
	return i.value, nil
}

func (i *Integer) SetValue(value int64) {
	i.value = value
	i.isNull = false
}

func (i *Integer) Clear() {
	i.value = 0
	i.reset()
}

func (i *Integer) Clone() Abstract {
	clone := *i
	return &clone
}

func (i *Integer) Compare(other Abstract) (int, error) {
	o, ok := other.(*Integer)
	if !ok {
		return 0, mismatch(i, other)
	}
	if r, done := compareNulls(i, o); done {
		return r, nil
	}
	return cmp.Compare(i.value, o.value), nil
}

func (i *Integer) Hash() uint64 {
	return hashOf(i, i.canonical())
}

func (i *Integer) canonical() []byte {
	return uint64Bytes(uint64(i.value))
}

func (i *Integer) String() string {
	if i.isNull {
		return nullString(i)
	}
	return "Integer{" + i.name + "=" + strconv.FormatInt(i.value, 10) + "}"
}
