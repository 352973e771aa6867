package datatype

import (
	"slices"
	"strconv"
	"strings"
)

// MultiString is an ordered list of strings kept in a single cell, as
// directory services return multi-valued attributes.
type MultiString struct {
	cell
	values []string
}

func NewMultiString(name string, constraint Constraint) *MultiString {
	return &MultiString{cell: newCell(name, TypeMultiString, constraint)}
}

// Values returns a copy of the stored strings.
func (m *MultiString) Values() ([]string, error) {
	if err := m.checkValue(); err != nil {
		return nil, err
	}
	return slices.Clone(m.values), nil
}

func (m *MultiString) SetValues(values []string) {
	m.values = slices.Clone(values)
	m.isNull = false
}

func (m *MultiString) Add(value string) {
	m.values = append(m.values, value)
	m.isNull = false
}

func (m *MultiString) Len() int {
	return len(m.values)
}

func (m *MultiString) Clear() {
	m.values = nil
	m.reset()
}

func (m *MultiString) Clone() Abstract {
	clone := *m
	clone.values = slices.Clone(m.values)
	return &clone
}

func (m *MultiString) Compare(other Abstract) (int, error) {
	o, ok := other.(*MultiString)
	if !ok {
		return 0, mismatch(m, other)
	}
	if r, done := compareNulls(m, o); done {
		return r, nil
	}
	return slices.Compare(m.values, o.values), nil
}

func (m *MultiString) Hash() uint64 {
	return hashOf(m, m.canonical())
}

// canonical prefixes every value with its length, so ["ab"] and ["a","b"]
// differ.
func (m *MultiString) canonical() []byte {
	var buf []byte
	for _, v := range m.values {
		buf = append(buf, uint64Bytes(uint64(len(v)))...)
		buf = append(buf, v...)
	}
	return buf
}

func (m *MultiString) String() string {
	if m.isNull {
		return nullString(m)
	}
	quoted := make([]string, len(m.values))
	for i, v := range m.values {
		quoted[i] = strconv.Quote(v)
	}
	return "MultiString{" + m.name + "=[" + strings.Join(quoted, ",") + "]}"
}
