package datatype

import (
	"strconv"
	"strings"

	"github.com/ciscoruiz/coffee-sub002"
)

// String holds text of at most MaxSize bytes. A MaxSize of zero means no limit.
type String struct {
	cell
	maxSize int
	value   string
}

func NewString(name string, maxSize int, constraint Constraint) *String {
	return &String{cell: newCell(name, TypeString, constraint), maxSize: maxSize}
}

func (s *String) MaxSize() int {
	return s.maxSize
}

func (s *String) Value() (string, error) {
	if err := s.checkValue(); err != nil {
		return "", err
	}
	return s.value, nil
}

func (s *String) SetValue(value string) error {
	if s.maxSize > 0 && len(value) > s.maxSize {
		return coffee.InvalidDataError("%s: %d bytes exceeds the max size %d", s.name, len(value), s.maxSize)
	}
	s.value = value
	s.isNull = false
	return nil
}

func (s *String) Clear() {
	s.value = ""
	s.reset()
}

func (s *String) Clone() Abstract {
	clone := *s
	return &clone
}

func (s *String) Compare(other Abstract) (int, error) {
	o, ok := other.(*String)
	if !ok {
		return 0, mismatch(s, other)
	}
	if r, done := compareNulls(s, o); done {
		return r, nil
	}
	return strings.Compare(s.value, o.value), nil
}

func (s *String) Hash() uint64 {
	return hashOf(s, s.canonical())
}

func (s *String) canonical() []byte {
	return []byte(s.value)
}

func (s *String) String() string {
	if s.isNull {
		return nullString(s)
	}
	return "String{" + s.name + "=" + strconv.Quote(s.value) + "}"
}
