package datatype

import (
	"cmp"
	"math"
	"strconv"
)

type Float struct {
	cell
	value float64
}

func NewFloat(name string, constraint Constraint) *Float {
	return &Float{cell: newCell(name, TypeFloat, constraint)}
}

func (f *Float) Value() (float64, error) {
	if err := f.checkValue(); err != nil {
		return 0, err
	}
	return f.value, nil
}

func (f *Float) SetValue(value float64) {
	f.value = value
	f.isNull = false
}

func (f *Float) Clear() {
	f.value = 0
	f.reset()
}

func (f *Float) Clone() Abstract {
	clone := *f
	return &clone
}

func (f *Float) Compare(other Abstract) (int, error) {
	o, ok := other.(*Float)
	if !ok {
		return 0, mismatch(f, other)
	}
	if r, done := compareNulls(f, o); done {
		return r, nil
	}
	return cmp.Compare(f.value, o.value), nil
}

// Hash agrees with Compare: -0 and +0 hash alike, and so does every NaN.
func (f *Float) Hash() uint64 {
	return hashOf(f, f.canonical())
}

func (f *Float) canonical() []byte {
	v := f.value
	switch {
	case v == 0:
		v = 0
	case math.IsNaN(v):
		v = math.NaN()
	}
	return uint64Bytes(math.Float64bits(v))
}

func (f *Float) String() string {
	if f.isNull {
		return nullString(f)
	}
	return "Float{" + f.name + "=" + strconv.FormatFloat(f.value, 'g', -1, 64) + "}"
}
