package datatype

import (
	"time"
)

// Date is a point in time with a resolution of one second.
type Date struct {
	cell
	value time.Time
}

func NewDate(name string, constraint Constraint) *Date {
	return &Date{cell: newCell(name, TypeDate, constraint)}
}

func (d *Date) Value() (time.Time, error) {
	if err := d.checkValue(); err != nil {
		return time.Time{}, err
	}
	return d.value, nil
}

// SetValue drops the fraction of second.
func (d *Date) SetValue(value time.Time) {
	d.value = value.Truncate(time.Second)
	d.isNull = false
}

func (d *Date) Clear() {
	d.value = time.Time{}
	d.reset()
}

func (d *Date) Clone() Abstract {
	clone := *d
	return &clone
}

func (d *Date) Compare(other Abstract) (int, error) {
	o, ok := other.(*Date)
	if !ok {
		return 0, mismatch(d, other)
	}
	if r, done := compareNulls(d, o); done {
		return r, nil
	}
	return d.value.Compare(o.value), nil
}

func (d *Date) Hash() uint64 {
	return hashOf(d, d.canonical())
}

func (d *Date) canonical() []byte {
	return uint64Bytes(uint64(d.value.Unix()))
}

func (d *Date) String() string {
	if d.isNull {
		return nullString(d)
	}
	return "Date{" + d.name + "=" + d.value.UTC().Format(time.RFC3339) + "}"
}

// TimeStamp is a point in time with full precision.
type TimeStamp struct {
	cell
	value time.Time
}

func NewTimeStamp(name string, constraint Constraint) *TimeStamp {
	return &TimeStamp{cell: newCell(name, TypeTimeStamp, constraint)}
}

func (t *TimeStamp) Value() (time.Time, error) {
	if err := t.checkValue(); err != nil {
		return time.Time{}, err
	}
	return t.value, nil
}

func (t *TimeStamp) SetValue(value time.Time) {
	t.value = value
	t.isNull = false
}

func (t *TimeStamp) Clear() {
	t.value = time.Time{}
	t.reset()
}

func (t *TimeStamp) Clone() Abstract {
	clone := *t
	return &clone
}

func (t *TimeStamp) Compare(other Abstract) (int, error) {
	o, ok := other.(*TimeStamp)
	if !ok {
		return 0, mismatch(t, other)
	}
	if r, done := compareNulls(t, o); done {
		return r, nil
	}
	return t.value.Compare(o.value), nil
}

func (t *TimeStamp) Hash() uint64 {
	return hashOf(t, t.canonical())
}

func (t *TimeStamp) canonical() []byte {
	return append(uint64Bytes(uint64(t.value.Unix())), uint64Bytes(uint64(t.value.Nanosecond()))...)
}

func (t *TimeStamp) String() string {
	if t.isNull {
		return nullString(t)
	}
	return "TimeStamp{" + t.name + "=" + t.value.UTC().Format(time.RFC3339Nano) + "}"
}
