package datatype

import (
	"bytes"
	"slices"

	"github.com/ciscoruiz/coffee-sub002"
)

// Assign copies the value (or the null state) of src into dst. Both cells
// must have the same type; names may differ. The size limit and nullability
// of dst are honoured.
func Assign(dst, src Abstract) error {
	if dst == nil || src == nil {
		return coffee.InvalidDataError("assign with a nil cell")
	}
	if dst.Type() != src.Type() {
		return coffee.InvalidDataError("%s (%s) can not take the value of %s (%s)", dst.Name(), dst.Type(), src.Name(), src.Type())
	}
	if src.IsNull() {
		return dst.SetNull(true)
	}
	switch d := dst.(type) {
	case *Integer:
		d.SetValue(src.(*Integer).value)
	case *String:
		return d.SetValue(src.(*String).value)
	case *Float:
		d.SetValue(src.(*Float).value)
	case *Date:
		d.SetValue(src.(*Date).value)
	case *TimeStamp:
		d.SetValue(src.(*TimeStamp).value)
	case *ShortBlock:
		return d.SetValue(src.(*ShortBlock).value)
	case *LongBlock:
		d.value = bytes.Clone(src.(*LongBlock).value)
		d.isNull = false
	case *MultiString:
		d.values = slices.Clone(src.(*MultiString).values)
		d.isNull = false
	}
	return nil
}
