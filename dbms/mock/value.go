package mock

import (
	"time"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// Value returns the Go value held by the cell: int64, string, float64,
// time.Time, []byte or []string. A null cell gives nil.
func Value(cell datatype.Abstract) (any, error) {
	if cell == nil {
		return nil, coffee.InvalidDataError("mock: nil data")
	}
	if cell.IsNull() {
		return nil, nil
	}
	switch c := cell.(type) {
	case *datatype.Integer:
		return c.Value()
	case *datatype.String:
		return c.Value()
	case *datatype.Float:
		return c.Value()
	case *datatype.Date:
		return c.Value()
	case *datatype.TimeStamp:
		return c.Value()
	case *datatype.ShortBlock:
		return c.Value()
	case *datatype.LongBlock:
		return c.Value()
	case *datatype.MultiString:
		return c.Values()
	}
	return nil, coffee.InvalidDataError("mock: %s has unsupported type %s", cell.Name(), cell.Type())
}

// Assign stores v into the cell. nil sets the cell to null.
func Assign(cell datatype.Abstract, v any) error {
	if cell == nil {
		return coffee.InvalidDataError("mock: nil data")
	}
	if v == nil {
		return cell.SetNull(true)
	}
	switch c := cell.(type) {
	case *datatype.Integer:
		switch n := v.(type) {
		case int64:
			c.SetValue(n)
			return nil
		case int:
			c.SetValue(int64(n))
			return nil
		}
	case *datatype.String:
		if s, ok := v.(string); ok {
			return c.SetValue(s)
		}
	case *datatype.Float:
		switch n := v.(type) {
		case float64:
			c.SetValue(n)
			return nil
		case int:
			c.SetValue(float64(n))
			return nil
		}
	case *datatype.Date:
		if t, ok := v.(time.Time); ok {
			c.SetValue(t)
			return nil
		}
	case *datatype.TimeStamp:
		if t, ok := v.(time.Time); ok {
			c.SetValue(t)
			return nil
		}
	case *datatype.ShortBlock:
		if b, ok := v.([]byte); ok {
			return c.SetValue(b)
		}
	case *datatype.LongBlock:
		if b, ok := v.([]byte); ok {
			c.SetValue(b)
			return nil
		}
	case *datatype.MultiString:
		if values, ok := v.([]string); ok {
			c.SetValues(values)
			return nil
		}
	}
	return coffee.InvalidDataError("mock: %T can not be assigned to %s (%s)", v, cell.Name(), cell.Type())
}
