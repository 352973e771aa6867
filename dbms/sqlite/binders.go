package sqlite

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

type InputBinder struct {
	cell datatype.Abstract
}

func (b *InputBinder) Cell() datatype.Abstract { return b.cell }
func (b *InputBinder) Prepare(stmt *dbms.Statement, pos int) error { return nil }
func (b *InputBinder) Release(stmt *dbms.Statement) {}

func (b *InputBinder) Encode(stmt *dbms.Statement, pos int) error {
	backend, err := statementOf(stmt)
	if err != nil {
		return err
	}
	value, err := encode(b.cell)
	if err != nil {
		return err
	}
	return backend.bind(pos, value)
}

type OutputBinder struct {
	cell datatype.Abstract
}

func (b *OutputBinder) Cell() datatype.Abstract { return b.cell }
func (b *OutputBinder) Prepare(stmt *dbms.Statement, pos int) error { return nil }
func (b *OutputBinder) Release(stmt *dbms.Statement) {}

func (b *OutputBinder) Decode(stmt *dbms.Statement, pos int) error {
	backend, err := statementOf(stmt)
	if err != nil {
		return err
	}
	value, err := backend.current(pos)
	if err != nil {
		return err
	}
	return decode(b.cell, value)
}

// encode returns the SQLite argument for the cell. A multi string is stored
// as a JSON array of strings.
func encode(cell datatype.Abstract) (any, error) {
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
		v, err := c.Value()
		return v.UTC(), err
	case *datatype.TimeStamp:
		v, err := c.Value()
		return v.UTC(), err
	case *datatype.ShortBlock:
		return c.Value()
	case *datatype.LongBlock:
		return c.Value()
	case *datatype.MultiString:
		values, err := c.Values()
		if err != nil {
			return nil, err
		}
		if values == nil {
			values = []string{}
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, coffee.InvalidDataError("sqlite: %s: %v", cell.Name(), err)
		}
		return string(encoded), nil
	}
	return nil, coffee.InvalidDataError("sqlite: %s has unsupported type %s", cell.Name(), cell.Type())
}

// decode stores a column value, as returned by go-sqlite3, into the cell.
// NULL sets the cell to null, which fails for a non nullable cell.
func decode(cell datatype.Abstract, value any) error {
	if value == nil {
		return cell.SetNull(true)
	}
	switch c := cell.(type) {
	case *datatype.Integer:
		switch v := value.(type) {
		case int64:
			c.SetValue(v)
			return nil
		case bool:
			if v {
				c.SetValue(1)
			} else {
				c.SetValue(0)
			}
			return nil
		case []byte:
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err == nil {
				c.SetValue(n)
				return nil
			}
		}
	case *datatype.String:
		switch v := value.(type) {
		case string:
			return c.SetValue(v)
		case []byte:
			return c.SetValue(string(v))
		}
	case *datatype.Float:
		switch v := value.(type) {
		case float64:
			c.SetValue(v)
			return nil
		case int64:
			c.SetValue(float64(v))
			return nil
		}
	case *datatype.Date:
		t, ok := decodeTime(value)
		if ok {
			c.SetValue(t)
			return nil
		}
	case *datatype.TimeStamp:
		t, ok := decodeTime(value)
		if ok {
			c.SetValue(t)
			return nil
		}
	case *datatype.ShortBlock:
		switch v := value.(type) {
		case []byte:
			return c.SetValue(v)
		case string:
			return c.SetValue([]byte(v))
		}
	case *datatype.LongBlock:
		switch v := value.(type) {
		case []byte:
			c.SetValue(v)
			return nil
		case string:
			c.SetValue([]byte(v))
			return nil
		}
	case *datatype.MultiString:
		var raw []byte
		switch v := value.(type) {
		case string:
			raw = []byte(v)
		case []byte:
			raw = v
		}
		if raw != nil {
			var values []string
			if err := json.Unmarshal(raw, &values); err != nil {
				return coffee.InvalidDataError("sqlite: %s: %v", cell.Name(), err)
			}
			c.SetValues(values)
			return nil
		}
	}
	return coffee.InvalidDataError("sqlite: column value %T can not be stored in %s (%s)", value, cell.Name(), cell.Type())
}

// decodeTime accepts what go-sqlite3 returns for date columns: a time.Time
// for declared DATE, DATETIME and TIMESTAMP columns, the stored text
// otherwise, or unix seconds.
func decodeTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
