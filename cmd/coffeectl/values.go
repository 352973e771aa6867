package main

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

const (
	dateLayout = "2006-01-02"
	nullText   = "<null>"
)

// parseCell stores the command line text of a value into the cell. Blocks
// are hex encoded and multi strings comma separated.
func parseCell(cell datatype.Abstract, text string) error {
	switch c := cell.(type) {
	case *datatype.Integer:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return coffee.InvalidDataError("%s: %q is not an integer", c.Name(), text)
		}
		c.SetValue(v)
		return nil
	case *datatype.String:
		return c.SetValue(text)
	case *datatype.Float:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return coffee.InvalidDataError("%s: %q is not a number", c.Name(), text)
		}
		c.SetValue(v)
		return nil
	case *datatype.Date:
		v, err := time.ParseInLocation(dateLayout, text, time.UTC)
		if err != nil {
			return coffee.InvalidDataError("%s: %q is not a date (%s)", c.Name(), text, dateLayout)
		}
		c.SetValue(v)
		return nil
	case *datatype.TimeStamp:
		v, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return coffee.InvalidDataError("%s: %q is not an RFC 3339 time", c.Name(), text)
		}
		c.SetValue(v)
		return nil
	case *datatype.ShortBlock:
		v, err := hex.DecodeString(text)
		if err != nil {
			return coffee.InvalidDataError("%s: %q is not hex", c.Name(), text)
		}
		return c.SetValue(v)
	case *datatype.LongBlock:
		v, err := hex.DecodeString(text)
		if err != nil {
			return coffee.InvalidDataError("%s: %q is not hex", c.Name(), text)
		}
		c.SetValue(v)
		return nil
	case *datatype.MultiString:
		if text == "" {
			c.SetValues([]string{})
		} else {
			c.SetValues(strings.Split(text, ","))
		}
		return nil
	}
	return coffee.InvalidDataError("%s: unsupported type %s", cell.Name(), cell.Type())
}

// formatCell is the inverse of parseCell.
func formatCell(cell datatype.Abstract) string {
	if cell.IsNull() {
		return nullText
	}
	switch c := cell.(type) {
	case *datatype.Integer:
		v, _ := c.Value()
		return strconv.FormatInt(v, 10)
	case *datatype.String:
		v, _ := c.Value()
		return v
	case *datatype.Float:
		v, _ := c.Value()
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *datatype.Date:
		v, _ := c.Value()
		return v.UTC().Format(dateLayout)
	case *datatype.TimeStamp:
		v, _ := c.Value()
		return v.UTC().Format(time.RFC3339Nano)
	case *datatype.ShortBlock:
		v, _ := c.Value()
		return hex.EncodeToString(v)
	case *datatype.LongBlock:
		v, _ := c.Value()
		return hex.EncodeToString(v)
	case *datatype.MultiString:
		v, _ := c.Values()
		return strings.Join(v, ",")
	}
	return cell.String()
}

// parseKey fills pk from one argument per component.
func parseKey(pk *persistence.PrimaryKey, args []string) error {
	if len(args) != pk.Size() {
		return coffee.InvalidDataError("key needs %d values, got %d", pk.Size(), len(args))
	}
	for pos, c := range pk.Components() {
		if err := parseCell(c, args[pos]); err != nil {
			return err
		}
	}
	return nil
}

func formatKey(pk *persistence.PrimaryKey) string {
	values := make([]string, 0, pk.Size())
	for _, c := range pk.Components() {
		values = append(values, formatCell(c))
	}
	return strings.Join(values, " ")
}
