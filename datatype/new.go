package datatype

import (
	"strings"

	"github.com/ciscoruiz/coffee-sub002"
)

// ParseType accepts the type names used in configuration files:
// integer, string, float, date, timestamp, short_block, long_block and
// multi_string. Matching ignores case.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "integer", "int":
		return TypeInteger, nil
	case "string", "text":
		return TypeString, nil
	case "float", "real":
		return TypeFloat, nil
	case "date":
		return TypeDate, nil
	case "timestamp":
		return TypeTimeStamp, nil
	case "short_block", "shortblock":
		return TypeShortBlock, nil
	case "long_block", "longblock", "blob":
		return TypeLongBlock, nil
	case "multi_string", "multistring":
		return TypeMultiString, nil
	}
	return 0, coffee.ConfigurationError("unknown data type %q", name)
}

// New creates an empty cell of the given type. maxSize applies to String and
// ShortBlock only.
func New(typ Type, name string, maxSize int, constraint Constraint) (Abstract, error) {
	switch typ {
	case TypeInteger:
		return NewInteger(name, constraint), nil
	case TypeString:
		return NewString(name, maxSize, constraint), nil
	case TypeFloat:
		return NewFloat(name, constraint), nil
	case TypeDate:
		return NewDate(name, constraint), nil
	case TypeTimeStamp:
		return NewTimeStamp(name, constraint), nil
	case TypeShortBlock:
		return NewShortBlock(name, maxSize, constraint), nil
	case TypeLongBlock:
		return NewLongBlock(name, constraint), nil
	case TypeMultiString:
		return NewMultiString(name, constraint), nil
	}
	return nil, coffee.ConfigurationError("unknown data type %d", int(typ))
}
