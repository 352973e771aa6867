package datatype

import (
	"github.com/ciscoruiz/coffee-sub002"
)

// Checked downcasts. Each one fails with coffee.ErrInvalidData when the cell
// is nil or holds another type.

func AsInteger(a Abstract) (*Integer, error) {
	if v, ok := a.(*Integer); ok {
		return v, nil
	}
	return nil, badCast(a, TypeInteger)
}

func AsString(a Abstract) (*String, error) {
	if v, ok := a.(*String); ok {
		return v, nil
	}
	return nil, badCast(a, TypeString)
}

func AsFloat(a Abstract) (*Float, error) {
	if v, ok := a.(*Float); ok {
		return v, nil
	}
	return nil, badCast(a, TypeFloat)
}

func AsDate(a Abstract) (*Date, error) {
	if v, ok := a.(*Date); ok {
		return v, nil
	}
	return nil, badCast(a, TypeDate)
}

func AsTimeStamp(a Abstract) (*TimeStamp, error) {
	if v, ok := a.(*TimeStamp); ok {
		return v, nil
	}
	return nil, badCast(a, TypeTimeStamp)
}

func AsShortBlock(a Abstract) (*ShortBlock, error) {
	if v, ok := a.(*ShortBlock); ok {
		return v, nil
	}
	return nil, badCast(a, TypeShortBlock)
}

func AsLongBlock(a Abstract) (*LongBlock, error) {
	if v, ok := a.(*LongBlock); ok {
		return v, nil
	}
	return nil, badCast(a, TypeLongBlock)
}

func AsMultiString(a Abstract) (*MultiString, error) {
	if v, ok := a.(*MultiString); ok {
		return v, nil
	}
	return nil, badCast(a, TypeMultiString)
}

func badCast(a Abstract, want Type) error {
	if a == nil {
		return coffee.InvalidDataError("nil data can not be used as %s", want)
	}
	return coffee.InvalidDataError("%s: %s can not be used as %s", a.Name(), a.Type(), want)
}
