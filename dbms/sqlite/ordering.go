package sqlite

import (
	"slices"
	"strings"

	"github.com/ciscoruiz/coffee-sub002/persistence"
)

type OrderDirection string

const (
	ASC  OrderDirection = "ASC"
	DESC OrderDirection = "DESC"
)

func (d OrderDirection) Reverse() OrderDirection {
	if d == DESC {
		return ASC
	}
	return DESC
}

// Orderer renders the body of an ORDER BY clause.
type Orderer interface {
	OrderString() string
}

// Order sorts by one column.
type Order struct {
	Column    string
	Direction OrderDirection
}

func (o Order) OrderString() string {
	return quote(o.Column) + " " + string(o.Direction)
}

// Ordering sorts by its columns in turn.
type Ordering []Order

func OrderBy(column string, dir OrderDirection) Ordering {
	return Ordering{{column, dir}}
}

// KeyOrder sorts rows of class the way persistence.PrimaryKey.Compare sorts
// their keys: component after component, in key order.
func KeyOrder(class *persistence.Class, dir OrderDirection) Ordering {
	names := keyColumns(class)
	o := make(Ordering, 0, len(names))
	for _, name := range names {
		o = append(o, Order{name, dir})
	}
	return o
}

// Then returns a new Ordering; o is not changed.
func (o Ordering) Then(column string, dir OrderDirection) Ordering {
	return append(slices.Clip(o), Order{column, dir})
}

func (o Ordering) Reverse() Ordering {
	reversed := make(Ordering, len(o))
	for i, order := range o {
		reversed[i] = Order{order.Column, order.Direction.Reverse()}
	}
	return reversed
}

func (o Ordering) OrderString() string {
	terms := make([]string, 0, len(o))
	for _, order := range o {
		terms = append(terms, order.OrderString())
	}
	return strings.Join(terms, ", ")
}
