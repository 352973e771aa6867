package persistence

import (
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

// Accessor is embedded by every persistence operation. It owns exactly one
// Statement and the PrimaryKey the operation works on. Accessors are meant
// to live long and be reused, one per use case; an accessor must not be
// used by two goroutines at the same time.
type Accessor struct {
	name       string
	stmt       *dbms.Statement
	pk         *PrimaryKey
	autoCommit bool
}

func NewAccessor(name string, stmt *dbms.Statement, pk *PrimaryKey) Accessor {
	return Accessor{name: name, stmt: stmt, pk: pk}
}

func (a *Accessor) Name() string {
	return a.name
}

func (a *Accessor) Statement() *dbms.Statement {
	return a.stmt
}

func (a *Accessor) PrimaryKey() *PrimaryKey {
	return a.pk
}

// AutoCommit tells the Storage to commit right after a successful Apply.
func (a *Accessor) AutoCommit() bool {
	return a.autoCommit
}

func (a *Accessor) SetAutoCommit(autoCommit bool) {
	a.autoCommit = autoCommit
}

// Operation is what a Storage needs from any accessor.
type Operation interface {
	Name() string
	Statement() *dbms.Statement
	PrimaryKey() *PrimaryKey
	AutoCommit() bool
}

// Loader reads the object identified by its PrimaryKey.
type Loader interface {
	Operation
	Apply(gs *dbms.GuardStatement) (*Object, error)
}

// Recorder writes its Object, which is identified by its PrimaryKey.
type Recorder interface {
	Operation
	Object() *Object
	Apply(gs *dbms.GuardStatement) error
}

// Eraser deletes the object identified by its PrimaryKey.
type Eraser interface {
	Operation
	Apply(gs *dbms.GuardStatement) error
}

// Creator inserts a new object identified by its PrimaryKey and returns it.
type Creator interface {
	Operation
	Apply(gs *dbms.GuardStatement) (*Object, error)
}
