package dbms

import (
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// Driver is implemented once per backend. A Database delegates every backend
// specific decision to it, including what its numeric codes mean.
type Driver interface {
	ErrorCodeInterpreter

	NewConnection(db *Database, name string, params ConnectionParameters) (ConnectionBackend, error)
	NewStatement(db *Database, name, expression string, params StatementParameters) (StatementBackend, error)
	NewInputBinder(cell datatype.Abstract) InputBinder
	NewOutputBinder(cell datatype.Abstract) OutputBinder
}

// ConnectionBackend is the backend side of a Connection.
type ConnectionBackend interface {
	Open() error
	Close() error
	Commit() (ResultCode, error)
	Rollback() error
	// Available is false once the backend link is known to be down.
	Available() bool
}

// StatementBackend is the backend side of a Statement.
// Prepare returns the number of parameters and result columns the backend
// found in the expression; the Statement checks them against its binders.
type StatementBackend interface {
	Prepare(conn *Connection) (params int, columns int, err error)
	Execute(conn *Connection) (ResultCode, error)
	Fetch() (bool, error)
	Close() error
}

// InputBinder writes one data cell into one positional parameter.
type InputBinder interface {
	Cell() datatype.Abstract
	Prepare(stmt *Statement, pos int) error
	Release(stmt *Statement)
	Encode(stmt *Statement, pos int) error
}

// OutputBinder reads one positional result column into one data cell.
type OutputBinder interface {
	Cell() datatype.Abstract
	Prepare(stmt *Statement, pos int) error
	Release(stmt *Statement)
	Decode(stmt *Statement, pos int) error
}

// FailRecoveryHandler is called by the Database when a connection that lost
// its backend link could not be reopened.
type FailRecoveryHandler interface {
	Apply(conn *Connection) error
}

// FailRecoveryHandlerFunc adapts a function to FailRecoveryHandler.
type FailRecoveryHandlerFunc func(conn *Connection) error

func (f FailRecoveryHandlerFunc) Apply(conn *Connection) error {
	return f(conn)
}

type ConnectionParameters struct {
	User     string
	Password string
	// MaxCommitPending forces a commit once that many statements that require
	// one have run. Zero disables the auto commit.
	MaxCommitPending int
}

type ActionOnError int

const (
	// Rollback marks the connection for rollback when the statement fails.
	Rollback ActionOnError = iota
	// Ignore leaves the transaction as it is.
	Ignore
)

type StatementParameters struct {
	ActionOnError ActionOnError
	// RequiresCommit counts a successful execution as pending work of the
	// connection.
	RequiresCommit bool
}
