package dbms

import "errors"

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrStatementNotFound  = errors.New("statement not found")
	ErrRollbackPending    = errors.New("connection has a pending rollback")
	ErrDatabaseClosed     = errors.New("database is closed")
)
