package dbms

import (
	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

// GuardStatement grants exclusive use of a Statement over the connection of
// its GuardConnection. Execute and Fetch are the only way to run a statement.
type GuardStatement struct {
	guard  *GuardConnection
	stmt   *Statement
	closed bool
}

func (gs *GuardStatement) Statement() *Statement {
	return gs.stmt
}

func (gs *GuardStatement) Guard() *GuardConnection {
	return gs.guard
}

// Execute encodes every input cell and runs the statement. A ResultCode that
// is not successful comes back with a *DatabaseError.
func (gs *GuardStatement) Execute() (ResultCode, error) {
	if err := gs.check(); err != nil {
		return ResultCode{}, err
	}
	return gs.guard.conn.execute(gs.stmt)
}

// Fetch decodes the next row into the output cells. It returns false once
// there are no more rows.
func (gs *GuardStatement) Fetch() (bool, error) {
	if err := gs.check(); err != nil {
		return false, err
	}
	return gs.stmt.fetch()
}

func (gs *GuardStatement) Input(pos int) (datatype.Abstract, error) {
	return gs.stmt.Input(pos)
}

func (gs *GuardStatement) Output(pos int) (datatype.Abstract, error) {
	return gs.stmt.Output(pos)
}

// Close releases the statement and unlinks it from its connection guard.
func (gs *GuardStatement) Close() {
	if gs.closed {
		return
	}
	gs.closed = true
	gs.guard.linked--
	gs.stmt.lock.Unlock()
}

func (gs *GuardStatement) check() error {
	if gs.closed {
		return coffee.GuardMisuseError("%s: statement guard is closed", gs.stmt.Name())
	}
	if gs.guard.closed {
		return coffee.GuardMisuseError("%s: connection guard of the statement is closed", gs.stmt.Name())
	}
	return nil
}
