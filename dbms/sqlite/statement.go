package sqlite

import (
	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

// Statement is the SQLite side of a dbms.Statement.
type Statement struct {
	name       string
	expression string
	params     dbms.StatementParameters

	columns int
	args    []any
	rows    [][]any
	cursor  int
}

func (s *Statement) Prepare(conn *dbms.Connection) (int, int, error) {
	backend, err := backendOf(conn)
	if err != nil {
		return 0, 0, err
	}
	s.reset()
	params, columns, err := backend.describe(s.expression)
	if err != nil {
		return 0, 0, err
	}
	s.columns = columns
	s.args = make([]any, params)
	return params, columns, nil
}

// Execute runs the expression with the encoded arguments. A query is read in
// full before returning.
func (s *Statement) Execute(conn *dbms.Connection) (dbms.ResultCode, error) {
	backend, err := backendOf(conn)
	if err != nil {
		return dbms.ResultCode{}, err
	}
	s.rows = nil
	s.cursor = 0
	if s.columns > 0 {
		rows, err := backend.query(s.expression, s.columns, s.args)
		if err != nil {
			return backend.resultOf(err, s.name)
		}
		s.rows = rows
		return backend.resultOf(nil, s.name)
	}
	return backend.resultOf(backend.exec(s.expression, s.params.RequiresCommit, s.args), s.name)
}

func (s *Statement) Fetch() (bool, error) {
	if s.cursor >= len(s.rows) {
		return false, nil
	}
	s.cursor++
	return true, nil
}

func (s *Statement) Close() error {
	s.reset()
	return nil
}

func (s *Statement) reset() {
	s.rows = nil
	s.cursor = 0
	s.args = nil
}

func (s *Statement) current(pos int) (any, error) {
	if s.cursor == 0 || s.cursor > len(s.rows) {
		return nil, coffee.GuardMisuseError("sqlite: %s has no current row", s.name)
	}
	return s.rows[s.cursor-1][pos], nil
}

func (s *Statement) bind(pos int, value any) error {
	if pos < 0 || pos >= len(s.args) {
		return coffee.GuardMisuseError("sqlite: %s has no parameter %d", s.name, pos)
	}
	s.args[pos] = value
	return nil
}

func statementOf(stmt *dbms.Statement) (*Statement, error) {
	backend, ok := stmt.Backend().(*Statement)
	if !ok {
		return nil, coffee.ConfigurationError("sqlite: statement %q is not an sqlite statement", stmt.Name())
	}
	return backend, nil
}
