package dbms_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/dbms/mock"
)

const (
	echoCommand   = "SELECT ?"
	rowsCommand   = "SELECT id, name FROM rows"
	updateCommand = "UPDATE t SET v=?"
	failCommand   = "UPDATE broken"
	lostCommand   = "UPDATE far away"
)

var testRows = [][]any{
	{int64(1), "one"},
	{int64(2), "two"},
	{int64(3), nil},
}

func newDatabase(t *testing.T) (*dbms.Database, *mock.Driver) {
	t.Helper()
	driver := mock.NewDriver()
	driver.Handle(echoCommand, 1, 1, func(inputs []any) ([][]any, int) {
		return [][]any{{inputs[0]}}, mock.Success
	})
	driver.Handle(rowsCommand, 0, 2, func([]any) ([][]any, int) {
		return testRows, mock.Success
	})
	driver.Handle(updateCommand, 1, 0, func([]any) ([][]any, int) {
		return nil, mock.Success
	})
	driver.Handle(failCommand, 0, 0, func([]any) ([][]any, int) {
		return nil, mock.Failure
	})
	driver.Handle(lostCommand, 0, 0, func([]any) ([][]any, int) {
		return nil, mock.LostConnection
	})
	db := dbms.NewDatabase("test", driver)
	t.Cleanup(func() { db.Close() })
	return db, driver
}

func newConnection(t *testing.T, db *dbms.Database, name string, params dbms.ConnectionParameters) *dbms.Connection {
	t.Helper()
	conn, err := db.CreateConnection(name, params)
	require.NoError(t, err)
	return conn
}

func newStatement(t *testing.T, db *dbms.Database, name, expression string, params dbms.StatementParameters) *dbms.Statement {
	t.Helper()
	stmt, err := db.CreateStatement(name, expression, params)
	require.NoError(t, err)
	return stmt
}

// echoStatement selects back the value of its integer input.
func echoStatement(t *testing.T, db *dbms.Database, name string) (*dbms.Statement, *datatype.Integer, *datatype.Integer) {
	t.Helper()
	stmt := newStatement(t, db, name, echoCommand, dbms.StatementParameters{})
	in := datatype.NewInteger("in", datatype.CanNotBeNull)
	out := datatype.NewInteger("out", datatype.CanBeNull)
	require.NoError(t, stmt.BindInput(in))
	require.NoError(t, stmt.BindOutput(out))
	return stmt, in, out
}

func updateStatement(t *testing.T, db *dbms.Database, name string, params dbms.StatementParameters) *dbms.Statement {
	t.Helper()
	stmt := newStatement(t, db, name, updateCommand, params)
	require.NoError(t, stmt.BindInput(datatype.NewInteger("v", datatype.CanNotBeNull)))
	return stmt
}

// run executes stmt once under a fresh guard pair.
func run(conn *dbms.Connection, stmt *dbms.Statement) error {
	return dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		return gc.WithStatement(stmt, func(gs *dbms.GuardStatement) error {
			_, err := gs.Execute()
			return err
		})
	})
}
