package dbms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/dbms/mock"
)

func TestCommitOnRelease(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	stmt := updateStatement(t, db, "update", dbms.StatementParameters{RequiresCommit: true})

	err := dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		for i := 0; i < 3; i++ {
			err := gc.WithStatement(stmt, func(gs *dbms.GuardStatement) error {
				_, err := gs.Execute()
				return err
			})
			if err != nil {
				return err
			}
		}
		assert.Equal(t, 3, gc.CommitPending())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, conn.CommitPending())
	assert.Equal(t, 1, driver.Connection("main").Commits())
}

func TestStatementsWithoutCommitLeaveNothingPending(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	stmt := updateStatement(t, db, "update", dbms.StatementParameters{})

	require.NoError(t, run(conn, stmt))
	assert.Equal(t, 0, driver.Connection("main").Commits())
}

func TestAutoCommitThreshold(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{MaxCommitPending: 2})
	stmt := updateStatement(t, db, "update", dbms.StatementParameters{RequiresCommit: true})

	err := dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		return gc.WithStatement(stmt, func(gs *dbms.GuardStatement) error {
			for i := 0; i < 5; i++ {
				if _, err := gs.Execute(); err != nil {
					return err
				}
			}
			assert.Equal(t, 1, conn.CommitPending())
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 3, driver.Connection("main").Commits(), "two forced commits and one on release")
}

func TestFailureMarksRollback(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	update := updateStatement(t, db, "update", dbms.StatementParameters{RequiresCommit: true})
	fail := newStatement(t, db, "fail", failCommand, dbms.StatementParameters{})

	err := dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		require.NoError(t, gc.WithStatement(update, func(gs *dbms.GuardStatement) error {
			_, err := gs.Execute()
			return err
		}))
		err := gc.WithStatement(fail, func(gs *dbms.GuardStatement) error {
			rc, err := gs.Execute()
			assert.Equal(t, mock.Failure, rc.Code())
			return err
		})
		var dbErr *dbms.DatabaseError
		assert.ErrorAs(t, err, &dbErr)
		assert.True(t, conn.RollbackPending())

		assert.ErrorIs(t, gc.Commit(), dbms.ErrRollbackPending)
		assert.False(t, conn.RollbackPending())
		assert.Equal(t, 0, gc.CommitPending())
		return nil
	})
	require.NoError(t, err)
	backend := driver.Connection("main")
	assert.Equal(t, 1, backend.Rollbacks())
	assert.Equal(t, 0, backend.Commits())
}

func TestRollbackOnRelease(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	fail := newStatement(t, db, "fail", failCommand, dbms.StatementParameters{})

	assert.Error(t, run(conn, fail))
	assert.False(t, conn.RollbackPending())
	assert.Equal(t, 1, driver.Connection("main").Rollbacks())
}

func TestIgnoredFailure(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	fail := newStatement(t, db, "fail", failCommand, dbms.StatementParameters{ActionOnError: dbms.Ignore})

	assert.Error(t, run(conn, fail))
	assert.Equal(t, 0, driver.Connection("main").Rollbacks())
}

func TestFailedCommit(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	stmt := updateStatement(t, db, "update", dbms.StatementParameters{RequiresCommit: true})
	driver.SetCommitCode(mock.Locked)

	err := run(conn, stmt)
	require.Error(t, err)
	assert.True(t, dbms.IsLocked(err))
	assert.Equal(t, 1, conn.CommitPending(), "the work is still pending")

	driver.SetCommitCode(mock.Success)
	err = dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		return gc.Commit()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, driver.Connection("main").Commits())
}

func TestLostConnectionIsRecovered(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	session := conn.SessionID()
	lost := newStatement(t, db, "lost", lostCommand, dbms.StatementParameters{})
	echo, in, _ := echoStatement(t, db, "echo")
	in.SetValue(1)
	require.NoError(t, run(conn, echo))

	err := run(conn, lost)
	require.Error(t, err)
	assert.True(t, dbms.IsLostConnection(err))
	assert.True(t, conn.Available())
	assert.NotEqual(t, session, conn.SessionID())
	assert.Equal(t, 2, driver.Connection("main").Opens())
	assert.Nil(t, echo.PreparedOn(), "preparations of the old session are dropped")
	assert.Equal(t, dbms.Unprepared, echo.State())

	require.NoError(t, run(conn, echo))
	assert.Same(t, conn, echo.PreparedOn())
}

func TestFailedRecoveryCallsHandler(t *testing.T) {
	db, driver := newDatabase(t)
	conn := newConnection(t, db, "main", dbms.ConnectionParameters{})
	lost := newStatement(t, db, "lost", lostCommand, dbms.StatementParameters{})

	var failed []*dbms.Connection
	db.SetFailRecoveryHandler(dbms.FailRecoveryHandlerFunc(func(c *dbms.Connection) error {
		failed = append(failed, c)
		return nil
	}))
	driver.Connection("main").FailOpen(true)

	err := run(conn, lost)
	assert.True(t, dbms.IsLostConnection(err))
	require.Len(t, failed, 1)
	assert.Same(t, conn, failed[0])
	assert.False(t, conn.Available())

	_, err = dbms.NewGuardConnection(conn)
	assert.ErrorIs(t, err, coffee.ErrGuardMisuse)
}
