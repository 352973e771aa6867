package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

// Connection is the SQLite side of a dbms.Connection.
type Connection struct {
	driver *Driver
	db     *dbms.Database
	name   string

	mu   sync.Mutex
	conn *sql.Conn
	tx   *sql.Tx
	lost bool
}

func (c *Connection) Open() error {
	conn, err := c.driver.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("sqlite: connection %q: %w", c.name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.tx = nil
	c.lost = false
	return nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	var errs []error
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		c.tx = nil
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, err)
	}
	c.conn = nil
	return errors.Join(errs...)
}

func (c *Connection) Commit() (dbms.ResultCode, error) {
	c.mu.Lock()
	tx := c.tx
	c.tx = nil
	c.mu.Unlock()
	if tx == nil {
		return c.db.NewResultCode(codeOK, "nothing to commit"), nil
	}
	return c.resultOf(tx.Commit(), "commit")
}

func (c *Connection) Rollback() error {
	c.mu.Lock()
	tx := c.tx
	c.tx = nil
	c.mu.Unlock()
	if tx == nil {
		return nil
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("sqlite: rollback %q: %w", c.name, err)
	}
	return nil
}

func (c *Connection) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.lost
}

// InTransaction reports whether work is waiting for a commit.
func (c *Connection) InTransaction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx != nil
}

// describe prepares query on the raw driver connection to learn how many
// parameters and result columns it has. Nothing is executed.
func (c *Connection) describe(query string) (params, columns int, err error) {
	conn, err := c.sqlConn()
	if err != nil {
		return 0, 0, err
	}
	err = conn.Raw(func(dc any) error {
		raw, ok := dc.(driver.Conn)
		if !ok {
			return coffee.ConfigurationError("sqlite: unexpected driver connection %T", dc)
		}
		stmt, err := raw.Prepare(query)
		if err != nil {
			return err
		}
		defer stmt.Close()
		params = stmt.NumInput()
		querier, ok := stmt.(driver.StmtQueryContext)
		if !ok {
			return coffee.ConfigurationError("sqlite: statement %T can not describe its columns", stmt)
		}
		rows, err := querier.QueryContext(context.Background(), nullArgs(params))
		if err != nil {
			return err
		}
		columns = len(rows.Columns())
		return rows.Close()
	})
	return params, columns, err
}

// exec runs query inside the open transaction, if any. A transactional
// query opens one first.
func (c *Connection) exec(query string, transactional bool, args []any) error {
	ctx := context.Background()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return sql.ErrConnDone
	}
	if transactional && c.tx == nil {
		tx, err := c.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		c.tx = tx
	}
	var err error
	if c.tx != nil {
		_, err = c.tx.ExecContext(ctx, query, args...)
	} else {
		_, err = c.conn.ExecContext(ctx, query, args...)
	}
	return err
}

// query runs query and reads every row.
func (c *Connection) query(query string, columns int, args []any) ([][]any, error) {
	ctx := context.Background()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, sql.ErrConnDone
	}
	var rows *sql.Rows
	var err error
	if c.tx != nil {
		rows, err = c.tx.QueryContext(ctx, query, args...)
	} else {
		rows, err = c.conn.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() {
		values := make([]any, columns)
		dest := make([]any, columns)
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, values)
	}
	return result, rows.Err()
}

// resultOf turns an SQLite error into its result code. A broken link is
// reported as SQLITE_IOERR, so the connection gets recovered; any other
// error is returned as is.
func (c *Connection) resultOf(err error, message string) (dbms.ResultCode, error) {
	if err == nil {
		return c.db.NewResultCode(codeOK, message), nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return c.db.NewResultCode(int(serr.Code), serr.Error()), nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		c.mu.Lock()
		c.lost = true
		c.mu.Unlock()
		return c.db.NewResultCode(int(sqlite3.ErrIoErr), err.Error()), nil
	}
	return dbms.ResultCode{}, err
}

func (c *Connection) sqlConn() (*sql.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, sql.ErrConnDone
	}
	return c.conn, nil
}

func nullArgs(n int) []driver.NamedValue {
	args := make([]driver.NamedValue, n)
	for i := range args {
		args[i] = driver.NamedValue{Ordinal: i + 1}
	}
	return args
}

func backendOf(conn *dbms.Connection) (*Connection, error) {
	backend, ok := conn.Backend().(*Connection)
	if !ok {
		return nil, coffee.ConfigurationError("sqlite: connection %q is not an sqlite connection", conn.Name())
	}
	return backend, nil
}
