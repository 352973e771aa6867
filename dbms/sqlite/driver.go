// Package sqlite is the SQLite backend driver, built on database/sql and
// github.com/mattn/go-sqlite3.
//
// Every dbms.Connection holds its own *sql.Conn out of the driver's pool.
// Statements that require a commit open a transaction on that connection;
// the transaction ends with the next commit or rollback. Query results are
// read in full at execute time, so no cursor outlives its statement guard.
//
// An in-memory DSN gives every connection its own database; use a file (or
// a shared-cache URI) when more than one connection is needed.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// SQLite primary result codes that mean success. Failures use the values of
// sqlite3.ErrNo.
const (
	codeOK   = 0
	codeRow  = 100
	codeDone = 101
)

// Interpreter classifies SQLite primary result codes.
type Interpreter struct{}

func (Interpreter) Successful(code int) bool {
	return code == codeOK || code == codeRow || code == codeDone
}

func (Interpreter) NotFound(code int) bool {
	return sqlite3.ErrNo(code) == sqlite3.ErrNotFound
}

func (Interpreter) Locked(code int) bool {
	c := sqlite3.ErrNo(code)
	return c == sqlite3.ErrBusy || c == sqlite3.ErrLocked
}

func (Interpreter) LostConnection(code int) bool {
	c := sqlite3.ErrNo(code)
	return c == sqlite3.ErrIoErr || c == sqlite3.ErrCantOpen
}

type Driver struct {
	Interpreter
	db *sql.DB
}

var _ dbms.Driver = (*Driver)(nil)

// Open opens (creating it if needed) the SQLite database at dsn.
func Open(dsn string) (*Driver, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	return NewDriver(db), nil
}

// NewDriver uses an already opened pool.
func NewDriver(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// OpenDatabase opens the driver for cfg and creates the database with every
// configured connection.
func OpenDatabase(cfg *dbms.Config) (*dbms.Database, *Driver, error) {
	if cfg.Driver != "sqlite" && cfg.Driver != DriverName {
		return nil, nil, coffee.ConfigurationError("driver %q is not sqlite", cfg.Driver)
	}
	driver, err := Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	db := dbms.NewDatabase(cfg.Name, driver)
	if err := db.CreateConnections(cfg); err != nil {
		db.Close()
		driver.Close()
		return nil, nil, err
	}
	return db, driver, nil
}

// DB returns the underlying pool, for migrations and maintenance.
func (d *Driver) DB() *sql.DB {
	return d.db
}

func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) NewConnection(db *dbms.Database, name string, params dbms.ConnectionParameters) (dbms.ConnectionBackend, error) {
	return &Connection{driver: d, db: db, name: name}, nil
}

func (d *Driver) NewStatement(db *dbms.Database, name, expression string, params dbms.StatementParameters) (dbms.StatementBackend, error) {
	if expression == "" {
		return nil, coffee.ConfigurationError("sqlite: statement %q without expression", name)
	}
	return &Statement{name: name, expression: expression, params: params}, nil
}

func (d *Driver) NewInputBinder(cell datatype.Abstract) dbms.InputBinder {
	return &InputBinder{cell: cell}
}

func (d *Driver) NewOutputBinder(cell datatype.Abstract) dbms.OutputBinder {
	return &OutputBinder{cell: cell}
}
