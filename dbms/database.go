// Package dbms is the backend independent statement/connection protocol.
//
// A Database owns Connections and Statements created through a Driver. A
// Connection is only used through a GuardConnection, and a Statement only
// through a GuardStatement derived from a live GuardConnection:
//
//	err := dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
//	    return gc.WithStatement(stmt, func(gs *dbms.GuardStatement) error {
//	        if _, err := gs.Execute(); err != nil {
//	            return err
//	        }
//	        for {
//	            found, err := gs.Fetch()
//	            if err != nil || !found {
//	                return err
//	            }
//	            // read the output cells
//	        }
//	    })
//	})
//
// Guards are always taken connection first and released statement first.
package dbms

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ciscoruiz/coffee-sub002"
)

type Database struct {
	coffee.OptionalLogger
	mu              sync.Mutex
	name            string
	driver          Driver
	connections     map[string]*Connection
	statements      map[string]*Statement
	recoveryHandler FailRecoveryHandler
	closed          bool
}

// Use this func for creating new instances of Database.
func NewDatabase(name string, driver Driver) *Database {
	db := &Database{
		name:        name,
		driver:      driver,
		connections: make(map[string]*Connection),
		statements:  make(map[string]*Statement),
	}
	db.LogPrefix = "Database(" + name + ")"
	return db
}

func (db *Database) Name() string {
	return db.name
}

func (db *Database) Driver() Driver {
	return db.driver
}

// NewResultCode builds a ResultCode classified by this database's driver.
func (db *Database) NewResultCode(code int, message string) ResultCode {
	return NewResultCode(db.driver, code, message)
}

func (db *Database) SetFailRecoveryHandler(h FailRecoveryHandler) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.recoveryHandler = h
}

// CreateConnection allocates a connection through the driver and opens it.
// Names are unique per database.
func (db *Database) CreateConnection(name string, params ConnectionParameters) (*Connection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	if _, exists := db.connections[name]; exists {
		return nil, coffee.ConfigurationError("%s: connection %q already defined", db.name, name)
	}
	backend, err := db.driver.NewConnection(db, name, params)
	if err != nil {
		return nil, fmt.Errorf("allocate connection %q: %w", name, err)
	}
	conn := newConnection(db, name, params, backend)
	if err := conn.open(); err != nil {
		return nil, err
	}
	db.connections[name] = conn
	return conn, nil
}

func (db *Database) FindConnection(name string) (*Connection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	conn, found := db.connections[name]
	if !found {
		return nil, fmt.Errorf("%s: %w: %s", db.name, ErrConnectionNotFound, name)
	}
	return conn, nil
}

// CreateStatement allocates a statement through the driver. The statement is
// prepared lazily, the first time it is guarded over a connection.
func (db *Database) CreateStatement(name, expression string, params StatementParameters) (*Statement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	if _, exists := db.statements[name]; exists {
		return nil, coffee.ConfigurationError("%s: statement %q already defined", db.name, name)
	}
	backend, err := db.driver.NewStatement(db, name, expression, params)
	if err != nil {
		return nil, fmt.Errorf("allocate statement %q: %w", name, err)
	}
	stmt := newStatement(db, name, expression, params, backend)
	db.statements[name] = stmt
	db.Log("statement created", "statement", name)
	return stmt, nil
}

func (db *Database) FindStatement(name string) (*Statement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	stmt, found := db.statements[name]
	if !found {
		return nil, fmt.Errorf("%s: %w: %s", db.name, ErrStatementNotFound, name)
	}
	return stmt, nil
}

// Close closes every statement and then every connection.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	statements := db.statements
	connections := db.connections
	db.mu.Unlock()

	var errs []error
	for _, stmt := range statements {
		if err := stmt.close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, conn := range connections {
		if err := conn.close(); err != nil {
			errs = append(errs, err)
		}
	}
	db.Info("database closed", "connections", len(connections), "statements", len(statements))
	return errors.Join(errs...)
}

func (db *Database) notifyRecoveryFail(conn *Connection) {
	db.mu.Lock()
	h := db.recoveryHandler
	db.mu.Unlock()
	if h == nil {
		return
	}
	if err := h.Apply(conn); err != nil {
		db.Error("fail recovery handler", "connection", conn.Name(), "error", err)
	}
}
