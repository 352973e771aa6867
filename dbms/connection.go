package dbms

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Connection is one session with the backend. It is only driven through a
// GuardConnection; the guard holds lock for its whole life.
type Connection struct {
	db      *Database
	name    string
	params  ConnectionParameters
	backend ConnectionBackend

	lock sync.Mutex

	mu              sync.Mutex // protects the fields below
	sessionID       string
	opened          bool
	broken          bool
	commitPending   int
	rollbackPending bool
	statements      map[*Statement]struct{}
}

func newConnection(db *Database, name string, params ConnectionParameters, backend ConnectionBackend) *Connection {
	return &Connection{
		db:         db,
		name:       name,
		params:     params,
		backend:    backend,
		statements: make(map[*Statement]struct{}),
	}
}

func (c *Connection) Name() string {
	return c.name
}

func (c *Connection) Database() *Database {
	return c.db
}

func (c *Connection) Parameters() ConnectionParameters {
	return c.params
}

// Backend returns the driver side of the connection. It is meant for the
// driver's own statements and binders.
func (c *Connection) Backend() ConnectionBackend {
	return c.backend
}

// SessionID changes every time the connection is (re)opened.
func (c *Connection) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Available is false when the connection is closed, has been given up after
// a failed recovery, or the backend reports its link as down.
func (c *Connection) Available() bool {
	c.mu.Lock()
	usable := c.opened && !c.broken
	c.mu.Unlock()
	return usable && c.backend.Available()
}

func (c *Connection) CommitPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitPending
}

func (c *Connection) RollbackPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollbackPending
}

func (c *Connection) String() string {
	return fmt.Sprintf("Connection{database=%s, name=%s, session=%s}", c.db.Name(), c.name, c.SessionID())
}

func (c *Connection) open() error {
	if err := c.backend.Open(); err != nil {
		return fmt.Errorf("open connection %q: %w", c.name, err)
	}
	c.mu.Lock()
	c.opened = true
	c.broken = false
	c.commitPending = 0
	c.rollbackPending = false
	c.sessionID = uuid.Must(uuid.NewV7()).String()
	session := c.sessionID
	c.mu.Unlock()
	c.db.Info("connection opened", "connection", c.name, "session", session)
	return nil
}

func (c *Connection) close() error {
	c.mu.Lock()
	if !c.opened {
		c.mu.Unlock()
		return nil
	}
	c.opened = false
	statements := c.takeStatements()
	c.mu.Unlock()

	for _, stmt := range statements {
		stmt.invalidate(c)
	}
	if err := c.backend.Close(); err != nil {
		return fmt.Errorf("close connection %q: %w", c.name, err)
	}
	c.db.Info("connection closed", "connection", c.name)
	return nil
}

// execute runs a statement already guarded over this connection and keeps
// the transaction counters.
func (c *Connection) execute(stmt *Statement) (ResultCode, error) {
	rc, err := stmt.execute(c)
	if err != nil {
		return rc, err
	}
	success, err := rc.Successful()
	if err != nil {
		return rc, err
	}
	if success {
		c.db.Log("statement executed", "connection", c.name, "statement", stmt.Name(), "code", rc.Code())
		if stmt.RequiresCommit() {
			return rc, c.countPending()
		}
		return rc, nil
	}

	if lost, _ := rc.LostConnection(); lost {
		c.db.Warn("connection lost", "connection", c.name, "statement", stmt.Name(), "code", rc.Code())
		c.recover()
	} else if stmt.ActionOnError() == Rollback {
		c.mu.Lock()
		c.rollbackPending = true
		c.mu.Unlock()
		c.db.Warn("rollback pending", "connection", c.name, "statement", stmt.Name(), "code", rc.Code())
	}
	return rc, NewDatabaseError(stmt.Name(), rc)
}

func (c *Connection) countPending() error {
	c.mu.Lock()
	c.commitPending++
	force := c.params.MaxCommitPending > 0 && c.commitPending >= c.params.MaxCommitPending
	c.mu.Unlock()
	if !force {
		return nil
	}
	c.db.Log("auto commit", "connection", c.name, "pending", c.params.MaxCommitPending)
	return c.commit()
}

func (c *Connection) commit() error {
	c.mu.Lock()
	if c.rollbackPending {
		c.mu.Unlock()
		if err := c.rollback(); err != nil {
			return err
		}
		return fmt.Errorf("commit %q: %w", c.name, ErrRollbackPending)
	}
	pending := c.commitPending
	c.mu.Unlock()

	rc, err := c.backend.Commit()
	if err != nil {
		return fmt.Errorf("commit %q: %w", c.name, err)
	}
	success, err := rc.Successful()
	if err != nil {
		return err
	}
	if !success {
		return NewDatabaseError("commit", rc)
	}
	c.mu.Lock()
	c.commitPending = 0
	c.mu.Unlock()
	c.db.Log("committed", "connection", c.name, "pending", pending)
	return nil
}

func (c *Connection) rollback() error {
	err := c.backend.Rollback()
	c.mu.Lock()
	c.commitPending = 0
	c.rollbackPending = false
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("rollback %q: %w", c.name, err)
	}
	c.db.Warn("rolled back", "connection", c.name)
	return nil
}

// release finishes the pending work when the guard goes away.
func (c *Connection) release() error {
	c.mu.Lock()
	rollbackPending := c.rollbackPending
	commitPending := c.commitPending
	usable := c.opened && !c.broken
	c.mu.Unlock()
	switch {
	case !usable:
		return nil
	case rollbackPending:
		return c.rollback()
	case commitPending > 0:
		return c.commit()
	}
	return nil
}

// recover reopens the backend link once. A connection that can't be reopened
// is given up and reported to the database's FailRecoveryHandler.
func (c *Connection) recover() {
	c.mu.Lock()
	statements := c.takeStatements()
	c.commitPending = 0
	c.rollbackPending = false
	c.mu.Unlock()
	for _, stmt := range statements {
		stmt.invalidate(c)
	}

	closeErr := c.backend.Close()
	if err := c.open(); err != nil {
		c.mu.Lock()
		c.broken = true
		c.mu.Unlock()
		c.db.Error("connection can not be recovered", "connection", c.name, "error", errors.Join(closeErr, err))
		c.db.notifyRecoveryFail(c)
	}
}

func (c *Connection) attach(stmt *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements[stmt] = struct{}{}
}

func (c *Connection) detach(stmt *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statements, stmt)
}

// takeStatements must be called with mu held.
func (c *Connection) takeStatements() []*Statement {
	statements := make([]*Statement, 0, len(c.statements))
	for stmt := range c.statements {
		statements = append(statements, stmt)
	}
	c.statements = make(map[*Statement]struct{})
	return statements
}
