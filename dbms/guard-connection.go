package dbms

import (
	"fmt"

	"github.com/ciscoruiz/coffee-sub002"
)

// GuardConnection grants exclusive use of a Connection until Close. It is
// the only way to act on a connection.
type GuardConnection struct {
	conn   *Connection
	linked int
	closed bool
}

// NewGuardConnection fails at once if the connection is not available;
// otherwise it waits until no other guard holds the connection.
func NewGuardConnection(conn *Connection) (*GuardConnection, error) {
	if conn == nil {
		return nil, coffee.GuardMisuseError("guard over a nil connection")
	}
	if !conn.Available() {
		return nil, coffee.GuardMisuseError("%s: connection is not available", conn.Name())
	}
	conn.lock.Lock()
	if !conn.Available() {
		conn.lock.Unlock()
		return nil, coffee.GuardMisuseError("%s: connection is not available", conn.Name())
	}
	return &GuardConnection{conn: conn}, nil
}

// WithConnection runs fn under a GuardConnection that is closed on every exit
// path. The error of fn wins over the one of Close.
func WithConnection(conn *Connection, fn func(gc *GuardConnection) error) (err error) {
	gc, err := NewGuardConnection(conn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := gc.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(gc)
}

func (g *GuardConnection) Connection() *Connection {
	return g.conn
}

// LinkedStatements is the number of live GuardStatements derived from g.
func (g *GuardConnection) LinkedStatements() int {
	return g.linked
}

func (g *GuardConnection) CommitPending() int {
	return g.conn.CommitPending()
}

func (g *GuardConnection) Commit() error {
	if err := g.check(); err != nil {
		return err
	}
	return g.conn.commit()
}

func (g *GuardConnection) Rollback() error {
	if err := g.check(); err != nil {
		return err
	}
	return g.conn.rollback()
}

// NewStatement guards stmt over this connection, preparing it if needed.
// The returned guard must be closed before g.
func (g *GuardConnection) NewStatement(stmt *Statement) (*GuardStatement, error) {
	if err := g.check(); err != nil {
		return nil, err
	}
	if !g.conn.Available() {
		return nil, coffee.GuardMisuseError("%s: connection is not available", g.conn.Name())
	}
	if stmt == nil {
		return nil, coffee.GuardMisuseError("%s: guard over a nil statement", g.conn.Name())
	}
	if stmt.Database() != g.conn.Database() {
		return nil, coffee.GuardMisuseError("%s: statement %q belongs to database %s", g.conn.Name(), stmt.Name(), stmt.Database().Name())
	}

	stmt.lock.Lock()
	if err := stmt.prepareOn(g.conn); err != nil {
		stmt.lock.Unlock()
		return nil, err
	}
	g.linked++
	return &GuardStatement{guard: g, stmt: stmt}, nil
}

// WithStatement runs fn under a GuardStatement that is closed on every exit
// path.
func (g *GuardConnection) WithStatement(stmt *Statement, fn func(gs *GuardStatement) error) error {
	gs, err := g.NewStatement(stmt)
	if err != nil {
		return err
	}
	defer gs.Close()
	return fn(gs)
}

// Close finishes the pending work of the connection (rollback if one is
// pending, commit otherwise) and releases it. Closing a guard that still has
// linked statement guards is a programming error and panics.
func (g *GuardConnection) Close() error {
	if g.closed {
		return nil
	}
	if g.linked != 0 {
		linked := g.linked
		g.closed = true
		g.conn.lock.Unlock()
		g.conn.db.Error("guard closed with live statements", "connection", g.conn.Name(), "linked", linked)
		panic(coffee.GuardMisuseError("%s: connection guard closed with %d live statement guards", g.conn.Name(), linked))
	}
	g.closed = true
	err := g.conn.release()
	g.conn.lock.Unlock()
	if err != nil {
		return fmt.Errorf("release %q: %w", g.conn.Name(), err)
	}
	return nil
}

func (g *GuardConnection) check() error {
	if g.closed {
		return coffee.GuardMisuseError("%s: connection guard is closed", g.conn.Name())
	}
	return nil
}
