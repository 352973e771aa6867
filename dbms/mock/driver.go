// Package mock is an in-memory backend driver. Commands are looked up by
// their expression and answered by Go handlers, so tests can script any
// backend behaviour: result rows, error codes, lost links, failing commits.
package mock

import (
	"fmt"
	"sync"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

// Numeric codes understood by Interpreter.
const (
	Success        = 0
	NotFound       = 100
	Locked         = 200
	LostConnection = 300
	Failure        = 400
)

type Interpreter struct{}

func (Interpreter) Successful(code int) bool { return code == Success }
func (Interpreter) NotFound(code int) bool { return code == NotFound }
func (Interpreter) Locked(code int) bool { return code == Locked }
func (Interpreter) LostConnection(code int) bool { return code == LostConnection }

// Handler answers one execution. inputs holds the encoded parameters in
// declaration order; every row must have as many values as the command has
// columns.
type Handler func(inputs []any) (rows [][]any, code int)

type command struct {
	params  int
	columns int
	handler Handler
}

type Driver struct {
	Interpreter
	mu          sync.Mutex
	commands    map[string]*command
	executions  map[string]int
	connections map[string]*Connection
	commitCode  int
}

var _ dbms.Driver = (*Driver)(nil)

func NewDriver() *Driver {
	return &Driver{
		commands:    make(map[string]*command),
		executions:  make(map[string]int),
		connections: make(map[string]*Connection),
	}
}

// Handle registers the command answered by h. params and columns are what
// the driver reports at prepare time.
func (d *Driver) Handle(expression string, params, columns int, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands[expression] = &command{params: params, columns: columns, handler: h}
}

// Executions returns how many times the command has been executed.
func (d *Driver) Executions(expression string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.executions[expression]
}

// Connection returns the backend of the named connection, or nil.
func (d *Driver) Connection(name string) *Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connections[name]
}

// SetCommitCode makes every following commit answer with code.
func (d *Driver) SetCommitCode(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commitCode = code
}

func (d *Driver) NewConnection(db *dbms.Database, name string, params dbms.ConnectionParameters) (dbms.ConnectionBackend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := &Connection{driver: d, name: name, available: true}
	d.connections[name] = conn
	return conn, nil
}

func (d *Driver) NewStatement(db *dbms.Database, name, expression string, params dbms.StatementParameters) (dbms.StatementBackend, error) {
	return &Statement{driver: d, db: db, expression: expression}, nil
}

func (d *Driver) NewInputBinder(cell datatype.Abstract) dbms.InputBinder {
	return &InputBinder{cell: cell}
}

func (d *Driver) NewOutputBinder(cell datatype.Abstract) dbms.OutputBinder {
	return &OutputBinder{cell: cell}
}

func (d *Driver) lookup(expression string) (*command, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cmd, found := d.commands[expression]
	if !found {
		return nil, coffee.ConfigurationError("mock: no handler for %q", expression)
	}
	return cmd, nil
}

func (d *Driver) executed(expression string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executions[expression]++
}

func (d *Driver) currentCommitCode() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commitCode
}

// Connection is the mock side of a dbms.Connection.
type Connection struct {
	driver    *Driver
	mu        sync.Mutex
	name      string
	opened    bool
	available bool
	failOpen  bool
	opens     int
	commits   int
	rollbacks int
}

func (c *Connection) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOpen {
		return fmt.Errorf("mock: connection %q can not be opened", c.name)
	}
	c.opened = true
	c.available = true
	c.opens++
	return nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = false
	return nil
}

func (c *Connection) Commit() (dbms.ResultCode, error) {
	code := c.driver.currentCommitCode()
	c.mu.Lock()
	defer c.mu.Unlock()
	if code == Success {
		c.commits++
	}
	return dbms.NewResultCode(c.driver, code, "commit"), nil
}

func (c *Connection) Rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollbacks++
	return nil
}

func (c *Connection) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened && c.available
}

// SetAvailable simulates a dropped (false) or restored (true) backend link.
func (c *Connection) SetAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = available
}

// FailOpen makes the following opens fail.
func (c *Connection) FailOpen(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOpen = fail
}

func (c *Connection) Opens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

func (c *Connection) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

func (c *Connection) Rollbacks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollbacks
}

// Statement is the mock side of a dbms.Statement.
type Statement struct {
	driver     *Driver
	db         *dbms.Database
	expression string
	cmd        *command
	args       []any
	rows       [][]any
	cursor     int
}

func (s *Statement) Prepare(conn *dbms.Connection) (int, int, error) {
	cmd, err := s.driver.lookup(s.expression)
	if err != nil {
		return 0, 0, err
	}
	s.cmd = cmd
	s.args = make([]any, cmd.params)
	return cmd.params, cmd.columns, nil
}

func (s *Statement) Execute(conn *dbms.Connection) (dbms.ResultCode, error) {
	s.rows = nil
	s.cursor = 0
	if !conn.Backend().Available() {
		return s.db.NewResultCode(LostConnection, "mock: connection lost"), nil
	}
	s.driver.executed(s.expression)
	inputs := make([]any, len(s.args))
	copy(inputs, s.args)
	rows, code := s.cmd.handler(inputs)
	for _, row := range rows {
		if len(row) != s.cmd.columns {
			return dbms.ResultCode{}, fmt.Errorf("mock: %q returned %d values for %d columns", s.expression, len(row), s.cmd.columns)
		}
	}
	s.rows = rows
	return s.db.NewResultCode(code, s.expression), nil
}

func (s *Statement) Fetch() (bool, error) {
	if s.cursor >= len(s.rows) {
		return false, nil
	}
	s.cursor++
	return true, nil
}

func (s *Statement) Close() error {
	s.rows = nil
	s.args = nil
	return nil
}

func (s *Statement) current(pos int) (any, error) {
	if s.cursor == 0 || s.cursor > len(s.rows) {
		return nil, coffee.GuardMisuseError("mock: %q has no current row", s.expression)
	}
	return s.rows[s.cursor-1][pos], nil
}

type InputBinder struct {
	cell datatype.Abstract
}

func (b *InputBinder) Cell() datatype.Abstract { return b.cell }
func (b *InputBinder) Prepare(stmt *dbms.Statement, pos int) error { return nil }
func (b *InputBinder) Release(stmt *dbms.Statement) {}

func (b *InputBinder) Encode(stmt *dbms.Statement, pos int) error {
	backend, ok := stmt.Backend().(*Statement)
	if !ok {
		return coffee.ConfigurationError("mock: statement %q is not a mock statement", stmt.Name())
	}
	value, err := Value(b.cell)
	if err != nil {
		return err
	}
	backend.args[pos] = value
	return nil
}

type OutputBinder struct {
	cell datatype.Abstract
}

func (b *OutputBinder) Cell() datatype.Abstract { return b.cell }
func (b *OutputBinder) Prepare(stmt *dbms.Statement, pos int) error { return nil }
func (b *OutputBinder) Release(stmt *dbms.Statement) {}

func (b *OutputBinder) Decode(stmt *dbms.Statement, pos int) error {
	backend, ok := stmt.Backend().(*Statement)
	if !ok {
		return coffee.ConfigurationError("mock: statement %q is not a mock statement", stmt.Name())
	}
	value, err := backend.current(pos)
	if err != nil {
		return err
	}
	return Assign(b.cell, value)
}
