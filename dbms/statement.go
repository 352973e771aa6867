package dbms

import (
	"fmt"
	"sync"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

type StatementState int

const (
	Unprepared StatementState = iota
	Prepared
	Executed
	Fetching
	Closed
)

func (s StatementState) String() string {
	switch s {
	case Unprepared:
		return "Unprepared"
	case Prepared:
		return "Prepared"
	case Executed:
		return "Executed"
	case Fetching:
		return "Fetching"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Statement is an ordered list of input and output binders attached to one
// backend command. Binders are declared before the first use; afterwards the
// statement runs only through a GuardStatement.
type Statement struct {
	db         *Database
	name       string
	expression string
	params     StatementParameters
	backend    StatementBackend

	lock sync.Mutex // held by the GuardStatement

	mu         sync.Mutex // protects the fields below
	inputs     []InputBinder
	outputs    []OutputBinder
	state      StatementState
	preparedOn *Connection
}

func newStatement(db *Database, name, expression string, params StatementParameters, backend StatementBackend) *Statement {
	return &Statement{
		db:         db,
		name:       name,
		expression: expression,
		params:     params,
		backend:    backend,
	}
}

func (s *Statement) Name() string {
	return s.name
}

func (s *Statement) Expression() string {
	return s.expression
}

func (s *Statement) Database() *Database {
	return s.db
}

// Backend returns the driver side of the statement, for the driver's binders.
func (s *Statement) Backend() StatementBackend {
	return s.backend
}

func (s *Statement) RequiresCommit() bool {
	return s.params.RequiresCommit
}

func (s *Statement) ActionOnError() ActionOnError {
	return s.params.ActionOnError
}

func (s *Statement) State() StatementState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PreparedOn returns the connection the statement is prepared against, or nil.
func (s *Statement) PreparedOn() *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preparedOn
}

// BindInput declares the next positional parameter. The binder is allocated
// by the database's driver.
func (s *Statement) BindInput(cell datatype.Abstract) error {
	if cell == nil {
		return coffee.ConfigurationError("%s: input data can not be nil", s.name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unprepared || s.preparedOn != nil {
		return coffee.ConfigurationError("%s: binders must be declared before the first use", s.name)
	}
	s.inputs = append(s.inputs, s.db.driver.NewInputBinder(cell))
	return nil
}

// BindOutput declares the next result column.
func (s *Statement) BindOutput(cell datatype.Abstract) error {
	if cell == nil {
		return coffee.ConfigurationError("%s: output data can not be nil", s.name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unprepared || s.preparedOn != nil {
		return coffee.ConfigurationError("%s: binders must be declared before the first use", s.name)
	}
	s.outputs = append(s.outputs, s.db.driver.NewOutputBinder(cell))
	return nil
}

func (s *Statement) InputSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

func (s *Statement) OutputSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outputs)
}

// Input returns the data cell bound to the parameter at pos.
func (s *Statement) Input(pos int) (datatype.Abstract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < 0 || pos >= len(s.inputs) {
		return nil, coffee.InvalidDataError("%s: input %d out of range [0,%d)", s.name, pos, len(s.inputs))
	}
	return s.inputs[pos].Cell(), nil
}

// Output returns the data cell bound to the column at pos.
func (s *Statement) Output(pos int) (datatype.Abstract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < 0 || pos >= len(s.outputs) {
		return nil, coffee.InvalidDataError("%s: output %d out of range [0,%d)", s.name, pos, len(s.outputs))
	}
	return s.outputs[pos].Cell(), nil
}

func (s *Statement) String() string {
	return fmt.Sprintf("Statement{name=%s, state=%s, inputs=%d, outputs=%d}", s.name, s.State(), s.InputSize(), s.OutputSize())
}

// prepareOn prepares the statement against conn unless it already is. A
// preparation against another connection is dropped first.
func (s *Statement) prepareOn(conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return coffee.GuardMisuseError("%s: statement is closed", s.name)
	}
	if s.preparedOn == conn && s.state != Unprepared {
		return nil
	}
	if previous := s.preparedOn; previous != nil {
		s.releaseBinders()
		previous.detach(s)
		s.preparedOn = nil
		s.state = Unprepared
	}

	params, columns, err := s.backend.Prepare(conn)
	if err != nil {
		return fmt.Errorf("prepare %q: %w", s.name, err)
	}
	if params != len(s.inputs) {
		return coffee.ConfigurationError("%s: backend reports %d parameters but %d input binders are declared", s.name, params, len(s.inputs))
	}
	if columns != len(s.outputs) {
		return coffee.ConfigurationError("%s: backend reports %d columns but %d output binders are declared", s.name, columns, len(s.outputs))
	}
	for pos, binder := range s.inputs {
		if err := binder.Prepare(s, pos); err != nil {
			s.releaseBinders()
			return fmt.Errorf("prepare %q input %d: %w", s.name, pos, err)
		}
	}
	for pos, binder := range s.outputs {
		if err := binder.Prepare(s, pos); err != nil {
			s.releaseBinders()
			return fmt.Errorf("prepare %q output %d: %w", s.name, pos, err)
		}
	}

	s.preparedOn = conn
	s.state = Prepared
	conn.attach(s)
	s.db.Log("statement prepared", "statement", s.name, "connection", conn.Name())
	return nil
}

func (s *Statement) execute(conn *Connection) (ResultCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.preparedOn != conn || s.state == Unprepared || s.state == Closed {
		return ResultCode{}, coffee.GuardMisuseError("%s: statement is not prepared on %s", s.name, conn.Name())
	}
	for pos, binder := range s.inputs {
		if err := binder.Encode(s, pos); err != nil {
			return ResultCode{}, fmt.Errorf("encode %q input %d: %w", s.name, pos, err)
		}
	}
	rc, err := s.backend.Execute(conn)
	if err != nil {
		return rc, fmt.Errorf("execute %q: %w", s.name, err)
	}
	s.state = Executed
	return rc, nil
}

func (s *Statement) fetch() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Executed && s.state != Fetching {
		return false, coffee.GuardMisuseError("%s: fetch in state %s", s.name, s.state)
	}
	found, err := s.backend.Fetch()
	if err != nil {
		return false, fmt.Errorf("fetch %q: %w", s.name, err)
	}
	if !found {
		return false, nil
	}
	for pos, binder := range s.outputs {
		if err := binder.Decode(s, pos); err != nil {
			return false, fmt.Errorf("decode %q output %d: %w", s.name, pos, err)
		}
	}
	s.state = Fetching
	return true, nil
}

// invalidate drops the preparation against conn, if that is the one held.
func (s *Statement) invalidate(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preparedOn != conn {
		return
	}
	s.releaseBinders()
	s.preparedOn = nil
	if s.state != Closed {
		s.state = Unprepared
	}
}

func (s *Statement) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return nil
	}
	s.releaseBinders()
	if s.preparedOn != nil {
		s.preparedOn.detach(s)
		s.preparedOn = nil
	}
	s.state = Closed
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("close statement %q: %w", s.name, err)
	}
	return nil
}

// releaseBinders must be called with mu held.
func (s *Statement) releaseBinders() {
	for _, binder := range s.inputs {
		binder.Release(s)
	}
	for _, binder := range s.outputs {
		binder.Release(s)
	}
}
