package dbms

import (
	"errors"
	"fmt"

	"github.com/ciscoruiz/coffee-sub002"
)

// ErrorCodeInterpreter classifies the numeric codes reported by one backend.
// Implementations are pure functions of the code; every driver supplies its
// own table.
type ErrorCodeInterpreter interface {
	Successful(code int) bool
	NotFound(code int) bool
	Locked(code int) bool
	LostConnection(code int) bool
}

// ResultCode is the outcome of one backend call: the backend's numeric code,
// its message, and the interpreter of the database that produced it.
// ResultCode is immutable.
type ResultCode struct {
	code        int
	message     string
	interpreter ErrorCodeInterpreter
}

func NewResultCode(interpreter ErrorCodeInterpreter, code int, message string) ResultCode {
	return ResultCode{code: code, message: message, interpreter: interpreter}
}

func (r ResultCode) Code() int {
	return r.code
}

func (r ResultCode) Message() string {
	return r.message
}

// HasInterpreter reports whether the predicates can be evaluated.
func (r ResultCode) HasInterpreter() bool {
	return r.interpreter != nil
}

func (r ResultCode) Successful() (bool, error) {
	return r.classify(ErrorCodeInterpreter.Successful)
}

func (r ResultCode) NotFound() (bool, error) {
	return r.classify(ErrorCodeInterpreter.NotFound)
}

func (r ResultCode) Locked() (bool, error) {
	return r.classify(ErrorCodeInterpreter.Locked)
}

func (r ResultCode) LostConnection() (bool, error) {
	return r.classify(ErrorCodeInterpreter.LostConnection)
}

func (r ResultCode) classify(predicate func(ErrorCodeInterpreter, int) bool) (bool, error) {
	if r.interpreter == nil {
		return false, coffee.ConfigurationError("result code %d has no error code interpreter", r.code)
	}
	return predicate(r.interpreter, r.code), nil
}

func (r ResultCode) String() string {
	if r.message == "" {
		return fmt.Sprintf("ResultCode{code=%d}", r.code)
	}
	return fmt.Sprintf("ResultCode{code=%d, message=%q}", r.code, r.message)
}

// DatabaseError is the normal failure of execute, fetch and commit. It carries
// the ResultCode, so callers decide whether to retry, roll back or give up.
type DatabaseError struct {
	Op         string
	ResultCode ResultCode
}

func NewDatabaseError(op string, rc ResultCode) *DatabaseError {
	return &DatabaseError{Op: op, ResultCode: rc}
}

func (e *DatabaseError) Error() string {
	msg := e.ResultCode.Message()
	if msg == "" {
		msg = "backend failure"
	}
	if e.Op == "" {
		return fmt.Sprintf("[%d] %s", e.ResultCode.Code(), msg)
	}
	return fmt.Sprintf("%s: [%d] %s", e.Op, e.ResultCode.Code(), msg)
}

// IsNotFound reports whether err carries a ResultCode classified as not found.
func IsNotFound(err error) bool {
	return classifyError(err, ResultCode.NotFound)
}

// IsLocked reports whether err carries a ResultCode classified as locked.
func IsLocked(err error) bool {
	return classifyError(err, ResultCode.Locked)
}

// IsLostConnection reports whether err carries a ResultCode classified as a
// lost connection.
func IsLostConnection(err error) bool {
	return classifyError(err, ResultCode.LostConnection)
}

func classifyError(err error, predicate func(ResultCode) (bool, error)) bool {
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		return false
	}
	ok, perr := predicate(dbErr.ResultCode)
	return perr == nil && ok
}
