// Package vm provides error handling for the BNA virtual machine.
package vm

import (
	"errors"
	"fmt"

	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/value"
)

// ErrorType represents the type of runtime error.
type ErrorType string

const (
	ErrorUndefinedVar     ErrorType = "UNDEFINED_VARIABLE"
	ErrorTypeMismatch     ErrorType = "TYPE_MISMATCH"
	ErrorArithmetic       ErrorType = "ARITHMETIC_ERROR"
	ErrorStepLimit        ErrorType = "STEP_LIMIT_EXCEEDED"
	ErrorIndexOutOfRange  ErrorType = "INDEX_OUT_OF_RANGE"
	ErrorIO               ErrorType = "IO_ERROR"
	ErrorScript           ErrorType = "SCRIPT_ERROR"
	ErrorInvalidOperation ErrorType = "INVALID_OPERATION"
)

// RuntimeError represents a failure that aborted a run.
// Every runtime failure is fatal: the run stops at the failing instruction.
type RuntimeError struct {
	Type        ErrorType
	Message     string
	PC          int // index of the failing instruction, -1 if not tied to one
	Line        int // source line if available, 0 otherwise
	Instruction string
	Err         error // underlying cause, if any
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("[%s] %s at line %d", e.Type, e.Message, e.Line)
	case e.PC >= 0:
		return fmt.Sprintf("[%s] %s at instruction %d (%s)", e.Type, e.Message, e.PC, e.Instruction)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.Err }

// NewRuntimeError creates a new RuntimeError not tied to an instruction.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		PC:      -1,
	}
}

// NewUndefinedVariableError creates an undefined variable error.
func NewUndefinedVariableError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedVar, fmt.Sprintf("undefined variable: %s", name))
}

// NewStepLimitError creates a step limit error.
func NewStepLimitError(limit int) *RuntimeError {
	return NewRuntimeError(ErrorStepLimit, fmt.Sprintf("step limit of %d instructions exceeded", limit))
}

// NewIOError wraps a collaborator failure.
func NewIOError(op opcode.IOOp, err error) *RuntimeError {
	e := NewRuntimeError(ErrorIO, fmt.Sprintf("%s failed: %v", op, err))
	e.Err = err
	return e
}

// NewScriptError creates the error raised by the ERROR statement.
func NewScriptError(message string) *RuntimeError {
	return NewRuntimeError(ErrorScript, message)
}

// classify turns an error from the value package into a RuntimeError.
func classify(err error) *RuntimeError {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re
	}
	errType := ErrorInvalidOperation
	switch {
	case errors.Is(err, value.ErrTypeMismatch):
		errType = ErrorTypeMismatch
	case errors.Is(err, value.ErrArithmetic):
		errType = ErrorArithmetic
	case errors.Is(err, value.ErrIndex):
		errType = ErrorIndexOutOfRange
	}
	e := NewRuntimeError(errType, err.Error())
	e.Err = err
	return e
}

// at records where in the program the error happened.
func (e *RuntimeError) at(pc int, in opcode.Instruction) *RuntimeError {
	e.PC = pc
	e.Line = in.Line
	e.Instruction = in.String()
	return e
}

// IsType reports whether err is a RuntimeError of the given type.
func IsType(err error, errType ErrorType) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Type == errType
}
