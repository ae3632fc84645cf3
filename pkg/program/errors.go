package program

import "fmt"

// ErrorType classifies build failures.
type ErrorType string

const (
	ErrorDuplicateLabel  ErrorType = "DUPLICATE_LABEL"
	ErrorUnresolvedLabel ErrorType = "UNRESOLVED_LABEL"
)

// BuildError reports why an instruction sequence could not become a Program.
type BuildError struct {
	Type    ErrorType
	Label   string
	Index   int // index of the offending instruction
	Line    int // source line, 0 if unknown
	Message string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s at line %d", e.Type, e.Message, e.Line)
	}
	return fmt.Sprintf("[%s] %s at instruction %d", e.Type, e.Message, e.Index)
}

func newBuildError(errType ErrorType, label string, index, line int, message string) *BuildError {
	return &BuildError{
		Type:    errType,
		Label:   label,
		Index:   index,
		Line:    line,
		Message: message,
	}
}
