package vm

import "github.com/zurustar/bna/pkg/opcode"

// RandomSource draws random numbers for RANDOM.
type RandomSource interface {
	// NextInt returns an integer in [low, high], both bounds inclusive.
	NextInt(low, high int64) int64
	// NextFloat returns a real in [0, 1).
	NextFloat() float64
}

// Clock pauses the run for WAIT.
type Clock interface {
	Pause(seconds float64)
}

// Console is the user-facing terminal used by PRINT and INPUT.
type Console interface {
	// Emit writes text followed by a line break.
	Emit(text string)
	// Prompt shows label and returns the line the user typed, without its line break.
	Prompt(label string) (string, error)
}

// FileSystem backs OPEN, CLOSE, READ and WRITE. Files are addressed by integer handles.
type FileSystem interface {
	Open(path string, mode opcode.FileMode) (int64, error)
	// ReadLine returns the next line without its terminator. eof is true, and line
	// empty, once the file is exhausted.
	ReadLine(handle int64) (line string, eof bool, err error)
	// Write writes text followed by a line break.
	Write(handle int64, text string) error
	Close(handle int64) error
}
