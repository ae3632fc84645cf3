package host

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console reads user input line by line and writes output lines.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console over in and out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Emit writes text followed by a newline.
func (c *Console) Emit(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

// Prompt writes label without a newline and reads one line of input.
// The line terminator (LF or CRLF) is stripped. A final line without a terminator
// is returned as is; io.EOF is returned only when nothing at all could be read.
func (c *Console) Prompt(label string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if label != "" {
		fmt.Fprint(c.out, label)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
