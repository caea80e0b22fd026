package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is the prefixed line logger used by command-line tools.
type Logger = log.Logger

// New returns a stdlib-backed logger on stderr with component prefix.
func New(component string) *Logger {
	return NewWithWriter(os.Stderr, component)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, component string) *Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)
}
