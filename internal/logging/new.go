package logging

import (
	"fmt"
	"io"
)

// New builds a JSON logger for the named backend writing to w.
func New(backend string, w io.Writer) (Logger, error) {
	switch backend {
	case "", BackendSlog:
		return NewJSONSlogLogger(w), nil
	case BackendLogrus:
		return NewJSONLogrusLogger(w), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
