package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes to every underlying writer, collecting their errors.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	for _, w := range cw.Writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	// log writers expect the input length back when at least one write succeeded
	if err != nil && len(multierr.Errors(err)) == len(cw.Writers) {
		return 0, err
	}
	return len(p), err
}
