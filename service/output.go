package service

import (
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/cflow/domain"
)

// OutputWriter writes a dump's text to stdout or a file, grounded on the
// teacher's service.FileOutputWriter (minus its HTML-report/browser
// concerns, which have no analogue for a text dump).
type OutputWriter struct {
	status io.Writer
}

func NewOutputWriter(status io.Writer) *OutputWriter {
	if status == nil {
		status = os.Stderr
	}
	return &OutputWriter{status: status}
}

// Write renders writeFunc's output to outputPath, or to fallback if
// outputPath is empty.
func (w *OutputWriter) Write(fallback io.Writer, outputPath string, writeFunc func(io.Writer) error) error {
	out := fallback
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", outputPath), err)
		}
		defer f.Close()
		out = f
	}

	if err := writeFunc(out); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	if outputPath != "" {
		fmt.Fprintf(w.status, "wrote %s\n", outputPath)
	}
	return nil
}
