package service

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressReporter reports batch-lowering progress across multiple
// program files, grounded on the teacher's service.ProgressManager: a
// real progress bar in an interactive terminal, and a no-op otherwise so
// CI logs and piped output stay clean.
type ProgressReporter interface {
	Start(total int)
	Step(name string)
	Finish()
}

// NewProgressReporter returns an interactive bar-based reporter when
// writer is a terminal and total is more than one, and a no-op reporter
// otherwise.
func NewProgressReporter(writer io.Writer, total int) ProgressReporter {
	if total <= 1 || !isInteractive(writer) {
		return noopProgressReporter{}
	}
	return &barProgressReporter{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionSetDescription("lowering"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
	}
}

type barProgressReporter struct {
	bar *progressbar.ProgressBar
}

func (r *barProgressReporter) Start(total int) { _ = r.bar.Set(0) }
func (r *barProgressReporter) Step(name string) {
	_ = r.bar.Add(1)
}
func (r *barProgressReporter) Finish() { _ = r.bar.Finish() }

type noopProgressReporter struct{}

func (noopProgressReporter) Start(int)   {}
func (noopProgressReporter) Step(string) {}
func (noopProgressReporter) Finish()     {}

// isInteractive reports whether writer is a terminal that isn't CI, the
// same heuristic the teacher's progress manager applies.
func isInteractive(writer io.Writer) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
