// Package app orchestrates the use case exposed to the CLI layer: load a
// program description, build its structured tree, lower it to a CFG (or
// not), and return the resulting text. Grounded on the teacher's
// per-feature use case shape (app.ComplexityUseCase), scaled down to this
// module's single domain operation.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/cflow/domain"
	"github.com/ludo-technologies/cflow/internal/cfg"
	"github.com/ludo-technologies/cflow/internal/config"
	"github.com/ludo-technologies/cflow/internal/ir"
	"github.com/ludo-technologies/cflow/service"
)

// Request describes one lowering/tree-dump invocation. Where the result
// is written is the caller's concern (cmd/cflow), not this use
// case's — Execute only produces text per file.
type Request struct {
	Paths             []string
	Format            config.OutputFormat
	CheckReachability bool
}

// Result is one program's outcome, returned per file so batch mode
// (ADD-2) can report partial failures without aborting the whole run.
type Result struct {
	Path   string
	Output string
	Err    error
}

// LowerUseCase loads program descriptions, lowers each to a CFG or
// dumps its structured tree, and returns each file's text — the single
// orchestration point that spec.md's builder → lowering → printer
// pipeline (§4) is driven through outside of direct library use.
type LowerUseCase struct {
	loader   *service.ProgramLoader
	writer   *service.OutputWriter
	progress io.Writer
}

func NewLowerUseCase(loader *service.ProgramLoader, writer *service.OutputWriter, progress io.Writer) *LowerUseCase {
	return &LowerUseCase{loader: loader, writer: writer, progress: progress}
}

// Execute runs the requested operation over every discovered file,
// returning one Result per file. It never returns early on a single
// file's error so a directory batch's good files still get processed.
func (uc *LowerUseCase) Execute(ctx context.Context, req Request) ([]Result, error) {
	files, err := service.DiscoverProgramFiles(req.Paths)
	if err != nil {
		return nil, domain.NewInvalidInputError("failed to discover program files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no program description files found in the specified paths", nil)
	}

	reporter := service.NewProgressReporter(uc.progress, len(files))
	reporter.Start(len(files))
	defer reporter.Finish()

	results := make([]Result, 0, len(files))
	for _, path := range files {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		reporter.Step(path)
		out, err := uc.executeOne(path, req)
		results = append(results, Result{Path: path, Output: out, Err: err})
	}
	return results, nil
}

func (uc *LowerUseCase) executeOne(path string, req Request) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", domain.NewInvalidInputError(fmt.Sprintf("failed to read %s", path), err)
	}

	root, err := uc.loader.LoadBytes(data)
	if err != nil {
		return "", err
	}

	var text string
	switch req.Format {
	case config.OutputFormatTree:
		text, err = dumpTree(root)
	default:
		text, err = uc.dumpCFG(root, req.CheckReachability)
	}
	if err != nil {
		return "", domain.CategorizeLoweringError(err)
	}
	return text, nil
}

func (uc *LowerUseCase) dumpCFG(root *ir.CodeBlock[string, string], checkReachability bool) (string, error) {
	prog, err := cfg.Lower[string, string](root)
	if err != nil {
		return "", err
	}
	if checkReachability {
		want := cfg.Reachability(prog)
		if len(want) != len(prog.Nodes) {
			return "", domain.NewInternalError(
				fmt.Sprintf("reachability mismatch: engine produced %d nodes, independent walk found %d", len(prog.Nodes), len(want)),
				nil,
			)
		}
	}
	return prog.String(), nil
}

func dumpTree(root *ir.CodeBlock[string, string]) (string, error) {
	return root.String(), nil
}
