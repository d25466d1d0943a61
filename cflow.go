// Package cflow re-exports the structured program model and control flow
// graph types at the module root, so a caller only embedding the library
// (not its CLI or MCP server) needs a single import. The teacher
// codebase re-exports domain constants through internal/config "for
// backward compatibility"; here the root-package aliases exist from the
// start as the library's single public entrypoint.
package cflow

import (
	"github.com/ludo-technologies/cflow/internal/cfg"
	"github.com/ludo-technologies/cflow/internal/ir"
)

// CodeBlock is the structured program model (spec §3, §4.1): an ordered,
// nestable container of mutations and control constructs, built through
// its Add* methods.
type CodeBlock[M, C any] = ir.CodeBlock[M, C]

// Loop is an opaque handle identifying a while/do-while construct,
// returned by CodeBlock's AddWhile/AddDoWhile and consumed by
// AddContinueTo/AddBreakTo.
type Loop = ir.Loop

// LoopOption configures a Loop at creation time.
type LoopOption = ir.LoopOption

// Program is the lowered control flow graph (spec §3, §4.2): a single
// entry node plus the complete set of nodes reachable from it.
type Program[M, C any] = cfg.Program[M, C]

// Node is any control flow graph node: a BasicBlock, a BranchBlock, or
// the singleton RETURN terminal.
type Node = cfg.Node

// BasicBlock is a straight-line sequence of mutations ending in a single
// successor.
type BasicBlock[M any] = cfg.BasicBlock[M]

// BranchBlock is a two-way conditional branch.
type BranchBlock[C any] = cfg.BranchBlock[C]

// NewRoot creates a fresh, parentless root CodeBlock.
func NewRoot[M, C any]() *CodeBlock[M, C] {
	return ir.NewRoot[M, C]()
}

// WithLabel attaches a human-readable label to a loop.
func WithLabel(label string) LoopOption {
	return ir.WithLabel(label)
}

// Lower runs the CFG lowering algorithm over root and returns the
// resulting Program.
func Lower[M, C any](root *CodeBlock[M, C]) (*Program[M, C], error) {
	return cfg.Lower(root)
}

// Reachability independently re-derives a Program's reachable node set.
func Reachability[M, C any](p *Program[M, C]) []Node {
	return cfg.Reachability(p)
}

// RETURN is the control flow graph's singleton terminal node.
var RETURN = cfg.RETURN

// IsReturn reports whether n is the RETURN terminal.
func IsReturn(n Node) bool {
	return cfg.IsReturn(n)
}
