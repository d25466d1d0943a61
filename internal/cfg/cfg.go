// Package cfg implements the lowering of a structured program (internal/ir)
// into a flat control flow graph of basic blocks and two-way branches, per
// the algorithm in spec.md §4.2. This is the non-trivial part of the
// repository; internal/ir's builder and this package's pretty-printer are
// comparatively straightforward collaborators.
package cfg

import "errors"

// ErrInvalidLoopTarget is returned by Lower when a Continue/Break item
// references a *ir.Loop absent from the active loop map. Per spec §7 this
// should be impossible if internal/ir's builder-time checks held; seeing
// it signals a corrupted structured-model input (e.g. one assembled by
// hand rather than through the builder API).
var ErrInvalidLoopTarget = errors.New("cfg: loop target not active during lowering")

// ErrUnknownConstruct mirrors ir.ErrUnknownConstruct for the lowering
// engine and the CFG printer: a defensive error for an item or node that
// does not match any known variant.
var ErrUnknownConstruct = errors.New("cfg: unknown construct")

// Node is the closed set of things a CFG edge can point to: *BasicBlock[M],
// *BranchBlock[C], or the RETURN singleton. It is a marker interface with
// no methods useful outside this package; callers consume Nodes through
// type switches or through Program's traversal helpers.
type Node interface {
	isNode()
}

// BasicBlock is a maximal straight-line run of mutations ending in exactly
// one unconditional successor, the coda. Coda is nil until Lower wires it;
// after lowering completes every reachable BasicBlock has a non-nil Coda.
type BasicBlock[M any] struct {
	Mutations []M
	Coda      Node
}

func (*BasicBlock[M]) isNode() {}

func (b *BasicBlock[M]) successors() []Node {
	if b.Coda == nil {
		return nil
	}
	return []Node{b.Coda}
}

// BranchBlock is a two-way conditional on an opaque condition. TrueDest
// and FalseDest may coincide, and either or both may point back at the
// BranchBlock itself (a self-loop, e.g. `while(c){}`).
type BranchBlock[C any] struct {
	Cond      C
	TrueDest  Node
	FalseDest Node
}

func (*BranchBlock[C]) isNode() {}

func (b *BranchBlock[C]) successors() []Node {
	var out []Node
	if b.TrueDest != nil {
		out = append(out, b.TrueDest)
	}
	if b.FalseDest != nil {
		out = append(out, b.FalseDest)
	}
	return out
}

// returnNode is the singleton terminal CFG node representing procedure
// exit. There is exactly one value of this type, RETURN.
type returnNode struct{}

func (*returnNode) isNode() {}

// RETURN is the distinguished terminal node every procedure exit routes
// through, shared across every Program regardless of its M/C
// instantiation.
var RETURN Node = &returnNode{}

// IsReturn reports whether n is the RETURN terminal.
func IsReturn(n Node) bool {
	_, ok := n.(*returnNode)
	return ok
}

// Program is the output of lowering: an entry node plus the set of nodes
// reachable from it. Program owns its graph; nodes are shared by their
// predecessors only by reference, never duplicated, and cycles (loops)
// are represented directly as back-edges.
type Program[M, C any] struct {
	Entry Node
	Nodes []Node
}

// setter is a deferred wiring action: given the node that turns out to be
// a subgraph's successor, it wires that node into the right place (a
// BasicBlock's Coda, a BranchBlock's FalseDest, or a fan-out of several
// such actions for If/While join points). Spec §9 offers a tagged-variant
// encoding as a portable equivalent to a closure; we use the closure
// directly, which is both simpler and exactly what "deferred action"
// means in Go.
type setter func(Node)

func noop(Node) {}
