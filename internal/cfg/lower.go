package cfg

import (
	"fmt"

	"github.com/ludo-technologies/cflow/internal/ir"
)

// loopRecord is the loop map's entry (spec §4.2.4): the loop's branch
// (continue's target) plus every break's deferred destination setter,
// fired once the loop's post-exit join node is known.
type loopRecord struct {
	branch       Node
	breakSetters []setter
}

// lowering carries the state shared across one Program's recursive
// descent: the scoped loop map, added on entering a loop body and removed
// on leaving it, so a jump only ever resolves to a loop that lexically
// encloses it.
type lowering[M, C any] struct {
	loops map[*ir.Loop]*loopRecord
}

// Lower runs the CFG lowering algorithm (spec §4.2) over root and returns
// the resulting Program. root is treated as read-only; internal/ir's
// builder is the only code meant to mutate a CodeBlock.
func Lower[M, C any](root *ir.CodeBlock[M, C]) (*Program[M, C], error) {
	lw := &lowering[M, C]{loops: make(map[*ir.Loop]*loopRecord)}

	state, exit, err := lw.lowerBlock(root)
	if err != nil {
		return nil, err
	}

	var progEntry Node
	if state.empty() {
		// Empty program (spec §4.2.6 / §8 property 7): entry is RETURN.
		progEntry = RETURN
	} else {
		exit(RETURN)
		// The root block has no enclosing loop, so a bare break reaching
		// it is rejected by internal/ir at construction time; state's
		// entry is therefore guaranteed to have resolved by now, even if
		// it was still pending the moment exit was called.
		progEntry = state.initial
	}

	prog := &Program[M, C]{Entry: progEntry}
	prog.Nodes = reachableNodes(progEntry)
	return prog, nil
}

// blockState holds the three pieces of mutable state the engine tracks
// while walking a single CodeBlock (spec §4.2.1): initial is the
// subgraph's entry node; openBB is the most recent BasicBlock still
// accepting mutations; pendingSetter is the deferred wiring action
// targeting the subgraph's current tail. Exactly one of openBB/
// pendingSetter is non-nil after the first item; both are nil before it.
//
// pending and entryWaiters handle the one case where a subgraph's entry
// cannot be produced synchronously: a block whose first effective item is
// a break. Break only registers a destination setter with its target
// loop (§4.2.3); the entry this block exposes to its caller (e.g. the
// BranchBlock.TrueDest of the if wrapping it) isn't known until that
// loop's own post-loop join node is, which is discovered later while
// lowering an enclosing block. onEntry lets a caller ask to be told the
// entry once it exists, synchronously if it already does.
type blockState[M any] struct {
	initial       Node
	openBB        *BasicBlock[M]
	pendingSetter setter

	pending      bool
	entryWaiters []func(Node)
}

// advance implements spec §4.2.2: "advance to next node N with
// continuation S". A pending state never takes the "first" branch here:
// its entry is claimed exactly once, by resolveEntry, not by whatever
// later item in the same block happens to call advance next.
func (s *blockState[M]) advance(n Node, cont setter) {
	first := s.initial == nil && !s.pending
	switch {
	case first:
		s.initial = n
	case s.pendingSetter != nil:
		s.pendingSetter(n)
	case s.openBB != nil:
		s.openBB.Coda = n
	}
	s.openBB = nil
	s.pendingSetter = cont

	if first {
		s.fireEntryWaiters(n)
	}
}

// resolveEntry fills in a pending subgraph's entry, exactly once, and
// notifies anyone waiting on it via onEntry. This is the sole mechanism
// that ever completes a pending state: the deferred destination setter
// registered by a break that was its block's first effective item (see
// the ir.Break case in lowerItem), or deferEntry propagating that
// resolution one level further up for a do-while whose body starts the
// same way.
func (s *blockState[M]) resolveEntry(n Node) {
	s.initial = n
	s.pending = false
	s.fireEntryWaiters(n)
}

func (s *blockState[M]) fireEntryWaiters(n Node) {
	waiters := s.entryWaiters
	s.entryWaiters = nil
	for _, w := range waiters {
		w(n)
	}
}

// onEntry runs fn with this subgraph's entry node once it is known,
// immediately if it already is.
func (s *blockState[M]) onEntry(fn func(Node)) {
	if s.initial != nil {
		fn(s.initial)
		return
	}
	s.entryWaiters = append(s.entryWaiters, fn)
}

// empty reports whether this subgraph has no effect at all and never
// will: no entry, and none pending either. A subgraph consumed entirely
// by a break (pending) is not empty, even though its entry isn't known
// yet.
func (s *blockState[M]) empty() bool {
	return s.initial == nil && !s.pending
}

// lowerBlock transforms one CodeBlock into a subgraph, returning the
// state that exposes its entry (possibly still pending) plus a setter
// that wires a future node as the subgraph's single external successor
// (spec §4.2, §4.2.5).
func (lw *lowering[M, C]) lowerBlock(block *ir.CodeBlock[M, C]) (*blockState[M], setter, error) {
	state := &blockState[M]{}

	for _, raw := range block.Items() {
		stop, err := lw.lowerItem(state, raw)
		if err != nil {
			return nil, nil, err
		}
		if stop {
			break
		}
	}

	return state, exitSetterFor(state), nil
}

// exitSetterFor implements spec §4.2.5, always returning a safely
// callable setter: a pending subgraph (consumed by a break, with no
// fall-through) gets a no-op, since there is nothing left to wire.
func exitSetterFor[M any](state *blockState[M]) setter {
	switch {
	case state.openBB != nil:
		bb := state.openBB
		return func(x Node) { bb.Coda = x }
	case state.pendingSetter != nil:
		return state.pendingSetter
	default:
		return noop
	}
}

// lowerItem processes one item of a CodeBlock (spec §4.2.3). It reports
// stop=true when the remainder of the block is unreachable and must be
// dropped (return/continue/break).
func (lw *lowering[M, C]) lowerItem(state *blockState[M], raw any) (stop bool, err error) {
	switch v := raw.(type) {
	case ir.Mutation[M]:
		if state.openBB == nil {
			bb := &BasicBlock[M]{}
			state.advance(bb, nil)
			state.openBB = bb
		}
		state.openBB.Mutations = append(state.openBB.Mutations, v.Value)
		return false, nil

	case ir.Return:
		state.advance(RETURN, noop)
		return true, nil

	case ir.Continue:
		rec, ok := lw.loops[v.Target]
		if !ok {
			return false, ErrInvalidLoopTarget
		}
		state.advance(rec.branch, noop)
		return true, nil

	case ir.Break:
		rec, ok := lw.loops[v.Target]
		if !ok {
			return false, ErrInvalidLoopTarget
		}
		pendingHere := state.initial == nil
		if pendingHere {
			state.pending = true
		}
		captured := state
		rec.breakSetters = append(rec.breakSetters, func(x Node) {
			if pendingHere {
				captured.resolveEntry(x)
				return
			}
			captured.advance(x, noop)
		})
		return true, nil

	case ir.If[M, C]:
		return false, lw.lowerIf(state, v)

	case ir.IfElse[M, C]:
		return false, lw.lowerIfElse(state, v)

	case ir.While[M, C]:
		return false, lw.lowerLoop(state, v.Cond, v.Body, v.Loop, false)

	case ir.DoWhile[M, C]:
		return false, lw.lowerLoop(state, v.Cond, v.Body, v.Loop, true)

	default:
		return false, fmt.Errorf("%w: %T", ErrUnknownConstruct, raw)
	}
}

func (lw *lowering[M, C]) lowerIf(state *blockState[M], v ir.If[M, C]) error {
	bodyState, bodyExit, err := lw.lowerBlock(v.Then)
	if err != nil {
		return err
	}
	if bodyState.empty() {
		// Empty then-branch: drop the If entirely (spec §4.2.3).
		return nil
	}

	branch := &BranchBlock[C]{Cond: v.Cond}
	bodyState.onEntry(func(n Node) { branch.TrueDest = n })
	cont := func(j Node) {
		branch.FalseDest = j
		bodyExit(j)
	}
	state.advance(branch, cont)
	return nil
}

func (lw *lowering[M, C]) lowerIfElse(state *blockState[M], v ir.IfElse[M, C]) error {
	thenState, thenExit, err := lw.lowerBlock(v.Then)
	if err != nil {
		return err
	}
	elseState, elseExit, err := lw.lowerBlock(v.Else)
	if err != nil {
		return err
	}

	thenEmpty, elseEmpty := thenState.empty(), elseState.empty()

	switch {
	case thenEmpty && elseEmpty:
		// Both branches empty: drop entirely.
		return nil

	case elseEmpty:
		// Degenerate to If(cond, then).
		branch := &BranchBlock[C]{Cond: v.Cond}
		thenState.onEntry(func(n Node) { branch.TrueDest = n })
		cont := func(j Node) {
			branch.FalseDest = j
			thenExit(j)
		}
		state.advance(branch, cont)
		return nil

	case thenEmpty:
		// Degenerate to an inverted If: false-dest is the else branch,
		// true-dest is the join (skipping the empty then).
		branch := &BranchBlock[C]{Cond: v.Cond}
		elseState.onEntry(func(n Node) { branch.FalseDest = n })
		cont := func(j Node) {
			branch.TrueDest = j
			elseExit(j)
		}
		state.advance(branch, cont)
		return nil

	default:
		branch := &BranchBlock[C]{Cond: v.Cond}
		thenState.onEntry(func(n Node) { branch.TrueDest = n })
		elseState.onEntry(func(n Node) { branch.FalseDest = n })
		cont := func(j Node) {
			thenExit(j)
			elseExit(j)
		}
		state.advance(branch, cont)
		return nil
	}
}

func (lw *lowering[M, C]) lowerLoop(state *blockState[M], cond C, body *ir.CodeBlock[M, C], loop *ir.Loop, isDoWhile bool) error {
	branch := &BranchBlock[C]{Cond: cond}
	rec := &loopRecord{branch: branch}
	lw.loops[loop] = rec

	bodyState, bodyExit, err := lw.lowerBlock(body)
	delete(lw.loops, loop)
	if err != nil {
		return err
	}

	cont := func(j Node) {
		branch.FalseDest = j
		for _, fire := range rec.breakSetters {
			fire(j)
		}
	}

	if bodyState.empty() {
		branch.TrueDest = branch
		state.advance(branch, cont)
		return nil
	}

	bodyState.onEntry(func(n Node) { branch.TrueDest = n })
	bodyExit(branch)

	if !isDoWhile {
		state.advance(branch, cont)
		return nil
	}

	// DoWhile enters the body directly. Usually that means a concrete
	// node is available immediately; the one exception is a body whose
	// first item is itself a bare break (e.g. `do { break; } while(c);`),
	// whose entry is exactly as pending as the break it starts with.
	if bodyState.initial != nil {
		state.advance(bodyState.initial, cont)
		return nil
	}
	deferEntry(state, bodyState, cont)
	return nil
}

// deferEntry wires next's still-pending entry as state's next step,
// propagating pending-ness one level further up the recursion. This only
// arises for a do-while loop whose body begins with a bare break.
func deferEntry[M any](state *blockState[M], next *blockState[M], cont setter) {
	switch {
	case state.initial == nil:
		state.pending = true
		next.onEntry(func(n Node) { state.resolveEntry(n) })
	case state.pendingSetter != nil:
		next.onEntry(state.pendingSetter)
	case state.openBB != nil:
		bb := state.openBB
		next.onEntry(func(n Node) { bb.Coda = n })
	}
	state.openBB = nil
	state.pendingSetter = cont
}

// Reachability independently re-derives a Program's reachable node set by
// walking from its Entry, the same traversal Lower itself performs. It
// exists for the "check reachability" cross-check (see
// internal/cfg.Program.Nodes and the lower --check-reachability flag): a
// mismatch between this and Program.Nodes would mean the lowering
// engine's own bookkeeping drifted from the graph it actually built.
func Reachability[M, C any](p *Program[M, C]) []Node {
	return reachableNodes(p.Entry)
}

// reachableNodes performs an explicit-stack depth-first traversal from
// entry and returns every node reachable from it, including entry itself
// (spec §3's Program invariant: exactly the reachable set, no more).
func reachableNodes(entry Node) []Node {
	seen := make(map[Node]bool)
	var order []Node
	stack := []Node{entry}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		order = append(order, n)

		switch b := n.(type) {
		case interface{ successors() []Node }:
			stack = append(stack, b.successors()...)
		}
	}
	return order
}
