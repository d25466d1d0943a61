package cfg

import (
	"errors"
	"testing"

	"github.com/ludo-technologies/cflow/internal/ir"
)

func lowerString(t *testing.T, build func(*ir.CodeBlock[string, string])) *Program[string, string] {
	t.Helper()
	root := ir.NewRoot[string, string]()
	build(root)
	prog, err := Lower[string, string](root)
	if err != nil {
		t.Fatalf("unexpected lowering error: %v", err)
	}
	return prog
}

func TestEmptyProgram(t *testing.T) {
	prog := lowerString(t, func(*ir.CodeBlock[string, string]) {})
	if !IsReturn(prog.Entry) {
		t.Errorf("expected empty program's entry to be RETURN, got %v", prog.Entry)
	}
	if len(prog.Nodes) != 1 {
		t.Errorf("expected exactly one node (RETURN) in an empty program, got %d", len(prog.Nodes))
	}
}

// S1: { m1; m2; return; m3; } -> one BasicBlock [m1, m2], coda RETURN, m3 dropped.
func TestScenarioS1ReturnDropsTrailingCode(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		b.AddMutation("m1")
		b.AddMutation("m2")
		b.AddReturn()
		b.AddMutation("m3")
	})

	bb, ok := prog.Entry.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BasicBlock, got %T", prog.Entry)
	}
	if len(bb.Mutations) != 2 || bb.Mutations[0] != "m1" || bb.Mutations[1] != "m2" {
		t.Errorf("expected mutations [m1 m2], got %v", bb.Mutations)
	}
	if !IsReturn(bb.Coda) {
		t.Errorf("expected coda RETURN, got %v", bb.Coda)
	}
	if len(prog.Nodes) != 2 {
		t.Errorf("expected 2 reachable nodes (bb, RETURN), got %d", len(prog.Nodes))
	}
}

// S2: { m1; if(c) { m2; } m3; }
func TestScenarioS2If(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		b.AddMutation("m1")
		then := b.AddIf("c")
		then.AddMutation("m2")
		b.AddMutation("m3")
	})

	bb0, ok := prog.Entry.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BasicBlock, got %T", prog.Entry)
	}
	if len(bb0.Mutations) != 1 || bb0.Mutations[0] != "m1" {
		t.Errorf("expected BB0 mutations [m1], got %v", bb0.Mutations)
	}

	br, ok := bb0.Coda.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected BB0.Coda to be a BranchBlock, got %T", bb0.Coda)
	}
	if br.Cond != "c" {
		t.Errorf("expected condition c, got %v", br.Cond)
	}

	bb1, ok := br.TrueDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br.true to be a BasicBlock, got %T", br.TrueDest)
	}
	if len(bb1.Mutations) != 1 || bb1.Mutations[0] != "m2" {
		t.Errorf("expected BB1 mutations [m2], got %v", bb1.Mutations)
	}

	bb2, ok := br.FalseDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br.false to be a BasicBlock, got %T", br.FalseDest)
	}
	if bb1.Coda != bb2 {
		t.Error("expected BB1.coda to join at BB2")
	}
	if len(bb2.Mutations) != 1 || bb2.Mutations[0] != "m3" {
		t.Errorf("expected BB2 mutations [m3], got %v", bb2.Mutations)
	}
	if !IsReturn(bb2.Coda) {
		t.Errorf("expected BB2.coda RETURN, got %v", bb2.Coda)
	}
}

// S3: { while(c) { m1; } m2; }
func TestScenarioS3While(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		body, _ := b.AddWhile("c")
		body.AddMutation("m1")
		b.AddMutation("m2")
	})

	br, ok := prog.Entry.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BranchBlock, got %T", prog.Entry)
	}

	bb0, ok := br.TrueDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br.true to be a BasicBlock, got %T", br.TrueDest)
	}
	if len(bb0.Mutations) != 1 || bb0.Mutations[0] != "m1" {
		t.Errorf("expected BB0 mutations [m1], got %v", bb0.Mutations)
	}
	if bb0.Coda != br {
		t.Error("expected BB0.coda to loop back to Br")
	}

	bb1, ok := br.FalseDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br.false to be a BasicBlock, got %T", br.FalseDest)
	}
	if len(bb1.Mutations) != 1 || bb1.Mutations[0] != "m2" {
		t.Errorf("expected BB1 mutations [m2], got %v", bb1.Mutations)
	}
	if !IsReturn(bb1.Coda) {
		t.Errorf("expected BB1.coda RETURN, got %v", bb1.Coda)
	}
}

// S4: { do { m1; } while(c); m2; }
func TestScenarioS4DoWhile(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		body, _ := b.AddDoWhile("c")
		body.AddMutation("m1")
		b.AddMutation("m2")
	})

	bb0, ok := prog.Entry.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BasicBlock, got %T", prog.Entry)
	}
	if len(bb0.Mutations) != 1 || bb0.Mutations[0] != "m1" {
		t.Errorf("expected BB0 mutations [m1], got %v", bb0.Mutations)
	}

	br, ok := bb0.Coda.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected BB0.Coda to be a BranchBlock, got %T", bb0.Coda)
	}
	if br.TrueDest != bb0 {
		t.Error("expected Br.true to loop back to BB0")
	}

	bb1, ok := br.FalseDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br.false to be a BasicBlock, got %T", br.FalseDest)
	}
	if len(bb1.Mutations) != 1 || bb1.Mutations[0] != "m2" {
		t.Errorf("expected BB1 mutations [m2], got %v", bb1.Mutations)
	}
	if !IsReturn(bb1.Coda) {
		t.Errorf("expected BB1.coda RETURN, got %v", bb1.Coda)
	}
}

// S5: { while(c1){ if(c2){ break; } m1; } m2; }
func TestScenarioS5Break(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		body, _ := b.AddWhile("c1")
		then := body.AddIf("c2")
		if err := then.AddBreak(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		body.AddMutation("m1")
		b.AddMutation("m2")
	})

	br1, ok := prog.Entry.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BranchBlock, got %T", prog.Entry)
	}
	if br1.Cond != "c1" {
		t.Errorf("expected condition c1, got %v", br1.Cond)
	}

	br2, ok := br1.TrueDest.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected Br(c1).true to be a BranchBlock, got %T", br1.TrueDest)
	}
	if br2.Cond != "c2" {
		t.Errorf("expected condition c2, got %v", br2.Cond)
	}

	bbExit, ok := br2.TrueDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br(c2).true to be the exit BasicBlock, got %T", br2.TrueDest)
	}
	if len(bbExit.Mutations) != 1 || bbExit.Mutations[0] != "m2" {
		t.Errorf("expected exit block mutations [m2], got %v", bbExit.Mutations)
	}

	bbM1, ok := br2.FalseDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br(c2).false to be a BasicBlock, got %T", br2.FalseDest)
	}
	if len(bbM1.Mutations) != 1 || bbM1.Mutations[0] != "m1" {
		t.Errorf("expected BB[m1] mutations [m1], got %v", bbM1.Mutations)
	}
	if bbM1.Coda != br1 {
		t.Error("expected BB[m1].coda to loop back to Br(c1)")
	}
	if br1.FalseDest != bbExit {
		t.Error("expected Br(c1).false to join at the exit block (same as the break target)")
	}
	if !IsReturn(bbExit.Coda) {
		t.Errorf("expected exit block coda RETURN, got %v", bbExit.Coda)
	}
}

// S6: { while(c1){ while(c2){ continue c1; } } }
func TestScenarioS6LabelledContinue(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		outerBody, outerLoop := b.AddWhile("c1", ir.WithLabel("outer"))
		innerBody, _ := outerBody.AddWhile("c2")
		if err := innerBody.AddContinueTo(outerLoop); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	br1, ok := prog.Entry.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BranchBlock, got %T", prog.Entry)
	}
	br2, ok := br1.TrueDest.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected Br(c1).true to be a BranchBlock, got %T", br1.TrueDest)
	}
	if br2.TrueDest != br1 {
		t.Error("expected continue c1 to jump straight back to Br(c1)")
	}
	if br2.FalseDest != br1 {
		t.Error("expected Br(c2).false to also join back at Br(c1) (empty inner-loop exit)")
	}
	if !IsReturn(br1.FalseDest) {
		t.Errorf("expected Br(c1).false to be RETURN, got %v", br1.FalseDest)
	}
}

// { while(c1){ m0; if(c2){ break; } } m2; } -- break after a preceding
// mutation in the same loop body, a case the entry side-channel never
// needs to kick in for (the loop body's entry is BB[m0], known
// synchronously); only the break's own exit wiring is deferred.
func TestBreakAfterMutationInSameBlock(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		body, _ := b.AddWhile("c1")
		body.AddMutation("m0")
		then := body.AddIf("c2")
		if err := then.AddBreak(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b.AddMutation("m2")
	})

	br1, ok := prog.Entry.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected entry to be a BranchBlock, got %T", prog.Entry)
	}
	bbM0, ok := br1.TrueDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br(c1).true to be a BasicBlock, got %T", br1.TrueDest)
	}
	br2, ok := bbM0.Coda.(*BranchBlock[string])
	if !ok {
		t.Fatalf("expected BB[m0].coda to be a BranchBlock, got %T", bbM0.Coda)
	}
	bbExit, ok := br2.TrueDest.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected Br(c2).true to be the exit BasicBlock, got %T", br2.TrueDest)
	}
	if len(bbExit.Mutations) != 1 || bbExit.Mutations[0] != "m2" {
		t.Errorf("expected exit block mutations [m2], got %v", bbExit.Mutations)
	}
	if br2.FalseDest != br1 {
		t.Error("expected Br(c2).false to loop back to Br(c1)")
	}
}

// { do { break; } while(c); m2; } -- a do-while whose body is nothing but
// a bare break never reaches its own condition test at all; the whole
// construct degenerates to jumping straight to whatever follows it.
func TestDoWhileBareBreakNeverReachesCondition(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		body, _ := b.AddDoWhile("c")
		if err := body.AddBreak(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b.AddMutation("m2")
	})

	bbExit, ok := prog.Entry.(*BasicBlock[string])
	if !ok {
		t.Fatalf("expected entry to be the exit BasicBlock directly (condition branch unreachable), got %T", prog.Entry)
	}
	if len(bbExit.Mutations) != 1 || bbExit.Mutations[0] != "m2" {
		t.Errorf("expected exit block mutations [m2], got %v", bbExit.Mutations)
	}
	if !IsReturn(bbExit.Coda) {
		t.Errorf("expected exit block coda RETURN, got %v", bbExit.Coda)
	}
	for _, n := range prog.Nodes {
		if _, isBranch := n.(*BranchBlock[string]); isBranch {
			t.Error("the do-while's condition branch must not be reachable")
		}
	}
}

func TestInvalidLoopTarget(t *testing.T) {
	// Simulate a Continue/Break item whose Target loop is not in the
	// active loop map -- cannot happen through the builder API (which
	// enforces this at construction time, checked first below), so the
	// ir tree is then edited directly through Items() to exercise the
	// lowering engine's own defensive check.
	root := ir.NewRoot[string, string]()
	_, strayLoop := root.AddWhile("true") // builds and discards a loop elsewhere
	root2 := ir.NewRoot[string, string]()
	body, _ := root2.AddWhile("c")
	if err := body.AddContinueTo(strayLoop); err == nil {
		t.Fatal("expected AddContinueTo across unrelated trees to fail at construction time")
	}
	if err := body.AddContinue(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body.Items()[0] = ir.Continue{Target: strayLoop}
	if _, err := Lower[string, string](root2); !errors.Is(err, ErrInvalidLoopTarget) {
		t.Errorf("expected ErrInvalidLoopTarget, got %v", err)
	}
}

func TestReachabilityCrossCheck(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		b.AddMutation("m1")
		then := b.AddIf("c")
		then.AddMutation("m2")
	})

	want := Reachability(prog)
	if len(want) != len(prog.Nodes) {
		t.Errorf("expected independent reachability walk to match Program.Nodes: got %d vs %d", len(want), len(prog.Nodes))
	}
}

func TestDumpEmptyProgram(t *testing.T) {
	prog := lowerString(t, func(*ir.CodeBlock[string, string]) {})
	got := prog.String()
	want := "(EMPTY PROGRAM GRAPH)\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDumpNamesNodesInFirstEncounterOrder(t *testing.T) {
	prog := lowerString(t, func(b *ir.CodeBlock[string, string]) {
		b.AddMutation("m1")
		then := b.AddIf("c")
		then.AddMutation("m2")
		b.AddMutation("m3")
	})

	// Node names follow Program.Nodes' order, an explicit-stack DFS from
	// Entry: the branch's successors are pushed TrueDest-then-FalseDest,
	// so the LIFO stack visits FalseDest (BB[m3]) before TrueDest
	// (BB[m2]) — names 0,1,2,3 land on BB[m1], the branch, BB[m3], and
	// BB[m2] in that order, not the left-to-right source order.
	got := prog.String()
	want := "0:\n" +
		"  m1\n" +
		"  GOTO: 1\n" +
		"1:\n" +
		"  c\n" +
		"  TRUE DEST: 3\n" +
		"  FALSE DEST: 2\n" +
		"2:\n" +
		"  m3\n" +
		"  GOTO: RETURN\n" +
		"3:\n" +
		"  m2\n" +
		"  GOTO: 2\n"
	if got != want {
		t.Errorf("Dump mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
