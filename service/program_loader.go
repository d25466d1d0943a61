// Package service implements the external-facing plumbing around the
// internal/ir and internal/cfg libraries: parsing the YAML program
// description format (ADD-3), discovering program files on disk,
// reporting progress over a batch, and writing dump output — the same
// role the teacher codebase's service package plays around its
// internal/analyzer package.
package service

import (
	"fmt"

	"github.com/ludo-technologies/cflow/domain"
	"github.com/ludo-technologies/cflow/internal/ir"
	"gopkg.in/yaml.v3"
)

// Program is the root of the YAML program description (ADD-3): a plain
// list of statement nodes, mirroring internal/ir.CodeBlock's item list.
type Program struct {
	Body []Stmt `yaml:"body"`
}

// Stmt is one YAML statement node. At most one of its fields is set;
// which one determines the node kind, the same "one-of" shape the
// format's nesting (if/then/else, while/body) already implies.
type Stmt struct {
	Mutation *string     `yaml:"mutation,omitempty"`
	Return   *struct{}   `yaml:"return,omitempty"`
	Continue *JumpTarget `yaml:"continue,omitempty"`
	Break    *JumpTarget `yaml:"break,omitempty"`
	If       *IfStmt     `yaml:"if,omitempty"`
	While    *LoopStmt   `yaml:"while,omitempty"`
	DoWhile  *LoopStmt   `yaml:"do_while,omitempty"`
}

// JumpTarget is `continue`/`break`'s payload: either `{}` (nearest
// enclosing loop) or `<label>` shorthand naming an outer loop.
type JumpTarget struct {
	Label string
}

// UnmarshalYAML accepts both the empty-mapping form (`continue: {}`) and
// the bare scalar label form (`continue: outer`).
func (t *JumpTarget) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&t.Label)
	case yaml.MappingNode:
		return nil
	default:
		return fmt.Errorf("continue/break target must be a label or {}, got %v", value.Kind)
	}
}

type IfStmt struct {
	Cond string `yaml:"cond"`
	Then []Stmt `yaml:"then"`
	Else []Stmt `yaml:"else,omitempty"`
}

type LoopStmt struct {
	Cond  string `yaml:"cond"`
	Label string `yaml:"label,omitempty"`
	Body  []Stmt `yaml:"body"`
}

// ProgramLoader parses the YAML program description format and builds
// the equivalent internal/ir.CodeBlock[string, string] tree by driving
// the real builder API, so every construction-time invariant (§7) is
// enforced exactly as it would be for a hand-written Go caller.
type ProgramLoader struct{}

func NewProgramLoader() *ProgramLoader {
	return &ProgramLoader{}
}

// LoadBytes parses raw YAML into a structured program.
func (l *ProgramLoader) LoadBytes(data []byte) (*ir.CodeBlock[string, string], error) {
	var prog Program
	if err := yaml.Unmarshal(data, &prog); err != nil {
		return nil, domain.NewInvalidInputError("failed to parse program description", err)
	}

	root := ir.NewRoot[string, string]()
	// labels maps a loop label to its *ir.Loop handle, scoped to the
	// loops currently open while walking the tree — shadowing an outer
	// label with the same name is not rejected here, the innermost
	// binding simply wins, matching how a nested Go builder call would
	// shadow a variable of the same name.
	labels := make(map[string]*ir.Loop)
	if err := buildBlock(root, prog.Body, labels); err != nil {
		return nil, domain.NewInvalidInputError("failed to build program", err)
	}
	return root, nil
}

func buildBlock(blk *ir.CodeBlock[string, string], stmts []Stmt, labels map[string]*ir.Loop) error {
	for _, s := range stmts {
		if err := buildStmt(blk, s, labels); err != nil {
			return err
		}
	}
	return nil
}

func buildStmt(blk *ir.CodeBlock[string, string], s Stmt, labels map[string]*ir.Loop) error {
	switch {
	case s.Mutation != nil:
		blk.AddMutation(*s.Mutation)
		return nil

	case s.Return != nil:
		blk.AddReturn()
		return nil

	case s.Continue != nil:
		return addJump(*s.Continue, labels, blk.AddContinue, blk.AddContinueTo)

	case s.Break != nil:
		return addJump(*s.Break, labels, blk.AddBreak, blk.AddBreakTo)

	case s.If != nil:
		return buildIf(blk, *s.If, labels)

	case s.While != nil:
		return buildLoop(blk, *s.While, labels, false)

	case s.DoWhile != nil:
		return buildLoop(blk, *s.DoWhile, labels, true)

	default:
		return fmt.Errorf("empty statement node")
	}
}

func addJump(
	target JumpTarget,
	labels map[string]*ir.Loop,
	unlabelled func() error,
	labelled func(*ir.Loop) error,
) error {
	if target.Label == "" {
		return unlabelled()
	}
	loop, ok := labels[target.Label]
	if !ok {
		return fmt.Errorf("unknown loop label %q", target.Label)
	}
	return labelled(loop)
}

func buildIf(blk *ir.CodeBlock[string, string], s IfStmt, labels map[string]*ir.Loop) error {
	if len(s.Else) == 0 {
		then := blk.AddIf(s.Cond)
		return buildBlock(then, s.Then, labels)
	}
	then, els := blk.AddIfElse(s.Cond)
	if err := buildBlock(then, s.Then, labels); err != nil {
		return err
	}
	return buildBlock(els, s.Else, labels)
}

func buildLoop(blk *ir.CodeBlock[string, string], s LoopStmt, labels map[string]*ir.Loop, isDoWhile bool) error {
	var opts []ir.LoopOption
	if s.Label != "" {
		opts = append(opts, ir.WithLabel(s.Label))
	}

	var body *ir.CodeBlock[string, string]
	var loop *ir.Loop
	if isDoWhile {
		body, loop = blk.AddDoWhile(s.Cond, opts...)
	} else {
		body, loop = blk.AddWhile(s.Cond, opts...)
	}

	if s.Label != "" {
		prev, hadPrev := labels[s.Label]
		labels[s.Label] = loop
		defer func() {
			if hadPrev {
				labels[s.Label] = prev
			} else {
				delete(labels, s.Label)
			}
		}()
	}

	return buildBlock(body, s.Body, labels)
}
