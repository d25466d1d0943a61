package ir

import (
	"fmt"
	"io"
	"strings"
)

// Stringer is satisfied by any mutation or condition type that wants
// control over its own textual rendering in Dump. Types that don't
// implement it are rendered with fmt.Sprintf("%v", ...).
type Stringer interface {
	String() string
}

func render(v any) string {
	if s, ok := v.(Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

const indentUnit = "  "

// Dump writes the block as indented, C-like pseudo-source per spec §4.3
// / §6: mutations followed by `;`, `if (cond) { … }` with optional
// `else`, `while (cond) { … }`, `do { … } while (cond);`, `break`/
// `continue`/`return` with an optional label, a closing `}\n` after every
// nested block, and labelled loops prefixed with `label:\n`.
func (b *CodeBlock[M, C]) Dump(w io.Writer) error {
	return b.dump(w, 0)
}

// String renders Dump to a string, for use in tests and error messages.
func (b *CodeBlock[M, C]) String() string {
	var sb strings.Builder
	_ = b.dump(&sb, 0)
	return sb.String()
}

func (b *CodeBlock[M, C]) dump(w io.Writer, depth int) error {
	pad := strings.Repeat(indentUnit, depth)
	inner := strings.Repeat(indentUnit, depth+1)

	if _, err := fmt.Fprintf(w, "%s{\n", pad); err != nil {
		return err
	}
	for _, it := range b.items {
		if err := dumpItem[M, C](w, it, inner, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s}\n", pad)
	return err
}

func dumpItem[M, C any](w io.Writer, it item, indent string, depth int) error {
	switch v := it.(type) {
	case Mutation[M]:
		_, err := fmt.Fprintf(w, "%s%s;\n", indent, render(v.Value))
		return err

	case Return:
		_, err := fmt.Fprintf(w, "%sreturn;\n", indent)
		return err

	case Continue:
		return dumpJump(w, "continue", v.Target, indent)

	case Break:
		return dumpJump(w, "break", v.Target, indent)

	case If[M, C]:
		if _, err := fmt.Fprintf(w, "%sif (%s) {\n", indent, render(v.Cond)); err != nil {
			return err
		}
		for _, inner := range v.Then.items {
			if err := dumpItem[M, C](w, inner, indent+indentUnit, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s}\n", indent)
		return err

	case IfElse[M, C]:
		if _, err := fmt.Fprintf(w, "%sif (%s) {\n", indent, render(v.Cond)); err != nil {
			return err
		}
		for _, inner := range v.Then.items {
			if err := dumpItem[M, C](w, inner, indent+indentUnit, depth+1); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s}\n%selse      {\n", indent, indent); err != nil {
			return err
		}
		for _, inner := range v.Else.items {
			if err := dumpItem[M, C](w, inner, indent+indentUnit, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s}\n", indent)
		return err

	case While[M, C]:
		if v.Loop.label != "" {
			if _, err := fmt.Fprintf(w, "%s%s:\n", indent, v.Loop.label); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%swhile (%s) {\n", indent, render(v.Cond)); err != nil {
			return err
		}
		for _, inner := range v.Body.items {
			if err := dumpItem[M, C](w, inner, indent+indentUnit, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s}\n", indent)
		return err

	case DoWhile[M, C]:
		if v.Loop.label != "" {
			if _, err := fmt.Fprintf(w, "%s%s:\n", indent, v.Loop.label); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%sdo {\n", indent); err != nil {
			return err
		}
		for _, inner := range v.Body.items {
			if err := dumpItem[M, C](w, inner, indent+indentUnit, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s} while (%s);\n", indent, render(v.Cond))
		return err

	default:
		return fmt.Errorf("%w: %T", ErrUnknownConstruct, it)
	}
}

func dumpJump(w io.Writer, keyword string, target *Loop, indent string) error {
	if target != nil && target.label != "" {
		_, err := fmt.Fprintf(w, "%s%s %s;\n", indent, keyword, target.label)
		return err
	}
	_, err := fmt.Fprintf(w, "%s%s;\n", indent, keyword)
	return err
}
