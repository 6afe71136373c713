package javasrc

import (
	"bytes"
	"sort"
	"strings"

	tt "github.com/gnolang/jmig/internal/types"
)

// Render returns the source text of unit. An unchanged unit renders as its
// original bytes. Otherwise call-site edits are spliced in and the import
// block is rewritten, keeping the original text of every import that
// survived and the separators between imports that are still adjacent.
func Render(unit *tt.CompilationUnit) []byte {
	if !unit.Changed() {
		return unit.Source
	}

	edits := append([]tt.Edit(nil), unit.Edits...)
	if unit.ImportsChanged() {
		edits = append(edits, importBlockEdit(unit))
	}
	// apply from the end so earlier offsets stay valid
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Span.Start > edits[j].Span.Start
	})

	out := append([]byte(nil), unit.Source...)
	for _, e := range edits {
		if e.Span.Start < 0 || e.Span.End > len(out) || e.Span.Start > e.Span.End {
			continue
		}
		var buf bytes.Buffer
		buf.Grow(len(out) - e.Span.Len() + len(e.Text))
		buf.Write(out[:e.Span.Start])
		buf.WriteString(e.Text)
		buf.Write(out[e.Span.End:])
		out = buf.Bytes()
	}
	return out
}

func importBlockEdit(unit *tt.CompilationUnit) tt.Edit {
	nl := newline(unit.Source)
	text := renderImports(unit, nl)

	if len(unit.OriginalImports) == 0 {
		at := unit.ImportAnchor
		if at > 0 {
			text = nl + nl + text
		} else {
			text += nl + nl
		}
		return tt.Edit{Span: tt.Span{Start: at, End: at}, Text: text}
	}
	return tt.Edit{Span: unit.ImportBlock, Text: text}
}

func renderImports(unit *tt.CompilationUnit, nl string) string {
	groupSep := groupSeparator(unit, nl)

	var b strings.Builder
	for i, imp := range unit.Imports {
		if i > 0 {
			prev := unit.Imports[i-1]
			switch {
			case adjacent(unit, prev, imp):
				b.Write(unit.Source[prev.Span.End:imp.Span.Start])
			case prev.Static != imp.Static:
				b.WriteString(groupSep)
			default:
				b.WriteString(nl)
			}
		}
		if hasSource(unit, imp) {
			b.Write(unit.Source[imp.Span.Start:imp.Span.End])
		} else {
			b.WriteString(imp.String())
		}
	}
	return b.String()
}

// groupSeparator reuses whatever separated the type imports from the static
// imports in the original source, defaulting to one blank line.
func groupSeparator(unit *tt.CompilationUnit, nl string) string {
	orig := unit.OriginalImports
	for i := 1; i < len(orig); i++ {
		if orig[i-1].Static != orig[i].Static {
			sep := string(unit.Source[orig[i-1].Span.End:orig[i].Span.Start])
			if strings.TrimSpace(sep) == "" {
				return sep
			}
		}
	}
	return nl + nl
}

// adjacent reports whether a and b were consecutive in the original import
// list, in that order.
func adjacent(unit *tt.CompilationUnit, a, b tt.Import) bool {
	if !hasSource(unit, a) || !hasSource(unit, b) {
		return false
	}
	orig := unit.OriginalImports
	for i := 1; i < len(orig); i++ {
		if orig[i-1].Span == a.Span && orig[i].Span == b.Span {
			return true
		}
	}
	return false
}

func hasSource(unit *tt.CompilationUnit, imp tt.Import) bool {
	return !imp.Span.IsZero() && imp.Span.End <= len(unit.Source)
}

func newline(src []byte) string {
	if bytes.Contains(src, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}
