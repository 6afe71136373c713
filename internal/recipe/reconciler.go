package recipe

import (
	tt "github.com/gnolang/jmig/internal/types"
)

// Reconcile applies the removals and additions gathered for a whole unit
// to its import list in one pass and reports whether the list changed.
//
// Removing an import that is not present is a no-op. An addition that is
// already present is skipped; others are inserted in lexicographic order
// within the static or non-static group. Duplicate entries already in the
// unit are treated as one: a removal drops every copy, and when the list
// changes the remaining copies are collapsed.
func Reconcile(unit *tt.CompilationUnit, removals, additions []tt.Import) bool {
	before := append([]tt.Import(nil), unit.Imports...)
	imports := unit.Imports

	for _, rm := range removals {
		imports = dropImport(imports, rm)
	}
	for _, add := range additions {
		if containsImport(imports, add) {
			continue
		}
		imports = insertImport(imports, tt.Import{Name: add.Name, Static: add.Static, Wildcard: add.Wildcard})
	}

	if sameImports(before, imports) {
		unit.Imports = before
		return false
	}
	unit.Imports = dedupImports(imports)
	return true
}

func dropImport(imports []tt.Import, rm tt.Import) []tt.Import {
	out := imports[:0:0]
	for _, imp := range imports {
		if !imp.Same(rm) {
			out = append(out, imp)
		}
	}
	return out
}

func containsImport(imports []tt.Import, imp tt.Import) bool {
	for _, existing := range imports {
		if existing.Same(imp) {
			return true
		}
	}
	return false
}

// insertImport places imp before the first import of its group that sorts
// after it, or after the last import of its group. A static import with no
// static group to join goes after everything, a type import with no type
// group goes before the first static import.
func insertImport(imports []tt.Import, imp tt.Import) []tt.Import {
	key := imp.SortKey()
	at := -1
	lastInGroup := -1
	for i, existing := range imports {
		if existing.Static != imp.Static {
			continue
		}
		lastInGroup = i
		if at < 0 && existing.SortKey() > key {
			at = i
		}
	}

	switch {
	case at >= 0:
	case lastInGroup >= 0:
		at = lastInGroup + 1
	case imp.Static:
		at = len(imports)
	default:
		at = firstStatic(imports)
	}

	out := make([]tt.Import, 0, len(imports)+1)
	out = append(out, imports[:at]...)
	out = append(out, imp)
	return append(out, imports[at:]...)
}

func firstStatic(imports []tt.Import) int {
	for i, imp := range imports {
		if imp.Static {
			return i
		}
	}
	return len(imports)
}

func dedupImports(imports []tt.Import) []tt.Import {
	out := make([]tt.Import, 0, len(imports))
	for _, imp := range imports {
		if !containsImport(out, imp) {
			out = append(out, imp)
		}
	}
	return out
}

func sameImports(a, b []tt.Import) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Same(b[i]) {
			return false
		}
	}
	return true
}
