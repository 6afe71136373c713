package recipe

import (
	"fmt"

	tt "github.com/gnolang/jmig/internal/types"
)

// Rewriter turns a match into the import and call-site changes that
// migrate it.
type Rewriter struct {
	def Definition
}

func NewRewriter(def Definition) *Rewriter {
	return &Rewriter{def: def}
}

// Plan computes the changes for one matched call site. It returns a
// *types.ConflictError when the replacement would rebind a simple name that
// already means something else in unit; the call site must then be left
// as it is.
//
// Plan never modifies unit. Removal of the legacy import is only proposed
// here: whether it is applied depends on the other call sites of the unit.
func (r *Rewriter) Plan(unit *tt.CompilationUnit, match tt.MatchResult) (tt.RewritePlan, error) {
	inv := match.Invocation
	if inv == nil || !inv.Resolved {
		return tt.RewritePlan{}, tt.ErrUnresolvedTarget
	}

	repl := r.def.ReplacementFor(inv.Arity())
	plan := tt.RewritePlan{Invocation: inv}

	if repl.Member != inv.Name {
		if !isIdentifier(repl.Member) {
			return tt.RewritePlan{}, fmt.Errorf("replacement %s: %q is not a valid method name", repl, repl.Member)
		}
		plan.Edits = append(plan.Edits, tt.Edit{Span: inv.NameSpan, Text: repl.Member})
	}

	switch inv.Form {
	case tt.FormUnqualified:
		add := repl.StaticImport()
		if err := checkStaticName(unit, add, match.Binding); err != nil {
			return tt.RewritePlan{}, err
		}
		plan.Add = &add
		// on-demand imports keep serving the other members of the type;
		// the single import shadows them for this name
		if match.Binding.Name != "" && !match.Binding.Wildcard && !match.Binding.Same(add) {
			rm := match.Binding
			plan.Remove = &rm
		}

	case tt.FormTypeQualified:
		add := repl.TypeImport()
		if !add.Same(match.Binding) {
			if err := checkTypeName(unit, add, match.Binding); err != nil {
				return tt.RewritePlan{}, err
			}
			plan.Add = &add
			if match.Binding.Name != "" {
				rm := match.Binding
				plan.Remove = &rm
			}
		}
		if q := repl.OwnerSimpleName(); q != inv.Qualifier {
			plan.Edits = append(plan.Edits, tt.Edit{Span: inv.QualifierSpan, Text: q})
		}

	case tt.FormFullyQualified:
		if repl.Owner != inv.Qualifier {
			plan.Edits = append(plan.Edits, tt.Edit{Span: inv.QualifierSpan, Text: repl.Owner})
		}

	default:
		return tt.RewritePlan{}, fmt.Errorf("%w: %s call", tt.ErrUnresolvedTarget, inv.Form)
	}

	return plan, nil
}

// checkStaticName fails when the simple name bound by add is already bound
// by a method of the unit or by an unrelated single static import.
func checkStaticName(unit *tt.CompilationUnit, add, binding tt.Import) error {
	name := add.SimpleName()
	if unit.Methods[name] {
		return &tt.ConflictError{Wanted: add, Existing: "method " + name + " declared in " + unitName(unit)}
	}
	for _, imp := range unit.Imports {
		if !imp.Static || imp.Wildcard || imp.SimpleName() != name {
			continue
		}
		if imp.Same(add) || imp.Same(binding) {
			continue
		}
		return &tt.ConflictError{Wanted: add, Existing: imp.Name}
	}
	return nil
}

// checkTypeName fails when the simple type name bound by add is already
// declared in the unit or imported from another package.
func checkTypeName(unit *tt.CompilationUnit, add, binding tt.Import) error {
	name := add.SimpleName()
	for _, decl := range unit.Decls {
		if decl.Name == name {
			return &tt.ConflictError{Wanted: add, Existing: qualify(unit.Package, decl.Name)}
		}
	}
	for _, imp := range unit.Imports {
		if imp.Static || imp.Wildcard || imp.SimpleName() != name {
			continue
		}
		if imp.Same(add) || imp.Same(binding) {
			continue
		}
		return &tt.ConflictError{Wanted: add, Existing: imp.Name}
	}
	return nil
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func unitName(unit *tt.CompilationUnit) string {
	if unit.Filename != "" {
		return unit.Filename
	}
	if len(unit.Decls) > 0 {
		return qualify(unit.Package, unit.Decls[0].Name)
	}
	return "this unit"
}
