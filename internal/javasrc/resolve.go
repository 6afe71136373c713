package javasrc

import (
	tt "github.com/gnolang/jmig/internal/types"
)

// Resolve binds the target of every invocation in unit using only what the
// unit itself declares. A target is left unresolved whenever the unit
// alone cannot tell what it refers to.
//
//   - Methods declared in the unit shadow every import of the same name.
//   - A bare call binds through the single static import of its name, or
//     through the only static on-demand import when no class body in the
//     unit inherits members from elsewhere.
//   - Type.m() binds through a type declared in the unit or a single type
//     import; java.lang and same-package types are not known here.
//   - pkg.Type.m() binds directly.
func Resolve(unit *tt.CompilationUnit) {
	for _, inv := range unit.Invocations {
		inv.Target = tt.Symbol{}
		inv.Resolved = false
		inv.Binding = tt.Import{}

		switch inv.Form {
		case tt.FormUnqualified:
			resolveUnqualified(unit, inv)
		case tt.FormTypeQualified:
			resolveTypeQualified(unit, inv)
		case tt.FormFullyQualified:
			inv.Target = tt.Symbol{Owner: inv.Qualifier, Member: inv.Name}
			inv.Resolved = true
		}
	}
}

func resolveUnqualified(unit *tt.CompilationUnit, inv *tt.Invocation) {
	if unit.Methods[inv.Name] {
		return
	}

	var single []tt.Import
	for _, imp := range unit.Imports {
		if imp.Static && !imp.Wildcard && imp.SimpleName() == inv.Name && !sameOwner(single, imp) {
			single = append(single, imp)
		}
	}
	switch len(single) {
	case 0:
	case 1:
		bind(inv, single[0].Owner(), single[0])
		return
	default:
		// overloads imported from several types
		return
	}

	if unit.Inherits {
		return
	}
	var onDemand []tt.Import
	for _, imp := range unit.Imports {
		if imp.Static && imp.Wildcard && !sameOwner(onDemand, imp) {
			onDemand = append(onDemand, imp)
		}
	}
	if len(onDemand) == 1 {
		bind(inv, onDemand[0].Owner(), onDemand[0])
	}
}

func resolveTypeQualified(unit *tt.CompilationUnit, inv *tt.Invocation) {
	for _, decl := range unit.Decls {
		if decl.Name == inv.Qualifier {
			owner := decl.Name
			if unit.Package != "" {
				owner = unit.Package + "." + decl.Name
			}
			inv.Target = tt.Symbol{Owner: owner, Member: inv.Name}
			inv.Resolved = true
			return
		}
	}
	for _, imp := range unit.Imports {
		if !imp.Static && !imp.Wildcard && imp.SimpleName() == inv.Qualifier {
			bind(inv, imp.Name, imp)
			return
		}
	}
}

func bind(inv *tt.Invocation, owner string, through tt.Import) {
	inv.Target = tt.Symbol{Owner: owner, Member: inv.Name}
	inv.Resolved = true
	inv.Binding = through
}

func sameOwner(imports []tt.Import, imp tt.Import) bool {
	for _, existing := range imports {
		if existing.Owner() == imp.Owner() {
			return true
		}
	}
	return false
}
