package recipe

import (
	tt "github.com/gnolang/jmig/internal/types"
)

// Matcher decides whether a call site is a use of the legacy assertion
// entry point in a unit that imports a matcher factory.
type Matcher struct {
	legacy    tt.Symbol
	factories map[string]bool
}

func NewMatcher(def Definition) *Matcher {
	factories := make(map[string]bool, len(def.MatcherFactories))
	for _, f := range def.MatcherFactories {
		factories[f] = true
	}
	return &Matcher{legacy: def.Legacy, factories: factories}
}

// Matches reports whether inv calls the legacy entry point and unit
// statically imports a matcher factory. It never modifies unit.
func (m *Matcher) Matches(inv *tt.Invocation, unit *tt.CompilationUnit) bool {
	_, ok := m.Match(inv, unit)
	return ok
}

// Match is Matches returning the imports the match depends on.
func (m *Matcher) Match(inv *tt.Invocation, unit *tt.CompilationUnit) (tt.MatchResult, bool) {
	if inv == nil || unit == nil || !inv.Resolved {
		return tt.MatchResult{}, false
	}
	// overloads differ only by arity, so the member symbol is enough
	if inv.Target != m.legacy {
		return tt.MatchResult{}, false
	}
	factory, ok := m.factoryImport(unit)
	if !ok {
		return tt.MatchResult{}, false
	}
	return tt.MatchResult{
		Invocation: inv,
		Binding:    inv.Binding,
		Factory:    factory,
	}, true
}

// IsCandidate reports whether inv could be a call of the legacy member,
// whether or not its target could be resolved. Calls on a receiver
// expression never are.
func (m *Matcher) IsCandidate(inv *tt.Invocation) bool {
	if inv == nil || inv.Name != m.legacy.Member {
		return false
	}
	return inv.Form == tt.FormUnqualified || inv.Form == tt.FormTypeQualified
}

func (m *Matcher) factoryImport(unit *tt.CompilationUnit) (tt.Import, bool) {
	for _, imp := range unit.Imports {
		if imp.Static && m.factories[imp.Owner()] {
			return imp, true
		}
	}
	return tt.Import{}, false
}
