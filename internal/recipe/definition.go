package recipe

import (
	"fmt"
	"sort"

	tt "github.com/gnolang/jmig/internal/types"
)

// UseHamcrestAssertThatName is the registry name of the built-in recipe.
const UseHamcrestAssertThatName = "use-hamcrest-assert-that"

// Definition is the explicit configuration of one migration recipe.
type Definition struct {
	Name        string
	Description string
	// Legacy is the assertion entry point being migrated away from.
	Legacy tt.Symbol
	// Replacement is the API-compatible entry point used for every arity
	// without an entry in Overloads.
	Replacement tt.Symbol
	// MatcherFactories lists the types whose static import marks a unit
	// as using matcher arguments.
	MatcherFactories []string
	// Overloads maps an argument count to its own replacement.
	Overloads map[int]tt.Symbol
}

// UseHamcrestAssertThat migrates org.junit.Assert.assertThat to
// org.hamcrest.MatcherAssert.assertThat. Both the (actual, matcher) and
// (reason, actual, matcher) overloads exist with the same shape in
// MatcherAssert.
func UseHamcrestAssertThat() Definition {
	replacement := tt.MustParseSymbol("org.hamcrest.MatcherAssert.assertThat")
	return Definition{
		Name:        UseHamcrestAssertThatName,
		Description: "Use org.hamcrest.MatcherAssert.assertThat instead of the deprecated org.junit.Assert.assertThat",
		Legacy:      tt.MustParseSymbol("org.junit.Assert.assertThat"),
		Replacement: replacement,
		MatcherFactories: []string{
			"org.hamcrest.CoreMatchers",
			"org.hamcrest.Matchers",
		},
		Overloads: map[int]tt.Symbol{
			2: replacement,
			3: replacement,
		},
	}
}

// ReplacementFor returns the replacement entry point for a call with the
// given number of arguments.
func (d Definition) ReplacementFor(arity int) tt.Symbol {
	if s, ok := d.Overloads[arity]; ok {
		return s
	}
	return d.Replacement
}

// Validate checks that the definition can drive a rewrite.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("recipe has no name")
	}
	if d.Legacy.IsZero() {
		return fmt.Errorf("recipe %s: legacy entry point is not set", d.Name)
	}
	if d.Replacement.IsZero() {
		return fmt.Errorf("recipe %s: replacement entry point is not set", d.Name)
	}
	if len(d.MatcherFactories) == 0 {
		return fmt.Errorf("recipe %s: no matcher factory configured", d.Name)
	}

	targets := []tt.Symbol{d.Legacy, d.Replacement}
	for _, arity := range d.arities() {
		if arity < 0 {
			return fmt.Errorf("recipe %s: negative arity %d", d.Name, arity)
		}
		targets = append(targets, d.Overloads[arity])
	}
	for _, s := range targets {
		if !isIdentifier(s.Member) {
			return fmt.Errorf("recipe %s: %q is not a valid method name", d.Name, s.Member)
		}
		if !isQualifiedName(s.Owner) {
			return fmt.Errorf("recipe %s: %q is not a valid type name", d.Name, s.Owner)
		}
	}
	for _, f := range d.MatcherFactories {
		if !isQualifiedName(f) {
			return fmt.Errorf("recipe %s: %q is not a valid matcher factory type", d.Name, f)
		}
	}
	return nil
}

func (d Definition) arities() []int {
	arities := make([]int, 0, len(d.Overloads))
	for a := range d.Overloads {
		arities = append(arities, a)
	}
	sort.Ints(arities)
	return arities
}
