package types

import (
	"fmt"
	"strings"
)

// Position is a location in a source file. Line and Column are 1-based.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open byte range [Start, End) in a unit's source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) IsZero() bool { return s.Start == 0 && s.End == 0 }

func (s Span) Len() int { return s.End - s.Start }

// Import is a single import declaration of a compilation unit.
//
// Name never carries the trailing ".*" of an on-demand import; Wildcard
// records that form instead. Span is zero for imports added by a rewrite.
type Import struct {
	Name     string `json:"name"`
	Static   bool   `json:"static"`
	Wildcard bool   `json:"wildcard"`
	Span     Span   `json:"-"`
}

// String renders the import the way it is written in source.
func (i Import) String() string {
	var b strings.Builder
	b.WriteString("import ")
	if i.Static {
		b.WriteString("static ")
	}
	b.WriteString(i.Name)
	if i.Wildcard {
		b.WriteString(".*")
	}
	b.WriteByte(';')
	return b.String()
}

// Same reports whether both imports are textually identical, ignoring where
// they appear in the source.
func (i Import) Same(o Import) bool {
	return i.Name == o.Name && i.Static == o.Static && i.Wildcard == o.Wildcard
}

// SimpleName returns the name a single import binds in the unit's scope.
// On-demand imports bind no single name.
func (i Import) SimpleName() string {
	if i.Wildcard {
		return ""
	}
	return lastSegment(i.Name)
}

// Owner returns the type a static import reads members from.
// For a type import it is the imported type itself.
func (i Import) Owner() string {
	if i.Static && !i.Wildcard {
		if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
			return i.Name[:idx]
		}
	}
	return i.Name
}

// SortKey orders imports lexicographically by qualified name; the wildcard
// form sorts as written.
func (i Import) SortKey() string {
	if i.Wildcard {
		return i.Name + ".*"
	}
	return i.Name
}

// Symbol identifies a resolved member: Owner is the fully qualified
// declaring type and Member the simple member name.
type Symbol struct {
	Owner  string `json:"owner" yaml:"owner"`
	Member string `json:"member" yaml:"member"`
}

// ParseSymbol splits a fully qualified member name such as
// "org.junit.Assert.assertThat" into its owner and member.
func ParseSymbol(fqn string) (Symbol, error) {
	fqn = strings.TrimSpace(fqn)
	idx := strings.LastIndexByte(fqn, '.')
	if idx <= 0 || idx == len(fqn)-1 {
		return Symbol{}, fmt.Errorf("invalid qualified member name %q", fqn)
	}
	return Symbol{Owner: fqn[:idx], Member: fqn[idx+1:]}, nil
}

// MustParseSymbol is like ParseSymbol but panics on malformed input.
func MustParseSymbol(fqn string) Symbol {
	s, err := ParseSymbol(fqn)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Symbol) String() string {
	if s.IsZero() {
		return ""
	}
	return s.Owner + "." + s.Member
}

func (s Symbol) IsZero() bool { return s.Owner == "" && s.Member == "" }

// OwnerSimpleName returns the unqualified name of the declaring type.
func (s Symbol) OwnerSimpleName() string { return lastSegment(s.Owner) }

// StaticImport returns the single static import that binds this member.
func (s Symbol) StaticImport() Import {
	return Import{Name: s.String(), Static: true}
}

// TypeImport returns the single type import of the declaring type.
func (s Symbol) TypeImport() Import {
	return Import{Name: s.Owner}
}

func lastSegment(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
