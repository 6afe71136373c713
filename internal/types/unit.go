package types

// CallForm describes how an invocation names its target.
type CallForm int

const (
	// FormUnqualified is a bare call such as assertThat(a, b).
	FormUnqualified CallForm = iota
	// FormTypeQualified is qualified by a simple type name: Assert.assertThat(a, b).
	FormTypeQualified
	// FormFullyQualified is qualified by a fully qualified type name.
	FormFullyQualified
	// FormReceiver is a call on an arbitrary receiver expression.
	FormReceiver
)

func (f CallForm) String() string {
	switch f {
	case FormUnqualified:
		return "unqualified"
	case FormTypeQualified:
		return "type-qualified"
	case FormFullyQualified:
		return "fully-qualified"
	case FormReceiver:
		return "receiver"
	default:
		return "unknown"
	}
}

// Edit replaces the bytes covered by Span with Text.
type Edit struct {
	Span Span   `json:"span"`
	Text string `json:"text"`
}

// Decl is a top-level type declaration.
type Decl struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Span Span   `json:"-"`
}

// Comment is a source comment. Inline is set when code precedes the comment
// on its starting line.
type Comment struct {
	Text    string
	Line    int
	EndLine int
	Inline  bool
}

// Invocation is a method call site.
type Invocation struct {
	ID            int
	Name          string
	NameSpan      Span
	Qualifier     string
	QualifierSpan Span
	Form          CallForm
	Args          []string
	Start         Position

	// Target is only meaningful when Resolved is set.
	Target   Symbol
	Resolved bool
	// Binding is the import the target was resolved through, if any.
	Binding Import

	unit *CompilationUnit
}

// Unit returns the compilation unit the invocation belongs to.
func (inv *Invocation) Unit() *CompilationUnit { return inv.unit }

func (inv *Invocation) Arity() int { return len(inv.Args) }

// HasBinding reports whether the target was resolved through an import.
func (inv *Invocation) HasBinding() bool { return inv.Binding.Name != "" }

// CompilationUnit is the parsed form of one source file.
//
// A unit is never edited in place by a recipe: the driver works on a Clone
// and either keeps or discards that revision as a whole.
type CompilationUnit struct {
	Filename    string
	Source      []byte
	Package     string
	PackageLine int

	Imports []Import
	// OriginalImports is the import list as parsed. It is shared between
	// revisions and must not be modified.
	OriginalImports []Import
	// ImportBlock covers the original import declarations; zero when the
	// unit has none.
	ImportBlock Span
	// ImportAnchor is the offset new imports are written at when the unit
	// has no import block.
	ImportAnchor int

	Decls       []Decl
	Invocations []*Invocation
	Comments    []Comment

	// Methods holds the names of methods declared in the unit.
	Methods map[string]bool
	// Inherits is set when some class body in the unit has a supertype
	// whose members are unknown here.
	Inherits bool
	// Usages counts identifiers that bind through the unit's scope,
	// outside the package and import declarations. Member names selected
	// from a receiver or a qualifier are not counted.
	Usages map[string]int

	Edits []Edit
}

// NewCompilationUnit returns an empty unit for filename and source.
func NewCompilationUnit(filename string, source []byte) *CompilationUnit {
	return &CompilationUnit{
		Filename: filename,
		Source:   source,
		Methods:  make(map[string]bool),
		Usages:   make(map[string]int),
	}
}

// AddInvocation appends inv to the unit and links it back to the unit.
func (u *CompilationUnit) AddInvocation(inv *Invocation) {
	inv.ID = len(u.Invocations)
	inv.unit = u
	u.Invocations = append(u.Invocations, inv)
}

// Clone returns an independently owned revision of the unit. Source and
// OriginalImports are shared since neither is ever written.
func (u *CompilationUnit) Clone() *CompilationUnit {
	c := &CompilationUnit{
		Filename:        u.Filename,
		Source:          u.Source,
		Package:         u.Package,
		PackageLine:     u.PackageLine,
		Imports:         append([]Import(nil), u.Imports...),
		OriginalImports: u.OriginalImports,
		ImportBlock:     u.ImportBlock,
		ImportAnchor:    u.ImportAnchor,
		Decls:           append([]Decl(nil), u.Decls...),
		Comments:        u.Comments,
		Inherits:        u.Inherits,
		Methods:         make(map[string]bool, len(u.Methods)),
		Usages:          make(map[string]int, len(u.Usages)),
		Edits:           append([]Edit(nil), u.Edits...),
	}
	for k, v := range u.Methods {
		c.Methods[k] = v
	}
	for k, v := range u.Usages {
		c.Usages[k] = v
	}
	c.Invocations = make([]*Invocation, 0, len(u.Invocations))
	for _, inv := range u.Invocations {
		cp := *inv
		cp.Args = append([]string(nil), inv.Args...)
		cp.unit = c
		c.Invocations = append(c.Invocations, &cp)
	}
	return c
}

// FindImport returns the index of the first import textually identical to
// imp, or -1.
func (u *CompilationUnit) FindImport(imp Import) int {
	for i, existing := range u.Imports {
		if existing.Same(imp) {
			return i
		}
	}
	return -1
}

func (u *CompilationUnit) HasImport(imp Import) bool {
	return u.FindImport(imp) >= 0
}

// ImportsChanged reports whether the import list differs from the parsed one.
func (u *CompilationUnit) ImportsChanged() bool {
	if len(u.Imports) != len(u.OriginalImports) {
		return true
	}
	for i := range u.Imports {
		if !u.Imports[i].Same(u.OriginalImports[i]) {
			return true
		}
	}
	return false
}

// Changed reports whether rendering the unit would produce different bytes.
func (u *CompilationUnit) Changed() bool {
	return len(u.Edits) > 0 || u.ImportsChanged()
}
