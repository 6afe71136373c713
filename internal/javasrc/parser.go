package javasrc

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	tt "github.com/gnolang/jmig/internal/types"
)

// Parse builds a compilation unit from Java source and resolves the
// targets of its method invocations. Sources that do not parse cleanly are
// rejected with an error wrapping types.ErrSyntax.
func Parse(ctx context.Context, filename string, src []byte) (*tt.CompilationUnit, error) {
	tree, err := parseTree(ctx, filename, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	unit := tt.NewCompilationUnit(filename, src)
	b := &builder{unit: unit, src: src}
	b.program(tree.RootNode())
	Resolve(unit)
	return unit, nil
}

// Validate re-parses src and fails with an error wrapping types.ErrSyntax
// when the tree contains errors.
func Validate(ctx context.Context, filename string, src []byte) error {
	tree, err := parseTree(ctx, filename, src)
	if err != nil {
		return err
	}
	tree.Close()
	return nil
}

func parseTree(ctx context.Context, filename string, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, fmt.Errorf("parsing %s: empty syntax tree", filename)
	}
	if errNode := firstError(root); errNode != nil {
		tree.Close()
		return nil, fmt.Errorf("%w: %s:%d:%d", tt.ErrSyntax, filename,
			errNode.StartPoint().Row+1, errNode.StartPoint().Column+1)
	}
	return tree, nil
}

type builder struct {
	unit *tt.CompilationUnit
	src  []byte
}

func (b *builder) program(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			b.packageDecl(child)
		case "import_declaration":
			b.importDecl(child)
		case "class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration":
			b.typeDecl(child)
			b.walk(child)
		default:
			b.walk(child)
		}
	}
	b.unit.OriginalImports = append([]tt.Import(nil), b.unit.Imports...)
}

func (b *builder) packageDecl(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "identifier", "scoped_identifier":
			b.unit.Package = compact(c.Content(b.src))
		}
	}
	b.unit.PackageLine = int(n.StartPoint().Row) + 1
	b.unit.ImportAnchor = int(n.EndByte())
}

func (b *builder) importDecl(n *sitter.Node) {
	imp := tt.Import{Span: span(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "identifier", "scoped_identifier":
			imp.Name = compact(c.Content(b.src))
		}
	}
	if imp.Name == "" {
		return
	}
	b.unit.Imports = append(b.unit.Imports, imp)
	if b.unit.ImportBlock.IsZero() {
		b.unit.ImportBlock = imp.Span
	} else {
		b.unit.ImportBlock.End = imp.Span.End
	}
}

func (b *builder) typeDecl(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	b.unit.Decls = append(b.unit.Decls, tt.Decl{
		Kind: strings.TrimSuffix(n.Type(), "_declaration"),
		Name: name.Content(b.src),
		Span: span(n),
	})
}

func (b *builder) walk(n *sitter.Node) {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		b.comment(n)
		return
	case "identifier", "type_identifier":
		b.unit.Usages[n.Content(b.src)]++
	case "method_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			b.unit.Methods[name.Content(b.src)] = true
		}
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		if hasSupertypes(n) {
			b.unit.Inherits = true
		}
	case "object_creation_expression":
		if hasNamedChild(n, "class_body") {
			b.unit.Inherits = true
		}
	case "method_invocation":
		b.invocation(n)
	}
	afterScope := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() {
			if c.Type() == "::" {
				afterScope = true
			}
			continue
		}
		if isMemberName(n, c, n.FieldNameForChild(i), afterScope) {
			continue
		}
		b.walk(c)
	}
}

// isMemberName reports whether child of parent names a member selected
// from something else, such as the method in x.m() or the last segment
// of a.b.C. Those names do not bind through imports.
func isMemberName(parent, child *sitter.Node, field string, afterScope bool) bool {
	switch parent.Type() {
	case "method_invocation":
		return field == "name" && parent.ChildByFieldName("object") != nil
	case "field_access":
		return field == "field"
	case "scoped_identifier":
		return field == "name"
	case "scoped_type_identifier":
		return child.Type() == "type_identifier" && !parent.NamedChild(0).Equal(child)
	case "method_reference":
		return afterScope && child.Type() == "identifier"
	}
	return false
}

func (b *builder) comment(n *sitter.Node) {
	start := int(n.StartByte())
	lineStart := start
	for lineStart > 0 && b.src[lineStart-1] != '\n' {
		lineStart--
	}
	b.unit.Comments = append(b.unit.Comments, tt.Comment{
		Text:    n.Content(b.src),
		Line:    int(n.StartPoint().Row) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
		Inline:  strings.TrimSpace(string(b.src[lineStart:start])) != "",
	})
}

func (b *builder) invocation(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	inv := &tt.Invocation{
		Name:     name.Content(b.src),
		NameSpan: span(name),
		Form:     tt.FormUnqualified,
		Start:    position(n),
	}
	if obj := n.ChildByFieldName("object"); obj != nil {
		inv.QualifierSpan = span(obj)
		inv.Qualifier, inv.Form = qualifier(obj, b.src)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if isComment(arg) {
				continue
			}
			inv.Args = append(inv.Args, arg.Content(b.src))
		}
	}
	b.unit.AddInvocation(inv)
}

// qualifier classifies the receiver of a call. Only dotted names whose last
// segment looks like a type are treated as type references; everything
// else is an expression receiver and never resolved.
func qualifier(obj *sitter.Node, src []byte) (string, tt.CallForm) {
	name, ok := dottedName(obj, src)
	if !ok {
		return obj.Content(src), tt.FormReceiver
	}
	segments := strings.Split(name, ".")
	last := segments[len(segments)-1]
	if !startsUpper(last) {
		return name, tt.FormReceiver
	}
	if len(segments) == 1 {
		return name, tt.FormTypeQualified
	}
	for _, s := range segments[:len(segments)-1] {
		// Outer.Inner.method() and friends
		if startsUpper(s) {
			return name, tt.FormReceiver
		}
	}
	return name, tt.FormFullyQualified
}

func dottedName(n *sitter.Node, src []byte) (string, bool) {
	switch n.Type() {
	case "identifier", "type_identifier":
		return n.Content(src), true
	case "field_access":
		return joinDotted(n.ChildByFieldName("object"), n.ChildByFieldName("field"), src)
	case "scoped_identifier", "scoped_type_identifier":
		return joinDotted(n.ChildByFieldName("scope"), n.ChildByFieldName("name"), src)
	}
	return "", false
}

func joinDotted(left, right *sitter.Node, src []byte) (string, bool) {
	if left == nil || right == nil {
		return "", false
	}
	l, ok := dottedName(left, src)
	if !ok {
		return "", false
	}
	r, ok := dottedName(right, src)
	if !ok {
		return "", false
	}
	return l + "." + r, true
}

func hasSupertypes(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		switch n.NamedChild(i).Type() {
		case "superclass", "super_interfaces", "extends_interfaces":
			return true
		}
	}
	return false
}

func hasNamedChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == typ {
			return true
		}
	}
	return false
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := firstError(n.Child(i)); e != nil {
			return e
		}
	}
	return nil
}

func span(n *sitter.Node) tt.Span {
	return tt.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func position(n *sitter.Node) tt.Position {
	p := n.StartPoint()
	return tt.Position{
		Offset: int(n.StartByte()),
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

// compact drops the whitespace tree-sitter keeps inside qualified names.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
