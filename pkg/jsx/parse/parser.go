// Package parse reads JSX and TSX source files into pkg/jsx trees using
// tree-sitter.
package parse

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/recera/compilemode/pkg/compiler"
	"github.com/recera/compilemode/pkg/jsx"
)

// Tree-sitter node types used by the converter.
const (
	nodeImportStatement  = "import_statement"
	nodeImportClause     = "import_clause"
	nodeNamedImports     = "named_imports"
	nodeImportSpecifier  = "import_specifier"
	nodeNamespaceImport  = "namespace_import"
	nodeJSXElement       = "jsx_element"
	nodeJSXSelfClosing   = "jsx_self_closing_element"
	nodeJSXOpening       = "jsx_opening_element"
	nodeJSXClosing       = "jsx_closing_element"
	nodeJSXAttribute     = "jsx_attribute"
	nodeJSXExpression    = "jsx_expression"
	nodeJSXText          = "jsx_text"
	nodeJSXNamespaceName = "jsx_namespace_name"
	nodeNestedIdentifier = "nested_identifier"
	nodeCharReference    = "html_character_reference"
	nodeSpreadElement    = "spread_element"
	nodeIdentifier       = "identifier"
	nodePropertyIdent    = "property_identifier"
	nodeMember           = "member_expression"
	nodeSubscript        = "subscript_expression"
	nodeCall             = "call_expression"
	nodeArrow            = "arrow_function"
	nodeFunction         = "function"
	nodeRequiredParam    = "required_parameter"
	nodeOptionalParam    = "optional_parameter"
	nodeAsExpr           = "as_expression"
	nodeNonNull          = "non_null_expression"
	nodeSatisfies        = "satisfies_expression"
	nodeFunctionExpr     = "function_expression"
	nodeParenthesized    = "parenthesized_expression"
	nodeStatementBlock   = "statement_block"
	nodeReturn           = "return_statement"
	nodeExpressionStmt   = "expression_statement"
	nodeTernary          = "ternary_expression"
	nodeBinary           = "binary_expression"
	nodeString           = "string"
	nodeStringFragment   = "string_fragment"
	nodeEscapeSequence   = "escape_sequence"
	nodeNumber           = "number"
	nodeTrue             = "true"
	nodeFalse            = "false"
	nodeComment          = "comment"
)

// xscriptExtensions are the module suffixes whose default import is an
// xscript module alias.
var xscriptExtensions = []string{".wxs", ".sjs"}

// File is a parsed source file.
type File struct {
	Name string

	// Roots are the outermost JSX elements in source order.
	Roots []*jsx.Element

	Imports   compiler.ImportMaps
	XSModules []string
}

// CompileRoots returns the roots opted into compile mode. With all set every
// root is returned.
func (f *File) CompileRoots(all bool) []*jsx.Element {
	if all {
		return f.Roots
	}
	var out []*jsx.Element
	for _, r := range f.Roots {
		if r.HasAttr("compileMode") {
			out = append(out, r)
		}
	}
	return out
}

// languageFor picks the grammar from the file extension. Plain .ts files
// cannot contain JSX but may still declare imports.
func languageFor(filename string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	}
	return javascript.GetLanguage()
}

// Parse parses a JSX source file. Syntax errors are reported as a
// *compiler.Error matching compiler.ErrSyntax.
func Parse(ctx context.Context, src []byte, filename string) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(filename))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, compiler.NewError(compiler.PhaseParse, compiler.KindSyntax).
			Path(filename).
			Cause(err).
			Build()
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		detail := "invalid syntax"
		if n := firstError(root); n != nil {
			p := n.StartPoint()
			detail = fmt.Sprintf("invalid syntax at %d:%d", p.Row+1, p.Column+1)
		}
		return nil, compiler.NewError(compiler.PhaseParse, compiler.KindSyntax).
			Path(filename).
			Detail(detail).
			Build()
	}

	c := &converter{src: src}
	f := &File{
		Name: filename,
		Imports: compiler.ImportMaps{
			Aliases:    make(map[string]string),
			Specifiers: make(map[string]string),
		},
	}
	c.scan(root, f)
	return f, nil
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.HasError() {
			if e := firstError(child); e != nil {
				return e
			}
		}
	}
	return nil
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

// scan collects imports and outermost JSX elements.
func (c *converter) scan(n *sitter.Node, f *File) {
	switch n.Type() {
	case nodeImportStatement:
		c.imports(n, f)
		return
	case nodeJSXElement, nodeJSXSelfClosing:
		if el, ok := c.node(n).(*jsx.Element); ok {
			f.Roots = append(f.Roots, el)
			return
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.scan(n.NamedChild(i), f)
	}
}

func (c *converter) imports(n *sitter.Node, f *File) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return
	}
	module := c.stringValue(source)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != nodeImportClause {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			child := clause.NamedChild(j)
			switch child.Type() {
			case nodeIdentifier:
				local := c.text(child)
				f.Imports.Specifiers[local] = module
				if isXScriptModule(module) {
					f.XSModules = append(f.XSModules, local)
				}
			case nodeNamespaceImport:
				for k := 0; k < int(child.NamedChildCount()); k++ {
					if id := child.NamedChild(k); id.Type() == nodeIdentifier {
						f.Imports.Specifiers[c.text(id)] = module
					}
				}
			case nodeNamedImports:
				for k := 0; k < int(child.NamedChildCount()); k++ {
					spec := child.NamedChild(k)
					if spec.Type() != nodeImportSpecifier {
						continue
					}
					name := spec.ChildByFieldName("name")
					if name == nil {
						continue
					}
					local := c.text(name)
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						local = c.text(alias)
					}
					f.Imports.Aliases[c.text(name)] = local
					f.Imports.Specifiers[local] = module
				}
			}
		}
	}
}

func isXScriptModule(module string) bool {
	for _, ext := range xscriptExtensions {
		if strings.HasSuffix(module, ext) {
			return true
		}
	}
	return false
}

// node converts a JSX node. It returns nil for nodes that produce nothing.
func (c *converter) node(n *sitter.Node) jsx.Node {
	switch n.Type() {
	case nodeJSXSelfClosing:
		return &jsx.Element{
			Name:        c.elementName(n.ChildByFieldName("name")),
			Attrs:       c.attrs(n),
			SelfClosing: true,
		}
	case nodeJSXElement:
		open := n.ChildByFieldName("open_tag")
		if open == nil {
			return nil
		}
		children := c.children(n)
		name := open.ChildByFieldName("name")
		if name == nil {
			return &jsx.Fragment{Children: children}
		}
		return &jsx.Element{
			Name:     c.elementName(name),
			Attrs:    c.attrs(open),
			Children: children,
		}
	case nodeJSXText, nodeCharReference:
		return &jsx.Text{Value: c.text(n)}
	case nodeJSXExpression:
		inner := c.innerExpression(n)
		if inner == nil {
			return &jsx.ExprContainer{}
		}
		if inner.Type() == nodeSpreadElement {
			return &jsx.Spread{Expr: c.expr(inner.NamedChild(0))}
		}
		return &jsx.ExprContainer{Expr: c.expr(inner)}
	}
	return nil
}

// innerExpression returns the expression inside {...}, skipping comments.
func (c *converter) innerExpression(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() != nodeComment {
			return child
		}
	}
	return nil
}

func (c *converter) children(n *sitter.Node) []jsx.Node {
	var out []jsx.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeJSXOpening, nodeJSXClosing:
			continue
		}
		conv := c.node(child)
		if conv == nil {
			continue
		}
		// character references split text nodes; join them back
		if t, ok := conv.(*jsx.Text); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*jsx.Text); ok {
				prev.Value += t.Value
				continue
			}
		}
		out = append(out, conv)
	}
	return out
}

func (c *converter) elementName(n *sitter.Node) jsx.ElementName {
	if n == nil {
		return &jsx.Ident{}
	}
	switch n.Type() {
	case nodeJSXNamespaceName:
		ns, name := n.NamedChild(0), n.NamedChild(1)
		if ns != nil && name != nil {
			return &jsx.NamespacedName{Namespace: c.text(ns), Name: c.text(name)}
		}
	case nodeMember, nodeNestedIdentifier:
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj == nil || prop == nil {
			// older grammars expose nested identifiers positionally
			obj, prop = n.NamedChild(0), n.NamedChild(int(n.NamedChildCount())-1)
		}
		if obj != nil && prop != nil {
			return &jsx.MemberName{Object: c.elementName(obj), Prop: c.text(prop)}
		}
	}
	return &jsx.Ident{Name: c.text(n)}
}

func (c *converter) attrs(n *sitter.Node) []jsx.AttrOrSpread {
	var out []jsx.AttrOrSpread
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeJSXAttribute:
			out = append(out, c.attr(child))
		case nodeJSXExpression:
			inner := c.innerExpression(child)
			if inner != nil && inner.Type() == nodeSpreadElement {
				out = append(out, &jsx.SpreadAttr{Expr: c.expr(inner.NamedChild(0))})
			}
		}
	}
	return out
}

func (c *converter) attr(n *sitter.Node) *jsx.Attr {
	attr := &jsx.Attr{}
	if n.NamedChildCount() == 0 {
		return attr
	}
	attr.Key = c.text(n.NamedChild(0))
	if n.NamedChildCount() < 2 {
		return attr
	}

	value := n.NamedChild(int(n.NamedChildCount()) - 1)
	switch value.Type() {
	case nodeString:
		attr.Value = &jsx.StringLit{Value: c.stringValue(value)}
	case nodeJSXExpression:
		inner := c.innerExpression(value)
		if inner == nil {
			attr.Value = &jsx.ExprContainer{}
		} else {
			attr.Value = &jsx.ExprContainer{Expr: c.expr(inner)}
		}
	case nodeJSXElement, nodeJSXSelfClosing:
		switch v := c.node(value).(type) {
		case *jsx.Element:
			attr.Value = v
		case *jsx.Fragment:
			attr.Value = v
		}
	}
	return attr
}

// stringValue returns the contents of a string literal without quotes.
// Escape sequences are kept as written.
func (c *converter) stringValue(n *sitter.Node) string {
	var b strings.Builder
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeStringFragment, nodeEscapeSequence:
			b.WriteString(c.text(child))
		}
	}
	if b.Len() == 0 {
		s := c.text(n)
		if len(s) >= 2 {
			return s[1 : len(s)-1]
		}
	}
	return b.String()
}

// expr converts the expressions the transform looks into. Everything else is
// kept as raw source.
func (c *converter) expr(n *sitter.Node) jsx.Expr {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case nodeIdentifier, "this":
		return &jsx.Ident{Name: c.text(n)}
	case nodeString:
		return &jsx.StringLit{Value: c.stringValue(n)}
	case nodeNumber:
		return &jsx.NumberLit{Raw: c.text(n)}
	case nodeTrue:
		return &jsx.BoolLit{Value: true}
	case nodeFalse:
		return &jsx.BoolLit{Value: false}
	case nodeParenthesized:
		return &jsx.Paren{X: c.expr(c.innerExpression(n))}
	case nodeMember:
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj == nil || prop == nil {
			break
		}
		return &jsx.Member{Object: c.expr(obj), Prop: c.text(prop)}
	case nodeSubscript:
		obj := n.ChildByFieldName("object")
		index := n.ChildByFieldName("index")
		if obj == nil || index == nil {
			break
		}
		return &jsx.Member{Object: c.expr(obj), Computed: c.expr(index)}
	case nodeCall:
		fn := n.ChildByFieldName("function")
		if fn == nil {
			break
		}
		call := &jsx.Call{Callee: c.expr(fn)}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				if a := args.NamedChild(i); a.Type() != nodeComment {
					call.Args = append(call.Args, c.expr(a))
				}
			}
		}
		return call
	case nodeArrow:
		arrow := &jsx.Arrow{Params: c.params(n)}
		body := n.ChildByFieldName("body")
		if body != nil && body.Type() == nodeStatementBlock {
			arrow.Block = c.block(body)
		} else {
			arrow.Body = c.expr(body)
		}
		return arrow
	case nodeFunction, nodeFunctionExpr:
		fn := &jsx.Func{Params: c.params(n), Body: c.block(n.ChildByFieldName("body"))}
		if name := n.ChildByFieldName("name"); name != nil {
			fn.Name = c.text(name)
		}
		return fn
	case nodeTernary:
		return &jsx.Cond{
			Test: c.expr(n.ChildByFieldName("condition")),
			Cons: c.expr(n.ChildByFieldName("consequence")),
			Alt:  c.expr(n.ChildByFieldName("alternative")),
		}
	case nodeBinary:
		op := n.ChildByFieldName("operator")
		if op == nil {
			break
		}
		return &jsx.Binary{
			Op: c.text(op),
			X:  c.expr(n.ChildByFieldName("left")),
			Y:  c.expr(n.ChildByFieldName("right")),
		}
	case nodeAsExpr, nodeNonNull, nodeSatisfies:
		// type assertions do not change the runtime value
		if n.NamedChildCount() > 0 {
			return c.expr(n.NamedChild(0))
		}
	case nodeJSXElement, nodeJSXSelfClosing:
		switch v := c.node(n).(type) {
		case *jsx.Element:
			return v
		case *jsx.Fragment:
			return v
		}
	}
	return &jsx.Raw{Source: c.text(n)}
}

func (c *converter) params(n *sitter.Node) []string {
	if p := n.ChildByFieldName("parameter"); p != nil {
		return []string{c.text(p)}
	}
	list := n.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		switch p.Type() {
		case nodeComment:
			continue
		case nodeRequiredParam, nodeOptionalParam:
			if pattern := p.ChildByFieldName("pattern"); pattern != nil {
				p = pattern
			}
		}
		out = append(out, c.text(p))
	}
	return out
}

func (c *converter) block(n *sitter.Node) *jsx.Block {
	if n == nil {
		return nil
	}
	b := &jsx.Block{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		s := n.NamedChild(i)
		switch s.Type() {
		case nodeComment:
			continue
		case nodeReturn:
			ret := &jsx.Return{}
			if arg := c.innerExpression(s); arg != nil {
				ret.Arg = c.expr(arg)
			}
			b.Stmts = append(b.Stmts, ret)
		case nodeExpressionStmt:
			b.Stmts = append(b.Stmts, &jsx.ExprStmt{X: c.expr(c.innerExpression(s))})
		default:
			b.Stmts = append(b.Stmts, &jsx.RawStmt{Source: c.text(s)})
		}
	}
	return b
}
