// Package jsx defines the render tree the compile-mode transform operates on:
// JSX elements, fragments, expression containers, text and spreads, plus the
// small slice of the JavaScript expression grammar the transform has to look
// inside (calls, member chains, arrow and function callbacks).
//
// Every variant set is closed: membership is sealed by an unexported marker
// method, so switches over the variants are exhaustive within this module.
package jsx

// Node is a child of an element or fragment.
type Node interface {
	jsxNode()
}

// Expr is a JavaScript expression that can appear inside an expression
// container, an attribute value or a loop callback.
type Expr interface {
	expr()
}

// ElementName is the name in an opening tag.
type ElementName interface {
	elementName()
}

// AttrOrSpread is one entry of an opening tag's attribute list.
type AttrOrSpread interface {
	attrOrSpread()
}

// AttrValue is the value of an attribute. A nil AttrValue is a boolean
// attribute.
type AttrValue interface {
	attrValue()
}

// Stmt is a statement inside a callback body.
type Stmt interface {
	stmt()
}

// Element represents <tag ...>...</tag> or <tag ... />.
type Element struct {
	Name        ElementName
	Attrs       []AttrOrSpread
	Children    []Node
	SelfClosing bool
}

// Fragment represents <>...</>.
type Fragment struct {
	Children []Node
}

// ExprContainer represents {expr}. Expr is nil for an empty container {}.
type ExprContainer struct {
	Expr Expr
}

// Text is raw JSX text exactly as it appeared in the source.
type Text struct {
	Value string
}

// Spread represents a {...expr} child.
type Spread struct {
	Expr Expr
}

// Attr is key or key=value.
type Attr struct {
	Key   string
	Value AttrValue
}

// SpreadAttr is {...expr} inside an opening tag.
type SpreadAttr struct {
	Expr Expr
}

// Ident is an identifier. It doubles as a plain element name.
type Ident struct {
	Name string
}

// MemberName is a dotted element name such as <Foo.Bar>.
type MemberName struct {
	Object ElementName
	Prop   string
}

// NamespacedName is a namespaced element name such as <svg:rect>.
type NamespacedName struct {
	Namespace string
	Name      string
}

// Member is obj.prop, or obj[computed] when Computed is set.
type Member struct {
	Object   Expr
	Prop     string
	Computed Expr
}

// Call is callee(args...).
type Call struct {
	Callee Expr
	Args   []Expr
}

// Arrow is an arrow function. Exactly one of Body and Block is set.
type Arrow struct {
	Params []string
	Body   Expr
	Block  *Block
}

// Func is a function expression.
type Func struct {
	Name   string
	Params []string
	Body   *Block
}

// Paren is (expr).
type Paren struct {
	X Expr
}

// Cond is test ? cons : alt.
type Cond struct {
	Test Expr
	Cons Expr
	Alt  Expr
}

// Binary is a binary or logical expression such as a && b.
type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

// StringLit is a string literal, already unquoted.
type StringLit struct {
	Value string
}

// NumberLit is a numeric literal kept in its source spelling.
type NumberLit struct {
	Raw string
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

// Raw is any expression the transform never looks inside, kept verbatim.
type Raw struct {
	Source string
}

// Block is a statement block.
type Block struct {
	Stmts []Stmt
}

// Return is a return statement. Arg is nil for a bare return.
type Return struct {
	Arg Expr
}

// ExprStmt is an expression statement.
type ExprStmt struct {
	X Expr
}

// RawStmt is any other statement, kept verbatim.
type RawStmt struct {
	Source string
}

func (*Element) jsxNode()       {}
func (*Fragment) jsxNode()      {}
func (*ExprContainer) jsxNode() {}
func (*Text) jsxNode()          {}
func (*Spread) jsxNode()        {}

func (*Ident) expr()     {}
func (*Member) expr()    {}
func (*Call) expr()      {}
func (*Arrow) expr()     {}
func (*Func) expr()      {}
func (*Paren) expr()     {}
func (*Cond) expr()      {}
func (*Binary) expr()    {}
func (*StringLit) expr() {}
func (*NumberLit) expr() {}
func (*BoolLit) expr()   {}
func (*Raw) expr()       {}
func (*Element) expr()   {}
func (*Fragment) expr()  {}

func (*Ident) elementName()          {}
func (*MemberName) elementName()     {}
func (*NamespacedName) elementName() {}

func (*Attr) attrOrSpread()       {}
func (*SpreadAttr) attrOrSpread() {}

func (*StringLit) attrValue()     {}
func (*ExprContainer) attrValue() {}
func (*Element) attrValue()       {}
func (*Fragment) attrValue()      {}

func (*Return) stmt()   {}
func (*ExprStmt) stmt() {}
func (*RawStmt) stmt()  {}

// Tag returns the element's tag when it is a plain identifier.
func (e *Element) Tag() (string, bool) {
	if id, ok := e.Name.(*Ident); ok {
		return id.Name, true
	}
	return "", false
}

// Attr returns the first attribute named key.
func (e *Element) Attr(key string) (*Attr, bool) {
	for _, a := range e.Attrs {
		if attr, ok := a.(*Attr); ok && attr.Key == key {
			return attr, true
		}
	}
	return nil, false
}

// HasAttr reports whether the element carries an attribute named key.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// RemoveAttr drops every attribute named key and reports whether one was
// present.
func (e *Element) RemoveAttr(key string) bool {
	kept := e.Attrs[:0]
	removed := false
	for _, a := range e.Attrs {
		if attr, ok := a.(*Attr); ok && attr.Key == key {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	e.Attrs = kept
	return removed
}
