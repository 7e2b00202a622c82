package jsx

// NewElement builds a non self-closing element with a plain tag name.
func NewElement(tag string, attrs []AttrOrSpread, children []Node) *Element {
	return &Element{
		Name:     &Ident{Name: tag},
		Attrs:    attrs,
		Children: children,
	}
}

// SelfClosing builds <tag attrs... />.
func SelfClosing(tag string, attrs ...AttrOrSpread) *Element {
	return &Element{
		Name:        &Ident{Name: tag},
		Attrs:       attrs,
		SelfClosing: true,
	}
}

// BoolAttr builds a valueless attribute.
func BoolAttr(key string) *Attr {
	return &Attr{Key: key}
}

// StringAttr builds key="value".
func StringAttr(key, value string) *Attr {
	return &Attr{Key: key, Value: &StringLit{Value: value}}
}

// ExprAttr builds key={expr}.
func ExprAttr(key string, x Expr) *Attr {
	return &Attr{Key: key, Value: &ExprContainer{Expr: x}}
}

// NewText builds a text child.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// Container builds {expr}.
func Container(x Expr) *ExprContainer {
	return &ExprContainer{Expr: x}
}

// Id builds an identifier.
func Id(name string) *Ident {
	return &Ident{Name: name}
}

// Sel builds a member chain: Sel(Id("a"), "b", "c") is a.b.c.
func Sel(object Expr, props ...string) Expr {
	x := object
	for _, p := range props {
		x = &Member{Object: x, Prop: p}
	}
	return x
}

// MapCall builds list.map(callback).
func MapCall(list Expr, callback Expr) *Call {
	return &Call{
		Callee: &Member{Object: list, Prop: "map"},
		Args:   []Expr{callback},
	}
}

// CloneAttrs returns a shallow copy of an attribute list. Attr entries are
// copied so renaming keys in the copy never touches the original.
func CloneAttrs(attrs []AttrOrSpread) []AttrOrSpread {
	out := make([]AttrOrSpread, 0, len(attrs))
	for _, a := range attrs {
		if attr, ok := a.(*Attr); ok {
			cp := *attr
			out = append(out, &cp)
			continue
		}
		out = append(out, a)
	}
	return out
}
