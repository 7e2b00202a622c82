package jsx

// Inspect traverses the tree rooted at n in depth-first order, the way
// go/ast.Inspect does: f is called for every node, attribute, expression and
// statement; if f returns false the children of that value are skipped.
// n may be any value of this package's variant types.
func Inspect(n any, f func(any) bool) {
	if n == nil || !f(n) {
		return
	}

	switch v := n.(type) {
	case *Element:
		for _, a := range v.Attrs {
			Inspect(a, f)
		}
		for _, c := range v.Children {
			Inspect(c, f)
		}
	case *Fragment:
		for _, c := range v.Children {
			Inspect(c, f)
		}
	case *ExprContainer:
		if v.Expr != nil {
			Inspect(v.Expr, f)
		}
	case *Spread:
		Inspect(v.Expr, f)
	case *Attr:
		if v.Value != nil {
			Inspect(v.Value, f)
		}
	case *SpreadAttr:
		Inspect(v.Expr, f)
	case *Member:
		Inspect(v.Object, f)
		if v.Computed != nil {
			Inspect(v.Computed, f)
		}
	case *Call:
		Inspect(v.Callee, f)
		for _, a := range v.Args {
			Inspect(a, f)
		}
	case *Arrow:
		if v.Block != nil {
			Inspect(v.Block, f)
		} else if v.Body != nil {
			Inspect(v.Body, f)
		}
	case *Func:
		if v.Body != nil {
			Inspect(v.Body, f)
		}
	case *Paren:
		Inspect(v.X, f)
	case *Cond:
		Inspect(v.Test, f)
		Inspect(v.Cons, f)
		Inspect(v.Alt, f)
	case *Binary:
		Inspect(v.X, f)
		Inspect(v.Y, f)
	case *Block:
		for _, s := range v.Stmts {
			Inspect(s, f)
		}
	case *Return:
		if v.Arg != nil {
			Inspect(v.Arg, f)
		}
	case *ExprStmt:
		Inspect(v.X, f)
	}
}
