package jsx

import (
	"strconv"
	"strings"
)

// Print renders a node, expression or attribute back to compact JSX source.
// It is meant for diagnostics and tests; whitespace inside text is kept as is.
func Print(n any) string {
	var b strings.Builder
	printTo(&b, n)
	return b.String()
}

func printTo(b *strings.Builder, n any) {
	switch v := n.(type) {
	case nil:
	case *Element:
		b.WriteByte('<')
		printTo(b, v.Name)
		for _, a := range v.Attrs {
			b.WriteByte(' ')
			printTo(b, a)
		}
		if v.SelfClosing && len(v.Children) == 0 {
			b.WriteString(" />")
			return
		}
		b.WriteByte('>')
		for _, c := range v.Children {
			printTo(b, c)
		}
		b.WriteString("</")
		printTo(b, v.Name)
		b.WriteByte('>')
	case *Fragment:
		b.WriteString("<>")
		for _, c := range v.Children {
			printTo(b, c)
		}
		b.WriteString("</>")
	case *ExprContainer:
		b.WriteByte('{')
		printTo(b, v.Expr)
		b.WriteByte('}')
	case *Text:
		b.WriteString(v.Value)
	case *Spread:
		b.WriteString("{...")
		printTo(b, v.Expr)
		b.WriteByte('}')
	case *Attr:
		b.WriteString(v.Key)
		if v.Value != nil {
			b.WriteByte('=')
			printTo(b, v.Value)
		}
	case *SpreadAttr:
		b.WriteString("{...")
		printTo(b, v.Expr)
		b.WriteByte('}')
	case *Ident:
		b.WriteString(v.Name)
	case *MemberName:
		printTo(b, v.Object)
		b.WriteByte('.')
		b.WriteString(v.Prop)
	case *NamespacedName:
		b.WriteString(v.Namespace)
		b.WriteByte(':')
		b.WriteString(v.Name)
	case *Member:
		printTo(b, v.Object)
		if v.Computed != nil {
			b.WriteByte('[')
			printTo(b, v.Computed)
			b.WriteByte(']')
			return
		}
		b.WriteByte('.')
		b.WriteString(v.Prop)
	case *Call:
		printTo(b, v.Callee)
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printTo(b, a)
		}
		b.WriteByte(')')
	case *Arrow:
		b.WriteByte('(')
		b.WriteString(strings.Join(v.Params, ", "))
		b.WriteString(") => ")
		if v.Block != nil {
			printTo(b, v.Block)
		} else {
			printTo(b, v.Body)
		}
	case *Func:
		b.WriteString("function ")
		b.WriteString(v.Name)
		b.WriteByte('(')
		b.WriteString(strings.Join(v.Params, ", "))
		b.WriteString(") ")
		printTo(b, v.Body)
	case *Paren:
		b.WriteByte('(')
		printTo(b, v.X)
		b.WriteByte(')')
	case *Cond:
		printTo(b, v.Test)
		b.WriteString(" ? ")
		printTo(b, v.Cons)
		b.WriteString(" : ")
		printTo(b, v.Alt)
	case *Binary:
		printTo(b, v.X)
		b.WriteByte(' ')
		b.WriteString(v.Op)
		b.WriteByte(' ')
		printTo(b, v.Y)
	case *StringLit:
		b.WriteString(strconv.Quote(v.Value))
	case *NumberLit:
		b.WriteString(v.Raw)
	case *BoolLit:
		b.WriteString(strconv.FormatBool(v.Value))
	case *Raw:
		b.WriteString(v.Source)
	case *Block:
		b.WriteString("{ ")
		for _, s := range v.Stmts {
			printTo(b, s)
			b.WriteString("; ")
		}
		b.WriteByte('}')
	case *Return:
		b.WriteString("return")
		if v.Arg != nil {
			b.WriteByte(' ')
			printTo(b, v.Arg)
		}
	case *ExprStmt:
		printTo(b, v.X)
	case *RawStmt:
		b.WriteString(v.Source)
	}
}
