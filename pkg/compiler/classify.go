package compiler

import (
	"regexp"

	"github.com/recera/compilemode/pkg/jsx"
)

// IsStatic reports whether an element can be emitted once with no runtime
// binding: it has no attributes and every child is text.
//
// IsStatic and HasExprContainer answer different questions and are
// intentionally not derived from one another.
func IsStatic(el *jsx.Element) bool {
	if len(el.Attrs) > 0 {
		return false
	}
	for _, c := range el.Children {
		if _, ok := c.(*jsx.Text); !ok {
			return false
		}
	}
	return true
}

// HasExprContainer reports whether any {...} interpolation appears anywhere
// under n, attribute values included.
func HasExprContainer(n jsx.Node) bool {
	found := false
	jsx.Inspect(n, func(v any) bool {
		if found {
			return false
		}
		if _, ok := v.(*jsx.ExprContainer); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

var blankText = regexp.MustCompile(`^\s*$`)

// CountValidChildren counts children that are not whitespace-only text.
func CountValidChildren(children []jsx.Node) int {
	n := 0
	for _, c := range children {
		if t, ok := c.(*jsx.Text); ok && blankText.MatchString(t.Value) {
			continue
		}
		n++
	}
	return n
}

// ChildrenHaveLoop reports whether any direct child is a {list.map(cb)}
// container.
func ChildrenHaveLoop(el *jsx.Element) bool {
	for _, c := range el.Children {
		if IsLoopChild(c) {
			return true
		}
	}
	return false
}

// IsLoopChild reports whether a child is a {list.map(cb)} container.
func IsLoopChild(n jsx.Node) bool {
	ec, ok := n.(*jsx.ExprContainer)
	if !ok {
		return false
	}
	call, ok := ec.Expr.(*jsx.Call)
	return ok && IsLoopCall(call)
}
