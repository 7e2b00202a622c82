package compiler

import (
	"strings"

	"github.com/recera/compilemode/pkg/jsx"
)

// IsLoopCall identifies `xs.map(function () {})` and `xs.map(() => {})`.
func IsLoopCall(call *jsx.Call) bool {
	m, ok := call.Callee.(*jsx.Member)
	if !ok || m.Computed != nil || m.Prop != "map" || len(call.Args) == 0 {
		return false
	}
	switch call.Args[0].(type) {
	case *jsx.Arrow, *jsx.Func:
		return true
	}
	return false
}

// IsRenderCall reports whether the callee, bare or as a member property,
// starts with "render". Such calls produce dynamic content but are never
// rewritten.
func IsRenderCall(call *jsx.Call) bool {
	switch c := call.Callee.(type) {
	case *jsx.Ident:
		return strings.HasPrefix(c.Name, "render")
	case *jsx.Member:
		return c.Computed == nil && strings.HasPrefix(c.Prop, "render")
	}
	return false
}

// ExtractLoop rewrites the element returned by a .map callback so it carries
// the loop markers and returns it. An element gains compileFor and
// compileForKey="sid"; a fragment is replaced by a <block> carrying the same
// markers and the fragment's children. A callback whose return value is not
// JSX is left untouched and nil is returned.
func ExtractLoop(call *jsx.Call) *jsx.Element {
	if !IsLoopCall(call) {
		return nil
	}

	switch cb := call.Args[0].(type) {
	case *jsx.Func:
		if ret := lastReturn(cb.Body); ret != nil {
			return markLoopReturn(&ret.Arg)
		}
	case *jsx.Arrow:
		if cb.Block != nil {
			if ret := lastReturn(cb.Block); ret != nil {
				return markLoopReturn(&ret.Arg)
			}
			return nil
		}
		return markLoopReturn(&cb.Body)
	}
	return nil
}

func lastReturn(body *jsx.Block) *jsx.Return {
	if body == nil || len(body.Stmts) == 0 {
		return nil
	}
	ret, ok := body.Stmts[len(body.Stmts)-1].(*jsx.Return)
	if !ok || ret.Arg == nil {
		return nil
	}
	return ret
}

// markLoopReturn works on the slot holding the return value so a
// parenthesised value or a fragment can be replaced in place.
func markLoopReturn(slot *jsx.Expr) *jsx.Element {
	value := *slot
	if p, ok := value.(*jsx.Paren); ok {
		value = p.X
	}

	switch v := value.(type) {
	case *jsx.Element:
		v.Attrs = append(v.Attrs, loopAttrs()...)
		*slot = v
		return v
	case *jsx.Fragment:
		block := jsx.NewElement("block", loopAttrs(), v.Children)
		v.Children = nil
		*slot = block
		return block
	}
	return nil
}

func loopAttrs() []jsx.AttrOrSpread {
	return []jsx.AttrOrSpread{
		jsx.BoolAttr(AttrCompileFor),
		jsx.StringAttr(AttrCompileForKey, loopItemKey),
	}
}
