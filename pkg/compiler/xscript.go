package compiler

import (
	"github.com/recera/compilemode/pkg/jsx"
)

// scriptTag is the element that declares an xscript module.
const scriptTag = "wxs"

// IsXScript reports whether tag declares an xscript module.
func IsXScript(tag string) bool {
	return tag == scriptTag
}

// ResolveXScriptPath turns a member chain rooted at a known xscript module
// alias into its dotted path, e.g. xs.fmt.price. ok is false when the chain
// is rooted at anything else or contains a computed access.
func ResolveXScriptPath(m *jsx.Member, aliases []string) (string, bool) {
	if m.Computed != nil {
		return "", false
	}

	switch obj := m.Object.(type) {
	case *jsx.Member:
		base, ok := ResolveXScriptPath(obj, aliases)
		if !ok {
			return "", false
		}
		return base + "." + m.Prop, true
	case *jsx.Ident:
		for _, a := range aliases {
			if a == obj.Name {
				return obj.Name + "." + m.Prop, true
			}
		}
	}
	return "", false
}
