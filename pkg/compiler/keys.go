package compiler

import (
	"strings"
	"unicode"
)

// Source-level pseudo attributes recognised by the transform.
const (
	AttrCompileIf      = "compileIf"
	AttrCompileElse    = "compileElse"
	AttrCompileFor     = "compileFor"
	AttrCompileForKey  = "compileForKey"
	AttrCompileIgnore  = "compileIgnore"
	AttrDynamicID      = "compileId"
	AttrSlotItem       = "slot:item"
	AttrClassName      = "className"
	loopItemKey        = "sid"
	eventHandlerName   = "eh"
	fallbackTemplateIs = "tmpl_0_container"
)

var controlFlowKeywords = map[string]string{
	AttrCompileIf:     KeywordIf,
	AttrCompileElse:   KeywordElse,
	AttrCompileFor:    KeywordFor,
	AttrCompileForKey: KeywordForKey,
}

// KebabCase converts camelCase to kebab-case: a hyphen goes before every
// uppercase letter except the first character and ASCII letters are lowered,
// so scrollIntoView becomes scroll-into-view.
func KebabCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i != 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ConvertAttrKey translates a JSX attribute key to its template key.
// className becomes class, the control-flow pseudo attributes are looked up in
// the adapter and everything else is kebab-cased. A control-flow attribute
// without an adapter entry returns an ErrMissingAdapter error.
func ConvertAttrKey(key string, adapter Adapter) (string, error) {
	if key == AttrClassName {
		return "class", nil
	}
	if keyword, ok := controlFlowKeywords[key]; ok {
		return adapter.Lookup(keyword)
	}
	return KebabCase(key), nil
}

// IsControlFlowAttr reports whether key is one of the control-flow pseudo
// attributes.
func IsControlFlowAttr(key string) bool {
	_, ok := controlFlowKeywords[key]
	return ok
}
