package compiler

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/recera/compilemode/pkg/jsx"
)

// compileModeAttr marks the roots a file opts into compile mode with.
const compileModeAttr = "compileMode"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;")
)

// emitter walks one root in document order, rewriting it in place and
// writing the template. The runtime path of the node being visited is the
// top of the unit's registry stack.
type emitter struct {
	u     *Unit
	b     strings.Builder
	depth int
}

func (e *emitter) String() string {
	return e.b.String()
}

func (e *emitter) line(s string) {
	e.b.WriteString(strings.Repeat("  ", e.depth))
	e.b.WriteString(s)
	e.b.WriteByte('\n')
}

func (e *emitter) path() string {
	return e.u.registry.CurrentPath()
}

// fallback hands the node at the current path to the generic recursive
// template of the runtime.
func (e *emitter) fallback() {
	e.line(`<template is="` + fallbackTemplateIs + `" data="` + GenTemplate("i:"+e.path()) + `" />`)
}

// fallbackItem falls back for an element. A loop item keeps its loop on a
// <block> around the fallback so the runtime still repeats it per item.
func (e *emitter) fallbackItem(loopOf string) error {
	if loopOf == "" {
		e.fallback()
		return nil
	}
	forKey, err := e.u.config.Adapter.Lookup(KeywordFor)
	if err != nil {
		return err
	}
	keyKey, err := e.u.config.Adapter.Lookup(KeywordForKey)
	if err != nil {
		return err
	}

	var b strings.Builder
	writeAttr(&b, forKey, GenTemplate(loopOf), true)
	writeAttr(&b, keyKey, loopItemKey, true)
	e.line("<block" + b.String() + ">")
	e.depth++
	e.fallback()
	e.depth--
	e.line("</block>")
	return nil
}

// element emits el. loopOf is the list accessor when el is a loop item.
func (e *emitter) element(el *jsx.Element, loopOf string, root bool) error {
	if el.RemoveAttr(AttrCompileIgnore) {
		return e.fallbackItem(loopOf)
	}

	RewriteHostComponents(el, e.u.imports)

	tag, ok := e.tagName(el)
	if !ok {
		Logger().Debug("element left to the runtime",
			zap.String("node", jsx.Print(el.Name)),
			zap.String("path", e.path()))
		return e.fallbackItem(loopOf)
	}

	if IsXScript(tag) {
		e.xscript(el)
		return nil
	}

	// loop items are addressed through the parent's child list, which only
	// works when the loop is the sole child
	if ChildrenHaveLoop(el) && CountValidChildren(el.Children) > 1 {
		return e.fallbackItem(loopOf)
	}

	if !root && loopOf == "" && IsStatic(el) {
		e.static(tag, el)
		return nil
	}

	if root || loopOf != "" || e.ownsBindings(el) {
		e.u.assignID(el)
	}

	attrs, err := e.attrs(el, loopOf)
	if err != nil {
		return err
	}

	open := "<" + tag + attrs + ">"
	if len(el.Children) == 0 {
		e.line(open + "</" + tag + ">")
		return nil
	}

	e.line(open)
	e.depth++
	index := 0
	if err := e.children(el.Children, &index); err != nil {
		return err
	}
	e.depth--
	e.line("</" + tag + ">")
	return nil
}

// tagName returns the template tag of el. Custom components and member
// expression names cannot be compiled.
func (e *emitter) tagName(el *jsx.Element) (string, bool) {
	switch n := el.Name.(type) {
	case *jsx.Ident:
		if e.u.config.IsInnerComponent(n.Name) {
			tag := KebabCase(n.Name)
			e.u.components.Add(tag)
			return tag, true
		}
		if r, _ := utf8.DecodeRuneInString(n.Name); unicode.IsUpper(r) {
			return "", false
		}
		return KebabCase(n.Name), true
	case *jsx.NamespacedName:
		return n.Namespace + ":" + n.Name, true
	}
	return "", false
}

func (e *emitter) static(tag string, el *jsx.Element) {
	var text strings.Builder
	for _, c := range el.Children {
		text.WriteString(NormalizeText(c.(*jsx.Text).Value))
	}
	e.line("<" + tag + ">" + textEscaper.Replace(text.String()) + "</" + tag + ">")
}

// xscript copies a script module declaration and makes its alias available
// to later references in the unit.
func (e *emitter) xscript(el *jsx.Element) {
	var b strings.Builder
	for _, a := range el.Attrs {
		attr, ok := a.(*jsx.Attr)
		if !ok {
			continue
		}
		lit, ok := attr.Value.(*jsx.StringLit)
		if !ok {
			continue
		}
		if attr.Key == "module" {
			e.u.xsModules = append(e.u.xsModules, lit.Value)
		}
		writeAttr(&b, attr.Key, attrEscaper.Replace(lit.Value), true)
	}

	var body strings.Builder
	for _, c := range el.Children {
		if t, ok := c.(*jsx.Text); ok {
			body.WriteString(NormalizeText(t.Value))
		}
	}
	e.line("<" + scriptTag + b.String() + ">" + body.String() + "</" + scriptTag + ">")
}

// ownsBindings reports whether el itself needs an id: the runtime updates
// its attributes, dispatches its events or recomputes its direct children.
func (e *emitter) ownsBindings(el *jsx.Element) bool {
	for _, a := range el.Attrs {
		switch attr := a.(type) {
		case *jsx.SpreadAttr:
			return true
		case *jsx.Attr:
			if _, ok := ResolveEventKey(attr.Key, e.u.config.Platform); ok {
				return true
			}
		}
	}
	if !HasExprContainer(el) {
		return false
	}

	for _, a := range el.Attrs {
		attr, ok := a.(*jsx.Attr)
		if !ok {
			continue
		}
		switch v := attr.Value.(type) {
		case *jsx.Element, *jsx.Fragment:
			return true
		case *jsx.ExprContainer:
			if _, ok := e.staticAttrExpr(v.Expr); !ok {
				return true
			}
		}
	}
	for _, c := range el.Children {
		// loop items are reached through the child list, not an id
		if IsLoopChild(c) {
			continue
		}
		switch v := c.(type) {
		case *jsx.Spread:
			return true
		case *jsx.ExprContainer:
			x := unparen(v.Expr)
			if x == nil {
				continue
			}
			if _, ok := literalExpr(x); ok {
				continue
			}
			if _, ok := e.xscriptExpr(x); ok {
				continue
			}
			switch x.(type) {
			case *jsx.Element, *jsx.Fragment:
				continue
			}
			return true
		}
	}
	return false
}

func (e *emitter) attrs(el *jsx.Element, loopOf string) (string, error) {
	var b strings.Builder
	cfg := e.u.config
	for _, a := range el.Attrs {
		attr, ok := a.(*jsx.Attr)
		if !ok {
			// spread values reach the runtime as props
			continue
		}
		if attr.Key == compileModeAttr {
			continue
		}

		if attr.Key == AttrCompileFor && loopOf != "" {
			key, err := cfg.Adapter.Lookup(KeywordFor)
			if err != nil {
				return "", err
			}
			writeAttr(&b, key, GenTemplate(loopOf), true)
			continue
		}

		if binding, ok := ResolveEventKey(attr.Key, cfg.Platform); ok {
			if strings.HasPrefix(binding, "worklet:") {
				writeAttr(&b, binding, GenTemplate(e.path()+"."+attr.Key), true)
			} else {
				writeAttr(&b, binding, eventHandlerName, true)
			}
			continue
		}

		key, err := ConvertAttrKey(attr.Key, cfg.Adapter)
		if err != nil {
			return "", err
		}
		value, has := e.attrValue(attr)
		writeAttr(&b, key, value, has)
	}
	return b.String(), nil
}

func (e *emitter) attrValue(attr *jsx.Attr) (string, bool) {
	switch v := attr.Value.(type) {
	case nil:
		return "", false
	case *jsx.StringLit:
		return attrEscaper.Replace(v.Value), true
	case *jsx.ExprContainer:
		if s, ok := e.staticAttrExpr(v.Expr); ok {
			return s, true
		}
	}
	return GenTemplate(e.path() + "." + attr.Key), true
}

// staticAttrExpr renders attribute expressions whose value is known at
// compile time: literals and xscript references.
func (e *emitter) staticAttrExpr(x jsx.Expr) (string, bool) {
	x = unparen(x)
	if s, ok := literalExpr(x); ok {
		return attrEscaper.Replace(s), true
	}
	if b, ok := x.(*jsx.BoolLit); ok {
		return GenTemplate(strconv.FormatBool(b.Value)), true
	}
	if s, ok := e.xscriptExpr(x); ok {
		return GenTemplate(s), true
	}
	return "", false
}

func (e *emitter) xscriptExpr(x jsx.Expr) (string, bool) {
	m, ok := x.(*jsx.Member)
	if !ok {
		return "", false
	}
	return ResolveXScriptPath(m, e.u.xsModules)
}

// children emits a child list. index counts the runtime children emitted so
// far under the current node; fragments flatten into their parent.
func (e *emitter) children(nodes []jsx.Node, index *int) error {
	for _, c := range nodes {
		switch v := c.(type) {
		case *jsx.Text:
			if s := NormalizeText(v.Value); s != "" {
				e.line(textEscaper.Replace(s))
				*index++
			}
		case *jsx.Fragment:
			if err := e.children(v.Children, index); err != nil {
				return err
			}
		case *jsx.Element:
			e.u.registry.EnterChild(*index)
			err := e.element(v, "", false)
			e.u.registry.Leave()
			if err != nil {
				return err
			}
			*index++
		case *jsx.Spread:
			e.u.registry.EnterChild(*index)
			e.fallback()
			e.u.registry.Leave()
			*index++
		case *jsx.ExprContainer:
			if err := e.exprChild(v, index); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *emitter) exprChild(c *jsx.ExprContainer, index *int) error {
	x := unparen(c.Expr)
	if x == nil {
		return nil
	}

	if s, ok := literalExpr(x); ok {
		e.line(textEscaper.Replace(s))
		*index++
		return nil
	}
	if s, ok := e.xscriptExpr(x); ok {
		e.line(GenTemplate(s))
		*index++
		return nil
	}

	switch v := x.(type) {
	case *jsx.Element:
		e.u.registry.EnterChild(*index)
		err := e.element(v, "", false)
		e.u.registry.Leave()
		*index++
		return err
	case *jsx.Fragment:
		return e.children(v.Children, index)
	case *jsx.Call:
		if item := ExtractLoop(v); item != nil {
			list := e.path() + ".cn"
			e.u.registry.EnterPath(LoopItemPath)
			err := e.element(item, list, false)
			e.u.registry.Leave()
			*index++
			return err
		}
	}

	e.u.registry.EnterChild(*index)
	if mayRenderMarkup(x) {
		e.fallback()
	} else {
		e.u.registry.Register(c, e.u.namer.Next())
		e.line("<block>" + GenTemplateV(e.path()) + "</block>")
	}
	e.u.registry.Leave()
	*index++
	return nil
}

// mayRenderMarkup reports whether an expression can evaluate to elements,
// in which case only the runtime's generic template can render it.
func mayRenderMarkup(x jsx.Expr) bool {
	found := false
	jsx.Inspect(x, func(n any) bool {
		switch v := n.(type) {
		case *jsx.Element, *jsx.Fragment:
			found = true
		case *jsx.Call:
			if IsRenderCall(v) || IsLoopCall(v) {
				found = true
			}
		}
		return !found
	})
	return found
}

func literalExpr(x jsx.Expr) (string, bool) {
	switch v := x.(type) {
	case *jsx.StringLit:
		return v.Value, true
	case *jsx.NumberLit:
		return v.Raw, true
	}
	return "", false
}

func unparen(x jsx.Expr) jsx.Expr {
	for {
		p, ok := x.(*jsx.Paren)
		if !ok {
			return x
		}
		x = p.X
	}
}

func writeAttr(b *strings.Builder, key, value string, hasValue bool) {
	b.WriteByte(' ')
	b.WriteString(key)
	if hasValue {
		b.WriteString(`="`)
		b.WriteString(value)
		b.WriteByte('"')
	}
}

// GenTemplate wraps an expression in template interpolation: {{v}}.
func GenTemplate(v string) string {
	return "{{" + v + "}}"
}

// GenTemplateV interpolates the value slot of a dynamic text node: {{path.v}}.
func GenTemplateV(path string) string {
	return "{{" + path + ".v}}"
}

// IndentLines prefixes every line of input with two spaces and terminates it
// with a newline.
func IndentLines(input string) string {
	return IndentLinesN(input, 2)
}

// IndentLinesN prefixes every line of input with count spaces.
func IndentLinesN(input string, count int) string {
	var b strings.Builder
	spaces := strings.Repeat(" ", count)
	for _, line := range splitLines(input) {
		b.WriteString(spaces)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Wrap renders the template as a named template definition.
func (t Template) Wrap() string {
	return `<template name="` + t.Name + `">` + "\n" + IndentLines(t.Body) + "</template>\n"
}
