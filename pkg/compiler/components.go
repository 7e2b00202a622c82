package compiler

import (
	"go.uber.org/zap"

	"github.com/recera/compilemode/pkg/jsx"
)

// HostComponentsModule is the module the List and ListItem components must be
// imported from to be rewritten.
const HostComponentsModule = "@tarojs/components"

// ImportMaps are the per-file results of import analysis.
type ImportMaps struct {
	// Aliases maps an exported name to the local identifier it is bound to.
	Aliases map[string]string
	// Specifiers maps a local identifier to the module it was imported from.
	Specifiers map[string]string
}

// resolves reports whether tag is the local binding of exported, imported
// from the host component library.
func (m ImportMaps) resolves(tag, exported string) bool {
	local, ok := m.Aliases[exported]
	if !ok || local != tag {
		return false
	}
	src, ok := m.Specifiers[local]
	return ok && src == HostComponentsModule
}

var scrollViewAttrs = []string{
	"scrollX",
	"scrollY",
	"scrollTop",
	"upperThresholdCount",
	"lowerThresholdCount",
	"scrollIntoView",
	"enableBackToTop",
	"showScrollbar",
	"onScroll",
	"onScrollStart",
	"onScrollEnd",
	"onScrollToUpper",
	"onScrollToLower",
	"compileMode",
	"className",
	"cacheExtent",
	"style",
	"id",
	"key",
}

var scrollViewAliases = map[string]string{
	"upperThresholdCount": "upperThreshold",
	"lowerThresholdCount": "lowerThreshold",
}

var listBuilderAttrs = []string{
	"padding",
	"type",
	"list",
	"childCount",
	"childHeight",
	"onItemBuild",
	"onItemDispose",
}

// RewriteHostComponents rewrites el in place when it is the host library's
// List or ListItem and reports whether it did.
func RewriteHostComponents(el *jsx.Element, imports ImportMaps) bool {
	tag, ok := el.Tag()
	if !ok {
		return false
	}
	switch {
	case imports.resolves(tag, "List"):
		RewriteList(el)
		Logger().Debug("rewrote host component", zap.String("component", "List"), zap.String("tag", tag))
		return true
	case imports.resolves(tag, "ListItem"):
		RewriteListItem(el)
		Logger().Debug("rewrote host component", zap.String("component", "ListItem"), zap.String("tag", tag))
		return true
	}
	return false
}

// RewriteList replaces a List with
// <scroll-view ... type="custom"><list-builder ... className="list-builder">children</list-builder></scroll-view>.
func RewriteList(el *jsx.Element) {
	outer := filterAttrs(el.Attrs, scrollViewAttrs, scrollViewAliases)
	outer = append(outer, jsx.StringAttr("type", "custom"))

	inner := filterAttrs(el.Attrs, listBuilderAttrs, nil)
	inner = append(inner, jsx.StringAttr(AttrClassName, "list-builder"))

	builder := jsx.NewElement("list-builder", inner, el.Children)
	*el = *jsx.NewElement("scroll-view", outer, []jsx.Node{builder})
}

// RewriteListItem replaces a ListItem with a view carrying every original
// attribute plus the item slot marker and className="list-item".
func RewriteListItem(el *jsx.Element) {
	attrs := jsx.CloneAttrs(el.Attrs)
	attrs = append(attrs,
		jsx.StringAttr(AttrSlotItem, "item"),
		jsx.StringAttr(AttrClassName, "list-item"),
	)
	*el = *jsx.NewElement("view", attrs, el.Children)
}

// filterAttrs keeps the attributes named in allow, in their original order,
// then renames them through aliases. Everything else is dropped.
func filterAttrs(attrs []jsx.AttrOrSpread, allow []string, aliases map[string]string) []jsx.AttrOrSpread {
	allowed := make(map[string]struct{}, len(allow))
	for _, k := range allow {
		allowed[k] = struct{}{}
	}

	out := make([]jsx.AttrOrSpread, 0, len(attrs))
	for _, a := range attrs {
		attr, ok := a.(*jsx.Attr)
		if !ok {
			continue
		}
		if _, ok := allowed[attr.Key]; !ok {
			continue
		}
		cp := *attr
		out = append(out, &cp)
	}

	for _, a := range out {
		attr := a.(*jsx.Attr)
		if alias, ok := aliases[attr.Key]; ok {
			attr.Key = alias
		}
	}
	return out
}
