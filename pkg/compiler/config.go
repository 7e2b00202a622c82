package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Platform selects the event binding conventions of the target host.
type Platform string

const (
	PlatformWeapp   Platform = "weapp"
	PlatformAlipay  Platform = "alipay"
	PlatformSwan    Platform = "swan"
	PlatformTT      Platform = "tt"
	PlatformQQ      Platform = "qq"
	PlatformJD      Platform = "jd"
	PlatformHarmony Platform = "harmony"
)

var platforms = []Platform{
	PlatformWeapp,
	PlatformAlipay,
	PlatformSwan,
	PlatformTT,
	PlatformQQ,
	PlatformJD,
	PlatformHarmony,
}

// ParsePlatform parses a platform name case-insensitively. An empty name
// selects PlatformWeapp.
func ParsePlatform(name string) (Platform, error) {
	if name == "" {
		return PlatformWeapp, nil
	}
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range platforms {
		if p == known {
			return p, nil
		}
	}
	return "", NewError(PhaseConfig, KindInvalidPlatform).
		Detail(fmt.Sprintf("unknown platform %q", name)).
		Build()
}

// TouchFirst reports whether the platform binds taps as onTap and keeps
// every other event key untouched.
func (p Platform) TouchFirst() bool {
	return p == PlatformAlipay
}

// Control-flow keywords understood by the adapter.
const (
	KeywordIf     = "if"
	KeywordElse   = "else"
	KeywordFor    = "for"
	KeywordForKey = "for-key"
)

// Adapter maps control-flow keywords to the attribute names of the target
// template dialect, e.g. "if" -> "wx:if".
type Adapter map[string]string

// Lookup returns the dialect attribute for keyword. A missing entry is a
// fatal configuration error: the dialect cannot express the construct.
func (a Adapter) Lookup(keyword string) (string, error) {
	if v, ok := a[keyword]; ok && v != "" {
		return v, nil
	}
	// older configs spell the loop key as plain "key"
	if keyword == KeywordForKey {
		if v, ok := a["key"]; ok && v != "" {
			return v, nil
		}
	}
	return "", NewError(PhaseConfig, KindMissingAdapter).
		Path("adapter", keyword).
		Detail(fmt.Sprintf("template syntax %q is not configured", keyword)).
		Build()
}

// DefaultAdapter returns the control-flow attributes of a platform's
// template dialect.
func DefaultAdapter(p Platform) Adapter {
	prefix := "wx:"
	switch p {
	case PlatformAlipay:
		prefix = "a:"
	case PlatformSwan:
		prefix = "s-"
	case PlatformTT:
		prefix = "tt:"
	case PlatformQQ:
		prefix = "qq:"
	case PlatformJD:
		prefix = "jd:"
	}
	return Adapter{
		KeywordIf:     prefix + "if",
		KeywordElse:   prefix + "else",
		KeywordFor:    prefix + "for",
		KeywordForKey: prefix + "key",
	}
}

// ComponentReplace describes a built-in replaced by a custom dependency.
type ComponentReplace struct {
	DependencyDefine string `yaml:"dependencyDefine" json:"dependencyDefine"`
	Style            string `yaml:"style,omitempty" json:"style,omitempty"`
}

// ComponentDecl is one entry of the component declaration table.
type ComponentDecl struct {
	Inner   bool              `yaml:"inner" json:"inner"`
	Style   string            `yaml:"style,omitempty" json:"style,omitempty"`
	Replace *ComponentReplace `yaml:"replace,omitempty" json:"replace,omitempty"`
}

// Config is the read-only configuration of a compile unit.
type Config struct {
	Platform Platform
	Adapter  Adapter

	// Components is keyed by kebab-case tag name.
	Components map[string]ComponentDecl

	// NamePrefix prefixes dynamic node ids; defaults to "n".
	NamePrefix string

	// XSModules are script module aliases known regardless of imports.
	XSModules []string
}

// DefaultConfig returns a weapp configuration with the common built-ins.
func DefaultConfig() *Config {
	components := make(map[string]ComponentDecl)
	for _, tag := range []string{
		"view", "text", "image", "button", "input", "textarea", "scroll-view",
		"swiper", "swiper-item", "navigator", "icon", "label", "form",
		"switch", "slider", "picker", "checkbox", "radio", "list-builder",
	} {
		components[tag] = ComponentDecl{Inner: true}
	}
	return &Config{
		Platform:   PlatformWeapp,
		Adapter:    DefaultAdapter(PlatformWeapp),
		Components: components,
		NamePrefix: "n",
		XSModules:  []string{"xs"},
	}
}

// IsInnerComponent reports whether a JSX tag names a configured built-in.
// The tag is compared in kebab-case, so ScrollView matches scroll-view.
func (c *Config) IsInnerComponent(tag string) bool {
	decl, ok := c.Components[KebabCase(tag)]
	return ok && decl.Inner
}

// DependencyDefines returns the dependency declarations of the replaced
// components used in a file, one per line, ordered by tag.
func (c *Config) DependencyDefines(used ComponentSet) string {
	var b strings.Builder
	for _, tag := range used.Sorted() {
		decl, ok := c.Components[tag]
		if !ok || decl.Replace == nil {
			continue
		}
		b.WriteString(decl.Replace.DependencyDefine)
		b.WriteString("\n")
	}
	return b.String()
}

// ComponentStyles returns the style snippets required by the components used
// in a file, ordered by tag. Replaced components contribute their
// replacement's style instead of the built-in one.
func (c *Config) ComponentStyles(used ComponentSet) string {
	var b strings.Builder
	for _, tag := range used.Sorted() {
		decl, ok := c.Components[tag]
		if !ok {
			continue
		}
		style := decl.Style
		if decl.Replace != nil {
			style = decl.Replace.Style
		}
		b.WriteString(style)
	}
	return b.String()
}

// ComponentSet is the set of built-in tags used in a compile unit.
type ComponentSet map[string]struct{}

// Add records a tag.
func (s ComponentSet) Add(tag string) {
	s[tag] = struct{}{}
}

// Sorted lists the recorded tags in lexical order.
func (s ComponentSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
