package compiler

import (
	"go.uber.org/zap"

	"github.com/recera/compilemode/pkg/jsx"
)

// Unit holds the state of one compile unit, normally one source file: the
// node namer, the dynamic node registry and the set of used components.
// A Unit is used by a single goroutine; concurrent compilations each create
// their own.
type Unit struct {
	config     *Config
	imports    ImportMaps
	xsModules  []string
	namer      *NodeNamer
	registry   *Registry
	components ComponentSet
	templates  []Template
}

// Template is the output of one compiled root.
type Template struct {
	Name string `yaml:"name" json:"name"`
	Body string `yaml:"body" json:"body"`
}

// Result is everything a compile unit produced.
type Result struct {
	Templates         []Template    `yaml:"templates" json:"templates"`
	Nodes             []DynamicNode `yaml:"nodes" json:"nodes"`
	Components        []string      `yaml:"components" json:"components"`
	DependencyDefines string        `yaml:"dependencyDefines,omitempty" json:"dependencyDefines,omitempty"`
	Styles            string        `yaml:"styles,omitempty" json:"styles,omitempty"`
}

// NewUnit creates a compile unit. xsModules are script module aliases
// imported by the file, in addition to the ones configured.
func NewUnit(cfg *Config, imports ImportMaps, xsModules ...string) *Unit {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	prefix := cfg.NamePrefix
	if prefix == "" {
		prefix = "n"
	}
	modules := make([]string, 0, len(cfg.XSModules)+len(xsModules))
	modules = append(modules, cfg.XSModules...)
	modules = append(modules, xsModules...)

	return &Unit{
		config:     cfg,
		imports:    imports,
		xsModules:  modules,
		namer:      NewNodeNamer(prefix),
		registry:   NewRegistry(),
		components: make(ComponentSet),
	}
}

// Compile transforms one compile-mode root in place and emits its template.
// A configuration error aborts the unit; the returned error is an *Error.
func (u *Unit) Compile(root *jsx.Element) (Template, error) {
	u.registry.EnterPath(RootPath)
	defer u.registry.Leave()

	e := &emitter{u: u}
	if err := e.element(root, "", true); err != nil {
		Logger().Warn("compile aborted", zap.Error(err))
		return Template{}, err
	}

	var name string
	if node, ok := u.registry.Lookup(root); ok {
		name = node.Name
	} else {
		// ignored roots still need a distinct template name
		name = u.namer.Next()
	}

	tmpl := Template{Name: "tmpl_0_" + name, Body: e.String()}
	u.templates = append(u.templates, tmpl)
	Logger().Debug("compiled root",
		zap.String("template", tmpl.Name),
		zap.Int("dynamic_nodes", u.registry.Len()))
	return tmpl, nil
}

// Result collects the unit's artifacts.
func (u *Unit) Result() *Result {
	return &Result{
		Templates:         append([]Template(nil), u.templates...),
		Nodes:             u.registry.Nodes(),
		Components:        u.components.Sorted(),
		DependencyDefines: u.config.DependencyDefines(u.components),
		Styles:            u.config.ComponentStyles(u.components),
	}
}

// assignID mints an id for el, stamps it on the element and registers it at
// the current path. An element is named at most once.
func (u *Unit) assignID(el *jsx.Element) string {
	if node, ok := u.registry.Lookup(el); ok {
		return node.Name
	}
	name := u.namer.Next()
	el.Attrs = append(el.Attrs, jsx.StringAttr(AttrDynamicID, name))
	u.registry.Register(el, name)
	return name
}

// Compile is a convenience that compiles every root with a fresh unit.
func Compile(cfg *Config, imports ImportMaps, xsModules []string, roots ...*jsx.Element) (*Result, error) {
	u := NewUnit(cfg, imports, xsModules...)
	for _, root := range roots {
		if _, err := u.Compile(root); err != nil {
			return nil, err
		}
	}
	return u.Result(), nil
}
