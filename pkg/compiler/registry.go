package compiler

import (
	"strconv"

	"github.com/recera/compilemode/pkg/jsx"
)

// RootPath is the runtime accessor of a compiled root's data.
const RootPath = "i"

// LoopItemPath is the accessor of the current item inside a loop body.
const LoopItemPath = "item"

// DynamicNode is one registered dynamic node.
type DynamicNode struct {
	Name string `yaml:"name" json:"name"`
	Tag  string `yaml:"tag" json:"tag"`
	Path string `yaml:"path" json:"path"`
}

// Registry maps dynamic nodes to their ids and runtime access paths. It also
// tracks the access path of the node currently being transformed.
type Registry struct {
	nodes  []DynamicNode
	byNode map[jsx.Node]int
	stack  []string
}

// NewRegistry creates an empty registry positioned at RootPath.
func NewRegistry() *Registry {
	return &Registry{
		byNode: make(map[jsx.Node]int),
		stack:  []string{RootPath},
	}
}

// CurrentPath is the access path of the node being transformed.
func (r *Registry) CurrentPath() string {
	return r.stack[len(r.stack)-1]
}

// EnterChild moves to the index-th runtime child of the current node.
func (r *Registry) EnterChild(index int) string {
	path := ChildPath(r.CurrentPath(), index)
	r.stack = append(r.stack, path)
	return path
}

// EnterPath moves to an absolute path, such as the loop item accessor or a
// new root.
func (r *Registry) EnterPath(path string) {
	r.stack = append(r.stack, path)
}

// Leave returns to the previous path. The root is never popped.
func (r *Registry) Leave() {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// TextTag is the tag recorded for dynamic text nodes.
const TextTag = "#text"

// Register records n under name at the current path. n is an element or the
// expression container of a dynamic text node.
func (r *Registry) Register(n jsx.Node, name string) DynamicNode {
	tag := TextTag
	if el, ok := n.(*jsx.Element); ok {
		tag, _ = el.Tag()
	}
	node := DynamicNode{Name: name, Tag: tag, Path: r.CurrentPath()}
	r.byNode[n] = len(r.nodes)
	r.nodes = append(r.nodes, node)
	return node
}

// Lookup returns the record of n.
func (r *Registry) Lookup(n jsx.Node) (DynamicNode, bool) {
	i, ok := r.byNode[n]
	if !ok {
		return DynamicNode{}, false
	}
	return r.nodes[i], true
}

// Nodes lists the registered nodes in registration order.
func (r *Registry) Nodes() []DynamicNode {
	out := make([]DynamicNode, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Len is the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// ChildPath is the accessor of the index-th runtime child under parent.
func ChildPath(parent string, index int) string {
	return parent + ".cn[" + strconv.Itoa(index) + "]"
}
