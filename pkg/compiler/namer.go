package compiler

import "strconv"

// NodeNamer mints dynamic node ids for one compile unit: prefix0, prefix1, ...
// It is not safe for concurrent use; every compile unit owns its own namer.
type NodeNamer struct {
	prefix string
	count  int
}

// NewNodeNamer creates a namer whose first id is prefix+"0".
func NewNodeNamer(prefix string) *NodeNamer {
	return &NodeNamer{prefix: prefix}
}

// Next returns a new id, distinct from every id this namer returned before.
func (n *NodeNamer) Next() string {
	name := n.prefix + strconv.Itoa(n.count)
	n.count++
	return name
}
