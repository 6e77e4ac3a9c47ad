package tablegrid

import (
	"cmp"
	"slices"
)

// ReferenceNode is one cell of the reference graph
type ReferenceNode struct {
	Address Address

	Precedents map[Address]*ReferenceNode // cells this cell reads
	Dependents map[Address]*ReferenceNode // cells that read this cell
}

// ReferenceGraph records which cells read which other cells during the last
// read of a grid. references come from fragment selectors and formula
// selectors, ranges contributing every covered cell.
type ReferenceGraph struct {
	nodes map[Address]*ReferenceNode
}

// NewReferenceGraph creates an empty graph
func NewReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{nodes: make(map[Address]*ReferenceNode)}
}

// getOrCreateNode gets an existing node or creates a new one
func (rg *ReferenceGraph) getOrCreateNode(addr Address) *ReferenceNode {
	if node, exists := rg.nodes[addr]; exists {
		return node
	}
	node := &ReferenceNode{
		Address:    addr,
		Precedents: make(map[Address]*ReferenceNode),
		Dependents: make(map[Address]*ReferenceNode),
	}
	rg.nodes[addr] = node
	return node
}

// AddReference records that from reads to
func (rg *ReferenceGraph) AddReference(from, to Address) {
	fromNode := rg.getOrCreateNode(from)
	toNode := rg.getOrCreateNode(to)
	fromNode.Precedents[to] = toNode
	toNode.Dependents[from] = fromNode
}

// ClearReferences removes every reference made by addr
func (rg *ReferenceGraph) ClearReferences(addr Address) {
	node, exists := rg.nodes[addr]
	if !exists {
		return
	}
	for precedentAddr, precedentNode := range node.Precedents {
		delete(precedentNode.Dependents, addr)
		rg.cleanupNodeIfEmpty(precedentAddr)
	}
	node.Precedents = make(map[Address]*ReferenceNode)
	rg.cleanupNodeIfEmpty(addr)
}

// cleanupNodeIfEmpty removes a node that has no edges left
func (rg *ReferenceGraph) cleanupNodeIfEmpty(addr Address) {
	node, exists := rg.nodes[addr]
	if !exists {
		return
	}
	if len(node.Precedents) > 0 || len(node.Dependents) > 0 {
		return
	}
	delete(rg.nodes, addr)
}

// GetDirectPrecedents returns the cells addr reads, in reading order
func (rg *ReferenceGraph) GetDirectPrecedents(addr Address) []Address {
	node, exists := rg.nodes[addr]
	if !exists {
		return []Address{}
	}
	return sortedAddresses(node.Precedents)
}

// GetDirectDependents returns the cells that read addr, in reading order
func (rg *ReferenceGraph) GetDirectDependents(addr Address) []Address {
	node, exists := rg.nodes[addr]
	if !exists {
		return []Address{}
	}
	return sortedAddresses(node.Dependents)
}

// GetAllDependents returns every cell that reads addr directly or through
// other cells, in reading order
func (rg *ReferenceGraph) GetAllDependents(addr Address) []Address {
	visited := make(map[Address]struct{})
	result := []Address{}
	rg.collectDependents(addr, visited, &result)
	slices.SortFunc(result, compareAddresses)
	return result
}

// collectDependents recursively collects dependent cells
func (rg *ReferenceGraph) collectDependents(addr Address, visited map[Address]struct{}, result *[]Address) {
	node, exists := rg.nodes[addr]
	if !exists {
		return
	}
	for depAddr := range node.Dependents {
		if _, seen := visited[depAddr]; seen {
			continue
		}
		visited[depAddr] = struct{}{}
		*result = append(*result, depAddr)
		rg.collectDependents(depAddr, visited, result)
	}
}

// NodeCount returns the number of cells taking part in a reference
func (rg *ReferenceGraph) NodeCount() int {
	return len(rg.nodes)
}

// Clear removes every node
func (rg *ReferenceGraph) Clear() {
	rg.nodes = make(map[Address]*ReferenceNode)
}

func sortedAddresses(m map[Address]*ReferenceNode) []Address {
	out := make([]Address, 0, len(m))
	for addr := range m {
		out = append(out, addr)
	}
	slices.SortFunc(out, compareAddresses)
	return out
}

// compareAddresses orders addresses row first, then column
func compareAddresses(a, b Address) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}
