// Package graph derives an evaluation order from a genome's enabled connections.
//
// A Graph is a disposable view: it is rebuilt whenever a genome changes and
// never mutates the genome it was built from.
package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/neatc/neat"
)

// Node is a node reachable backward from an output.
type Node struct {
	ID      int
	Kind    neat.NodeKind
	Inputs  []*neat.ConnectionGene // Enabled incoming connections, in genome order
	Outputs []int                  // Ids of the discovered nodes this node feeds
}

// Graph holds the discovered nodes and their evaluation order.
type Graph struct {
	genome   *neat.Genome
	nodes    map[int]*Node
	order    []int
	layers   [][]int
	position map[int]int
}

// New builds the graph of g. Nodes are discovered backward from the outputs
// through enabled connections; inputs and outputs are always present.
// A connection referencing a node missing from g panics.
func New(g *neat.Genome) *Graph {
	gr := &Graph{genome: g, nodes: make(map[int]*Node)}

	incoming := make(map[int][]*neat.ConnectionGene)
	for _, c := range g.Connections() {
		for _, id := range []int{c.In, c.Out} {
			if _, ok := g.Node(id); !ok {
				panic(fmt.Sprintf("graph: connection %d references missing node %d", c.ID, id))
			}
		}
		if c.Enabled.Value {
			incoming[c.Out] = append(incoming[c.Out], c)
		}
	}

	for _, id := range g.Inputs() {
		gr.add(id)
	}
	queue := g.Outputs()
	for _, id := range queue {
		gr.add(id)
	}
	for len(queue) > 0 {
		current := gr.nodes[queue[0]]
		queue = queue[1:]
		for _, c := range incoming[current.ID] {
			current.Inputs = append(current.Inputs, c)
			src, seen := gr.nodes[c.In]
			if !seen {
				src = gr.add(c.In)
				queue = append(queue, c.In)
			}
			src.Outputs = append(src.Outputs, current.ID)
		}
	}

	gr.sort()
	neat.Logger().Debug("graph built", "genome", g.ID, "nodes", len(gr.nodes), "layers", len(gr.layers))
	return gr
}

func (gr *Graph) add(id int) *Node {
	n, _ := gr.genome.Node(id)
	node := &Node{ID: id, Kind: n.Kind}
	gr.nodes[id] = node
	return node
}

// sort orders the nodes as inputs, then hidden strata, then outputs. Hidden
// nodes are peeled in layers of zero in-degree. When only cycles remain, the
// strongly connected components nothing else feeds form the next layer.
// Self-loops never block a node.
func (gr *Graph) sort() {
	dg := simple.NewDirectedGraph()
	for _, id := range gr.Hidden() {
		dg.AddNode(simple.Node(id))
	}
	for _, id := range gr.Hidden() {
		for _, c := range gr.nodes[id].Inputs {
			if c.In != id && gr.nodes[c.In].Kind == neat.HiddenNode {
				dg.SetEdge(simple.Edge{F: simple.Node(c.In), T: simple.Node(id)})
			}
		}
	}

	for dg.Nodes().Len() > 0 {
		var layer []int
		for _, id := range sortedIDs(dg) {
			if dg.To(int64(id)).Len() == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			layer = sourceComponents(dg)
		}
		for _, id := range layer {
			dg.RemoveNode(int64(id))
		}
		gr.layers = append(gr.layers, layer)
	}

	gr.order = append(gr.order, gr.genome.Inputs()...)
	for _, layer := range gr.layers {
		gr.order = append(gr.order, layer...)
	}
	gr.order = append(gr.order, gr.genome.Outputs()...)

	gr.position = make(map[int]int, len(gr.order))
	for i, id := range gr.order {
		gr.position[id] = i
	}
}

// sourceComponents returns the members of the strongly connected components
// with no incoming edge from outside themselves. Members are ascending within
// a component and components are ordered by their smallest id.
func sourceComponents(dg *simple.DirectedGraph) []int {
	var sources [][]int
	for _, scc := range topo.TarjanSCC(dg) {
		members := make(map[int64]bool, len(scc))
		for _, n := range scc {
			members[n.ID()] = true
		}
		source := true
		ids := make([]int, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, int(n.ID()))
			for it := dg.To(n.ID()); it.Next(); {
				if !members[it.Node().ID()] {
					source = false
				}
			}
		}
		if source {
			sort.Ints(ids)
			sources = append(sources, ids)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i][0] < sources[j][0] })

	var flat []int
	for _, ids := range sources {
		flat = append(flat, ids...)
	}
	return flat
}

func sortedIDs(dg *simple.DirectedGraph) []int {
	var ids []int
	for it := dg.Nodes(); it.Next(); {
		ids = append(ids, int(it.Node().ID()))
	}
	sort.Ints(ids)
	return ids
}

// Genome returns the genome the graph was built from.
func (gr *Graph) Genome() *neat.Genome { return gr.genome }

// Node looks up a discovered node.
func (gr *Graph) Node(id int) (*Node, bool) {
	n, ok := gr.nodes[id]
	return n, ok
}

// Order returns the evaluation order: inputs ascending, hidden strata, outputs ascending.
func (gr *Graph) Order() []int {
	order := make([]int, len(gr.order))
	copy(order, gr.order)
	return order
}

// Layers returns the hidden strata in evaluation order.
func (gr *Graph) Layers() [][]int {
	layers := make([][]int, len(gr.layers))
	for i, l := range gr.layers {
		layers[i] = append([]int(nil), l...)
	}
	return layers
}

// Hidden returns the discovered hidden node ids in ascending order.
func (gr *Graph) Hidden() []int {
	var hidden []int
	for id, n := range gr.nodes {
		if n.Kind == neat.HiddenNode {
			hidden = append(hidden, id)
		}
	}
	sort.Ints(hidden)
	return hidden
}

// IsRecurrent reports whether c is evaluated with its source's value from the
// previous run, that is, whether the source does not come before the target
// in the order. Connections outside the graph are not recurrent.
func (gr *Graph) IsRecurrent(c *neat.ConnectionGene) bool {
	from, okFrom := gr.position[c.In]
	to, okTo := gr.position[c.Out]
	return okFrom && okTo && from >= to
}
