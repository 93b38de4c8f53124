package neat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Genome represents an individual organism in the population.
// It consists of NodeGenes keyed by id and an ordered list of ConnectionGenes.
type Genome struct {
	ID      string  // Opaque identifier used for diagnostics.
	Fitness float64 // Fitness score, owned by the caller.
	// Config holds a reference to the run configuration. It must not change
	// once genomes have been created from it.
	Config *GenomeConfig
	// History issues historical markings; it is shared by every genome of a run.
	History *History

	nodes map[int]*NodeGene
	conns []*ConnectionGene
}

// NewGenome creates a genome with the configured input and output nodes and
// applies the initial connection scheme. config must already be validated;
// it is only read, so genomes may be created concurrently.
func NewGenome(config *GenomeConfig, history *History) (*Genome, error) {
	if config == nil {
		return nil, configErrorf("genome", "config is required")
	}
	if err := config.check(); err != nil {
		return nil, err
	}
	if history == nil {
		return nil, configErrorf("history", "is required")
	}

	g := newGenome(config, history)
	for i := 0; i < config.NumInputs; i++ {
		g.nodes[i] = NewNodeGene(i, InputNode, config)
	}
	for i := 0; i < config.NumOutputs; i++ {
		id := config.NumInputs + i
		g.nodes[id] = NewNodeGene(id, OutputNode, config)
	}

	if config.InitialConnection == ConnectionFull {
		for _, in := range g.Inputs() {
			for _, out := range g.Outputs() {
				if _, err := g.AddConnection(in, out); err != nil {
					return nil, errors.Wrapf(err, "initial connection %d->%d", in, out)
				}
			}
		}
	}

	logger.Debug("genome created", "genome", g.ID, "inputs", config.NumInputs, "outputs", config.NumOutputs)
	return g, nil
}

func newGenome(config *GenomeConfig, history *History) *Genome {
	return &Genome{
		ID:      uuid.NewString(),
		Config:  config,
		History: history,
		nodes:   make(map[int]*NodeGene),
	}
}

// Nodes returns the node genes sorted by id.
func (g *Genome) Nodes() []*NodeGene {
	nodes := make([]*NodeGene, 0, len(g.nodes))
	for _, id := range g.nodeIDs() {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Node looks up a node gene by id.
func (g *Genome) Node(id int) (*NodeGene, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Connections returns the connection genes in genome order.
func (g *Genome) Connections() []*ConnectionGene {
	conns := make([]*ConnectionGene, len(g.conns))
	copy(conns, g.conns)
	return conns
}

// Connection looks up a connection gene by historical marking.
func (g *Genome) Connection(id int) (*ConnectionGene, bool) {
	for _, c := range g.conns {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Inputs returns the input node ids, [0, NumInputs).
func (g *Genome) Inputs() []int {
	return idRange(0, g.Config.NumInputs)
}

// Outputs returns the output node ids, [NumInputs, NumInputs+NumOutputs).
func (g *Genome) Outputs() []int {
	return idRange(g.Config.NumInputs, g.Config.NumOutputs)
}

// Hidden returns the hidden node ids in ascending order.
func (g *Genome) Hidden() []int {
	var hidden []int
	for _, id := range g.nodeIDs() {
		if g.nodes[id].Kind == HiddenNode {
			hidden = append(hidden, id)
		}
	}
	return hidden
}

// isIO reports whether id lies in the reserved input/output range.
func (g *Genome) isIO(id int) bool {
	return id >= 0 && id < g.Config.NumInputs+g.Config.NumOutputs
}

func (g *Genome) nodeIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (g *Genome) findConnection(in, out int) *ConnectionGene {
	for _, c := range g.conns {
		if c.In == in && c.Out == out {
			return c
		}
	}
	return nil
}

// reaches reports whether a directed path of enabled connections leads from
// one node to another. A node always reaches itself.
func (g *Genome) reaches(from, to int) bool {
	if from == to {
		return true
	}
	next := make(map[int][]int)
	for _, c := range g.conns {
		if c.Enabled.Value {
			next[c.In] = append(next[c.In], c.Out)
		}
	}

	visited := map[int]bool{from: true}
	queue := []int{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range next[current] {
			if n == to {
				return true
			}
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// Clone deep-copies every gene into a new genome with a fresh identifier.
func (g *Genome) Clone() *Genome {
	clone := newGenome(g.Config, g.History)
	clone.Fitness = g.Fitness
	for id, n := range g.nodes {
		clone.nodes[id] = n.Copy()
	}
	clone.conns = make([]*ConnectionGene, len(g.conns))
	for i, c := range g.conns {
		clone.conns[i] = c.Copy()
	}
	return clone
}

// String renders the genome for diagnostics.
func (g *Genome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Genome %s\n-nodes:\n", g.ID)
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "\t%s\n", n)
	}
	b.WriteString("-connections:\n")
	for _, c := range g.conns {
		fmt.Fprintf(&b, "\t%s\n", c)
	}
	return b.String()
}

func idRange(first, n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = first + i
	}
	return ids
}
