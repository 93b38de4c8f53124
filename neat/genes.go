package neat

import (
	"fmt"
	"math"
	"math/rand"
)

// NodeKind is the role of a node in the network.
type NodeKind int

const (
	InputNode NodeKind = iota
	HiddenNode
	OutputNode
)

func (k NodeKind) String() string {
	switch k {
	case InputNode:
		return "input"
	case HiddenNode:
		return "hidden"
	case OutputNode:
		return "output"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *NodeKind) UnmarshalText(text []byte) error {
	for _, kind := range []NodeKind{InputNode, HiddenNode, OutputNode} {
		if string(text) == kind.String() {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", text)
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the neural network genome.
// Input nodes carry no activation, bias or mult.
type NodeGene struct {
	ID         int // Historical marking, unique within a genome
	Kind       NodeKind
	Activation Activation
	Bias       NumericAttribute
	Mult       NumericAttribute
}

// NewNodeGene creates a new NodeGene with attributes initialized according to the config.
// Hidden and output nodes draw their activation from the matching pool.
func NewNodeGene(id int, kind NodeKind, config *GenomeConfig) *NodeGene {
	ng := &NodeGene{ID: id, Kind: kind}
	if kind == InputNode {
		return ng
	}
	pool := config.HiddenActivations
	if kind == OutputNode {
		pool = config.OutputActivations
	}
	ng.Activation = pool[rand.Intn(len(pool))]
	ng.Bias = NewNumericAttribute(&config.Bias)
	ng.Mult = NewNumericAttribute(&config.Mult)
	return ng
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	if ng.Kind == InputNode {
		return fmt.Sprintf("NodeGene(ID: %d, input)", ng.ID)
	}
	return fmt.Sprintf("NodeGene(ID: %d, %s, Bias: %.3f, Mult: %.3f, Activation: %s)",
		ng.ID, ng.Kind, ng.Bias.Value, ng.Mult.Value, ng.Activation)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// Mutate perturbs bias and mult. Inputs are left untouched.
func (ng *NodeGene) Mutate() {
	if ng.Kind == InputNode {
		return
	}
	ng.Bias.Mutate()
	ng.Mult.Mutate()
}

// Distance calculates the attribute distance between two NodeGenes with the same id.
func (ng *NodeGene) Distance(other *NodeGene) float64 {
	d := math.Abs(ng.Bias.Value-other.Bias.Value) + math.Abs(ng.Mult.Value-other.Mult.Value)
	if ng.Activation != other.Activation {
		d += 1.0
	}
	return d
}

// Crossover creates a new NodeGene taking bias and mult independently from
// either parent with probability 0.5 each. ng is the primary parent.
func (ng *NodeGene) Crossover(other *NodeGene) *NodeGene {
	child := ng.Copy()
	if rand.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	if rand.Float64() < 0.5 {
		child.Mult = other.Mult
	}
	return child
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a connection between two nodes in the genome.
type ConnectionGene struct {
	ID      int // Historical marking of (In, Out)
	In      int
	Out     int
	Enabled BoolAttribute
	Weight  NumericAttribute
}

// NewConnectionGene creates a new ConnectionGene with a freshly sampled weight.
func NewConnectionGene(id, in, out int, config *GenomeConfig) *ConnectionGene {
	return &ConnectionGene{
		ID:      id,
		In:      in,
		Out:     out,
		Enabled: NewBoolAttribute(&config.Enabled),
		Weight:  NewNumericAttribute(&config.Weight),
	}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(ID: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		cg.ID, cg.In, cg.Out, cg.Weight.Value, cg.Enabled.Value)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// Mutate perturbs the weight and possibly flips the enabled flag.
func (cg *ConnectionGene) Mutate() {
	cg.Weight.Mutate()
	cg.Enabled.Mutate()
}

// Distance calculates the attribute distance between two ConnectionGenes with the same id.
func (cg *ConnectionGene) Distance(other *ConnectionGene) float64 {
	d := math.Abs(cg.Weight.Value - other.Weight.Value)
	if cg.Enabled.Value != other.Enabled.Value {
		d += 1.0
	}
	return d
}

// Crossover creates a new ConnectionGene taking weight and enabled independently
// from either parent with probability 0.5 each. cg is the primary parent.
func (cg *ConnectionGene) Crossover(other *ConnectionGene) *ConnectionGene {
	child := cg.Copy()
	if rand.Float64() < 0.5 {
		child.Weight = other.Weight
	}
	if rand.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}
	return child
}
