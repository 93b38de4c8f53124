// Package nn compiles genomes into flat, runnable networks.
package nn

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/baldhumanity/neatc/neat"
	"github.com/baldhumanity/neatc/neat/graph"
)

// ErrInputLength is matched by every InputLengthError.
var ErrInputLength = errors.New("input length mismatch")

// ErrOutputLength reports a RunInto destination that cannot hold the outputs.
var ErrOutputLength = errors.New("output buffer too short")

// InputLengthError reports a Run input whose length differs from the number
// of input nodes. The network state is left untouched.
type InputLengthError struct {
	Expected int
	Received int
}

func (e *InputLengthError) Error() string {
	return fmt.Sprintf("input length mismatch: expected %d values, received %d", e.Expected, e.Received)
}

// Is lets errors.Is(err, ErrInputLength) match any InputLengthError.
func (e *InputLengthError) Is(target error) bool {
	return target == ErrInputLength
}

// Input is one weighted operand of a Step.
type Input struct {
	Slot   int
	Weight float64
}

// Step computes activation(sum(value[Slot]*Weight)*Mult + Bias) into Target.
type Step struct {
	Inputs []Input
	Mult   float64
	Bias   float64
	Target int
}

// Network is a compiled genome: a value slot per node in graph order, the
// activation of each slot and the steps that update them. Slot values persist
// between runs until Reset.
type Network struct {
	GenomeID string

	numInputs   int
	numOutputs  int
	nodeIDs     []int
	values      []float64
	activations []neat.Activation
	steps       []Step
	stateInit   string
}

// New builds the graph of g and compiles it. A nil config uses zero state.
// config is copied, never written.
func New(g *neat.Genome, config *neat.NetworkConfig) (*Network, error) {
	return Compile(graph.New(g), config)
}

// Compile turns a graph into a network. Slots follow the graph order, so
// inputs take the first slots and outputs the last. Nodes with no enabled
// incoming connection get no step and keep their state.
func Compile(gr *graph.Graph, config *neat.NetworkConfig) (*Network, error) {
	var nc neat.NetworkConfig
	if config != nil {
		nc = *config
	}
	if err := nc.Validate(); err != nil {
		return nil, err
	}

	g := gr.Genome()
	order := gr.Order()
	net := &Network{
		GenomeID:    g.ID,
		numInputs:   g.Config.NumInputs,
		numOutputs:  g.Config.NumOutputs,
		nodeIDs:     order,
		values:      make([]float64, len(order)),
		activations: make([]neat.Activation, len(order)),
		stateInit:   nc.StateInit,
	}

	slots := make(map[int]int, len(order))
	for slot, id := range order {
		slots[id] = slot
	}
	for slot, id := range order {
		node, _ := g.Node(id)
		if node.Kind == neat.InputNode {
			continue
		}
		net.activations[slot] = node.Activation

		gn, _ := gr.Node(id)
		if len(gn.Inputs) == 0 {
			continue
		}
		step := Step{
			Inputs: make([]Input, len(gn.Inputs)),
			Mult:   node.Mult.Value,
			Bias:   node.Bias.Value,
			Target: slot,
		}
		for i, c := range gn.Inputs {
			step.Inputs[i] = Input{Slot: slots[c.In], Weight: c.Weight.Value}
		}
		net.steps = append(net.steps, step)
	}
	net.Reset()

	neat.Logger().Debug("network compiled", "genome", g.ID, "slots", len(order), "steps", len(net.steps))
	return net, nil
}

// Run evaluates the network on input and returns the output slot values.
func (n *Network) Run(input []float64) ([]float64, error) {
	out := make([]float64, n.numOutputs)
	if err := n.RunInto(out, input); err != nil {
		return nil, err
	}
	return out, nil
}

// RunInto is Run writing the outputs into dst without allocating.
func (n *Network) RunInto(dst, input []float64) error {
	if len(input) != n.numInputs {
		return &InputLengthError{Expected: n.numInputs, Received: len(input)}
	}
	if len(dst) < n.numOutputs {
		return errors.Wrapf(ErrOutputLength, "need %d values, have %d", n.numOutputs, len(dst))
	}

	copy(n.values, input)
	for i := range n.steps {
		s := &n.steps[i]
		sum := 0.0
		for _, in := range s.Inputs {
			sum += n.values[in.Slot] * in.Weight
		}
		n.values[s.Target] = n.activations[s.Target].Apply(sum*s.Mult + s.Bias)
	}
	copy(dst, n.values[len(n.values)-n.numOutputs:])
	return nil
}

// Reset sets every slot to zero, or to a uniform value in [-1, 1) when the
// network was compiled with random state initialization.
func (n *Network) Reset() {
	for i := range n.values {
		if n.stateInit == neat.StateRandom {
			n.values[i] = rand.Float64()*2 - 1
		} else {
			n.values[i] = 0
		}
	}
}

// Steps returns the compiled steps in execution order.
func (n *Network) Steps() []Step {
	return n.steps
}

// Slots returns the node id held by each slot.
func (n *Network) Slots() []int {
	return append([]int(nil), n.nodeIDs...)
}

// Activations returns the activation of each slot. Input slots hold Linear.
func (n *Network) Activations() []neat.Activation {
	return append([]neat.Activation(nil), n.activations...)
}

// NumInputs is the expected length of a Run input.
func (n *Network) NumInputs() int { return n.numInputs }

// NumOutputs is the length of a Run result.
func (n *Network) NumOutputs() int { return n.numOutputs }
