package neat

import (
	"github.com/pkg/errors"
)

// NodeSnapshot is the serializable form of a NodeGene.
type NodeSnapshot struct {
	ID         int      `json:"id"`
	Kind       NodeKind `json:"kind"`
	Activation string   `json:"activation,omitempty"`
	Bias       float64  `json:"bias"`
	Mult       float64  `json:"mult"`
}

// ConnectionSnapshot is the serializable form of a ConnectionGene.
type ConnectionSnapshot struct {
	ID      int     `json:"id"`
	In      int     `json:"in"`
	Out     int     `json:"out"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// GenomeSnapshot is a configuration-free copy of a genome's genes.
type GenomeSnapshot struct {
	ID          string               `json:"id"`
	Fitness     float64              `json:"fitness"`
	Inputs      int                  `json:"inputs"`
	Outputs     int                  `json:"outputs"`
	Nodes       []NodeSnapshot       `json:"nodes"`
	Connections []ConnectionSnapshot `json:"connections"`
}

// Snapshot captures the genome's genes. Nodes are sorted by id and
// connections keep genome order.
func (g *Genome) Snapshot() GenomeSnapshot {
	s := GenomeSnapshot{
		ID:          g.ID,
		Fitness:     g.Fitness,
		Inputs:      g.Config.NumInputs,
		Outputs:     g.Config.NumOutputs,
		Nodes:       make([]NodeSnapshot, 0, len(g.nodes)),
		Connections: make([]ConnectionSnapshot, 0, len(g.conns)),
	}
	for _, n := range g.Nodes() {
		ns := NodeSnapshot{ID: n.ID, Kind: n.Kind}
		if n.Kind != InputNode {
			ns.Activation = n.Activation.String()
			ns.Bias = n.Bias.Value
			ns.Mult = n.Mult.Value
		}
		s.Nodes = append(s.Nodes, ns)
	}
	for _, c := range g.conns {
		s.Connections = append(s.Connections, ConnectionSnapshot{
			ID: c.ID, In: c.In, Out: c.Out, Weight: c.Weight.Value, Enabled: c.Enabled.Value,
		})
	}
	return s
}

// FromSnapshot rebuilds a genome bound to config and history. config must
// already be validated, as for NewGenome. The snapshot must agree with
// config's input and output counts and keep every genome invariant, including
// acyclicity when config is feed-forward; otherwise ErrInvalidSnapshot is
// returned.
func FromSnapshot(config *GenomeConfig, history *History, s GenomeSnapshot) (*Genome, error) {
	if config == nil {
		return nil, configErrorf("genome", "config is required")
	}
	if err := config.check(); err != nil {
		return nil, err
	}
	if history == nil {
		return nil, configErrorf("history", "is required")
	}
	if s.Inputs != config.NumInputs || s.Outputs != config.NumOutputs {
		return nil, errors.Wrapf(ErrInvalidSnapshot, "genome %s has %d inputs and %d outputs, config has %d and %d",
			s.ID, s.Inputs, s.Outputs, config.NumInputs, config.NumOutputs)
	}

	g := newGenome(config, history)
	if s.ID != "" {
		g.ID = s.ID
	}
	g.Fitness = s.Fitness

	for _, ns := range s.Nodes {
		if _, dup := g.nodes[ns.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "duplicate node %d", ns.ID)
		}
		if want := g.expectedKind(ns.ID); want != ns.Kind {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "node %d is %s, want %s", ns.ID, ns.Kind, want)
		}
		n := &NodeGene{ID: ns.ID, Kind: ns.Kind}
		if ns.Kind != InputNode {
			act, err := ParseActivation(ns.Activation)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidSnapshot, "node %d: %v", ns.ID, err)
			}
			n.Activation = act
			n.Bias = NumericAttribute{Value: ns.Bias, config: &config.Bias}
			n.Mult = NumericAttribute{Value: ns.Mult, config: &config.Mult}
		}
		g.nodes[ns.ID] = n
	}
	for _, id := range append(g.Inputs(), g.Outputs()...) {
		if _, ok := g.nodes[id]; !ok {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "missing I/O node %d", id)
		}
	}

	ids := make(map[int]bool, len(s.Connections))
	for _, cs := range s.Connections {
		src, okIn := g.nodes[cs.In]
		dst, okOut := g.nodes[cs.Out]
		switch {
		case !okIn || !okOut:
			return nil, errors.Wrapf(ErrInvalidSnapshot, "connection %d: dangling endpoint %d->%d", cs.ID, cs.In, cs.Out)
		case src.Kind == OutputNode || dst.Kind == InputNode:
			return nil, errors.Wrapf(ErrInvalidSnapshot, "connection %d: invalid endpoint %d->%d", cs.ID, cs.In, cs.Out)
		case ids[cs.ID] || g.findConnection(cs.In, cs.Out) != nil:
			return nil, errors.Wrapf(ErrInvalidSnapshot, "duplicate connection %d (%d->%d)", cs.ID, cs.In, cs.Out)
		}
		ids[cs.ID] = true
		g.conns = append(g.conns, &ConnectionGene{
			ID:      cs.ID,
			In:      cs.In,
			Out:     cs.Out,
			Enabled: BoolAttribute{Value: cs.Enabled, config: &config.Enabled},
			Weight:  NumericAttribute{Value: cs.Weight, config: &config.Weight},
		})
	}

	if config.FeedForward {
		for _, c := range g.conns {
			if c.Enabled.Value && g.reaches(c.Out, c.In) {
				return nil, errors.Wrapf(ErrInvalidSnapshot, "connection %d (%d->%d) closes a cycle in a feed-forward genome", c.ID, c.In, c.Out)
			}
		}
	}
	return g, nil
}

func (g *Genome) expectedKind(id int) NodeKind {
	switch {
	case id >= 0 && id < g.Config.NumInputs:
		return InputNode
	case g.isIO(id):
		return OutputNode
	}
	return HiddenNode
}
