package neat

import (
	"math/rand"

	"github.com/pkg/errors"
)

// maxConnectionAttempts bounds the random pair search of mutateAddConnection.
const maxConnectionAttempts = 20

// AddConnection connects in to out with a new enabled connection gene whose
// marking comes from the (in, out) pair.
func (g *Genome) AddConnection(in, out int) (*ConnectionGene, error) {
	src, ok := g.nodes[in]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "connection %d->%d: unknown node %d", in, out, in)
	}
	dst, ok := g.nodes[out]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "connection %d->%d: unknown node %d", in, out, out)
	}
	if src.Kind == OutputNode {
		return nil, errors.Wrapf(ErrInvalidEndpoint, "connection from output node %d", in)
	}
	if dst.Kind == InputNode {
		return nil, errors.Wrapf(ErrInvalidEndpoint, "connection to input node %d", out)
	}
	if g.findConnection(in, out) != nil {
		return nil, errors.Wrapf(ErrDuplicateConnection, "connection %d->%d", in, out)
	}
	if g.Config.FeedForward && g.reaches(out, in) {
		return nil, errors.Wrapf(ErrCycleRejected, "connection %d->%d", in, out)
	}

	conn := NewConnectionGene(g.History.Connections.Mark(in, out), in, out, g.Config)
	conn.Enabled.Value = true
	g.conns = append(g.conns, conn)

	logger.Debug("connection added", "genome", g.ID, "in", in, "out", out, "conn", conn.ID)
	return conn, nil
}

// RemoveConnection deletes the connection with the given marking. Endpoint
// nodes are kept.
func (g *Genome) RemoveConnection(id int) error {
	for i, c := range g.conns {
		if c.ID == id {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			logger.Debug("connection removed", "genome", g.ID, "conn", id)
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidInput, "connection %d", id)
}

// AddNode splits an enabled connection: the connection is disabled and a new
// hidden node is wired in with two new enabled connections in->new and new->out.
func (g *Genome) AddNode(connID int) (*NodeGene, error) {
	conn, ok := g.Connection(connID)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "connection %d", connID)
	}
	if !conn.Enabled.Value {
		return nil, errors.Wrapf(ErrDisabledConnection, "connection %d", connID)
	}
	id := g.History.Nodes.Mark(conn.In, conn.Out)
	if _, exists := g.nodes[id]; exists {
		return nil, errors.Wrapf(ErrDuplicateNode, "node %d from connection %d", id, connID)
	}

	conn.Enabled.Value = false
	node := NewNodeGene(id, HiddenNode, g.Config)
	g.nodes[id] = node

	for _, pair := range [][2]int{{conn.In, id}, {id, conn.Out}} {
		c := NewConnectionGene(g.History.Connections.Mark(pair[0], pair[1]), pair[0], pair[1], g.Config)
		c.Enabled.Value = true
		g.conns = append(g.conns, c)
	}

	logger.Debug("node added", "genome", g.ID, "conn", connID, "node", id)
	return node, nil
}

// RemoveNode deletes a hidden node and every connection that references it.
func (g *Genome) RemoveNode(id int) error {
	if g.isIO(id) {
		return errors.Wrapf(ErrCannotRemoveIO, "node %d", id)
	}
	if _, ok := g.nodes[id]; !ok {
		return errors.Wrapf(ErrInvalidInput, "node %d", id)
	}

	delete(g.nodes, id)
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.In != id && c.Out != id {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(g.conns); i++ {
		g.conns[i] = nil
	}
	g.conns = kept

	logger.Debug("node removed", "genome", g.ID, "node", id)
	return nil
}

// structuralOp is one topology mutation operator.
type structuralOp struct {
	name     string
	prob     float64
	possible func() bool
	apply    func() error
}

func (g *Genome) structuralOps() []structuralOp {
	return []structuralOp{
		{"add_connection", g.Config.ConnAddProb, func() bool { return true }, g.mutateAddConnection},
		{"remove_connection", g.Config.ConnDeleteProb, func() bool { return len(g.conns) > 0 }, g.mutateRemoveConnection},
		{"add_node", g.Config.NodeAddProb, func() bool { return len(g.enabledConnections()) > 0 }, g.mutateAddNode},
		{"remove_node", g.Config.NodeDeleteProb, func() bool { return len(g.Hidden()) > 0 }, g.mutateRemoveNode},
	}
}

// Mutate applies topology mutation, then mutates every node and connection
// attribute. Structural failures are discarded: mutation is best-effort.
func (g *Genome) Mutate() {
	ops := g.structuralOps()
	if g.Config.SingleStructuralMutation {
		g.applySingle(ops)
	} else {
		for _, op := range ops {
			if rand.Float64() < op.prob && op.possible() {
				g.apply(op)
			}
		}
	}

	for _, id := range g.nodeIDs() {
		g.nodes[id].Mutate()
	}
	for _, c := range g.conns {
		wasEnabled := c.Enabled.Value
		c.Mutate()
		if !wasEnabled && c.Enabled.Value && g.closesCycle(c) {
			c.Enabled.Value = false
		}
	}
}

// applySingle draws one operator against the cumulative probabilities of the
// operators that are currently possible.
func (g *Genome) applySingle(ops []structuralOp) {
	var candidates []structuralOp
	total := 0.0
	for _, op := range ops {
		if op.prob > 0 && op.possible() {
			candidates = append(candidates, op)
			total += op.prob
		}
	}
	if total <= 0 {
		return
	}
	r := rand.Float64() * total
	for _, op := range candidates {
		if r < op.prob {
			g.apply(op)
			return
		}
		r -= op.prob
	}
	g.apply(candidates[len(candidates)-1])
}

func (g *Genome) apply(op structuralOp) {
	if err := op.apply(); err != nil {
		logger.Debug("structural mutation discarded", "genome", g.ID, "op", op.name, "err", err)
	}
}

// closesCycle reports whether the enabled connection c closes a cycle in a
// feed-forward genome.
func (g *Genome) closesCycle(c *ConnectionGene) bool {
	return g.Config.FeedForward && g.reaches(c.Out, c.In)
}

func (g *Genome) enabledConnections() []*ConnectionGene {
	var enabled []*ConnectionGene
	for _, c := range g.conns {
		if c.Enabled.Value {
			enabled = append(enabled, c)
		}
	}
	return enabled
}

func (g *Genome) mutateAddConnection() error {
	var sources, targets []int
	for _, id := range g.nodeIDs() {
		switch g.nodes[id].Kind {
		case InputNode:
			sources = append(sources, id)
		case OutputNode:
			targets = append(targets, id)
		default:
			sources = append(sources, id)
			targets = append(targets, id)
		}
	}

	var err error
	for i := 0; i < maxConnectionAttempts; i++ {
		in := sources[rand.Intn(len(sources))]
		out := targets[rand.Intn(len(targets))]
		if _, err = g.AddConnection(in, out); err == nil {
			return nil
		}
	}
	return err
}

func (g *Genome) mutateRemoveConnection() error {
	return g.RemoveConnection(g.conns[rand.Intn(len(g.conns))].ID)
}

func (g *Genome) mutateAddNode() error {
	enabled := g.enabledConnections()
	_, err := g.AddNode(enabled[rand.Intn(len(enabled))].ID)
	return err
}

func (g *Genome) mutateRemoveNode() error {
	hidden := g.Hidden()
	return g.RemoveNode(hidden[rand.Intn(len(hidden))])
}
