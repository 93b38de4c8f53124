package neat

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenome(t *testing.T, inputs, outputs int, configure func(*GenomeConfig)) *Genome {
	t.Helper()
	cfg := DefaultGenomeConfig(inputs, outputs)
	if configure != nil {
		configure(cfg)
	}
	g, err := NewGenome(cfg, NewHistory(inputs, outputs))
	require.NoError(t, err, "failed to create genome")
	return g
}

// buildGenome creates a genome with the given connections. Endpoints outside
// the I/O range become hidden nodes.
func buildGenome(t *testing.T, cfg *GenomeConfig, conns ...ConnectionSnapshot) *Genome {
	t.Helper()
	snap := GenomeSnapshot{Inputs: cfg.NumInputs, Outputs: cfg.NumOutputs}
	seen := make(map[int]bool)
	addNode := func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		kind := HiddenNode
		switch {
		case id < cfg.NumInputs:
			kind = InputNode
		case id < cfg.NumInputs+cfg.NumOutputs:
			kind = OutputNode
		}
		ns := NodeSnapshot{ID: id, Kind: kind}
		if kind != InputNode {
			ns.Activation = "linear"
			ns.Mult = 1
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	for id := 0; id < cfg.NumInputs+cfg.NumOutputs; id++ {
		addNode(id)
	}
	for _, c := range conns {
		addNode(c.In)
		addNode(c.Out)
	}
	snap.Connections = conns

	// Later mutations must not reissue the markings already in use.
	nextNode, nextConn := cfg.NumInputs+cfg.NumOutputs, 0
	for _, n := range snap.Nodes {
		nextNode = max(nextNode, n.ID+1)
	}
	for _, c := range conns {
		nextConn = max(nextConn, c.ID+1)
	}
	history := &History{Nodes: NewRegistry(nextNode), Connections: NewRegistry(nextConn)}

	g, err := FromSnapshot(cfg, history, snap)
	require.NoError(t, err, "failed to build genome")
	return g
}

func conn(id, in, out int, weight float64) ConnectionSnapshot {
	return ConnectionSnapshot{ID: id, In: in, Out: out, Weight: weight, Enabled: true}
}

func assertGenomeInvariants(t *testing.T, g *Genome) {
	t.Helper()
	for i, id := range g.Inputs() {
		n, ok := g.Node(id)
		require.True(t, ok, "missing input %d", i)
		assert.Equal(t, InputNode, n.Kind)
	}
	for _, id := range g.Outputs() {
		n, ok := g.Node(id)
		require.True(t, ok, "missing output %d", id)
		assert.Equal(t, OutputNode, n.Kind)
	}

	pairs := make(map[Pair]bool)
	for _, c := range g.Connections() {
		key := Pair{Origin: c.In, Destination: c.Out}
		assert.False(t, pairs[key], "duplicate connection %d->%d", c.In, c.Out)
		pairs[key] = true

		src, ok := g.Node(c.In)
		require.True(t, ok, "dangling source %d", c.In)
		dst, ok := g.Node(c.Out)
		require.True(t, ok, "dangling target %d", c.Out)
		assert.NotEqual(t, OutputNode, src.Kind)
		assert.NotEqual(t, InputNode, dst.Kind)
	}
}

// isAcyclic runs Kahn's algorithm over the enabled connections.
func isAcyclic(g *Genome) bool {
	inDegree := make(map[int]int)
	next := make(map[int][]int)
	for _, c := range g.Connections() {
		if c.Enabled.Value {
			inDegree[c.Out]++
			next[c.In] = append(next[c.In], c.Out)
		}
	}
	var queue []int
	for _, n := range g.Nodes() {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, out := range next[id] {
			inDegree[out]--
			if inDegree[out] == 0 {
				queue = append(queue, out)
			}
		}
	}
	return visited == len(g.Nodes())
}

func TestNewGenome(t *testing.T) {
	g := newTestGenome(t, 3, 2, nil)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, []int{0, 1, 2}, g.Inputs())
	assert.Equal(t, []int{3, 4}, g.Outputs())
	assert.Empty(t, g.Hidden())
	assert.Empty(t, g.Connections())
	assertGenomeInvariants(t, g)

	out, _ := g.Node(3)
	assert.Equal(t, Sigmoid, out.Activation)
}

func TestNewGenome_FullConnection(t *testing.T) {
	g := newTestGenome(t, 3, 2, func(c *GenomeConfig) { c.InitialConnection = ConnectionFull })

	conns := g.Connections()
	require.Len(t, conns, 6)
	for i, c := range conns {
		assert.Equal(t, i, c.ID)
		assert.True(t, c.Enabled.Value)
	}
	assertGenomeInvariants(t, g)
}

func TestNewGenome_ConfigError(t *testing.T) {
	_, err := NewGenome(DefaultGenomeConfig(0, 1), NewHistory(0, 1))
	assert.True(t, errors.Is(err, ErrConfig))

	_, err = NewGenome(DefaultGenomeConfig(1, 1), nil)
	assert.True(t, errors.Is(err, ErrConfig))

	cfg := DefaultGenomeConfig(1, 1)
	cfg.HiddenActivations = nil
	_, err = NewGenome(cfg, NewHistory(1, 1))
	assert.True(t, errors.Is(err, ErrConfig), "unresolved pools are rejected, not resolved")
	assert.Nil(t, cfg.HiddenActivations)
}

func TestNewGenome_ReadsConfigOnly(t *testing.T) {
	cfg := DefaultGenomeConfig(2, 1)
	cfg.InitialConnection = ConnectionFull
	cfg.HiddenActivationOptions = []string{"tanh"}

	var wg sync.WaitGroup
	genomes := make([]*Genome, 8)
	errs := make([]error, len(genomes))
	history := NewHistory(2, 1)
	for i := range genomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			genomes[i], errs[i] = NewGenome(cfg, history)
		}(i)
	}
	wg.Wait()

	for i, g := range genomes {
		require.NoError(t, errs[i])
		assert.Len(t, g.Connections(), 2)
	}
	assert.Equal(t, []Activation{Sigmoid}, cfg.HiddenActivations, "pools change only through Validate")
}

func TestAddConnection(t *testing.T) {
	g := newTestGenome(t, 2, 1, nil)

	c, err := g.AddConnection(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ID)
	assert.True(t, c.Enabled.Value)
	assert.Len(t, g.Connections(), 1)

	c2, err := g.AddConnection(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, c2.ID)
}

func TestAddConnection_InvalidEndpoint(t *testing.T) {
	g := newTestGenome(t, 2, 1, nil)

	_, err := g.AddConnection(2, 0)
	assert.True(t, errors.Is(err, ErrInvalidEndpoint), "connection from an output")
	_, err = g.AddConnection(0, 1)
	assert.True(t, errors.Is(err, ErrInvalidEndpoint), "connection into an input")
	_, err = g.AddConnection(0, 99)
	assert.True(t, errors.Is(err, ErrInvalidInput), "unknown node")

	assert.Empty(t, g.Connections())
}

func TestAddConnection_Duplicate(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	c, err := g.AddConnection(0, 1)
	require.NoError(t, err)

	_, err = g.AddConnection(0, 1)
	assert.True(t, errors.Is(err, ErrDuplicateConnection))

	c.Enabled.Value = false
	_, err = g.AddConnection(0, 1)
	assert.True(t, errors.Is(err, ErrDuplicateConnection), "disabled connections still count")
	assert.Len(t, g.Connections(), 1)
}

func TestAddConnection_Cycle(t *testing.T) {
	cfg := DefaultGenomeConfig(1, 1)
	g := buildGenome(t, cfg, conn(0, 0, 2, 1), conn(1, 2, 3, 1), conn(2, 3, 1, 1))

	_, err := g.AddConnection(3, 2)
	assert.True(t, errors.Is(err, ErrCycleRejected))
	_, err = g.AddConnection(2, 2)
	assert.True(t, errors.Is(err, ErrCycleRejected), "self-loop")
	assert.Len(t, g.Connections(), 3)
	assert.True(t, isAcyclic(g))

	recurrent := DefaultGenomeConfig(1, 1)
	recurrent.FeedForward = false
	g = buildGenome(t, recurrent, conn(0, 0, 2, 1), conn(1, 2, 3, 1), conn(2, 3, 1, 1))
	_, err = g.AddConnection(3, 2)
	assert.NoError(t, err)
	_, err = g.AddConnection(2, 2)
	assert.NoError(t, err)
}

func TestAddNode(t *testing.T) {
	g := newTestGenome(t, 3, 1, nil)
	original, err := g.AddConnection(0, 3)
	require.NoError(t, err)
	before := len(g.Connections())

	node, err := g.AddNode(original.ID)
	require.NoError(t, err)
	assert.Equal(t, HiddenNode, node.Kind)
	assert.Equal(t, 4, node.ID)
	assert.Equal(t, []int{4}, g.Hidden())

	assert.False(t, original.Enabled.Value)
	conns := g.Connections()
	assert.Len(t, conns, before+2)

	in := g.findConnection(0, node.ID)
	out := g.findConnection(node.ID, 3)
	require.NotNil(t, in)
	require.NotNil(t, out)
	assert.True(t, in.Enabled.Value)
	assert.True(t, out.Enabled.Value)
	assert.NotEqual(t, in.ID, out.ID)
	assertGenomeInvariants(t, g)
}

func TestAddNode_Errors(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	c, err := g.AddConnection(0, 1)
	require.NoError(t, err)

	_, err = g.AddNode(42)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = g.AddNode(c.ID)
	require.NoError(t, err)
	_, err = g.AddNode(c.ID)
	assert.True(t, errors.Is(err, ErrDisabledConnection))

	c.Enabled.Value = true
	count := len(g.Connections())
	_, err = g.AddNode(c.ID)
	assert.True(t, errors.Is(err, ErrDuplicateNode), "splitting the same pair again within an epoch")
	assert.True(t, c.Enabled.Value, "a failed split leaves the genome unchanged")
	assert.Len(t, g.Connections(), count)
}

func TestRemoveConnection(t *testing.T) {
	g := newTestGenome(t, 2, 1, func(c *GenomeConfig) { c.InitialConnection = ConnectionFull })

	err := g.RemoveConnection(99)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, g.RemoveConnection(0))
	conns := g.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, 1, conns[0].ID)
	assert.Len(t, g.Nodes(), 3, "endpoints are kept")
}

func TestRemoveNode(t *testing.T) {
	g := newTestGenome(t, 2, 1, func(c *GenomeConfig) { c.InitialConnection = ConnectionFull })
	node, err := g.AddNode(0)
	require.NoError(t, err)
	_, err = g.AddConnection(1, node.ID)
	require.NoError(t, err)

	for _, id := range append(g.Inputs(), g.Outputs()...) {
		assert.True(t, errors.Is(g.RemoveNode(id), ErrCannotRemoveIO))
	}
	assert.True(t, errors.Is(g.RemoveNode(77), ErrInvalidInput))

	require.NoError(t, g.RemoveNode(node.ID))
	assert.Empty(t, g.Hidden())
	for _, c := range g.Connections() {
		assert.NotEqual(t, node.ID, c.In)
		assert.NotEqual(t, node.ID, c.Out)
	}
	assert.Len(t, g.Connections(), 2)
	assertGenomeInvariants(t, g)
}

func TestIsStructural(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	_, err := g.AddConnection(1, 0)
	assert.True(t, IsStructural(err))
	assert.False(t, IsStructural(errors.New("other")))
	assert.False(t, IsStructural(nil))
}

func TestMutate_Invariants(t *testing.T) {
	policies := map[string]func(*GenomeConfig){
		"single": func(c *GenomeConfig) {
			c.InitialConnection = ConnectionFull
		},
		"independent": func(c *GenomeConfig) {
			c.InitialConnection = ConnectionFull
			c.SingleStructuralMutation = false
			c.NodeAddProb, c.NodeDeleteProb = 0.5, 0.3
			c.Enabled.MutateRate = 0.2
		},
	}
	for name, configure := range policies {
		t.Run(name, func(t *testing.T) {
			g := newTestGenome(t, 3, 2, configure)
			for i := 0; i < 300; i++ {
				g.Mutate()
				assertGenomeInvariants(t, g)
				require.True(t, isAcyclic(g), "cycle after %d mutations:\n%s", i+1, g)
				if i%50 == 0 {
					g.History.Reset()
				}
			}
		})
	}
}

func TestMutate_Recurrent(t *testing.T) {
	g := newTestGenome(t, 2, 2, func(c *GenomeConfig) {
		c.FeedForward = false
		c.SingleStructuralMutation = false
		c.ConnAddProb = 0.9
	})
	for i := 0; i < 200; i++ {
		g.Mutate()
		assertGenomeInvariants(t, g)
	}
}

func TestMutate_AttributesOnly(t *testing.T) {
	g := newTestGenome(t, 2, 1, func(c *GenomeConfig) {
		c.InitialConnection = ConnectionFull
		c.ConnAddProb, c.ConnDeleteProb, c.NodeAddProb, c.NodeDeleteProb = 0, 0, 0, 0
		c.Weight.ReplaceRate, c.Weight.MutateRate = 1, 0
		c.Weight.InitMean, c.Weight.InitStdev = 4, 0
	})
	g.Mutate()
	require.Len(t, g.Connections(), 2)
	for _, c := range g.Connections() {
		assert.Equal(t, 4.0, c.Weight.Value)
	}
}

func TestClone(t *testing.T) {
	g := newTestGenome(t, 2, 2, func(c *GenomeConfig) { c.InitialConnection = ConnectionFull })
	_, err := g.AddNode(0)
	require.NoError(t, err)
	g.Fitness = 3.5

	clone := g.Clone()
	assert.NotEqual(t, g.ID, clone.ID)
	assert.Equal(t, g.Fitness, clone.Fitness)

	a, b := g.Snapshot(), clone.Snapshot()
	b.ID = a.ID
	assert.Equal(t, a, b)

	clone.Connections()[0].Weight.Value += 1
	n, _ := clone.Node(2)
	n.Bias.Value += 1
	require.NoError(t, clone.RemoveNode(clone.Hidden()[0]))

	assert.Equal(t, a, g.Snapshot(), "mutating the clone never affects the original")
}
