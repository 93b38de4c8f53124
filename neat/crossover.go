package neat

import "sort"

// GeneMatch is the alignment of two genomes' connection genes by historical
// marking.
//
// An unmatched gene whose marking lies inside the other genome's marking range
// is disjoint; one that lies outside it is excess.
type GeneMatch struct {
	Matching [][2]*ConnectionGene // Pairs sharing a marking, receiver first. Pairs disabled on both sides are dropped.
	Disjoint []*ConnectionGene
	Excess   []*ConnectionGene
	Larger   int // Size of the larger connection list
}

// alignment is the generic result of aligning two gene lists by id.
type alignment[T any] struct {
	matching [][2]T
	disjoint []T
	excess   []T
}

// align pairs genes of a and b sharing an id and buckets the rest by the id
// range of the opposite list. Order follows a, then b.
func align[T any](a, b []T, id func(T) int) alignment[T] {
	var res alignment[T]
	byID := make(map[int]T, len(b))
	for _, gene := range b {
		byID[id(gene)] = gene
	}
	seen := make(map[int]bool, len(a))
	loA, hiA := idBounds(a, id)
	loB, hiB := idBounds(b, id)

	for _, gene := range a {
		seen[id(gene)] = true
		if peer, ok := byID[id(gene)]; ok {
			res.matching = append(res.matching, [2]T{gene, peer})
			continue
		}
		res.bucket(gene, id(gene), loB, hiB, len(b) > 0)
	}
	for _, gene := range b {
		if !seen[id(gene)] {
			res.bucket(gene, id(gene), loA, hiA, len(a) > 0)
		}
	}
	return res
}

func (r *alignment[T]) bucket(gene T, id, lo, hi int, nonEmpty bool) {
	if nonEmpty && id >= lo && id <= hi {
		r.disjoint = append(r.disjoint, gene)
	} else {
		r.excess = append(r.excess, gene)
	}
}

func idBounds[T any](genes []T, id func(T) int) (lo, hi int) {
	for i, gene := range genes {
		v := id(gene)
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}

func connectionID(c *ConnectionGene) int { return c.ID }
func nodeID(n *NodeGene) int             { return n.ID }

// MatchGenes aligns the receiver's connection genes against peer's.
func (g *Genome) MatchGenes(peer *Genome) GeneMatch {
	a := align(g.conns, peer.conns, connectionID)
	m := GeneMatch{
		Disjoint: a.disjoint,
		Excess:   a.excess,
		Larger:   max(len(g.conns), len(peer.conns)),
	}
	for _, pair := range a.matching {
		if !pair[0].Enabled.Value && !pair[1].Enabled.Value {
			continue
		}
		m.Matching = append(m.Matching, pair)
	}
	return m
}

// Distance is the compatibility distance between two genomes: the node
// distance plus the connection distance, each computed as
// (c1*excess + c2*disjoint + c3*attribute difference) / N with N the larger
// gene count. Input nodes are not compared.
func (g *Genome) Distance(peer *Genome) float64 {
	c := g.Config

	nodes := align(g.nonInputNodes(), peer.nonInputNodes(), nodeID)
	var nodeDiff float64
	for _, pair := range nodes.matching {
		nodeDiff += pair[0].Distance(pair[1])
	}
	nodeDist := (c.CompatibilityExcessCoefficient*float64(len(nodes.excess)) +
		c.CompatibilityDisjointCoefficient*float64(len(nodes.disjoint)) +
		c.CompatibilityWeightCoefficient*nodeDiff) /
		normalizer(len(g.nodes)-c.NumInputs, len(peer.nodes)-peer.Config.NumInputs)

	conns := g.MatchGenes(peer)
	var connDiff float64
	for _, pair := range conns.Matching {
		connDiff += pair[0].Distance(pair[1])
	}
	connDist := (c.CompatibilityExcessCoefficient*float64(len(conns.Excess)) +
		c.CompatibilityDisjointCoefficient*float64(len(conns.Disjoint)) +
		c.CompatibilityWeightCoefficient*connDiff) /
		normalizer(len(g.conns), len(peer.conns))

	return nodeDist + connDist
}

func (g *Genome) nonInputNodes() []*NodeGene {
	nodes := make([]*NodeGene, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind != InputNode {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Crossover produces a child from the receiver, assumed to be the fitter
// parent, and peer. The child starts as a clone of the receiver; genes sharing
// a marking with peer take each attribute from either parent with probability
// 0.5. Disjoint and excess genes always come from the receiver.
func (g *Genome) Crossover(peer *Genome) *Genome {
	child := g.Clone()
	child.Fitness = 0

	for id, n := range child.nodes {
		if n.Kind == InputNode {
			continue
		}
		if other, ok := peer.nodes[id]; ok {
			child.nodes[id] = g.nodes[id].Crossover(other)
		}
	}

	peerConns := make(map[int]*ConnectionGene, len(peer.conns))
	for _, c := range peer.conns {
		peerConns[c.ID] = c
	}
	for i, c := range child.conns {
		other, ok := peerConns[c.ID]
		if !ok {
			continue
		}
		mixed := g.conns[i].Crossover(other)
		child.conns[i] = mixed
		if !c.Enabled.Value && mixed.Enabled.Value && child.closesCycle(mixed) {
			mixed.Enabled.Value = false
		}
	}

	logger.Debug("crossover", "parent", g.ID, "peer", peer.ID, "child", child.ID)
	return child
}
