package netgraph

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// AttributeRanges bounds the uniform distributions used when generating
// synthetic node and edge attributes. Grounded on the attribute ranges
// in the specification's data model (§3).
type AttributeRanges struct {
	ProcessingDelayMin float64
	ProcessingDelayMax float64
	NodeReliabMin      float64
	NodeReliabMax      float64
	BandwidthMin       float64
	BandwidthMax       float64
	LinkDelayMin       float64
	LinkDelayMax       float64
	LinkReliabMin      float64
	LinkReliabMax      float64
}

// DefaultAttributeRanges returns the ranges named in the specification.
func DefaultAttributeRanges() AttributeRanges {
	return AttributeRanges{
		ProcessingDelayMin: 0.5,
		ProcessingDelayMax: 2.0,
		NodeReliabMin:      0.95,
		NodeReliabMax:      0.999,
		BandwidthMin:       100,
		BandwidthMax:       1000,
		LinkDelayMin:       3,
		LinkDelayMax:       15,
		LinkReliabMin:      0.95,
		LinkReliabMax:      0.999,
	}
}

const maxGenerateAttempts = 100

// GenerateErdosRenyi builds a connected G(n, p) graph. It retries with a
// seed offset up to maxGenerateAttempts times to find a connected draw;
// if none connects, it stitches the resulting components together with
// bridging edges so the invariant "the graph is connected at load time"
// always holds, mirroring the fallback in the reference implementation's
// graph service.
func GenerateErdosRenyi(n int, p float64, seed int64, ranges AttributeRanges) (*Graph, error) {
	if n < 2 {
		return nil, fmt.Errorf("node count must be at least 2, got %d", n)
	}
	if p <= 0 || p > 1 {
		return nil, fmt.Errorf("connection probability must be in (0, 1], got %f", p)
	}

	var g *Graph
	connected := false
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		g = drawErdosRenyi(n, p, seed+int64(attempt))
		if g.Connected() {
			connected = true
			log.WithFields(log.Fields{"n": n, "p": p, "attempt": attempt}).Debug("generated connected graph")
			break
		}
	}
	if !connected {
		g = drawErdosRenyi(n, p, seed)
		bridgeComponents(g, seed)
		log.WithFields(log.Fields{"n": n, "p": p}).Warn("no connected draw within attempt budget, bridged components")
	}

	assignAttributes(g, seed, ranges)
	return g, nil
}

func drawErdosRenyi(n int, p float64, seed int64) *Graph {
	rng := rand.New(rand.NewSource(seed))
	g := New()
	for i := 0; i < n; i++ {
		g.AddNode(i, Node{})
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				g.AddEdge(i, j, Edge{})
			}
		}
	}
	return g
}

// bridgeComponents connects every connected component to the next by a
// single edge between arbitrary representatives, guaranteeing global
// connectivity without altering the intra-component structure.
func bridgeComponents(g *Graph, seed int64) {
	ids := g.NodeIDs()
	seen := make(map[int]bool, len(ids))
	var reps []int

	for _, start := range ids {
		if seen[start] {
			continue
		}
		reps = append(reps, start)
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range g.Neighbors(u) {
				if !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
	}

	for i := 0; i < len(reps)-1; i++ {
		g.AddEdge(reps[i], reps[i+1], Edge{})
	}
}

// assignAttributes fills every node/edge with attributes drawn uniformly
// at random from ranges, seeded deterministically from seed so the same
// seed always reproduces the same graph.
func assignAttributes(g *Graph, seed int64, ranges AttributeRanges) {
	rng := rand.New(rand.NewSource(seed ^ 0x5a5a5a5a))

	for _, id := range sortedInts(g.NodeIDs()) {
		g.AddNode(id, Node{
			ProcessingDelay: uniform(rng, ranges.ProcessingDelayMin, ranges.ProcessingDelayMax),
			Reliability:     uniform(rng, ranges.NodeReliabMin, ranges.NodeReliabMax),
		})
	}

	for _, k := range sortedEdgeKeys(g) {
		g.AddEdge(k.U, k.V, Edge{
			Bandwidth:   uniform(rng, ranges.BandwidthMin, ranges.BandwidthMax),
			Delay:       uniform(rng, ranges.LinkDelayMin, ranges.LinkDelayMax),
			Reliability: uniform(rng, ranges.LinkReliabMin, ranges.LinkReliabMax),
		})
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func sortedInts(xs []int) []int {
	out := make([]int, len(xs))
	copy(out, xs)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func sortedEdgeKeys(g *Graph) []edgeKey {
	g.mu.RLock()
	keys := make([]edgeKey, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	g.mu.RUnlock()
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && (keys[j-1].U > keys[j].U || (keys[j-1].U == keys[j].U && keys[j-1].V > keys[j].V)); j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
