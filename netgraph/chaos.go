package netgraph

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// ChaosBreak deletes one random edge from g, simulating the externally
// triggered "chaos" removal events used to test re-routing. It must
// only be called between optimizer calls; the caller is responsible for
// serializing this against any in-flight call on g, per the
// specification's shared-resource policy. Returns the removed edge's
// endpoints, or ok=false if the graph has no edges.
func ChaosBreak(g *Graph, rng *rand.Rand) (u, v int, ok bool) {
	g.mu.Lock()
	if len(g.edges) == 0 {
		g.mu.Unlock()
		return 0, 0, false
	}
	keys := make([]edgeKey, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	g.mu.Unlock()

	pick := keys[rng.Intn(len(keys))]
	g.RemoveEdge(pick.U, pick.V)
	log.WithFields(log.Fields{"u": pick.U, "v": pick.V}).Info("chaos: edge removed")
	return pick.U, pick.V, true
}

// ChaosBreakEdge deletes a specific edge, reporting whether it existed.
func ChaosBreakEdge(g *Graph, u, v int) bool {
	if !g.HasEdge(u, v) {
		return false
	}
	g.RemoveEdge(u, v)
	log.WithFields(log.Fields{"u": u, "v": v}).Info("chaos: edge removed")
	return true
}
