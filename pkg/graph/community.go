package graph

import (
	"math/rand"
	"sort"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

// communitySeed pins the shuffle order so repeated runs over the same
// graph produce the same partition.
const communitySeed = 42

// DetectCommunities partitions the graph into communities by Leiden-style
// modularity maximization: repeated local moving with a resolution
// parameter, a refinement step that splits disconnected communities, and
// aggregation until the partition stops improving.
//
// Every node is assigned to exactly one community. Isolated nodes become
// singleton communities; every connected component yields at least one
// community. Higher resolution values produce more, smaller communities.
//
// Community IDs are assigned in order of each community's first member,
// following node insertion order, so IDs are stable for a given graph but
// not across graph rebuilds.
func DetectCommunities(g *Graph, resolution float64) []common.Community {
	if resolution <= 0 {
		resolution = 1.0
	}
	names := g.Nodes()
	n := len(names)
	if n == 0 {
		return nil
	}

	idx := make(map[string]int, n)
	for i, name := range names {
		idx[name] = i
	}

	// weighted adjacency over node indices
	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	var totalWeight float64
	for _, e := range g.Edges() {
		a, b := idx[e.Source], idx[e.Target]
		adj[a][b] += e.Weight
		if a != b {
			adj[b][a] += e.Weight
		}
		totalWeight += e.Weight
	}

	membership := make([]int, n)
	for i := range membership {
		membership[i] = i
	}

	if totalWeight == 0 {
		return assembleCommunities(names, membership)
	}

	rng := rand.New(rand.NewSource(communitySeed))

	level := newLevelGraph(adj)
	// maps each original node to its node in the current level
	toLevel := make([]int, n)
	for i := range toLevel {
		toLevel[i] = i
	}

	for {
		level.localMove(rng, resolution, totalWeight)
		refined := level.refine()
		if len(refined.groups) == level.size() {
			break
		}

		for i := range toLevel {
			toLevel[i] = refined.membership[toLevel[i]]
		}
		level = level.aggregate(refined)

		if level.size() <= 1 {
			break
		}
	}

	for i := range membership {
		membership[i] = toLevel[i]
	}
	return assembleCommunities(names, membership)
}

const communityResolutionDefault = 1.0

// DetectCommunitiesDefault runs DetectCommunities at resolution 1.0.
func DetectCommunitiesDefault(g *Graph) []common.Community {
	return DetectCommunities(g, communityResolutionDefault)
}

func assembleCommunities(names []string, membership []int) []common.Community {
	// renumber in order of first appearance
	remap := make(map[int]int)
	var out []common.Community
	for i, name := range names {
		label := membership[i]
		id, ok := remap[label]
		if !ok {
			id = len(out)
			remap[label] = id
			out = append(out, common.Community{ID: id})
		}
		out[id].Members = append(out[id].Members, name)
	}
	return out
}

// levelGraph is one level of the aggregation hierarchy.
type levelGraph struct {
	adj        []map[int]float64
	selfLoops  []float64
	degree     []float64
	membership []int
}

func newLevelGraph(adj []map[int]float64) *levelGraph {
	n := len(adj)
	lg := &levelGraph{
		adj:        adj,
		selfLoops:  make([]float64, n),
		degree:     make([]float64, n),
		membership: make([]int, n),
	}
	for i := range adj {
		lg.membership[i] = i
		for j, w := range adj[i] {
			if i == j {
				lg.selfLoops[i] = w
				lg.degree[i] += 2 * w
				continue
			}
			lg.degree[i] += w
		}
	}
	return lg
}

func (lg *levelGraph) size() int {
	return len(lg.adj)
}

// localMove greedily reassigns nodes to the neighboring community with the
// highest modularity gain until a full sweep makes no move.
func (lg *levelGraph) localMove(rng *rand.Rand, resolution, m float64) {
	n := lg.size()
	commDegree := make(map[int]float64, n)
	for i := range lg.membership {
		commDegree[lg.membership[i]] += lg.degree[i]
	}

	order := rng.Perm(n)

	for {
		moved := 0
		for _, i := range order {
			current := lg.membership[i]

			// weight from i into each adjacent community
			weightTo := map[int]float64{current: 0}
			for j, w := range lg.adj[i] {
				if j == i {
					continue
				}
				weightTo[lg.membership[j]] += w
			}

			commDegree[current] -= lg.degree[i]

			best := current
			bestGain := weightTo[current] - resolution*commDegree[current]*lg.degree[i]/(2*m)
			for c, w := range weightTo {
				if c == current {
					continue
				}
				gain := w - resolution*commDegree[c]*lg.degree[i]/(2*m)
				if gain > bestGain {
					best, bestGain = c, gain
				}
			}

			commDegree[best] += lg.degree[i]
			if best != current {
				lg.membership[i] = best
				moved++
			}
		}
		if moved == 0 {
			break
		}
	}
}

type refinedPartition struct {
	membership []int
	groups     map[int][]int
}

// refine splits every community into its connected components, so
// aggregated communities are always internally connected.
func (lg *levelGraph) refine() refinedPartition {
	n := lg.size()
	refined := make([]int, n)
	for i := range refined {
		refined[i] = -1
	}

	next := 0
	for start := 0; start < n; start++ {
		if refined[start] != -1 {
			continue
		}
		label := next
		next++

		queue := []int{start}
		refined[start] = label
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for v := range lg.adj[u] {
				if v == u || refined[v] != -1 {
					continue
				}
				if lg.membership[v] != lg.membership[u] {
					continue
				}
				refined[v] = label
				queue = append(queue, v)
			}
		}
	}

	groups := make(map[int][]int)
	for i, label := range refined {
		groups[label] = append(groups[label], i)
	}
	return refinedPartition{membership: refined, groups: groups}
}

// aggregate collapses each refined community into a single node of the
// next level.
func (lg *levelGraph) aggregate(refined refinedPartition) *levelGraph {
	labels := make([]int, 0, len(refined.groups))
	for label := range refined.groups {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	compact := make(map[int]int, len(labels))
	for i, label := range labels {
		compact[label] = i
	}

	adj := make([]map[int]float64, len(labels))
	for i := range adj {
		adj[i] = make(map[int]float64)
	}

	for i := range lg.adj {
		ci := compact[refined.membership[i]]
		for j, w := range lg.adj[i] {
			cj := compact[refined.membership[j]]
			if i == j {
				adj[ci][ci] += w
				continue
			}
			if i < j {
				adj[ci][cj] += w
				if ci != cj {
					adj[cj][ci] += w
				}
			}
		}
	}

	return newLevelGraph(adj)
}
