package tourbus

import "github.com/grailbio/gossamer/graph"

// reconstructPath walks pred backwards from target to source, returning
// the edges in forward (source-to-target) order.
func reconstructPath(pred map[graph.Node]graph.Edge, g *graph.Graph, target, source graph.Node) []graph.Edge {
	var edges []graph.Edge
	n := target
	for !n.Equal(source) {
		e, ok := pred[n]
		if !ok {
			break
		}
		edges = append(edges, e)
		n = g.From(e)
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}

// pathSeq returns the packed base sequence (values 0-3) spanned by a
// chain of edges that overlap by k bases each, starting from the first
// edge's source node.
func pathSeq(g *graph.Graph, edges []graph.Edge) []byte {
	if len(edges) == 0 {
		return nil
	}
	seq := g.NodeSeq(g.From(edges[0]), nil)
	for _, e := range edges {
		seq = append(seq, byte(e.Value().Lo&3))
	}
	return seq
}

// meanMultiplicity returns the mean observed count over a path's edges.
func meanMultiplicity(g *graph.Graph, edges []graph.Edge) float64 {
	if len(edges) == 0 {
		return 0
	}
	var sum uint64
	for _, e := range edges {
		sum += uint64(g.Multiplicity(g.Rank(e)))
	}
	return float64(sum) / float64(len(edges))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// considerBubble checks whether two candidate paths between the same
// pair of endpoints are similar enough in length and sequence to be a
// bubble and, if so, marks the weaker-supported path's edges (and,
// for symmetric graphs, their reverse complements) for deletion.
func considerBubble(g *graph.Graph, p Params, pathA, pathB []graph.Edge, del *deletionSet) {
	if absInt(len(pathA)-len(pathB)) > p.MaxEdits {
		return
	}
	seqA := pathSeq(g, pathA)
	seqB := pathSeq(g, pathB)

	ed := editDistance(seqA, seqB, p.MaxEdits)
	if ed > p.MaxEdits {
		return
	}
	longest := maxInt(len(seqA), len(seqB))
	if float64(ed) > p.MaxRelativeErrors*float64(longest) {
		return
	}

	meanA := meanMultiplicity(g, pathA)
	meanB := meanMultiplicity(g, pathB)
	weak, strongMean, weakMean := pathB, meanA, meanB
	if meanB > meanA {
		weak, strongMean, weakMean = pathA, meanB, meanA
	}
	if weakMean <= p.AbsCoverageCutoff || weakMean <= p.RelCoverageCutoff*strongMean {
		del.markPath(g, weak, !g.Asymmetric())
	}
}

// bfsFromSource runs a bounded forward BFS from s, looking for bubbles:
// pairs of short paths between s and some downstream node n, reached
// via distinct predecessor edges. Every bubble found is scored and, if
// the weaker path is too poorly supported, its edges are marked for
// deletion in del.
func bfsFromSource(g *graph.Graph, s graph.Node, p Params, del *deletionSet) {
	pred := map[graph.Node]graph.Edge{}
	length := map[graph.Node]int{s: 0}
	visited := map[graph.Node]bool{s: true}
	queue := []graph.Node{s}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if length[n] >= p.MaxLen {
			continue
		}

		begin, end := g.OutEdgeRanks(n)
		for r := begin; r < end; r++ {
			e := g.Select(r)
			to := g.To(e)

			if !visited[to] {
				visited[to] = true
				pred[to] = e
				length[to] = length[n] + 1
				if length[to] < p.MaxLen {
					queue = append(queue, to)
				}
				continue
			}

			existing, ok := pred[to]
			if ok && existing.Equal(e) {
				continue
			}

			pathA := reconstructPath(pred, g, to, s)
			pathB := append(reconstructPath(pred, g, n, s), e)
			considerBubble(g, p, pathA, pathB, del)
		}
	}
}
