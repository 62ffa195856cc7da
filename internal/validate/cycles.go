// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/skos-engine/pkg/types"
)

// checkCycles reports one finding per strongly connected component of the
// broader graph with two or more members. Self loops are left to the
// reflexive rule.
func checkCycles(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT s.id, s.uri, t.id, t.uri FROM relations r
		 JOIN concepts s ON s.id = r.source_id
		 JOIN concepts t ON t.id = r.target_id
		 WHERE r.type = 'broader' AND r.source_id <> r.target_id
		 ORDER BY s.uri, t.uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	g := newGraph()
	for rows.Next() {
		var sid, suri, tid, turi string
		if err := rows.Scan(&sid, &suri, &tid, &turi); err != nil {
			return nil, err
		}
		g.addEdge(g.node(sid, suri), g.node(tid, turi))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []types.Finding
	for _, comp := range g.components() {
		if len(comp) < 2 {
			continue
		}
		uris := make([]string, len(comp))
		for i, n := range comp {
			uris[i] = g.uris[n]
		}
		sort.Strings(uris)
		out = append(out, types.Finding{
			ConceptID:   g.ids[g.index[uris[0]]],
			ConceptURI:  uris[0],
			Members:     uris,
			Description: fmt.Sprintf("broader cycle among %d concepts: %s", len(uris), strings.Join(uris, ", ")),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConceptURI < out[j].ConceptURI })
	return out, nil
}

// graph is a dense adjacency list keyed by node index.
type graph struct {
	index map[string]int // uri -> node
	ids   []string
	uris  []string
	adj   [][]int
}

func newGraph() *graph {
	return &graph{index: make(map[string]int)}
}

func (g *graph) node(id, uri string) int {
	if n, ok := g.index[uri]; ok {
		return n
	}
	n := len(g.uris)
	g.index[uri] = n
	g.ids = append(g.ids, id)
	g.uris = append(g.uris, uri)
	g.adj = append(g.adj, nil)
	return n
}

func (g *graph) addEdge(from, to int) {
	g.adj[from] = append(g.adj[from], to)
}

// components returns the strongly connected components using Tarjan's
// algorithm. The traversal keeps an explicit stack so deep hierarchies do
// not grow the goroutine stack per level.
func (g *graph) components() [][]int {
	const unvisited = -1

	n := len(g.uris)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	type frame struct {
		node, edge int
	}

	var (
		next  int
		stack []int
		comps [][]int
	)

	for root := 0; root < n; root++ {
		if index[root] != unvisited {
			continue
		}

		call := []frame{{node: root}}
		index[root], low[root] = next, next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(call) > 0 {
			f := &call[len(call)-1]
			v := f.node

			if f.edge < len(g.adj[v]) {
				w := g.adj[v][f.edge]
				f.edge++
				switch {
				case index[w] == unvisited:
					index[w], low[w] = next, next
					next++
					stack = append(stack, w)
					onStack[w] = true
					call = append(call, frame{node: w})
				case onStack[w]:
					low[v] = min(low[v], index[w])
				}
				continue
			}

			if low[v] == index[v] {
				var comp []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				comps = append(comps, comp)
			}

			call = call[:len(call)-1]
			if len(call) > 0 {
				parent := call[len(call)-1].node
				low[parent] = min(low[parent], low[v])
			}
		}
	}
	return comps
}
