// Package graph holds the undirected adjacency used to find resonance clusters.
package graph

import "sort"

// #region types
// Edge is a weighted undirected link between two node ids.
type Edge struct {
	SourceID string
	TargetID string
	Weight   float64
}

// Graph is an undirected graph over string ids. Nodes may exist without edges.
type Graph struct {
	adj map[string]map[string]float64
}

// #endregion types

// #region constructor
// New returns a graph containing the given nodes and no edges.
func New(nodes ...string) *Graph {
	g := &Graph{adj: make(map[string]map[string]float64, len(nodes))}
	for _, n := range nodes {
		g.AddNode(n)
	}
	return g
}

// #endregion constructor

// #region mutate
// AddNode inserts id if it is not already present.
func (g *Graph) AddNode(id string) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[string]float64)
	}
}

// AddEdge links a and b in both directions, adding missing nodes.
// Self loops are ignored.
func (g *Graph) AddEdge(a, b string, weight float64) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.adj[a][b] = weight
	g.adj[b][a] = weight
}

// #endregion mutate

// #region query
// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.adj)
}

// Nodes returns all node ids in sorted order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.adj))
	for id := range g.adj {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the edges leaving id, ordered by weight descending then id.
func (g *Graph) Neighbors(id string) []Edge {
	nbrs := g.adj[id]
	edges := make([]Edge, 0, len(nbrs))
	for to, w := range nbrs {
		edges = append(edges, Edge{SourceID: id, TargetID: to, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Weight != edges[j].Weight {
			return edges[i].Weight > edges[j].Weight
		}
		return edges[i].TargetID < edges[j].TargetID
	})
	return edges
}

// Degree is the number of distinct neighbors of id.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// #endregion query

// #region components
// Components returns the connected components with at least minSize members.
// Traversal uses an explicit stack, so depth is bounded only by memory.
// Components are ordered by their smallest member id; members are sorted.
func (g *Graph) Components(minSize int) [][]string {
	visited := make(map[string]bool, len(g.adj))
	var out [][]string

	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		visited[start] = true
		stack := []string{start}
		var members []string

		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, node)

			for next := range g.adj[node] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}

		if len(members) >= minSize {
			sort.Strings(members)
			out = append(out, members)
		}
	}
	return out
}

// #endregion components

// #region walk
// Walk performs a breadth-first walk from entryID, following edges with
// weight >= minWeight up to maxDepth hops. Returns ids in visit order.
func (g *Graph) Walk(entryID string, maxDepth int, minWeight float64) []string {
	if _, ok := g.adj[entryID]; !ok {
		return nil
	}
	type queueItem struct {
		id    string
		depth int
	}
	visited := map[string]bool{entryID: true}
	order := []string{entryID}
	queue := []queueItem{{entryID, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxDepth {
			continue
		}
		for _, e := range g.Neighbors(current.id) {
			if e.Weight < minWeight || visited[e.TargetID] {
				continue
			}
			visited[e.TargetID] = true
			order = append(order, e.TargetID)
			queue = append(queue, queueItem{e.TargetID, current.depth + 1})
		}
	}
	return order
}

// #endregion walk
