package graph

// DetectClusters unions the endpoints of every edge and returns the resulting
// groups with more than one member. Groups are ordered by the position of
// their first node in g.Nodes and keep node order inside.
func DetectClusters(g *Graph) [][]string {
	if g == nil {
		return nil
	}

	set := NewDisjointSet(g.Nodes...)
	for _, e := range g.Edges {
		set.Union(e.From, e.To)
	}

	order := make([]string, 0)
	groups := make(map[string][]string)
	for _, node := range g.Nodes {
		root := set.Find(node)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], node)
	}

	clusters := make([][]string, 0, len(order))
	for _, root := range order {
		if members := groups[root]; len(members) > 1 {
			clusters = append(clusters, members)
		}
	}

	return clusters
}
