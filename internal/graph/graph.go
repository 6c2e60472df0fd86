// Package graph builds the skill compatibility graph between participants
// and detects connected communities on it.
package graph

import (
	"github.com/spigell/hackmate/internal/profiles"
)

// DefaultThreshold is the minimum skill overlap for two participants to be linked.
const DefaultThreshold = 2

// Edge links two participants sharing at least the threshold of skills.
// Weight is the size of the skill intersection.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// Graph is undirected. Every unordered pair appears at most once in Edges.
type Graph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// Build compares every pair of participants and links the ones whose skill
// overlap reaches threshold. Non-positive thresholds fall back to DefaultThreshold.
// Nil entries and repeated ids are skipped; the first occurrence wins.
func Build(participants []*profiles.Participant, threshold int) *Graph {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	nodes := make([]*profiles.Participant, 0, len(participants))
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		nodes = append(nodes, p)
	}

	skills := make([]map[string]struct{}, len(nodes))
	for i, p := range nodes {
		skills[i] = p.SkillSet()
	}

	g := &Graph{
		Nodes: make([]string, 0, len(nodes)),
		Edges: make([]Edge, 0),
	}
	for _, p := range nodes {
		g.Nodes = append(g.Nodes, p.ID)
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			overlap := profiles.SkillOverlap(skills[i], skills[j])
			if overlap < threshold {
				continue
			}
			g.Edges = append(g.Edges, Edge{From: nodes[i].ID, To: nodes[j].ID, Weight: overlap})
		}
	}

	return g
}
