// Package matching ranks team recommendations and scores search candidates.
package matching

import (
	"sort"

	"github.com/spigell/hackmate/internal/graph"
	"github.com/spigell/hackmate/internal/profiles"
)

const (
	DefaultMaxResults = 10
	// suggestedSkillsPerMember is the unique skill count per member a cluster
	// needs to be flagged as suggested.
	suggestedSkillsPerMember = 3
)

// Cluster is a recommended team: a connected group of compatible participants.
type Cluster struct {
	Members          []string `json:"members"`
	Size             int      `json:"size"`
	UniqueSkillCount int      `json:"uniqueSkillCount"`
	Suggested        bool     `json:"suggested"`
}

type recommendOptions struct {
	threshold  int
	maxResults int
}

// Option configures RecommendTeams.
type Option func(*recommendOptions)

// WithThreshold sets the minimum skill overlap for a compatibility edge.
func WithThreshold(threshold int) Option {
	return func(o *recommendOptions) {
		if threshold > 0 {
			o.threshold = threshold
		}
	}
}

// WithMaxResults caps the number of returned clusters.
func WithMaxResults(maxResults int) Option {
	return func(o *recommendOptions) {
		if maxResults > 0 {
			o.maxResults = maxResults
		}
	}
}

// RecommendTeams clusters participants over the compatibility graph and ranks
// the clusters by the number of distinct skills they cover. Ties keep the
// detection order.
func RecommendTeams(participants []*profiles.Participant, opts ...Option) []Cluster {
	o := recommendOptions{
		threshold:  graph.DefaultThreshold,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(&o)
	}

	byID := make(map[string]*profiles.Participant, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	g := graph.Build(participants, o.threshold)
	groups := graph.DetectClusters(g)

	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		unique := make(map[string]struct{})
		for _, id := range members {
			for skill := range byID[id].SkillSet() {
				unique[skill] = struct{}{}
			}
		}

		clusters = append(clusters, Cluster{
			Members:          members,
			Size:             len(members),
			UniqueSkillCount: len(unique),
			Suggested:        len(unique) >= len(members)*suggestedSkillsPerMember,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].UniqueSkillCount > clusters[j].UniqueSkillCount
	})

	if len(clusters) > o.maxResults {
		clusters = clusters[:o.maxResults]
	}

	return clusters
}
