package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/hackmate/internal/filtering"
	"github.com/spigell/hackmate/internal/profiles"
)

func TestSearchScoresOverlap(t *testing.T) {
	t.Parallel()

	pool := []*profiles.Participant{
		{ID: "a", Skills: []string{"react", "node"}},
	}

	results, err := Search(context.Background(), pool, Query{Criteria: filtering.Criteria{Skills: []string{"react"}}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score != 50 {
		t.Fatalf("expected score 50, got %d", results[0].Score)
	}
}

func TestSearchOrdersAndCaps(t *testing.T) {
	t.Parallel()

	pool := []*profiles.Participant{
		{ID: "one", Skills: []string{"go"}},
		{ID: "four", Skills: []string{"go", "sql", "docker", "Kubernetes", "rust"}},
		{ID: "none", Skills: []string{"figma"}},
		{ID: "two", Skills: []string{"go", "sql"}},
		{ID: "also-one", Skills: []string{"docker"}},
		nil,
	}

	q := Query{Criteria: filtering.Criteria{Skills: []string{"go", "sql", "docker", "kubernetes"}}}
	results, err := Search(context.Background(), pool, q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []struct {
		id    string
		score int
	}{
		{"four", 100},
		{"two", 70},
		{"one", 50},
		{"also-one", 50},
	}
	if len(results) != len(expected) {
		t.Fatalf("expected %d results, got %d", len(expected), len(results))
	}
	for i, e := range expected {
		if results[i].Participant.ID != e.id || results[i].Score != e.score {
			t.Fatalf("result %d: expected %s/%d, got %s/%d", i, e.id, e.score, results[i].Participant.ID, results[i].Score)
		}
	}

	q.Limit = 2
	capped, err := Search(context.Background(), pool, q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capped) != 2 || capped[1].Participant.ID != "two" {
		t.Fatalf("unexpected capped results: %+v", capped)
	}
}

func TestSearchWithoutSkillsKeepsBaseScore(t *testing.T) {
	t.Parallel()

	pool := []*profiles.Participant{
		{ID: "a", Skills: []string{"go"}, Region: "EU"},
		{ID: "b", Skills: []string{"go"}, Region: "US"},
	}

	results, err := Search(context.Background(), pool, Query{Criteria: filtering.Criteria{Region: "US"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Participant.ID != "b" || results[0].Score != 30 {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestSearchRejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	_, err := Search(context.Background(), nil, Query{Criteria: filtering.Criteria{Expertise: "Wizard"}}, nil)
	if !errors.Is(err, profiles.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
