package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/ai"
	"github.com/spigell/hackmate/internal/filtering"
	"github.com/spigell/hackmate/internal/matching"
	"github.com/spigell/hackmate/internal/profiles"
	"github.com/spigell/hackmate/internal/roles"
)

type countingRecorder struct {
	clusters, searches, results, roles int
}

func (r *countingRecorder) ObserveRecommend(clusters int) { r.clusters += clusters }
func (r *countingRecorder) ObserveSearch(results int)     { r.searches++; r.results += results }
func (r *countingRecorder) ObserveRoles()                 { r.roles++ }

type failingStore struct{}

func (failingStore) List(context.Context) (*profiles.Participants, error) {
	return nil, errors.New("disk on fire")
}

func participants() []*profiles.Participant {
	return []*profiles.Participant{
		{ID: "a", Skills: []string{"react", "node", "css"}, Expertise: profiles.Advanced, Region: "EU"},
		{ID: "b", Skills: []string{"react", "node", "python"}, Expertise: profiles.Intermediate},
		{ID: "c", Skills: []string{"python", "pytorch"}, Expertise: profiles.Beginner},
		{ID: "d", Skills: []string{"figma", "design"}, Expertise: profiles.Intermediate, PreferredRole: "designer"},
	}
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *countingRecorder) {
	t.Helper()

	recorder := &countingRecorder{}
	opts = append([]Option{WithRecorder(recorder)}, opts...)
	e, err := New(profiles.NewMemoryStore(participants()...), nil, nil, zap.NewNop(), opts...)
	require.NoError(t, err)
	return e, recorder
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	e, recorder := newEngine(t)
	clusters, err := e.Recommend(context.Background())
	require.NoError(t, err)
	require.Equal(t, []matching.Cluster{{Members: []string{"a", "b"}, Size: 2, UniqueSkillCount: 4, Suggested: false}}, clusters)
	require.Equal(t, 1, recorder.clusters)

	e, _ = newEngine(t, WithPoolLimit(1))
	clusters, err = e.Recommend(context.Background())
	require.NoError(t, err)
	require.Empty(t, clusters)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	e, recorder := newEngine(t, WithSearchLimit(1))
	results, err := e.Search(context.Background(), matching.Query{Criteria: filtering.Criteria{Skills: []string{"react"}}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a", results[0].Participant.ID)
	require.Equal(t, 50, results[0].Score)
	require.Equal(t, 1, recorder.searches)
	require.Equal(t, 1, recorder.results)

	_, err = e.Search(context.Background(), matching.Query{Criteria: filtering.Criteria{Skills: []string{"react"}}, Limit: 100})
	require.NoError(t, err)
}

func TestAutoMatchFallsBackWithoutProvider(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t)
	resp, err := e.AutoMatch(context.Background(), AutoMatchRequest{UserID: " a "})
	require.NoError(t, err)
	require.Equal(t, "a", resp.UserID)
	require.Equal(t, "none", resp.Provider)
	require.Equal(t, []ai.MatchResult{
		{ID: "b", Score: 80, Reason: ai.FallbackReason, RoleSuggestion: ai.DefaultRole},
		{ID: "c", Score: 60, Reason: ai.FallbackReason, RoleSuggestion: ai.DefaultRole},
		{ID: "d", Score: 60, Reason: ai.FallbackReason, RoleSuggestion: "designer"},
	}, resp.Matches)
}

func TestAutoMatchWithProfileAndPoolLimit(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, WithPoolLimit(2))
	resp, err := e.AutoMatch(context.Background(), AutoMatchRequest{
		User: &profiles.Participant{ID: "d", Skills: []string{" Python "}, Expertise: "advanced"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	require.Equal(t, "a", resp.Matches[0].ID)
	require.Equal(t, "b", resp.Matches[1].ID)
	require.Equal(t, 70, resp.Matches[1].Score)
}

func TestAutoMatchErrors(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t)

	_, err := e.AutoMatch(context.Background(), AutoMatchRequest{})
	require.ErrorIs(t, err, profiles.ErrInvalidInput)

	_, err = e.AutoMatch(context.Background(), AutoMatchRequest{UserID: "ghost"})
	require.ErrorIs(t, err, profiles.ErrNotFound)

	_, err = e.AutoMatch(context.Background(), AutoMatchRequest{User: &profiles.Participant{Skills: []string{"go"}}})
	require.ErrorIs(t, err, profiles.ErrInvalidInput)
}

func TestAssignRoles(t *testing.T) {
	t.Parallel()

	e, recorder := newEngine(t)
	assignments, err := e.AssignRoles(context.Background(), RolesRequest{
		MemberIDs: []string{"b", "a"},
		Members:   []*profiles.Participant{{ID: "new", Skills: []string{"docker", "kubernetes"}}},
	})
	require.NoError(t, err)
	require.Len(t, assignments, 3)

	require.Equal(t, "b", assignments[0].ID)
	require.False(t, assignments[0].IsLeader())
	require.Equal(t, "a", assignments[1].ID)
	require.True(t, assignments[1].IsLeader())
	require.Equal(t, "new", assignments[2].ID)
	require.Equal(t, []string{roles.DevOps, roles.Backend}, assignments[2].Roles)
	require.Equal(t, 1, recorder.roles)
}

func TestAssignRolesErrors(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t)

	_, err := e.AssignRoles(context.Background(), RolesRequest{MemberIDs: []string{"a", "ghost"}})
	require.ErrorIs(t, err, profiles.ErrNotFound)

	_, err = e.AssignRoles(context.Background(), RolesRequest{
		MemberIDs: []string{"a"},
		Members:   []*profiles.Participant{{ID: "a", Skills: []string{"go"}}},
	})
	require.ErrorIs(t, err, profiles.ErrInvalidInput)

	assignments, err := e.AssignRoles(context.Background(), RolesRequest{})
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestStoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	e, err := New(failingStore{}, nil, nil, nil)
	require.NoError(t, err)

	_, err = e.Recommend(context.Background())
	require.ErrorContains(t, err, "disk on fire")
	_, err = e.Search(context.Background(), matching.Query{})
	require.ErrorContains(t, err, "list participants")

	_, err = New(nil, nil, nil, nil)
	require.Error(t, err)
}
