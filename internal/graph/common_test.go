package graph_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *graph.Store {
	t.Helper()

	s := graph.New()
	require.NoError(t, s.Init(t.Context()))
	return s
}

func newUser(t *testing.T, s *graph.Store, handle string, at time.Time) *core.Entity {
	t.Helper()

	user := s.CreateEntity(core.KindUser, at)
	s.SetProp(user.ID, core.PropHandle, handle)
	return user
}

func newPost(t *testing.T, s *graph.Store, author *core.Entity, at time.Time) *core.Entity {
	t.Helper()

	post := s.CreateEntity(core.KindPost, at)
	_, err := s.CreateEdge(author.ID, core.FamilyPostedOn, post.ID, at, nil)
	require.NoError(t, err)
	return post
}

// newRepost chains a repost post onto target authored by user at the given
// instant, the same two edges the commerce service writes.
func newRepost(t *testing.T, s *graph.Store, user *core.Entity, target *core.Entity, at time.Time) *core.Entity {
	t.Helper()

	repost := s.CreateEntity(core.KindPost, at)
	_, err := s.CreateEdge(repost.ID, core.FamilyReposted, target.ID, at, nil)
	require.NoError(t, err)
	_, err = s.CreateEdge(user.ID, core.FamilyRepostedOn, repost.ID, at, nil)
	require.NoError(t, err)
	return repost
}

func newQueries(t *testing.T, s *graph.Store, threshold int, now time.Time) *graph.Queries {
	t.Helper()

	q := &graph.Queries{
		Store:          s,
		Now:            func() time.Time { return now },
		ViralThreshold: threshold,
	}
	require.NoError(t, q.Init(t.Context()))
	return q
}
