package graph_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

func TestAuthorOf(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	q := newQueries(t, s, 0, base)

	alice := newUser(t, s, "alice", base)
	bob := newUser(t, s, "bob", base)

	post := newPost(t, s, alice, base)
	author, err := q.AuthorOf(post)
	require.NoError(t, err)
	require.Equal(t, alice.ID, author)

	repost := newRepost(t, s, bob, post, base.Add(time.Hour))
	author, err = q.AuthorOf(repost)
	require.NoError(t, err)
	require.Equal(t, bob.ID, author)

	orphan := s.CreateEntity(core.KindPost, base)
	_, err = q.AuthorOf(orphan)
	require.ErrorIs(t, err, core.ErrInvariant)
}

func TestOriginalOf(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	q := newQueries(t, s, 0, base)

	alice := newUser(t, s, "alice", base)
	bob := newUser(t, s, "bob", base)
	carol := newUser(t, s, "carol", base)

	post := newPost(t, s, alice, base)
	r1 := newRepost(t, s, bob, post, base.Add(time.Hour))
	r2 := newRepost(t, s, carol, r1, base.Add(2*time.Hour))

	original, chain, err := q.OriginalOf(post)
	require.NoError(t, err)
	require.Equal(t, post.ID, original.ID)
	require.Empty(t, chain)

	original, chain, err = q.OriginalOf(r2)
	require.NoError(t, err)
	require.Equal(t, post.ID, original.ID)
	require.Equal(t, []core.EntityID{r2.ID, r1.ID}, ids(chain))
}

func TestOriginalOfCycle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	q := newQueries(t, s, 0, base)

	a := s.CreateEntity(core.KindPost, base)
	b := s.CreateEntity(core.KindPost, base)
	_, err := s.CreateEdge(a.ID, core.FamilyReposted, b.ID, base, nil)
	require.NoError(t, err)
	_, err = s.CreateEdge(b.ID, core.FamilyReposted, a.ID, base, nil)
	require.NoError(t, err)

	_, _, err = q.OriginalOf(a)
	require.ErrorIs(t, err, core.ErrInvariant)
}

// Both membership strategies must agree: the tree walk used for ordinary
// posts and the day walk used past the viral threshold.
func TestHasRepostedStrategiesAgree(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	now := base.AddDate(0, 0, 3)
	treeWalk := newQueries(t, s, 1_000_000, now)
	dayWalk := newQueries(t, s, 1, now)

	alice := newUser(t, s, "alice", base)
	bob := newUser(t, s, "bob", base)
	carol := newUser(t, s, "carol", base)
	dave := newUser(t, s, "dave", base)

	post := newPost(t, s, alice, base)
	r1 := newRepost(t, s, bob, post, base.AddDate(0, 0, 1))
	newRepost(t, s, carol, r1, base.AddDate(0, 0, 2))

	for _, user := range []*core.Entity{bob, carol} {
		got, err := treeWalk.HasReposted(user.ID, post)
		require.NoError(t, err)
		require.True(t, got)

		got, err = dayWalk.HasReposted(user.ID, post)
		require.NoError(t, err)
		require.True(t, got)
	}

	for _, q := range []*graph.Queries{treeWalk, dayWalk} {
		got, err := q.HasReposted(dave.ID, post)
		require.NoError(t, err)
		require.False(t, got)
	}
}

// A repost of an unrelated post on the same day must not count as membership.
func TestHasRepostedDayWalkDistinguishesOriginals(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	q := newQueries(t, s, 1, base.AddDate(0, 0, 1))

	alice := newUser(t, s, "alice", base)
	bob := newUser(t, s, "bob", base)
	carol := newUser(t, s, "carol", base)

	p1 := newPost(t, s, alice, base)
	p2 := newPost(t, s, carol, base)
	newRepost(t, s, bob, p2, base.Add(time.Hour))

	got, err := q.HasReposted(bob.ID, p1)
	require.NoError(t, err)
	require.False(t, got)

	got, err = q.HasReposted(bob.ID, p2)
	require.NoError(t, err)
	require.True(t, got)
}

func TestLikeAndReplyCounts(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	q := newQueries(t, s, 0, base)

	alice := newUser(t, s, "alice", base)
	bob := newUser(t, s, "bob", base)
	post := newPost(t, s, alice, base)

	_, err := s.CreateEdge(bob.ID, core.FamilyLikes, post.ID, base, nil)
	require.NoError(t, err)

	reply := newPost(t, s, bob, base)
	_, err = s.CreateEdge(reply.ID, core.FamilyRepliedTo, post.ID, base, nil)
	require.NoError(t, err)

	require.Equal(t, 1, q.LikeCount(post.ID))
	require.Equal(t, 1, q.ReplyCount(post.ID))
	require.Equal(t, 0, q.LikeCount(reply.ID))
}

func ids(entities []*core.Entity) []core.EntityID {
	out := make([]core.EntityID, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}
