package feed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedgraph/internal/core"
	"feedgraph/internal/feed"
	"feedgraph/internal/graph"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *graph.Store
	queries *graph.Queries
	feed    *feed.Service
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{store: graph.New(), now: base}
	require.NoError(t, f.store.Init(t.Context()))

	clock := func() time.Time { return f.now }
	f.queries = &graph.Queries{Store: f.store, Now: clock}
	require.NoError(t, f.queries.Init(t.Context()))

	f.feed = &feed.Service{Store: f.store, Queries: f.queries, Now: clock}
	require.NoError(t, f.feed.Init(t.Context()))
	return f
}

// user accounts are created at their day floor, same as the engine does.
func (f *fixture) user(t *testing.T, handle string, at time.Time) *core.Entity {
	t.Helper()

	user := f.store.CreateEntity(core.KindUser, core.DayOf(at).Time())
	f.store.SetProp(user.ID, core.PropHandle, handle)
	f.store.SetProp(user.ID, core.PropName, handle)
	return user
}

func (f *fixture) post(t *testing.T, author *core.Entity, text string, at time.Time) *core.Entity {
	t.Helper()

	post := f.store.CreateEntity(core.KindPost, at)
	f.store.SetProp(post.ID, core.PropText, text)
	_, err := f.store.CreateEdge(author.ID, core.FamilyPostedOn, post.ID, at, nil)
	require.NoError(t, err)
	return post
}

func (f *fixture) repost(t *testing.T, user *core.Entity, target *core.Entity, at time.Time) *core.Entity {
	t.Helper()

	repost := f.store.CreateEntity(core.KindPost, at)
	_, err := f.store.CreateEdge(repost.ID, core.FamilyReposted, target.ID, at, nil)
	require.NoError(t, err)
	_, err = f.store.CreateEdge(user.ID, core.FamilyRepostedOn, repost.ID, at, nil)
	require.NoError(t, err)
	return repost
}

func (f *fixture) link(t *testing.T, from, to *core.Entity, family core.Family) {
	t.Helper()

	_, err := f.store.CreateEdge(from.ID, family, to.ID, base.AddDate(0, 0, -30), nil)
	require.NoError(t, err)
}

func postIDs(items []core.TimelineItem) []core.EntityID {
	out := make([]core.EntityID, len(items))
	for i, item := range items {
		out[i] = item.PostID
	}
	return out
}
