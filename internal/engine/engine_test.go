package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedgraph/internal/commerce"
	"feedgraph/internal/core"
	"feedgraph/internal/engine"
	"feedgraph/internal/events"
	"feedgraph/internal/extract"
	"feedgraph/internal/feed"
	"feedgraph/internal/graph"
	"feedgraph/internal/ledger"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *graph.Store
	engine *engine.Engine
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{store: graph.New(), now: base}
	require.NoError(t, f.store.Init(t.Context()))
	clock := func() time.Time { return f.now }

	queries := &graph.Queries{Store: f.store, Now: clock}
	require.NoError(t, queries.Init(t.Context()))

	feedSvc := &feed.Service{Store: f.store, Queries: queries, Now: clock}
	require.NoError(t, feedSvc.Init(t.Context()))

	ledgerSvc := &ledger.Service{Store: f.store, Queries: queries, Now: clock}
	require.NoError(t, ledgerSvc.Init(t.Context()))

	commerceSvc := &commerce.Service{Store: f.store, Queries: queries, Now: clock}
	require.NoError(t, commerceSvc.Init(t.Context()))

	f.engine = &engine.Engine{
		Store:     f.store,
		Queries:   queries,
		Feed:      feedSvc,
		Ledger:    ledgerSvc,
		Commerce:  commerceSvc,
		Annotator: &extract.Annotator{Store: f.store},
		Events:    events.Noop{},
		Now:       clock,
	}
	require.NoError(t, f.engine.Init(t.Context()))
	return f
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	profile, err := f.engine.CreateUser("alice", "Alice", "av1", 10, 5)
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Handle)
	require.Equal(t, "Alice", profile.Name)

	user, ok := f.store.Entity(profile.ID)
	require.True(t, ok)
	// Creation is day-truncated: the account's day-walk floor.
	require.Equal(t, core.DayOf(base).Time(), user.CreatedAt)
	require.EqualValues(t, 10, core.IntProp(f.store, user.ID, core.PropGold))
	require.EqualValues(t, 5, core.IntProp(f.store, user.ID, core.PropSilver))

	_, err = f.engine.CreateUser("alice", "Other", "", 0, 0)
	require.ErrorIs(t, err, core.ErrConflict)

	_, err = f.engine.CreateUser("", "Anon", "", 0, 0)
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestFollowAndMute(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice, err := f.engine.CreateUser("alice", "", "", 0, 0)
	require.NoError(t, err)
	bob, err := f.engine.CreateUser("bob", "", "", 0, 0)
	require.NoError(t, err)

	require.ErrorIs(t, f.engine.Follow(alice.ID, alice.ID), core.ErrSelfTarget)
	require.NoError(t, f.engine.Follow(alice.ID, bob.ID))
	require.ErrorIs(t, f.engine.Follow(alice.ID, bob.ID), core.ErrAlreadyFollows)

	require.NoError(t, f.engine.Mute(alice.ID, bob.ID))
	require.ErrorIs(t, f.engine.Mute(alice.ID, bob.ID), core.ErrAlreadyMutes)

	require.ErrorIs(t, f.engine.Follow(alice.ID, "nope"), core.ErrNotFound)
}

func TestCreatePostExtracts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice, err := f.engine.CreateUser("alice", "", "", 0, 0)
	require.NoError(t, err)
	bob, err := f.engine.CreateUser("bob", "", "", 0, 0)
	require.NoError(t, err)
	_, err = f.engine.CreateProduct(alice.ID, "lamp", "Desk Lamp", 500)
	require.NoError(t, err)

	result, err := f.engine.CreatePost(alice.ID, "@bob behold the $lamp #woodwork")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, result.Mentions)
	require.Equal(t, []string{"woodwork"}, result.Tags)
	require.Equal(t, "lamp", result.Promotes)

	require.Equal(t, 1, f.store.Degree(bob.ID, core.FamilyMentionedOn, core.DayOf(f.now), core.In))

	post, ok := f.store.Entity(result.PostID)
	require.True(t, ok)
	require.Equal(t, "@bob behold the $lamp #woodwork", core.StrProp(f.store, post.ID, core.PropText))
}

func TestEditPost(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice, err := f.engine.CreateUser("alice", "", "", 0, 0)
	require.NoError(t, err)
	bob, err := f.engine.CreateUser("bob", "", "", 0, 0)
	require.NoError(t, err)

	created, err := f.engine.CreatePost(alice.ID, "@bob hello")
	require.NoError(t, err)

	_, err = f.engine.EditPost(bob.ID, created.PostID, "hijack")
	require.ErrorIs(t, err, core.ErrConflict)

	edited, err := f.engine.EditPost(alice.ID, created.PostID, "no mentions anymore #tagged")
	require.NoError(t, err)
	require.Empty(t, edited.Mentions)
	require.Equal(t, []string{"tagged"}, edited.Tags)
	require.Equal(t, 0, f.store.Degree(bob.ID, core.FamilyMentionedOn, core.DayOf(f.now), core.In))
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice, err := f.engine.CreateUser("alice", "", "", 0, 0)
	require.NoError(t, err)

	product, err := f.engine.CreateProduct(alice.ID, "lamp", "Desk Lamp", 500)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.Degree(product.ID, core.FamilySells, core.StaticDay, core.In))

	_, err = f.engine.CreateProduct(alice.ID, "lamp", "Again", 100)
	require.ErrorIs(t, err, core.ErrConflict)
	_, err = f.engine.CreateProduct(alice.ID, "", "Nameless", 100)
	require.ErrorIs(t, err, core.ErrValidation)
	_, err = f.engine.CreateProduct(alice.ID, "free", "Free", 0)
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestReply(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice, err := f.engine.CreateUser("alice", "", "", 0, 0)
	require.NoError(t, err)
	bob, err := f.engine.CreateUser("bob", "", "", 0, 0)
	require.NoError(t, err)

	post, err := f.engine.CreatePost(alice.ID, "original")
	require.NoError(t, err)

	reply, err := f.engine.Reply(bob.ID, post.PostID, "nice one")
	require.NoError(t, err)
	require.Equal(t, 1, f.store.Degree(post.PostID, core.FamilyRepliedTo, core.StaticDay, core.In))
	require.Equal(t, 1, f.store.Degree(reply.PostID, core.FamilyRepliedTo, core.StaticDay, core.Out))

	_, err = f.engine.Reply(bob.ID, "nope", "into the void")
	require.ErrorIs(t, err, core.ErrNotFound)
}

type eventRecorder struct {
	verbs    []string
	payloads []any
}

func (r *eventRecorder) Publish(_ context.Context, verb string, _ core.EntityID, payload any) error {
	r.verbs = append(r.verbs, verb)
	r.payloads = append(r.payloads, payload)
	return nil
}

// A reply announces itself under its own verb, carrying the post it answers.
func TestReplyPublishesReplyVerb(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	recorder := &eventRecorder{}
	f.engine.Events = recorder

	alice, err := f.engine.CreateUser("alice", "", "", 0, 0)
	require.NoError(t, err)
	bob, err := f.engine.CreateUser("bob", "", "", 0, 0)
	require.NoError(t, err)

	post, err := f.engine.CreatePost(alice.ID, "original")
	require.NoError(t, err)
	reply, err := f.engine.Reply(bob.ID, post.PostID, "nice one")
	require.NoError(t, err)

	require.Equal(t, []string{"post", "reply"}, recorder.verbs)
	published, ok := recorder.payloads[1].(*core.PostResult)
	require.True(t, ok)
	require.Equal(t, reply.PostID, published.PostID)
	require.Equal(t, post.PostID, published.ReplyTo)
}

// The full path through the facade: follow, post, like, repost, timeline.
func TestEngineEndToEnd(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice, err := f.engine.CreateUser("alice", "", "", 10, 10)
	require.NoError(t, err)
	bob, err := f.engine.CreateUser("bob", "", "", 10, 10)
	require.NoError(t, err)
	carol, err := f.engine.CreateUser("carol", "", "", 10, 10)
	require.NoError(t, err)

	require.NoError(t, f.engine.Follow(alice.ID, bob.ID))

	post, err := f.engine.CreatePost(carol.ID, "hello world")
	require.NoError(t, err)
	f.now = f.now.Add(time.Hour)
	_, err = f.engine.Repost(bob.ID, post.PostID)
	require.NoError(t, err)
	_, err = f.engine.Like(alice.ID, post.PostID)
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	items, err := f.engine.Timeline(alice.ID, 10, -1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, post.PostID, items[0].PostID)
	require.Equal(t, "carol", items[0].Author.Handle)
	require.Equal(t, "bob", items[0].Reposter.Handle)

	likes, err := f.engine.LikesOf(alice.ID, 10, -1, "")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	require.Equal(t, post.PostID, likes[0].PostID)
}
