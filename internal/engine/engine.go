package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedgraph/internal/commerce"
	"feedgraph/internal/core"
	"feedgraph/internal/extract"
	"feedgraph/internal/feed"
	"feedgraph/internal/graph"
	"feedgraph/internal/ledger"
)

// Engine is the operation facade collaborators talk to. It owns the routine
// CRUD (users, products, posts, follow/mute) and delegates the algorithmic
// operations to the feed, ledger and commerce services, publishing an
// engagement event after each successful write.
type Engine struct {
	Logger    *slog.Logger
	Store     *graph.Store
	Queries   *graph.Queries
	Feed      *feed.Service
	Ledger    *ledger.Service
	Commerce  *commerce.Service
	Annotator *extract.Annotator
	Events    core.EventPublisher

	Now core.Clock
}

var _ core.Engine = (*Engine)(nil)

func (e *Engine) Init(_ context.Context) error {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	e.Logger = e.Logger.With("component", "engine.Engine")
	if e.Now == nil {
		e.Now = time.Now
	}
	return nil
}

// CreateUser registers a user with seed balances. Seeding is the only path by
// which silver may start negative.
func (e *Engine) CreateUser(handle, name, avatar string, gold, silver int64) (*core.Profile, error) {
	if handle == "" {
		return nil, fmt.Errorf("%w: empty handle", core.ErrValidation)
	}
	if _, ok := e.Store.FindEntity(core.KindUser, core.PropHandle, handle); ok {
		return nil, fmt.Errorf("%w: handle %q taken", core.ErrConflict, handle)
	}

	// A user's creation instant is day-truncated: it is the floor of every
	// day walk that targets this account.
	user := e.Store.CreateEntity(core.KindUser, core.DayOf(e.Now()).Time())
	e.Store.SetProp(user.ID, core.PropHandle, handle)
	e.Store.SetProp(user.ID, core.PropName, name)
	e.Store.SetProp(user.ID, core.PropAvatar, avatar)
	e.Store.SetProp(user.ID, core.PropGold, gold)
	e.Store.SetProp(user.ID, core.PropSilver, silver)

	profile := core.ProfileOf(e.Store, user.ID)
	return &profile, nil
}

func (e *Engine) CreateProduct(seller core.EntityID, key, name string, price int64) (*core.Entity, error) {
	if _, ok := e.Store.Entity(seller); !ok {
		return nil, fmt.Errorf("%w: seller %s", core.ErrNotFound, seller)
	}
	if key == "" || price <= 0 {
		return nil, fmt.Errorf("%w: product needs a key and a positive price", core.ErrValidation)
	}
	if _, ok := e.Store.FindEntity(core.KindProduct, core.PropKey, key); ok {
		return nil, fmt.Errorf("%w: product key %q taken", core.ErrConflict, key)
	}

	product := e.Store.CreateEntity(core.KindProduct, e.Now())
	e.Store.SetProp(product.ID, core.PropKey, key)
	e.Store.SetProp(product.ID, core.PropName, name)
	e.Store.SetProp(product.ID, core.PropPrice, price)
	if _, err := e.Store.CreateEdge(seller, core.FamilySells, product.ID, product.CreatedAt, nil); err != nil {
		return nil, err
	}
	return product, nil
}

// CreatePost writes the post, its author day edge and its extraction edges.
func (e *Engine) CreatePost(author core.EntityID, text string) (*core.PostResult, error) {
	result, err := e.createPost(author, text)
	if err != nil {
		return nil, err
	}
	e.publish("post", author, result)
	return result, nil
}

func (e *Engine) createPost(author core.EntityID, text string) (*core.PostResult, error) {
	if _, ok := e.Store.Entity(author); !ok {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, author)
	}

	now := e.Now()
	post := e.Store.CreateEntity(core.KindPost, now)
	e.Store.SetProp(post.ID, core.PropText, text)
	if _, err := e.Store.CreateEdge(author, core.FamilyPostedOn, post.ID, now, nil); err != nil {
		return nil, err
	}

	annotations, err := e.Annotator.Apply(post, text)
	if err != nil {
		return nil, err
	}

	return &core.PostResult{
		PostID:   post.ID,
		PostedAt: now,
		Mentions: annotations.Mentions,
		Tags:     annotations.Tags,
		Promotes: annotations.Promotes,
	}, nil
}

// EditPost replaces the text and re-runs extraction. Re-extraction is
// idempotent: each annotation family is replaced as a whole set.
func (e *Engine) EditPost(author, postID core.EntityID, text string) (*core.PostResult, error) {
	post, ok := e.Store.Entity(postID)
	if !ok || post.Kind != core.KindPost {
		return nil, fmt.Errorf("%w: post %s", core.ErrNotFound, postID)
	}
	owner, err := e.Queries.AuthorOf(post)
	if err != nil {
		return nil, err
	}
	if owner != author {
		return nil, fmt.Errorf("%w: not the author", core.ErrConflict)
	}

	e.Store.SetProp(post.ID, core.PropText, text)
	annotations, err := e.Annotator.Apply(post, text)
	if err != nil {
		return nil, err
	}

	return &core.PostResult{
		PostID:   post.ID,
		PostedAt: post.CreatedAt,
		Mentions: annotations.Mentions,
		Tags:     annotations.Tags,
		Promotes: annotations.Promotes,
	}, nil
}

func (e *Engine) Follow(user, target core.EntityID) error {
	return e.link(user, core.FamilyFollows, target, core.ErrAlreadyFollows)
}

func (e *Engine) Mute(user, target core.EntityID) error {
	return e.link(user, core.FamilyMutes, target, core.ErrAlreadyMutes)
}

func (e *Engine) link(user core.EntityID, family core.Family, target core.EntityID, dup error) error {
	if user == target {
		return core.ErrSelfTarget
	}
	for _, id := range []core.EntityID{user, target} {
		if _, ok := e.Store.Entity(id); !ok {
			return fmt.Errorf("%w: user %s", core.ErrNotFound, id)
		}
	}
	if e.Store.Exists(user, family, core.StaticDay, target) {
		return dup
	}
	_, err := e.Store.CreateEdge(user, family, target, e.Now(), nil)
	return err
}

func (e *Engine) Timeline(user core.EntityID, limit int, since int64) ([]core.TimelineItem, error) {
	return e.Feed.Timeline(user, limit, since)
}

func (e *Engine) Mentions(user core.EntityID, limit int, since int64, viewer core.EntityID) ([]core.MentionItem, error) {
	return e.Feed.Mentions(user, limit, since, viewer)
}

func (e *Engine) LikesOf(user core.EntityID, limit int, since int64, viewer core.EntityID) ([]core.LikeItem, error) {
	return e.Feed.LikesOf(user, limit, since, viewer)
}

func (e *Engine) Like(user, post core.EntityID) (*core.LikeResult, error) {
	result, err := e.Ledger.Like(user, post)
	if err != nil {
		return nil, err
	}
	e.publish("like", user, result)
	return result, nil
}

func (e *Engine) Unlike(user, post core.EntityID) (*core.UnlikeResult, error) {
	result, err := e.Ledger.Unlike(user, post)
	if err != nil {
		return nil, err
	}
	e.publish("unlike", user, result)
	return result, nil
}

func (e *Engine) Repost(user, post core.EntityID) (*core.RepostResult, error) {
	result, err := e.Commerce.Repost(user, post)
	if err != nil {
		return nil, err
	}
	e.publish("repost", user, result)
	return result, nil
}

// Reply is a normal post chained to its target with a REPLIED_TO edge. It
// announces itself under the reply verb with the target post in the payload.
func (e *Engine) Reply(user, postID core.EntityID, text string) (*core.PostResult, error) {
	target, ok := e.Store.Entity(postID)
	if !ok || target.Kind != core.KindPost {
		return nil, fmt.Errorf("%w: post %s", core.ErrNotFound, postID)
	}

	result, err := e.createPost(user, text)
	if err != nil {
		return nil, err
	}
	if _, err := e.Store.CreateEdge(result.PostID, core.FamilyRepliedTo, target.ID, result.PostedAt, nil); err != nil {
		return nil, err
	}

	result.ReplyTo = target.ID
	e.publish("reply", user, result)
	return result, nil
}

func (e *Engine) Purchase(user, post core.EntityID) (*core.PurchaseResult, error) {
	result, err := e.Commerce.Purchase(user, post)
	if err != nil {
		return nil, err
	}
	e.publish("purchase", user, result)
	return result, nil
}

// publish is fire-and-forget: the event fabric is advisory and never fails an
// operation that already committed.
func (e *Engine) publish(verb string, actor core.EntityID, payload any) {
	if e.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := e.Events.Publish(ctx, verb, actor, payload); err != nil {
		e.Logger.Error("failed to publish event", "verb", verb, "error", err)
	}
}
