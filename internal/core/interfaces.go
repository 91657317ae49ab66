package core

import (
	"context"
	"time"
)

// Engine is the operation surface exposed to collaborators (the worker, the
// seed command). Every method returns a typed payload or a typed error from
// errors.go, never a silent default.
type Engine interface {
	CreateUser(handle, name, avatar string, gold, silver int64) (*Profile, error)
	CreateProduct(seller EntityID, key, name string, price int64) (*Entity, error)
	CreatePost(author EntityID, text string) (*PostResult, error)
	EditPost(author, post EntityID, text string) (*PostResult, error)

	Follow(user, target EntityID) error
	Mute(user, target EntityID) error

	Timeline(user EntityID, limit int, since int64) ([]TimelineItem, error)
	Mentions(user EntityID, limit int, since int64, viewer EntityID) ([]MentionItem, error)
	LikesOf(user EntityID, limit int, since int64, viewer EntityID) ([]LikeItem, error)

	Like(user, post EntityID) (*LikeResult, error)
	Unlike(user, post EntityID) (*UnlikeResult, error)
	Repost(user, post EntityID) (*RepostResult, error)
	Reply(user, post EntityID, text string) (*PostResult, error)
	Purchase(user, post EntityID) (*PurchaseResult, error)
}

// EventPublisher fans successful engagement operations out to the event
// fabric. Publishing is advisory: failures are logged by the caller, never
// propagated to the operation result.
type EventPublisher interface {
	Publish(ctx context.Context, verb string, actor EntityID, payload any) error
}

// Archiver snapshots the graph to durable storage and restores it.
type Archiver interface {
	Save(ctx context.Context) error
	Restore(ctx context.Context) error
}

// Clock lets tests pin "now" for the day walk and the unlike window.
type Clock func() time.Time
