package core

import "time"

// Profile is the public slice of a user entity returned in payloads.
type Profile struct {
	ID     EntityID `json:"id"`
	Handle string   `json:"handle"`
	Name   string   `json:"name"`
	Avatar string   `json:"avatar"`
}

// TimelineItem is one feed entry. For reposts, Reposter and RepostedAt are set
// and EffectiveAt equals RepostedAt, otherwise EffectiveAt is the post time.
type TimelineItem struct {
	PostID      EntityID   `json:"post_id"`
	Text        string     `json:"text"`
	Author      Profile    `json:"author"`
	PostedAt    time.Time  `json:"posted_at"`
	Reposter    *Profile   `json:"reposter,omitempty"`
	RepostedAt  *time.Time `json:"reposted_at,omitempty"`
	EffectiveAt time.Time  `json:"effective_at"`
}

// MentionItem is one entry of a mentions feed.
type MentionItem struct {
	PostID   EntityID  `json:"post_id"`
	Text     string    `json:"text"`
	Author   Profile   `json:"author"`
	PostedAt time.Time `json:"posted_at"`
}

// LikeItem is one entry of a likes listing.
type LikeItem struct {
	PostID  EntityID  `json:"post_id"`
	Text    string    `json:"text"`
	Author  Profile   `json:"author"`
	LikedAt time.Time `json:"liked_at"`
}

type LikeResult struct {
	PostID    EntityID `json:"post_id"`
	Author    Profile  `json:"author"`
	Currency  Currency `json:"currency"`
	LikeCount int      `json:"like_count"`
}

type UnlikeResult struct {
	PostID   EntityID `json:"post_id"`
	Currency Currency `json:"currency"`
}

type RepostResult struct {
	RepostID   EntityID `json:"repost_id"`
	OriginalID EntityID `json:"original_id"`
}

type PostResult struct {
	PostID   EntityID  `json:"post_id"`
	PostedAt time.Time `json:"posted_at"`
	Mentions []string  `json:"mentions"`
	Tags     []string  `json:"tags"`
	Promotes string    `json:"promotes,omitempty"`
	ReplyTo  EntityID  `json:"reply_to,omitempty"`
}

// Share is one credited participant of a purchase.
type Share struct {
	User   Profile `json:"user"`
	Amount int64   `json:"amount"`
}

type PurchaseResult struct {
	ProductKey     string   `json:"product_key"`
	ProductName    string   `json:"product_name"`
	Price          int64    `json:"price"`
	Seller         Share    `json:"seller"`
	Intermediaries []Share  `json:"intermediaries"`
	Platform       int64    `json:"platform"`
	OriginalID     EntityID `json:"original_id"`
}
