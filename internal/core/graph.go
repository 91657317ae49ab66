package core

import (
	"time"
)

// Kind is the entity kind stored in the graph.
type Kind string

const (
	KindUser    Kind = "user"
	KindPost    Kind = "post"
	KindProduct Kind = "product"
	KindTag     Kind = "tag"
)

// Family is the logical relation an edge belongs to. Day-scoped families are
// partitioned by the UTC day of edge creation; static families live in the
// zero-day bucket.
type Family string

const (
	FamilyFollows   Family = "FOLLOWS"
	FamilyMutes     Family = "MUTES"
	FamilyLikes     Family = "LIKES"
	FamilyReposted  Family = "REPOSTED"
	FamilyRepliedTo Family = "REPLIED_TO"
	FamilyPromotes  Family = "PROMOTES"
	FamilySells     Family = "SELLS"

	FamilyPostedOn    Family = "POSTED_ON"
	FamilyRepostedOn  Family = "REPOSTED_ON"
	FamilyMentionedOn Family = "MENTIONED_ON"
	FamilyTaggedOn    Family = "TAGGED_ON"
	FamilyPurchasedOn Family = "PURCHASED_ON"
)

// DayScoped reports whether edges of this family are bucketed by creation day.
func (f Family) DayScoped() bool {
	switch f {
	case FamilyPostedOn, FamilyRepostedOn, FamilyMentionedOn, FamilyTaggedOn, FamilyPurchasedOn:
		return true
	}
	return false
}

// Day is a UTC calendar day expressed as days since the Unix epoch.
// StaticDay is the bucket for families that are not day-scoped.
type Day int64

const StaticDay Day = 0

func DayOf(t time.Time) Day {
	return Day(t.UTC().Unix() / (24 * 60 * 60))
}

func (d Day) Prev() Day { return d - 1 }

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*24*60*60, 0).UTC()
}

// Direction selects which adjacency side of an entity to read.
type Direction int

const (
	Out Direction = iota
	In
)

type (
	EntityID string
	EdgeID   string
)

// Entity is an immutable identity record. Properties live in the store and are
// read and written through the Graph interface.
type Entity struct {
	ID        EntityID
	Kind      Kind
	CreatedAt time.Time
}

// Edge is a typed, timestamped relation. Day is fixed at creation and never
// changes. Props are written once at creation, readers may share the map.
type Edge struct {
	ID        EdgeID
	From      EntityID
	To        EntityID
	Family    Family
	Day       Day
	CreatedAt time.Time
	Props     map[string]any
}

// Common property keys.
const (
	PropHandle = "handle"
	PropName   = "name"
	PropAvatar = "avatar"
	PropGold   = "gold"
	PropSilver = "silver"
	PropText   = "text"
	PropKey    = "key"
	PropPrice  = "price"
)

// Currency names the two units of the like economy. Silver replenishes and is
// spent first, gold is scarce.
type Currency string

const (
	Gold   Currency = "gold"
	Silver Currency = "silver"
)

// Graph is the property-graph substrate the core algorithms run against.
// Implementations must make every single call atomic with respect to
// concurrent callers; multi-call sequences that mutate balances are serialized
// by the caller through LockPair.
type Graph interface {
	CreateEntity(kind Kind, at time.Time) *Entity
	// FindEntity resolves an entity by a unique string property.
	FindEntity(kind Kind, key, value string) (*Entity, bool)
	Entity(id EntityID) (*Entity, bool)

	Prop(id EntityID, key string) (any, bool)
	SetProp(id EntityID, key string, value any)
	// AddInt atomically adjusts an integer property and returns the new value.
	AddInt(id EntityID, key string, delta int64) int64

	// CreateEdge derives the edge's day bucket from at when the family is
	// day-scoped. Props may be nil.
	CreateEdge(from EntityID, family Family, to EntityID, at time.Time, props map[string]any) (*Edge, error)
	// DeleteEdge reports whether the edge existed; it is the arbiter between
	// concurrent deleters.
	DeleteEdge(id EdgeID) bool
	Edge(id EdgeID) (*Edge, bool)

	// EdgesOf returns a snapshot of the (family, day) adjacency bucket.
	// Static families are read with StaticDay.
	EdgesOf(id EntityID, family Family, day Day, dir Direction) []*Edge
	// Degree is the size of one (family, day) bucket.
	Degree(id EntityID, family Family, day Day, dir Direction) int
	// FamilyDegree sums a family's buckets across all days.
	FamilyDegree(id EntityID, family Family, dir Direction) int
	// TotalDegree counts every edge touching the entity in one direction.
	TotalDegree(id EntityID, dir Direction) int

	// LockPair takes the per-entity locks for actor and counterparty in fixed
	// role order (actor first) and returns the release func.
	LockPair(actor, counterparty EntityID) func()
}
