package graph

import (
	"context"
	"fmt"
	"time"

	"feedgraph/internal/config"
	"feedgraph/internal/core"
)

// DefaultViralThreshold is the inbound-degree mark past which a post's repost
// membership is checked by day walk instead of tree traversal.
const DefaultViralThreshold = 1000

// Queries layers the social traversals on top of the raw store: author
// recovery through day edges, repost chain resolution, and the dual-strategy
// membership checks.
type Queries struct {
	Store  *Store
	Config *config.Config
	Now    core.Clock

	ViralThreshold int
}

func (q *Queries) Init(_ context.Context) error {
	if q.Now == nil {
		q.Now = time.Now
	}
	if q.ViralThreshold == 0 && q.Config != nil {
		q.ViralThreshold = q.Config.ViralThreshold
	}
	if q.ViralThreshold == 0 {
		q.ViralThreshold = DefaultViralThreshold
	}
	return nil
}

// AuthorOf recovers a post's author via its day-scoped author edge: POSTED_ON
// for originals, REPOSTED_ON for repost posts. The edge's day equals the
// post's creation day, so only one bucket per family is inspected.
func (q *Queries) AuthorOf(post *core.Entity) (core.EntityID, error) {
	day := core.DayOf(post.CreatedAt)
	for _, family := range []core.Family{core.FamilyPostedOn, core.FamilyRepostedOn} {
		if edges := q.Store.EdgesOf(post.ID, family, day, core.In); len(edges) > 0 {
			return edges[0].From, nil
		}
	}
	return "", fmt.Errorf("%w: post %s has no author edge", core.ErrInvariant, post.ID)
}

// OriginalOf follows outgoing REPOSTED edges to the terminal post. chain holds
// the repost posts walked through, ordered from the starting post toward the
// original, excluding the original itself.
func (q *Queries) OriginalOf(post *core.Entity) (original *core.Entity, chain []*core.Entity, err error) {
	current := post
	visited := map[core.EntityID]bool{}

	for {
		if visited[current.ID] {
			return nil, nil, fmt.Errorf("%w: repost cycle at %s", core.ErrInvariant, current.ID)
		}
		visited[current.ID] = true

		edges := q.Store.EdgesOf(current.ID, core.FamilyReposted, core.StaticDay, core.Out)
		if len(edges) == 0 {
			return current, chain, nil
		}

		chain = append(chain, current)
		next, ok := q.Store.Entity(edges[0].To)
		if !ok {
			return nil, nil, fmt.Errorf("%w: repost target %s", core.ErrNotFound, edges[0].To)
		}
		current = next
	}
}

// HasLiked reports whether the user holds a LIKES edge to the original post.
func (q *Queries) HasLiked(user core.EntityID, original core.EntityID) bool {
	return q.Store.Exists(user, core.FamilyLikes, core.StaticDay, original)
}

// LikeEdge locates the user's LIKES edge on the original post.
func (q *Queries) LikeEdge(user core.EntityID, original core.EntityID) (*core.Edge, bool) {
	return q.Store.FindEdge(user, core.FamilyLikes, core.StaticDay, original)
}

// HasReposted reports whether the user reposted the original or any post in
// its repost tree. Ordinary posts are answered by walking the inbound
// REPOSTED tree and checking repost authorship. Once the original's total
// inbound degree reaches the viral threshold that walk is abandoned for a
// day-by-day scan of the user's own REPOSTED_ON edges, from now back to the
// original's creation day; a repost cannot precede the post it reposts, so
// that floor is exact. Both strategies return the same answer.
func (q *Queries) HasReposted(user core.EntityID, original *core.Entity) (bool, error) {
	if q.Store.TotalDegree(original.ID, core.In) < q.ViralThreshold {
		found := false
		err := q.WalkRepostTree(original.ID, func(repost *core.Entity) (bool, error) {
			author, err := q.AuthorOf(repost)
			if err != nil {
				return false, err
			}
			found = author == user
			return found, nil
		})
		return found, err
	}

	cursor := NewDayCursor(q.Now(), original.CreatedAt)
	for {
		day, ok := cursor.Next()
		if !ok {
			return false, nil
		}
		for _, edge := range q.Store.EdgesOf(user, core.FamilyRepostedOn, day, core.Out) {
			repost, ok := q.Store.Entity(edge.To)
			if !ok {
				continue
			}
			end, _, err := q.OriginalOf(repost)
			if err != nil {
				return false, err
			}
			if end.ID == original.ID {
				return true, nil
			}
		}
	}
}

// WalkRepostTree visits every post in the inbound REPOSTED tree of root,
// breadth first. visit returning true stops the walk.
func (q *Queries) WalkRepostTree(root core.EntityID, visit func(*core.Entity) (bool, error)) error {
	queue := []core.EntityID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, edge := range q.Store.EdgesOf(id, core.FamilyReposted, core.StaticDay, core.In) {
			repost, ok := q.Store.Entity(edge.From)
			if !ok {
				continue
			}
			stop, err := visit(repost)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
			queue = append(queue, repost.ID)
		}
	}
	return nil
}

// LikeCount and ReplyCount are single-bucket degree reads.
func (q *Queries) LikeCount(post core.EntityID) int {
	return q.Store.Degree(post, core.FamilyLikes, core.StaticDay, core.In)
}

func (q *Queries) ReplyCount(post core.EntityID) int {
	return q.Store.Degree(post, core.FamilyRepliedTo, core.StaticDay, core.In)
}
