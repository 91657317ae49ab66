package feed

import (
	"fmt"
	"sort"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

// Mentions walks the user's inbound MENTIONED_ON buckets backward from the
// cutoff to the user's creation floor; a mention cannot predate the account
// it refers to. The optional viewer's direct mutes filter out authors.
func (s *Service) Mentions(userID core.EntityID, limit int, since int64, viewer core.EntityID) ([]core.MentionItem, error) {
	user, ok := s.Store.Entity(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, userID)
	}

	limit, cutoff := s.normalize(limit, since)
	if limit == 0 {
		return nil, nil
	}
	muted := s.viewerMutes(viewer)

	var items []core.MentionItem
	seen := map[core.EntityID]bool{}

	cursor := graph.NewDayCursor(cutoff, user.CreatedAt)
	for {
		day, ok := cursor.Next()
		if !ok {
			break
		}

		for _, edge := range s.Store.EdgesOf(userID, core.FamilyMentionedOn, day, core.In) {
			post, ok := s.Store.Entity(edge.From)
			if !ok || !post.CreatedAt.Before(cutoff) || seen[post.ID] {
				continue
			}
			author, err := s.Queries.AuthorOf(post)
			if err != nil {
				return nil, err
			}
			if muted[author] {
				continue
			}
			seen[post.ID] = true

			items = append(items, core.MentionItem{
				PostID:   post.ID,
				Text:     core.StrProp(s.Store, post.ID, core.PropText),
				Author:   core.ProfileOf(s.Store, author),
				PostedAt: post.CreatedAt,
			})
		}

		if len(items) >= limit {
			break
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PostedAt.After(items[j].PostedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// LikesOf lists the posts a user likes, newest like first. LIKES edges are
// static and attach to originals, so this is a single-bucket read.
func (s *Service) LikesOf(userID core.EntityID, limit int, since int64, viewer core.EntityID) ([]core.LikeItem, error) {
	if _, ok := s.Store.Entity(userID); !ok {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, userID)
	}

	limit, cutoff := s.normalize(limit, since)
	if limit == 0 {
		return nil, nil
	}
	muted := s.viewerMutes(viewer)

	var items []core.LikeItem
	for _, edge := range s.Store.EdgesOf(userID, core.FamilyLikes, core.StaticDay, core.Out) {
		if !edge.CreatedAt.Before(cutoff) {
			continue
		}
		post, ok := s.Store.Entity(edge.To)
		if !ok {
			continue
		}
		author, err := s.Queries.AuthorOf(post)
		if err != nil {
			return nil, err
		}
		if muted[author] {
			continue
		}
		items = append(items, core.LikeItem{
			PostID:  post.ID,
			Text:    core.StrProp(s.Store, post.ID, core.PropText),
			Author:  core.ProfileOf(s.Store, author),
			LikedAt: edge.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].LikedAt.After(items[j].LikedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
