package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

var (
	timelineDays = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedgraph_timeline_days_walked",
		Help:    "Days visited per timeline assembly before the quota was met.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
	})

	timelineItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedgraph_timeline_items_total",
		Help: "Timeline items served.",
	})
)

// Timeline unions posts and reposts of the user's followees (and the user)
// day by day, newest day first, stopping once the quota is met at a day
// boundary or the user's creation floor is reached. The result is
// de-duplicated by original post identity, then globally re-sorted by
// effective time (repost time if present, else post time) and truncated.
func (s *Service) Timeline(userID core.EntityID, limit int, since int64) ([]core.TimelineItem, error) {
	user, ok := s.Store.Entity(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, userID)
	}

	limit, cutoff := s.normalize(limit, since)
	if limit == 0 {
		return nil, nil
	}

	followees := s.followees(userID)
	muted := s.muteSet(followees)

	var (
		items []core.TimelineItem
		seen  = map[core.EntityID]bool{}
		days  = 0
	)

	cursor := graph.NewDayCursor(cutoff, user.CreatedAt)
	for {
		day, ok := cursor.Next()
		if !ok {
			break
		}
		days++

		for _, followee := range followees {
			if err := s.collectPosts(followee, day, cutoff, muted, seen, &items); err != nil {
				return nil, err
			}
			if err := s.collectReposts(followee, day, cutoff, muted, seen, &items); err != nil {
				return nil, err
			}
		}

		// The day must be exhausted before the quota check: a later post of
		// the same day may outrank what we already hold.
		if len(items) >= limit {
			break
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].EffectiveAt.After(items[j].EffectiveAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	timelineDays.Observe(float64(days))
	timelineItems.Add(float64(len(items)))

	return items, nil
}

func (s *Service) collectPosts(author core.EntityID, day core.Day, cutoff time.Time, muted map[core.EntityID]bool, seen map[core.EntityID]bool, items *[]core.TimelineItem) error {
	if muted[author] {
		return nil
	}
	for _, edge := range s.Store.EdgesOf(author, core.FamilyPostedOn, day, core.Out) {
		if !edge.CreatedAt.Before(cutoff) {
			continue
		}
		post, ok := s.Store.Entity(edge.To)
		if !ok {
			continue
		}
		if seen[post.ID] {
			continue
		}
		seen[post.ID] = true

		*items = append(*items, core.TimelineItem{
			PostID:      post.ID,
			Text:        core.StrProp(s.Store, post.ID, core.PropText),
			Author:      core.ProfileOf(s.Store, author),
			PostedAt:    post.CreatedAt,
			EffectiveAt: post.CreatedAt,
		})
	}
	return nil
}

// collectReposts surfaces the original behind each repost edge. The mute
// filter is driven by the original's author, not by the repost path: a muted
// author stays excluded even when a followee reposted them.
func (s *Service) collectReposts(reposter core.EntityID, day core.Day, cutoff time.Time, muted map[core.EntityID]bool, seen map[core.EntityID]bool, items *[]core.TimelineItem) error {
	for _, edge := range s.Store.EdgesOf(reposter, core.FamilyRepostedOn, day, core.Out) {
		if !edge.CreatedAt.Before(cutoff) {
			continue
		}
		repost, ok := s.Store.Entity(edge.To)
		if !ok {
			continue
		}

		original, _, err := s.Queries.OriginalOf(repost)
		if err != nil {
			return err
		}
		author, err := s.Queries.AuthorOf(original)
		if err != nil {
			return err
		}
		if muted[author] {
			continue
		}
		if seen[original.ID] {
			continue
		}
		seen[original.ID] = true

		reposterProfile := core.ProfileOf(s.Store, reposter)
		repostedAt := edge.CreatedAt

		*items = append(*items, core.TimelineItem{
			PostID:      original.ID,
			Text:        core.StrProp(s.Store, original.ID, core.PropText),
			Author:      core.ProfileOf(s.Store, author),
			PostedAt:    original.CreatedAt,
			Reposter:    &reposterProfile,
			RepostedAt:  &repostedAt,
			EffectiveAt: repostedAt,
		})
	}
	return nil
}
