package feed

import (
	"context"
	"log/slog"
	"time"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

// Service assembles read feeds: the merged timeline, the mentions feed and
// the likes listing. All of them walk day buckets backward from a cutoff to
// the subject's creation floor instead of scanning full history.
type Service struct {
	Logger  *slog.Logger
	Store   *graph.Store
	Queries *graph.Queries
	Now     core.Clock
}

func (s *Service) Init(_ context.Context) error {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.Logger = s.Logger.With("component", "feed.Service")
	if s.Now == nil {
		s.Now = time.Now
	}
	return nil
}

// normalize applies the paging conventions: negative limit and since mean
// their absolute values, since = -1 means "now".
func (s *Service) normalize(limit int, since int64) (int, time.Time) {
	if limit < 0 {
		limit = -limit
	}
	if since == -1 {
		return limit, s.Now()
	}
	if since < 0 {
		since = -since
	}
	return limit, time.Unix(since, 0).UTC()
}

// followees returns the user's outgoing FOLLOWS targets plus the user.
func (s *Service) followees(user core.EntityID) []core.EntityID {
	ids := []core.EntityID{user}
	for _, edge := range s.Store.EdgesOf(user, core.FamilyFollows, core.StaticDay, core.Out) {
		ids = append(ids, edge.To)
	}
	return ids
}

// muteSet unions the user's own mutes with the mutes of every followee, then
// removes anyone the user directly follows: a followed account's opinion
// about who to mute is advisory and a direct follow overrides it.
func (s *Service) muteSet(followees []core.EntityID) map[core.EntityID]bool {
	muted := map[core.EntityID]bool{}
	for _, id := range followees {
		for _, edge := range s.Store.EdgesOf(id, core.FamilyMutes, core.StaticDay, core.Out) {
			muted[edge.To] = true
		}
	}
	for _, id := range followees {
		delete(muted, id)
	}
	return muted
}

// viewerMutes is the direct mute set of an optional viewer.
func (s *Service) viewerMutes(viewer core.EntityID) map[core.EntityID]bool {
	muted := map[core.EntityID]bool{}
	if viewer == "" {
		return muted
	}
	for _, edge := range s.Store.EdgesOf(viewer, core.FamilyMutes, core.StaticDay, core.Out) {
		muted[edge.To] = true
	}
	return muted
}
