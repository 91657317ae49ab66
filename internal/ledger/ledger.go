package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedgraph/internal/config"
	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

// DefaultUnlikeWindow is the business-rule window within which a like can be
// taken back.
const DefaultUnlikeWindow = time.Minute

var ledgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feedgraph_ledger_ops_total",
	Help: "Like ledger operations by outcome.",
}, []string{"op", "status"})

// Service is the two-currency like ledger. Silver is the replenishing unit
// and depletes first, gold is scarce. Every debit is mirrored by a credit to
// the author, so currency moves and is never created or destroyed.
type Service struct {
	Logger  *slog.Logger
	Store   *graph.Store
	Queries *graph.Queries
	Config  *config.Config
	Now     core.Clock

	Window time.Duration
}

func (s *Service) Init(_ context.Context) error {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.Logger = s.Logger.With("component", "ledger.Service")
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Window == 0 && s.Config != nil {
		s.Window = s.Config.UnlikeWindow
	}
	if s.Window == 0 {
		s.Window = DefaultUnlikeWindow
	}
	return nil
}

// Like debits one unit from the user and credits it to the original post's
// author. The result payload is assembled before any lock is taken to keep
// the hold time short; under the locks only the balance re-check and the
// transfer happen. Lock order is fixed: requester, then author.
func (s *Service) Like(userID, postID core.EntityID) (*core.LikeResult, error) {
	user, post, err := s.resolve(userID, postID)
	if err != nil {
		return nil, err
	}

	original, _, err := s.Queries.OriginalOf(post)
	if err != nil {
		return nil, err
	}
	author, err := s.Queries.AuthorOf(original)
	if err != nil {
		return nil, err
	}
	if author == user.ID {
		return nil, fmt.Errorf("%w: cannot like own post", core.ErrSelfTarget)
	}
	if s.Queries.HasLiked(user.ID, original.ID) {
		return nil, core.ErrAlreadyLiked
	}

	result := &core.LikeResult{
		PostID:    original.ID,
		Author:    core.ProfileOf(s.Store, author),
		LikeCount: s.Queries.LikeCount(original.ID) + 1,
	}

	unlock := s.Store.LockPair(user.ID, author)
	defer unlock()

	if s.Queries.HasLiked(user.ID, original.ID) {
		ledgerOps.WithLabelValues("like", "conflict").Inc()
		return nil, core.ErrAlreadyLiked
	}

	gold := core.IntProp(s.Store, user.ID, core.PropGold)
	silver := core.IntProp(s.Store, user.ID, core.PropSilver)
	if gold+silver < 1 {
		ledgerOps.WithLabelValues("like", "insufficient").Inc()
		return nil, core.ErrInsufficientFunds
	}

	currency := core.Gold
	if silver > 0 {
		currency = core.Silver
	}

	s.Store.AddInt(user.ID, string(currency), -1)
	s.Store.AddInt(author, string(currency), 1)

	_, err = s.Store.CreateEdge(user.ID, core.FamilyLikes, original.ID, s.Now(), map[string]any{
		string(currency): true,
	})
	if err != nil {
		// Undo the transfer; the store refused the edge, nothing else moved.
		s.Store.AddInt(user.ID, string(currency), 1)
		s.Store.AddInt(author, string(currency), -1)
		return nil, err
	}

	result.Currency = currency
	ledgerOps.WithLabelValues("like", "ok").Inc()
	return result, nil
}

// Unlike refunds the recorded currency within the window and removes the
// edge. The conditional edge delete is the arbiter between two concurrent
// unlikes: only the caller that actually removed the edge transfers money.
func (s *Service) Unlike(userID, postID core.EntityID) (*core.UnlikeResult, error) {
	user, post, err := s.resolve(userID, postID)
	if err != nil {
		return nil, err
	}

	original, _, err := s.Queries.OriginalOf(post)
	if err != nil {
		return nil, err
	}
	author, err := s.Queries.AuthorOf(original)
	if err != nil {
		return nil, err
	}

	edge, ok := s.Queries.LikeEdge(user.ID, original.ID)
	if !ok {
		return nil, core.ErrNotLiking
	}

	currency, err := likeCurrency(edge)
	if err != nil {
		return nil, err
	}

	if s.Now().Sub(edge.CreatedAt) > s.Window {
		ledgerOps.WithLabelValues("unlike", "timeout").Inc()
		return nil, core.ErrUnlikeWindow
	}

	unlock := s.Store.LockPair(user.ID, author)
	defer unlock()

	if !s.Store.DeleteEdge(edge.ID) {
		ledgerOps.WithLabelValues("unlike", "conflict").Inc()
		return nil, core.ErrNotLiking
	}

	s.Store.AddInt(user.ID, string(currency), 1)
	s.Store.AddInt(author, string(currency), -1)

	ledgerOps.WithLabelValues("unlike", "ok").Inc()
	return &core.UnlikeResult{PostID: original.ID, Currency: currency}, nil
}

func (s *Service) resolve(userID, postID core.EntityID) (*core.Entity, *core.Entity, error) {
	user, ok := s.Store.Entity(userID)
	if !ok || user.Kind != core.KindUser {
		return nil, nil, fmt.Errorf("%w: user %s", core.ErrNotFound, userID)
	}
	post, ok := s.Store.Entity(postID)
	if !ok || post.Kind != core.KindPost {
		return nil, nil, fmt.Errorf("%w: post %s", core.ErrNotFound, postID)
	}
	return user, post, nil
}

// likeCurrency reads the currency tag; a like edge must carry exactly one of
// {silver: true, gold: true} or refunds cannot be processed.
func likeCurrency(edge *core.Edge) (core.Currency, error) {
	silver, _ := edge.Props[string(core.Silver)].(bool)
	gold, _ := edge.Props[string(core.Gold)].(bool)

	switch {
	case silver && !gold:
		return core.Silver, nil
	case gold && !silver:
		return core.Gold, nil
	default:
		return "", fmt.Errorf("%w: like edge %s has no currency tag", core.ErrInvariant, edge.ID)
	}
}
