package commerce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

// PlatformHandle names the account that accrues commission remainders.
const PlatformHandle = "platform"

var commerceOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feedgraph_commerce_ops_total",
	Help: "Commerce operations by outcome.",
}, []string{"op", "status"})

// Service resolves repost chains and settles purchases. Commerce runs
// entirely in gold, the scarce settlement currency.
type Service struct {
	Logger  *slog.Logger
	Store   *graph.Store
	Queries *graph.Queries
	Now     core.Clock

	Commissions CommissionTable

	platformOnce sync.Once
	platformID   core.EntityID
}

func (s *Service) Init(_ context.Context) error {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.Logger = s.Logger.With("component", "commerce.Service")
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Commissions.SharesBP == nil {
		s.Commissions = DefaultCommissionTable()
	}
	return nil
}

// RepostCount counts reposts of a post. For a non-promoted post the inbound
// edges partition into exactly the author day edge, likes, replies and
// reposts, so the count falls out of degree arithmetic in O(1). Purchases
// break that partition for promoted posts, which are counted by walking the
// inbound repost tree instead; an ad can be reposted through many independent
// chains.
func (s *Service) RepostCount(post *core.Entity) (int, error) {
	promoted := s.Store.Degree(post.ID, core.FamilyPromotes, core.StaticDay, core.Out) > 0
	if !promoted {
		return s.Store.TotalDegree(post.ID, core.In) - 1 -
			s.Queries.LikeCount(post.ID) - s.Queries.ReplyCount(post.ID), nil
	}

	count := 0
	err := s.Queries.WalkRepostTree(post.ID, func(*core.Entity) (bool, error) {
		count++
		return false, nil
	})
	return count, err
}

// Repost creates a repost post chained onto the reposted post. The repost's
// author edge is the day-scoped REPOSTED_ON edge.
func (s *Service) Repost(userID, postID core.EntityID) (*core.RepostResult, error) {
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
		return nil, fmt.Errorf("%w: cannot repost own post", core.ErrSelfTarget)
	}

	reposted, err := s.Queries.HasReposted(user.ID, original)
	if err != nil {
		return nil, err
	}
	if reposted {
		commerceOps.WithLabelValues("repost", "conflict").Inc()
		return nil, core.ErrAlreadyReposted
	}

	now := s.Now()
	repost := s.Store.CreateEntity(core.KindPost, now)
	if _, err := s.Store.CreateEdge(repost.ID, core.FamilyReposted, post.ID, now, nil); err != nil {
		return nil, err
	}
	if _, err := s.Store.CreateEdge(user.ID, core.FamilyRepostedOn, repost.ID, now, nil); err != nil {
		return nil, err
	}

	commerceOps.WithLabelValues("repost", "ok").Inc()
	return &core.RepostResult{RepostID: repost.ID, OriginalID: original.ID}, nil
}

// Purchase settles a purchase made through the given post. The chain of
// reposting intermediaries between the post and the original earns the tiered
// commission schedule; the buyer pays the full price in gold and the platform
// account absorbs the rounding remainder.
func (s *Service) Purchase(buyerID, postID core.EntityID) (*core.PurchaseResult, error) {
	buyer, post, err := s.resolve(buyerID, postID)
	if err != nil {
		return nil, err
	}

	original, chain, err := s.Queries.OriginalOf(post)
	if err != nil {
		return nil, err
	}

	promotes := s.Store.EdgesOf(original.ID, core.FamilyPromotes, core.StaticDay, core.Out)
	if len(promotes) == 0 {
		return nil, fmt.Errorf("%w: post %s promotes no product", core.ErrNotFound, original.ID)
	}
	productID := promotes[0].To

	sells := s.Store.EdgesOf(productID, core.FamilySells, core.StaticDay, core.In)
	if len(sells) == 0 {
		return nil, fmt.Errorf("%w: product %s has no seller", core.ErrInvariant, productID)
	}
	sellerID := sells[0].From
	if sellerID == buyer.ID {
		return nil, fmt.Errorf("%w: cannot buy own product", core.ErrSelfTarget)
	}

	price := core.IntProp(s.Store, productID, core.PropPrice)

	// Intermediaries ordered from the reposter closest to the original
	// outward; only the closest three are paid.
	intermediaries, err := s.chainAuthors(chain)
	if err != nil {
		return nil, err
	}
	sellerShare, shares, platformShare := s.Commissions.Split(price, len(intermediaries))
	if len(intermediaries) > len(shares) {
		intermediaries = intermediaries[:len(shares)]
	}

	unlock := s.Store.LockPair(buyer.ID, sellerID)
	defer unlock()

	// Settlement is gold-only, but the combined balance must also cover the
	// price: seeded silver debt may not be paid off with a purchase.
	gold := core.IntProp(s.Store, buyer.ID, core.PropGold)
	silver := core.IntProp(s.Store, buyer.ID, core.PropSilver)
	if gold < price || gold+silver < price {
		commerceOps.WithLabelValues("purchase", "insufficient").Inc()
		return nil, core.ErrInsufficientFunds
	}

	s.Store.AddInt(buyer.ID, core.PropGold, -price)
	s.Store.AddInt(sellerID, core.PropGold, sellerShare)
	for i, id := range intermediaries {
		s.Store.AddInt(id, core.PropGold, shares[i])
	}
	s.Store.AddInt(s.platform(), core.PropGold, platformShare)

	// The purchase edge lands on the original. Repost posts must stay free of
	// purchase edges or the repost-count degree arithmetic loses its exact
	// inbound partition.
	if _, err := s.Store.CreateEdge(buyer.ID, core.FamilyPurchasedOn, original.ID, s.Now(), nil); err != nil {
		return nil, err
	}

	result := &core.PurchaseResult{
		ProductKey:  core.StrProp(s.Store, productID, core.PropKey),
		ProductName: core.StrProp(s.Store, productID, core.PropName),
		Price:       price,
		Seller:      core.Share{User: core.ProfileOf(s.Store, sellerID), Amount: sellerShare},
		Platform:    platformShare,
		OriginalID:  original.ID,
	}
	for i, id := range intermediaries {
		result.Intermediaries = append(result.Intermediaries, core.Share{
			User:   core.ProfileOf(s.Store, id),
			Amount: shares[i],
		})
	}

	commerceOps.WithLabelValues("purchase", "ok").Inc()
	return result, nil
}

// chainAuthors maps the repost chain (ordered purchase side → original) to
// its authors ordered closest-to-original first.
func (s *Service) chainAuthors(chain []*core.Entity) ([]core.EntityID, error) {
	authors := make([]core.EntityID, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		author, err := s.Queries.AuthorOf(chain[i])
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

// platform lazily resolves the commission account, creating it on first use.
func (s *Service) platform() core.EntityID {
	s.platformOnce.Do(func() {
		if ent, ok := s.Store.FindEntity(core.KindUser, core.PropHandle, PlatformHandle); ok {
			s.platformID = ent.ID
			return
		}
		ent := s.Store.CreateEntity(core.KindUser, s.Now())
		s.Store.SetProp(ent.ID, core.PropHandle, PlatformHandle)
		s.Store.SetProp(ent.ID, core.PropName, "Platform")
		s.platformID = ent.ID
	})
	return s.platformID
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
