package cmd

import (
	"context"
	"log/slog"

	"feedgraph/internal/cmd/flags"
	"feedgraph/internal/commerce"
	"feedgraph/internal/core"
	"feedgraph/internal/engine"
	"feedgraph/internal/events"
	"feedgraph/internal/extract"
	"feedgraph/internal/feed"
	"feedgraph/internal/graph"
	"feedgraph/internal/ledger"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var seedCmd = &cli.Command{
	Name:  "seed",
	Usage: "Populate an in-memory graph with demo data and print a timeline",
	Flags: []cli.Flag{
		flags.UNLIKE_WINDOW,
		flags.VIRAL_THRESHOLD,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(graph.New()),
			pal.Provide(&graph.Queries{}),
			pal.Provide(&extract.Annotator{}),
			pal.Provide(&feed.Service{}),
			pal.Provide(&ledger.Service{}),
			pal.Provide(&commerce.Service{}),
			pal.Provide[core.EventPublisher](&events.Noop{}),
			pal.Provide[core.Engine](&engine.Engine{}),
			pal.Provide(&seeder{}),
		)
	},
}

type seeder struct {
	Logger *slog.Logger
	Engine core.Engine
}

// Run builds a small social scene: a seller promoting a product, a repost
// chain around it, some likes and a purchase, then prints the buyer's
// timeline.
func (s *seeder) Run(context.Context) error {
	alice, err := s.Engine.CreateUser("alice", "Alice", "", 100, 10)
	if err != nil {
		return err
	}
	bob, err := s.Engine.CreateUser("bob", "Bob", "", 50, 10)
	if err != nil {
		return err
	}
	carol, err := s.Engine.CreateUser("carol", "Carol", "", 20, 10)
	if err != nil {
		return err
	}
	dave, err := s.Engine.CreateUser("dave", "Dave", "", 2000, 10)
	if err != nil {
		return err
	}

	for _, follower := range []*core.Profile{bob, carol, dave} {
		if err := s.Engine.Follow(follower.ID, alice.ID); err != nil {
			return err
		}
	}
	if err := s.Engine.Follow(dave.ID, carol.ID); err != nil {
		return err
	}

	if _, err := s.Engine.CreateProduct(alice.ID, "lamp", "Desk Lamp", 1000); err != nil {
		return err
	}
	ad, err := s.Engine.CreatePost(alice.ID, "Handmade $lamp, now shipping. #woodwork @bob")
	if err != nil {
		return err
	}

	repost, err := s.Engine.Repost(bob.ID, ad.PostID)
	if err != nil {
		return err
	}
	if _, err := s.Engine.Repost(carol.ID, repost.RepostID); err != nil {
		return err
	}

	if _, err := s.Engine.Like(bob.ID, ad.PostID); err != nil {
		return err
	}
	if _, err := s.Engine.Like(carol.ID, ad.PostID); err != nil {
		return err
	}

	purchase, err := s.Engine.Purchase(dave.ID, ad.PostID)
	if err != nil {
		return err
	}
	s.Logger.Info("purchase settled", "product", purchase.ProductKey, "price", purchase.Price)

	timeline, err := s.Engine.Timeline(dave.ID, 20, -1)
	if err != nil {
		return err
	}

	pp.Println(purchase)
	pp.Println(timeline)
	return nil
}
