package cmd

import (
	"context"

	"feedgraph/internal/cmd/flags"
	"feedgraph/internal/commerce"
	"feedgraph/internal/core"
	"feedgraph/internal/engine"
	"feedgraph/internal/events"
	"feedgraph/internal/extract"
	"feedgraph/internal/feed"
	"feedgraph/internal/graph"
	"feedgraph/internal/ledger"
	"feedgraph/internal/metrics"
	"feedgraph/internal/persistence"
	"feedgraph/internal/worker"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Run the engine: NATS operation worker, event publisher and metrics server",
	Flags: []cli.Flag{
		flags.NATS_URL,
		flags.INIT_NATS,
		flags.POSTGRES_URL,
		flags.METRICS_ADDR,
		flags.UNLIKE_WINDOW,
		flags.VIRAL_THRESHOLD,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		services := []pal.ServiceDef{
			pal.Provide(graph.New()),
			pal.Provide(&graph.Queries{}),
			pal.Provide(&extract.Annotator{}),
			pal.Provide(&feed.Service{}),
			pal.Provide(&ledger.Service{}),
			pal.Provide(&commerce.Service{}),
			pal.Provide[core.Engine](&engine.Engine{}),
			pal.Provide(&events.NATS{}),
			pal.Provide[core.EventPublisher](&events.Publisher{}),
			pal.Provide(&worker.Worker{}),
			pal.Provide(&metrics.Server{}),
			pal.Provide(&metrics.Collector{}),
		}

		// The snapshot layer is optional; without a DSN the graph lives and
		// dies with the process.
		if c.String("postgres-url") != "" {
			services = append(services,
				pal.Provide(&persistence.DB{}),
				pal.Provide(&persistence.Archiver{}),
			)
		}

		return run(ctx, c, services...)
	},
}
