package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedgraph/internal/graph"
)

var (
	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedgraph_graph_entities",
		Help: "Entities in the graph arena.",
	})

	edgeCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "feedgraph_graph_edges",
		Help: "Edges in the graph arena by family.",
	}, []string{"family"})
)

// Collector samples arena sizes on a fixed interval.
type Collector struct {
	Logger *slog.Logger
	Store  *graph.Store
}

func (c *Collector) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "metrics.Collector")
	return nil
}

func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *Collector) collect() {
	entities, families := c.Store.Counts()
	entityCount.Set(float64(entities))
	for family, count := range families {
		edgeCount.WithLabelValues(string(family)).Set(float64(count))
	}
}
