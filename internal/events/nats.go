package events

import (
	"context"
	"log/slog"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"feedgraph/internal/config"
)

const (
	appName = "feedgraph"

	// StreamName is the single JetStream stream; events go out under
	// SubjectEvents, operation requests come in under SubjectOps.
	StreamName    = appName
	SubjectEvents = appName + ".event"
	SubjectOps    = appName + ".op"

	WorkerDurable = appName + "-worker"
)

// NATS owns the JetStream connection shared by the publisher and the worker.
type NATS struct {
	Logger *slog.Logger
	Config *config.Config

	JS jetstream.JetStream
}

func (n *NATS) Init(ctx context.Context) error {
	n.Logger = n.Logger.With("component", "events.NATS")

	nc, err := libnats.Connect(n.Config.NATSURL)
	if err != nil {
		return err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return err
	}
	n.JS = js

	if n.Config.NATSInit {
		return n.bootstrap(ctx)
	}
	return nil
}

func (n *NATS) HealthCheck(context.Context) error {
	_, err := n.JS.Conn().RTT()
	return err
}

func (n *NATS) Shutdown(context.Context) error {
	return n.JS.Conn().Drain()
}

func (n *NATS) bootstrap(ctx context.Context) error {
	n.Logger.Info("Initializing NATS")

	_, err := n.JS.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     appName,
		Subjects: []string{appName + ".>"},
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		return err
	}

	_, err = n.JS.CreateOrUpdateConsumer(ctx, appName, jetstream.ConsumerConfig{
		Durable:       WorkerDurable,
		FilterSubject: SubjectOps + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return err
	}

	n.Logger.Info("Stream and consumer created or updated", "stream", appName)
	return nil
}
