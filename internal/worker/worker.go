package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"feedgraph/internal/core"
	"feedgraph/internal/events"
	"feedgraph/pkg/retry"
)

const (
	fetchBatch    = 64
	retryAttempts = 3
	retryDelay    = 100 * time.Millisecond
)

var requestsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feedgraph_requests_processed_total",
	Help: "Operation requests consumed from the stream, by outcome.",
}, []string{"op", "status"})

// Request is one operation request consumed from the ops subjects. Field use
// depends on Op.
type Request struct {
	Op     string        `json:"op"`
	User   core.EntityID `json:"user"`
	Post   core.EntityID `json:"post"`
	Target core.EntityID `json:"target"`
	Viewer core.EntityID `json:"viewer,omitempty"`
	Text   string        `json:"text,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Since  int64         `json:"since,omitempty"`
}

// Worker applies operation requests from JetStream to the engine. It retries
// transient failures a bounded number of times; the typed business errors are
// terminal and acknowledged, retry-on-conflict stays a caller concern and
// never happens inside the core.
type Worker struct {
	Logger *slog.Logger
	NATS   *events.NATS
	Engine core.Engine
}

func (w *Worker) Init(_ context.Context) error {
	w.Logger = w.Logger.With("component", "worker.Worker")
	return nil
}

func (w *Worker) Run(ctx context.Context) error {
	cons, err := w.NATS.JS.Consumer(ctx, events.StreamName, events.WorkerDurable)
	if err != nil {
		return err
	}

	ch := make(chan jetstream.Msg)
	go w.fetch(ctx, cons, ch)

	input := pips.MapInputChan(ctx, ch, func(_ context.Context, msg jetstream.Msg) (jetstream.Msg, error) {
		return msg, nil
	})

	return pips.New[jetstream.Msg, any]().
		Then(apply.Each(w.handle)).
		Run(ctx, input).
		Wait(ctx)
}

func (w *Worker) fetch(ctx context.Context, cons jetstream.Consumer, ch chan<- jetstream.Msg) {
	defer close(ch)

	for {
		if ctx.Err() != nil {
			return
		}

		batch, err := cons.Fetch(fetchBatch, jetstream.FetchMaxWait(time.Second))
		if err != nil {
			w.Logger.Error("fetch failed, retrying", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for msg := range batch.Messages() {
			select {
			case <-ctx.Done():
				return
			case ch <- msg:
			}
		}
	}
}

func (w *Worker) handle(_ context.Context, msg jetstream.Msg) error {
	var req Request
	if err := json.Unmarshal(msg.Data(), &req); err != nil {
		w.Logger.Error("dropping undecodable request", "error", err)
		requestsProcessed.WithLabelValues("unknown", "undecodable").Inc()
		return msg.Term()
	}

	err := retry.Do(retryAttempts, retryDelay, func(err error, _ int) bool {
		return !terminal(err)
	}, func() error {
		return w.apply(req)
	})

	switch {
	case err == nil:
		requestsProcessed.WithLabelValues(req.Op, "ok").Inc()
		return msg.Ack()
	case terminal(err):
		w.Logger.Warn("request rejected", "op", req.Op, "error", err)
		requestsProcessed.WithLabelValues(req.Op, "rejected").Inc()
		return msg.Ack()
	default:
		w.Logger.Error("request failed, redelivering", "op", req.Op, "error", err)
		requestsProcessed.WithLabelValues(req.Op, "failed").Inc()
		return msg.Nak()
	}
}

func (w *Worker) apply(req Request) error {
	var err error

	switch req.Op {
	case "like":
		_, err = w.Engine.Like(req.User, req.Post)
	case "unlike":
		_, err = w.Engine.Unlike(req.User, req.Post)
	case "repost":
		_, err = w.Engine.Repost(req.User, req.Post)
	case "reply":
		_, err = w.Engine.Reply(req.User, req.Post, req.Text)
	case "purchase":
		_, err = w.Engine.Purchase(req.User, req.Post)
	case "post":
		_, err = w.Engine.CreatePost(req.User, req.Text)
	case "edit":
		_, err = w.Engine.EditPost(req.User, req.Post, req.Text)
	case "follow":
		err = w.Engine.Follow(req.User, req.Target)
	case "mute":
		err = w.Engine.Mute(req.User, req.Target)
	case "timeline":
		_, err = w.Engine.Timeline(req.User, req.Limit, req.Since)
	case "mentions":
		_, err = w.Engine.Mentions(req.User, req.Limit, req.Since, req.Viewer)
	case "likes":
		_, err = w.Engine.LikesOf(req.User, req.Limit, req.Since, req.Viewer)
	default:
		err = fmt.Errorf("%w: unknown op %q", core.ErrValidation, req.Op)
	}
	return err
}

// terminal reports whether the error belongs to the typed taxonomy; those are
// business outcomes, not transient faults.
func terminal(err error) bool {
	for _, class := range []error{
		core.ErrNotFound, core.ErrValidation, core.ErrConflict,
		core.ErrInsufficientFunds, core.ErrTimeout, core.ErrInvariant,
	} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}
