package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	libnats "github.com/nats-io/nats.go"

	"feedgraph/internal/core"
)

// Event is the envelope published for every committed engagement operation.
type Event struct {
	Verb    string        `json:"verb"`
	Actor   core.EntityID `json:"actor"`
	At      time.Time     `json:"at"`
	Payload any           `json:"payload"`
}

// Publisher fans engagement events out to JetStream. The Nats-Msg-Id header
// de-duplicates redeliveries on the broker side.
type Publisher struct {
	Logger *slog.Logger
	NATS   *NATS
}

func (p *Publisher) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "events.Publisher")
	return nil
}

func (p *Publisher) Publish(ctx context.Context, verb string, actor core.EntityID, payload any) error {
	event := Event{
		Verb:    verb,
		Actor:   actor,
		At:      time.Now().UTC(),
		Payload: payload,
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &libnats.Msg{
		Subject: fmt.Sprintf("%s.%s", SubjectEvents, verb),
		Data:    bytes,
		Header: libnats.Header{
			libnats.MsgIdHdr: []string{fmt.Sprintf("%s-%d", actor, event.At.UnixNano())},
		},
	}

	_, err = p.NATS.JS.PublishMsg(ctx, msg)
	if err != nil {
		return err
	}

	p.Logger.Debug("published event", "verb", verb, "actor", actor)
	return nil
}

// Noop satisfies core.EventPublisher for store-only runs and tests.
type Noop struct{}

func (Noop) Publish(context.Context, string, core.EntityID, any) error { return nil }
