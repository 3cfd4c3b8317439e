package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing store or producer")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultRetryDelay   = 5 * time.Second
)

// Worker polls the queue and publishes claimed events as CloudEvents
// envelopes. A failed publish reschedules the record with backoff
// instead of blocking the rest of the queue.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	interval := w.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.shipNext(ctx); err != nil {
				return err
			}
		}
	}
}

// shipNext claims at most one due event and pushes it to the broker.
// Publish and encode failures are recorded on the event itself; only a
// store error stops the loop.
func (w *Worker) shipNext(ctx context.Context) error {
	evt, err := w.Store.ClaimNext(ctx, w.workerID())
	if err != nil || evt == nil {
		return err
	}
	payload, headers, err := w.cloudEventFor(evt)
	if err != nil {
		_ = w.Store.MarkFailed(ctx, evt.ID, w.retryAt(evt.Attempts), err.Error())
		return nil
	}
	if err := w.Producer.Publish(ctx, w.topicFor(evt.Name), evt.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, evt.ID, w.retryAt(evt.Attempts), err.Error())
		return nil
	}
	return w.Store.MarkSent(ctx, evt.ID)
}

func (w *Worker) cloudEventFor(evt *QueuedEvent) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(evt.Payload, &data); err != nil {
		return nil, nil, err
	}
	source := w.Source
	if source == "" {
		source = "app://autofleet"
	}
	envelope := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            evt.Name + ".v1",
		"source":          source,
		"time":            evt.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := evt.Headers["traceparent"]; ok {
		envelope["traceparent"] = trace
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range evt.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "booking.created" and friends onto "booking.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) retryAt(attempts int) time.Time {
	delay := defaultRetryDelay
	switch {
	case attempts < len(w.Backoff):
		delay = w.Backoff[attempts]
	case len(w.Backoff) > 0:
		delay = w.Backoff[len(w.Backoff)-1]
	}
	return time.Now().Add(delay)
}
