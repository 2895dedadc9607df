package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// PublishRecorder observes relay results: "sent" or "failed".
type PublishRecorder interface {
	ObservePublish(result string)
}

// Worker relays stored booking events to the broker as CloudEvents.
type Worker struct {
	Store       Store
	Producer    Producer
	Interval    time.Duration
	BatchSize   int
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Clock       func() time.Time
	Metrics     PublishRecorder
	Logger      *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil {
				return err
			}
		}
	}
}

// Drain relays up to one batch of due records and reports how many were sent.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < w.batchSize(); i++ {
		ok, more, err := w.processOnce(ctx)
		if err != nil {
			return sent, err
		}
		if ok {
			sent++
		}
		if !more {
			break
		}
	}
	return sent, nil
}

func (w *Worker) processOnce(ctx context.Context) (sent bool, more bool, err error) {
	rec, err := w.Store.Claim(ctx, w.ID, w.now())
	if err != nil || rec == nil {
		return false, false, err
	}
	payload, headers, err := w.formatPayload(rec)
	if err == nil {
		err = w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, payload, headers)
	}
	if err != nil {
		w.logger().Warn("outbox publish failed", "event_id", rec.ID, "event", rec.Name, "attempts", rec.Attempts+1, "err", err)
		w.observe("failed")
		return false, true, w.Store.MarkFailed(ctx, rec.ID, w.nextRetry(rec.Attempts), err.Error())
	}
	w.observe("sent")
	return true, true, w.Store.MarkSent(ctx, rec.ID, w.now())
}

func (w *Worker) formatPayload(rec *Pending) ([]byte, map[string]string, error) {
	var data map[string]any
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          w.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt.UTC(),
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "booking.requested" to "booking.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 50
	}
	return w.BatchSize
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := w.now()
	if attempts < len(w.Backoff) {
		return now.Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return now.Add(w.Backoff[len(w.Backoff)-1])
	}
	return now.Add(5 * time.Second)
}

func (w *Worker) now() time.Time {
	if w.Clock != nil {
		return w.Clock().UTC()
	}
	return time.Now().UTC()
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://staybook"
}

func (w *Worker) observe(result string) {
	if w.Metrics != nil {
		w.Metrics.ObservePublish(result)
	}
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
