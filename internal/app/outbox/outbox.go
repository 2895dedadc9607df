package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"staybook/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox accepts event records. Add may buffer; Flush makes buffered records durable.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// Sink durably stores event records for the relay worker.
type Sink interface {
	Append(ctx context.Context, records ...EventRecord) error
}

type bufferKey struct{}

type buffer struct {
	mu      sync.Mutex
	records []EventRecord
}

// WithBuffer returns a context in which Deferred.Add collects records until Flush.
func WithBuffer(ctx context.Context) context.Context {
	return context.WithValue(ctx, bufferKey{}, &buffer{})
}

func bufferFrom(ctx context.Context) (*buffer, bool) {
	b, ok := ctx.Value(bufferKey{}).(*buffer)
	return b, ok
}

// Deferred writes to Sink on Flush when the context carries a buffer, and
// immediately otherwise.
type Deferred struct {
	Sink Sink
}

var ErrNoSink = errors.New("outbox: sink not configured")

func (d Deferred) Add(ctx context.Context, record EventRecord) error {
	if b, ok := bufferFrom(ctx); ok {
		b.mu.Lock()
		b.records = append(b.records, record)
		b.mu.Unlock()
		return nil
	}
	if d.Sink == nil {
		return ErrNoSink
	}
	return d.Sink.Append(ctx, record)
}

func (d Deferred) Flush(ctx context.Context) error {
	b, ok := bufferFrom(ctx)
	if !ok {
		return nil
	}
	b.mu.Lock()
	pending := b.records
	b.records = nil
	b.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	if d.Sink == nil {
		return ErrNoSink
	}
	return d.Sink.Append(ctx, pending...)
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// Recorder is satisfied by aggregates embedding events.EventRecorder.
type Recorder interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// Collect encodes and adds the aggregate's pending events, then clears them.
func Collect(ctx context.Context, box Outbox, encoder EventEncoder, agg Recorder) error {
	evs := agg.PendingEvents()
	if box == nil || len(evs) == 0 {
		agg.ClearEvents()
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	agg.ClearEvents()
	return nil
}
