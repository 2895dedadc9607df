package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
)

type outboxEntry struct {
	record   appoutbox.EventRecord
	state    string
	attempts int
	next     time.Time
	lastErr  string
}

// Outbox is an in-memory outbox sink that the relay worker can drain.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Append(ctx context.Context, records ...appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range records {
		o.entries = append(o.entries, &outboxEntry{record: r, state: infraoutbox.StateNew})
	}
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string, now time.Time) (*infraoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.state != infraoutbox.StateNew && e.state != infraoutbox.StateFailed {
			continue
		}
		if e.next.After(now) {
			continue
		}
		e.state = infraoutbox.StateClaimed
		return &infraoutbox.Pending{EventRecord: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string, at time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = infraoutbox.StateSent
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = infraoutbox.StateFailed
		e.attempts++
		e.next = next
		e.lastErr = errMsg
	}
	return nil
}

// Records returns every appended record in insertion order.
func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.record)
	}
	return out
}

// Names lists the event names of every appended record.
func (o *Outbox) Names() []string {
	records := o.Records()
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

// State reports the relay state of a record, or "" if unknown.
func (o *Outbox) State(id string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		return e.state
	}
	return ""
}

func (o *Outbox) find(id string) *outboxEntry {
	for _, e := range o.entries {
		if e.record.ID == id {
			return e
		}
	}
	return nil
}

var (
	_ appoutbox.Sink    = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
