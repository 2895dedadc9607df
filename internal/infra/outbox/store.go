package outbox

import (
	"context"
	"errors"
	"time"

	appoutbox "staybook/internal/app/outbox"
)

const (
	StateNew     = "NEW"
	StateClaimed = "CLAIMED"
	StateSent    = "SENT"
	StateFailed  = "FAILED"
)

// Pending is a stored record claimed by a relay worker.
type Pending struct {
	appoutbox.EventRecord
	Attempts int
}

// Store is the relay's view of durable outbox storage. Claim returns nil
// when nothing is due.
type Store interface {
	Claim(ctx context.Context, workerID string, now time.Time) (*Pending, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")
