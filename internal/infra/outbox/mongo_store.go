package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "staybook/internal/app/outbox"
)

const collectionName = "booking_outbox"

// MongoStore keeps outbox records in a Mongo collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	col := db.Collection(collectionName)
	idx := mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &MongoStore{col: col}, nil
}

type eventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   time.Time         `bson:"claimed_at,omitempty"`
	SentAt      time.Time         `bson:"sent_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
}

// Append inserts records as NEW and due immediately.
func (s *MongoStore) Append(ctx context.Context, records ...appoutbox.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, 0, len(records))
	for _, r := range records {
		docs = append(docs, eventDocument{
			ID:          r.ID,
			Name:        r.Name,
			Payload:     r.Payload,
			OccurredAt:  r.OccurredAt,
			Aggregate:   r.Aggregate,
			Headers:     r.Headers,
			State:       StateNew,
			NextAttempt: now,
			CreatedAt:   now,
		})
	}
	_, err := s.col.InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) Claim(ctx context.Context, workerID string, now time.Time) (*Pending, error) {
	filter := bson.M{
		"state":           bson.M{"$in": []string{StateNew, StateFailed}},
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"state": StateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "created_at", Value: 1}})
	var doc eventDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &Pending{
		EventRecord: appoutbox.EventRecord{
			ID:         doc.ID,
			Name:       doc.Name,
			Payload:    doc.Payload,
			OccurredAt: doc.OccurredAt,
			Aggregate:  doc.Aggregate,
			Headers:    doc.Headers,
		},
		Attempts: doc.Attempts,
	}, nil
}

func (s *MongoStore) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"state": StateSent, "sent_at": at}})
	return err
}

func (s *MongoStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"state":           StateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}

var (
	_ appoutbox.Sink = (*MongoStore)(nil)
	_ Store          = (*MongoStore)(nil)
)
