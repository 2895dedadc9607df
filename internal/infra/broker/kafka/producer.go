package kafka

import (
	"context"
	"fmt"
	"sort"

	"github.com/IBM/sarama"
)

// Producer publishes relayed outbox events with idempotent, fully acked writes.
type Producer struct {
	sync sarama.SyncProducer
}

// NewConfig returns the producer settings the relay relies on: acks from
// all in-sync replicas and idempotent retries, so a relayed event is never
// duplicated by the client itself.
func NewConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 5
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = NewConfig("staybook")
	}
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Producer{sync: sync}, nil
}

// NewProducerWith wraps an existing sync producer.
func NewProducerWith(sync sarama.SyncProducer) *Producer {
	return &Producer{sync: sync}
}

// Publish keys messages by aggregate so one booking's events stay ordered
// within a partition.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for _, k := range names {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
