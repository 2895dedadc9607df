package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSendsKeyedMessage(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "b-1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != "content-type" {
			return errors.New("headers not sorted")
		}
		return nil
	})

	p := NewProducerWith(sync)
	err := p.Publish(context.Background(), "booking.events.v1", "b-1", []byte(`{}`), map[string]string{
		"traceparent":  "00-abc",
		"content-type": "application/cloudevents+json",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishWrapsBrokerErrors(t *testing.T) {
	sync := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	sync.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWith(sync)
	err := p.Publish(context.Background(), "booking.events.v1", "b-1", []byte(`{}`), nil)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	sync := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	p := NewProducerWith(sync)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
	require.NoError(t, p.Close())
}

func TestNewConfigIsIdempotent(t *testing.T) {
	cfg := NewConfig("staybook-test")
	assert.True(t, cfg.Producer.Idempotent)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.NoError(t, cfg.Validate())
}
