package indexevents

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/encoding"
	"github.com/rs/zerolog"
)

// KafkaPublisher sends events to a topic keyed by block hash, so the events
// of one block land in one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	codec    encoding.Codec
	logger   *zerolog.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zerolog.Logger) (*KafkaPublisher, error) {
	if producer == nil {
		return nil, ErrNilProducer
	}

	if topic == "" {
		return nil, ErrEmptyTopic
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		codec:    encoding.JSON,
		logger:   logger,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := p.codec.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Hash),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}

	p.logger.Debug().
		Str("type", string(event.Type)).
		Str("hash", event.Hash).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("published index event")

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)
