package indexevents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	var sent Event

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}

		if string(key) != "00ff" {
			return errors.New("unexpected key " + string(key))
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}

		return json.Unmarshal(value, &sent)
	})

	p, err := NewKafkaPublisher(producer, "addrindex-blocks", nil)
	require.NoError(t, err)

	event := Event{Type: EventTypeConnected, Hash: "00ff", Height: 7, Operations: 3}
	require.NoError(t, p.Publish(context.Background(), event))
	require.Equal(t, event.Hash, sent.Hash)
	require.Equal(t, event.Type, sent.Type)
	require.Equal(t, event.Operations, sent.Operations)

	require.NoError(t, p.Close())
}

func TestKafkaPublisherSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p, err := NewKafkaPublisher(producer, "addrindex-blocks", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), Event{Type: EventTypeDisconnected, Hash: "00"})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	require.NoError(t, p.Close())
}

func TestNewKafkaPublisherValidation(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "t", nil)
	require.ErrorIs(t, err, ErrNilProducer)

	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	_, err = NewKafkaPublisher(producer, "", nil)
	require.ErrorIs(t, err, ErrEmptyTopic)
}
