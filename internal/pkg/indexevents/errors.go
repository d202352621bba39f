package indexevents

import "errors"

var (
	ErrNilProducer = errors.New("kafka producer is nil")
	ErrEmptyTopic  = errors.New("kafka topic is empty")
)
