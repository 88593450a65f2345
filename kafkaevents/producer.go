// Package kafkaevents publishes ProcessingLog events for downstream
// collaborators (a public notification service, the out-of-scope
// admin facade) so they can react to batch completion without polling
// the store.
package kafkaevents

import (
	"encoding/json"
	"log"

	"github.com/IBM/sarama"

	"newsroom/types"
)

// Producer wraps a sarama synchronous producer. This pipeline is the
// source of ProcessingLog events; it does not consume any Kafka topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects to brokers and returns a Producer publishing to
// topic. A nil *Producer (see PublishProcessingLog) makes the feature cleanly
// optional when Kafka isn't configured.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// Close releases the underlying producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishProcessingLog best-effort publishes record; failures are
// logged and never propagate to the caller, matching spec.md §7's
// propagation policy for the processing log's emission.
func (p *Producer) PublishProcessingLog(record types.ProcessingLog) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		log.Printf("kafkaevents: marshal processing log: %v", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Printf("kafkaevents: publish processing log: %v", err)
	}
}
