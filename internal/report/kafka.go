package report

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"roulette-bot/internal/game/roulette"
)

// DefaultTopic is the topic used when none is configured.
const DefaultTopic = "roulette.rounds"

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes resolved rounds to a Kafka topic, keyed by table so a
// table's rounds stay ordered within one partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not provided")
	}
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
	return newKafkaPublisher(writer, topic), nil
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, now: time.Now}
}

// Publish writes one round.
func (p *KafkaPublisher) Publish(ctx context.Context, result *roulette.RoundResult) error {
	value, err := Encode(result)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   tableKey(result),
		Value: value,
		Time:  p.now(),
	})
}

// ReportRound implements roulette.Reporter. Failures are logged.
func (p *KafkaPublisher) ReportRound(ctx context.Context, result *roulette.RoundResult) {
	if err := p.Publish(ctx, result); err != nil {
		log.Error().Err(err).
			Str("topic", p.topic).
			Str("round_id", result.RoundID).
			Msg("Failed to publish round to kafka")
		return
	}
	log.Debug().Str("topic", p.topic).Str("round_id", result.RoundID).Msg("Round published to kafka")
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
