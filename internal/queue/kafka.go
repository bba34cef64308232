package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/smukkama/factory-monitor/internal/protocol"
)

// ErrMalformedReading marks a fetched message whose payload is not a reading
// envelope. The delivery is still returned so it can be acknowledged.
var ErrMalformedReading = errors.New("malformed reading message")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Offset() int64
	Stats() kafka.ReaderStats
	Close() error
}

// ReadingProducer publishes live readings keyed by machine id, so every
// reading of a machine lands on the same partition in order.
type ReadingProducer struct {
	writer messageWriter
}

func NewReadingProducer(brokers []string, topic string) *ReadingProducer {
	return &ReadingProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Name identifies the sink in logs
func (p *ReadingProducer) Name() string { return "kafka" }

// Deliver encodes msg and writes it to the readings topic
func (p *ReadingProducer) Deliver(ctx context.Context, msg *protocol.ReadingMessage) error {
	data, err := protocol.EncodeReadingMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.MachineID),
		Value:   data,
		Headers: []kafka.Header{{Key: "type", Value: []byte(msg.Type)}},
	})
	if err != nil {
		return fmt.Errorf("failed to write reading for %s: %w", msg.MachineID, err)
	}
	return nil
}

func (p *ReadingProducer) Close() error {
	return p.writer.Close()
}

// Delivery is a fetched message together with its decoded reading. Reading
// is nil when the payload was malformed.
type Delivery struct {
	Reading   *protocol.ReadingMessage
	Partition int
	Offset    int64

	raw kafka.Message
}

// ReadingConsumer follows the readings topic. With a group ID offsets are
// committed through Ack; without one the reader tails partition 0 from the
// newest offset and Ack is a no-op.
type ReadingConsumer struct {
	reader  messageReader
	groupID string
}

func NewReadingConsumer(brokers []string, topic, groupID string) (*ReadingConsumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
		StartOffset:    kafka.LastOffset,
	})

	// StartOffset only applies to group readers; a partition reader begins
	// at FirstOffset unless told otherwise.
	if groupID == "" {
		if err := reader.SetOffset(kafka.LastOffset); err != nil {
			reader.Close()
			return nil, fmt.Errorf("failed to seek to newest offset: %w", err)
		}
	}

	return &ReadingConsumer{reader: reader, groupID: groupID}, nil
}

// ConsumeReading blocks for the next message and decodes it. A payload that
// does not decode yields ErrMalformedReading alongside the delivery.
func (c *ReadingConsumer) ConsumeReading(ctx context.Context) (Delivery, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("failed to fetch message: %w", err)
	}

	d := Delivery{Partition: msg.Partition, Offset: msg.Offset, raw: msg}
	reading, err := protocol.DecodeReadingMessage(msg.Value)
	if err != nil {
		return d, fmt.Errorf("%w at offset %d: %v", ErrMalformedReading, msg.Offset, err)
	}
	d.Reading = reading
	return d, nil
}

// Ack commits the delivery's offset for the consumer group
func (c *ReadingConsumer) Ack(ctx context.Context, d Delivery) error {
	if c.groupID == "" {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, d.raw); err != nil {
		return fmt.Errorf("failed to commit offset %d: %w", d.Offset, err)
	}
	return nil
}

// Offset is the next offset a partition reader will fetch, or -1 for group
// readers.
func (c *ReadingConsumer) Offset() int64 {
	return c.reader.Offset()
}

func (c *ReadingConsumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

func (c *ReadingConsumer) Close() error {
	return c.reader.Close()
}

// EnsureTopic creates the readings topic through the cluster controller. An
// existing topic is not an error.
func EnsureTopic(brokers []string, topic string, numPartitions, replicationFactor int) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		log.Debug().Str("topic", topic).Msg("topic already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}

	log.Info().Str("topic", topic).Int("partitions", numPartitions).Msg("created topic")
	return nil
}
