// Package audit ships persisted audit entries to sinks outside the database.
// The database row is the record of truth; shipping is best-effort.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"marketplace/internal/models"
)

// Entry is the wire shape of a shipped audit record.
type Entry struct {
	ID          uint      `json:"id"`
	Action      string    `json:"action"`
	Target      string    `json:"target"`
	PerformedBy string    `json:"performed_by"`
	ActorID     uint      `json:"actor_id,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntryFromLog converts a persisted audit row.
func EntryFromLog(l *models.AuditLog) *Entry {
	return &Entry{
		ID:          l.ID,
		Action:      l.Action,
		Target:      l.Target,
		PerformedBy: l.PerformedBy,
		ActorID:     l.ActorID,
		RequestID:   l.RequestID,
		CreatedAt:   l.CreatedAt,
	}
}

// Shipper defines the interface for audit log shipping
type Shipper interface {
	// Ship sends an audit entry to the destination
	Ship(ctx context.Context, entry *Entry) error
	// Close cleans up any resources
	Close() error
}

// NopShipper discards entries. Used when no external sink is configured.
type NopShipper struct{}

func (NopShipper) Ship(context.Context, *Entry) error { return nil }
func (NopShipper) Close() error                       { return nil }

// messageWriter is the subset of *kafka.Writer the shipper uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaShipper publishes entries as JSON to a Kafka topic, keyed by entry id
// so all messages for one record land on one partition.
type KafkaShipper struct {
	writer messageWriter
}

// NewKafkaShipper creates an asynchronous Kafka writer for topic.
func NewKafkaShipper(brokers []string, topic string) (*KafkaShipper, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka shipper: at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka shipper: topic is required")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		Async:                  true,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaShipper(w), nil
}

func newKafkaShipper(w messageWriter) *KafkaShipper {
	return &KafkaShipper{writer: w}
}

// Ship encodes entry and hands it to the writer.
func (s *KafkaShipper) Ship(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return nil
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("kafka shipper: encode entry %d: %w", entry.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(entry.ID), 10)),
		Value: value,
		Time:  entry.CreatedAt,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka shipper: write entry %d: %w", entry.ID, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (s *KafkaShipper) Close() error {
	return s.writer.Close()
}
