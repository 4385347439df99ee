// Package events announces pipeline progress to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/AngelCh415/revpipe/internal/models"
)

const (
	TypeUnitCompleted = "content.unit_completed"
	TypeUnitFailed    = "content.unit_failed"
	TypeRunCompleted  = "content.run_completed"
)

type Event struct {
	Type       string                    `json:"type"`
	RunID      string                    `json:"run_id"`
	Unit       *models.ContentUnit       `json:"unit,omitempty"`
	RecordID   string                    `json:"record_id,omitempty"`
	Stage      string                    `json:"stage,omitempty"`
	Error      string                    `json:"error,omitempty"`
	Prediction *models.RevenuePrediction `json:"prediction,omitempty"`
	Summary    *models.Summary           `json:"summary,omitempty"`
	OccurredAt time.Time                 `json:"occurred_at"`
}

// Key partitions unit events by country so a country's events stay ordered.
func (e Event) Key() string {
	if e.Unit != nil {
		return e.Unit.Country
	}
	return e.RunID
}

type Emitter interface {
	Emit(ctx context.Context, e Event) error
	Close() error
}

type Noop struct{}

func (Noop) Emit(context.Context, Event) error { return nil }
func (Noop) Close() error                      { return nil }

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaEmitter struct {
	writer messageWriter
	topic  string
}

func NewKafkaEmitter(brokers []string, topic string) (*KafkaEmitter, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka emitter requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka emitter requires a topic")
	}
	return &KafkaEmitter{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}, nil
}

func (k *KafkaEmitter) Emit(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic: k.topic,
		Key:   []byte(e.Key()),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
}

func (k *KafkaEmitter) Close() error { return k.writer.Close() }
