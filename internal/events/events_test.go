package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/AngelCh415/revpipe/internal/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func TestKafkaEmitterWritesKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	k := &KafkaEmitter{writer: w, topic: "revpipe.content"}
	at := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	e := Event{Type: TypeUnitCompleted, RunID: "r1", Unit: &models.ContentUnit{Country: "UK", Keyword: "k"}, RecordID: "rec", OccurredAt: at}

	if err := k.Emit(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "revpipe.content" || string(m.Key) != "UK" || string(m.Headers[0].Value) != TypeUnitCompleted {
		t.Fatalf("message = %+v", m)
	}
	var back Event
	if err := json.Unmarshal(m.Value, &back); err != nil || back.RecordID != "rec" {
		t.Fatalf("payload = %s err %v", m.Value, err)
	}
	_ = k.Close()
	if !w.closed {
		t.Fatal("writer not closed")
	}
}

func TestNewKafkaEmitterValidation(t *testing.T) {
	if _, err := NewKafkaEmitter(nil, "t"); err == nil {
		t.Fatal("expected broker error")
	}
	if _, err := NewKafkaEmitter([]string{"localhost:9092"}, ""); err == nil {
		t.Fatal("expected topic error")
	}
}

func TestRecorderAndKey(t *testing.T) {
	r := &Recorder{}
	_ = r.Emit(context.Background(), Event{Type: TypeRunCompleted, RunID: "r9"})
	got := r.Events()
	if len(got) != 1 || got[0].Key() != "r9" {
		t.Fatalf("events = %+v", got)
	}
}
