package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/questions/pkg/config"
)

func TestNewProducerUsesQueryEventsTopic(t *testing.T) {
	cfg := config.Default().Kafka
	cfg.Topics.QueryEvents = "qa-test"
	p := NewProducer(cfg)
	defer p.Close()
	if p.Topic() != "qa-test" {
		t.Errorf("topic = %q, want qa-test", p.Topic())
	}
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encode(Event{Key: "digest-1", Value: map[string]int{"files": 2}}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(msg.Key) != "digest-1" {
		t.Errorf("key = %q", msg.Key)
	}
	if string(msg.Value) != `{"files":2}` {
		t.Errorf("value = %s", msg.Value)
	}
	if !msg.Time.Equal(at) {
		t.Errorf("time = %v, want %v", msg.Time, at)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != contentTypeJSON {
		t.Errorf("headers = %+v", msg.Headers)
	}
}

func TestPublishRejectsUnencodableValue(t *testing.T) {
	p := NewProducer(config.Default().Kafka)
	defer p.Close()
	err := p.Publish(context.Background(), Event{Key: "k", Value: make(chan int)})
	if err == nil {
		t.Fatal("expected encoding error")
	}
}
