package events

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// BusPublisher puts events on an in-process watermill topic.
type BusPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewBusPublisher(publisher message.Publisher, topic string) *BusPublisher {
	return &BusPublisher{publisher: publisher, topic: topic}
}

func (p *BusPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := Encode(evt)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", evt.EventType())
	return p.publisher.Publish(p.topic, msg)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, evt := range r.events {
		types[i] = evt.EventType()
	}
	return types
}

func (r *Recorder) Count(eventType string) int {
	n := 0
	for _, t := range r.Types() {
		if t == eventType {
			n++
		}
	}
	return n
}
