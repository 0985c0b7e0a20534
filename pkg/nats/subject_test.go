package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"meal-ordering-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.MEAL_BOOKED", Subject(events.MealBooked))
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	marker := uuid.NewString()
	received := make(chan events.Event, 8)
	err = sub.Subscribe(ctx, Subject(events.PaymentCompleted), "test-"+marker, func(ctx context.Context, e events.Event) error {
		received <- e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, events.New(events.PaymentCompleted, map[string]interface{}{"marker": marker})))

	for {
		select {
		case e := <-received:
			if e.Payload()["marker"] == marker {
				assert.Equal(t, events.PaymentCompleted, e.EventType())
				return
			}
		case <-ctx.Done():
			t.Fatal("event not received")
		}
	}
}
