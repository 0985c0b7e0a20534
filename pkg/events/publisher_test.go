package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublisherRoundTrip(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, "lifecycle")
	require.NoError(t, err)

	bus := NewBusPublisher(pubSub, "lifecycle")
	require.NoError(t, bus.Publish(ctx, New(MealBooked, map[string]interface{}{"meal_id": "m-1"})))

	select {
	case msg := <-messages:
		evt, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, MealBooked, evt.Type)
		assert.Equal(t, "m-1", evt.Data["meal_id"])
		assert.Equal(t, MealBooked, msg.Metadata.Get("event_type"))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	_ = r.Publish(context.Background(), New(PaymentCompleted, nil))
	_ = r.Publish(context.Background(), New(PaymentCompleted, nil))
	_ = r.Publish(context.Background(), New(MealConfirmed, nil))

	assert.Equal(t, 2, r.Count(PaymentCompleted))
	assert.Equal(t, []string{PaymentCompleted, PaymentCompleted, MealConfirmed}, r.Types())
}
