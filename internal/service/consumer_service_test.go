package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/pkg/mailer"
	"meal-ordering-be/internal/testsupport"
	"meal-ordering-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentNotice struct {
	to     string
	notice mailer.Notice
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentNotice
}

func (m *fakeMailer) SendNotice(to string, notice mailer.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentNotice{to: to, notice: notice})
	return nil
}

func (m *fakeMailer) Sent() []sentNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentNotice(nil), m.sent...)
}

func TestConsumerForwardsAndMails(t *testing.T) {
	factory := testsupport.NewFactory(t)
	user := testsupport.SeedUser(t, factory, entity.UserRoleStudent)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	forwarder := events.NewRecorder()
	mail := &fakeMailer{}
	consumer := NewConsumerService(pubSub, "lifecycle", factory, forwarder, mail, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	bus := events.NewBusPublisher(pubSub, "lifecycle")
	require.NoError(t, bus.Publish(ctx, events.New(events.MealBooked, map[string]interface{}{
		"user_id":   user.Id.String(),
		"meal_type": "lunch",
		"meal_date": "2024-03-11",
		"amount":    "12.50",
	})))
	require.NoError(t, bus.Publish(ctx, events.New(events.PlanCreated, map[string]interface{}{"plan_id": "p-1"})))

	assert.Eventually(t, func() bool {
		return forwarder.Count(events.MealBooked) == 1 && forwarder.Count(events.PlanCreated) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return len(mail.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
	sent := mail.Sent()[0]
	assert.Equal(t, user.Email, sent.to)
	assert.Equal(t, "Your meal is booked", sent.notice.Subject)
	assert.Contains(t, sent.notice.Lines[0], "lunch on 2024-03-11")
}

func TestConsumerAcksUndecodableMessages(t *testing.T) {
	factory := testsupport.NewFactory(t)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	forwarder := events.NewRecorder()
	mail := &fakeMailer{}
	consumer := NewConsumerService(pubSub, "lifecycle", factory, forwarder, mail, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish("lifecycle", message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	bus := events.NewBusPublisher(pubSub, "lifecycle")
	require.NoError(t, bus.Publish(ctx, events.New(events.RefundRequested, map[string]interface{}{"refund_request_id": "r-1"})))

	// The second event only arrives once the first message has been acked.
	assert.Eventually(t, func() bool { return forwarder.Count(events.RefundRequested) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, mail.Sent())
}

func TestNoticeForSkipsInternalEvents(t *testing.T) {
	_, ok := noticeFor(events.New(events.PlanDeactivated, nil))
	assert.False(t, ok)

	notice, ok := noticeFor(events.New(events.PaymentRefunded, map[string]interface{}{"amount": "9.00"}))
	require.True(t, ok)
	assert.Equal(t, []string{"A refund of 9.00 is on its way."}, notice.Lines)
}
