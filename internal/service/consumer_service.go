package service

import (
	"context"
	"fmt"

	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/pkg/mailer"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process lifecycle topic. Every event is forwarded
// to the external stream and, for user-facing transitions, mailed to the owner.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	forwarder  events.Publisher
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

// NewConsumerService wires the consumer. forwarder may be nil when no external stream is configured.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	forwarder events.Publisher,
	mailer mailer.IEmailService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		forwarder:  forwarder,
		mailer:     mailer,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	evt, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("CONSUMER", "Dropping undecodable message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// The external stream buffers through reconnects, so a failed forward is logged, not retried here.
	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, evt); err != nil {
			cs.logger.Warn("CONSUMER", "Failed to forward event", map[string]interface{}{
				"type":  evt.Type,
				"error": err.Error(),
			})
		}
	}

	notice, ok := noticeFor(evt)
	if !ok {
		msg.Ack()
		return
	}

	userId, err := uuid.Parse(fmt.Sprint(evt.Data["user_id"]))
	if err != nil {
		cs.logger.Warn("CONSUMER", "Event has no owner", map[string]interface{}{"type": evt.Type})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to load event owner", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}
	if user == nil || user.Email == "" {
		msg.Ack()
		return
	}

	// Mail delivery is best effort; the mailer logs its own failures.
	_ = cs.mailer.SendNotice(user.Email, notice)
	msg.Ack()
}

// noticeFor builds the email for events the owner should hear about.
func noticeFor(evt events.BaseEvent) (mailer.Notice, bool) {
	field := func(key string) string {
		if v, ok := evt.Data[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}

	switch evt.Type {
	case events.MealBooked:
		return mailer.Notice{
			Subject: "Your meal is booked",
			Heading: "Meal booked",
			Lines: []string{
				fmt.Sprintf("Your %s on %s is reserved.", field("meal_type"), field("meal_date")),
				fmt.Sprintf("Amount due: %s", field("amount")),
			},
		}, true
	case events.MealCancelled:
		return mailer.Notice{
			Subject: "Your meal was cancelled",
			Heading: "Meal cancelled",
			Lines:   []string{fmt.Sprintf("Your %s on %s has been cancelled.", field("meal_type"), field("meal_date"))},
		}, true
	case events.PaymentCompleted:
		return mailer.Notice{
			Subject: "Payment received",
			Heading: "Payment received",
			Lines:   []string{fmt.Sprintf("We received your payment of %s.", field("amount"))},
		}, true
	case events.PaymentRefunded:
		return mailer.Notice{
			Subject: "Refund issued",
			Heading: "Refund issued",
			Lines:   []string{fmt.Sprintf("A refund of %s is on its way.", field("amount"))},
		}, true
	case events.RefundRejected:
		return mailer.Notice{
			Subject: "Refund request declined",
			Heading: "Refund request declined",
			Lines:   []string{"Your refund request was reviewed and declined."},
		}, true
	case events.SubscriptionCancelled:
		return mailer.Notice{
			Subject: "Subscription cancelled",
			Heading: "Subscription cancelled",
			Lines:   []string{"Your meal subscription has been cancelled. Meals already scheduled are kept."},
		}, true
	}
	return mailer.Notice{}, false
}
