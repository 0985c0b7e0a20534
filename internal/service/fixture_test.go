package service

import (
	"context"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/memory"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/internal/testsupport"
	"meal-ordering-be/pkg/admin/dashboard"
	adminEvents "meal-ordering-be/pkg/admin/events"
	"meal-ordering-be/pkg/admin/plan"
	"meal-ordering-be/pkg/admin/refund"
	"meal-ordering-be/pkg/admin/subscription"
	"meal-ordering-be/pkg/admin/user"
	"meal-ordering-be/pkg/booking"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment"
	"meal-ordering-be/pkg/payment/paymenttest"
	"meal-ordering-be/pkg/reconcile"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

type services struct {
	factory  unitofwork.RepositoryFactory
	clock    *testsupport.Clock
	gateway  *paymenttest.Gateway
	recorder *events.Recorder

	meals   IMealService
	pay     IPaymentService
	catalog ICatalogService
	admin   IAdminService
}

func newServices(t *testing.T) *services {
	t.Helper()

	s := &services{
		factory:  testsupport.NewFactory(t),
		clock:    testsupport.NewClock(monday),
		gateway:  paymenttest.NewGateway(),
		recorder: events.NewRecorder(),
	}
	l := locker.NewMemoryLocker()
	log := logger.NewNopLogger()
	adminPublisher := adminEvents.NewBusPublisher(s.recorder, log)

	reconciler := reconcile.NewReconciler(s.gateway, l, s.recorder, log, reconcile.WithClock(s.clock.Now))
	engine := booking.NewEngine(l, s.recorder, reconciler, log,
		booking.WithClock(s.clock.Now),
		booking.WithLocation(time.UTC),
	)

	s.meals = NewMealService(s.factory, engine)
	s.pay = NewPaymentService(s.factory, reconciler)
	s.catalog = NewCatalogService(s.factory, plan.NewManager(log, adminPublisher, s.clock.Now), memory.NewPlanCache(time.Minute))
	s.admin = NewAdminService(s.factory, log,
		user.NewManager(log, adminPublisher, s.clock.Now),
		subscription.NewManager(log, adminPublisher, s.clock.Now),
		refund.NewProcessor(log, adminPublisher, reconciler, l, s.clock.Now),
		dashboard.NewAggregator(log, s.clock.Now, time.UTC),
	)
	return s
}

// settle delivers a completed notification for a checkout.
func (s *services) settle(t *testing.T, paymentId uuid.UUID) {
	t.Helper()
	p := testsupport.FindPayment(t, s.factory, paymentId)
	_, err := s.pay.HandleNotification(context.Background(),
		paymenttest.Notify("settle-"+paymentId.String(), payment.EventCheckoutCompleted, p.ProcessorPaymentRef))
	require.NoError(t, err)
}

func (s *services) seed(t *testing.T, role entity.UserRole) (*entity.User, entity.Principal) {
	t.Helper()
	u := testsupport.SeedUser(t, s.factory, role)
	return u, testsupport.Principal(u)
}
