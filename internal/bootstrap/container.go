package bootstrap

import (
	"context"
	"log"

	"meal-ordering-be/internal/config"
	"meal-ordering-be/internal/controller"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/pkg/mailer"
	"meal-ordering-be/internal/repository/memory"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/internal/service"
	"meal-ordering-be/pkg/admin/dashboard"
	adminEvents "meal-ordering-be/pkg/admin/events"
	"meal-ordering-be/pkg/admin/plan"
	"meal-ordering-be/pkg/admin/refund"
	"meal-ordering-be/pkg/admin/subscription"
	"meal-ordering-be/pkg/admin/user"
	"meal-ordering-be/pkg/booking"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment/midtrans"
	"meal-ordering-be/pkg/reconcile"

	pktNats "meal-ordering-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	PlanController    controller.IPlanController
	MealController    controller.IMealController
	PaymentController controller.IPaymentController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger *logger.ZapLogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	loc := cfg.Location()
	c := &Container{Logger: sysLogger}

	var emailService mailer.IEmailService
	if cfg.SMTP.Enabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	} else {
		log.Printf("[INFO] SMTP not configured, owner notices are logged only")
		emailService = mailer.NewNoopEmailService(sysLogger)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	bus := events.NewBusPublisher(pubSub, cfg.App.EventTopic)

	// 2.5 Infrastructure
	// NATS is optional; without it events stay in-process.
	var forwarder events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var lk locker.Locker = locker.NewMemoryLocker()
	if cfg.Booking.UseRedisLocks {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Using in-process locks", err)
		} else {
			lk = locker.NewRedisLocker(rdb, cfg.Booking.LockTTL, sysLogger)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// 3. Lifecycle Components
	gateway := midtrans.NewGateway(midtrans.Config{
		ServerKey:    cfg.Payment.MidtransServerKey,
		IsProduction: cfg.Payment.IsProduction,
		FinishURL:    cfg.Payment.FinishURL,
	})
	reconciler := reconcile.NewReconciler(gateway, lk, bus, sysLogger,
		reconcile.WithLockTimeout(cfg.Booking.LockTimeout),
	)
	engine := booking.NewEngine(lk, bus, reconciler, sysLogger,
		booking.WithLocation(loc),
		booking.WithLockTimeout(cfg.Booking.LockTimeout),
	)

	// Admin Domain Components
	adminEventPublisher := adminEvents.NewBusPublisher(bus, sysLogger)
	userManager := user.NewManager(sysLogger, adminEventPublisher, engine.Now)
	subscriptionManager := subscription.NewManager(sysLogger, adminEventPublisher, engine.Now)
	planManager := plan.NewManager(sysLogger, adminEventPublisher, engine.Now)
	refundProcessor := refund.NewProcessor(sysLogger, adminEventPublisher, reconciler, lk, engine.Now)
	dashboardAggregator := dashboard.NewAggregator(sysLogger, engine.Now, loc)

	// 4. Services
	catalogService := service.NewCatalogService(uowFactory, planManager, memory.NewPlanCache(cfg.Booking.PlanCacheTTL))
	authService := service.NewAuthService(uowFactory, sysLogger, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mealService := service.NewMealService(uowFactory, engine)
	paymentService := service.NewPaymentService(uowFactory, reconciler)
	adminService := service.NewAdminService(
		uowFactory,
		sysLogger,
		userManager,
		subscriptionManager,
		refundProcessor,
		dashboardAggregator,
	)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.EventTopic,
		uowFactory,
		forwarder,
		emailService,
		sysLogger,
	)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.PlanController = controller.NewPlanController(catalogService)
	c.MealController = controller.NewMealController(mealService)
	c.PaymentController = controller.NewPaymentController(paymentService, sysLogger)
	c.AdminController = controller.NewAdminController(adminService, catalogService)

	return c
}

// Close releases bus and broker connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
