package router

import (
	"time"

	"roost/config"
	"roost/internal/domain"
	"roost/internal/handler"
	"roost/internal/middleware"
	"roost/internal/repository"
	"roost/internal/service"
	"roost/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App bundles everything Setup wires, so main and the background worker share
// one set of services.
type App struct {
	Engine   *gin.Engine
	Bookings *service.BookingService
	Payouts  *service.PayoutService
	Sweep    *service.SweepService
	Notifs   *service.NotificationService
}

// Setup wires repositories, services and handlers onto a gin engine.
func Setup(db *gorm.DB, cfg *config.Config, gateway payment.Gateway, queue *asynq.Client, log *zap.Logger) *App {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := repository.NewUserRepository(db)
	experienceRepo := repository.NewExperienceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifSvc := service.NewNotificationService(notificationRepo, queue, log)
	bookingSvc := service.NewBookingService(db, bookingRepo, txnRepo, experienceRepo, partnerRepo, userRepo, settingRepo, gateway, notifSvc, cfg, log)
	payoutSvc := service.NewPayoutService(db, bookingRepo, txnRepo, userRepo, settingRepo, gateway, notifSvc, log)
	sweepSvc := service.NewSweepService(db, bookingRepo, txnRepo, bookingSvc, log)

	authHandler := handler.NewAuthHandler(userRepo, cfg)
	experienceHandler := handler.NewExperienceHandler(experienceRepo)
	bookingHandler := handler.NewBookingHandler(bookingSvc, bookingRepo, txnRepo)
	paymentHandler := handler.NewPaymentHandler(bookingSvc)
	payoutHandler := handler.NewPayoutHandler(payoutSvc)
	partnerHandler := handler.NewPartnerHandler(partnerRepo)
	walletHandler := handler.NewWalletHandler(txnRepo)
	adminHandler := handler.NewAdminHandler(settingRepo)
	sweepHandler := handler.NewSweepHandler(sweepSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(120, time.Minute)))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/experiences", experienceHandler.ListActive)
		v1.GET("/experiences/:id", experienceHandler.Get)

		// Gateway redirect target; the checkout token is the credential.
		v1.POST("/payments/callback", paymentHandler.Callback)

		authed := v1.Group("", middleware.AuthRequired(cfg))
		{
			authed.GET("/bookings", bookingHandler.ListMine)
			authed.GET("/bookings/:id", bookingHandler.Get)
			authed.POST("/bookings", middleware.RequireRole(domain.RoleGuest), bookingHandler.Create)
			authed.POST("/bookings/:id/approve", middleware.RequireRole(domain.RoleHost, domain.RoleAdmin), bookingHandler.Approve)
			authed.POST("/bookings/:id/reject", middleware.RequireRole(domain.RoleHost, domain.RoleAdmin), bookingHandler.Reject)
			authed.POST("/bookings/:id/refund", bookingHandler.Refund)

			host := authed.Group("/host", middleware.RequireRole(domain.RoleHost))
			{
				host.POST("/experiences", experienceHandler.Create)
				host.GET("/experiences", experienceHandler.ListMine)
				host.GET("/balance", walletHandler.GetBalance)
				host.GET("/transactions", walletHandler.ListTransactions)
			}

			partner := authed.Group("/partner", middleware.RequireRole(domain.RolePartner))
			{
				partner.GET("/code", partnerHandler.GetCode)
				partner.GET("/balance", walletHandler.GetBalance)
				partner.GET("/transactions", walletHandler.ListTransactions)
			}

			authed.GET("/notifications", notificationHandler.List)
			authed.POST("/notifications/:id/read", notificationHandler.MarkRead)

			admin := authed.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
			{
				admin.GET("/settings", adminHandler.ListSettings)
				admin.PUT("/settings/:key", adminHandler.UpdateSetting)
				admin.GET("/payouts/partners", payoutHandler.ListPartnerBalances)
				admin.POST("/payouts/partners/:id", payoutHandler.PayoutPartner)
				admin.POST("/payouts/hosts/:id", payoutHandler.PayoutHost)
				admin.POST("/bookings/:id/complete", bookingHandler.Complete)
			}
		}

		internal := v1.Group("/internal", middleware.CronAuth(cfg.CronSecret))
		{
			internal.POST("/cron/completions", sweepHandler.Run)
		}
	}

	return &App{
		Engine:   r,
		Bookings: bookingSvc,
		Payouts:  payoutSvc,
		Sweep:    sweepSvc,
		Notifs:   notifSvc,
	}
}
