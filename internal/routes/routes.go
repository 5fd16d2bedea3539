package routes

import (
	"github.com/JasimIhsan/MentorsHub-sub000/internal/config"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/gateway"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/handlers"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/middleware"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/services"
	notifyws "github.com/JasimIhsan/MentorsHub-sub000/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services, and handlers together and
// mounts every route. It returns the session service so the caller can hang
// background workers off it.
func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) *services.SessionService {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	rescheduleRepo := repository.NewRescheduleRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := notifyws.NewHub()
	go hub.Run()
	notificationService := services.NewNotificationService(notificationRepo, hub)

	paymentGateway := gateway.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	availabilityService := services.NewAvailabilityService(availabilityRepo, sessionRepo)
	settlementService := services.NewSettlementService(services.FeeConfig{
		FixedFee:       cfg.PlatformFixedFee,
		CommissionRate: cfg.PlatformCommissionRate,
	})
	sessionService := services.NewSessionService(
		db,
		sessionRepo,
		userRepo,
		availabilityService,
		settlementService,
		notificationService,
		cfg.CancelCutoff,
		cfg.PaymentWindow,
	)
	rescheduleService := services.NewRescheduleService(db, rescheduleRepo, sessionRepo, notificationService)
	walletService := services.NewWalletService(db, walletRepo, paymentGateway, notificationService)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	rescheduleHandler := handlers.NewRescheduleHandler(rescheduleService)
	walletHandler := handlers.NewWalletHandler(walletService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, hub, cfg.JWTSecret)

	api := app.Group("/api")
	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	mentors := v1.Group("/mentors")
	mentors.Get("/:mentorId/availability", availabilityHandler.AvailableSlots)

	sessions := v1.Group("/sessions")
	sessions.Post("/request", sessionHandler.RequestSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Put("/:id/status", sessionHandler.UpdateStatus)
	sessions.Post("/:id/pay", sessionHandler.ConfirmPayment)

	sessions.Post("/:id/reschedule", rescheduleHandler.Propose)
	sessions.Get("/:id/reschedule", rescheduleHandler.GetForSession)
	sessions.Put("/:id/reschedule", rescheduleHandler.Counter)
	sessions.Put("/:id/reschedule/resolve", rescheduleHandler.Resolve)

	wallet := v1.Group("/wallet")
	wallet.Get("", walletHandler.GetWallet)
	wallet.Get("/transactions", walletHandler.Transactions)
	wallet.Post("/top-up", walletHandler.TopUp)
	wallet.Get("/withdrawals", walletHandler.Withdrawals)
	wallet.Post("/withdrawals", walletHandler.RequestWithdrawal)
	wallet.Put("/withdrawals/:id", walletHandler.ResolveWithdrawal)

	notifications := v1.Group("/notifications")
	notifications.Get("", notificationHandler.List)
	notifications.Put("/:id/read", notificationHandler.MarkRead)

	api.Use("/v1/ws", notificationHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(notificationHandler.HandleWebSocket))

	return sessionService
}
