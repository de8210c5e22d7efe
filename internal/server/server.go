package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"courtslot/internal/auth"
	"courtslot/internal/availability"
	"courtslot/internal/center"
	"courtslot/internal/config"
	"courtslot/internal/court"
	"courtslot/internal/promotion"
	"courtslot/internal/reservation"
	"courtslot/internal/user"
	"courtslot/internal/wallet"
)

type Server struct {
	router *gin.Engine
	httpd  *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, cache *availability.Cache) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	courtRepo := court.NewRepository(db)
	centerRepo := center.NewRepository(db)
	reservationRepo := reservation.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	promotionRepo := promotion.NewRepository(db)

	availabilityService := availability.NewService(db, courtRepo, centerRepo, reservationRepo, cache, cfg.SlotStepMinutes)
	reservationService := reservation.NewService(db, reservationRepo, courtRepo, centerRepo, walletRepo, promotionRepo, cache, cfg.CheckoutBaseURL)

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	centerHandler := center.NewHandler(db)
	courtHandler := court.NewHandler(db, cache)
	availabilityHandler := availability.NewHandler(availabilityService)
	reservationHandler := reservation.NewHandler(reservationService)
	walletHandler := wallet.NewHandler(db)
	promotionHandler := promotion.NewHandler(db, walletRepo)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/centers", centerHandler.ListCenters)
		protected.GET("/centers/:centerID/schedule", centerHandler.GetSchedule)
		protected.GET("/centers/:centerID/courts", courtHandler.ListCourtsByCenter)

		protected.GET("/courts/:courtID/availability", availabilityHandler.GetAvailability)

		protected.POST("/reservations", reservationHandler.CreateReservation)
		protected.GET("/reservations/:reservationID", reservationHandler.GetReservation)
		protected.GET("/reservations", reservationHandler.GetMyReservations)
		protected.POST("/reservations/:reservationID/pay", reservationHandler.Pay)
		protected.POST("/reservations/:reservationID/cancel", reservationHandler.Cancel)

		protected.GET("/wallet", walletHandler.GetWallet)
		protected.GET("/wallet/ledger", walletHandler.GetLedger)

		protected.GET("/promotions/active", promotionHandler.ListActive)
		protected.POST("/promotions/:promotionID/apply", promotionHandler.Apply)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/centers", centerHandler.CreateCenter)
		admin.PUT("/centers/:centerID/schedule", centerHandler.UpdateSchedule)

		admin.POST("/courts", courtHandler.CreateCourt)
		admin.PATCH("/courts/:courtID/active", courtHandler.SetCourtActive)
		admin.POST("/courts/:courtID/maintenance", courtHandler.CreateMaintenance)
		admin.PATCH("/maintenance/:maintenanceID/status", courtHandler.UpdateMaintenanceStatus)

		admin.GET("/courts/:courtID/reservations", reservationHandler.GetCourtReservations)

		admin.POST("/wallet/topup", walletHandler.TopUp)

		admin.POST("/promotions", promotionHandler.CreatePromotion)
		admin.PATCH("/promotions/:promotionID/status", promotionHandler.SetStatus)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics)
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.httpd = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpd.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpd == nil {
		return nil
	}
	return s.httpd.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
