package api

import (
	"net/http" // HTTP status codes
	"time"     // CORS max age

	"society_ease/internal/billing"    // Bill lifecycle
	"society_ease/internal/config"     // Application configuration
	"society_ease/internal/middleware" // Auth and logging middleware
	"society_ease/internal/utils"      // Mailer

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the shared resources the handlers are built from
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client // nil disables response caching
	Config  *config.Config
	Mailer  utils.Mailer
	Billing *billing.Service
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	svc := d.Billing
	if svc == nil {
		svc = billing.NewService(d.DB)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	r.Static("/uploads", cfg.UploadDir) // Uploaded QR images

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)
	admin := middleware.AdminOnlyMiddleware(d.DB)

	// Auth routes
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", middleware.OptionalAuthMiddleware(cfg.JWTSecret), RegisterHandler(d.DB))
	authGroup.POST("/login", LoginHandler(d.DB, cfg.JWTSecret, cfg.JWTTTL))
	authGroup.POST("/forgot-password", ForgotPasswordHandler(d.DB, d.Mailer, cfg.FrontendURL))
	authGroup.POST("/reset-password/:token", ResetPasswordHandler(d.DB))
	authGroup.GET("/me", auth, MeHandler(d.DB))
	authGroup.GET("/me/:id", auth, middleware.SelfOrAdminMiddleware(d.DB, "id"), MeHandler(d.DB))

	// Routes for any signed in user
	secured := r.Group("/api", auth)
	secured.GET("/society/settings", GetSettingsHandler(d.DB, d.Redis))
	secured.GET("/notices", ListNoticesHandler(d.DB, d.Redis))
	secured.POST("/complaints", CreateComplaintHandler(d.DB))
	secured.PUT("/complaints/:id/resolve", admin, ResolveComplaintHandler(d.DB))
	secured.POST("/notifications", CreateNotificationHandler(d.DB))

	// Resident routes, restricted to the caller's own id unless admin
	resident := secured.Group("/resident")
	resident.PUT("/submit-payment", SubmitPaymentHandler(svc))
	own := resident.Group("", middleware.SelfOrAdminMiddleware(d.DB, "id"))
	own.GET("/dashboard-stats/:id", ResidentStatsHandler(d.DB, svc, "id"))
	own.GET("/unpaid-bills/:id", UnpaidBillsHandler(svc))
	own.GET("/payment-history/:id", PaymentHistoryHandler(svc))
	own.GET("/complaints/:id", ResidentComplaintsHandler(d.DB))
	own.PUT("/request-delete/:id", RequestDeleteHandler(d.DB))

	// The resident dashboard also reads this one, so it is self-or-admin rather than admin only
	secured.GET("/admin/resident-stats/:userId", middleware.SelfOrAdminMiddleware(d.DB, "userId"), ResidentStatsHandler(d.DB, svc, "userId"))

	// Admin routes
	adminGroup := secured.Group("/admin", admin)
	adminGroup.GET("/stats", AdminStatsHandler(d.DB, svc))
	adminGroup.GET("/financial-summary", FinancialSummaryHandler(d.DB, svc))
	adminGroup.GET("/chart-data", ChartDataHandler(d.DB, svc))

	adminGroup.POST("/generate-bills", GenerateBillsHandler(d.DB, svc))
	adminGroup.POST("/generate-monthly-bills", GenerateBillsHandler(d.DB, svc))
	adminGroup.GET("/payments", ListPaymentsHandler(svc))
	adminGroup.GET("/pending-verifications", PendingVerificationsHandler(svc))
	adminGroup.PUT("/verify-payment/:id", VerifyPaymentHandler(svc))

	adminGroup.GET("/complaints", AllComplaintsHandler(d.DB))
	adminGroup.DELETE("/complaints/:id", DeleteComplaintHandler(d.DB))

	adminGroup.POST("/notices", CreateNoticeHandler(d.DB, d.Redis))
	adminGroup.PUT("/notices/:id", UpdateNoticeHandler(d.DB, d.Redis))
	adminGroup.DELETE("/notices/:id", DeleteNoticeHandler(d.DB, d.Redis))

	adminGroup.GET("/expenses", ListExpensesHandler(d.DB))
	adminGroup.POST("/expenses", CreateExpenseHandler(d.DB))
	adminGroup.PUT("/expenses/:id", UpdateExpenseHandler(d.DB))
	adminGroup.DELETE("/expenses/:id", DeleteExpenseHandler(d.DB))

	adminGroup.GET("/notifications", ListNotificationsHandler(d.DB))

	adminGroup.PUT("/update-society-settings", UpdateSettingsHandler(d.DB, d.Redis))
	adminGroup.POST("/upload-qr", UploadQRHandler(d.DB, d.Redis, cfg.UploadDir))

	adminGroup.GET("/residents", ListResidentsHandler(d.DB))
	adminGroup.POST("/residents", CreateResidentHandler(d.DB))
	adminGroup.DELETE("/residents/:id", DeleteResidentHandler(d.DB))
	adminGroup.GET("/delete-requests-count", DeleteRequestsCountHandler(d.DB))
	adminGroup.GET("/list-admins", ListAdminsHandler(d.DB))
	adminGroup.DELETE("/remove-admin/:id", RemoveAdminHandler(d.DB))

	return r
}
