package app

import (
	"net/http"
	"time"

	"fahran-backend/internal/auth"
	"fahran-backend/internal/config"
	"fahran-backend/internal/database"
	"fahran-backend/internal/emails"
	"fahran-backend/internal/health"
	"fahran-backend/internal/members"
	"fahran-backend/internal/middleware"
	"fahran-backend/internal/payments"
	"fahran-backend/internal/pkg/locker"
	"fahran-backend/internal/planevents"
	"fahran-backend/internal/plans"
	"fahran-backend/internal/profit"
	"fahran-backend/internal/shares"
	"fahran-backend/internal/transactions"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Stripe webhook — mounted before the session middleware so the raw body
	// survives for signature verification. Service is attached after DB init.
	stripeWebhook := &payments.WebhookHandler{WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", func(c *fiber.Ctx) error {
		return stripeWebhook.HandleWebhook(c)
	})

	// Session (Redis); the Redis client is shared with the health marker
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}
	app.Use(sessionHandler)

	// Health request marker (after session)
	app.Use(middleware.HealthMarker(rdb))

	// Response formatter (inject helpers)
	app.Use(middleware.ResponseFormatter())

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// --- Routes (no auth) ---
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		healthHandlers.DB = &gormDBPinger{db: db}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)
	app.Get("/health/reset", healthHandlers.Reset)

	var mailer emails.Sender
	if cfg.BrevoAPIKey != "" {
		mailer = &emails.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
	}

	// Auth: register is open, login/me/logout manage the session
	authHandlers := &auth.Handlers{
		Service: &auth.Service{DB: db},
		Rdb:     rdb,
		Config:  sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil && rdb != nil {
		// Plans and profit share one keyed lock so a plan's allocation and
		// distribution never interleave.
		planLocks := locker.New()

		// Members module
		memberService := &members.Service{DB: db, Emails: mailer}
		memberHandlers := &members.Handlers{Service: memberService}
		memberGroup := app.Group("/api/v1/members", middleware.RequireAuth())
		memberGroup.Get("/list-members", middleware.RequireTopMember(), memberHandlers.ListMembers)
		memberGroup.Get("/my-profile", memberHandlers.MyProfile)
		memberGroup.Post("/approve-member/:member_id", middleware.RequireTopMember(), memberHandlers.ApproveMember)

		// Shares module
		shareService := &shares.Service{DB: db}
		shareHandlers := &shares.Handlers{Service: shareService}
		shareGroup := app.Group("/api/v1/shares", middleware.RequireAuth())
		shareGroup.Get("/my-shares", shareHandlers.MyShares)
		shareGroup.Get("/member-shares/:member_id", shareHandlers.MemberShares)
		shareGroup.Get("/all-shares", middleware.RequireTopMember(), shareHandlers.AllShares)
		shareGroup.Post("/grant-shares", middleware.RequireTopMember(), shareHandlers.GrantShares)

		// Business plans module (create, vote, resolve)
		planService := &plans.Service{
			DB:           db,
			Locks:        planLocks,
			Emails:       mailer,
			VotingWindow: time.Duration(cfg.VotingWindowDays) * 24 * time.Hour,
			DefaultVote:  cfg.DefaultVote,
		}
		planHandlers := &plans.Handlers{Service: planService}
		planGroup := app.Group("/api/v1/plans", middleware.RequireAuth())
		planGroup.Post("/create-plan", middleware.RequireTopMember(), planHandlers.CreatePlan)
		planGroup.Get("/list-plans", planHandlers.ListPlans)
		planGroup.Get("/get-plan/:plan_id", planHandlers.GetPlan)
		planGroup.Post("/cast-vote", planHandlers.CastVote)
		planGroup.Post("/resolve-due/:plan_id", middleware.RequireTopMember(), planHandlers.ResolveDue)

		// Profit distribution module
		profitService := &profit.Service{DB: db, Locks: planLocks}
		profitHandlers := &profit.Handlers{Service: profitService}
		profitGroup := app.Group("/api/v1/profit", middleware.RequireAuth())
		profitGroup.Post("/report-profit", middleware.RequireTopMember(), profitHandlers.ReportProfit)

		// Payments module (offline dues + Stripe intents)
		paymentService := &payments.Service{DB: db}
		paymentHandlers := &payments.Handlers{
			Service:       paymentService,
			StripeCreator: &payments.RealStripeCreator{SecretKey: cfg.StripeSecretKey},
		}
		paymentGroup := app.Group("/api/v1/payments", middleware.RequireAuth())
		paymentGroup.Post("/record-payment", middleware.RequireTopMember(), paymentHandlers.RecordPayment)
		paymentGroup.Post("/create-intent", paymentHandlers.CreateDuesIntent)
		stripeWebhook.Service = paymentService

		// Transactions module (ledger + statements)
		txService := &transactions.Service{DB: db}
		txHandlers := &transactions.Handlers{Service: txService}
		txGroup := app.Group("/api/v1/transactions", middleware.RequireAuth())
		txGroup.Get("/get-transactions", txHandlers.GetTransactions)
		txGroup.Get("/my-statement", txHandlers.MyStatement)
		txGroup.Get("/member-statement/:member_id", txHandlers.MemberStatement)

		// Plan events module (audit trail)
		peService := &planevents.Service{DB: db}
		peHandlers := &planevents.Handlers{Service: peService}
		peGroup := app.Group("/api/v1/plan-events", middleware.RequireAuth())
		peGroup.Get("/get-plan-events/:plan_id", peHandlers.GetPlanEvents)
	}

	return app, nil
}

// Handler returns the Fiber app as a net/http handler.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
