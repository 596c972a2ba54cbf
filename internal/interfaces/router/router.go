package router

import (
	"context"

	"bondbook-backend/internal/application/aggregates"
	"bondbook-backend/internal/application/allocation"
	"bondbook-backend/internal/application/announcements"
	"bondbook-backend/internal/application/approvals"
	authsvc "bondbook-backend/internal/application/auth"
	"bondbook-backend/internal/application/bonds"
	healthsvc "bondbook-backend/internal/application/health"
	"bondbook-backend/internal/application/investors"
	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/application/ownership"
	"bondbook-backend/internal/application/rates"
	"bondbook-backend/internal/application/reports"
	"bondbook-backend/internal/config"
	"bondbook-backend/internal/constants"
	"bondbook-backend/internal/infrastructure/database"
	annhandler "bondbook-backend/internal/interfaces/handlers/announcements"
	assethandler "bondbook-backend/internal/interfaces/handlers/assets"
	authhandler "bondbook-backend/internal/interfaces/handlers/auth"
	bondhandler "bondbook-backend/internal/interfaces/handlers/bonds"
	healthhandler "bondbook-backend/internal/interfaces/handlers/health"
	invhandler "bondbook-backend/internal/interfaces/handlers/investors"
	portfoliohandler "bondbook-backend/internal/interfaces/handlers/portfolio"
	ratehandler "bondbook-backend/internal/interfaces/handlers/rates"
	reporthandler "bondbook-backend/internal/interfaces/handlers/reports"
	txhandler "bondbook-backend/internal/interfaces/handlers/transactions"
	"bondbook-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the connections the app is built on. Events may be nil.
type Deps struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Events ledger.EventPublisher
}

func CreateApp(cfg *config.Config, deps Deps) (*fiber.App, error) {
	db, rdb := deps.DB, deps.Rdb
	events := deps.Events
	if events == nil {
		events = ledger.NopPublisher{}
	}

	store := database.NewLedgerStore(db)
	source, err := ownership.NewSource(cfg.OwnershipSource, store)
	if err != nil {
		return nil, err
	}

	agg := aggregates.NewService(store, cfg.ReconcileConcurrency)
	approvalSvc := approvals.NewService(store, agg, events, approvals.BondDefaults{
		Rate:           cfg.DefaultBondRate,
		MaturityMonths: cfg.DefaultBondMaturity,
	})
	allocSvc := allocation.NewService(store, agg, events)
	projector := ownership.NewProjector(store, source)
	investorSvc := &investors.Service{DB: db}
	rateSvc := &rates.Service{DB: db}
	reportSvc := &reports.Service{DB: db, Rates: rateSvc}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics())
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	hh := &healthhandler.Handlers{
		Rdb: rdb,
		DB: healthsvc.PingFunc(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Post("/health/reset", hh.Reset)

	sessionCfg := middleware.SessionConfig{
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	api := app.Group("/api/v1")

	ah := &authhandler.Handlers{
		Service:   &authsvc.Service{DB: db},
		Investors: investorSvc,
		Rdb:       rdb,
		Config:    sessionCfg,
	}
	ag := api.Group("/auth")
	ag.Post("/admin/login", ah.AdminLogin)
	ag.Post("/investor/login", ah.InvestorLogin)
	ag.Post("/investor/register", ah.InvestorRegister)
	ag.Get("/me", ah.Me)
	ag.Delete("/logout", ah.Logout)

	auth := middleware.RequireAuth()
	can := middleware.AuthorizePermission

	// Admin: contribution review
	th := &txhandler.Handlers{Service: approvalSvc}
	tg := api.Group("/transactions", auth, can(constants.ReviewTransactions))
	tg.Get("/pending", th.ListPending)
	tg.Patch("/:id/status", th.UpdateStatus)

	// Admin: investors and aggregates
	ih := &invhandler.Handlers{Service: investorSvc, Aggregates: agg, Reports: reportSvc}
	ig := api.Group("/investors", auth, can(constants.ManageInvestors))
	ig.Post("/", ih.Create)
	ig.Get("/", ih.List)
	ig.Get("/:id", ih.Get)
	ig.Put("/:id", ih.Update)
	ig.Patch("/:id/status", ih.SetStatus)
	ig.Delete("/:id", ih.Delete)
	ig.Get("/:id/transactions", ih.Transactions)
	ig.Get("/:id/history", ih.History)
	ig.Post("/:id/reconcile", can(constants.ReconcileAggregates), ih.Reconcile)
	api.Post("/aggregates/reconcile", auth, can(constants.ReconcileAggregates), ih.ReconcileAll)

	// Admin: assets and distributions
	asH := &assethandler.Handlers{Allocation: allocSvc, Ownership: projector}
	asg := api.Group("/assets", auth, can(constants.ManageAssets))
	asg.Post("/", asH.Create)
	asg.Get("/", asH.List)
	asg.Get("/:id", asH.Get)
	asg.Put("/:id", asH.Update)
	api.Post("/interest/distribute", auth, can(constants.DistributeInterest), asH.DistributeInterest)

	bh := &bondhandler.Handlers{Service: &bonds.Service{DB: db, Store: store, Aggregates: agg}}
	bg := api.Group("/bonds", auth, can(constants.ManageBonds))
	bg.Post("/", bh.Create)
	bg.Get("/", bh.List)
	bg.Post("/:id/interest", bh.AddInterest)

	rh := &ratehandler.Handlers{Service: rateSvc}
	rg := api.Group("/rates", auth, can(constants.ManageRates))
	rg.Post("/", rh.CreateRate)
	rg.Get("/", rh.ListRates)
	rg.Get("/applicable", rh.Applicable)
	pg := api.Group("/penalties", auth, can(constants.ManageRates))
	pg.Post("/", rh.CreatePenalty)
	pg.Get("/", rh.ListPenalties)

	reph := &reporthandler.Handlers{Service: reportSvc}
	repg := api.Group("/reports", auth, can(constants.ViewReports))
	repg.Get("/yearly-contributions", reph.YearlyContributions)
	repg.Get("/monthly-contributions", reph.MonthlyContributions)
	repg.Get("/total-asset-value", reph.TotalAssetValue)
	repg.Get("/yearly-investments", reph.YearlyInvestments)
	repg.Get("/yearly-investments/export", reph.ExportYearlyInvestments)

	annh := &annhandler.Handlers{Service: &announcements.Service{DB: db}}
	api.Get("/announcements", auth, can(constants.ViewAnnouncements), annh.Latest)
	api.Post("/announcements", auth, can(constants.PostAnnouncements), annh.Create)

	// Investor self-service
	ph := &portfoliohandler.Handlers{Investors: investorSvc, Approvals: approvalSvc, Ownership: projector}
	mg := api.Group("/me", auth)
	mg.Get("/dashboard", can(constants.ViewOwnPortfolio), ph.Dashboard)
	mg.Get("/assets", can(constants.ViewOwnPortfolio), ph.Assets)
	mg.Post("/contributions", can(constants.SubmitContributions), ph.SubmitContribution)

	return app, nil
}
