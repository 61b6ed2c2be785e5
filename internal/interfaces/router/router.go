package router

import (
	"fmt"
	"net/http"

	"ledger-backend/internal/application/accounts"
	authsvc "ledger-backend/internal/application/auth"
	"ledger-backend/internal/application/deposits"
	healthsvc "ledger-backend/internal/application/health"
	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/application/payouts"
	"ledger-backend/internal/config"
	"ledger-backend/internal/infrastructure/cache"
	"ledger-backend/internal/infrastructure/database"
	"ledger-backend/internal/infrastructure/events"
	adminhandler "ledger-backend/internal/interfaces/handlers/admin"
	assethandler "ledger-backend/internal/interfaces/handlers/assets"
	auctionhandler "ledger-backend/internal/interfaces/handlers/auctions"
	authhandler "ledger-backend/internal/interfaces/handlers/auth"
	healthhandler "ledger-backend/internal/interfaces/handlers/health"
	payhandler "ledger-backend/internal/interfaces/handlers/payments"
	rentalhandler "ledger-backend/internal/interfaces/handlers/rentals"
	wallethandler "ledger-backend/internal/interfaces/handlers/wallet"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the collaborators the routes are built from. DB may be nil, in
// which case only health and auth routes are mounted.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
	// Ledger defaults to a system-clock ledger publishing to the log and Redis.
	Ledger *ledger.Ledger
	// Stripe defaults to the Stripe SDK with Config.StripeSecretKey.
	Stripe deposits.PaymentIntentCreator
}

// CreateApp connects Redis and, when configured, Postgres, then builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	rdb, err := cache.Open(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return Mount(Deps{Config: cfg, DB: db, Rdb: rdb}), db, rdb, nil
}

// Mount builds the Fiber app with global middleware and every route.
func Mount(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Stripe needs the raw body and no session.
	depositSvc := &deposits.Service{DB: d.DB, Creator: d.Stripe, Currency: cfg.DepositCurrency}
	if depositSvc.Creator == nil && cfg.StripeSecretKey != "" {
		depositSvc.Creator = &deposits.StripeCreator{SecretKey: cfg.StripeSecretKey}
	}
	stripeWebhook := &payhandler.WebhookHandler{Deposits: depositSvc, WebhookSecret: cfg.StripeWebhookSecret}
	if d.DB != nil {
		app.Post("/api/v1/stripe/webhook", stripeWebhook.HandleWebhook)
	}

	rdb := d.Rdb
	app.Use(middleware.Session(rdb, cfg.SessionSecret))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	l := d.Ledger
	if l == nil {
		opts := ledger.Options{
			Notifier: events.Fanout{
				events.LogNotifier{},
				&events.RedisPublisher{Rdb: rdb, Channel: cfg.EventsChannel},
			},
		}
		if d.DB != nil {
			opts.Payout = &payouts.WalletPayout{DB: d.DB}
		}
		l = ledger.New(opts)
	}

	collector := &healthsvc.Collector{Rdb: rdb, Ledger: l}
	if d.DB != nil {
		collector.DB = &gormDBPinger{db: d.DB}
	}
	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Collector:      collector,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	// Login answers 500 without a database.
	ah := &authhandler.Handlers{Rdb: rdb, Config: sessionCfg}
	if d.DB != nil {
		ah.Finder = &authsvc.GormAccountFinder{DB: d.DB}
		ah.Accounts = &accounts.Service{DB: d.DB}
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if d.DB == nil {
		return app
	}
	authGroup.Post("/register", ah.Register)

	market := marketplace.New(d.DB, l)
	view := middleware.AuthorizePermission(constants.ViewMarket)
	trade := middleware.AuthorizePermission(constants.TradeAssets)
	api := app.Group("/api/v1", middleware.RequireAuth())

	// Assets, collateral and bundles
	asset := &assethandler.Handlers{Service: market}
	api.Post("/assets", trade, asset.Create)
	api.Get("/assets/:id", view, asset.Get)
	api.Get("/assets/:id/metadata", view, asset.Metadata)
	api.Get("/assets/:id/history", view, asset.History)
	api.Patch("/assets/:id/metadata", trade, asset.UpdateMetadata)
	api.Post("/assets/:id/transfer", trade, asset.Transfer)
	api.Post("/assets/:id/transferable", trade, asset.SetTransferable)
	api.Post("/assets/:id/lock", trade, asset.Lock)
	api.Post("/assets/:id/unlock", trade, asset.Unlock)
	api.Post("/assets/:id/burn", trade, asset.Burn)
	api.Post("/assets/:id/tokenize", trade, asset.Tokenize)
	api.Post("/assets/:id/collateral", trade, asset.Collateralize)
	api.Delete("/assets/:id/collateral", trade, asset.ReleaseCollateral)
	api.Get("/assets/:id/collateral", view, asset.Collateral)
	api.Get("/users/:address/assets", view, asset.UserAssets)
	api.Get("/users/:address/value", view, asset.UserValue)
	api.Post("/bundles", trade, asset.CreateBundle)
	api.Get("/bundles/:id", view, asset.GetBundle)
	api.Delete("/bundles/:id", trade, asset.Unbundle)

	// Auctions
	auction := &auctionhandler.Handlers{Service: market}
	api.Post("/auctions", trade, auction.Create)
	api.Get("/auctions", view, auction.List)
	api.Get("/auctions/:id", view, auction.Get)
	api.Post("/auctions/:id/bids", trade, auction.Bid)
	api.Post("/auctions/:id/settle", trade, auction.Settle)
	api.Post("/auctions/:id/cancel", trade, auction.Cancel)

	// Rentals
	rental := &rentalhandler.Handlers{Service: market}
	api.Post("/rentals", trade, rental.Create)
	api.Get("/rentals", view, rental.List)
	api.Get("/rentals/:id", view, rental.Get)
	api.Post("/rentals/:id/pay", trade, rental.Pay)
	api.Post("/rentals/:id/extend", trade, rental.Extend)
	api.Post("/rentals/:id/close", trade, rental.Close)
	api.Post("/rentals/:id/cancel", trade, rental.Cancel)

	// Wallet
	manage := middleware.AuthorizePermission(constants.ManageWallet)
	wallet := &wallethandler.Handlers{Accounts: market.Accounts, Deposits: depositSvc, Market: market}
	api.Get("/wallet", manage, wallet.Get)
	api.Post("/wallet/deposit-intent", manage, wallet.DepositIntent)
	api.Get("/wallet/claims", manage, wallet.Claims)
	api.Post("/wallet/withdraw", manage, wallet.Withdraw)

	// Admin
	admin := &adminhandler.Handlers{Market: market}
	api.Post("/admin/assets/:id/suspend", middleware.AuthorizePermission(constants.SuspendAssets), admin.Suspend)
	api.Post("/admin/assets/:id/reinstate", middleware.AuthorizePermission(constants.SuspendAssets), admin.Reinstate)
	api.Patch("/admin/blacklist", middleware.AuthorizePermission(constants.ManageAccounts), admin.Blacklist)
	api.Post("/admin/wallet/credit", middleware.AuthorizePermission(constants.CreditWallets), admin.Credit)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
