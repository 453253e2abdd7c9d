package server

import (
	"log/slog"
	"strings"
	"time"

	"bullion-backend/internal/auth"
	"bullion-backend/internal/billing"
	"bullion-backend/internal/config"
	"bullion-backend/internal/ledger"
	"bullion-backend/internal/lenden"
	"bullion-backend/internal/metrics"
	"bullion-backend/internal/nominee"
	"bullion-backend/internal/store"
	"bullion-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// New builds the fiber app with every route wired.
func New(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*fiber.App, error) {
	authn, err := auth.NewAuthenticator(cfg, log)
	if err != nil {
		return nil, err
	}

	gw := store.New(db, cfg.DBTimeout)
	svc := ledger.NewService(gw, log)

	app := fiber.New(fiber.Config{
		AppName:      "bullion-backend",
		ErrorHandler: errorHandler(log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	if cfg.AppEnv != "test" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Public
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		app.Get("/metrics", metrics.Handler())
	}
	app.Post("/login", authn.LoginHandler())

	// Protected
	protected := app.Group("", authn.Middleware())

	nominees := nominee.NewHandler(svc)
	protected.Get("/nominees", nominees.List())
	protected.Get("/nominees/search", nominees.Search())
	protected.Post("/nominees", nominees.Create())
	protected.Get("/nominees/:id", nominees.Get())
	protected.Put("/nominees/:id", nominees.Update())
	protected.Get("/nominees/:id/balance", nominees.Balance())
	protected.Post("/nominees/:id/reconcile", nominees.Reconcile())

	txns := transaction.NewHandler(svc)
	protected.Get("/transactions/all", txns.All())
	protected.Get("/transactions/by-nominee/:nomineeId", txns.ByNominee())
	protected.Get("/transactions/by-nominee/:nomineeId/export", txns.Export())

	protected.Post("/material-transactions", txns.CreateMaterial())
	protected.Get("/material-transactions/:id", txns.GetMaterial())
	protected.Put("/material-transactions/:id", txns.UpdateMaterial())
	protected.Delete("/material-transactions/:id", txns.DeleteMaterial())

	protected.Post("/product-give-transactions", txns.CreateProductGive())
	protected.Get("/product-give-transactions/:id", txns.GetProductGive())
	protected.Put("/product-give-transactions/:id", txns.UpdateProductGive())
	protected.Delete("/product-give-transactions/:id", txns.DeleteProductGive())

	protected.Post("/product-take-transactions", txns.CreateProductTake())
	protected.Get("/product-take-transactions/:id", txns.GetProductTake())
	protected.Put("/product-take-transactions/:id", txns.UpdateProductTake())
	protected.Delete("/product-take-transactions/:id", txns.DeleteProductTake())

	// Legacy material routes and the typed delete
	protected.Get("/transactions/:id", txns.GetMaterial())
	protected.Put("/transactions/:id", txns.UpdateMaterial())
	protected.Delete("/transactions/:id", txns.DeleteTyped())

	book := lenden.NewHandler(gw)
	protected.Post("/lenden", book.Create())
	protected.Get("/lenden", book.List())
	protected.Get("/lenden/summary", book.Summary())
	protected.Put("/lenden/:id", book.Update())
	protected.Delete("/lenden/:id", book.Delete())

	bills := billing.NewHandler(gw)
	protected.Post("/buyers", bills.CreateBuyer())
	protected.Get("/buyers", bills.ListBuyers())
	protected.Get("/buyers/:id", bills.GetBuyer())
	protected.Put("/buyers/:id", bills.UpdateBuyer())
	protected.Post("/bills", bills.CreateBill())
	protected.Get("/bills", bills.ListBills())
	protected.Get("/bills/:id", bills.GetBill())
	protected.Delete("/bills/:id", bills.DeleteBill())

	return app, nil
}
