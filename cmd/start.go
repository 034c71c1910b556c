package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ynab-exchange/core/config"
	"ynab-exchange/core/loader"
	"ynab-exchange/core/logger"
	"ynab-exchange/core/middleware/auth"
	"ynab-exchange/core/middleware/rayid"
	"ynab-exchange/feature/exchange"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "ynab-exchange/docs/swagger"
)

// @title YNAB Exchange API
// @version 1.0
// @description Mirrors foreign-currency YNAB transactions into an exchange account.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long: `Starts the HTTP server. GET /run-task runs a pass over every budget,
and reconcile.interval_seconds runs one periodically.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		svc, cleanup, err := exchange.Build(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to build exchange service", zap.Error(err))
		}
		defer cleanup()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Server.ReadTimeout(),
		})

		mgr := loader.NewManager()
		mgr.Register(exchange.NewFeature(svc))

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{
			ApiKey: cfg.Server.ApiKey,
			Skip:   []string{"/exchange/health"},
		}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		if cfg.Reconcile.IntervalSeconds > 0 {
			scheduler := exchange.NewScheduler(svc, time.Duration(cfg.Reconcile.IntervalSeconds)*time.Second, logg)
			go scheduler.Start(ctx)
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()), zap.Int("budgets", len(svc.Budgets())))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		stop()
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
