package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mod-sync/core/loader"
	"mod-sync/core/logger"
	"mod-sync/core/metrics"
	"mod-sync/core/middleware/auth"
	"mod-sync/core/middleware/rayid"
	"mod-sync/core/selfupdate"
	historyFeature "mod-sync/feature/history"
	"mod-sync/feature/integrity"
	"mod-sync/feature/modsync"
	"mod-sync/feature/update"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "mod-sync/docs/swagger"
)

// @title Mod Sync API
// @version 1.0
// @description API for keeping a local mods folder in sync with a dedicated game server.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the mod sync server",
	Long:    `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration and wire services
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		logg := a.logger
		zap.ReplaceGlobals(logg)

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager(logg)

		var checker *selfupdate.Checker
		if a.cfg.Update.Enabled {
			client := selfupdate.NewClient(a.cfg.Update, nil)
			checker = selfupdate.NewChecker(client, Version, a.cfg.Update.CacheTTL, logg)
		}

		// Register Features
		mgr.Register(modsync.NewFeature(a.sync))
		mgr.Register(integrity.NewFeature(a.integrityOptions(), logg))
		mgr.Register(historyFeature.NewFeature(a.ledger, logg))
		mgr.Register(update.NewFeature(checker, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
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

		// 3. Metrics
		app.Use(metrics.Middleware())

		// 3.5 Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "version": Version})
		})

		// 4. Auth (Protect API)
		if !a.cfg.Server.AuthEnabled() {
			logg.Warn("API key is empty, the HTTP API is unauthenticated")
		}
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// 6. Periodic update check
		if checker != nil {
			go func() {
				for res := range checker.Watch(ctx, a.cfg.Update.Interval) {
					if res.Available {
						logg.Info("A newer release is available",
							zap.String("current", res.Current),
							zap.String("latest", res.Latest),
							zap.String("url", res.URL))
					}
				}
			}()
		}

		// 7. Start Server
		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("addr", a.cfg.Server.Addr()), zap.String("version", Version))
			errCh <- app.Listen(a.cfg.Server.Addr())
		}()

		// 8. Graceful Shutdown
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		logg.Info("Shutting down server...")
		a.sync.Shutdown()
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
