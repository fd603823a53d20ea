package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"payment-integrator/core/config"
	"payment-integrator/core/database"
	"payment-integrator/core/loader"
	"payment-integrator/core/logger"
	"payment-integrator/core/middleware/rayid"
	"payment-integrator/core/storage"
	"payment-integrator/feature/dashboard"
	"payment-integrator/feature/integrity"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only dashboard API",
	Long:  `Starts the HTTP server with the receivables dashboard and integrity endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		// Ledger is required, gateways only feed the schema check
		ledger, err := database.Connect(cfg.Ledger)
		if err != nil {
			return err
		}
		defer database.Close(ledger)
		logg.Info("Connected to ledger database")

		stores := []integrity.Store{integrity.LedgerStore(ledger)}
		for src, gwCfg := range gatewayConfigs(cfg) {
			var gw *gorm.DB
			if conn, err := database.Connect(gwCfg); err != nil {
				logg.Warn("Optional gateway connection failed", zap.String("source", string(src)), zap.Error(err))
			} else {
				gw = conn
				defer database.Close(conn)
			}
			stores = append(stores, integrity.GatewayStore(src, gw))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		})

		mgr := loader.NewManager()
		mgr.Register(dashboard.NewFeature(ledger, cfg.Server.CacheTTL(), logg))
		mgr.Register(integrity.NewFeature(stores, archive(cfg, logg), logg))

		// RayID first so every log line carries it
		app.Use(rayid.New())
		app.Use(requestLogger(logg))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			return err
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// requestLogger logs every request with its ray id.
func requestLogger(logg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
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
	}
}

// archive returns the report archive location, or an empty one when storage is disabled.
func archive(cfg *config.Config, logg *zap.Logger) integrity.Archive {
	a := integrity.Archive{
		Bucket: cfg.Storage.Bucket,
		Prefix: cfg.Reconcile.ArchivePrefix,
		Region: cfg.Storage.Region,
	}
	if !cfg.Storage.Enabled {
		return a
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Warn("Storage client unavailable, archive checks disabled", zap.Error(err))
		return a
	}
	a.Client = client
	return a
}
