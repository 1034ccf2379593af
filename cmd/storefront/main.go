package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/developia-II/storefront-backend/internal/config"
	"github.com/developia-II/storefront-backend/internal/database"
	"github.com/developia-II/storefront-backend/internal/handlers"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v81"
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront backend: catalog, navigation menus, carts and payments",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  serve,
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes the API relies on",
	RunE:  ensureIndexes,
}

func init() {
	rootCmd.AddCommand(serveCmd, indexesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	cfg.ConfigureLogging()
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL, cfg.CartCookieSecret)
	return cfg, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logrus.WithError(err).Warn("mongo disconnect failed")
		}
	}()

	var uploader utils.ImageUploader
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			return fmt.Errorf("cloudinary: %w", err)
		}
		uploader = cld
	} else {
		logrus.Warn("Cloudinary is not configured - image uploads are disabled")
	}

	if cfg.StripeEnabled() {
		stripe.Key = cfg.StripeSecretKey
	} else {
		logrus.Warn("Stripe is not configured - payments will fail")
	}

	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.SetupRoutes(router, handlers.NewDependencies(cfg, handlers.MongoRepositories(db), uploader))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.Port).Info("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func ensureIndexes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, db, err := database.Connect(cmd.Context(), cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if err := database.EnsureIndexes(cmd.Context(), db); err != nil {
		return err
	}
	logrus.Info("Indexes are up to date")
	return nil
}
