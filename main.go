package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-dashboard/domain/repository"
	"creator-dashboard/infrastructure/cache"
	"creator-dashboard/infrastructure/clients/mediahost"
	youtubeclient "creator-dashboard/infrastructure/clients/youtube"
	"creator-dashboard/infrastructure/configuration"
	"creator-dashboard/infrastructure/logger"
	"creator-dashboard/infrastructure/persistence"
	"creator-dashboard/infrastructure/pubsub"
	httpHandler "creator-dashboard/interfaces/http"
	"creator-dashboard/server"
	"creator-dashboard/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	db, useMSSQL, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	logger.GetLogger().WithField("mssql", useMSSQL).Info("Database connected.")

	// Mirror store and token repo share the vendor choice.
	var store repository.IMirrorStore
	var tokenRepo repository.IOAuthToken
	if useMSSQL {
		if err := persistence.EnsureMirrorSchemaMSSQL(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring mirror schema")
		}
		if err := persistence.EnsureOAuthTokenSchemaMSSQL(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring oauth token schema")
		}
		store = persistence.NewMirrorStoreMSSQL(db)
		tokenRepo = persistence.NewOAuthTokenRepositoryMSSQL(db)
	} else {
		if err := persistence.EnsureMirrorSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring mirror schema")
		}
		if err := persistence.EnsureOAuthTokenSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring oauth token schema")
		}
		store = persistence.NewMirrorStore(db)
		tokenRepo = persistence.NewOAuthTokenRepository(db)
	}

	redisClient := cache.NewRedisClient()
	if redisClient == nil {
		logger.GetLogger().Info("Redis not configured; token cache disabled")
	}
	tokenSource := cache.NewTokenCache(redisClient, tokenRepo)

	youtubeClient := youtubeclient.NewYouTubeClient()
	mediaHost := mediahost.NewClient(configuration.C.MediaHost.Host, configuration.C.MediaHost.UploadPreset)

	dashboardUC := usecase.NewDashboardUseCase(youtubeClient, store, mediaHost)

	// Optional refresh-completed events
	if configuration.C.Pubsub.ProjectID != "" {
		pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without refresh events")
		} else {
			topic := configuration.C.Pubsub.Topic
			if topic == "" {
				topic = "dashboard-refresh"
			}
			dashboardUC = dashboardUC.WithEvents(pubsub.NewRefreshPublisher(pubSubClient, topic))
		}
	}

	dashboardHandler := httpHandler.NewDashboardHandler(dashboardUC, tokenSource)
	healthHandler := httpHandler.NewHealthHandler()

	router := server.InitiateRouter(dashboardHandler, healthHandler)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase opens the configured database. Production (or
// DB_VENDOR=mssql) runs against Azure SQL; everything else uses
// PostgreSQL.
func InitiateDatabase() (*sql.DB, bool, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL (DB_VENDOR=mssql)")
			return nil, false, err
		}
		return db, true, nil
	}
	if env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL (production)")
			return nil, false, err
		}
		return db, true, nil
	}

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, false, err
	}
	return db, false, nil
}
