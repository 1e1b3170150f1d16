package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"collabo/config"
	"collabo/database"
	"collabo/messaging"
	"collabo/middleware"
	"collabo/push"
	"collabo/routes"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	gin.SetMode(cfg.GinMode)

	db, err := connectWithRetry(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	auth := middleware.NewAuth(cfg.JWTSecret, cfg.TokenTTL)
	registry := messaging.NewRegistry()
	store := messaging.NewStore(db.Conversations)
	router := messaging.NewRouter(registry, store, log)
	router.SetOfflineNotifier(push.NewNotifier(db, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, log))

	engine := routes.Setup(routes.Deps{
		Cfg:      cfg,
		DB:       db,
		Auth:     auth,
		Registry: registry,
		Router:   router,
		Store:    store,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func connectWithRetry(cfg *config.Config, log zerolog.Logger) (*database.DB, error) {
	var db *database.DB
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		db, err = database.Connect(context.Background(), cfg.MongoURL, cfg.DBName)
		if err == nil {
			return db, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("mongodb connection failed, retrying")
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	return nil, err
}
