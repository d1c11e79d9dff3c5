package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rrajath/hugowriter/internal/middleware"
	"github.com/rrajath/hugowriter/internal/rest"
	"github.com/rrajath/hugowriter/posts/application"
	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/posts/persistence"
	"github.com/rrajath/hugowriter/settings"
	settingsdb "github.com/rrajath/hugowriter/settings/sqlite"
	"github.com/rrajath/hugowriter/shared/db/sqlite"
	gh "github.com/rrajath/hugowriter/shared/github"
	webhook "github.com/rrajath/hugowriter/webhook/http"
)

const (
	defaultPort     = 8080
	shutdownTimeout = 5 * time.Second
	defaultPostsDir = "./posts"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	dbConn, err := sqlite.Open(sqlite.NewConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open settings database")
	}
	defer dbConn.Close()

	postsDir := os.Getenv("HUGOWRITER_POSTS_DIR")
	if postsDir == "" {
		postsDir = defaultPostsDir
	}
	postRepo, err := persistence.NewFilePostRepository(postsDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", postsDir).Msg("Failed to open post store")
	}

	settingsRepo := settingsdb.NewSettingsStore(dbConn)

	contentFactory := func(cfg settings.GitHubConfig) domain.ContentRepository {
		return gh.NewForConfig(cfg)
	}
	publisher := application.NewPublisher(contentFactory)
	importer := application.NewImporter(contentFactory)

	postService := application.NewPostService(postRepo, settingsRepo, publisher, importer, application.DefaultAutoSaveDelay)
	defer func() {
		if err := postService.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to gracefully close post service")
		}
	}()

	engine := gin.New()
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(engine, postService, settingsRepo, application.NewMarkdownRenderer())

	if secret := os.Getenv("WEBHOOK_SECRET"); secret != "" {
		webhook.NewWebhookHandler(secret, postService, settingsRepo).RegisterRoutes(engine)
	} else {
		log.Info().Msg("WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	port := defaultPort
	if raw := os.Getenv("PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatal().Str("port", raw).Msg("Invalid PORT value")
		}
		port = parsed
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	go func() {
		log.Info().Int("port", port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
