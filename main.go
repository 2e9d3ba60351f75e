package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"devfolio/api/content"
	"devfolio/api/database"
	"devfolio/api/email"
	"devfolio/api/handlers"
	"devfolio/api/logger"
	"devfolio/api/middleware"
	"devfolio/api/store"
)

// newVisitorStore picks the analytics backend from ANALYTICS_BACKEND
// (redis by default, or memory / mongo). All three satisfy the same
// store.VisitorStore contract, so nothing downstream cares which one runs.
func newVisitorStore() (store.VisitorStore, func(), error) {
	switch os.Getenv("ANALYTICS_BACKEND") {
	case "memory":
		log.Warn().Msg("Using in-memory analytics store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	case "mongo":
		client, err := database.NewMongoDB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewMongoStore(client), client.Close, nil
	default:
		client, err := database.NewRedisDB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client), client.Close, nil
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	logger.Initialize()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL database")
	}
	defer dbClient.Close()

	visitorStore, closeStore, err := newVisitorStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize analytics store")
	}
	defer closeStore()

	contentDir := os.Getenv("CONTENT_DIR")
	if contentDir == "" {
		contentDir = "content"
	}
	library, err := content.NewLibrary(contentDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", contentDir).Msg("Failed to load content library")
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go func() {
		if err := library.Watch(watchCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Content watcher stopped")
		}
	}()

	userStore := store.NewUserStore(dbClient.DB)
	mailer := email.NewMailerFromEnv()

	authHandlers := handlers.NewAuthHandlers(userStore)
	trackHandlers := handlers.NewTrackHandlers(visitorStore)
	contentHandlers := handlers.NewContentHandlers(library)
	resumeHandlers := handlers.NewResumeHandlers(mailer)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		api.POST("/track/visitor", trackHandlers.TrackVisitor)
		api.POST("/track/page-session", trackHandlers.TrackPageSession)

		api.GET("/posts", contentHandlers.ListPosts)
		api.GET("/posts/:slug", contentHandlers.GetPost)
		api.GET("/projects", contentHandlers.ListProjects)
		api.GET("/projects/:slug", contentHandlers.GetProject)

		api.POST("/resume", resumeHandlers.RequestResume)
		api.GET("/send", resumeHandlers.SendResume)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/analytics", trackHandlers.GetAnalytics)
			protected.GET("/analytics/visitors/:visitorId/sessions", trackHandlers.GetVisitorSessions)
			protected.DELETE("/analytics", trackHandlers.ClearAnalytics)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", port).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("API server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancelWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
