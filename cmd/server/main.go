package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/codenest/platform/internal/config"
	"github.com/codenest/platform/internal/es"
	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/handlers/auth"
	"github.com/codenest/platform/internal/handlers/blog"
	"github.com/codenest/platform/internal/handlers/search"
	"github.com/codenest/platform/internal/handlers/tutorial"
	"github.com/codenest/platform/internal/logging"
	"github.com/codenest/platform/internal/service/reset"
	"github.com/codenest/platform/internal/service/token"
	httpserver "github.com/codenest/platform/internal/transport/http"
)

const contentIndex = "content"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	prod := events.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &auth.AuthHandler{
			DB:          db,
			Tokens:      tokens,
			Reset:       reset.New([]byte(configuration.RESET_SECRET)),
			Producer:    prod,
			FrontendURL: configuration.FRONTEND_URL,
		},
		BlogHandler:     &blog.BlogHandler{DB: db, Producer: prod, ES: esClient, Index: contentIndex},
		TutorialHandler: &tutorial.TutorialHandler{DB: db, Producer: prod, ES: esClient, Index: contentIndex},
		SearchHandler:   &search.SearchHandler{ES: esClient, Index: contentIndex},
		TokenService:    tokens,
	}

	httpserver.Register(e, &deps)

	port := configuration.PORT
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
