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

	"github.com/maurocmendes/leechycupcakes/internal/cart"
	"github.com/maurocmendes/leechycupcakes/internal/config"
	"github.com/maurocmendes/leechycupcakes/internal/es"
	"github.com/maurocmendes/leechycupcakes/internal/handlers"
	adminhandlers "github.com/maurocmendes/leechycupcakes/internal/handlers/admin"
	authhandlers "github.com/maurocmendes/leechycupcakes/internal/handlers/auth"
	carthandlers "github.com/maurocmendes/leechycupcakes/internal/handlers/cart"
	cataloghandlers "github.com/maurocmendes/leechycupcakes/internal/handlers/catalog"
	"github.com/maurocmendes/leechycupcakes/internal/logging"
	"github.com/maurocmendes/leechycupcakes/internal/mykafka"
	"github.com/maurocmendes/leechycupcakes/internal/service"
	httpserver "github.com/maurocmendes/leechycupcakes/internal/transport/http"
	"github.com/maurocmendes/leechycupcakes/internal/viacep"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	brokers := []string{configuration.KAFKA_ADDRESS}
	topics := []string{"user_events", "cart_events", "product_events"}
	prod, err := mykafka.NewProducer(brokers, topics)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &authhandlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod,
		},
		CartHandler: &carthandlers.CartHandler{
			DB: db, Producer: prod, Carts: cart.NewRegistry(),
		},
		CatalogHandler: &cataloghandlers.CatalogHandler{DB: db},
		AdminHandler:   &adminhandlers.AdminHandler{DB: db, Producer: prod},
		SearchHandler:  handlers.NewSearchHandler(esClient, configuration.ES_INDEX),
		CEPHandler:     &handlers.CEPHandler{Client: viacep.NewClient(configuration.VIACEP_URL)},
		TokenService: &service.TokenService{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret,
		},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
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
