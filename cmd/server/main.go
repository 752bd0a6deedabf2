package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ndanilov/itemvault/internal/config"
	"github.com/ndanilov/itemvault/internal/handlers"
	"github.com/ndanilov/itemvault/internal/httpserver"
	"github.com/ndanilov/itemvault/internal/logging"
	middlewareauth "github.com/ndanilov/itemvault/internal/middleware/auth"
	"github.com/ndanilov/itemvault/internal/middleware/loggingmw"
	"github.com/ndanilov/itemvault/internal/mykafka"
	"github.com/ndanilov/itemvault/internal/repo"
	"github.com/ndanilov/itemvault/internal/search"
	"github.com/ndanilov/itemvault/internal/service"
	"github.com/ndanilov/itemvault/internal/tokens"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var index *search.Index
	if cfg.ES_URL != "" {
		es, err := search.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		index = search.NewIndex(es, search.DefaultIndex)
	}

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(cfg.KAFKA_ADDRESS)
		defer producer.Close()
	}

	gormRepo := &repo.GormRepo{DB: db}
	tokenSvc := tokens.New([]byte(cfg.JWT_SECRET), cfg.TOKEN_TTL)

	userSvc := &service.UserService{Repo: gormRepo, Producer: producer}
	itemSvc := &service.ItemService{Repo: gormRepo, Producer: producer, Index: index}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:  &handlers.AuthHandler{Users: userSvc, Tokens: tokenSvc},
		Items: &handlers.ItemHandler{Items: itemSvc},
		Users: &handlers.UserHandler{Users: userSvc},
		Guard: middlewareauth.NewGuard(tokenSvc, gormRepo),
	})

	go func() {
		if err := e.Start(cfg.HTTP_ADDR); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
