package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kmori/junban/internal/cache"
	"github.com/kmori/junban/internal/config"
	"github.com/kmori/junban/internal/handler"
	"github.com/kmori/junban/internal/queue"
	"github.com/kmori/junban/internal/repository"
	"github.com/kmori/junban/internal/router"
	"github.com/kmori/junban/internal/sheet/mysqlsheet"
)

func main() {
	// Local development keeps settings in a .env file; absence is fine.
	_ = godotenv.Load()
	cfg := config.Load()

	transport, err := mysqlsheet.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.SheetTable)
	if err != nil {
		log.Fatalf("open sheet backend: %v", err)
	}
	defer func() { _ = transport.Close() }()

	tableCache := cache.New(cfg.CacheTTL)
	tickets := repository.NewTicketRepo(transport, tableCache, cfg.Stores)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e, handler.NewAuthHandler(cfg))
	router.RegisterTickets(e, handler.NewTicketHandler(cfg, tickets), cfg, rdb)

	// Audit-trail consumer; reconnects forever in the background.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("ticket-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, stores=%d, open=%v)", addr, cfg.Env, len(cfg.Stores), cfg.OpenMode())

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
