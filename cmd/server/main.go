package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/database"
	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/movieapi"
	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	"github.com/iliyamo/cinema-ticketing/internal/router"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	rooms := repository.NewRoomRepo(db)
	seats := repository.NewSeatRepo(db)
	movies := repository.NewMovieRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	showtimeSeats := repository.NewShowtimeSeatRepo(db)
	tickets := repository.NewTicketRepo(db)

	// Engine components.
	roomSvc := service.NewRooms(rooms, seats)
	inventorySvc := service.NewInventory(showtimes, showtimeSeats)
	ticketSvc := service.NewTickets(tickets, showtimes, inventorySvc)
	schedulerSvc := service.NewScheduler(movies, rooms, seats, showtimes, ticketSvc)

	catalog := movieapi.New(cfg.MovieAPIURL, cfg.MovieAPIKey)

	// Box-office event consumer keeps running through broker restarts.
	go func() {
		if err := queue.StartBoxOfficeConsumer(); err != nil {
			log.Printf("box-office consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users),
		Rooms:     handler.NewRoomHandler(roomSvc),
		Movies:    handler.NewMovieHandler(movies, catalog),
		Showtimes: handler.NewShowtimeHandler(schedulerSvc),
		Booking:   handler.NewBookingHandler(inventorySvc, ticketSvc, movies),
		Analytics: handler.NewAnalyticsHandler(ticketSvc),
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
