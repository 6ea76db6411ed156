// Package router wires handlers and middleware onto the Echo instance.  The
// API splits into a public seat-booking surface under /v1 and an admin
// surface under /v1/admin guarded by JWT plus the ADMIN role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
)

// Deps carries everything the routes need.
type Deps struct {
	Auth      *handler.AuthHandler
	Rooms     *handler.RoomHandler
	Movies    *handler.MovieHandler
	Showtimes *handler.ShowtimeHandler
	Booking   *handler.BookingHandler
	Analytics *handler.AnalyticsHandler
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register mounts every route.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Session endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(d.JWTSecret))
	me.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	me.GET("/me", d.Auth.Me)

	// Public booking surface.  Browsing GETs are cached and everything is
	// rate limited; the cache middleware skips non-GET methods on its own.
	pub := e.Group("/v1")
	if d.RateLimit != nil {
		pub.Use(d.RateLimit)
	}
	if d.Cache != nil {
		pub.Use(d.Cache)
	}
	pub.GET("/movies", d.Movies.ListAvailable)
	pub.GET("/movies/:id", d.Movies.Get)
	pub.GET("/movies/:id/showtimes", d.Showtimes.ListByMovie)
	pub.GET("/showtimes/:id", d.Showtimes.Get)
	pub.GET("/showtimes/:id/seats", d.Booking.AvailableSeats)
	pub.POST("/tickets", d.Booking.Purchase)
	pub.GET("/tickets/:id", d.Booking.GetTicket)
	pub.GET("/tickets/:id/pdf", d.Booking.TicketPDF)
	pub.DELETE("/tickets/:id", d.Booking.Refund)

	// Admin surface.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(d.JWTSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	admin.POST("/rooms", d.Rooms.Create)
	admin.GET("/rooms", d.Rooms.List)
	admin.GET("/rooms/:id", d.Rooms.Get)
	admin.PUT("/rooms/:id", d.Rooms.Update)
	admin.DELETE("/rooms/:id", d.Rooms.Delete)

	admin.POST("/movies", d.Movies.Import)
	admin.GET("/movies", d.Movies.ListAll)
	admin.GET("/movies/search", d.Movies.Search)
	admin.PATCH("/movies/:id/availability", d.Movies.SetAvailability)
	admin.DELETE("/movies/:id", d.Movies.Delete)

	admin.POST("/showtimes", d.Showtimes.Create)
	admin.GET("/showtimes/:id", d.Showtimes.Get)
	admin.DELETE("/showtimes/:id", d.Showtimes.Cancel)
	admin.POST("/showtimes/purge-finished", d.Showtimes.PurgeFinished)

	admin.GET("/analytics/sales", d.Analytics.SalesByRange)
	admin.GET("/analytics/sales/export", d.Analytics.ExportSales)
	admin.GET("/analytics/movies/:id", d.Analytics.SalesByMovie)
}
