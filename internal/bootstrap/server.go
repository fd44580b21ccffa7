package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avdonin/shareit/api"
	"github.com/avdonin/shareit/config"
	"github.com/avdonin/shareit/internal/service/booking"
	"github.com/avdonin/shareit/internal/service/items"
	"github.com/avdonin/shareit/internal/service/requests"
	"github.com/avdonin/shareit/internal/service/users"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Users    users.UserUseCase
	Items    items.ItemUseCase
	Bookings booking.BookingUseCase
	Requests requests.RequestUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires all handlers onto a gin engine.
func NewRouter(svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger)

	api.NewUserHandler(svc.Users).Register(router.Group("/users"))
	api.NewItemHandler(svc.Items).Register(router.Group("/items"))
	api.NewBookingHandler(svc.Bookings).Register(router.Group("/bookings"))
	api.NewRequestHandler(svc.Requests).Register(router.Group("/requests"))

	return router
}
