package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skyfare/layby/api"
	"github.com/skyfare/layby/config"
	"github.com/skyfare/layby/internal/layby"
	"github.com/skyfare/layby/internal/service/booking"
	"github.com/skyfare/layby/internal/service/flights"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, calculator *layby.Calculator) error {
	router := newRouter(flightSvc, bookingSvc, calculator)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, calculator *layby.Calculator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api.NewFlightHandler(flightSvc).Register(router.Group("/flights"))
	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))
	api.NewPaymentPlanHandler(calculator).Register(router.Group("/payment-plan"))

	return router
}
