package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stayfinder/internal/auth"
	"stayfinder/internal/config"
	"stayfinder/internal/domain"
	"stayfinder/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the REST API: auth, listings, bookings and the admin
// surface.
type HTTPServer struct {
	users    *service.UserService
	listings *service.ListingService
	bookings *service.BookingService
	tokens   *auth.TokenManager
	limiter  domain.RateLimiter
	clock    domain.Clock
	logger   zerolog.Logger

	rateLimitMax    int
	rateLimitWindow time.Duration

	server *http.Server
}

func NewHTTPServer(
	cfg *config.Config,
	users *service.UserService,
	listings *service.ListingService,
	bookings *service.BookingService,
	tokens *auth.TokenManager,
	limiter domain.RateLimiter,
	clk domain.Clock,
	logger *zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		users:           users,
		listings:        listings,
		bookings:        bookings,
		tokens:          tokens,
		limiter:         limiter,
		clock:           clk,
		logger:          logger.With().Str("component", "http").Logger(),
		rateLimitMax:    cfg.RateLimit.Requests,
		rateLimitWindow: cfg.RateLimit.Window(),
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.logging(s.rateLimit(s.routes())),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return s
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/listings", s.handleListListings)
	mux.HandleFunc("GET /api/v1/listings/{id}", s.handleGetListing)
	mux.HandleFunc("POST /api/v1/listings", s.authenticate(s.handleCreateListing))
	mux.HandleFunc("PATCH /api/v1/listings/{id}", s.authenticate(s.handleUpdateListing))
	mux.HandleFunc("PUT /api/v1/listings/{id}", s.authenticate(s.handleUpdateListing))
	mux.HandleFunc("DELETE /api/v1/listings/{id}", s.authenticate(s.handleDeleteListing))

	mux.HandleFunc("GET /api/v1/bookings", s.handleListBookings)
	mux.HandleFunc("GET /api/v1/bookings/count/{listingID}", s.handleBookingCount)
	mux.HandleFunc("GET /api/v1/bookings/active/count/{listingID}", s.handleActiveBookingCount)
	mux.HandleFunc("POST /api/v1/bookings", s.authenticate(s.handleCreateBooking))
	mux.HandleFunc("GET /api/v1/bookings/me", s.authenticate(s.handleMyBookings))
	mux.HandleFunc("PATCH /api/v1/bookings/{id}/confirm", s.authenticate(s.handleConfirmBooking))
	mux.HandleFunc("PATCH /api/v1/bookings/{id}/cancel", s.authenticate(s.handleCancelBooking))

	mux.HandleFunc("GET /api/v1/admin/listings", s.requireAdmin(s.handleListListings))
	mux.HandleFunc("PUT /api/v1/admin/listings/{id}", s.requireAdmin(s.handleUpdateListing))
	mux.HandleFunc("DELETE /api/v1/admin/listings/{id}", s.requireAdmin(s.handleDeleteListing))
	mux.HandleFunc("GET /api/v1/admin/bookings", s.requireAdmin(s.handleAdminBookings))
	mux.HandleFunc("GET /api/v1/admin/bookings/export", s.requireAdmin(s.handleExportBookings))
	mux.HandleFunc("DELETE /api/v1/admin/bookings/{id}", s.requireAdmin(s.handleDeleteBooking))
	mux.HandleFunc("GET /api/v1/admin/users-with-bookings", s.requireAdmin(s.handleUsersWithBookings))

	return mux
}

// Handler returns the fully assembled middleware chain, exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
