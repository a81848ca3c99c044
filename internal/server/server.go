// package server contains middleware & handlers for the deck web service
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/deck/internal/export"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options configures a [Server]. Deck is required; a nil Store disables the progress API and a nil Hub disables
// the websocket route.
type Options struct {
	Deck        *models.Deck
	Store       nav.ProgressStore
	ProgressKey string
	Page        export.Page
	Hub         *Hub
	Limiter     *rate.Limiter
	Logger      *log.Logger
}

// Server serves one deck.
type Server struct {
	mu      sync.RWMutex
	deck    *models.Deck
	store   nav.ProgressStore
	key     string
	page    export.Page
	hub     *Hub
	limiter *rate.Limiter
	logger  *log.Logger
}

// New creates a server for opts.Deck.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	page := opts.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = export.DefaultPage
	}
	key := opts.ProgressKey
	if key == "" {
		key = shared.DefaultConfig().Navigation.ProgressKey
	}

	s := &Server{
		deck:    opts.Deck,
		store:   opts.Store,
		key:     key,
		page:    page,
		hub:     opts.Hub,
		limiter: opts.Limiter,
		logger:  logger,
	}
	if s.hub != nil {
		s.hub.SetTotal(opts.Deck.Len())
	}
	return s
}

// LimiterFromConfig builds the request limiter; a non-positive rate disables limiting.
func LimiterFromConfig(c shared.ServerConfig) *rate.Limiter {
	if c.RateLimit <= 0 {
		return nil
	}
	burst := c.RateBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit), burst)
}

// SetDeck swaps the served deck, e.g. after the deck file changes.
func (s *Server) SetDeck(d *models.Deck) {
	s.mu.Lock()
	s.deck = d
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.SetTotal(d.Len())
	}
}

func (s *Server) currentDeck() *models.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// Routes builds the router with logging and rate limiting applied to every route.
func (s *Server) Routes() *MuxRouter {
	r := NewMuxRouter()
	r.Use(Logging(s.logger))
	if s.limiter != nil {
		r.Use(RateLimit(s.limiter))
	}

	r.Handle(http.MethodGet, "/", http.HandlerFunc(s.handleDeckHTML))
	r.Handle(http.MethodGet, "/slides/{n:[0-9]+}", http.HandlerFunc(s.handleSlideHTML))
	r.Handle(http.MethodGet, "/api/deck", http.HandlerFunc(s.handleDeckJSON))
	r.Handle(http.MethodGet, "/api/progress", http.HandlerFunc(s.handleGetProgress))
	r.Handle(http.MethodPut, "/api/progress", http.HandlerFunc(s.handlePutProgress))
	if s.hub != nil {
		r.Handler(s.hub)
	}
	return r
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("serving deck", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
