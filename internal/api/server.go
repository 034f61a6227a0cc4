// Package api exposes earthquake source classification over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/eqsource/internal/model"
)

// LayerSource resolves layer references to loaded layers. *layer.Cache
// satisfies it.
type LayerSource interface {
	Land(ctx context.Context, ref string) (*model.LandLayer, error)
	Faults(ctx context.Context, ref string) (*model.FaultLayer, error)
}

// Options configures a Server.
type Options struct {
	// Layer references used for every request.
	Land  string
	Fault string

	// AllowRequestLayers lets a request name its own land and fault layers.
	// When false such requests are rejected with 403.
	AllowRequestLayers bool

	// LoadTimeout bounds layer loading per request. Zero means no bound.
	LoadTimeout time.Duration

	// RateLimit is the sustained requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64
	RateBurst int

	AllowedOrigins []string
}

// Server routes classification requests.
type Server struct {
	layers  LayerSource
	opts    Options
	limiter *rate.Limiter
	router  chi.Router
}

// NewServer creates a Server and mounts its routes.
func NewServer(layers LayerSource, opts Options) *Server {
	s := &Server{
		layers: layers,
		opts:   opts,
		router: chi.NewRouter(),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	s.mountRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) mountRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestID)
	s.router.Use(requestLogger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/classify", s.handleClassify)
	})
}

func (s *Server) allowedOrigins() []string {
	if len(s.opts.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.opts.AllowedOrigins
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
