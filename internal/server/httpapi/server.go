// Package httpapi exposes the account and reading operations over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/logging"
	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
	"github.com/dmitrijs2005/waterwatch/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	Validate(ctx context.Context, token string) (*models.User, error)
}

type ReadingService interface {
	Append(ctx context.Context, ownerID string, in services.ReadingInput) (*models.Reading, error)
	Readings(ctx context.Context, ownerID string) ([]models.Reading, error)
	Series(ctx context.Context, ownerID string, g aggregation.Granularity) (*series.Series, error)
}

type ExportService interface {
	Export(ctx context.Context, ownerID string, g aggregation.Granularity) (*services.Export, error)
}

type HTTPServer struct {
	address     string
	users       UserService
	readings    ReadingService
	exports     ExportService
	authLimiter *ipRateLimiter
	logger      logging.Logger
}

// NewHTTPServer wires the handlers. authPerMinute limits sign-up and
// sign-in attempts per client IP; zero disables the limit.
func NewHTTPServer(a string, l logging.Logger, us UserService, rs ReadingService, es ExportService, authPerMinute int) *HTTPServer {
	return &HTTPServer{
		address:     a,
		users:       us,
		readings:    rs,
		exports:     es,
		authLimiter: newIPRateLimiter(authPerMinute),
		logger:      l.With("module", "http_server"),
	}
}

// Router builds the route table. Every route is served both at the root and
// under /api.
func (s *HTTPServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	s.mount(r)
	s.mount(r.PathPrefix("/api").Subrouter())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	return r
}

func (s *HTTPServer) mount(r *mux.Router) {
	r.HandleFunc("/ping", s.ping).Methods(http.MethodGet)

	public := r.NewRoute().Subrouter()
	public.Use(s.rateLimit)
	public.HandleFunc("/signup", s.signup).Methods(http.MethodPost)
	public.HandleFunc("/signin", s.signin).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(s.accessGuard)
	protected.HandleFunc("/data", s.submitReading).Methods(http.MethodPost)
	protected.HandleFunc("/getdata", s.listReadings).Methods(http.MethodGet)
	protected.HandleFunc("/series", s.getSeries).Methods(http.MethodGet)
	protected.HandleFunc("/export", s.export).Methods(http.MethodPost)
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
