package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/krancour/dqueue/pkg/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Endpoints is an interface for groups of related HTTP endpoints.
type Endpoints interface {
	// Register adds the group's routes to the provided router.
	Register(router *mux.Router)
}

// Server is an interface for the component that responds to HTTP requests
type Server interface {
	// Run causes the server to start serving HTTP requests. It blocks until
	// an error occurs or the context is canceled, in which case the server is
	// gracefully shut down.
	Run(ctx context.Context) error
}

type server struct {
	config Config
	router *mux.Router
}

// NewServer returns an HTTP server exposing health checks, Prometheus metrics
// gathered from the provided gatherer, and all the provided endpoints.
func NewServer(
	config Config,
	gatherer prometheus.Gatherer,
	endpoints ...Endpoints,
) Server {
	router := mux.NewRouter()
	router.StrictSlash(true)

	for _, eps := range endpoints {
		eps.Register(router)
	}

	s := &server{
		config: config,
		router: router,
	}

	// Health check
	router.HandleFunc("/healthz", s.checkHealth).Methods(http.MethodGet)

	if gatherer != nil {
		router.Handle(
			"/metrics",
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		).Methods(http.MethodGet)
	}

	return s
}

func (s *server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", s.config.Port),
	}

	errCh := make(chan error, 1)
	if s.config.TLSEnabled &&
		file.Exists(s.config.TLSCertPath) &&
		file.Exists(s.config.TLSKeyPath) {
		glog.Infof(
			"server is listening with TLS enabled on 0.0.0.0:%d",
			s.config.Port,
		)
		srv.Handler = s.router
		go func() {
			errCh <- srv.ListenAndServeTLS(
				s.config.TLSCertPath,
				s.config.TLSKeyPath,
			)
		}()
	} else {
		glog.Infof(
			"server is listening without TLS on 0.0.0.0:%d",
			s.config.Port,
		)
		srv.Handler = h2c.NewHandler(s.router, &http2.Server{})
		go func() {
			errCh <- srv.ListenAndServe()
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *server) checkHealth(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, http.StatusOK, responseEmptyJSON)
}
