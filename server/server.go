// Package server exposes csvapi over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/nao1215/csvapi"
	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/engine"
	"github.com/nao1215/csvapi/logging"
)

// Name and Version are reported by GET /.
const (
	Name    = "CSV->API Maker"
	Version = "0.1"
)

// DefaultMaxUploadBytes caps POST /datasets bodies when no limit is set.
const DefaultMaxUploadBytes = 32 << 20

// DatasetService is what the HTTP layer needs from csvapi.Service.
type DatasetService interface {
	CreateDataset(ctx context.Context, up csvapi.Upload) (model.Dataset, error)
	ListDatasets(ctx context.Context) ([]model.DatasetSummary, error)
	GetDataset(ctx context.Context, name string) (csvapi.DatasetDetail, error)
	DeleteDataset(ctx context.Context, name string) error
	QueryRows(ctx context.Context, name string, params url.Values) (engine.Result, error)
	PrepareExport(ctx context.Context, name string, params url.Values) (*csvapi.Export, error)
	Ping(ctx context.Context) error
}

// Server serves the dataset API.
type Server struct {
	Host string
	Port int

	// MaxUploadBytes bounds upload request bodies.
	MaxUploadBytes int64

	svc DatasetService
	log logging.Logger

	mu     sync.Mutex
	http   *http.Server
	closed bool
}

// NewServer returns a Server for svc listening on host:port once Run is
// called. A nil log discards output.
func NewServer(host string, port int, svc DatasetService, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		Host:           host,
		Port:           port,
		MaxUploadBytes: DefaultMaxUploadBytes,
		svc:            svc,
		log:            log,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.registerRoutes(router)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})
	return requestID(s.accessLog(s.recoverer(router)))
}

func (s *Server) registerRoutes(router *mux.Router) {
	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/datasets", s.handleCreateDataset).Methods(http.MethodPost)
	router.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	router.HandleFunc("/datasets/{name}", s.handleGetDataset).Methods(http.MethodGet)
	router.HandleFunc("/datasets/{name}", s.handleDeleteDataset).Methods(http.MethodDelete)
	router.HandleFunc("/datasets/{name}/rows", s.handleQueryRows).Methods(http.MethodGet)
	router.HandleFunc("/datasets/{name}/export", s.handleExport).Methods(http.MethodGet)
}

// Run listens until Close is called. After Close it returns nil at once.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.Host, fmt.Sprint(s.Port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 10,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.http = srv
	s.mu.Unlock()

	s.log.Infof("Server is running on %s", srv.Addr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("Server.Run http.ListenAndServe: %w", err)
	}

	return nil
}

// Close gracefully shuts the server down. A Run that has not started yet
// will not start.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("Server.Close http.Shutdown: %w", err)
	}

	s.log.Infow("Server is closed")

	return nil
}
