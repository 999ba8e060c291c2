package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

// Previewer renders the HTML fragment of a visual tree
type Previewer interface {
	Render(tree *entities.VisualTree, width, height int) ([]byte, error)
}

// Capturer rasterizes a single visual tree to PNG
type Capturer interface {
	Capture(ctx context.Context, tree *entities.VisualTree) ([]byte, error)
}

// Dependencies are the services the editor API drives
type Dependencies struct {
	Document     *services.Document
	Editor       *services.Editor
	Orchestrator *services.Orchestrator
	Library      *services.Library
	Exporter     *services.Exporter
	Preview      Previewer
	Capturer     Capturer

	// Events must be the publisher the document was created with
	Events *ConnectionManager

	StageWidth  int
	StageHeight int

	// Optional
	Metrics *monitoring.Metrics
	Health  *monitoring.HealthMonitor
	Logger  ports.Logger
}

// Server implements ports.HTTPServer for the carousel editor
type Server struct {
	server       *http.Server
	listener     net.Listener
	connMgr      *ConnectionManager
	limiter      *rateLimiter
	doc          *services.Document
	editor       *services.Editor
	orchestrator *services.Orchestrator
	library      *services.Library
	exporter     *services.Exporter
	preview      Previewer
	capturer     Capturer
	metrics      *monitoring.Metrics
	health       *monitoring.HealthMonitor
	config       entities.ServerConfig
	logger       ports.Logger
	stageWidth   int
	stageHeight  int

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
}

// NewServer creates a new HTTP server
func NewServer(config entities.ServerConfig, deps Dependencies) (*Server, error) {
	switch {
	case deps.Document == nil, deps.Editor == nil, deps.Orchestrator == nil,
		deps.Library == nil, deps.Exporter == nil:
		return nil, errors.New("server requires document, editor, orchestrator, library and exporter")
	case deps.Preview == nil || deps.Capturer == nil:
		return nil, errors.New("server requires a previewer and a capturer")
	case deps.Events == nil:
		return nil, errors.New("server requires the document event publisher")
	}

	logger := deps.Logger
	if logger == nil {
		logger = ports.NopLogger{}
	}
	width, height := deps.StageWidth, deps.StageHeight
	if width <= 0 || height <= 0 {
		width, height = 360, 450
	}

	return &Server{
		connMgr:      deps.Events,
		limiter:      newRateLimiter(600, 60),
		doc:          deps.Document,
		editor:       deps.Editor,
		orchestrator: deps.Orchestrator,
		library:      deps.Library,
		exporter:     deps.Exporter,
		preview:      deps.Preview,
		capturer:     deps.Capturer,
		metrics:      deps.Metrics,
		health:       deps.Health,
		config:       config,
		logger:       logger,
		stageWidth:   width,
		stageHeight:  height,
	}, nil
}

// Start listens on host:port and serves until Stop or ctx is done
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	go s.connMgr.Run(runCtx)
	go s.limiter.run(runCtx.Done())
	if s.health != nil {
		s.health.Start(runCtx)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.GetReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.GetWriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	s.listener = listener
	s.cancel = cancel
	s.running = true

	go func() {
		s.logger.Info("http server starting", "addr", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or empty when stopped
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)

	// Sockets are hijacked, Shutdown does not close them
	s.connMgr.CloseAll()
	s.cancel()
	if s.health != nil {
		s.health.Stop()
	}
	s.running = false
	s.listener = nil

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler builds the full middleware chain around the router
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.GetCORSOrigins(),
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Location", "X-Slide-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	// Order, outermost first: recovery -> logging -> security -> rate limit -> cors -> router
	var handler http.Handler = s.setupRoutes()
	handler = c.Handler(handler)
	handler = s.limiter.middleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	if s.metrics != nil {
		router.Use(metricsMiddleware(s.metrics))
	}
	router.Use(maxBodyMiddleware(s.config.GetMaxBodyBytes()))

	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/api/catalog", s.handleCatalog).Methods(http.MethodGet)

	router.HandleFunc("/api/carousel", s.handleGetCarousel).Methods(http.MethodGet)
	router.HandleFunc("/api/carousel/config", s.handleSetConfig).Methods(http.MethodPut)
	router.HandleFunc("/api/carousel/generate", s.handleGenerate).Methods(http.MethodPost)
	router.HandleFunc("/api/carousel/slides", s.handleSetSlides).Methods(http.MethodPut)

	router.HandleFunc("/api/slides", s.handleInsertSlide).Methods(http.MethodPost)
	router.HandleFunc("/api/slides/{index:[0-9]+}", s.handleUpdateSlide).Methods(http.MethodPatch)
	router.HandleFunc("/api/slides/{index:[0-9]+}", s.handleDeleteSlide).Methods(http.MethodDelete)
	router.HandleFunc("/api/slides/{index:[0-9]+}/duplicate", s.handleDuplicateSlide).Methods(http.MethodPost)
	router.HandleFunc("/api/slides/{index:[0-9]+}/regenerate", s.handleRegenerateSlide).Methods(http.MethodPost)
	router.HandleFunc("/api/slides/{index:[0-9]+}/background", s.handleGenerateBackground).Methods(http.MethodPost)
	router.HandleFunc("/api/slides/{index:[0-9]+}/preview", s.handlePreview).Methods(http.MethodGet)
	router.HandleFunc("/api/slides/{index:[0-9]+}/image", s.handleSlideImage).Methods(http.MethodGet)

	router.HandleFunc("/api/styles", s.handleUpdateGlobalStyle).Methods(http.MethodPatch)
	router.HandleFunc("/api/styles/{number:[0-9]+}", s.handleUpdateStyle).Methods(http.MethodPatch)

	router.HandleFunc("/api/export", s.handleExport).Methods(http.MethodPost)
	router.HandleFunc("/api/export/captures", s.handleExportCaptures).Methods(http.MethodPost)

	router.HandleFunc("/api/library", s.handleListLibrary).Methods(http.MethodGet)
	router.HandleFunc("/api/library", s.handleSaveLibrary).Methods(http.MethodPost)
	router.HandleFunc("/api/library/{id}", s.handleGetLibrary).Methods(http.MethodGet)
	router.HandleFunc("/api/library/{id}", s.handleDeleteLibrary).Methods(http.MethodDelete)
	router.HandleFunc("/api/library/{id}/restore", s.handleRestoreLibrary).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "No route for "+r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	return router
}

var _ ports.HTTPServer = (*Server)(nil)
