package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/api/middleware"
	"github.com/GriffinCanCode/previewbridge/internal/api/ws"
	"github.com/GriffinCanCode/previewbridge/internal/bridge"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/headless"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/selector"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/tracing"

	apihttp "github.com/GriffinCanCode/previewbridge/internal/api/http"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the preview daemon and its dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	page    *headless.Page
	frame   *headless.Frame
	bridge  *bridge.Bridge
	relay   *ws.Relay
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewServer loads the preview page, initializes the bridge and builds the
// router. A bridge that refuses its origin stays inert; the daemon still
// serves state and metrics.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing preview daemon",
		zap.String("addr", cfg.Addr()),
		zap.String("source", cfg.Preview.Source),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("previewd", logger.Component("tracing"))

	frame := headless.NewFrame("null")
	opts := []headless.Option{
		headless.WithParent(frame),
		headless.WithSanitize(cfg.Preview.Sanitize),
	}
	if cfg.Preview.Layout != "" {
		layout, err := headless.LoadLayout(cfg.Preview.Layout)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to load layout: %w", err)
		}
		opts = append(opts, headless.WithLayout(layout))
	}

	page, err := headless.Load(ctx, cfg.Preview.Source, opts...)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to load preview: %w", err)
	}
	logger.Info("Preview loaded", zap.String("source", cfg.Preview.Source))

	var b *bridge.Bridge
	b = bridge.New(page,
		bridge.WithLogger(logger.Component("bridge-sdk")),
		bridge.WithMetrics(metrics),
		bridge.WithDefaultOrigin(cfg.Shell.Origin),
		bridge.WithInlineEditor(func(id string) {
			b.NotifyInlineEditor(true, id, anchor(page, id))
		}),
	)

	err = b.Init(bridge.Config{
		CaptureConsole: cfg.Shell.CaptureConsole,
		ProjectID:      cfg.Shell.ProjectID,
		APIBaseURL:     cfg.Shell.APIBaseURL,
	})
	if err != nil {
		logger.Warn("Bridge inert", zap.Error(err))
	}
	allowed := b.AllowedOrigin()
	frame.SetOrigin(allowed)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.ShellCORSConfig(allowed)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(b, page, logger.Component("api"))
	relay := ws.NewRelay(page, frame, b,
		ws.WithLogger(logger.Component("relay")),
		ws.WithMetrics(metrics),
		ws.WithTracer(tracer),
	)

	router.GET("/health", handlers.Health)

	router.GET("/preview/state", handlers.State)
	router.GET("/preview/map", handlers.Map)
	router.POST("/preview/input", handlers.Input)

	router.GET("/bridge", relay.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully", zap.String("allowed_origin", allowed))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		page:    page,
		frame:   frame,
		bridge:  b,
		relay:   relay,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Bridge returns the bridge session
func (s *Server) Bridge() *bridge.Bridge {
	return s.bridge
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Hijacked relay sockets are not covered; Close disconnects them.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Close disconnects relay shells, destroys the bridge and flushes telemetry
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.relay.Close()
	s.bridge.Destroy()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}

// anchor places the inline editor at the bottom-left corner of the element.
// It runs inside a page turn, so it reads the document directly.
func anchor(page *headless.Page, id string) *protocol.Position {
	sel := "[" + dom.IdentityAttribute + "=" + strconv.Quote(id) + "]"
	if !selector.IsValid(sel) {
		return nil
	}
	el := page.Document().QuerySelector(sel)
	if el == nil {
		return nil
	}
	rect := el.BoundingRect()
	return &protocol.Position{X: rect.Left, Y: rect.Bottom}
}
