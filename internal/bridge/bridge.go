package bridge

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/monitoring"
)

// BuildShellOrigin is the build-time default shell origin:
//
//	go build -ldflags "-X github.com/GriffinCanCode/previewbridge/internal/bridge.BuildShellOrigin=https://shell.example"
var BuildShellOrigin string

const (
	// OriginParam is the page query parameter carrying the shell origin
	OriginParam = "shell_origin"

	HoverThrottle        = 50 * time.Millisecond
	MaxTextContentLength = 500
	HighlightDuration    = 1500 * time.Millisecond
	HighlightOutline     = "2px solid #3b82f6"
)

var (
	ErrNoOrigin       = errors.New("shell_origin is required: pass it in config, as ?shell_origin=..., or set SHELL_ORIGIN")
	ErrWildcardOrigin = errors.New("shell_origin must not be the wildcard \"*\"")
	ErrInvalidOrigin  = errors.New("shell_origin must be a scheme://host[:port] origin")
)

// Config is the public init surface. Only Origin and CaptureConsole affect
// the bridge; ProjectID and APIBaseURL are carried for hosts that read them.
type Config struct {
	Origin         string `json:"origin,omitempty"`
	CaptureConsole bool   `json:"captureConsole,omitempty"`
	ProjectID      string `json:"projectId,omitempty"`
	APIBaseURL     string `json:"apiBaseUrl,omitempty"`
}

// State is a snapshot of the bridge session. Empty strings mean absent.
type State struct {
	Initialized       bool   `json:"initialized"`
	AllowedOrigin     string `json:"allowedOrigin,omitempty"`
	PickModeEnabled   bool   `json:"pickModeEnabled"`
	HoveredElementID  string `json:"hoveredElementId,omitempty"`
	SelectedElementID string `json:"selectedElementId,omitempty"`
}

// InlineEditorFunc receives inline-editor-request commands. It runs after the
// command handler returns, so it may call back into the bridge.
type InlineEditorFunc func(elementID string)

// Option configures a Bridge
type Option func(*Bridge)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics enables Prometheus counters
func WithMetrics(m *monitoring.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// WithDefaultOrigin sets the environment-level origin, used after the
// explicit config value and the URL parameter.
func WithDefaultOrigin(origin string) Option {
	return func(b *Bridge) { b.defaultOrigin = origin }
}

// WithInlineEditor routes inline-editor-request commands to fn
func WithInlineEditor(fn InlineEditorFunc) Option {
	return func(b *Bridge) { b.inlineEditor = fn }
}

// Bridge is the single bridge session of one page. Every operation and every
// event handler runs under mu, so a handler observes and mutates state as
// one step.
type Bridge struct {
	mu sync.Mutex

	win           dom.Window
	logger        *zap.Logger
	metrics       *monitoring.Metrics
	defaultOrigin string
	inlineEditor  InlineEditorFunc

	state       State
	config      Config
	hover       *rate.Limiter
	unsubscribe []dom.Unsubscribe
}

// New creates an uninitialized bridge for win
func New(win dom.Window, opts ...Option) *Bridge {
	b := &Bridge{
		win:    win,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init resolves the trusted origin and attaches listeners. Calling it on an
// initialized bridge logs and does nothing. A missing, wildcard or malformed
// origin leaves the bridge inert.
func (b *Bridge) Init(cfg Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Initialized {
		b.logger.Warn("Already initialized")
		return nil
	}

	origin := b.resolveOrigin(cfg)
	if err := validateOrigin(origin); err != nil {
		b.logger.Error("Initialization refused", zap.String("origin", origin), zap.Error(err))
		return err
	}

	b.config = cfg
	b.state.AllowedOrigin = origin
	b.state.Initialized = true
	b.hover = rate.NewLimiter(rate.Limit(float64(time.Second)/float64(HoverThrottle)), 1)

	b.post(protocol.Event{Type: protocol.EventReady})

	doc := b.win.Document()
	b.unsubscribe = append(b.unsubscribe,
		doc.Listen(dom.KindMouseMove, dom.ListenOptions{}, b.handleMouseMove),
		doc.Listen(dom.KindClick, dom.ListenOptions{Capture: true}, b.handleClick),
		doc.Listen(dom.KindKeyDown, dom.ListenOptions{}, b.handleKeyDown),
		b.win.Listen(dom.KindMessage, dom.ListenOptions{}, b.handleMessage),
	)
	if cfg.CaptureConsole {
		b.unsubscribe = append(b.unsubscribe, b.win.Listen(dom.KindError, dom.ListenOptions{}, b.handlePageError))
	}

	b.metrics.SetBridgeInitialized(true)
	b.logger.Info("Initialized",
		zap.String("origin", origin),
		zap.String("project_id", cfg.ProjectID),
		zap.Bool("capture_console", cfg.CaptureConsole),
	)
	return nil
}

// Destroy detaches every listener and resets all state. No-op when not
// initialized; the bridge may be initialized again afterwards.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized {
		return
	}

	for _, off := range b.unsubscribe {
		off()
	}
	b.unsubscribe = nil
	b.state = State{}
	b.config = Config{}
	b.hover = nil

	b.metrics.SetBridgeInitialized(false)
	b.logger.Info("Destroyed")
}

// State returns a copy of the current state
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// AllowedOrigin returns the trusted shell origin, empty before Init
func (b *Bridge) AllowedOrigin() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.AllowedOrigin
}

// Config returns the config accepted by the last successful Init
func (b *Bridge) Config() Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

// SetPickMode toggles element picking
func (b *Bridge) SetPickMode(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.PickModeEnabled = enabled
}

// ListenerCount returns how many listeners the bridge holds
func (b *Bridge) ListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.unsubscribe)
}

// resolveOrigin picks the first non-empty of: config, URL parameter,
// environment default, build default.
func (b *Bridge) resolveOrigin(cfg Config) string {
	if cfg.Origin != "" {
		return cfg.Origin
	}
	if loc := b.win.Location(); loc != nil {
		if v := loc.Query().Get(OriginParam); v != "" {
			return v
		}
	}
	if b.defaultOrigin != "" {
		return b.defaultOrigin
	}
	return BuildShellOrigin
}

// validateOrigin accepts only a serialized origin: scheme and host, no path,
// query, fragment or credentials.
func validateOrigin(origin string) error {
	if origin == "" {
		return ErrNoOrigin
	}
	if strings.Contains(origin, "*") {
		return ErrWildcardOrigin
	}

	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Opaque != "" || u.User != nil ||
		u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return ErrInvalidOrigin
	}
	return nil
}
