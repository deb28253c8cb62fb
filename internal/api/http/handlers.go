package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/bridge"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/headless"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/selector"
)

// Input kinds accepted by POST /preview/input
const (
	InputMouseMove = "mousemove"
	InputClick     = "click"
	InputKeyDown   = "keydown"
	InputError     = "error"
)

// InputRequest simulates one user or page event
type InputRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=mousemove click keydown error"`
	ElementID string `json:"elementId"`
	Selector  string `json:"selector"`
	Alt       bool   `json:"alt"`
	Key       string `json:"key"`
	Message   string `json:"message"`
	Stack     string `json:"stack"`
}

// InputResponse reports how the page handled the event
type InputResponse struct {
	DefaultPrevented   bool         `json:"defaultPrevented"`
	PropagationStopped bool         `json:"propagationStopped"`
	State              bridge.State `json:"state"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	bridge *bridge.Bridge
	page   *headless.Page
	logger *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(b *bridge.Bridge, page *headless.Page, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		bridge: b,
		page:   page,
		logger: logger,
	}
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "previewd",
		"bridge":  h.bridge.State(),
	})
}

// State returns the bridge state
func (h *Handlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.bridge.State())
}

// Map lists the pickable elements of the page
func (h *Handlers) Map(c *gin.Context) {
	entries, err := h.page.ElementMap()
	if err != nil {
		h.logger.Error("Failed to build element map", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "element map unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"elements": entries,
		"count":    len(entries),
	})
}

// Input dispatches a simulated event into the page
func (h *Handlers) Input(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ev *dom.Event
	switch req.Kind {
	case InputMouseMove, InputClick:
		target, status, msg := h.resolveTarget(req)
		if target == nil {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		if req.Kind == InputClick {
			ev = h.page.Click(target, headless.Modifiers{Alt: req.Alt})
		} else {
			ev = h.page.MouseMove(target)
		}

	case InputKeyDown:
		if req.Key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
			return
		}
		ev = h.page.KeyDown(req.Key)

	case InputError:
		if req.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
			return
		}
		h.page.RaiseError(req.Message, req.Stack)
		c.JSON(http.StatusAccepted, InputResponse{State: h.bridge.State()})
		return
	}

	c.JSON(http.StatusOK, InputResponse{
		DefaultPrevented:   ev.DefaultPrevented(),
		PropagationStopped: ev.PropagationStopped(),
		State:              h.bridge.State(),
	})
}

// resolveTarget finds the event target by identity or, failing that, by a
// validated selector
func (h *Handlers) resolveTarget(req InputRequest) (dom.Element, int, string) {
	switch {
	case req.ElementID != "":
		if el := h.page.ByID(req.ElementID); el != nil {
			return el, 0, ""
		}
	case req.Selector != "":
		if !selector.IsValid(req.Selector) {
			return nil, http.StatusBadRequest, "invalid selector"
		}
		if el := h.page.Find(req.Selector); el != nil {
			return el, 0, ""
		}
	default:
		return nil, http.StatusBadRequest, "elementId or selector required"
	}
	return nil, http.StatusNotFound, "element not found"
}
