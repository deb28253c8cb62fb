package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/previewbridge/internal/bridge"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/headless"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

const shellOrigin = "https://shell.example"

const page = `<html><body>
  <button data-ve-id="btn-1" class="btn">Buy</button>
  <a href="/docs" data-ve-id="docs">Docs</a>
</body></html>`

type testServer struct {
	router *gin.Engine
	frame  *headless.Frame
	bridge *bridge.Bridge
}

func setup(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	frame := headless.NewFrame(shellOrigin)
	p, err := headless.ParseString(page,
		headless.WithParent(frame),
		headless.WithLayout(headless.Layout{"btn-1": {X: 1, Y: 2, Width: 30, Height: 10}}),
	)
	require.NoError(t, err)

	b := bridge.New(p)
	require.NoError(t, b.Init(bridge.Config{Origin: shellOrigin, CaptureConsole: true}))
	frame.Reset()

	h := NewHandlers(b, p, nil)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/preview/state", h.State)
	router.GET("/preview/map", h.Map)
	router.POST("/preview/input", h.Input)

	return &testServer{router: router, frame: frame, bridge: b}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthAndState(t *testing.T) {
	s := setup(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = s.do(t, http.MethodGet, "/preview/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state bridge.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Initialized)
	assert.Equal(t, shellOrigin, state.AllowedOrigin)
}

func TestMap(t *testing.T) {
	s := setup(t)

	w := s.do(t, http.MethodGet, "/preview/map", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Elements []headless.MapEntry `json:"elements"`
		Count    int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "btn-1", out.Elements[0].ElementID)
	assert.Equal(t, protocol.NewRect(1, 2, 30, 10), out.Elements[0].Rect)
}

func TestInputAltClickSelects(t *testing.T) {
	s := setup(t)

	w := s.do(t, http.MethodPost, "/preview/input", InputRequest{Kind: InputClick, ElementID: "btn-1", Alt: true})
	require.Equal(t, http.StatusOK, w.Code)

	var resp InputResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.DefaultPrevented)
	assert.Equal(t, "btn-1", resp.State.SelectedElementID)

	msgs := s.frame.Messages()
	require.Len(t, msgs, 1)
	ev, err := protocol.DecodeEvent(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.EventSelect, ev.Type)
}

func TestInputBySelector(t *testing.T) {
	s := setup(t)
	s.bridge.SetPickMode(true)

	w := s.do(t, http.MethodPost, "/preview/input", InputRequest{Kind: InputMouseMove, Selector: `a[href="/docs"]`})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", s.bridge.State().HoveredElementID)
}

func TestInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"unknown kind", map[string]string{"kind": "scroll"}, http.StatusBadRequest},
		{"missing kind", map[string]string{}, http.StatusBadRequest},
		{"no target", InputRequest{Kind: InputClick}, http.StatusBadRequest},
		{"invalid selector", InputRequest{Kind: InputClick, Selector: "<script>"}, http.StatusBadRequest},
		{"missing element", InputRequest{Kind: InputClick, ElementID: "nope"}, http.StatusNotFound},
		{"keydown without key", InputRequest{Kind: InputKeyDown}, http.StatusBadRequest},
		{"error without message", InputRequest{Kind: InputError}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setup(t)
			w := s.do(t, http.MethodPost, "/preview/input", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, s.frame.Messages())
		})
	}
}

func TestInputKeyDownAndError(t *testing.T) {
	s := setup(t)

	s.do(t, http.MethodPost, "/preview/input", InputRequest{Kind: InputClick, ElementID: "btn-1", Alt: true})
	w := s.do(t, http.MethodPost, "/preview/input", InputRequest{Kind: InputKeyDown, Key: "Escape"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.bridge.State().SelectedElementID)

	w = s.do(t, http.MethodPost, "/preview/input", InputRequest{Kind: InputError, Message: "boom"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	msgs := s.frame.Messages()
	require.Len(t, msgs, 3)
	ev, err := protocol.DecodeEvent(msgs[2])
	require.NoError(t, err)
	assert.Equal(t, protocol.EventError, ev.Type)
	assert.Equal(t, "boom", ev.Error.Message)
}
