package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dom-engine/internal/domain/entity"
	"dom-engine/internal/infrastructure/cache"
	"dom-engine/internal/infrastructure/logger"
	"dom-engine/internal/infrastructure/metrics"
	"dom-engine/internal/testutil"
	"dom-engine/internal/usecase/engine"
)

const doc = `<html><body><header><h1 class="title">Old</h1></header><p class="md:text-lg">Copy</p></body></html>`

func newRouter(t *testing.T, p *testutil.FakeProvider, opts Options) http.Handler {
	t.Helper()
	eng := engine.New(p, cache.Noop{}, metrics.Noop{}, logger.NewNop(), engine.Options{
		Viewport:         entity.Viewport{Width: 1280, Height: 800},
		OperationTimeout: 5 * time.Second,
	})
	opts.AccessLogLevel = "error"
	return NewRouter(eng, logger.NewNop(), opts)
}

func post(t *testing.T, h http.Handler, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHealth(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"status":"healthy","service":"dom-engine","cache":"disabled"}`, rec.Body.String())
}

func TestEditSimple(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	rec, out := post(t, h, "/edit-simple", map[string]string{
		"html":        doc,
		"instruction": "change the header text to Hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["applied"])
	assert.Contains(t, out["html"], `<h1 class="title">Hello</h1>`)

	rec, out = post(t, h, "/edit-simple", map[string]string{"html": doc, "instruction": "do a barrel roll"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["applied"])
	assert.Equal(t, doc, out["html"])
}

func TestEditComponent(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	rec, out := post(t, h, "/edit-component", map[string]any{
		"html":       doc,
		"selector":   ".md:text-lg",
		"edit_type":  "class",
		"edit_value": map[string]any{"add": []string{"text-red-500"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, out["html"], `class="md:text-lg text-red-500"`)
}

func TestEditComponent_FailuresEchoDocument(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	tests := []struct {
		name   string
		body   map[string]any
		status int
		kind   string
	}{
		{
			name:   "missing element",
			body:   map[string]any{"html": doc, "selector": "#gone", "edit_type": "text", "edit_value": "x"},
			status: http.StatusNotFound,
			kind:   "element_not_found",
		},
		{
			name:   "unknown edit type",
			body:   map[string]any{"html": doc, "selector": "h1", "edit_type": "explode", "edit_value": "x"},
			status: http.StatusBadRequest,
			kind:   "validation_error",
		},
		{
			name:   "payload shape mismatch",
			body:   map[string]any{"html": doc, "selector": "h1", "edit_type": "style", "edit_value": 42},
			status: http.StatusBadRequest,
			kind:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := post(t, h, "/edit-component", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.kind, out["kind"])
			assert.NotEmpty(t, out["error"])
			assert.Equal(t, doc, out["html"])
		})
	}
}

func TestGetDOM(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	_, out := post(t, h, "/get-dom", map[string]any{"html": doc, "include_bounds": true})
	root := out["dom"].(map[string]any)
	assert.Equal(t, "body", root["tag"])
	assert.NotContains(t, root, "bounds")

	_, out = post(t, h, "/get-dom-detailed", map[string]any{"html": doc})
	assert.Contains(t, out["dom"].(map[string]any), "bounds")

	_, out = post(t, h, "/get-dom-detailed", map[string]any{"html": doc, "include_bounds": false})
	assert.NotContains(t, out["dom"].(map[string]any), "bounds")
}

func TestGetElementAndVisualInfo(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	rec, out := post(t, h, "/get-element", map[string]string{"html": doc, "selector": "h1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "h1", out["element"].(map[string]any)["tag"])

	rec, out = post(t, h, "/get-element-visual-info", map[string]string{"html": doc, "selector": ".md:text-lg"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p", out["element"].(map[string]any)["tag"])

	rec, out = post(t, h, "/get-element", map[string]string{"html": doc, "selector": "#nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, out, "html")
}

func TestScreenshot(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{})

	rec, out := post(t, h, "/screenshot", map[string]any{"html": doc})
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := base64.StdEncoding.DecodeString(out["screenshot"].(string))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 96, img.Bounds().Dy())
	assert.Equal(t, "png", out["format"])

	_, out = post(t, h, "/screenshot", map[string]any{"html": doc, "full_page": false})
	assert.EqualValues(t, 48, out["height"])
}

func TestFetchURL(t *testing.T) {
	p := &testutil.FakeProvider{Configure: func(s *testutil.FakeSession) {
		s.Sample = &entity.DesignSample{Title: "Ref", HTML: "<html><body></body></html>"}
	}}
	h := newRouter(t, p, Options{})

	rec, out := post(t, h, "/fetch-url", map[string]any{"url": "ref.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://ref.test", out["url"])
	assert.NotEmpty(t, out["screenshot"])
	assert.Equal(t, "Ref", out["design_info"].(map[string]any)["title"])

	_, out = post(t, h, "/fetch-url", map[string]any{"url": "ref.test", "capture_screenshot": false, "extract_design": false})
	assert.NotContains(t, out, "screenshot")
	assert.NotContains(t, out, "design_info")
}

func TestFetchURL_NavigationFailure(t *testing.T) {
	p := &testutil.FakeProvider{Configure: func(s *testutil.FakeSession) {
		s.NavigateErr = fmt.Errorf("%w: connection refused", entity.ErrNavigationFailed)
	}}
	h := newRouter(t, p, Options{})

	rec, out := post(t, h, "/fetch-url", map[string]any{"url": "https://down.test"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "navigation_failed", out["kind"])
}

func TestBadBodies(t *testing.T) {
	p := &testutil.FakeProvider{}
	h := newRouter(t, p, Options{MaxBodyBytes: 64})

	rec, out := post(t, h, "/get-dom", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", out["kind"])

	rec, out = post(t, h, "/get-dom", map[string]string{"html": strings.Repeat("a", 200)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "exceeds 64 bytes")

	opened, _ := p.Counts()
	assert.Zero(t, opened)
}

func TestMetricsMounted(t *testing.T) {
	h := newRouter(t, &testutil.FakeProvider{}, Options{Metrics: metrics.Handler()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newRouter(t, &testutil.FakeProvider{}, Options{})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerDrainsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ln.Addr().String(), newRouter(t, &testutil.FakeProvider{}, Options{}), time.Second, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = NewServer(ln.Addr().String(), http.NotFoundHandler(), time.Second, logger.NewNop()).Run(context.Background())
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}
