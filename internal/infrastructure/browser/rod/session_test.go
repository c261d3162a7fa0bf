//go:build integration

package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
	"dom-engine/internal/infrastructure/logger"
	"dom-engine/internal/infrastructure/metrics"
)

func newManager(t *testing.T) *SessionManager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NoSandbox = true
	cfg.NavigationTimeout = 10 * time.Second
	return NewSessionManager(cfg, logger.NewNop(), metrics.Noop{})
}

func withLoaded(t *testing.T, doc string, opts entity.SessionOptions, fn func(ctx context.Context, s output.Session)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := newManager(t).WithSession(ctx, opts, func(ctx context.Context, s output.Session) error {
		require.NoError(t, s.Load(ctx, doc))
		fn(ctx, s)
		return nil
	})
	require.NoError(t, err)
}

func TestWithSession_ReturnsCallbackError(t *testing.T) {
	sentinel := fmt.Errorf("boom")
	err := newManager(t).WithSession(context.Background(), entity.SessionOptions{}, func(context.Context, output.Session) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestWithSession_RecoversPanic(t *testing.T) {
	err := newManager(t).WithSession(context.Background(), entity.SessionOptions{}, func(context.Context, output.Session) error {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrEngineFault)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestWithSession_CancelledWhileWaitingForSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoSandbox = true
	cfg.MaxSessions = 1
	m := NewSessionManager(cfg, logger.NewNop(), metrics.Noop{})

	require.NoError(t, m.slots.Acquire(context.Background(), 1))
	defer m.slots.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.WithSession(ctx, entity.SessionOptions{}, func(context.Context, output.Session) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, entity.ErrEngineFault)
}

func TestSession_DocumentRoundTrip(t *testing.T) {
	withLoaded(t, BasicHTML, entity.SessionOptions{}, func(ctx context.Context, s output.Session) {
		doc, err := s.Document(ctx)
		require.NoError(t, err)
		assert.Contains(t, doc, "<!DOCTYPE html>")
		assert.Contains(t, doc, `<h1 class="title">Hello World</h1>`)
		assert.NotEmpty(t, s.ID())
	})
}

func TestSession_ApplyVariants(t *testing.T) {
	withLoaded(t, UtilityHTML, entity.SessionOptions{}, func(ctx context.Context, s output.Session) {
		btn := `.hover\:bg-red-500`

		n, err := s.Count(ctx, btn)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = s.Apply(ctx, btn, entity.SetText{Text: "Buy"}, false)
		require.NoError(t, err)
		_, err = s.Apply(ctx, btn, entity.MergeStyle{Properties: map[string]string{"color": "red !important", "margin-top": "4px"}}, false)
		require.NoError(t, err)
		_, err = s.Apply(ctx, btn, entity.SetAttribute{Name: "data-id", Value: "7"}, false)
		require.NoError(t, err)
		_, err = s.Apply(ctx, btn, entity.ModifyClass{Add: []string{"active"}, Remove: []string{"bg-blue-500"}}, false)
		require.NoError(t, err)

		el, err := s.Element(ctx, btn)
		require.NoError(t, err)
		assert.Equal(t, "Buy", el.Text)
		assert.Equal(t, "7", el.Attributes["data-id"])
		assert.Contains(t, el.Attributes["style"], "color: red !important")
		assert.Contains(t, el.Classes, "active")
		assert.NotContains(t, el.Classes, "bg-blue-500")

		section := `[data-section='pricing']`
		_, err = s.Apply(ctx, section, entity.Hide{}, false)
		require.NoError(t, err)
		el, err = s.Element(ctx, section)
		require.NoError(t, err)
		assert.Equal(t, "display: none;", el.Attributes["style"])

		_, err = s.Apply(ctx, section, entity.Show{}, false)
		require.NoError(t, err)
		el, err = s.Element(ctx, section)
		require.NoError(t, err)
		_, styled := el.Attributes["style"]
		assert.False(t, styled)

		_, err = s.Apply(ctx, section, entity.ReplaceElement{HTML: `<aside id="new">x</aside>`}, false)
		require.NoError(t, err)
		n, err = s.Count(ctx, "#new")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestSession_InvalidSelectorIsValidation(t *testing.T) {
	withLoaded(t, BasicHTML, entity.SessionOptions{}, func(ctx context.Context, s output.Session) {
		_, err := s.Count(ctx, ".w-[100px]")
		assert.ErrorIs(t, err, entity.ErrValidation)

		_, err = s.Element(ctx, "#missing")
		assert.ErrorIs(t, err, entity.ErrElementNotFound)
	})
}

func TestSession_TreeRootAndSkips(t *testing.T) {
	withLoaded(t, BasicHTML, entity.SessionOptions{}, func(ctx context.Context, s output.Session) {
		root, err := s.Tree(ctx, entity.TreeOptions{IncludeBounds: true})
		require.NoError(t, err)

		assert.Equal(t, "main", root.Tag)
		assert.Equal(t, "app", root.ID)
		assert.Equal(t, 0, root.Depth)
		require.Len(t, root.Children, 2)
		assert.Equal(t, "h1", root.Children[0].Tag)
		assert.Equal(t, "Hello World", root.Children[0].Text)
		assert.Equal(t, 1, root.Children[0].Depth)
		require.NotNil(t, root.Children[0].Bounds)
		assert.Greater(t, root.Children[0].Bounds.Height, 0.0)
	})
}

func TestSession_VisualColorClasses(t *testing.T) {
	withLoaded(t, UtilityHTML, entity.SessionOptions{}, func(ctx context.Context, s output.Session) {
		snap, err := s.Visual(ctx, "header")
		require.NoError(t, err)
		assert.Equal(t, "header", snap.Tag)
		assert.Equal(t, []string{"bg-white", "text-gray-900"}, snap.ColorClasses)
		assert.NotEmpty(t, snap.Style.FontSize)
		assert.Greater(t, snap.Rect.Width, 0.0)
	})
}

func TestSession_ScreenshotDownscales(t *testing.T) {
	opts := entity.SessionOptions{
		Viewport:   entity.Viewport{Width: 1280, Height: 800},
		Screenshot: entity.ScreenshotOptions{Format: "png", MaxWidth: 1024},
	}
	withLoaded(t, TallHTML, opts, func(ctx context.Context, s output.Session) {
		shot, err := s.Screenshot(ctx, "", true)
		require.NoError(t, err)
		assert.Equal(t, "png", shot.Format)
		assert.Equal(t, 1024, shot.Width)
		assert.NotEmpty(t, shot.Data)

		el, err := s.Screenshot(ctx, "#top", false)
		require.NoError(t, err)
		assert.LessOrEqual(t, el.Width, 1024)

		_, err = s.Screenshot(ctx, "#nope", false)
		assert.ErrorIs(t, err, entity.ErrElementNotFound)
	})
}

func TestSession_NavigateAndSample(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, ReferenceHTML)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := newManager(t).WithSession(ctx, entity.SessionOptions{Stealth: true}, func(ctx context.Context, s output.Session) error {
		require.NoError(t, s.Navigate(ctx, server.URL))

		sample, err := s.SampleDesign(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "Acme", sample.Title)
		assert.NotEmpty(t, sample.Colors)
		assert.NotEmpty(t, sample.Fonts)
		assert.Equal(t, 1, sample.DisplayCounts["grid"])
		require.NotNil(t, sample.Header)
		assert.Equal(t, "sticky", sample.Header.Position)
		require.NotNil(t, sample.Hero)
		assert.Contains(t, sample.HTML, "bg-orange-500")
		return nil
	})
	require.NoError(t, err)
}

func TestSession_NavigateFailure(t *testing.T) {
	err := newManager(t).WithSession(context.Background(), entity.SessionOptions{Stealth: true}, func(ctx context.Context, s output.Session) error {
		return s.Navigate(ctx, "http://127.0.0.1:1/")
	})
	assert.ErrorIs(t, err, entity.ErrNavigationFailed)
}

func TestSession_NavigateTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.NoSandbox = true
	cfg.NavigationTimeout = time.Second
	m := NewSessionManager(cfg, logger.NewNop(), metrics.Noop{})

	var elapsed time.Duration
	err := m.WithSession(context.Background(), entity.SessionOptions{}, func(ctx context.Context, s output.Session) error {
		start := time.Now()
		defer func() { elapsed = time.Since(start) }()
		return s.Navigate(ctx, srv.URL)
	})

	assert.ErrorIs(t, err, entity.ErrNavigationFailed)
	assert.GreaterOrEqual(t, elapsed, cfg.NavigationTimeout)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestEditPayload(t *testing.T) {
	p, err := editPayload(entity.MergeStyle{Properties: map[string]string{"b": "2", "a": "1 !important"}})
	require.NoError(t, err)
	assert.Equal(t, []styleDecl{{Name: "a", Value: "1", Priority: "important"}, {Name: "b", Value: "2"}}, p["properties"])

	p, err = editPayload(entity.ModifyClass{Add: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{}, p["remove"])
}
