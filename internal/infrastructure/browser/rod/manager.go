package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
)

var _ output.SessionProvider = (*SessionManager)(nil)

const (
	defaultMaxSessions       = 4
	defaultNavigationTimeout = 30 * time.Second
)

type Config struct {
	// Bin is the Chrome executable. Empty lets the launcher find or
	// download one.
	Bin               string
	Headless          bool
	NoSandbox         bool
	MaxSessions       int64
	NavigationTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Headless:          true,
		MaxSessions:       defaultMaxSessions,
		NavigationTimeout: defaultNavigationTimeout,
	}
}

// SessionManager launches one Chrome process per WithSession call. The
// number of live processes is bounded by MaxSessions.
type SessionManager struct {
	cfg     Config
	slots   *semaphore.Weighted
	logger  output.LoggerPort
	metrics output.MetricsPort
}

func NewSessionManager(cfg Config, logger output.LoggerPort, metrics output.MetricsPort) *SessionManager {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	return &SessionManager{
		cfg:     cfg,
		slots:   semaphore.NewWeighted(cfg.MaxSessions),
		logger:  logger,
		metrics: metrics,
	}
}

// WithSession runs fn against a fresh page. Page, browser and Chrome process
// are released before it returns, including when fn panics.
func (m *SessionManager) WithSession(ctx context.Context, opts entity.SessionOptions, fn func(context.Context, output.Session) error) (err error) {
	if err := m.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: wait for browser slot: %v", entity.ErrEngineFault, err)
	}
	defer m.slots.Release(1)

	l := launcher.New().
		Context(ctx).
		Leakless(true).
		Headless(m.cfg.Headless).
		NoSandbox(m.cfg.NoSandbox).
		Set("disable-gpu").
		Set("hide-scrollbars")
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: launch browser: %v", entity.ErrEngineFault, err)
	}
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: connect browser: %v", entity.ErrEngineFault, err)
	}
	defer func() { _ = browser.Close() }()

	var page *rod.Page
	if opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return fmt.Errorf("%w: open page: %v", entity.ErrEngineFault, err)
	}
	defer func() { _ = page.Close() }()

	if vp := opts.Viewport; vp.Width > 0 && vp.Height > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             vp.Width,
			Height:            vp.Height,
			DeviceScaleFactor: 1,
		}).Call(page); err != nil {
			return fmt.Errorf("%w: set viewport: %v", entity.ErrEngineFault, err)
		}
	}

	s := &session{
		id:         uuid.NewString(),
		page:       page,
		navTimeout: m.cfg.NavigationTimeout,
		shot:       opts.Screenshot,
	}
	log := m.logger.WithField("session_id", s.id)

	m.metrics.SessionOpened()
	start := time.Now()
	log.Debug("Browser session opened", "stealth", opts.Stealth)
	defer func() {
		m.metrics.SessionClosed()
		log.Debug("Browser session closed", "elapsed", time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Browser session panicked", "panic", r)
			err = fmt.Errorf("%w: session %s: %v", entity.ErrEngineFault, s.id, r)
		}
	}()

	return fn(ctx, s)
}
