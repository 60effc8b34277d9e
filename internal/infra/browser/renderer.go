package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const screenshotUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Config controls the headless browser.
type Config struct {
	Bin            string
	ViewportWidth  int
	ViewportHeight int
	SettleDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 800
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 1500 * time.Millisecond
	}
	return c
}

// Renderer captures above-the-fold screenshots with headless Chromium. The
// browser is launched on first use. It implements linkcheck.Renderer.
type Renderer struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	launch   *launcher.Launcher
	browser  *rod.Browser
	shutdown bool
}

// NewRenderer builds a lazily started renderer.
func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "browser.renderer"),
	}
}

// Screenshot opens url in a fresh incognito context and returns a PNG of the viewport.
func (r *Renderer) Screenshot(ctx context.Context, url string) ([]byte, error) {
	b, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		r.logger.Warn("set viewport failed", "error", err)
	}
	if err := (proto.NetworkSetUserAgentOverride{UserAgent: screenshotUserAgent}).Call(page); err != nil {
		r.logger.Warn("set user agent failed", "error", err)
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	wait()

	select {
	case <-time.After(r.cfg.SettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return png, nil
}

func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		return nil, errors.New("renderer closed")
	}
	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.logger.Warn("stale browser connection, relaunching")
		r.closeLocked()
	}

	l := launcher.New().Headless(true).Leakless(false)
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.launch = l
	r.browser = b
	r.logger.Info("headless browser started")
	return b, nil
}

// Close stops the browser if it was started.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdown = true
	return r.closeLocked()
}

func (r *Renderer) closeLocked() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launch != nil {
		r.launch.Kill()
		r.launch = nil
	}
	return err
}
