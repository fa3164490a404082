package notepages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-notepages/internal/process"
)

// SurfaceFactory creates fixed-size render targets. Each target is owned by
// the caller until it is closed.
type SurfaceFactory interface {
	NewTarget(ctx context.Context, width, height int) (RenderTarget, error)
}

// RenderTarget turns one HTML document into a PNG of its surface.
type RenderTarget interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ SurfaceFactory = (*rodSurfaceFactory)(nil)
	_ RenderTarget   = (*rodTarget)(nil)
)

// DefaultPixelRatio is the device scale factor used for screenshots.
const DefaultPixelRatio = 2.0

// rodSurfaceFactory renders surfaces in headless Chrome via go-rod.
// The browser is launched on first use and shared by all targets.
// Rod downloads Chromium on first run if none is found.
type rodSurfaceFactory struct {
	mu         sync.Mutex
	launcher   *launcher.Launcher
	browser    *rod.Browser
	timeout    time.Duration
	pixelRatio float64
}

func newRodSurfaceFactory(timeout time.Duration, pixelRatio float64) *rodSurfaceFactory {
	return &rodSurfaceFactory{timeout: timeout, pixelRatio: pixelRatio}
}

// ensureBrowser lazily launches and connects to the browser.
func (f *rodSurfaceFactory) ensureBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containers
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	f.launcher = l
	f.browser = b
	return b, nil
}

// NewTarget opens a blank page with a viewport matching the surface.
func (f *rodSurfaceFactory) NewTarget(ctx context.Context, width, height int) (RenderTarget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := f.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: f.pixelRatio,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	return &rodTarget{page: page, width: width, height: height, timeout: f.timeout}, nil
}

// Close shuts the browser down and kills its process tree.
func (f *rodSurfaceFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil {
		return nil
	}

	err := f.browser.Close()
	f.browser = nil

	if f.launcher != nil {
		// Chrome helpers can outlive the main process.
		process.KillProcessGroup(f.launcher.PID())
		f.launcher.Kill()
		f.launcher.Cleanup()
		f.launcher = nil
	}
	return err
}

// rodTarget is one browser page sized to a surface.
type rodTarget struct {
	page    *rod.Page
	width   int
	height  int
	timeout time.Duration
}

// Render loads html into the page, waits for layout and fonts, and captures
// the surface as PNG.
func (t *rodTarget) Render(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page := t.page.Context(ctx).Timeout(timeout)

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, wrapCtx(ctx, err))
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, wrapCtx(ctx, err))
	}
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, wrapCtx(ctx, err))
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			Width:  float64(t.width),
			Height: float64(t.height),
			Scale:  1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, wrapCtx(ctx, err))
	}
	return data, nil
}

// Close releases the page.
func (t *rodTarget) Close() error {
	return t.page.Close()
}

// wrapCtx prefers the context error when rod reports a cancellation.
func wrapCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
