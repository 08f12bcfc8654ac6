package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "schedview/internal/log"
)

// Default viewport, matching the 12.48" tri-color panel in landscape.
const (
	DefaultWidth      = 1304
	DefaultHeight     = 984
	DefaultTimeoutSec = 30

	readySelector = `[data-ready="true"]`
)

// CaptureOptions defines one headless Chromium screenshot.
type CaptureOptions struct {
	// HTMLPath is a rendered page on disk. It is loaded as a file:// URL.
	HTMLPath string

	// OutputPath is where the PNG is written.
	OutputPath string

	// Viewport size in pixels; zero means the defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture.
	Timeout time.Duration
}

// FileURL turns a local path into an absolute file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func (o *CaptureOptions) normalize() error {
	if o.HTMLPath == "" {
		return errors.New("capture: HTMLPath is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// CapturePNG opens opts.HTMLPath in headless Chromium, waits until the page
// root reports data-ready="true" and writes a full-page PNG screenshot.
//
// The page is expected to be fully static (no fetches), so readiness is
// immediate; the short sleep only lets web fonts settle.
func CapturePNG(parentCtx context.Context, opts CaptureOptions) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if _, err := os.Stat(opts.HTMLPath); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	target, err := FileURL(opts.HTMLPath)
	if err != nil {
		return fmt.Errorf("capture: resolve %s: %w", opts.HTMLPath, err)
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(target),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.Sleep(200 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("page captured", "page", opts.HTMLPath, "png", opts.OutputPath,
		"bytes", len(png), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
