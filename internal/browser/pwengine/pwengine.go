// Package pwengine implements browser.Driver on top of playwright-go.
package pwengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"gridverify/internal/browser"
)

// Name identifies this engine in configuration.
const Name = "playwright"

// Options configure the Chromium launch.
type Options struct {
	Headless bool
	Viewport browser.Viewport
	Args     []string
}

// Driver launches Chromium through a playwright driver process.
type Driver struct {
	opts Options
}

// New returns a Driver. A zero viewport falls back to browser.DefaultViewport.
func New(opts Options) *Driver {
	if opts.Viewport.Width == 0 || opts.Viewport.Height == 0 {
		opts.Viewport = browser.DefaultViewport
	}
	return &Driver{opts: opts}
}

// Install downloads the Chromium build playwright expects.
func Install() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// Launch starts playwright and a Chromium instance.
func (d *Driver) Launch(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
		Args:     d.opts.Args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &session{pw: pw, browser: b, viewport: d.opts.Viewport}, nil
}

type session struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	viewport browser.Viewport
	closed   bool
}

func (s *session) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: s.viewport.Width, Height: s.viewport.Height},
	})
	if err != nil {
		return nil, err
	}
	return &page{p: p}, nil
}

// Close shuts the browser and the playwright driver. Later calls are no-ops.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.browser.Close(), s.pw.Stop())
}

type page struct {
	p playwright.Page
}

func (p *page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.p.Goto(url)
	return err
}

func (p *page) Query(selector string) browser.Element {
	return &element{loc: p.p.Locator(selector), selector: selector}
}

func (p *page) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.p.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}

type element struct {
	loc      playwright.Locator
	selector string
}

func (e *element) WaitVisible(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s: %w: %w", e.selector, browser.ErrTimeout, err)
	}
	return err
}

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Click()
}

func (e *element) Hover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Hover()
}
