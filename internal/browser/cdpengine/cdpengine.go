// Package cdpengine implements browser.Driver over the Chrome DevTools
// Protocol with chromedp.
package cdpengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"gridverify/internal/browser"
)

// Name identifies this engine in configuration.
const Name = "chromedp"

// DefaultActionTimeout bounds navigation, clicks, hovers and screenshots,
// which chromedp would otherwise wait on forever.
const DefaultActionTimeout = 30 * time.Second

// Options configure the Chrome process.
type Options struct {
	Headless      bool
	Viewport      browser.Viewport
	ExecPath      string
	ActionTimeout time.Duration
}

// Driver launches a local Chrome through chromedp's exec allocator.
type Driver struct {
	opts Options
}

// New returns a Driver with zero values replaced by defaults.
func New(opts Options) *Driver {
	if opts.Viewport.Width == 0 || opts.Viewport.Height == 0 {
		opts.Viewport = browser.DefaultViewport
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	return &Driver{opts: opts}
}

func (d *Driver) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.opts.Headless),
		chromedp.WindowSize(d.opts.Viewport.Width, d.opts.Viewport.Height),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	if d.opts.Headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}
	if d.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.opts.ExecPath))
	}
	return opts
}

// Launch starts Chrome and blocks until its first tab is attached.
func (d *Driver) Launch(ctx context.Context) (browser.Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), d.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	s := &session{ctx: browserCtx, cancel: func() {
		browserCancel()
		allocCancel()
	}, opts: d.opts}

	if err := chromedp.Run(browserCtx); err != nil {
		s.cancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	return s, nil
}

type session struct {
	ctx    context.Context
	cancel func()
	opts   Options
	closed bool
}

// NewPage returns the session's tab sized to the configured viewport.
func (s *session) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &page{ctx: s.ctx, timeout: s.opts.ActionTimeout}
	err := p.run(ctx, chromedp.EmulateViewport(int64(s.opts.Viewport.Width), int64(s.opts.Viewport.Height)))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Close terminates Chrome. Later calls are no-ops.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type page struct {
	ctx     context.Context
	timeout time.Duration
}

// run executes actions on the tab, bounded by the page's action timeout.
func (p *page) run(ctx context.Context, actions ...chromedp.Action) error {
	return p.runWithin(ctx, p.timeout, actions...)
}

func (p *page) runWithin(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	actx, cancel := actionContext(p.ctx, ctx, timeout)
	defer cancel()
	return chromedp.Run(actx, actions...)
}

// actionContext derives a context from the tab that ends after timeout or
// as soon as caller is cancelled, whichever comes first.
func actionContext(tab, caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(tab, timeout)
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (p *page) Goto(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *page) Query(selector string) browser.Element {
	return &element{page: p, selector: selector}
}

func (p *page) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

type element struct {
	page     *page
	selector string
}

func (e *element) WaitVisible(ctx context.Context, timeout time.Duration) error {
	err := e.page.runWithin(ctx, timeout, chromedp.WaitVisible(e.selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", e.selector, browser.ErrTimeout, err)
	}
	return err
}

func (e *element) Click(ctx context.Context) error {
	return e.page.run(ctx, chromedp.Click(e.selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// Hover moves the pointer to the centre of the element's content box.
func (e *element) Hover(ctx context.Context) error {
	var nodes []*cdp.Node
	return e.page.run(ctx,
		chromedp.ScrollIntoView(e.selector, chromedp.ByQuery),
		chromedp.Nodes(e.selector, &nodes, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.ActionFunc(func(ctx context.Context) error {
			box, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
			if err != nil {
				return err
			}
			x, y := center(box.Content)
			return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
	)
}

func center(q dom.Quad) (x, y float64) {
	n := len(q) / 2
	if n == 0 {
		return 0, 0
	}
	for i := 0; i < n; i++ {
		x += q[2*i]
		y += q[2*i+1]
	}
	return x / float64(n), y / float64(n)
}
