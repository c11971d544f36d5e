package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gridverify/internal/browser"
	"gridverify/internal/testid"
)

// fakeApp describes which parts of the grid selector the fake page renders.
type fakeApp struct {
	trigger     bool
	popover     bool // shown after the trigger is clicked
	navigateErr error
	launchErr   error
	shotErr     error // returned by every screenshot
}

func healthyApp() fakeApp {
	return fakeApp{trigger: true, popover: true}
}

// fakeDriver records every call so tests can assert on ordering.
type fakeDriver struct {
	app   fakeApp
	stamp string // written into screenshots

	mu     sync.Mutex
	calls  []string
	closes int
}

func newFakeDriver(app fakeApp) *fakeDriver {
	return &fakeDriver{app: app, stamp: "run-1"}
}

func (d *fakeDriver) record(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDriver) Launch(ctx context.Context) (browser.Session, error) {
	d.record("launch")
	if d.app.launchErr != nil {
		return nil, d.app.launchErr
	}
	return &fakeSession{d: d}, nil
}

type fakeSession struct {
	d *fakeDriver
}

func (s *fakeSession) NewPage(ctx context.Context) (browser.Page, error) {
	s.d.record("new_page")
	return &fakePage{d: s.d}, nil
}

func (s *fakeSession) Close() error {
	s.d.record("close")
	s.d.mu.Lock()
	s.d.closes++
	s.d.mu.Unlock()
	return nil
}

type fakePage struct {
	d      *fakeDriver
	loaded bool
	opened bool
}

func (p *fakePage) Goto(ctx context.Context, url string) error {
	p.d.record("goto %s", url)
	if p.d.app.navigateErr != nil {
		return p.d.app.navigateErr
	}
	p.loaded = true
	return nil
}

func (p *fakePage) Query(selector string) browser.Element {
	return &fakeElement{page: p, selector: selector}
}

func (p *fakePage) Screenshot(ctx context.Context, path string) error {
	p.d.record("screenshot %s", path)
	if p.d.app.shotErr != nil {
		return p.d.app.shotErr
	}
	return os.WriteFile(path, []byte(p.d.stamp+":"+path), 0o644)
}

// visible reports the current state of the page; elements are never cached.
func (p *fakePage) visible(selector string) bool {
	if !p.loaded {
		return false
	}
	switch selector {
	case testid.Selector(testid.Trigger):
		return p.d.app.trigger
	case testid.Selector(testid.Popover):
		return p.d.app.popover && p.opened
	default:
		return p.d.app.popover && p.opened && selector == testid.Selector(testid.Cell(2, 2))
	}
}

type fakeElement struct {
	page     *fakePage
	selector string
}

func (e *fakeElement) WaitVisible(ctx context.Context, timeout time.Duration) error {
	e.page.d.record("wait %s %s", e.selector, timeout)
	if !e.page.visible(e.selector) {
		return fmt.Errorf("%s: %w", e.selector, browser.ErrTimeout)
	}
	return nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.page.d.record("click %s", e.selector)
	if !e.page.visible(e.selector) {
		return errors.New("click: element not visible")
	}
	if e.selector == testid.Selector(testid.Trigger) {
		e.page.opened = true
	}
	return nil
}

func (e *fakeElement) Hover(ctx context.Context) error {
	e.page.d.record("hover %s", e.selector)
	if !e.page.visible(e.selector) {
		return errors.New("hover: element not visible")
	}
	return nil
}
