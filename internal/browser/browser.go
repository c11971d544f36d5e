// Package browser defines the small surface the verification runner needs
// from a browser automation engine.
package browser

import (
	"context"
	"errors"
	"time"

	"gridverify/internal/testid"
)

// ErrTimeout is matched by errors returned from WaitVisible when the
// element did not become visible in time.
var ErrTimeout = errors.New("timed out waiting for element")

// Driver starts browser sessions.
type Driver interface {
	Launch(ctx context.Context) (Session, error)
}

// Session owns one browser process. Close must release it.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab.
type Page interface {
	Goto(ctx context.Context, url string) error
	// Query returns a handle for selector. It must not touch the page;
	// resolution happens on each Element call.
	Query(selector string) Element
	// Screenshot writes a PNG of the viewport to path, replacing any
	// existing file.
	Screenshot(ctx context.Context, path string) error
}

// Element is a lazily resolved handle to a node on a page.
type Element interface {
	WaitVisible(ctx context.Context, timeout time.Duration) error
	Click(ctx context.Context) error
	Hover(ctx context.Context) error
}

// Locate returns the element carrying the data-testid id on page.
func Locate(page Page, id string) Element {
	return page.Query(testid.Selector(id))
}

// Viewport is the page size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport matches the Playwright default.
var DefaultViewport = Viewport{Width: 1280, Height: 720}
