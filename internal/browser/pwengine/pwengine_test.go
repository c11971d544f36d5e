package pwengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gridverify/internal/browser"
)

func TestNewDefaultsViewport(t *testing.T) {
	d := New(Options{Headless: true})
	assert.Equal(t, browser.DefaultViewport, d.opts.Viewport)
	assert.True(t, d.opts.Headless)

	d = New(Options{Viewport: browser.Viewport{Width: 1024, Height: 768}})
	assert.Equal(t, browser.Viewport{Width: 1024, Height: 768}, d.opts.Viewport)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s := &session{closed: true}
	assert.NoError(t, s.Close())
}
