package browsertest

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	page := App{}.HTML()
	assert.Contains(t, page, `data-testid="grid-selector-trigger"`)
	assert.Contains(t, page, `data-testid="grid-selector-popover"`)
	assert.Contains(t, page, `data-testid="grid-cell-2-2"`)
	assert.Contains(t, page, `data-testid="grid-cell-5-5"`)
	assert.NotContains(t, page, `data-testid="grid-cell-6-6"`)

	page = App{NoTrigger: true, NoPopover: true}.HTML()
	assert.NotContains(t, page, "grid-selector-trigger")
	assert.NotContains(t, page, "grid-selector-popover")
}

func TestServe(t *testing.T) {
	srv := Serve(t, App{Size: 3})
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `data-testid="grid-cell-3-3"`)
}
