// Package browsertest serves a minimal grid selector page for end-to-end
// engine tests.
package browsertest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"gridverify/internal/testid"
)

// EnvE2E enables tests that launch a real browser.
const EnvE2E = "GRIDVERIFY_E2E"

// RequireE2E skips t unless EnvE2E is set to 1.
func RequireE2E(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvE2E) != "1" {
		t.Skipf("set %s=1 to run browser tests", EnvE2E)
	}
}

// App selects which parts of the grid selector are rendered.
type App struct {
	NoTrigger bool
	NoPopover bool
	Size      int // rows and columns; defaults to 5
}

// HTML renders the page for a.
func (a App) HTML() string {
	size := a.Size
	if size <= 0 {
		size = 5
	}
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><style>
#popover{display:none;position:absolute;top:48px;left:8px;padding:4px;border:1px solid #888}
#popover.open{display:grid;grid-template-columns:repeat(` + fmt.Sprint(size) + `,20px);gap:2px}
.cell{width:20px;height:20px;background:#ddd}
.cell:hover{background:#36f}
</style></head><body>`)
	if !a.NoTrigger {
		fmt.Fprintf(&b, `<button data-testid=%q onclick="document.getElementById('popover').classList.add('open')">Grid</button>`, testid.Trigger)
	}
	if !a.NoPopover {
		fmt.Fprintf(&b, `<div id="popover" data-testid=%q>`, testid.Popover)
		for r := 1; r <= size; r++ {
			for c := 1; c <= size; c++ {
				fmt.Fprintf(&b, `<div class="cell" data-testid=%q></div>`, testid.Cell(r, c))
			}
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// Serve starts an httptest server for a, closed when t finishes.
func Serve(t *testing.T, a App) *httptest.Server {
	t.Helper()
	page := a.HTML()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}
