package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type queryPage struct {
	queries []string
}

func (p *queryPage) Goto(context.Context, string) error { return nil }
func (p *queryPage) Screenshot(context.Context, string) error { return nil }
func (p *queryPage) Query(selector string) Element {
	p.queries = append(p.queries, selector)
	return nopElement{}
}

type nopElement struct{}

func (nopElement) WaitVisible(context.Context, time.Duration) error { return nil }
func (nopElement) Click(context.Context) error { return nil }
func (nopElement) Hover(context.Context) error { return nil }

func TestLocateQueriesEveryCall(t *testing.T) {
	p := &queryPage{}
	Locate(p, "grid-selector-trigger")
	Locate(p, "grid-selector-trigger")
	assert.Equal(t, []string{
		`[data-testid="grid-selector-trigger"]`,
		`[data-testid="grid-selector-trigger"]`,
	}, p.queries)
}
