package testid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector(t *testing.T) {
	assert.Equal(t, `[data-testid="grid-selector-trigger"]`, Selector(Trigger))
	assert.Equal(t, `[data-testid="grid-selector-popover"]`, Selector(Popover))
	assert.Equal(t, `[data-testid="grid-cell-2-2"]`, Selector(Cell(2, 2)))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "grid-cell-2-2", Cell(2, 2))
	assert.Equal(t, "grid-cell-0-10", Cell(0, 10))
}
