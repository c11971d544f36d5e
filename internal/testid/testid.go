// Package testid builds selectors for elements tagged with data-testid
// attributes by the grid selector UI.
package testid

import (
	"fmt"
	"strconv"
)

// Stable identifiers exposed by the grid selector.
const (
	Trigger = "grid-selector-trigger"
	Popover = "grid-selector-popover"

	cellPrefix = "grid-cell-"
)

// Selector returns the CSS attribute selector matching id.
func Selector(id string) string {
	return fmt.Sprintf(`[data-testid=%q]`, id)
}

// Cell returns the identifier of the grid cell at row, col.
func Cell(row, col int) string {
	return cellPrefix + strconv.Itoa(row) + "-" + strconv.Itoa(col)
}
