package heatmap

import (
	"fmt"

	"metoncofit/internal/table"
)

// HoverText formats the tooltip for one cell. Value and R are rounded to two
// decimals by strconv's correctly rounded formatting, so 1.005 (stored as
// 1.00499...) prints as "1.00".
func HoverText(r table.Row) string {
	return fmt.Sprintf("Gene: %s<br>Feature: %s<br>Value: %.2f<br>R: %.2f", r.Gene, r.Feature, r.Value, r.R)
}
