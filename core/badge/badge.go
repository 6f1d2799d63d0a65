// Package badge generates SVG status badges from compliance coverage.
// It provides grading and SVG generation used by both CLI and MCP server.
package badge

import (
	"fmt"
	"math"

	"github.com/ctlscan-hq/ctlscan/core/coverage"
)

// Result holds badge generation output.
type Result struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color"`
	Grade string `json:"grade"`
	SVG   string `json:"svg,omitempty"`
}

// Grade represents a coverage letter grade A through F.
type Grade struct {
	Letter string
	Color  string
}

// gradeThresholds maps minimum coverage percentages to letter grades and
// badge colors.
var gradeThresholds = []struct {
	minCoverage float64
	grade       Grade
}{
	{90, Grade{"A", "#4c1"}},    // bright green
	{75, Grade{"B", "#a3c51c"}}, // yellow-green
	{50, Grade{"C", "#dfb317"}}, // yellow
	{25, Grade{"D", "#fe7d37"}}, // orange
	{10, Grade{"E", "#e05d44"}}, // red
}

var gradeF = Grade{"F", "#b60205"} // dark red

// GradeFromCoverage returns the letter grade for a coverage percentage.
func GradeFromCoverage(pct float64) Grade {
	for _, t := range gradeThresholds {
		if pct >= t.minCoverage {
			return t.grade
		}
	}
	return gradeF
}

// GenerateFromReport creates a badge result from a coverage report.
func GenerateFromReport(r *coverage.Report, label string) *Result {
	grade := GradeFromCoverage(r.CoveragePercentage)
	value := fmt.Sprintf("%.1f%%", r.CoveragePercentage)

	return &Result{
		Label: label,
		Value: value,
		Color: grade.Color,
		Grade: grade.Letter,
		SVG:   GenerateSVG(label, value, grade.Color),
	}
}

// GenerateSVG produces an SVG badge string for the given label, value, and color.
func GenerateSVG(label, value, color string) string {
	labelW := textWidth(label) + 10
	valueW := textWidth(value) + 10
	totalW := labelW + valueW

	// Text positions are in tenths of a pixel (SVG uses scale(.1)).
	labelX := labelW * 10 / 2
	valueX := (labelW + valueW/2) * 10

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="20" role="img" aria-label="%s: %s">
  <title>%s: %s</title>
  <linearGradient id="s" x2="0" y2="100%%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="%d" height="20" rx="3" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="%d" height="20" fill="#555"/>
    <rect x="%d" width="%d" height="20" fill="%s"/>
    <rect width="%d" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" text-rendering="geometricPrecision" font-size="110">
    <text aria-hidden="true" x="%d" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)">%s</text>
    <text x="%d" y="140" transform="scale(.1)">%s</text>
    <text aria-hidden="true" x="%d" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)">%s</text>
    <text x="%d" y="140" transform="scale(.1)">%s</text>
  </g>
</svg>
`,
		totalW, label, value,
		label, value,
		totalW,
		labelW,
		labelW, valueW, color,
		totalW,
		labelX, label,
		labelX, label,
		valueX, value,
		valueX, value,
	)
}

// textWidth estimates the pixel width of a string rendered in Verdana 11px,
// matching the shields.io flat badge style.
func textWidth(s string) int {
	w := 0.0
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
			w += 7.5
		case c >= 'a' && c <= 'z':
			w += 6.1
		case c >= '0' && c <= '9':
			w += 6.5
		case c == ' ':
			w += 3.3
		default:
			w += 6.0
		}
	}
	return int(math.Ceil(w))
}
