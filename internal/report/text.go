package report

import (
	"fmt"
	"strings"
)

// barWidth is the number of cells the bar glyph spans at 100% share.
const barWidth = 20

// deviationWarnThreshold flags a row as "bad" once its deviation magnitude
// passes this fraction, matching the default tolerance Adjust enforces.
const deviationWarnThreshold = 0.05

// TextFormatter renders a Snapshot as a human-readable histogram, one bar
// per real, with optional color.
type TextFormatter struct {
	styles   Styles
	useColor bool
}

// NewTextFormatter creates a TextFormatter.
func NewTextFormatter(styles Styles, useColor bool) *TextFormatter {
	return &TextFormatter{styles: styles, useColor: useColor}
}

func (f *TextFormatter) Format(buf []byte, snap Snapshot) []byte {
	if snap.Disabled {
		return append(buf, "all reals disabled; lookup table has no assignments\n"...)
	}

	for _, e := range snap.Entries {
		buf = f.formatRow(buf, snap.LookupSize, e)
	}
	return buf
}

func (f *TextFormatter) formatRow(buf []byte, lookupSize int, e Entry) []byte {
	label := e.Name
	if label == "" {
		label = fmt.Sprintf("real-%d", e.ID)
	}
	if !e.Enabled {
		label += " (disabled)"
	}

	var effectiveShare, targetShare float64
	if lookupSize > 0 {
		effectiveShare = float64(e.EffectiveCells) / float64(lookupSize)
		targetShare = float64(e.ConfiguredCells) / float64(lookupSize)
	}

	bar := renderBar(effectiveShare)
	nameStyle, barStyle := f.styles.Name, f.styles.Bar
	if abs(e.Deviation) > deviationWarnThreshold {
		nameStyle, barStyle = f.styles.Bad, f.styles.Bad
	}

	renderedLabel, renderedBar := label, bar
	if f.useColor {
		renderedLabel = nameStyle.Render(label)
		renderedBar = barStyle.Render(bar)
	}

	line := fmt.Sprintf("%s: %s %d cells (%.1f%%, target %.1f%%)\n",
		renderedLabel, renderedBar, e.EffectiveCells, effectiveShare*100, targetShare*100)
	return append(buf, line...)
}

func renderBar(share float64) string {
	filled := int(share * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
