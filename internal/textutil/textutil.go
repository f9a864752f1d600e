// Package textutil provides small human-readable formatting helpers used by
// the status report.
package textutil

import (
	"fmt"
	"strings"
	"time"
)

var durationPeriods = []struct {
	Suffix string
	Millis int64
}{
	{"d", 24 * 60 * 60 * 1000},
	{"h", 60 * 60 * 1000},
	{"m", 60 * 1000},
	{"s", 1000},
	{"ms", 1},
}

// ReadableDuration formats a duration as a compact string like "1d2h3m4s".
//
// Zero-valued leading components are omitted. Durations of zero or less are
// formatted as "0ms".
func ReadableDuration(d time.Duration) string {
	if d <= 0 {
		return "0ms"
	}

	ms := d.Milliseconds()

	var b strings.Builder
	for _, p := range durationPeriods {
		if ms >= p.Millis {
			fmt.Fprintf(&b, "%d%s", ms/p.Millis, p.Suffix)
			ms %= p.Millis
		}
	}

	if b.Len() == 0 {
		return "0ms"
	}
	return b.String()
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// ReadableSize formats a byte count like "1.23MB".
//
// Values below 1KB are formatted as whole bytes; negative values as "0B".
func ReadableSize(size int64) string {
	if size < 0 {
		return "0B"
	}

	value := float64(size)
	index := 0
	for value >= 1024 && index < len(sizeUnits)-1 {
		value /= 1024
		index++
	}

	if index == 0 {
		return fmt.Sprintf("%d%s", size, sizeUnits[0])
	}
	return fmt.Sprintf("%.2f%s", value, sizeUnits[index])
}

// ProgressBar renders a textual progress bar like "[⬤⬤○○○] 40.00%".
//
// The visual width is the total count capped at 20 units.
func ProgressBar(current, total int) string {
	width := total
	if width > 20 {
		width = 20
	}

	var pct float64
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}

	p := pct
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	filled := int(p * float64(width) / 100)

	bar := strings.Repeat("⬤", filled) + strings.Repeat("○", width-filled)
	return fmt.Sprintf("[%s] %.2f%%", bar, pct)
}
