// Package format provides human-readable formatting utilities.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// SIZE FORMATTING
// =============================================================================

// Bytes formats a byte count into human-readable format.
// Example: Bytes(1536) => "1.5 KB"
func Bytes(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	sizes := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizes[exp]) //nolint:gosec // G602: exp max is 4 (1024^6 > int64 max)
}

// Megabytes formats a byte count as mebibytes with two decimals.
// Example: Megabytes(3110400) => "2.97 MB"
func Megabytes(bytes uint64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}

// =============================================================================
// NUMBER FORMATTING
// =============================================================================

var printer = message.NewPrinter(language.English)

// Number formats a number with thousand separators.
// Example: Number(1234567) => "1,234,567"
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Percentage formats a percentage value.
// Example: Percentage(45.678, 1) => "45.7%"
func Percentage(value float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, value)
}

// =============================================================================
// TIMING FORMATTING
// =============================================================================

// zeroCopyThreshold is the copy time, in milliseconds, below which a frame
// copy is reported as zero-copy.
const zeroCopyThreshold = 0.01

// Millis formats a microsecond duration as milliseconds with two decimals.
// Example: Millis(16667) => "16.67 ms"
func Millis(us uint64) string {
	return fmt.Sprintf("%.2f ms", float64(us)/1000)
}

// CopyTime formats a copy duration, collapsing anything under 0.01 ms.
// Example: CopyTime(5) => "< 0.01 ms (zero-copy)"
func CopyTime(us uint64) string {
	ms := float64(us) / 1000
	if ms < zeroCopyThreshold {
		return "< 0.01 ms (zero-copy)"
	}
	return fmt.Sprintf("%.2f ms", ms)
}

// Bandwidth formats a throughput in MB/s, or "N/A" when not positive.
// Example: Bandwidth(1234.56) => "1234.6 MB/s"
func Bandwidth(mbps float64) string {
	if mbps > 0 {
		return fmt.Sprintf("%.1f MB/s", mbps)
	}
	return "N/A"
}

// Uptime formats a duration as days, hours, minutes and seconds, omitting
// leading zero units.
// Example: Uptime(26*time.Hour + 3*time.Minute) => "1d 2h 3m 0s"
func Uptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)

	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	mins := int64(d / time.Minute)
	d -= time.Duration(mins) * time.Minute
	secs := int64(d / time.Second)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, mins, secs)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
