package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"

	"options-backtester/internal/stats"
)

// FormatCurrency formats a dollar amount with thousands separators.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPrice formats an option price.
func FormatPrice(price float64) string {
	if math.Abs(price) >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatStat renders one descriptive statistic, with "-" for NaN and "inf"
// for infinities.
func FormatStat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%.4f", v)
	}
}

// FormatInterval renders a right-closed bucket range.
func FormatInterval(iv stats.Interval) string {
	return fmt.Sprintf("(%g, %g]", iv.Lo, iv.Hi)
}

// FormatIntervals joins per-leg bucket ranges with a space.
func FormatIntervals(ivs []stats.Interval) string {
	if len(ivs) == 0 {
		return "-"
	}
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = FormatInterval(iv)
	}
	return strings.Join(parts, " ")
}

// FormatDate formats a date.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// ColorizeReturn colors a fractional return green, red or plain for stdout
// without an Output instance (respects the NO_COLOR convention via fatih).
func ColorizeReturn(frac float64) string {
	s := FormatPercent(frac * 100)
	switch {
	case frac > 0:
		return color.GreenString(s)
	case frac < 0:
		return color.RedString(s)
	default:
		return s
	}
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(" ", length-len(s)) + s
}
