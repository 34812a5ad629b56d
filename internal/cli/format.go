package cli

import (
	"fmt"
	"strings"
	"time"

	"trading-journal/pkg/utils"
)

// DefaultDateFormat is used when the config leaves ui.date_format empty.
const DefaultDateFormat = "02-Jan-2006"

// FormatDate formats t in loc using layout.
func FormatDate(t time.Time, loc *time.Location, layout string) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = DefaultDateFormat
	}
	return t.In(loc).Format(layout)
}

// FormatOptionalDate formats a nullable time.
func FormatOptionalDate(t *time.Time, loc *time.Location, layout string) string {
	if t == nil {
		return "-"
	}
	return FormatDate(*t, loc, layout)
}

// FormatOptional formats a nullable number with two decimals.
func FormatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatRatio(*v)
}

// FormatOptionalPercent formats a nullable percentage.
func FormatOptionalPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatPercent(*v)
}

// FormatRiskReward formats a risk-reward ratio.
func FormatRiskReward(rr float64) string {
	return "1:" + utils.FormatRatio(rr)
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// TruncateString truncates a string to max runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// TitleCase turns an enum value like prop_firm into "Prop Firm".
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
