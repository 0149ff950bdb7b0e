package report

import (
	"fmt"
	"time"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/dustin/go-humanize"
)

// FormatDelta renders a view-count change: "+1,234回", "-56回", or the unchanged
// label for exactly zero.
func FormatDelta(v int64) string {
	switch {
	case v == 0:
		return constants.LabelUnchanged
	case v > 0:
		return "+" + humanize.Comma(v) + constants.ViewCountUnit
	default:
		return humanize.Comma(v) + constants.ViewCountUnit
	}
}

func windowLabel(kind domain.WindowKind) string {
	if kind == domain.WindowWeekly {
		return "週間"
	}
	return "日別"
}

func lookbackLabel(kind domain.WindowKind) string {
	if kind == domain.WindowWeekly {
		return fmt.Sprintf("%d日前との差", constants.WeeklyLookback)
	}
	return fmt.Sprintf("%d日前との差", constants.DailyLookback)
}

// WindowHeading describes a window, e.g.
// "日本グループ 日別再生数ランキング（1日前との差: 1月1日 → 1月2日）".
func WindowHeading(w domain.Window, loc *time.Location) string {
	return fmt.Sprintf("%s %s再生数ランキング（%s: %s → %s）",
		w.Group,
		windowLabel(w.Kind),
		lookbackLabel(w.Kind),
		w.From.In(loc).Format(constants.WindowDateLayout),
		w.To.In(loc).Format(constants.WindowDateLayout),
	)
}
