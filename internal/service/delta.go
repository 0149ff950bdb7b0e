package service

import (
	"time"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// FindReferenceRow returns the last row dated exactly on target's calendar day.
// There is no fallback to an earlier day: a skipped run leaves that window empty.
func FindReferenceRow(history domain.History, target time.Time, loc *time.Location) (domain.Snapshot, bool) {
	var (
		found domain.Snapshot
		ok    bool
	)
	for _, row := range history {
		if !row.SameDay(target, loc) {
			continue
		}
		if !ok || !row.Timestamp.Before(found.Timestamp) {
			found, ok = row, true
		}
	}
	return found, ok
}

// ComputeDeltas includes a name only when both snapshots carry a value for it.
func ComputeDeltas(current, reference domain.Snapshot, names []string) domain.DeltaSet {
	deltas := domain.DeltaSet{}
	for _, name := range names {
		cur, ok := current.Value(name)
		if !ok {
			continue
		}
		ref, ok := reference.Value(name)
		if !ok {
			continue
		}
		deltas = append(deltas, domain.Delta{Name: name, Value: cur - ref})
	}
	return deltas
}

// ComputeWindows builds the daily and weekly window of every group, in roster order.
func ComputeWindows(history domain.History, current domain.Snapshot, roster domain.Roster, loc *time.Location, logger zerolog.Logger) []domain.Window {
	lookbacks := []struct {
		kind domain.WindowKind
		days int
	}{
		{domain.WindowDaily, constants.DailyLookback},
		{domain.WindowWeekly, constants.WeeklyLookback},
	}

	var windows []domain.Window
	for _, g := range roster.Groups {
		for _, lb := range lookbacks {
			target := current.Timestamp.In(loc).AddDate(0, 0, -lb.days)
			win := domain.Window{
				Kind:   lb.kind,
				Group:  g.Name,
				From:   target,
				To:     current.Timestamp,
				Deltas: domain.DeltaSet{},
			}
			if reference, ok := FindReferenceRow(history, target, loc); ok {
				win.HasReference = true
				win.Deltas = ComputeDeltas(current, reference, g.Names())
				logDiffs(logger.With().Str("group", g.Name).Str("window", string(lb.kind)).Logger(), current, reference, g.Names())
			}
			windows = append(windows, win)
		}
	}
	return windows
}

// logDiffs emits one debug event per entity with the two values behind its delta.
func logDiffs(logger zerolog.Logger, current, reference domain.Snapshot, names []string) {
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, name := range names {
		cur, hasCur := current.Value(name)
		ref, hasRef := reference.Value(name)
		if !hasCur || !hasRef {
			logger.Debug().
				Str("entity", name).
				Bool("missing", true).
				Bool("has_new", hasCur).
				Bool("has_prev", hasRef).
				Msg("diff skipped")
			continue
		}
		logger.Debug().
			Str("entity", name).
			Int64("new", cur).
			Int64("prev", ref).
			Int64("diff", cur-ref).
			Msg("diff computed")
	}
}
