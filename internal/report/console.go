package report

import (
	"fmt"
	"io"
	"time"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintSummary writes every window's ranking to w as a plain-text table.
func PrintSummary(w io.Writer, windows []domain.Window, generatedAt time.Time, loc *time.Location) error {
	stamp := generatedAt.In(loc).Format(constants.ConsoleTimeLayout)

	for _, win := range windows {
		title := fmt.Sprintf("📊 %s の%s%s再生数ランキング（%s）", stamp, win.Group, windowLabel(win.Kind), lookbackLabel(win.Kind))

		ranked := Rank(win.Deltas)
		if len(ranked) == 0 {
			if _, err := fmt.Fprintf(w, "\n%s\n前回データがないため、%sの%sランキングは表示できません。\n", title, win.Group, windowLabel(win.Kind)); err != nil {
				return err
			}
			continue
		}

		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"順位", "グループ", "再生数増加"})
		for _, r := range ranked {
			tw.AppendRow(table.Row{fmt.Sprintf("%d位", r.Rank), r.Name, FormatDelta(r.Value)})
		}

		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", title, tw.Render()); err != nil {
			return err
		}
	}
	return nil
}
