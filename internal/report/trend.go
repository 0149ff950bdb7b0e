package report

import (
	"fmt"
	"io"
	"youtube-tracker/internal/domain"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const trendDateLayout = "1/2"

// RenderTrend writes a page with one line chart per group, plotting each channel's
// stored view count per retained snapshot. Missing counts are left as gaps.
func (r *Renderer) RenderTrend(w io.Writer, history domain.History, roster domain.Roster) error {
	var rows domain.History
	for _, row := range history {
		if !row.Timestamp.IsZero() {
			rows = append(rows, row)
		}
	}

	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Timestamp.In(r.loc).Format(trendDateLayout)
	}

	page := components.NewPage()
	for _, g := range roster.Groups {
		page.AddCharts(r.groupTrend(g, rows, labels))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render trend chart: %w", err)
	}
	return nil
}

func (r *Renderer) groupTrend(g domain.Group, rows domain.History, labels []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "YouTube再生数推移",
			Width:     "100%",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    g.Name + " 再生数推移",
			Subtitle: fmt.Sprintf("直近%d件", len(rows)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	line.SetXAxis(labels)

	for _, name := range g.Names() {
		data := make([]opts.LineData, len(rows))
		for i, row := range rows {
			if v, ok := row.Value(name); ok {
				data[i] = opts.LineData{Value: v}
			} else {
				data[i] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(name, data)
	}

	return line
}
