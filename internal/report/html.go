package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/rs/zerolog"
)

//go:embed templates/report.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/report.html"))

const (
	reportTitle   = "YouTube差分ランキング"
	reportHeading = "YouTube再生数差分ランキング"
)

type Renderer struct {
	loc        *time.Location
	reportPath string
	trendPath  string
	logger     zerolog.Logger
}

func NewRenderer(cfg *config.Config, logger zerolog.Logger) *Renderer {
	return &Renderer{
		loc:        cfg.Timezone,
		reportPath: cfg.ReportPath,
		trendPath:  cfg.TrendPath,
		logger:     logger,
	}
}

// Report is everything one HTML document shows.
type Report struct {
	GeneratedAt time.Time
	Windows     []domain.Window
}

type tableRow struct {
	Rank      int
	Name      string
	Formatted template.HTML
}

type tableView struct {
	Rows         []tableRow
	EmptyMessage string
}

type sectionView struct {
	Heading string
	Table   template.HTML
}

type reportView struct {
	Title       string
	Heading     string
	GeneratedAt string
	Sections    []sectionView
	TrendLink   string
}

// RenderTable renders one ranking, or emptyMessage in place of the table when there
// is nothing to rank.
func RenderTable(ranked []Ranked, emptyMessage string) (template.HTML, error) {
	view := tableView{EmptyMessage: emptyMessage}
	for _, r := range ranked {
		// html/template would turn the leading "+" into &#43;.
		formatted := template.HTML(template.HTMLEscapeString(FormatDelta(r.Value)))
		view.Rows = append(view.Rows, tableRow{Rank: r.Rank, Name: r.Name, Formatted: formatted})
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "table", view); err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) RenderReport(w io.Writer, rep Report) error {
	view := reportView{
		Title:       reportTitle,
		Heading:     reportHeading,
		GeneratedAt: rep.GeneratedAt.In(r.loc).Format(constants.ReportTimeLayout),
	}
	if r.trendPath != "" {
		view.TrendLink = r.trendLink()
	}

	for _, win := range rep.Windows {
		table, err := RenderTable(Rank(win.Deltas), constants.LabelNoData)
		if err != nil {
			return err
		}
		view.Sections = append(view.Sections, sectionView{
			Heading: WindowHeading(win, r.loc),
			Table:   table,
		})
	}

	if err := templates.ExecuteTemplate(w, "report", view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// trendLink is the trend page's path relative to the report's directory.
func (r *Renderer) trendLink() string {
	rel, err := filepath.Rel(filepath.Dir(r.reportPath), r.trendPath)
	if err != nil {
		r.logger.Warn().Err(err).Str("trend_path", r.trendPath).Msg("trend path not relative to report, linking by name")
		return filepath.Base(r.trendPath)
	}
	return filepath.ToSlash(rel)
}

// WriteFile renders into a temp file next to path and renames it into place.
func (r *Renderer) WriteFile(path string, render func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	// CreateTemp uses 0600; the report is meant to be served.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.logger.Info().Str("path", path).Msg("report written")
	return nil
}
