package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/domain"
	"youtube-tracker/internal/report"
	"youtube-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// Reporter turns a stored history into the console summary, the HTML report and
// the trend chart.
type Reporter struct {
	store    *repository.SnapshotStore
	renderer *report.Renderer
	roster   domain.Roster
	cfg      *config.Config
	out      io.Writer
	logger   zerolog.Logger
}

func NewReporter(store *repository.SnapshotStore, renderer *report.Renderer, roster domain.Roster, cfg *config.Config, logger zerolog.Logger) *Reporter {
	return &Reporter{
		store:    store,
		renderer: renderer,
		roster:   roster,
		cfg:      cfg,
		out:      os.Stdout,
		logger:   logger,
	}
}

// Report renders from the stored history alone, taking its latest row as current.
func (r *Reporter) Report(ctx context.Context, now time.Time) ([]domain.Window, error) {
	history, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	current, ok := history.Latest()
	if !ok {
		r.logger.Warn().Msg("no stored snapshots, rendering an empty report")
		return r.Publish(ctx, history, nil, now)
	}

	windows := ComputeWindows(history, current, r.roster, r.cfg.Timezone, r.logger)
	return r.Publish(ctx, history, windows, current.Timestamp)
}

// Publish prints the summary and writes the report files. With no windows (nothing
// stored yet) every group still gets its placeholder sections.
func (r *Reporter) Publish(ctx context.Context, history domain.History, windows []domain.Window, generatedAt time.Time) ([]domain.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if windows == nil {
		windows = ComputeWindows(history, domain.NewSnapshot(generatedAt), r.roster, r.cfg.Timezone, r.logger)
	}

	for _, w := range windows {
		r.logger.Debug().
			Str("group", w.Group).
			Str("window", string(w.Kind)).
			Bool("has_reference", w.HasReference).
			Int("deltas", len(w.Deltas)).
			Msg("window computed")
	}

	if err := report.PrintSummary(r.out, windows, generatedAt, r.cfg.Timezone); err != nil {
		r.logger.Warn().Err(err).Msg("failed to print summary")
	}

	rep := report.Report{GeneratedAt: generatedAt, Windows: windows}
	if err := r.renderer.WriteFile(r.cfg.ReportPath, func(w io.Writer) error {
		return r.renderer.RenderReport(w, rep)
	}); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	if r.cfg.TrendPath != "" {
		if err := r.renderer.WriteFile(r.cfg.TrendPath, func(w io.Writer) error {
			return r.renderer.RenderTrend(w, history, r.roster)
		}); err != nil {
			return nil, fmt.Errorf("failed to write trend chart: %w", err)
		}
	}

	return windows, nil
}

// Pipeline is the daily job: fetch, store, archive, report.
type Pipeline struct {
	collector *Collector
	store     *repository.SnapshotStore
	archive   *repository.ArchiveRepository
	reporter  *Reporter
	roster    domain.Roster
	cfg       *config.Config
	logger    zerolog.Logger
}

func NewPipeline(
	collector *Collector,
	store *repository.SnapshotStore,
	archive *repository.ArchiveRepository,
	reporter *Reporter,
	roster domain.Roster,
	cfg *config.Config,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		collector: collector,
		store:     store,
		archive:   archive,
		reporter:  reporter,
		roster:    roster,
		cfg:       cfg,
		logger:    logger,
	}
}

func (p *Pipeline) Run(ctx context.Context, now time.Time) ([]domain.Window, error) {
	p.logger.Info().Int("channels", len(p.roster.Names())).Msg("collecting snapshot")
	current := p.collector.Collect(ctx, now)

	history, err := p.store.Save(ctx, current, now)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to persist snapshot store")
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	p.archiveSnapshot(ctx, current)

	windows := ComputeWindows(history, current, p.roster, p.cfg.Timezone, p.logger)
	return p.reporter.Publish(ctx, history, windows, current.Timestamp)
}

func (p *Pipeline) archiveSnapshot(ctx context.Context, current domain.Snapshot) {
	if !p.archive.Enabled() {
		return
	}

	if err := p.archive.UpsertSnapshot(ctx, p.roster, current); err != nil {
		p.logger.Warn().Err(err).Msg("failed to archive snapshot")
		return
	}

	days, err := p.archive.CountDays(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to count archived days")
		return
	}
	p.logger.Info().Int("archived_days", days).Msg("snapshot archived")
}
