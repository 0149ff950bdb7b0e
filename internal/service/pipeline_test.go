package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/database"
	"youtube-tracker/internal/domain"
	"youtube-tracker/internal/report"
	"youtube-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	cfg      *config.Config
	client   *fakeCounter
	store    *repository.SnapshotStore
	archive  *repository.ArchiveRepository
	reporter *Reporter
	pipeline *Pipeline
	out      *bytes.Buffer
}

func newTestEnv(t *testing.T, withArchive bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		StorePath:        filepath.Join(dir, "stats.csv"),
		ReportPath:       filepath.Join(dir, "index.html"),
		TrendPath:        filepath.Join(dir, "trend.html"),
		ArchiveDBPath:    filepath.Join(dir, "archive.db"),
		ArchiveEnabled:   withArchive,
		Timezone:         jst,
		FetchConcurrency: 2,
	}
	logger := zerolog.Nop()
	roster := testRoster()

	archive := repository.NewArchiveRepository(nil, cfg, logger)
	if withArchive {
		db, err := database.Open(cfg.ArchiveDBPath, logger)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		archive = repository.NewArchiveRepository(db, cfg, logger)
	}

	client := &fakeCounter{counts: map[string]int64{}}
	store := repository.NewSnapshotStore(cfg, roster, logger)
	reporter := NewReporter(store, report.NewRenderer(cfg, logger), roster, cfg, logger)
	out := &bytes.Buffer{}
	reporter.out = out

	return &testEnv{
		cfg:      cfg,
		client:   client,
		store:    store,
		archive:  archive,
		reporter: reporter,
		pipeline: NewPipeline(NewCollector(client, roster, cfg, logger), store, archive, reporter, roster, cfg, logger),
		out:      out,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPipelineRun_FirstRunRendersPlaceholders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	env.client.counts = map[string]int64{"UCx": 100, "UCy": 200, "UCz": 300}

	windows, err := env.pipeline.Run(context.Background(), at(1, 9))

	require.NoError(t, err)
	require.Len(t, windows, 4)

	html := readFile(t, env.cfg.ReportPath)
	assert.Equal(t, 4, strings.Count(html, constants.LabelNoData))
	assert.NotContains(t, html, "<table>")
	assert.Contains(t, html, "2024年01月01日 09:00")

	csv := readFile(t, env.cfg.StorePath)
	assert.Contains(t, csv, "2024-01-01T09:00,100,200,300")

	assert.FileExists(t, env.cfg.TrendPath)
	assert.Contains(t, env.out.String(), "前回データがないため")
}

func TestPipelineRun_DailyAndWeeklyDeltas(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	ctx := context.Background()

	require.NoError(t, env.store.Persist(ctx, domain.History{
		row(at(1, 9), map[string]int64{"X": 1000, "Y": 2000, "Z": 3000}),
		row(at(7, 9), map[string]int64{"X": 1500, "Y": 2100}),
	}))
	env.client.counts = map[string]int64{"UCx": 1500, "UCy": 2600, "UCz": 3100}

	windows, err := env.pipeline.Run(ctx, at(8, 9))

	require.NoError(t, err)
	require.Len(t, windows, 4)
	assert.Equal(t, domain.DeltaSet{{Name: "X", Value: 0}, {Name: "Y", Value: 500}}, windows[0].Deltas)
	assert.Equal(t, domain.DeltaSet{{Name: "X", Value: 500}, {Name: "Y", Value: 600}}, windows[1].Deltas)
	assert.Empty(t, windows[2].Deltas)
	assert.Equal(t, domain.DeltaSet{{Name: "Z", Value: 100}}, windows[3].Deltas)

	html := readFile(t, env.cfg.ReportPath)
	assert.Equal(t, 1, strings.Count(html, constants.LabelNoData))
	assert.Equal(t, 3, strings.Count(html, "<table>"))
	assert.Contains(t, html, constants.LabelUnchanged)
	assert.Contains(t, html, "+500回")
	assert.NotContains(t, html, "+0回")

	history, err := env.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)

	days, err := env.archive.CountDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestPipelineRun_PersistFailureIsFatal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	env.cfg.StorePath = filepath.Join(t.TempDir(), "missing", "stats.csv")
	env.store = repository.NewSnapshotStore(env.cfg, testRoster(), zerolog.Nop())
	env.pipeline.store = env.store

	_, err := env.pipeline.Run(context.Background(), at(1, 9))

	require.Error(t, err)
	assert.NoFileExists(t, env.cfg.ReportPath)
}

func TestReporterReport_UsesLatestStoredRow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	ctx := context.Background()

	require.NoError(t, env.store.Persist(ctx, domain.History{
		row(at(2, 9), map[string]int64{"X": 130, "Z": 10}),
		row(at(1, 9), map[string]int64{"X": 100, "Y": 5, "Z": 10}),
	}))

	windows, err := env.reporter.Report(ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, jst))

	require.NoError(t, err)
	assert.Equal(t, domain.DeltaSet{{Name: "X", Value: 30}}, windows[0].Deltas)
	assert.Equal(t, domain.DeltaSet{{Name: "Z", Value: 0}}, windows[2].Deltas)
	assert.Empty(t, env.client.calls, "report never fetches")

	html := readFile(t, env.cfg.ReportPath)
	assert.Contains(t, html, "2024年01月02日 09:00")
	assert.Contains(t, html, "+30回")
}

func TestReporterReport_EmptyStore(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	windows, err := env.reporter.Report(context.Background(), at(5, 12))

	require.NoError(t, err)
	require.Len(t, windows, 4)

	html := readFile(t, env.cfg.ReportPath)
	assert.Equal(t, 4, strings.Count(html, constants.LabelNoData))
	assert.Contains(t, html, "2024年01月05日 12:00")
}
