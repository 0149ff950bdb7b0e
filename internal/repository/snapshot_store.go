package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/rs/zerolog"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SnapshotStore keeps the retained history in a CSV file: a "timestamp" column
// followed by one column per channel in roster order.
type SnapshotStore struct {
	path   string
	names  []string
	loc    *time.Location
	logger zerolog.Logger
}

func NewSnapshotStore(cfg *config.Config, roster domain.Roster, logger zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{
		path:   cfg.StorePath,
		names:  roster.Names(),
		loc:    cfg.Timezone,
		logger: logger,
	}
}

func (s *SnapshotStore) Columns() []string {
	return append([]string{constants.TimestampColumn}, s.names...)
}

// Load reads the stored history sorted by timestamp. A missing file, or one whose
// header does not match the roster, yields an empty history.
func (s *SnapshotStore) Load(ctx context.Context) (domain.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug().Str("path", s.path).Msg("snapshot store not found, starting empty")
		return domain.History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer f.Close()

	history, err := s.read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot store: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("rows", len(history)).Msg("snapshot store loaded")
	return history, nil
}

func (s *SnapshotStore) read(r io.Reader) (domain.History, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return domain.History{}, nil
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("snapshot store header unreadable, reinitializing")
		return domain.History{}, nil
	}
	if err != nil {
		return nil, err
	}

	index, ok := s.columnIndex(header)
	if !ok {
		s.logger.Warn().
			Strs("found", header).
			Strs("expected", s.Columns()).
			Msg("snapshot store columns do not match roster, reinitializing")
		return domain.History{}, nil
	}

	history := domain.History{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if errors.As(err, &parseErr) {
			s.logger.Warn().Err(err).Int("line", line).Msg("skipping malformed snapshot row")
			continue
		}
		if err != nil {
			return nil, err
		}

		row := domain.NewSnapshot(parseTimestamp(cell(record, index[constants.TimestampColumn]), s.loc))
		for _, name := range s.names {
			row.Values[name] = parseCount(cell(record, index[name]))
		}
		history = append(history, row)
	}

	history.Sort()
	return history, nil
}

// columnIndex maps each expected column to its position. The header must hold
// exactly the expected set of columns, in any order.
func (s *SnapshotStore) columnIndex(header []string) (map[string]int, bool) {
	expected := s.Columns()
	if len(header) != len(expected) {
		return nil, false
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if _, dup := index[col]; dup {
			return nil, false
		}
		index[col] = i
	}
	for _, col := range expected {
		if _, ok := index[col]; !ok {
			return nil, false
		}
	}
	return index, true
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseCount coerces a stored cell to an integer; anything else becomes no value.
func parseCount(raw string) *int64 {
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	v := int64(f)
	return &v
}

// parseTimestamp returns the zero time when no accepted layout matches.
func parseTimestamp(raw string, loc *time.Location) time.Time {
	for _, layout := range constants.AcceptedTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// UpsertToday replaces every row on the new row's calendar day with the new row.
func (s *SnapshotStore) UpsertToday(history domain.History, row domain.Snapshot) domain.History {
	return UpsertToday(history, row, s.loc)
}

func UpsertToday(history domain.History, row domain.Snapshot, loc *time.Location) domain.History {
	out := make(domain.History, 0, len(history)+1)
	for _, existing := range history {
		if existing.SameDay(row.Timestamp, loc) {
			continue
		}
		out = append(out, existing)
	}
	return append(out, row)
}

// Prune drops rows older than the retention window and rows with no valid timestamp.
func Prune(history domain.History, now time.Time) domain.History {
	cutoff := now.Add(-constants.RetentionWindow)
	out := make(domain.History, 0, len(history))
	for _, row := range history {
		if row.Timestamp.IsZero() || row.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Persist rewrites the whole store. The file is replaced by rename, but a crash can
// still leave a stray temp file behind.
func (s *SnapshotStore) Persist(ctx context.Context, history domain.History) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := make(domain.History, len(history))
	copy(sorted, history)
	sorted.Sort()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshots-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.write(tmp, sorted); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot store: %w", err)
	}

	s.logger.Info().Str("path", s.path).Int("rows", len(sorted)).Msg("snapshot store persisted")
	return nil
}

func (s *SnapshotStore) write(w io.Writer, history domain.History) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(s.Columns()); err != nil {
		return err
	}

	for _, row := range history {
		record := make([]string, 0, len(s.names)+1)
		if row.Timestamp.IsZero() {
			record = append(record, "")
		} else {
			record = append(record, row.Timestamp.In(s.loc).Format(constants.StoreTimestampLayout))
		}
		for _, name := range s.names {
			if v, ok := row.Value(name); ok {
				record = append(record, strconv.FormatInt(v, 10))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Save runs one load, upsert, prune, persist cycle and returns what was written.
func (s *SnapshotStore) Save(ctx context.Context, row domain.Snapshot, now time.Time) (domain.History, error) {
	history, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	before := len(history)
	history = s.UpsertToday(history, row)
	history = Prune(history, now)
	history.Sort()

	s.logger.Debug().
		Int("rows_before", before).
		Int("rows_after", len(history)).
		Str("day", row.Timestamp.In(s.loc).Format(constants.DayLayout)).
		Msg("snapshot history amended")

	if err := s.Persist(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}
