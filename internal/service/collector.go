package service

import (
	"context"
	"time"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ViewCounter interface {
	GetViewCount(ctx context.Context, channelID string) (int64, error)
}

// Collector takes one snapshot of every channel in the roster.
type Collector struct {
	client      ViewCounter
	roster      domain.Roster
	loc         *time.Location
	concurrency int
	logger      zerolog.Logger
}

func NewCollector(client ViewCounter, roster domain.Roster, cfg *config.Config, logger zerolog.Logger) *Collector {
	return &Collector{
		client:      client,
		roster:      roster,
		loc:         cfg.Timezone,
		concurrency: cfg.FetchConcurrency,
		logger:      logger,
	}
}

// Collect never fails: a channel whose fetch errors is recorded with no value.
func (c *Collector) Collect(ctx context.Context, now time.Time) domain.Snapshot {
	entities := c.roster.Entities()
	counts := make([]*int64, len(entities))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	for i, entity := range entities {
		i, entity := i, entity
		g.Go(func() error {
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			count, err := c.client.GetViewCount(apiCtx, entity.ChannelID)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("channel", entity.Name).
					Str("channel_id", entity.ChannelID).
					Msg("failed to fetch view count")
				return nil
			}

			counts[i] = &count
			c.logger.Debug().Str("channel", entity.Name).Int64("view_count", count).Msg("view count fetched")
			return nil
		})
	}
	// Workers never return an error; a failed fetch leaves its slot nil.
	_ = g.Wait()

	snapshot := domain.NewSnapshot(now.In(c.loc).Truncate(time.Minute))
	fetched := 0
	for i, entity := range entities {
		snapshot.Values[entity.Name] = counts[i]
		if counts[i] != nil {
			fetched++
		}
	}

	c.logger.Info().
		Int("fetched", fetched).
		Int("failed", len(entities)-fetched).
		Time("timestamp", snapshot.Timestamp).
		Msg("snapshot collected")

	return snapshot
}
