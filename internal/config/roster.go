package config

import (
	"fmt"
	"os"
	"youtube-tracker/internal/constants"
	"youtube-tracker/internal/domain"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func DefaultRoster() domain.Roster {
	return domain.Roster{Groups: []domain.Group{
		{
			Name: "日本グループ",
			Entities: []domain.Entity{
				{Name: "僕が見たかった青空", ChannelID: "UC-_iQWdEZY66nGGaHH0Ygmg"},
				{Name: "AKB48", ChannelID: "UCxjXU89x6owat9dA8Z-bzdw"},
				{Name: "乃木坂46", ChannelID: "UCUzpZpX2wRYOk3J8QTFGxDg"},
				{Name: "NiziU", ChannelID: "UCHp2q2i85qt_9nn2H7AvGOw"},
				{Name: "ME:I", ChannelID: "UCvTsv4KmVuBdECI08_HR87Q"},
			},
		},
		{
			Name: "韓国グループ",
			Entities: []domain.Entity{
				{Name: "ILLIT", ChannelID: "UCEpFoWeCMCo5z3EvWaz6hQQ"},
				{Name: "IVE", ChannelID: "UC-Fnix71vRP64WXeo0ikd0Q"},
				{Name: "LE SSERAFIM", ChannelID: "UCs-QBT4qkj_YiQw1ZntDO3g"},
				{Name: "Kep1er", ChannelID: "UC8whlOg70m2Yr3qSMjUhh0g"},
				{Name: "NewJeans", ChannelID: "UCMki_UkHb4qSc0qyEcOHHJw"},
			},
		},
	}}
}

// LoadRoster returns the built-in roster unless CHANNELS_FILE names a YAML file.
func LoadRoster(cfg *Config, logger zerolog.Logger) (domain.Roster, error) {
	if cfg.ChannelsFile == "" {
		return DefaultRoster(), nil
	}

	data, err := os.ReadFile(cfg.ChannelsFile)
	if err != nil {
		return domain.Roster{}, fmt.Errorf("failed to read channels file: %w", err)
	}

	roster, err := ParseRoster(data)
	if err != nil {
		return domain.Roster{}, err
	}

	logger.Info().
		Str("path", cfg.ChannelsFile).
		Int("groups", len(roster.Groups)).
		Int("channels", len(roster.Names())).
		Msg("channel roster loaded")

	return roster, nil
}

func ParseRoster(data []byte) (domain.Roster, error) {
	var roster domain.Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return domain.Roster{}, fmt.Errorf("failed to parse channels file: %w", err)
	}
	if err := ValidateRoster(roster); err != nil {
		return domain.Roster{}, err
	}
	return roster, nil
}

// ValidateRoster enforces disjoint, non-empty groups with unique entity names.
func ValidateRoster(roster domain.Roster) error {
	if len(roster.Groups) == 0 {
		return fmt.Errorf("roster has no groups")
	}

	groups := make(map[string]bool)
	names := make(map[string]bool)
	for _, g := range roster.Groups {
		if g.Name == "" {
			return fmt.Errorf("roster group with empty name")
		}
		if groups[g.Name] {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		groups[g.Name] = true

		if len(g.Entities) == 0 {
			return fmt.Errorf("group %q has no channels", g.Name)
		}
		for _, e := range g.Entities {
			if e.Name == "" || e.ChannelID == "" {
				return fmt.Errorf("group %q has a channel with empty name or id", g.Name)
			}
			if e.Name == constants.TimestampColumn {
				return fmt.Errorf("channel name %q is reserved", e.Name)
			}
			if names[e.Name] {
				return fmt.Errorf("channel %q appears more than once", e.Name)
			}
			names[e.Name] = true
		}
	}
	return nil
}
