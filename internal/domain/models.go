package domain

import (
	"sort"
	"time"
)

type Entity struct {
	Name      string `yaml:"name"`
	ChannelID string `yaml:"id"`
}

type Group struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"channels"`
}

func (g Group) Names() []string {
	names := make([]string, len(g.Entities))
	for i, e := range g.Entities {
		names[i] = e.Name
	}
	return names
}

type Roster struct {
	Groups []Group `yaml:"groups"`
}

// Names lists every entity in group order, then entity order. This is also the
// column order of the snapshot store.
func (r Roster) Names() []string {
	var names []string
	for _, g := range r.Groups {
		names = append(names, g.Names()...)
	}
	return names
}

func (r Roster) Entities() []Entity {
	var entities []Entity
	for _, g := range r.Groups {
		entities = append(entities, g.Entities...)
	}
	return entities
}

// Snapshot is one row of the historical record. A nil value means no data for that
// entity. A zero Timestamp marks a row whose stored timestamp could not be parsed.
type Snapshot struct {
	Timestamp time.Time
	Values    map[string]*int64
}

func NewSnapshot(ts time.Time) Snapshot {
	return Snapshot{Timestamp: ts, Values: make(map[string]*int64)}
}

func (s Snapshot) Value(name string) (int64, bool) {
	v, ok := s.Values[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

func (s Snapshot) Set(name string, v int64) {
	s.Values[name] = &v
}

// SameDay reports whether the snapshot falls on the calendar day of t, both taken
// in loc.
func (s Snapshot) SameDay(t time.Time, loc *time.Location) bool {
	if s.Timestamp.IsZero() {
		return false
	}
	y1, m1, d1 := s.Timestamp.In(loc).Date()
	y2, m2, d2 := t.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

type History []Snapshot

func (h History) Sort() {
	sort.SliceStable(h, func(i, j int) bool {
		return h[i].Timestamp.Before(h[j].Timestamp)
	})
}

// Latest returns the last row carrying a valid timestamp.
func (h History) Latest() (Snapshot, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if !h[i].Timestamp.IsZero() {
			return h[i], true
		}
	}
	return Snapshot{}, false
}

type Delta struct {
	Name  string
	Value int64
}

// DeltaSet keeps roster order; ranking ties fall back to it.
type DeltaSet []Delta

type WindowKind string

const (
	WindowDaily  WindowKind = "daily"
	WindowWeekly WindowKind = "weekly"
)

type Window struct {
	Kind         WindowKind
	Group        string
	From         time.Time
	To           time.Time
	Deltas       DeltaSet
	HasReference bool
}
