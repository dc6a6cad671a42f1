package cup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Clock is a time of day in minutes since midnight. It is written as "HH:MM"
// in cup documents.
type Clock int

// ParseClock parses "HH:MM" (24-hour). "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hours < 0 || mins < 0 || mins > 59 || hours > 24 || (hours == 24 && mins != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Clock(hours*60 + mins), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseClock(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid time %s: want a quoted HH:MM string", data)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// Format is a play format such as "7v7". Formats are totally ordered by
// player count; see schedule.FormatIndex.
type Format string

// Formats lists the known play formats, smallest first.
var Formats = []Format{"3v3", "5v5", "7v7", "9v9", "11v11"}

type Team struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Club    string `yaml:"club,omitempty" json:"club,omitempty"`
	Contact string `yaml:"contact,omitempty" json:"contact,omitempty"`
}

// Break is a half-open [Start, End) window during which no match may run.
type Break struct {
	Start Clock `yaml:"start" json:"start"`
	End   Clock `yaml:"end" json:"end"`
}

type Day struct {
	ID     string  `yaml:"id" json:"id"`
	Date   string  `yaml:"date" json:"date"` // YYYY-MM-DD
	Start  Clock   `yaml:"start" json:"start"`
	End    Clock   `yaml:"end" json:"end"`
	Breaks []Break `yaml:"breaks,omitempty" json:"breaks,omitempty"`
}

type SubPitch struct {
	ID     string `yaml:"id,omitempty" json:"id,omitempty"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Format Format `yaml:"format,omitempty" json:"format,omitempty"`
}

type Pitch struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	Format     Format     `yaml:"format,omitempty" json:"format,omitempty"`
	SubPitches []SubPitch `yaml:"sub_pitches,omitempty" json:"subPitches,omitempty"`
}

// SubPitchID returns the id of the i-th sub-pitch: its own id when set,
// otherwise the pitch id followed by the sub-pitch letter ("p1-A").
func (p Pitch) SubPitchID(i int) string {
	if id := p.SubPitches[i].ID; id != "" {
		return id
	}
	return p.ID + "-" + SubPitchSuffix(i)
}

// SubPitchSuffix returns A, B, ..., Z, AA, AB, ...
func SubPitchSuffix(i int) string {
	s := ""
	for i++; i > 0; i = (i - 1) / 26 {
		s = string(rune('A'+(i-1)%26)) + s
	}
	return s
}

type Pool struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	TeamIDs []string `yaml:"team_ids" json:"teamIds"`
}

// Match is a single fixture. It is placed once PitchID is set.
type Match struct {
	ID         string `yaml:"id" json:"id"`
	DivisionID string `yaml:"division_id" json:"divisionId"`
	PoolID     string `yaml:"pool_id,omitempty" json:"poolId,omitempty"`
	Round      int    `yaml:"round" json:"round"`
	Home       string `yaml:"home" json:"home"`
	Away       string `yaml:"away" json:"away"`
	HomeScore  *int   `yaml:"home_score,omitempty" json:"homeScore,omitempty"`
	AwayScore  *int   `yaml:"away_score,omitempty" json:"awayScore,omitempty"`
	PitchID    string `yaml:"pitch_id,omitempty" json:"pitchId,omitempty"`
	DayIndex   int    `yaml:"day_index" json:"dayIndex"`
	Start      Clock  `yaml:"start" json:"start"`
	End        Clock  `yaml:"end" json:"end"`
	Locked     bool   `yaml:"locked,omitempty" json:"locked,omitempty"`
}

func (m Match) Placed() bool {
	return m.PitchID != ""
}

// Scored reports whether both scores have been reported.
func (m Match) Scored() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Involves reports whether team plays in m.
func (m Match) Involves(team string) bool {
	return m.Home == team || m.Away == team
}

// Generation records how a division's schedule was produced.
type Generation struct {
	Seed        int64    `yaml:"seed" json:"seed"`
	Attempts    int      `yaml:"attempts" json:"attempts"`
	BestScore   float64  `yaml:"best_score" json:"bestScore"`
	Warnings    []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	GeneratedAt string   `yaml:"generated_at" json:"generatedAt"`
}

// Division is a class of teams that share a format and timing rules.
type Division struct {
	ID                      string      `yaml:"id" json:"id"`
	Name                    string      `yaml:"name" json:"name"`
	Label                   string      `yaml:"label,omitempty" json:"label,omitempty"`
	Format                  Format      `yaml:"format,omitempty" json:"format,omitempty"`
	MatchMinutes            int         `yaml:"match_minutes" json:"matchMinutes"`
	BufferMinutes           int         `yaml:"buffer_minutes" json:"bufferMinutes"`
	MinRestMinutes          int         `yaml:"min_rest_minutes" json:"minRestMinutes"`
	AllowedDays             []int       `yaml:"allowed_days,omitempty" json:"allowedDays,omitempty"`
	MaxMatchesPerTeamPerDay int         `yaml:"max_matches_per_team_per_day,omitempty" json:"maxMatchesPerTeamPerDay,omitempty"`
	Teams                   []Team      `yaml:"teams" json:"teams"`
	Pooling                 bool        `yaml:"pooling,omitempty" json:"pooling,omitempty"`
	Pools                   []Pool      `yaml:"pools,omitempty" json:"pools,omitempty"`
	Matches                 []Match     `yaml:"matches,omitempty" json:"matches,omitempty"`
	Generation              *Generation `yaml:"generation,omitempty" json:"generation,omitempty"`
}

// TeamIDs returns the ids of the division's teams in order.
func (d *Division) TeamIDs() []string {
	ids := make([]string, len(d.Teams))
	for i, t := range d.Teams {
		ids[i] = t.ID
	}
	return ids
}

// DailyCap returns the per-team daily match cap, falling back to the cup
// default. Zero means uncapped.
func (d *Division) DailyCap(cupDefault int) int {
	if d.MaxMatchesPerTeamPerDay > 0 {
		return d.MaxMatchesPerTeamPerDay
	}
	return cupDefault
}

// UsesPools reports whether matches are generated per pool.
func (d *Division) UsesPools() bool {
	return d.Pooling && len(d.Pools) > 0
}

// Cup is the aggregate root of a tournament.
type Cup struct {
	ID                      string     `yaml:"id" json:"id"`
	Name                    string     `yaml:"name" json:"name"`
	Days                    []Day      `yaml:"days" json:"days"`
	Pitches                 []Pitch    `yaml:"pitches" json:"pitches"`
	Divisions               []Division `yaml:"divisions" json:"divisions"`
	MaxMatchesPerTeamPerDay int        `yaml:"max_matches_per_team_per_day,omitempty" json:"maxMatchesPerTeamPerDay,omitempty"`
}

// Division returns the division with the given id, or nil.
func (c *Cup) Division(id string) *Division {
	for i := range c.Divisions {
		if c.Divisions[i].ID == id {
			return &c.Divisions[i]
		}
	}
	return nil
}

// AllMatches returns every match across all divisions.
func (c *Cup) AllMatches() []Match {
	var matches []Match
	for _, d := range c.Divisions {
		matches = append(matches, d.Matches...)
	}
	return matches
}

func knownFormat(f Format) bool {
	if f == "" {
		return true
	}
	for _, k := range Formats {
		if k == f {
			return true
		}
	}
	return false
}

func formatRank(f Format) int {
	for i, k := range Formats {
		if k == f {
			return i
		}
	}
	return -1
}

// Validate checks the cup configuration for structural errors.
func (c *Cup) Validate() error {
	if len(c.Days) == 0 {
		return fmt.Errorf("at least one day is required")
	}
	if len(c.Pitches) == 0 {
		return fmt.Errorf("at least one pitch is required")
	}
	if len(c.Divisions) == 0 {
		return fmt.Errorf("at least one division is required")
	}

	for i, d := range c.Days {
		if d.Date != "" {
			if _, err := time.Parse("2006-01-02", d.Date); err != nil {
				return fmt.Errorf("day %d: invalid date %q: %w", i, d.Date, err)
			}
		}
		if d.End <= d.Start {
			return fmt.Errorf("day %d: end %s must be after start %s", i, d.End, d.Start)
		}
		prevEnd := d.Start
		for _, b := range d.Breaks {
			if b.End <= b.Start {
				return fmt.Errorf("day %d: break %s-%s ends before it starts", i, b.Start, b.End)
			}
			if b.Start < prevEnd || b.End > d.End {
				return fmt.Errorf("day %d: break %s-%s overlaps another break or lies outside the day", i, b.Start, b.End)
			}
			prevEnd = b.End
		}
	}

	pitchIDs := make(map[string]bool)
	for _, p := range c.Pitches {
		if p.ID == "" {
			return fmt.Errorf("pitch %q has no id", p.Name)
		}
		if pitchIDs[p.ID] {
			return fmt.Errorf("pitch id %q is used twice", p.ID)
		}
		pitchIDs[p.ID] = true
		if !knownFormat(p.Format) {
			return fmt.Errorf("pitch %q: unknown format %q", p.ID, p.Format)
		}
		for j, sp := range p.SubPitches {
			if !knownFormat(sp.Format) {
				return fmt.Errorf("pitch %q: sub-pitch has unknown format %q", p.ID, sp.Format)
			}
			if p.Format != "" && sp.Format != "" && formatRank(sp.Format) > formatRank(p.Format) {
				return fmt.Errorf("pitch %q: sub-pitch format %s is larger than the pitch (%s)", p.ID, sp.Format, p.Format)
			}
			id := p.SubPitchID(j)
			if pitchIDs[id] {
				return fmt.Errorf("pitch id %q is used twice", id)
			}
			pitchIDs[id] = true
		}
	}

	// Team ids must be unique across the whole cup
	seen := make(map[string]string)
	divIDs := make(map[string]bool)
	for _, div := range c.Divisions {
		if div.ID == "" {
			return fmt.Errorf("division %q has no id", div.Name)
		}
		if divIDs[div.ID] {
			return fmt.Errorf("division id %q is used twice", div.ID)
		}
		divIDs[div.ID] = true
		if div.MatchMinutes <= 0 {
			return fmt.Errorf("division %q: match_minutes must be positive", div.ID)
		}
		if div.BufferMinutes < 0 || div.MinRestMinutes < 0 {
			return fmt.Errorf("division %q: buffer and rest minutes cannot be negative", div.ID)
		}
		if !knownFormat(div.Format) {
			return fmt.Errorf("division %q: unknown format %q", div.ID, div.Format)
		}
		for _, di := range div.AllowedDays {
			if di < 0 || di >= len(c.Days) {
				return fmt.Errorf("division %q: allowed day %d does not exist", div.ID, di)
			}
		}
		for _, team := range div.Teams {
			if team.ID == "" {
				return fmt.Errorf("division %q: team %q has no id", div.ID, team.Name)
			}
			if prevDiv, ok := seen[team.ID]; ok {
				return fmt.Errorf("team %q appears in both %q and %q divisions", team.ID, prevDiv, div.ID)
			}
			seen[team.ID] = div.ID
		}
	}

	return nil
}
