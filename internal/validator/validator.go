package validator

import (
	"fmt"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/pools"
	"github.com/derekprior/cup/internal/schedule"
)

// Violation represents a constraint violation found during validation.
type Violation struct {
	Row     int    // workbook row, 0 when not read from a workbook
	Type    string // "error" or "warning"
	Message string
}

// MoveCheck is the outcome of checking a single manual move.
type MoveCheck struct {
	Valid     bool
	Conflicts []string
}

// CheckMoveConflicts checks moved, at its proposed position, against every
// other placed match. The match's own previous position is ignored. Rest is
// not enforced when either match is locked.
func CheckMoveConflicts(placed []cup.Match, moved cup.Match, minRest int) MoveCheck {
	var conflicts []string
	for _, p := range placed {
		if p.ID == moved.ID || !p.Placed() || p.DayIndex != moved.DayIndex {
			continue
		}
		overlap := moved.Start < p.End && p.Start < moved.End

		if overlap && p.PitchID == moved.PitchID {
			conflicts = append(conflicts, fmt.Sprintf("pitch %s is already used by %s at %s",
				p.PitchID, describe(p), window(p)))
		}

		for _, team := range []string{moved.Home, moved.Away} {
			if !p.Involves(team) {
				continue
			}
			if overlap {
				conflicts = append(conflicts, fmt.Sprintf("%s already plays %s at %s", team, describe(p), window(p)))
				continue
			}
			if p.Locked || moved.Locked {
				continue
			}
			if gap := gapBetween(p, moved); gap < minRest {
				conflicts = append(conflicts, fmt.Sprintf("%s would rest only %d minutes next to %s at %s (min %d)",
					team, gap, describe(p), window(p), minRest))
			}
		}
	}
	return MoveCheck{Valid: len(conflicts) == 0, Conflicts: conflicts}
}

// Validate checks every placed match of c against the hard constraints and
// reports softer problems as warnings.
func Validate(c *cup.Cup) []Violation {
	return validate(c, nil)
}

// validate runs every check; rows maps match ids to the workbook row they
// were read from.
func validate(c *cup.Cup, rows map[string]int) []Violation {
	var placed []placedMatch
	for i := range c.Divisions {
		div := &c.Divisions[i]
		for _, m := range div.Matches {
			if m.Placed() {
				placed = append(placed, placedMatch{Match: m, div: div, row: rows[m.ID]})
			}
		}
	}

	var violations []Violation

	// Check hard constraints
	violations = append(violations, checkPitchOverlaps(placed)...)
	violations = append(violations, checkTeamOverlaps(placed)...)
	violations = append(violations, checkRest(placed)...)
	violations = append(violations, checkPitchFormats(c, placed)...)
	violations = append(violations, checkPools(c)...)

	// Check soft constraints
	violations = append(violations, checkDayBounds(c, placed)...)
	violations = append(violations, checkDailyCap(c, placed)...)

	// Check completeness
	violations = append(violations, checkUnplaced(c)...)

	return violations
}

// HasErrors reports whether any violation is an error.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Type == "error" {
			return true
		}
	}
	return false
}

type placedMatch struct {
	cup.Match
	div *cup.Division
	row int
}

func describe(m cup.Match) string {
	return fmt.Sprintf("%s vs %s", m.Home, m.Away)
}

func window(m cup.Match) string {
	return fmt.Sprintf("%s-%s", m.Start, m.End)
}

func gapBetween(a, b cup.Match) int {
	if a.End <= b.Start {
		return int(b.Start - a.End)
	}
	return int(a.Start - b.End)
}

func sameWindow(a, b placedMatch) bool {
	return a.DayIndex == b.DayIndex && a.Start < b.End && b.Start < a.End
}

func checkPitchOverlaps(placed []placedMatch) []Violation {
	var violations []Violation
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := placed[i], placed[j]
			if a.PitchID != b.PitchID || !sameWindow(a, b) {
				continue
			}
			violations = append(violations, Violation{
				Row:  b.row,
				Type: "error",
				Message: fmt.Sprintf("pitch %s double-booked on day %d: %s at %s and %s at %s",
					a.PitchID, a.DayIndex+1, describe(a.Match), window(a.Match), describe(b.Match), window(b.Match)),
			})
		}
	}
	return violations
}

func checkTeamOverlaps(placed []placedMatch) []Violation {
	var violations []Violation
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := placed[i], placed[j]
			if !sameWindow(a, b) {
				continue
			}
			for _, team := range []string{a.Home, a.Away} {
				if b.Involves(team) {
					violations = append(violations, Violation{
						Row:  b.row,
						Type: "error",
						Message: fmt.Sprintf("%s plays %s at %s and %s at %s on day %d",
							team, describe(a.Match), window(a.Match), describe(b.Match), window(b.Match), a.DayIndex+1),
					})
				}
			}
		}
	}
	return violations
}

func checkRest(placed []placedMatch) []Violation {
	var violations []Violation
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := placed[i], placed[j]
			if a.div != b.div || a.DayIndex != b.DayIndex || sameWindow(a, b) || a.Locked || b.Locked {
				continue
			}
			minRest := a.div.MinRestMinutes
			gap := gapBetween(a.Match, b.Match)
			if gap >= minRest {
				continue
			}
			for _, team := range []string{a.Home, a.Away} {
				if b.Involves(team) {
					violations = append(violations, Violation{
						Row:  b.row,
						Type: "error",
						Message: fmt.Sprintf("%s rests %d minutes between %s and %s on day %d (min %d)",
							team, gap, describe(a.Match), describe(b.Match), a.DayIndex+1, minRest),
					})
				}
			}
		}
	}
	return violations
}

func checkPitchFormats(c *cup.Cup, placed []placedMatch) []Violation {
	pitches := make(map[string]cup.Pitch)
	for _, p := range schedule.ExpandPitches(c.Pitches) {
		pitches[p.ID] = p
	}

	var violations []Violation
	for _, m := range placed {
		p, ok := pitches[m.PitchID]
		if !ok {
			violations = append(violations, Violation{
				Row:     m.row,
				Type:    "error",
				Message: fmt.Sprintf("%s is on unknown pitch %q", describe(m.Match), m.PitchID),
			})
			continue
		}
		if !schedule.Compatible(p.Format, m.div.Format) {
			violations = append(violations, Violation{
				Row:  m.row,
				Type: "error",
				Message: fmt.Sprintf("%s (%s) is on %s, which only fits %s",
					describe(m.Match), m.div.Format, pitchName(p), p.Format),
			})
		}
	}
	return violations
}

func checkPools(c *cup.Cup) []Violation {
	var violations []Violation
	for _, div := range c.Divisions {
		if !div.UsesPools() {
			continue
		}
		for _, p := range pools.Validate(div).Errors {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s: %s", div.Name, p.Message),
			})
		}
	}
	return violations
}

func checkDayBounds(c *cup.Cup, placed []placedMatch) []Violation {
	var violations []Violation
	for _, m := range placed {
		if m.DayIndex < 0 || m.DayIndex >= len(c.Days) {
			violations = append(violations, Violation{
				Row:     m.row,
				Type:    "error",
				Message: fmt.Sprintf("%s is on day %d, which does not exist", describe(m.Match), m.DayIndex+1),
			})
			continue
		}
		day := c.Days[m.DayIndex]
		if m.Start < day.Start || m.End > day.End {
			violations = append(violations, Violation{
				Row:  m.row,
				Type: "warning",
				Message: fmt.Sprintf("%s at %s is outside playing hours %s-%s on day %d",
					describe(m.Match), window(m.Match), day.Start, day.End, m.DayIndex+1),
			})
		}
		for _, b := range day.Breaks {
			if m.Start < b.End && b.Start < m.End {
				violations = append(violations, Violation{
					Row:  m.row,
					Type: "warning",
					Message: fmt.Sprintf("%s at %s overlaps the %s-%s break on day %d",
						describe(m.Match), window(m.Match), b.Start, b.End, m.DayIndex+1),
				})
			}
		}
	}
	return violations
}

func checkDailyCap(c *cup.Cup, placed []placedMatch) []Violation {
	type teamDay struct {
		team string
		day  int
	}
	counts := make(map[teamDay]int)
	var order []teamDay
	caps := make(map[string]int)
	for _, m := range placed {
		for _, team := range []string{m.Home, m.Away} {
			td := teamDay{team, m.DayIndex}
			if counts[td] == 0 {
				order = append(order, td)
			}
			counts[td]++
			caps[team] = m.div.DailyCap(c.MaxMatchesPerTeamPerDay)
		}
	}

	var violations []Violation
	for _, td := range order {
		limit := caps[td.team]
		if limit > 0 && counts[td] > limit {
			violations = append(violations, Violation{
				Type:    "warning",
				Message: fmt.Sprintf("%s plays %d matches on day %d (max %d)", td.team, counts[td], td.day+1, limit),
			})
		}
	}
	return violations
}

func checkUnplaced(c *cup.Cup) []Violation {
	var violations []Violation
	for _, div := range c.Divisions {
		for _, m := range div.Matches {
			if !m.Placed() {
				violations = append(violations, Violation{
					Type:    "warning",
					Message: fmt.Sprintf("%s: %s (round %d) is not scheduled", div.Name, describe(m), m.Round),
				})
			}
		}
	}
	return violations
}

func pitchName(p cup.Pitch) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
