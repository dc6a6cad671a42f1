// Package feasibility estimates, before any generation attempt, whether each
// division's round robin can fit into the slots its format and days allow.
package feasibility

import (
	"fmt"
	"math"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/schedule"
)

// Report is the feasibility verdict for one division.
type Report struct {
	DivisionID    string
	Feasible      bool
	Reason        string
	TotalMatches  int
	TotalSlots    int
	RestWarning   string
	BudgetWarning string
}

// Calc builds one report per division. defaultMaxPerDay is the cup-wide
// per-team daily cap used when a division sets none; zero disables the
// budget check.
func Calc(divisions []cup.Division, pitches []cup.Pitch, days []cup.Day, defaultMaxPerDay int) []Report {
	reports := make([]Report, 0, len(divisions))
	for _, div := range divisions {
		reports = append(reports, calcDivision(div, pitches, days, defaultMaxPerDay))
	}
	return reports
}

// ByDivision indexes reports by division id.
func ByDivision(reports []Report) map[string]Report {
	m := make(map[string]Report, len(reports))
	for _, r := range reports {
		m[r.DivisionID] = r
	}
	return m
}

func calcDivision(div cup.Division, pitches []cup.Pitch, days []cup.Day, defaultMaxPerDay int) Report {
	r := Report{
		DivisionID:   div.ID,
		TotalMatches: RequiredMatches(div),
	}
	if r.TotalMatches == 0 {
		r.Feasible = true
		return r
	}

	all := schedule.ExpandPitches(pitches)
	compatible := schedule.CompatiblePitches(div, pitches)
	r.TotalSlots = len(schedule.DivisionSlots(div, pitches, days))
	r.Feasible = r.TotalSlots >= r.TotalMatches

	if !r.Feasible {
		switch {
		case len(all) == 0:
			r.Reason = "no pitches configured; add at least one pitch"
		case len(compatible) == 0:
			r.Reason = fmt.Sprintf("no pitch can host %s matches; add a pitch of format %s or larger",
				formatName(div.Format), formatName(div.Format))
		case len(compatible) < len(all):
			r.Reason = fmt.Sprintf("only %d of %d pitches can host %s matches (%d slots for %d matches); add compatible pitches or split larger pitches",
				len(compatible), len(all), formatName(div.Format), r.TotalSlots, r.TotalMatches)
		default:
			r.Reason = fmt.Sprintf("not enough time: %d slots for %d matches; extend playing hours, add days or shorten matches",
				r.TotalSlots, r.TotalMatches)
		}
		return r
	}

	if div.MinRestMinutes > div.BufferMinutes && div.MatchMinutes > 0 {
		effective := float64(r.TotalSlots) * float64(div.MatchMinutes+div.BufferMinutes) /
			float64(div.MatchMinutes+div.MinRestMinutes)
		if int(effective) < r.TotalMatches {
			r.RestWarning = fmt.Sprintf("a %d minute rest leaves room for about %d of %d matches; shorten the rest or add slots",
				div.MinRestMinutes, int(effective), r.TotalMatches)
		}
	}

	if limit := div.DailyCap(defaultMaxPerDay); limit > 0 {
		available := len(schedule.AllowedDays(div, len(days)))
		perTeam := matchesPerTeam(div)
		if available > 0 && perTeam > 0 {
			need := int(math.Ceil(float64(perTeam) / float64(available)))
			if need > limit {
				r.BudgetWarning = fmt.Sprintf("each team needs %d matches per day over %d days but the cap is %d; raise the cap or add days",
					need, available, limit)
			}
		}
	}

	return r
}

// RequiredMatches is the number of round robin matches div needs: one round
// robin per pool when pooled, otherwise one for the whole division.
func RequiredMatches(div cup.Division) int {
	if div.UsesPools() {
		total := 0
		for _, p := range div.Pools {
			total += roundRobinSize(len(p.TeamIDs))
		}
		return total
	}
	return roundRobinSize(len(div.Teams))
}

func roundRobinSize(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// matchesPerTeam is the most matches any single team must play.
func matchesPerTeam(div cup.Division) int {
	if !div.UsesPools() {
		return max(len(div.Teams)-1, 0)
	}
	most := 0
	for _, p := range div.Pools {
		most = max(most, len(p.TeamIDs)-1)
	}
	return most
}

func formatName(f cup.Format) string {
	if f == "" {
		return "these"
	}
	return string(f)
}
