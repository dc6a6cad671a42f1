// Package standings turns reported scores into ranked league tables.
package standings

import (
	"sort"

	"github.com/derekprior/cup/internal/cup"
)

const (
	winPoints  = 3
	drawPoints = 1
)

// Row is one team's line in a table.
type Row struct {
	Rank         int
	TeamID       string
	Name         string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
}

// Table is the standings of one pool, or of a whole division when it is
// not pooled.
type Table struct {
	PoolID   string
	PoolName string
	Rows     []Row
}

// Calc ranks teams by points, goal difference, goals scored, head-to-head
// points among the teams still level and finally name. Only matches with
// both scores reported count; matches involving unknown teams are ignored.
func Calc(teams []cup.Team, matches []cup.Match) []Row {
	rows := make([]Row, len(teams))
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		rows[i] = Row{TeamID: t.ID, Name: name}
		index[t.ID] = i
	}

	var counted []cup.Match
	for _, m := range matches {
		if !m.Scored() {
			continue
		}
		hi, hok := index[m.Home]
		ai, aok := index[m.Away]
		if !hok || !aok {
			continue
		}
		record(&rows[hi], *m.HomeScore, *m.AwayScore)
		record(&rows[ai], *m.AwayScore, *m.HomeScore)
		counted = append(counted, m)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return lessByName(a, b)
	})

	// Break remaining ties on the head-to-head mini league
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && level(rows[start], rows[end]) {
			end++
		}
		if end-start > 1 {
			group := rows[start:end]
			h2h := headToHead(group, counted)
			sort.SliceStable(group, func(i, j int) bool {
				return h2h[group[i].TeamID] > h2h[group[j].TeamID]
			})
		}
		start = end
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func record(r *Row, scored, conceded int) {
	r.Played++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	r.GoalDiff = r.GoalsFor - r.GoalsAgainst
	switch {
	case scored > conceded:
		r.Won++
		r.Points += winPoints
	case scored == conceded:
		r.Drawn++
		r.Points += drawPoints
	default:
		r.Lost++
	}
}

func level(a, b Row) bool {
	return a.Points == b.Points && a.GoalDiff == b.GoalDiff && a.GoalsFor == b.GoalsFor
}

func lessByName(a, b Row) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.TeamID < b.TeamID
}

// headToHead returns the points each team in group earned in matches
// played only against other members of group.
func headToHead(group []Row, matches []cup.Match) map[string]int {
	in := make(map[string]bool, len(group))
	for _, r := range group {
		in[r.TeamID] = true
	}
	points := make(map[string]int, len(group))
	for _, m := range matches {
		if !in[m.Home] || !in[m.Away] {
			continue
		}
		home, away := *m.HomeScore, *m.AwayScore
		switch {
		case home > away:
			points[m.Home] += winPoints
		case home < away:
			points[m.Away] += winPoints
		default:
			points[m.Home] += drawPoints
			points[m.Away] += drawPoints
		}
	}
	return points
}

// ForPools returns one table per pool of div, in pool order. An unpooled
// division gets a single table named after the division.
func ForPools(div cup.Division) []Table {
	if !div.UsesPools() {
		return []Table{{PoolName: div.Name, Rows: Calc(div.Teams, div.Matches)}}
	}

	byID := make(map[string]cup.Team, len(div.Teams))
	for _, t := range div.Teams {
		byID[t.ID] = t
	}

	tables := make([]Table, 0, len(div.Pools))
	for _, p := range div.Pools {
		var teams []cup.Team
		for _, id := range p.TeamIDs {
			if t, ok := byID[id]; ok {
				teams = append(teams, t)
			}
		}
		tables = append(tables, Table{
			PoolID:   p.ID,
			PoolName: p.Name,
			Rows:     Calc(teams, div.Matches),
		})
	}
	return tables
}
