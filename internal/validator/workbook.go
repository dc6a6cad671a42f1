package validator

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/excel"
	"github.com/derekprior/cup/internal/schedule"
)

// ValidateWorkbook reads the master sheet of an exported, possibly hand
// edited, schedule workbook and checks the placements it describes against
// c's rules. Matches missing from the sheet are reported as unscheduled.
func ValidateWorkbook(c *cup.Cup, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	edited, err := c.Clone()
	if err != nil {
		return nil, fmt.Errorf("copying cup: %w", err)
	}

	rows, violations, err := readPlacements(f, edited)
	if err != nil {
		return nil, fmt.Errorf("reading placements: %w", err)
	}

	return append(violations, validate(edited, rows)...), nil
}

type divisionLookup struct {
	div   *cup.Division
	teams map[string]string // team name -> id
}

// readPlacements replaces every match placement in c with the one found in
// the master sheet and returns the sheet row of each placed match.
func readPlacements(f *excelize.File, c *cup.Cup) (map[string]int, []Violation, error) {
	rows, err := f.GetRows(excel.MasterSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", excel.MasterSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", excel.MasterSheet)
	}

	var violations []Violation

	// Header row determines pitch columns (index 3+)
	pitchByName := make(map[string]string)
	for _, p := range schedule.ExpandPitches(c.Pitches) {
		pitchByName[excel.PitchColumn(p)] = p.ID
	}
	type pitchCol struct {
		index int
		id    string
	}
	header := rows[0]
	var pitchCols []pitchCol
	for i := 3; i < len(header); i++ {
		id, ok := pitchByName[header[i]]
		if !ok {
			violations = append(violations, Violation{
				Row:     1,
				Type:    "error",
				Message: fmt.Sprintf("column %q is not a pitch of this cup", header[i]),
			})
			continue
		}
		pitchCols = append(pitchCols, pitchCol{i, id})
	}

	dayByLabel := make(map[string]int)
	for i, d := range c.Days {
		dayByLabel[excel.DayLabel(d, i)] = i
	}

	divisions := make(map[string]divisionLookup)
	for i := range c.Divisions {
		div := &c.Divisions[i]
		lookup := divisionLookup{div: div, teams: make(map[string]string)}
		for _, t := range div.Teams {
			lookup.teams[t.ID] = t.ID
		}
		for _, t := range div.Teams {
			if t.Name != "" {
				lookup.teams[t.Name] = t.ID
			}
		}
		divisions[excel.DivisionLabel(div)] = lookup

		for j := range div.Matches {
			div.Matches[j] = clearPlacement(div.Matches[j])
		}
	}

	placedRow := make(map[string]int)
	for i, row := range rows {
		if i == 0 || len(row) < 3 || row[1] == "" {
			continue
		}
		rowNum := i + 1

		day, ok := dayByLabel[row[1]]
		if !ok {
			violations = append(violations, Violation{
				Row: rowNum, Type: "error",
				Message: fmt.Sprintf("unknown day %q", row[1]),
			})
			continue
		}
		start, err := cup.ParseClock(row[2])
		if err != nil {
			violations = append(violations, Violation{
				Row: rowNum, Type: "error",
				Message: fmt.Sprintf("bad time %q", row[2]),
			})
			continue
		}

		for _, pc := range pitchCols {
			if pc.index >= len(row) || row[pc.index] == "" {
				continue
			}
			cell := row[pc.index]
			label, home, away, ok := excel.ParseMatchCell(cell)
			if !ok {
				continue // break or free text, not a match
			}

			lookup, ok := divisions[label]
			if !ok {
				violations = append(violations, Violation{
					Row: rowNum, Type: "error",
					Message: fmt.Sprintf("%q names unknown division %q", cell, label),
				})
				continue
			}
			homeID, hok := lookup.teams[home]
			awayID, aok := lookup.teams[away]
			if !hok || !aok {
				violations = append(violations, Violation{
					Row: rowNum, Type: "error",
					Message: fmt.Sprintf("%q names a team that is not in %s", cell, label),
				})
				continue
			}

			idx := findFixture(lookup.div, homeID, awayID, placedRow)
			if idx < 0 {
				violations = append(violations, Violation{
					Row: rowNum, Type: "error",
					Message: fmt.Sprintf("%q is not a fixture of %s or appears twice", cell, label),
				})
				continue
			}

			m := &lookup.div.Matches[idx]
			m.PitchID = pc.id
			m.DayIndex = day
			m.Start = start
			m.End = start + cup.Clock(lookup.div.MatchMinutes)
			placedRow[m.ID] = rowNum
		}
	}

	return placedRow, violations, nil
}

// findFixture returns the index of div's first not yet placed match
// between the two teams, in either orientation, or -1.
func findFixture(div *cup.Division, a, b string, placed map[string]int) int {
	for i, m := range div.Matches {
		if _, taken := placed[m.ID]; taken {
			continue
		}
		if (m.Home == a && m.Away == b) || (m.Home == b && m.Away == a) {
			return i
		}
	}
	return -1
}

func clearPlacement(m cup.Match) cup.Match {
	m.PitchID = ""
	m.DayIndex = 0
	m.Start = 0
	m.End = 0
	return m
}
