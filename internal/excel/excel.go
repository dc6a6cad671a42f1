package excel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/schedule"
	"github.com/derekprior/cup/internal/standings"
)

// Sheet names shared with readers of the workbook.
const (
	MasterSheet    = "Master Schedule"
	StandingsSheet = "Standings"
	BreakText      = "Break"
)

// Master sheet columns before the pitch columns: Date, Day, Time.
const masterFixedCols = 3

// Generate creates an Excel workbook with the master schedule, one sheet per
// division and the current standings.
func Generate(c *cup.Cup) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	s, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("creating styles: %w", err)
	}

	if err := writeMasterSheet(f, c, s); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}

	if err := writeDivisionSheets(f, c, s); err != nil {
		return nil, fmt.Errorf("writing division sheets: %w", err)
	}

	if err := writeStandingsSheet(f, c, s); err != nil {
		return nil, fmt.Errorf("writing standings sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// DivisionLabel is the short name a division is shown under in the master
// sheet.
func DivisionLabel(d *cup.Division) string {
	switch {
	case d.Label != "":
		return d.Label
	case d.Name != "":
		return d.Name
	}
	return d.ID
}

// DayLabel names day i in the Day column.
func DayLabel(d cup.Day, i int) string {
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("Day %d", i+1)
}

// PitchColumn is the master sheet header of a (possibly virtual) pitch.
func PitchColumn(p cup.Pitch) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// MatchCell formats a master sheet cell: "U9: Ajax vs Boca".
func MatchCell(label, home, away string) string {
	return fmt.Sprintf("%s: %s vs %s", label, home, away)
}

// ParseMatchCell parses a cell written by MatchCell.
// Returns ok=false for empty, break or free-text cells.
func ParseMatchCell(cell string) (label, home, away string, ok bool) {
	label, rest, found := strings.Cut(cell, ": ")
	if !found {
		return "", "", "", false
	}
	home, away, found = strings.Cut(rest, " vs ")
	if !found || label == "" || home == "" || away == "" {
		return "", "", "", false
	}
	return label, home, away, true
}

type styles struct {
	header, title, cell, center, redFill int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, err
	}
	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 18, Family: "Arial"},
	})
	if err != nil {
		return s, err
	}
	s.cell, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	if err != nil {
		return s, err
	}
	s.center, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, err
	}
	s.redFill, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	return s, err
}

func writeHeaders(f *excelize.File, sheet string, row int, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, row), h)
	}
	f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), style)
}

func teamNames(div *cup.Division) map[string]string {
	names := make(map[string]string, len(div.Teams))
	for _, t := range div.Teams {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		names[t.ID] = name
	}
	return names
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func writeMasterSheet(f *excelize.File, c *cup.Cup, s styles) error {
	sheet := MasterSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	pitches := schedule.ExpandPitches(c.Pitches)
	pitchIndex := make(map[string]int)
	headers := []string{"Date", "Day", "Time"}
	for i, p := range pitches {
		pitchIndex[p.ID] = i
		headers = append(headers, PitchColumn(p))
	}
	writeHeaders(f, sheet, 1, headers, s.header)

	// (day, start, pitch) -> cell text
	type slotKey struct {
		day   int
		start cup.Clock
		pitch string
	}
	type timeSlot struct {
		day   int
		start cup.Clock
	}
	cells := make(map[slotKey]string)
	seen := make(map[timeSlot]bool)
	var timeSlots []timeSlot
	addTime := func(ts timeSlot) {
		if !seen[ts] {
			seen[ts] = true
			timeSlots = append(timeSlots, ts)
		}
	}

	for i := range c.Divisions {
		div := &c.Divisions[i]
		label := DivisionLabel(div)
		names := teamNames(div)
		for _, m := range div.Matches {
			if !m.Placed() {
				continue
			}
			cells[slotKey{m.DayIndex, m.Start, m.PitchID}] = MatchCell(label, nameOr(names, m.Home), nameOr(names, m.Away))
			addTime(timeSlot{m.DayIndex, m.Start})
		}
	}

	// Breaks get their own row, blocked on every pitch
	for di, day := range c.Days {
		for _, b := range day.Breaks {
			for _, p := range pitches {
				cells[slotKey{di, b.Start, p.ID}] = BreakText
			}
			addTime(timeSlot{di, b.Start})
		}
	}

	sort.Slice(timeSlots, func(i, j int) bool {
		if timeSlots[i].day != timeSlots[j].day {
			return timeSlots[i].day < timeSlots[j].day
		}
		return timeSlots[i].start < timeSlots[j].start
	})

	for i, ts := range timeSlots {
		row := i + 2
		date, dayLabel := "", fmt.Sprintf("Day %d", ts.day+1)
		if ts.day < len(c.Days) {
			date = c.Days[ts.day].Date
			dayLabel = DayLabel(c.Days[ts.day], ts.day)
		}
		f.SetCellValue(sheet, cellRef(1, row), date)
		f.SetCellValue(sheet, cellRef(2, row), dayLabel)
		f.SetCellValue(sheet, cellRef(3, row), ts.start.String())

		for _, p := range pitches {
			col := pitchIndex[p.ID] + masterFixedCols + 1
			if text, ok := cells[slotKey{ts.day, ts.start, p.ID}]; ok {
				f.SetCellValue(sheet, cellRef(col, row), text)
			}
		}

		f.SetCellStyle(sheet, cellRef(1, row), cellRef(masterFixedCols, row), s.cell)
		if len(pitches) > 0 {
			f.SetCellStyle(sheet, cellRef(masterFixedCols+1, row), cellRef(len(headers), row), s.center)
		}
	}

	// Set column widths (sized for Arial 16)
	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 10)
	for i := range pitches {
		col := colLetter(i + masterFixedCols + 1)
		f.SetColWidth(sheet, col, col, 36)
	}

	// Conditional formatting: non-match cells in pitch columns get light red
	lastRow := len(timeSlots) + 1
	redFill := s.redFill
	for i := 0; lastRow > 1 && i < len(pitches); i++ {
		col := colLetter(i + masterFixedCols + 1)
		cellRange := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		topCell := fmt.Sprintf("%s2", col)
		formula := fmt.Sprintf(`AND(%s<>"",ISERROR(FIND(" vs ",%s)))`, topCell, topCell)
		f.SetConditionalFormat(sheet, cellRange, []excelize.ConditionalFormatOptions{
			{
				Type:     "formula",
				Criteria: formula,
				Format:   &redFill,
			},
		})
	}

	return nil
}

func writeDivisionSheets(f *excelize.File, c *cup.Cup, s styles) error {
	pitchNames := make(map[string]string)
	for _, p := range schedule.ExpandPitches(c.Pitches) {
		pitchNames[p.ID] = PitchColumn(p)
	}
	used := map[string]bool{MasterSheet: true, StandingsSheet: true}

	for i := range c.Divisions {
		div := &c.Divisions[i]
		sheet := uniqueSheetName(DivisionLabel(div), used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet for %s: %w", div.ID, err)
		}

		headers := []string{"Date", "Day", "Time", "Pitch", "Home", "Away", "Score", "Pool", "Locked"}
		writeHeaders(f, sheet, 1, headers, s.header)

		poolNames := make(map[string]string)
		for _, p := range div.Pools {
			poolNames[p.ID] = p.Name
		}
		names := teamNames(div)

		var placed, unplaced []cup.Match
		for _, m := range div.Matches {
			if m.Placed() {
				placed = append(placed, m)
			} else {
				unplaced = append(unplaced, m)
			}
		}
		sort.SliceStable(placed, func(i, j int) bool {
			if placed[i].DayIndex != placed[j].DayIndex {
				return placed[i].DayIndex < placed[j].DayIndex
			}
			if placed[i].Start != placed[j].Start {
				return placed[i].Start < placed[j].Start
			}
			return placed[i].PitchID < placed[j].PitchID
		})

		for n, m := range append(placed, unplaced...) {
			row := n + 2
			values := []string{"", "", "-", "unplaced", nameOr(names, m.Home), nameOr(names, m.Away), "", poolNames[m.PoolID], ""}
			if m.Placed() {
				if m.DayIndex < len(c.Days) {
					values[0] = c.Days[m.DayIndex].Date
					values[1] = DayLabel(c.Days[m.DayIndex], m.DayIndex)
				}
				values[2] = m.Start.String()
				values[3] = nameOr(pitchNames, m.PitchID)
			}
			if m.Scored() {
				values[6] = fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore)
			}
			if m.Locked {
				values[8] = "yes"
			}
			for col, v := range values {
				f.SetCellValue(sheet, cellRef(col+1, row), v)
			}
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), s.cell)
		}

		// Set column widths (sized for Arial 16)
		widths := map[string]float64{"A": 16, "B": 12, "C": 10, "D": 24, "E": 24, "F": 24, "G": 10, "H": 14, "I": 10}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

func writeStandingsSheet(f *excelize.File, c *cup.Cup, s styles) error {
	sheet := StandingsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Rank", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}
	row := 1
	for i := range c.Divisions {
		div := &c.Divisions[i]
		for _, table := range standings.ForPools(*div) {
			title := DivisionLabel(div)
			if table.PoolID != "" {
				title = fmt.Sprintf("%s %s", title, table.PoolName)
			}
			f.SetCellValue(sheet, cellRef(1, row), title)
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(1, row), s.title)
			row++

			writeHeaders(f, sheet, row, headers, s.header)
			row++

			for _, r := range table.Rows {
				values := []any{r.Rank, r.Name, r.Played, r.Won, r.Drawn, r.Lost, r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points}
				for col, v := range values {
					f.SetCellValue(sheet, cellRef(col+1, row), v)
				}
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), s.cell)
				row++
			}
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "J", 8)
	return nil
}

// uniqueSheetName makes name a legal, unused sheet name.
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, name)
	if clean == "" {
		clean = "Division"
	}
	if len([]rune(clean)) > 31 {
		clean = string([]rune(clean)[:31])
	}

	candidate := clean
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(clean)
		if len(base)+len(suffix) > 31 {
			base = base[:31-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[candidate] = true
	return candidate
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
