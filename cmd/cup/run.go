package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/excel"
	"github.com/derekprior/cup/internal/feasibility"
	"github.com/derekprior/cup/internal/pools"
	"github.com/derekprior/cup/internal/schedule"
	"github.com/derekprior/cup/internal/standings"
	"github.com/derekprior/cup/internal/validator"
)

type generateFlags struct {
	output   string
	xlsx     string
	seed     int64
	attempts int
	workers  int
	verbose  bool
}

type moveFlags struct {
	matchID string
	pitchID string
	day     int
	start   string
	lock    bool
	write   bool
}

type poolFlags struct {
	divisionID string
	count      int
	seed       int64
	write      bool
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(renderTemplate(uuid.NewString())), 0644); err != nil {
		return fmt.Errorf("writing cup file: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

func runGenerate(configPath string, opts generateFlags) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}

	planned, err := withPlannedPools(c, opts.seed)
	if err != nil {
		return err
	}
	total := 0
	for _, div := range planned.Divisions {
		total += feasibility.RequiredMatches(div)
	}
	fmt.Printf("Scheduling %d matches in %d divisions over %d days (%d attempts)...\n",
		total, len(c.Divisions), len(c.Days), opts.attempts)
	printFeasibility(planned, feasibility.Calc(planned.Divisions, planned.Pitches, planned.Days, planned.MaxMatchesPerTeamPerDay), false)

	logger := newLogger(opts.verbose)
	out, res, err := schedule.Generate(c, schedule.GenerateOptions{
		Seed:     opts.seed,
		Attempts: opts.attempts,
		Workers:  opts.workers,
		Weights:  schedule.DefaultWeights,
		Logger:   &logger,
	})
	if err != nil {
		return fmt.Errorf("generating schedule: %w", err)
	}

	unplaced := 0
	fmt.Println("\nPer Division:")
	fmt.Printf("  %-15s %7s %9s %9s\n", "Division", "Placed", "Unplaced", "Penalty")
	for _, cr := range res.Classes {
		div := out.Division(cr.DivisionID)
		fmt.Printf("  %-15s %7d %9d %9.1f\n", div.Name, len(cr.Schedule), len(cr.Unplaced), cr.Penalty)
		unplaced += len(cr.Unplaced)
	}
	fmt.Printf("\nBest attempt %d of %d, score %.1f, start time spread %.1f\n",
		res.BestAttempt+1, res.Attempts, res.Score, res.Fairness)

	var warnings []string
	for _, div := range out.Divisions {
		if div.Generation == nil {
			continue
		}
		for _, w := range div.Generation.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", div.Name, w))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	} else {
		fmt.Println("\n✓ All matches placed")
	}

	if err := cup.SaveToFile(out, opts.output); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	fmt.Printf("\n✓ Schedule saved to %s\n", opts.output)

	if opts.xlsx != "" {
		f, err := excel.Generate(out)
		if err != nil {
			return fmt.Errorf("generating Excel: %w", err)
		}
		if err := f.SaveAs(opts.xlsx); err != nil {
			return fmt.Errorf("saving file: %w", err)
		}
		fmt.Printf("✓ Workbook saved to %s\n", opts.xlsx)
	}

	if unplaced > 0 {
		return fmt.Errorf("schedule is incomplete: %d matches could not be placed", unplaced)
	}
	return nil
}

// withPlannedPools returns a copy of c in which every pooled division
// without pools gets the pools generation would assign it.
func withPlannedPools(c *cup.Cup, seed int64) (*cup.Cup, error) {
	out, err := c.Clone()
	if err != nil {
		return nil, err
	}
	for i := range out.Divisions {
		div := &out.Divisions[i]
		if div.Pooling && len(div.Pools) == 0 && len(div.Teams) > 0 {
			div.Pools = pools.Assign(div.Teams, pools.AutoPoolCount(len(div.Teams)), seed)
		}
	}
	return out, nil
}

func printFeasibility(c *cup.Cup, reports []feasibility.Report, showFeasible bool) int {
	problems := 0
	for _, r := range reports {
		name := r.DivisionID
		if div := c.Division(r.DivisionID); div != nil {
			name = div.Name
		}
		if !r.Feasible {
			problems++
			fmt.Printf("  ✗ %s: %s\n", name, r.Reason)
			continue
		}
		if showFeasible {
			fmt.Printf("  ✓ %s: %d matches, %d slots\n", name, r.TotalMatches, r.TotalSlots)
		}
		for _, w := range []string{r.RestWarning, r.BudgetWarning} {
			if w != "" {
				fmt.Printf("  ⚠ %s: %s\n", name, w)
			}
		}
	}
	return problems
}

func runFeasibility(configPath string) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}
	planned, err := withPlannedPools(c, envInt64("CUP_SEED", defaultSeed))
	if err != nil {
		return err
	}

	reports := feasibility.Calc(planned.Divisions, planned.Pitches, planned.Days, planned.MaxMatchesPerTeamPerDay)
	if problems := printFeasibility(planned, reports, true); problems > 0 {
		return fmt.Errorf("%d divisions cannot fit", problems)
	}
	return nil
}

func printViolations(violations []validator.Violation) (errors, warnings int) {
	for _, v := range violations {
		where := ""
		if v.Row > 0 {
			where = fmt.Sprintf("row %d: ", v.Row)
		}
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Rule violation: %s%s\n", where, v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Guideline violation: %s%s\n", where, v.Message)
		}
	}
	return errors, warnings
}

func runValidate(configPath, workbookPath string) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}

	var violations []validator.Violation
	if workbookPath != "" {
		violations, err = validator.ValidateWorkbook(c, workbookPath)
		if err != nil {
			return fmt.Errorf("validating: %w", err)
		}
	} else {
		violations = validator.Validate(c)
	}

	errors, warnings := printViolations(violations)
	fmt.Printf("\nValidation complete: %d rule violations, %d guideline violations\n", errors, warnings)

	if errors > 0 {
		return fmt.Errorf("%d constraint violations found", errors)
	}
	return nil
}

func runMove(configPath string, mv moveFlags) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}

	var (
		div   *cup.Division
		match *cup.Match
	)
	for i := range c.Divisions {
		for j := range c.Divisions[i].Matches {
			if c.Divisions[i].Matches[j].ID == mv.matchID {
				div, match = &c.Divisions[i], &c.Divisions[i].Matches[j]
			}
		}
	}
	if match == nil {
		return fmt.Errorf("no match with id %q", mv.matchID)
	}

	dayIndex := mv.day - 1
	if dayIndex < 0 || dayIndex >= len(c.Days) {
		return fmt.Errorf("day %d does not exist; the cup has %d days", mv.day, len(c.Days))
	}
	start, err := cup.ParseClock(mv.start)
	if err != nil {
		return err
	}

	var pitch *cup.Pitch
	for _, p := range schedule.ExpandPitches(c.Pitches) {
		if p.ID == mv.pitchID {
			pitch = &p
			break
		}
	}
	if pitch == nil {
		return fmt.Errorf("no pitch with id %q", mv.pitchID)
	}

	moved := *match
	moved.PitchID = pitch.ID
	moved.DayIndex = dayIndex
	moved.Start = start
	moved.End = start + cup.Clock(div.MatchMinutes)
	moved.Locked = match.Locked || mv.lock

	check := validator.CheckMoveConflicts(c.AllMatches(), moved, div.MinRestMinutes)
	if !schedule.Compatible(pitch.Format, div.Format) {
		check.Valid = false
		check.Conflicts = append(check.Conflicts, fmt.Sprintf("%s only fits %s, %s plays %s", pitch.Name, pitch.Format, div.Name, div.Format))
	}

	target := fmt.Sprintf("%s on %s at %s-%s", pitch.Name, excel.DayLabel(c.Days[dayIndex], dayIndex), moved.Start, moved.End)
	for _, conflict := range check.Conflicts {
		fmt.Printf("✗ %s\n", conflict)
	}
	day := c.Days[dayIndex]
	if moved.Start < day.Start || moved.End > day.End {
		fmt.Printf("⚠ %s is outside playing hours %s-%s\n", target, day.Start, day.End)
	}
	for _, b := range day.Breaks {
		if moved.Start < b.End && b.Start < moved.End {
			fmt.Printf("⚠ %s overlaps the %s-%s break\n", target, b.Start, b.End)
		}
	}
	if !check.Valid {
		return fmt.Errorf("%s cannot move to %s: %d conflicts", mv.matchID, target, len(check.Conflicts))
	}

	if !mv.write {
		fmt.Printf("✓ %s can move to %s (use --write to save)\n", mv.matchID, target)
		return nil
	}
	*match = moved
	if err := cup.SaveToFile(c, configPath); err != nil {
		return err
	}
	fmt.Printf("✓ Moved %s to %s and saved %s\n", mv.matchID, target, configPath)
	return nil
}

func runPoolsAssign(configPath string, pf poolFlags) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}
	div := c.Division(pf.divisionID)
	if div == nil {
		return fmt.Errorf("no division with id %q", pf.divisionID)
	}

	count := pf.count
	if count <= 0 {
		count = pools.AutoPoolCount(len(div.Teams))
	}
	assigned := pools.Assign(div.Teams, count, pf.seed)

	names := make(map[string]string, len(div.Teams))
	for _, t := range div.Teams {
		names[t.ID] = t.Name
	}
	for _, p := range assigned {
		fmt.Printf("%s (%d teams)\n", p.Name, len(p.TeamIDs))
		for _, id := range p.TeamIDs {
			fmt.Printf("  %s\n", names[id])
		}
	}

	if !pf.write {
		return nil
	}
	div.Pooling = true
	div.Pools = assigned
	if err := cup.SaveToFile(c, configPath); err != nil {
		return err
	}
	fmt.Printf("\n✓ Pools saved to %s\n", configPath)
	return nil
}

func runPoolsValidate(configPath string) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}

	problems := 0
	for _, div := range c.Divisions {
		if !div.UsesPools() {
			continue
		}
		v := pools.Validate(div)
		if v.Valid {
			fmt.Printf("✓ %s: %d pools\n", div.Name, len(div.Pools))
			continue
		}
		for _, p := range v.Errors {
			problems++
			fmt.Printf("✗ %s: %s\n", div.Name, p.Message)
		}
	}
	if problems > 0 {
		return fmt.Errorf("%d pool problems found", problems)
	}
	return nil
}

func runStandings(configPath, divisionID string) error {
	c, err := cup.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading cup: %w", err)
	}
	if divisionID != "" && c.Division(divisionID) == nil {
		return fmt.Errorf("no division with id %q", divisionID)
	}

	for _, div := range c.Divisions {
		if divisionID != "" && div.ID != divisionID {
			continue
		}
		for _, table := range standings.ForPools(div) {
			title := div.Name
			if table.PoolName != "" {
				title += " " + table.PoolName
			}
			fmt.Printf("\n%s\n", title)
			fmt.Printf("  %3s %-20s %3s %3s %3s %3s %4s %4s %4s %4s\n",
				"#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts")
			for _, r := range table.Rows {
				fmt.Printf("  %3d %-20s %3d %3d %3d %3d %4d %4d %+4d %4d\n",
					r.Rank, r.Name, r.Played, r.Won, r.Drawn, r.Lost, r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points)
			}
		}
	}
	return nil
}

func runSchema(w io.Writer) error {
	s := jsonschema.Reflect(&cup.Cup{})
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
