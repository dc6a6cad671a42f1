package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/pairing"
	"github.com/derekprior/cup/internal/pools"
)

// GenerateOptions configures Generate.
type GenerateOptions struct {
	Seed     int64
	Attempts int
	Workers  int
	Weights  Weights
	Logger   *zerolog.Logger
	Now      func() time.Time // defaults to time.Now
}

// Generate returns a copy of c with every division's matches generated and
// placed. Locked matches stay where they are; every other match is
// regenerated from scratch. Reported scores of regenerated fixtures are
// carried over. c is not modified.
func Generate(c *cup.Cup, opts GenerateOptions) (*cup.Cup, *ClassesResult, error) {
	out, err := c.Clone()
	if err != nil {
		return nil, nil, err
	}
	log := loggerOrNop(opts.Logger)

	for i := range out.Divisions {
		div := &out.Divisions[i]
		if div.Pooling && len(div.Pools) == 0 && len(div.Teams) > 0 {
			div.Pools = pools.Assign(div.Teams, pools.AutoPoolCount(len(div.Teams)), opts.Seed)
			log.Debug().Str("division", div.ID).Int("pools", len(div.Pools)).Msg("assigned pools")
		}
		div.Matches = fixtures(*div)
	}

	res := ScheduleAllClasses(out.Divisions, out.Pitches, out.Days, ClassOptions{
		Seed:             opts.Seed,
		Attempts:         opts.Attempts,
		DefaultMaxPerDay: out.MaxMatchesPerTeamPerDay,
		Workers:          opts.Workers,
		Weights:          opts.Weights,
		Logger:           opts.Logger,
	})

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	stamp := now().UTC().Format(time.RFC3339)

	for _, cr := range res.Classes {
		div := out.Division(cr.DivisionID)
		if div == nil {
			return nil, nil, fmt.Errorf("scheduler returned unknown division %q", cr.DivisionID)
		}
		div.Matches = slices.Concat(cr.Schedule, cr.Unplaced)

		var warnings []string
		if len(cr.Unplaced) > 0 {
			warnings = append(warnings, fmt.Sprintf("%d matches could not be placed", len(cr.Unplaced)))
			for _, m := range cr.Unplaced {
				warnings = append(warnings, fmt.Sprintf("unplaced: %s vs %s (round %d)", m.Home, m.Away, m.Round))
			}
		}
		div.Generation = &cup.Generation{
			Seed:        opts.Seed,
			Attempts:    res.Attempts,
			BestScore:   cr.Penalty,
			Warnings:    warnings,
			GeneratedAt: stamp,
		}
	}

	return out, res, nil
}

type pairKey struct {
	a, b string
}

func normalizePair(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// fixtures returns the locked matches of div followed by freshly generated
// fixtures for every pairing the locked matches do not already cover.
// Reported scores follow their pair of teams, so they survive pool edits and
// home/away swaps.
func fixtures(div cup.Division) []cup.Match {
	var matches []cup.Match
	covered := make(map[pairKey]bool)
	scores := make(map[pairKey]cup.Match)
	for _, m := range div.Matches {
		if m.Locked && m.Placed() {
			matches = append(matches, m)
			covered[normalizePair(m.Home, m.Away)] = true
			continue
		}
		if m.Scored() {
			scores[normalizePair(m.Home, m.Away)] = m
		}
	}

	for _, m := range pairing.DivisionMatches(div) {
		key := normalizePair(m.Home, m.Away)
		if covered[key] {
			continue
		}
		if prev, ok := scores[key]; ok {
			if prev.Home == m.Home {
				m.HomeScore, m.AwayScore = prev.HomeScore, prev.AwayScore
			} else {
				m.HomeScore, m.AwayScore = prev.AwayScore, prev.HomeScore
			}
		}
		matches = append(matches, m)
	}
	return matches
}
