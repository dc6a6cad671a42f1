package schedule

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/pairing"
	"github.com/derekprior/cup/internal/rng"
)

const defaultRetryCap = 2

// ClassOptions configures ScheduleAllClasses.
type ClassOptions struct {
	Seed             int64
	Attempts         int
	DefaultMaxPerDay int // cup-wide per-team daily cap, 0 = uncapped
	RetryCap         int // placement tries per match before it is deferred to the repair sweep
	Workers          int
	Weights          Weights
	Logger           *zerolog.Logger
}

// ClassResult is one division's share of a multi-division schedule.
type ClassResult struct {
	DivisionID string
	Schedule   []cup.Match // placed matches, locked ones included
	Unplaced   []cup.Match
	Penalty    float64
}

// ClassesResult is the best interleaved schedule across all divisions.
type ClassesResult struct {
	Classes     []ClassResult
	Score       float64
	Fairness    float64
	Seed        int64
	Attempts    int
	BestAttempt int
	Warnings    []string
}

func (r *ClassesResult) score() float64 {
	return r.Score
}

func (r *ClassesResult) perfect() bool {
	if r.Score != 0 {
		return false
	}
	for _, c := range r.Classes {
		if len(c.Unplaced) > 0 {
			return false
		}
	}
	return true
}

// classPlan is the read-only input of one division, shared by all attempts.
type classPlan struct {
	division cup.Division
	slots    []Slot
	rules    rules
	pending  []cup.Match
	locked   []cup.Match
}

func newClassPlans(divisions []cup.Division, pitches []cup.Pitch, days []cup.Day, defaultMaxPerDay int) []classPlan {
	plans := make([]classPlan, 0, len(divisions))
	for _, div := range divisions {
		p := classPlan{
			division: div,
			slots:    DivisionSlots(div, pitches, days),
			rules:    rules{minRest: div.MinRestMinutes, dailyCap: div.DailyCap(defaultMaxPerDay)},
		}
		matches := div.Matches
		if len(matches) == 0 {
			matches = pairing.DivisionMatches(div)
		}
		for _, m := range matches {
			m.DivisionID = div.ID
			if m.Locked && m.Placed() {
				p.locked = append(p.locked, m)
				continue
			}
			p.pending = append(p.pending, unplace(m))
		}
		plans = append(plans, p)
	}
	return plans
}

// ScheduleAllClasses schedules several divisions that share pitches and
// days. Divisions take turns placing one match at a time so that none is
// starved of good slots, unplaceable matches get a final repair sweep, and
// a fairness term discourages pushing one division to the end of the day.
// Divisions without matches get a fresh round robin.
func ScheduleAllClasses(divisions []cup.Division, pitches []cup.Pitch, days []cup.Day, opts ClassOptions) *ClassesResult {
	log := loggerOrNop(opts.Logger)
	plans := newClassPlans(divisions, pitches, days, opts.DefaultMaxPerDay)
	retryCap := opts.RetryCap
	if retryCap < 1 {
		retryCap = defaultRetryCap
	}

	best, bestIdx, ran := runAttempts(opts.Attempts, opts.Workers, func(i int) *ClassesResult {
		res := interleave(plans, opts.Seed+int64(i), retryCap, opts.Weights)
		log.Debug().
			Int("attempt", i).
			Float64("score", res.Score).
			Float64("fairness", res.Fairness).
			Msg("interleaved attempt finished")
		return res
	})

	best.Seed = opts.Seed
	best.Attempts = ran
	best.BestAttempt = bestIdx
	return best
}

// queued is a pending match together with its board ref.
type queued struct {
	ref int
	m   cup.Match
}

func interleave(plans []classPlan, seed int64, retryCap int, w Weights) *ClassesResult {
	b := newBoard(w)
	for _, p := range plans {
		for _, m := range p.locked {
			b.seed(m)
		}
	}

	// owner maps a ref to the plan its match belongs to
	var owner []int
	r := rng.New(seed)
	queues := make([][]queued, len(plans))
	for k, p := range plans {
		q := make([]queued, len(p.pending))
		for j, m := range p.pending {
			q[j] = queued{ref: len(owner), m: m}
			owner = append(owner, k)
		}
		rng.Shuffle(r, q)
		queues[k] = q
	}

	deferred := make([][]queued, len(plans))
	tries := make([]int, len(owner))

	// One match per division per tick
	for active := true; active; {
		active = false
		for k := range plans {
			if len(queues[k]) == 0 {
				continue
			}
			active = true
			q := queues[k][0]
			queues[k] = queues[k][1:]

			if placeWithRepair(b, plans, owner, k, q, true) {
				continue
			}
			tries[q.ref]++
			if tries[q.ref] < retryCap {
				queues[k] = append(queues[k], q)
			} else {
				deferred[k] = append(deferred[k], q)
			}
		}
	}

	// Repair sweep: leftovers may displace a match of any division
	unplaced := make([][]cup.Match, len(plans))
	for k := range plans {
		for _, q := range deferred[k] {
			if !placeWithRepair(b, plans, owner, k, q, false) {
				unplaced[k] = append(unplaced[k], q.m)
			}
		}
	}

	res := &ClassesResult{}
	for k, p := range plans {
		var placed []cup.Match
		penalty := float64(len(unplaced[k])) * b.weights.Unplaced
		for i, m := range b.placed {
			if m.DivisionID != p.division.ID {
				continue
			}
			placed = append(placed, m)
			if ref := b.meta[i].ref; ref >= 0 && owner[ref] == k {
				penalty += b.meta[i].cost
			}
		}
		sortMatches(placed)

		res.Classes = append(res.Classes, ClassResult{
			DivisionID: p.division.ID,
			Schedule:   placed,
			Unplaced:   unplaced[k],
			Penalty:    penalty,
		})
		res.Score += penalty
		if len(unplaced[k]) > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %d matches could not be placed", p.division.Name, len(unplaced[k])))
		}
	}

	res.Fairness = b.weights.Fairness * startSpread(res.Classes)
	res.Score += res.Fairness
	return res
}

// placeWithRepair places q's match in plan k. When no slot is free it tries
// moving one unlocked match, of plan k only when sameDivision is set, to
// another slot of its own plan so that both fit. The board is left as it
// was when nothing works.
func placeWithRepair(b *board, plans []classPlan, owner []int, k int, q queued, sameDivision bool) bool {
	p := plans[k]
	if _, ok := b.placeOne(q.m, q.ref, p.slots, p.rules); ok {
		return true
	}

	var candidates []int
	for _, pl := range b.meta {
		if pl.ref < 0 || pl.locked || (sameDivision && owner[pl.ref] != k) {
			continue
		}
		candidates = append(candidates, pl.ref)
	}

	for _, ref := range candidates {
		moved, pl := b.unbook(b.indexOf(ref))
		if _, ok := b.placeOne(q.m, q.ref, p.slots, p.rules); ok {
			other := plans[owner[ref]]
			if _, ok := b.placeOne(moved, ref, other.slots, other.rules); ok {
				return true
			}
			b.unbook(b.indexOf(q.ref))
		}
		b.book(moved, pl)
	}
	return false
}

// startSpread is the population standard deviation of each division's mean
// match start time. Divisions with nothing placed are ignored.
func startSpread(classes []ClassResult) float64 {
	var means []float64
	for _, c := range classes {
		if len(c.Schedule) == 0 {
			continue
		}
		total := 0.0
		for _, m := range c.Schedule {
			total += float64(m.Start)
		}
		means = append(means, total/float64(len(c.Schedule)))
	}
	if len(means) < 2 {
		return 0
	}

	avg := 0.0
	for _, m := range means {
		avg += m
	}
	avg /= float64(len(means))
	variance := 0.0
	for _, m := range means {
		variance += (m - avg) * (m - avg)
	}
	return math.Sqrt(variance / float64(len(means)))
}
