package schedule

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/rng"
)

// Weights are the soft-constraint tuning values. Zero fields take the
// value from DefaultWeights.
type Weights struct {
	IdleThreshold int     // minutes of idle time tolerated between a team's matches
	IdleWeight    float64 // penalty per idle minute beyond the threshold
	PitchSwitch   float64 // per team, when it changes pitch within a day
	BudgetBase    float64 // per team, once its daily cap is reached
	BudgetStep    float64 // added per match of overflow, starting at one
	Unplaced      float64 // per match left unplaced
	Fairness      float64 // multiplier on the cross-division start-time spread
}

var DefaultWeights = Weights{
	IdleThreshold: 60,
	IdleWeight:    0.5,
	PitchSwitch:   5,
	BudgetBase:    5000,
	BudgetStep:    500,
	Unplaced:      1000,
	Fairness:      2,
}

// orDefault fills every zero field from DefaultWeights.
func (w Weights) orDefault() Weights {
	d := DefaultWeights
	if w.IdleThreshold == 0 {
		w.IdleThreshold = d.IdleThreshold
	}
	if w.IdleWeight == 0 {
		w.IdleWeight = d.IdleWeight
	}
	if w.PitchSwitch == 0 {
		w.PitchSwitch = d.PitchSwitch
	}
	if w.BudgetBase == 0 {
		w.BudgetBase = d.BudgetBase
	}
	if w.BudgetStep == 0 {
		w.BudgetStep = d.BudgetStep
	}
	if w.Unplaced == 0 {
		w.Unplaced = d.Unplaced
	}
	if w.Fairness == 0 {
		w.Fairness = d.Fairness
	}
	return w
}

// PlaceOptions configures a single greedy placement pass.
type PlaceOptions struct {
	MinRestMinutes          int
	MaxMatchesPerTeamPerDay int // 0 = uncapped
	Locked                  []cup.Match
	Weights                 Weights
}

// Result is the outcome of a placement pass.
type Result struct {
	Placed      []cup.Match
	Unplaced    []cup.Match
	SoftPenalty float64
	Score       float64
	Warnings    []string
}

func (r *Result) perfect() bool {
	return r.Score == 0 && len(r.Unplaced) == 0
}

func (r *Result) score() float64 {
	return r.Score
}

// rejectionReason categorizes why a slot was rejected for a match.
type rejectionReason int

const (
	rejectSlotUsed rejectionReason = iota
	rejectPitchBusy
	rejectTeamBusy
	rejectRest
)

// rules are the per-division hard and soft limits.
type rules struct {
	minRest  int
	dailyCap int
}

type booking struct {
	pitch      string
	start, end cup.Clock
	locked     bool
}

type pitchDayKey struct {
	pitch string
	day   int
}

type teamDayKey struct {
	team string
	day  int
}

// placement is the board's record of one placed match.
type placement struct {
	ref    int // caller's handle for the match, -1 when it has none
	locked bool
	cost   float64 // soft penalty paid when it was placed
}

// board tracks pitch and team occupancy while matches are placed. A single
// board can be shared by several divisions.
type board struct {
	weights Weights

	placed    []cup.Match
	meta      []placement // parallel to placed
	usedSlots map[Slot]bool
	pitchDay  map[pitchDayKey][]booking
	teamDay   map[teamDayKey][]booking

	// diagnostics for failure reporting
	rejections map[rejectionReason]int
}

func newBoard(w Weights) *board {
	return &board{
		weights:    w.orDefault(),
		usedSlots:  make(map[Slot]bool),
		pitchDay:   make(map[pitchDayKey][]booking),
		teamDay:    make(map[teamDayKey][]booking),
		rejections: make(map[rejectionReason]int),
	}
}

// seed records an already-placed match as a permanent obstacle.
func (b *board) seed(m cup.Match) {
	b.book(m, placement{ref: -1, locked: true})
}

func (b *board) book(m cup.Match, p placement) {
	b.placed = append(b.placed, m)
	b.meta = append(b.meta, p)
	b.usedSlots[slotOf(m)] = true

	bk := booking{pitch: m.PitchID, start: m.Start, end: m.End, locked: p.locked}
	pk := pitchDayKey{m.PitchID, m.DayIndex}
	b.pitchDay[pk] = append(b.pitchDay[pk], bk)
	for _, team := range []string{m.Home, m.Away} {
		tk := teamDayKey{team, m.DayIndex}
		b.teamDay[tk] = append(b.teamDay[tk], bk)
	}
}

// unbook removes the i-th placement and frees its pitch and team time.
func (b *board) unbook(i int) (cup.Match, placement) {
	m, p := b.placed[i], b.meta[i]
	b.placed = slices.Delete(b.placed, i, i+1)
	b.meta = slices.Delete(b.meta, i, i+1)
	delete(b.usedSlots, slotOf(m))

	same := func(bk booking) bool {
		return bk.pitch == m.PitchID && bk.start == m.Start && bk.end == m.End
	}
	pk := pitchDayKey{m.PitchID, m.DayIndex}
	b.pitchDay[pk] = slices.DeleteFunc(b.pitchDay[pk], same)
	for _, team := range []string{m.Home, m.Away} {
		tk := teamDayKey{team, m.DayIndex}
		b.teamDay[tk] = slices.DeleteFunc(b.teamDay[tk], same)
	}
	return m, p
}

// indexOf returns the position of the placement with the given ref, or -1.
func (b *board) indexOf(ref int) int {
	return slices.IndexFunc(b.meta, func(p placement) bool { return p.ref == ref })
}

func slotOf(m cup.Match) Slot {
	return Slot{PitchID: m.PitchID, DayIndex: m.DayIndex, Start: m.Start, End: m.End}
}

func (b *board) hardConstraintCheck(m cup.Match, slot Slot, r rules) (rejectionReason, bool) {
	// Pitch already in use for part of the window
	for _, bk := range b.pitchDay[pitchDayKey{slot.PitchID, slot.DayIndex}] {
		if slot.overlaps(bk.start, bk.end) {
			return rejectPitchBusy, false
		}
	}

	for _, team := range []string{m.Home, m.Away} {
		for _, bk := range b.teamDay[teamDayKey{team, slot.DayIndex}] {
			if slot.overlaps(bk.start, bk.end) {
				return rejectTeamBusy, false
			}
			if !bk.locked && restGap(bk, slot) < r.minRest {
				return rejectRest, false
			}
		}
	}

	return 0, true
}

// restGap returns the minutes between a booking and a non-overlapping slot.
func restGap(bk booking, slot Slot) int {
	if bk.end <= slot.Start {
		return int(slot.Start - bk.end)
	}
	return int(bk.start - slot.End)
}

// scoreSlot returns a lower score for more desirable slots (soft constraints).
func (b *board) scoreSlot(m cup.Match, slot Slot, r rules) float64 {
	w := b.weights
	score := 0.0

	for _, team := range []string{m.Home, m.Away} {
		day := b.teamDay[teamDayKey{team, slot.DayIndex}]

		// Idle time since the team's previous match that day
		lastEnd := cup.Clock(-1)
		for _, bk := range day {
			if bk.end <= slot.Start && bk.end > lastEnd {
				lastEnd = bk.end
			}
		}
		if lastEnd >= 0 {
			if gap := int(slot.Start - lastEnd); gap > w.IdleThreshold {
				score += w.IdleWeight * float64(gap-w.IdleThreshold)
			}
		}

		// Changing pitch within a day
		for _, bk := range day {
			if bk.pitch != slot.PitchID {
				score += w.PitchSwitch
				break
			}
		}

		// Daily budget
		if r.dailyCap > 0 && len(day) >= r.dailyCap {
			overflow := len(day) - r.dailyCap
			score += w.BudgetBase + w.BudgetStep*float64(overflow+1)
		}
	}

	return score
}

// placeOne assigns m to the lowest-penalty slot that passes every hard
// constraint. Ties go to the earliest slot in scan order.
func (b *board) placeOne(m cup.Match, ref int, slots []Slot, r rules) (float64, bool) {
	bestSlot := -1
	bestScore := math.MaxFloat64

	for i, slot := range slots {
		if b.usedSlots[slot] {
			b.rejections[rejectSlotUsed]++
			continue
		}

		if reason, ok := b.hardConstraintCheck(m, slot, r); !ok {
			b.rejections[reason]++
			continue
		}

		score := b.scoreSlot(m, slot, r)
		if score < bestScore {
			bestScore = score
			bestSlot = i
		}
	}

	if bestSlot < 0 {
		return 0, false
	}

	slot := slots[bestSlot]
	m.PitchID = slot.PitchID
	m.DayIndex = slot.DayIndex
	m.Start = slot.Start
	m.End = slot.End
	b.book(m, placement{ref: ref, cost: bestScore})
	return bestScore, true
}

// Place assigns matches to slots one at a time in the given order. Locked
// matches in opts are kept where they are and block their pitch time.
func Place(matches []cup.Match, slots []Slot, opts PlaceOptions) *Result {
	b := newBoard(opts.Weights)

	locked := make(map[string]bool)
	for _, m := range opts.Locked {
		b.seed(m)
		locked[m.ID] = true
	}

	r := rules{minRest: opts.MinRestMinutes, dailyCap: opts.MaxMatchesPerTeamPerDay}
	res := &Result{}
	for i, m := range matches {
		if m.ID != "" && locked[m.ID] {
			continue
		}
		penalty, ok := b.placeOne(m, i, slots, r)
		if !ok {
			res.Unplaced = append(res.Unplaced, unplace(m))
			continue
		}
		res.SoftPenalty += penalty
	}

	res.Placed = b.placed
	sortMatches(res.Placed)
	res.Score = res.SoftPenalty + float64(len(res.Unplaced))*b.weights.Unplaced
	res.Warnings = b.unplacedWarnings(res.Unplaced)
	return res
}

func unplace(m cup.Match) cup.Match {
	m.PitchID = ""
	m.DayIndex = 0
	m.Start = 0
	m.End = 0
	return m
}

func (b *board) unplacedWarnings(unplaced []cup.Match) []string {
	if len(unplaced) == 0 {
		return nil
	}
	warnings := []string{fmt.Sprintf(
		"%d matches could not be placed (rejected slots: %d pitch busy, %d team busy, %d rest too short)",
		len(unplaced), b.rejections[rejectPitchBusy], b.rejections[rejectTeamBusy], b.rejections[rejectRest])}
	for _, m := range unplaced {
		warnings = append(warnings, fmt.Sprintf("unplaced: %s vs %s (round %d)", m.Home, m.Away, m.Round))
	}
	return warnings
}

// sortMatches orders matches by day, start time and pitch.
func sortMatches(ms []cup.Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].DayIndex != ms[j].DayIndex {
			return ms[i].DayIndex < ms[j].DayIndex
		}
		if ms[i].Start != ms[j].Start {
			return ms[i].Start < ms[j].Start
		}
		return ms[i].PitchID < ms[j].PitchID
	})
}

// MultiOptions configures ScheduleMultiAttempt.
type MultiOptions struct {
	PlaceOptions
	Attempts int
	Seed     int64
	Workers  int // attempts run concurrently when > 1
	Logger   *zerolog.Logger
}

// MultiResult is the best of several placement attempts.
type MultiResult struct {
	Result
	Seed        int64
	Attempts    int // attempts actually evaluated
	BestAttempt int
}

// ScheduleMultiAttempt re-runs Place over shuffled match orders and keeps
// the lowest-scoring attempt. Attempt i shuffles with seed+i, so the same
// inputs always produce the same result regardless of Workers.
func ScheduleMultiAttempt(matches []cup.Match, slots []Slot, opts MultiOptions) *MultiResult {
	log := loggerOrNop(opts.Logger)

	best, bestIdx, ran := runAttempts(opts.Attempts, opts.Workers, func(i int) *Result {
		shuffled := slices.Clone(matches)
		rng.Shuffle(rng.New(opts.Seed+int64(i)), shuffled)
		res := Place(shuffled, slots, opts.PlaceOptions)
		log.Debug().
			Int("attempt", i).
			Float64("score", res.Score).
			Int("unplaced", len(res.Unplaced)).
			Msg("placement attempt finished")
		return res
	})

	return &MultiResult{
		Result:      *best,
		Seed:        opts.Seed,
		Attempts:    ran,
		BestAttempt: bestIdx,
	}
}

func loggerOrNop(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l
}
