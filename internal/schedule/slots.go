package schedule

import (
	"sort"

	"github.com/derekprior/cup/internal/cup"
)

// Slot is a candidate [Start, End) window on a pitch on a given day.
type Slot struct {
	PitchID  string
	DayIndex int
	Start    cup.Clock
	End      cup.Clock
}

func (s Slot) overlaps(start, end cup.Clock) bool {
	return s.Start < end && start < s.End
}

// BuildTimeSlots discretizes every (day, pitch) pair into match-length slots
// separated by bufferMinutes, skipping break windows. Pitches are used as
// given; callers expand sub-pitches first.
func BuildTimeSlots(pitches []cup.Pitch, days []cup.Day, matchMinutes, bufferMinutes int) []Slot {
	if matchMinutes <= 0 || len(pitches) == 0 || len(days) == 0 {
		return nil
	}
	if bufferMinutes < 0 {
		bufferMinutes = 0
	}

	var slots []Slot
	for di, day := range days {
		for _, p := range pitches {
			cursor := day.Start
			for cursor+cup.Clock(matchMinutes) <= day.End {
				end := cursor + cup.Clock(matchMinutes)
				if b, ok := hitsBreak(day.Breaks, cursor, end); ok {
					cursor = b.End
					continue
				}
				slots = append(slots, Slot{PitchID: p.ID, DayIndex: di, Start: cursor, End: end})
				cursor = end + cup.Clock(bufferMinutes)
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayIndex != slots[j].DayIndex {
			return slots[i].DayIndex < slots[j].DayIndex
		}
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].PitchID < slots[j].PitchID
	})

	return slots
}

func hitsBreak(breaks []cup.Break, start, end cup.Clock) (cup.Break, bool) {
	for _, b := range breaks {
		if start < b.End && b.Start < end {
			return b, true
		}
	}
	return cup.Break{}, false
}

// DivisionSlots builds the slots a division may use: only format-compatible
// (expanded) pitches and only the division's allowed days. An allow-list
// that matches no day falls back to every day.
func DivisionSlots(div cup.Division, pitches []cup.Pitch, days []cup.Day) []Slot {
	compatible := CompatiblePitches(div, pitches)
	slots := BuildTimeSlots(compatible, days, div.MatchMinutes, div.BufferMinutes)

	allowed := AllowedDays(div, len(days))
	if len(allowed) == len(days) {
		return slots
	}
	var out []Slot
	for _, s := range slots {
		if allowed[s.DayIndex] {
			out = append(out, s)
		}
	}
	return out
}

// AllowedDays returns the set of day indexes div may play on.
func AllowedDays(div cup.Division, dayCount int) map[int]bool {
	allowed := make(map[int]bool)
	for _, di := range div.AllowedDays {
		if di >= 0 && di < dayCount {
			allowed[di] = true
		}
	}
	if len(allowed) == 0 {
		for di := 0; di < dayCount; di++ {
			allowed[di] = true
		}
	}
	return allowed
}
