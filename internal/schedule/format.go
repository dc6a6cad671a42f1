package schedule

import (
	"fmt"

	"github.com/derekprior/cup/internal/cup"
)

// FormatIndex returns the position of f in cup.Formats, or -1 when f is
// empty or unknown.
func FormatIndex(f cup.Format) int {
	for i, known := range cup.Formats {
		if known == f {
			return i
		}
	}
	return -1
}

// Compatible reports whether a pitch built for pitchFormat can host a match
// played in divisionFormat. Missing format data on either side never
// excludes a pitch.
func Compatible(pitchFormat, divisionFormat cup.Format) bool {
	p, d := FormatIndex(pitchFormat), FormatIndex(divisionFormat)
	if p < 0 || d < 0 {
		return true
	}
	return d <= p
}

// ExpandPitches replaces every pitch that has sub-pitches with one virtual
// pitch per sub-pitch. Other pitches are returned unchanged.
func ExpandPitches(pitches []cup.Pitch) []cup.Pitch {
	var out []cup.Pitch
	for _, p := range pitches {
		if len(p.SubPitches) == 0 {
			out = append(out, cup.Pitch{ID: p.ID, Name: p.Name, Format: p.Format})
			continue
		}
		for i, sp := range p.SubPitches {
			v := cup.Pitch{
				ID:     p.SubPitchID(i),
				Name:   sp.Name,
				Format: sp.Format,
			}
			if v.Name == "" {
				v.Name = fmt.Sprintf("%s %s", p.Name, cup.SubPitchSuffix(i))
			}
			if v.Format == "" {
				v.Format = p.Format
			}
			out = append(out, v)
		}
	}
	return out
}

// CompatiblePitches returns the expanded pitches that can host div's format.
func CompatiblePitches(div cup.Division, pitches []cup.Pitch) []cup.Pitch {
	var out []cup.Pitch
	for _, p := range ExpandPitches(pitches) {
		if Compatible(p.Format, div.Format) {
			out = append(out, p)
		}
	}
	return out
}
