package pairing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/derekprior/cup/internal/cup"
)

// Pairing is a single matchup between two teams in a given round.
type Pairing struct {
	Round int
	Home  string
	Away  string
}

// Result is a full round-robin pairing set.
type Result struct {
	Pairings []Pairing
	HasBye   bool
	Rounds   int
}

// seat is a position in the circle. A bye seat never becomes a pairing.
type seat struct {
	team string
	bye  bool
}

// RoundRobin pairs every team with every other team exactly once using the
// circle method. With an odd count one team sits out each round.
func RoundRobin(teamIDs []string) Result {
	if len(teamIDs) < 2 {
		return Result{}
	}

	seats := make([]seat, 0, len(teamIDs)+1)
	for _, id := range teamIDs {
		seats = append(seats, seat{team: id})
	}
	hasBye := len(seats)%2 == 1
	if hasBye {
		seats = append(seats, seat{bye: true})
	}

	n := len(seats)
	rounds := n - 1
	var pairings []Pairing
	for round := 0; round < rounds; round++ {
		for i := 0; i < n/2; i++ {
			a, b := seats[i], seats[n-1-i]
			if a.bye || b.bye {
				continue
			}
			home, away := a.team, b.team
			// The fixed seat would otherwise always be at home
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairings = append(pairings, Pairing{Round: round + 1, Home: home, Away: away})
		}
		// Keep seat 0 fixed, rotate the rest one position clockwise
		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}

	return Result{Pairings: pairings, HasBye: hasBye, Rounds: rounds}
}

// RoundRobinTeams is RoundRobin over team values.
func RoundRobinTeams(teams []cup.Team) Result {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return RoundRobin(ids)
}

var matchNamespace = uuid.MustParse("6f1c0f8e-3a52-4d0b-9a57-0e4c1b2d7a10")

// MatchID returns a stable id for a fixture so regenerating the same
// division yields the same ids.
func MatchID(divisionID, poolID, home, away string) string {
	key := fmt.Sprintf("%s/%s/%s/%s", divisionID, poolID, home, away)
	return uuid.NewSHA1(matchNamespace, []byte(key)).String()
}

// DivisionMatches builds the unplaced fixtures for a division: one round
// robin per pool when the division is pooled, otherwise one for the whole
// division.
func DivisionMatches(div cup.Division) []cup.Match {
	if !div.UsesPools() {
		return toMatches(div.ID, "", RoundRobin(div.TeamIDs()))
	}

	var matches []cup.Match
	for _, p := range div.Pools {
		matches = append(matches, toMatches(div.ID, p.ID, RoundRobin(p.TeamIDs))...)
	}
	return matches
}

func toMatches(divisionID, poolID string, r Result) []cup.Match {
	matches := make([]cup.Match, 0, len(r.Pairings))
	for _, p := range r.Pairings {
		matches = append(matches, cup.Match{
			ID:         MatchID(divisionID, poolID, p.Home, p.Away),
			DivisionID: divisionID,
			PoolID:     poolID,
			Round:      p.Round,
			Home:       p.Home,
			Away:       p.Away,
		})
	}
	return matches
}
