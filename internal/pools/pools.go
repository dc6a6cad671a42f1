// Package pools splits a division's teams into pools and checks manual
// pool edits.
package pools

import (
	"fmt"
	"sort"

	"github.com/derekprior/cup/internal/cup"
	"github.com/derekprior/cup/internal/rng"
)

// clubWeight makes a same-club collision cost more than any size imbalance.
const clubWeight = 1000

// Assign partitions teams into poolCount pools. Teams from the same club
// are spread across pools and pool sizes are kept balanced. The result
// depends only on the inputs and seed.
func Assign(teams []cup.Team, poolCount int, seed int64) []cup.Pool {
	if len(teams) == 0 {
		return nil
	}
	if poolCount < 1 {
		poolCount = 1
	}
	if poolCount > len(teams) {
		poolCount = len(teams)
	}

	pools := make([]cup.Pool, poolCount)
	for i := range pools {
		pools[i] = cup.Pool{
			ID:      fmt.Sprintf("pool-%d", i+1),
			Name:    "Pool " + poolLetter(i),
			TeamIDs: []string{},
		}
	}
	clubsIn := make([]map[string]int, poolCount)
	for i := range clubsIn {
		clubsIn[i] = make(map[string]int)
	}

	// Group by club, keeping first-seen order before shuffling
	var clubs []string
	byClub := make(map[string][]cup.Team)
	var clubless []cup.Team
	for _, t := range teams {
		if t.Club == "" {
			clubless = append(clubless, t)
			continue
		}
		if _, ok := byClub[t.Club]; !ok {
			clubs = append(clubs, t.Club)
		}
		byClub[t.Club] = append(byClub[t.Club], t)
	}

	r := rng.New(seed)
	rng.Shuffle(r, clubs)
	sort.SliceStable(clubs, func(i, j int) bool {
		return len(byClub[clubs[i]]) > len(byClub[clubs[j]])
	})

	for _, club := range clubs {
		for _, t := range byClub[club] {
			best := 0
			bestCost := -1
			for i := range pools {
				cost := clubWeight*clubsIn[i][club] + len(pools[i].TeamIDs)
				if bestCost < 0 || cost < bestCost {
					best, bestCost = i, cost
				}
			}
			pools[best].TeamIDs = append(pools[best].TeamIDs, t.ID)
			clubsIn[best][club]++
		}
	}

	rng.Shuffle(r, clubless)
	for _, t := range clubless {
		smallest := 0
		for i := range pools {
			if len(pools[i].TeamIDs) < len(pools[smallest].TeamIDs) {
				smallest = i
			}
		}
		pools[smallest].TeamIDs = append(pools[smallest].TeamIDs, t.ID)
	}

	return pools
}

func poolLetter(i int) string {
	s := ""
	for i++; i > 0; i = (i - 1) / 26 {
		s = string(rune('A'+(i-1)%26)) + s
	}
	return s
}

// AutoPoolCount suggests a pool count that keeps pools at 3 to 6 teams.
func AutoPoolCount(teamCount int) int {
	if teamCount <= 6 {
		return 1
	}
	return (teamCount + 4) / 5
}

// Problem kinds reported by Validate.
const (
	UnknownTeam    = "unknown_team"
	DuplicateTeam  = "duplicate_team"
	UndersizedPool = "undersized_pool"
	UnassignedTeam = "unassigned_team"
)

// Problem is one reason a pool partition is invalid.
type Problem struct {
	Kind    string
	PoolID  string
	TeamID  string
	Message string
}

// Validation is the outcome of Validate. Valid is false when Errors is
// non-empty.
type Validation struct {
	Valid  bool
	Errors []Problem
}

// Validate checks that div's pools partition its teams: every listed team
// exists, none is listed twice, every pool has at least two teams and every
// team is in a pool.
func Validate(div cup.Division) Validation {
	var problems []Problem

	known := make(map[string]bool)
	for _, t := range div.Teams {
		known[t.ID] = true
	}

	assigned := make(map[string]string) // team -> pool
	for _, p := range div.Pools {
		for _, id := range p.TeamIDs {
			if !known[id] {
				problems = append(problems, Problem{
					Kind: UnknownTeam, PoolID: p.ID, TeamID: id,
					Message: fmt.Sprintf("%s lists unknown team %q", poolName(p), id),
				})
				continue
			}
			if prev, ok := assigned[id]; ok {
				problems = append(problems, Problem{
					Kind: DuplicateTeam, PoolID: p.ID, TeamID: id,
					Message: fmt.Sprintf("team %q is in both %s and %s", id, prev, poolName(p)),
				})
				continue
			}
			assigned[id] = poolName(p)
		}
		if len(p.TeamIDs) < 2 {
			problems = append(problems, Problem{
				Kind: UndersizedPool, PoolID: p.ID,
				Message: fmt.Sprintf("%s has %d teams, need at least 2", poolName(p), len(p.TeamIDs)),
			})
		}
	}

	for _, t := range div.Teams {
		if _, ok := assigned[t.ID]; !ok {
			problems = append(problems, Problem{
				Kind: UnassignedTeam, TeamID: t.ID,
				Message: fmt.Sprintf("team %q is not in any pool", t.ID),
			})
		}
	}

	return Validation{Valid: len(problems) == 0, Errors: problems}
}

func poolName(p cup.Pool) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
