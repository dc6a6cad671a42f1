package pairing

import (
	"fmt"
	"testing"

	"github.com/derekprior/cup/internal/cup"
)

func teamIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("T%02d", i+1)
	}
	return ids
}

func TestRoundRobin(t *testing.T) {
	for n := 2; n <= 12; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			ids := teamIDs(n)
			r := RoundRobin(ids)

			if len(r.Pairings) != n*(n-1)/2 {
				t.Errorf("pairings = %d, want %d", len(r.Pairings), n*(n-1)/2)
			}
			if r.HasBye != (n%2 == 1) {
				t.Errorf("HasBye = %v for %d teams", r.HasBye, n)
			}

			type pair struct{ a, b string }
			seen := make(map[pair]int)
			for _, p := range r.Pairings {
				if p.Home == p.Away {
					t.Errorf("self pairing %s", p.Home)
				}
				a, b := p.Home, p.Away
				if a > b {
					a, b = b, a
				}
				seen[pair{a, b}]++
			}
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					if seen[pair{ids[i], ids[j]}] != 1 {
						t.Errorf("%s vs %s = %d times, want 1", ids[i], ids[j], seen[pair{ids[i], ids[j]}])
					}
				}
			}

			// Nobody plays twice in a round, and with an odd count each team
			// sits out exactly one round.
			rounds := make(map[int]map[string]bool)
			for _, p := range r.Pairings {
				if rounds[p.Round] == nil {
					rounds[p.Round] = make(map[string]bool)
				}
				for _, team := range []string{p.Home, p.Away} {
					if rounds[p.Round][team] {
						t.Errorf("%s plays twice in round %d", team, p.Round)
					}
					rounds[p.Round][team] = true
				}
			}
			if n%2 == 1 {
				if r.Rounds != n {
					t.Errorf("rounds = %d, want %d", r.Rounds, n)
				}
				byes := make(map[string]int)
				for round := 1; round <= r.Rounds; round++ {
					for _, id := range ids {
						if !rounds[round][id] {
							byes[id]++
						}
					}
				}
				for _, id := range ids {
					if byes[id] != 1 {
						t.Errorf("%s has %d byes, want 1", id, byes[id])
					}
				}
			} else if r.Rounds != n-1 {
				t.Errorf("rounds = %d, want %d", r.Rounds, n-1)
			}
		})
	}
}

func TestRoundRobinDegenerate(t *testing.T) {
	for _, ids := range [][]string{nil, {"solo"}} {
		r := RoundRobin(ids)
		if len(r.Pairings) != 0 || r.HasBye || r.Rounds != 0 {
			t.Errorf("RoundRobin(%v) = %+v, want empty", ids, r)
		}
	}
}

func TestRoundRobinFiveTeams(t *testing.T) {
	r := RoundRobin([]string{"A", "B", "C", "D", "E"})
	if len(r.Pairings) != 10 {
		t.Errorf("pairings = %d, want 10", len(r.Pairings))
	}
	if r.Rounds != 5 {
		t.Errorf("rounds = %d, want 5", r.Rounds)
	}
	perRound := make(map[int]int)
	for _, p := range r.Pairings {
		perRound[p.Round]++
	}
	for round := 1; round <= 5; round++ {
		if perRound[round] != 2 {
			t.Errorf("round %d has %d matches, want 2", round, perRound[round])
		}
	}
}

func TestHomeAwayBalance(t *testing.T) {
	r := RoundRobin(teamIDs(8))
	home := make(map[string]int)
	for _, p := range r.Pairings {
		home[p.Home]++
	}
	for _, id := range teamIDs(8) {
		if home[id] < 2 || home[id] > 5 {
			t.Errorf("%s is home %d times out of 7", id, home[id])
		}
	}
}

func TestRoundRobinTeams(t *testing.T) {
	teams := []cup.Team{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}
	r := RoundRobinTeams(teams)
	if len(r.Pairings) != 3 || !r.HasBye {
		t.Errorf("RoundRobinTeams = %+v, want 3 pairings with bye", r)
	}
}

func TestDivisionMatches(t *testing.T) {
	div := cup.Division{
		ID: "u11",
		Teams: []cup.Team{
			{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}, {ID: "f"}, {ID: "g"},
		},
	}

	t.Run("whole division", func(t *testing.T) {
		matches := DivisionMatches(div)
		if len(matches) != 21 {
			t.Errorf("matches = %d, want 21", len(matches))
		}
		ids := make(map[string]bool)
		for _, m := range matches {
			if m.DivisionID != "u11" || m.PoolID != "" || m.Placed() {
				t.Errorf("unexpected match %+v", m)
			}
			if ids[m.ID] {
				t.Errorf("duplicate id %s", m.ID)
			}
			ids[m.ID] = true
		}
	})

	t.Run("pooled", func(t *testing.T) {
		pooled := div
		pooled.Pooling = true
		pooled.Pools = []cup.Pool{
			{ID: "pool-1", TeamIDs: []string{"a", "b", "c", "d"}},
			{ID: "pool-2", TeamIDs: []string{"e", "f", "g"}},
		}
		matches := DivisionMatches(pooled)
		if len(matches) != 6+3 {
			t.Errorf("matches = %d, want 9", len(matches))
		}
		for _, m := range matches {
			if m.PoolID == "" {
				t.Errorf("match %s has no pool", m.ID)
			}
		}
	})

	t.Run("ids are stable", func(t *testing.T) {
		first := DivisionMatches(div)
		second := DivisionMatches(div)
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Errorf("match %d id changed: %s vs %s", i, first[i].ID, second[i].ID)
			}
		}
	})
}
