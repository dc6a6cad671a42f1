package standings

import (
	"testing"

	"github.com/derekprior/cup/internal/cup"
)

func result(home, away string, hs, as int) cup.Match {
	return cup.Match{Home: home, Away: away, HomeScore: &hs, AwayScore: &as}
}

func named(ids ...string) []cup.Team {
	out := make([]cup.Team, len(ids))
	for i, id := range ids {
		out[i] = cup.Team{ID: id, Name: id}
	}
	return out
}

func order(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.TeamID
	}
	return ids
}

func assertOrder(t *testing.T, rows []Row, want ...string) {
	t.Helper()
	got := order(rows)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestCalcThreeTeams(t *testing.T) {
	rows := Calc(named("A", "B", "C"), []cup.Match{
		result("A", "B", 3, 1),
		result("B", "C", 2, 2),
		result("A", "C", 0, 0),
	})
	assertOrder(t, rows, "A", "C", "B")

	want := []Row{
		{Rank: 1, TeamID: "A", Name: "A", Played: 2, Won: 1, Drawn: 1, GoalsFor: 3, GoalsAgainst: 1, GoalDiff: 2, Points: 4},
		{Rank: 2, TeamID: "C", Name: "C", Played: 2, Drawn: 2, GoalsFor: 2, GoalsAgainst: 2, Points: 2},
		{Rank: 3, TeamID: "B", Name: "B", Played: 2, Drawn: 1, Lost: 1, GoalsFor: 3, GoalsAgainst: 5, GoalDiff: -2, Points: 1},
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestCalcTieBreaks(t *testing.T) {
	t.Run("goal difference", func(t *testing.T) {
		rows := Calc(named("A", "B", "C", "D"), []cup.Match{
			result("A", "C", 3, 0),
			result("B", "D", 1, 0),
		})
		assertOrder(t, rows, "A", "B", "D", "C")
	})

	t.Run("goals scored", func(t *testing.T) {
		rows := Calc(named("A", "B", "C", "D"), []cup.Match{
			result("B", "D", 2, 0),
			result("A", "C", 3, 1),
		})
		assertOrder(t, rows, "A", "B", "C", "D")
	})

	t.Run("head to head", func(t *testing.T) {
		teams := []cup.Team{
			{ID: "z", Name: "Zebras"},
			{ID: "a", Name: "Ants"},
			{ID: "c", Name: "Crows"},
			{ID: "d", Name: "Dogs"},
		}
		rows := Calc(teams, []cup.Match{
			result("z", "a", 1, 0),
			result("a", "c", 2, 1),
			result("z", "d", 1, 2),
		})
		assertOrder(t, rows, "d", "z", "a", "c")
		if rows[1].Points != rows[2].Points || rows[1].GoalDiff != rows[2].GoalDiff || rows[1].GoalsFor != rows[2].GoalsFor {
			t.Errorf("z and a should be level before head to head: %+v %+v", rows[1], rows[2])
		}
	})

	t.Run("name", func(t *testing.T) {
		teams := []cup.Team{{ID: "2", Name: "Bravo"}, {ID: "1", Name: "Alpha"}, {ID: "3", Name: "Charlie"}}
		rows := Calc(teams, []cup.Match{result("2", "1", 1, 1)})
		assertOrder(t, rows, "1", "2", "3")
	})
}

func TestCalcIgnoresUnscored(t *testing.T) {
	hs := 4
	rows := Calc(named("A", "B"), []cup.Match{
		{Home: "A", Away: "B"},
		{Home: "A", Away: "B", HomeScore: &hs},
		result("A", "X", 9, 0),
	})
	for _, r := range rows {
		if r.Played != 0 || r.Points != 0 || r.GoalsFor != 0 {
			t.Errorf("%s counted a match without both scores: %+v", r.TeamID, r)
		}
	}
	assertOrder(t, rows, "A", "B")
	if rows[0].Rank != 1 || rows[1].Rank != 2 {
		t.Errorf("ranks = %d, %d", rows[0].Rank, rows[1].Rank)
	}
}

func TestCalcEmpty(t *testing.T) {
	if rows := Calc(nil, nil); len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}

func TestForPools(t *testing.T) {
	div := cup.Division{
		ID:      "u11",
		Name:    "U11",
		Teams:   named("A", "B", "C", "D"),
		Pooling: true,
		Pools: []cup.Pool{
			{ID: "pool-1", Name: "Pool A", TeamIDs: []string{"A", "B"}},
			{ID: "pool-2", Name: "Pool B", TeamIDs: []string{"C", "D"}},
		},
		Matches: []cup.Match{
			result("A", "B", 0, 1),
			result("C", "D", 2, 0),
		},
	}

	tables := ForPools(div)
	if len(tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(tables))
	}
	if tables[0].PoolName != "Pool A" || tables[1].PoolID != "pool-2" {
		t.Errorf("tables = %+v", tables)
	}
	assertOrder(t, tables[0].Rows, "B", "A")
	assertOrder(t, tables[1].Rows, "C", "D")

	div.Pooling = false
	tables = ForPools(div)
	if len(tables) != 1 || tables[0].PoolName != "U11" {
		t.Fatalf("unpooled tables = %+v", tables)
	}
	assertOrder(t, tables[0].Rows, "C", "B", "A", "D")
}
