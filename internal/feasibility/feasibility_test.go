package feasibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/cup/internal/cup"
)

func teams(ids ...string) []cup.Team {
	out := make([]cup.Team, len(ids))
	for i, id := range ids {
		out[i] = cup.Team{ID: id, Name: id}
	}
	return out
}

func morning() []cup.Day {
	return []cup.Day{{ID: "sat", Start: 9 * 60, End: 12 * 60}}
}

func sevens() []cup.Pitch {
	return []cup.Pitch{
		{ID: "p1", Format: "7v7"},
		{ID: "p2", Format: "7v7"},
	}
}

func fiveTeams() cup.Division {
	return cup.Division{
		ID:            "u9",
		Format:        "7v7",
		MatchMinutes:  20,
		BufferMinutes: 5,
		Teams:         teams("a", "b", "c", "d", "e"),
	}
}

func TestCalcFeasible(t *testing.T) {
	reports := Calc([]cup.Division{fiveTeams()}, sevens(), morning(), 0)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "u9", r.DivisionID)
	assert.True(t, r.Feasible)
	assert.Empty(t, r.Reason)
	assert.Equal(t, 10, r.TotalMatches)
	assert.Equal(t, 14, r.TotalSlots)
	assert.Empty(t, r.RestWarning)
	assert.Empty(t, r.BudgetWarning)
}

func TestCalcReasons(t *testing.T) {
	t.Run("no compatible pitch", func(t *testing.T) {
		div := fiveTeams()
		div.Format = "11v11"
		r := Calc([]cup.Division{div}, sevens(), morning(), 0)[0]
		assert.False(t, r.Feasible)
		assert.Equal(t, 0, r.TotalSlots)
		assert.Contains(t, r.Reason, "no pitch can host 11v11")
	})

	t.Run("some pitches incompatible", func(t *testing.T) {
		div := fiveTeams()
		div.MatchMinutes = 40
		pitches := []cup.Pitch{{ID: "big", Format: "11v11"}, {ID: "small", Format: "5v5"}}
		r := Calc([]cup.Division{div}, pitches, morning(), 0)[0]
		assert.False(t, r.Feasible)
		assert.Contains(t, r.Reason, "only 1 of 2 pitches")
	})

	t.Run("not enough time", func(t *testing.T) {
		div := fiveTeams()
		div.MatchMinutes = 50
		r := Calc([]cup.Division{div}, sevens(), morning(), 0)[0]
		assert.False(t, r.Feasible)
		assert.Equal(t, 6, r.TotalSlots)
		assert.Contains(t, r.Reason, "not enough time")
	})

	t.Run("no pitches", func(t *testing.T) {
		r := Calc([]cup.Division{fiveTeams()}, nil, morning(), 0)[0]
		assert.False(t, r.Feasible)
		assert.Contains(t, r.Reason, "no pitches configured")
	})
}

func TestCalcPooled(t *testing.T) {
	div := fiveTeams()
	div.Teams = teams("a", "b", "c", "d", "e", "f", "g", "h")
	div.Pooling = true
	div.Pools = []cup.Pool{
		{ID: "pool-1", TeamIDs: []string{"a", "b", "c", "d"}},
		{ID: "pool-2", TeamIDs: []string{"e", "f", "g", "h"}},
	}
	r := Calc([]cup.Division{div}, sevens(), morning(), 0)[0]
	assert.Equal(t, 12, r.TotalMatches)
	assert.True(t, r.Feasible)

	div.Pooling = false
	assert.Equal(t, 28, RequiredMatches(div))
}

func TestCalcRestWarning(t *testing.T) {
	div := fiveTeams()
	div.MinRestMinutes = 60
	r := Calc([]cup.Division{div}, sevens(), morning(), 0)[0]
	assert.True(t, r.Feasible)
	assert.Contains(t, r.RestWarning, "about 4 of 10 matches")

	div.MinRestMinutes = 5
	r = Calc([]cup.Division{div}, sevens(), morning(), 0)[0]
	assert.Empty(t, r.RestWarning, "rest no longer than the buffer never warns")
}

func TestCalcBudgetWarning(t *testing.T) {
	t.Run("cup default", func(t *testing.T) {
		r := Calc([]cup.Division{fiveTeams()}, sevens(), morning(), 2)[0]
		assert.Contains(t, r.BudgetWarning, "needs 4 matches per day over 1 days but the cap is 2")
	})

	t.Run("division cap wins", func(t *testing.T) {
		div := fiveTeams()
		div.MaxMatchesPerTeamPerDay = 4
		r := Calc([]cup.Division{div}, sevens(), morning(), 2)[0]
		assert.Empty(t, r.BudgetWarning)
	})

	t.Run("spread over days", func(t *testing.T) {
		days := append(morning(), cup.Day{ID: "sun", Start: 9 * 60, End: 12 * 60})
		r := Calc([]cup.Division{fiveTeams()}, sevens(), days, 2)[0]
		assert.Empty(t, r.BudgetWarning)
	})
}

func TestCalcDegenerate(t *testing.T) {
	assert.Empty(t, Calc(nil, nil, nil, 0))

	r := Calc([]cup.Division{{ID: "empty"}}, nil, nil, 0)[0]
	assert.True(t, r.Feasible)
	assert.Zero(t, r.TotalMatches)
	assert.Zero(t, r.TotalSlots)

	r = Calc([]cup.Division{{ID: "solo", Teams: teams("a")}}, sevens(), morning(), 1)[0]
	assert.True(t, r.Feasible)
	assert.Zero(t, r.TotalMatches)
}

func TestByDivision(t *testing.T) {
	other := fiveTeams()
	other.ID = "u11"
	other.Format = "11v11"
	m := ByDivision(Calc([]cup.Division{fiveTeams(), other}, sevens(), morning(), 0))
	require.Len(t, m, 2)
	assert.True(t, m["u9"].Feasible)
	assert.False(t, m["u11"].Feasible)
}
