package pools

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/cup/internal/cup"
)

func clubTeams() []cup.Team {
	return []cup.Team{
		{ID: "n1", Name: "North 1", Club: "North"},
		{ID: "n2", Name: "North 2", Club: "North"},
		{ID: "n3", Name: "North 3", Club: "North"},
		{ID: "s1", Name: "South 1", Club: "South"},
		{ID: "s2", Name: "South 2", Club: "South"},
		{ID: "e1", Name: "East 1", Club: "East"},
		{ID: "x1", Name: "Solo 1"},
		{ID: "x2", Name: "Solo 2"},
		{ID: "x3", Name: "Solo 3"},
	}
}

func TestAssign(t *testing.T) {
	teams := clubTeams()
	pools := Assign(teams, 3, 42)
	require.Len(t, pools, 3)

	t.Run("covers every team once", func(t *testing.T) {
		seen := make(map[string]int)
		for _, p := range pools {
			for _, id := range p.TeamIDs {
				seen[id]++
			}
		}
		assert.Len(t, seen, len(teams))
		for _, team := range teams {
			assert.Equal(t, 1, seen[team.ID], "team %s", team.ID)
		}
	})

	t.Run("spreads clubs", func(t *testing.T) {
		club := make(map[string]string)
		for _, team := range teams {
			club[team.ID] = team.Club
		}
		for _, p := range pools {
			count := make(map[string]int)
			for _, id := range p.TeamIDs {
				if c := club[id]; c != "" {
					count[c]++
				}
			}
			for c, n := range count {
				assert.LessOrEqual(t, n, 1, "%s has %d teams from %s", p.Name, n, c)
			}
		}
	})

	t.Run("balances sizes", func(t *testing.T) {
		for _, p := range pools {
			assert.Len(t, p.TeamIDs, 3, p.Name)
		}
	})

	t.Run("names and ids", func(t *testing.T) {
		assert.Equal(t, "pool-1", pools[0].ID)
		assert.Equal(t, "Pool A", pools[0].Name)
		assert.Equal(t, "Pool C", pools[2].Name)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, pools, Assign(teams, 3, 42))
	})

	t.Run("passes validation", func(t *testing.T) {
		v := Validate(cup.Division{Teams: teams, Pooling: true, Pools: pools})
		assert.True(t, v.Valid, "%v", v.Errors)
	})
}

func TestAssignClamps(t *testing.T) {
	teams := clubTeams()[:4]
	assert.Len(t, Assign(teams, 0, 1), 1)
	assert.Len(t, Assign(teams, 10, 1), 4)
	assert.Nil(t, Assign(nil, 3, 1))
}

func TestAutoPoolCount(t *testing.T) {
	tests := []struct {
		teams int
		want  int
	}{
		{0, 1}, {4, 1}, {6, 1}, {7, 2}, {10, 2}, {11, 3}, {15, 3}, {16, 4}, {30, 6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d teams", tt.teams), func(t *testing.T) {
			got := AutoPoolCount(tt.teams)
			assert.Equal(t, tt.want, got)
			if tt.teams > 6 {
				assert.GreaterOrEqual(t, tt.teams/got, 3)
				assert.LessOrEqual(t, (tt.teams+got-1)/got, 6)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	teams := []cup.Team{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	t.Run("exact cover", func(t *testing.T) {
		v := Validate(cup.Division{Teams: teams, Pools: []cup.Pool{
			{ID: "p1", TeamIDs: []string{"a", "b"}},
			{ID: "p2", TeamIDs: []string{"c", "d"}},
		}})
		assert.True(t, v.Valid)
		assert.Empty(t, v.Errors)
	})

	t.Run("missing team", func(t *testing.T) {
		v := Validate(cup.Division{Teams: teams, Pools: []cup.Pool{
			{ID: "p1", TeamIDs: []string{"a", "b"}},
			{ID: "p2", TeamIDs: []string{"c"}},
		}})
		assert.False(t, v.Valid)
		assert.True(t, hasProblem(v, UnassignedTeam, "d"))
	})

	t.Run("double assignment", func(t *testing.T) {
		v := Validate(cup.Division{Teams: teams, Pools: []cup.Pool{
			{ID: "p1", TeamIDs: []string{"a", "b", "c"}},
			{ID: "p2", TeamIDs: []string{"c", "d"}},
		}})
		assert.False(t, v.Valid)
		assert.True(t, hasProblem(v, DuplicateTeam, "c"))
	})

	t.Run("single team pool", func(t *testing.T) {
		v := Validate(cup.Division{Teams: teams, Pools: []cup.Pool{
			{ID: "p1", TeamIDs: []string{"a", "b", "c"}},
			{ID: "p2", TeamIDs: []string{"d"}},
		}})
		assert.False(t, v.Valid)
		assert.True(t, hasProblem(v, UndersizedPool, ""))
	})

	t.Run("unknown team", func(t *testing.T) {
		v := Validate(cup.Division{Teams: teams, Pools: []cup.Pool{
			{ID: "p1", TeamIDs: []string{"a", "b", "zz"}},
			{ID: "p2", TeamIDs: []string{"c", "d"}},
		}})
		assert.False(t, v.Valid)
		assert.True(t, hasProblem(v, UnknownTeam, "zz"))
	})
}

func hasProblem(v Validation, kind, team string) bool {
	for _, p := range v.Errors {
		if p.Kind == kind && (team == "" || p.TeamID == team) {
			return true
		}
	}
	return false
}
