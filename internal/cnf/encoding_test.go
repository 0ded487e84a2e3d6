package cnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairwiseAtMostOne(t *testing.T) {
	e := New()
	a, b, c := e.NewVar(), e.NewVar(), e.NewVar()
	e.PairwiseAtMostOne([]Literal{a, b, c})
	assert.Len(t, e.Clauses(), 3)
}

func TestTotalizerAtMostKNoOpWhenKAtLeastN(t *testing.T) {
	e := New()
	a, b := e.NewVar(), e.NewVar()
	e.TotalizerAtMostK([]Literal{a, b}, 2, 0)
	assert.Empty(t, e.Clauses())
}

func TestTotalizerAtMostKZeroForcesAllFalse(t *testing.T) {
	e := New()
	a, b := e.NewVar(), e.NewVar()
	e.TotalizerAtMostK([]Literal{a, b}, 0, 0)
	assert.Len(t, e.Clauses(), 2)
	assert.Equal(t, []Literal{-a}, e.Clauses()[0])
}

func TestTotalizerAtMostKBuildsTree(t *testing.T) {
	e := New()
	lits := []Literal{e.NewVar(), e.NewVar(), e.NewVar(), e.NewVar()}
	before := e.VarCount()
	e.TotalizerAtMostK(lits, 2, 0)
	assert.Greater(t, e.VarCount(), before, "totalizer should allocate auxiliary output variables")
	assert.NotEmpty(t, e.Clauses())
}

func TestTotalizerAtMostKRelaxedByHallpass(t *testing.T) {
	e := New()
	lits := []Literal{e.NewVar(), e.NewVar(), e.NewVar(), e.NewVar()}
	hp := e.NewVar()
	e.TotalizerAtMostK(lits, 2, hp)
	last := e.Clauses()[len(e.Clauses())-1]
	found := false
	for _, lit := range last {
		if lit == hp {
			found = true
		}
	}
	assert.True(t, found, "relaxed cap clause must include the hallpass literal")
}
