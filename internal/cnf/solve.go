package cnf

import (
	"github.com/crillab/gophersat/solver"

	"github.com/russross/marmot-sub000/internal/marmoterr"
)

// Model is a satisfying assignment: Model[v] is the truth value assigned
// to variable v (1-indexed; Model[0] is unused).
type Model []bool

// True reports whether literal lit is satisfied under this model.
func (m Model) True(lit Literal) bool {
	if lit < 0 {
		return !m[-lit]
	}
	return m[lit]
}

// Solve hands the accumulated clauses to gophersat and reports either a
// satisfying Model or that the instance is unsatisfiable. It never returns
// an error for UNSAT — that is a normal outcome the SAT driver expects and
// reacts to by relaxing a priority level further; only a genuine solver
// failure is reported as a marmoterr.HardUnsat-adjacent error.
func (e *Encoding) Solve() (Model, bool, error) {
	clauses := make([][]int, len(e.clauses))
	for i, clause := range e.clauses {
		row := make([]int, len(clause))
		for j, lit := range clause {
			row[j] = int(lit)
		}
		clauses[i] = row
	}

	pb := solver.ParseSlice(clauses)
	s := solver.New(pb)
	status := s.Solve()

	switch status {
	case solver.Sat:
		raw := s.Model()
		model := make(Model, e.lastVar+1)
		copy(model[1:], raw)
		return model, true, nil
	case solver.Unsat:
		return nil, false, nil
	default:
		return nil, false, marmoterr.New(marmoterr.HardUnsat, "gophersat returned an indeterminate result")
	}
}
