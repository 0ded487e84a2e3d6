// Package cnf builds the conjunctive-normal-form encoding the SAT engine
// solves: variable allocation, clause storage, pairwise at-most-one, and a
// totalizer-based at-most-k cardinality constraint, each optionally
// relaxed by a "hallpass" literal that lets a soft constraint be violated
// at a cost the driver controls level by level.
package cnf

// Literal is a DIMACS-style literal: a positive variable number asserts
// the variable true, negative asserts it false. Variable numbers start
// at 1.
type Literal = int32

// Problem names one registered soft-constraint violation: the hallpass
// variable that, when true, excuses it, and a description for
// diagnostics.
type Problem struct {
	Hallpass    Literal
	Description string
}

// Encoding accumulates variables and clauses for one CNF instance.
type Encoding struct {
	lastVar  Literal
	clauses  [][]Literal
	problems []Problem
}

// New returns an empty Encoding.
func New() *Encoding {
	return &Encoding{}
}

// NewVar allocates and returns a fresh variable.
func (e *Encoding) NewVar() Literal {
	e.lastVar++
	return e.lastVar
}

// VarCount returns how many variables have been allocated.
func (e *Encoding) VarCount() int {
	return int(e.lastVar)
}

// AddClause records a disjunction of literals as a hard clause.
func (e *Encoding) AddClause(lits ...Literal) {
	clause := make([]Literal, len(lits))
	copy(clause, lits)
	e.clauses = append(e.clauses, clause)
}

// Clauses returns every clause added so far, in DIMACS literal form.
func (e *Encoding) Clauses() [][]Literal {
	return e.clauses
}

// RegisterProblem records hallpass as the relaxation variable for one
// soft-constraint encoding, for later reporting of which soft constraints
// fired in a solution.
func (e *Encoding) RegisterProblem(hallpass Literal, description string) {
	e.problems = append(e.problems, Problem{Hallpass: hallpass, Description: description})
}

// Problems returns every registered soft-constraint relaxation.
func (e *Encoding) Problems() []Problem {
	return e.problems
}

// PairwiseAtMostOne adds the O(n^2) clause set forbidding any two literals
// in lits from both being true.
func (e *Encoding) PairwiseAtMostOne(lits []Literal) {
	for i := 0; i < len(lits); i++ {
		for j := i + 1; j < len(lits); j++ {
			e.AddClause(-lits[i], -lits[j])
		}
	}
}

// AtLeastOne adds a single clause requiring at least one of lits to be
// true.
func (e *Encoding) AtLeastOne(lits []Literal) {
	if len(lits) == 0 {
		return
	}
	e.AddClause(lits...)
}

// TotalizerAtMostK adds clauses enforcing that at most k of lits are true.
// If hallpass is nonzero, the cap is relaxed: a solution may violate it as
// long as hallpass is also true, letting the driver charge that violation
// against a priority level instead of forbidding it outright.
//
// k >= len(lits) is a no-op (the cap can never bind). k == 0 is encoded
// directly as one clause per literal rather than building a totalizer
// tree, since "at most zero" just means "none of these".
func (e *Encoding) TotalizerAtMostK(lits []Literal, k int, hallpass Literal) {
	n := len(lits)
	if n == 0 || k >= n {
		return
	}
	if k == 0 {
		for _, l := range lits {
			if hallpass != 0 {
				e.AddClause(-l, hallpass)
			} else {
				e.AddClause(-l)
			}
		}
		return
	}
	if k == 1 && n <= 30 {
		e.pairwiseAtMostOneRelaxed(lits, hallpass)
		return
	}

	root := e.buildFullTotalizerTree(lits)
	// root[k] is the unary output asserting ">= k+1 of lits are true".
	// Forbidding it (modulo hallpass) enforces the cap.
	out := root[k]
	if hallpass != 0 {
		e.AddClause(-out, hallpass)
	} else {
		e.AddClause(-out)
	}
}

func (e *Encoding) pairwiseAtMostOneRelaxed(lits []Literal, hallpass Literal) {
	for i := 0; i < len(lits); i++ {
		for j := i + 1; j < len(lits); j++ {
			if hallpass != 0 {
				e.AddClause(-lits[i], -lits[j], hallpass)
			} else {
				e.AddClause(-lits[i], -lits[j])
			}
		}
	}
}

// buildFullTotalizerTree returns len(lits) unary output variables where
// output[i] (0-indexed) is true whenever at least i+1 of lits are true. It
// builds the tree as a binary merge over leaves, matching the reference
// encoder's recursive structure.
func (e *Encoding) buildFullTotalizerTree(lits []Literal) []Literal {
	nodes := make([][]Literal, len(lits))
	for i, l := range lits {
		nodes[i] = []Literal{l}
	}
	for len(nodes) > 1 {
		var next [][]Literal
		i := 0
		for ; i+1 < len(nodes); i += 2 {
			next = append(next, e.mergeFullTotalizerNodes(nodes[i], nodes[i+1]))
		}
		if i < len(nodes) {
			next = append(next, nodes[i])
		}
		nodes = next
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// mergeFullTotalizerNodes combines two unary-counter output lists into one
// covering their combined count, using the standard totalizer adder
// clauses: if at least i of left and at least j of right are true, then at
// least i+j of the merged group are true.
func (e *Encoding) mergeFullTotalizerNodes(left, right []Literal) []Literal {
	total := len(left) + len(right)
	out := make([]Literal, total)
	for i := range out {
		out[i] = e.NewVar()
	}

	for i := 1; i <= len(left); i++ {
		e.AddClause(-left[i-1], out[i-1])
	}
	for j := 1; j <= len(right); j++ {
		e.AddClause(-right[j-1], out[j-1])
	}
	for i := 1; i <= len(left); i++ {
		for j := 1; j <= len(right); j++ {
			e.AddClause(-left[i-1], -right[j-1], out[i+j-1])
		}
	}

	return out
}
