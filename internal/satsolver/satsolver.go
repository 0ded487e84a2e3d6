// Package satsolver drives the SAT engine: for each priority level in
// turn, it searches for the smallest number of violations at that level
// that still yields a satisfiable instance (holding every lower level's
// violation count fixed at whatever minimum it settled on), then decodes
// the final model into a placement.Schedule.
package satsolver

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/russross/marmot-sub000/internal/cnf"
	"github.com/russross/marmot-sub000/internal/marmoterr"
	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/placement"
	"github.com/russross/marmot-sub000/internal/satcriteria"
	"github.com/russross/marmot-sub000/internal/satencode"
)

// GenerateSchedule builds a schedule by SAT search, level by level. It
// returns a marmoterr.HardUnsat error only when no satisfying assignment
// exists even once every soft constraint at every level is fully relaxed,
// meaning the basic room/time-slot/physical-room-conflict structure of
// Input itself has no solution.
func GenerateSchedule(input *model.Input, logger *zap.Logger) (*placement.Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sc := satcriteria.FromInput(input)
	maxPriority := sc.MaxPriority()
	maxViolations := make([]int, maxPriority+1)

	var finalModel cnf.Model
	var finalVars *satencode.Vars

	for p := uint8(0); p <= maxPriority; p++ {
		descriptors := sc.AtPriority(p)
		maxViolations[p] = 0
		for {
			m, v, ok, err := createAndSolve(input, sc, maxViolations, p)
			if err != nil {
				return nil, err
			}
			if ok {
				finalModel, finalVars = m, v
				logger.Debug("satsolver: level solved", zap.Uint8("level", p), zap.Int("violations", maxViolations[p]))
				break
			}
			if maxViolations[p] >= len(descriptors) {
				return nil, marmoterr.New(marmoterr.HardUnsat, "no schedule satisfies the room/time-slot structure even relaxing every soft constraint through level %d", p)
			}
			maxViolations[p]++
		}
	}

	sched := decodeSolution(input, finalVars, finalModel)
	crossCheckScore(logger, sched, maxViolations)
	return sched, nil
}

// createAndSolve rebuilds the full CNF instance from scratch: basic
// exactly-one-room/exactly-one-time-slot constraints, unconditional
// physical room-conflict clauses, and every descriptor from level 0
// through upTo, capped per level at maxViolations[level].
func createAndSolve(input *model.Input, sc *satcriteria.Criteria, maxViolations []int, upTo uint8) (cnf.Model, *satencode.Vars, bool, error) {
	enc := cnf.New()
	v := satencode.NewVars(enc, input)
	satencode.EncodeBasicConstraints(enc, input, v)
	satencode.EncodeRoomConflicts(enc, input, v)

	for level := uint8(0); level <= upTo; level++ {
		descriptors := sc.AtPriority(level)
		if len(descriptors) == 0 {
			continue
		}
		hallpasses := make([]cnf.Literal, 0, len(descriptors))
		for _, d := range descriptors {
			hallpasses = append(hallpasses, satencode.EncodeDescriptor(enc, input, v, d))
		}
		enc.TotalizerAtMostK(hallpasses, maxViolations[level], 0)
	}

	m, ok, err := enc.Solve()
	return m, v, ok, err
}

// decodeSolution reads a satisfying model back into a placement.Schedule
// by moving each section to the room/time-slot pair whose variable came
// out true.
func decodeSolution(input *model.Input, v *satencode.Vars, m cnf.Model) *placement.Schedule {
	sched := placement.NewSchedule(input, rand.New(rand.NewSource(1)))
	for si, sec := range input.Sections {
		room, timeSlot := -1, -1
		for _, r := range sec.Rooms {
			if m.True(v.RoomVar(si, r.Room)) {
				room = r.Room
				break
			}
		}
		for _, t := range sec.TimeSlots {
			if m.True(v.TimeVar(si, t.TimeSlot)) {
				timeSlot = t.TimeSlot
				break
			}
		}
		if room >= 0 && timeSlot >= 0 {
			sched.MoveSection(si, room, timeSlot)
		}
	}
	return sched
}

// crossCheckScore warns (but does not fail) if the schedule decoded from
// the SAT model doesn't match the violation counts the search settled on,
// which would indicate a bug in the descriptor-to-clause translation
// rather than a problem with the schedule itself.
func crossCheckScore(logger *zap.Logger, sched *placement.Schedule, maxViolations []int) {
	total := sched.Total()
	for level, want := range maxViolations {
		got := int(total.Levels[level])
		if got > want {
			logger.Warn("satsolver: decoded score exceeds the violation count the search settled on",
				zap.Int("level", level), zap.Int("expected_at_most", want), zap.Int("got", got))
		}
	}
}
