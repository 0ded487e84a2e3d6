// Package placement holds the mutable schedule state: which section sits in
// which room and time slot, and the incrementally maintained score that
// state produces. All mutation goes through MoveSection/RevertMove/
// SpeculativeMove so the score and per-criterion penalty cache never drift
// out of sync with the assignments they describe.
package placement

import (
	"math/rand"

	"github.com/russross/marmot-sub000/internal/criteria"
	"github.com/russross/marmot-sub000/internal/marmoterr"
	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/score"
)

// MoveKind distinguishes the two halves of a PlacementLog entry.
type MoveKind uint8

const (
	MoveAdd MoveKind = iota
	MoveRemove
)

// Move is one structural change to a Schedule: a section gaining or losing
// a room/time-slot assignment.
type Move struct {
	Kind     MoveKind
	Section  int
	Room     int
	TimeSlot int
}

// PlacementLog records every Move made by a single MoveSection call, in
// the order they happened, so it can be replayed in reverse by RevertMove.
type PlacementLog struct {
	Moves    []Move
	Criteria []int // criterion indices whose penalties may have changed
}

type roomOccupant struct {
	section  int
	timeSlot int
}

// Schedule is a full assignment of sections to rooms and time slots, plus
// the score that assignment currently earns.
type Schedule struct {
	input *model.Input
	eval  *criteria.Evaluator
	rng   *rand.Rand

	assignments    []criteria.Assignment
	roomPlacements [][]roomOccupant
	penalties      []criteria.Penalties
	sectionScores  []score.Score

	unplacedCount     int
	hardConflictCount int
	total             score.Score
}

// NewSchedule builds an all-unplaced Schedule for input. rng is stored and
// returned by Rng; the Schedule itself makes no random choices.
func NewSchedule(input *model.Input, rng *rand.Rand) *Schedule {
	s := &Schedule{
		input:          input,
		eval:           criteria.NewEvaluator(input),
		rng:            rng,
		assignments:    make([]criteria.Assignment, len(input.Sections)),
		roomPlacements: make([][]roomOccupant, len(input.Rooms)),
		penalties:      make([]criteria.Penalties, len(input.Criteria)),
		sectionScores:  make([]score.Score, len(input.Sections)),
	}
	for i := range s.assignments {
		s.assignments[i] = criteria.Assignment{TimeSlot: -1, Room: -1}
	}
	s.unplacedCount = len(input.Sections)
	s.total.Levels[score.LevelForUnplacedSection] = score.Level(s.unplacedCount)

	allCriteria := make([]int, len(input.Criteria))
	for i := range allCriteria {
		allCriteria[i] = i
	}
	s.computePenaltiesForCriteria(allCriteria)
	return s
}

// Clone returns a deep copy of the Schedule, sharing the same Input,
// Evaluator, and random source, so local search can stash away a "best so
// far" snapshot and keep mutating the original.
func (s *Schedule) Clone() *Schedule {
	out := &Schedule{
		input:             s.input,
		eval:              s.eval,
		rng:               s.rng,
		assignments:       append([]criteria.Assignment(nil), s.assignments...),
		penalties:         append([]criteria.Penalties(nil), s.penalties...),
		sectionScores:     append([]score.Score(nil), s.sectionScores...),
		roomPlacements:    make([][]roomOccupant, len(s.roomPlacements)),
		unplacedCount:     s.unplacedCount,
		hardConflictCount: s.hardConflictCount,
		total:             s.total,
	}
	for i, occupants := range s.roomPlacements {
		out.roomPlacements[i] = append([]roomOccupant(nil), occupants...)
	}
	return out
}

// CloneFrom overwrites s's assignments and caches with other's without
// reallocating, so s can be reset to a previously saved schedule.
func (s *Schedule) CloneFrom(other *Schedule) {
	copy(s.assignments, other.assignments)
	copy(s.penalties, other.penalties)
	copy(s.sectionScores, other.sectionScores)
	for i := range s.roomPlacements {
		s.roomPlacements[i] = append(s.roomPlacements[i][:0], other.roomPlacements[i]...)
	}
	s.unplacedCount = other.unplacedCount
	s.hardConflictCount = other.hardConflictCount
	s.total = other.total
}

// Rng returns the random source the Schedule was built with.
func (s *Schedule) Rng() *rand.Rand { return s.rng }

// Input returns the Input this Schedule was built from.
func (s *Schedule) Input() *model.Input { return s.input }

// Total returns the Schedule's current score.
func (s *Schedule) Total() score.Score { return s.total }

// Assignment returns section's current room/time-slot placement.
func (s *Schedule) Assignment(section int) criteria.Assignment {
	return s.assignments[section]
}

// SectionScore returns the portion of the total score attributable to
// criteria naming this section as culpable, plus its own unplaced/hard
// conflict contribution. Used by local search to pick which placed section
// to disturb next.
func (s *Schedule) SectionScore(section int) score.Score {
	out := s.sectionScores[section]
	a := s.assignments[section]
	if a.Unplaced() {
		out.Levels[score.LevelForUnplacedSection]++
		return out
	}
	for _, other := range s.input.Sections[section].HardConflicts {
		if b := s.assignments[other]; !b.Unplaced() && s.input.TimeSlotConflicts[a.TimeSlot][b.TimeSlot] {
			out.Levels[score.LevelForHardConflict]++
		}
	}
	return out
}

// removeRaw unassigns section, if placed, and returns the Move describing
// the removal. It does not touch scores or penalties.
func (s *Schedule) removeRaw(section int) (Move, bool) {
	a := s.assignments[section]
	if a.Unplaced() {
		return Move{}, false
	}
	s.removeOccupant(a.Room, section)
	s.assignments[section] = criteria.Assignment{TimeSlot: -1, Room: -1}
	return Move{Kind: MoveRemove, Section: section, Room: a.Room, TimeSlot: a.TimeSlot}, true
}

// addRaw assigns section to room/timeSlot and returns the Move describing
// the addition. It does not touch scores or penalties, and assumes the
// caller has already displaced any conflicting occupant of room.
func (s *Schedule) addRaw(section, room, timeSlot int) Move {
	s.assignments[section] = criteria.Assignment{Room: room, TimeSlot: timeSlot}
	s.roomPlacements[room] = append(s.roomPlacements[room], roomOccupant{section: section, timeSlot: timeSlot})
	return Move{Kind: MoveAdd, Section: section, Room: room, TimeSlot: timeSlot}
}

func (s *Schedule) removeOccupant(room, section int) {
	occupants := s.roomPlacements[room]
	for i, occ := range occupants {
		if occ.section == section {
			s.roomPlacements[room] = append(occupants[:i], occupants[i+1:]...)
			return
		}
	}
}

// HasHardConflict reports whether placing section into room at timeSlot
// would either conflict with one of section's declared hard-conflict
// partners already placed at an overlapping time, or require displacing
// whatever already occupies room at an overlapping time. Warm-up uses this
// to restrict itself to placements that need no displacement at all,
// matching the reference's has_hard_conflict check.
func (s *Schedule) HasHardConflict(section, room, timeSlot int) bool {
	for _, other := range s.input.Sections[section].HardConflicts {
		if a := s.assignments[other]; !a.Unplaced() && s.input.TimeSlotConflicts[timeSlot][a.TimeSlot] {
			return true
		}
	}
	for _, occ := range s.roomPlacements[room] {
		if occ.section == section {
			continue
		}
		if s.input.TimeSlotConflicts[timeSlot][occ.timeSlot] {
			return true
		}
	}
	return false
}

// applyRawMove performs the structural move for section into room/timeSlot
// (removing its old placement and displacing any conflicting occupant of
// room first) and returns every Move performed, in order, without touching
// scores or penalties.
func (s *Schedule) applyRawMove(section, room, timeSlot int) []Move {
	var moves []Move
	if mv, ok := s.removeRaw(section); ok {
		moves = append(moves, mv)
	}
	for _, occ := range append([]roomOccupant(nil), s.roomPlacements[room]...) {
		if s.input.TimeSlotConflicts[occ.timeSlot][timeSlot] {
			if mv, ok := s.removeRaw(occ.section); ok {
				moves = append(moves, mv)
			}
		}
	}
	moves = append(moves, s.addRaw(section, room, timeSlot))
	return moves
}

// undoRawMoves reverses moves in place, last-to-first, swapping Add and
// Remove, restoring the exact pre-move assignments.
func (s *Schedule) undoRawMoves(moves []Move) {
	for i := len(moves) - 1; i >= 0; i-- {
		mv := moves[i]
		switch mv.Kind {
		case MoveAdd:
			s.removeRaw(mv.Section)
		case MoveRemove:
			s.addRaw(mv.Section, mv.Room, mv.TimeSlot)
		}
	}
}

// affectedCriteria returns the union of every criterion index naming one
// of the given sections as culpable.
func (s *Schedule) affectedCriteria(sections []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, si := range sections {
		for _, ci := range s.input.Sections[si].Criteria {
			if !seen[ci] {
				seen[ci] = true
				out = append(out, ci)
			}
		}
	}
	return out
}

func movesSections(moves []Move) []int {
	seen := map[int]bool{}
	var out []int
	for _, mv := range moves {
		if !seen[mv.Section] {
			seen[mv.Section] = true
			out = append(out, mv.Section)
		}
	}
	return out
}

// MoveSection places section into room at timeSlot, removing its previous
// placement and displacing any section already occupying room at a
// conflicting time, then brings the score and penalty cache up to date.
// It returns a PlacementLog that RevertMove can use to undo exactly this
// change.
func (s *Schedule) MoveSection(section, room, timeSlot int) PlacementLog {
	moves := s.applyRawMove(section, room, timeSlot)
	sections := movesSections(moves)
	s.rescoreUnplacedAndHardConflicts(sections)
	crits := s.affectedCriteria(sections)
	s.rescoreCriteria(crits)
	return PlacementLog{Moves: moves, Criteria: crits}
}

// RemoveSection unassigns section, if placed, updating score and penalties
// to match. It returns a PlacementLog RevertMove can use to restore it.
func (s *Schedule) RemoveSection(section int) PlacementLog {
	mv, ok := s.removeRaw(section)
	if !ok {
		return PlacementLog{}
	}
	s.rescoreUnplacedAndHardConflicts([]int{section})
	crits := s.affectedCriteria([]int{section})
	s.rescoreCriteria(crits)
	return PlacementLog{Moves: []Move{mv}, Criteria: crits}
}

// RevertMove undoes a PlacementLog previously returned by MoveSection or
// RemoveSection, restoring the assignments, score, and penalty cache to
// their state before that call.
func (s *Schedule) RevertMove(log PlacementLog) {
	s.undoRawMoves(log.Moves)
	sections := movesSections(log.Moves)
	s.rescoreUnplacedAndHardConflicts(sections)
	s.rescoreCriteria(log.Criteria)
}

// SpeculativeMove reports the Score the Schedule would have if section
// were moved to room/timeSlot, without mutating the Schedule's committed
// score or penalty cache.
func (s *Schedule) SpeculativeMove(section, room, timeSlot int) score.Score {
	beforeUnplaced, beforeHard := s.unplacedCount, s.hardConflictCount

	moves := s.applyRawMove(section, room, timeSlot)
	sections := movesSections(moves)
	crits := s.affectedCriteria(sections)

	afterUnplaced, afterHard := s.countGlobalUnplacedAndHardConflicts()

	delta := score.New()
	delta.Levels[score.LevelForUnplacedSection] = score.Level(afterUnplaced - beforeUnplaced)
	delta.Levels[score.LevelForHardConflict] = score.Level(afterHard - beforeHard)
	for _, ci := range crits {
		for _, old := range s.penalties[ci] {
			delta.Levels[old.Level] -= score.Level(old.Count)
		}
		for _, fresh := range s.eval.Check(s.input.Criteria[ci], s.assignments) {
			delta.Levels[fresh.Level] += score.Level(fresh.Count)
		}
	}

	s.undoRawMoves(moves)
	return score.Add(s.total, delta)
}

// countGlobalUnplacedAndHardConflicts recomputes both counts from scratch
// against the Schedule's current (possibly hypothetical) assignments,
// without touching any committed state.
func (s *Schedule) countGlobalUnplacedAndHardConflicts() (unplaced, hard int) {
	for _, a := range s.assignments {
		if a.Unplaced() {
			unplaced++
		}
	}
	for a, sec := range s.input.Sections {
		for _, b := range sec.HardConflicts {
			if b <= a {
				continue
			}
			aa, bb := s.assignments[a], s.assignments[b]
			if !aa.Unplaced() && !bb.Unplaced() && s.input.TimeSlotConflicts[aa.TimeSlot][bb.TimeSlot] {
				hard++
			}
		}
	}
	return unplaced, hard
}

// rescoreUnplacedAndHardConflicts recomputes the global unplaced count and
// the hard-conflict count from scratch over every section; the sections
// argument is not used. It is
// called "unplaced and hard conflicts" because those two levels are not
// backed by Input.Criteria entries and so fall outside the per-criterion
// penalty cache.
func (s *Schedule) rescoreUnplacedAndHardConflicts(_ []int) {
	unplaced, hard := s.countGlobalUnplacedAndHardConflicts()
	s.unplacedCount = unplaced
	s.hardConflictCount = hard
	s.total.Levels[score.LevelForUnplacedSection] = score.Level(unplaced)
	s.total.Levels[score.LevelForHardConflict] = score.Level(hard)
}

// computePenaltiesForCriteria evaluates each named criterion fresh and
// commits its penalty, used both at Schedule construction and as the final
// step of the clear/reset/recompute rescoring protocol.
func (s *Schedule) computePenaltiesForCriteria(idxs []int) {
	for _, ci := range idxs {
		ps := s.eval.Check(s.input.Criteria[ci], s.assignments)
		s.penalties[ci] = ps
		for _, p := range ps {
			s.total.Levels[p.Level] += score.Level(p.Count)
			for _, si := range s.input.Criteria[ci].CulpableSections() {
				s.sectionScores[si].Levels[p.Level] += score.Level(p.Count)
			}
		}
	}
}

// clearPenaltiesForCriteria removes each named criterion's currently
// committed penalty from the total score and from every culpable section's
// score, leaving the penalty cache entry zeroed.
func (s *Schedule) clearPenaltiesForCriteria(idxs []int) {
	for _, ci := range idxs {
		for _, old := range s.penalties[ci] {
			s.total.Levels[old.Level] -= score.Level(old.Count)
			for _, si := range s.input.Criteria[ci].CulpableSections() {
				s.sectionScores[si].Levels[old.Level] -= score.Level(old.Count)
			}
		}
		s.penalties[ci] = nil
	}
}

// resetScoresForSections asserts that clearPenaltiesForCriteria left the
// penalty cache entry of every given criterion empty before
// computePenaltiesForCriteria recomputes it, panicking with an
// InvariantViolation otherwise. It does not inspect the per-section score
// cache.
func (s *Schedule) resetScoresForSections(idxs []int) {
	for _, ci := range idxs {
		if s.penalties[ci].Fired() {
			panic(marmoterr.New(marmoterr.InvariantViolation, "criterion %d still has a fired penalty after clearPenaltiesForCriteria", ci))
		}
	}
}

// rescoreCriteria re-evaluates exactly the given criteria against the
// Schedule's current assignments, following the clear/reset/recompute
// protocol so the score and per-section caches never observe a
// partially-updated intermediate state.
func (s *Schedule) rescoreCriteria(idxs []int) {
	if len(idxs) == 0 {
		return
	}
	s.clearPenaltiesForCriteria(idxs)
	s.resetScoresForSections(idxs)
	s.computePenaltiesForCriteria(idxs)
}
