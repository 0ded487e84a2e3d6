package model

import (
	"fmt"
	"sort"

	"github.com/russross/marmot-sub000/internal/marmoterr"
)

// Input is the fully loaded, internally-consistent problem instance: every
// room, time slot, faculty member, section, and criterion the solver will
// place and score.
type Input struct {
	TermName string

	Rooms     []Room
	TimeSlots []TimeSlot
	Faculty   []Faculty
	Sections  []Section
	Criteria  []Criterion

	// TimeSlotConflicts[i][j] is true when time slots i and j share a day
	// and overlap. Symmetric, including TimeSlotConflicts[i][i] == true.
	TimeSlotConflicts [][]bool
}

// NewInput validates the given components for internal consistency and
// returns an Input with derived fields (TimeSlotConflicts, Section.Criteria,
// Section.Neighbors) computed. Every index referenced by a Section,
// Faculty, or Criterion must be in range, or NewInput returns an
// InputInvalid error.
func NewInput(term string, rooms []Room, timeSlots []TimeSlot, faculty []Faculty, sections []Section, criteria []Criterion) (*Input, error) {
	in := &Input{
		TermName:  term,
		Rooms:     rooms,
		TimeSlots: timeSlots,
		Faculty:   faculty,
		Sections:  sections,
		Criteria:  criteria,
	}
	if err := in.validateIndices(); err != nil {
		return nil, err
	}
	in.computeTimeSlotConflicts()
	in.computeNeighbors()
	return in, nil
}

func (in *Input) validateIndices() error {
	nr, nt, nf, ns := len(in.Rooms), len(in.TimeSlots), len(in.Faculty), len(in.Sections)

	checkRoom := func(i int) error {
		if i < 0 || i >= nr {
			return marmoterr.New(marmoterr.InputInvalid, "room index %d out of range [0,%d)", i, nr)
		}
		return nil
	}
	checkTimeSlot := func(i int) error {
		if i < 0 || i >= nt {
			return marmoterr.New(marmoterr.InputInvalid, "time slot index %d out of range [0,%d)", i, nt)
		}
		return nil
	}
	checkSection := func(i int) error {
		if i < 0 || i >= ns {
			return marmoterr.New(marmoterr.InputInvalid, "section index %d out of range [0,%d)", i, ns)
		}
		return nil
	}
	checkFaculty := func(i int) error {
		if i < 0 || i >= nf {
			return marmoterr.New(marmoterr.InputInvalid, "faculty index %d out of range [0,%d)", i, nf)
		}
		return nil
	}

	for si, sec := range in.Sections {
		for _, r := range sec.Rooms {
			if err := checkRoom(r.Room); err != nil {
				return fmt.Errorf("section %q: %w", sec.Name, err)
			}
		}
		for _, t := range sec.TimeSlots {
			if err := checkTimeSlot(t.TimeSlot); err != nil {
				return fmt.Errorf("section %q: %w", sec.Name, err)
			}
		}
		for _, f := range sec.Faculty {
			if err := checkFaculty(f); err != nil {
				return fmt.Errorf("section %q: %w", sec.Name, err)
			}
		}
		for _, other := range sec.HardConflicts {
			if err := checkSection(other); err != nil {
				return fmt.Errorf("section %q hard conflict: %w", sec.Name, err)
			}
			if other == si {
				return marmoterr.New(marmoterr.InputInvalid, "section %q lists itself as a hard conflict", sec.Name)
			}
		}
	}

	for fi, fac := range in.Faculty {
		for _, si := range fac.Sections {
			if err := checkSection(si); err != nil {
				return fmt.Errorf("faculty %q: %w", fac.Name, err)
			}
			_ = fi
		}
	}

	for ci, crit := range in.Criteria {
		for _, si := range crit.CulpableSections() {
			if err := checkSection(si); err != nil {
				return fmt.Errorf("criterion %d: %w", ci, err)
			}
		}
		if ac, ok := crit.(*AntiConflict); ok {
			for _, g := range ac.Group {
				if g == ac.Single {
					return marmoterr.New(marmoterr.InputInvalid, "anti-conflict lists its own single section %d as a group member", ac.Single)
				}
			}
		}
		if rp, ok := crit.(*RoomPreference); ok {
			for _, r := range rp.Rooms {
				if err := checkRoom(r.Room); err != nil {
					return fmt.Errorf("criterion %d: %w", ci, err)
				}
			}
		}
		if tp, ok := crit.(*TimeSlotPreference); ok {
			for _, t := range tp.TimeSlots {
				if err := checkTimeSlot(t.TimeSlot); err != nil {
					return fmt.Errorf("criterion %d: %w", ci, err)
				}
			}
		}
		if fs, ok := crit.(*FacultySpread); ok {
			if err := checkFaculty(fs.Faculty); err != nil {
				return fmt.Errorf("criterion %d: %w", ci, err)
			}
		}
		if frc, ok := crit.(*FacultyRoomCount); ok {
			if err := checkFaculty(frc.Faculty); err != nil {
				return fmt.Errorf("criterion %d: %w", ci, err)
			}
			if frc.Desired < 1 {
				return marmoterr.New(marmoterr.InputInvalid, "criterion %d: faculty room count desired must be at least 1, got %d", ci, frc.Desired)
			}
		}
	}

	return nil
}

func (in *Input) computeTimeSlotConflicts() {
	n := len(in.TimeSlots)
	conflicts := make([][]bool, n)
	for i := range conflicts {
		conflicts[i] = make([]bool, n)
		for j := range conflicts[i] {
			conflicts[i][j] = in.TimeSlots[i].ConflictsWith(in.TimeSlots[j])
		}
	}
	in.TimeSlotConflicts = conflicts
}

// computeNeighbors fills in Section.Criteria and Section.Neighbors from
// Input.Criteria: every section named by a criterion records that
// criterion's index, and gains every other section named by the same
// criterion as a neighbor.
func (in *Input) computeNeighbors() {
	for i := range in.Sections {
		in.Sections[i].Criteria = nil
		in.Sections[i].Neighbors = nil
	}
	neighborSets := make([]map[int]bool, len(in.Sections))
	for i := range neighborSets {
		neighborSets[i] = make(map[int]bool)
	}

	for ci, crit := range in.Criteria {
		culpable := crit.CulpableSections()
		for _, si := range culpable {
			in.Sections[si].Criteria = append(in.Sections[si].Criteria, ci)
			for _, other := range culpable {
				if other != si {
					neighborSets[si][other] = true
				}
			}
		}
	}

	for si, set := range neighborSets {
		for other := range set {
			in.Sections[si].Neighbors = append(in.Sections[si].Neighbors, other)
		}
		sort.Ints(in.Sections[si].Neighbors)
	}
}
