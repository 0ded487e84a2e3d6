// Package satencode turns an Input and its satcriteria.Descriptor list
// into CNF clauses: the basic "every section gets exactly one room and one
// time slot" structure, physical room-conflict clauses, and one clause set
// per soft/hard constraint descriptor, each behind its own hallpass
// variable.
package satencode

import (
	"github.com/russross/marmot-sub000/internal/cnf"
	"github.com/russross/marmot-sub000/internal/model"
)

type key struct {
	section, choice int
}

// Vars holds the section/room and section/time-slot boolean variables
// allocated for one SAT instance.
type Vars struct {
	Room map[key]cnf.Literal
	Time map[key]cnf.Literal
}

// NewVars allocates one variable per (section, eligible room) pair and one
// per (section, eligible time slot) pair.
func NewVars(enc *cnf.Encoding, input *model.Input) *Vars {
	v := &Vars{Room: map[key]cnf.Literal{}, Time: map[key]cnf.Literal{}}
	for si, sec := range input.Sections {
		for _, r := range sec.Rooms {
			v.Room[key{si, r.Room}] = enc.NewVar()
		}
		for _, t := range sec.TimeSlots {
			v.Time[key{si, t.TimeSlot}] = enc.NewVar()
		}
	}
	return v
}

// RoomVar returns the variable asserting section is placed in room, or 0
// if room is not eligible for section.
func (v *Vars) RoomVar(section, room int) cnf.Literal {
	return v.Room[key{section, room}]
}

// TimeVar returns the variable asserting section is placed at timeSlot, or
// 0 if timeSlot is not eligible for section.
func (v *Vars) TimeVar(section, timeSlot int) cnf.Literal {
	return v.Time[key{section, timeSlot}]
}

func (v *Vars) roomLits(input *model.Input, section int) []cnf.Literal {
	out := make([]cnf.Literal, 0, len(input.Sections[section].Rooms))
	for _, r := range input.Sections[section].Rooms {
		out = append(out, v.RoomVar(section, r.Room))
	}
	return out
}

func (v *Vars) timeLits(input *model.Input, section int) []cnf.Literal {
	out := make([]cnf.Literal, 0, len(input.Sections[section].TimeSlots))
	for _, t := range input.Sections[section].TimeSlots {
		out = append(out, v.TimeVar(section, t.TimeSlot))
	}
	return out
}

// EncodeBasicConstraints requires every section to choose exactly one of
// its eligible rooms and exactly one of its eligible time slots.
func EncodeBasicConstraints(enc *cnf.Encoding, input *model.Input, v *Vars) {
	for si := range input.Sections {
		rooms := v.roomLits(input, si)
		times := v.timeLits(input, si)
		enc.AtLeastOne(rooms)
		enc.PairwiseAtMostOne(rooms)
		enc.AtLeastOne(times)
		enc.PairwiseAtMostOne(times)
	}
}

// EncodeRoomConflicts forbids two sections from sharing a room at
// overlapping time slots, skipping pairs already forced apart by a
// declared hard conflict (encoded separately by the Conflict descriptor at
// score.LevelForHardConflict).
func EncodeRoomConflicts(enc *cnf.Encoding, input *model.Input, v *Vars) {
	hard := make(map[[2]int]bool)
	for si, sec := range input.Sections {
		for _, other := range sec.HardConflicts {
			a, b := si, other
			if a > b {
				a, b = b, a
			}
			hard[[2]int{a, b}] = true
		}
	}

	for a := 0; a < len(input.Sections); a++ {
		for b := a + 1; b < len(input.Sections); b++ {
			if hard[[2]int{a, b}] {
				continue
			}
			for _, ra := range input.Sections[a].Rooms {
				for _, rb := range input.Sections[b].Rooms {
					if ra.Room != rb.Room {
						continue
					}
					for _, ta := range input.Sections[a].TimeSlots {
						for _, tb := range input.Sections[b].TimeSlots {
							if !input.TimeSlotConflicts[ta.TimeSlot][tb.TimeSlot] {
								continue
							}
							enc.AddClause(
								-v.RoomVar(a, ra.Room), -v.TimeVar(a, ta.TimeSlot),
								-v.RoomVar(b, rb.Room), -v.TimeVar(b, tb.TimeSlot),
							)
						}
					}
				}
			}
		}
	}
}
