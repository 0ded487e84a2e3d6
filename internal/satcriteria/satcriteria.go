// Package satcriteria translates an Input's hard conflicts and soft
// Criteria into a flat list of SAT constraint descriptors, organized by
// priority level, for internal/satencode to turn into clauses and
// internal/satsolver to drive level by level.
package satcriteria

import (
	"time"

	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/score"
)

// Kind identifies which SAT constraint shape a Descriptor encodes.
type Kind uint8

const (
	KindConflict Kind = iota
	KindAntiConflict
	KindRoomPreference
	KindTimeSlotPreference
	KindFacultyDaysOff
	KindFacultyEvenlySpread
	KindFacultyNoRoomSwitch
	KindFacultyTooManyRooms
	KindFacultyClusterTooShort
	KindFacultyClusterTooLong
	KindFacultyGapTooShort
	KindFacultyGapTooLong
)

// Descriptor is one constraint to encode into CNF at a given priority
// level. Which fields are meaningful depends on Kind.
type Descriptor struct {
	Kind     Kind
	Priority uint8

	Sections []int // Conflict: exactly two; faculty kinds: the faculty's sections
	Single   int   // AntiConflict
	Group    []int // AntiConflict

	Faculty             int
	DaysToCheck         model.Days
	MaxGapWithinCluster time.Duration
	Desired             int
	Duration            time.Duration

	RoomPref     *model.RoomWithPriority
	TimeSlotPref *model.TimeSlotWithPriority
}

// Criteria is every Descriptor derived from an Input, bucketed by
// priority level so the SAT driver can work one level at a time.
type Criteria struct {
	byPriority [][]Descriptor
}

// Add appends d to its priority level's bucket, growing the bucket list
// as needed.
func (c *Criteria) Add(d Descriptor) {
	for len(c.byPriority) <= int(d.Priority) {
		c.byPriority = append(c.byPriority, nil)
	}
	c.byPriority[d.Priority] = append(c.byPriority[d.Priority], d)
}

// MaxPriority returns the highest priority level with at least one
// descriptor, or 0 if Criteria is empty.
func (c *Criteria) MaxPriority() uint8 {
	if len(c.byPriority) == 0 {
		return 0
	}
	return uint8(len(c.byPriority) - 1)
}

// AtPriority returns every descriptor registered at exactly level p.
func (c *Criteria) AtPriority(p uint8) []Descriptor {
	if int(p) >= len(c.byPriority) {
		return nil
	}
	return c.byPriority[p]
}

// Priorities returns every level from 0 to MaxPriority that has at least
// one descriptor.
func (c *Criteria) Priorities() []uint8 {
	var out []uint8
	for p, bucket := range c.byPriority {
		if len(bucket) > 0 {
			out = append(out, uint8(p))
		}
	}
	return out
}

// TotalCount returns the total number of descriptors across every level.
func (c *Criteria) TotalCount() int {
	n := 0
	for _, bucket := range c.byPriority {
		n += len(bucket)
	}
	return n
}

// FromInput derives the full set of SAT descriptors from input: one
// Conflict descriptor per declared hard conflict pair (at
// score.LevelForHardConflict) and per SoftConflict criterion, one
// AntiConflict descriptor per AntiConflict criterion, one RoomPreference/
// TimeSlotPreference descriptor per listed (disliked) entry, and one descriptor
// per populated sub-preference of each FacultySpread criterion (days off,
// evenly spread, no room switch, cluster/gap length), plus one
// FacultyTooManyRooms descriptor per FacultyRoomCount criterion.
func FromInput(input *model.Input) *Criteria {
	c := &Criteria{}

	for si, sec := range input.Sections {
		for _, other := range sec.HardConflicts {
			if other <= si {
				continue
			}
			c.Add(Descriptor{Kind: KindConflict, Priority: score.LevelForHardConflict, Sections: []int{si, other}})
		}
	}

	for _, crit := range input.Criteria {
		switch v := crit.(type) {
		case *model.SoftConflict:
			c.Add(Descriptor{Kind: KindConflict, Priority: v.Priority, Sections: []int{v.Sections[0], v.Sections[1]}})

		case *model.AntiConflict:
			c.Add(Descriptor{Kind: KindAntiConflict, Priority: v.Priority, Single: v.Single, Group: append([]int(nil), v.Group...)})

		case *model.RoomPreference:
			for i := range v.Rooms {
				rp := v.Rooms[i]
				c.Add(Descriptor{Kind: KindRoomPreference, Priority: rp.Priority, Sections: []int{v.Section}, RoomPref: &rp})
			}

		case *model.TimeSlotPreference:
			for i := range v.TimeSlots {
				tp := v.TimeSlots[i]
				c.Add(Descriptor{Kind: KindTimeSlotPreference, Priority: tp.Priority, Sections: []int{v.Section}, TimeSlotPref: &tp})
			}

		case *model.FacultySpread:
			addFacultySpread(c, v)

		case *model.FacultyRoomCount:
			c.Add(Descriptor{
				Kind:     KindFacultyTooManyRooms,
				Priority: v.Priority,
				Faculty:  v.Faculty,
				Sections: v.Sections,
				Desired:  v.Desired,
			})
		}
	}

	return c
}

func addFacultySpread(c *Criteria, v *model.FacultySpread) {
	base := Descriptor{
		Faculty:             v.Faculty,
		Sections:            v.Sections,
		DaysToCheck:         v.DaysToCheck,
		MaxGapWithinCluster: v.MaxGapWithinCluster,
	}

	if v.DaysOff != nil {
		d := base
		d.Kind = KindFacultyDaysOff
		d.Priority = v.DaysOff.Priority
		d.Desired = v.DaysOff.Desired
		c.Add(d)
	}
	if v.EvenlySpreadPriority != nil {
		d := base
		d.Kind = KindFacultyEvenlySpread
		d.Priority = *v.EvenlySpreadPriority
		c.Add(d)
	}
	if v.NoRoomSwitchPriority != nil {
		d := base
		d.Kind = KindFacultyNoRoomSwitch
		d.Priority = *v.NoRoomSwitchPriority
		c.Add(d)
	}
	for _, interval := range v.Intervals {
		d := base
		d.Priority = interval.Priority
		d.Duration = interval.Duration
		switch interval.Kind {
		case model.ClusterTooShort:
			d.Kind = KindFacultyClusterTooShort
		case model.ClusterTooLong:
			d.Kind = KindFacultyClusterTooLong
		case model.GapTooShort:
			d.Kind = KindFacultyGapTooShort
		case model.GapTooLong:
			d.Kind = KindFacultyGapTooLong
		}
		c.Add(d)
	}
}
