package model

import "time"

// CriterionKind identifies which concrete Criterion a value holds, letting
// callers type-switch without reflection.
type CriterionKind uint8

const (
	KindSoftConflict CriterionKind = iota
	KindAntiConflict
	KindRoomPreference
	KindTimeSlotPreference
	KindFacultySpread
	KindFacultyRoomCount
)

// Criterion is a single scored preference or soft constraint. Concrete
// types are SoftConflict, AntiConflict, RoomPreference, TimeSlotPreference,
// FacultySpread, and FacultyRoomCount.
type Criterion interface {
	Kind() CriterionKind
	// CulpableSections returns every section index whose placement can
	// make this criterion fire.
	CulpableSections() []int
}

// SoftConflict penalizes two sections for sharing a time slot. Unlike a
// hard conflict it never makes the schedule invalid, only worse-scored.
type SoftConflict struct {
	Priority uint8
	Sections [2]int
}

func (c *SoftConflict) Kind() CriterionKind     { return KindSoftConflict }
func (c *SoftConflict) CulpableSections() []int { return []int{c.Sections[0], c.Sections[1]} }

// AntiConflict penalizes Single for NOT sharing a time slot with at least
// one member of Group.
type AntiConflict struct {
	Priority uint8
	Single   int
	Group    []int
}

func (c *AntiConflict) Kind() CriterionKind { return KindAntiConflict }
func (c *AntiConflict) CulpableSections() []int {
	out := make([]int, 0, 1+len(c.Group))
	out = append(out, c.Single)
	out = append(out, c.Group...)
	return out
}

// RoomPreference penalizes a section for being placed in one of the listed
// disliked rooms, at that room's priority.
type RoomPreference struct {
	Section int
	Rooms   []RoomWithPriority
}

func (c *RoomPreference) Kind() CriterionKind     { return KindRoomPreference }
func (c *RoomPreference) CulpableSections() []int { return []int{c.Section} }

// TimeSlotPreference penalizes a section for being placed in one of the
// listed disliked time slots, at that slot's priority.
type TimeSlotPreference struct {
	Section   int
	TimeSlots []TimeSlotWithPriority
}

func (c *TimeSlotPreference) Kind() CriterionKind     { return KindTimeSlotPreference }
func (c *TimeSlotPreference) CulpableSections() []int { return []int{c.Section} }

// FacultySpread bundles every day-distribution preference for one faculty
// member: days off, even spread across days, avoiding room switches
// between back-to-back sections, and cluster/gap length preferences.
type FacultySpread struct {
	Faculty              int
	Sections             []int
	DaysToCheck          Days
	MaxGapWithinCluster  time.Duration
	DaysOff              *DaysOffPref
	EvenlySpreadPriority *uint8
	NoRoomSwitchPriority *uint8
	Intervals            []DistributionInterval
}

func (c *FacultySpread) Kind() CriterionKind     { return KindFacultySpread }
func (c *FacultySpread) CulpableSections() []int { return c.Sections }

// FacultyRoomCount penalizes a faculty member for teaching in more distinct
// rooms than Desired.
type FacultyRoomCount struct {
	Faculty  int
	Sections []int
	Priority uint8
	Desired  int
}

func (c *FacultyRoomCount) Kind() CriterionKind     { return KindFacultyRoomCount }
func (c *FacultyRoomCount) CulpableSections() []int { return c.Sections }
