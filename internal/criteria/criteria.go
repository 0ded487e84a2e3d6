// Package criteria evaluates the soft criteria attached to an Input against
// a set of section placements, producing the penalties that feed a Score.
package criteria

import (
	"fmt"
	"sort"
	"time"

	"github.com/russross/marmot-sub000/internal/model"
)

// Assignment is a section's current room/time-slot placement. Unplaced is
// represented by -1 in both fields.
type Assignment struct {
	TimeSlot int
	Room     int
}

// Unplaced reports whether the section has no time slot assigned.
func (a Assignment) Unplaced() bool {
	return a.TimeSlot < 0
}

// Penalty is the result of one sub-preference firing: how many times it
// fired, at which priority level, and a human-readable explanation, for use
// in diagnostics.
type Penalty struct {
	Level   uint8
	Count   int
	Message string
}

// Fired reports whether this penalty contributes to the score.
func (p Penalty) Fired() bool {
	return p.Count > 0
}

// Penalties is every penalty a single criterion fired when checked. Most
// criterion kinds fire at most one, but FacultySpread can fire several at
// once (e.g. a DaysOff violation and a ClusterTooLong violation for the
// same faculty member, at different priority levels) and every one of them
// must contribute to the score, per original_source/src/score.rs pushing
// one Penalty per violation rather than keeping only the worst.
type Penalties []Penalty

// Fired reports whether any penalty in the list fired.
func (ps Penalties) Fired() bool {
	return len(ps) > 0
}

// Evaluator checks criteria against assignments, using Input for room,
// time slot, and conflict lookups.
type Evaluator struct {
	input *model.Input
}

// NewEvaluator builds an Evaluator bound to the given Input.
func NewEvaluator(input *model.Input) *Evaluator {
	return &Evaluator{input: input}
}

// Check evaluates a single criterion against the given assignments
// (indexed by section) and returns every penalty it incurs.
func (e *Evaluator) Check(c model.Criterion, assignments []Assignment) Penalties {
	switch crit := c.(type) {
	case *model.SoftConflict:
		return single(e.checkSoftConflict(crit, assignments))
	case *model.AntiConflict:
		return single(e.checkAntiConflict(crit, assignments))
	case *model.RoomPreference:
		return single(e.checkRoomPreference(crit, assignments))
	case *model.TimeSlotPreference:
		return single(e.checkTimeSlotPreference(crit, assignments))
	case *model.FacultySpread:
		return e.checkFacultySpread(crit, assignments)
	case *model.FacultyRoomCount:
		return single(e.checkFacultyRoomCount(crit, assignments))
	default:
		return nil
	}
}

// single wraps a possibly-unfired Penalty into a Penalties list, omitting
// it entirely when it did not fire.
func single(p Penalty) Penalties {
	if !p.Fired() {
		return nil
	}
	return Penalties{p}
}

func (e *Evaluator) conflicts(a, b Assignment) bool {
	if a.Unplaced() || b.Unplaced() {
		return false
	}
	return e.input.TimeSlotConflicts[a.TimeSlot][b.TimeSlot]
}

func (e *Evaluator) checkSoftConflict(c *model.SoftConflict, assignments []Assignment) Penalty {
	a, b := assignments[c.Sections[0]], assignments[c.Sections[1]]
	if e.conflicts(a, b) {
		return Penalty{Level: c.Priority, Count: 1, Message: fmt.Sprintf("sections %d and %d share a time slot", c.Sections[0], c.Sections[1])}
	}
	return Penalty{}
}

func (e *Evaluator) checkAntiConflict(c *model.AntiConflict, assignments []Assignment) Penalty {
	single := assignments[c.Single]
	if single.Unplaced() {
		return Penalty{}
	}
	for _, g := range c.Group {
		if e.conflicts(single, assignments[g]) {
			return Penalty{}
		}
	}
	return Penalty{Level: c.Priority, Count: 1, Message: fmt.Sprintf("section %d does not share a time slot with any of its anti-conflict group", c.Single)}
}

func (e *Evaluator) checkRoomPreference(c *model.RoomPreference, assignments []Assignment) Penalty {
	a := assignments[c.Section]
	if a.Unplaced() {
		return Penalty{}
	}
	for _, rp := range c.Rooms {
		if rp.Room == a.Room {
			return Penalty{Level: rp.Priority, Count: 1, Message: fmt.Sprintf("section %d used disfavored room %d", c.Section, a.Room)}
		}
	}
	return Penalty{}
}

func (e *Evaluator) checkTimeSlotPreference(c *model.TimeSlotPreference, assignments []Assignment) Penalty {
	a := assignments[c.Section]
	if a.Unplaced() {
		return Penalty{}
	}
	for _, tp := range c.TimeSlots {
		if tp.TimeSlot == a.TimeSlot {
			return Penalty{Level: tp.Priority, Count: 1, Message: fmt.Sprintf("section %d used disfavored time slot %d", c.Section, a.TimeSlot)}
		}
	}
	return Penalty{}
}

func (e *Evaluator) checkFacultyRoomCount(c *model.FacultyRoomCount, assignments []Assignment) Penalty {
	rooms := map[int]bool{}
	for _, si := range c.Sections {
		a := assignments[si]
		if !a.Unplaced() {
			rooms[a.Room] = true
		}
	}
	if len(rooms) > c.Desired {
		return Penalty{
			Level:   c.Priority,
			Count:   len(rooms) - c.Desired,
			Message: fmt.Sprintf("faculty %d teaches in %d rooms, wanted at most %d", c.Faculty, len(rooms), c.Desired),
		}
	}
	return Penalty{}
}

// placedSlot is one section's placement, used to build a faculty member's
// day-by-day schedule.
type placedSlot struct {
	section int
	slot    model.TimeSlot
}

func (e *Evaluator) facultyDaySchedule(sections []int, assignments []Assignment, day model.Days) []placedSlot {
	var out []placedSlot
	for _, si := range sections {
		a := assignments[si]
		if a.Unplaced() {
			continue
		}
		slot := e.input.TimeSlots[a.TimeSlot]
		if slot.Days.Has(day) {
			out = append(out, placedSlot{section: si, slot: slot})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].slot.Start < out[j].slot.Start })
	return out
}

// checkFacultySpread checks every day-distribution sub-preference for one
// faculty member independently and reports every one that fires, each at
// its own priority level, matching original_source/src/score.rs pushing
// one Penalty per violated sub-preference rather than keeping only the
// worst: a DaysOff violation and a ClusterTooLong violation on the same
// criterion both contribute to the score simultaneously.
func (e *Evaluator) checkFacultySpread(c *model.FacultySpread, assignments []Assignment) Penalties {
	var out Penalties

	consider := func(p Penalty) {
		if p.Fired() {
			out = append(out, p)
		}
	}

	if c.DaysOff != nil {
		consider(e.checkDaysOff(c, assignments))
	}
	if c.EvenlySpreadPriority != nil {
		consider(e.checkEvenlySpread(c, assignments))
	}
	if c.NoRoomSwitchPriority != nil {
		consider(e.checkNoRoomSwitch(c, assignments))
	}
	for _, interval := range c.Intervals {
		consider(e.checkInterval(c, assignments, interval))
	}

	return out
}

func (e *Evaluator) checkDaysOff(c *model.FacultySpread, assignments []Assignment) Penalty {
	daysWithClasses := 0
	for _, day := range c.DaysToCheck.List() {
		if len(e.facultyDaySchedule(c.Sections, assignments, day)) > 0 {
			daysWithClasses++
		}
	}
	daysOff := c.DaysToCheck.Count() - daysWithClasses
	if daysOff < c.DaysOff.Desired {
		return Penalty{
			Level:   c.DaysOff.Priority,
			Count:   c.DaysOff.Desired - daysOff,
			Message: fmt.Sprintf("faculty %d has %d days off, wanted %d", c.Faculty, daysOff, c.DaysOff.Desired),
		}
	}
	return Penalty{}
}

func (e *Evaluator) checkEvenlySpread(c *model.FacultySpread, assignments []Assignment) Penalty {
	counts := make([]int, 0, 7)
	for _, day := range c.DaysToCheck.List() {
		counts = append(counts, len(e.facultyDaySchedule(c.Sections, assignments, day)))
	}
	if len(counts) == 0 {
		return Penalty{}
	}
	min, max := counts[0], counts[0]
	for _, n := range counts[1:] {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	if max-min > 1 {
		return Penalty{
			Level:   *c.EvenlySpreadPriority,
			Count:   max - min - 1,
			Message: fmt.Sprintf("faculty %d's sections are unevenly spread across days (min %d, max %d)", c.Faculty, min, max),
		}
	}
	return Penalty{}
}

func (e *Evaluator) checkNoRoomSwitch(c *model.FacultySpread, assignments []Assignment) Penalty {
	count := 0
	for _, day := range c.DaysToCheck.List() {
		daySlots := e.facultyDaySchedule(c.Sections, assignments, day)
		for i := 1; i < len(daySlots); i++ {
			prev, cur := daySlots[i-1], daySlots[i]
			gap := cur.slot.Start - prev.slot.End()
			if gap <= c.MaxGapWithinCluster && assignments[prev.section].Room != assignments[cur.section].Room {
				count++
			}
		}
	}
	if count > 0 {
		return Penalty{
			Level:   *c.NoRoomSwitchPriority,
			Count:   count,
			Message: fmt.Sprintf("faculty %d switches rooms %d times within a cluster", c.Faculty, count),
		}
	}
	return Penalty{}
}

// dayClusters groups a faculty's sorted sections on one day into clusters
// of back-to-back meetings (gap <= MaxGapWithinCluster) and the gaps
// between those clusters.
func (e *Evaluator) dayClusters(c *model.FacultySpread, daySlots []placedSlot) (clusters []time.Duration, gaps []time.Duration) {
	if len(daySlots) == 0 {
		return nil, nil
	}
	clusterStart := daySlots[0].slot.Start
	clusterEnd := daySlots[0].slot.End()
	for i := 1; i < len(daySlots); i++ {
		gap := daySlots[i].slot.Start - clusterEnd
		if gap <= c.MaxGapWithinCluster {
			clusterEnd = daySlots[i].slot.End()
			continue
		}
		clusters = append(clusters, clusterEnd-clusterStart)
		gaps = append(gaps, gap)
		clusterStart = daySlots[i].slot.Start
		clusterEnd = daySlots[i].slot.End()
	}
	clusters = append(clusters, clusterEnd-clusterStart)
	return clusters, gaps
}

func (e *Evaluator) checkInterval(c *model.FacultySpread, assignments []Assignment, interval model.DistributionInterval) Penalty {
	count := 0
	for _, day := range c.DaysToCheck.List() {
		daySlots := e.facultyDaySchedule(c.Sections, assignments, day)
		clusters, gaps := e.dayClusters(c, daySlots)
		switch interval.Kind {
		case model.ClusterTooShort:
			tooShortFreebieUsed := false
			for _, d := range clusters {
				if d >= interval.Duration {
					continue
				}
				if !tooShortFreebieUsed {
					tooShortFreebieUsed = true
					continue
				}
				count++
			}
		case model.ClusterTooLong:
			for _, d := range clusters {
				if d > interval.Duration {
					count++
				}
			}
		case model.GapTooShort:
			for _, d := range gaps {
				if d < interval.Duration {
					count++
				}
			}
		case model.GapTooLong:
			for _, d := range gaps {
				if d > interval.Duration {
					count++
				}
			}
		}
	}
	if count > 0 {
		return Penalty{
			Level:   interval.Priority,
			Count:   count,
			Message: fmt.Sprintf("faculty %d has %d violations of %s", c.Faculty, count, interval.Kind),
		}
	}
	return Penalty{}
}
