package satencode

import (
	"fmt"
	"sort"

	"github.com/russross/marmot-sub000/internal/cnf"
	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/satcriteria"
)

// EncodeDescriptor adds the clauses for one descriptor and returns the
// hallpass variable that, when true, excuses its violation. The caller
// collects these hallpass variables per priority level and caps how many
// may be true with cnf.Encoding.TotalizerAtMostK.
func EncodeDescriptor(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	switch d.Kind {
	case satcriteria.KindConflict:
		return encodeConflict(enc, input, v, d)
	case satcriteria.KindAntiConflict:
		return encodeAntiConflict(enc, input, v, d)
	case satcriteria.KindRoomPreference:
		return encodeRoomPreference(enc, v, d)
	case satcriteria.KindTimeSlotPreference:
		return encodeTimeSlotPreference(enc, v, d)
	case satcriteria.KindFacultyTooManyRooms:
		return encodeFacultyTooManyRooms(enc, input, v, d)
	case satcriteria.KindFacultyDaysOff:
		return encodeFacultyDaysOff(enc, input, v, d)
	case satcriteria.KindFacultyEvenlySpread:
		return encodeFacultyEvenlySpread(enc, input, v, d)
	case satcriteria.KindFacultyNoRoomSwitch:
		return encodeFacultyNoRoomSwitch(enc, input, v, d)
	default:
		return encodeFacultyInterval(enc, input, v, d)
	}
}

func encodeConflict(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	a, b := d.Sections[0], d.Sections[1]
	for _, ta := range input.Sections[a].TimeSlots {
		for _, tb := range input.Sections[b].TimeSlots {
			if !input.TimeSlotConflicts[ta.TimeSlot][tb.TimeSlot] {
				continue
			}
			enc.AddClause(-v.TimeVar(a, ta.TimeSlot), -v.TimeVar(b, tb.TimeSlot), hp)
		}
	}
	enc.RegisterProblem(hp, fmt.Sprintf("sections %d and %d conflict", a, b))
	return hp
}

// encodeAntiConflict fires hp unless single shares a conflicting time slot
// with at least one member of its group: it introduces one "shares with
// group member g" auxiliary variable per group member, then requires at
// least one of those (or hp) to hold.
func encodeAntiConflict(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	var shares []cnf.Literal
	for _, g := range d.Group {
		sharesWithG := enc.NewVar()
		for _, ts := range input.Sections[d.Single].TimeSlots {
			for _, tg := range input.Sections[g].TimeSlots {
				if !input.TimeSlotConflicts[ts.TimeSlot][tg.TimeSlot] {
					continue
				}
				enc.AddClause(-v.TimeVar(d.Single, ts.TimeSlot), -v.TimeVar(g, tg.TimeSlot), sharesWithG)
			}
		}
		// sharesWithG may only hold when g really sits at a time slot
		// conflicting with single's chosen slot.
		for _, ts := range input.Sections[d.Single].TimeSlots {
			clause := []cnf.Literal{-sharesWithG, -v.TimeVar(d.Single, ts.TimeSlot)}
			for _, tg := range input.Sections[g].TimeSlots {
				if input.TimeSlotConflicts[ts.TimeSlot][tg.TimeSlot] {
					clause = append(clause, v.TimeVar(g, tg.TimeSlot))
				}
			}
			enc.AddClause(clause...)
		}
		shares = append(shares, sharesWithG)
	}
	enc.AddClause(append(shares, hp)...)
	enc.RegisterProblem(hp, fmt.Sprintf("section %d shares no time slot with its anti-conflict group", d.Single))
	return hp
}

func encodeRoomPreference(enc *cnf.Encoding, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	section := d.Sections[0]
	enc.AddClause(-v.RoomVar(section, d.RoomPref.Room), hp)
	enc.RegisterProblem(hp, fmt.Sprintf("section %d used disfavored room %d", section, d.RoomPref.Room))
	return hp
}

func encodeTimeSlotPreference(enc *cnf.Encoding, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	section := d.Sections[0]
	enc.AddClause(-v.TimeVar(section, d.TimeSlotPref.TimeSlot), hp)
	enc.RegisterProblem(hp, fmt.Sprintf("section %d used disfavored time slot %d", section, d.TimeSlotPref.TimeSlot))
	return hp
}

// encodeFacultyTooManyRooms introduces one "faculty uses room r" variable
// per room any of the faculty's sections could use, binds each to the
// section/room variables that could make it true in both directions, then
// caps the number of simultaneously-true faculty-room variables at
// d.Desired via a totalizer, exactly as
// original_source/src/sat_encoders.rs's per-faculty room-count encoder
// does (totalizer_at_most_k(faculty_room_vars, desired, Some(hallpass))).
func encodeFacultyTooManyRooms(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()

	potential := map[int]bool{}
	for _, si := range d.Sections {
		for _, r := range input.Sections[si].Rooms {
			potential[r.Room] = true
		}
	}
	rooms := make([]int, 0, len(potential))
	for r := range potential {
		rooms = append(rooms, r)
	}
	sort.Ints(rooms)

	if len(rooms) <= 1 || d.Desired >= len(rooms) {
		enc.RegisterProblem(hp, fmt.Sprintf("faculty %d room-count preference (trivially satisfied)", d.Faculty))
		return hp
	}

	facultyRoomVar := make(map[int]cnf.Literal, len(rooms))
	for _, r := range rooms {
		facultyRoomVar[r] = enc.NewVar()
	}

	sectionRoomVars := make(map[int][]cnf.Literal, len(rooms))
	for _, si := range d.Sections {
		for _, r := range input.Sections[si].Rooms {
			if !potential[r.Room] {
				continue
			}
			rv := v.RoomVar(si, r.Room)
			enc.AddClause(-rv, facultyRoomVar[r.Room])
			sectionRoomVars[r.Room] = append(sectionRoomVars[r.Room], rv)
		}
	}
	for _, r := range rooms {
		vars := sectionRoomVars[r]
		if len(vars) == 0 {
			enc.AddClause(-facultyRoomVar[r])
			continue
		}
		enc.AddClause(append([]cnf.Literal{-facultyRoomVar[r]}, vars...)...)
	}

	lits := make([]cnf.Literal, 0, len(rooms))
	for _, r := range rooms {
		lits = append(lits, facultyRoomVar[r])
	}
	enc.TotalizerAtMostK(lits, d.Desired, hp)

	enc.RegisterProblem(hp, fmt.Sprintf("faculty %d teaches in too many distinct rooms", d.Faculty))
	return hp
}

// facultyTeachesOnDayVars allocates one "faculty has at least one section
// meeting on this day" variable per day in d.DaysToCheck and binds each in
// both directions: a section meeting that day forces the day's variable
// true, and the day's variable can only be true if some section/time-slot
// variable touching that day is true. The forward half keeps an at-most-k
// cap from undercounting taught days; the reverse half keeps
// encodeFacultyEvenlySpread from claiming a day is taught when it is not.
func facultyTeachesOnDayVars(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) map[model.Days]cnf.Literal {
	teaches := make(map[model.Days]cnf.Literal)
	meets := make(map[model.Days][]cnf.Literal)
	for _, day := range d.DaysToCheck.List() {
		teaches[day] = enc.NewVar()
	}
	for _, si := range d.Sections {
		for _, t := range input.Sections[si].TimeSlots {
			slot := input.TimeSlots[t.TimeSlot]
			tv := v.TimeVar(si, t.TimeSlot)
			for _, day := range d.DaysToCheck.List() {
				if slot.Days.Has(day) {
					enc.AddClause(-tv, teaches[day])
					meets[day] = append(meets[day], tv)
				}
			}
		}
	}
	for _, day := range d.DaysToCheck.List() {
		enc.AddClause(append([]cnf.Literal{-teaches[day]}, meets[day]...)...)
	}
	return teaches
}

// encodeFacultyDaysOff caps the number of days this faculty teaches on at
// DaysToCheck.Count()-Desired, via a totalizer over facultyTeachesOnDayVars,
// so a solution taught on more days than that is only reachable by paying
// the hallpass.
func encodeFacultyDaysOff(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	teaches := facultyTeachesOnDayVars(enc, input, v, d)

	days := d.DaysToCheck.List()
	maxTaughtDays := len(days) - d.Desired
	if maxTaughtDays < 0 {
		maxTaughtDays = 0
	}

	lits := make([]cnf.Literal, 0, len(days))
	for _, day := range days {
		lits = append(lits, teaches[day])
	}
	enc.TotalizerAtMostK(lits, maxTaughtDays, hp)

	enc.RegisterProblem(hp, fmt.Sprintf("faculty %d does not get %d days off", d.Faculty, d.Desired))
	return hp
}

// encodeFacultyEvenlySpread approximates "evenly spread across days" by
// forbidding any checked day from having a section while another checked
// day has none, using the same facultyTeachesOnDayVars as
// encodeFacultyDaysOff. This is coarser than the reference's exact
// max-minus-min class-count comparison (see DESIGN.md OQ1): it only
// catches the "some days fully idle, others not" case rather than every
// imbalance of more than one section, but it still ties the hallpass to
// a real derived condition instead of leaving it free.
func encodeFacultyEvenlySpread(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	teaches := facultyTeachesOnDayVars(enc, input, v, d)
	days := d.DaysToCheck.List()
	for i := 0; i < len(days); i++ {
		for j := 0; j < len(days); j++ {
			if i == j {
				continue
			}
			enc.AddClause(-teaches[days[i]], teaches[days[j]], hp)
		}
	}
	enc.RegisterProblem(hp, fmt.Sprintf("faculty %d's sections are unevenly spread across days", d.Faculty))
	return hp
}

// encodeFacultyNoRoomSwitch forbids, for every ordered pair of this
// faculty's sections, a placement where both meet on a common day with a
// gap no larger than MaxGapWithinCluster between them but in different
// rooms — unless hallpass is paid. This mirrors encodeConflict's shape
// (forbid this combination of variables unless hallpass) applied to the
// room-switch condition instead of a time overlap.
func encodeFacultyNoRoomSwitch(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	forEachOrderedAdjacentPair(input, v, d, func(a, b int, ta, tb model.TimeSlotWithOptionalPriority) {
		if input.TimeSlots[tb.TimeSlot].Start-input.TimeSlots[ta.TimeSlot].End() > d.MaxGapWithinCluster {
			return
		}
		for _, ra := range input.Sections[a].Rooms {
			for _, rb := range input.Sections[b].Rooms {
				if ra.Room == rb.Room {
					continue
				}
				enc.AddClause(-v.TimeVar(a, ta.TimeSlot), -v.RoomVar(a, ra.Room), -v.TimeVar(b, tb.TimeSlot), -v.RoomVar(b, rb.Room), hp)
			}
		}
	})
	enc.RegisterProblem(hp, fmt.Sprintf("faculty %d switches rooms within a cluster", d.Faculty))
	return hp
}

// encodeFacultyInterval handles the four cluster/gap length sub-preferences
// (too-short/too-long cluster, too-short/too-long gap). Like
// encodeFacultyNoRoomSwitch, it forbids a specific pair of time-slot
// assignments for two of the faculty's sections unless hallpass is paid;
// the per-pair gap is computed directly from each candidate time slot's
// Start/Duration since a shared day means the weekly recurrence lines up.
// This is a pairwise approximation of the reference's day-long cluster walk
// (see DESIGN.md OQ1): it cannot see a third section sitting between a and
// b, so it can miss or double-count within a longer cluster, but every
// firing is still driven by real assignment variables rather than a free
// one.
func encodeFacultyInterval(enc *cnf.Encoding, input *model.Input, v *Vars, d satcriteria.Descriptor) cnf.Literal {
	hp := enc.NewVar()
	forEachOrderedAdjacentPair(input, v, d, func(a, b int, ta, tb model.TimeSlotWithOptionalPriority) {
		slotA := input.TimeSlots[ta.TimeSlot]
		slotB := input.TimeSlots[tb.TimeSlot]
		gap := slotB.Start - slotA.End()

		var violates bool
		switch d.Kind {
		case satcriteria.KindFacultyClusterTooShort:
			violates = gap <= d.MaxGapWithinCluster && (slotB.End()-slotA.Start) < d.Duration
		case satcriteria.KindFacultyClusterTooLong:
			violates = gap <= d.MaxGapWithinCluster && (slotB.End()-slotA.Start) > d.Duration
		case satcriteria.KindFacultyGapTooShort:
			violates = gap > d.MaxGapWithinCluster && gap < d.Duration
		case satcriteria.KindFacultyGapTooLong:
			violates = gap > d.MaxGapWithinCluster && gap > d.Duration
		}
		if violates {
			enc.AddClause(-v.TimeVar(a, ta.TimeSlot), -v.TimeVar(b, tb.TimeSlot), hp)
		}
	})
	enc.RegisterProblem(hp, fmt.Sprintf("faculty %d has a cluster/gap length violation", d.Faculty))
	return hp
}

// forEachOrderedAdjacentPair calls fn once for every ordered pair of
// distinct sections belonging to d.Faculty and every combination of their
// eligible time slots where b's time slot starts no earlier than a's and
// the two share at least one day being checked. It is the shared scan
// behind encodeFacultyNoRoomSwitch and encodeFacultyInterval.
func forEachOrderedAdjacentPair(input *model.Input, v *Vars, d satcriteria.Descriptor, fn func(a, b int, ta, tb model.TimeSlotWithOptionalPriority)) {
	for _, a := range d.Sections {
		for _, b := range d.Sections {
			if a == b {
				continue
			}
			for _, ta := range input.Sections[a].TimeSlots {
				slotA := input.TimeSlots[ta.TimeSlot]
				for _, tb := range input.Sections[b].TimeSlots {
					slotB := input.TimeSlots[tb.TimeSlot]
					if slotA.Days&slotB.Days&d.DaysToCheck == 0 {
						continue
					}
					if slotB.Start < slotA.Start {
						continue
					}
					fn(a, b, ta, tb)
				}
			}
		}
	}
}
