package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/marmot-sub000/internal/marmoterr"
)

func TestParseDays(t *testing.T) {
	d, err := ParseDays("mwf")
	require.NoError(t, err)
	assert.True(t, d.Has(Monday))
	assert.True(t, d.Has(Wednesday))
	assert.True(t, d.Has(Friday))
	assert.False(t, d.Has(Tuesday))
	assert.Equal(t, 3, d.Count())

	_, err = ParseDays("mx")
	assert.Error(t, err)
}

func TestTimeSlotConflictsWith(t *testing.T) {
	a := TimeSlot{Days: Monday | Wednesday, Start: 9 * time.Hour, Duration: time.Hour}
	b := TimeSlot{Days: Monday, Start: 9*time.Hour + 30*time.Minute, Duration: time.Hour}
	c := TimeSlot{Days: Tuesday, Start: 9 * time.Hour, Duration: time.Hour}
	d := TimeSlot{Days: Wednesday, Start: 10 * time.Hour, Duration: time.Hour}

	assert.True(t, a.ConflictsWith(b), "overlapping time on a shared day should conflict")
	assert.False(t, a.ConflictsWith(c), "no shared day means no conflict regardless of time")
	assert.False(t, a.ConflictsWith(d), "back-to-back slots on a shared day should not conflict")
	assert.True(t, a.ConflictsWith(a), "a slot always conflicts with itself")
}

func makeTestInput(t *testing.T) *Input {
	rooms := []Room{{Name: "101"}, {Name: "102"}}
	slots := []TimeSlot{
		{Name: "MWF0900", Days: Monday | Wednesday | Friday, Start: 9 * time.Hour, Duration: time.Hour},
		{Name: "MWF1000", Days: Monday | Wednesday | Friday, Start: 10 * time.Hour, Duration: time.Hour},
	}
	faculty := []Faculty{{Name: "Ada", Sections: []int{0, 1}}}
	sections := []Section{
		{
			Name:      "CS101",
			Rooms:     []RoomWithOptionalPriority{{Room: 0}, {Room: 1}},
			TimeSlots: []TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}},
			Faculty:   []int{0},
		},
		{
			Name:      "CS102",
			Rooms:     []RoomWithOptionalPriority{{Room: 0}},
			TimeSlots: []TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}},
			Faculty:   []int{0},
		},
	}
	criteria := []Criterion{
		&SoftConflict{Priority: 10, Sections: [2]int{0, 1}},
	}
	in, err := NewInput("Fall", rooms, slots, faculty, sections, criteria)
	require.NoError(t, err)
	return in
}

func TestNewInputComputesNeighbors(t *testing.T) {
	in := makeTestInput(t)
	assert.Equal(t, []int{0}, in.Sections[0].Criteria)
	assert.Equal(t, []int{1}, in.Sections[0].Neighbors)
	assert.Equal(t, []int{0}, in.Sections[1].Neighbors)
}

func TestNewInputComputesTimeSlotConflicts(t *testing.T) {
	in := makeTestInput(t)
	assert.True(t, in.TimeSlotConflicts[0][0])
	assert.False(t, in.TimeSlotConflicts[0][1])
}

func TestNewInputRejectsOutOfRangeRoom(t *testing.T) {
	rooms := []Room{{Name: "101"}}
	slots := []TimeSlot{{Name: "S", Days: Monday, Start: 0, Duration: time.Hour}}
	sections := []Section{{Name: "X", Rooms: []RoomWithOptionalPriority{{Room: 5}}, TimeSlots: []TimeSlotWithOptionalPriority{{TimeSlot: 0}}}}
	_, err := NewInput("Fall", rooms, slots, nil, sections, nil)
	require.Error(t, err)
	assert.True(t, marmoterr.Is(err, marmoterr.InputInvalid))
}

func TestNewInputRejectsSelfHardConflict(t *testing.T) {
	rooms := []Room{{Name: "101"}}
	slots := []TimeSlot{{Name: "S", Days: Monday, Start: 0, Duration: time.Hour}}
	sections := []Section{{
		Name:          "X",
		Rooms:         []RoomWithOptionalPriority{{Room: 0}},
		TimeSlots:     []TimeSlotWithOptionalPriority{{TimeSlot: 0}},
		HardConflicts: []int{0},
	}}
	_, err := NewInput("Fall", rooms, slots, nil, sections, nil)
	require.Error(t, err)
	assert.True(t, marmoterr.Is(err, marmoterr.InputInvalid))
}

func TestComputeMinRooms(t *testing.T) {
	sections := []Section{
		{Rooms: []RoomWithOptionalPriority{{Room: 0}, {Room: 1}}},
		{Rooms: []RoomWithOptionalPriority{{Room: 1}, {Room: 2}}},
		{Rooms: []RoomWithOptionalPriority{{Room: 0}}},
	}
	// Section 2 requires room 0, so any hitting set must include it; room 0
	// also covers section 0, and room 1 or 2 covers section 1: minimum is 2.
	got := ComputeMinRooms(sections, []int{0, 1, 2})
	assert.Equal(t, 2, got)
}
