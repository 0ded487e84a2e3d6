package satencode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/marmot-sub000/internal/cnf"
	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/satcriteria"
)

func buildInput(t *testing.T) *model.Input {
	rooms := []model.Room{{Name: "101"}, {Name: "102"}}
	slots := []model.TimeSlot{
		{Name: "MWF0900", Days: model.Monday, Start: 9 * time.Hour, Duration: time.Hour},
		{Name: "MWF1000", Days: model.Monday, Start: 10 * time.Hour, Duration: time.Hour},
	}
	sections := []model.Section{
		{Name: "A", Rooms: []model.RoomWithOptionalPriority{{Room: 0}, {Room: 1}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}}},
		{Name: "B", Rooms: []model.RoomWithOptionalPriority{{Room: 0}, {Room: 1}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}}},
	}
	in, err := model.NewInput("Fall", rooms, slots, nil, sections, nil)
	require.NoError(t, err)
	return in
}

func TestNewVarsAllocatesPerEligiblePair(t *testing.T) {
	in := buildInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	assert.NotZero(t, v.RoomVar(0, 0))
	assert.NotZero(t, v.TimeVar(1, 1))
}

func TestEncodeBasicConstraintsAddsExactlyOneClauses(t *testing.T) {
	in := buildInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	EncodeBasicConstraints(enc, in, v)
	assert.NotEmpty(t, enc.Clauses())
}

func TestEncodeRoomConflictsSkipsDeclaredHardConflicts(t *testing.T) {
	in := buildInput(t)
	in.Sections[0].HardConflicts = []int{1}
	in.Sections[1].HardConflicts = []int{0}
	enc := cnf.New()
	v := NewVars(enc, in)
	before := len(enc.Clauses())
	EncodeRoomConflicts(enc, in, v)
	after := len(enc.Clauses())
	assert.Equal(t, before, after, "declared hard conflicts must not get a duplicate room-conflict clause")
}

func TestEncodeConflictDescriptorRegistersProblem(t *testing.T) {
	in := buildInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	d := satcriteria.Descriptor{Kind: satcriteria.KindConflict, Priority: 1, Sections: []int{0, 1}}
	hp := EncodeDescriptor(enc, in, v, d)
	assert.NotZero(t, hp)
	assert.Len(t, enc.Problems(), 1)
}

// buildThreeRoomInput gives a faculty three sections, each eligible for a
// distinct potential room (plus one shared fallback room), so that
// FacultyTooManyRooms has genuine room-count choices to constrain.
func buildThreeRoomInput(t *testing.T) *model.Input {
	rooms := []model.Room{{Name: "101"}, {Name: "102"}, {Name: "103"}}
	slots := []model.TimeSlot{
		{Name: "MWF0900", Days: model.Monday, Start: 9 * time.Hour, Duration: time.Hour},
	}
	sections := []model.Section{
		{Name: "A", Rooms: []model.RoomWithOptionalPriority{{Room: 0}, {Room: 1}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}}},
		{Name: "B", Rooms: []model.RoomWithOptionalPriority{{Room: 1}, {Room: 2}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}}},
		{Name: "C", Rooms: []model.RoomWithOptionalPriority{{Room: 0}, {Room: 2}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}}},
	}
	in, err := model.NewInput("Fall", rooms, slots, nil, sections, nil)
	require.NoError(t, err)
	return in
}

func TestEncodeFacultyTooManyRoomsBindsRealVariables(t *testing.T) {
	in := buildThreeRoomInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	before := len(enc.Clauses())
	d := satcriteria.Descriptor{Kind: satcriteria.KindFacultyTooManyRooms, Priority: 5, Faculty: 0, Sections: []int{0, 1, 2}, Desired: 1}
	hp := EncodeDescriptor(enc, in, v, d)
	assert.NotZero(t, hp)
	assert.Greater(t, len(enc.Clauses()), before, "a real FacultyTooManyRooms encoding must add binding and totalizer clauses, not just allocate a free variable")
}

func TestEncodeFacultyTooManyRoomsTrivialWhenDesiredCoversEveryRoom(t *testing.T) {
	in := buildThreeRoomInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	before := len(enc.Clauses())
	d := satcriteria.Descriptor{Kind: satcriteria.KindFacultyTooManyRooms, Priority: 5, Faculty: 0, Sections: []int{0, 1, 2}, Desired: 3}
	hp := EncodeDescriptor(enc, in, v, d)
	assert.NotZero(t, hp)
	assert.Equal(t, before, len(enc.Clauses()), "desired at or above the potential room count can never be violated")
}

func TestEncodeFacultyDaysOffBindsTeachesOnDayVariables(t *testing.T) {
	in := buildThreeRoomInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	before := len(enc.Clauses())
	d := satcriteria.Descriptor{Kind: satcriteria.KindFacultyDaysOff, Priority: 6, Faculty: 0, Sections: []int{0, 1, 2}, DaysToCheck: model.Monday | model.Tuesday, Desired: 1}
	hp := EncodeDescriptor(enc, in, v, d)
	assert.NotZero(t, hp)
	assert.Greater(t, len(enc.Clauses()), before, "the days-off hallpass must be bound to real teaches-on-day variables")
}

func TestEncodeFacultyNoRoomSwitchAddsPairClauses(t *testing.T) {
	in := buildThreeRoomInput(t)
	enc := cnf.New()
	v := NewVars(enc, in)
	before := len(enc.Clauses())
	d := satcriteria.Descriptor{Kind: satcriteria.KindFacultyNoRoomSwitch, Priority: 7, Faculty: 0, Sections: []int{0, 1, 2}, DaysToCheck: model.Monday, MaxGapWithinCluster: time.Hour}
	hp := EncodeDescriptor(enc, in, v, d)
	assert.NotZero(t, hp)
	assert.Greater(t, len(enc.Clauses()), before, "the no-room-switch hallpass must be bound to real section room/time variables")
}
