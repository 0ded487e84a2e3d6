package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/marmot-sub000/internal/model"
)

func buildInput(t *testing.T) *model.Input {
	rooms := []model.Room{{Name: "101"}, {Name: "102"}}
	slots := []model.TimeSlot{
		{Name: "MWF0900", Days: model.Monday | model.Wednesday | model.Friday, Start: 9 * time.Hour, Duration: time.Hour},
		{Name: "MWF1000", Days: model.Monday | model.Wednesday | model.Friday, Start: 10 * time.Hour, Duration: time.Hour},
		{Name: "TR0900", Days: model.Tuesday | model.Thursday, Start: 9 * time.Hour, Duration: 90 * time.Minute},
	}
	sections := []model.Section{
		{Name: "A", Rooms: []model.RoomWithOptionalPriority{{Room: 0}, {Room: 1}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}, {TimeSlot: 2}}},
		{Name: "B", Rooms: []model.RoomWithOptionalPriority{{Room: 0}, {Room: 1}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}, {TimeSlot: 2}}},
	}
	in, err := model.NewInput("Fall", rooms, slots, nil, sections, nil)
	require.NoError(t, err)
	return in
}

func TestCheckSoftConflict(t *testing.T) {
	in := buildInput(t)
	eval := NewEvaluator(in)
	crit := &model.SoftConflict{Priority: 12, Sections: [2]int{0, 1}}

	fired := eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 0, Room: 1}})
	require.True(t, fired.Fired())
	assert.Equal(t, uint8(12), fired[0].Level)

	notFired := eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 1}})
	assert.False(t, notFired.Fired())
}

func TestCheckAntiConflict(t *testing.T) {
	in := buildInput(t)
	eval := NewEvaluator(in)
	crit := &model.AntiConflict{Priority: 11, Single: 0, Group: []int{1}}

	assert.False(t, eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 0, Room: 1}}).Fired())
	assert.True(t, eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 1}}).Fired())
	assert.False(t, eval.Check(crit, []Assignment{{TimeSlot: -1, Room: -1}, {TimeSlot: 1, Room: 1}}).Fired())
}

func TestCheckRoomPreference(t *testing.T) {
	in := buildInput(t)
	eval := NewEvaluator(in)
	crit := &model.RoomPreference{Section: 0, Rooms: []model.RoomWithPriority{{Room: 1, Priority: 15}}}

	assert.True(t, eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 1}}).Fired())
	assert.False(t, eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}}).Fired())
}

func TestCheckFacultyRoomCount(t *testing.T) {
	in := buildInput(t)
	eval := NewEvaluator(in)
	crit := &model.FacultyRoomCount{Faculty: 0, Sections: []int{0, 1}, Priority: 17, Desired: 1}

	p := eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 1}})
	require.True(t, p.Fired())
	assert.Equal(t, 1, p[0].Count)

	assert.False(t, eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 0}}).Fired())
}

func TestCheckFacultySpreadDaysOff(t *testing.T) {
	in := buildInput(t)
	eval := NewEvaluator(in)
	crit := &model.FacultySpread{
		Faculty:     0,
		Sections:    []int{0, 1},
		DaysToCheck: model.Monday | model.Tuesday | model.Wednesday,
		DaysOff:     &model.DaysOffPref{Priority: 13, Desired: 2},
	}
	// both sections on Monday and Wednesday: only Tuesday is off out of 3
	// checked, one fewer than the 2 days off wanted.
	p := eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 0}})
	require.True(t, p.Fired())
	assert.Equal(t, uint8(13), p[0].Level)
}

func TestCheckFacultySpreadFiresMultipleSubPreferencesAtOnce(t *testing.T) {
	in := buildInput(t)
	eval := NewEvaluator(in)
	crit := &model.FacultySpread{
		Faculty:             0,
		Sections:            []int{0, 1},
		DaysToCheck:         model.Monday | model.Tuesday | model.Wednesday,
		MaxGapWithinCluster: 0,
		DaysOff:             &model.DaysOffPref{Priority: 13, Desired: 2},
		Intervals: []model.DistributionInterval{
			{Kind: model.ClusterTooLong, Priority: 10, Duration: 30 * time.Minute},
		},
	}
	// both sections meet on Monday back to back, one day off of 2 wanted, and each
	// individual meeting already exceeds the too-long threshold: DaysOff
	// fires at level 13 and ClusterTooLong fires at level 10 simultaneously.
	p := eval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 0}})
	require.Len(t, p, 2)
	levels := map[uint8]bool{p[0].Level: true, p[1].Level: true}
	assert.True(t, levels[13])
	assert.True(t, levels[10])
}

func TestCheckIntervalClusterTooShortForgivesOneClusterPerDay(t *testing.T) {
	in := buildInput(t)
	// three back-to-back-but-separated clusters on Monday, all under the
	// too-short threshold: the first is forgiven, the other two count.
	slots := []model.TimeSlot{
		{Name: "early", Days: model.Monday, Start: 8 * time.Hour, Duration: 10 * time.Minute},
		{Name: "mid", Days: model.Monday, Start: 10 * time.Hour, Duration: 10 * time.Minute},
		{Name: "late", Days: model.Monday, Start: 12 * time.Hour, Duration: 10 * time.Minute},
	}
	sections := []model.Section{
		{Name: "A", Rooms: []model.RoomWithOptionalPriority{{Room: 0}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}}},
		{Name: "B", Rooms: []model.RoomWithOptionalPriority{{Room: 0}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 1}}},
		{Name: "C", Rooms: []model.RoomWithOptionalPriority{{Room: 0}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 2}}},
	}
	localIn, err := model.NewInput("Fall", in.Rooms, slots, nil, sections, nil)
	require.NoError(t, err)
	localEval := NewEvaluator(localIn)

	crit := &model.FacultySpread{
		Faculty:             0,
		Sections:            []int{0, 1, 2},
		DaysToCheck:         model.Monday,
		MaxGapWithinCluster: 0,
		Intervals: []model.DistributionInterval{
			{Kind: model.ClusterTooShort, Priority: 14, Duration: time.Hour},
		},
	}
	p := localEval.Check(crit, []Assignment{{TimeSlot: 0, Room: 0}, {TimeSlot: 1, Room: 0}, {TimeSlot: 2, Room: 0}})
	require.Len(t, p, 1)
	assert.Equal(t, 2, p[0].Count, "one of the three too-short clusters is forgiven as a freebie")
}
