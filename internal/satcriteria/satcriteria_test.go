package satcriteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/score"
)

func buildInput(t *testing.T) *model.Input {
	rooms := []model.Room{{Name: "101"}}
	slots := []model.TimeSlot{
		{Name: "MWF0900", Days: model.Monday, Start: 9 * time.Hour, Duration: time.Hour},
		{Name: "MWF1000", Days: model.Monday, Start: 10 * time.Hour, Duration: time.Hour},
	}
	sections := []model.Section{
		{Name: "A", Rooms: []model.RoomWithOptionalPriority{{Room: 0}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}}, HardConflicts: []int{1}},
		{Name: "B", Rooms: []model.RoomWithOptionalPriority{{Room: 0}}, TimeSlots: []model.TimeSlotWithOptionalPriority{{TimeSlot: 0}, {TimeSlot: 1}}, HardConflicts: []int{0}},
	}
	criteria := []model.Criterion{
		&model.RoomPreference{Section: 0, Rooms: []model.RoomWithPriority{{Room: 0, Priority: 15}}},
	}
	in, err := model.NewInput("Fall", rooms, slots, nil, sections, criteria)
	require.NoError(t, err)
	return in
}

func TestFromInputRegistersHardConflictOnce(t *testing.T) {
	in := buildInput(t)
	sc := FromInput(in)
	conflicts := sc.AtPriority(score.LevelForHardConflict)
	assert.Len(t, conflicts, 1, "a symmetric hard conflict pair must be registered exactly once")
}

func TestFromInputRegistersRoomPreference(t *testing.T) {
	in := buildInput(t)
	sc := FromInput(in)
	descriptors := sc.AtPriority(15)
	require.Len(t, descriptors, 1)
	assert.Equal(t, KindRoomPreference, descriptors[0].Kind)
}

func TestPrioritiesSkipsEmptyLevels(t *testing.T) {
	in := buildInput(t)
	sc := FromInput(in)
	for _, p := range sc.Priorities() {
		assert.NotEmpty(t, sc.AtPriority(p))
	}
}
