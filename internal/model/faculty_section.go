package model

// Faculty is an instructor, identified by the sections they are assigned to
// teach.
type Faculty struct {
	Name     string
	Sections []int
}

// Section is a single class that must be assigned a room and a time slot.
type Section struct {
	Name string

	// Rooms and TimeSlots are the eligible room/time-slot choices for this
	// section, each optionally carrying a preference priority.
	Rooms     []RoomWithOptionalPriority
	TimeSlots []TimeSlotWithOptionalPriority

	// Faculty lists the faculty indices teaching this section.
	Faculty []int

	// HardConflicts lists section indices this section may never share a
	// time slot with.
	HardConflicts []int

	// Criteria lists the indices into Input.Criteria that name this
	// section as culpable. Populated by Input.computeNeighbors.
	Criteria []int

	// Neighbors lists every other section index that shares at least one
	// criterion with this section, in ascending order. Populated by
	// Input.computeNeighbors.
	Neighbors []int
}
