// Package score implements the fixed-width lexicographic priority vector
// used to rank schedules: lower levels are more important, and a schedule
// with a nonzero count at a lower level always outranks one with nonzero
// counts only at higher levels, regardless of magnitude.
package score

import (
	"fmt"
	"strings"
)

const (
	// PriorityLevels is the fixed width of a Score vector.
	PriorityLevels = 20

	// LevelForUnplacedSection is the level that counts sections with no
	// time slot assigned. It is the only level any criterion may not emit.
	LevelForUnplacedSection uint8 = 0

	// LevelForHardConflict is the level reserved for sections that violate
	// a declared hard_conflicts relationship.
	LevelForHardConflict uint8 = 1

	// StartLevelForPreferences is the first level available to soft
	// criteria loaded from Input.
	StartLevelForPreferences uint8 = 10

	// LevelForRoomCount is the level reserved for FacultyRoomCount
	// violations.
	LevelForRoomCount uint8 = 19
)

// Level is a signed per-priority-level count. Signed so that deltas
// (speculative moves, undo) can be represented without a separate type.
type Level = int16

// Score is a fixed-width vector of per-level violation counts, ordered
// lexicographically with level 0 most significant.
type Score struct {
	Levels [PriorityLevels]Level
}

// New returns the zero Score.
func New() Score {
	return Score{}
}

// IsZero reports whether every level is zero.
func (s Score) IsZero() bool {
	for _, l := range s.Levels {
		if l != 0 {
			return false
		}
	}
	return true
}

// Unplaced returns the count of unplaced sections this score represents.
func (s Score) Unplaced() Level {
	return s.Levels[LevelForUnplacedSection]
}

// IsPlaced reports whether this score's unplaced count is zero. It does not
// imply the score is otherwise zero.
func (s Score) IsPlaced() bool {
	return s.Unplaced() == 0
}

// FirstNonzero returns the index of the most significant nonzero level, or
// PriorityLevels if the score is entirely zero.
func (s Score) FirstNonzero() uint8 {
	for i, l := range s.Levels {
		if l != 0 {
			return uint8(i)
		}
	}
	return PriorityLevels
}

// Add returns the component-wise sum of two scores.
func Add(a, b Score) Score {
	var out Score
	for i := range out.Levels {
		out.Levels[i] = a.Levels[i] + b.Levels[i]
	}
	return out
}

// Sub returns the component-wise difference a - b.
func Sub(a, b Score) Score {
	var out Score
	for i := range out.Levels {
		out.Levels[i] = a.Levels[i] - b.Levels[i]
	}
	return out
}

// AddLevel returns a copy of s with level p incremented by one.
func AddLevel(s Score, p uint8) Score {
	out := s
	out.Levels[p]++
	return out
}

// SubLevel returns a copy of s with level p decremented by one.
func SubLevel(s Score, p uint8) Score {
	out := s
	out.Levels[p]--
	return out
}

// Less reports whether a ranks strictly better than b: lexicographically
// smaller at the first level where they differ.
func Less(a, b Score) bool {
	for i := range a.Levels {
		if a.Levels[i] != b.Levels[i] {
			return a.Levels[i] < b.Levels[i]
		}
	}
	return false
}

// String renders the score as "zero" or a comma-separated "level×count"
// list skipping zero levels. Saved schedules store the levels as an array,
// not this string.
func (s Score) String() string {
	if s.IsZero() {
		return "zero"
	}
	var parts []string
	for i, l := range s.Levels {
		if l != 0 {
			parts = append(parts, fmt.Sprintf("%d×%d", i, l))
		}
	}
	return strings.Join(parts, ",")
}
