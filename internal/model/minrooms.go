package model

// ComputeMinRooms returns the minimum number of distinct rooms that could
// possibly cover every section in sectionIndices, given each section's
// eligible room set. This is a minimum hitting set: the smallest k such
// that some k rooms together are eligible for all of the sections, a
// lower bound on a faculty member's distinct room count. The JSON loader
// does not call it; FacultyRoomCount criteria take their Desired count
// from the input file.
//
// The search is brute force over growing subset sizes, which is fine in
// practice because faculty rarely have more than a handful of eligible
// rooms; it mirrors the reference loader's own brute-force combinations
// search.
func ComputeMinRooms(sections []Section, sectionIndices []int) int {
	roomSets := make([][]int, 0, len(sectionIndices))
	universe := map[int]bool{}
	for _, si := range sectionIndices {
		rooms := make([]int, 0, len(sections[si].Rooms))
		for _, r := range sections[si].Rooms {
			rooms = append(rooms, r.Room)
			universe[r.Room] = true
		}
		if len(rooms) == 0 {
			// A section with no eligible rooms needs no room, so it
			// places no demand on the hitting set and is skipped.
			continue
		}
		roomSets = append(roomSets, rooms)
	}
	if len(roomSets) == 0 {
		return 0
	}

	allRooms := make([]int, 0, len(universe))
	for r := range universe {
		allRooms = append(allRooms, r)
	}

	for k := 1; k <= len(allRooms); k++ {
		if hittingSetOfSizeExists(roomSets, allRooms, k) {
			return k
		}
	}
	return len(allRooms)
}

// hittingSetOfSizeExists reports whether some k-element subset of
// candidates intersects every set in roomSets.
func hittingSetOfSizeExists(roomSets [][]int, candidates []int, k int) bool {
	chosen := make([]int, 0, k)
	var recurse func(start int) bool
	recurse = func(start int) bool {
		if len(chosen) == k {
			return coversAll(roomSets, chosen)
		}
		remaining := k - len(chosen)
		for i := start; i <= len(candidates)-remaining; i++ {
			chosen = append(chosen, candidates[i])
			if recurse(i + 1) {
				return true
			}
			chosen = chosen[:len(chosen)-1]
		}
		return false
	}
	return recurse(0)
}

func coversAll(roomSets [][]int, chosen []int) bool {
	chosenSet := make(map[int]bool, len(chosen))
	for _, r := range chosen {
		chosenSet[r] = true
	}
	for _, set := range roomSets {
		hit := false
		for _, r := range set {
			if chosenSet[r] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
