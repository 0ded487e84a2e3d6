// Package localsearch implements the randomized local-search engine:
// greedy warm-up placement, steepest-descent hill climbing, priority-
// chunked random descent, and a time-budgeted random walk that tracks the
// best schedule seen. Every entry point takes an explicit *rand.Rand so
// runs are reproducible given a fixed seed, never reaching for a package-
// global random source.
package localsearch

import (
	"math/rand"
	"time"

	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/placement"
	"github.com/russross/marmot-sub000/internal/score"
)

// candidate is one eligible (room, time slot) pair for a section.
type candidate struct {
	room     int
	timeSlot int
}

func candidatesFor(input *model.Input, section int) []candidate {
	sec := input.Sections[section]
	out := make([]candidate, 0, len(sec.Rooms)*len(sec.TimeSlots))
	for _, r := range sec.Rooms {
		for _, t := range sec.TimeSlots {
			out = append(out, candidate{room: r.Room, timeSlot: t.TimeSlot})
		}
	}
	return out
}

// Warmup repeatedly finds the most-constrained unplaced section — the one
// with the fewest candidate room/time-slot combinations that require no
// displacement of anything already placed — and places it into one of
// those candidates, chosen uniformly at random via rng. It stops once no
// unplaced section has any legal no-displacement candidate left. Because
// every placement it makes is legal by construction, warm-up never bumps
// a section it already placed; any remaining conflicts are left for climb
// and step-down to resolve. Ties for most-constrained favor whichever
// section was found first, matching declaration order (see DESIGN.md
// OQ2).
func Warmup(sched *placement.Schedule, rng *rand.Rand) {
	for {
		section, legal := mostConstrainedUnplaced(sched)
		if section < 0 {
			return
		}
		c := legal[rng.Intn(len(legal))]
		sched.MoveSection(section, c.room, c.timeSlot)
	}
}

// legalCandidates returns every (room, time slot) combination eligible for
// section that placing it into right now would not displace anything
// already placed.
func legalCandidates(sched *placement.Schedule, section int) []candidate {
	var out []candidate
	for _, c := range candidatesFor(sched.Input(), section) {
		if !sched.HasHardConflict(section, c.room, c.timeSlot) {
			out = append(out, c)
		}
	}
	return out
}

// mostConstrainedUnplaced scans every unplaced section and returns whichever
// has the fewest legal no-displacement candidates, along with that list of
// candidates. It returns section -1 if every unplaced section (if any) has
// no legal candidate left.
func mostConstrainedUnplaced(sched *placement.Schedule) (int, []candidate) {
	bestSection := -1
	var bestLegal []candidate
	for section := range sched.Input().Sections {
		if !sched.Assignment(section).Unplaced() {
			continue
		}
		legal := legalCandidates(sched, section)
		if len(legal) == 0 {
			continue
		}
		if bestSection < 0 || len(legal) < len(bestLegal) {
			bestSection = section
			bestLegal = legal
		}
	}
	return bestSection, bestLegal
}

// Climb performs steepest-descent hill climbing: at each step it considers
// moving every placed or unplaced section to every eligible candidate,
// applies whichever single move most improves the score, and stops either
// when no improving move exists or maxSteps is reached. Recently moved
// sections are held in a short taboo list so climb does not immediately
// undo the move it just made while a better alternative is still visible
// elsewhere.
func Climb(sched *placement.Schedule, rng *rand.Rand, maxSteps int) {
	taboo := make(map[int]bool)
	climbWithTaboo(sched, rng, taboo, maxSteps)
}

// climbWithTaboo runs climb against a caller-owned taboo set (so a Solve
// big step can share taboo state across step_down and climb within the
// same step), returning every move it applied so the caller can push them
// onto its undo log.
func climbWithTaboo(sched *placement.Schedule, rng *rand.Rand, taboo map[int]bool, maxSteps int) []placement.PlacementLog {
	var logs []placement.PlacementLog
	for step := 0; step < maxSteps; step++ {
		bestSection, bestRoom, bestSlot := -1, -1, -1
		bestScore := sched.Total()
		improved := false

		for section := range sched.Input().Sections {
			if taboo[section] {
				continue
			}
			for _, c := range candidatesFor(sched.Input(), section) {
				cur := sched.Assignment(section)
				if cur.Room == c.room && cur.TimeSlot == c.timeSlot {
					continue
				}
				s := sched.SpeculativeMove(section, c.room, c.timeSlot)
				if score.Less(s, bestScore) {
					bestScore = s
					bestSection, bestRoom, bestSlot = section, c.room, c.timeSlot
					improved = true
				}
			}
		}

		if !improved {
			return logs
		}
		logs = append(logs, sched.MoveSection(bestSection, bestRoom, bestSlot))
		taboo[bestSection] = true
	}
	return logs
}

// StepDown performs priority-chunked random descent: it finds the most
// significant nonzero priority level in the current score, gathers every
// section culpable for a penalty at that level, and repeatedly proposes a
// random move for a randomly chosen section from that chunk, applying it
// when it does not make the score worse. It stops after iterations moves,
// or at the first proposal that would make the score worse or when no
// move is possible (see stepDownOnce). This lets the search focus
// its randomness on whichever priority level is currently the bottleneck
// instead of wasting proposals on already-satisfied levels.
func StepDown(sched *placement.Schedule, rng *rand.Rand, iterations int) {
	taboo := make(map[int]bool)
	for i := 0; i < iterations; i++ {
		if _, ok := stepDownOnce(sched, rng, taboo); !ok {
			return
		}
	}
}

// stepDownOnce performs a single random-descent move against the chunk of
// sections culpable at the current most-significant nonzero level,
// skipping taboo sections when a non-taboo candidate exists. It reports
// false, leaving the schedule unchanged, when the score is already zero,
// no section carries a penalty at that level, the chosen section has no
// candidates, or the randomly chosen move would make the score worse.
func stepDownOnce(sched *placement.Schedule, rng *rand.Rand, taboo map[int]bool) (placement.PlacementLog, bool) {
	level := sched.Total().FirstNonzero()
	if level == score.PriorityLevels {
		return placement.PlacementLog{}, false
	}
	chunk := sectionsAtLevel(sched, level)
	if len(chunk) == 0 {
		return placement.PlacementLog{}, false
	}
	eligible := chunk[:0:0]
	for _, s := range chunk {
		if !taboo[s] {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		eligible = chunk
	}
	section := eligible[rng.Intn(len(eligible))]
	cands := candidatesFor(sched.Input(), section)
	if len(cands) == 0 {
		return placement.PlacementLog{}, false
	}
	c := cands[rng.Intn(len(cands))]
	before := sched.Total()
	proposed := sched.SpeculativeMove(section, c.room, c.timeSlot)
	if score.Less(before, proposed) {
		return placement.PlacementLog{}, false
	}
	log := sched.MoveSection(section, c.room, c.timeSlot)
	taboo[section] = true
	return log, true
}

func sectionsAtLevel(sched *placement.Schedule, level uint8) []int {
	var out []int
	for section := range sched.Input().Sections {
		if sched.SectionScore(section).Levels[level] != 0 {
			out = append(out, section)
		}
	}
	return out
}

// BiasSchedule tunes the random walk's forward/backward bias bounce and
// its report/rebase tick intervals. Source constants are implementation
// choices (spec §9's open question); these match the teacher's own
// reportInterval and restartLocal defaults, scaled to a ±percentage-point
// bias instead of a fixed wall-clock restart.
type BiasSchedule struct {
	MinBias, MaxBias, BiasStep int
	ReportInterval             time.Duration
	RebaseInterval             time.Duration
}

// DefaultBiasSchedule returns the bias schedule Solve uses when the
// caller has no specific tuning in mind.
func DefaultBiasSchedule() BiasSchedule {
	return BiasSchedule{
		MinBias:        -20,
		MaxBias:        20,
		BiasStep:       5,
		ReportInterval: time.Minute,
		RebaseInterval: 30 * time.Second,
	}
}

// Solve runs a time-budgeted random walk over big steps, each either a
// forward step (step_down followed by climb, logged as a unit so it can
// be undone in one move) or a backward step (reverting the most recent
// big step). The probability of stepping forward is 50+bias out of 100;
// bias starts at cfg.MinBias and bounces between cfg.MinBias and
// cfg.MaxBias by cfg.BiasStep every cfg.ReportInterval. Finding a new
// global best resets the undo log, the taboo set, and the bias, and
// notifies onNewBest (which may be nil) so a caller can persist it
// immediately. Going cfg.RebaseInterval without an improvement clears the
// undo log and taboo set, re-anchoring the walk at the schedule's current
// (possibly worse-than-best) state. Solve returns when the time budget
// expires, the score reaches zero, or neither a forward nor a backward
// step is possible; running out of budget is not an error (see
// marmoterr.BudgetExhausted) — the caller receives the best schedule
// found.
func Solve(sched *placement.Schedule, rng *rand.Rand, budget time.Duration, cfg BiasSchedule, onNewBest func(*placement.Schedule)) *placement.Schedule {
	deadline := time.Now().Add(budget)
	best := sched.Clone()

	var bigSteps [][]placement.PlacementLog
	taboo := make(map[int]bool)
	bias := cfg.MinBias
	biasDir := 1
	lastReport := time.Now()
	lastImprovement := time.Now()

	for time.Now().Before(deadline) && !sched.Total().IsZero() {
		forward := rng.Intn(100) < 50+bias

		if forward {
			if littleSteps, ok := takeForwardStep(sched, rng, taboo); ok {
				bigSteps = append(bigSteps, littleSteps)
			} else if len(bigSteps) > 0 {
				forward = false
			} else {
				break
			}
		}
		if !forward {
			if len(bigSteps) == 0 {
				break
			}
			last := bigSteps[len(bigSteps)-1]
			bigSteps = bigSteps[:len(bigSteps)-1]
			for i := len(last) - 1; i >= 0; i-- {
				sched.RevertMove(last[i])
			}
			taboo = make(map[int]bool)
		}

		if score.Less(sched.Total(), best.Total()) {
			best = sched.Clone()
			bigSteps = nil
			taboo = make(map[int]bool)
			bias = cfg.MinBias
			biasDir = 1
			lastImprovement = time.Now()
			if onNewBest != nil {
				onNewBest(best)
			}
		}

		now := time.Now()
		if now.Sub(lastReport) >= cfg.ReportInterval {
			lastReport = now
			bias += biasDir * cfg.BiasStep
			if bias >= cfg.MaxBias {
				bias = cfg.MaxBias
				biasDir = -1
			} else if bias <= cfg.MinBias {
				bias = cfg.MinBias
				biasDir = 1
			}
		}
		if now.Sub(lastImprovement) >= cfg.RebaseInterval {
			bigSteps = nil
			taboo = make(map[int]bool)
			lastImprovement = now
		}
	}

	return best
}

// takeForwardStep performs one step_down move followed by a full climb,
// sharing the taboo set across both so climb does not immediately reverse
// the step_down move, returning every PlacementLog produced (in apply
// order) so the caller can revert the whole unit as one big step.
func takeForwardStep(sched *placement.Schedule, rng *rand.Rand, taboo map[int]bool) ([]placement.PlacementLog, bool) {
	first, ok := stepDownOnce(sched, rng, taboo)
	if !ok {
		return nil, false
	}
	logs := []placement.PlacementLog{first}
	logs = append(logs, climbWithTaboo(sched, rng, taboo, len(sched.Input().Sections)*len(sched.Input().Sections)+1)...)
	return logs, true
}
