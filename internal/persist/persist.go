// Package persist loads an Input and saves a Schedule as JSON, the way
// the teacher's own JSON round trip works: read the whole document into
// memory, and write it out atomically via a temp file followed by a
// rename so a crash mid-write never leaves a truncated file on disk.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/russross/marmot-sub000/internal/marmoterr"
	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/placement"
)

// InputLoader reads a problem instance from some backing store.
type InputLoader interface {
	Load(path string) (*model.Input, error)
}

// ScheduleSaver writes a schedule to some backing store.
type ScheduleSaver interface {
	Save(path string, input *model.Input, sched *placement.Schedule, comment string) error
}

// inputDocument is the on-disk JSON shape for an Input: every field is
// named, and room/time-slot/faculty/section references inside sections
// and criteria are by name, resolved to indices on load.
type inputDocument struct {
	TermName  string             `json:"term_name"`
	Rooms     []roomDoc          `json:"rooms"`
	TimeSlots []timeSlotDoc      `json:"time_slots"`
	Faculty   []facultyDoc       `json:"faculty"`
	Sections  []sectionDoc       `json:"sections"`
	Criteria  []json.RawMessage  `json:"criteria"`
}

type roomDoc struct {
	Name string `json:"name"`
}

type timeSlotDoc struct {
	Name     string `json:"name"`
	Days     string `json:"days"`
	Start    string `json:"start"`
	Duration string `json:"duration"`
}

type facultyDoc struct {
	Name     string   `json:"name"`
	Sections []string `json:"sections"`
}

type roomPrefDoc struct {
	Room     string `json:"room"`
	Priority *uint8 `json:"priority,omitempty"`
}

type timeSlotPrefDoc struct {
	TimeSlot string `json:"time_slot"`
	Priority *uint8 `json:"priority,omitempty"`
}

type sectionDoc struct {
	Name          string            `json:"name"`
	Rooms         []roomPrefDoc     `json:"rooms"`
	TimeSlots     []timeSlotPrefDoc `json:"time_slots"`
	Faculty       []string          `json:"faculty"`
	HardConflicts []string          `json:"hard_conflicts"`
}

// JSONInputLoader reads an Input from a JSON file on the local
// filesystem, including the soft Criteria list, whose entries are decoded
// by their "kind" field — see DESIGN.md for why a SQL-based loader is out
// of scope here.
type JSONInputLoader struct{}

func (JSONInputLoader) Load(path string) (*model.Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, marmoterr.Wrap(marmoterr.PersistenceFailure, err, "reading input file %q", path)
	}
	var doc inputDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "parsing input file %q", path)
	}
	return decodeInput(doc)
}

// ScheduleDocument is the on-disk JSON shape for a saved schedule: the
// term it belongs to, every section's placement by name, the score
// vector, and an optional free-text comment, matching the shape the
// teacher's own json.go round trips (course/room/time-slot triples)
// generalized with an explicit score and comment field.
type ScheduleDocument struct {
	TermName   string             `json:"term_name"`
	Comment    string             `json:"comment,omitempty"`
	Score      [20]int16          `json:"score"`
	Placements []PlacementRecord  `json:"placements"`
}

// PlacementRecord is one section's placement, named rather than indexed
// so the file stays readable and stable across reloads of a possibly
// reordered Input.
type PlacementRecord struct {
	Section  string `json:"section"`
	Room     string `json:"room,omitempty"`
	TimeSlot string `json:"time_slot,omitempty"`
}

// JSONScheduleSaver writes a Schedule to a JSON file atomically: it
// writes to a temp file in the same directory, then renames it into
// place, so a reader never observes a partially written file.
type JSONScheduleSaver struct{}

func (JSONScheduleSaver) Save(path string, input *model.Input, sched *placement.Schedule, comment string) error {
	doc := ScheduleDocument{
		TermName: input.TermName,
		Comment:  comment,
		Score:    sched.Total().Levels,
	}
	for si, sec := range input.Sections {
		a := sched.Assignment(si)
		rec := PlacementRecord{Section: sec.Name}
		if !a.Unplaced() {
			rec.Room = input.Rooms[a.Room].Name
			rec.TimeSlot = input.TimeSlots[a.TimeSlot].Name
		}
		doc.Placements = append(doc.Placements, rec)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return marmoterr.Wrap(marmoterr.PersistenceFailure, err, "encoding schedule for %q", path)
	}
	return writeAtomic(path, raw)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return marmoterr.Wrap(marmoterr.PersistenceFailure, err, "creating temp file for %q", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return marmoterr.Wrap(marmoterr.PersistenceFailure, err, "writing temp file for %q", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return marmoterr.Wrap(marmoterr.PersistenceFailure, err, "closing temp file for %q", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return marmoterr.Wrap(marmoterr.PersistenceFailure, err, "renaming temp file into place for %q", path)
	}
	return nil
}

func indexOfName(names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("name %q not found", name)
}

// criterionKindDoc is decoded first from each raw criterion entry to learn
// which concrete shape to decode it into, the way a one-pass tagged-union
// decode works when the tag and the payload share one JSON object.
type criterionKindDoc struct {
	Kind string `json:"kind"`
}

type softConflictDoc struct {
	Priority uint8      `json:"priority"`
	Sections [2]string  `json:"sections"`
}

type antiConflictDoc struct {
	Priority uint8    `json:"priority"`
	Single   string   `json:"single"`
	Group    []string `json:"group"`
}

type roomPreferenceDoc struct {
	Section string        `json:"section"`
	Rooms   []roomPrefDoc `json:"rooms"`
}

type timeSlotPreferenceDoc struct {
	Section   string            `json:"section"`
	TimeSlots []timeSlotPrefDoc `json:"time_slots"`
}

type distributionIntervalDoc struct {
	Kind     string `json:"kind"`
	Priority uint8  `json:"priority"`
	Duration string `json:"duration"`
}

type facultySpreadDoc struct {
	Faculty             string                    `json:"faculty"`
	Sections            []string                  `json:"sections"`
	DaysToCheck         string                    `json:"days_to_check"`
	MaxGapWithinCluster string                    `json:"max_gap_within_cluster"`
	DaysOffPriority     *uint8                    `json:"days_off_priority,omitempty"`
	DaysOffDesired      int                       `json:"days_off_desired,omitempty"`
	EvenlySpreadPriority *uint8                   `json:"evenly_spread_priority,omitempty"`
	NoRoomSwitchPriority *uint8                   `json:"no_room_switch_priority,omitempty"`
	Intervals           []distributionIntervalDoc `json:"intervals,omitempty"`
}

type facultyRoomCountDoc struct {
	Faculty  string   `json:"faculty"`
	Sections []string `json:"sections"`
	Priority uint8    `json:"priority"`
	Desired  int      `json:"desired"`
}

func decodeInput(doc inputDocument) (*model.Input, error) {
	roomNames := make([]string, len(doc.Rooms))
	rooms := make([]model.Room, len(doc.Rooms))
	for i, r := range doc.Rooms {
		roomNames[i] = r.Name
		rooms[i] = model.Room{Name: r.Name}
	}

	timeSlotNames := make([]string, len(doc.TimeSlots))
	slots := make([]model.TimeSlot, len(doc.TimeSlots))
	for i, t := range doc.TimeSlots {
		days, err := model.ParseDays(t.Days)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "time slot %q", t.Name)
		}
		start, err := time.ParseDuration(t.Start)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "time slot %q start", t.Name)
		}
		dur, err := time.ParseDuration(t.Duration)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "time slot %q duration", t.Name)
		}
		timeSlotNames[i] = t.Name
		slots[i] = model.TimeSlot{Name: t.Name, Days: days, Start: start, Duration: dur}
	}

	sectionNames := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		sectionNames[i] = s.Name
	}

	facultyNames := make([]string, len(doc.Faculty))
	faculty := make([]model.Faculty, len(doc.Faculty))
	for i, f := range doc.Faculty {
		facultyNames[i] = f.Name
		secs, err := indicesOfNames(sectionNames, f.Sections)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty %q", f.Name)
		}
		faculty[i] = model.Faculty{Name: f.Name, Sections: secs}
	}

	sections := make([]model.Section, len(doc.Sections))
	for i, s := range doc.Sections {
		var roomPrefs []model.RoomWithOptionalPriority
		for _, r := range s.Rooms {
			ri, err := indexOfName(roomNames, r.Room)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "section %q room", s.Name)
			}
			roomPrefs = append(roomPrefs, model.RoomWithOptionalPriority{Room: ri, Priority: r.Priority})
		}
		var timePrefs []model.TimeSlotWithOptionalPriority
		for _, t := range s.TimeSlots {
			ti, err := indexOfName(timeSlotNames, t.TimeSlot)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "section %q time slot", s.Name)
			}
			timePrefs = append(timePrefs, model.TimeSlotWithOptionalPriority{TimeSlot: ti, Priority: t.Priority})
		}
		facIdx, err := indicesOfNames(facultyNames, s.Faculty)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "section %q faculty", s.Name)
		}
		hardIdx, err := indicesOfNames(sectionNames, s.HardConflicts)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "section %q hard conflicts", s.Name)
		}
		sections[i] = model.Section{
			Name:          s.Name,
			Rooms:         roomPrefs,
			TimeSlots:     timePrefs,
			Faculty:       facIdx,
			HardConflicts: hardIdx,
		}
	}

	crits := make([]model.Criterion, 0, len(doc.Criteria))
	for _, raw := range doc.Criteria {
		c, err := decodeCriterion(raw, roomNames, timeSlotNames, facultyNames, sectionNames)
		if err != nil {
			return nil, err
		}
		crits = append(crits, c)
	}

	return model.NewInput(doc.TermName, rooms, slots, faculty, sections, crits)
}

func indicesOfNames(names, want []string) ([]int, error) {
	if len(want) == 0 {
		return nil, nil
	}
	out := make([]int, len(want))
	for i, w := range want {
		idx, err := indexOfName(names, w)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

func decodeCriterion(raw json.RawMessage, roomNames, timeSlotNames, facultyNames, sectionNames []string) (model.Criterion, error) {
	var kd criterionKindDoc
	if err := json.Unmarshal(raw, &kd); err != nil {
		return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding criterion kind")
	}

	switch kd.Kind {
	case "soft_conflict":
		var d softConflictDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding soft_conflict")
		}
		a, err := indexOfName(sectionNames, d.Sections[0])
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "soft_conflict section")
		}
		b, err := indexOfName(sectionNames, d.Sections[1])
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "soft_conflict section")
		}
		return &model.SoftConflict{Priority: d.Priority, Sections: [2]int{a, b}}, nil

	case "anti_conflict":
		var d antiConflictDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding anti_conflict")
		}
		single, err := indexOfName(sectionNames, d.Single)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "anti_conflict single")
		}
		group, err := indicesOfNames(sectionNames, d.Group)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "anti_conflict group")
		}
		return &model.AntiConflict{Priority: d.Priority, Single: single, Group: group}, nil

	case "room_preference":
		var d roomPreferenceDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding room_preference")
		}
		section, err := indexOfName(sectionNames, d.Section)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "room_preference section")
		}
		var rooms []model.RoomWithPriority
		for _, r := range d.Rooms {
			ri, err := indexOfName(roomNames, r.Room)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "room_preference room")
			}
			pr := uint8(0)
			if r.Priority != nil {
				pr = *r.Priority
			}
			rooms = append(rooms, model.RoomWithPriority{Room: ri, Priority: pr})
		}
		return &model.RoomPreference{Section: section, Rooms: rooms}, nil

	case "time_slot_preference":
		var d timeSlotPreferenceDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding time_slot_preference")
		}
		section, err := indexOfName(sectionNames, d.Section)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "time_slot_preference section")
		}
		var slots []model.TimeSlotWithPriority
		for _, t := range d.TimeSlots {
			ti, err := indexOfName(timeSlotNames, t.TimeSlot)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "time_slot_preference time slot")
			}
			pr := uint8(0)
			if t.Priority != nil {
				pr = *t.Priority
			}
			slots = append(slots, model.TimeSlotWithPriority{TimeSlot: ti, Priority: pr})
		}
		return &model.TimeSlotPreference{Section: section, TimeSlots: slots}, nil

	case "faculty_spread":
		var d facultySpreadDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding faculty_spread")
		}
		fi, err := indexOfName(facultyNames, d.Faculty)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_spread faculty")
		}
		secs, err := indicesOfNames(sectionNames, d.Sections)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_spread sections")
		}
		var days model.Days
		if d.DaysToCheck != "" {
			days, err = model.ParseDays(d.DaysToCheck)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_spread days_to_check")
			}
		}
		var gap time.Duration
		if d.MaxGapWithinCluster != "" {
			gap, err = time.ParseDuration(d.MaxGapWithinCluster)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_spread max_gap_within_cluster")
			}
		}
		var daysOff *model.DaysOffPref
		if d.DaysOffPriority != nil {
			daysOff = &model.DaysOffPref{Priority: *d.DaysOffPriority, Desired: d.DaysOffDesired}
		}
		var intervals []model.DistributionInterval
		for _, iv := range d.Intervals {
			dur, err := time.ParseDuration(iv.Duration)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_spread interval duration")
			}
			kind, err := parseDistributionIntervalKind(iv.Kind)
			if err != nil {
				return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_spread interval kind")
			}
			intervals = append(intervals, model.DistributionInterval{Kind: kind, Priority: iv.Priority, Duration: dur})
		}
		return &model.FacultySpread{
			Faculty:              fi,
			Sections:             secs,
			DaysToCheck:          days,
			MaxGapWithinCluster:  gap,
			DaysOff:              daysOff,
			EvenlySpreadPriority: d.EvenlySpreadPriority,
			NoRoomSwitchPriority: d.NoRoomSwitchPriority,
			Intervals:            intervals,
		}, nil

	case "faculty_room_count":
		var d facultyRoomCountDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "decoding faculty_room_count")
		}
		fi, err := indexOfName(facultyNames, d.Faculty)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_room_count faculty")
		}
		secs, err := indicesOfNames(sectionNames, d.Sections)
		if err != nil {
			return nil, marmoterr.Wrap(marmoterr.InputInvalid, err, "faculty_room_count sections")
		}
		return &model.FacultyRoomCount{Faculty: fi, Sections: secs, Priority: d.Priority, Desired: d.Desired}, nil

	default:
		return nil, marmoterr.New(marmoterr.InputInvalid, "unknown criterion kind %q", kd.Kind)
	}
}

func parseDistributionIntervalKind(s string) (model.DistributionIntervalKind, error) {
	switch s {
	case "cluster_too_short":
		return model.ClusterTooShort, nil
	case "cluster_too_long":
		return model.ClusterTooLong, nil
	case "gap_too_short":
		return model.GapTooShort, nil
	case "gap_too_long":
		return model.GapTooLong, nil
	default:
		return 0, fmt.Errorf("unknown distribution interval kind %q", s)
	}
}
