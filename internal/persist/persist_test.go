package persist

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/marmot-sub000/internal/model"
	"github.com/russross/marmot-sub000/internal/placement"
)

const sampleInput = `{
  "term_name": "Fall 2026",
  "rooms": [{"name": "101"}, {"name": "102"}],
  "time_slots": [
    {"name": "MWF0900", "days": "mwf", "start": "9h", "duration": "1h"},
    {"name": "MWF1000", "days": "mwf", "start": "10h", "duration": "1h"}
  ],
  "faculty": [{"name": "Knuth", "sections": ["CS101"]}],
  "sections": [
    {"name": "CS101", "rooms": [{"room": "101"}], "time_slots": [{"time_slot": "MWF0900"}, {"time_slot": "MWF1000"}], "faculty": ["Knuth"]},
    {"name": "CS102", "rooms": [{"room": "101"}, {"room": "102"}], "time_slots": [{"time_slot": "MWF0900"}, {"time_slot": "MWF1000"}]}
  ],
  "criteria": [
    {"kind": "soft_conflict", "priority": 12, "sections": ["CS101", "CS102"]}
  ]
}`

func TestJSONInputLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleInput), 0o644))

	in, err := JSONInputLoader{}.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Fall 2026", in.TermName)
	require.Len(t, in.Sections, 2)
	assert.Equal(t, "CS101", in.Sections[0].Name)
	require.Len(t, in.Criteria, 1)
	assert.Equal(t, model.KindSoftConflict, in.Criteria[0].Kind())
}

func TestJSONInputLoaderRejectsUnknownName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	bad := `{"term_name":"Fall","rooms":[],"time_slots":[],"faculty":[],"sections":[{"name":"A","rooms":[{"room":"nonexistent"}]}],"criteria":[]}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := JSONInputLoader{}.Load(path)
	assert.Error(t, err)
}

func TestJSONScheduleSaverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(inPath, []byte(sampleInput), 0o644))
	in, err := JSONInputLoader{}.Load(inPath)
	require.NoError(t, err)

	sched := placement.NewSchedule(in, rand.New(rand.NewSource(1)))
	sched.MoveSection(0, 0, 0)

	outPath := filepath.Join(dir, "schedule.json")
	require.NoError(t, JSONScheduleSaver{}.Save(outPath, in, sched, "test run"))

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc ScheduleDocument
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "Fall 2026", doc.TermName)
	assert.Equal(t, "test run", doc.Comment)
	require.Len(t, doc.Placements, 2)
	assert.Equal(t, "CS101", doc.Placements[0].Section)
	assert.Equal(t, "101", doc.Placements[0].Room)
	assert.Equal(t, "CS102", doc.Placements[1].Section)
	assert.Empty(t, doc.Placements[1].Room, "CS102 was never moved, so it stays unplaced")
}

func TestJSONScheduleSaverWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.json")
	in, err := JSONInputLoader{}.Load(writeSample(t, dir))
	require.NoError(t, err)

	sched := placement.NewSchedule(in, rand.New(rand.NewSource(1)))
	require.NoError(t, JSONScheduleSaver{}.Save(path, in, sched, ""))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "no leftover temp file after a successful save")
	}
}

func writeSample(t *testing.T, dir string) string {
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleInput), 0o644))
	return path
}
