package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/russross/marmot-sub000/internal/persist"
	"github.com/russross/marmot-sub000/internal/score"
)

// CommandScore loads a previously saved schedule and reports its score
// vector and a by-section placement listing, without re-solving anything.
func CommandScore(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		log.Fatalf("unknown option: %v", args)
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		log.Fatalf("reading %s: %v", outputPath, err)
	}
	var doc persist.ScheduleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Fatalf("parsing %s: %v", outputPath, err)
	}

	s := score.Score{Levels: doc.Score}
	fmt.Printf("term: %s\n", doc.TermName)
	if doc.Comment != "" {
		fmt.Printf("comment: %s\n", doc.Comment)
	}
	fmt.Printf("score: %v\n", s)

	sections := append([]persist.PlacementRecord(nil), doc.Placements...)
	sort.Slice(sections, func(i, j int) bool { return sections[i].Section < sections[j].Section })
	for _, p := range sections {
		if p.Room == "" {
			fmt.Printf("  %-20s UNPLACED\n", p.Section)
			continue
		}
		fmt.Printf("  %-20s %-20s %s\n", p.Section, p.Room, p.TimeSlot)
	}
}
