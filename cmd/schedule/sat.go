package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/russross/marmot-sub000/internal/logging"
	"github.com/russross/marmot-sub000/internal/persist"
	"github.com/russross/marmot-sub000/internal/satsolver"
)

// CommandSAT runs the SAT engine: search level by level for the smallest
// violation count that keeps the instance satisfiable, decode the model,
// and save the resulting schedule.
func CommandSAT(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		log.Fatalf("unknown option: %v", args)
	}
	cfg := loadConfig()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	input, err := persist.JSONInputLoader{}.Load(inputPath)
	if err != nil {
		log.Fatalf("loading %s: %v", inputPath, err)
	}

	log.Printf("starting SAT search")
	sched, err := satsolver.GenerateSchedule(input, logger)
	if err != nil {
		log.Fatalf("SAT search failed: %v", err)
	}
	log.Printf("SAT search finished; score %v", sched.Total())

	if err := (persist.JSONScheduleSaver{}).Save(outputPath, input, sched, comment); err != nil {
		log.Fatalf("saving %s: %v", outputPath, err)
	}
	log.Printf("wrote %s", outputPath)
}
