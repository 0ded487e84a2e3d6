package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/russross/marmot-sub000/internal/localsearch"
	"github.com/russross/marmot-sub000/internal/persist"
	"github.com/russross/marmot-sub000/internal/placement"
)

// CommandLocal runs the local-search engine: warm up, climb, step down,
// then run the random walk for the --time budget, saving whichever
// schedule comes out best.
func CommandLocal(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		log.Fatalf("unknown option: %v", args)
	}
	cfg := loadConfig()

	budget, err := time.ParseDuration(solveBudget)
	if err != nil {
		log.Fatalf("parsing --time: %v", err)
	}
	bias := localsearch.BiasSchedule{
		MinBias:        cfg.MinBias,
		MaxBias:        cfg.MaxBias,
		BiasStep:       cfg.BiasStep,
		ReportInterval: cfg.ReportInterval,
		RebaseInterval: cfg.RebaseInterval,
	}
	climb := climbMaxSteps
	if climb <= 0 {
		climb = cfg.ClimbMaxSteps
	}
	stepDown := stepDownMaxSteps
	if stepDown <= 0 {
		stepDown = cfg.StepDownMaxSteps
	}

	input, err := persist.JSONInputLoader{}.Load(inputPath)
	if err != nil {
		log.Fatalf("loading %s: %v", inputPath, err)
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	sched := placement.NewSchedule(input, rng)

	log.Printf("starting warmup")
	localsearch.Warmup(sched, rng)
	log.Printf("warmup placed everything it could; score %v", sched.Total())

	log.Printf("starting hill climb (up to %d steps)", climb)
	localsearch.Climb(sched, rng, climb)
	log.Printf("climb finished; score %v", sched.Total())

	log.Printf("starting priority-chunked descent (up to %d steps)", stepDown)
	localsearch.StepDown(sched, rng, stepDown)
	log.Printf("step-down finished; score %v", sched.Total())

	log.Printf("starting random walk for %v", budget)
	onNewBest := func(found *placement.Schedule) {
		if err := (persist.JSONScheduleSaver{}).Save(outputPath, input, found, comment); err != nil {
			log.Printf("warning: failed to save new best to %s: %v", outputPath, err)
		}
	}
	best := localsearch.Solve(sched, rng, budget, bias, onNewBest)
	log.Printf("search finished; best score %v", best.Total())

	if err := (persist.JSONScheduleSaver{}).Save(outputPath, input, best, comment); err != nil {
		log.Fatalf("saving %s: %v", outputPath, err)
	}
	log.Printf("wrote %s", outputPath)
}
