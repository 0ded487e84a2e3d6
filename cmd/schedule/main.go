// Command schedule drives the timetabling solver: load a problem
// instance from JSON, run either the local-search or SAT engine, and
// save the result, matching the cobra subcommand tree the teacher's own
// cli.go builds for its gen/swap/score commands.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/russross/marmot-sub000/internal/config"
)

var (
	inputPath  = "input.json"
	outputPath = "schedule.json"
	configPath = ""
	logLevel   = ""
	comment    = ""

	solveBudget      = "30s"
	climbMaxSteps    = 0
	stepDownMaxSteps = 0
)

func main() {
	log.SetFlags(log.Ltime)

	cmdSchedule := &cobra.Command{
		Use:   "schedule",
		Short: "Course schedule generator",
		Long:  "A tool to generate course schedules by local search or SAT search,\nscored by a lexicographic priority vector of hard and soft constraints.",
	}
	cmdSchedule.PersistentFlags().StringVar(&inputPath, "in", inputPath, "input JSON file")
	cmdSchedule.PersistentFlags().StringVar(&outputPath, "out", outputPath, "output JSON file for the resulting schedule")
	cmdSchedule.PersistentFlags().StringVar(&configPath, "config", configPath, "optional config file (yaml/json/toml) overriding defaults")
	cmdSchedule.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level: debug, info, warn, error (default info)")

	cmdLocal := &cobra.Command{
		Use:   "local",
		Short: "generate a schedule with the local-search engine",
		Run:   CommandLocal,
	}
	cmdLocal.Flags().StringVarP(&solveBudget, "time", "t", solveBudget, "total time to spend searching")
	cmdLocal.Flags().IntVar(&climbMaxSteps, "climb", climbMaxSteps, "maximum hill-climbing steps after warmup (0 uses the config default)")
	cmdLocal.Flags().IntVar(&stepDownMaxSteps, "stepdown", stepDownMaxSteps, "maximum priority-chunked descent steps after climbing (0 uses the config default)")
	cmdLocal.Flags().StringVar(&comment, "comment", comment, "free-text comment saved alongside the schedule")
	cmdSchedule.AddCommand(cmdLocal)

	cmdSAT := &cobra.Command{
		Use:   "sat",
		Short: "generate a schedule with the SAT engine",
		Run:   CommandSAT,
	}
	cmdSAT.Flags().StringVar(&comment, "comment", comment, "free-text comment saved alongside the schedule")
	cmdSchedule.AddCommand(cmdSAT)

	cmdScore := &cobra.Command{
		Use:   "score",
		Short: "load a saved schedule and report its score",
		Run:   CommandScore,
	}
	cmdSchedule.AddCommand(cmdScore)

	cmdSchedule.Execute()
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}
