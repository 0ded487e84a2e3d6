// Package config loads the tuning knobs internal/localsearch exposes and
// the log level, the way noah-isme-sma-adp-api's
// pkg/config loads its own settings: viper defaults, overridable by an
// optional config file and by environment variables.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds the solver tuning parameters. Each field is loaded from the
// snake_case key of the same name (see setDefaults). cmd/schedule's flags
// are not bound to these keys: --log-level, --climb and --stepdown override
// LogLevel, ClimbMaxSteps and StepDownMaxSteps when set, and the local
// subcommand takes its time budget from --time rather than SolveBudget.
type Config struct {
	LogLevel string

	ClimbMaxSteps    int
	StepDownMaxSteps int

	SolveBudget time.Duration

	MinBias        int
	MaxBias        int
	BiasStep       int
	ReportInterval time.Duration
	RebaseInterval time.Duration

	RandomSeed int64
}

// Load builds a viper.Viper with this package's defaults, optionally
// layers in a config file at path (if non-empty), then layers in
// MARMOT_-prefixed environment variables, and unmarshals the result into
// a Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MARMOT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	cfg := &Config{
		LogLevel:         v.GetString("log_level"),
		ClimbMaxSteps:    v.GetInt("climb_max_steps"),
		StepDownMaxSteps: v.GetInt("step_down_max_steps"),
		SolveBudget:      v.GetDuration("solve_budget"),
		MinBias:          v.GetInt("min_bias"),
		MaxBias:          v.GetInt("max_bias"),
		BiasStep:         v.GetInt("bias_step"),
		ReportInterval:   v.GetDuration("report_interval"),
		RebaseInterval:   v.GetDuration("rebase_interval"),
		RandomSeed:       v.GetInt64("random_seed"),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("climb_max_steps", 10000)
	v.SetDefault("step_down_max_steps", 1000)
	v.SetDefault("solve_budget", "30s")
	v.SetDefault("min_bias", -20)
	v.SetDefault("max_bias", 20)
	v.SetDefault("bias_step", 5)
	v.SetDefault("report_interval", "1m")
	v.SetDefault("rebase_interval", "30s")
	v.SetDefault("random_seed", 1)
}
