// Package config loads qosroute's TOML run configuration and optional
// per-run YAML algorithm-parameter overrides, grounded on the teacher's
// cmd/main.go ForwardingConfig/loadConfig pattern (BurntSushi/toml) and
// dd0wney-graphdb's pkg/validation singleton-validator idiom
// (go-playground/validator/v10).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// GraphConfig supplies defaults for graphs generated rather than loaded
// from a file.
type GraphConfig struct {
	DefaultNodeCount      int     `toml:"default_node_count" validate:"gt=1"`
	DefaultConnectionProb float64 `toml:"default_connection_prob" validate:"gt=0,lte=1"`
}

// ExperimentConfig supplies defaults for the experiment runner.
type ExperimentConfig struct {
	NRepeats   int `toml:"n_repeats" validate:"gt=0"`
	TimeoutSec int `toml:"timeout_sec" validate:"gt=0"`
}

// AlgorithmsConfig carries each algorithm's TOML-level hyperparameter
// section. Only [algorithms.ga] is decoded. The CLI does not pass these
// values to the optimizers, which run with their own
// optimize.Optimizer.DefaultParams().
type AlgorithmsConfig struct {
	GA map[string]interface{} `toml:"ga"`
}

// RunConfig is the top-level shape of qosroute.toml.
type RunConfig struct {
	Graph      GraphConfig      `toml:"graph"`
	Experiment ExperimentConfig `toml:"experiment"`
	Algorithms AlgorithmsConfig `toml:"algorithms"`
}

// DefaultConfig returns the built-in defaults used when no TOML file is
// given, matching the values documented in the config file's own
// comments.
func DefaultConfig() *RunConfig {
	return &RunConfig{
		Graph: GraphConfig{
			DefaultNodeCount:      250,
			DefaultConnectionProb: 0.4,
		},
		Experiment: ExperimentConfig{
			NRepeats:   5,
			TimeoutSec: 60,
		},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("weights_sum_to_one", weightsSumToOne); err != nil {
		panic(fmt.Sprintf("config: failed to register weights_sum_to_one validator: %v", err))
	}
}

// LoadConfig reads and validates path as a RunConfig, falling back to
// DefaultConfig for any section entirely absent from the file.
func LoadConfig(path string) (*RunConfig, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return cfg, nil
}

// WeightOverride is the YAML shape accepted by --params: a single
// algorithm's hyperparameters for one run, plus the optional QoS weight
// triple it was requested under.
type WeightOverride struct {
	Algorithm string                 `yaml:"algorithm" validate:"required"`
	Params    map[string]interface{} `yaml:"params"`
	Weights   *WeightsOverride       `yaml:"weights,omitempty"`
}

// WeightsOverride mirrors metrics.Weights for YAML decoding; it is kept
// separate from metrics.Weights so this package does not need to import
// the metrics package just to parse a config file.
type WeightsOverride struct {
	Delay       float64 `yaml:"delay" validate:"gte=0"`
	Reliability float64 `yaml:"reliability" validate:"gte=0"`
	Resource    float64 `yaml:"resource" validate:"gte=0"`
}

// LoadParamsOverride parses a --params side-file without touching any
// TOML defaults.
func LoadParamsOverride(path string) (*WeightOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read params file %s: %w", path, err)
	}

	var override WeightOverride
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("config: failed to parse params file %s: %w", path, err)
	}

	if err := validate.Struct(&override); err != nil {
		return nil, formatValidationError(err)
	}
	if override.Weights != nil {
		if err := validate.Struct(override.Weights); err != nil {
			return nil, formatValidationError(err)
		}
		sum := override.Weights.Delay + override.Weights.Reliability + override.Weights.Resource
		if diff := sum - 1.0; diff < -1e-6 || diff > 1e-6 {
			return nil, fmt.Errorf("config: weights in %s must sum to 1.0, got %.6f", path, sum)
		}
	}

	return &override, nil
}

// weightsSumToOne is registered as a struct-tag validator for any field
// of type WeightsOverride tagged "weights_sum_to_one", for callers that
// embed it directly in a larger struct instead of going through
// LoadParamsOverride's explicit sum check.
func weightsSumToOne(fl validator.FieldLevel) bool {
	w, ok := fl.Field().Interface().(WeightsOverride)
	if !ok {
		return false
	}
	sum := w.Delay + w.Reliability + w.Resource
	return sum >= 1.0-1e-6 && sum <= 1.0+1e-6
}

// formatValidationError mirrors dd0wney-graphdb's pkg/validation: report
// only the first failing field in a short, actionable message.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	if len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", e.Field())
	case "gt":
		return fmt.Errorf("%s: must be greater than %s", e.Field(), e.Param())
	case "gte":
		return fmt.Errorf("%s: must be at least %s", e.Field(), e.Param())
	case "lte":
		return fmt.Errorf("%s: must not exceed %s", e.Field(), e.Param())
	case "weights_sum_to_one":
		return fmt.Errorf("%s: weights must sum to 1.0", e.Field())
	default:
		return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
	}
}
