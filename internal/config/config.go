// Package config holds the command-line configuration of minizip.
package config

import (
	"errors"
	"fmt"

	"github.com/idelchi/gogen/pkg/validator"

	"github.com/idelchi/minizip/internal/archive"
	"github.com/idelchi/minizip/internal/encryption"
)

// ErrOutputRequired is returned when a compress command has nowhere to write.
var ErrOutputRequired = errors.New("--output is required")

// Config is filled from flags and MINIZIP_* environment variables.
type Config struct {
	// Show prints the configuration and exits.
	Show bool `mapstructure:"show"`

	// Common flags
	Password    string `mapstructure:"password"     mask:"filled" validate:"exclusive=--ask-password" label:"--password"`
	AskPassword bool   `mapstructure:"ask-password" label:"--ask-password"`
	Algorithm   string `mapstructure:"algorithm"    validate:"algorithm"                          label:"--algorithm"`
	Parallel    int    `mapstructure:"parallel"     validate:"min=1"                              label:"--parallel"`
	Verbose     bool   `mapstructure:"verbose"      validate:"exclusive=--quiet"                  label:"--verbose"`
	Quiet       bool   `mapstructure:"quiet"        label:"--quiet"`
	Stats       bool   `mapstructure:"stats"`

	// Compress flags
	Output        string   `mapstructure:"output"`
	Level         int      `mapstructure:"compression-level" validate:"min=0,max=9" label:"--compression-level"`
	IncludeHidden bool     `mapstructure:"include-hidden"`
	Exclude       []string `mapstructure:"exclude"`
	ExcludeFrom   string   `mapstructure:"exclude-from"`
	BaseDir       string   `mapstructure:"base-dir"`
	Test          bool     `mapstructure:"test"`
	Dry           bool     `mapstructure:"dry-run"`

	// Extract flags
	Dest string `mapstructure:"dest"`

	// Positional arguments
	Files []string `validate:"min=1" label:"arguments"`

	// Set by commands, not by flags
	Compress bool `mapstructure:"-"`
}

// Display reports whether the configuration should be printed instead of run.
func (c *Config) Display() bool {
	return c.Show
}

// Validate validates config against the struct tags of Config. Failures caused by the
// compression level or the algorithm also match archive.ErrInvalidCompressionLevel
// and encryption.ErrUnknownAlgorithm.
func (c *Config) Validate(config any) error {
	validator := validator.NewValidator()

	if err := registerValidations(validator); err != nil {
		return err
	}

	errs := validator.Validate(config)

	if c.Compress && c.Output == "" && !c.Dry {
		errs = append(errs, ErrOutputRequired)
	}

	if len(errs) == 0 {
		return nil
	}

	if c.Level < archive.MinLevel || c.Level > archive.MaxLevel {
		errs = append([]error{archive.ErrInvalidCompressionLevel}, errs...)
	}

	if _, err := c.AlgorithmValue(); err != nil {
		errs = append([]error{encryption.ErrUnknownAlgorithm}, errs...)
	}

	return errors.Join(errs...)
}

// AlgorithmValue returns the parsed algorithm.
func (c *Config) AlgorithmValue() (encryption.Algorithm, error) {
	alg, err := encryption.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return alg, fmt.Errorf("--algorithm: %w", err)
	}

	return alg, nil
}
