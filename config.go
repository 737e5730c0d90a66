package fidelity

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the numeric configuration for a verification loop, in the
// shape embedders keep in their own config files. Zero fields take the
// package defaults. The core performs no file I/O; callers hand in bytes.
type Config struct {
	TargetScore       float64 `yaml:"target_score"`
	MaxIterations     int     `yaml:"max_iterations"`
	PlateauPatience   int     `yaml:"plateau_patience"`
	PlateauThreshold  float64 `yaml:"plateau_threshold"`
	RegressionEpsilon float64 `yaml:"regression_epsilon"`
	TextCeiling       float64 `yaml:"text_ceiling"`
	TextDensityMin    float64 `yaml:"text_density_min"`
	DiffTolerance     int     `yaml:"diff_tolerance"`
	MaxDimension      int     `yaml:"max_dimension"`
	MultiScale        *bool   `yaml:"multi_scale"`
}

// ParseConfig decodes a YAML loop configuration. Decoding rejects unknown
// keys; value validation happens when the config is turned into a
// Detector.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("fidelity: parse config: %w", err)
	}
	return c, nil
}

// Detector builds a convergence detector from the config. Invalid values
// (negative iteration caps, out-of-range targets) are rejected here, at
// construction, never inside Check.
func (c Config) Detector() (*Detector, error) {
	var opts []DetectorOption
	if c.TargetScore != 0 {
		opts = append(opts, WithTarget(c.TargetScore))
	}
	if c.MaxIterations != 0 {
		opts = append(opts, WithMaxIterations(c.MaxIterations))
	}
	if c.PlateauPatience != 0 || c.PlateauThreshold != 0 {
		patience := c.PlateauPatience
		if patience == 0 {
			patience = DefaultPlateauPatience
		}
		threshold := c.PlateauThreshold
		if threshold == 0 {
			threshold = DefaultPlateauThreshold
		}
		opts = append(opts, WithPlateau(patience, threshold))
	}
	if c.RegressionEpsilon != 0 {
		opts = append(opts, WithRegressionEpsilon(c.RegressionEpsilon))
	}
	if c.TextCeiling != 0 {
		densityMin := c.TextDensityMin
		if densityMin == 0 {
			densityMin = DefaultTextDensityMin
		}
		opts = append(opts, WithTextCeiling(c.TextCeiling, densityMin))
	}
	return NewDetector(opts...)
}

// Comparer builds an image comparer from the config.
func (c Config) Comparer() *ImageComparer {
	var opts []ImageOption
	if c.DiffTolerance != 0 {
		opts = append(opts, WithDiffTolerance(uint8(c.DiffTolerance)))
	}
	if c.MaxDimension != 0 {
		opts = append(opts, WithMaxDimension(c.MaxDimension))
	}
	if c.MultiScale != nil {
		opts = append(opts, WithMultiScale(*c.MultiScale))
	}
	return NewImageComparer(opts...)
}
