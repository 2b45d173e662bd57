package repalette

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/repalette/internal/seed"
)

const (
	// DefaultClusterCount is the cluster count used when callers have no preference.
	DefaultClusterCount = 4

	// DefaultSampleSize is the number of pixels the model is fitted on.
	DefaultSampleSize = 1000
)

// Algorithm represents the clustering algorithm used for extraction.
type Algorithm string

const (
	// AlgorithmGMM fits a Gaussian mixture model by expectation-maximisation.
	AlgorithmGMM Algorithm = "gmm"

	// AlgorithmKMeans uses the k-means partition the mixture is initialised from.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmGMM, AlgorithmKMeans}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// OutputPolicy selects how blended pixel values are post-processed.
type OutputPolicy string

const (
	// OutputRaw keeps real-valued, possibly out-of-range channels.
	OutputRaw OutputPolicy = "raw"
	// OutputClamp limits channels to [0, 255].
	OutputClamp OutputPolicy = "clamp"
	// OutputClampTruncate limits channels to [0, 255] and truncates toward zero.
	OutputClampTruncate OutputPolicy = "clamp-truncate"
)

// ValidOutputPolicies returns a list of valid output policies.
func ValidOutputPolicies() []OutputPolicy {
	return []OutputPolicy{OutputRaw, OutputClamp, OutputClampTruncate}
}

// SeedMode determines how the random seed for an extraction is chosen.
type SeedMode string

const (
	// SeedModeRandom uses a fresh non-deterministic seed on every call.
	SeedModeRandom = SeedMode(seed.ModeRandom)
	// SeedModeManual uses SeedConfig.Value on every call.
	SeedModeManual = SeedMode(seed.ModeManual)
	// SeedModeContent derives the seed from the image pixels.
	SeedModeContent = SeedMode(seed.ModeContent)
)

// SeedConfig holds configuration for seed generation.
type SeedConfig struct {
	Mode  SeedMode `toml:"mode"`
	Value *int64   `toml:"value,omitempty"` // only used when Mode is SeedModeManual
}

// ManualSeed returns a SeedConfig that always uses value.
func ManualSeed(value int64) SeedConfig {
	return SeedConfig{Mode: SeedModeManual, Value: &value}
}

// Config holds configuration for palette extraction and the operations built on it.
type Config struct {
	Algorithm Algorithm `toml:"algorithm"`

	// SampleSize is the number of pixels drawn, without replacement, to fit the
	// model. Images must have at least this many pixels and the cluster count
	// may not exceed it.
	SampleSize int `toml:"sample_size"`

	MaxIterations int     `toml:"max_iterations"`
	Tolerance     float64 `toml:"tolerance"`
	RegCovar      float64 `toml:"reg_covar"`

	// RequireConvergence turns a mixture that hits MaxIterations into ErrFitting.
	RequireConvergence bool `toml:"require_convergence"`

	Seed SeedConfig `toml:"seed"`

	ReduceOutput     OutputPolicy `toml:"reduce_output"`
	SubstituteOutput OutputPolicy `toml:"substitute_output"`

	// Source, when set, overrides Seed: every call draws from this one stream.
	Source rand.Source `toml:"-"`

	Logger hclog.Logger `toml:"-"`

	// OnWarning receives range warnings. When nil they are logged at warn level.
	OnWarning func(RangeWarning) `toml:"-"`
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm:        AlgorithmGMM,
		SampleSize:       DefaultSampleSize,
		MaxIterations:    100,
		Tolerance:        1e-3,
		RegCovar:         1e-6,
		Seed:             SeedConfig{Mode: SeedModeRandom},
		ReduceOutput:     OutputClampTruncate,
		SubstituteOutput: OutputRaw,
	}
}

// Validate validates the extractor configuration.
func (c Config) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s (valid algorithms: %v)", c.Algorithm, ValidAlgorithms())
	}
	if c.SampleSize < 1 {
		return fmt.Errorf("sample size must be at least 1, got %d", c.SampleSize)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.RegCovar < 0 {
		return fmt.Errorf("covariance regularisation must be non-negative, got %g", c.RegCovar)
	}
	if _, err := seed.ParseMode(string(c.Seed.Mode)); err != nil {
		return err
	}
	if c.Seed.Mode == SeedModeManual && c.Seed.Value == nil {
		return fmt.Errorf("seed value is required for manual seed mode")
	}
	for _, p := range []OutputPolicy{c.ReduceOutput, c.SubstituteOutput} {
		if !slices.Contains(ValidOutputPolicies(), p) {
			return fmt.Errorf("invalid output policy: %s (valid: %v)", p, ValidOutputPolicies())
		}
	}
	return nil
}

// DecodeConfig reads TOML from r on top of DefaultConfig and validates the result.
func DecodeConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// ParseConfig is DecodeConfig for a TOML document held in a string.
func ParseConfig(data string) (Config, error) {
	return DecodeConfig(strings.NewReader(data))
}
