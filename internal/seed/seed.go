// Package seed derives the seeds that drive pixel sampling and cluster
// initialisation, so that palette extraction can be made reproducible.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"math/rand/v2"
	"slices"
)

// Mode determines how the seed for an extraction is generated.
type Mode string

const (
	// ModeRandom uses a non-deterministic seed (varies each call).
	ModeRandom Mode = "random"
	// ModeManual uses a caller-provided seed value.
	ModeManual Mode = "manual"
	// ModeContent derives the seed from a hash of the pixel data.
	ModeContent Mode = "content"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode   `toml:"mode"`
	Value *int64 `toml:"value,omitempty"` // only used when Mode is ModeManual
}

// Calculate determines the seed value for img based on the seed mode.
func Calculate(img image.Image, config Config) (int64, error) {
	switch config.Mode {
	case ModeContent:
		if img == nil {
			return 0, fmt.Errorf("image is required for content-based seed mode")
		}
		return CalculateContentSeed(img)
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeRandom, "":
		return GenerateRandomSeed(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// CalculateContentSeed hashes the image dimensions and a grid of its pixels.
// Identical pixel content gives the same seed regardless of where the image
// came from.
func CalculateContentSeed(img image.Image) (int64, error) {
	if img == nil {
		return 0, fmt.Errorf("image cannot be nil")
	}

	bounds := img.Bounds()
	hasher := sha256.New()

	dimBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(dimBytes[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are safe to convert
	binary.LittleEndian.PutUint32(dimBytes[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are safe to convert
	hasher.Write(dimBytes)

	// A 100x100 grid is enough to tell images apart.
	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	pixelBytes := make([]byte, 4)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			pixelBytes[0] = byte(r >> 8)
			pixelBytes[1] = byte(g >> 8)
			pixelBytes[2] = byte(b >> 8)
			pixelBytes[3] = byte(a >> 8)
			hasher.Write(pixelBytes)
		}
	}

	hash := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(hash[:8])), nil // #nosec G115 -- hash conversion is safe
}

// GenerateRandomSeed generates a non-deterministic seed.
func GenerateRandomSeed() int64 {
	// #nosec G404 -- the seed is intentionally non-deterministic
	return rand.Int64()
}

// NewRand returns a generator whose whole stream is fixed by seed.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed) // #nosec G115 -- bit pattern reuse is intended
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeRandom, ModeManual, ModeContent}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: random, manual, content)", s)
}
