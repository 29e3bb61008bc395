package pdfsplitter

import (
	"fmt"
	"strconv"
	"strings"
)

// Scale is the oversampling factor applied to a page's point dimensions
type Scale int

const (
	ScaleLow Scale = iota + 1
	ScaleHigh
	ScaleVeryHigh
)

var scaleMultipliers = map[Scale]int{
	ScaleLow:      1,
	ScaleHigh:     2,
	ScaleVeryHigh: 3,
}

var scaleNames = map[Scale]string{
	ScaleLow:      "low",
	ScaleHigh:     "high",
	ScaleVeryHigh: "veryhigh",
}

// Multiplier returns the pixels-per-point factor, ok is false for an undefined scale
func (s Scale) Multiplier() (int, bool) {
	m, ok := scaleMultipliers[s]
	return m, ok
}

func (s Scale) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// ParseScale accepts a scale name (low, high, veryhigh) or its multiplier (1, 2, 3)
func ParseScale(value string) (Scale, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for scale, name := range scaleNames {
		if value == name {
			return scale, nil
		}
	}
	if n, err := strconv.Atoi(value); err == nil {
		for scale, m := range scaleMultipliers {
			if m == n {
				return scale, nil
			}
		}
	}
	return 0, &ValidationError{Op: "parse scale", Subject: value, Err: ErrInvalidScale}
}

// CompressionLevel is a JPEG compression tier. More compression means lower quality.
type CompressionLevel int

const (
	CompressionNone CompressionLevel = iota
	CompressionLow
	CompressionMedium
	CompressionHigh
)

// DefaultJPEGQuality is used for any level missing from the table
const DefaultJPEGQuality = 100

var jpegQualities = map[CompressionLevel]int{
	CompressionNone:   100,
	CompressionLow:    90,
	CompressionMedium: 50,
	CompressionHigh:   25,
}

var compressionNames = map[CompressionLevel]string{
	CompressionNone:   "none",
	CompressionLow:    "low",
	CompressionMedium: "medium",
	CompressionHigh:   "high",
}

// Quality returns the JPEG quality (0-100) for the level
func (c CompressionLevel) Quality() int {
	if q, ok := jpegQualities[c]; ok {
		return q
	}
	return DefaultJPEGQuality
}

func (c CompressionLevel) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CompressionLevel(%d)", int(c))
}

// ParseCompression accepts none, low, medium or high
func ParseCompression(value string) (CompressionLevel, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for level, name := range compressionNames {
		if value == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown compression level %q (want none, low, medium or high)", value)
}
