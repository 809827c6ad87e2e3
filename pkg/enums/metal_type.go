package enums

import (
	"fmt"
	"strings"
)

// MetalType classifies an order line by the metal it is cast in.
type MetalType string

const (
	MetalGold    MetalType = "gold"
	MetalSilver  MetalType = "silver"
	MetalBronze  MetalType = "bronze"
	MetalUnknown MetalType = "unknown"
)

var validMetalTypes = []MetalType{
	MetalGold,
	MetalSilver,
	MetalBronze,
	MetalUnknown,
}

// Keyword tables for metal inference. Categories are checked in this fixed
// order; the first category with any matching keyword wins, so text naming
// both gold and silver classifies as gold.
var metalKeywords = []struct {
	metal    MetalType
	keywords []string
}{
	{MetalGold, []string{"gold", "14k", "18k", "10k"}},
	{MetalSilver, []string{"silver", "sterling", "925"}},
	{MetalBronze, []string{"bronze", "brass"}},
}

// String implements fmt.Stringer.
func (m MetalType) String() string {
	return string(m)
}

// IsValid reports whether the metal type is recognized.
func (m MetalType) IsValid() bool {
	for _, candidate := range validMetalTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// DisplayName returns the label shown to fulfillment staff.
func (m MetalType) DisplayName() string {
	switch m {
	case MetalGold:
		return "Gold Plated"
	case MetalSilver:
		return "Silver"
	case MetalBronze:
		return "Bronze"
	default:
		return "Unknown"
	}
}

// ParseMetalType converts a raw string into a MetalType.
func ParseMetalType(value string) (MetalType, error) {
	for _, candidate := range validMetalTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid metal type %q", value)
}

// InferMetalType classifies free text (item name plus variant text) by
// case-insensitive substring match against the keyword table.
func InferMetalType(text string) MetalType {
	lower := strings.ToLower(text)
	for _, entry := range metalKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.metal
			}
		}
	}
	return MetalUnknown
}
