package domain

import (
	"fmt"
	"strings"
)

// RiskLevel is the coarse severity classification of a crime event.
type RiskLevel string

// Valid risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel converts a raw string into a RiskLevel.
// Matching is case-insensitive. An empty string is rejected;
// callers should treat absence separately.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, nil
	case RiskMedium:
		return RiskMedium, nil
	case RiskHigh:
		return RiskHigh, nil
	default:
		return "", fmt.Errorf("%w: %q is not one of low, medium, high", ErrInvalidRiskLevel, s)
	}
}

// IsValid reports whether the risk level is one of the three known values.
func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}
