package policy

import (
	"math"
	"strings"
)

// StakeholderMode selects the framing lens applied to summary lines.
type StakeholderMode string

const (
	StakeholderCFO          StakeholderMode = "CFO"
	StakeholderPlantManager StakeholderMode = "PlantManager"
	StakeholderCISO         StakeholderMode = "CISO"
	StakeholderProductHead  StakeholderMode = "ProductHead"
	StakeholderGeneral      StakeholderMode = "General"
)

// ParseStakeholder maps free-form input ("Plant Manager", "cfo", ...) onto a
// StakeholderMode. Anything unrecognised becomes StakeholderGeneral.
func ParseStakeholder(s string) StakeholderMode {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	switch key {
	case "cfo":
		return StakeholderCFO
	case "plantmanager":
		return StakeholderPlantManager
	case "ciso":
		return StakeholderCISO
	case "producthead":
		return StakeholderProductHead
	default:
		return StakeholderGeneral
	}
}

// Lens returns the bracketed tag prepended to summary lines for this mode.
func (m StakeholderMode) Lens() string {
	switch m {
	case StakeholderCFO:
		return "[Financial Lens]"
	case StakeholderPlantManager:
		return "[Operational Lens]"
	case StakeholderCISO:
		return "[Risk Lens]"
	case StakeholderProductHead:
		return "[Product Lens]"
	default:
		return "[General Lens]"
	}
}

// RewriteForStakeholder prefixes every summary line with the mode's lens tag.
// Line count and order are preserved.
func RewriteForStakeholder(summary []string, mode StakeholderMode) []string {
	prefix := mode.Lens()
	out := make([]string, len(summary))
	for i, line := range summary {
		out[i] = prefix + " " + line
	}
	return out
}

// ConfidenceMode is the calibration policy applied to a strategy's base confidence.
type ConfidenceMode string

const (
	ConfidenceConservative ConfidenceMode = "Conservative"
	ConfidenceBalanced     ConfidenceMode = "Balanced"
	ConfidenceAggressive   ConfidenceMode = "Aggressive"
)

// ParseConfidence is case-insensitive; unknown values become Balanced.
func ParseConfidence(s string) ConfidenceMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative":
		return ConfidenceConservative
	case "aggressive":
		return ConfidenceAggressive
	default:
		return ConfidenceBalanced
	}
}

const (
	conservativeFloor = 0.45
	aggressiveCeiling = 0.95
	confidenceStep    = 0.10
)

// RecalibrateConfidence shifts base by one step in the mode's direction.
// Conservative never goes below 0.45 and Aggressive never above 0.95, even
// when base already sits past the bound.
func RecalibrateConfidence(mode ConfidenceMode, base float64) float64 {
	switch mode {
	case ConfidenceConservative:
		return math.Max(conservativeFloor, base-confidenceStep)
	case ConfidenceAggressive:
		return math.Min(aggressiveCeiling, base+confidenceStep)
	default:
		return base
	}
}
