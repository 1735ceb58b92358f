package grading

import (
	"fmt"
	"strings"
)

// MatchMode selects how a prediction is compared against the primary cloud.
type MatchMode string

const (
	// MatchLiteral compares labels byte for byte. This is the default.
	MatchLiteral MatchMode = "literal"
	// MatchNormalized ignores case, whitespace and a trailing parenthetical
	// such as "적운 (Cumulus)".
	MatchNormalized MatchMode = "normalized"
)

// ParseMatchMode validates a configured match mode. Empty selects MatchLiteral.
func ParseMatchMode(value string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", MatchLiteral:
		return MatchLiteral, nil
	case MatchNormalized:
		return MatchNormalized, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", value)
	}
}

// ComputeMatch reports whether the learner named exactly the primary cloud.
// No trimming or synonym handling is applied.
func ComputeMatch(user Prediction, ai Judgment) bool {
	return user.CloudType == ai.PrimaryCloud
}

// Match compares according to the mode.
func (m MatchMode) Match(user Prediction, ai Judgment) bool {
	if m != MatchNormalized {
		return ComputeMatch(user, ai)
	}
	left := normalizeLabel(user.CloudType)
	return left != "" && left == normalizeLabel(ai.PrimaryCloud)
}

func normalizeLabel(label string) string {
	if idx := strings.IndexAny(label, "(（"); idx >= 0 {
		label = label[:idx]
	}
	return strings.ToLower(strings.Join(strings.Fields(label), ""))
}
