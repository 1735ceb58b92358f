package grading

// Rubric point caps. A graded prediction always totals an integer in [0, MaxScore].
const (
	PointsParticipation       = 1
	PointsTypeMatch           = 1
	PointsVisualReasoning     = 2
	PointsScientificReasoning = 1
	MaxScore                  = PointsParticipation + PointsTypeMatch + PointsVisualReasoning + PointsScientificReasoning
)

// RubricBreakdown splits a rubric score into its criteria.
// Inferred is true when the split was reconstructed from the total rather than
// reported by the model; Consistent is false when no valid split reproduces the total.
type RubricBreakdown struct {
	Participation       int  `json:"participation"`
	TypeMatch           int  `json:"typeMatch"`
	VisualReasoning     int  `json:"visualReasoning"`
	ScientificReasoning int  `json:"scientificReasoning"`
	Total               int  `json:"total"`
	Inferred            bool `json:"inferred"`
	Consistent          bool `json:"consistent"`
}

func (b RubricBreakdown) withinCaps() bool {
	return between(b.Participation, PointsParticipation) &&
		between(b.TypeMatch, PointsTypeMatch) &&
		between(b.VisualReasoning, PointsVisualReasoning) &&
		between(b.ScientificReasoning, PointsScientificReasoning)
}

func (b RubricBreakdown) sum() int {
	return b.Participation + b.TypeMatch + b.VisualReasoning + b.ScientificReasoning
}

func between(value, max int) bool {
	return value >= 0 && value <= max
}

// InferBreakdown reconstructs which criteria a total score implies.
// Scientific reasoning credit is only assumed for a perfect score.
func InferBreakdown(score int, isMatch bool) RubricBreakdown {
	total := clampScore(score)
	breakdown := RubricBreakdown{Total: total, Inferred: true}

	remaining := total
	if remaining > 0 {
		breakdown.Participation = PointsParticipation
		remaining -= PointsParticipation
	}
	if isMatch && remaining > 0 {
		breakdown.TypeMatch = PointsTypeMatch
		remaining -= PointsTypeMatch
	}
	if total == MaxScore {
		breakdown.ScientificReasoning = PointsScientificReasoning
		remaining -= PointsScientificReasoning
	}
	breakdown.VisualReasoning = min(remaining, PointsVisualReasoning)
	remaining -= breakdown.VisualReasoning

	breakdown.Consistent = remaining == 0 && (!isMatch || breakdown.TypeMatch == PointsTypeMatch)
	return breakdown
}

// Breakdown returns the reported breakdown when the model supplied a valid one,
// otherwise the inferred one. It reports false for ungraded judgments.
func Breakdown(judgment Judgment, isMatch bool) (RubricBreakdown, bool) {
	if judgment.Score == nil {
		return RubricBreakdown{}, false
	}
	if judgment.ScoreBreakdown != nil {
		return *judgment.ScoreBreakdown, true
	}
	return InferBreakdown(*judgment.Score, isMatch), true
}

func breakdownValue(raw any, score int) (RubricBreakdown, bool) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return RubricBreakdown{}, false
	}

	breakdown := RubricBreakdown{
		Participation:       intValue(fields["participation"]),
		TypeMatch:           intValue(fields["typeMatch"]),
		VisualReasoning:     intValue(fields["visualReasoning"]),
		ScientificReasoning: intValue(fields["scientificReasoning"]),
		Total:               score,
		Consistent:          true,
	}
	if !breakdown.withinCaps() || breakdown.sum() != score {
		return RubricBreakdown{}, false
	}
	return breakdown, true
}

func intValue(raw any) int {
	value, ok := numberValue(raw)
	if !ok || value != float64(int(value)) {
		return -1
	}
	return int(value)
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}
