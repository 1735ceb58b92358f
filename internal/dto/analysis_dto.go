package dto

import "github.com/noah-isme/cloudlab-api/internal/grading"

// AnalyzeRequest asks the vision judge to classify, and optionally grade, a photograph.
type AnalyzeRequest struct {
	ImageData  string             `json:"imageData" validate:"required"`
	Prediction *PredictionPayload `json:"prediction"`
	Demo       bool               `json:"demo"`
}

// AnalyzeResponse carries the judgment together with its provenance.
type AnalyzeResponse struct {
	AnalysisID string                   `json:"analysisId"`
	Provenance grading.Provenance       `json:"provenance"`
	Synthetic  bool                     `json:"synthetic"`
	Judgment   grading.Judgment         `json:"judgment"`
	IsMatch    *bool                    `json:"isMatch,omitempty"`
	Rubric     *grading.RubricBreakdown `json:"rubric,omitempty"`
	Notice     string                   `json:"notice,omitempty"`
}
