package ai

import "context"

// PredictionHint is the learner's guess forwarded to the model for grading.
type PredictionHint struct {
	CloudType           string
	Reason              string
	ScientificReasoning string
}

// VisionInput contains the photograph and optional prediction to judge.
// ImageData is either a data URI or an https URL.
type VisionInput struct {
	ImageData  string
	Prediction *PredictionHint
}

// VisionResult is the raw JSON content returned by the model.
type VisionResult struct {
	Content  []byte `json:"-"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// Judge describes a vision model capable of classifying and grading cloud photographs.
type Judge interface {
	Judge(ctx context.Context, input VisionInput) (VisionResult, error)
}
