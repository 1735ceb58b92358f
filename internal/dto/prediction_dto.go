package dto

import "github.com/noah-isme/cloudlab-api/internal/grading"

// PredictionPayload is the learner's prediction as submitted by clients.
type PredictionPayload struct {
	CloudType           string `json:"cloudType" validate:"required,max=64"`
	Reason              string `json:"reason" validate:"max=4000"`
	ScientificReasoning string `json:"scientificReasoning,omitempty" validate:"max=4000"`
	Date                string `json:"date,omitempty" validate:"max=32"`
	Time                string `json:"time,omitempty" validate:"max=32"`
	Location            string `json:"location,omitempty" validate:"max=255"`
	Weather             string `json:"weather,omitempty" validate:"max=1000"`
}

// ToPrediction converts the payload into the grading input.
func (p PredictionPayload) ToPrediction() grading.Prediction {
	return grading.Prediction(p)
}
