package dto

import (
	"time"

	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/models"
)

// ObservationCreateRequest saves one analysed photograph. The judgment comes from a
// stored analysis when AnalysisID is set, otherwise from the inline AIPrediction.
// Any client supplied isMatch is ignored.
type ObservationCreateRequest struct {
	AnalysisID     string             `json:"analysisId" validate:"omitempty,max=64"`
	ImageURL       string             `json:"imageUrl" validate:"required"`
	UserPrediction *PredictionPayload `json:"userPrediction" validate:"required"`
	AIPrediction   map[string]any     `json:"aiPrediction"`
}

// ObservationListRequest narrows the listing to another user's history (admins only).
type ObservationListRequest struct {
	UserID string `query:"userId" validate:"omitempty,max=64"`
}

// AIPredictionView is the stored judgment as returned to clients.
type AIPredictionView struct {
	CloudType           string                     `json:"cloudType"`
	CloudTypes          []grading.CloudDetection   `json:"cloudTypes"`
	Reason              string                     `json:"reason"`
	Confidence          int                        `json:"confidence"`
	Score               *int                       `json:"score"`
	DetailedCritique    string                     `json:"detailedCritique,omitempty"`
	ScientificReasoning string                     `json:"scientificReasoning,omitempty"`
	ScientificFeedback  string                     `json:"scientificFeedback"`
	GradingFeedback     string                     `json:"gradingFeedback,omitempty"`
	CloudState          grading.CloudState         `json:"cloudState"`
	EducationalContent  grading.EducationalContent `json:"educationalContent"`
}

// ObservationResponse serializes an observation for clients.
type ObservationResponse struct {
	ID                  string                   `json:"id"`
	ImageURL            string                   `json:"imageUrl"`
	UserPrediction      PredictionPayload        `json:"userPrediction"`
	AIPrediction        AIPredictionView         `json:"aiPrediction"`
	ScientificReasoning string                   `json:"scientificReasoning"`
	IsMatch             bool                     `json:"isMatch"`
	Provenance          string                   `json:"provenance"`
	Rubric              *grading.RubricBreakdown `json:"rubric,omitempty"`
	UserID              string                   `json:"userId"`
	CreatedAt           time.Time                `json:"createdAt"`
}

// ObservationSaveResponse reports whether the save created a new row.
type ObservationSaveResponse struct {
	Observation ObservationResponse `json:"observation"`
	Duplicate   bool                `json:"duplicate"`
}

// NewObservationResponse maps a stored observation.
func NewObservationResponse(observation models.Observation) ObservationResponse {
	response := ObservationResponse{
		ID:       observation.ID,
		ImageURL: observation.ImageURL,
		UserPrediction: PredictionPayload{
			CloudType:           observation.CloudTypeUser,
			Reason:              observation.ReasonUser,
			ScientificReasoning: observation.ScientificReasoningUser,
			Date:                observation.ObservationDate,
			Time:                observation.ObservationTime,
			Location:            observation.Location,
			Weather:             observation.Weather,
		},
		AIPrediction: AIPredictionView{
			CloudType:           observation.CloudTypeAI,
			CloudTypes:          grading.CloudTypesOf(observation),
			Reason:              observation.ReasonAI,
			Confidence:          observation.ConfidenceAI,
			Score:               observation.ScoreAI,
			DetailedCritique:    observation.DetailedCritiqueAI,
			ScientificReasoning: observation.ScientificReasoningAI,
			ScientificFeedback:  observation.ScientificFeedbackAI,
			GradingFeedback:     observation.GradingFeedbackAI,
			CloudState:          grading.CloudStateOf(observation),
			EducationalContent:  grading.EducationalContentOf(observation),
		},
		ScientificReasoning: observation.ScientificReasoningUser,
		IsMatch:             observation.IsMatch,
		Provenance:          observation.Provenance,
		UserID:              observation.UserID,
		CreatedAt:           observation.CreatedAt,
	}
	if response.AIPrediction.CloudTypes == nil {
		response.AIPrediction.CloudTypes = []grading.CloudDetection{}
	}
	if breakdown, ok := grading.BreakdownOf(observation); ok {
		response.Rubric = &breakdown
	}
	return response
}

// NewObservationResponses maps a list of observations.
func NewObservationResponses(observations []models.Observation) []ObservationResponse {
	responses := make([]ObservationResponse, 0, len(observations))
	for _, observation := range observations {
		responses = append(responses, NewObservationResponse(observation))
	}
	return responses
}
