package grading

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/noah-isme/cloudlab-api/internal/models"
)

// BuildObservation maps a prediction and an assessment into the record to persist.
// It has no side effects; ID, UserID and CreatedAt are assigned by the caller.
func BuildObservation(user Prediction, assessment Assessment, imageURL string, isMatch bool) models.Observation {
	judgment := assessment.Judgment

	observation := models.Observation{
		ImageURL:                imageURL,
		CloudTypeUser:           user.CloudType,
		ReasonUser:              user.Reason,
		ScientificReasoningUser: user.ScientificReasoning,
		CloudTypeAI:             judgment.PrimaryCloud,
		CloudTypesAI:            jsonColumn(judgment.CloudTypes),
		ReasonAI:                judgment.Description,
		ConfidenceAI:            judgment.Confidence,
		DetailedCritiqueAI:      judgment.DetailedCritique,
		ScientificReasoningAI:   judgment.ScientificReasoning,
		ScientificFeedbackAI:    judgment.ScientificFeedback,
		GradingFeedbackAI:       judgment.GradingFeedback,
		CloudStateAI:            jsonColumn(judgment.CloudState),
		EducationalContentAI:    jsonColumn(judgment.EducationalContent),
		IsMatch:                 isMatch,
		Provenance:              string(assessment.Provenance),
		ObservationDate:         user.Date,
		ObservationTime:         user.Time,
		Location:                user.Location,
		Weather:                 user.Weather,
	}
	if observation.Provenance == "" {
		observation.Provenance = string(ProvenanceSynthetic)
	}
	if judgment.Score != nil {
		score := *judgment.Score
		observation.ScoreAI = &score
		if judgment.ScoreBreakdown != nil {
			observation.ScoreBreakdownAI = jsonColumn(judgment.ScoreBreakdown)
		}
	}

	return observation
}

// CloudStateOf decodes the stored cloud state column.
func CloudStateOf(observation models.Observation) CloudState {
	var state CloudState
	if len(observation.CloudStateAI) == 0 {
		return state
	}
	if err := json.Unmarshal(observation.CloudStateAI, &state); err != nil {
		var legacy string
		if json.Unmarshal(observation.CloudStateAI, &legacy) == nil {
			state.State = legacy
		}
	}
	return state
}

// CloudTypesOf decodes the stored multi-label detections.
func CloudTypesOf(observation models.Observation) []CloudDetection {
	var detections []CloudDetection
	if len(observation.CloudTypesAI) > 0 {
		_ = json.Unmarshal(observation.CloudTypesAI, &detections)
	}
	return detections
}

// BreakdownOf returns the rubric split for a stored observation, preferring the
// breakdown the model reported. It reports false for ungraded observations.
func BreakdownOf(observation models.Observation) (RubricBreakdown, bool) {
	if observation.ScoreAI == nil {
		return RubricBreakdown{}, false
	}
	if len(observation.ScoreBreakdownAI) > 0 {
		var reported RubricBreakdown
		if err := json.Unmarshal(observation.ScoreBreakdownAI, &reported); err == nil && reported.Total == *observation.ScoreAI {
			return reported, true
		}
	}
	return InferBreakdown(*observation.ScoreAI, observation.IsMatch), true
}

// EducationalContentOf decodes the stored explanatory text.
func EducationalContentOf(observation models.Observation) EducationalContent {
	var content EducationalContent
	if len(observation.EducationalContentAI) > 0 {
		_ = json.Unmarshal(observation.EducationalContentAI, &content)
	}
	return content
}

// jsonColumn encodes plain structs that cannot fail to marshal.
func jsonColumn(value any) datatypes.JSON {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return datatypes.JSON(encoded)
}
