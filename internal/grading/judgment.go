package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prediction is the learner's structured guess submitted before grading.
type Prediction struct {
	CloudType           string `json:"cloudType"`
	Reason              string `json:"reason"`
	ScientificReasoning string `json:"scientificReasoning,omitempty"`
	Date                string `json:"date,omitempty"`
	Time                string `json:"time,omitempty"`
	Location            string `json:"location,omitempty"`
	Weather             string `json:"weather,omitempty"`
}

// CloudDetection is one multi-label detection reported by the vision model.
type CloudDetection struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// EducationalContent holds the explanatory text attached to a judgment.
type EducationalContent struct {
	Formation  string `json:"formation"`
	Atmosphere string `json:"atmosphere"`
	Weather    string `json:"weather"`
}

// CloudState describes the development stage the model observed.
type CloudState struct {
	State           string `json:"state"`
	Transition      string `json:"transition,omitempty"`
	StateConfidence int    `json:"stateConfidence"`
	StateReason     string `json:"stateReason"`
}

// Judgment is a validated vision-model verdict for a single photograph.
// Score is nil when the model did not grade the prediction.
type Judgment struct {
	PrimaryCloud        string             `json:"primaryCloud"`
	CloudTypes          []CloudDetection   `json:"cloudTypes"`
	Confidence          int                `json:"confidence"`
	ConfidenceReason    string             `json:"confidenceReason"`
	Description         string             `json:"description"`
	DetailedCritique    string             `json:"detailedCritique"`
	ScientificReasoning string             `json:"scientificReasoning"`
	ScientificFeedback  string             `json:"scientificFeedback"`
	EducationalContent  EducationalContent `json:"educationalContent"`
	CloudState          CloudState         `json:"cloudState"`
	Score               *int               `json:"score,omitempty"`
	ScoreBreakdown      *RubricBreakdown   `json:"scoreBreakdown,omitempty"`
	GradingFeedback     string             `json:"gradingFeedback"`
}

// ParseJudgment decodes raw model content and validates it.
func ParseJudgment(content []byte) (Judgment, error) {
	decoder := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(content)))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil || payload == nil {
		return Judgment{}, &ValidationError{Field: "payload", Err: ErrMalformedPayload}
	}

	return ValidateJudgment(payload)
}

// ValidateJudgment converts an untrusted decoded payload into a Judgment.
// The legacy single-label shape ({cloudType, confidence, description}) is accepted.
func ValidateJudgment(payload map[string]any) (Judgment, error) {
	primary := textValue(payload["primaryCloud"])
	if strings.TrimSpace(primary) == "" {
		primary = textValue(payload["cloudType"])
	}
	if strings.TrimSpace(primary) == "" {
		return Judgment{}, &ValidationError{Field: "primaryCloud", Err: ErrMissingField}
	}

	judgment := Judgment{
		PrimaryCloud:        primary,
		Confidence:          percentValue(payload["confidence"]),
		ConfidenceReason:    textValue(payload["confidenceReason"]),
		Description:         textValue(payload["description"]),
		DetailedCritique:    textValue(payload["detailedCritique"]),
		ScientificReasoning: textValue(payload["scientificReasoning"]),
		ScientificFeedback:  textValue(payload["scientificFeedback"]),
		GradingFeedback:     textValue(payload["gradingFeedback"]),
		EducationalContent:  educationalContentValue(payload["educationalContent"]),
		CloudState:          cloudStateValue(payload["cloudState"]),
	}
	if judgment.Description == "" {
		judgment.Description = textValue(payload["reason"])
	}

	judgment.CloudTypes = detectionsValue(payload["cloudTypes"])
	if len(judgment.CloudTypes) == 0 {
		judgment.CloudTypes = []CloudDetection{{Name: primary, Confidence: judgment.Confidence}}
	}

	if raw, ok := payload["score"]; ok && raw != nil {
		score, err := scoreValue(raw)
		if err != nil {
			return Judgment{}, err
		}
		judgment.Score = &score
		if breakdown, ok := breakdownValue(payload["scoreBreakdown"], score); ok {
			judgment.ScoreBreakdown = &breakdown
		}
	}

	return judgment, nil
}

func scoreValue(raw any) (int, error) {
	value, ok := numberValue(raw)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &ValidationError{Field: "score", Err: ErrMalformedScore}
	}

	rounded := math.Round(value)
	if rounded < 0 || rounded > MaxScore {
		return 0, &ValidationError{Field: "score", Err: fmt.Errorf("%w: %v outside [0,%d]", ErrMalformedScore, value, MaxScore)}
	}

	return int(rounded), nil
}

func detectionsValue(raw any) []CloudDetection {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	detections := make([]CloudDetection, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				detections = append(detections, CloudDetection{Name: v})
			}
		case map[string]any:
			name := textValue(v["name"])
			if name == "" {
				name = textValue(v["type"])
			}
			if name == "" {
				name = textValue(v["cloudType"])
			}
			if strings.TrimSpace(name) == "" {
				continue
			}
			detections = append(detections, CloudDetection{Name: name, Confidence: percentValue(v["confidence"])})
		}
	}
	return detections
}

func educationalContentValue(raw any) EducationalContent {
	fields, ok := raw.(map[string]any)
	if !ok {
		return EducationalContent{}
	}
	return EducationalContent{
		Formation:  textValue(fields["formation"]),
		Atmosphere: textValue(fields["atmosphere"]),
		Weather:    textValue(fields["weather"]),
	}
}

func cloudStateValue(raw any) CloudState {
	switch v := raw.(type) {
	case string:
		return CloudState{State: v}
	case map[string]any:
		return CloudState{
			State:           textValue(v["state"]),
			Transition:      textValue(v["transition"]),
			StateConfidence: percentValue(v["stateConfidence"]),
			StateReason:     textValue(v["stateReason"]),
		}
	default:
		return CloudState{}
	}
}

func textValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func numberValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// percentValue rounds a confidence into [0,100]; non-numeric input yields 0.
func percentValue(raw any) int {
	value, ok := numberValue(raw)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	rounded := math.Round(value)
	switch {
	case rounded < 0:
		return 0
	case rounded > 100:
		return 100
	default:
		return int(rounded)
	}
}
