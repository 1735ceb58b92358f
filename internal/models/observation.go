package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Observation pairs one learner prediction with one vision judgment for a photograph.
// Rows are written once and never updated.
type Observation struct {
	ID                      string         `gorm:"primaryKey;size:36" json:"id"`
	UserID                  string         `gorm:"size:36;not null;index" json:"user_id"`
	ImageURL                string         `gorm:"type:text;not null" json:"image_url"`
	CloudTypeUser           string         `gorm:"size:64;not null" json:"cloud_type_user"`
	ReasonUser              string         `gorm:"type:text" json:"reason_user"`
	ScientificReasoningUser string         `gorm:"type:text" json:"scientific_reasoning_user"`
	CloudTypeAI             string         `gorm:"column:cloud_type_ai;size:64;not null" json:"cloud_type_ai"`
	CloudTypesAI            datatypes.JSON `gorm:"column:cloud_types_ai" json:"cloud_types_ai"`
	ReasonAI                string         `gorm:"column:reason_ai;type:text" json:"reason_ai"`
	ConfidenceAI            int            `gorm:"column:confidence_ai" json:"confidence_ai"`
	DetailedCritiqueAI      string         `gorm:"column:detailed_critique_ai;type:text" json:"detailed_critique_ai"`
	ScientificReasoningAI   string         `gorm:"column:scientific_reasoning_ai;type:text" json:"scientific_reasoning_ai"`
	ScoreAI                 *int           `gorm:"column:score_ai" json:"score_ai"`
	ScoreBreakdownAI        datatypes.JSON `gorm:"column:score_breakdown_ai" json:"score_breakdown_ai"`
	ScientificFeedbackAI    string         `gorm:"column:scientific_feedback_ai;type:text" json:"scientific_feedback_ai"`
	GradingFeedbackAI       string         `gorm:"column:grading_feedback_ai;type:text" json:"grading_feedback_ai"`
	CloudStateAI            datatypes.JSON `gorm:"column:cloud_state_ai" json:"cloud_state_ai"`
	EducationalContentAI    datatypes.JSON `gorm:"column:educational_content_ai" json:"educational_content_ai"`
	IsMatch                 bool           `gorm:"not null;index" json:"is_match"`
	Provenance              string         `gorm:"size:16;not null" json:"provenance"`
	IdempotencyKey          *string        `gorm:"size:64;uniqueIndex" json:"-"`
	ObservationDate         string         `gorm:"size:32" json:"observation_date"`
	ObservationTime         string         `gorm:"size:32" json:"observation_time"`
	Location                string         `gorm:"size:255" json:"location"`
	Weather                 string         `gorm:"type:text" json:"weather"`
	CreatedAt               time.Time      `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (o *Observation) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Score returns the rubric score, treating ungraded rows as zero.
func (o Observation) Score() int {
	if o.ScoreAI == nil {
		return 0
	}
	return *o.ScoreAI
}
