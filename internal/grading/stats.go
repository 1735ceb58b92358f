package grading

import (
	"math"

	"github.com/noah-isme/cloudlab-api/internal/models"
)

// Stats summarises a learner's observation history.
type Stats struct {
	Total           int `json:"totalObservations"`
	Correct         int `json:"correctPredictions"`
	AccuracyPercent int `json:"accuracy"`
	TotalScore      int `json:"totalScore"`
}

// AggregateStats totals observations. Accuracy is 0 for an empty history and
// ungraded observations contribute no score.
func AggregateStats(observations []models.Observation) Stats {
	stats := Stats{Total: len(observations)}
	for _, observation := range observations {
		if observation.IsMatch {
			stats.Correct++
		}
		stats.TotalScore += observation.Score()
	}
	if stats.Total > 0 {
		stats.AccuracyPercent = int(math.Round(float64(stats.Correct) / float64(stats.Total) * 100))
	}
	return stats
}
