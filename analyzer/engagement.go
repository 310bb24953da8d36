package analyzer

import (
	"math"
	"strings"
)

// Candidate labels for the zero-shot engagement classifier. Single-label
// mode: upstream scores sum to ~1.
const (
	LabelHigh     = "high engagement"
	LabelLow      = "low engagement"
	LabelModerate = "moderate engagement"
)

// CandidateLabels is the fixed label set sent to the classifier.
var CandidateLabels = []string{LabelHigh, LabelLow, LabelModerate}

// NoCaption is the sentinel used when no usable caption exists. A caption
// equal to it (or empty) skips classification entirely.
const NoCaption = "No caption available"

// AssessEngagement normalizes a raw classification into a bounded 0-100
// score and a qualitative level. A malformed classification degrades to a
// neutral default instead of failing the request.
func AssessEngagement(caption string, cls Classification) EngagementAnalysis {
	trimmed := strings.TrimSpace(caption)
	if trimmed == "" || strings.EqualFold(trimmed, NoCaption) {
		return EngagementAnalysis{Score: 30, Level: engagementLevel(30), Prediction: "unknown (no caption)"}
	}

	if len(cls.Labels) == 0 || len(cls.Labels) != len(cls.Scores) {
		return EngagementAnalysis{Score: 50, Level: engagementLevel(50), Prediction: "unknown (error)"}
	}

	best := 0
	for i := range cls.Scores {
		if cls.Scores[i] > cls.Scores[best] {
			best = i
		}
	}
	prediction := cls.Labels[best]
	confidence := cls.Scores[best]

	score := 50
	switch prediction {
	case LabelHigh:
		score = 70 + int(math.Round(confidence*30))
	case LabelLow:
		score = 40 - int(math.Round(confidence*30))
	case LabelModerate:
		score = 40 + int(math.Round(confidence*30))
	}
	score = clamp(score, 0, 100)

	return EngagementAnalysis{Score: score, Level: engagementLevel(score), Prediction: prediction}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// engagementLevel is a step function over fixed breakpoints.
func engagementLevel(score int) string {
	switch {
	case score >= 85:
		return LevelExcellent
	case score >= 70:
		return LevelVeryHigh
	case score >= 55:
		return LevelHigh
	case score >= 40:
		return LevelModerate
	case score >= 25:
		return LevelLow
	default:
		return LevelVeryLow
	}
}
