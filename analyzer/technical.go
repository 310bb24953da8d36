package analyzer

import (
	"fmt"
	"math"
)

// Tolerance used when matching an image ratio against a platform's
// target ratio.
const ratioTolerance = 0.05

// Target ratios for platform surfaces.
const (
	ratioSquare     = 1.0
	ratioPortrait45 = 0.8
	ratioVertical   = 9.0 / 16.0
)

// EvaluateTechnical computes the objective image metrics for a post.
// It is a total function over positive inputs; the HTTP boundary is
// responsible for rejecting non-positive or non-finite values.
func EvaluateTechnical(width, height int, fileSizeMB float64) TechnicalAnalysis {
	return TechnicalAnalysis{
		Width:            width,
		Height:           height,
		AspectRatio:      AspectRatio(width, height),
		ResolutionRating: resolutionRating(width, height),
		FileSizeMB:       fileSizeMB,
		SizeRating:       sizeRating(fileSizeMB),
	}
}

// AspectRatio reduces width:height by their greatest common divisor and
// returns it as a "W:H" string, or "N/A" when either dimension is zero.
func AspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "N/A"
	}
	d := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/d, height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// resolutionRating requires both dimensions to clear a threshold, but a
// dimension failing only the Good bar drops the image one tier, not two:
// an asymmetric image with one side at 1080 or above is still Fair.
func resolutionRating(width, height int) string {
	switch {
	case width >= 1080 && height >= 1080:
		return ResolutionGood
	case width >= 600 && height >= 600, width >= 1080, height >= 1080:
		return ResolutionFair
	default:
		return ResolutionPoor
	}
}

// sizeRating applies sequential downgrades: a 12MB file ends at Fair,
// never Good. Both comparisons are strict.
func sizeRating(fileSizeMB float64) string {
	rating := SizeExcellent
	if fileSizeMB > 5 {
		rating = SizeGood
	}
	if fileSizeMB > 10 {
		rating = SizeFair
	}
	return rating
}

// RecommendPlatforms maps the image ratio to per-platform formatting
// advice. Recomputed on every call, never cached.
func RecommendPlatforms(width, height int) PlatformRecommendations {
	ratio := float64(width) / float64(height)

	var post string
	switch {
	case fitsFeed(ratio):
		post = "Ideal aspect ratio for feed posts (1:1 or 4:5)"
	case ratio > ratioSquare:
		post = "Image is wider than ideal; crop to 1:1 or 4:5 for feed posts"
	default:
		post = "Image is taller than ideal; crop to 4:5 for feed posts"
	}

	story := "Crop or pad to 9:16 for full-screen placement"
	if fitsFullScreen(ratio) {
		story = "Ideal 9:16 aspect ratio for full-screen placement"
	}

	return PlatformRecommendations{
		InstagramPost:  post,
		InstagramStory: story,
		TikTok:         story,
	}
}

func fitsFeed(ratio float64) bool {
	return math.Abs(ratio-ratioSquare) < ratioTolerance ||
		math.Abs(ratio-ratioPortrait45) < ratioTolerance
}

func fitsFullScreen(ratio float64) bool {
	return math.Abs(ratio-ratioVertical) < ratioTolerance
}
