package analyzer

// ContentAnalysis is the complete analysis of an uploaded post image.
// It is built fresh per request and serialized directly to the caller.
type ContentAnalysis struct {
	Caption                 string                  `json:"caption"`
	Engagement              EngagementAnalysis      `json:"engagement"`
	Technical               TechnicalAnalysis       `json:"technical"`
	PlatformRecommendations PlatformRecommendations `json:"platformRecommendations"`
	Pros                    []string                `json:"pros"`
	Cons                    []string                `json:"cons"`
	Suggestions             []string                `json:"suggestions"`
	Recommendation          string                  `json:"recommendation"`
	Category                string                  `json:"category"`
	CategoryTips            []string                `json:"categoryTips"`
}

// TechnicalAnalysis holds the objective image metrics and their ratings.
type TechnicalAnalysis struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	AspectRatio      string  `json:"aspectRatio"`
	ResolutionRating string  `json:"resolutionRating"`
	FileSizeMB       float64 `json:"fileSizeMB"`
	SizeRating       string  `json:"sizeRating"`
}

// PlatformRecommendations maps platform surfaces to formatting advice.
type PlatformRecommendations struct {
	InstagramPost  string `json:"instagramPost"`
	InstagramStory string `json:"instagramStory"`
	TikTok         string `json:"tiktok"`
}

// EngagementAnalysis is the normalized engagement assessment.
type EngagementAnalysis struct {
	Score      int    `json:"score"`
	Level      string `json:"level"`
	Prediction string `json:"prediction"`
}

// Classification is the raw zero-shot classification result obtained
// from the upstream model over the fixed candidate label set.
type Classification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Input carries everything the engine needs for one analysis. The HTTP
// boundary validates the numeric fields before constructing it.
type Input struct {
	Width          int
	Height         int
	FileSizeMB     float64
	Caption        string
	Classification Classification
}

// Insights is the output of the insight synthesizer.
type Insights struct {
	Pros           []string
	Cons           []string
	Suggestions    []string
	Recommendation string
}

// Resolution ratings.
const (
	ResolutionGood = "Good"
	ResolutionFair = "Fair"
	ResolutionPoor = "Poor"
)

// File size ratings.
const (
	SizeExcellent = "Excellent"
	SizeGood      = "Good"
	SizeFair      = "Fair"
)

// Engagement levels, from strongest to weakest.
const (
	LevelExcellent = "Excellent"
	LevelVeryHigh  = "Very High"
	LevelHigh      = "High"
	LevelModerate  = "Moderate"
	LevelLow       = "Low"
	LevelVeryLow   = "Very Low"
)
