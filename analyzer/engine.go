// Package analyzer implements the content scoring engine: a pure,
// synchronous pipeline that turns image facts, a generated caption and a
// raw engagement classification into a complete post analysis.
package analyzer

// Engine runs the full scoring pipeline. It holds no state; concurrent
// use is safe by construction.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Analyze evaluates one post. It never fails: every stage is a total
// function over validated inputs, and upstream classification problems
// have already been degraded to defaults by AssessEngagement.
func (e *Engine) Analyze(in Input) *ContentAnalysis {
	technical := EvaluateTechnical(in.Width, in.Height, in.FileSizeMB)
	platforms := RecommendPlatforms(in.Width, in.Height)
	engagement := AssessEngagement(in.Caption, in.Classification)
	insights := GenerateInsights(in.Caption, engagement, technical)
	category, tips := ClassifyCategory(in.Caption)

	return &ContentAnalysis{
		Caption:                 in.Caption,
		Engagement:              engagement,
		Technical:               technical,
		PlatformRecommendations: platforms,
		Pros:                    insights.Pros,
		Cons:                    insights.Cons,
		Suggestions:             insights.Suggestions,
		Recommendation:          insights.Recommendation,
		Category:                category,
		CategoryTips:            tips,
	}
}
