package analyzer

import (
	"sort"
	"strings"
)

// scoredInsight is an ephemeral (text, priority) pair used only while
// ranking candidate pros and cons.
type scoredInsight struct {
	text  string
	score int
}

// Keyword families scanned case-insensitively against the caption.
var (
	positiveSubjectKeywords = []string{
		"person", "people", "face", "woman", "man", "child",
		"friends", "dog", "cat", "pet", "animal",
	}
	aestheticKeywords = []string{
		"beautiful", "stunning", "gorgeous", "colorful", "bright",
		"vibrant", "scenic", "aesthetic",
	}
	foodKeywords = []string{
		"food", "meal", "dish", "restaurant", "plate", "cuisine",
		"dessert", "coffee",
	}
	negativeQualityKeywords = []string{
		"dark", "blurry", "fuzzy", "grainy", "dim", "cluttered",
	}
	ctaKeywords = []string{
		"question", "join", "participate", "interactive", "challenge", "vote",
	}
	storyKeywords = []string{
		"story", "journey", "experience", "adventure",
	}
)

// Fallback statements used to pad a pool up to exactly three entries,
// consumed in declared order.
var (
	fallbackPros = []string{
		"Clear main subject",
		"Content is easy to understand at a glance",
		"Suitable for a broad audience",
	}
	fallbackCons = []string{
		"Could be more distinctive compared to similar content",
		"May struggle to stop the scroll in a busy feed",
		"Limited branding or personal signature visible",
	}
)

// suggestionPattern maps substrings found in a selected con to one
// actionable suggestion. Patterns are evaluated in order; the first
// match per con wins.
type suggestionPattern struct {
	keywords   []string
	suggestion string
}

var suggestionPatterns = []suggestionPattern{
	{[]string{"resolution"},
		"Export or upload a higher-resolution version (at least 1080px on both sides) for crisp display"},
	{[]string{"file size"},
		"Compress the image to under 5MB before uploading to avoid aggressive platform recompression"},
	{[]string{"aspect ratio"},
		"Crop to a platform-native aspect ratio such as 1:1, 4:5, or 9:16 before posting"},
	{[]string{"dark", "blur", "clarity", "fuzzy"},
		"Increase brightness and sharpness with basic editing tools before posting"},
	{[]string{"visual appeal", "color", "composition"},
		"Boost color saturation and simplify the composition to draw the eye to one subject"},
	{[]string{"engaging subjects"},
		"Include people, faces, or animals; posts with living subjects consistently earn more interactions"},
	{[]string{"low engagement", "moderate engagement", "engagement prediction"},
		"Hook viewers instantly with an emotive subject, bold color, or an unexpected angle"},
	{[]string{"call-to-action"},
		"Add a question or invitation in your caption to prompt comments and shares"},
	{[]string{"storytelling", "distinctive", "branding", "unique"},
		"Give the post a narrative angle; a story in the caption gives viewers a reason to care"},
}

const (
	genericSuggestion      = "Review the weaknesses above and refine the post before publishing"
	competitorSuggestion   = "Analyze competitor posts in your niche to see which styles are currently winning engagement"
	maxSuggestions         = 5
	selectedInsights       = 3
	highImpactConThreshold = 7
	competitorScoreCeiling = 55
)

// Verdict strings, strongest first.
const (
	verdictExcellent = "Excellent! This post is ready to share and positioned for top-tier engagement."
	verdictVeryGood  = "Very good. A couple of small tweaks could push this post into top-tier territory."
	verdictGood      = "Good foundation. Address the key weaknesses before posting for better reach."
	verdictFair      = "Fair potential. Revise the highlighted issues to lift this post above the average."
	verdictNeedsWork = "Needs improvement. Significant revisions are recommended before posting this content."
)

// GenerateInsights combines the technical evaluation, the engagement
// assessment and keyword analysis of the caption into ranked pros and
// cons, derived suggestions and a final verdict. Pure and deterministic
// for identical inputs.
func GenerateInsights(caption string, engagement EngagementAnalysis, tech TechnicalAnalysis) Insights {
	prosPool, consPool := buildPools(caption, engagement, tech)

	selectedPros := topTexts(prosPool, selectedInsights)
	selectedCons := topTexts(consPool, selectedInsights)

	// Suggestions are derived from the real selected cons only, before
	// fallback padding, so padded filler never triggers a pattern.
	suggestions := deriveSuggestions(selectedCons, engagement.Score)

	return Insights{
		Pros:           padWithFallbacks(selectedPros, fallbackPros),
		Cons:           padWithFallbacks(selectedCons, fallbackCons),
		Suggestions:    suggestions,
		Recommendation: recommendVerdict(engagement.Score, countHighImpact(consPool)),
	}
}

// buildPools evaluates the three independent rule families and returns
// the unranked pros and cons pools.
func buildPools(caption string, engagement EngagementAnalysis, tech TechnicalAnalysis) (pros, cons []scoredInsight) {
	addPro := func(text string, score int) { pros = append(pros, scoredInsight{text, score}) }
	addCon := func(text string, score int) { cons = append(cons, scoredInsight{text, score}) }

	// Technical rules.
	switch tech.ResolutionRating {
	case ResolutionGood:
		addPro("High resolution looks sharp on every device", 8)
	case ResolutionFair:
		addCon("Resolution is acceptable but below the 1080px sweet spot for crisp display", 7)
	default:
		addCon("Resolution is below platform standards and may appear pixelated", 9)
	}

	switch tech.SizeRating {
	case SizeExcellent:
		addPro("Optimal file size for fast loading without platform recompression", 6)
	case SizeGood:
		// A Good rating deliberately lands in both pools: acceptable,
		// but flagged as improvable.
		addPro("File size is within platform limits", 5)
		addCon("File size is acceptable but could be optimized further for faster loading", 4)
	default:
		addCon("Large file size will be aggressively recompressed by platforms, degrading quality", 8)
	}

	ratio := float64(tech.Width) / float64(tech.Height)
	if fitsFeed(ratio) {
		addPro("Aspect ratio is ideal for feed posts", 6)
	} else {
		addCon("Aspect ratio is not ideal for feed placements (1:1 or 4:5 works best)", 6)
	}
	if fitsFullScreen(ratio) {
		addPro("Perfect fit for full-screen Stories, Reels and TikTok", 5)
	} else {
		addCon("Aspect ratio does not suit full-screen formats like Stories and TikTok", 5)
	}

	// Caption keyword rules. Each check is independent: a caption can
	// accumulate several pros and several cons at once.
	lower := strings.ToLower(caption)
	if containsAny(lower, positiveSubjectKeywords) {
		addPro("Features people or animals, which typically drives higher engagement", 8)
	} else {
		addCon("No people or animals detected; posts with engaging subjects tend to earn more interactions", 5)
	}
	if containsAny(lower, aestheticKeywords) {
		addPro("Visually appealing description suggests strong aesthetic quality", 7)
	} else {
		addCon("Caption suggests limited visual appeal; stronger color or composition could help", 4)
	}
	if containsAny(lower, foodKeywords) {
		addPro("Food content performs reliably well on visual platforms", 6)
	}
	if containsAny(lower, negativeQualityKeywords) {
		addCon("Caption mentions darkness or blur, which reduces viewer interest", 8)
	}
	if containsAny(lower, ctaKeywords) {
		addPro("Built-in call-to-action potential invites audience interaction", 6)
	} else {
		addCon("No call-to-action cues; posts that prompt a response earn more comments", 6)
	}
	if !containsAny(lower, storyKeywords) {
		addCon("Lacks a storytelling angle, making it harder to craft a compelling caption", 3)
	}

	// Engagement-derived rule: exactly one pro or one con, with heavier
	// priority at the extremes than in the middle.
	switch {
	case engagement.Score >= 85:
		addPro("Model predicts top-tier engagement for this content", 10)
	case engagement.Score >= 70:
		addPro("Strong predicted engagement based on content classification", 8)
	case engagement.Score >= 55:
		addPro("Above-average engagement potential", 6)
	case engagement.Score >= 40:
		addCon("Moderate engagement prediction; content may not stand out", 4)
	case engagement.Score >= 25:
		addCon("Low engagement prediction for this type of content", 7)
	default:
		addCon("Very low engagement prediction; content is unlikely to gain traction", 10)
	}

	return pros, cons
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// topTexts ranks a pool descending by priority (stable, so rule order
// breaks ties) and returns the texts of the top n entries.
func topTexts(pool []scoredInsight, n int) []string {
	ranked := make([]scoredInsight, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	texts := make([]string, 0, len(ranked))
	for _, ins := range ranked {
		texts = append(texts, ins.text)
	}
	return texts
}

// padWithFallbacks tops a selection up to exactly three entries from the
// ordered fallback list, skipping texts already present.
func padWithFallbacks(selected []string, fallbacks []string) []string {
	out := make([]string, 0, selectedInsights)
	out = append(out, selected...)
	for _, fb := range fallbacks {
		if len(out) >= selectedInsights {
			break
		}
		if !containsText(out, fb) {
			out = append(out, fb)
		}
	}
	return out
}

func containsText(list []string, text string) bool {
	for _, s := range list {
		if s == text {
			return true
		}
	}
	return false
}

// deriveSuggestions emits one canned suggestion per selected con via
// first-match substring patterns, deduplicated and capped at five.
func deriveSuggestions(selectedCons []string, engagementScore int) []string {
	suggestions := make([]string, 0, maxSuggestions)
	add := func(s string) {
		if len(suggestions) < maxSuggestions && !containsText(suggestions, s) {
			suggestions = append(suggestions, s)
		}
	}

	matchedAny := false
	for _, con := range selectedCons {
		lower := strings.ToLower(con)
		for _, p := range suggestionPatterns {
			if !containsAny(lower, p.keywords) {
				continue
			}
			matchedAny = true
			add(p.suggestion)
			if containsAny(lower, []string{"low engagement", "moderate engagement", "engagement prediction"}) &&
				engagementScore < competitorScoreCeiling {
				add(competitorSuggestion)
			}
			break
		}
	}

	if !matchedAny && len(selectedCons) > 0 {
		add(genericSuggestion)
	}
	return suggestions
}

// countHighImpact counts cons with priority >= 7 among the top three of
// the unpadded pool. The verdict deliberately keys on this pre-selection
// view, not the padded cons shown to the user.
func countHighImpact(consPool []scoredInsight) int {
	ranked := make([]scoredInsight, len(consPool))
	copy(ranked, consPool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > selectedInsights {
		ranked = ranked[:selectedInsights]
	}
	count := 0
	for _, con := range ranked {
		if con.score >= highImpactConThreshold {
			count++
		}
	}
	return count
}

// recommendVerdict is a priority-ordered rule table; the first matching
// row wins.
func recommendVerdict(engagementScore, highImpactCons int) string {
	switch {
	case engagementScore >= 85 && highImpactCons == 0:
		return verdictExcellent
	case engagementScore >= 70 && highImpactCons <= 1:
		return verdictVeryGood
	case engagementScore >= 55:
		return verdictGood
	case engagementScore >= 40:
		return verdictFair
	default:
		return verdictNeedsWork
	}
}
