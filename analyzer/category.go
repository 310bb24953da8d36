package analyzer

import "strings"

// categoryDef is one row of the ordered first-match category scan.
type categoryDef struct {
	name    string
	match   []string
	exclude []string
	tips    []string
}

const CategoryGeneral = "General"

const tipsPerCategory = 3

// categories are scanned top to bottom; the first matching row wins.
// Portrait requires the caption not to mention a group, so group shots
// fall through to later categories.
var categories = []categoryDef{
	{
		name:  "Sports",
		match: []string{"sport", "tennis", "basketball", "soccer", "football", "athlete", "running", "playing", "gym", "workout"},
		tips: []string{
			"Action shots showing movement perform far better than static poses",
			"Outdoor lighting with golden hour tones increases engagement",
			"Keeping equipment clearly visible boosts recognition and relatability",
		},
	},
	{
		name:  "Food",
		match: []string{"food", "meal", "restaurant", "eating", "dish", "plate", "cooking", "cuisine", "pasta", "dessert"},
		tips: []string{
			"Overhead angles showcase food details better than side angles",
			"Natural lighting dramatically improves food color appeal",
			"Including hands in frame creates a sense of scale and interaction",
		},
	},
	{
		name:  "Nature",
		match: []string{"nature", "outdoor", "landscape", "mountain", "beach", "forest", "sunset", "hiking", "ocean", "waterfall"},
		tips: []string{
			"Golden hour lighting consistently lifts engagement for outdoor scenes",
			"Including a human element or silhouette boosts relatability",
			"Rule of thirds composition improves visual flow and interest",
		},
	},
	{
		name:    "Portrait",
		match:   []string{"selfie", "portrait", "headshot", "face"},
		exclude: []string{"group"},
		tips: []string{
			"Soft, diffused lighting minimizes shadows and improves facial clarity",
			"Eye contact with the camera strengthens connection with viewers",
			"A slightly elevated angle is most flattering for facial features",
		},
	},
	{
		name:  "Travel",
		match: []string{"travel", "vacation", "trip", "tourist", "landmark", "destination", "city skyline"},
		tips: []string{
			"Including yourself in landmark photos significantly increases engagement",
			"Unique perspectives of common attractions stand out from typical tourist shots",
			"Rich colors and balance between sky and landscape optimize visual appeal",
		},
	},
	{
		name:  "Product",
		match: []string{"product", "bottle", "gadget", "device", "packaging", "watch", "sneaker"},
		tips: []string{
			"Clean, uncluttered backgrounds keep attention on the product",
			"Showing the product in use outperforms studio-only shots",
			"Consistent brand colors across posts build recognition over time",
		},
	},
}

var generalTips = []string{
	"Rule of thirds composition creates visual balance and interest",
	"Natural lighting consistently outperforms artificial lighting",
	"Including a human element increases relatability",
}

// wildlifeTip is prepended for Nature captions that mention an animal.
const wildlifeTip = "Capturing animal personality or behavior dramatically boosts shares for wildlife content"

var wildlifeKeywords = []string{"animal", "wildlife", "bird", "dog", "cat", "deer", "fox"}

// ClassifyCategory picks the content category for a caption and returns
// it with exactly three tips.
func ClassifyCategory(caption string) (string, []string) {
	lower := strings.ToLower(caption)

	for _, def := range categories {
		if !containsAny(lower, def.match) || containsAny(lower, def.exclude) {
			continue
		}
		tips := def.tips
		if def.name == "Nature" && containsAny(lower, wildlifeKeywords) {
			tips = append([]string{wildlifeTip}, tips...)
		}
		return def.name, normalizeTips(tips)
	}
	return CategoryGeneral, normalizeTips(generalTips)
}

// normalizeTips guarantees exactly three tips, padding from the General
// list (skipping duplicates) before truncating.
func normalizeTips(tips []string) []string {
	out := make([]string, 0, tipsPerCategory)
	out = append(out, tips...)
	for _, tip := range generalTips {
		if len(out) >= tipsPerCategory {
			break
		}
		if !containsText(out, tip) {
			out = append(out, tip)
		}
	}
	if len(out) > tipsPerCategory {
		out = out[:tipsPerCategory]
	}
	return out
}
