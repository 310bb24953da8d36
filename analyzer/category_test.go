package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    string
	}{
		{"Sports", "a solo athlete running on a track", "Sports"},
		{"Food", "a plate of delicious pasta with sauce", "Food"},
		{"Nature", "a beautiful sunset over the mountains", "Nature"},
		{"Portrait", "a close-up selfie with soft lighting", "Portrait"},
		{"Travel", "a tourist posing in front of a famous landmark", "Travel"},
		{"Product", "a sleek gadget on a wooden desk", "Product"},
		{"Group excluded from portrait", "a group selfie at a party", CategoryGeneral},
		{"No match", "an empty room with a chair", CategoryGeneral},
		{"Empty caption", "", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, tips := ClassifyCategory(tt.caption)
			assert.Equal(t, tt.want, category)
			assert.Len(t, tips, tipsPerCategory)
		})
	}
}

func TestClassifyCategoryFirstMatchWins(t *testing.T) {
	// "running" puts this in Sports even though "beach" would match
	// Nature further down the table.
	category, _ := ClassifyCategory("a dog running on the beach")
	assert.Equal(t, "Sports", category)
}

func TestClassifyCategoryWildlifeTip(t *testing.T) {
	t.Run("Nature with animal gets the wildlife tip first", func(t *testing.T) {
		category, tips := ClassifyCategory("a deer grazing in the forest")
		require.Equal(t, "Nature", category)
		require.Len(t, tips, tipsPerCategory)
		assert.Equal(t, wildlifeTip, tips[0])
	})

	t.Run("Nature without animal keeps the standard tips", func(t *testing.T) {
		category, tips := ClassifyCategory("a sunset over the ocean")
		require.Equal(t, "Nature", category)
		assert.NotContains(t, tips, wildlifeTip)
	})

	t.Run("Animal outside nature gets no wildlife tip", func(t *testing.T) {
		category, tips := ClassifyCategory("a cat next to a plate of food")
		require.Equal(t, "Food", category)
		assert.NotContains(t, tips, wildlifeTip)
	})
}

func TestNormalizeTips(t *testing.T) {
	t.Run("Short list pads from general tips", func(t *testing.T) {
		got := normalizeTips([]string{"Only one tip"})
		require.Len(t, got, tipsPerCategory)
		assert.Equal(t, "Only one tip", got[0])
		assert.Equal(t, generalTips[0], got[1])
		assert.Equal(t, generalTips[1], got[2])
	})

	t.Run("Long list is truncated", func(t *testing.T) {
		got := normalizeTips([]string{"a", "b", "c", "d"})
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("Padding skips duplicates", func(t *testing.T) {
		got := normalizeTips([]string{generalTips[0]})
		assert.Equal(t, []string{generalTips[0], generalTips[1], generalTips[2]}, got)
	})
}
