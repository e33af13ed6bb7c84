package review

import (
	"sort"
	"strconv"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// Rank returns the reviews in descending order of their score for the
// selected emotion. A review missing that emotion key ranks with score 0
// rather than being excluded. The sort is stable, so reviews with equal
// scores keep their original relative order, and the input slice is never
// mutated.
func Rank(reviews []types.Review, emotion string) []types.Review {
	ranked := make([]types.Review, len(reviews))
	copy(ranked, reviews)
	sort.SliceStable(ranked, func(i, j int) bool {
		return emotionScore(ranked[i], emotion) > emotionScore(ranked[j], emotion)
	})
	return ranked
}

// FormatScore renders a review's score for the selected emotion as a
// percentage with one decimal place, or the literal "0" when the emotion is
// absent. Display snapshots depend on these exact strings.
func FormatScore(r types.Review, emotion string) string {
	score, ok := r.EmotionScores[emotion]
	if !ok {
		return "0"
	}
	return strconv.FormatFloat(score*100, 'f', 1, 64)
}

func emotionScore(r types.Review, emotion string) float64 {
	return r.EmotionScores[emotion]
}
