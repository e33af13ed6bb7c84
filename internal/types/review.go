package types

// Review is one traveler review with its pre-computed emotion scores.
// Scores arrive from the scoring pipeline already normalized to [0,1].
// The active review set is replaced wholesale on every location selection.
type Review struct {
	ID            string             `json:"id"`
	Text          string             `json:"text"`
	Date          string             `json:"date"`
	EmotionScores map[string]float64 `json:"emotion_scores"`
	LocationID    string             `json:"location_id,omitempty"`
}

// EmotionScore is the row shape scores are stored in server-side.
type EmotionScore struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

// ReviewsResponse is the wire envelope of GET /reviews.
type ReviewsResponse struct {
	Reviews []Review `json:"reviews"`
}

// Venue is a reviewed location stored by the collaborator pipeline.
type Venue struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Category string  `json:"category,omitempty"`
	City     string  `json:"city,omitempty"`
}

// Neighborhood is a named city area with a representative center point.
type Neighborhood struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
