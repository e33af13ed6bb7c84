package types

import "time"

// Hotspot is a user-chosen location entry in the itinerary. The identity key
// for deduplication is the (lat, lng) pair; ID is a client-generated,
// time-derived string kept for wire compatibility.
type Hotspot struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Lat           float64            `json:"lat"`
	Lng           float64            `json:"lng"`
	EmotionScores map[string]float64 `json:"emotion_scores"`
}

// Itinerary is one persisted ordered sequence of hotspot identifiers.
type Itinerary struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	HotspotIDs []string  `json:"hotspot_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateItineraryRequest is the body of POST /itineraries. The array order
// encodes the user's chosen sequence.
type CreateItineraryRequest struct {
	HotspotIDs []string `json:"hotspot_ids"`
}

// ScrapeRequest is the body of POST /scrape.
type ScrapeRequest struct {
	City     string `json:"city"`
	Category string `json:"category"`
}

// PipelineStatus is the response envelope of /scrape and /process.
type PipelineStatus struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	ProcessedCount int    `json:"processed_count,omitempty"`
}
