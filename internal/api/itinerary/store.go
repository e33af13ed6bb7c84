package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// Aggregation default when a location is added with zero fetched reviews.
// Existing saved itineraries depend on this exact value.
const defaultConfidence = 0.8

// Saver persists one ordered hotspot sequence. The collaborator HTTP client
// implements it.
type Saver interface {
	SaveItinerary(ctx context.Context, hotspotIDs []string) error
}

// Store is the ordered, deduplicated collection of chosen locations being
// assembled into an itinerary. Identity for deduplication is the (lat, lng)
// pair, not the hotspot id.
//
// The store is confined to the UI event goroutine like the rest of the
// dashboard core; it is not safe for concurrent use.
type Store struct {
	logger   *slog.Logger
	saver    Saver
	hotspots []types.Hotspot

	now    func() time.Time
	lastID int64
}

// NewStore creates an empty itinerary store.
func NewStore(saver Saver, logger *slog.Logger) *Store {
	return &Store{
		logger: logger,
		saver:  saver,
		now:    time.Now,
	}
}

// Add appends a hotspot for the candidate location carrying a single-entry
// score map for the selected emotion. Adding a coordinate that is already
// present declines with ErrDuplicate and leaves the sequence untouched.
func (s *Store) Add(name string, lat, lng float64, emotion string, score float64) (types.Hotspot, error) {
	for _, h := range s.hotspots {
		if h.Lat == lat && h.Lng == lng {
			s.logger.Debug("Declined duplicate itinerary add",
				slog.Float64("lat", lat), slog.Float64("lng", lng))
			return types.Hotspot{}, fmt.Errorf("%w: location already in itinerary", types.ErrDuplicate)
		}
	}

	hotspot := types.Hotspot{
		ID:            s.nextID(),
		Name:          name,
		Lat:           lat,
		Lng:           lng,
		EmotionScores: map[string]float64{emotion: score},
	}
	s.hotspots = append(s.hotspots, hotspot)
	return hotspot, nil
}

// Remove deletes the hotspot with the given id. Removing an unknown id is a
// no-op, not an error.
func (s *Store) Remove(id string) {
	for i, h := range s.hotspots {
		if h.ID == id {
			s.hotspots = append(s.hotspots[:i], s.hotspots[i+1:]...)
			return
		}
	}
}

// Move splices the hotspot at fromIndex to toIndex, the way a drag-and-drop
// reorder does. Indexes out of range are rejected, so no element can be
// lost or duplicated through this path.
func (s *Store) Move(fromIndex, toIndex int) error {
	n := len(s.hotspots)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return fmt.Errorf("%w: move index out of range", types.ErrValidation)
	}
	if fromIndex == toIndex {
		return nil
	}
	moved := s.hotspots[fromIndex]
	s.hotspots = append(s.hotspots[:fromIndex], s.hotspots[fromIndex+1:]...)
	rest := append([]types.Hotspot{}, s.hotspots[toIndex:]...)
	s.hotspots = append(append(s.hotspots[:toIndex:toIndex], moved), rest...)
	return nil
}

// Reorder replaces the full ordered sequence with a permutation of the
// current one. A sequence that drops, duplicates or invents an id is
// rejected wholesale.
func (s *Store) Reorder(sequence []types.Hotspot) error {
	if len(sequence) != len(s.hotspots) {
		return fmt.Errorf("%w: reorder must keep every element", types.ErrValidation)
	}
	current := make(map[string]int, len(s.hotspots))
	for _, h := range s.hotspots {
		current[h.ID]++
	}
	for _, h := range sequence {
		current[h.ID]--
		if current[h.ID] < 0 {
			return fmt.Errorf("%w: reorder is not a permutation of the itinerary", types.ErrValidation)
		}
	}
	s.hotspots = append(s.hotspots[:0:0], sequence...)
	return nil
}

// Hotspots returns a copy of the ordered sequence.
func (s *Store) Hotspots() []types.Hotspot {
	return append([]types.Hotspot{}, s.hotspots...)
}

// Len returns the number of hotspots.
func (s *Store) Len() int { return len(s.hotspots) }

// Clear empties the store. Clearing after a successful save is the caller's
// choice; Save never does it implicitly.
func (s *Store) Clear() { s.hotspots = s.hotspots[:0] }

// Save exports the ordered id sequence to the persistence collaborator.
// An empty itinerary fails with ErrValidation before any call goes out; a
// collaborator failure surfaces as ErrNetwork. The in-memory sequence is
// left unchanged either way, so a failed save can simply be retried.
func (s *Store) Save(ctx context.Context) error {
	if len(s.hotspots) == 0 {
		return fmt.Errorf("%w: itinerary is empty", types.ErrValidation)
	}
	ids := make([]string, len(s.hotspots))
	for i, h := range s.hotspots {
		ids[i] = h.ID
	}
	if err := s.saver.SaveItinerary(ctx, ids); err != nil {
		s.logger.Error("Itinerary save failed", slog.Any("error", err))
		return fmt.Errorf("%w: itinerary save: %v", types.ErrNetwork, err)
	}
	s.logger.Info("Itinerary saved", slog.Int("hotspots", len(ids)))
	return nil
}

// AggregateScore computes the score recorded when a location is added: the
// mean of the selected emotion over all currently displayed reviews for it.
// A review missing the emotion contributes zero to the sum but still counts
// toward the mean. With no reviews the default confidence applies.
func AggregateScore(reviews []types.Review, emotion string) float64 {
	if len(reviews) == 0 {
		return defaultConfidence
	}
	var sum float64
	for _, r := range reviews {
		sum += r.EmotionScores[emotion]
	}
	return sum / float64(len(reviews))
}

// nextID generates a time-derived hotspot id. The millisecond clock is
// bumped when two adds land in the same tick.
func (s *Store) nextID() string {
	ms := s.now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("hotspot-%d", ms)
}
