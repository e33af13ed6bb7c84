package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-emotion-atlas/internal/api/heatmap"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/itinerary"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

type MockCollaborators struct {
	mock.Mock
}

func (m *MockCollaborators) Scrape(ctx context.Context, city, category string) error {
	args := m.Called(ctx, city, category)
	return args.Error(0)
}

func (m *MockCollaborators) Process(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCollaborators) Heatmap(ctx context.Context, emotion string) (types.HeatmapDataset, error) {
	args := m.Called(ctx, emotion)
	d, _ := args.Get(0).(types.HeatmapDataset)
	return d, args.Error(1)
}

func (m *MockCollaborators) Reviews(ctx context.Context, lat, lng float64) ([]types.Review, error) {
	args := m.Called(ctx, lat, lng)
	r, _ := args.Get(0).([]types.Review)
	return r, args.Error(1)
}

type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) SaveItinerary(ctx context.Context, hotspotIDs []string) error {
	args := m.Called(ctx, hotspotIDs)
	return args.Error(0)
}

var (
	_ Collaborators   = (*MockCollaborators)(nil)
	_ itinerary.Saver = (*MockSaver)(nil)
)

func geoDataset(neighborhood string, lng, lat, score float64) types.HeatmapDataset {
	return types.NewGeoJSONDataset(&types.FeatureCollection{
		Type: "FeatureCollection",
		Features: []types.Feature{{
			Type:     "Feature",
			Geometry: types.Geometry{Type: "Point", Coordinates: []float64{lng, lat}},
			Properties: types.FeatureProperties{
				Neighborhood: neighborhood,
				Score:        &score,
			},
		}},
	})
}

func newTestController() (*Controller, *MockCollaborators, *heatmap.Renderer, *itinerary.Store) {
	logger := slog.New(slog.DiscardHandler)
	api := new(MockCollaborators)
	renderer := heatmap.NewRenderer(heatmap.NewViewport(51.505, -0.09, 13), logger)
	store := itinerary.NewStore(new(MockSaver), logger)
	return NewController(api, renderer, store, logger), api, renderer, store
}

func TestController_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("runs scrape, process and heatmap refetch in order", func(t *testing.T) {
		c, api, renderer, _ := newTestController()
		api.On("Scrape", mock.Anything, "London", "restaurants").Return(nil)
		api.On("Process", mock.Anything).Return(nil)
		api.On("Heatmap", mock.Anything, "joy").Return(geoDataset("Soho", -0.1337, 51.5137, 0.9), nil)

		require.NoError(t, c.Search(ctx, "London", "restaurants"))

		require.Len(t, renderer.Markers(), 1)
		assert.Equal(t, "Soho", renderer.Markers()[0].Label)
		assert.False(t, c.SearchLoading())
		api.AssertExpectations(t)
	})

	t.Run("empty city fails validation before any collaborator call", func(t *testing.T) {
		c, api, _, _ := newTestController()

		err := c.Search(ctx, "", "restaurants")

		assert.ErrorIs(t, err, types.ErrValidation)
		api.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("scrape failure aborts the pipeline and keeps the previous heatmap", func(t *testing.T) {
		c, api, renderer, _ := newTestController()

		// Establish an on-screen heatmap first.
		api.On("Heatmap", mock.Anything, "joy").Return(geoDataset("Old", -0.1, 51.5, 0.5), nil).Once()
		require.NoError(t, c.SelectEmotion(ctx, "joy"))
		require.Len(t, renderer.Markers(), 1)

		api.On("Scrape", mock.Anything, "Paris", "bars").Return(errors.New("blocked"))

		err := c.Search(ctx, "Paris", "bars")

		require.Error(t, err)
		api.AssertNotCalled(t, "Process", mock.Anything)
		require.Len(t, renderer.Markers(), 1)
		assert.Equal(t, "Old", renderer.Markers()[0].Label)
		assert.False(t, c.SearchLoading())
	})

	t.Run("process failure aborts before the heatmap refetch", func(t *testing.T) {
		c, api, _, _ := newTestController()
		api.On("Scrape", mock.Anything, "Paris", "bars").Return(nil)
		api.On("Process", mock.Anything).Return(errors.New("model down"))

		err := c.Search(ctx, "Paris", "bars")

		require.Error(t, err)
		api.AssertNotCalled(t, "Heatmap", mock.Anything, mock.Anything)
	})
}

func TestController_SelectEmotion(t *testing.T) {
	ctx := context.Background()

	t.Run("switches the filter and refetches only the heatmap", func(t *testing.T) {
		c, api, renderer, _ := newTestController()
		api.On("Heatmap", mock.Anything, "calm").Return(geoDataset("Greenwich", 0.0, 51.48, 0.7), nil)

		require.NoError(t, c.SelectEmotion(ctx, "calm"))

		assert.Equal(t, "calm", c.Emotion())
		require.Len(t, renderer.Markers(), 1)
		api.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything, mock.Anything)
		api.AssertNotCalled(t, "Reviews", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fetch failure keeps the current layers", func(t *testing.T) {
		c, api, renderer, _ := newTestController()
		api.On("Heatmap", mock.Anything, "joy").Return(geoDataset("Soho", -0.13, 51.51, 0.9), nil).Once()
		require.NoError(t, c.SelectEmotion(ctx, "joy"))

		api.On("Heatmap", mock.Anything, "trust").Return(types.HeatmapDataset{}, errors.New("502")).Once()

		err := c.SelectEmotion(ctx, "trust")

		require.Error(t, err)
		require.Len(t, renderer.Markers(), 1)
		assert.Equal(t, "Soho", renderer.Markers()[0].Label)
		// The filter selection itself sticks; only the data is stale.
		assert.Equal(t, "trust", c.Emotion())
	})

	t.Run("empty dataset clears layers", func(t *testing.T) {
		c, api, renderer, _ := newTestController()
		api.On("Heatmap", mock.Anything, "joy").Return(geoDataset("Soho", -0.13, 51.51, 0.9), nil).Once()
		require.NoError(t, c.SelectEmotion(ctx, "joy"))

		api.On("Heatmap", mock.Anything, "calm").Return(types.HeatmapDataset{}, nil).Once()
		require.NoError(t, c.SelectEmotion(ctx, "calm"))

		assert.Empty(t, renderer.Markers())
		assert.Nil(t, renderer.HeatLayer())
	})
}

func TestController_SelectLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the review panel wholesale", func(t *testing.T) {
		c, api, _, _ := newTestController()
		first := []types.Review{{ID: "r1", EmotionScores: map[string]float64{"joy": 0.2}}}
		second := []types.Review{
			{ID: "r2", EmotionScores: map[string]float64{"joy": 0.4}},
			{ID: "r3", EmotionScores: map[string]float64{"joy": 0.9}},
		}
		api.On("Reviews", mock.Anything, 51.51, -0.13).Return(first, nil)
		api.On("Reviews", mock.Anything, 51.54, -0.14).Return(second, nil)

		require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))
		require.NoError(t, c.SelectLocation(ctx, 51.54, -0.14, "Camden"))

		require.NotNil(t, c.CurrentLocation())
		assert.Equal(t, "Camden", c.CurrentLocation().Name)

		ranked := c.RankedReviews()
		require.Len(t, ranked, 2)
		assert.Equal(t, "r3", ranked[0].ID)
		assert.False(t, c.LocationLoading())
	})

	t.Run("fetch failure keeps the previous panel", func(t *testing.T) {
		c, api, _, _ := newTestController()
		api.On("Reviews", mock.Anything, 51.51, -0.13).
			Return([]types.Review{{ID: "r1"}}, nil).Once()
		require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))

		api.On("Reviews", mock.Anything, 51.54, -0.14).
			Return(nil, errors.New("timeout")).Once()

		err := c.SelectLocation(ctx, 51.54, -0.14, "Camden")

		require.Error(t, err)
		require.NotNil(t, c.CurrentLocation())
		assert.Equal(t, "Soho", c.CurrentLocation().Name)
		require.Len(t, c.RankedReviews(), 1)
		assert.Equal(t, "r1", c.RankedReviews()[0].ID)
	})

	t.Run("marker click selects the location", func(t *testing.T) {
		c, api, renderer, _ := newTestController()
		api.On("Heatmap", mock.Anything, "joy").Return(geoDataset("Soho", -0.1337, 51.5137, 0.9), nil)
		api.On("Reviews", mock.Anything, 51.5137, -0.1337).
			Return([]types.Review{{ID: "r1"}}, nil)

		require.NoError(t, c.SelectEmotion(ctx, "joy"))
		require.True(t, renderer.Click(51.5137, -0.1337))

		require.NotNil(t, c.CurrentLocation())
		assert.Equal(t, "Soho", c.CurrentLocation().Name)
	})
}

func TestController_RankedReviews_FollowsEmotion(t *testing.T) {
	ctx := context.Background()
	c, api, _, _ := newTestController()

	reviews := []types.Review{
		{ID: "joyful", EmotionScores: map[string]float64{"joy": 0.9, "calm": 0.1}},
		{ID: "serene", EmotionScores: map[string]float64{"joy": 0.1, "calm": 0.9}},
	}
	api.On("Reviews", mock.Anything, 51.51, -0.13).Return(reviews, nil)
	api.On("Heatmap", mock.Anything, "calm").Return(types.HeatmapDataset{}, nil)

	require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))
	assert.Equal(t, "joyful", c.RankedReviews()[0].ID)

	// Switching the emotion re-ranks the open panel without a refetch.
	require.NoError(t, c.SelectEmotion(ctx, "calm"))
	assert.Equal(t, "serene", c.RankedReviews()[0].ID)
	api.AssertNumberOfCalls(t, "Reviews", 1)
}

func TestController_AddToItinerary(t *testing.T) {
	ctx := context.Background()

	t.Run("carries the mean score of the selected emotion", func(t *testing.T) {
		c, api, _, store := newTestController()
		api.On("Reviews", mock.Anything, 51.51, -0.13).Return([]types.Review{
			{ID: "r1", EmotionScores: map[string]float64{"joy": 0.5}},
			{ID: "r2", EmotionScores: map[string]float64{"joy": 1.0}},
		}, nil)
		require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))

		h, err := c.AddToItinerary()

		require.NoError(t, err)
		assert.Equal(t, "Soho", h.Name)
		assert.InDelta(t, 0.75, h.EmotionScores["joy"], 1e-9)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("no reviews defaults the confidence", func(t *testing.T) {
		c, api, _, _ := newTestController()
		api.On("Reviews", mock.Anything, 51.51, -0.13).Return([]types.Review{}, nil)
		require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))

		h, err := c.AddToItinerary()

		require.NoError(t, err)
		assert.Equal(t, 0.8, h.EmotionScores["joy"])
	})

	t.Run("no open location fails validation", func(t *testing.T) {
		c, _, _, _ := newTestController()
		_, err := c.AddToItinerary()
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("adding the same location twice declines", func(t *testing.T) {
		c, api, _, store := newTestController()
		api.On("Reviews", mock.Anything, 51.51, -0.13).Return([]types.Review{}, nil)
		require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))

		_, err := c.AddToItinerary()
		require.NoError(t, err)
		_, err = c.AddToItinerary()

		assert.ErrorIs(t, err, types.ErrDuplicate)
		assert.Equal(t, 1, store.Len())
	})
}

func TestController_SaveItinerary(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("exports the sequence and keeps the store populated", func(t *testing.T) {
		api := new(MockCollaborators)
		saver := new(MockSaver)
		store := itinerary.NewStore(saver, logger)
		renderer := heatmap.NewRenderer(heatmap.NewViewport(0, 0, 13), logger)
		c := NewController(api, renderer, store, logger)

		api.On("Reviews", mock.Anything, 51.51, -0.13).Return([]types.Review{}, nil)
		require.NoError(t, c.SelectLocation(ctx, 51.51, -0.13, "Soho"))
		h, err := c.AddToItinerary()
		require.NoError(t, err)

		saver.On("SaveItinerary", mock.Anything, []string{h.ID}).Return(nil)

		require.NoError(t, c.SaveItinerary(ctx))
		assert.Equal(t, 1, store.Len())
		saver.AssertExpectations(t)
	})

	t.Run("empty itinerary fails validation", func(t *testing.T) {
		c, _, _, _ := newTestController()
		assert.ErrorIs(t, c.SaveItinerary(ctx), types.ErrValidation)
	})
}
