package heatmap

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetNeighborhoods(ctx context.Context) ([]types.Neighborhood, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).([]types.Neighborhood)
	return n, args.Error(1)
}

func (m *MockRepository) GetVenues(ctx context.Context) ([]types.Venue, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]types.Venue)
	return v, args.Error(1)
}

func (m *MockRepository) GetEmotionScores(ctx context.Context, emotion string, venueIDs []string) ([]float64, error) {
	args := m.Called(ctx, emotion, venueIDs)
	s, _ := args.Get(0).([]float64)
	return s, args.Error(1)
}

func (m *MockRepository) UpsertHotspot(ctx context.Context, neighborhoodID, emotion string, averageScore float64, reviewCount int) error {
	args := m.Called(ctx, neighborhoodID, emotion, averageScore, reviewCount)
	return args.Error(0)
}

var _ Repository = (*MockRepository)(nil)

func TestServiceImpl_Generate(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	soho := types.Neighborhood{ID: "n1", Name: "Soho", City: "London", Lat: 51.5137, Lng: -0.1337}
	camden := types.Neighborhood{ID: "n2", Name: "Camden", City: "London", Lat: 51.5390, Lng: -0.1427}
	// Right next to Soho's center, far outside Camden's 2 km radius.
	venue := types.Venue{ID: "v1", Name: "Bar Italia", Lat: 51.5135, Lng: -0.1320, City: "London"}

	t.Run("aggregates mean score per neighborhood from nearby venues", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetNeighborhoods", mock.Anything).Return([]types.Neighborhood{soho, camden}, nil)
		repo.On("GetVenues", mock.Anything).Return([]types.Venue{venue}, nil)
		repo.On("GetEmotionScores", mock.Anything, "joy", []string{"v1"}).Return([]float64{0.75, 0.25}, nil)
		repo.On("UpsertHotspot", mock.Anything, "n1", "joy", 0.5, 2).Return(nil)

		svc := NewServiceImpl(repo, logger)
		fc, err := svc.Generate(ctx, "joy")

		require.NoError(t, err)
		require.NotNil(t, fc)
		assert.Equal(t, "FeatureCollection", fc.Type)
		require.Len(t, fc.Features, 1)

		f := fc.Features[0]
		assert.Equal(t, "Point", f.Geometry.Type)
		// GeoJSON coordinate order is [lng, lat].
		assert.Equal(t, []float64{soho.Lng, soho.Lat}, f.Geometry.Coordinates)
		assert.Equal(t, "Soho", f.Properties.Neighborhood)
		assert.Equal(t, "joy", f.Properties.Emotion)
		require.NotNil(t, f.Properties.Score)
		assert.InDelta(t, 0.5, *f.Properties.Score, 1e-9)
		require.NotNil(t, f.Properties.Weight)
		assert.InDelta(t, 5.0, *f.Properties.Weight, 1e-9)
		assert.Equal(t, 2, f.Properties.ReviewCount)

		repo.AssertExpectations(t)
	})

	t.Run("serves fallback when the repository fails", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetNeighborhoods", mock.Anything).Return(nil, errors.New("connection refused"))

		svc := NewServiceImpl(repo, logger)
		fc, err := svc.Generate(ctx, "calm")

		require.NoError(t, err)
		require.NotNil(t, fc)
		require.Len(t, fc.Features, 5)
		assert.Equal(t, "Central London", fc.Features[0].Properties.Neighborhood)
		assert.Equal(t, "calm", fc.Features[0].Properties.Emotion)
		// Demo review counts are synthesized from the score.
		require.NotNil(t, fc.Features[0].Properties.Score)
		assert.Equal(t, int(*fc.Features[0].Properties.Score*50), fc.Features[0].Properties.ReviewCount)
	})

	t.Run("serves fallback when no neighborhood has data", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetNeighborhoods", mock.Anything).Return([]types.Neighborhood{camden}, nil)
		repo.On("GetVenues", mock.Anything).Return([]types.Venue{venue}, nil)

		svc := NewServiceImpl(repo, logger)
		fc, err := svc.Generate(ctx, "joy")

		require.NoError(t, err)
		require.Len(t, fc.Features, 5)
		repo.AssertNotCalled(t, "GetEmotionScores", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a failed hotspot upsert does not fail generation", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetNeighborhoods", mock.Anything).Return([]types.Neighborhood{soho}, nil)
		repo.On("GetVenues", mock.Anything).Return([]types.Venue{venue}, nil)
		repo.On("GetEmotionScores", mock.Anything, "joy", []string{"v1"}).Return([]float64{0.5}, nil)
		repo.On("UpsertHotspot", mock.Anything, "n1", "joy", 0.5, 1).Return(errors.New("deadlock"))

		svc := NewServiceImpl(repo, logger)
		fc, err := svc.Generate(ctx, "joy")

		require.NoError(t, err)
		require.Len(t, fc.Features, 1)
	})

	t.Run("second generation for the same emotion is served from cache", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetNeighborhoods", mock.Anything).Return([]types.Neighborhood{soho}, nil).Once()
		repo.On("GetVenues", mock.Anything).Return([]types.Venue{venue}, nil).Once()
		repo.On("GetEmotionScores", mock.Anything, "joy", []string{"v1"}).Return([]float64{0.5}, nil).Once()
		repo.On("UpsertHotspot", mock.Anything, "n1", "joy", 0.5, 1).Return(nil).Once()

		svc := NewServiceImpl(repo, logger)

		first, err := svc.Generate(ctx, "joy")
		require.NoError(t, err)
		second, err := svc.Generate(ctx, "joy")
		require.NoError(t, err)

		assert.Same(t, first, second)
		repo.AssertExpectations(t)
	})
}

func TestHaversineKm(t *testing.T) {
	// London to Paris is roughly 344 km.
	d := haversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, d, 5)

	assert.InDelta(t, 0, haversineKm(51.5, -0.1, 51.5, -0.1), 1e-9)
}
