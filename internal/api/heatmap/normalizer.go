package heatmap

import (
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// Normalize converts either supported heatmap wire shape into the single
// internal point/marker representation. It is a pure transformation: the
// same dataset always normalizes to the same result and the input is never
// mutated. An empty or unsupported dataset yields empty slices, not an
// error; the renderer treats that as "clear and show nothing".
func Normalize(dataset types.HeatmapDataset) types.NormalizedDataset {
	switch dataset.Kind() {
	case types.DatasetGeoJSON:
		return normalizeFeatures(dataset.FeatureCollection())
	case types.DatasetLegacy:
		return normalizeLegacy(dataset.LegacyPoints())
	default:
		return types.NormalizedDataset{
			Points:  []types.GeoPoint{},
			Markers: []types.MapMarker{},
		}
	}
}

func normalizeFeatures(fc *types.FeatureCollection) types.NormalizedDataset {
	points := make([]types.GeoPoint, 0, len(fc.Features))
	markers := make([]types.MapMarker, 0, len(fc.Features))
	markerIdx := make(map[[2]float64]int, len(fc.Features))

	for _, feature := range fc.Features {
		// Non-point geometries are skipped, not rejected.
		if feature.Geometry.Type != "Point" || len(feature.Geometry.Coordinates) < 2 {
			continue
		}

		// GeoJSON coordinate order is [lng, lat]; internal order is (lat, lng).
		lng := feature.Geometry.Coordinates[0]
		lat := feature.Geometry.Coordinates[1]

		props := feature.Properties
		weight := 1.0
		switch {
		case props.Weight != nil:
			weight = *props.Weight
		case props.Score != nil:
			weight = *props.Score
		}

		points = append(points, types.GeoPoint{Lat: lat, Lng: lng, Weight: weight})

		score := 0.0
		if props.Score != nil {
			score = *props.Score
		}
		marker := types.MapMarker{
			Lat:         lat,
			Lng:         lng,
			Label:       props.Neighborhood,
			Score:       score,
			ReviewCount: props.ReviewCount,
		}
		// Duplicate-coordinate features collapse to the last one observed.
		if idx, ok := markerIdx[[2]float64{lat, lng}]; ok {
			markers[idx] = marker
			continue
		}
		markerIdx[[2]float64{lat, lng}] = len(markers)
		markers = append(markers, marker)
	}

	return types.NormalizedDataset{Points: points, Markers: markers}
}

func normalizeLegacy(raw []types.GeoPoint) types.NormalizedDataset {
	// The legacy shape already carries {lat, lng, weight}; it has no labels,
	// scores or counts, so it contributes heat points only.
	points := make([]types.GeoPoint, len(raw))
	copy(points, raw)
	return types.NormalizedDataset{Points: points, Markers: []types.MapMarker{}}
}
