package types

import "encoding/json"

// Emotions is the fixed set of emotion keys used for scoring and filtering.
var Emotions = []string{"joy", "excitement", "calm", "trust", "anticipation"}

// DefaultEmotion is used when a request does not name an emotion.
const DefaultEmotion = "joy"

// IsKnownEmotion reports whether the given key is one of the supported emotions.
func IsKnownEmotion(emotion string) bool {
	for _, e := range Emotions {
		if e == emotion {
			return true
		}
	}
	return false
}

// GeoPoint is a weighted heat point. Internal order is (lat, lng), unlike
// GeoJSON coordinates which are [lng, lat] on the wire.
type GeoPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// MapMarker is one labelled point rendered on top of the heat layer.
// Markers are only produced from GeoJSON features; the legacy point shape
// carries no label, score or review count.
type MapMarker struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
	ReviewCount int     `json:"review_count"`
}

// Geometry is a GeoJSON geometry. Only "Point" geometries are consumed.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties carries the per-neighborhood aggregation attached to a
// heatmap feature. Score and Weight are pointers so that an absent property
// can be told apart from an explicit zero.
type FeatureProperties struct {
	Neighborhood string   `json:"neighborhood"`
	Emotion      string   `json:"emotion,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	ReviewCount  int      `json:"review_count"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureCollection is the GeoJSON shape of a heatmap response.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// DatasetKind tags the resolved wire shape of a heatmap payload.
type DatasetKind int

const (
	DatasetEmpty DatasetKind = iota
	DatasetGeoJSON
	DatasetLegacy
)

// HeatmapDataset is the union of the two supported heatmap wire shapes,
// resolved exactly once when the payload is decoded. Downstream code asks
// for Kind once instead of re-probing raw JSON.
type HeatmapDataset struct {
	kind   DatasetKind
	geo    *FeatureCollection
	legacy []GeoPoint
}

// NewGeoJSONDataset wraps a feature collection.
func NewGeoJSONDataset(fc *FeatureCollection) HeatmapDataset {
	if fc == nil {
		return HeatmapDataset{}
	}
	return HeatmapDataset{kind: DatasetGeoJSON, geo: fc}
}

// NewLegacyDataset wraps a flat point array.
func NewLegacyDataset(points []GeoPoint) HeatmapDataset {
	if points == nil {
		return HeatmapDataset{}
	}
	return HeatmapDataset{kind: DatasetLegacy, legacy: points}
}

// Kind returns the resolved wire shape.
func (d HeatmapDataset) Kind() DatasetKind { return d.kind }

// FeatureCollection returns the GeoJSON payload, nil unless Kind is DatasetGeoJSON.
func (d HeatmapDataset) FeatureCollection() *FeatureCollection { return d.geo }

// LegacyPoints returns the flat point payload, nil unless Kind is DatasetLegacy.
func (d HeatmapDataset) LegacyPoints() []GeoPoint { return d.legacy }

type heatmapWire struct {
	Type     string     `json:"type,omitempty"`
	Features []Feature  `json:"features,omitempty"`
	Data     []GeoPoint `json:"data,omitempty"`
}

// UnmarshalJSON resolves the union at the system boundary: a payload with a
// "features" key is GeoJSON, one with a "data" key is the legacy flat array,
// anything else is an empty dataset rather than an error.
func (d *HeatmapDataset) UnmarshalJSON(b []byte) error {
	var wire heatmapWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	switch {
	case wire.Features != nil:
		*d = NewGeoJSONDataset(&FeatureCollection{Type: wire.Type, Features: wire.Features})
	case wire.Data != nil:
		*d = NewLegacyDataset(wire.Data)
	default:
		*d = HeatmapDataset{}
	}
	return nil
}

// MarshalJSON writes the dataset back in its original wire shape.
func (d HeatmapDataset) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case DatasetGeoJSON:
		return json.Marshal(d.geo)
	case DatasetLegacy:
		return json.Marshal(heatmapWire{Data: d.legacy})
	default:
		return []byte(`{}`), nil
	}
}

// NormalizedDataset is the single internal representation both heat layer
// and marker layer render from. Treated as immutable for one render cycle.
type NormalizedDataset struct {
	Points  []GeoPoint
	Markers []MapMarker
}
