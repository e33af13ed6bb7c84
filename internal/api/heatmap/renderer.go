package heatmap

import (
	"log/slog"
	"math"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// HeatStyle is the fixed visual profile of the heat-intensity layer.
type HeatStyle struct {
	Radius   int
	Blur     int
	MaxZoom  int
	Gradient map[float64]string
}

// DefaultHeatStyle mirrors the rendering profile the dashboard has always
// shipped with: 4-stop gradient from low to high intensity.
func DefaultHeatStyle() HeatStyle {
	return HeatStyle{
		Radius:  25,
		Blur:    15,
		MaxZoom: 10,
		Gradient: map[float64]string{
			0.4: "blue",
			0.6: "lime",
			0.8: "yellow",
			1.0: "red",
		},
	}
}

// HeatLayer is one constructed heat-intensity layer. Point weight drives
// intensity. Layers are replaced wholesale, never mutated in place.
type HeatLayer struct {
	Points []types.GeoPoint
	Style  HeatStyle
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// Viewport is the long-lived map surface. It is created once per session,
// handed to the renderer at construction, reused across every data update
// and torn down only through Close. It records the camera state a frontend
// map pane would consume.
type Viewport struct {
	CenterLat float64
	CenterLng float64
	Zoom      int
	bounds    *Bounds
	closed    bool
}

// NewViewport creates a viewport at the given initial camera position.
func NewViewport(lat, lng float64, zoom int) *Viewport {
	return &Viewport{CenterLat: lat, CenterLng: lng, Zoom: zoom}
}

// FitBounds moves the camera to frame the given box.
func (v *Viewport) FitBounds(b Bounds) {
	if v.closed {
		return
	}
	v.bounds = &b
	v.CenterLat = (b.MinLat + b.MaxLat) / 2
	v.CenterLng = (b.MinLng + b.MaxLng) / 2
}

// Bounds returns the last fitted box, nil before the first fit.
func (v *Viewport) Bounds() *Bounds { return v.bounds }

// Close releases the viewport. Further updates through a renderer bound to
// it become no-ops.
func (v *Viewport) Close() { v.closed = true }

// Closed reports whether Close has been called.
func (v *Viewport) Closed() bool { return v.closed }

// MarkerClickFunc receives the resolved location identity of a clicked
// marker. It is the sole channel by which a map interaction becomes a
// location-selection event upstream.
type MarkerClickFunc func(lat, lng float64, label string)

type boundMarker struct {
	marker  types.MapMarker
	onClick MarkerClickFunc
}

type pendingUpdate struct {
	data    types.NormalizedDataset
	onClick MarkerClickFunc
}

// Renderer owns the marker layer and the heat layer on top of one viewport
// and re-synchronizes both whenever the normalized point set changes.
//
// The renderer is confined to the UI event goroutine: updates arriving while
// a previous update is still being applied (a click handler triggering a
// refetch, for instance) are sequenced through an internal queue rather
// than a lock.
type Renderer struct {
	logger   *slog.Logger
	viewport *Viewport
	style    HeatStyle

	markers  []boundMarker
	heat     *HeatLayer
	updating bool
	queue    []pendingUpdate
}

// NewRenderer binds a renderer to an explicitly owned viewport handle.
func NewRenderer(viewport *Viewport, logger *slog.Logger) *Renderer {
	return &Renderer{
		logger:   logger,
		viewport: viewport,
		style:    DefaultHeatStyle(),
	}
}

// Viewport returns the handle the renderer draws on.
func (r *Renderer) Viewport() *Viewport { return r.viewport }

// Markers returns the markers of the current dataset.
func (r *Renderer) Markers() []types.MapMarker {
	out := make([]types.MapMarker, len(r.markers))
	for i, m := range r.markers {
		out[i] = m.marker
	}
	return out
}

// HeatLayer returns the currently attached heat layer, nil when the last
// dataset was empty.
func (r *Renderer) HeatLayer() *HeatLayer { return r.heat }

// Update replaces both layers with the given normalized dataset.
//
//  1. All markers are cleared (idempotent if already empty).
//  2. The previous heat layer, if any, is removed.
//  3. Each marker is registered with onClick as its click handler.
//  4. A new heat layer is built when points exist.
//  5. The viewport is fitted to the finite point coordinates; an empty
//     dataset leaves the camera where it is instead of resetting it.
func (r *Renderer) Update(data types.NormalizedDataset, onClick MarkerClickFunc) {
	if r.viewport == nil || r.viewport.Closed() {
		r.logger.Warn("Renderer update on closed viewport dropped")
		return
	}
	if r.updating {
		// Re-entrant update: queue it, the outer call drains in order.
		r.queue = append(r.queue, pendingUpdate{data: data, onClick: onClick})
		return
	}
	r.updating = true
	r.apply(data, onClick)
	for len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.apply(next.data, next.onClick)
	}
	r.updating = false
}

func (r *Renderer) apply(data types.NormalizedDataset, onClick MarkerClickFunc) {
	r.markers = r.markers[:0]
	r.heat = nil

	for _, m := range data.Markers {
		r.markers = append(r.markers, boundMarker{marker: m, onClick: onClick})
	}

	if len(data.Points) > 0 {
		r.heat = &HeatLayer{Points: data.Points, Style: r.style}
	}

	if bounds, ok := fitBounds(data.Points); ok {
		r.viewport.FitBounds(bounds)
	}

	r.logger.Debug("Heatmap layers synchronized",
		slog.Int("points", len(data.Points)),
		slog.Int("markers", len(r.markers)),
	)
}

// Click dispatches a map click at the given coordinate to the marker
// registered there. It reports whether a marker resolved the click.
func (r *Renderer) Click(lat, lng float64) bool {
	for _, m := range r.markers {
		if m.marker.Lat == lat && m.marker.Lng == lng {
			if m.onClick != nil {
				m.onClick(m.marker.Lat, m.marker.Lng, m.marker.Label)
			}
			return true
		}
	}
	return false
}

// fitBounds computes the box framing all finite points. Non-finite
// coordinates are filtered out so one bad point cannot corrupt the fit for
// the rest. ok is false when no usable point remains.
func fitBounds(points []types.GeoPoint) (Bounds, bool) {
	b := Bounds{MinLat: math.Inf(1), MinLng: math.Inf(1), MaxLat: math.Inf(-1), MaxLng: math.Inf(-1)}
	found := false
	for _, p := range points {
		if !isFinite(p.Lat) || !isFinite(p.Lng) {
			continue
		}
		found = true
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b, found
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
