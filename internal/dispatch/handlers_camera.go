package dispatch

import (
	"context"
	"fmt"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/geo"
	"github.com/Epawse/geocommander/internal/scene"
)

// flyTo animates the camera to an absolute destination and waits for the
// flight to finish so the result describes the visible state.
func (d *Dispatcher) flyTo(ctx context.Context, h scene.Handle, p action.FlyToParams) (any, error) {
	dest := scene.Cartographic{Longitude: p.Longitude, Latitude: p.Latitude, Altitude: p.Altitude}
	orient := scene.Orientation{Heading: p.Heading, Pitch: p.Pitch, Roll: p.Roll}
	if err := h.FlyTo(ctx, dest, orient, p.FlightDuration()); err != nil {
		return nil, fmt.Errorf("flight failed: %w", err)
	}
	return map[string]any{
		"message":   fmt.Sprintf("Flew to (%.4f, %.4f) at %.0fm", p.Longitude, p.Latitude, p.Altitude),
		"longitude": p.Longitude,
		"latitude":  p.Latitude,
		"altitude":  p.Altitude,
	}, nil
}

// resetView flies back to the configured overview.
func (d *Dispatcher) resetView(ctx context.Context, h scene.Handle) (any, error) {
	d.mu.Lock()
	home := d.home
	d.mu.Unlock()
	if err := h.FlyTo(ctx, home.Destination, home.Orientation, home.Duration); err != nil {
		return nil, fmt.Errorf("flight failed: %w", err)
	}
	return map[string]any{"message": "View reset to default"}, nil
}

// cameraPosition is a pure read of the camera state.
func (d *Dispatcher) cameraPosition(h scene.Handle) (any, error) {
	return h.CameraState(), nil
}

// zoom multiplies the current altitude by the factor, clamped to sane
// bounds, and animates there over a fixed short duration.
func (d *Dispatcher) zoom(ctx context.Context, h scene.Handle, p action.ZoomParams) (any, error) {
	cam := h.CameraState()
	alt := geo.Clamp(cam.Position.Altitude*p.Factor, minZoomAltitude, maxZoomAltitude)
	dest := cam.Position
	dest.Altitude = alt
	if err := h.FlyTo(ctx, dest, cam.Orientation, zoomDuration); err != nil {
		return nil, fmt.Errorf("flight failed: %w", err)
	}
	verb := "Zoomed in"
	if p.Out {
		verb = "Zoomed out"
	}
	return map[string]any{
		"message":  fmt.Sprintf("%s to %.0fm", verb, alt),
		"altitude": alt,
	}, nil
}

// setPitch re-flies the camera in place with only the pitch changed.
func (d *Dispatcher) setPitch(ctx context.Context, h scene.Handle, p action.SetPitchParams) (any, error) {
	cam := h.CameraState()
	orient := cam.Orientation
	orient.Pitch = p.Pitch
	if err := h.FlyTo(ctx, cam.Position, orient, zoomDuration); err != nil {
		return nil, fmt.Errorf("flight failed: %w", err)
	}
	return map[string]any{
		"message": fmt.Sprintf("Pitch set to %.1f degrees", p.Pitch),
		"pitch":   p.Pitch,
	}, nil
}

// measureDistance sums great-circle distance along the supplied path.
// Pure computation; the scene is not consulted.
func (d *Dispatcher) measureDistance(p action.MeasureDistanceParams) (any, error) {
	total := geo.PathDistance(p.Points)
	return map[string]any{
		"distanceMeters": total,
		"distanceKm":     total / 1000,
		"points":         len(p.Points),
	}, nil
}
