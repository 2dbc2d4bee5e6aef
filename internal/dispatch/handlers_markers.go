package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/catalog"
	"github.com/Epawse/geocommander/internal/logging"
	"github.com/Epawse/geocommander/internal/scene"
)

// addMarker inserts a marker into the registry. Re-adding an existing id
// replaces the prior entity (remove then add) so exactly one entity per id
// exists. After insertion the camera flies to the marker for visual
// confirmation.
func (d *Dispatcher) addMarker(ctx context.Context, h scene.Handle, p action.AddMarkerParams) (any, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	entity, err := h.AddEntity(scene.EntitySpec{
		Kind:        scene.EntityPoint,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Position:    scene.Cartographic{Longitude: p.Longitude, Latitude: p.Latitude, Altitude: p.Altitude},
	})
	if err != nil {
		return nil, fmt.Errorf("add marker: %w", err)
	}

	d.mu.Lock()
	old, existed := d.markers[id]
	d.markers[id] = entity
	d.mu.Unlock()

	if existed {
		if err := h.RemoveEntity(old); err != nil {
			logging.DispatchWarn("remove replaced marker %s: %v", id, err)
		}
	}

	focus := scene.Cartographic{Longitude: p.Longitude, Latitude: p.Latitude, Altitude: markerFocusAltitude}
	orient := scene.Orientation{Heading: 0, Pitch: action.DefaultFlyPitch, Roll: 0}
	if err := h.FlyTo(ctx, focus, orient, 2*time.Second); err != nil {
		logging.DispatchWarn("fly to marker %s: %v", id, err)
	}

	return map[string]any{
		"id":      id,
		"message": fmt.Sprintf("Marker %q added at (%.4f, %.4f)", p.Name, p.Longitude, p.Latitude),
	}, nil
}

// removeMarker deletes one marker; unknown ids are an error, not a no-op.
func (d *Dispatcher) removeMarker(h scene.Handle, p action.RemoveMarkerParams) (any, error) {
	d.mu.Lock()
	entity, ok := d.markers[p.ID]
	if ok {
		delete(d.markers, p.ID)
	}
	d.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("Marker %s not found", p.ID)
	}
	if err := h.RemoveEntity(entity); err != nil {
		return nil, fmt.Errorf("remove marker: %w", err)
	}
	return map[string]any{"message": fmt.Sprintf("Marker %s removed", p.ID)}, nil
}

// clearMarkers removes every registered marker and reports the count.
func (d *Dispatcher) clearMarkers(h scene.Handle) (any, error) {
	d.mu.Lock()
	markers := d.markers
	d.markers = make(map[string]scene.EntityHandle)
	d.mu.Unlock()

	for id, entity := range markers {
		if err := h.RemoveEntity(entity); err != nil {
			logging.DispatchWarn("remove marker %s: %v", id, err)
		}
	}
	return map[string]any{"count": len(markers)}, nil
}

// drawPolygon inserts a filled, outlined, ground-clamped polygon with the
// same replace-on-id-collision rule as markers.
func (d *Dispatcher) drawPolygon(h scene.Handle, p action.DrawPolygonParams) (any, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	entity, err := h.AddEntity(scene.EntitySpec{
		Kind:      scene.EntityPolygon,
		Name:      p.Name,
		Color:     p.Color,
		Opacity:   p.Opacity,
		Positions: p.Points,
	})
	if err != nil {
		return nil, fmt.Errorf("draw polygon: %w", err)
	}

	d.mu.Lock()
	old, existed := d.polygons[id]
	d.polygons[id] = entity
	d.mu.Unlock()

	if existed {
		if err := h.RemoveEntity(old); err != nil {
			logging.DispatchWarn("remove replaced polygon %s: %v", id, err)
		}
	}

	return map[string]any{
		"id":      id,
		"message": fmt.Sprintf("Polygon %q drawn with %d vertices", p.Name, len(p.Points)),
	}, nil
}

// highlightArea adds a transient circle or rectangle overlay and schedules
// its removal. Highlights are not registry-tracked but pending timers are
// cancelled on Destroy so nothing leaks.
func (d *Dispatcher) highlightArea(h scene.Handle, p action.HighlightAreaParams) (any, error) {
	var spec scene.EntitySpec
	switch p.Type {
	case "circle":
		spec = scene.EntitySpec{
			Kind:          scene.EntityEllipse,
			Name:          "highlight",
			Color:         p.Color,
			Opacity:       0.4,
			Position:      scene.Cartographic{Longitude: p.Longitude, Latitude: p.Latitude},
			SemiMajorAxis: p.Radius,
			SemiMinorAxis: p.Radius,
		}
	case "rectangle":
		spec = scene.EntitySpec{
			Kind:    scene.EntityRectangle,
			Name:    "highlight",
			Color:   p.Color,
			Opacity: 0.4,
			West:    *p.West,
			South:   *p.South,
			East:    *p.East,
			North:   *p.North,
		}
	}

	entity, err := h.AddEntity(spec)
	if err != nil {
		return nil, fmt.Errorf("highlight area: %w", err)
	}

	id := uuid.NewString()
	timer := time.AfterFunc(p.HighlightDuration(), func() {
		d.expireHighlight(id)
	})

	d.mu.Lock()
	d.highlights[id] = &highlight{entity: entity, timer: timer}
	d.mu.Unlock()

	return map[string]any{
		"id":       id,
		"message":  fmt.Sprintf("Highlighted %s for %.0fs", p.Type, p.Duration),
		"duration": p.Duration,
	}, nil
}

// expireHighlight removes an auto-expired highlight overlay.
func (d *Dispatcher) expireHighlight(id string) {
	d.mu.Lock()
	hl, ok := d.highlights[id]
	if ok {
		delete(d.highlights, id)
	}
	h := d.handle
	d.mu.Unlock()

	if !ok || h == nil {
		return
	}
	if err := h.RemoveEntity(hl.entity); err != nil {
		logging.DispatchWarn("expire highlight %s: %v", id, err)
	}
}

// flyToLocation resolves a catalog location and flies there.
func (d *Dispatcher) flyToLocation(ctx context.Context, h scene.Handle, p action.FlyToLocationParams) (any, error) {
	loc, ok := catalog.LookupLocation(p.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocationUnknown, p.Name)
	}
	return d.flyTo(ctx, h, action.FlyToParams{
		Longitude: loc.Longitude,
		Latitude:  loc.Latitude,
		Altitude:  loc.Altitude,
		Pitch:     action.DefaultFlyPitch,
		Duration:  action.DefaultFlyDuration,
	})
}

// addMarkerAtLocation resolves a catalog location and drops a marker there.
func (d *Dispatcher) addMarkerAtLocation(ctx context.Context, h scene.Handle, p action.AddMarkerAtLocationParams) (any, error) {
	loc, ok := catalog.LookupLocation(p.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocationUnknown, p.Name)
	}
	return d.addMarker(ctx, h, action.AddMarkerParams{
		Name:        loc.Name,
		Longitude:   loc.Longitude,
		Latitude:    loc.Latitude,
		Color:       action.DefaultMarkerColor,
		Description: loc.Description,
	})
}
