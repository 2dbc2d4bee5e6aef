// Package dispatch maps validated action requests onto scene mutations.
// The Dispatcher owns the marker and polygon registries and the singleton
// weather effect; everything it does to the viewport goes through the
// injected scene.Handle.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/logging"
	"github.com/Epawse/geocommander/internal/scene"
)

// ExecRecord describes one completed dispatch for observability consumers
// (status UI, action log store). It is emitted after the result is built
// and is never required for correct dispatch behavior.
type ExecRecord struct {
	ID       string
	Type     action.Type
	Success  bool
	Error    string
	Duration time.Duration
	Time     time.Time
}

// HomeView is the default overview destination used by reset_view.
type HomeView struct {
	Destination scene.Cartographic
	Orientation scene.Orientation
	Duration    time.Duration
}

// DefaultHomeView is a whole-of-China overview matching the viewer's
// startup camera.
func DefaultHomeView() HomeView {
	return HomeView{
		Destination: scene.Cartographic{Longitude: 105.0, Latitude: 35.0, Altitude: 15000000},
		Orientation: scene.Orientation{Heading: 0, Pitch: -90, Roll: 0},
		Duration:    2 * time.Second,
	}
}

// Zoom altitude clamp bounds in meters.
const (
	minZoomAltitude = 50
	maxZoomAltitude = 50000000
	zoomDuration    = time.Second

	// markerFocusAltitude is the fly-to altitude used to visually confirm
	// a freshly added marker.
	markerFocusAltitude = 1000
)

type highlight struct {
	entity scene.EntityHandle
	timer  *time.Timer
}

// Dispatcher turns action requests into scene mutations and correlated
// results. Safe for concurrent use; registry mutations are serialized,
// camera flights are awaited without blocking other dispatches.
type Dispatcher struct {
	mu sync.Mutex

	handle scene.Handle

	markers    map[string]scene.EntityHandle
	polygons   map[string]scene.EntityHandle
	weather    *weatherState
	snapshot   *atmosphereSnapshot
	highlights map[string]*highlight

	home HomeView

	onExecuted func(ExecRecord)
}

// New creates a Dispatcher with no scene attached. Every dispatch fails
// with "Viewer not initialized" until Attach is called.
func New() *Dispatcher {
	return &Dispatcher{
		markers:    make(map[string]scene.EntityHandle),
		polygons:   make(map[string]scene.EntityHandle),
		highlights: make(map[string]*highlight),
		home:       DefaultHomeView(),
	}
}

// Attach injects the live scene handle. Replacing an existing handle is
// allowed; registries keep their entries.
func (d *Dispatcher) Attach(h scene.Handle) {
	d.mu.Lock()
	d.handle = h
	d.mu.Unlock()
	logging.Dispatch("scene handle attached")
}

// Detach removes the scene handle without clearing registries.
func (d *Dispatcher) Detach() {
	d.mu.Lock()
	d.handle = nil
	d.mu.Unlock()
	logging.Dispatch("scene handle detached")
}

// SetHomeView overrides the reset_view destination.
func (d *Dispatcher) SetHomeView(h HomeView) {
	d.mu.Lock()
	d.home = h
	d.mu.Unlock()
}

// SetOnExecuted installs the per-action observability hook.
func (d *Dispatcher) SetOnExecuted(fn func(ExecRecord)) {
	d.mu.Lock()
	d.onExecuted = fn
	d.mu.Unlock()
}

// MarkerCount reports the number of registered markers.
func (d *Dispatcher) MarkerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.markers)
}

// PolygonCount reports the number of registered polygon overlays.
func (d *Dispatcher) PolygonCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.polygons)
}

// Dispatch decodes, validates and executes one request. It never panics
// and never returns an error: every failure becomes a Result with
// Success=false and a human-readable Error correlated to the request id.
func (d *Dispatcher) Dispatch(ctx context.Context, req action.Request) action.Result {
	params, err := action.Decode(req.Type, req.Payload)
	if err != nil {
		if isUnknownType(err) {
			return d.finish(req, time.Now(), action.Fail(req.ID, fmt.Sprintf("Unknown action type: %s", req.Type)))
		}
		return d.finish(req, time.Now(), action.Fail(req.ID, err.Error()))
	}
	return d.Execute(ctx, req.ID, req.Type, params)
}

// Execute runs an already-validated action. Used by the connection
// manager, which validates payloads at the transport boundary.
func (d *Dispatcher) Execute(ctx context.Context, id string, typ action.Type, params action.Params) (res action.Result) {
	start := time.Now()
	req := action.Request{ID: id, Type: typ}

	defer func() {
		if r := recover(); r != nil {
			logging.DispatchWarn("panic in %s handler: %v", typ, r)
			res = d.finish(req, start, action.Fail(id, fmt.Sprintf("internal error: %v", r)))
		}
	}()

	d.mu.Lock()
	h := d.handle
	d.mu.Unlock()
	if h == nil {
		return d.finish(req, start, action.Fail(id, "Viewer not initialized"))
	}

	var (
		value   any
		execErr error
	)
	switch p := params.(type) {
	case action.FlyToParams:
		value, execErr = d.flyTo(ctx, h, p)
	case action.SwitchBasemapParams:
		value, execErr = d.switchBasemap(h, p)
	case action.AddMarkerParams:
		value, execErr = d.addMarker(ctx, h, p)
	case action.RemoveMarkerParams:
		value, execErr = d.removeMarker(h, p)
	case action.ClearMarkersParams:
		value, execErr = d.clearMarkers(h)
	case action.SetWeatherParams:
		value, execErr = d.setWeather(h, p)
	case action.ClearWeatherParams:
		value, execErr = d.clearWeather(h)
	case action.SetTimeParams:
		value, execErr = d.setTime(h, p)
	case action.ResetViewParams:
		value, execErr = d.resetView(ctx, h)
	case action.GetCameraPositionParams:
		value, execErr = d.cameraPosition(h)
	case action.MeasureDistanceParams:
		value, execErr = d.measureDistance(p)
	case action.DrawPolygonParams:
		value, execErr = d.drawPolygon(h, p)
	case action.HighlightAreaParams:
		value, execErr = d.highlightArea(h, p)
	case action.ZoomParams:
		value, execErr = d.zoom(ctx, h, p)
	case action.SetPitchParams:
		value, execErr = d.setPitch(ctx, h, p)
	case action.FlyToLocationParams:
		value, execErr = d.flyToLocation(ctx, h, p)
	case action.AddMarkerAtLocationParams:
		value, execErr = d.addMarkerAtLocation(ctx, h, p)
	default:
		return d.finish(req, start, action.Fail(id, fmt.Sprintf("Unknown action type: %s", typ)))
	}

	if execErr != nil {
		return d.finish(req, start, action.Fail(id, execErr.Error()))
	}
	return d.finish(req, start, action.OK(id, value))
}

// Destroy clears all markers, polygons, pending highlights and the weather
// effect, then detaches the scene handle. Guaranteed cleanup path for the
// owning session; idempotent.
func (d *Dispatcher) Destroy() {
	d.mu.Lock()
	h := d.handle
	markers := d.markers
	polygons := d.polygons
	highlights := d.highlights
	d.markers = make(map[string]scene.EntityHandle)
	d.polygons = make(map[string]scene.EntityHandle)
	d.highlights = make(map[string]*highlight)
	d.handle = nil
	d.mu.Unlock()

	for _, hl := range highlights {
		hl.timer.Stop()
	}

	if h != nil {
		for _, eh := range markers {
			_ = h.RemoveEntity(eh)
		}
		for _, eh := range polygons {
			_ = h.RemoveEntity(eh)
		}
		for _, hl := range highlights {
			_ = h.RemoveEntity(hl.entity)
		}
		_, _ = d.clearWeather(h)
	}
	logging.Dispatch("dispatcher destroyed: %d markers, %d polygons released", len(markers), len(polygons))
}

func (d *Dispatcher) finish(req action.Request, start time.Time, res action.Result) action.Result {
	d.mu.Lock()
	hook := d.onExecuted
	d.mu.Unlock()

	if res.Success {
		logging.Dispatch("%s ok (%s)", req.Type, time.Since(start).Round(time.Millisecond))
	} else {
		logging.DispatchWarn("%s failed: %s", req.Type, res.Error)
	}

	if hook != nil {
		hook(ExecRecord{
			ID:       res.ID,
			Type:     req.Type,
			Success:  res.Success,
			Error:    res.Error,
			Duration: time.Since(start),
			Time:     start,
		})
	}
	return res
}
