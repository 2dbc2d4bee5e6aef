package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/catalog"
	"github.com/Epawse/geocommander/internal/scene"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *scene.Sim) {
	t.Helper()
	sim := scene.NewSim()
	d := New()
	d.Attach(sim)
	t.Cleanup(d.Destroy)
	return d, sim
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func dispatchOK(t *testing.T, d *Dispatcher, typ action.Type, v any) map[string]any {
	t.Helper()
	res := d.Dispatch(context.Background(), action.Request{ID: "req-1", Type: typ, Payload: payload(t, v)})
	require.True(t, res.Success, "expected success, got error: %s", res.Error)
	if res.Result == nil {
		return nil
	}
	m, ok := res.Result.(map[string]any)
	require.True(t, ok, "result is %T, want map", res.Result)
	return m
}

func TestDispatch_NoSceneAttached(t *testing.T) {
	d := New()
	res := d.Dispatch(context.Background(), action.Request{ID: "a1", Type: action.TypeFlyTo,
		Payload: payload(t, map[string]any{"longitude": 116.4, "latitude": 39.9})})

	assert.False(t, res.Success)
	assert.Equal(t, "Viewer not initialized", res.Error)
	assert.Equal(t, "a1", res.ID)
}

func TestDispatch_UnknownActionType(t *testing.T) {
	d, _ := newTestDispatcher(t)
	res := d.Dispatch(context.Background(), action.Request{ID: "a2", Type: "teleport"})

	assert.False(t, res.Success)
	assert.Equal(t, "Unknown action type: teleport", res.Error)
}

func TestDispatch_ResultEchoesRequestID(t *testing.T) {
	d, _ := newTestDispatcher(t)

	ok := d.Dispatch(context.Background(), action.Request{ID: "good", Type: action.TypeGetCameraPosition})
	require.True(t, ok.Success)
	assert.Equal(t, "good", ok.ID)

	bad := d.Dispatch(context.Background(), action.Request{ID: "bad", Type: action.TypeRemoveMarker,
		Payload: payload(t, map[string]any{"id": "ghost"})})
	require.False(t, bad.Success)
	assert.Equal(t, "bad", bad.ID)
}

func TestFlyTo(t *testing.T) {
	d, sim := newTestDispatcher(t)

	t.Run("moves the camera to the destination", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeFlyTo, map[string]any{
			"longitude": 116.4074, "latitude": 39.9042, "altitude": 5000.0,
		})
		assert.Contains(t, out["message"], "Flew to")

		cam := sim.CameraState()
		assert.InDelta(t, 116.4074, cam.Position.Longitude, 1e-9)
		assert.InDelta(t, 39.9042, cam.Position.Latitude, 1e-9)
		assert.InDelta(t, 5000, cam.Position.Altitude, 1e-9)
	})

	t.Run("applies default altitude and pitch", func(t *testing.T) {
		dispatchOK(t, d, action.TypeFlyTo, map[string]any{"longitude": 2.2945, "latitude": 48.8584})

		cam := sim.CameraState()
		assert.InDelta(t, 10000, cam.Position.Altitude, 1e-9)
		assert.InDelta(t, -45, cam.Orientation.Pitch, 1e-9)
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeFlyTo,
			Payload: payload(t, map[string]any{"longitude": 400.0, "latitude": 0.0})})
		assert.False(t, res.Success)
	})
}

func TestMarkerLifecycle(t *testing.T) {
	d, sim := newTestDispatcher(t)

	t.Run("add registers one entity", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeAddMarker, map[string]any{
			"id": "m1", "name": "Home", "longitude": 114.36, "latitude": 30.53,
		})
		assert.Equal(t, "m1", out["id"])
		assert.Equal(t, 1, d.MarkerCount())
		assert.Equal(t, 1, sim.EntityCount())
	})

	t.Run("re-adding the same id replaces, not leaks", func(t *testing.T) {
		dispatchOK(t, d, action.TypeAddMarker, map[string]any{
			"id": "m1", "name": "Home v2", "longitude": 114.37, "latitude": 30.54,
		})
		assert.Equal(t, 1, d.MarkerCount())
		assert.Equal(t, 1, sim.EntityCount())
	})

	t.Run("generated id when omitted", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeAddMarker, map[string]any{
			"name": "Anon", "longitude": 1.0, "latitude": 1.0,
		})
		assert.NotEmpty(t, out["id"])
		assert.Equal(t, 2, d.MarkerCount())
	})

	t.Run("remove deletes entity", func(t *testing.T) {
		dispatchOK(t, d, action.TypeRemoveMarker, map[string]any{"id": "m1"})
		assert.Equal(t, 1, d.MarkerCount())
		assert.Equal(t, 1, sim.EntityCount())
	})

	t.Run("removing unknown id is an error", func(t *testing.T) {
		res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeRemoveMarker,
			Payload: payload(t, map[string]any{"id": "m1"})})
		require.False(t, res.Success)
		assert.Equal(t, "Marker m1 not found", res.Error)
	})

	t.Run("clear removes everything and reports count", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeClearMarkers, nil)
		assert.EqualValues(t, 1, out["count"])
		assert.Equal(t, 0, d.MarkerCount())
		assert.Equal(t, 0, sim.EntityCount())
	})
}

func TestDrawPolygon_ReplaceOnCollision(t *testing.T) {
	d, sim := newTestDispatcher(t)

	tri := []map[string]float64{
		{"longitude": 0, "latitude": 0},
		{"longitude": 1, "latitude": 0},
		{"longitude": 0, "latitude": 1},
	}
	dispatchOK(t, d, action.TypeDrawPolygon, map[string]any{"id": "zone", "name": "Zone A", "points": tri})
	dispatchOK(t, d, action.TypeDrawPolygon, map[string]any{"id": "zone", "name": "Zone B", "points": tri})

	assert.Equal(t, 1, d.PolygonCount())
	assert.Equal(t, 1, sim.EntityCount())

	t.Run("too few points rejected", func(t *testing.T) {
		res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeDrawPolygon,
			Payload: payload(t, map[string]any{"points": tri[:2]})})
		assert.False(t, res.Success)
	})
}

func TestWeather(t *testing.T) {
	d, sim := newTestDispatcher(t)

	// Give the scene a distinctive pre-effect environment to restore.
	original := scene.Atmosphere{HueShift: 0.1, SaturationShift: 0.2, BrightnessShift: 0.3}
	sim.SetAtmosphere(original)
	originalFog := sim.Fog()

	t.Run("set rain applies target atmosphere", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeSetWeather, map[string]any{"type": "rain", "intensity": 0.6})
		assert.Equal(t, "rain", out["type"])
		assert.Equal(t, 1, sim.StageCount())
		assert.Equal(t, scene.EffectRain, d.ActiveWeather())

		want, _ := catalog.WeatherAtmosphere(scene.EffectRain)
		assert.Empty(t, cmp.Diff(want, sim.Atmosphere()))
	})

	t.Run("switching weather keeps a single stage", func(t *testing.T) {
		dispatchOK(t, d, action.TypeSetWeather, map[string]any{"type": "snow"})
		assert.Equal(t, 1, sim.StageCount())
		assert.Equal(t, scene.EffectSnow, d.ActiveWeather())
	})

	t.Run("clear restores the snapshot verbatim", func(t *testing.T) {
		dispatchOK(t, d, action.TypeClearWeather, nil)
		assert.Equal(t, 0, sim.StageCount())
		assert.Equal(t, scene.EffectKind(""), d.ActiveWeather())
		assert.Empty(t, cmp.Diff(original, sim.Atmosphere()))
		assert.Empty(t, cmp.Diff(originalFog, sim.Fog()))
	})

	t.Run("clear with nothing active is a no-op success", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeClearWeather, nil)
		assert.Equal(t, "Weather cleared", out["message"])
		assert.Empty(t, cmp.Diff(original, sim.Atmosphere()))
	})

	t.Run("fog raises density with intensity", func(t *testing.T) {
		dispatchOK(t, d, action.TypeSetWeather, map[string]any{"type": "fog", "intensity": 1.0})
		assert.InDelta(t, 0.0017, sim.Fog().Density, 1e-9)

		dispatchOK(t, d, action.TypeClearWeather, nil)
		assert.Empty(t, cmp.Diff(originalFog, sim.Fog()))
	})

	t.Run("type clear behaves as clear_weather", func(t *testing.T) {
		dispatchOK(t, d, action.TypeSetWeather, map[string]any{"type": "rain"})
		dispatchOK(t, d, action.TypeSetWeather, map[string]any{"type": "clear"})
		assert.Equal(t, 0, sim.StageCount())
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeSetWeather,
			Payload: payload(t, map[string]any{"type": "hail"})})
		assert.False(t, res.Success)
	})
}

func TestHighlightArea_Expires(t *testing.T) {
	d, sim := newTestDispatcher(t)

	dispatchOK(t, d, action.TypeHighlightArea, map[string]any{
		"type": "circle", "longitude": 116.4, "latitude": 39.9, "radius": 500.0,
		"duration": 0.02,
	})
	assert.Equal(t, 1, sim.EntityCount())

	require.Eventually(t, func() bool { return sim.EntityCount() == 0 },
		time.Second, 5*time.Millisecond, "highlight should auto-expire")
}

func TestHighlightArea_Rectangle(t *testing.T) {
	d, sim := newTestDispatcher(t)

	dispatchOK(t, d, action.TypeHighlightArea, map[string]any{
		"type": "rectangle", "west": 116.0, "south": 39.0, "east": 117.0, "north": 40.0,
		"duration": 60.0,
	})
	assert.Equal(t, 1, sim.EntityCount())

	res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeHighlightArea,
		Payload: payload(t, map[string]any{"type": "rectangle", "west": 116.0})})
	assert.False(t, res.Success, "partial rectangle bounds must be rejected")
}

func TestResetView(t *testing.T) {
	d, sim := newTestDispatcher(t)
	d.SetHomeView(HomeView{
		Destination: scene.Cartographic{Longitude: 10, Latitude: 20, Altitude: 100000},
		Orientation: scene.Orientation{Pitch: -30},
		Duration:    time.Second,
	})

	dispatchOK(t, d, action.TypeFlyTo, map[string]any{"longitude": 116.4, "latitude": 39.9})
	dispatchOK(t, d, action.TypeResetView, nil)

	cam := sim.CameraState()
	assert.InDelta(t, 10, cam.Position.Longitude, 1e-9)
	assert.InDelta(t, 20, cam.Position.Latitude, 1e-9)
	assert.InDelta(t, -30, cam.Orientation.Pitch, 1e-9)
}

func TestZoom(t *testing.T) {
	d, sim := newTestDispatcher(t)

	t.Run("zoom in halves altitude by default", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeZoomIn, nil)
		assert.Contains(t, out["message"], "Zoomed in")
		assert.InDelta(t, 7500000, sim.CameraState().Position.Altitude, 1e-6)
	})

	t.Run("zoom out doubles and clamps at the ceiling", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			dispatchOK(t, d, action.TypeZoomOut, nil)
		}
		assert.InDelta(t, maxZoomAltitude, sim.CameraState().Position.Altitude, 1e-6)
	})

	t.Run("zoom in clamps at the floor", func(t *testing.T) {
		dispatchOK(t, d, action.TypeZoomIn, map[string]any{"factor": 1e-12})
		assert.InDelta(t, minZoomAltitude, sim.CameraState().Position.Altitude, 1e-6)
	})
}

func TestSetPitch(t *testing.T) {
	d, sim := newTestDispatcher(t)

	dispatchOK(t, d, action.TypeSetPitch, map[string]any{"pitch": -60.0})
	assert.InDelta(t, -60, sim.CameraState().Orientation.Pitch, 1e-9)

	res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeSetPitch,
		Payload: payload(t, map[string]any{"pitch": -120.0})})
	assert.False(t, res.Success)
}

func TestMeasureDistance(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// One degree of longitude on the equator.
	out := dispatchOK(t, d, action.TypeMeasureDistance, map[string]any{
		"points": []map[string]float64{
			{"longitude": 0, "latitude": 0},
			{"longitude": 1, "latitude": 0},
		},
	})
	assert.InDelta(t, 111195, out["distanceMeters"].(float64), 5)
	assert.EqualValues(t, 2, out["points"])
}

func TestSwitchBasemap(t *testing.T) {
	d, sim := newTestDispatcher(t)

	t.Run("vector installs the tianditu pair", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeSwitchBasemap, map[string]any{"type": "vector"})
		assert.Equal(t, "vector", out["type"])
		layers := sim.ImageryLayers()
		require.Len(t, layers, 2)
		assert.Equal(t, "tianditu-vec", layers[0].Name)
	})

	t.Run("unknown style falls back to satellite", func(t *testing.T) {
		out := dispatchOK(t, d, action.TypeSwitchBasemap, map[string]any{"type": "sepia"})
		assert.Equal(t, "satellite", out["type"])
		layers := sim.ImageryLayers()
		require.Len(t, layers, 2)
		assert.Equal(t, "tianditu-img", layers[0].Name)
	})
}

func TestSetTime(t *testing.T) {
	d, sim := newTestDispatcher(t)

	t.Run("preset sets the hour and enables lighting", func(t *testing.T) {
		dispatchOK(t, d, action.TypeSetTime, map[string]any{"preset": "dusk"})
		assert.Equal(t, 18, sim.Clock().Current.Hour())
		assert.True(t, sim.LightingEnabled())
	})

	t.Run("explicit instant", func(t *testing.T) {
		dispatchOK(t, d, action.TypeSetTime, map[string]any{"datetime": "2026-08-24T06:30:00Z"})
		assert.Equal(t, time.Date(2026, 8, 24, 6, 30, 0, 0, time.UTC), sim.Clock().Current.UTC())
	})

	t.Run("speed multiplier", func(t *testing.T) {
		dispatchOK(t, d, action.TypeSetTime, map[string]any{"preset": "day", "speed": 60.0})
		assert.InDelta(t, 60, sim.Clock().Multiplier, 1e-9)
	})

	t.Run("garbage datetime rejected", func(t *testing.T) {
		res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeSetTime,
			Payload: payload(t, map[string]any{"datetime": "yesterday-ish"})})
		assert.False(t, res.Success)
	})
}

func TestCatalogActions(t *testing.T) {
	d, sim := newTestDispatcher(t)

	t.Run("fly_to_location resolves aliases", func(t *testing.T) {
		dispatchOK(t, d, action.TypeFlyToLocation, map[string]any{"name": "武汉大学"})
		cam := sim.CameraState()
		assert.InDelta(t, 114.3612, cam.Position.Longitude, 1e-4)
	})

	t.Run("add_marker_at_location drops a marker", func(t *testing.T) {
		dispatchOK(t, d, action.TypeAddMarkerAtLocation, map[string]any{"name": "beijing"})
		assert.Equal(t, 1, d.MarkerCount())
	})

	t.Run("unknown place is an error", func(t *testing.T) {
		res := d.Dispatch(context.Background(), action.Request{ID: "r", Type: action.TypeFlyToLocation,
			Payload: payload(t, map[string]any{"name": "atlantis"})})
		assert.False(t, res.Success)
	})
}

func TestDestroy_ReleasesEverything(t *testing.T) {
	sim := scene.NewSim()
	d := New()
	d.Attach(sim)

	original := sim.Atmosphere()
	dispatchOK(t, d, action.TypeAddMarker, map[string]any{"id": "m1", "longitude": 1.0, "latitude": 1.0})
	dispatchOK(t, d, action.TypeDrawPolygon, map[string]any{"id": "p1", "points": []map[string]float64{
		{"longitude": 0, "latitude": 0}, {"longitude": 1, "latitude": 0}, {"longitude": 0, "latitude": 1},
	}})
	dispatchOK(t, d, action.TypeHighlightArea, map[string]any{
		"type": "circle", "longitude": 0.0, "latitude": 0.0, "radius": 100.0, "duration": 300.0,
	})
	dispatchOK(t, d, action.TypeSetWeather, map[string]any{"type": "rain"})

	d.Destroy()

	assert.Equal(t, 0, sim.EntityCount())
	assert.Equal(t, 0, sim.StageCount())
	assert.Empty(t, cmp.Diff(original, sim.Atmosphere()))
	assert.Equal(t, 0, d.MarkerCount())

	res := d.Dispatch(context.Background(), action.Request{ID: "after", Type: action.TypeResetView})
	assert.False(t, res.Success)
	assert.Equal(t, "Viewer not initialized", res.Error)

	// Idempotent.
	d.Destroy()
}

func TestExecutedHook(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var mu sync.Mutex
	var records []ExecRecord
	d.SetOnExecuted(func(r ExecRecord) {
		mu.Lock()
		records = append(records, r)
		mu.Unlock()
	})

	dispatchOK(t, d, action.TypeGetCameraPosition, nil)
	d.Dispatch(context.Background(), action.Request{ID: "x", Type: "bogus"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, records, 2)
	assert.True(t, records[0].Success)
	assert.Equal(t, action.TypeGetCameraPosition, records[0].Type)
	assert.False(t, records[1].Success)
	assert.Equal(t, "x", records[1].ID)
}

// panicHandle provokes the recover path in Execute.
type panicHandle struct {
	*scene.Sim
}

func (p panicHandle) AddEntity(spec scene.EntitySpec) (scene.EntityHandle, error) {
	panic("viewer bridge gone")
}

func TestDispatch_RecoversFromHandlerPanic(t *testing.T) {
	d := New()
	d.Attach(panicHandle{scene.NewSim()})

	res := d.Dispatch(context.Background(), action.Request{ID: "p1", Type: action.TypeAddMarker,
		Payload: payload(t, map[string]any{"longitude": 1.0, "latitude": 1.0})})

	require.False(t, res.Success)
	assert.Contains(t, res.Error, "internal error")
	assert.Equal(t, "p1", res.ID)
}

func TestConcurrentDispatch(t *testing.T) {
	d, sim := newTestDispatcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", n)
			d.Dispatch(context.Background(), action.Request{ID: id, Type: action.TypeAddMarker,
				Payload: payload(t, map[string]any{"id": id, "longitude": float64(n), "latitude": 1.0})})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, d.MarkerCount())
	assert.Equal(t, 16, sim.EntityCount())
}
