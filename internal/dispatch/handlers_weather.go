package dispatch

import (
	"fmt"
	"time"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/catalog"
	"github.com/Epawse/geocommander/internal/logging"
	"github.com/Epawse/geocommander/internal/scene"
)

// weatherState is the singleton active weather effect. At most one exists;
// installing a new one fully clears the previous effect first.
type weatherState struct {
	kind      scene.EffectKind
	intensity float64
	start     time.Time
	stage     scene.StageHandle
}

// atmosphereSnapshot captures pre-effect environment parameters. Invariant:
// non-nil exactly when a weather effect is active; clearing restores these
// values verbatim.
type atmosphereSnapshot struct {
	atmo scene.Atmosphere
	fog  scene.FogSettings
}

// fogDensityFor maps effect intensity to scene fog density for the fog
// weather kind.
func fogDensityFor(intensity float64) float64 {
	return 0.0002 + 0.0015*intensity
}

// setWeather installs the singleton weather effect. Type "clear" behaves
// as clear_weather.
func (d *Dispatcher) setWeather(h scene.Handle, p action.SetWeatherParams) (any, error) {
	if p.Type == "clear" {
		return d.clearWeather(h)
	}
	kind := scene.EffectKind(p.Type)
	target, ok := catalog.WeatherAtmosphere(kind)
	if !ok {
		return nil, fmt.Errorf("unsupported weather type: %s", p.Type)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.clearWeatherLocked(h)

	snap := &atmosphereSnapshot{atmo: h.Atmosphere(), fog: h.Fog()}
	stage, err := h.AddEffectStage(scene.EffectSpec{Kind: kind, Intensity: p.Intensity, Start: time.Now()})
	if err != nil {
		return nil, fmt.Errorf("install %s effect: %w", kind, err)
	}

	d.weather = &weatherState{kind: kind, intensity: p.Intensity, start: time.Now(), stage: stage}
	d.snapshot = snap

	h.SetAtmosphere(target)
	if kind == scene.EffectFog {
		f := snap.fog
		f.Density = fogDensityFor(p.Intensity)
		h.SetFog(f)
	}

	return map[string]any{
		"message":   fmt.Sprintf("Weather set to %s (intensity %.2f)", kind, p.Intensity),
		"type":      string(kind),
		"intensity": p.Intensity,
	}, nil
}

// clearWeather removes the active effect and restores the snapshot.
// Idempotent: calling with nothing active is a no-op success.
func (d *Dispatcher) clearWeather(h scene.Handle) (any, error) {
	d.mu.Lock()
	d.clearWeatherLocked(h)
	d.mu.Unlock()
	return map[string]any{"message": "Weather cleared"}, nil
}

// clearWeatherLocked does the actual teardown. Caller holds d.mu.
func (d *Dispatcher) clearWeatherLocked(h scene.Handle) {
	if d.weather == nil {
		return
	}
	if err := h.RemoveEffectStage(d.weather.stage); err != nil {
		logging.DispatchWarn("remove %s effect stage: %v", d.weather.kind, err)
	}
	if d.snapshot != nil {
		h.SetAtmosphere(d.snapshot.atmo)
		h.SetFog(d.snapshot.fog)
	}
	d.weather = nil
	d.snapshot = nil
}

// ActiveWeather reports the current effect kind, or "" when none.
func (d *Dispatcher) ActiveWeather() scene.EffectKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.weather == nil {
		return ""
	}
	return d.weather.kind
}
