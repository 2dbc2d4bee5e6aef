package dispatch

import (
	"fmt"
	"time"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/catalog"
	"github.com/Epawse/geocommander/internal/logging"
	"github.com/Epawse/geocommander/internal/scene"
)

// switchBasemap removes all current imagery layers and installs the layer
// set for the requested type. Unknown types fall back to satellite.
func (d *Dispatcher) switchBasemap(h scene.Handle, p action.SwitchBasemapParams) (any, error) {
	providers, kind := catalog.BasemapProviders(p.Type)

	removed := len(h.ImageryLayers())
	h.ClearImagery()
	for _, provider := range providers {
		h.AddImagery(provider)
	}
	logging.SceneDebug("basemap %s: %d layers removed, %d added", kind, removed, len(providers))

	return map[string]any{
		"type":    string(kind),
		"message": fmt.Sprintf("Basemap switched to %s", kind),
	}, nil
}

// setTime sets the simulated clock by explicit instant or preset hour,
// independently applies the speed multiplier, and always enables scene
// lighting so the time of day is visible.
func (d *Dispatcher) setTime(h scene.Handle, p action.SetTimeParams) (any, error) {
	clock := h.Clock()

	if instant, ok := p.ParsedInstant(); ok {
		clock.Current = instant
	} else if p.Preset != "" {
		hour, _ := catalog.PresetHour(p.Preset)
		now := time.Now()
		clock.Current = time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	}
	if p.Speed != nil {
		clock.Multiplier = *p.Speed
	}

	h.SetClock(clock)
	h.EnableLighting(true)

	return map[string]any{
		"message":    fmt.Sprintf("Scene time set to %s (speed %.1fx)", clock.Current.Format(time.RFC3339), clock.Multiplier),
		"datetime":   clock.Current.Format(time.RFC3339),
		"multiplier": clock.Multiplier,
	}, nil
}
