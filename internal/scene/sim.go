package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Epawse/geocommander/internal/logging"
)

// Sim is an in-memory Handle implementation. It tracks camera, entities,
// imagery, effect stages, atmosphere, fog and clock as plain state and
// optionally spends real time on camera flights. Used by the CLI when no
// viewport bridge is attached and by tests.
type Sim struct {
	mu sync.Mutex

	camera   CameraState
	entities map[EntityHandle]EntitySpec
	imagery  []ImageryProvider
	stages   map[StageHandle]EffectSpec
	atmo     Atmosphere
	fog      FogSettings
	clock    ClockState
	lighting bool

	nextEntity int
	nextStage  int

	// FlightScale multiplies flight durations; zero makes flights instant.
	FlightScale float64
}

// NewSim returns a simulated scene with a default overview camera.
func NewSim() *Sim {
	return &Sim{
		camera: CameraState{
			Position:    Cartographic{Longitude: 105.0, Latitude: 35.0, Altitude: 15000000},
			Orientation: Orientation{Heading: 0, Pitch: -90, Roll: 0},
		},
		entities: make(map[EntityHandle]EntitySpec),
		stages:   make(map[StageHandle]EffectSpec),
		fog:      FogSettings{Density: 0.0002, MinimumBrightness: 0.03},
		clock:    ClockState{Current: time.Now(), Multiplier: 1},
	}
}

// FlyTo animates (or jumps, when FlightScale is zero) the camera to dest.
func (s *Sim) FlyTo(ctx context.Context, dest Cartographic, orient Orientation, duration time.Duration) error {
	if s.FlightScale > 0 && duration > 0 {
		wait := time.Duration(float64(duration) * s.FlightScale)
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	s.camera = CameraState{Position: dest, Orientation: orient}
	s.mu.Unlock()
	logging.SceneDebug("camera now at lon=%.4f lat=%.4f alt=%.0f", dest.Longitude, dest.Latitude, dest.Altitude)
	return nil
}

// CameraState returns the current camera read.
func (s *Sim) CameraState() CameraState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// AddEntity registers an entity and returns its handle.
func (s *Sim) AddEntity(spec EntitySpec) (EntityHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntity++
	h := EntityHandle(fmt.Sprintf("entity-%d", s.nextEntity))
	s.entities[h] = spec
	return h, nil
}

// RemoveEntity drops an entity; removing an unknown handle is an error.
func (s *Sim) RemoveEntity(h EntityHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[h]; !ok {
		return fmt.Errorf("unknown entity handle %q", h)
	}
	delete(s.entities, h)
	return nil
}

// EntityCount reports how many entities are currently rendered.
func (s *Sim) EntityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

// ImageryLayers returns the current imagery layer stack.
func (s *Sim) ImageryLayers() []ImageryProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ImageryProvider, len(s.imagery))
	copy(out, s.imagery)
	return out
}

// ClearImagery removes every imagery layer.
func (s *Sim) ClearImagery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imagery = nil
}

// AddImagery appends an imagery layer.
func (s *Sim) AddImagery(p ImageryProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imagery = append(s.imagery, p)
}

// AddEffectStage installs a full-screen post-process stage.
func (s *Sim) AddEffectStage(spec EffectSpec) (StageHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStage++
	h := StageHandle(fmt.Sprintf("stage-%d", s.nextStage))
	s.stages[h] = spec
	return h, nil
}

// RemoveEffectStage removes a post-process stage.
func (s *Sim) RemoveEffectStage(h StageHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[h]; !ok {
		return fmt.Errorf("unknown stage handle %q", h)
	}
	delete(s.stages, h)
	return nil
}

// StageCount reports how many post-process stages are installed.
func (s *Sim) StageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stages)
}

// Atmosphere returns the current atmosphere parameters.
func (s *Sim) Atmosphere() Atmosphere {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atmo
}

// SetAtmosphere replaces the atmosphere parameters.
func (s *Sim) SetAtmosphere(a Atmosphere) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atmo = a
}

// Fog returns the current fog settings.
func (s *Sim) Fog() FogSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fog
}

// SetFog replaces the fog settings.
func (s *Sim) SetFog(f FogSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fog = f
}

// Clock returns the simulated clock.
func (s *Sim) Clock() ClockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// SetClock replaces the simulated clock.
func (s *Sim) SetClock(c ClockState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

// EnableLighting toggles sun lighting of the globe.
func (s *Sim) EnableLighting(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lighting = enabled
}

// LightingEnabled reports whether lighting is on.
func (s *Sim) LightingEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lighting
}
