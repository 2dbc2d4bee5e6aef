// Package scene defines the capability interface through which the action
// dispatcher manipulates the live 3D viewport, plus a simulated
// implementation for tests and headless runs. The real viewport bridge is
// owned by the host shell and injected into the dispatcher.
package scene

import (
	"context"
	"time"
)

// Handle is the capability surface of the 3D viewport. All mutations the
// dispatcher performs go through this interface; nothing reaches the
// renderer by any other path.
//
// FlyTo blocks until the camera animation completes (or ctx is cancelled).
// A second FlyTo issued while one is in flight supersedes it at the
// viewport level.
type Handle interface {
	FlyTo(ctx context.Context, dest Cartographic, orient Orientation, duration time.Duration) error
	CameraState() CameraState

	AddEntity(spec EntitySpec) (EntityHandle, error)
	RemoveEntity(h EntityHandle) error

	ImageryLayers() []ImageryProvider
	ClearImagery()
	AddImagery(p ImageryProvider)

	AddEffectStage(spec EffectSpec) (StageHandle, error)
	RemoveEffectStage(h StageHandle) error

	Atmosphere() Atmosphere
	SetAtmosphere(a Atmosphere)
	Fog() FogSettings
	SetFog(f FogSettings)

	Clock() ClockState
	SetClock(c ClockState)
	EnableLighting(enabled bool)
}
