package scene

import (
	"time"

	"github.com/Epawse/geocommander/internal/geo"
)

// Cartographic is a camera or entity position in degrees plus meters.
type Cartographic struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Orientation is a camera orientation in degrees. The viewport bridge is
// responsible for converting to its native angular unit.
type Orientation struct {
	Heading float64 `json:"heading"`
	Pitch   float64 `json:"pitch"`
	Roll    float64 `json:"roll"`
}

// CameraState is a full read of the camera.
type CameraState struct {
	Position    Cartographic `json:"position"`
	Orientation Orientation  `json:"orientation"`
}

// Atmosphere holds the sky atmosphere shift parameters.
type Atmosphere struct {
	HueShift        float64 `json:"hueShift"`
	SaturationShift float64 `json:"saturationShift"`
	BrightnessShift float64 `json:"brightnessShift"`
}

// FogSettings holds scene fog parameters.
type FogSettings struct {
	Density           float64 `json:"density"`
	MinimumBrightness float64 `json:"minimumBrightness"`
}

// ClockState is the simulated scene clock.
type ClockState struct {
	Current    time.Time `json:"current"`
	Multiplier float64   `json:"multiplier"`
}

// EntityKind discriminates the entity specs the viewport can render.
type EntityKind string

const (
	EntityPoint     EntityKind = "point"
	EntityPolygon   EntityKind = "polygon"
	EntityEllipse   EntityKind = "ellipse"
	EntityRectangle EntityKind = "rectangle"
)

// EntitySpec describes a named scene object. Only the fields relevant to
// the Kind are consulted.
type EntitySpec struct {
	Kind        EntityKind
	Name        string
	Description string
	Color       string
	Opacity     float64

	// Point and ellipse center.
	Position Cartographic

	// Polygon outline, ground clamped.
	Positions []geo.Point

	// Ellipse axes in meters.
	SemiMajorAxis float64
	SemiMinorAxis float64

	// Rectangle extent in degrees.
	West  float64
	South float64
	East  float64
	North float64
}

// EntityHandle is an opaque reference to a rendered entity.
type EntityHandle string

// StageHandle is an opaque reference to a full-screen post-process stage.
type StageHandle string

// EffectKind names the supported full-screen weather effects.
type EffectKind string

const (
	EffectRain EffectKind = "rain"
	EffectSnow EffectKind = "snow"
	EffectFog  EffectKind = "fog"
)

// EffectSpec parameterizes a weather post-process stage. Start anchors the
// stage's time-since-start uniform.
type EffectSpec struct {
	Kind      EffectKind
	Intensity float64
	Start     time.Time
}

// ImageryProvider identifies one imagery layer source.
type ImageryProvider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
