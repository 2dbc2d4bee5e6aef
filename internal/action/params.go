package action

import (
	"fmt"
	"time"

	"github.com/Epawse/geocommander/internal/geo"
)

// Params is the closed set of validated per-action parameter structs.
// Decode returns exactly one of these; dispatch handlers type-switch on it
// and never re-validate.
type Params interface {
	Validate() error
}

// FlyToParams animates the camera to an absolute destination.
type FlyToParams struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Pitch     float64 `json:"pitch"`
	Roll      float64 `json:"roll"`
	Duration  float64 `json:"duration"` // seconds
}

// Validate checks coordinate ranges.
func (p FlyToParams) Validate() error {
	if !geo.ValidLongitude(p.Longitude) {
		return fmt.Errorf("%w: longitude %v", ErrOutOfRange, p.Longitude)
	}
	if !geo.ValidLatitude(p.Latitude) {
		return fmt.Errorf("%w: latitude %v", ErrOutOfRange, p.Latitude)
	}
	if p.Altitude < 0 {
		return fmt.Errorf("%w: altitude %v", ErrOutOfRange, p.Altitude)
	}
	if p.Duration < 0 {
		return fmt.Errorf("%w: duration %v", ErrOutOfRange, p.Duration)
	}
	return nil
}

// FlightDuration returns the flight duration as a time.Duration.
func (p FlyToParams) FlightDuration() time.Duration {
	return time.Duration(p.Duration * float64(time.Second))
}

// SwitchBasemapParams selects a basemap by type name. Unknown types fall
// back to satellite at dispatch time rather than failing.
type SwitchBasemapParams struct {
	Type string `json:"type"`
}

// Validate accepts any type string; the fallback is part of the contract.
func (p SwitchBasemapParams) Validate() error { return nil }

// AddMarkerParams inserts (or replaces) a named point marker.
type AddMarkerParams struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Altitude    float64 `json:"altitude"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
}

// Validate checks coordinate ranges.
func (p AddMarkerParams) Validate() error {
	if !geo.ValidLongitude(p.Longitude) {
		return fmt.Errorf("%w: longitude %v", ErrOutOfRange, p.Longitude)
	}
	if !geo.ValidLatitude(p.Latitude) {
		return fmt.Errorf("%w: latitude %v", ErrOutOfRange, p.Latitude)
	}
	if p.Altitude < 0 {
		return fmt.Errorf("%w: altitude %v", ErrOutOfRange, p.Altitude)
	}
	return nil
}

// RemoveMarkerParams removes one marker by id.
type RemoveMarkerParams struct {
	ID string `json:"id"`
}

// Validate requires the id.
func (p RemoveMarkerParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingParam)
	}
	return nil
}

// ClearMarkersParams removes every registered marker.
type ClearMarkersParams struct{}

// Validate is trivially satisfied.
func (p ClearMarkersParams) Validate() error { return nil }

// SetWeatherParams installs the singleton weather effect. Type "clear"
// behaves as clear_weather.
type SetWeatherParams struct {
	Type      string  `json:"type"`
	Intensity float64 `json:"intensity"`
}

// Validate checks the weather kind and intensity range.
func (p SetWeatherParams) Validate() error {
	switch p.Type {
	case "rain", "snow", "fog", "clear":
	case "":
		return fmt.Errorf("%w: type", ErrMissingParam)
	default:
		return fmt.Errorf("%w: weather type %q", ErrOutOfRange, p.Type)
	}
	if p.Intensity < 0 || p.Intensity > 1 {
		return fmt.Errorf("%w: intensity %v", ErrOutOfRange, p.Intensity)
	}
	return nil
}

// ClearWeatherParams removes the active weather effect, if any.
type ClearWeatherParams struct{}

// Validate is trivially satisfied.
func (p ClearWeatherParams) Validate() error { return nil }

// SetTimeParams sets the simulated clock by explicit instant or preset,
// and independently applies a clock speed multiplier.
type SetTimeParams struct {
	Datetime string   `json:"datetime"`
	Preset   string   `json:"preset"`
	Speed    *float64 `json:"speed"`
}

// Validate parses the datetime and checks the preset name.
func (p SetTimeParams) Validate() error {
	if p.Datetime != "" {
		if _, err := time.Parse(time.RFC3339, p.Datetime); err != nil {
			return fmt.Errorf("%w: %q", ErrBadTimestamp, p.Datetime)
		}
	}
	switch p.Preset {
	case "", "dawn", "day", "dusk", "night":
	default:
		return fmt.Errorf("%w: preset %q", ErrOutOfRange, p.Preset)
	}
	if p.Speed != nil && *p.Speed <= 0 {
		return fmt.Errorf("%w: speed %v", ErrOutOfRange, *p.Speed)
	}
	return nil
}

// ParsedInstant returns the explicit instant, valid only after Validate.
// The second return is false when no datetime was given.
func (p SetTimeParams) ParsedInstant() (time.Time, bool) {
	if p.Datetime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, p.Datetime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ResetViewParams flies the camera to the default overview.
type ResetViewParams struct{}

// Validate is trivially satisfied.
func (p ResetViewParams) Validate() error { return nil }

// GetCameraPositionParams reads the current camera state.
type GetCameraPositionParams struct{}

// Validate is trivially satisfied.
func (p GetCameraPositionParams) Validate() error { return nil }

// MeasureDistanceParams sums great-circle distance along a path.
type MeasureDistanceParams struct {
	Points []geo.Point `json:"points"`
}

// Validate requires at least two in-range points.
func (p MeasureDistanceParams) Validate() error {
	if len(p.Points) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrTooFewPoints, len(p.Points))
	}
	for i, pt := range p.Points {
		if !geo.ValidLongitude(pt.Longitude) || !geo.ValidLatitude(pt.Latitude) {
			return fmt.Errorf("%w: point %d (%v, %v)", ErrOutOfRange, i, pt.Longitude, pt.Latitude)
		}
	}
	return nil
}

// DrawPolygonParams inserts (or replaces) a named filled polygon overlay.
type DrawPolygonParams struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Points  []geo.Point `json:"points"`
	Color   string      `json:"color"`
	Opacity float64     `json:"opacity"`
}

// Validate requires a closed-shape vertex count and in-range values.
func (p DrawPolygonParams) Validate() error {
	if len(p.Points) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrTooFewPoints, len(p.Points))
	}
	for i, pt := range p.Points {
		if !geo.ValidLongitude(pt.Longitude) || !geo.ValidLatitude(pt.Latitude) {
			return fmt.Errorf("%w: vertex %d (%v, %v)", ErrOutOfRange, i, pt.Longitude, pt.Latitude)
		}
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v", ErrOutOfRange, p.Opacity)
	}
	return nil
}

// HighlightAreaParams adds a transient circle or rectangle overlay that
// removes itself after Duration seconds.
type HighlightAreaParams struct {
	Type string `json:"type"` // circle | rectangle

	// Circle geometry.
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Radius    float64 `json:"radius"` // meters

	// Rectangle extent in degrees.
	West  *float64 `json:"west"`
	South *float64 `json:"south"`
	East  *float64 `json:"east"`
	North *float64 `json:"north"`

	Color    string  `json:"color"`
	Duration float64 `json:"duration"` // seconds
}

// Validate requires the geometry fields matching the chosen type.
func (p HighlightAreaParams) Validate() error {
	switch p.Type {
	case "circle":
		if p.Radius <= 0 {
			return fmt.Errorf("%w: radius", ErrMissingParam)
		}
		if !geo.ValidLongitude(p.Longitude) || !geo.ValidLatitude(p.Latitude) {
			return fmt.Errorf("%w: center (%v, %v)", ErrOutOfRange, p.Longitude, p.Latitude)
		}
	case "rectangle":
		if p.West == nil || p.South == nil || p.East == nil || p.North == nil {
			return fmt.Errorf("%w: west/south/east/north", ErrMissingParam)
		}
	case "":
		return fmt.Errorf("%w: type", ErrMissingParam)
	default:
		return fmt.Errorf("%w: highlight type %q", ErrOutOfRange, p.Type)
	}
	if p.Duration < 0 {
		return fmt.Errorf("%w: duration %v", ErrOutOfRange, p.Duration)
	}
	return nil
}

// HighlightDuration returns the auto-removal delay as a time.Duration.
func (p HighlightAreaParams) HighlightDuration() time.Duration {
	return time.Duration(p.Duration * float64(time.Second))
}

// ZoomParams scales the camera altitude by Factor.
type ZoomParams struct {
	Factor float64 `json:"factor"`

	// Out distinguishes zoom_out from zoom_in for logging; both share the
	// multiply-altitude semantics.
	Out bool `json:"-"`
}

// Validate requires a positive factor.
func (p ZoomParams) Validate() error {
	if p.Factor <= 0 {
		return fmt.Errorf("%w: factor %v", ErrOutOfRange, p.Factor)
	}
	return nil
}

// SetPitchParams re-flies the camera in place with a new pitch.
type SetPitchParams struct {
	Pitch float64 `json:"pitch"`
}

// Validate bounds pitch to straight-down through straight-up.
func (p SetPitchParams) Validate() error {
	if p.Pitch < -90 || p.Pitch > 90 {
		return fmt.Errorf("%w: pitch %v", ErrOutOfRange, p.Pitch)
	}
	return nil
}

// FlyToLocationParams flies to a named catalog location.
type FlyToLocationParams struct {
	Name string `json:"name"`
}

// Validate requires the location name.
func (p FlyToLocationParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingParam)
	}
	return nil
}

// AddMarkerAtLocationParams drops a marker at a named catalog location.
type AddMarkerAtLocationParams struct {
	Name string `json:"name"`
}

// Validate requires the location name.
func (p AddMarkerAtLocationParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingParam)
	}
	return nil
}
