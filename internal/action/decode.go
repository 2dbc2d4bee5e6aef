package action

import (
	"encoding/json"
	"fmt"
)

// Defaults applied when the controller omits a field. Decoding unmarshals
// over a pre-filled struct, so an explicit zero from the caller wins.
const (
	DefaultFlyAltitude      = 10000.0
	DefaultFlyPitch         = -45.0
	DefaultFlyDuration      = 2.0
	DefaultMarkerColor      = "#FF4444"
	DefaultPolygonColor     = "#2196F3"
	DefaultPolygonOpacity   = 0.5
	DefaultWeatherIntensity = 0.5
	DefaultHighlightColor   = "#FFEB3B"
	DefaultHighlightSecs    = 3.0
	DefaultZoomInFactor     = 0.5
	DefaultZoomOutFactor    = 2.0
)

// Decode parses and validates the payload for the given action type,
// applying documented defaults. The returned Params is ready for dispatch.
func Decode(t Type, raw json.RawMessage) (Params, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var params Params
	switch t {
	case TypeFlyTo:
		p := FlyToParams{Altitude: DefaultFlyAltitude, Pitch: DefaultFlyPitch, Duration: DefaultFlyDuration}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeSwitchBasemap:
		var p SwitchBasemapParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeAddMarker:
		p := AddMarkerParams{Name: "Marker", Color: DefaultMarkerColor}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeRemoveMarker:
		var p RemoveMarkerParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeClearMarkers:
		params = ClearMarkersParams{}
	case TypeSetWeather:
		p := SetWeatherParams{Intensity: DefaultWeatherIntensity}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeClearWeather:
		params = ClearWeatherParams{}
	case TypeSetTime:
		var p SetTimeParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeResetView:
		params = ResetViewParams{}
	case TypeGetCameraPosition:
		params = GetCameraPositionParams{}
	case TypeMeasureDistance:
		var p MeasureDistanceParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeDrawPolygon:
		p := DrawPolygonParams{Name: "Polygon", Color: DefaultPolygonColor, Opacity: DefaultPolygonOpacity}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeHighlightArea:
		p := HighlightAreaParams{Color: DefaultHighlightColor, Duration: DefaultHighlightSecs}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeZoomIn:
		p := ZoomParams{Factor: DefaultZoomInFactor}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeZoomOut:
		p := ZoomParams{Factor: DefaultZoomOutFactor}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		p.Out = true
		params = p
	case TypeSetPitch:
		var p SetPitchParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeFlyToLocation:
		var p FlyToLocationParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	case TypeAddMarkerAtLocation:
		var p AddMarkerAtLocationParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		params = p
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}
