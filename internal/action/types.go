// Package action defines the shared vocabulary between the connection
// manager and the action dispatcher: action types, the request/result
// envelope, and strongly-typed per-action parameter structs that are
// validated once at the transport boundary.
package action

import "encoding/json"

// Type names an action the remote controller can request.
type Type string

const (
	TypeFlyTo             Type = "fly_to"
	TypeSwitchBasemap     Type = "switch_basemap"
	TypeAddMarker         Type = "add_marker"
	TypeRemoveMarker      Type = "remove_marker"
	TypeClearMarkers      Type = "clear_markers"
	TypeSetWeather        Type = "set_weather"
	TypeClearWeather      Type = "clear_weather"
	TypeSetTime           Type = "set_time"
	TypeResetView         Type = "reset_view"
	TypeGetCameraPosition Type = "get_camera_position"
	TypeMeasureDistance   Type = "measure_distance"
	TypeDrawPolygon       Type = "draw_polygon"
	TypeHighlightArea     Type = "highlight_area"
	TypeZoomIn            Type = "zoom_in"
	TypeZoomOut           Type = "zoom_out"
	TypeSetPitch          Type = "set_pitch"

	// Catalog-backed convenience actions resolved against the known
	// location list.
	TypeFlyToLocation       Type = "fly_to_location"
	TypeAddMarkerAtLocation Type = "add_marker_at_location"
)

// Request is one action as received from the controller. ID is
// caller-chosen and echoed verbatim in the Result.
type Request struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result is the outcome of one dispatched Request. Exactly one of Result
// and Error is meaningful, gated by Success.
type Result struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful result correlated to id.
func OK(id string, value any) Result {
	return Result{ID: id, Success: true, Result: value}
}

// Fail builds a failed result correlated to id.
func Fail(id string, msg string) Result {
	return Result{ID: id, Success: false, Error: msg}
}
