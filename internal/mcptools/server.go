// Package mcptools exposes the scene action vocabulary as MCP tools over
// stdio, so an MCP-speaking controller can drive the dispatcher directly
// without the websocket path. The geo:// resources publish the static
// catalogs the controller grounds its tool calls on.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/dispatch"
	"github.com/Epawse/geocommander/internal/logging"
)

// Server bridges MCP tool calls into the action dispatcher.
type Server struct {
	mcpServer  *server.MCPServer
	dispatcher *dispatch.Dispatcher
}

// NewServer builds the MCP server with every action registered as a tool.
func NewServer(d *dispatch.Dispatcher, version string) *Server {
	mcpServer := server.NewMCPServer(
		"geocommander",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	s := &Server{mcpServer: mcpServer, dispatcher: d}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio runs the MCP server on stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	logging.Get(logging.CategoryMCP).Info("serving MCP tools on stdio")
	return server.ServeStdio(s.mcpServer)
}

// toolDef pairs an action type with its MCP schema.
type toolDef struct {
	typ         action.Type
	description string
	opts        []mcp.ToolOption
}

func (s *Server) registerTools() {
	defs := []toolDef{
		{action.TypeFlyTo, "Fly the camera to coordinates", []mcp.ToolOption{
			mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude in degrees, -180 to 180")),
			mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude in degrees, -90 to 90")),
			mcp.WithNumber("altitude", mcp.Description("Camera altitude in meters, default 10000")),
			mcp.WithNumber("heading", mcp.Description("Heading in degrees, default 0")),
			mcp.WithNumber("pitch", mcp.Description("Pitch in degrees, default -45")),
			mcp.WithNumber("duration", mcp.Description("Flight duration in seconds, default 2")),
		}},
		{action.TypeFlyToLocation, "Fly the camera to a known named location", []mcp.ToolOption{
			mcp.WithString("name", mcp.Required(), mcp.Description("Location name or alias, see geo://locations")),
		}},
		{action.TypeSwitchBasemap, "Switch the basemap style", []mcp.ToolOption{
			mcp.WithString("type", mcp.Required(), mcp.Description("satellite | vector | terrain | dark")),
		}},
		{action.TypeAddMarker, "Add a named marker at coordinates", []mcp.ToolOption{
			mcp.WithString("name", mcp.Description("Marker label")),
			mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude in degrees")),
			mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude in degrees")),
			mcp.WithString("color", mcp.Description("CSS color, default #FF4444")),
			mcp.WithString("description", mcp.Description("Marker description")),
		}},
		{action.TypeAddMarkerAtLocation, "Add a marker at a known named location", []mcp.ToolOption{
			mcp.WithString("name", mcp.Required(), mcp.Description("Location name or alias")),
		}},
		{action.TypeRemoveMarker, "Remove a marker by id", []mcp.ToolOption{
			mcp.WithString("id", mcp.Required(), mcp.Description("Marker id returned by add_marker")),
		}},
		{action.TypeClearMarkers, "Remove all markers", nil},
		{action.TypeSetWeather, "Set a full-screen weather effect", []mcp.ToolOption{
			mcp.WithString("type", mcp.Required(), mcp.Description("rain | snow | fog | clear")),
			mcp.WithNumber("intensity", mcp.Description("Effect intensity 0..1, default 0.5")),
		}},
		{action.TypeClearWeather, "Clear the active weather effect", nil},
		{action.TypeSetTime, "Set the simulated scene time", []mcp.ToolOption{
			mcp.WithString("datetime", mcp.Description("Explicit RFC3339 instant")),
			mcp.WithString("preset", mcp.Description("dawn | day | dusk | night")),
			mcp.WithNumber("speed", mcp.Description("Clock speed multiplier")),
		}},
		{action.TypeResetView, "Reset the camera to the default overview", nil},
		{action.TypeGetCameraPosition, "Read the current camera position", nil},
		{action.TypeMeasureDistance, "Measure great-circle distance along a path", []mcp.ToolOption{
			mcp.WithString("points", mcp.Description("JSON array of {longitude, latitude}, at least 2")),
		}},
		{action.TypeDrawPolygon, "Draw a filled polygon overlay", []mcp.ToolOption{
			mcp.WithString("name", mcp.Description("Polygon label")),
			mcp.WithString("points", mcp.Description("JSON array of {longitude, latitude}, at least 3")),
			mcp.WithString("color", mcp.Description("CSS color, default #2196F3")),
			mcp.WithNumber("opacity", mcp.Description("Fill opacity 0..1, default 0.5")),
		}},
		{action.TypeHighlightArea, "Temporarily highlight a circle or rectangle", []mcp.ToolOption{
			mcp.WithString("type", mcp.Required(), mcp.Description("circle | rectangle")),
			mcp.WithNumber("longitude", mcp.Description("Circle center longitude")),
			mcp.WithNumber("latitude", mcp.Description("Circle center latitude")),
			mcp.WithNumber("radius", mcp.Description("Circle radius in meters")),
			mcp.WithNumber("west", mcp.Description("Rectangle west edge in degrees")),
			mcp.WithNumber("south", mcp.Description("Rectangle south edge in degrees")),
			mcp.WithNumber("east", mcp.Description("Rectangle east edge in degrees")),
			mcp.WithNumber("north", mcp.Description("Rectangle north edge in degrees")),
			mcp.WithNumber("duration", mcp.Description("Seconds before auto-removal, default 3")),
		}},
		{action.TypeZoomIn, "Zoom the camera in", []mcp.ToolOption{
			mcp.WithNumber("factor", mcp.Description("Altitude multiplier, default 0.5")),
		}},
		{action.TypeZoomOut, "Zoom the camera out", []mcp.ToolOption{
			mcp.WithNumber("factor", mcp.Description("Altitude multiplier, default 2.0")),
		}},
		{action.TypeSetPitch, "Set the camera pitch", []mcp.ToolOption{
			mcp.WithNumber("pitch", mcp.Required(), mcp.Description("Pitch in degrees, -90 to 90")),
		}},
	}

	for _, def := range defs {
		opts := append([]mcp.ToolOption{mcp.WithDescription(def.description)}, def.opts...)
		s.mcpServer.AddTool(mcp.NewTool(string(def.typ), opts...), s.handlerFor(def.typ))
	}
}

// handlerFor builds the generic tool handler: arguments are re-marshalled
// into an action payload and pushed through the dispatcher, so MCP calls
// get the same validation and semantics as websocket traffic.
func (s *Server) handlerFor(typ action.Type) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := encodeArguments(request.Params.Arguments)
		if err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		res := s.dispatcher.Dispatch(ctx, action.Request{
			ID:      uuid.NewString(),
			Type:    typ,
			Payload: payload,
		})
		if !res.Success {
			return toolError(res.Error), nil
		}

		out, err := json.Marshal(res.Result)
		if err != nil {
			return toolError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// encodeArguments converts MCP tool arguments to an action payload.
// String-valued "points" are accepted as embedded JSON for clients that
// cannot send structured arrays.
func encodeArguments(args map[string]interface{}) (json.RawMessage, error) {
	if raw, ok := args["points"].(string); ok && len(raw) > 0 {
		var pts []map[string]float64
		if err := json.Unmarshal([]byte(raw), &pts); err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		args["points"] = pts
	}
	return json.Marshal(args)
}

func toolError(message string) *mcp.CallToolResult {
	result := mcp.NewToolResultText(message)
	result.IsError = true
	return result
}
