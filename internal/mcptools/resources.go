package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Epawse/geocommander/internal/catalog"
)

// registerResources publishes the static catalogs as geo:// resources so
// the controller can discover valid names before issuing tool calls.
func (s *Server) registerResources() {
	s.addCatalogResource("geo://locations", "Known locations",
		"Named places resolvable by fly_to_location and add_marker_at_location",
		func() any { return catalog.Locations() })

	s.addCatalogResource("geo://basemaps", "Basemap styles",
		"Basemap styles accepted by switch_basemap",
		func() any { return catalog.BasemapKinds() })

	s.addCatalogResource("geo://weather", "Weather effects",
		"Weather effect kinds and their atmosphere targets",
		func() any { return catalog.WeatherKinds() })

	s.addCatalogResource("geo://time-presets", "Time presets",
		"Named time-of-day presets accepted by set_time",
		func() any { return catalog.TimePresets() })
}

func (s *Server) addCatalogResource(uri, name, description string, load func() any) {
	resource := mcp.NewResource(uri, name,
		mcp.WithResourceDescription(description),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.MarshalIndent(load(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", uri, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
