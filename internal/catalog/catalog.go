// Package catalog holds the static geographic reference data the rest of
// the system resolves names against: well-known locations, basemap layer
// sets, weather atmosphere targets, and time-of-day presets. The same data
// backs the MCP geo:// resources.
package catalog

import (
	"strings"

	"github.com/Epawse/geocommander/internal/scene"
)

// Location is a named place the controller can reference without
// coordinates.
type Location struct {
	Name        string   `json:"name"`
	Longitude   float64  `json:"longitude"`
	Latitude    float64  `json:"latitude"`
	Altitude    float64  `json:"altitude"` // suggested viewing altitude
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

var locations = []Location{
	{Name: "beijing", Longitude: 116.4074, Latitude: 39.9042, Altitude: 5000, Description: "Beijing city center", Aliases: []string{"北京"}},
	{Name: "tiananmen", Longitude: 116.3972, Latitude: 39.9087, Altitude: 1000, Description: "Tiananmen Square", Aliases: []string{"天安门"}},
	{Name: "forbidden_city", Longitude: 116.3972, Latitude: 39.9169, Altitude: 1500, Description: "The Forbidden City", Aliases: []string{"故宫", "palace museum"}},
	{Name: "great_wall", Longitude: 116.0166, Latitude: 40.3539, Altitude: 2000, Description: "Great Wall at Badaling", Aliases: []string{"长城", "changcheng"}},
	{Name: "everest", Longitude: 86.9250, Latitude: 27.9881, Altitude: 12000, Description: "Mount Everest", Aliases: []string{"珠穆朗玛峰", "qomolangma"}},
	{Name: "huangshan", Longitude: 118.1694, Latitude: 30.1333, Altitude: 5000, Description: "Huangshan mountains", Aliases: []string{"黄山"}},
	{Name: "wuhan_university", Longitude: 114.3612, Latitude: 30.5371, Altitude: 1000, Description: "Wuhan University", Aliases: []string{"武汉大学"}},
	{Name: "eiffel_tower", Longitude: 2.2945, Latitude: 48.8584, Altitude: 800, Description: "Eiffel Tower, Paris", Aliases: []string{"埃菲尔铁塔", "paris"}},
	{Name: "white_house", Longitude: -77.0365, Latitude: 38.8977, Altitude: 500, Description: "The White House", Aliases: []string{"白宫"}},
	{Name: "pyramids", Longitude: 31.1342, Latitude: 29.9792, Altitude: 1000, Description: "Pyramids of Giza", Aliases: []string{"金字塔", "giza"}},
	{Name: "taj_mahal", Longitude: 78.0421, Latitude: 27.1751, Altitude: 500, Description: "Taj Mahal, Agra", Aliases: []string{"泰姬陵"}},
	{Name: "red_square", Longitude: 37.6176, Latitude: 55.7520, Altitude: 500, Description: "Red Square, Moscow", Aliases: []string{"红场", "moscow"}},
}

var locationIndex = buildLocationIndex()

func buildLocationIndex() map[string]*Location {
	idx := make(map[string]*Location, len(locations)*2)
	for i := range locations {
		loc := &locations[i]
		idx[strings.ToLower(loc.Name)] = loc
		for _, alias := range loc.Aliases {
			idx[strings.ToLower(alias)] = loc
		}
	}
	return idx
}

// Locations returns the full location list.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// LookupLocation resolves a name or alias, case-insensitively.
func LookupLocation(name string) (Location, bool) {
	loc, ok := locationIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Location{}, false
	}
	return *loc, true
}

// BasemapKind names a supported basemap style.
type BasemapKind string

const (
	BasemapSatellite BasemapKind = "satellite"
	BasemapVector    BasemapKind = "vector"
	BasemapTerrain   BasemapKind = "terrain"
	BasemapDark      BasemapKind = "dark"
)

// Tianditu layer pairs (imagery + annotation) per style; dark mode is a
// single CARTO tile layer.
var basemaps = map[BasemapKind][]scene.ImageryProvider{
	BasemapSatellite: {
		{Name: "tianditu-img", URL: "https://t0.tianditu.gov.cn/img_w/wmts"},
		{Name: "tianditu-cia", URL: "https://t0.tianditu.gov.cn/cia_w/wmts"},
	},
	BasemapVector: {
		{Name: "tianditu-vec", URL: "https://t0.tianditu.gov.cn/vec_w/wmts"},
		{Name: "tianditu-cva", URL: "https://t0.tianditu.gov.cn/cva_w/wmts"},
	},
	BasemapTerrain: {
		{Name: "tianditu-ter", URL: "https://t0.tianditu.gov.cn/ter_w/wmts"},
		{Name: "tianditu-cta", URL: "https://t0.tianditu.gov.cn/cta_w/wmts"},
	},
	BasemapDark: {
		{Name: "carto-dark", URL: "https://basemaps.cartocdn.com/dark_all"},
	},
}

// BasemapProviders returns the imagery layer set for a basemap type.
// Unknown types fall back to satellite; the second return is the kind
// actually used.
func BasemapProviders(kind string) ([]scene.ImageryProvider, BasemapKind) {
	k := BasemapKind(strings.ToLower(strings.TrimSpace(kind)))
	providers, ok := basemaps[k]
	if !ok {
		k = BasemapSatellite
		providers = basemaps[k]
	}
	out := make([]scene.ImageryProvider, len(providers))
	copy(out, providers)
	return out, k
}

// BasemapKinds lists the supported basemap styles.
func BasemapKinds() []BasemapKind {
	return []BasemapKind{BasemapSatellite, BasemapVector, BasemapTerrain, BasemapDark}
}

// WeatherTarget is the fixed atmosphere shift applied for a weather kind.
type WeatherTarget struct {
	Kind       scene.EffectKind `json:"kind"`
	Atmosphere scene.Atmosphere `json:"atmosphere"`
}

var weatherTargets = map[scene.EffectKind]scene.Atmosphere{
	scene.EffectRain: {HueShift: -0.8, SaturationShift: -0.7, BrightnessShift: -0.33},
	scene.EffectSnow: {HueShift: -0.8, SaturationShift: -0.7, BrightnessShift: -0.1},
	scene.EffectFog:  {HueShift: 0, SaturationShift: -0.5, BrightnessShift: -0.2},
}

// WeatherAtmosphere returns the target atmosphere for a weather kind.
func WeatherAtmosphere(kind scene.EffectKind) (scene.Atmosphere, bool) {
	a, ok := weatherTargets[kind]
	return a, ok
}

// WeatherKinds lists the supported weather effects.
func WeatherKinds() []WeatherTarget {
	out := make([]WeatherTarget, 0, len(weatherTargets))
	for _, k := range []scene.EffectKind{scene.EffectRain, scene.EffectSnow, scene.EffectFog} {
		out = append(out, WeatherTarget{Kind: k, Atmosphere: weatherTargets[k]})
	}
	return out
}

// TimePreset maps a named time of day to an hour on today's date.
type TimePreset struct {
	Name string `json:"name"`
	Hour int    `json:"hour"`
}

var timePresets = map[string]int{
	"dawn":  6,
	"day":   12,
	"dusk":  18,
	"night": 0,
}

// PresetHour returns the hour-of-day for a time preset.
func PresetHour(name string) (int, bool) {
	h, ok := timePresets[strings.ToLower(name)]
	return h, ok
}

// TimePresets lists the supported presets in a stable order.
func TimePresets() []TimePreset {
	return []TimePreset{
		{Name: "dawn", Hour: 6},
		{Name: "day", Hour: 12},
		{Name: "dusk", Hour: 18},
		{Name: "night", Hour: 0},
	}
}
