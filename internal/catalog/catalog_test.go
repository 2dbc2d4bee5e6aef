package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epawse/geocommander/internal/scene"
)

func TestLookupLocation(t *testing.T) {
	t.Run("by canonical name", func(t *testing.T) {
		loc, ok := LookupLocation("beijing")
		require.True(t, ok)
		assert.InDelta(t, 116.4074, loc.Longitude, 1e-4)
	})

	t.Run("case insensitive with surrounding space", func(t *testing.T) {
		_, ok := LookupLocation("  BEIJING ")
		assert.True(t, ok)
	})

	t.Run("by alias", func(t *testing.T) {
		loc, ok := LookupLocation("故宫")
		require.True(t, ok)
		assert.Equal(t, "forbidden_city", loc.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := LookupLocation("atlantis")
		assert.False(t, ok)
	})
}

func TestBasemapProviders(t *testing.T) {
	t.Run("tianditu styles carry an annotation layer", func(t *testing.T) {
		for _, kind := range []string{"satellite", "vector", "terrain"} {
			providers, used := BasemapProviders(kind)
			assert.Len(t, providers, 2, kind)
			assert.Equal(t, BasemapKind(kind), used)
		}
	})

	t.Run("dark is a single layer", func(t *testing.T) {
		providers, used := BasemapProviders("dark")
		require.Len(t, providers, 1)
		assert.Equal(t, BasemapDark, used)
		assert.Contains(t, providers[0].URL, "cartocdn")
	})

	t.Run("unknown falls back to satellite", func(t *testing.T) {
		providers, used := BasemapProviders("sepia")
		assert.Equal(t, BasemapSatellite, used)
		require.Len(t, providers, 2)
		assert.Equal(t, "tianditu-img", providers[0].Name)
	})
}

func TestWeatherAtmosphere(t *testing.T) {
	rain, ok := WeatherAtmosphere(scene.EffectRain)
	require.True(t, ok)
	assert.InDelta(t, -0.33, rain.BrightnessShift, 1e-9)

	_, ok = WeatherAtmosphere(scene.EffectKind("hail"))
	assert.False(t, ok)
}

func TestPresetHour(t *testing.T) {
	for name, hour := range map[string]int{"dawn": 6, "day": 12, "dusk": 18, "night": 0} {
		got, ok := PresetHour(name)
		require.True(t, ok, name)
		assert.Equal(t, hour, got)
	}

	_, ok := PresetHour("brunch")
	assert.False(t, ok)
}
