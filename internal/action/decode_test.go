package action

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FlyToDefaults(t *testing.T) {
	p, err := Decode(TypeFlyTo, json.RawMessage(`{"longitude":116.4,"latitude":39.9}`))
	require.NoError(t, err)

	fly, ok := p.(FlyToParams)
	require.True(t, ok)
	assert.InDelta(t, DefaultFlyAltitude, fly.Altitude, 1e-9)
	assert.InDelta(t, DefaultFlyPitch, fly.Pitch, 1e-9)
	assert.Equal(t, 2*time.Second, fly.FlightDuration())
}

func TestDecode_ExplicitValuesWinOverDefaults(t *testing.T) {
	p, err := Decode(TypeFlyTo, json.RawMessage(`{"longitude":0,"latitude":0,"altitude":0,"pitch":0,"duration":0.5}`))
	require.NoError(t, err)

	fly := p.(FlyToParams)
	assert.Zero(t, fly.Altitude, "explicit zero altitude must not be replaced by the default")
	assert.Zero(t, fly.Pitch)
	assert.Equal(t, 500*time.Millisecond, fly.FlightDuration())
}

func TestDecode_EmptyPayload(t *testing.T) {
	t.Run("parameterless actions accept nil payload", func(t *testing.T) {
		for _, typ := range []Type{TypeClearMarkers, TypeClearWeather, TypeResetView, TypeGetCameraPosition} {
			_, err := Decode(typ, nil)
			assert.NoError(t, err, "type %s", typ)
		}
	})

	t.Run("zoom defaults differ by direction", func(t *testing.T) {
		in, err := Decode(TypeZoomIn, nil)
		require.NoError(t, err)
		assert.InDelta(t, DefaultZoomInFactor, in.(ZoomParams).Factor, 1e-9)
		assert.False(t, in.(ZoomParams).Out)

		out, err := Decode(TypeZoomOut, nil)
		require.NoError(t, err)
		assert.InDelta(t, DefaultZoomOutFactor, out.(ZoomParams).Factor, 1e-9)
		assert.True(t, out.(ZoomParams).Out)
	})
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode("self_destruct", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode(TypeFlyTo, json.RawMessage(`{"longitude":`))
	assert.Error(t, err)
}

func TestDecode_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		typ     Type
		payload string
		wantErr error
	}{
		{"longitude out of range", TypeFlyTo, `{"longitude":181,"latitude":0}`, ErrOutOfRange},
		{"latitude out of range", TypeAddMarker, `{"longitude":0,"latitude":-91}`, ErrOutOfRange},
		{"negative altitude", TypeFlyTo, `{"longitude":0,"latitude":0,"altitude":-1}`, ErrOutOfRange},
		{"remove marker without id", TypeRemoveMarker, `{}`, ErrMissingParam},
		{"weather without type", TypeSetWeather, `{}`, ErrMissingParam},
		{"weather intensity above one", TypeSetWeather, `{"type":"rain","intensity":1.5}`, ErrOutOfRange},
		{"bad weather kind", TypeSetWeather, `{"type":"meteor"}`, ErrOutOfRange},
		{"bad timestamp", TypeSetTime, `{"datetime":"soon"}`, ErrBadTimestamp},
		{"bad preset", TypeSetTime, `{"preset":"midnightish"}`, ErrOutOfRange},
		{"nonpositive speed", TypeSetTime, `{"speed":0}`, ErrOutOfRange},
		{"one measure point", TypeMeasureDistance, `{"points":[{"longitude":0,"latitude":0}]}`, ErrTooFewPoints},
		{"two polygon points", TypeDrawPolygon, `{"points":[{"longitude":0,"latitude":0},{"longitude":1,"latitude":1}]}`, ErrTooFewPoints},
		{"highlight without type", TypeHighlightArea, `{}`, ErrMissingParam},
		{"circle without radius", TypeHighlightArea, `{"type":"circle","longitude":0,"latitude":0}`, ErrMissingParam},
		{"rectangle missing bounds", TypeHighlightArea, `{"type":"rectangle","west":1}`, ErrMissingParam},
		{"zoom factor zero", TypeZoomIn, `{"factor":0}`, ErrOutOfRange},
		{"pitch beyond vertical", TypeSetPitch, `{"pitch":95}`, ErrOutOfRange},
		{"fly to location without name", TypeFlyToLocation, `{}`, ErrMissingParam},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.typ, json.RawMessage(tc.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecode_SetTimeInstant(t *testing.T) {
	p, err := Decode(TypeSetTime, json.RawMessage(`{"datetime":"2026-08-24T12:00:00Z"}`))
	require.NoError(t, err)

	instant, ok := p.(SetTimeParams).ParsedInstant()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC), instant)

	_, ok = SetTimeParams{}.ParsedInstant()
	assert.False(t, ok)
}

func TestResultHelpers(t *testing.T) {
	ok := OK("id-1", map[string]any{"message": "done"})
	assert.True(t, ok.Success)
	assert.Equal(t, "id-1", ok.ID)
	assert.Empty(t, ok.Error)

	fail := Fail("id-2", "boom")
	assert.False(t, fail.Success)
	assert.Equal(t, "boom", fail.Error)
	assert.Nil(t, fail.Result)
}
