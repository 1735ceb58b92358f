package kma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToGridOrigin(t *testing.T) {
	require.Equal(t, Grid{X: 43, Y: 136}, ToGrid(38.0, 126.0))
}

func TestToGridKnownCells(t *testing.T) {
	cases := []struct {
		name     string
		lat, lng float64
		expected Grid
	}{
		{"seoul city hall", 37.5663, 126.9779, Grid{X: 60, Y: 127}},
		{"busan city hall", 35.1798, 129.0750, Grid{X: 98, Y: 76}},
		{"jeju city", 33.4996, 126.5312, Grid{X: 53, Y: 38}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ToGrid(tc.lat, tc.lng))
		})
	}
}

func TestLocateRejectsPointsOffTheGrid(t *testing.T) {
	grid, err := Locate(37.5663, 126.9779)
	require.NoError(t, err)
	require.Equal(t, Grid{X: 60, Y: 127}, grid)

	for _, tc := range []struct {
		name     string
		lat, lng float64
	}{
		{"south pole", -90, 126},
		{"north pole", 90, 126},
		{"new york", 40.7128, -74.0060},
		{"sydney", -33.8688, 151.2093},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Locate(tc.lat, tc.lng)
			require.ErrorIs(t, err, ErrOutsideGrid)
		})
	}
}

func TestToLatLngOrigin(t *testing.T) {
	origin := ToLatLng(OriginX, OriginY)
	require.InDelta(t, OriginLat, origin.Lat, 1e-9)
	require.InDelta(t, OriginLon, origin.Lng, 1e-9)
}

func TestRoundTripIsIdempotentAcrossKorea(t *testing.T) {
	for lat := 33.0; lat <= 38.6; lat += 0.137 {
		for lng := 124.5; lng <= 131.0; lng += 0.173 {
			cell := ToGrid(lat, lng)
			centre := ToLatLng(cell.X, cell.Y)
			require.Equal(t, cell, ToGrid(centre.Lat, centre.Lng), "lat=%f lng=%f", lat, lng)
		}
	}
}

func TestToLatLngAxisCells(t *testing.T) {
	below := ToLatLng(OriginX, OriginY-20)
	require.InDelta(t, OriginLon, below.Lng, 1e-9)
	require.Less(t, below.Lat, OriginLat)

	east := ToLatLng(OriginX+10, OriginY)
	require.Greater(t, east.Lng, OriginLon)
	require.Equal(t, Grid{X: OriginX + 10, Y: OriginY}, ToGrid(east.Lat, east.Lng))
}

func TestNewProjectionRejectsEqualParallels(t *testing.T) {
	params := DefaultParams
	params.StandardLat2 = params.StandardLat1
	_, err := NewProjection(params)
	require.ErrorIs(t, err, ErrDegenerateCone)
}

func TestCustomProjectionMatchesDefault(t *testing.T) {
	projection, err := NewProjection(DefaultParams)
	require.NoError(t, err)
	require.Equal(t, ToGrid(36.35, 127.38), projection.ToGrid(36.35, 127.38))
}
