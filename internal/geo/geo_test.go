package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	cork := Point{Lat: 51.8985, Lng: -8.4756}
	dublin := Point{Lat: 53.3498, Lng: -6.2603}

	assert.InDelta(t, 219.5, Distance(cork, dublin), 1.0)
	assert.Equal(t, Distance(cork, dublin), Distance(dublin, cork))
	assert.Equal(t, 0.0, Distance(cork, cork))
}

func TestDistanceAntipodal(t *testing.T) {
	d := Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 180})
	assert.InDelta(t, EarthRadiusKm*3.141592653589793, d, 0.001)
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		from Point
		to   Point
		want Glyph
	}{
		{"due north", Point{52, -8}, Point{53, -8}, North},
		{"north east", Point{52, -8}, Point{53, -7}, NorthEast},
		{"due south", Point{53, -8}, Point{52, -8}, South},
		{"due east", Point{52, -8}, Point{52, -7}, East},
		{"due west", Point{52, -7}, Point{52, -8}, West},
		{"south west", Point{53, -7}, Point{52, -8}, SouthWest},
		{"north west", Point{52, -7}, Point{53, -8}, NorthWest},
		{"south east", Point{53, -8}, Point{52, -7}, SouthEast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bearing(tt.from, tt.to))
		})
	}
}

func TestGlyphForBoundaries(t *testing.T) {
	tests := []struct {
		deg  float64
		want Glyph
	}{
		{0, North},
		{22.49, North},
		{22.5, NorthEast},
		{67.5, East},
		{112.5, SouthEast},
		{157.5, South},
		{202.5, SouthWest},
		{247.5, West},
		{292.5, NorthWest},
		{337.49, NorthWest},
		{337.5, North},
		{359.99, North},
		{360, North},
		{-45, NorthWest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GlyphFor(tt.deg), "deg=%v", tt.deg)
	}
}

func TestDegreesRange(t *testing.T) {
	d := Degrees(Point{52, -7}, Point{52.0001, -7.0001})
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Less(t, d, 360.0)
}
