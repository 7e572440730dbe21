// internal/geo/geo.go
//
// Great-circle math for scoring guesses.
//   - Distance: haversine distance in kilometres on a spherical Earth.
//   - Bearing:  initial bearing from one point to another, bucketed into an
//               8-point compass glyph.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Glyph is a compass direction shown next to a guess.
type Glyph string

const (
	North     Glyph = "N"
	NorthEast Glyph = "NE"
	East      Glyph = "E"
	SouthEast Glyph = "SE"
	South     Glyph = "S"
	SouthWest Glyph = "SW"
	West      Glyph = "W"
	NorthWest Glyph = "NW"

	// TargetHit marks a guess that is the target itself. It is never
	// returned by Bearing.
	TargetHit Glyph = "HIT"
)

// compass is ordered clockwise from north; index i covers the sector
// centred on i*45 degrees.
var compass = [8]Glyph{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// Distance returns the haversine distance between a and b in kilometres.
// It is symmetric and exactly 0 for identical points.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h fractionally above 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Degrees returns the initial great-circle bearing from -> to in [0, 360).
func Degrees(from, to Point) float64 {
	lat1, lat2 := radians(from.Lat), radians(to.Lat)
	dLng := radians(to.Lng - from.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Bearing returns the compass glyph for the initial bearing from -> to.
// Sectors are 45 degrees wide and half-open, so a bearing of exactly 22.5
// belongs to NE rather than N.
func Bearing(from, to Point) Glyph {
	return GlyphFor(Degrees(from, to))
}

// GlyphFor buckets a bearing in degrees into its compass glyph.
func GlyphFor(deg float64) Glyph {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	i := int(math.Floor((deg+22.5)/45)) % len(compass)
	return compass[i]
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
