package spatial

import (
	"math"
)

// Point represents a 2D point with latitude and longitude (WGS84)
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Polyline is an ordered sequence of points forming a line geometry
type Polyline []Point

// metersPerDegreeLat is the length of one degree of latitude, derived from
// the same earth radius the haversine code uses. Box prefilters and exact
// distance checks must agree on scale.
const metersPerDegreeLat = (math.Pi / 180) * EarthRadiusMeters

// boxPadFactor over-covers prefilter boxes slightly; exact distance
// refinement discards the extras.
const boxPadFactor = 1.01

// project converts a point to local planar coordinates (meters) relative to
// an origin, using an equirectangular projection. Accurate to well under a
// meter at the scale of a single road segment.
func project(p, origin Point) (x, y float64) {
	latRad := origin.Lat * math.Pi / 180
	x = (p.Lon - origin.Lon) * metersPerDegreeLat * math.Cos(latRad)
	y = (p.Lat - origin.Lat) * metersPerDegreeLat
	return x, y
}

// ClosestPointOnSegment returns the point on segment [a,b] closest to p,
// and the great-circle distance from p to that point in meters.
func ClosestPointOnSegment(p, a, b Point) (Point, float64) {
	ax, ay := project(a, p)
	bx, by := project(b, p)

	dx := bx - ax
	dy := by - ay

	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return a, Distance(p, a)
	}

	// Parameter of the projection of p (origin) onto the segment, clamped
	// to the segment endpoints.
	t := -(ax*dx + ay*dy) / segLenSq
	t = math.Max(0, math.Min(1, t))

	snapped := Point{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lon: a.Lon + t*(b.Lon-a.Lon),
	}
	return snapped, Distance(p, snapped)
}

// ClosestPointOnPolyline returns the point on the polyline closest to p and
// the great-circle distance to it in meters. An empty polyline yields +Inf.
func ClosestPointOnPolyline(p Point, line Polyline) (Point, float64) {
	if len(line) == 0 {
		return Point{}, math.Inf(1)
	}
	if len(line) == 1 {
		return line[0], Distance(p, line[0])
	}

	best := line[0]
	bestDist := math.Inf(1)
	for i := 1; i < len(line); i++ {
		snapped, dist := ClosestPointOnSegment(p, line[i-1], line[i])
		if dist < bestDist {
			best = snapped
			bestDist = dist
		}
	}
	return best, bestDist
}

// Length calculates the total length of the polyline in meters
func (line Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += Distance(line[i-1], line[i])
	}
	return total
}

// BoundingBox calculates the bounding box of the polyline
// Returns (minLat, minLon, maxLat, maxLon)
func (line Polyline) BoundingBox() (float64, float64, float64, float64) {
	if len(line) == 0 {
		return 0, 0, 0, 0
	}

	minLat, maxLat := line[0].Lat, line[0].Lat
	minLon, maxLon := line[0].Lon, line[0].Lon

	for _, p := range line[1:] {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lon < minLon {
			minLon = p.Lon
		}
		if p.Lon > maxLon {
			maxLon = p.Lon
		}
	}

	return minLat, minLon, maxLat, maxLon
}

// ExpandBox grows a lat/lon bounding box by a radius in meters. Used to
// prefilter spatial queries before exact distance refinement.
func ExpandBox(minLat, minLon, maxLat, maxLon, radiusMeters float64) (float64, float64, float64, float64) {
	r := radiusMeters * boxPadFactor
	dLat := r / metersPerDegreeLat

	// Longitude degrees shrink with latitude; use the latitude furthest
	// from the equator so the box never under-covers.
	maxAbsLat := math.Max(math.Abs(minLat), math.Abs(maxLat))
	cosLat := math.Cos(maxAbsLat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon := r / (metersPerDegreeLat * cosLat)

	return minLat - dLat, minLon - dLon, maxLat + dLat, maxLon + dLon
}
