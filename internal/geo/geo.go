// Package geo provides distance math and route buffering on top of
// paulmach/orb geometries. Routes are short urban paths, so distances
// use a local equirectangular projection anchored at the route start;
// the error at city scale is well under a meter.
package geo

import (
	"math"

	"github.com/paulmach/orb"

	"airscout/internal/errors"
)

// EarthRadiusMeters is the mean earth radius used by all distance math.
const EarthRadiusMeters = 6371000.0

var (
	ErrRouteTooShort     = errors.New("geo: route needs at least 2 points")
	ErrInvalidCoordinate = errors.New("geo: coordinate out of range")
	ErrInvalidBuffer     = errors.New("geo: buffer must be positive")
)

// ValidatePoint checks that the point holds a plausible WGS84 coordinate.
func ValidatePoint(pt orb.Point) error {
	if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
		return errors.Wrapf(ErrInvalidCoordinate, "lon=%f lat=%f", pt.Lon(), pt.Lat())
	}
	return nil
}

// DistanceMeters returns the haversine great-circle distance between two
// points in meters.
func DistanceMeters(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// WithinRadius reports whether b lies within radiusMeters of a, boundary
// inclusive.
func WithinRadius(a, b orb.Point, radiusMeters float64) bool {
	return DistanceMeters(a, b) <= radiusMeters
}

type planarPoint struct {
	x, y float64
}

// Region is a route corridor: every point within the buffer distance of
// the route path. Built once per assessment and queried per hazard.
type Region struct {
	origin orb.Point
	cosLat float64
	buffer float64
	path   []planarPoint
	route  orb.LineString
}

// BufferRoute builds the corridor region around route with the given
// buffer in meters.
func BufferRoute(route orb.LineString, bufferMeters float64) (*Region, error) {
	if len(route) < 2 {
		return nil, ErrRouteTooShort
	}
	if bufferMeters <= 0 {
		return nil, ErrInvalidBuffer
	}
	for _, pt := range route {
		if err := ValidatePoint(pt); err != nil {
			return nil, err
		}
	}

	r := &Region{
		origin: route[0],
		cosLat: math.Cos(route[0].Lat() * math.Pi / 180),
		buffer: bufferMeters,
		route:  route.Clone(),
	}
	r.path = make([]planarPoint, len(route))
	for i, pt := range route {
		r.path[i] = r.project(pt)
	}
	return r, nil
}

// BufferMeters returns the corridor half-width.
func (r *Region) BufferMeters() float64 {
	return r.buffer
}

func (r *Region) project(pt orb.Point) planarPoint {
	return planarPoint{
		x: EarthRadiusMeters * (pt.Lon() - r.origin.Lon()) * math.Pi / 180 * r.cosLat,
		y: EarthRadiusMeters * (pt.Lat() - r.origin.Lat()) * math.Pi / 180,
	}
}

func (r *Region) unproject(p planarPoint) orb.Point {
	return orb.Point{
		r.origin.Lon() + p.x/(EarthRadiusMeters*r.cosLat)*180/math.Pi,
		r.origin.Lat() + p.y/EarthRadiusMeters*180/math.Pi,
	}
}

// Contains reports whether pt falls inside the corridor, boundary
// inclusive.
func (r *Region) Contains(pt orb.Point) bool {
	return r.DistanceToPath(pt) <= r.buffer
}

// DistanceToPath returns the shortest distance in meters from pt to the
// route path.
func (r *Region) DistanceToPath(pt orb.Point) float64 {
	p := r.project(pt)
	min := math.Inf(1)
	for i := 0; i < len(r.path)-1; i++ {
		if d := distanceToSegment(p, r.path[i], r.path[i+1]); d < min {
			min = d
		}
	}
	return min
}

func distanceToSegment(p, a, b planarPoint) float64 {
	dx := b.x - a.x
	dy := b.y - a.y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.x-(a.x+t*dx), p.y-(a.y+t*dy))
}

const circleSegments = 32

// Geometry returns an approximate geographic outline of the corridor,
// one rectangle per route segment plus a circle at each vertex. Intended
// for display; containment checks use Contains.
func (r *Region) Geometry() orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, 2*len(r.path)-1)
	for i := 0; i < len(r.path)-1; i++ {
		if rect, ok := r.segmentRectangle(r.path[i], r.path[i+1]); ok {
			mp = append(mp, rect)
		}
	}
	for _, p := range r.path {
		mp = append(mp, r.circle(p))
	}
	return mp
}

func (r *Region) segmentRectangle(a, b planarPoint) (orb.Polygon, bool) {
	dx := b.x - a.x
	dy := b.y - a.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil, false
	}
	// unit normal
	nx := -dy / length * r.buffer
	ny := dx / length * r.buffer
	ring := orb.Ring{
		r.unproject(planarPoint{a.x + nx, a.y + ny}),
		r.unproject(planarPoint{b.x + nx, b.y + ny}),
		r.unproject(planarPoint{b.x - nx, b.y - ny}),
		r.unproject(planarPoint{a.x - nx, a.y - ny}),
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, true
}

func (r *Region) circle(center planarPoint) orb.Polygon {
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		ring = append(ring, r.unproject(planarPoint{
			x: center.x + r.buffer*math.Cos(angle),
			y: center.y + r.buffer*math.Sin(angle),
		}))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
