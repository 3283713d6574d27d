// Package geofence decides whether a reported position lies inside a job site.
// Everything here is pure and safe for concurrent use.
package geofence

import (
	"fmt"
	"math"

	"surety/internal/scoring"
	dErrors "surety/pkg/domain-errors"
)

// EarthRadiusMeters is the mean radius of the spherical Earth approximation.
const EarthRadiusMeters = 6_371_000.0

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate rejects non-finite or out-of-range values instead of clamping them.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return dErrors.New(dErrors.CodeInvalidCoordinate, fmt.Sprintf("latitude %v must be within [-90, 90]", c.Lat))
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return dErrors.New(dErrors.CodeInvalidCoordinate, fmt.Sprintf("longitude %v must be within [-180, 180]", c.Lng))
	}
	return nil
}

// Distance returns the haversine great-circle distance in meters.
func Distance(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return haversine(a, b), nil
}

func haversine(a, b Coordinate) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// rounding can push h a hair above 1 for antipodal points
	h = math.Min(1, h)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinFence reports whether point lies inside site. The boundary is inclusive.
func WithinFence(point Coordinate, site JobSite) (bool, error) {
	d, err := Distance(point, site.Center())
	if err != nil {
		return false, err
	}
	return d <= site.RadiusMeters, nil
}

// Result is the outcome of checking one position against one site.
type Result struct {
	Verified          bool    `json:"verified"`
	DistanceMeters    int64   `json:"distance_meters"`
	TrustContribution int     `json:"trust_contribution"`
	Site              JobSite `json:"site"`
	// Exact is the unrounded distance used for the fence decision.
	Exact float64 `json:"-"`
}

// Verify checks point against site. Only DistanceMeters is rounded.
func Verify(point Coordinate, site JobSite) (Result, error) {
	d, err := Distance(point, site.Center())
	if err != nil {
		return Result{}, err
	}
	inside := d <= site.RadiusMeters
	return Result{
		Verified:          inside,
		DistanceMeters:    int64(math.Round(d)),
		TrustContribution: scoring.TrustContribution(inside),
		Site:              site,
		Exact:             d,
	}, nil
}
