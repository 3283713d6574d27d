package geofence

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "surety/pkg/domain-errors"
)

func TestDistanceProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 500
	properties := gopter.NewProperties(params)

	lat := gen.Float64Range(-90, 90)
	lng := gen.Float64Range(-180, 180)

	properties.Property("distance to self is zero", prop.ForAll(
		func(la, ln float64) bool {
			d, err := Distance(Coordinate{la, ln}, Coordinate{la, ln})
			return err == nil && d == 0
		},
		lat, lng,
	))

	properties.Property("distance is symmetric", prop.ForAll(
		func(la1, ln1, la2, ln2 float64) bool {
			a, b := Coordinate{la1, ln1}, Coordinate{la2, ln2}
			ab, err1 := Distance(a, b)
			ba, err2 := Distance(b, a)
			return err1 == nil && err2 == nil && ab == ba
		},
		lat, lng, lat, lng,
	))

	properties.Property("distance never exceeds half the circumference", prop.ForAll(
		func(la1, ln1, la2, ln2 float64) bool {
			d, err := Distance(Coordinate{la1, ln1}, Coordinate{la2, ln2})
			return err == nil && d >= 0 && d <= math.Pi*EarthRadiusMeters+1e-6
		},
		lat, lng, lat, lng,
	))

	properties.TestingRun(t)
}

func TestDistanceKnownValues(t *testing.T) {
	// one degree of latitude on the sphere
	d, err := Distance(Coordinate{0, 0}, Coordinate{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 1e-6)

	d, err = Distance(Coordinate{90, 0}, Coordinate{-90, 0})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1e-3)
}

func TestCoordinateValidation(t *testing.T) {
	bad := []Coordinate{
		{Lat: 90.0001, Lng: 0},
		{Lat: -91, Lng: 0},
		{Lat: 0, Lng: 180.5},
		{Lat: 0, Lng: -181},
		{Lat: math.NaN(), Lng: 0},
		{Lat: 0, Lng: math.Inf(1)},
	}
	for _, c := range bad {
		_, err := Distance(c, DefaultSite.Center())
		require.Error(t, err, "coordinate %+v", c)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCoordinate))
	}

	require.NoError(t, Coordinate{Lat: 90, Lng: 180}.Validate())
	require.NoError(t, Coordinate{Lat: -90, Lng: -180}.Validate())
}

func TestVerify(t *testing.T) {
	t.Run("site center is verified at distance zero", func(t *testing.T) {
		res, err := Verify(Coordinate{Lat: 6.5401, Lng: 3.3934}, DefaultSite)
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Equal(t, int64(0), res.DistanceMeters)
		assert.Equal(t, 100, res.TrustContribution)
		assert.Equal(t, "Bariga Market", res.Site.Name)
	})

	t.Run("outside the fence contributes nothing", func(t *testing.T) {
		res, err := Verify(Coordinate{Lat: 6.5501, Lng: 3.3934}, DefaultSite)
		require.NoError(t, err)
		assert.False(t, res.Verified)
		assert.Equal(t, 0, res.TrustContribution)
		assert.InDelta(t, 1112, res.DistanceMeters, 1)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		point := Coordinate{Lat: 6.5411, Lng: 3.3934}
		exact, err := Distance(point, DefaultSite.Center())
		require.NoError(t, err)

		site := DefaultSite
		site.RadiusMeters = exact
		ok, err := WithinFence(point, site)
		require.NoError(t, err)
		assert.True(t, ok)

		site.RadiusMeters = math.Nextafter(exact, 0)
		ok, err = WithinFence(point, site)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("decision uses the unrounded distance", func(t *testing.T) {
		point := Coordinate{Lat: 6.5411, Lng: 3.3934}
		exact, err := Distance(point, DefaultSite.Center())
		require.NoError(t, err)

		site := DefaultSite
		site.RadiusMeters = math.Floor(exact)
		res, err := Verify(point, site)
		require.NoError(t, err)
		assert.False(t, res.Verified)
		assert.Equal(t, int64(math.Round(exact)), res.DistanceMeters)
	})
}

func TestSites(t *testing.T) {
	t.Run("unknown id falls back to default", func(t *testing.T) {
		sites, err := NewSites()
		require.NoError(t, err)
		assert.Equal(t, DefaultSite, sites.Lookup("nowhere"))
		assert.Equal(t, DefaultSite, sites.Lookup(""))
	})

	t.Run("loads yaml and applies default radius", func(t *testing.T) {
		sites, err := ParseSites([]byte(`
sites:
  - id: yaba
    name: Yaba Market
    lat: 6.5095
    lng: 3.3711
  - id: oshodi
    name: Oshodi
    lat: 6.5550
    lng: 3.3431
    radius_meters: 350
`))
		require.NoError(t, err)
		yaba := sites.Lookup("yaba")
		assert.Equal(t, "Yaba Market", yaba.Name)
		assert.Equal(t, DefaultRadiusMeters, yaba.RadiusMeters)
		assert.Equal(t, 350.0, sites.Lookup("oshodi").RadiusMeters)
		assert.Len(t, sites.All(), 3)
		assert.Equal(t, DefaultSiteID, sites.All()[0].ID)
	})

	t.Run("rejects invalid site", func(t *testing.T) {
		_, err := ParseSites([]byte("sites:\n  - id: broken\n    lat: 120\n    lng: 0\n"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCoordinate))

		_, err = NewSites(JobSite{ID: "neg", Lat: 1, Lng: 1, RadiusMeters: -5})
		require.Error(t, err)
	})
}
