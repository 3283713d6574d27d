package geofence

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	dErrors "surety/pkg/domain-errors"
)

// DefaultSiteID names the canonical site used when a lookup misses.
const DefaultSiteID = "default"

// DefaultRadiusMeters is the fence radius applied when a site omits one.
const DefaultRadiusMeters = 200.0

// JobSite is immutable reference data.
type JobSite struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Lat          float64 `json:"lat" yaml:"lat"`
	Lng          float64 `json:"lng" yaml:"lng"`
	RadiusMeters float64 `json:"radius_meters" yaml:"radius_meters"`
}

func (s JobSite) Center() Coordinate {
	return Coordinate{Lat: s.Lat, Lng: s.Lng}
}

func (s JobSite) validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return dErrors.New(dErrors.CodeValidation, "job site id is required")
	}
	if err := s.Center().Validate(); err != nil {
		return err
	}
	if s.RadiusMeters <= 0 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("job site %s radius must be positive", s.ID))
	}
	return nil
}

// DefaultSite is Bariga Market, Lagos.
var DefaultSite = JobSite{
	ID:           DefaultSiteID,
	Name:         "Bariga Market",
	Lat:          6.5401,
	Lng:          3.3934,
	RadiusMeters: DefaultRadiusMeters,
}

// Sites is a read-only registry of job sites.
type Sites struct {
	byID map[string]JobSite
}

// NewSites builds a registry. The default site is always present; a site with
// id "default" in the input replaces it.
func NewSites(sites ...JobSite) (*Sites, error) {
	r := &Sites{byID: map[string]JobSite{DefaultSiteID: DefaultSite}}
	for _, s := range sites {
		if s.RadiusMeters == 0 {
			s.RadiusMeters = DefaultRadiusMeters
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		r.byID[s.ID] = s
	}
	return r, nil
}

// Lookup returns the site for id, falling back to the default site.
func (r *Sites) Lookup(id string) JobSite {
	if s, ok := r.byID[strings.TrimSpace(id)]; ok {
		return s
	}
	return r.byID[DefaultSiteID]
}

// All returns every site ordered by id.
func (r *Sites) All() []JobSite {
	out := make([]JobSite, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type sitesFile struct {
	Sites []JobSite `yaml:"sites"`
}

// LoadSites reads a YAML file of the form:
//
//	sites:
//	  - id: bariga
//	    name: Bariga Market
//	    lat: 6.5401
//	    lng: 3.3934
//	    radius_meters: 200
//
// An empty path yields the registry with only the default site.
func LoadSites(path string) (*Sites, error) {
	if path == "" {
		return NewSites()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job sites %s: %w", path, err)
	}
	return ParseSites(raw)
}

// ParseSites decodes the YAML document described in LoadSites.
func ParseSites(raw []byte) (*Sites, error) {
	var f sitesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse job sites: %w", err)
	}
	return NewSites(f.Sites...)
}
