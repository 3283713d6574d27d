package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"surety/internal/geofence"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/middleware/auth"
	"surety/pkg/requestcontext"
)

func walletParam(r *http.Request) (domain.WalletAddress, error) {
	return domain.ParseWallet(chi.URLParam(r, "wallet"))
}

func jobIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "job id must be a UUID")
	}
	return id, nil
}

// callerWallet is the wallet of a JWT authenticated worker or employer.
func callerWallet(r *http.Request) (domain.WalletAddress, error) {
	w, err := domain.ParseWallet(requestcontext.Actor(r.Context()))
	if err != nil {
		return "", dErrors.New(dErrors.CodeForbidden, "caller is not a wallet")
	}
	return w, nil
}

// requireSelf lets workers act only on their own wallet. Oracles act on any.
func requireSelf(r *http.Request, wallet domain.WalletAddress) error {
	if requestcontext.Role(r.Context()) == string(auth.RoleOracle) {
		return nil
	}
	caller, err := callerWallet(r)
	if err != nil {
		return err
	}
	if caller != wallet {
		return dErrors.New(dErrors.CodeForbidden, "workers may only act on their own wallet")
	}
	return nil
}

// position is an optional coordinate in a request body.
type position struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// coordinate returns nil when neither field is set and a validation error
// when only one is.
func (p position) coordinate() (*geofence.Coordinate, error) {
	switch {
	case p.Lat == nil && p.Lng == nil:
		return nil, nil
	case p.Lat == nil || p.Lng == nil:
		return nil, dErrors.New(dErrors.CodeInvalidCoordinate, "lat and lng must be given together")
	}
	c := geofence.Coordinate{Lat: *p.Lat, Lng: *p.Lng}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p position) required() (geofence.Coordinate, error) {
	c, err := p.coordinate()
	if err != nil {
		return geofence.Coordinate{}, err
	}
	if c == nil {
		return geofence.Coordinate{}, dErrors.New(dErrors.CodeInvalidCoordinate, "lat and lng are required")
	}
	return *c, nil
}
