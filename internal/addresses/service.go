package addresses

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/maps"
	"github.com/citycare/storefront/pkg/types"
)

const (
	DefaultLabel = "Home"

	ErrMsgLoad   = "Failed to load addresses."
	ErrMsgAdd    = "Failed to add address. Please try again."
	ErrMsgUpdate = "Failed to update address. Please try again."
	ErrMsgDelete = "Failed to delete address. Please try again."
	ErrMsgLocate = "Could not fetch address details. Please fill in manually."

	coordinatePlaces = 8
)

// ErrLineRequired is returned by Create when line 1 is blank. Forms treat it
// as "nothing to submit" rather than a failure.
var ErrLineRequired = errors.New(errors.CodeValidation, "Address line 1 is required")

// Remote is the slice of the CityCare API the address book needs.
type Remote interface {
	Addresses(ctx context.Context, userID int64) ([]types.Address, error)
	CreateAddress(ctx context.Context, in citycare.AddressInput) error
	UpdateAddress(ctx context.Context, addressID int64, in citycare.AddressInput) error
	DeleteAddress(ctx context.Context, addressID int64) error
	SetDefaultAddress(ctx context.Context, userID, addressID int64) error
	DefaultAddress(ctx context.Context, userID int64) (*types.Address, error)
}

// Geocoder turns a device position into an address.
type Geocoder interface {
	Reverse(ctx context.Context, at maps.LatLng) (*maps.Place, error)
}

// Draft is an address being entered by the customer.
type Draft struct {
	FullName     string  `json:"fullName"`
	PhoneNo      string  `json:"phoneNo"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city"`
	Pincode      string  `json:"pincode"`
	Label        string  `json:"label"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type Service interface {
	List(ctx context.Context, userID int64) ([]types.Address, error)
	Create(ctx context.Context, userID int64, draft Draft) error
	Update(ctx context.Context, addressID int64, draft Draft) error
	Delete(ctx context.Context, addressID int64) error
	SetDefault(ctx context.Context, userID, addressID int64) error
	Default(ctx context.Context, userID int64) (*types.Address, error)
	Locate(ctx context.Context, at maps.LatLng) (Draft, error)
}

type service struct {
	remote Remote
	geo    Geocoder
}

// NewService wires the address service. geo may be nil, in which case Locate
// always fails with a dependency error.
func NewService(remote Remote, geo Geocoder) (Service, error) {
	if remote == nil {
		return nil, errors.New(errors.CodeInternal, "address remote required")
	}
	return &service{remote: remote, geo: geo}, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]types.Address, error) {
	if userID == 0 {
		return []types.Address{}, nil
	}
	out, err := s.remote.Addresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.Address{}
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, userID int64, draft Draft) error {
	if userID == 0 {
		return errors.New(errors.CodeUnauthorized, "login required")
	}
	draft = draft.normalized()
	if draft.AddressLine1 == "" {
		return ErrLineRequired
	}
	in := draft.input()
	in.UserID = userID
	return s.remote.CreateAddress(ctx, in)
}

func (s *service) Update(ctx context.Context, addressID int64, draft Draft) error {
	if addressID <= 0 {
		return errors.New(errors.CodeValidation, "address id is required")
	}
	draft = draft.normalized()
	if draft.AddressLine1 == "" {
		return ErrLineRequired
	}
	return s.remote.UpdateAddress(ctx, addressID, draft.input())
}

func (s *service) Delete(ctx context.Context, addressID int64) error {
	if addressID <= 0 {
		return errors.New(errors.CodeValidation, "address id is required")
	}
	return s.remote.DeleteAddress(ctx, addressID)
}

func (s *service) SetDefault(ctx context.Context, userID, addressID int64) error {
	if userID == 0 {
		return errors.New(errors.CodeUnauthorized, "login required")
	}
	if addressID <= 0 {
		return errors.New(errors.CodeValidation, "address id is required")
	}
	return s.remote.SetDefaultAddress(ctx, userID, addressID)
}

func (s *service) Default(ctx context.Context, userID int64) (*types.Address, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.remote.DefaultAddress(ctx, userID)
}

func (s *service) Locate(ctx context.Context, at maps.LatLng) (Draft, error) {
	if s.geo == nil {
		return Draft{}, errors.New(errors.CodeDependency, "geocoder unavailable")
	}
	place, err := s.geo.Reverse(ctx, at)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		AddressLine1: place.Street(),
		AddressLine2: place.Locality(),
		City:         place.City,
		Pincode:      place.Postcode,
		Label:        DefaultLabel,
		Latitude:     roundCoordinate(at.Latitude),
		Longitude:    roundCoordinate(at.Longitude),
	}, nil
}

func (d Draft) normalized() Draft {
	d.FullName = strings.TrimSpace(d.FullName)
	d.PhoneNo = strings.TrimSpace(d.PhoneNo)
	d.AddressLine1 = strings.TrimSpace(d.AddressLine1)
	d.AddressLine2 = strings.TrimSpace(d.AddressLine2)
	d.City = strings.TrimSpace(d.City)
	d.Pincode = strings.TrimSpace(d.Pincode)
	d.Label = strings.TrimSpace(d.Label)
	if d.Label == "" {
		d.Label = DefaultLabel
	}
	d.Latitude = roundCoordinate(d.Latitude)
	d.Longitude = roundCoordinate(d.Longitude)
	return d
}

func (d Draft) input() citycare.AddressInput {
	return citycare.AddressInput{
		FullName:     d.FullName,
		PhoneNo:      d.PhoneNo,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		City:         d.City,
		Pincode:      d.Pincode,
		Label:        d.Label,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
	}
}

func roundCoordinate(v float64) float64 {
	return decimal.NewFromFloat(v).Round(coordinatePlaces).InexactFloat64()
}

// PickDefault returns the id of the default address, else the first one, else 0.
func PickDefault(list []types.Address) int64 {
	for _, a := range list {
		if a.IsDefault {
			return a.ID
		}
	}
	if len(list) > 0 {
		return list[0].ID
	}
	return 0
}
