package controllers

import (
	"net/http"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/addresses"
	"github.com/citycare/storefront/internal/storefront"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/maps"
	"github.com/citycare/storefront/pkg/types"
)

type addressesResponse struct {
	Addresses []types.Address `json:"addresses"`
	DefaultID int64           `json:"defaultId,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type defaultAddressResponse struct {
	Address *types.Address `json:"address"`
	Error   string         `json:"error,omitempty"`
}

type locateRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type locateResponse struct {
	Draft addresses.Draft `json:"draft"`
	Error string          `json:"error,omitempty"`
}

func newAddressesResponse(b *addresses.Book) addressesResponse {
	list := b.Addresses()
	return addressesResponse{Addresses: list, DefaultID: addresses.PickDefault(list), Error: b.Error()}
}

func AddressesList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		state.Addresses.Load(r.Context(), user.ID)
		responses.WriteSuccess(w, newAddressesResponse(state.Addresses))
	}
}

func AddressesDefault(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		state.Addresses.ClearError()
		addr := state.Addresses.Default(r.Context(), user.ID)
		responses.WriteSuccess(w, defaultAddressResponse{Address: addr, Error: state.Addresses.Error()})
	}
}

// AddressesCreate saves an address. A blank first line is ignored silently.
func AddressesCreate(logg *logger.Logger) http.HandlerFunc {
	return addressAction(logg, false, func(r *http.Request, state *storefront.State, user citycare.User, _ int64) error {
		var draft addresses.Draft
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			return err
		}
		state.Addresses.Add(r.Context(), user.ID, draft)
		return nil
	})
}

func AddressesUpdate(logg *logger.Logger) http.HandlerFunc {
	return addressAction(logg, true, func(r *http.Request, state *storefront.State, user citycare.User, id int64) error {
		var draft addresses.Draft
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			return err
		}
		state.Addresses.Update(r.Context(), user.ID, id, draft)
		return nil
	})
}

func AddressesDelete(logg *logger.Logger) http.HandlerFunc {
	return addressAction(logg, true, func(r *http.Request, state *storefront.State, user citycare.User, id int64) error {
		state.Addresses.Remove(r.Context(), user.ID, id)
		return nil
	})
}

func AddressesSetDefault(logg *logger.Logger) http.HandlerFunc {
	return addressAction(logg, true, func(r *http.Request, state *storefront.State, user citycare.User, id int64) error {
		state.Addresses.MakeDefault(r.Context(), user.ID, id)
		return nil
	})
}

// AddressesLocate turns a coordinate into a prefilled draft.
func AddressesLocate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		var payload locateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state.Addresses.ClearError()
		draft := state.Addresses.Locate(r.Context(), maps.LatLng{Latitude: payload.Latitude, Longitude: payload.Longitude})
		responses.WriteSuccess(w, locateResponse{Draft: draft, Error: state.Addresses.Error()})
	}
}

func addressAction(logg *logger.Logger, withID bool, fn func(*http.Request, *storefront.State, citycare.User, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		var id int64
		if withID {
			var err error
			if id, err = validators.ParsePathID(r, "id"); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		state.Addresses.ClearError()
		if err := fn(r, state, user, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAddressesResponse(state.Addresses))
	}
}
