package controllers

import (
	"net/http"

	"github.com/citycare/storefront/api/middleware"
	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/internal/storefront"
	"github.com/citycare/storefront/pkg/citycare"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
)

// deviceState returns the request's storefront state or writes an error.
func deviceState(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*storefront.State, bool) {
	state := middleware.StateFromContext(r.Context())
	if state == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "device context missing"))
		return nil, false
	}
	return state, true
}

// signedIn additionally requires a logged-in customer.
func signedIn(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*storefront.State, citycare.User, bool) {
	state, ok := deviceState(w, r, logg)
	if !ok {
		return nil, citycare.User{}, false
	}
	user, ok := state.Session.User()
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Please login to continue"))
		return nil, citycare.User{}, false
	}
	return state, user, true
}
