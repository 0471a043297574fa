package controllers

import (
	"net/http"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/session"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/enums"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
)

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type loginRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type uiFlagRequest struct {
	Flag string `json:"flag" validate:"required"`
	Open bool   `json:"open"`
}

type loginResponse struct {
	User         *citycare.User `json:"user"`
	NeedsDetails bool           `json:"needsDetails"`
	Session      session.View   `json:"session"`
}

func SessionGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, state.Session.View())
	}
}

func SessionSendOTP(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		var payload sendOTPRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := state.Session.SendOTP(r.Context(), payload.Phone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"sent": true})
	}
}

func SessionLogin(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, needsDetails, err := state.Login(r.Context(), payload.Phone, payload.OTP)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loginResponse{User: user, NeedsDetails: needsDetails, Session: state.Session.View()})
	}
}

func SessionLogout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		if err := state.Session.Logout(r.Context()); err != nil && logg != nil {
			logg.Error(r.Context(), "logout left cached keys behind", err)
		}
		responses.WriteSuccess(w, state.Session.View())
	}
}

// SessionSetUI opens or closes one of the storefront's drawers and modals.
func SessionSetUI(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		var payload uiFlagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flag, err := enums.ParseUIFlag(payload.Flag)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown ui flag").
				WithDetails(map[string]any{"field": "flag"}))
			return
		}
		state.Session.SetFlag(flag, payload.Open)
		responses.WriteSuccess(w, state.Session.View())
	}
}
