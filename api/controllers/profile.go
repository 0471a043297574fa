package controllers

import (
	"net/http"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/profile"
	"github.com/citycare/storefront/internal/storefront"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/logger"
)

type profileUpdateRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type emailOTPRequest struct {
	Email string `json:"email"`
}

type verifyEmailRequest struct {
	OTP string `json:"otp" validate:"required"`
}

type referralRequest struct {
	Code string `json:"code" validate:"required"`
}

type profileResponse struct {
	Profile profile.View   `json:"profile"`
	User    *citycare.User `json:"user,omitempty"`
}

func newProfileResponse(state *storefront.State) profileResponse {
	resp := profileResponse{Profile: state.Profile.View()}
	if u, ok := state.Session.User(); ok {
		resp.User = &u
	}
	return resp
}

func ProfileGet(logg *logger.Logger) http.HandlerFunc {
	return profileAction(logg, func(r *http.Request, state *storefront.State, user citycare.User) error {
		state.Profile.Load(r.Context(), user.ID)
		return nil
	})
}

// ProfileUpdate changes the name and email. Blank fields stay as they are.
func ProfileUpdate(logg *logger.Logger) http.HandlerFunc {
	return profileAction(logg, func(r *http.Request, state *storefront.State, user citycare.User) error {
		var payload profileUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Profile.Update(r.Context(), user.ID,
			validators.SanitizeString(payload.FullName, 120),
			validators.SanitizeString(payload.Email, 254))
	})
}

func ProfileSendEmailOTP(logg *logger.Logger) http.HandlerFunc {
	return profileAction(logg, func(r *http.Request, state *storefront.State, user citycare.User) error {
		var payload emailOTPRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Profile.SendEmailOTP(r.Context(), user.ID, validators.SanitizeString(payload.Email, 254))
	})
}

func ProfileVerifyEmail(logg *logger.Logger) http.HandlerFunc {
	return profileAction(logg, func(r *http.Request, state *storefront.State, user citycare.User) error {
		var payload verifyEmailRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Profile.VerifyEmailOTP(r.Context(), user.ID, payload.OTP)
	})
}

func ProfileApplyReferral(logg *logger.Logger) http.HandlerFunc {
	return profileAction(logg, func(r *http.Request, state *storefront.State, _ citycare.User) error {
		var payload referralRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Profile.ApplyReferral(r.Context(), validators.SanitizeString(payload.Code, 64))
	})
}

func ProfileClearError(logg *logger.Logger) http.HandlerFunc {
	return profileAction(logg, func(_ *http.Request, state *storefront.State, _ citycare.User) error {
		state.Profile.ClearError()
		return nil
	})
}

func profileAction(logg *logger.Logger, fn func(*http.Request, *storefront.State, citycare.User) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		if err := fn(r, state, user); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProfileResponse(state))
	}
}
