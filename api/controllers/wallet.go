package controllers

import (
	"net/http"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/wallet"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/payments"
)

type topupRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type topupFailedRequest struct {
	Description string `json:"description"`
}

type topupCompleteResponse struct {
	Receipt *wallet.Receipt `json:"receipt"`
	Wallet  wallet.View     `json:"wallet"`
}

func WalletGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		state.Wallet.Load(r.Context(), user.ID)
		responses.WriteSuccess(w, state.Wallet.View())
	}
}

// WalletTopup opens a gateway order for a rupee amount.
func WalletTopup(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		var payload topupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := state.Wallet.StartTopup(r.Context(), user, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, opts)
	}
}

func WalletTopupCallback(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		var cb payments.Callback
		if err := validators.DecodeJSONBody(r, &cb); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := state.Wallet.Complete(r.Context(), user.ID, cb)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, topupCompleteResponse{Receipt: receipt, Wallet: state.Wallet.View()})
	}
}

func WalletTopupFailed(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, _, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		var payload topupFailedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state.Wallet.Failed(validators.SanitizeString(payload.Description, 300))
		responses.WriteSuccess(w, state.Wallet.View())
	}
}
