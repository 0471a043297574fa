package controllers

import (
	"net/http"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/bookings"
	"github.com/citycare/storefront/internal/storefront"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/logger"
)

type bookingsResponse struct {
	Bookings    []bookings.Card `json:"bookings"`
	Error       string          `json:"error,omitempty"`
	ActionError string          `json:"actionError,omitempty"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type rescheduleBookingRequest struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}

func newBookingsResponse(d *bookings.Desk) bookingsResponse {
	return bookingsResponse{Bookings: d.Cards(), Error: d.Error(), ActionError: d.ActionError()}
}

// BookingsList reloads the customer's bookings. A failed load keeps the last list.
func BookingsList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		state.Bookings.Load(r.Context(), user.ID)
		responses.WriteSuccess(w, newBookingsResponse(state.Bookings))
	}
}

func BookingsDetail(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, _, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := state.Bookings.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

func BookingsCancel(logg *logger.Logger) http.HandlerFunc {
	return bookingAction(logg, func(r *http.Request, state *storefront.State, user citycare.User, id int64) error {
		var payload cancelBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Bookings.Cancel(r.Context(), user.ID, id, payload.Reason)
	})
}

func BookingsReschedule(logg *logger.Logger) http.HandlerFunc {
	return bookingAction(logg, func(r *http.Request, state *storefront.State, user citycare.User, id int64) error {
		var payload rescheduleBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Bookings.Reschedule(r.Context(), user.ID, id, payload.Date, payload.Slot)
	})
}

func BookingsRate(logg *logger.Logger) http.HandlerFunc {
	return bookingAction(logg, func(r *http.Request, state *storefront.State, user citycare.User, id int64) error {
		var payload bookings.Rating
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		return state.Bookings.Rate(r.Context(), user.ID, id, payload)
	})
}

func BookingsRatings(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, _, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := state.Bookings.Ratings(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// BookingsRescheduleSlots lists the windows a booking can move to on ?date=.
func BookingsRescheduleSlots(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		slots, err := state.Bookings.RescheduleSlotsOn(r.URL.Query().Get("date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, slots)
	}
}

func bookingAction(logg *logger.Logger, fn func(*http.Request, *storefront.State, citycare.User, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, user, ok := signedIn(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := fn(r, state, user, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingsResponse(state.Bookings))
	}
}
