package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/cart"
	"github.com/citycare/storefront/internal/storefront"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/money"
)

type cartResponse struct {
	Lines     []cart.Line `json:"lines"`
	Total     money.Paisa `json:"total"`
	ItemCount int         `json:"itemCount"`
	Error     string      `json:"error,omitempty"`
}

type cartQuantityRequest struct {
	Delta int `json:"delta"`
}

func newCartResponse(c *cart.Store) cartResponse {
	return cartResponse{
		Lines:     c.Lines(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		Error:     c.Error(),
	}
}

// CartGet returns the cart. refresh=true reloads it from its source first.
func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		if strings.EqualFold(r.URL.Query().Get("refresh"), "true") {
			state.Cart.Load(r.Context())
		}
		responses.WriteSuccess(w, newCartResponse(state.Cart))
	}
}

// CartAdd adds one unit of a menu. Server failures land in the cart's error.
func CartAdd(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		var item cart.Item
		if err := validators.DecodeJSONBody(r, &item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item.Name = validators.SanitizeString(item.Name, 200)
		state.AddToCart(r.Context(), item)
		responses.WriteSuccess(w, newCartResponse(state.Cart))
	}
}

func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, key, ok := cartLine(w, r, logg)
		if !ok {
			return
		}
		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state.Cart.UpdateQuantity(r.Context(), key, payload.Delta)
		responses.WriteSuccess(w, newCartResponse(state.Cart))
	}
}

func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, key, ok := cartLine(w, r, logg)
		if !ok {
			return
		}
		state.Cart.RemoveItem(r.Context(), key)
		responses.WriteSuccess(w, newCartResponse(state.Cart))
	}
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		state.Cart.ClearCart(r.Context())
		responses.WriteSuccess(w, newCartResponse(state.Cart))
	}
}

func CartClearError(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		state.Cart.ClearError()
		responses.WriteSuccess(w, newCartResponse(state.Cart))
	}
}

func cartLine(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*storefront.State, string, bool) {
	state, ok := deviceState(w, r, logg)
	if !ok {
		return nil, "", false
	}
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item key is required"))
		return nil, "", false
	}
	return state, key, true
}
