package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/catalog"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/logger"
)

// StaticCatalog is the embedded catalog served to guests.
type StaticCatalog interface {
	Parents() []citycare.Service
	ByParent(parentID string) []citycare.Service
	Service(rawID string) (citycare.Service, bool)
	Menus(serviceID string) []citycare.MenuGroup
}

type staticEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func StaticParents(cat StaticCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteRaw(w, http.StatusOK, staticEnvelope{Success: true, Data: cat.Parents()})
	}
}

func StaticByParent(cat StaticCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteRaw(w, http.StatusOK, staticEnvelope{Success: true, Data: cat.ByParent(chi.URLParam(r, "id"))})
	}
}

// StaticService looks the id up among children first, then parents.
func StaticService(cat StaticCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := cat.Service(chi.URLParam(r, "id"))
		if !ok {
			responses.WriteRaw(w, http.StatusNotFound, staticEnvelope{Message: "Service not found"})
			return
		}
		responses.WriteRaw(w, http.StatusOK, staticEnvelope{Success: true, Data: svc})
	}
}

func StaticMenus(cat StaticCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID := strings.TrimSpace(r.URL.Query().Get("serviceId"))
		responses.WriteRaw(w, http.StatusOK, staticEnvelope{Success: true, Data: cat.Menus(serviceID)})
	}
}

// CatalogBrowser reads the live catalog from the CityCare API.
type CatalogBrowser interface {
	Parents(ctx context.Context) ([]catalog.ServiceCard, error)
	Children(ctx context.Context, parentID int64) ([]catalog.ServiceCard, error)
	Service(ctx context.Context, id int64) (catalog.ServiceCard, error)
	Menus(ctx context.Context, serviceID int64) ([]catalog.MenuSection, error)
}

func ServiceParents(b CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := b.Parents(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cards)
	}
}

func ServiceChildren(b CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cards, err := b.Children(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cards)
	}
}

func ServiceDetail(b CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := b.Service(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

func ServiceMenus(b CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sections, err := b.Menus(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sections)
	}
}
