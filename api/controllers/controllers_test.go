package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/citycare/storefront/internal/catalog"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubStatic struct{}

func (stubStatic) Parents() []citycare.Service { return []citycare.Service{{ID: 1, Name: "Cleaning"}} }

func (stubStatic) ByParent(string) []citycare.Service { return []citycare.Service{} }

func (stubStatic) Service(rawID string) (citycare.Service, bool) {
	if rawID == "11" {
		return citycare.Service{ID: 11, Name: "Home Deep Cleaning"}, true
	}
	return citycare.Service{}, false
}

func (stubStatic) Menus(string) []citycare.MenuGroup { return []citycare.MenuGroup{} }

type stubBrowser struct {
	err error
}

func (s stubBrowser) Parents(context.Context) ([]catalog.ServiceCard, error) {
	return nil, s.err
}

func (s stubBrowser) Children(context.Context, int64) ([]catalog.ServiceCard, error) {
	return []catalog.ServiceCard{}, s.err
}

func (s stubBrowser) Service(context.Context, int64) (catalog.ServiceCard, error) {
	return catalog.ServiceCard{}, s.err
}

func (s stubBrowser) Menus(context.Context, int64) ([]catalog.MenuSection, error) {
	return []catalog.MenuSection{}, s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestHealthReadyReportsStoreFailure(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, logger.Nop(), stubPinger{err: errors.New("redis down")})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), stubPinger{}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-CityCare-Env") != "test" {
		t.Fatalf("expected env header")
	}
}

func TestStaticServiceFallsBackToNotFoundEnvelope(t *testing.T) {
	handler := StaticService(stubStatic{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/catalog/service/11", nil), "id", "11")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	var found staticEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &found); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusOK || !found.Success {
		t.Fatalf("expected service to be found, got %d %+v", resp.Code, found)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/catalog/service/77", nil), "id", "77")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	var missing staticEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &missing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if missing.Success || missing.Message != "Service not found" {
		t.Fatalf("unexpected body %+v", missing)
	}
}

func TestServiceDetailMapsNotFound(t *testing.T) {
	handler := ServiceDetail(stubBrowser{err: pkgerrors.New(pkgerrors.CodeNotFound, "Service not found")}, logger.Nop())
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/services/5", nil), "id", "5")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestServiceChildrenRejectsBadID(t *testing.T) {
	handler := ServiceChildren(stubBrowser{}, logger.Nop())
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/services/abc/children", nil), "id", "abc")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestServiceParentsPropagatesDependencyFailure(t *testing.T) {
	handler := ServiceParents(stubBrowser{err: pkgerrors.New(pkgerrors.CodeDependency, "timeout")}, logger.Nop())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/services/parents", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestDeviceHandlersNeedDeviceContext(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"session":  SessionGet(logger.Nop()),
		"cart":     CartGet(logger.Nop()),
		"checkout": CheckoutGet(logger.Nop()),
		"wallet":   WalletGet(logger.Nop()),
	}
	for name, h := range handlers {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500 got %d", name, resp.Code)
		}
	}
}
