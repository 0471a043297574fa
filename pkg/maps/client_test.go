package maps

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

func TestClientReverseRequest(t *testing.T) {
	respBody := `{"display_name":"12, MG Road, Indiranagar, Bengaluru","address":{"house_number":"12","road":"MG Road","suburb":"Indiranagar","county":"Bangalore East","town":"Bengaluru","postcode":"560038"}}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://geo.test"), WithHTTPClient(&http.Client{Transport: rt}), WithUserAgent("tests"))

	place, err := client.Reverse(context.Background(), LatLng{Latitude: 12.9716, Longitude: 77.5946})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://geo.test/reverse?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "lat=12.9716") || !strings.Contains(capturedURL, "lon=77.5946") || !strings.Contains(capturedURL, "addressdetails=1") {
		t.Fatalf("unexpected query %q", capturedURL)
	}
	if capturedHeaders.Get("Accept-Language") != "en" {
		t.Fatalf("language header missing")
	}
	if capturedHeaders.Get("User-Agent") != "tests" {
		t.Fatalf("user agent header missing")
	}
	if place.Street() != "12, MG Road" {
		t.Fatalf("unexpected street %q", place.Street())
	}
	if place.Locality() != "Indiranagar, Bangalore East" {
		t.Fatalf("unexpected locality %q", place.Locality())
	}
	if place.City != "Bengaluru" || place.Postcode != "560038" {
		t.Fatalf("unexpected place %+v", place)
	}
}

func TestClientReverseErrors(t *testing.T) {
	client := NewClient(WithBaseURL("http://geo.test"), WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"error":"Unable to geocode"}`)),
			Header:     http.Header{},
		}, nil
	})}))

	if _, err := client.Reverse(context.Background(), LatLng{Latitude: 0.1, Longitude: 0.1}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.Reverse(context.Background(), LatLng{Latitude: 91}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceStreetFallsBackToNeighbourhood(t *testing.T) {
	p := &Place{Neighbourhood: "Koramangala 5th Block"}
	if p.Street() != "Koramangala 5th Block" {
		t.Fatalf("unexpected street %q", p.Street())
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
