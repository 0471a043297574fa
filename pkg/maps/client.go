package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

const (
	defaultBaseURL             = "https://nominatim.openstreetmap.org"
	defaultLanguage            = "en"
	defaultUserAgent           = "citycare-storefront"
	requestBodyReadLimit int64 = 1024
)

// Client wraps the OpenStreetMap Nominatim reverse-geocoding API used to
// prefill address forms from a device location.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Nominatim base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithUserAgent sets the identifying User-Agent Nominatim requires.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// NewClient builds the geocoding client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		language:   defaultLanguage,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return client
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Place is the address Nominatim reports for a coordinate.
type Place struct {
	DisplayName   string
	HouseNumber   string
	Road          string
	Neighbourhood string
	Suburb        string
	County        string
	City          string
	Postcode      string
	Location      LatLng
}

// Reverse resolves a coordinate to the nearest address.
func (c *Client) Reverse(ctx context.Context, at LatLng) (*Place, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocoding client not configured")
	}
	if at.Latitude < -90 || at.Latitude > 90 || at.Longitude < -180 || at.Longitude > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	query := url.Values{
		"format":         {"json"},
		"lat":            {strconv.FormatFloat(at.Latitude, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(at.Longitude, 'f', -1, 64)},
		"addressdetails": {"1"},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("reverse")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build reverse geocode request")
	}
	httpReq.Header.Set("Accept-Language", c.language)
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute reverse geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "reverse geocode request failed")
	}

	var apiResp struct {
		DisplayName string `json:"display_name"`
		Error       string `json:"error"`
		Address     struct {
			HouseNumber   string `json:"house_number"`
			Road          string `json:"road"`
			Neighbourhood string `json:"neighbourhood"`
			Suburb        string `json:"suburb"`
			County        string `json:"county"`
			City          string `json:"city"`
			Town          string `json:"town"`
			Village       string `json:"village"`
			StateDistrict string `json:"state_district"`
			Postcode      string `json:"postcode"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedResponse, err, "decode reverse geocode response")
	}
	if apiResp.Error != "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, apiResp.Error)
	}

	addr := apiResp.Address
	return &Place{
		DisplayName:   apiResp.DisplayName,
		HouseNumber:   addr.HouseNumber,
		Road:          addr.Road,
		Neighbourhood: addr.Neighbourhood,
		Suburb:        addr.Suburb,
		County:        addr.County,
		City:          firstNonEmpty(addr.City, addr.Town, addr.Village, addr.StateDistrict),
		Postcode:      addr.Postcode,
		Location:      at,
	}, nil
}

// Street is the first address line: "house, road", falling back to the
// neighbourhood or suburb when no road is known.
func (p *Place) Street() string {
	road := firstNonEmpty(p.Road, p.Neighbourhood, p.Suburb)
	if p.HouseNumber != "" {
		return p.HouseNumber + ", " + road
	}
	return road
}

// Locality is the second address line.
func (p *Place) Locality() string {
	parts := make([]string, 0, 3)
	for _, v := range []string{p.Suburb, p.Neighbourhood, p.County} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
