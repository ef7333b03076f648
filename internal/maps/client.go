package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

var (
	// ErrNotConfigured means the API key is missing.
	ErrNotConfigured = errors.New("maps: api key not configured")
	// ErrNoRoute means the provider returned zero routes.
	ErrNoRoute = errors.New("maps: no route found")
	// ErrNoAddress means geocoding produced zero results.
	ErrNoAddress = errors.New("maps: address not found")
	// ErrProvider wraps transport and provider-status failures.
	ErrProvider = errors.New("maps: provider error")
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Client calls the Google Maps web API for directions, nearby search and
// geocoding. BaseURL is injectable so tests can point it at a local server.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Directions fetches a walking route and normalizes the first route's first
// leg into a Route. No automatic retry on failure.
func (c *Client) Directions(ctx context.Context, origin geo.Coordinate, destination string) (Route, error) {
	if !c.Configured() {
		return Route{}, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", destination)
	params.Set("mode", "walking")
	params.Set("alternatives", "false")
	params.Set("key", c.apiKey)

	var out struct {
		Status string `json:"status"`
		Routes []struct {
			Legs []struct {
				EndAddress string `json:"end_address"`
				Distance   struct {
					Text  string `json:"text"`
					Value int    `json:"value"`
				} `json:"distance"`
				Duration struct {
					Text  string `json:"text"`
					Value int    `json:"value"`
				} `json:"duration"`
				Steps []struct {
					HTMLInstructions string `json:"html_instructions"`
					Distance         struct {
						Text  string `json:"text"`
						Value int    `json:"value"`
					} `json:"distance"`
					Duration struct {
						Text  string `json:"text"`
						Value int    `json:"value"`
					} `json:"duration"`
					StartLocation geo.Coordinate `json:"start_location"`
					EndLocation   geo.Coordinate `json:"end_location"`
				} `json:"steps"`
			} `json:"legs"`
		} `json:"routes"`
	}

	if err := c.getJSON(ctx, "/directions/json", params, &out); err != nil {
		return Route{}, err
	}
	if len(out.Routes) == 0 || len(out.Routes[0].Legs) == 0 {
		return Route{}, ErrNoRoute
	}

	leg := out.Routes[0].Legs[0]
	route := Route{
		Destination:          leg.EndAddress,
		Origin:               origin,
		TotalDistance:        leg.Distance.Text,
		TotalDuration:        leg.Duration.Text,
		TotalDistanceMeters:  leg.Distance.Value,
		TotalDurationSeconds: leg.Duration.Value,
		Steps:                make([]Step, 0, len(leg.Steps)),
	}
	for _, s := range leg.Steps {
		route.Steps = append(route.Steps, Step{
			Instruction:     StripHTML(s.HTMLInstructions),
			Distance:        s.Distance.Text,
			Duration:        s.Duration.Text,
			DistanceMeters:  s.Distance.Value,
			DurationSeconds: s.Duration.Value,
			Start:           s.StartLocation,
			End:             s.EndLocation,
		})
	}
	return route, nil
}

// NearbySearch returns ranked candidate places matching keyword around point.
// When the nearby search is empty it falls back to a text search biased to the
// same point before reporting no candidates.
func (c *Client) NearbySearch(ctx context.Context, point geo.Coordinate, keyword string, radiusMeters int) ([]Place, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", point.Lat, point.Lng))
	params.Set("keyword", keyword)
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("key", c.apiKey)

	places, err := c.searchPlaces(ctx, "/place/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}
	if len(places) > 0 {
		return places, nil
	}

	textParams := url.Values{}
	textParams.Set("query", keyword+" near me")
	textParams.Set("location", fmt.Sprintf("%f,%f", point.Lat, point.Lng))
	textParams.Set("radius", fmt.Sprintf("%d", radiusMeters))
	textParams.Set("key", c.apiKey)

	return c.searchPlaces(ctx, "/place/textsearch/json", textParams)
}

func (c *Client) searchPlaces(ctx context.Context, path string, params url.Values) ([]Place, error) {
	var out struct {
		Results []struct {
			Name             string `json:"name"`
			Vicinity         string `json:"vicinity"`
			FormattedAddress string `json:"formatted_address"`
			PlaceID          string `json:"place_id"`
			Geometry         struct {
				Location geo.Coordinate `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, path, params, &out); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(out.Results))
	for _, r := range out.Results {
		address := r.Vicinity
		if address == "" {
			address = r.FormattedAddress
		}
		places = append(places, Place{
			Name:     r.Name,
			Address:  address,
			PlaceID:  r.PlaceID,
			Location: r.Geometry.Location,
		})
	}
	return places, nil
}

// Geocode resolves a free-text address to a coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	if !c.Configured() {
		return geo.Coordinate{}, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	var out struct {
		Results []struct {
			Geometry struct {
				Location geo.Coordinate `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/geocode/json", params, &out); err != nil {
		return geo.Coordinate{}, err
	}
	if len(out.Results) == 0 {
		return geo.Coordinate{}, fmt.Errorf("%w: %q", ErrNoAddress, address)
	}
	return out.Results[0].Geometry.Location, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	return nil
}

// StripHTML removes markup tags and common entity escapes from provider
// instruction text.
func StripHTML(s string) string {
	text := htmlTagRe.ReplaceAllString(s, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return strings.TrimSpace(text)
}
