package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
)

const directionsBody = `{
	"status": "OK",
	"routes": [{
		"legs": [{
			"end_address": "CVS, 1001 Market St, Philadelphia, PA",
			"distance": {"text": "0.5 mi", "value": 800},
			"duration": {"text": "10 mins", "value": 600},
			"steps": [
				{
					"html_instructions": "Head <b>north</b> on Broad St",
					"distance": {"text": "0.2 mi", "value": 300},
					"duration": {"text": "4 mins", "value": 240},
					"start_location": {"lat": 39.9812, "lng": -75.1556},
					"end_location": {"lat": 39.9832, "lng": -75.1556}
				},
				{
					"html_instructions": "Turn <b>right</b> onto Market&nbsp;St",
					"distance": {"text": "0.3 mi", "value": 500},
					"duration": {"text": "6 mins", "value": 360},
					"start_location": {"lat": 39.9832, "lng": -75.1556},
					"end_location": {"lat": 39.9832, "lng": -75.1500}
				}
			]
		}]
	}]
}`

func TestDirectionsNormalizesRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/directions/json" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("mode") != "walking" {
			t.Fatalf("expected walking mode")
		}
		_, _ = w.Write([]byte(directionsBody))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	route, err := c.Directions(context.Background(), geo.Coordinate{Lat: 39.9812, Lng: -75.1556}, "CVS")
	if err != nil {
		t.Fatalf("directions: %v", err)
	}
	if route.Destination != "CVS, 1001 Market St, Philadelphia, PA" {
		t.Fatalf("unexpected destination: %q", route.Destination)
	}
	if len(route.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(route.Steps))
	}
	if route.Steps[0].Instruction != "Head north on Broad St" {
		t.Fatalf("expected stripped instruction, got %q", route.Steps[0].Instruction)
	}
	if route.Steps[1].Instruction != "Turn right onto Market St" {
		t.Fatalf("expected entity-unescaped instruction, got %q", route.Steps[1].Instruction)
	}
	if route.TotalDistanceMeters != 800 || route.TotalDurationSeconds != 600 {
		t.Fatalf("unexpected totals: %+v", route)
	}
}

func TestDirectionsNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	_, err := c.Directions(context.Background(), geo.Coordinate{}, "nowhere")
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}

func TestDirectionsNotConfigured(t *testing.T) {
	c := NewClient("", "")
	_, err := c.Directions(context.Background(), geo.Coordinate{}, "CVS")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDirectionsProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	_, err := c.Directions(context.Background(), geo.Coordinate{}, "CVS")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestNearbySearchFallsBackToTextSearch(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/place/nearbysearch/json":
			_, _ = w.Write([]byte(`{"results":[]}`))
		case "/place/textsearch/json":
			_, _ = w.Write([]byte(`{"results":[{"name":"Starbucks","formatted_address":"1 Main St","place_id":"p1","geometry":{"location":{"lat":1,"lng":2}}}]}`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	places, err := c.NearbySearch(context.Background(), geo.Coordinate{}, "starbucks", 5000)
	if err != nil {
		t.Fatalf("nearby search: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected nearby then text search, got %v", paths)
	}
	if len(places) != 1 || places[0].Name != "Starbucks" || places[0].Address != "1 Main St" {
		t.Fatalf("unexpected places: %+v", places)
	}
}

func TestNearbySearchPrefersVicinity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"name":"CVS","vicinity":"1001 Market St","place_id":"p2","geometry":{"location":{"lat":39.95,"lng":-75.16}}}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	places, err := c.NearbySearch(context.Background(), geo.Coordinate{}, "cvs", 5000)
	if err != nil || len(places) != 1 {
		t.Fatalf("nearby search: %v", err)
	}
	if places[0].Address != "1001 Market St" {
		t.Fatalf("expected vicinity address, got %q", places[0].Address)
	}
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocode/json" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[{"geometry":{"location":{"lat":39.9812,"lng":-75.1556}}}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	coord, err := c.Geocode(context.Background(), "123 Main St")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if coord.Lat != 39.9812 || coord.Lng != -75.1556 {
		t.Fatalf("unexpected coordinate: %+v", coord)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	_, err := c.Geocode(context.Background(), "nowhere at all")
	if !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
	if errors.Is(err, ErrNoRoute) {
		t.Fatalf("geocode failure must not look like a missing route")
	}
}

func TestStripHTML(t *testing.T) {
	in := `Turn <b>left</b> onto N&nbsp;Broad St &amp; continue`
	want := "Turn left onto N Broad St & continue"
	if got := StripHTML(in); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
