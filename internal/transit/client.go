package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
)

const DefaultBaseURL = "https://external.transitapp.com/v3"

const (
	stopSearchRadiusMeters  = 1500
	alertSearchRadiusMeters = 1000
	maxItineraries          = 3
	delayThresholdMin       = 2
)

var (
	// ErrNotConfigured means the API key is missing. Transit calls fail
	// closed rather than degrading to walking-only data.
	ErrNotConfigured = errors.New("transit: api key not configured")
	// ErrNoTransit means the provider returned no stops or itineraries.
	ErrNoTransit = errors.New("transit: no transit found")
	// ErrProvider wraps transport and provider-status failures.
	ErrProvider = errors.New("transit: provider error")
)

// Mode filters stops and itineraries by vehicle class.
const (
	ModeAll   = "all"
	ModeBus   = "bus"
	ModeTrain = "train"
)

// Client calls the Transit web API. BaseURL is injectable for tests.
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
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type rawStop struct {
	GlobalStopID string  `json:"global_stop_id"`
	StopName     string  `json:"stop_name"`
	StopLat      float64 `json:"stop_lat"`
	StopLon      float64 `json:"stop_lon"`
	Distance     float64 `json:"distance"`
	RouteType    int     `json:"route_type"`
}

// NearestStop returns the closest stop to point within 1.5 km, optionally
// filtered by vehicle class. The filter is a preference: when it matches
// nothing the unfiltered closest stop is kept.
func (c *Client) NearestStop(ctx context.Context, point geo.Coordinate, mode string) (Stop, error) {
	if !c.Configured() {
		return Stop{}, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(point.Lng, 'f', -1, 64))
	params.Set("max_distance", strconv.Itoa(stopSearchRadiusMeters))

	var out struct {
		Stops []rawStop `json:"stops"`
	}
	if err := c.getJSON(ctx, "/public/nearby_stops", params, &out); err != nil {
		return Stop{}, err
	}

	stops := filterStopsByMode(out.Stops, mode)
	if len(stops) == 0 {
		return Stop{}, ErrNoTransit
	}

	s := stops[0]
	return Stop{
		GlobalStopID:   s.GlobalStopID,
		Name:           s.StopName,
		Lat:            s.StopLat,
		Lng:            s.StopLon,
		DistanceMeters: s.Distance,
		RouteType:      s.RouteType,
	}, nil
}

func filterStopsByMode(stops []rawStop, mode string) []rawStop {
	var keep func(routeType int) bool
	switch mode {
	case ModeBus:
		keep = func(rt int) bool { return rt == 3 }
	case ModeTrain:
		keep = func(rt int) bool { return rt == 0 || rt == 1 || rt == 2 }
	default:
		return stops
	}

	var filtered []rawStop
	for _, s := range stops {
		if keep(s.RouteType) {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return stops
	}
	return filtered
}

type rawDeparture struct {
	DepartureTime          int64 `json:"departure_time"`
	ScheduledDepartureTime int64 `json:"scheduled_departure_time"`
	IsRealTime             bool  `json:"is_real_time"`
	IsCancelled            bool  `json:"is_cancelled"`
}

type rawRoute struct {
	GlobalRouteID  string `json:"global_route_id"`
	ModeName       string `json:"mode_name"`
	RouteShortName string `json:"route_short_name"`
	RouteLongName  string `json:"route_long_name"`
}

type rawLeg struct {
	LegMode    string         `json:"leg_mode"`
	Distance   float64        `json:"distance"`
	Duration   int            `json:"duration"`
	Routes     []rawRoute     `json:"routes"`
	Departures []rawDeparture `json:"departures"`
}

type rawItinerary struct {
	Duration  int      `json:"duration"`
	StartTime int64    `json:"start_time"`
	EndTime   int64    `json:"end_time"`
	Legs      []rawLeg `json:"legs"`
}

// PlanTrip requests up to three itineraries from a stop to a point and
// normalizes the legs, collecting the route ids involved so the caller can
// fetch service alerts for them.
func (c *Client) PlanTrip(ctx context.Context, from Stop, to geo.Coordinate, mode string) (Trip, error) {
	if !c.Configured() {
		return Trip{}, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("from_lat", strconv.FormatFloat(from.Lat, 'f', -1, 64))
	params.Set("from_lon", strconv.FormatFloat(from.Lng, 'f', -1, 64))
	params.Set("to_lat", strconv.FormatFloat(to.Lat, 'f', -1, 64))
	params.Set("to_lon", strconv.FormatFloat(to.Lng, 'f', -1, 64))
	params.Set("mode", "transit")
	params.Set("num_result", strconv.Itoa(maxItineraries))
	params.Set("should_update_realtime", "true")

	switch mode {
	case ModeBus:
		params.Set("allowed_modes", "Bus")
	case ModeTrain:
		params.Set("allowed_modes", "Metro,Subway,Rail,Train,Light Rail,Commuter Rail,Tram")
	}

	var out struct {
		Results []rawItinerary `json:"results"`
	}
	if err := c.getJSON(ctx, "/public/plan", params, &out); err != nil {
		return Trip{}, err
	}
	if len(out.Results) == 0 {
		return Trip{}, ErrNoTransit
	}

	trip := Trip{OriginStop: from, RouteIDs: map[string]struct{}{}}
	for _, it := range out.Results {
		opt := Option{
			DurationMin: it.Duration / 60,
			StartTime:   it.StartTime,
			EndTime:     it.EndTime,
		}
		for _, leg := range it.Legs {
			opt.Legs = append(opt.Legs, normalizeLeg(leg))
			if leg.LegMode == "transit" && len(leg.Routes) > 0 && leg.Routes[0].GlobalRouteID != "" {
				trip.RouteIDs[leg.Routes[0].GlobalRouteID] = struct{}{}
			}
		}
		trip.Options = append(trip.Options, opt)
	}

	return trip, nil
}

func normalizeLeg(leg rawLeg) Leg {
	out := Leg{
		Type:        leg.LegMode,
		DurationMin: leg.Duration / 60,
	}

	switch leg.LegMode {
	case "walk":
		out.DistanceMeters = int(leg.Distance)
	case "transit":
		if len(leg.Routes) > 0 {
			r := leg.Routes[0]
			out.ModeName = r.ModeName
			if out.ModeName == "" {
				out.ModeName = "Transit"
			}
			out.RouteShortName = r.RouteShortName
			out.RouteLongName = r.RouteLongName
		}
		if len(leg.Departures) > 0 {
			out.Departure = departureStatus(leg.Departures[0])
		}
	}
	return out
}

func departureStatus(dep rawDeparture) *DepartureStatus {
	switch {
	case dep.IsCancelled:
		return &DepartureStatus{Status: "cancelled"}
	case dep.IsRealTime && dep.DepartureTime > 0 && dep.ScheduledDepartureTime > 0:
		delay := (dep.DepartureTime - dep.ScheduledDepartureTime) / 60
		if delay >= delayThresholdMin {
			return &DepartureStatus{Status: "delayed", DelayMin: int(delay)}
		}
		return &DepartureStatus{Status: "on_time"}
	case dep.IsRealTime:
		return &DepartureStatus{Status: "live"}
	}
	return nil
}

// ServiceAlerts fetches delay and cancellation notices for the given route id
// set near a point.
func (c *Client) ServiceAlerts(ctx context.Context, routeIDs map[string]struct{}, point geo.Coordinate) ([]Alert, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(routeIDs) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(point.Lng, 'f', -1, 64))
	params.Set("max_distance", strconv.Itoa(alertSearchRadiusMeters))

	var out struct {
		Routes []struct {
			GlobalRouteID  string `json:"global_route_id"`
			RouteShortName string `json:"route_short_name"`
			RouteLongName  string `json:"route_long_name"`
			Itineraries    []struct {
				ScheduleItems []struct {
					DepartureTime          int64 `json:"departure_time"`
					ScheduledDepartureTime int64 `json:"scheduled_departure_time"`
					IsRealTime             bool  `json:"is_real_time"`
					IsCancelled            bool  `json:"is_cancelled"`
				} `json:"schedule_items"`
			} `json:"itineraries"`
		} `json:"routes"`
	}
	if err := c.getJSON(ctx, "/public/nearby_routes", params, &out); err != nil {
		return nil, err
	}

	var alerts []Alert
	for _, route := range out.Routes {
		if _, ok := routeIDs[route.GlobalRouteID]; !ok {
			continue
		}
		for _, itin := range route.Itineraries {
			for _, item := range itin.ScheduleItems {
				if item.IsCancelled {
					alerts = append(alerts, Alert{
						Type:    "CANCELLED",
						Route:   route.RouteShortName,
						Message: fmt.Sprintf("Service cancelled for %s %s", route.RouteShortName, route.RouteLongName),
					})
					continue
				}
				if item.IsRealTime && item.DepartureTime > item.ScheduledDepartureTime && item.ScheduledDepartureTime > 0 {
					delay := (item.DepartureTime - item.ScheduledDepartureTime) / 60
					if delay >= delayThresholdMin {
						alerts = append(alerts, Alert{
							Type:         "DELAY",
							Route:        route.RouteShortName,
							DelayMinutes: int(delay),
							Message:      fmt.Sprintf("%s is running %d min late", route.RouteShortName, int(delay)),
						})
					}
				}
			}
		}
	}
	return alerts, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")

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
