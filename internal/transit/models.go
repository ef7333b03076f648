package transit

// Stop is a transit stop near a point, closest-first from the provider.
type Stop struct {
	GlobalStopID   string  `json:"global_stop_id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	DistanceMeters float64 `json:"distance_m"`
	RouteType      int     `json:"route_type"`
}

// Leg is one mode-homogeneous segment of a trip option. Type tags the
// variant: "walk" legs carry distance, "transit" legs carry route identity
// and live departure status.
type Leg struct {
	Type           string           `json:"type"`
	DistanceMeters int              `json:"distance_m,omitempty"`
	DurationMin    int              `json:"duration_min"`
	ModeName       string           `json:"mode_name,omitempty"`
	RouteShortName string           `json:"route_short_name,omitempty"`
	RouteLongName  string           `json:"route_long_name,omitempty"`
	Departure      *DepartureStatus `json:"departure_status,omitempty"`
}

// DepartureStatus compares scheduled vs real-time departure.
// Status is one of "on_time", "delayed", "cancelled", "live".
type DepartureStatus struct {
	Status   string `json:"status"`
	DelayMin int    `json:"delay_min,omitempty"`
}

// Option is one itinerary for a planned trip.
type Option struct {
	DurationMin int   `json:"duration_min"`
	StartTime   int64 `json:"start_time"`
	EndTime     int64 `json:"end_time"`
	Legs        []Leg `json:"legs"`
}

// Alert is a delay or cancellation notice for a route.
type Alert struct {
	Type         string `json:"type"`
	Route        string `json:"route"`
	DelayMinutes int    `json:"delay_minutes,omitempty"`
	Message      string `json:"message"`
}

// Trip is the normalized result of planning from a stop to a destination.
// RouteIDs collects the transit routes involved so the caller can fetch
// service alerts for them.
type Trip struct {
	OriginStop Stop                `json:"origin_stop"`
	Options    []Option            `json:"options"`
	RouteIDs   map[string]struct{} `json:"-"`
}
