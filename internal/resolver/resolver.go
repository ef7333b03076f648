package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/maps"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
)

// ErrDestinationNotFound means both search radii were exhausted without a
// candidate place.
var ErrDestinationNotFound = errors.New("resolver: destination not found")

const (
	initialRadiusMeters  = 5000
	expandedRadiusMeters = 10000
)

// Resolution is the outcome of resolving a raw destination phrase.
type Resolution struct {
	// Destination is the concrete string to hand to the directions provider.
	Destination string
	// Location is set when the resolver already knows the destination
	// coordinate (generic queries resolved through nearby search).
	Location *geo.Coordinate
	// Generic reports whether a nearby search was used.
	Generic bool
}

// PlaceSearcher is the slice of the maps client the resolver needs.
type PlaceSearcher interface {
	NearbySearch(ctx context.Context, point geo.Coordinate, keyword string, radiusMeters int) ([]maps.Place, error)
}

// Resolver turns free-text destination phrases into concrete destinations.
type Resolver struct {
	places PlaceSearcher
}

func New(places PlaceSearcher) *Resolver {
	return &Resolver{places: places}
}

// Resolve normalizes raw, classifies it, and for generic queries runs a
// nearby search with one radius escalation. Specific destinations pass
// through unchanged.
func (r *Resolver) Resolve(ctx context.Context, raw string, origin geo.Coordinate) (Resolution, error) {
	cleaned := Normalize(raw)

	if !IsGenericPlace(cleaned) {
		return Resolution{Destination: cleaned}, nil
	}

	place, err := r.findNearest(ctx, cleaned, origin)
	if err != nil {
		return Resolution{}, err
	}

	loc := place.Location
	return Resolution{
		Destination: fmt.Sprintf("%s, %s", place.Name, place.Address),
		Location:    &loc,
		Generic:     true,
	}, nil
}

func (r *Resolver) findNearest(ctx context.Context, keyword string, origin geo.Coordinate) (maps.Place, error) {
	for _, radius := range []int{initialRadiusMeters, expandedRadiusMeters} {
		places, err := r.places.NearbySearch(ctx, origin, keyword, radius)
		if err != nil {
			return maps.Place{}, err
		}
		if len(places) > 0 {
			return places[0], nil
		}
		log.Printf("resolver: no %q within %dm, widening search", keyword, radius)
	}
	return maps.Place{}, fmt.Errorf("%w: no %q near origin", ErrDestinationNotFound, keyword)
}

var fillerWords = []string{
	"nearest", "closest", "nearby", "near me", "close by",
	"the", "a", "an", "my", "some", "please", "find", "locate",
}

var fillerRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(fillerWords))
	for _, w := range fillerWords {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return res
}()

// Normalize strips trailing punctuation, lowercases, and removes filler words
// using whole-word matching so substrings inside other words survive.
func Normalize(destination string) string {
	cleaned := strings.TrimRight(strings.TrimSpace(destination), ".!?,;:")
	cleaned = strings.ToLower(cleaned)

	for _, re := range fillerRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return strings.ToLower(destination)
	}
	return cleaned
}

// genericTerms is the category/chain keyword table. A destination matching one
// of these, with no address token and no digit, is resolved through nearby
// search instead of being handed to the directions provider verbatim.
var genericTerms = []string{
	// restaurants & food
	"starbucks", "dunkin", "mcdonalds", "subway", "pizza", "restaurant", "cafe", "coffee",
	"burger king", "taco bell", "wendys", "chipotle", "panera", "chick-fil-a",

	// retail
	"cvs", "walgreens", "walmart", "target", "grocery store", "supermarket",
	"rite aid", "7-eleven", "wawa", "convenience store",

	// services
	"bank", "atm", "pharmacy", "post office", "ups store", "fedex",
	"gas station", "auto repair", "car wash",

	// public transportation
	"bus stop", "train station", "subway station", "metro station",
	"transit center", "bus station", "septa",

	// healthcare
	"hospital", "urgent care", "clinic", "doctor", "dentist",

	// recreation & lodging
	"gym", "library", "park", "playground", "museum", "movie theater", "cinema",
	"hotel", "motel", "bar", "pub", "nightclub",

	// religious & education
	"church", "mosque", "synagogue", "temple", "school", "university", "college",

	// other common places
	"mall", "shopping center", "parking garage", "parking lot", "rest area",
	"public restroom", "bathroom", "police station", "fire station",
}

var addressTokens = []string{
	"street", "st", "avenue", "ave", "road", "rd", "blvd", "drive", "dr",
}

// IsGenericPlace reports whether a normalized destination names a category or
// chain rather than a specific address or landmark.
func IsGenericPlace(destination string) bool {
	dest := strings.ToLower(strings.TrimSpace(destination))

	matched := false
	for _, term := range genericTerms {
		if term == dest || strings.Contains(dest, term) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, ch := range dest {
		if unicode.IsDigit(ch) {
			return false
		}
	}
	for _, token := range addressTokens {
		if containsWord(dest, token) {
			return false
		}
	}
	return true
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if strings.Trim(f, ".,") == word {
			return true
		}
	}
	return false
}
