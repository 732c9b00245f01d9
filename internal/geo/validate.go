package geo

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// minAddressLength is the shortest string worth sending to the geocoder.
const minAddressLength = 8

// vaguePhrases is the denylist of placeholder locations the extraction model
// sometimes copies verbatim from customer messages ("pick it up from my
// shop"). Geocoding these would silently resolve to a wrong place, so they
// force a clarification instead. One reviewable table, matched on word
// boundaries, case-insensitive.
var vaguePhrases = []string{
	"my shop",
	"the shop",
	"my place",
	"my house",
	"home",
	"garage",
	"the office",
	"work",
	"here",
	"pickup",
	"dropoff",
}

var (
	vaguePattern = regexp.MustCompile(`(?i)\b(` + strings.Join(vaguePhrases, "|") + `)\b`)

	// cityStatePattern matches a bare "City, State" with no street-level
	// detail, e.g. "Irvine, CA" or "Santa Ana, California".
	cityStatePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*,\s*[A-Za-z][A-Za-z ]*$`)
)

// Validation is the outcome of judging a location string.
type Validation struct {
	Valid    bool
	Resolved string // provider's formatted address (or the input for raw coordinates)
	Coord    *models.Coordinate
	Reason   string // why validation failed, for logging only
}

// Validator judges whether a free-text location is specific enough to
// geocode, and resolves it when it is.
type Validator struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewValidator creates an address validator backed by the given geocoder.
func NewValidator(g Geocoder, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{geocoder: g, logger: logger}
}

// Validate judges an address. Never returns an error: heuristic rejects and
// provider failures both come back as invalid, and the caller decides to
// re-prompt the user.
func (v *Validator) Validate(ctx context.Context, address string) Validation {
	trimmed := strings.TrimSpace(address)

	// Literal coordinates short-circuit geocoding entirely.
	if coord, ok := DetectCoordinate(trimmed); ok {
		c := coord
		return Validation{Valid: true, Resolved: trimmed, Coord: &c}
	}

	if reason := heuristicReject(trimmed); reason != "" {
		v.logger.Debug("address rejected by heuristic", "address", trimmed, "reason", reason)
		return Validation{Reason: reason}
	}

	results, err := v.geocoder.Geocode(ctx, trimmed)
	if err != nil {
		v.logger.Warn("geocode failed", "address", trimmed, "error", err)
		return Validation{Reason: "geocoder error"}
	}
	if len(results) == 0 {
		return Validation{Reason: "no geocoder results"}
	}

	loc := results[0].Location
	return Validation{
		Valid:    true,
		Resolved: results[0].FormattedAddress,
		Coord:    &loc,
	}
}

// heuristicReject returns a non-empty reason when the address is too vague to
// geocode. Checked before any provider call.
func heuristicReject(address string) string {
	if len(address) < minAddressLength {
		return "too short"
	}
	if vaguePattern.MatchString(address) {
		return "vague phrase"
	}
	if cityStatePattern.MatchString(address) {
		return "city/state only"
	}
	if !strings.ContainsAny(address, "0123456789") {
		return "no street number"
	}
	return ""
}
