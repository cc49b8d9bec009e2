package timezone

import (
	"fmt"
	"slotkeeper/config"
	"slotkeeper/shared/constant"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location
	locations   sync.Map
)

func init() {
	cfg := config.Get()

	if cfg.App.Timezone == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		cfg.App.Timezone = constant.DefaultZone
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", cfg.App.Timezone).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Jakarta', 'UTC', 'America/New_York'")
		appLocation = time.UTC
		return
	}

	appLocation = loc
	log.Info().
		Str("timezone", cfg.App.Timezone).
		Str("location", loc.String()).
		Msg("Application timezone initialized")
}

// Now returns the current time in the application timezone
func Now() time.Time {
	if appLocation == nil {
		return time.Now().UTC()
	}
	return time.Now().In(appLocation)
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	if appLocation == nil {
		return t.UTC()
	}
	return t.In(appLocation)
}

// GetLocation returns the current application timezone location
func GetLocation() *time.Location {
	if appLocation == nil {
		return time.UTC
	}
	return appLocation
}

// Load resolves an IANA zone name, memoizing successful lookups.
// An empty name resolves to the application timezone.
func Load(name string) (*time.Location, error) {
	if name == "" {
		return GetLocation(), nil
	}

	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil //nolint:forcetypeassert
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}

	locations.Store(name, loc)

	return loc, nil
}

// Valid reports whether name is a loadable IANA zone.
func Valid(name string) bool {
	_, err := Load(name)

	return err == nil
}

// In converts t to the named zone, falling back to the application timezone.
func In(t time.Time, name string) time.Time {
	loc, err := Load(name)
	if err != nil {
		log.Warn().Err(err).Str("timezone", name).Msg("Falling back to application timezone")

		return ToAppTime(t)
	}

	return t.In(loc)
}

// Format formats a time in the application timezone
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

// SystemClock reads the wall clock in the application timezone.
func SystemClock() Clock {
	return Now
}
