// Package timezone resolves IANA zones for resources and the application.
//
// The application zone comes from APP_TIMEZONE and defaults to UTC. It is
// used for log timestamps and response metadata:
//
//	now := timezone.Now()
//	formatted := timezone.Format(booking.CreatedAt, constant.DateFormat)
//	loc := timezone.GetLocation()
//
// Each booking carries the zone it was made in. Refund windows and rendered
// times use that zone, not the application one:
//
//	if !timezone.Valid(req.Timezone) { ... }
//	loc, err := timezone.Load(booking.Timezone) // memoized; "" means the application zone
//	local := timezone.In(booking.StartAt, booking.Timezone)
//
// Services read the current time through a Clock so tests can pin it.
// SystemClock is the wall clock in the application zone.
package timezone
