package booking

import (
	"strings"

	"saubio/models"
)

// ParseFilterOptions normalizes raw query values. An empty status means "all".
func ParseFilterOptions(status, city string) models.BookingFilterOptions {
	status = strings.TrimSpace(status)
	if status == "" {
		status = models.StatusAll
	}
	return models.BookingFilterOptions{Status: status, City: city}
}

// FilterBookings keeps the bookings matching both the status and the city
// predicate, in their original order. Unknown statuses simply match nothing.
func FilterBookings(bookings []models.BookingRequest, opts models.BookingFilterOptions) []models.BookingRequest {
	city := strings.ToLower(strings.TrimSpace(opts.City))
	anyStatus := opts.Status == models.StatusAll

	out := make([]models.BookingRequest, 0, len(bookings))
	for _, b := range bookings {
		if !anyStatus && !strings.EqualFold(string(b.Status), opts.Status) {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(b.Address.City), city) {
			continue
		}
		out = append(out, b)
	}
	return out
}
