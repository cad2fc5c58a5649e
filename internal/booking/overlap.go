package booking

import "time"

// Two rental ranges conflict when neither starts after the other ends.
// Bounds are inclusive: an order returning on day 10 blocks a new order
// delivering on day 10, and a zero-day rental (delivery == return) still
// holds the product for that day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
