package timeutil

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). The shop operates in
// IST; rental dates, invoices and dashboard months are all interpreted there.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60) // UTC+5:30
	}
}

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts any time to IST
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// ParseDate parses a YYYY-MM-DD rental date in IST.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, IST)
}

// StartOfMonth returns the first instant of the given time's month in IST.
func StartOfMonth(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), 1, 0, 0, 0, 0, IST)
}

// Common layouts
const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "02-01-2006"
)
