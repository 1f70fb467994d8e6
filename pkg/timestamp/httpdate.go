package timestamp

import (
	"fmt"
	"strings"
	"time"
)

// HTTP-date layouts from RFC 9110 section 5.6.7, in order of preference.
// Values are upper-cased before parsing, hence the upper-case zone.
const (
	imfFixdateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
	rfc850Layout     = "Monday, 02-Jan-06 15:04:05 GMT"
	asctimeLayout    = time.ANSIC
)

// HttpDate parses any of the three HTTP-date forms, so clients can send
// the value they would put in If-Modified-Since. The result is in UTC.
func HttpDate(value string) (time.Time, error) {
	return httpDateAt(value, time.Now())
}

func httpDateAt(value string, now time.Time) (time.Time, error) {
	// recipients are lenient about case, as caches are
	s := strings.ToUpper(strings.TrimSpace(value))

	if t, err := time.Parse(imfFixdateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(rfc850Layout, s); err == nil {
		return withRFC850Year(t.UTC(), now), nil
	}
	if t, err := time.Parse(asctimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q is not an HTTP-date", value)
}

// withRFC850Year resolves a two-digit year: a year that would be more than
// 50 years after now is the most recent past year with those digits.
func withRFC850Year(t, now time.Time) time.Time {
	year := now.Year() - now.Year()%100 + t.Year()%100
	if year > now.Year()+50 {
		year -= 100
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
