// Package timestamp parses, formats and normalizes the wire representation
// of client and server timestamps.
//
// Formats are strftime patterns (e.g. "%Y-%m-%dT%H:%M:%S%z"), which are
// translated to Go layouts with go-strftime.
package timestamp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultFormat is ISO 8601 with a numeric UTC offset,
// e.g. 2024-01-02T12:00:00+0000.
const DefaultFormat = "%Y-%m-%dT%H:%M:%S%z"

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// ParseError is returned when a raw value matches none of the accepted
// representations.
type ParseError struct {
	Value  string
	Format string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%q cannot be parsed with %s", e.Value, e.Format)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidTimestamp
}

// iso8601Layouts are tried after the configured format.
// Together they cover what clients usually send as "ISO 8601".
var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
}

// Layout translates a strftime pattern to a Go time layout.
func Layout(format string) (string, error) {
	layout, err := strftime.Layout(format)
	if err != nil {
		return "", fmt.Errorf("unsupported datetime format %q: %w", format, err)
	}
	return layout, nil
}

// formatSample is the instant CheckFormat normalizes.
var formatSample = time.Date(2001, time.February, 3, 4, 5, 6, 0, time.UTC)

// CheckFormat reports an error unless the format translates to a Go layout
// and Normalize only truncates with it. A format without a year, such as
// "%m-%d %H:%M", would normalize every instant into year 0.
func CheckFormat(format string) error {
	n, err := Normalize(formatSample, format)
	if err != nil {
		return err
	}
	if n.Year() != formatSample.Year() || n.After(formatSample) {
		return fmt.Errorf("datetime format %q does not keep the year of an instant", format)
	}
	return nil
}

// Parse parses raw into an instant.
// The configured format is tried first, then ISO 8601 variants and finally
// HTTP-date. Anything else fails with a *ParseError.
func Parse(raw, format string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &ParseError{Value: raw, Format: format}
	}
	if layout, err := Layout(format); err == nil {
		if t, err := parseLayout(raw, layout, time.UTC); err == nil {
			return t, nil
		}
	}
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	if t, err := HttpDate(raw); err == nil {
		return t, nil
	}
	return time.Time{}, &ParseError{Value: raw, Format: format}
}

// parseLayout parses with a layout, accepting "Z" where the layout has a
// numeric offset. Layouts without a zone are parsed in loc.
func parseLayout(raw, layout string, loc *time.Location) (time.Time, error) {
	layout = strings.Replace(layout, "-07:00", "Z07:00", 1)
	layout = strings.Replace(layout, "-0700", "Z0700", 1)
	return time.ParseInLocation(layout, raw, loc)
}

// Format renders t with the strftime pattern.
// If useZ is set and the offset of t is exactly UTC, the numeric zero offset
// is rendered as "Z".
func Format(t time.Time, format string, useZ bool) string {
	s := strftime.Format(format, t)
	if !useZ {
		return s
	}
	if _, offset := t.Zone(); offset != 0 {
		return s
	}
	for _, zero := range []string{"+00:00", "+0000"} {
		if i := strings.LastIndex(s, zero); i >= 0 {
			return s[:i] + "Z" + s[i+len(zero):]
		}
	}
	return s
}

// Normalize drops the precision of t that the format cannot represent,
// by rendering t with the format and parsing it back.
// A format without seconds yields an instant truncated to the minute.
func Normalize(t time.Time, format string) (time.Time, error) {
	layout, err := Layout(format)
	if err != nil {
		return time.Time{}, err
	}
	s := strftime.Format(format, t)
	n, err := parseLayout(s, layout, t.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("normalize %s with %s: %w", t, format, err)
	}
	return n, nil
}
