package timecheck

import "time"

// ServerInstant reads the named attribute of the resource.
// A missing, nil, zero or non-time attribute is an *InvalidServerTimestampError.
func ServerInstant(res ResourceSnapshot, field string) (time.Time, error) {
	if res == nil {
		return time.Time{}, &InvalidServerTimestampError{Field: field}
	}
	v, ok := res.Attribute(field)
	if !ok {
		return time.Time{}, &InvalidServerTimestampError{Field: field}
	}
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv != nil {
			t = *tv
		}
	default:
		return time.Time{}, &InvalidServerTimestampError{Field: field, Value: v}
	}
	if t.IsZero() {
		return time.Time{}, &InvalidServerTimestampError{Field: field, Value: v}
	}
	return t, nil
}

const (
	SourceHeader = "header"
	SourceBody   = "body"
)

// ClientRaw finds the raw client timestamp. The header always wins over the
// body. Empty values count as absent.
func ClientRaw(req RequestContext, headerField, bodyField string) (raw, source string, ok bool) {
	if req == nil {
		return "", "", false
	}
	if v, ok := req.Header(headerField); ok && v != "" {
		return v, SourceHeader, true
	}
	if v, ok := req.BodyField(bodyField); ok && v != "" {
		return v, SourceBody, true
	}
	return "", "", false
}
