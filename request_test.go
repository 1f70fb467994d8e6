package timecheck

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbFromMethod(t *testing.T) {
	cases := map[string]Verb{
		"GET":     VerbRead,
		"HEAD":    VerbRead,
		"POST":    VerbWrite,
		"PUT":     VerbWrite,
		"PATCH":   VerbWrite,
		"DELETE":  VerbUnknown,
		"OPTIONS": VerbUnknown,
	}
	for method, verb := range cases {
		assert.Equal(t, verb, VerbFromMethod(method), method)
	}
}

func TestHTTPRequestHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("lastUpdated", "2024-01-01T12:00:00Z")
	req := NewHTTPRequest(r)

	v, ok := req.Header("Lastupdated")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01T12:00:00Z", v)

	_, ok = req.Header("X-Missing")
	assert.False(t, ok)
	assert.Equal(t, VerbRead, req.Verb())
}

func TestHTTPRequestJSONBody(t *testing.T) {
	body := `{"lastUpdated": "2024-01-01T12:00:00Z", "count": 3, "gone": null}`
	r := httptest.NewRequest("PUT", "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	req := NewHTTPRequest(r)

	v, ok := req.BodyField("lastUpdated")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01T12:00:00Z", v)

	v, ok = req.BodyField("count")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = req.BodyField("gone")
	assert.False(t, ok)
	require.NoError(t, req.BodyErr())

	// the handler still sees the whole body
	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestHTTPRequestFormBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("lastUpdated=2024-01-01T12%3A00%3A00Z&title=hi"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req := NewHTTPRequest(r)

	v, ok := req.BodyField("lastUpdated")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01T12:00:00Z", v)
}

func TestHTTPRequestMultipartBody(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("lastUpdated", "2024-01-01T12:00:00Z"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest("POST", "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	req := NewHTTPRequest(r)

	v, ok := req.BodyField("lastUpdated")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01T12:00:00Z", v)
}

func TestHTTPRequestInvalidBody(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", strings.NewReader("[1, 2]"))
	req := NewHTTPRequest(r)

	_, ok := req.BodyField("lastUpdated")
	assert.False(t, ok)
	assert.Error(t, req.BodyErr())
}

func TestHTTPRequestNoBody(t *testing.T) {
	r, _ := http.NewRequest("GET", "/", nil)
	req := NewHTTPRequest(r)

	_, ok := req.BodyField("lastUpdated")
	assert.False(t, ok)
	assert.NoError(t, req.BodyErr())
}

func TestNewOpFromHTTPRequest(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", strings.NewReader(`{"lastUpdated": "2024-01-02T12:00:00Z"}`))
	op := mustOp(t, NewHTTPRequest(r), post(now), Overrides{})
	requireProceed(t, op.Check())

	r = httptest.NewRequest("PUT", "/", strings.NewReader(`{"lastUpdated": 1704196800}`))
	_, err := NewOp(NewHTTPRequest(r), post(now), Overrides{})
	assert.ErrorIs(t, err, ErrInvalidClientTimestamp)
}
