package timecheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Verb is the semantic intent of a request.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbRead
	VerbWrite
)

func (v Verb) String() string {
	switch v {
	case VerbRead:
		return "read"
	case VerbWrite:
		return "write"
	default:
		return "unknown"
	}
}

// VerbFromMethod maps an HTTP method to a verb.
func VerbFromMethod(method string) Verb {
	switch method {
	case http.MethodGet, http.MethodHead:
		return VerbRead
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return VerbWrite
	default:
		return VerbUnknown
	}
}

// RequestContext is a read-only view over an inbound request.
type RequestContext interface {
	Verb() Verb
	// Header returns the named header and whether it is present.
	Header(name string) (string, bool)
	// BodyField returns the named top-level body field and whether it is present.
	BodyField(name string) (string, bool)
}

// maxBodyBytes limits how much of a request body is read to find a field.
const maxBodyBytes = 1 << 20

// HTTPRequest adapts an *http.Request to RequestContext.
// The body is read once, on the first BodyField call, and rewound so that
// the handler can still read it.
type HTTPRequest struct {
	r      *http.Request
	fields map[string]string
	err    error
	parsed bool
}

func NewHTTPRequest(r *http.Request) *HTTPRequest {
	return &HTTPRequest{r: r}
}

func (h *HTTPRequest) Verb() Verb {
	return VerbFromMethod(h.r.Method)
}

func (h *HTTPRequest) Header(name string) (string, bool) {
	values := h.r.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (h *HTTPRequest) BodyField(name string) (string, bool) {
	if !h.parsed {
		h.fields, h.err = readBodyFields(h.r)
		h.parsed = true
	}
	v, ok := h.fields[name]
	return v, ok
}

// BodyErr returns the error encountered while reading the body, if any.
// An unreadable body is treated as having no fields.
func (h *HTTPRequest) BodyErr() error {
	return h.err
}

// readBodyFields reads the top-level fields of a JSON object, url-encoded
// form or multipart form body.
// When it returns, the request body will be rewound to the beginning.
func readBodyFields(r *http.Request) (map[string]string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	if len(body) == 0 {
		return nil, nil
	}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		return formFields(body)
	case strings.HasPrefix(mediaType, "multipart/"):
		return multipartFields(body, params["boundary"])
	default:
		// JSON is the default, as for most API clients
		return jsonFields(body)
	}
}

func jsonFields(body []byte) (map[string]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}
	fields := make(map[string]string, len(obj))
	for k, raw := range obj {
		if string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			// non-string values are kept verbatim and fail parsing later
			s = string(raw)
		}
		fields[k] = s
	}
	return fields, nil
}

func formFields(body []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	return firstValues(values), nil
}

func firstValues(values map[string][]string) map[string]string {
	fields := make(map[string]string, len(values))
	for k, vv := range values {
		if len(vv) > 0 {
			fields[k] = vv[0]
		}
	}
	return fields
}

func multipartFields(body []byte, boundary string) (map[string]string, error) {
	if boundary == "" {
		return nil, fmt.Errorf("multipart body without boundary")
	}
	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxBodyBytes)
	if err != nil {
		return nil, err
	}
	defer form.RemoveAll()
	return firstValues(form.Value), nil
}
