package timecheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ericselin/timecheck/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type MiddlewareOptions struct {
	// Overrides applied on top of the process-wide default for every request.
	Overrides Overrides
	// Per-route overrides, applied after Overrides.
	Rules Rules
	// Optional decision metrics.
	Metrics *metrics.Metrics
}

// Middleware attaches a Checker to every request.
// Handlers get it with FromRequest once they have located the resource.
type Middleware struct {
	overrides Overrides
	rules     Rules
	metrics   *metrics.Metrics
}

func NewMiddleware(opts MiddlewareOptions) *Middleware {
	return &Middleware{
		overrides: opts.Overrides,
		rules:     opts.Rules,
		metrics:   opts.Metrics,
	}
}

type contextKey struct{}

// Handler wraps next. The configuration is snapshotted here, so a request
// never observes a default swapped while it is being handled.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o := m.overrides.Merge(m.rules.Overrides(r))
		c := &Checker{
			cfg:     Resolve(o),
			log:     *getLogger(r),
			metrics: m.metrics,
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKey{}, c))
		// the body is rewound on the request the handler reads
		c.req = NewHTTPRequest(r)
		next.ServeHTTP(w, r)
	})
}

// Checker runs timestamp checks for one HTTP request.
// It is not safe for concurrent use.
type Checker struct {
	req     *HTTPRequest
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// FromRequest returns the Checker attached by the middleware.
// Without the middleware, a Checker using the current default is created.
func FromRequest(r *http.Request) *Checker {
	if c, ok := r.Context().Value(contextKey{}).(*Checker); ok {
		return c
	}
	return &Checker{
		req: NewHTTPRequest(r),
		cfg: Current(),
		log: *getLogger(r),
	}
}

// Config returns the configuration of the request, before per-call overrides.
func (c *Checker) Config() Config {
	return c.cfg
}

// Request returns the request view the checks read from.
func (c *Checker) Request() *HTTPRequest {
	return c.req
}

// Op creates the Op for the resource.
func (c *Checker) Op(res ResourceSnapshot, o Overrides) (*Op, error) {
	op, err := newOp(c.req, res, c.cfg.Merge(o), c.log)
	if err != nil {
		c.observeError(err)
		return nil, err
	}
	return op, nil
}

// Check runs the check matching the request method.
// It returns nil to proceed, a *SkipSignal to skip, or the construction error.
func (c *Checker) Check(res ResourceSnapshot, o Overrides) error {
	return c.run(res, o, (*Op).Check)
}

// CheckRead runs the read check regardless of the request method.
func (c *Checker) CheckRead(res ResourceSnapshot, o Overrides) error {
	return c.run(res, o, (*Op).CheckRead)
}

// CheckWrite runs the write check regardless of the request method.
func (c *Checker) CheckWrite(res ResourceSnapshot, o Overrides) error {
	return c.run(res, o, (*Op).CheckWrite)
}

func (c *Checker) run(res ResourceSnapshot, o Overrides, check func(*Op) Decision) error {
	op, err := c.Op(res, o)
	if err != nil {
		return err
	}
	return c.decide(op, check)
}

// Decide runs the check matching the request method on an Op created with
// c.Op. Use it when the handler needs the instants of the Op afterwards.
func (c *Checker) Decide(op *Op) error {
	return c.decide(op, (*Op).Check)
}

func (c *Checker) decide(op *Op, check func(*Op) Decision) error {
	d := check(op)
	c.metrics.Decision(op.verb.String(), d.Outcome.String())
	c.log.Debug().
		Str("verb", op.verb.String()).
		Str("outcome", d.Outcome.String()).
		Msg("Timestamp check")
	return d.Err()
}

func (c *Checker) observeError(err error) {
	switch {
	case errors.Is(err, ErrInvalidServerTimestamp):
		c.metrics.Error("invalid_server")
		c.log.Error().Err(err).Msg("Resource has no valid timestamp")
	case errors.Is(err, ErrInvalidClientTimestamp):
		c.metrics.Error("invalid_client")
		c.log.Debug().Err(err).Msg("Client sent an invalid timestamp")
	default:
		c.metrics.Error("config")
		c.log.Error().Err(err).Msg("Invalid timestamp check configuration")
	}
}

// WriteError writes the response for an error returned by a check:
// the status code of the error and a JSON body with its message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	detail := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, ErrInvalidServerTimestamp) {
		detail = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// getLogger returns the logger from the request context.
// If no logger is found, it will return the default logger.
func getLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	return logger
}
