// Package timecheck decides whether a request carrying a client "last seen"
// timestamp needs to be processed against a resource with a server "last
// modified" timestamp.
//
// A read is skipped when the client is already up to date; a write is
// skipped when the client submits data that is not newer than the server's.
//
//	op, err := timecheck.NewOp(timecheck.NewHTTPRequest(r), post, timecheck.Overrides{})
//	if err != nil {
//		timecheck.WriteError(w, err)
//		return
//	}
//	if err := op.CheckRead().Err(); err != nil {
//		timecheck.WriteError(w, err)
//		return
//	}
package timecheck

import (
	"time"

	"github.com/ericselin/timecheck/pkg/timestamp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Op holds the instants of one request/resource pair.
// Create one per request with NewOp, use it for one check and discard it.
type Op struct {
	cfg       Config
	verb      Verb
	server    time.Time
	client    time.Time
	hasClient bool
	log       zerolog.Logger
}

// NewOp resolves the configuration and the server and client instants.
// It always fails if the server instant is missing or invalid. A missing
// client instant is not an error; an unparsable one is.
func NewOp(req RequestContext, res ResourceSnapshot, o Overrides) (*Op, error) {
	return newOp(req, res, Resolve(o), log.Logger)
}

func newOp(req RequestContext, res ResourceSnapshot, cfg Config, logger zerolog.Logger) (*Op, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	op := &Op{cfg: cfg, log: logger}
	if req != nil {
		op.verb = req.Verb()
	}

	server, err := ServerInstant(res, cfg.InstanceField)
	if err != nil {
		return nil, err
	}
	if err := op.setServer(server); err != nil {
		return nil, err
	}

	raw, source, ok := ClientRaw(req, cfg.HeaderField, cfg.BodyField)
	if !ok {
		return op, nil
	}
	field := cfg.HeaderField
	if source == SourceBody {
		field = cfg.BodyField
	}
	client, err := timestamp.Parse(raw, cfg.DatetimeFormat)
	if err != nil {
		return nil, &InvalidClientTimestampError{
			Field:  field,
			Source: source,
			Raw:    raw,
			Format: cfg.DatetimeFormat,
			Err:    err,
		}
	}
	op.client, op.hasClient = client, true
	return op, nil
}

// NewOpFromInstants creates an Op from instants the caller already has.
// A nil client means the client did not send a timestamp.
func NewOpFromInstants(verb Verb, server time.Time, client *time.Time, o Overrides) (*Op, error) {
	cfg := Resolve(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if server.IsZero() {
		return nil, &InvalidServerTimestampError{Field: cfg.InstanceField, Value: server}
	}
	op := &Op{cfg: cfg, verb: verb, log: log.Logger}
	if err := op.setServer(server); err != nil {
		return nil, err
	}
	if client != nil && !client.IsZero() {
		op.client, op.hasClient = *client, true
	}
	return op, nil
}

func (op *Op) setServer(t time.Time) error {
	n, err := timestamp.Normalize(t, op.cfg.DatetimeFormat)
	if err != nil {
		return &InvalidServerTimestampError{Field: op.cfg.InstanceField, Value: t, Err: err}
	}
	op.server = n
	return nil
}

// Config returns the configuration the Op was resolved with.
func (op *Op) Config() Config {
	return op.cfg
}

func (op *Op) Verb() Verb {
	return op.verb
}

// Server returns the server instant, truncated to the precision of the format.
func (op *Op) Server() time.Time {
	return op.server
}

// Client returns the client instant as sent and whether the client sent one.
func (op *Op) Client() (time.Time, bool) {
	return op.client, op.hasClient
}

// CheckRead decides whether data needs to be sent to the client.
// The read is skipped when the client is at least as new as the server.
func (op *Op) CheckRead() Decision {
	op.trace("Checking read")
	if !op.hasClient {
		return op.missing()
	}
	if !op.client.Before(op.server) {
		return skip(op.verb, op.cfg.SkipStatusCode)
	}
	return proceed()
}

// CheckWrite decides whether the client's data should be applied.
// The write is skipped when the client is older than the server, and when it
// is equal unless EqualWriteAction is continue.
func (op *Op) CheckWrite() Decision {
	op.trace("Checking write")
	if !op.hasClient {
		return op.missing()
	}
	switch {
	case op.client.After(op.server):
		return proceed()
	case op.client.Equal(op.server) && op.cfg.EqualWriteAction == ActionContinue:
		return proceed()
	default:
		return skip(op.verb, op.cfg.SkipStatusCode)
	}
}

// Check runs the check matching the verb of the request.
// Requests with an unknown verb always proceed.
func (op *Op) Check() Decision {
	switch op.verb {
	case VerbRead:
		return op.CheckRead()
	case VerbWrite:
		return op.CheckWrite()
	default:
		return proceed()
	}
}

// ShouldRead reports whether data needs to be sent to the client.
func (op *Op) ShouldRead() bool {
	return op.CheckRead().Outcome == Proceed
}

// ShouldUpdate reports whether the client's data should be applied.
func (op *Op) ShouldUpdate() bool {
	return op.CheckWrite().Outcome == Proceed
}

func (op *Op) missing() Decision {
	if op.cfg.MissingAction == ActionContinue {
		return proceed()
	}
	return skip(op.verb, op.cfg.SkipStatusCode)
}

func (op *Op) trace(msg string) {
	e := op.log.Trace().
		Str("verb", op.verb.String()).
		Time("server", op.server)
	if op.hasClient {
		e = e.Time("client", op.client)
	}
	e.Msg(msg)
}
