package timecheck

import (
	"fmt"
	"sync/atomic"

	"github.com/ericselin/timecheck/pkg/timestamp"
)

// Action is what to do in a situation the timestamps alone do not decide.
type Action string

const (
	// ActionContinue proceeds as if no conditional check was requested.
	ActionContinue Action = "continue"
	// ActionNoUpdate treats the request as already satisfied (read) or stale (write).
	ActionNoUpdate Action = "noupdate"
)

func (a Action) valid() bool {
	return a == ActionContinue || a == ActionNoUpdate
}

// Config is the effective configuration of a timestamp check.
// It is a value: resolve it once and pass it along.
type Config struct {
	// Field in headers to use for the client timestamp.
	HeaderField string `yaml:"headerField"`
	// Field in the request body to use for the client timestamp.
	BodyField string `yaml:"bodyField"`
	// Attribute of the resource to use for the server timestamp.
	InstanceField string `yaml:"instanceField"`
	// What to do when the client does not provide a timestamp.
	MissingAction Action `yaml:"missingAction"`
	// What to do on a write whose client timestamp equals the server timestamp.
	EqualWriteAction Action `yaml:"equalWriteAction"`
	// Status code for when the client is newer on a read or older on a write.
	SkipStatusCode int `yaml:"noupdateCode"`
	// strftime pattern used to parse, format and normalize timestamps.
	DatetimeFormat string `yaml:"datetimeFormat"`
	// Render exact-UTC offsets as "Z" when formatting.
	ReplaceWithZ bool `yaml:"replaceWithZ"`
}

// Overrides is a partial Config. Zero fields are unset.
// The env tags name the keys read by LoadEnv, without prefix.
type Overrides struct {
	HeaderField      string `yaml:"headerField" env:"HEADER_TIMESTAMP_FIELD"`
	BodyField        string `yaml:"bodyField" env:"BODY_TIMESTAMP_FIELD"`
	InstanceField    string `yaml:"instanceField" env:"INSTANCE_TIMESTAMP_FIELD"`
	MissingAction    Action `yaml:"missingAction" env:"MISSING_ACTION"`
	EqualWriteAction Action `yaml:"equalWriteAction" env:"EQUAL_WRITE_ACTION"`
	SkipStatusCode   int    `yaml:"noupdateCode" env:"NOUPDATE_CODE"`
	DatetimeFormat   string `yaml:"datetimeFormat" env:"DATETIME_FORMAT"`
	ReplaceWithZ     *bool  `yaml:"replaceWithZ" env:"REPLACE_WITH_Z"`
}

// Defaults returns the hard-coded configuration.
func Defaults() Config {
	return Config{
		HeaderField:      "lastUpdated",
		BodyField:        "lastUpdated",
		InstanceField:    "lastUpdated",
		MissingAction:    ActionNoUpdate,
		EqualWriteAction: ActionNoUpdate,
		SkipStatusCode:   418,
		DatetimeFormat:   timestamp.DefaultFormat,
	}
}

// Merge returns a copy of c with every set field of o applied.
func (c Config) Merge(o Overrides) Config {
	if o.HeaderField != "" {
		c.HeaderField = o.HeaderField
	}
	if o.BodyField != "" {
		c.BodyField = o.BodyField
	}
	if o.InstanceField != "" {
		c.InstanceField = o.InstanceField
	}
	if o.MissingAction != "" {
		c.MissingAction = o.MissingAction
	}
	if o.EqualWriteAction != "" {
		c.EqualWriteAction = o.EqualWriteAction
	}
	if o.SkipStatusCode != 0 {
		c.SkipStatusCode = o.SkipStatusCode
	}
	if o.DatetimeFormat != "" {
		c.DatetimeFormat = o.DatetimeFormat
	}
	if o.ReplaceWithZ != nil {
		c.ReplaceWithZ = *o.ReplaceWithZ
	}
	return c
}

// Merge layers other on top of o. Set fields of other win.
func (o Overrides) Merge(other Overrides) Overrides {
	if other.HeaderField != "" {
		o.HeaderField = other.HeaderField
	}
	if other.BodyField != "" {
		o.BodyField = other.BodyField
	}
	if other.InstanceField != "" {
		o.InstanceField = other.InstanceField
	}
	if other.MissingAction != "" {
		o.MissingAction = other.MissingAction
	}
	if other.EqualWriteAction != "" {
		o.EqualWriteAction = other.EqualWriteAction
	}
	if other.SkipStatusCode != 0 {
		o.SkipStatusCode = other.SkipStatusCode
	}
	if other.DatetimeFormat != "" {
		o.DatetimeFormat = other.DatetimeFormat
	}
	if other.ReplaceWithZ != nil {
		o.ReplaceWithZ = other.ReplaceWithZ
	}
	return o
}

// Validate checks that the configuration can drive a check.
func (c Config) Validate() error {
	if c.HeaderField == "" || c.BodyField == "" || c.InstanceField == "" {
		return fmt.Errorf("timestamp field names must not be empty")
	}
	if !c.MissingAction.valid() {
		return fmt.Errorf("invalid missing action %q", c.MissingAction)
	}
	if !c.EqualWriteAction.valid() {
		return fmt.Errorf("invalid equal write action %q", c.EqualWriteAction)
	}
	if c.SkipStatusCode < 100 || c.SkipStatusCode > 599 {
		return fmt.Errorf("invalid noupdate status code %d", c.SkipStatusCode)
	}
	if err := timestamp.CheckFormat(c.DatetimeFormat); err != nil {
		return err
	}
	return nil
}

var current atomic.Pointer[Config]

// Current returns the process-wide default configuration.
func Current() Config {
	if c := current.Load(); c != nil {
		return *c
	}
	return Defaults()
}

// SetDefault swaps the process-wide default configuration.
// Checks already in flight keep the snapshot they started with.
func SetDefault(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	current.Store(&c)
	return nil
}

// Resolve returns the effective configuration for one check:
// overrides, then the process-wide default, then the hard-coded defaults.
func Resolve(o Overrides) Config {
	return Current().Merge(o)
}
