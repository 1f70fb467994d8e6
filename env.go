package timecheck

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is the default prefix of environment overrides,
// e.g. TIMECHECK_HEADER_TIMESTAMP_FIELD.
const EnvPrefix = "TIMECHECK"

// LoadEnv reads <prefix>_<KEY> variables into overrides, with the keys
// named by the env tags of Overrides. A nil environ reads the process
// environment. Unset and empty variables leave the field unset.
func LoadEnv(prefix string, environ map[string]string) (Overrides, error) {
	var o Overrides
	err := env.ParseWithOptions(&o, env.Options{
		Prefix:      prefix + "_",
		Environment: environ,
	})
	if err != nil {
		return Overrides{}, err
	}
	if o.MissingAction != "" && !o.MissingAction.valid() {
		return Overrides{}, fmt.Errorf("%s_MISSING_ACTION: invalid action %q", prefix, o.MissingAction)
	}
	if o.EqualWriteAction != "" && !o.EqualWriteAction.valid() {
		return Overrides{}, fmt.Errorf("%s_EQUAL_WRITE_ACTION: invalid action %q", prefix, o.EqualWriteAction)
	}
	return o, nil
}

// InitFromEnv installs Defaults with the process environment applied
// as the process-wide default.
func InitFromEnv() (Config, error) {
	o, err := LoadEnv(EnvPrefix, nil)
	if err != nil {
		return Config{}, err
	}
	c := Defaults().Merge(o)
	return c, SetDefault(c)
}
