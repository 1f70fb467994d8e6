package timecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetDefault(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { current.Store(nil) })
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	assert.Equal(t, "lastUpdated", c.HeaderField)
	assert.Equal(t, "lastUpdated", c.BodyField)
	assert.Equal(t, "lastUpdated", c.InstanceField)
	assert.Equal(t, ActionNoUpdate, c.MissingAction)
	assert.Equal(t, ActionNoUpdate, c.EqualWriteAction)
	assert.Equal(t, 418, c.SkipStatusCode)
	assert.Equal(t, "%Y-%m-%dT%H:%M:%S%z", c.DatetimeFormat)
	assert.False(t, c.ReplaceWithZ)
	require.NoError(t, c.Validate())
}

func TestCurrentWithoutDefault(t *testing.T) {
	resetDefault(t)
	current.Store(nil)
	assert.Equal(t, Defaults(), Current())
	assert.Equal(t, Defaults(), Resolve(Overrides{}))
}

func TestResolvePrecedence(t *testing.T) {
	resetDefault(t)
	process := Defaults()
	process.HeaderField = "X-Seen"
	process.SkipStatusCode = 409
	require.NoError(t, SetDefault(process))

	yes := true
	c := Resolve(Overrides{SkipStatusCode: 412, ReplaceWithZ: &yes})
	assert.Equal(t, "X-Seen", c.HeaderField)
	assert.Equal(t, 412, c.SkipStatusCode)
	assert.True(t, c.ReplaceWithZ)
	assert.Equal(t, "lastUpdated", c.BodyField)
}

func TestMergeExplicitFalse(t *testing.T) {
	c := Defaults()
	c.ReplaceWithZ = true
	no := false
	assert.False(t, c.Merge(Overrides{ReplaceWithZ: &no}).ReplaceWithZ)
	assert.True(t, c.Merge(Overrides{}).ReplaceWithZ)
}

func TestOverridesMerge(t *testing.T) {
	base := Overrides{HeaderField: "a", SkipStatusCode: 304}
	got := base.Merge(Overrides{HeaderField: "b", MissingAction: ActionContinue})
	assert.Equal(t, Overrides{HeaderField: "b", SkipStatusCode: 304, MissingAction: ActionContinue}, got)
	assert.Equal(t, "a", base.HeaderField)
}

func TestSetDefaultRejectsInvalid(t *testing.T) {
	resetDefault(t)
	invalid := []func(c *Config){
		func(c *Config) { c.HeaderField = "" },
		func(c *Config) { c.InstanceField = "" },
		func(c *Config) { c.MissingAction = "maybe" },
		func(c *Config) { c.EqualWriteAction = "" },
		func(c *Config) { c.SkipStatusCode = 0 },
		func(c *Config) { c.SkipStatusCode = 1000 },
		func(c *Config) { c.DatetimeFormat = "%m-%d %H:%M" },
	}
	for i, mutate := range invalid {
		c := Defaults()
		mutate(&c)
		assert.Error(t, SetDefault(c), "case %d", i)
	}
	assert.Equal(t, Defaults(), Current())
}
