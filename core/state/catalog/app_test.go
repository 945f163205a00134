package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest(t *testing.T) {
	app := &App{
		ID: "app1",
		Versions: []Version{
			{Number: "1.2.0"},
			{Number: "v1.10.0"},
			{Number: "1.9.3"},
			{Number: "not-a-version"},
		},
	}

	latest, ok := app.Latest()
	require.True(t, ok)
	assert.Equal(t, "v1.10.0", latest.Number)

	empty := &App{ID: "app2"}
	_, ok = empty.Latest()
	assert.False(t, ok)
}

func TestVersionLookup(t *testing.T) {
	app := &App{
		ID:       "app1",
		Versions: []Version{{Number: "1.0.0"}, {Number: "2.0.0"}},
	}

	v, ok := app.Version("2.0.0")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", v.Number)

	_, ok = app.Version("3.0.0")
	assert.False(t, ok)
}
