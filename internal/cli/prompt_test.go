package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eagraf/habitat-store/core/state/catalog"
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notes = &catalog.App{ID: "notes", Name: "Notes"}

func TestChooseVersion(t *testing.T) {
	var out bytes.Buffer
	p := newTerminalPrompter(strings.NewReader("2\n"), &out)

	chosen, err := p.ChooseVersion(context.Background(), notes, "1.0.0", "1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", chosen)
	assert.Contains(t, out.String(), "Notes 1.0.0 is installed.")
	assert.Contains(t, out.String(), "  1) Keep 1.0.0\n")
	assert.Contains(t, out.String(), "  2) Update to 1.1.0\n")
}

func TestChooseVariantRetriesBadInput(t *testing.T) {
	var out bytes.Buffer
	p := newTerminalPrompter(strings.NewReader("zero\n9\n1\n"), &out)
	variants := []library.Variant{
		library.BinaryVariant("https://example.com/a.zip", "AAAA", "a"),
		library.BinaryVariant("https://mirror.example.com/a.zip", "AAAA", "a"),
	}

	chosen, err := p.ChooseVariant(context.Background(), notes, &catalog.Version{Number: "1.0.0"}, variants)
	require.NoError(t, err)
	assert.Equal(t, variants[0], chosen)
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter one of the numbers above."))
	assert.Contains(t, out.String(), "download https://mirror.example.com/a.zip")
}

func TestChooseWithoutAnswer(t *testing.T) {
	p := newTerminalPrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.ChooseVersion(context.Background(), notes, "1.0.0", "1.1.0")
	assert.Error(t, err)

	// A final answer without a newline still counts.
	p = newTerminalPrompter(strings.NewReader("1"), &bytes.Buffer{})
	chosen, err := p.ChooseVersion(context.Background(), notes, "1.0.0", "1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", chosen)
}
