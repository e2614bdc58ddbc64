package nvthemes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/navani/lib/color"
	"oss.terrastruct.com/navani/nvrenderers/nvthemes"
)

func TestFind(t *testing.T) {
	t.Parallel()

	th, err := nvthemes.Find("")
	require.NoError(t, err)
	assert.Equal(t, "light", th.Name)

	th, err = nvthemes.Find("DARK")
	require.NoError(t, err)
	assert.Equal(t, int64(1), th.ID)

	// Find returns a copy.
	th.Colors.Text = "#000000"
	assert.Equal(t, "#f1f5f9", nvthemes.Dark.Colors.Text)

	_, err = nvthemes.Find("solarized")
	assert.Error(t, err)
}

func TestHeaderFill(t *testing.T) {
	t.Parallel()

	th := nvthemes.Light
	assert.Equal(t, th.Colors.Header, th.HeaderFill(""))
	assert.Equal(t, th.Colors.Header, th.HeaderFill("bogus"))

	fill := th.HeaderFill("#ef4444")
	assert.NotEqual(t, th.Colors.Header, fill)
	assert.Regexp(t, "^#[0-9a-f]{6}$", fill)
}

func TestIconFill(t *testing.T) {
	t.Parallel()

	light, dark := nvthemes.Light, nvthemes.Dark
	assert.False(t, light.IsDark())
	assert.True(t, dark.IsDark())

	assert.Equal(t, light.Colors.Muted, light.IconFill(""))
	assert.Equal(t, light.Colors.Muted, light.IconFill("bogus"))

	darker, err := color.Darken("#eab308")
	require.NoError(t, err)
	assert.NotEqual(t, "#eab308", darker)
	assert.Equal(t, darker, light.IconFill("#eab308"))
	assert.Equal(t, "#eab308", dark.IconFill("#eab308"))
	assert.Equal(t, "#3b82f6", light.IconFill("#3b82f6"))
}
