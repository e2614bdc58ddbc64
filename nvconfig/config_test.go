package nvconfig_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/navani/nvconfig"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvlayout"
	"oss.terrastruct.com/navani/nvrenderers/nvthemes"
)

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := nvconfig.Load(fs, nvconfig.FileName, false)
	require.NoError(t, err)
	assert.Equal(t, nvconfig.DefaultConfig(), cfg)
	assert.Equal(t, nvlayout.DefaultOptions, *cfg.LayoutOptions())
	assert.Equal(t, nvgeom.DefaultOptions, *cfg.GeometryOptions())

	_, err = nvconfig.Load(fs, nvconfig.FileName, true)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/navani.yaml", []byte(`
style:
  theme: dark
  include_style: false
layout:
  column_spacing: 420
render:
  pad: 10
watch:
  port: 8080
library:
  path: /tmp/lib.json
`), 0644))

	cfg, err := nvconfig.Load(fs, "/cfg/navani.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, nvthemes.Dark.ID, cfg.Theme().ID)
	assert.False(t, cfg.FormatOptions().IncludeStyle)
	assert.Equal(t, 420.0, cfg.LayoutOptions().ColumnSpacing)
	// Unset fields keep their defaults.
	assert.Equal(t, nvlayout.DefaultOptions.RowSpacing, cfg.LayoutOptions().RowSpacing)
	assert.Equal(t, 1.0, cfg.Render.Scale)
	assert.Equal(t, int64(10), cfg.Render.Pad)
	assert.Equal(t, 8080, cfg.Watch.Port)
	assert.Equal(t, "localhost", cfg.Watch.Host)

	p, err := cfg.LibraryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lib.json", p)

	ro := cfg.RouterOptions()
	assert.Equal(t, nvgeom.LaneStep, ro.LaneStep)
	assert.Equal(t, nvgeom.DefaultOptions, *ro.Geometry)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		yaml string
	}{
		{"syntax", "style: [theme"},
		{"theme", "style:\n  theme: sepia\n"},
		{"scale", "render:\n  scale: 0\n"},
		{"port", "watch:\n  port: 70000\n"},
		{"passes", "layout:\n  max_passes: -1\n"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "navani.yaml", []byte(tc.yaml), 0644))
			_, err := nvconfig.Load(fs, "navani.yaml", false)
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := nvconfig.DefaultConfig()
	env := xos.NewEnv([]string{
		"NAVANI_THEME=Dark",
		"NAVANI_PORT=9000",
		"NAVANI_HOST=0.0.0.0",
		"NAVANI_LIBRARY=/lib.json",
		"NAVANI_SHARE_URL=https://example.com/",
	})
	require.NoError(t, cfg.ApplyEnv(env))
	assert.Equal(t, nvthemes.Dark.ID, cfg.Theme().ID)
	assert.Equal(t, 9000, cfg.Watch.Port)
	assert.Equal(t, "0.0.0.0", cfg.Watch.Host)
	assert.Equal(t, "/lib.json", cfg.Library.Path)
	assert.Equal(t, "https://example.com/", cfg.Share.BaseURL)

	err := nvconfig.DefaultConfig().ApplyEnv(xos.NewEnv([]string{"NAVANI_PORT=eighty"}))
	assert.Error(t, err)
}
