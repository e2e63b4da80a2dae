package config

import (
	"os"
	"path/filepath"
	"testing"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, flamechart.DefaultSettings(), cfg.Settings())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
styles:
  main:
    blockHeight: 20
  togglePlugin:
    height: 24
options:
  timeUnits: s
headers:
  flameChart: main thread
colors:
  task: "#ff0000"
clusterize:
  condition: prev.type == node.type
logging:
  level: debug
  format: json
metrics:
  listen: ":9090"
`))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Styles.Main.BlockHeight)
	assert.Equal(t, "10px sans-serif", cfg.Styles.Main.Font, "omitted keys keep their defaults")
	assert.Equal(t, 24, cfg.Styles.Toggle.Height)
	assert.Equal(t, "rgb(202, 202, 202)", cfg.Styles.Toggle.Color)
	assert.Equal(t, "s", cfg.Options.TimeUnits)
	assert.Equal(t, flamechart.Headers{Waterfall: "waterfall", FlameChart: "main thread"}, cfg.Headers)
	assert.Equal(t, map[string]string{"task": "#ff0000"}, cfg.Colors)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)

	lvl, err := cfg.Logging.level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestParseErrors(t *testing.T) {
	tt := []struct {
		name string
		in   string
	}{
		{"unknown key", "stlyes: {}"},
		{"unknown nested key", "styles:\n  main:\n    blockHieght: 3"},
		{"wrong type", "styles:\n  main:\n    blockHeight: tall"},
		{"log level", "logging:\n  level: loud"},
		{"log format", "logging:\n  format: xml"},
		{"condition", "clusterize:\n  condition: prev.nope =="},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.in))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flamechart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options:\n  tooltips: false\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Options.Tooltips)

	require.NoError(t, os.WriteFile(path, []byte("nope: 1\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Clusterize.Condition = "node.start - prev.end < 5"
	cfg.Colors = map[string]string{"a": "red"}
	var opts flamechart.Options
	require.NoError(t, cfg.Apply(&opts))
	assert.Equal(t, cfg.Settings(), opts.Settings)
	assert.Equal(t, cfg.Colors, opts.Colors)
	require.NotNil(t, opts.Merge)

	near := &tree.FlatNode{Source: &tree.Node{Start: 0, Duration: 10}, End: 10}
	next := &tree.FlatNode{Source: &tree.Node{Start: 12, Duration: 1}, End: 13}
	far := &tree.FlatNode{Source: &tree.Node{Start: 20, Duration: 1}, End: 21}
	assert.True(t, opts.Merge(near, next))
	assert.False(t, opts.Merge(near, far))
}

func TestBuildLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := Logging{Level: "warn", Format: format}.Build()
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	}
}
