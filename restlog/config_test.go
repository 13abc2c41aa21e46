package restlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "restlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
output_dir: build/logs
run_command: ./bin/api-tests run
collapse_threshold: 1000
timezone: Europe/Berlin
skip_empty: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "build/logs", cfg.OutputDir)
	assert.Equal(t, "./bin/api-tests run", cfg.Command)
	assert.Equal(t, 1000, cfg.CollapseThreshold)
	assert.True(t, cfg.SkipEmpty)
	assert.Equal(t, "tests", cfg.TestRoot)
	assert.Equal(t, "Request Log", cfg.AttachmentLabel)

	r, err := cfg.Renderer()
	require.NoError(t, err)
	assert.Equal(t, 1000, r.CollapseThreshold)
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, berlin.String(), r.Location.String())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "output_dir: [unclosed"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "collapse_threshold: -1"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "timezone: Nowhere/Special"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, `output_dir: ""`))
	assert.Error(t, err)
}

func TestDirResolverCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	path, err := DirResolver{Dir: dir}.Path("log.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "log.html"), path)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
