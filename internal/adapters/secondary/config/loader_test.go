package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	t.Run("creates config on first run", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "pptgrid", "config.toml")
		loader := NewTOMLLoaderAt(globalPath)

		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)
		require.NotNil(t, config)

		_, err = os.Stat(globalPath)
		assert.NoError(t, err)

		assert.Equal(t, "ooxml", config.Output.Engine)
		assert.True(t, config.Output.Overwrite)
		assert.Equal(t, float64(40), config.Table.MaxFontSize)
		assert.Equal(t, "FF0000", config.Debug.LineColor)
		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, 3000, config.Server.Port)
		assert.True(t, config.Browser.AutoOpen)
		assert.Equal(t, 200, config.Watcher.IntervalMs)
		assert.True(t, config.IsSet("browser.auto_open"))
	})

	t.Run("loads existing config", func(t *testing.T) {
		globalPath := writeConfig(t, t.TempDir(), "config.toml", `
[output]
engine = "goppt"
slide_width = "13.333in"
slide_height = "7.5in"

[table]
max_font_size = 24
header_fill = "DDDDDD"
header_bold = true

[server]
host = "0.0.0.0"
port = 8080

[browser]
auto_open = false

[watcher]
mode = "notify"

[metadata]
author = "Data Team"
company = "Acme"
`)
		loader := NewTOMLLoaderAt(globalPath)

		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)

		assert.Equal(t, entities.EngineGoPPT, config.Output.GetEngine())
		assert.Equal(t, "13.333in", config.Output.SlideWidth)
		assert.Equal(t, float64(24), config.Table.MaxFontSize)
		assert.Equal(t, "DDDDDD", config.Table.HeaderFill)
		assert.True(t, config.Table.HeaderBold)
		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 8080, config.Server.Port)
		assert.False(t, config.Browser.AutoOpen)
		assert.Equal(t, entities.WatcherModeNotify, config.Watcher.GetMode())
		assert.Equal(t, "Acme", config.Metadata.Company)

		assert.True(t, config.IsSet("browser.auto_open"))
		assert.False(t, config.IsSet("output.overwrite"))
	})

	t.Run("fails with invalid TOML", func(t *testing.T) {
		globalPath := writeConfig(t, t.TempDir(), "config.toml", "[server\nhost = ")
		_, err := NewTOMLLoaderAt(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing TOML")
	})

	t.Run("fails with invalid config values", func(t *testing.T) {
		globalPath := writeConfig(t, t.TempDir(), "config.toml", "[output]\nengine = \"pdf\"\n")
		_, err := NewTOMLLoaderAt(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid engine")
	})

	t.Run("fails with unknown keys", func(t *testing.T) {
		globalPath := writeConfig(t, t.TempDir(), "config.toml", "[table]\nmax_font = 12\n")
		_, err := NewTOMLLoaderAt(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "table.max_font"`)
	})
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	loader := NewTOMLLoaderAt(filepath.Join(t.TempDir(), "config.toml"))

	t.Run("loads a partial local config", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, LocalFileName, "[debug]\nline_color = \"0000FF\"\nhide_labels = true\n")

		config, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, "0000FF", config.Debug.LineColor)
		assert.True(t, config.Debug.HideLabels)
		assert.True(t, config.IsSet("debug.hide_labels"))
	})

	t.Run("returns nil for non-existent local config", func(t *testing.T) {
		config, err := loader.LoadLocal(context.Background(), t.TempDir())
		assert.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("fails with invalid local config", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, LocalFileName, "[table]\nheader_fill = \"blue-ish\"\n")

		_, err := loader.LoadLocal(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header fill")
	})
}

func TestTOMLLoader_LoadFile(t *testing.T) {
	loader := NewTOMLLoaderAt(filepath.Join(t.TempDir(), "config.toml"))

	t.Run("explicit file", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "ci.toml", "[logging]\nlevel = \"debug\"\njson_format = true\n")
		config, err := loader.LoadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, entities.LogLevelDebug, config.Logging.GetLevel())
		assert.True(t, config.Logging.JSONFormat)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := loader.LoadFile(context.Background(), filepath.Join(t.TempDir(), "none.toml"))
		assert.Error(t, err)
	})
}

func TestTOMLLoader_CreateDefaults(t *testing.T) {
	t.Run("creates a file that loads back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "pptgrid.toml")
		loader := NewTOMLLoaderAt(path)

		require.NoError(t, loader.CreateDefaults(context.Background(), path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[output]")
		assert.Contains(t, string(data), "[table]")
		assert.Contains(t, string(data), "[watcher]")

		config, err := loader.LoadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, GetDefaultConfig().Server.Port, config.Server.Port)
	})

	t.Run("fails when the directory cannot be created", func(t *testing.T) {
		blocker := writeConfig(t, t.TempDir(), "file", "x")
		path := filepath.Join(blocker, "config.toml")

		err := NewTOMLLoaderAt(path).CreateDefaults(context.Background(), path)
		assert.Error(t, err)
	})
}

func TestTOMLLoader_GetPaths(t *testing.T) {
	loader := NewTOMLLoaderAt("/etc/pptgrid/config.toml")

	assert.Equal(t, "/etc/pptgrid/config.toml", loader.GetGlobalPath())
	assert.Equal(t, filepath.Join("/decks", LocalFileName), loader.GetLocalPath("/decks"))
}

func TestNewTOMLLoader(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "pptgrid", "config.toml"), NewTOMLLoader().GetGlobalPath())
	})

	t.Run("falls back to the home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/someone")
		assert.Equal(t, filepath.Join("/home/someone", ".config", "pptgrid", "config.toml"), NewTOMLLoader().GetGlobalPath())
	})
}
