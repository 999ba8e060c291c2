package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	t.Run("creates config on first run", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "from-env")
		t.Setenv("CAROUSELKIT_API_KEY", "")
		globalPath := filepath.Join(t.TempDir(), "carouselkit", "config.toml")
		loader := NewTOMLLoaderWithPath(globalPath)

		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)
		require.NotNil(t, config)

		_, err = os.Stat(globalPath)
		assert.NoError(t, err)

		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, 360, config.Export.Width)
		assert.Equal(t, 450, config.Export.Height)
		assert.InDelta(t, 3.0, config.Export.PixelRatio, 0.0001)
		assert.Equal(t, "dark_modern", config.Carousel.Theme)

		raw, err := os.ReadFile(globalPath)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "from-env", "credentials are never written")
	})

	t.Run("loads existing config", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		content := `
[server]
host = "0.0.0.0"
port = 9090
cors_origins = ["https://studio.example.com"]

[generator]
backend = "outline"

[export]
format = "pdf"
pixel_ratio = 4.0

[sink]
backend = "s3"
bucket = "carousels"
use_path_style = true

[carousel]
theme = "bold_neon"
tone = "funny"
slide_count = 7
username = "jane"
`
		require.NoError(t, os.WriteFile(globalPath, []byte(content), 0o644))

		config, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 9090, config.Server.Port)
		assert.Equal(t, []string{"https://studio.example.com"}, config.Server.CORSOrigins)
		assert.Equal(t, "outline", config.Generator.Backend)
		assert.Equal(t, "pdf", config.Export.Format)
		assert.InDelta(t, 4.0, config.Export.PixelRatio, 0.0001)
		assert.Equal(t, "carousels", config.Sink.Bucket)
		assert.True(t, config.Sink.UsePathStyle)
		assert.Equal(t, "bold_neon", config.Carousel.Theme)
		assert.Equal(t, 7, config.Carousel.SlideCount)
		assert.Equal(t, "jane", config.Carousel.Username)
	})

	t.Run("fails with invalid TOML", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[server\nhost = \"localhost\"\n"), 0o644))

		_, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing TOML")
	})

	t.Run("fails with invalid config values", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[carousel]\ntheme = \"vaporwave\"\n"), 0o644))

		_, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
		assert.Contains(t, err.Error(), "unknown theme")
	})

	t.Run("fails with unknown keys", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[export]\nwidht = 400\n"), 0o644))

		_, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown keys")
	})

	t.Run("rejects a raster below 1000px", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[export]\npixel_ratio = 2.0\n"), 0o644))

		_, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "short edge")
	})
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	loader := NewTOMLLoaderWithPath(filepath.Join(t.TempDir(), "global.toml"))

	t.Run("missing local config is not an error", func(t *testing.T) {
		config, err := loader.LoadLocal(context.Background(), t.TempDir())
		assert.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("loads carouselkit.toml", func(t *testing.T) {
		dir := t.TempDir()
		content := "[carousel]\ntone = \"expert\"\n\n[storage]\nbackend = \"sqlite\"\npath = \"lib.db\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, LocalFileName), []byte(content), 0o644))

		config, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, "expert", config.Carousel.Tone)
		assert.Equal(t, "sqlite", config.Storage.Backend)
		assert.Equal(t, "lib.db", config.Storage.Path)
	})
}

func TestTOMLLoader_CreateDefaults(t *testing.T) {
	t.Setenv("AWS_SECRET_ACCESS_KEY", "very-secret")
	path := filepath.Join(t.TempDir(), "deep", "dir", "config.toml")
	loader := NewTOMLLoaderWithPath(path)

	require.NoError(t, loader.CreateDefaults(context.Background(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	for _, section := range []string{"[server]", "[generator]", "[export]", "[storage]", "[sink]", "[carousel]", "[logging]"} {
		assert.True(t, strings.Contains(content, section), "missing %s", section)
	}
	assert.NotContains(t, content, "very-secret")

	config, err := loader.loadConfig(path)
	require.NoError(t, err, "defaults must load back")
	assert.Equal(t, "zip", config.Export.Format)
}

func TestTOMLLoader_GetPaths(t *testing.T) {
	loader := NewTOMLLoaderWithPath("/etc/carouselkit/config.toml")

	assert.Equal(t, "/etc/carouselkit/config.toml", loader.GetGlobalPath())
	assert.Equal(t, filepath.Join("/work", "carouselkit.toml"), loader.GetLocalPath("/work"))
}

func TestNewTOMLLoader(t *testing.T) {
	loader := NewTOMLLoader()

	assert.True(t, strings.HasSuffix(loader.GetGlobalPath(), filepath.Join(".config", "carouselkit", "config.toml")))
	assert.Equal(t, LocalFileName, loader.localName)
}
