package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoadConfig_Success_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(context.Background(), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, 4096, cfg.MaxDimension)
	require.Equal(t, 8192, cfg.MaxDecode)
	require.Equal(t, "scanlines", cfg.DefaultEffect)
	require.Equal(t, 50, cfg.DefaultIntensity)
	require.Equal(t, "png", cfg.OutputFormat)
	require.Equal(t, "downloads", cfg.DownloadDir)
}

func TestLoadConfig_Override(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GLITCH_DEFAULT_EFFECT", "rgb-shift")
	t.Setenv("GLITCH_DEFAULT_INTENSITY", "80")
	t.Setenv("FARCASTER_FID", "1234")
	t.Setenv("RENDER_ADDR", "localhost:8383")

	cfg, err := LoadConfig(context.Background(), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, "rgb-shift", cfg.DefaultEffect)
	require.Equal(t, 80, cfg.DefaultIntensity)
	require.EqualValues(t, 1234, cfg.FarcasterFID)
	require.Equal(t, "localhost:8383", cfg.RenderAddr)
}

func TestLoadConfig_ValidationError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GLITCH_DEFAULT_EFFECT", "vhs")

	cfg, err := LoadConfig(context.Background(), "", zaptest.NewLogger(t))
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadConfig_IntensityRange(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GLITCH_DEFAULT_INTENSITY", "101")

	_, err := LoadConfig(context.Background(), "", zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	file := filepath.Join(t.TempDir(), "glitch.yaml")
	require.NoError(t, os.WriteFile(file, []byte("GLITCH_DEFAULT_EFFECT: pixelate\nMINT_ENDPOINT: https://mint.example\n"), 0644))

	cfg, err := LoadConfig(context.Background(), file, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, "pixelate", cfg.DefaultEffect)
	require.Equal(t, "https://mint.example", cfg.MintEndpoint)
}
