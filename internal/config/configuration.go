package config

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Debug bool `mapstructure:"DEBUG"`

	// Session defaults
	MaxDimension     int    `mapstructure:"GLITCH_MAX_DIMENSION" validate:"min=1"`
	MaxDecode        int    `mapstructure:"GLITCH_MAX_DECODE_DIMENSION" validate:"min=1"`
	DefaultEffect    string `mapstructure:"GLITCH_DEFAULT_EFFECT" validate:"oneof=scanlines chromatic pixelate rgb-shift"`
	DefaultIntensity int    `mapstructure:"GLITCH_DEFAULT_INTENSITY" validate:"min=0,max=100"`
	OutputFormat     string `mapstructure:"GLITCH_OUTPUT_FORMAT" validate:"oneof=png jpg jpeg gif"`

	// Rendering
	RenderAddr string `mapstructure:"RENDER_ADDR" validate:"omitempty,hostname_port"`
	CacheDir   string `mapstructure:"CACHE_DIR"`

	// Storage and minting
	NFTStorageToken string `mapstructure:"NFT_STORAGE_TOKEN"`
	StoreDir        string `mapstructure:"STORE_DIR"`
	StoreURL        string `mapstructure:"STORE_URL" validate:"omitempty,url"`
	MintEndpoint    string `mapstructure:"MINT_ENDPOINT" validate:"omitempty,url"`
	DownloadDir     string `mapstructure:"DOWNLOAD_DIR"`

	// Identity
	FarcasterFID      int64  `mapstructure:"FARCASTER_FID" validate:"min=0"`
	FarcasterUsername string `mapstructure:"FARCASTER_USERNAME"`

	// Integrations
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	WallhavenKey  string `mapstructure:"WALLHAVEN_KEY"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
}

// LoadConfig reads the environment and, when file is not empty, a config
// file. Environment values win over the file.
func LoadConfig(ctx context.Context, file string, logger *zap.Logger) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("GLITCH_MAX_DIMENSION", 4096)
	viper.SetDefault("GLITCH_MAX_DECODE_DIMENSION", 8192)
	viper.SetDefault("GLITCH_DEFAULT_EFFECT", "scanlines")
	viper.SetDefault("GLITCH_DEFAULT_INTENSITY", 50)
	viper.SetDefault("GLITCH_OUTPUT_FORMAT", "png")
	viper.SetDefault("DOWNLOAD_DIR", "downloads")

	if file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	logger.With(
		zap.String("effect", cfg.DefaultEffect),
		zap.Int("intensity", cfg.DefaultIntensity),
		zap.Int("maxDimension", cfg.MaxDimension),
		zap.Bool("remote", cfg.RenderAddr != ""),
		zap.Bool("nftStorage", cfg.NFTStorageToken != ""),
	).Debug("loaded configuration")

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
