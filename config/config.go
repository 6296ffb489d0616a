// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/JeremyLoy/config"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ServerAddress string  `config:"VV_SERVER_ADDRESS"`
	ListenAddress string  `config:"VV_LISTEN_ADDRESS"`
	FrameRate     float64 `config:"VV_FRAME_RATE"`
	LogLevel      string  `config:"VV_LOG_LEVEL"`
	StatsdAddress string  `config:"VV_STATSD_ADDRESS"`
	PlayerId      uint64  `config:"VV_PLAYER_ID"`
}

// Default returns the configuration used for unset variables.
func Default() Config {
	return Config{
		ServerAddress: "ws://localhost:8080/ws",
		ListenAddress: ":8080",
		FrameRate:     60,
		LogLevel:      zerolog.InfoLevel.String(),
		PlayerId:      1,
	}
}

// Load reads the given .env files (".env" when none are named) into the environment and
// fills a Config from it over Default. Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, eris.Wrapf(err, "loading %s", file)
			}
			log.Warn().Str("file", file).Msg("no env file found, using environment only")
		}
	}

	cfg := Default()
	if err := config.FromEnv().To(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "reading configuration from environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return eris.Errorf("frame rate must be positive, got %v", c.FrameRate)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return nil
}

// FrameInterval is the wall clock duration of one frame.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}

// Logger builds a console logger at the configured level, writing to stderr.
func (c Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
