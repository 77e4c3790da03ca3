package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel      string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	SocketPort    string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	WebSocketPort string `yaml:"websocket-port" env:"WEBSOCKET_PORT"`
	HTTPPort      string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Game          Game   `yaml:"game"`
	Redis         Redis  `yaml:"redis"`
}

type Game struct {
	BoardSize    int           `yaml:"board-size" env:"BOARD_SIZE" env-default:"9"`
	TurnTimeout  time.Duration `yaml:"turn-timeout" env:"TURN_TIMEOUT" env-default:"60s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
	Banner       string        `yaml:"banner" env:"BANNER" env-default:"Welcome to the Go server!"`
}

// Redis is optional; an empty host keeps player statistics in memory.
type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load configuration from the yml file at path, overridden by the
// environment. Without the file only the environment and defaults are used.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// GetRedisAddr returns host:port, or an empty string when redis is not configured.
func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
