package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	GameTTL  time.Duration `yaml:"game-ttl" env:"GAME_TTL" env-default:"24h"`
	Redis    Redis         `yaml:"redis"`
	Board    Board         `yaml:"board"`
	Players  Players       `yaml:"players"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Board holds the size of new games when a request does not choose one.
type Board struct {
	Height int `yaml:"height" env:"BOARD_HEIGHT" env-default:"6"`
	Width  int `yaml:"width" env:"BOARD_WIDTH" env-default:"7"`
}

// Players holds the default colours of the two seats.
type Players struct {
	First  string `yaml:"first" env:"FIRST_PLAYER_COLOR" env-default:"red"`
	Second string `yaml:"second" env:"SECOND_PLAYER_COLOR" env-default:"yellow"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
