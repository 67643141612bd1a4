package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Rooms    RoomsConfig    `yaml:"rooms"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
}

type DiscordConfig struct {
	Token          string        `yaml:"token" env:"DISCORD_TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"DISCORD_REQUEST_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig selects the stores. An empty DSN keeps everything in memory.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

type HTTPConfig struct {
	Address      string   `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	AdminToken   string   `yaml:"admin_token" env:"HTTP_ADMIN_TOKEN"`
	AllowOrigins []string `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-separator:","`
}

type RoomsConfig struct {
	NameTemplate              string `yaml:"name_template" env:"ROOMS_NAME_TEMPLATE" env-default:"{user}'s room"`
	MaxNameLength             int    `yaml:"max_name_length" env:"ROOMS_MAX_NAME_LENGTH" env-default:"100"`
	MaxUserLimit              int    `yaml:"max_user_limit" env:"ROOMS_MAX_USER_LIMIT" env-default:"99"`
	ClaimRequiresOfflineOwner bool   `yaml:"claim_requires_offline_owner" env:"ROOMS_CLAIM_REQUIRES_OFFLINE_OWNER"`
}

type SweeperConfig struct {
	// Interval between sweeps of all rooms; 0 disables the periodic sweep.
	Interval   time.Duration `yaml:"interval" env:"SWEEPER_INTERVAL" env-default:"5m"`
	EmptyGrace time.Duration `yaml:"empty_grace" env:"SWEEPER_EMPTY_GRACE" env-default:"1m"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) validate() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}
	if c.Rooms.MaxNameLength <= 0 || c.Rooms.MaxNameLength > 100 {
		errs = append(errs, errors.New("rooms.max_name_length must be between 1 and 100"))
	}
	if c.Rooms.MaxUserLimit <= 0 || c.Rooms.MaxUserLimit > 99 {
		errs = append(errs, errors.New("rooms.max_user_limit must be between 1 and 99"))
	}
	if c.Sweeper.Interval < 0 || c.Sweeper.EmptyGrace < 0 {
		errs = append(errs, errors.New("sweeper durations must not be negative"))
	}
	return errors.Join(errs...)
}
