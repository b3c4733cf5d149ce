package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis   `yaml:"redis"`
	Archive    Archive `yaml:"archive"`
	Game       Game    `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Archive controls where finished games are kept. Enabled has no default:
// cleanenv would overwrite an explicit false with it.
type Archive struct {
	Enabled bool          `yaml:"enabled" env:"ARCHIVE_ENABLED"`
	TTL     time.Duration `yaml:"ttl" env:"ARCHIVE_TTL" env-default:"168h"`
}

type Game struct {
	BotTimeout      time.Duration `yaml:"bot-timeout" env:"BOT_TIMEOUT" env-default:"2s"`
	BotDelay        time.Duration `yaml:"bot-delay" env:"BOT_DELAY" env-default:"0s"`
	SessionTTL      time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"30m"`
	JanitorInterval time.Duration `yaml:"janitor-interval" env:"JANITOR_INTERVAL" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
