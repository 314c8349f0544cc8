package config

import (
	"fmt"
	"os"
	"path"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
	Env     Env
}

type Public struct {
	Channels  []ChannelSeed  `yaml:"channels" validate:"required,min=1,dive"`
	DmThreads []DmThreadSeed `yaml:"dm_threads" validate:"dive"`
	Members   []domain.User  `yaml:"members" validate:"dive"`

	DefaultChannel string `yaml:"default_channel" validate:"required"`

	SignInDelay            time.Duration `yaml:"sign_in_delay" validate:"required"`
	SignInRatePerMinute    int           `yaml:"sign_in_rate_per_minute" validate:"required,gt=0"`
	SignInBurst            int           `yaml:"sign_in_burst" validate:"required,gt=0"`
	SessionTTL             time.Duration `yaml:"session_ttl" validate:"required"`
	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval" validate:"required"`
	MaxSessions            int           `yaml:"max_sessions" validate:"required,gt=0"`
	SessionStartsPerMinute int           `yaml:"session_starts_per_minute" validate:"required,gt=0"`
	SessionStartBurst      int           `yaml:"session_start_burst" validate:"required,gt=0"`
	JwtTTL                 time.Duration `yaml:"jwt_ttl" validate:"required"`

	MessageTextMaxLen int   `yaml:"message_text_max_len" validate:"required,gt=0"`
	MaxUploadSize     int64 `yaml:"max_upload_size" validate:"required,gt=0"`

	SecureCookies  bool     `yaml:"secure_cookies"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogJSON        bool     `yaml:"log_json"`
}

type ChannelSeed struct {
	Key      domain.ChannelKey `yaml:"key" validate:"required"`
	Label    string            `yaml:"label" validate:"required"`
	Messages []domain.Message  `yaml:"messages"`
}

type DmThreadSeed struct {
	Peer     domain.PeerId    `yaml:"peer" validate:"required"`
	Messages []domain.Message `yaml:"messages"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
}

// Env holds values that deployments override through the environment.
type Env struct {
	Port      string `env:"PORT,default=8080"`
	JwtSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
}

func (c *Config) JwtKey() string {
	if c.Env.JwtSecret != "" {
		return c.Env.JwtSecret
	}
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

// ChannelLabel returns the configured label, or "# key" for unseeded channels.
func (p *Public) ChannelLabel(key domain.ChannelKey) string {
	for _, c := range p.Channels {
		if c.Key == key {
			return c.Label
		}
	}
	return "# " + key
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func mustValidate(public *Public) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(public); err != nil {
		panic(fmt.Sprintf("invalid public config: %v", err))
	}

	seen := make(map[domain.ChannelKey]bool, len(public.Channels))
	for _, c := range public.Channels {
		if seen[c.Key] {
			panic("duplicate channel key in config: " + c.Key)
		}
		seen[c.Key] = true
	}
	if !seen[public.DefaultChannel] {
		panic("default_channel is not a configured channel: " + public.DefaultChannel)
	}
}

func mustLoadEnv() Env {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	var e Env
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		panic(fmt.Sprintf("can't read environment: %v", err))
	}
	return e
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	mustValidate(&public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private, Env: mustLoadEnv()}
	if cfg.JwtKey() == "" {
		panic("jwt key is empty: set jwt_key in private.yaml or JWT_SECRET")
	}
	return cfg
}
