package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Account struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	DisplayName string `mapstructure:"display_name"`
}

type Storage struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// Environment describes one place the front end can be hosted and which API it
// talks to from there.
type Environment struct {
	Name         string   `mapstructure:"name"`
	Hosts        []string `mapstructure:"hosts"`
	HostSuffixes []string `mapstructure:"host_suffixes"`
	APIBaseURL   string   `mapstructure:"api_base_url"`
	DemoMode     bool     `mapstructure:"demo_mode"`
}

type Config struct {
	Addr         string        `mapstructure:"addr"`
	APIAddr      string        `mapstructure:"api_addr"`
	DiagAddr     string        `mapstructure:"diag_addr"`
	Debug        bool          `mapstructure:"debug"`
	Account      Account       `mapstructure:"account"`
	DemoLatency  time.Duration `mapstructure:"demo_latency"`
	Storage      Storage       `mapstructure:"storage"`
	Environments []Environment `mapstructure:"environments"`
}

func DefaultEnvironments() []Environment {
	return []Environment{
		{
			Name:       "local",
			Hosts:      []string{"localhost", "127.0.0.1", "::1"},
			APIBaseURL: "http://localhost:3000",
		},
		{
			Name:         "static",
			HostSuffixes: []string{".github.io", ".netlify.app", ".vercel.app"},
			DemoMode:     true,
		},
		{
			Name:       "production",
			APIBaseURL: "https://api.example.com",
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("api_addr", ":3000")
	v.SetDefault("diag_addr", ":9999")
	v.SetDefault("debug", false)
	v.SetDefault("account.username", "admin")
	v.SetDefault("account.password", "admin123")
	v.SetDefault("account.display_name", "Blog Admin")
	v.SetDefault("demo_latency", 500*time.Millisecond)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "blog.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_prefix", "blog:")
}

// Load reads configuration from defaults, an optional blog.yaml (or the file
// given by path) and BLOG_* environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/blog")
	}

	v.SetEnvPrefix("blog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Environments) == 0 {
		cfg.Environments = DefaultEnvironments()
	}

	return &cfg, nil
}

// DetectEnvironment maps the host the front end was reached on to one of the
// configured environments. Exact host matches win over suffix matches; the last
// environment is the fallback.
func (c *Config) DetectEnvironment(host string) Environment {
	envs := c.Environments
	if len(envs) == 0 {
		envs = DefaultEnvironments()
	}

	hostname := strings.ToLower(host)
	if h, _, err := net.SplitHostPort(hostname); err == nil {
		hostname = h
	}
	hostname = strings.Trim(hostname, "[]")

	for _, env := range envs {
		for _, h := range env.Hosts {
			if strings.EqualFold(h, hostname) {
				return env
			}
		}
	}
	for _, env := range envs {
		for _, suffix := range env.HostSuffixes {
			if strings.HasSuffix(hostname, strings.ToLower(suffix)) {
				return env
			}
		}
	}

	return envs[len(envs)-1]
}
