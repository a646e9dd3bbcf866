// Package config loads configuration for the manna binaries from the
// environment, optionally overlaid by a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Client configures the chat TUI.
type Client struct {
	ChatURL        string `env:"MANNA_CHAT_URL" envDefault:"http://localhost:8080/functions/v1/chat" yaml:"chat_url"`
	AuthURL        string `env:"MANNA_AUTH_URL" envDefault:"http://localhost:8080" yaml:"auth_url"`
	AnonKey        string `env:"MANNA_ANON_KEY" yaml:"anon_key"`
	Token          string `env:"MANNA_TOKEN" yaml:"token"`
	Email          string `env:"MANNA_EMAIL" yaml:"email"`
	TranscriptPath string `env:"MANNA_TRANSCRIPT" yaml:"transcript"`
	LogFile        string `env:"MANNA_LOG_FILE" envDefault:"manna.log" yaml:"log_file"`
	LogLevel       string `env:"MANNA_LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	LogFormat      string `env:"MANNA_LOG_FORMAT" envDefault:"json" yaml:"log_format"`
}

// Gateway configures the gateway server.
type Gateway struct {
	Addr            string        `env:"MANNA_GATEWAY_ADDR" envDefault:":8080" yaml:"addr"`
	LogLevel        string        `env:"MANNA_LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	LogFormat       string        `env:"MANNA_LOG_FORMAT" envDefault:"console" yaml:"log_format"`
	ShutdownTimeout time.Duration `env:"MANNA_SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdown_timeout"`

	JWTSecret string `env:"MANNA_JWT_SECRET" yaml:"jwt_secret"`

	// Upstream selects the completer: "aigateway" or "gemini".
	Upstream     string `env:"MANNA_UPSTREAM" envDefault:"aigateway" yaml:"upstream"`
	Model        string `env:"MANNA_MODEL" yaml:"model"`
	AIGatewayURL string `env:"MANNA_AI_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1" yaml:"ai_gateway_url"`
	AIGatewayKey string `env:"LOVABLE_API_KEY" yaml:"ai_gateway_key"`
	GeminiAPIKey string `env:"GEMINI_API_KEY" yaml:"gemini_api_key"`

	DBPath            string `env:"MANNA_DB_PATH" envDefault:"manna.db" yaml:"db_path"`
	PlansDir          string `env:"MANNA_PLANS_DIR" envDefault:"plans" yaml:"plans_dir"`
	PlansPattern      string `env:"MANNA_PLANS_PATTERN" envDefault:"**/*.yaml" yaml:"plans_pattern"`
	RetentionSchedule string `env:"MANNA_RETENTION_SCHEDULE" envDefault:"0 3 * * *" yaml:"retention_schedule"`
}

// LoadClient reads the client configuration. environ overrides the process
// environment when non-nil. path names an optional YAML file whose keys
// take precedence over the environment.
func LoadClient(path string, environ map[string]string) (*Client, error) {
	cfg := &Client{}
	if err := load(cfg, path, environ); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.ChatURL) == "" {
		return nil, errors.New("config: chat_url is required")
	}
	return cfg, nil
}

// LoadGateway reads the gateway configuration the same way as LoadClient.
func LoadGateway(path string, environ map[string]string) (*Gateway, error) {
	cfg := &Gateway{}
	if err := load(cfg, path, environ); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Gateway) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: jwt_secret is required")
	}
	switch c.Upstream {
	case "aigateway":
		if c.AIGatewayKey == "" {
			return errors.New("config: ai_gateway_key is required for the aigateway upstream")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("config: gemini_api_key is required for the gemini upstream")
		}
	default:
		return fmt.Errorf("config: unknown upstream %q", c.Upstream)
	}
	return nil
}

func load(cfg any, path string, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
