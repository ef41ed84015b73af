// Package config provides configuration loading for remapd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gobd/remap"
	"github.com/Gobd/remap/transform"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Authorization modes for pricing visibility.
const (
	AuthAllow  = "allow"
	AuthDeny   = "deny"
	AuthHeader = "header"
)

// Config represents the complete remapd configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Locale   LocaleConfig   `json:"locale" yaml:"locale"`
	Currency CurrencyConfig `json:"currency" yaml:"currency"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	// Defaults are the lowest precedence transform parameters for every rule.
	Defaults transform.Params `json:"defaults" yaml:"defaults"`
	// Overrides are the highest precedence parameters, keyed by transform name.
	Overrides map[string]transform.Params `json:"overrides" yaml:"overrides"`
	APIs      []APIConfig                 `json:"apis" yaml:"apis"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `json:"addr" yaml:"addr"`
	// MaxBodyBytes limits request bodies (default: 1 MiB)
	MaxBodyBytes int64 `json:"maxBodyBytes" yaml:"maxBodyBytes"`
	// ReadTimeout bounds reading a request (default: 10s)
	ReadTimeout time.Duration `json:"readTimeout" yaml:"readTimeout"`
	// WriteTimeout bounds writing a response (default: 30s)
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

// LocaleConfig is the process-wide formatting locale
type LocaleConfig struct {
	Language string `json:"language" yaml:"language"`
	Region   string `json:"region" yaml:"region"`
}

// CurrencyConfig configures the currency formatter
type CurrencyConfig struct {
	// Default replaces unknown currency codes (default: USD)
	Default string `json:"default" yaml:"default"`
	// Permission required to see prices (default: view_pricing)
	Permission string `json:"permission" yaml:"permission"`
}

// AuthConfig selects how pricing permissions are determined per request
type AuthConfig struct {
	// Mode is allow, deny or header
	Mode string `json:"mode" yaml:"mode"`
	// Header carries a comma separated permission list when Mode is header
	Header string `json:"header" yaml:"header"`
}

// APIConfig binds a rule set to a route
type APIConfig struct {
	Name  string       `json:"name" yaml:"name"`
	Route string       `json:"route" yaml:"route"`
	Rules []remap.Rule `json:"rules" yaml:"rules"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Locale: LocaleConfig{
			Language: "en",
			Region:   "us",
		},
		Currency: CurrencyConfig{
			Default:    "USD",
			Permission: "view_pricing",
		},
		Auth: AuthConfig{
			Mode:   AuthAllow,
			Header: "X-Permissions",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	errs := validation.Errors{}
	errs["server"] = validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Addr, validation.Required),
		validation.Field(&c.Server.MaxBodyBytes, validation.Min(int64(1))),
	)
	errs["locale"] = validation.ValidateStruct(&c.Locale,
		validation.Field(&c.Locale.Language, validation.Required, validation.Length(2, 3)),
		validation.Field(&c.Locale.Region, validation.Length(2, 3)),
	)
	errs["currency"] = validation.ValidateStruct(&c.Currency,
		validation.Field(&c.Currency.Default, validation.Required, is.CurrencyCode),
	)
	errs["auth"] = validation.ValidateStruct(&c.Auth,
		validation.Field(&c.Auth.Mode, validation.Required, validation.In(AuthAllow, AuthDeny, AuthHeader)),
		validation.Field(&c.Auth.Header, validation.When(c.Auth.Mode == AuthHeader, validation.Required)),
	)

	seen := map[string]bool{}
	for i, api := range c.APIs {
		key := fmt.Sprintf("apis.%d", i)
		if err := api.Validate(); err != nil {
			errs[key] = err
			continue
		}
		if seen[api.Route] {
			errs[key] = fmt.Errorf("duplicate route %s", api.Route)
		}
		seen[api.Route] = true
	}
	return errs.Filter()
}

// Validate checks one API binding
func (a APIConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Route, validation.Required, validation.By(routePath)),
		validation.Field(&a.Rules),
	)
}

func routePath(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") {
		return errors.New("must start with /")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.MaxBodyBytes != 0 {
		c.Server.MaxBodyBytes = other.Server.MaxBodyBytes
	}
	if other.Server.ReadTimeout != 0 {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}
	if other.Server.WriteTimeout != 0 {
		c.Server.WriteTimeout = other.Server.WriteTimeout
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	// Locale
	if other.Locale.Language != "" {
		c.Locale.Language = other.Locale.Language
		c.Locale.Region = other.Locale.Region
	}

	// Currency
	if other.Currency.Default != "" {
		c.Currency.Default = other.Currency.Default
	}
	if other.Currency.Permission != "" {
		c.Currency.Permission = other.Currency.Permission
	}

	// Auth
	if other.Auth.Mode != "" {
		c.Auth.Mode = other.Auth.Mode
	}
	if other.Auth.Header != "" {
		c.Auth.Header = other.Auth.Header
	}

	// Parameters merge key by key
	if len(other.Defaults) > 0 {
		c.Defaults = transform.Merge(c.Defaults, other.Defaults)
	}
	for name, params := range other.Overrides {
		if c.Overrides == nil {
			c.Overrides = map[string]transform.Params{}
		}
		c.Overrides[name] = transform.Merge(c.Overrides[name], params)
	}

	// APIs replace by name
	for _, api := range other.APIs {
		replaced := false
		for i := range c.APIs {
			if c.APIs[i].Name == api.Name {
				c.APIs[i] = api
				replaced = true
				break
			}
		}
		if !replaced {
			c.APIs = append(c.APIs, api)
		}
	}
}
