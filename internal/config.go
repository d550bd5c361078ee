package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"

	"github.com/starford/gazette/internal/collections"
	"github.com/starford/gazette/internal/markdown"
	"github.com/starford/gazette/internal/site"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig locates the project and tunes the build.
//
// Root is the project directory; DataDir (relative to Root) holds
// paths.json and config.json. Env selects development or production
// behaviour; the SITE_ENV variable overrides it from the command line.
type SiteConfig struct {
	Root           string        `yaml:"root"`
	DataDir        string        `yaml:"data_dir"`
	Env            string        `yaml:"env"`
	PageSize       int           `yaml:"page_size"`
	Language       string        `yaml:"language"`
	HighlightStyle string        `yaml:"highlight_style"`
	Debounce       time.Duration `yaml:"debounce"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.Env, validation.Required, validation.In(site.EnvDevelopment, site.EnvProduction)),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.Language, validation.Required, validation.By(validLanguage)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// Tag returns the parsed collation language. Validate must have passed.
func (c *SiteConfig) Tag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

func validLanguage(value interface{}) error {
	s, _ := value.(string)
	if _, err := language.Parse(s); err != nil {
		return errors.New("must be a BCP 47 language tag")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig guards the content API of the dev server.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// APIToken returns the token the API must check, or "" when auth is off.
func (c *AuthConfig) APIToken() string {
	if !c.AuthEnabled() {
		return ""
	}
	return c.Token
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Root:           ".",
			DataDir:        "src/_data",
			Env:            site.EnvDevelopment,
			PageSize:       collections.DefaultPageSize,
			Language:       "en",
			HighlightStyle: markdown.DefaultStyle,
			Debounce:       300 * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: "./gazette.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
