// Package config loads and validates profilescrape configuration.
//
// Configuration is resolved once by the command layer (flags, environment,
// .env file, optional YAML file) and then passed down explicitly; nothing
// below cmd/ reads the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smithp17/AutoDialer/internal/profile"
)

// ErrConfiguration marks every configuration failure. Check with errors.Is.
var ErrConfiguration = errors.New("configuration error")

// EnvPrefix prefixes every environment override (PROFILESCRAPE_OUTPUT_PATH, ...).
const EnvPrefix = "PROFILESCRAPE"

// Settle modes.
const (
	SettlePoll  = "poll"
	SettleFixed = "fixed"
)

// Credentials are the account identifier and secret used to log in.
type Credentials struct {
	Email    string `mapstructure:"email" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

// Validate reports missing credentials as a *ValidationError.
func (c Credentials) Validate() error {
	return translate(validate.Struct(c), "credentials.")
}

// Config is the fully resolved configuration for a run.
type Config struct {
	Credentials Credentials   `mapstructure:"credentials"`
	Usernames   []string      `mapstructure:"usernames" validate:"min=1,dive,required"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Output      OutputConfig  `mapstructure:"output"`
	Browser     BrowserConfig `mapstructure:"browser"`
	Settle      SettleConfig  `mapstructure:"settle"`
	Pacing      PacingConfig  `mapstructure:"pacing"`
	About       AboutConfig   `mapstructure:"about"`
	Server      ServerConfig  `mapstructure:"server"`
}

// OutputConfig controls the run artifact.
type OutputConfig struct {
	Path   string `mapstructure:"path" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=json jsonl yaml"`
	Indent string `mapstructure:"indent"`
}

// BrowserConfig controls the Chrome instance.
type BrowserConfig struct {
	Headless   bool   `mapstructure:"headless"`
	Stealth    bool   `mapstructure:"stealth"`
	ChromePath string `mapstructure:"chrome_path"`
	UserAgent  string `mapstructure:"user_agent"`
	DebugDir   string `mapstructure:"debug_dir"`
}

// SettleConfig controls how the session waits after navigation and
// interaction. In poll mode it polls the page for readiness and fails with a
// timeout error after Timeout; in fixed mode it sleeps the per-step delay.
type SettleConfig struct {
	Mode        string        `mapstructure:"mode" validate:"oneof=poll fixed"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	FormDelay   time.Duration `mapstructure:"form_delay" validate:"gte=0"`
	LoginDelay  time.Duration `mapstructure:"login_delay" validate:"gte=0"`
	PageDelay   time.Duration `mapstructure:"page_delay" validate:"gte=0"`
	ExpandDelay time.Duration `mapstructure:"expand_delay" validate:"gte=0"`
}

// PacingConfig controls the gap between consecutive profile fetches.
type PacingConfig struct {
	Delay time.Duration `mapstructure:"delay" validate:"gte=0"`
}

// AboutConfig bounds the last-resort about heuristic.
type AboutConfig struct {
	MaxRunes int `mapstructure:"max_runes" validate:"gt=0"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	Dir  string `mapstructure:"dir" validate:"required"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("usernames", profile.DefaultUsernames)
	v.SetDefault("base_url", profile.DefaultBaseURL)

	v.SetDefault("output.path", "scraped_profiles.json")
	v.SetDefault("output.format", "json")
	v.SetDefault("output.indent", "    ")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.debug_dir", "")

	v.SetDefault("settle.mode", SettlePoll)
	v.SetDefault("settle.timeout", 20*time.Second)
	v.SetDefault("settle.form_delay", 2*time.Second)
	v.SetDefault("settle.login_delay", 5*time.Second)
	v.SetDefault("settle.page_delay", 4*time.Second)
	v.SetDefault("settle.expand_delay", 2*time.Second)

	v.SetDefault("pacing.delay", 3*time.Second)
	v.SetDefault("about.max_runes", 500)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.dir", "tmp/scrapes")
}

// BindEnv wires environment variables into v. EMAIL and PASSWORD are
// accepted unprefixed for compatibility with existing .env files.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("credentials.email", EnvPrefix+"_EMAIL", "EMAIL")
	_ = v.BindEnv("credentials.password", EnvPrefix+"_PASSWORD", "PASSWORD")
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrConfiguration, path, err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field of c.
func (c *Config) Validate() error {
	return translate(validate.Struct(c), "")
}

// ValidationError lists the configuration keys that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f
		if env, ok := envNames[f]; ok {
			names[i] = f + " (" + env + ")"
		}
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrConfiguration }

// MissingCredentials reports whether any credential key is among the failures.
func (e *ValidationError) MissingCredentials() bool {
	for _, f := range e.Fields {
		if _, ok := envNames[f]; ok {
			return true
		}
	}
	return false
}

// Remediation is the user-facing hint printed with the error.
func (e *ValidationError) Remediation() string {
	if !e.MissingCredentials() {
		return "check the configuration file, flags and " + EnvPrefix + "_* environment variables"
	}
	return "make sure your environment or .env file contains:\n" +
		"EMAIL=your_email@example.com\n" +
		"PASSWORD=your_password"
}

var envNames = map[string]string{
	"credentials.email":    "EMAIL",
	"credentials.password": "PASSWORD",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// translate converts validator output into a *ValidationError keyed by
// config path (credentials.email, settle.mode, ...).
func translate(err error, prefix string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		fields = append(fields, prefix+ns)
	}
	sort.Strings(fields)
	return &ValidationError{Fields: fields}
}
