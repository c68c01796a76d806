package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"twexport/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. TWEXPORT_CREDENTIALS_PASSWORD.
const EnvPrefix = "TWEXPORT"

// DefaultUserAgent is sent on every dashboard request.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/44.0.2403.157 Safari/537.36"

// OutputType selects the sink.
type OutputType string

const (
	OutputCSV    OutputType = "csv"
	OutputSQLite OutputType = "sqlite"
	OutputXLSX   OutputType = "xlsx"
)

// Ext is the file extension used for the output artifact.
func (t OutputType) Ext() string {
	switch t {
	case OutputSQLite:
		return "db"
	case OutputXLSX:
		return "xlsx"
	}
	return "csv"
}

// Config is the application's configuration model.
// It is built once at startup and passed explicitly to every component.
type Config struct {
	Account     AccountConfig     `yaml:"account"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Export      ExportConfig      `yaml:"export"`
	Poll        PollConfig        `yaml:"poll"`
	Output      OutputConfig      `yaml:"output"`
	HTTP        HTTPConfig        `yaml:"http"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type AccountConfig struct {
	// Login handle
	Username string `yaml:"username" validate:"required"`
	// Account whose analytics are exported; empty means Username
	Analytics string `yaml:"analytics"`
}

type CredentialsConfig struct {
	Password string `yaml:"password" validate:"required"`
}

type ExportConfig struct {
	Days int    `yaml:"days" validate:"min=1"`
	Lang string `yaml:"lang" validate:"required"`
	// The provider expects start_time/end_time reversed relative to their names.
	SwapRangeParams bool     `yaml:"swapRangeParams" split_words:"true"`
	ReadyStatuses   []string `yaml:"readyStatuses" split_words:"true" validate:"min=1,dive,required"`
}

type PollConfig struct {
	Interval    time.Duration `yaml:"interval" validate:"gt=0"`
	Multiplier  float64       `yaml:"multiplier" validate:"gte=1"`
	MaxInterval time.Duration `yaml:"maxInterval" split_words:"true" validate:"gte=0"`
	// 0 means no attempt cap; Timeout still bounds the loop
	MaxAttempts int           `yaml:"maxAttempts" split_words:"true" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
}

type OutputConfig struct {
	Dir  string     `yaml:"dir" validate:"required"`
	Type OutputType `yaml:"type" validate:"oneof=csv sqlite xlsx"`
	// Text encoding for the csv sink, any WHATWG label (utf-8, windows-1252, utf-16le...)
	Encoding string `yaml:"encoding"`
	BOM      bool   `yaml:"bom"`
}

type HTTPConfig struct {
	BaseURL      string        `yaml:"baseURL" split_words:"true" validate:"required,url"`
	AnalyticsURL string        `yaml:"analyticsURL" split_words:"true" validate:"required,url"`
	UserAgent    string        `yaml:"userAgent" split_words:"true"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	RPS          float64       `yaml:"rps" validate:"gt=0"`
	Burst        int           `yaml:"burst" validate:"gte=1"`
	MaxAttempts  int           `yaml:"maxAttempts" split_words:"true" validate:"gte=1"`
	BaseBackoff  time.Duration `yaml:"baseBackoff" split_words:"true" validate:"gte=0"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a sensible default configuration.
func Default() Config {
	wd, _ := os.Getwd()
	if wd == "" {
		wd = "."
	}
	return Config{
		Export: ExportConfig{
			Days:            60,
			Lang:            "en",
			SwapRangeParams: true,
			ReadyStatuses:   append([]string(nil), model.DefaultReadyStatuses...),
		},
		Poll:   PollConfig{Interval: 5 * time.Second, Multiplier: 1, MaxAttempts: 60, Timeout: 10 * time.Minute},
		Output: OutputConfig{Dir: wd, Type: OutputCSV, Encoding: "utf-8"},
		HTTP: HTTPConfig{
			BaseURL:      "https://twitter.com",
			AnalyticsURL: "https://analytics.twitter.com",
			UserAgent:    DefaultUserAgent,
			Timeout:      30 * time.Second,
			RPS:          2,
			Burst:        10,
			MaxAttempts:  5,
			BaseBackoff:  500 * time.Millisecond,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// AnalyticsAccount is the account whose report is exported.
func (c Config) AnalyticsAccount() string {
	if c.Account.Analytics != "" {
		return c.Account.Analytics
	}
	return c.Account.Username
}

// Creds returns the login pair.
func (c Config) Creds() model.Credentials {
	return model.Credentials{Handle: c.Account.Username, Secret: c.Credentials.Password}
}

// ResolveEnv applies TWEXPORT_* overrides on top of c. Unset variables leave fields alone.
func (c *Config) ResolveEnv() error {
	return envconfig.Process(EnvPrefix, c)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the assembled configuration.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Load reads YAML config from path over Default, then applies env overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ResolveEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
// The password is never written.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.Credentials.Password = ""
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
