// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface is the read view of the configuration handed to components, plus the
// few setters CLI flags need.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Autofill() AutofillConfig
	Browser() BrowserConfig

	// Autofill Setters
	SetAutofillForceOverwrite(bool)
	SetAutofillCategory(string)
	SetAutofillVariable(name, value string)

	// Browser Setters
	SetBrowserHeadless(bool)
}

// Config is the root of the YAML document and of the AUTOFILL_ environment keys.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	EngineCfg   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	AutofillCfg AutofillConfig `mapstructure:"autofill" yaml:"autofill"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
}

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig     { return c.EngineCfg }
func (c *Config) Autofill() AutofillConfig { return c.AutofillCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }

func (c *Config) SetAutofillForceOverwrite(b bool) { c.AutofillCfg.ForceOverwrite = b }
func (c *Config) SetAutofillCategory(s string)     { c.AutofillCfg.Category = s }
func (c *Config) SetAutofillVariable(name, value string) {
	if c.AutofillCfg.Variables == nil {
		c.AutofillCfg.Variables = make(map[string]string)
	}
	c.AutofillCfg.Variables[name] = value
}

func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }

// LoggerConfig configures the process logger and its optional rotated log file.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names a terminal color per level: black, red, green, yellow, blue,
// magenta, cyan or white. An empty name leaves the level uncolored.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig tunes field identification and filling.
type EngineConfig struct {
	// EventDelay is the pause before each emitted interaction event.
	EventDelay time.Duration `mapstructure:"event_delay" yaml:"event_delay"`
	// RegexTimeout bounds a single pattern match.
	RegexTimeout     time.Duration `mapstructure:"regex_timeout" yaml:"regex_timeout"`
	ReservedIDPrefix string        `mapstructure:"reserved_id_prefix" yaml:"reserved_id_prefix"`
	DynamicIDHosts   []string      `mapstructure:"dynamic_id_hosts" yaml:"dynamic_id_hosts"`
	DetectPlatforms  bool          `mapstructure:"detect_platforms" yaml:"detect_platforms"`
}

// AutofillConfig holds per-pass defaults that CLI flags may override.
type AutofillConfig struct {
	RulesFile      string `mapstructure:"rules_file" yaml:"rules_file"`
	ForceOverwrite bool   `mapstructure:"force_overwrite" yaml:"force_overwrite"`
	Category       string `mapstructure:"category" yaml:"category"`
	// Variables feed {name} references. Keys are matched case-insensitively because
	// viper folds map keys to lower case.
	Variables map[string]string `mapstructure:"variables" yaml:"variables"`
}

// BrowserConfig configures the live Chrome session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	ExecPath          string        `mapstructure:"exec_path" yaml:"exec_path"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// SettleTime is waited after navigation before the page is snapshotted.
	SettleTime time.Duration `mapstructure:"settle_time" yaml:"settle_time"`
}

// NewDefaultConfig returns the configuration produced by SetDefaults alone.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}
	return &cfg
}

// SetDefaults registers every key with its default so environment overrides resolve.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "autofill")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.event_delay", "5ms")
	v.SetDefault("engine.regex_timeout", "100ms")
	v.SetDefault("engine.reserved_id_prefix", "autofill-")
	v.SetDefault("engine.dynamic_id_hosts", []string{"docs.google.com", "forms.office.com"})
	v.SetDefault("engine.detect_platforms", true)

	// -- Autofill --
	v.SetDefault("autofill.force_overwrite", false)
	v.SetDefault("autofill.category", "")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.settle_time", "500ms")
}

// NewConfigFromViper decodes and validates v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LoggerCfg.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.LoggerCfg.Format)
	}
	if c.EngineCfg.EventDelay < 0 {
		return fmt.Errorf("engine.event_delay must not be negative")
	}
	if c.EngineCfg.RegexTimeout <= 0 {
		return fmt.Errorf("engine.regex_timeout must be a positive duration")
	}
	if c.BrowserCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if c.BrowserCfg.SettleTime < 0 {
		return fmt.Errorf("browser.settle_time must not be negative")
	}
	return nil
}
