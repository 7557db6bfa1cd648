// Package config loads brochuregen settings. Sources are layered with
// viper, highest precedence first: command-line flags bound with BindFlag,
// environment variables, a .env file in the working directory, the YAML
// config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/brochuregen/core/brochure"
	"github.com/gaurav-prasanna/brochuregen/core/fetch"
	"github.com/gaurav-prasanna/brochuregen/core/llm"
)

// Environment variables with names of their own. Every other key is also
// read from BROCHURE_<KEY>, e.g. BROCHURE_SERVER_ADDR.
const (
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvBaseURL      = "OPENAI_BASE_URL"
	EnvModel        = "BROCHURE_MODEL"
	EnvFetchTimeout = "BROCHURE_FETCH_TIMEOUT_SECONDS"
	EnvLogLevel     = "BROCHURE_LOG_LEVEL"

	envPrefix = "BROCHURE"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Setting keys, as used in the YAML file and by BindFlag.
const (
	KeyAPIKey       = "openai.api_key"
	KeyBaseURL      = "openai.base_url"
	KeyModel        = "openai.model"
	KeyMaxTokens    = "openai.max_tokens"
	KeyLLMTimeout   = "openai.timeout_seconds"
	KeyFetchTimeout = "fetch.timeout_seconds"
	KeyUserAgent    = "fetch.user_agent"
	KeyServerAddr   = "server.addr"
	KeyOutputDir    = "output_dir"
	KeyStrictFetch  = "strict_fetch"
	KeyLogLevel     = "log_level"
)

const defaultServerAddr = ":8080"

var namedEnv = map[string]string{
	KeyAPIKey:       EnvAPIKey,
	KeyBaseURL:      EnvBaseURL,
	KeyModel:        EnvModel,
	KeyFetchTimeout: EnvFetchTimeout,
	KeyLogLevel:     EnvLogLevel,
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int64  `mapstructure:"max_tokens" yaml:"max_tokens"`
	// TimeoutSeconds bounds one completion call; 0 leaves the SDK default.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type Config struct {
	OpenAI      OpenAIConfig `mapstructure:"openai" yaml:"openai"`
	Fetch       FetchConfig  `mapstructure:"fetch" yaml:"fetch"`
	Server      ServerConfig `mapstructure:"server" yaml:"server"`
	OutputDir   string       `mapstructure:"output_dir" yaml:"output_dir"`
	StrictFetch bool         `mapstructure:"strict_fetch" yaml:"strict_fetch"`
	LogLevel    string       `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Model:     llm.DefaultModel,
			MaxTokens: llm.DefaultMaxTokens,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: int(fetch.DefaultTimeout / time.Second),
			UserAgent:      fetch.DefaultUserAgent,
		},
		Server:   ServerConfig{Addr: defaultServerAddr},
		LogLevel: "info",
	}
}

// Loader resolves a Config from all sources. Flags are bound once, before
// Load.
type Loader struct {
	v      *viper.Viper
	dotEnv string
}

// NewLoader creates a Loader with defaults and environment bindings set.
func NewLoader() *Loader {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyAPIKey, d.OpenAI.APIKey)
	v.SetDefault(KeyBaseURL, d.OpenAI.BaseURL)
	v.SetDefault(KeyModel, d.OpenAI.Model)
	v.SetDefault(KeyMaxTokens, d.OpenAI.MaxTokens)
	v.SetDefault(KeyLLMTimeout, d.OpenAI.TimeoutSeconds)
	v.SetDefault(KeyFetchTimeout, d.Fetch.TimeoutSeconds)
	v.SetDefault(KeyUserAgent, d.Fetch.UserAgent)
	v.SetDefault(KeyServerAddr, d.Server.Addr)
	v.SetDefault(KeyOutputDir, d.OutputDir)
	v.SetDefault(KeyStrictFetch, d.StrictFetch)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range namedEnv {
		// Both names stay valid: the named variable and BROCHURE_<KEY>.
		_ = v.BindEnv(key, name, autoEnvName(key))
	}

	return &Loader{v: v, dotEnv: DotEnvFile}
}

// BindFlag lets a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: no such flag", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads path and the .env file over the defaults. An empty path, or
// files that do not exist, are skipped.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil && !notFound(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := l.mergeDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Load is NewLoader().Load(path) for callers without flags.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// mergeDotEnv layers KEY=value pairs from the .env file above the YAML
// file. Real environment variables still win over it.
func (l *Loader) mergeDotEnv() error {
	if l.dotEnv == "" {
		return nil
	}

	dot := viper.New()
	dot.SetConfigFile(l.dotEnv)
	dot.SetConfigType("env")
	if err := dot.ReadInConfig(); err != nil {
		if notFound(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", l.dotEnv, err)
	}

	merged := map[string]any{}
	for _, key := range l.v.AllKeys() {
		for _, name := range envNames(key) {
			// The env parser lower-cases variable names.
			if name := strings.ToLower(name); dot.IsSet(name) {
				setNested(merged, key, dot.Get(name))
				break
			}
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return l.v.MergeConfigMap(merged)
}

func notFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &nf)
}

func envNames(key string) []string {
	if name, ok := namedEnv[key]; ok {
		return []string{name, autoEnvName(key)}
	}
	return []string{autoEnvName(key)}
}

func autoEnvName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// setNested stores value under a dotted key as nested maps.
func setNested(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// YAML renders the effective settings with the API key masked.
func (c *Config) YAML() ([]byte, error) {
	shown := *c
	if key := shown.OpenAI.APIKey; key != "" {
		shown.OpenAI.APIKey = maskKey(key)
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// LLM returns the completion client settings.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		APIKey:    c.OpenAI.APIKey,
		BaseURL:   c.OpenAI.BaseURL,
		Model:     c.OpenAI.Model,
		MaxTokens: c.OpenAI.MaxTokens,
		Timeout:   time.Duration(c.OpenAI.TimeoutSeconds) * time.Second,
	}
}

// FetchTimeout returns the page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Brochure returns the generator settings.
func (c *Config) Brochure() brochure.Config {
	return brochure.Config{
		LLM:          c.LLM(),
		FetchTimeout: c.FetchTimeout(),
		UserAgent:    c.Fetch.UserAgent,
		StrictFetch:  c.StrictFetch,
	}
}
