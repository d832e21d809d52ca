package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/hanpama/gqladmin/internal/overlay"
	"github.com/hanpama/gqladmin/internal/schema"
)

const ConfigFile = "gqladmin.toml"

// Environment variables that override file settings.
const (
	EnvAddr         = "GQLADMIN_ADDR"
	EnvSchemaFile   = "GQLADMIN_SCHEMA_FILE"
	EnvRulesFile    = "GQLADMIN_RULES_FILE"
	EnvOTelEndpoint = "GQLADMIN_OTEL_ENDPOINT"
)

var (
	// ErrMissingSchema indicates neither an inline schema nor a schema file
	// was configured.
	ErrMissingSchema = errors.New("config: schema is required")
	// ErrUnsupportedRules indicates a rules file with an unknown extension.
	ErrUnsupportedRules = errors.New("config: rules file must be .json, .yaml or .yml")
)

// Config holds the gqladmin configuration.
type Config struct {
	// Schema is inline SDL. It takes precedence over SchemaFile.
	Schema     string       `toml:"schema,omitempty"`
	SchemaFile string       `toml:"schema_file,omitempty"`
	RulesFile  string       `toml:"rules_file,omitempty"`
	Exclude    []string     `toml:"exclude,omitempty"`
	Server     ServerConfig `toml:"server"`
	OTel       OTelConfig   `toml:"otel"`

	// dir resolves relative paths; it is the directory of the loaded file.
	dir string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	Path        string   `toml:"path"`
	Pretty      bool     `toml:"pretty,omitempty"`
	Timeout     string   `toml:"timeout,omitempty"`
	CORSOrigins []string `toml:"cors_origins,omitempty"`
}

// OTelConfig configures trace export. An empty endpoint disables it.
type OTelConfig struct {
	Endpoint string `toml:"endpoint,omitempty"`
	Service  string `toml:"service"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			Path:    "/admin/shape",
			Timeout: "10s",
		},
		OTel: OTelConfig{Service: "gqladmin"},
	}
}

// Load reads configuration from path. Returns default config if the file
// doesn't exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for values explicitly left empty
	def := Default()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = def.Server.Path
	}
	if cfg.OTel.Service == "" {
		cfg.OTel.Service = def.OTel.Service
	}
	return cfg, nil
}

// LoadDotenv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from GQLADMIN_* environment variables.
// Paths from the environment are relative to the working directory.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvSchemaFile); v != "" {
		c.Schema = ""
		c.SchemaFile = absPath(v)
	}
	if v := os.Getenv(EnvRulesFile); v != "" {
		c.RulesFile = absPath(v)
	}
	if v := os.Getenv(EnvOTelEndpoint); v != "" {
		c.OTel.Endpoint = v
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Violation describes one invalid setting.
type Violation struct {
	Field   string
	Message string
	Err     error
}

// ValidationError lists every invalid setting found by Validate.
type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "invalid configuration:\n"
	for _, v := range e {
		msg += "- " + v.Field + ": " + v.Message + "\n"
	}
	return msg
}

// Unwrap exposes the sentinel errors of the violations to errors.Is.
func (e ValidationError) Unwrap() []error {
	var errs []error
	for _, v := range e {
		if v.Err != nil {
			errs = append(errs, v.Err)
		}
	}
	return errs
}

// Validate checks the configuration. It returns a ValidationError or nil.
func (c *Config) Validate() error {
	var errs ValidationError
	add := func(field, msg string, err error) {
		errs = append(errs, &Violation{Field: field, Message: msg, Err: err})
	}

	if strings.TrimSpace(c.Schema) == "" && c.SchemaFile == "" {
		add("schema", "set schema or schema_file", ErrMissingSchema)
	}
	if c.RulesFile != "" {
		if _, err := rulesDecoder(c.RulesFile); err != nil {
			add("rules_file", fmt.Sprintf("%q has an unsupported extension", c.RulesFile), err)
		}
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		add("server.path", fmt.Sprintf("%q must start with /", c.Server.Path), nil)
	}
	if _, err := c.Timeout(); err != nil {
		add("server.timeout", err.Error(), nil)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Timeout parses the server timeout. An empty value means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Server.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", d)
	}
	return d, nil
}

// LoadSchema parses the inline schema or reads SchemaFile.
func (c *Config) LoadSchema() (*schema.Document, error) {
	if strings.TrimSpace(c.Schema) != "" {
		return schema.Parse(ConfigFile, c.Schema)
	}
	if c.SchemaFile == "" {
		return nil, ErrMissingSchema
	}
	return schema.Load(c.resolve(c.SchemaFile))
}

// LoadRules reads RulesFile. Without a rules file the rules are Null.
func (c *Config) LoadRules() (overlay.Value, error) {
	if c.RulesFile == "" {
		return overlay.NullValue(), nil
	}
	return ReadRules(c.resolve(c.RulesFile))
}

// ReadRules decodes a JSON or YAML rules file, chosen by extension.
func ReadRules(path string) (overlay.Value, error) {
	decode, err := rulesDecoder(path)
	if err != nil {
		return overlay.Value{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return overlay.Value{}, fmt.Errorf("read rules: %w", err)
	}
	v, err := decode(data)
	if err != nil {
		return overlay.Value{}, fmt.Errorf("decode rules %s: %w", path, err)
	}
	return v, nil
}

func rulesDecoder(path string) (func([]byte) (overlay.Value, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return overlay.ParseJSON, nil
	case ".yaml", ".yml":
		return overlay.ParseYAML, nil
	}
	return nil, ErrUnsupportedRules
}
