// Package config loads cadastro settings from a TOML file and CADASTRO_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	rules "github.com/celerix-dev/cadastro/internal/validator"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Validator ValidatorConfig `toml:"validator"`
	Input     InputConfig     `toml:"input"`
	Output    OutputConfig    `toml:"output"`
	Server    ServerConfig    `toml:"server"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `toml:"pretty"`
}

type ValidatorConfig struct {
	StrictCPF     bool `toml:"strict_cpf"`
	NationalPhone bool `toml:"national_phone"`
	Workers       int  `toml:"workers" validate:"gte=0,lte=1024"`
}

type InputConfig struct {
	Delimiter  string `toml:"delimiter" validate:"required"`
	SkipHeader bool   `toml:"skip_header"`
}

type OutputConfig struct {
	Path   string `toml:"path" validate:"required"`
	Format string `toml:"format" validate:"oneof=text json yaml"`
	Echo   bool   `toml:"echo"`
}

type ServerConfig struct {
	Addr         string `toml:"addr" validate:"required"`
	DataDir      string `toml:"data_dir" validate:"required"`
	Persist      bool   `toml:"persist"`
	MaxBodyBytes int64  `toml:"max_body_bytes" validate:"gt=0"`
}

// Default returns the settings used when nothing is configured. They match
// the behaviour of the original batch job: header skipped, results written to
// resultados.txt and echoed to the console.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info", Pretty: true},
		Validator: ValidatorConfig{},
		Input:     InputConfig{Delimiter: ",", SkipHeader: true},
		Output:    OutputConfig{Path: "resultados.txt", Format: "text", Echo: true},
		Server: ServerConfig{
			Addr:         ":7002",
			DataDir:      "./data",
			Persist:      true,
			MaxBodyBytes: 10 << 20,
		},
	}
}

// Load reads the file at path (if non-empty) over the defaults, applies
// environment overrides and validates the result. When path is empty the
// CADASTRO_CONFIG variable is consulted.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CADASTRO_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("config: input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	return nil
}

// Comma is the input delimiter as a rune.
func (c InputConfig) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Options converts the validator section to rule options.
func (c ValidatorConfig) Options() rules.Options {
	return rules.Options{StrictCPF: c.StrictCPF, NationalPhone: c.NationalPhone}
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("CADASTRO_LOG_LEVEL", &cfg.Log.Level)
	str("CADASTRO_OUTPUT_FORMAT", &cfg.Output.Format)
	str("CADASTRO_HTTP_ADDR", &cfg.Server.Addr)
	str("CADASTRO_DATA_DIR", &cfg.Server.DataDir)

	for key, dst := range map[string]*bool{
		"CADASTRO_LOG_PRETTY":     &cfg.Log.Pretty,
		"CADASTRO_STRICT_CPF":     &cfg.Validator.StrictCPF,
		"CADASTRO_NATIONAL_PHONE": &cfg.Validator.NationalPhone,
		"CADASTRO_PERSIST":        &cfg.Server.Persist,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv("CADASTRO_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: CADASTRO_WORKERS: %w", err)
		}
		cfg.Validator.Workers = n
	}
	return nil
}
