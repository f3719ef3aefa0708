// Package config assembles the service configuration from defaults, an
// optional JSON or TOML config file, environment variables and CLI flags,
// in that order of increasing priority, and validates the result.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting of the hours tracker service.
type Config struct {
	// RunAddr is the HTTP listen address.
	RunAddr string `env:"SERVER_ADDRESS" validate:"hostname_port"`

	// GRPCAddr is the gRPC listen address. Empty disables the gRPC server.
	GRPCAddr string `env:"GRPC_SERVER_ADDRESS" validate:"omitempty,hostname_port"`

	LogLevel string `env:"LOG_LEVEL" validate:"loglevel"`

	// AllowedOrigin is the only origin allowed to make cross-origin requests.
	AllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" validate:"url"`

	// CORSMaxAge is how long, in seconds, browsers may cache preflight results.
	CORSMaxAge int `env:"CORS_MAX_AGE" validate:"gte=0"`

	// TrustedSubnet (CIDR) gates the internal stats endpoint.
	TrustedSubnet string `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// ConfigFile is a path to a .json or .toml file with the settings above.
	ConfigFile string `env:"CONFIG"`
}

// fileConfig uses pointers so a value present in the file, zero included,
// can be told apart from an absent one.
type fileConfig struct {
	RunAddr         *string `json:"server_address" toml:"server_address"`
	GRPCAddr        *string `json:"grpc_server_address" toml:"grpc_server_address"`
	LogLevel        *string `json:"log_level" toml:"log_level"`
	AllowedOrigin   *string `json:"cors_allowed_origin" toml:"cors_allowed_origin"`
	CORSMaxAge      *int    `json:"cors_max_age" toml:"cors_max_age"`
	TrustedSubnet   *string `json:"trusted_subnet" toml:"trusted_subnet"`
	ShutdownTimeout *string `json:"shutdown_timeout" toml:"shutdown_timeout"`
}

// setFields holds the env names of the Config fields a source has set.
type setFields map[string]bool

var defaultConfig = Config{
	RunAddr:         "127.0.0.1:5012",
	GRPCAddr:        "",
	LogLevel:        "info",
	AllowedOrigin:   "http://localhost:5173",
	CORSMaxAge:      3600,
	TrustedSubnet:   "",
	ShutdownTimeout: 10 * time.Second,
	ConfigFile:      "",
}

var allowedLogLevels = map[string]bool{
	"debug":  true,
	"info":   true,
	"warn":   true,
	"error":  true,
	"dpanic": true,
	"panic":  true,
	"fatal":  true,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return allowedLogLevels[fieldLevel.Field().String()]
}

func (values *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing makes New ignore os.Args. Used by tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

// override copies into values every field that source has set, zero values
// included.
func override(values *Config, source Config, set setFields) {
	if set["SERVER_ADDRESS"] {
		values.RunAddr = source.RunAddr
	}

	if set["GRPC_SERVER_ADDRESS"] {
		values.GRPCAddr = source.GRPCAddr
	}

	if set["LOG_LEVEL"] {
		values.LogLevel = source.LogLevel
	}

	if set["CORS_ALLOWED_ORIGIN"] {
		values.AllowedOrigin = source.AllowedOrigin
	}

	if set["CORS_MAX_AGE"] {
		values.CORSMaxAge = source.CORSMaxAge
	}

	if set["TRUSTED_SUBNET"] {
		values.TrustedSubnet = source.TrustedSubnet
	}

	if set["SHUTDOWN_TIMEOUT"] {
		values.ShutdownTimeout = source.ShutdownTimeout
	}

	if set["CONFIG"] {
		values.ConfigFile = source.ConfigFile
	}
}

func loadFile(fileName string) (Config, setFields, error) {
	var fromFile fileConfig

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".toml":
		if _, err := toml.DecodeFile(fileName, &fromFile); err != nil {
			return Config{}, nil,
				fmt.Errorf("in internal/config/config.go/loadFile(): error while `toml.DecodeFile()` calling: %w", err)
		}
	default:
		data, err := os.ReadFile(fileName)
		if err != nil {
			return Config{}, nil,
				fmt.Errorf("in internal/config/config.go/loadFile(): error while `os.ReadFile()` calling: %w", err)
		}
		if err := json.Unmarshal(data, &fromFile); err != nil {
			return Config{}, nil,
				fmt.Errorf("in internal/config/config.go/loadFile(): error while `json.Unmarshal()` calling: %w", err)
		}
	}

	result := Config{}
	set := setFields{}

	if fromFile.RunAddr != nil {
		result.RunAddr = *fromFile.RunAddr
		set["SERVER_ADDRESS"] = true
	}
	if fromFile.GRPCAddr != nil {
		result.GRPCAddr = *fromFile.GRPCAddr
		set["GRPC_SERVER_ADDRESS"] = true
	}
	if fromFile.LogLevel != nil {
		result.LogLevel = *fromFile.LogLevel
		set["LOG_LEVEL"] = true
	}
	if fromFile.AllowedOrigin != nil {
		result.AllowedOrigin = *fromFile.AllowedOrigin
		set["CORS_ALLOWED_ORIGIN"] = true
	}
	if fromFile.CORSMaxAge != nil {
		result.CORSMaxAge = *fromFile.CORSMaxAge
		set["CORS_MAX_AGE"] = true
	}
	if fromFile.TrustedSubnet != nil {
		result.TrustedSubnet = *fromFile.TrustedSubnet
		set["TRUSTED_SUBNET"] = true
	}
	if fromFile.ShutdownTimeout != nil {
		timeout, err := time.ParseDuration(*fromFile.ShutdownTimeout)
		if err != nil {
			return Config{}, nil,
				fmt.Errorf("in internal/config/config.go/loadFile(): error while `time.ParseDuration()` calling: %w", err)
		}
		result.ShutdownTimeout = timeout
		set["SHUTDOWN_TIMEOUT"] = true
	}

	return result, set, nil
}

// configFileFromArgs finds -c / --c before the full flag set is parsed, so the
// file can be applied underneath the environment and the rest of the flags.
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "-c" || arg == "--c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		case strings.HasPrefix(arg, "--c="):
			return strings.TrimPrefix(arg, "--c=")
		}
	}

	return ""
}

func (values *Config) parseFlags(args []string) error {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run the HTTP server")
	flagSet.StringVar(&values.GRPCAddr, "g", values.GRPCAddr, "address and port to run the gRPC server, empty disables it")
	flagSet.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
	flagSet.StringVar(&values.AllowedOrigin, "o", values.AllowedOrigin, "origin allowed to make cross-origin requests")
	flagSet.IntVar(&values.CORSMaxAge, "m", values.CORSMaxAge, "max age of the CORS preflight response, in seconds")
	flagSet.StringVar(&values.TrustedSubnet, "t", values.TrustedSubnet, "trusted subnet (CIDR) for the internal stats endpoint")
	flagSet.StringVar(&values.ConfigFile, "c", values.ConfigFile, "JSON or TOML config file")

	return flagSet.Parse(args)
}

// New builds the configuration: defaults, then the config file, then the
// environment (and a .env file if present), then CLI flags.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var valuesFromEnv Config
	setByEnv := setFields{}
	err = env.Parse(&valuesFromEnv, env.Options{
		OnSet: func(tag string, value interface{}, isDefault bool) {
			if !isDefault && value != "" {
				setByEnv[tag] = true
			}
		},
	})
	if err != nil {
		return nil, err
	}

	configFile := valuesFromEnv.ConfigFile
	if !options.disableFlagsParsing {
		if fromArgs := configFileFromArgs(os.Args[1:]); fromArgs != "" {
			configFile = fromArgs
		}
	}

	if configFile != "" {
		valuesFromFile, setByFile, err := loadFile(configFile)
		if err != nil {
			return nil, err
		}
		override(values, valuesFromFile, setByFile)
		values.ConfigFile = configFile
	}

	override(values, valuesFromEnv, setByEnv)

	if !options.disableFlagsParsing {
		if err := values.parseFlags(os.Args[1:]); err != nil {
			return nil, err
		}
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
