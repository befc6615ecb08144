// Package config loads client and responder configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.encore.dev/statusauth/pkg/auth"
	"gopkg.in/yaml.v3"
)

const (
	EnvHost            = "STATUSAUTH_HOST"
	EnvIdentity        = "STATUSAUTH_IDENTITY"
	EnvKey             = "STATUSAUTH_KEY"
	EnvKeyHex          = "STATUSAUTH_KEY_HEX"
	EnvTimeout         = "STATUSAUTH_TIMEOUT"
	EnvListen          = "STATUSAUTH_LISTEN"
	EnvKeyFile         = "STATUSAUTH_KEY_FILE"
	EnvMasterKeyHex    = "STATUSAUTH_MASTER_KEY_HEX"
	EnvDeriveSalt      = "STATUSAUTH_DERIVE_SALT"
	EnvFreshnessWindow = "STATUSAUTH_FRESHNESS_WINDOW"
	EnvRedisAddr       = "STATUSAUTH_REDIS_ADDR"
	EnvLogLevel        = "STATUSAUTH_LOG_LEVEL"
)

// ClientConfig configures the requester.
type ClientConfig struct {
	Host     string        `yaml:"host"`
	Identity string        `yaml:"identity"`
	Key      string        `yaml:"key,omitempty"`     // raw shared key text
	KeyHex   string        `yaml:"key_hex,omitempty"` // hex encoded shared key
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`
}

// DeriveConfig enables HKDF derived keys on the responder.
type DeriveConfig struct {
	MasterKeyHex string        `yaml:"master_key_hex"`
	Salt         string        `yaml:"salt,omitempty"`
	Identities   []string      `yaml:"identities,omitempty"` // empty = any identity
	Term         time.Duration `yaml:"term"`                 // subscription length from responder start
}

// ServerConfig configures the responder.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	KeyFile         string        `yaml:"key_file,omitempty"`
	Derive          DeriveConfig  `yaml:"derive,omitempty"`
	FreshnessWindow time.Duration `yaml:"freshness_window"` // 0 disables the check
	RedisAddr       string        `yaml:"redis_addr,omitempty"`
	RedisPrefix     string        `yaml:"redis_prefix,omitempty"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

// DefaultClientConfig returns the client defaults, matching a responder on
// the local machine.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Host:     "http://127.0.0.1:8000",
		Timeout:  5 * time.Second,
		LogLevel: "info",
	}
}

// DefaultServerConfig returns the responder defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen:          "0.0.0.0:8000",
		Derive:          DeriveConfig{Term: 7 * 24 * time.Hour},
		FreshnessWindow: 5 * time.Minute,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
	}
}

// LoadClient reads the client config at path (if path is non-empty), applies
// environment overrides and validates the result.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if err := loadFile(path, &cfg); err != nil {
		return ClientConfig{}, err
	}

	cfg.Host = envOrDefault(EnvHost, cfg.Host)
	cfg.Identity = envOrDefault(EnvIdentity, cfg.Identity)
	cfg.Key = envOrDefault(EnvKey, cfg.Key)
	cfg.KeyHex = envOrDefault(EnvKeyHex, cfg.KeyHex)
	cfg.Timeout = durationEnvOrDefault(EnvTimeout, cfg.Timeout)
	cfg.LogLevel = envOrDefault(EnvLogLevel, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c ClientConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("invalid host: must not be empty")
	}
	if c.Identity == "" {
		return fmt.Errorf("invalid identity: must not be empty")
	}
	if strings.ContainsRune(c.Identity, auth.Separator) {
		return fmt.Errorf("invalid identity: must not contain %q", auth.Separator)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: must be > 0")
	}
	if _, err := c.AuthKey(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// AuthKey returns the configured shared key.
func (c ClientConfig) AuthKey() (auth.Key, error) {
	var key auth.Key
	switch {
	case c.Key != "" && c.KeyHex != "":
		return auth.Key{}, fmt.Errorf("invalid config: key and key_hex are mutually exclusive")
	case c.KeyHex != "":
		var err error
		if key, err = auth.ParseHexKey(c.KeyHex); err != nil {
			return auth.Key{}, err
		}
	case c.Key != "":
		key = auth.NewKey([]byte(c.Key))
	default:
		return auth.Key{}, fmt.Errorf("invalid config: one of key or key_hex (or %s / %s) is required", EnvKey, EnvKeyHex)
	}
	if err := key.Validate(); err != nil {
		return auth.Key{}, err
	}
	return key, nil
}

// LoadServer reads the responder config at path (if path is non-empty),
// applies environment overrides and validates the result.
func LoadServer(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := loadFile(path, &cfg); err != nil {
		return ServerConfig{}, err
	}

	cfg.Listen = envOrDefault(EnvListen, cfg.Listen)
	cfg.KeyFile = envOrDefault(EnvKeyFile, cfg.KeyFile)
	cfg.Derive.MasterKeyHex = envOrDefault(EnvMasterKeyHex, cfg.Derive.MasterKeyHex)
	cfg.Derive.Salt = envOrDefault(EnvDeriveSalt, cfg.Derive.Salt)
	cfg.FreshnessWindow = durationEnvOrDefault(EnvFreshnessWindow, cfg.FreshnessWindow)
	cfg.RedisAddr = envOrDefault(EnvRedisAddr, cfg.RedisAddr)
	cfg.LogLevel = envOrDefault(EnvLogLevel, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c ServerConfig) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("invalid listen: must not be empty")
	}
	if c.KeyFile == "" && c.Derive.MasterKeyHex == "" {
		return fmt.Errorf("invalid config: one of key_file or derive.master_key_hex (or %s / %s) is required", EnvKeyFile, EnvMasterKeyHex)
	}
	if c.KeyFile != "" && c.Derive.MasterKeyHex != "" {
		return fmt.Errorf("invalid config: key_file and derive.master_key_hex are mutually exclusive")
	}
	if c.Derive.MasterKeyHex != "" {
		if _, err := c.MasterKey(); err != nil {
			return err
		}
		if c.Derive.Term <= 0 {
			return fmt.Errorf("invalid derive.term: must be > 0")
		}
	}
	if c.FreshnessWindow < 0 {
		return fmt.Errorf("invalid freshness_window: must be >= 0")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid config: timeouts must be > 0")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// MasterKey returns the HKDF master key.
func (c ServerConfig) MasterKey() (auth.Key, error) {
	key, err := auth.ParseHexKey(c.Derive.MasterKeyHex)
	if err != nil {
		return auth.Key{}, fmt.Errorf("derive.master_key_hex: %w", err)
	}
	if err := key.Validate(); err != nil {
		return auth.Key{}, fmt.Errorf("derive.master_key_hex: %w", err)
	}
	return key, nil
}

func loadFile(path string, into any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("config file is empty")
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnvOrDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare integers are seconds.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
