package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func writeConfig(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "config.yaml")
	c.Assert(os.WriteFile(path, []byte(content), 0o600), qt.IsNil)
	return path
}

func TestLoadClient(t *testing.T) {
	c := qt.New(t)

	path := writeConfig(c, `host: http://status.internal:8000
identity: user123
key: THIS_IS_A_32_BYTE_MINIMUM_SECRET_KEY
timeout: 2s
`)
	cfg, err := LoadClient(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Host, qt.Equals, "http://status.internal:8000")
	c.Assert(cfg.Identity, qt.Equals, "user123")
	c.Assert(cfg.Timeout, qt.Equals, 2*time.Second)
	c.Assert(cfg.LogLevel, qt.Equals, "info", qt.Commentf("defaults must survive a partial file"))

	key, err := cfg.AuthKey()
	c.Assert(err, qt.IsNil)
	c.Assert(string(key.Data), qt.Equals, "THIS_IS_A_32_BYTE_MINIMUM_SECRET_KEY")
}

func TestLoadClientEnvOverrides(t *testing.T) {
	c := qt.New(t)

	t.Setenv(EnvIdentity, "user456")
	t.Setenv(EnvKeyHex, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	t.Setenv(EnvTimeout, "9")

	cfg, err := LoadClient("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Identity, qt.Equals, "user456")
	c.Assert(cfg.Host, qt.Equals, "http://127.0.0.1:8000")
	c.Assert(cfg.Timeout, qt.Equals, 9*time.Second)

	key, err := cfg.AuthKey()
	c.Assert(err, qt.IsNil)
	c.Assert(key.Data, qt.HasLen, 32)
}

func TestClientValidate(t *testing.T) {
	c := qt.New(t)

	base := DefaultClientConfig()
	base.Identity = "user123"
	base.Key = "THIS_IS_A_32_BYTE_MINIMUM_SECRET_KEY"
	c.Assert(base.Validate(), qt.IsNil)

	tests := []struct {
		name   string
		mutate func(cfg *ClientConfig)
		errMsg string
	}{
		{"no identity", func(cfg *ClientConfig) { cfg.Identity = "" }, "invalid identity: .*"},
		{"separator", func(cfg *ClientConfig) { cfg.Identity = "a|b" }, "invalid identity: .*"},
		{"no key", func(cfg *ClientConfig) { cfg.Key = "" }, ".*one of key or key_hex.*"},
		{"short key", func(cfg *ClientConfig) { cfg.Key = "short" }, "invalid key: .*"},
		{"both keys", func(cfg *ClientConfig) { cfg.KeyHex = "00" }, ".*mutually exclusive"},
		{"timeout", func(cfg *ClientConfig) { cfg.Timeout = 0 }, "invalid timeout: .*"},
		{"log level", func(cfg *ClientConfig) { cfg.LogLevel = "loud" }, "invalid log_level: .*"},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		c.Assert(cfg.Validate(), qt.ErrorMatches, tt.errMsg, qt.Commentf("%s", tt.name))
	}
}

func TestLoadServer(t *testing.T) {
	c := qt.New(t)

	path := writeConfig(c, `listen: 127.0.0.1:9000
key_file: /etc/statusauth/keys.yaml
freshness_window: 0s
redis_addr: localhost:6379
`)
	cfg, err := LoadServer(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Listen, qt.Equals, "127.0.0.1:9000")
	c.Assert(cfg.KeyFile, qt.Equals, "/etc/statusauth/keys.yaml")
	c.Assert(cfg.FreshnessWindow, qt.Equals, time.Duration(0), qt.Commentf("an explicit zero must disable the window"))
	c.Assert(cfg.RedisAddr, qt.Equals, "localhost:6379")
	c.Assert(cfg.ShutdownTimeout, qt.Equals, 5*time.Second)
}

func TestLoadServerDerived(t *testing.T) {
	c := qt.New(t)

	t.Setenv(EnvMasterKeyHex, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	cfg, err := LoadServer("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.FreshnessWindow, qt.Equals, 5*time.Minute)
	c.Assert(cfg.Derive.Term, qt.Equals, 7*24*time.Hour)

	key, err := cfg.MasterKey()
	c.Assert(err, qt.IsNil)
	c.Assert(key.Data, qt.HasLen, 32)
}

func TestServerValidate(t *testing.T) {
	c := qt.New(t)

	cfg := DefaultServerConfig()
	c.Assert(cfg.Validate(), qt.ErrorMatches, ".*one of key_file or derive.master_key_hex.*")

	cfg.KeyFile = "keys.yaml"
	cfg.Derive.MasterKeyHex = "00"
	c.Assert(cfg.Validate(), qt.ErrorMatches, ".*mutually exclusive")

	cfg.KeyFile = ""
	c.Assert(cfg.Validate(), qt.ErrorMatches, "derive.master_key_hex: invalid key: .*")

	cfg = DefaultServerConfig()
	cfg.KeyFile = "keys.yaml"
	cfg.FreshnessWindow = -time.Second
	c.Assert(cfg.Validate(), qt.ErrorMatches, "invalid freshness_window: .*")
}

func TestLoadErrors(t *testing.T) {
	c := qt.New(t)

	_, err := LoadServer(filepath.Join(c.TempDir(), "missing.yaml"))
	c.Assert(err, qt.ErrorMatches, "failed to read config: .*")

	_, err = LoadServer(writeConfig(c, ""))
	c.Assert(err, qt.ErrorMatches, "config file is empty")

	_, err = LoadServer(writeConfig(c, "listen: [unclosed"))
	c.Assert(err, qt.ErrorMatches, "failed to parse config: .*")
}
