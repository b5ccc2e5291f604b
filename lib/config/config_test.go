package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNodeConfigDefaultsRoundTrip verifies that all defaults set via
// setDefaults() are read back unchanged by NewNodeConfigFromViper().
func TestNodeConfigDefaultsRoundTrip(t *testing.T) {
	viper.Reset()
	setDefaults()

	cfg, err := NewNodeConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
	assert.Equal(t, 3, Defaults().Circuit.Length)
	assert.Equal(t, 10*time.Second, Defaults().Relay.ForwardTimeout)
	assert.False(t, Defaults().Debug.ExposePrivateKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NodeConfig)
	}{
		{"empty host", func(c *NodeConfig) { c.Network.Host = "" }},
		{"zero base port", func(c *NodeConfig) { c.Network.BasePort = 0 }},
		{"base port too large", func(c *NodeConfig) { c.Network.BasePort = 70000 }},
		{"zero circuit", func(c *NodeConfig) { c.Circuit.Length = 0 }},
		{"small rsa", func(c *NodeConfig) { c.Keys.RSABits = 1024 }},
		{"no forward timeout", func(c *NodeConfig) { c.Relay.ForwardTimeout = 0 }},
		{"no forward rate", func(c *NodeConfig) { c.Relay.ForwardRate = 0 }},
		{"no burst", func(c *NodeConfig) { c.Relay.ForwardBurst = 0 }},
		{"no inbox", func(c *NodeConfig) { c.Inbox.Capacity = 0 }},
		{"no directory", func(c *NodeConfig) { c.Directory.Address = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration validation failed")
		})
	}
}

func TestEnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GOONION_NETWORK_BASE_PORT", "6100")
	t.Setenv("GOONION_RELAY_FORWARD_TIMEOUT", "3s")

	CfgFile = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { CfgFile = "" })
	require.NoError(t, os.WriteFile(CfgFile, []byte("circuit:\n  length: 4\n"), 0o600))

	require.NoError(t, InitConfig())
	cfg, err := NewNodeConfigFromViper()
	require.NoError(t, err)

	assert.Equal(t, 6100, cfg.Network.BasePort)
	assert.Equal(t, 3*time.Second, cfg.Relay.ForwardTimeout)
	assert.Equal(t, 4, cfg.Circuit.Length)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	CfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { CfgFile = "" })

	assert.Error(t, InitConfig())
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, InitConfig())
	_, err := os.Stat(filepath.Join(home, GOONION_BASE_DIR, "config.yaml"))
	assert.NoError(t, err)
}

func TestMarshalYAML(t *testing.T) {
	out, err := MarshalYAML(Defaults())
	require.NoError(t, err)

	var doc map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, 5000, doc["network"]["base_port"])
	assert.Equal(t, "10s", doc["relay"]["forward_timeout"])
}
