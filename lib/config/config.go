package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/go-onion/lib/util"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const GOONION_BASE_DIR = ".go-onion"

// envPrefix is prepended to upper-cased keys for environment overrides.
const envPrefix = "GOONION"

// InitConfig loads defaults, environment overrides and the config file,
// creating the default file when none exists and no explicit file was given.
func InitConfig() error {
	if CfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(CfgFile)
	} else {
		// Set up viper to use the default config path $HOME/.go-onion/
		viper.AddConfigPath(BuildDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	return handleConfigFile()
}

// ReloadConfig re-reads the config file currently in use.
func ReloadConfig() (*NodeConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, oops.Wrapf(err, "reload %s", viper.ConfigFileUsed())
	}
	return NewNodeConfigFromViper()
}

func setDefaults() {
	d := Defaults()

	viper.SetDefault("network.host", d.Network.Host)
	viper.SetDefault("network.base_port", d.Network.BasePort)

	viper.SetDefault("directory.address", d.Directory.Address)

	viper.SetDefault("circuit.length", d.Circuit.Length)

	viper.SetDefault("keys.rsa_bits", d.Keys.RSABits)

	viper.SetDefault("relay.forward_timeout", d.Relay.ForwardTimeout)
	viper.SetDefault("relay.forward_rate", d.Relay.ForwardRate)
	viper.SetDefault("relay.forward_burst", d.Relay.ForwardBurst)

	viper.SetDefault("inbox.capacity", d.Inbox.Capacity)

	viper.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	viper.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	viper.SetDefault("http.idle_timeout", d.HTTP.IdleTimeout)

	viper.SetDefault("metrics.enabled", d.Metrics.Enabled)

	viper.SetDefault("debug.expose_private_key", d.Debug.ExposePrivateKey)
}

// NewNodeConfigFromViper creates a new NodeConfig from current viper settings
// and validates it.
func NewNodeConfigFromViper() (*NodeConfig, error) {
	cfg := &NodeConfig{
		Network: NetworkConfig{
			Host:     viper.GetString("network.host"),
			BasePort: viper.GetInt("network.base_port"),
		},
		Directory: DirectoryConfig{
			Address: viper.GetString("directory.address"),
		},
		Circuit: CircuitConfig{
			Length: viper.GetInt("circuit.length"),
		},
		Keys: KeysConfig{
			RSABits: viper.GetInt("keys.rsa_bits"),
		},
		Relay: RelayConfig{
			ForwardTimeout: viper.GetDuration("relay.forward_timeout"),
			ForwardRate:    viper.GetFloat64("relay.forward_rate"),
			ForwardBurst:   viper.GetInt("relay.forward_burst"),
		},
		Inbox: InboxConfig{
			Capacity: viper.GetInt("inbox.capacity"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  viper.GetDuration("http.read_timeout"),
			WriteTimeout: viper.GetDuration("http.write_timeout"),
			IdleTimeout:  viper.GetDuration("http.idle_timeout"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("metrics.enabled"),
		},
		Debug: DebugConfig{
			ExposePrivateKey: viper.GetBool("debug.expose_private_key"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MarshalYAML renders cfg as the YAML document a config file would hold.
func MarshalYAML(cfg *NodeConfig) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal config")
	}
	return out, nil
}

func createDefaultConfig(defaultConfigDir string) error {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	// Ensure directory exists
	if err := os.MkdirAll(defaultConfigDir, 0o755); err != nil {
		return oops.Wrapf(err, "could not create config directory")
	}

	if err := viper.SafeWriteConfigAs(defaultConfigFile); err != nil {
		return oops.Wrapf(err, "could not write default config file")
	}

	log.Debugf("Created default configuration at: %s", defaultConfigFile)
	return nil
}

func handleConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		if CfgFile != "" {
			return oops.Errorf("config file %s is not found: %w", CfgFile, err)
		}
		return createDefaultConfig(BuildDirPath())
	}
	if CfgFile != "" && errors.Is(err, os.ErrNotExist) {
		return oops.Errorf("config file %s is not found: %w", CfgFile, err)
	}
	return oops.Wrapf(err, "error reading config file")
}

func BuildDirPath() string {
	return filepath.Join(util.UserHome(), GOONION_BASE_DIR)
}
