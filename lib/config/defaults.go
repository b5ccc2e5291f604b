package config

import (
	"time"

	"github.com/go-i2p/logger"
)

// NodeConfig holds every setting a go-onion node reads at startup.
// Build one with Defaults or NewNodeConfigFromViper; it is not mutated afterwards.
type NodeConfig struct {
	Network   NetworkConfig   `yaml:"network"`
	Directory DirectoryConfig `yaml:"directory"`
	Circuit   CircuitConfig   `yaml:"circuit"`
	Keys      KeysConfig      `yaml:"keys"`
	Relay     RelayConfig     `yaml:"relay"`
	Inbox     InboxConfig     `yaml:"inbox"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Debug     DebugConfig     `yaml:"debug"`
}

// NetworkConfig controls the base-port-plus-id addressing scheme.
type NetworkConfig struct {
	// Host every relay and user listens on
	// Default: 127.0.0.1
	Host string `yaml:"host"`

	// BasePort is added to a node id to obtain its port
	// Default: 5000
	BasePort int `yaml:"base_port"`
}

// DirectoryConfig locates the node directory.
type DirectoryConfig struct {
	// Address is host:port of the directory service
	// Default: 127.0.0.1:4999
	Address string `yaml:"address"`
}

// CircuitConfig controls path selection.
type CircuitConfig struct {
	// Length is the number of relays per circuit
	// Default: 3 (entry, middle, exit)
	Length int `yaml:"length"`
}

// KeysConfig controls relay key generation.
type KeysConfig struct {
	// RSABits is the relay modulus size, at least 2048
	RSABits int `yaml:"rsa_bits"`
}

// RelayConfig controls forwarding.
type RelayConfig struct {
	// ForwardTimeout bounds a single forward or deliver call. There is no retry.
	// Default: 10 seconds
	ForwardTimeout time.Duration `yaml:"forward_timeout"`

	// ForwardRate is the sustained number of /forwardMessage requests per second
	ForwardRate float64 `yaml:"forward_rate"`

	// ForwardBurst is the token bucket size for /forwardMessage
	ForwardBurst int `yaml:"forward_burst"`
}

// InboxConfig controls the recipient inbox.
type InboxConfig struct {
	// Capacity is the number of delivered messages kept; the oldest are dropped
	Capacity int `yaml:"capacity"`
}

// HTTPConfig holds server timeouts.
type HTTPConfig struct {
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DebugConfig holds switches that must stay off outside development.
type DebugConfig struct {
	// ExposePrivateKey serves the relay private key at GET /privateKey
	ExposePrivateKey bool `yaml:"expose_private_key"`
}

// Addressing returns the addressing scheme described by the network section.
func (c *NodeConfig) Addressing() Addressing {
	return Addressing{Host: c.Network.Host, BasePort: c.Network.BasePort}
}

// Defaults returns a NodeConfig with all default values set.
// This is the single source of truth for all configuration defaults.
func Defaults() *NodeConfig {
	return &NodeConfig{
		Network: NetworkConfig{
			Host:     "127.0.0.1",
			BasePort: 5000,
		},
		Directory: DirectoryConfig{
			Address: "127.0.0.1:4999",
		},
		Circuit: CircuitConfig{
			Length: 3,
		},
		Keys: KeysConfig{
			RSABits: 2048,
		},
		Relay: RelayConfig{
			ForwardTimeout: 10 * time.Second,
			ForwardRate:    50,
			ForwardBurst:   100,
		},
		Inbox: InboxConfig{
			Capacity: 256,
		},
		HTTP: HTTPConfig{
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks if the provided configuration values are reasonable.
// Returns an error describing the first invalid value found.
func Validate(cfg *NodeConfig) error {
	log.WithFields(logger.Fields{
		"at":     "Validate",
		"reason": "verification_requested",
	}).Debug("validating node configuration")

	validators := []func() error{
		func() error { return validateNetwork(cfg.Network) },
		func() error { return validateCircuit(cfg.Circuit) },
		func() error { return validateKeys(cfg.Keys) },
		func() error { return validateRelay(cfg.Relay) },
		func() error {
			if cfg.Inbox.Capacity < 1 {
				return newValidationError("inbox.capacity must be at least 1")
			}
			return nil
		},
		func() error {
			if cfg.Directory.Address == "" {
				return newValidationError("directory.address must not be empty")
			}
			return nil
		},
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithError(err).Error("Configuration validation failed")
			return err
		}
	}
	return nil
}

func validateNetwork(n NetworkConfig) error {
	if n.Host == "" {
		return newValidationError("network.host must not be empty")
	}
	if n.BasePort < 1 || n.BasePort > maxPort {
		return newValidationError("network.base_port must be between 1 and 65535")
	}
	return nil
}

func validateCircuit(c CircuitConfig) error {
	if c.Length < 1 || c.Length > 8 {
		return newValidationError("circuit.length must be between 1 and 8")
	}
	return nil
}

func validateKeys(k KeysConfig) error {
	if k.RSABits < 2048 {
		return newValidationError("keys.rsa_bits must be at least 2048")
	}
	return nil
}

func validateRelay(r RelayConfig) error {
	if r.ForwardTimeout <= 0 {
		return newValidationError("relay.forward_timeout must be positive")
	}
	if r.ForwardRate <= 0 {
		return newValidationError("relay.forward_rate must be positive")
	}
	if r.ForwardBurst < 1 {
		return newValidationError("relay.forward_burst must be at least 1")
	}
	return nil
}

type validationError struct {
	message string
}

func newValidationError(message string) error {
	return &validationError{message: message}
}

func (e *validationError) Error() string {
	return "configuration validation failed: " + e.message
}
