// Package config provides configuration management for go-onion nodes.
//
// # Configuration File
//
// Every node (directory, relay or user) reads the same YAML file, by default
// $HOME/.go-onion/config.yaml. The file is created with default values the
// first time a node starts without one. A different file can be chosen with
// the --config flag, and any key can be overridden from the environment with
// the GOONION_ prefix, for example GOONION_NETWORK_BASE_PORT=6000.
//
// # Addressing
//
// Relays and users are reachable at a deterministic address: the configured
// host plus the port base_port+nodeID. Inside onion layers the next hop is
// carried as that port, zero-padded to HopWidth decimal digits.
//
// # Forwarding Policy
//
// Outbound forward and deliver calls are made once, with no retry, and are
// bounded by relay.forward_timeout.
package config
