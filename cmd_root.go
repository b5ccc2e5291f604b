package main

import (
	"github.com/go-i2p/go-onion/lib/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCommand creates the go-onion command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "go-onion",
		Short: "Onion routing relay network",
		Long: `go-onion runs the nodes of a small onion routing network.

A directory keeps the registry of relays and their public keys. Relays peel
one layer of each message and pass it on. Users send messages through a fresh
random circuit of relays and receive messages addressed to them.`,
		Example: `  # Start the directory, three relays and a recipient
  go-onion directory
  go-onion relay --id 1
  go-onion relay --id 2
  go-onion relay --id 3
  go-onion user --id 42

  # Send a message to user 42
  go-onion send --to 42 --message hi`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.InitConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.go-onion/config.yaml)")
	flags.String("host", "", "host every node listens on (network.host)")
	flags.Int("base-port", 0, "node N listens on base-port+N (network.base_port)")
	flags.String("directory", "", "directory address (directory.address)")
	// An explicitly set flag overrides the config file and environment.
	_ = viper.BindPFlag("network.host", flags.Lookup("host"))
	_ = viper.BindPFlag("network.base_port", flags.Lookup("base-port"))
	_ = viper.BindPFlag("directory.address", flags.Lookup("directory"))

	root.AddCommand(
		newDirectoryCommand(),
		newRelayCommand(),
		newUserCommand(),
		newSendCommand(),
		newNodesCommand(),
		newConfigCommand(),
	)
	return root
}
