package main

import (
	"fmt"

	"github.com/go-i2p/go-onion/lib/config"
	"github.com/go-i2p/go-onion/lib/transport"
	"github.com/spf13/cobra"
)

func newNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the relays registered with the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewNodeConfigFromViper()
			if err != nil {
				return err
			}
			client, err := transport.NewClient(cfg.Addressing(), cfg.Directory.Address, cfg.Relay.ForwardTimeout)
			if err != nil {
				return err
			}
			nodes, err := client.ListNodes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderNodes(nodes, cfg.Addressing()))
			return nil
		},
	}
}
