package main

import (
	"fmt"

	"github.com/go-i2p/go-onion/lib/circuit"
	"github.com/go-i2p/go-onion/lib/config"
	"github.com/go-i2p/go-onion/lib/sender"
	"github.com/go-i2p/go-onion/lib/transport"
	"github.com/spf13/cobra"
)

func newSendCommand() *cobra.Command {
	var (
		to      int
		message string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through a fresh circuit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewNodeConfigFromViper()
			if err != nil {
				return err
			}
			addressing := cfg.Addressing()
			client, err := transport.NewClient(addressing, cfg.Directory.Address, cfg.Relay.ForwardTimeout)
			if err != nil {
				return err
			}
			s, err := sender.New(client, circuit.NewSelector(), addressing, client, cfg.Circuit.Length, nil)
			if err != nil {
				return err
			}

			ids, err := s.Send(cmd.Context(), to, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCircuit(ids, addressing, to))
			return nil
		},
	}
	cmd.Flags().IntVar(&to, "to", 0, "recipient user id")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message content")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
