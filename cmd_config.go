package main

import (
	"fmt"

	"github.com/go-i2p/go-onion/lib/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewNodeConfigFromViper()
			if err != nil {
				return err
			}
			out, err := config.MarshalYAML(cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if used := viper.ConfigFileUsed(); used != "" {
				fmt.Fprintln(w, mutedStyle.Render("# "+used))
			}
			_, err = w.Write(out)
			return err
		},
	}
}
