package main

import (
	"fmt"
	"io"

	"github.com/go-i2p/go-onion/lib/config"
	"github.com/go-i2p/go-onion/lib/router"
	"github.com/go-i2p/go-onion/lib/util"
	"github.com/go-i2p/go-onion/lib/util/signals"
	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
)

func newDirectoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "directory",
		Short: "Run the node directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.OutOrStdout(), router.RoleDirectory, 0)
		},
	}
}

func newRelayCommand() *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run a relay that peels and forwards onion layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.OutOrStdout(), router.RoleRelay, id)
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "relay node id; listens on base_port+id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newUserCommand() *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Run a user node that sends and receives messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.OutOrStdout(), router.RoleUser, id)
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "user id; listens on base_port+id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// runNode starts a node and blocks until SIGINT or SIGTERM.
func runNode(out io.Writer, role router.Role, id int) error {
	cfg, err := config.NewNodeConfigFromViper()
	if err != nil {
		return err
	}

	r, err := router.CreateRouter(cfg, role, id)
	if err != nil {
		return fmt.Errorf("failed to create %s node: %w", role, err)
	}
	util.RegisterCloser(r)
	defer util.CloseAll()

	go signals.Handle()
	defer signals.StopHandle()

	signals.RegisterReloadHandler(func() {
		reloaded, err := config.ReloadConfig()
		if err != nil {
			log.WithError(err).Error("config reload failed")
			return
		}
		log.WithFields(logger.Fields{
			"at":        "runNode",
			"directory": reloaded.Directory.Address,
			"base_port": reloaded.Network.BasePort,
		}).Warn("config reloaded; restart the node to apply listener changes")
	})
	signals.RegisterInterruptHandler(func() {
		r.Stop()
	})

	if err := r.Start(); err != nil {
		return fmt.Errorf("failed to start %s node: %w", role, err)
	}
	fmt.Fprintln(out, renderNodeBanner(r))
	r.Wait()
	return nil
}
