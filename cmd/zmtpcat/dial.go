package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dialCmd = &cobra.Command{
	Use:   "dial",
	Short: "Connect to a peer and pipe frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		zctx := newContext(cmd)
		conn, err := zctx.Dial(cfg.Addr, cfg.SocketType)
		if err != nil {
			return fmt.Errorf("dial %s: %w", cfg.Addr, err)
		}

		logger.Info().
			Str("addr", cfg.Addr).
			Str("local", string(conn.LocalSocketType())).
			Str("remote", string(conn.RemoteSocketType())).
			Msg("connection established")
		return pump(conn)
	},
}

func init() {
	rootCmd.AddCommand(dialCmd)
}
