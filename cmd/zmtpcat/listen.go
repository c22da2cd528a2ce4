package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Accept one peer and pipe frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		zctx := newContext(cmd)
		ln, err := zctx.Listen(cfg.Addr, cfg.SocketType)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Addr, err)
		}
		defer ln.Close()

		logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}

		logger.Info().
			Str("local", string(conn.LocalSocketType())).
			Str("remote", string(conn.RemoteSocketType())).
			Msg("connection established")
		return pump(conn)
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
