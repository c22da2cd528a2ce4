// Command zmtpcat establishes protocol connections against live peers
// and pipes frames between the connection and the terminal: stdin lines
// go out as messages, incoming message bodies are printed line by line.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meshwire/zmtp"
	_ "github.com/meshwire/zmtp/null"
	_ "github.com/meshwire/zmtp/transport/ipc"
	_ "github.com/meshwire/zmtp/transport/tcp"
)

var (
	cfgFile     string
	flagAddr    string
	flagType    string
	flagVerbose bool

	cfg    runConfig
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "zmtpcat",
	Short:         "Pipe frames over established protocol connections",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cfgFile)
		if err != nil {
			return err
		}

		if flagAddr != "" {
			cfg.Addr = flagAddr
		}
		if flagType != "" {
			st, err := zmtp.ParseSocketType([]byte(strings.ToUpper(flagType)))
			if err != nil {
				return err
			}
			cfg.SocketType = st
		}
		if flagVerbose {
			cfg.Verbose = true
		}

		logger = initLogger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to TOML config")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "peer address (scheme://host)")
	rootCmd.PersistentFlags().StringVar(&flagType, "type", "", "local socket type (REQ or REP)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log connection events")
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "zmtpcat").Logger()
}

// newContext wires the loaded configuration into a fresh Context.
func newContext(cmd *cobra.Command) *zmtp.Context {
	zctx := zmtp.NewContext(cmd.Context())
	zctx.Config().SetConnectTimeout(cfg.ConnectTimeout)
	zctx.Config().SetHandshakeTimeout(cfg.HandshakeTimeout)
	zctx.Config().SetReadBufferSize(cfg.ReadBufferSize)
	zctx.SetMechanism(cfg.Mechanism)
	if cfg.Verbose {
		zctx.SetEventBus(zmtp.LogBus{Logger: logger})
	}
	return zctx
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
