// Package cli is the eddy command line.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/eddy/internal/config"
	"github.com/llehouerou/eddy/internal/errmsg"
	"github.com/llehouerou/eddy/internal/logging"
)

var (
	cfgFile string
	debug   bool

	cfg *config.Config
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eddy",
		Short: "Play your music library from the terminal",
		Long: `eddy plays a local music library, either in-process or through a
Music Player Daemon, and keeps listening history, favorites and
Last.fm scrobbles up to date while you listen.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/eddy/config.toml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	play := newPlayCmd()
	root.RunE = play.RunE
	root.Args = cobra.ArbitraryArgs
	root.Flags().AddFlagSet(play.Flags())

	root.AddCommand(
		play,
		newScanCmd(),
		newHistoryCmd(),
		newTopCmd(),
		newLastfmCmd(),
		newVersionCmd(),
	)
	return root
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errmsg.Wrap(errmsg.OpConfigLoad, err)
	}
	return nil
}

// setupLogging configures the global logger. Console logging goes to
// stderr; otherwise lines go to the log file.
func setupLogging(console bool) (io.Closer, error) {
	lc := cfg.GetLogConfig()
	return logging.Setup(logging.Options{
		Level:   lc.Level,
		Debug:   debug,
		File:    lc.File,
		Console: console,
	})
}

// consoleCommand sets up console logging for plain commands.
func consoleCommand(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		closer, err := setupLogging(true)
		if err != nil {
			return err
		}
		defer closer.Close()
		return run(cmd, args)
	}
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Debug().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
