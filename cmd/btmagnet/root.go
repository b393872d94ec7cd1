package main

import (
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/burmudar/bt-magnet/pkg/bt/config"
	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/fetch"
	"github.com/burmudar/bt-magnet/pkg/bt/magnet"
	"github.com/burmudar/bt-magnet/pkg/bt/manager"
)

// app carries what every subcommand needs once flags and config are resolved
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:   viper.New(),
		log: logrus.StandardLogger(),
	}

	rootCmd := &cobra.Command{
		Use:           "btmagnet",
		Short:         "Generate magnet links from .torrent files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.Int(config.KeyMaxDepth, encoding.DefaultMaxDepth, "maximum list/dictionary nesting accepted while decoding")
	flags.Int(config.KeyConcurrency, manager.DefaultConcurrency, "number of torrents processed at once")
	flags.Duration(config.KeyTimeout, 30*time.Second, "timeout for fetching a torrent")
	flags.Int64(config.KeyMaxTorrentSize, fetch.DefaultMaxSize, "largest torrent file accepted, in bytes")
	flags.Bool(config.KeyRawInfoHash, false, "hash the info dictionary bytes as found in the file instead of re-encoding them")
	flags.StringP(config.KeyOutput, "o", config.OutputText, "output format: text or json")
	flags.String(config.KeyLogLevel, logrus.InfoLevel.String(), "log level")

	rootCmd.AddCommand(
		newDecodeCmd(a),
		newInfoCmd(a),
		newHashCmd(a),
		newMagnetCmd(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	// flags the user did not set fall back to env, config file and defaults
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log.SetOutput(os.Stderr)
	a.log.SetLevel(cfg.LogLevel)
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	a.log.WithField("config", a.v.ConfigFileUsed()).Debug("configuration loaded")

	return nil
}

func (a *app) fetcher() *fetch.Fetcher {
	return fetch.New(
		fetch.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}),
		fetch.WithMaxSize(a.cfg.MaxTorrentSize),
		fetch.WithConcurrency(a.cfg.Concurrency),
	)
}

func (a *app) magnetOptions() []magnet.Option {
	return []magnet.Option{
		magnet.WithMaxDepth(a.cfg.MaxDepth),
		magnet.WithRawInfoHash(a.cfg.RawInfoHash),
	}
}
