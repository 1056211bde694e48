// SPDX-License-Identifier: EPL-2.0

// Command talkinghead plays clips through the lip-sync pipeline, talks to
// the question answering backend and serves the avatar bridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ik5/talkinghead/fetch"
	"github.com/ik5/talkinghead/formats"
	"github.com/ik5/talkinghead/internal/config"
	"github.com/ik5/talkinghead/internal/logging"
	"github.com/ik5/talkinghead/playback"
)

var version = "dev"

// app carries what every subcommand needs once flags and env are parsed.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func (a *app) fetcher() *fetch.Client {
	return fetch.NewClient(
		fetch.WithTimeout(a.cfg.HTTPTimeout),
		fetch.WithLogger(logging.Component("fetch")),
	)
}

func (a *app) controller(opts ...playback.Option) *playback.Controller {
	opts = append([]playback.Option{
		playback.WithGetter(a.fetcher()),
		playback.WithSampleRate(a.cfg.SampleRate),
		playback.WithAnalysis(a.cfg.Analysis()),
		playback.WithLogger(logging.Component("playback")),
	}, opts...)

	return playback.NewController(formats.Default(), opts...)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "talkinghead",
		Short:         "Drive a talking avatar from audio clips",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}

			a.cfg = cfg
			a.log = logging.Init(cfg.LogLevel, cfg.LogPretty)
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		newServeCmd(a),
		newPlayCmd(a),
		newAskCmd(a),
		newAnalyzeCmd(a),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
