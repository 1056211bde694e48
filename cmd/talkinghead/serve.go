// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ik5/talkinghead/animation"
	"github.com/ik5/talkinghead/chat"
	"github.com/ik5/talkinghead/internal/logging"
	"github.com/ik5/talkinghead/internal/server"
	"github.com/ik5/talkinghead/transcript"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the avatar bridge over HTTP and websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				a.cfg.Port = port
			}

			ctrl := a.controller()
			hub := server.NewHub(logging.Component("hub"))

			loop := animation.NewLoop(ctrl, hub, a.cfg.Analysis().FFTSize/2,
				animation.WithConfig(a.cfg.LipSync()),
				animation.WithLogger(logging.Component("animation")),
			)

			chatClient := chat.NewClient(a.fetcher(), a.cfg.BackendURL,
				chat.WithTTSURL(a.cfg.TTSEndpoint()),
				chat.WithLogger(logging.Component("chat")),
			)
			session := chat.NewSession(chatClient, transcript.New(transcript.WithLimit(0)),
				chat.WithPlayer(ctrl),
				chat.WithSessionLogger(logging.Component("chat")),
			)

			srv := server.New(server.Deps{
				Player:     ctrl,
				Transcript: transcript.New(transcript.WithLimit(a.cfg.TranscriptLimit)),
				Chat:       session,
				Hub:        hub,
				Metrics:    a.cfg.MetricsEnabled,
				Logger:     logging.Component("server"),
			})

			ctrl.OnIdle(loop.Reset)
			ctrl.OnIdle(srv.NotifyStatus)

			loopErr := make(chan error, 1)
			go func() { loopErr <- loop.Run(ctx, a.cfg.FPS) }()

			err := srv.Run(ctx, ":"+a.cfg.Port)
			ctrl.Stop()

			if lerr := <-loopErr; err == nil && !errors.Is(lerr, context.Canceled) {
				err = lerr
			}
			return err
		},
	}

	cmd.Flags().String("port", "", "listen port (overrides TALKINGHEAD_PORT)")

	return cmd
}
