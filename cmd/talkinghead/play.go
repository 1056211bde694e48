// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/talkinghead/animation"
	"github.com/ik5/talkinghead/internal/logging"
	"github.com/ik5/talkinghead/lipsync"
	"github.com/ik5/talkinghead/playback"
)

func inputFor(arg string) playback.Input {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return playback.URLInput(arg)
	}
	return playback.FileInput(arg)
}

func newPlayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file|url>",
		Short: "Play a clip and print the morph frames it drives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var opts []playback.Option
			if path, _ := cmd.Flags().GetString("wav"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()
				opts = append(opts, playback.WithOutput(func() playback.Output { return playback.NewWAVOutput(f) }))
			}

			ctrl := a.controller(opts...)
			quiet, _ := cmd.Flags().GetBool("quiet")
			out := cmd.OutOrStdout()

			loop := animation.NewLoop(ctrl, animation.MorphFunc(func(name string, v float64) {
				if quiet {
					return
				}
				fmt.Fprintf(out, "%s=%.3f", name, v)
				if name == lipsync.ChannelMouthOpen {
					fmt.Fprintln(out)
					return
				}
				fmt.Fprint(out, " ")
			}), a.cfg.Analysis().FFTSize/2,
				animation.WithConfig(a.cfg.LipSync()),
				animation.WithLogger(logging.Component("animation")),
			)
			ctrl.OnIdle(loop.Reset)

			session, err := ctrl.Play(ctx, inputFor(args[0]))
			if err != nil {
				return err
			}
			a.log.Info().Str("session", session.ID).Dur("duration", session.Duration()).Msg("playing")

			loopDone := make(chan struct{})
			go func() {
				defer close(loopDone)
				loop.Run(ctx, a.cfg.FPS)
			}()

			err = ctrl.Wait(ctx)
			ctrl.Stop()
			cancel()
			<-loopDone

			// one last tick so the face ends neutral
			loop.Tick(0)
			return err
		},
	}

	cmd.Flags().String("wav", "", "also write the decoded clip as 16-bit WAV to this path")
	cmd.Flags().BoolP("quiet", "q", false, "do not print frames")

	return cmd
}
