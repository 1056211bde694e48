// SPDX-License-Identifier: EPL-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/ik5/talkinghead"
	"github.com/ik5/talkinghead/formats"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file|url>",
		Short: "Dump the morph track of a clip as CSV without playing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := inputFor(args[0]).Load(cmd.Context(), a.fetcher())
			if err != nil {
				return err
			}

			clip, err := formats.Default().DecodeClip(data, a.cfg.SampleRate)
			if err != nil {
				return err
			}

			fps, _ := cmd.Flags().GetInt("fps")
			if fps <= 0 {
				fps = a.cfg.FPS
			}

			track := talkinghead.Analyze(clip, talkinghead.AnalyzeOptions{
				FPS:      fps,
				Analysis: a.cfg.Analysis(),
				LipSync:  a.cfg.LipSync(),
			})

			a.log.Info().Int("frames", len(track)).Dur("duration", clip.Duration()).Msg("analysed")

			return talkinghead.WriteCSV(cmd.OutOrStdout(), track)
		},
	}

	cmd.Flags().Int("fps", 0, "frames per second (defaults to TALKINGHEAD_FPS)")

	return cmd
}
