// SPDX-License-Identifier: EPL-2.0

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/talkinghead/chat"
	"github.com/ik5/talkinghead/internal/logging"
	"github.com/ik5/talkinghead/transcript"
)

func newAskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the backend a question and render the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			speak, _ := cmd.Flags().GetBool("tts")
			style, _ := cmd.Flags().GetString("style")

			client := chat.NewClient(a.fetcher(), a.cfg.BackendURL,
				chat.WithTTSURL(a.cfg.TTSEndpoint()),
				chat.WithLogger(logging.Component("chat")),
			)
			ctrl := a.controller()
			tr := transcript.New(transcript.WithLimit(0), transcript.WithStyle(style))

			// a one-shot question has no use for greetings
			messages := chat.DefaultMessages()
			messages.Greetings = nil

			session := chat.NewSession(client, tr,
				chat.WithMessages(messages),
				chat.WithPlayer(ctrl),
				chat.WithSessionLogger(logging.Component("chat")),
			)
			session.SetTTS(speak)

			_, askErr := session.Send(ctx, strings.Join(args, " "))
			if err := tr.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			if askErr != nil {
				return askErr
			}

			return ctrl.Wait(ctx)
		},
	}

	cmd.Flags().Bool("tts", false, "speak the answer through the lip-sync pipeline")
	cmd.Flags().String("style", "auto", "glamour style: auto, dark, light, notty")

	return cmd
}
