package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andreyxaxa/Image-Tagger/pkg/tagclient"
	"github.com/spf13/cobra"
)

func newUploadCmd(root *rootOptions) *cobra.Command {
	var (
		pollInterval time.Duration
		pollTimeout  time.Duration
		maxAttempts  int
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and wait until it is labeled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			l := root.logger()
			tracker := tagclient.NewTracker(root.client(),
				tagclient.PollInterval(pollInterval),
				tagclient.PollTimeout(pollTimeout),
				tagclient.MaxPollAttempts(maxAttempts),
				tagclient.OnTransition(func(tr tagclient.Transition) {
					l.Info("imgtag - upload - %s -> %s imageId=%s", tr.From, tr.To, tr.ImageID)
				}),
			)

			image, err := tracker.UploadFile(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imageId: %s\n", image.ImageID)
			fmt.Fprintf(out, "status:  %s\n", image.Status)
			fmt.Fprintf(out, "tags:    %s\n", strings.Join(image.Tags, ", "))

			return nil
		},
	}

	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 3*time.Second, "status poll interval")
	cmd.Flags().DurationVar(&pollTimeout, "poll-timeout", 5*time.Minute, "give up waiting for labels after this long")
	cmd.Flags().IntVar(&maxAttempts, "max-polls", 100, "give up waiting for labels after this many polls")

	return cmd
}
