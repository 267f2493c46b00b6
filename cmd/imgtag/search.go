package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Find labeled images carrying every keyword (at most 5)",
		Args:  cobra.RangeArgs(1, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := root.client().Search(cmd.Context(), args)
			if err != nil {
				return err
			}

			if len(images) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no images found")

				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "IMAGE ID\tFILE\tTAGS\tURL")
			for _, img := range images {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", img.ImageID, img.FileName, strings.Join(img.Tags, ","), img.ImageURL)
			}

			return w.Flush()
		},
	}
}
