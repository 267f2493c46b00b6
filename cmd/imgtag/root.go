package main

import (
	"os"
	"time"

	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/tagclient"
	"github.com/spf13/cobra"
)

const _defaultAPIURL = "http://localhost:5000"

type rootOptions struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
}

func (o *rootOptions) client() *tagclient.Client {
	return tagclient.New(o.apiURL, tagclient.Timeout(o.timeout))
}

func (o *rootOptions) logger() logger.Interface {
	return logger.NewWithWriter(o.logLevel, os.Stderr)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	apiURL := os.Getenv("IMGTAG_API_URL")
	if apiURL == "" {
		apiURL = _defaultAPIURL
	}

	cmd := &cobra.Command{
		Use:           "imgtag",
		Short:         "Upload images, wait for their labels and search by tag",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", apiURL, "API base URL (env IMGTAG_API_URL)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per request timeout")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn, error or disabled")

	cmd.AddCommand(
		newUploadCmd(opts),
		newStatusCmd(opts),
		newSearchCmd(opts),
	)

	return cmd
}
