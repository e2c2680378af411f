package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"odtplayground/internal/samples"
	"odtplayground/internal/storage"
)

func newSamplesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Manage the sample templates and data fixtures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Upload the bundled samples to the configured MinIO bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dst, err := storage.NewMinIO(cmd.Context(), c.cfg.MinIO, c.cfg.Samples.Prefix)
			if err != nil {
				return fmt.Errorf("failed to initialize object storage: %w", err)
			}

			n, err := samples.Sync(cmd.Context(), storage.NewFS(samples.Bundled()), dst, c.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d samples to %s/%s\n", n, c.cfg.MinIO.Bucket, c.cfg.Samples.Prefix)
			return nil
		},
	})
	return cmd
}
