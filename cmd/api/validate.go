package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"odtplayground/internal/merge"
	"odtplayground/internal/service"
)

var errInvalidTemplate = errors.New(service.InvalidTemplateMessage)

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a file is a usable ODT template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}

			svc := service.NewDocumentService(merge.NewODTEngine(merge.WithLogger(c.logger)), nil, nil, c.logger)
			res := svc.Validate(cmd.Context(), b, filepath.Base(args[0]), int64(len(b)))

			enc := json.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalidTemplate
			}
			return nil
		},
	}
}
