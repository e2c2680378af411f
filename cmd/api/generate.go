package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"odtplayground/internal/merge"
	"odtplayground/internal/service"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var templatePath, dataPath, outPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Merge a template with a JSON data file",
		Example: `  api generate --template factura-simple.odt --data factura-simple.json
  api generate --template carta.odt --data carta.json --out carta-final.odt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, err := os.ReadFile(templatePath)
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			data, err := os.ReadFile(dataPath)
			if err != nil {
				return fmt.Errorf("read data: %w", err)
			}

			svc := service.NewDocumentService(merge.NewODTEngine(merge.WithLogger(c.logger)), nil, nil, c.logger)
			doc, err := svc.Generate(cmd.Context(), service.GenerateInput{
				Template: tpl,
				Filename: filepath.Base(templatePath),
				Data:     string(data),
			})
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = filepath.Join(filepath.Dir(templatePath), doc.Filename)
			}
			if err := os.WriteFile(outPath, doc.Content, 0o644); err != nil {
				return fmt.Errorf("write document: %w", err)
			}

			c.logger.Debug("document written", zap.String("path", outPath))
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "ODT template file")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "JSON data file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: <template>-generated.odt next to the template)")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
