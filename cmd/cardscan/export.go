package main

import (
	"context"
	"fmt"
	"os"

	"cardscan/internal/api"
	"cardscan/internal/view"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export contacts",
}

var exportOut string

var exportPDFCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Write all contacts to a PDF, one page per contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			all, err := app.Records.List(ctx)
			if err != nil {
				return err
			}
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			batch := view.RenderExportBatch(all, app.Settings.Current())
			if err := view.WritePDF(f, batch, app.Brand); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Info("export written", zap.String("file", exportOut), zap.Int("pages", len(batch.Pages)))
			fmt.Println(exportOut)
			return nil
		})
	},
}

func init() {
	exportPDFCmd.Flags().StringVarP(&exportOut, "out", "o", "contacts.pdf", "output file")
}
