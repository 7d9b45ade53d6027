package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/pokedex-client/pkg/export"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	var (
		pageSize int
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Download the full species list as CSV or Parquet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.FormatParquet && outPath == "" {
				return fmt.Errorf("--out is required for parquet output")
			}

			refs, err := a.newSession(cmd).Catalog(cmd.Context(), pageSize)
			if err != nil {
				return userError(err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, f, export.Rows(refs)); err != nil {
				return fmt.Errorf("write %s: %w", f, err)
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d species to %s\n", len(refs), outPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Entries per catalog request (default POKEDEX_PAGE_SIZE)")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "Output format: csv or parquet")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout, required for parquet)")

	return cmd
}
