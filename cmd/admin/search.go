package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

type searchFlags struct {
	filename      string
	filetype      string
	from          string
	to            string
	sortDirection string
	json          bool
}

func newSearchCmd(a *app) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search assets with the same filters as the HTTP API",
		Example: `  admin search
  admin search --filename=holiday --filetype=image/png
  admin search --from=2024-01-01T00:00:00Z --to=2024-02-01T00:00:00Z --sort=ASC
  admin search --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := f.criteria(cmd)
			if err != nil {
				return err
			}
			if err := simpleassets.ValidateSearchCriteria(criteria); err != nil {
				return err
			}

			assets, err := a.db.Repository.Search(cmd.Context(), simpleassets.BuildFilter(criteria))
			if err != nil {
				return fmt.Errorf("failed to search assets: %w", err)
			}

			if f.json {
				return writeJSON(cmd.OutOrStdout(), assets)
			}
			writeAssetTable(cmd.OutOrStdout(), assets)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.filename, "filename", "", "Case-insensitive filename substring")
	cmd.Flags().StringVar(&f.filetype, "filetype", "", "Exact content type")
	cmd.Flags().StringVar(&f.from, "from", "", "Uploaded at or after (RFC 3339)")
	cmd.Flags().StringVar(&f.to, "to", "", "Uploaded at or before (RFC 3339)")
	cmd.Flags().StringVar(&f.sortDirection, "sort", "DESC", "Sort by upload date: ASC or DESC")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output as JSON")
	return cmd
}

// criteria only sets filters whose flag was given, so --filename="" is
// rejected the same way an empty query parameter is.
func (f searchFlags) criteria(cmd *cobra.Command) (*simpleassets.SearchCriteria, error) {
	criteria := &simpleassets.SearchCriteria{
		SortDirection: simpleassets.ParseSortDirection(f.sortDirection),
	}
	if cmd.Flags().Changed("filename") {
		criteria.FilenamePattern = &f.filename
	}
	if cmd.Flags().Changed("filetype") {
		criteria.ContentType = &f.filetype
	}
	if cmd.Flags().Changed("from") {
		t, err := time.Parse(time.RFC3339Nano, f.from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
		criteria.UploadDateStart = &t
	}
	if cmd.Flags().Changed("to") {
		t, err := time.Parse(time.RFC3339Nano, f.to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
		criteria.UploadDateEnd = &t
	}
	return criteria, nil
}

func writeAssetTable(out io.Writer, assets []*simpleassets.Asset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tFILENAME\tTYPE\tSIZE\tSTATUS\tUPLOADED\tURL\n")
	for _, asset := range assets {
		url := asset.URL
		if url == "" {
			url = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			asset.ID,
			truncate(asset.Filename, 30),
			asset.ContentType,
			asset.Size,
			asset.Status,
			asset.UploadDate.Format(time.RFC3339),
			url,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d\n", len(assets))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
