package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one asset including its publish status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("asset id must be a positive integer: %q", args[0])
			}

			asset, err := a.db.Repository.FindByID(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get asset %d: %w", id, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), asset)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:           %d\n", asset.ID)
			fmt.Fprintf(out, "Filename:     %s\n", asset.Filename)
			fmt.Fprintf(out, "Content type: %s\n", asset.ContentType)
			fmt.Fprintf(out, "Size:         %d\n", asset.Size)
			fmt.Fprintf(out, "Status:       %s\n", asset.Status)
			fmt.Fprintf(out, "Uploaded:     %s\n", asset.UploadDate.Format(time.RFC3339Nano))
			fmt.Fprintf(out, "URL:          %s\n", asset.URL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
