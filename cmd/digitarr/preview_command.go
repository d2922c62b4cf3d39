package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"digitarr/internal/filter"
	"digitarr/internal/release"
	"digitarr/internal/source"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show today's releases and which would be requested, without requesting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			src, err := source.New(cfg, logger)
			if err != nil {
				return err
			}
			filters := filter.New(cfg.Filters, logger)

			releases := src.TodayReleases(cmd.Context())
			qualified := filters.Apply(releases)

			out := cmd.OutOrStdout()
			if len(releases) == 0 {
				fmt.Fprintln(out, "No digital releases found for today")
				return nil
			}

			qualifiedKeys := make(map[string]struct{}, len(qualified))
			for _, rel := range qualified {
				qualifiedKeys[rel.Key()] = struct{}{}
			}

			listed := qualified
			if showAll {
				listed = releases
			}
			rows := make([][]string, 0, len(listed))
			for _, rel := range listed {
				status := "requested"
				if _, ok := qualifiedKeys[rel.Key()]; !ok {
					status = "filtered"
				}
				rows = append(rows, previewRow(rel, status, showAll))
			}

			headers := []string{"Title", "Rating", "Language", "Genres", "Cert", "Release Date"}
			aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft}
			if showAll {
				headers = append(headers, "Status")
				aligns = append(aligns, alignLeft)
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d found, %d would be requested\n", len(releases), len(qualified))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include releases the filters would reject")
	return cmd
}

func previewRow(rel release.Release, status string, includeStatus bool) []string {
	row := []string{
		rel.Title,
		fmt.Sprintf("%.1f", rel.VoteAverage),
		rel.OriginalLanguage,
		strings.Join(rel.GenreNames, ", "),
		rel.Certification,
		rel.ReleaseDate,
	}
	if includeStatus {
		row = append(row, status)
	}
	return row
}
