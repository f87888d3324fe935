package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fileset/internal/api"
	"fileset/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show collections with set, file, and found counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ctx.withSession(cmd, true, func(runCtx context.Context, session *api.Session) error {
				res, err := api.ListCollections(runCtx, session.Store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Collections) == 0 {
					fmt.Fprintln(out, "Catalog is empty")
					return nil
				}
				spec := tableSpec{
					headers: []string{"Collection", "Root", "Sets", "Files", "Found", "Size"},
					aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
					rows:    make([][]string, 0, len(res.Collections)),
				}
				for _, s := range res.Collections {
					spec.rows = append(spec.rows, summaryRow(s))
				}
				if len(res.Collections) > 1 {
					spec.footer = summaryRow(res.Total)
				}
				fmt.Fprintln(out, renderTable(spec))
				return nil
			})
			if errors.Is(err, catalog.ErrNoCatalog) {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty (no database yet; run add first)")
				return nil
			}
			return err
		},
	}
}

func summaryRow(s catalog.Summary) []string {
	bytes := uint64(0)
	if s.Bytes > 0 {
		bytes = uint64(s.Bytes)
	}
	return []string{
		s.Name,
		s.Root,
		fmt.Sprintf("%d", s.Sets),
		fmt.Sprintf("%d", s.Files),
		fmt.Sprintf("%d/%d", s.Found, s.Files),
		humanize.Bytes(bytes),
	}
}
