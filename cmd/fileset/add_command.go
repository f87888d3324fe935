package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fileset/internal/api"
	"fileset/internal/datfile"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		csvFile   string
		blockFile string
		dialect   string
		root      string
	)

	cmd := &cobra.Command{
		Use:   "add [FILE]",
		Short: "Load a catalog file into the catalog",
		Long: `Load a catalog file. Use -c for the delimited dialect
(name,size,crc,set[,comment] with hex size and crc) or -m for ClrMamePro
block files. A positional FILE is parsed with --dialect, or with the
configured default dialect. Archived catalogs (zip, rar, 7z) load every
member in one transaction.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, chosen, err := addSource(csvFile, blockFile, dialect, cfg.Catalog.DefaultDialect, args)
			if err != nil {
				return err
			}

			return ctx.withSession(cmd, false, func(runCtx context.Context, session *api.Session) error {
				res, err := api.AddCatalog(runCtx, api.AddCatalogRequest{
					Session: session,
					Path:    path,
					Dialect: chosen,
					Root:    root,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, name := range res.Load.Collections {
					fmt.Fprintf(out, "Added collection %s\n", name)
				}
				fmt.Fprintf(out, "Loaded %d sets, %d files under %s", res.Load.Sets, res.Load.Files, res.Root)
				if res.Load.Skipped > 0 {
					fmt.Fprintf(out, " (%d malformed records skipped)", res.Load.Skipped)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&csvFile, "csv", "c", "", "Delimited catalog file")
	cmd.Flags().StringVarP(&blockFile, "cmpro", "m", "", "ClrMamePro block catalog file")
	cmd.Flags().StringVar(&dialect, "dialect", "", "Dialect for a positional FILE: delimited or block")
	cmd.Flags().StringVarP(&root, "root", "r", "", "Directory the collection is placed under (created if missing)")
	_ = cmd.MarkFlagRequired("root")
	cmd.MarkFlagsMutuallyExclusive("csv", "cmpro")

	return cmd
}

// addSource picks the single catalog file and its dialect from the flags.
func addSource(csvFile, blockFile, dialect, fallback string, args []string) (string, datfile.Dialect, error) {
	var sources []string
	var chosen datfile.Dialect
	if strings.TrimSpace(csvFile) != "" {
		sources = append(sources, csvFile)
		chosen = datfile.DialectDelimited
	}
	if strings.TrimSpace(blockFile) != "" {
		sources = append(sources, blockFile)
		chosen = datfile.DialectBlock
	}
	if len(args) == 1 {
		sources = append(sources, args[0])
		name := dialect
		if strings.TrimSpace(name) == "" {
			name = fallback
		}
		parsed, err := datfile.ParseDialect(name)
		if err != nil {
			return "", "", err
		}
		chosen = parsed
	}
	switch len(sources) {
	case 0:
		return "", "", errors.New("a catalog file is required (use -c, -m, or FILE)")
	case 1:
		return sources[0], chosen, nil
	default:
		return "", "", errors.New("specify exactly one catalog file")
	}
}
