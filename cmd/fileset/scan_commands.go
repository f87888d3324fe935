package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fileset/internal/api"
	"fileset/internal/scan"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search [PATH]",
		Short: "Find catalog files under PATH and mark them found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(runCtx context.Context, session *api.Session) error {
				out := cmd.OutOrStdout()
				flags := ctx.scanFlags()
				progress := newProgressObserver(out, flags&scan.ModeVerbose != 0)
				res, err := api.Search(runCtx, api.ScanRequest{
					Session:  session,
					Path:     pathArg(args),
					Flags:    flags,
					Observer: progress,
					OnTotal: func(total int) {
						fmt.Fprintf(out, "Searching %d files\n", total)
					},
				})
				progress.finish(res.Result.Visited)
				if err != nil {
					return err
				}
				printResult(out, res.Result)
				return nil
			})
		},
	}
}

func newHuntCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hunt [PATH]",
		Short: "Move catalog files found under PATH into their collections",
		Long: `Fingerprint every file and archive member under PATH and relocate each
single match to <root>/<collection>/<set>/<file>. With --zip matches are
packed into <root>/<collection>.zip instead. --delete removes sources after
placement; files already found are treated as duplicates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(runCtx context.Context, session *api.Session) error {
				out := cmd.OutOrStdout()
				flags := ctx.scanFlags()
				progress := newProgressObserver(out, flags&scan.ModeVerbose != 0)
				res, err := api.Hunt(runCtx, api.ScanRequest{
					Session:  session,
					Path:     pathArg(args),
					Flags:    flags,
					Observer: progress,
				})
				progress.finish(res.Visited)
				if err != nil {
					return err
				}
				printResult(out, res)
				return nil
			})
		},
	}
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Rescan every collection at its root and refresh found flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(runCtx context.Context, session *api.Session) error {
				out := cmd.OutOrStdout()
				flags := ctx.scanFlags()
				progress := newProgressObserver(out, flags&scan.ModeVerbose != 0)
				res, err := api.Verify(runCtx, api.ScanRequest{
					Session:  session,
					Flags:    flags,
					Observer: progress,
				})
				progress.finish(res.Total.Visited)
				for _, vc := range res.Collections {
					if vc.Missing {
						fmt.Fprintf(out, "%s: not found on disk\n", vc.Name)
						continue
					}
					fmt.Fprintf(out, "%s: %d found in %s\n", vc.Name, vc.Result.Matched, vc.Path)
				}
				if err != nil {
					return err
				}
				printResult(out, res.Total)
				return nil
			})
		},
	}
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func printResult(out io.Writer, res scan.Result) {
	fmt.Fprintf(out, "Matched %d, unknown %d, ambiguous %d, unreadable %d\n",
		res.Matched, res.Unknown, res.Ambiguous, res.Unreadable)
	if res.Relocated > 0 || res.Deleted > 0 || res.Failed > 0 {
		fmt.Fprintf(out, "Relocated %d, duplicates deleted %d, failed %d\n",
			res.Relocated, res.Deleted, res.Failed)
	}
}
