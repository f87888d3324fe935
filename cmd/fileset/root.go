package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:   "fileset",
		Short: "Catalog known files and reconcile them against any tree",
		Long: `fileset keeps a catalog of known files, identified by size and CRC32,
and reconciles it against directories, zip, rar, and 7z archives.

Load catalogs with add, find catalog files anywhere with search, confirm
collections on disk with verify, and move matches into place with hunt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "Configuration file path")
	pf.StringVarP(&flags.database, "db", "d", "", "Catalog database path (default ~/.fileset.db)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Print every visited file with its match status")
	pf.BoolVarP(&flags.zip, "zip", "z", false, "Hunt: pack matches into <root>/<collection>.zip")
	pf.BoolVarP(&flags.delete, "delete", "e", false, "Hunt: remove sources after placing them")
	pf.BoolVar(&flags.onlyDelete, "only-delete", false, "Hunt: never place files; with --delete remove matched sources")
	pf.BoolVarP(&flags.reset, "reset", "s", false, "Delete the catalog database before running")

	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newHuntCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
