package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"fileset/internal/api"
	"fileset/internal/config"
	"fileset/internal/logging"
	"fileset/internal/scan"
)

type globalFlags struct {
	config     string
	database   string
	verbose    bool
	zip        bool
	delete     bool
	onlyDelete bool
	reset      bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if db := strings.TrimSpace(c.flags.database); db != "" {
			expanded, err := config.ExpandPath(db)
			if err != nil {
				c.configErr = err
				return
			}
			cfg.Paths.Database = expanded
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger. Log lines go to the command's stderr
// and to the configured log file, if any.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var paths []string
	if file := cfg.LogFilePath(); file != "" {
		paths = append(paths, file)
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
		Writer:      cmd.ErrOrStderr(),
	})
}

// withSession opens a catalog session for cmd and closes it when fn returns.
func (c *commandContext) withSession(cmd *cobra.Command, readOnly bool, fn func(context.Context, *api.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}
	opts := api.SessionOptions{ReadOnly: readOnly, Reset: c.flags.reset && !readOnly}
	session, ctx, err := api.OpenSession(cmd.Context(), cfg, logger, opts)
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(ctx, session)
}

// scanFlags converts the global modifier flags into traversal mode bits.
// Hunt defaults from the config are applied here too.
func (c *commandContext) scanFlags() scan.Mode {
	var mode scan.Mode
	cfg := c.config
	if c.flags.verbose {
		mode |= scan.ModeVerbose
	}
	if c.flags.zip || (cfg != nil && cfg.Hunt.Zip) {
		mode |= scan.ModeZip
	}
	if c.flags.delete || (cfg != nil && cfg.Hunt.Delete) {
		mode |= scan.ModeDelete
	}
	if c.flags.onlyDelete {
		mode |= scan.ModeOnlyDelete
	}
	return mode
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
