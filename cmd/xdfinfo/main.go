// Command xdfinfo inspects XDF recordings.
//
//	xdfinfo session.xdf                   per-stream summary
//	xdfinfo --tree session.xdf            streams and channel descriptors
//	xdfinfo --resample 256 session.xdf    resample and report lengths
//	xdfinfo events session.xdf            marker listing
//	xdfinfo pack session.xdf out.xdfz     compress a recording
//
// Every flag can also be set with an XDFINFO_ environment variable, e.g.
// XDFINFO_LOG_LEVEL=debug.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/xdf/internal/cli"
	"github.com/arloliu/xdf/logger"
)

func main() {
	cmd, err := newRootCommand(os.Stdout, os.Stderr)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by all commands.
type app struct {
	logConfig logger.Config
	stderr    io.Writer
	log       *zap.Logger
}

func newRootCommand(stdout, stderr io.Writer) (*cobra.Command, error) {
	a := &app{logConfig: logger.NewConfig(), stderr: stderr, log: zap.NewNop()}
	v := cli.NewViper("xdfinfo")

	var info infoOptions
	cmd := &cobra.Command{
		Use:   "xdfinfo <file>",
		Short: "Print a summary of an XDF recording",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Arguments are valid once we get here; later failures are not
			// usage errors.
			cmd.SilenceUsage = true

			log, err := logger.New(a.stderr, a.logConfig)
			if err != nil {
				return err
			}
			a.log = log

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(cmd.Context(), cmd.OutOrStdout(), args[0], info)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cli.BindOptions(v, cmd.PersistentFlags(), []cli.Opt{
		cli.NewOpt(&a.logConfig.Format, "log-format", logger.FormatConsole, "log format: console, json or logfmt"),
		cli.NewOpt(&a.logConfig.Level, "log-level", a.logConfig.Level, "minimum log level"),
	})
	if err != nil {
		return nil, err
	}
	if err := cli.BindOptions(v, cmd.Flags(), info.opts()); err != nil {
		return nil, err
	}

	events, err := a.newEventsCommand(v)
	if err != nil {
		return nil, err
	}
	pack, err := a.newPackCommand(v)
	if err != nil {
		return nil, err
	}
	cmd.AddCommand(events, pack)

	return cmd, nil
}
